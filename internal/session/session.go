package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/openquest/dungeonmaster/internal/services"
	"github.com/openquest/dungeonmaster/pkg/chat"
	"github.com/openquest/dungeonmaster/pkg/dice"
	"github.com/openquest/dungeonmaster/pkg/prompts"
	"github.com/openquest/dungeonmaster/pkg/scenario"
	"github.com/openquest/dungeonmaster/pkg/state"
)

var (
	// ErrBusy is returned when an action arrives while a response is
	// still streaming. The action is dropped, not queued.
	ErrBusy = errors.New("a response is already in flight")

	// ErrNoPendingRoll is returned when there is no outstanding roll
	// request to resolve.
	ErrNoPendingRoll = errors.New("no pending roll to resolve")

	// ErrGameNotStarted is returned for play operations before
	// character creation.
	ErrGameNotStarted = errors.New("game has not started")

	// ErrGameAlreadyStarted is returned when creating a character into
	// a running game.
	ErrGameAlreadyStarted = errors.New("game has already started")
)

// DefaultStreamTimeout bounds one full model response.
const DefaultStreamTimeout = 2 * time.Minute

// DefaultHistoryLimit is the chat history window sent to the model.
const DefaultHistoryLimit = 20

// Session orchestrates one game: it owns the store, drives the model,
// and runs the tag reducer over streamed responses. At most one
// response is in flight at a time; the inFlight guard drops actions
// submitted while the model is talking.
type Session struct {
	store  *state.Store
	llm    services.LLMService
	roller dice.Roller
	logger *slog.Logger

	inFlight      atomic.Bool
	streamTimeout time.Duration
	historyLimit  int
	sanitize      func(string) string
}

// NewSession creates a session around an existing store.
func NewSession(store *state.Store, llm services.LLMService, roller dice.Roller, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		store:         store,
		llm:           llm,
		roller:        roller,
		logger:        logger,
		streamTimeout: DefaultStreamTimeout,
		historyLimit:  DefaultHistoryLimit,
	}
}

// WithStreamTimeout overrides the per-response timeout.
// Returns the Session for method chaining.
func (s *Session) WithStreamTimeout(d time.Duration) *Session {
	s.streamTimeout = d
	return s
}

// WithHistoryLimit overrides the history window size.
// Returns the Session for method chaining.
func (s *Session) WithHistoryLimit(n int) *Session {
	s.historyLimit = n
	return s
}

// WithSanitizer filters completed narration before it is stored, e.g.
// for family-friendly content ratings.
// Returns the Session for method chaining.
func (s *Session) WithSanitizer(fn func(string) string) *Session {
	s.sanitize = fn
	return s
}

// finalize strips control tags from narration and applies the content
// filter when one is configured.
func (s *Session) finalize(narration string) string {
	text := state.StripTags(narration)
	if s.sanitize != nil {
		text = s.sanitize(text)
	}
	return text
}

// Store exposes the underlying store for read access and observers.
func (s *Session) Store() *state.Store {
	return s.store
}

// Busy reports whether a response is currently streaming.
func (s *Session) Busy() bool {
	return s.inFlight.Load()
}

// CreateCharacter creates the player character, starts the game and
// appends the scenario's opening narration.
func (s *Session) CreateCharacter(name, class string, stats state.Stats, scen scenario.Scenario) (*state.Character, error) {
	if s.store.Started() {
		return nil, ErrGameAlreadyStarted
	}
	c, err := state.NewCharacter(name, class, stats)
	if err != nil {
		return nil, err
	}
	s.store.StartGame(c, scen)

	opening := scenario.Format(scen.Opening, c.Name, c.Class)
	s.store.AppendMessage(chat.NewTypedMessage(chat.ChatRoleAgent, opening, chat.MessageTypeNarrative))

	s.logger.Info("Game started",
		"session_id", s.store.ID().String(),
		"character", c.Name,
		"class", c.Class,
		"scenario", scen.ID)
	return c, nil
}

// SubmitAction sends a player action to the model and streams the
// response. The returned channel mirrors the model stream; state tags
// are applied as they complete, and the final message content has its
// tags stripped. Returns ErrBusy if a response is already in flight.
func (s *Session) SubmitAction(ctx context.Context, action string) (<-chan services.StreamChunk, error) {
	if !s.store.Started() {
		return nil, ErrGameNotStarted
	}
	req := chat.ChatRequest{Message: action}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	userMsg := chat.NewTypedMessage(chat.ChatRoleUser, action, chat.MessageTypeAction)
	return s.generate(ctx, userMsg)
}

// ResolvePendingRoll rolls the outstanding dice request, records the
// result as a player message, and streams the model's narration of the
// outcome. Returns ErrNoPendingRoll if nothing is pending.
func (s *Session) ResolvePendingRoll(ctx context.Context) (dice.Result, <-chan services.StreamChunk, error) {
	if !s.store.Started() {
		return dice.Result{}, nil, ErrGameNotStarted
	}
	// The roll is consumed before the stream starts, so a new roll
	// request arriving in the response cannot be wiped by a late clear.
	pr, ok := s.store.ClearPendingRoll()
	if !ok {
		return dice.Result{}, nil, ErrNoPendingRoll
	}

	result := s.roller.Roll(pr.Dice)
	if _, err := dice.Parse(pr.Dice); err != nil {
		s.logger.Warn("Pending roll had invalid notation, fell back to d20",
			"notation", pr.Dice, "reason", pr.Reason)
	}

	rollText := fmt.Sprintf("[Rolled %s for %s: %d]", result.Notation, pr.Reason, result.Total)
	rollMsg := chat.NewTypedMessage(chat.ChatRoleUser, rollText, chat.MessageTypeRoll)

	chunks, err := s.generate(ctx, rollMsg)
	if err != nil {
		// Generation never started; restore the roll so the player can
		// retry.
		s.store.SetPendingRoll(pr.Dice, pr.Reason)
		return dice.Result{}, nil, err
	}
	return result, chunks, nil
}

// ResetGame wipes the session back to its initial state.
func (s *Session) ResetGame() error {
	if s.inFlight.Load() {
		return ErrBusy
	}
	s.store.Reset()
	s.logger.Info("Game reset", "session_id", s.store.ID().String())
	return nil
}

// generate runs one full request/stream/reduce cycle. The guard is
// released when the stream finishes, errors, or times out.
func (s *Session) generate(ctx context.Context, userMsg chat.ChatMessage) (<-chan services.StreamChunk, error) {
	if !s.inFlight.CompareAndSwap(false, true) {
		return nil, ErrBusy
	}

	history := s.store.Messages()
	gs := s.store.Snapshot().GameState

	msgs, err := prompts.New().
		WithGameState(gs).
		WithHistory(history).
		WithUserMessage(userMsg.Content, userMsg.Role).
		WithHistoryLimit(s.historyLimit).
		Build()
	if err != nil {
		s.inFlight.Store(false)
		return nil, fmt.Errorf("error building prompt: %w", err)
	}

	streamCtx, cancel := context.WithTimeout(ctx, s.streamTimeout)
	upstream, err := s.llm.ChatStream(streamCtx, msgs)
	if err != nil {
		cancel()
		s.inFlight.Store(false)
		return nil, fmt.Errorf("error starting model stream: %w", err)
	}

	// The user message is recorded only once the model call is
	// actually underway.
	s.store.AppendMessage(userMsg)

	assistantMsg := chat.NewTypedMessage(chat.ChatRoleAgent, "", chat.MessageTypeNarrative)
	s.store.AppendMessage(assistantMsg)

	out := make(chan services.StreamChunk)
	go func() {
		defer cancel()
		defer close(out)
		defer s.inFlight.Store(false)

		worker := state.NewStreamWorker(s.store, s.logger)
		var buf string

		for chunk := range upstream {
			if chunk.Err != nil {
				// Applied tags stay applied; the partial text is
				// kept with its tags stripped.
				s.logger.Error("Model stream failed",
					"session_id", s.store.ID().String(), "error", chunk.Err)
				s.store.UpdateMessageContent(assistantMsg.ID, s.finalize(buf))
				out <- chunk
				return
			}
			if chunk.Done {
				break
			}
			buf += chunk.Content
			worker.Scan(buf)
			s.store.UpdateMessageContent(assistantMsg.ID, buf)
			out <- chunk
		}

		worker.Scan(buf)
		s.store.UpdateMessageContent(assistantMsg.ID, s.finalize(buf))
		s.logger.Debug("Response complete",
			"session_id", s.store.ID().String(),
			"message_id", assistantMsg.ID,
			"tags_applied", worker.AppliedCount(),
			"length", len(buf))
		out <- services.StreamChunk{Done: true}
	}()

	return out, nil
}
