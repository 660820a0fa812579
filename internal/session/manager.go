package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/openquest/dungeonmaster/internal/services"
	"github.com/openquest/dungeonmaster/internal/services/events"
	"github.com/openquest/dungeonmaster/internal/storage"
	"github.com/openquest/dungeonmaster/pkg/dice"
	"github.com/openquest/dungeonmaster/pkg/state"
)

// Manager tracks live sessions by id and revives persisted ones on
// demand. A session is created lazily the first time its id is seen.
type Manager struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*Session

	store       storage.Storage
	llm         services.LLMService
	roller      dice.Roller
	broadcaster *events.Broadcaster
	sanitize    func(string) string
	logger      *slog.Logger
}

// NewManager creates a session manager.
func NewManager(store storage.Storage, llm services.LLMService, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		sessions: make(map[uuid.UUID]*Session),
		store:    store,
		llm:      llm,
		roller:   dice.NewRoller(),
		logger:   logger,
	}
}

// WithRoller overrides the dice roller, used in tests.
// Returns the Manager for method chaining.
func (m *Manager) WithRoller(r dice.Roller) *Manager {
	m.roller = r
	return m
}

// WithBroadcaster relays every session's store events to Redis Pub/Sub.
// Returns the Manager for method chaining.
func (m *Manager) WithBroadcaster(b *events.Broadcaster) *Manager {
	m.broadcaster = b
	return m
}

// WithSanitizer applies a text filter to completed narration.
// Returns the Manager for method chaining.
func (m *Manager) WithSanitizer(fn func(string) string) *Manager {
	m.sanitize = fn
	return m
}

// newSession builds a session around a store and attaches the manager's
// cross-cutting concerns.
func (m *Manager) newSession(id uuid.UUID, st *state.Store) *Session {
	if m.broadcaster != nil {
		st.Subscribe(func(ev state.Event) {
			m.broadcaster.Publish(context.Background(), id, ev)
		})
	}
	s := NewSession(st, m.llm, m.roller, m.logger)
	if m.sanitize != nil {
		s.WithSanitizer(m.sanitize)
	}
	return s
}

// Create starts a fresh session with a new id.
func (m *Manager) Create() *Session {
	id := uuid.New()
	st := state.NewStore(id, m.logger).
		WithPersister(m.store)
	s := m.newSession(id, st)

	m.mu.Lock()
	m.sessions[id] = s
	m.mu.Unlock()

	m.logger.Info("Session created", "session_id", id.String())
	return s
}

// Get returns a live session, reviving it from storage if a save
// exists. The context covers the load only; the session's own saves do
// not ride on it. Returns nil, nil when the id is unknown.
func (m *Manager) Get(ctx context.Context, id uuid.UUID) (*Session, error) {
	m.mu.Lock()
	if s, ok := m.sessions[id]; ok {
		m.mu.Unlock()
		return s, nil
	}
	m.mu.Unlock()

	sg, err := m.store.LoadGame(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error loading session %s: %w", id, err)
	}
	if sg == nil {
		return nil, nil
	}

	st := state.NewStore(id, m.logger).
		WithPersister(m.store)
	if err := st.Load(sg); err != nil {
		return nil, fmt.Errorf("error restoring session %s: %w", id, err)
	}
	s := m.newSession(id, st)

	m.mu.Lock()
	// Another request may have revived it concurrently; keep the first.
	if existing, ok := m.sessions[id]; ok {
		m.mu.Unlock()
		return existing, nil
	}
	m.sessions[id] = s
	m.mu.Unlock()

	m.logger.Info("Session restored", "session_id", id.String())
	return s, nil
}

// Delete removes a session and its persisted save.
func (m *Manager) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	if s, ok := m.sessions[id]; ok && s.Busy() {
		m.mu.Unlock()
		return ErrBusy
	}
	delete(m.sessions, id)
	m.mu.Unlock()

	if err := m.store.DeleteGame(ctx, id); err != nil {
		return fmt.Errorf("error deleting saved game %s: %w", id, err)
	}
	m.logger.Info("Session deleted", "session_id", id.String())
	return nil
}
