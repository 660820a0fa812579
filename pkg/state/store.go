package state

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/openquest/dungeonmaster/pkg/chat"
	"github.com/openquest/dungeonmaster/pkg/scenario"
)

// EventType identifies a category of store mutation, for observers.
type EventType string

const (
	EventGameStarted      EventType = "game.started"
	EventGameReset        EventType = "game.reset"
	EventCharacterUpdated EventType = "character.updated"
	EventInventoryUpdated EventType = "inventory.updated"
	EventGoldUpdated      EventType = "gold.updated"
	EventCombatUpdated    EventType = "combat.updated"
	EventMessageAppended  EventType = "message.appended"
	EventMessageUpdated   EventType = "message.updated"
	EventPendingRoll      EventType = "roll.pending"
	EventRollCleared      EventType = "roll.cleared"
)

// Event is a change notification emitted after a store mutation.
type Event struct {
	Type      EventType `json:"type"`
	MessageID string    `json:"message_id,omitempty"`
}

// Persister is the store's persistence boundary. The store writes
// through on every mutation; a failing persister degrades to a logged
// warning and the in-memory session continues.
type Persister interface {
	SaveGame(ctx context.Context, sg *SavedGame) error
	DeleteGame(ctx context.Context, id uuid.UUID) error
}

// Store is the single source of truth for one session: game state,
// message log and the pending roll. All mutations are serialized
// through its operations; observers are notified after each one.
type Store struct {
	mu          sync.Mutex
	id          uuid.UUID
	gs          *GameState
	messages    []chat.ChatMessage
	pendingRoll *PendingRoll
	started     bool

	persister   Persister
	logger      *slog.Logger
	subscribers []func(Event)
}

// NewStore creates an empty store for a session.
func NewStore(id uuid.UUID, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		id:     id,
		gs:     NewGameState(),
		logger: logger,
	}
}

// persistTimeout bounds one write-through save or delete.
const persistTimeout = 5 * time.Second

// WithPersister sets the write-through persistence backend.
// Returns the Store for method chaining.
func (s *Store) WithPersister(p Persister) *Store {
	s.persister = p
	return s
}

// Subscribe registers an observer for store change events. Callbacks
// run synchronously after the mutation completes, outside the store
// lock; they must not block.
func (s *Store) Subscribe(fn func(Event)) {
	s.mu.Lock()
	s.subscribers = append(s.subscribers, fn)
	s.mu.Unlock()
}

func (s *Store) notify(ev Event) {
	s.mu.Lock()
	subs := make([]func(Event), len(s.subscribers))
	copy(subs, s.subscribers)
	s.mu.Unlock()
	for _, fn := range subs {
		fn(ev)
	}
}

// persistLocked writes the current state through to the persister.
// Storage failure is not fatal: the session continues in memory.
// The store outlives the request that created it, so saves run on
// their own context rather than a request-scoped one.
// Callers must hold s.mu.
func (s *Store) persistLocked() {
	if s.persister == nil {
		return
	}
	sg := s.snapshotLocked()
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	if err := s.persister.SaveGame(ctx, sg); err != nil {
		s.logger.Warn("Failed to persist game state; continuing in memory",
			"id", s.id.String(), "error", err)
	}
}

// snapshotLocked deep-copies the session into a versioned save blob.
// PendingRoll is intentionally absent from SavedGame. Callers must
// hold s.mu.
func (s *Store) snapshotLocked() *SavedGame {
	gsCopy, err := deepCopyGameState(s.gs)
	if err != nil {
		s.logger.Error("Failed to copy game state for snapshot", "error", err)
		gsCopy = NewGameState()
	}
	if gsCopy.Character != nil {
		// The runtime actor is not serialized, so the JSON round trip
		// drops it; rebuild so the copied character is complete.
		if err := gsCopy.Character.BuildActor(); err != nil {
			s.logger.Error("Failed to rebuild snapshot actor", "error", err)
		}
	}
	msgs := make([]chat.ChatMessage, len(s.messages))
	copy(msgs, s.messages)
	return &SavedGame{
		Version:   SaveVersion,
		ID:        s.id,
		GameState: gsCopy,
		Messages:  msgs,
		Started:   s.started,
		UpdatedAt: time.Now().UTC(),
	}
}

func deepCopyGameState(gs *GameState) (*GameState, error) {
	data, err := json.Marshal(gs)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal game state: %w", err)
	}
	var out GameState
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to unmarshal game state: %w", err)
	}
	return &out, nil
}

// ID returns the session id.
func (s *Store) ID() uuid.UUID {
	return s.id
}

// Started reports whether the game has begun.
func (s *Store) Started() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.started
}

// Snapshot returns a deep copy of the full session state.
func (s *Store) Snapshot() *SavedGame {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Messages returns a copy of the message log in append order.
func (s *Store) Messages() []chat.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	msgs := make([]chat.ChatMessage, len(s.messages))
	copy(msgs, s.messages)
	return msgs
}

// PendingRoll returns the outstanding roll request, if any.
func (s *Store) PendingRoll() (PendingRoll, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pendingRoll == nil {
		return PendingRoll{}, false
	}
	return *s.pendingRoll, true
}

// StartGame installs a freshly created character with the class
// starting kit and gold, applies the scenario's setting, and marks the
// game started. One atomic transition from "no game" to "playing".
func (s *Store) StartGame(c *Character, scen scenario.Scenario) {
	s.mu.Lock()
	info := Classes[c.Class]
	s.gs.Character = c
	s.gs.Inventory = append([]string(nil), info.Items...)
	s.gs.Gold = StartingGold
	s.gs.Location = scen.Location
	s.gs.TimeOfDay = scen.TimeOfDay
	s.gs.ScenarioID = scen.ID
	s.gs.Atmosphere = scen.Atmosphere
	s.started = true
	s.persistLocked()
	s.mu.Unlock()
	s.notify(Event{Type: EventGameStarted})
}

// UpdateHP applies a signed HP delta to the character, clamped to
// [0, MaxHP]. A tag arriving before character creation is a logged
// no-op rather than an error.
func (s *Store) UpdateHP(delta int) {
	s.mu.Lock()
	if s.gs.Character == nil {
		s.mu.Unlock()
		s.logger.Warn("HP update ignored: no character exists", "delta", delta)
		return
	}
	s.gs.Character.AdjustHP(delta)
	s.persistLocked()
	s.mu.Unlock()
	s.notify(Event{Type: EventCharacterUpdated})
}

// AddXP grants experience points. No-op without a character.
func (s *Store) AddXP(n int) {
	s.mu.Lock()
	if s.gs.Character == nil {
		s.mu.Unlock()
		s.logger.Warn("XP update ignored: no character exists", "amount", n)
		return
	}
	s.gs.Character.AddXP(n)
	s.persistLocked()
	s.mu.Unlock()
	s.notify(Event{Type: EventCharacterUpdated})
}

// UpdateGold applies a signed gold delta, floor-clamped at 0.
func (s *Store) UpdateGold(delta int) {
	s.mu.Lock()
	s.gs.Gold += delta
	if s.gs.Gold < 0 {
		s.gs.Gold = 0
	}
	s.persistLocked()
	s.mu.Unlock()
	s.notify(Event{Type: EventGoldUpdated})
}

// AddItem appends an item to the inventory. Duplicates are permitted.
func (s *Store) AddItem(name string) {
	s.mu.Lock()
	s.gs.Inventory = append(s.gs.Inventory, name)
	s.persistLocked()
	s.mu.Unlock()
	s.notify(Event{Type: EventInventoryUpdated})
}

// RemoveItem removes the first inventory entry matching name
// (case-insensitive). Returns false if nothing matched.
func (s *Store) RemoveItem(name string) bool {
	s.mu.Lock()
	removed := false
	for i, item := range s.gs.Inventory {
		if strings.EqualFold(item, name) {
			s.gs.Inventory = append(s.gs.Inventory[:i], s.gs.Inventory[i+1:]...)
			removed = true
			break
		}
	}
	if !removed {
		s.mu.Unlock()
		s.logger.Warn("Item removal ignored: not in inventory", "item", name)
		return false
	}
	s.persistLocked()
	s.mu.Unlock()
	s.notify(Event{Type: EventInventoryUpdated})
	return true
}

// StartCombat begins an encounter at turn 1. No-op if already active.
func (s *Store) StartCombat() {
	s.mu.Lock()
	if s.gs.Combat.Active {
		s.mu.Unlock()
		return
	}
	s.gs.Combat = CombatState{Active: true, Turn: 1}
	s.persistLocked()
	s.mu.Unlock()
	s.notify(Event{Type: EventCombatUpdated})
}

// EndCombat clears the encounter.
func (s *Store) EndCombat() {
	s.mu.Lock()
	s.gs.Combat = CombatState{}
	s.persistLocked()
	s.mu.Unlock()
	s.notify(Event{Type: EventCombatUpdated})
}

// AdvanceTurn increments the combat turn counter.
func (s *Store) AdvanceTurn() {
	s.mu.Lock()
	if !s.gs.Combat.Active {
		s.mu.Unlock()
		return
	}
	s.gs.Combat.Turn++
	s.persistLocked()
	s.mu.Unlock()
	s.notify(Event{Type: EventCombatUpdated})
}

// AddEnemy adds an enemy to the active encounter, starting combat if
// needed, and returns its generated id.
func (s *Store) AddEnemy(name string, maxHP int) Enemy {
	s.mu.Lock()
	if !s.gs.Combat.Active {
		s.gs.Combat = CombatState{Active: true, Turn: 1}
	}
	e := Enemy{
		ID:     uuid.NewString(),
		Name:   name,
		HP:     maxHP,
		MaxHP:  maxHP,
		Status: EnemyAlive,
	}
	s.gs.Combat.Enemies = append(s.gs.Combat.Enemies, e)
	s.persistLocked()
	s.mu.Unlock()
	s.notify(Event{Type: EventCombatUpdated})
	return e
}

// DamageEnemy applies damage to every enemy whose name matches the
// fragment (see Enemy.Matches) and returns the match count. Zero or
// multiple matches are not errors.
func (s *Store) DamageEnemy(fragment string, amount int) int {
	s.mu.Lock()
	matched := 0
	for i := range s.gs.Combat.Enemies {
		if s.gs.Combat.Enemies[i].Matches(fragment) {
			s.gs.Combat.Enemies[i].TakeDamage(amount)
			matched++
		}
	}
	if matched == 0 {
		s.mu.Unlock()
		s.logger.Warn("Enemy damage matched nothing", "fragment", fragment)
		return 0
	}
	s.persistLocked()
	s.mu.Unlock()
	s.notify(Event{Type: EventCombatUpdated})
	return matched
}

// DefeatEnemy marks every matching enemy defeated and returns the
// match count.
func (s *Store) DefeatEnemy(fragment string) int {
	s.mu.Lock()
	matched := 0
	for i := range s.gs.Combat.Enemies {
		if s.gs.Combat.Enemies[i].Matches(fragment) {
			s.gs.Combat.Enemies[i].Defeat()
			matched++
		}
	}
	if matched == 0 {
		s.mu.Unlock()
		s.logger.Warn("Enemy defeat matched nothing", "fragment", fragment)
		return 0
	}
	s.persistLocked()
	s.mu.Unlock()
	s.notify(Event{Type: EventCombatUpdated})
	return matched
}

// AppendMessage adds a message to the end of the log.
func (s *Store) AppendMessage(msg chat.ChatMessage) {
	s.mu.Lock()
	s.messages = append(s.messages, msg)
	s.persistLocked()
	s.mu.Unlock()
	s.notify(Event{Type: EventMessageAppended, MessageID: msg.ID})
}

// UpdateMessageContent replaces the content of an existing message,
// used for incremental display of a streaming assistant response.
// Returns false if the id is unknown.
func (s *Store) UpdateMessageContent(id, content string) bool {
	s.mu.Lock()
	found := false
	for i := range s.messages {
		if s.messages[i].ID == id {
			s.messages[i].Content = content
			found = true
			break
		}
	}
	if !found {
		s.mu.Unlock()
		s.logger.Warn("Message update ignored: unknown id", "message_id", id)
		return false
	}
	s.persistLocked()
	s.mu.Unlock()
	s.notify(Event{Type: EventMessageUpdated, MessageID: id})
	return true
}

// SetPendingRoll records the outstanding roll request. A later request
// replaces an unresolved earlier one; at most one is pending.
func (s *Store) SetPendingRoll(dice, reason string) {
	s.mu.Lock()
	s.pendingRoll = &PendingRoll{Dice: dice, Reason: reason}
	s.mu.Unlock()
	s.notify(Event{Type: EventPendingRoll})
}

// ClearPendingRoll removes the outstanding roll request, returning it.
func (s *Store) ClearPendingRoll() (PendingRoll, bool) {
	s.mu.Lock()
	if s.pendingRoll == nil {
		s.mu.Unlock()
		return PendingRoll{}, false
	}
	pr := *s.pendingRoll
	s.pendingRoll = nil
	s.mu.Unlock()
	s.notify(Event{Type: EventRollCleared})
	return pr, true
}

// Load installs a previously saved game. The character's runtime actor
// is rebuilt; PendingRoll is always empty after a load.
func (s *Store) Load(sg *SavedGame) error {
	if sg == nil || sg.GameState == nil {
		return fmt.Errorf("saved game is empty")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if sg.GameState.Character != nil {
		if err := sg.GameState.Character.BuildActor(); err != nil {
			return fmt.Errorf("failed to rebuild character actor: %w", err)
		}
	}
	s.id = sg.ID
	s.gs = sg.GameState
	s.messages = sg.Messages
	s.started = sg.Started
	s.pendingRoll = nil
	return nil
}

// Reset clears persisted state and reinitializes to the documented
// initial state.
func (s *Store) Reset() {
	s.mu.Lock()
	if s.persister != nil {
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		if err := s.persister.DeleteGame(ctx, s.id); err != nil {
			s.logger.Warn("Failed to delete persisted game state",
				"id", s.id.String(), "error", err)
		}
		cancel()
	}
	s.gs = NewGameState()
	s.messages = nil
	s.pendingRoll = nil
	s.started = false
	s.mu.Unlock()
	s.notify(Event{Type: EventGameReset})
}
