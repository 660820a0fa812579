package state

import (
	"time"

	"github.com/google/uuid"

	"github.com/openquest/dungeonmaster/pkg/chat"
	"github.com/openquest/dungeonmaster/pkg/scenario"
)

// GameState is the aggregate root for a session: character sheet,
// inventory, gold, location and any active combat. Scenario id and
// atmosphere are fixed once the game starts.
type GameState struct {
	Character  *Character         `json:"character,omitempty"`
	Inventory  []string           `json:"inventory,omitempty"`
	Gold       int                `json:"gold"`
	Location   string             `json:"location,omitempty"`
	TimeOfDay  scenario.TimeOfDay `json:"time_of_day,omitempty"`
	ScenarioID string             `json:"scenario_id,omitempty"`
	Atmosphere string             `json:"atmosphere,omitempty"`
	Combat     CombatState        `json:"combat"`
}

// NewGameState returns the documented initial state: no character,
// empty inventory, zero gold, inactive combat.
func NewGameState() *GameState {
	return &GameState{
		Inventory: make([]string, 0),
	}
}

// PendingRoll is the single outstanding dice-roll request awaiting
// player action. It is ephemeral and never persisted.
type PendingRoll struct {
	Dice   string `json:"dice"`
	Reason string `json:"reason"`
}

// SaveVersion identifies the persisted blob layout. A version mismatch
// on load yields the initial state instead of an error.
const SaveVersion = 1

// SavedGame is the versioned persistence blob for a session. PendingRoll
// is deliberately absent: a response mid-stream is not resumable across
// a reload.
type SavedGame struct {
	Version   int                `json:"version"`
	ID        uuid.UUID          `json:"id"`
	GameState *GameState         `json:"game_state"`
	Messages  []chat.ChatMessage `json:"messages,omitempty"`
	Started   bool               `json:"is_game_started"`
	UpdatedAt time.Time          `json:"updated_at"`
}
