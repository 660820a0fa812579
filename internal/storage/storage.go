package storage

import (
	"context"

	"github.com/google/uuid"

	"github.com/openquest/dungeonmaster/pkg/state"
)

// Storage persists saved games across sessions. Implementations also
// satisfy state.Persister so a Store can write through directly.
type Storage interface {
	// Health and lifecycle
	Ping(ctx context.Context) error
	Close() error

	// Saved game operations
	SaveGame(ctx context.Context, sg *state.SavedGame) error
	LoadGame(ctx context.Context, id uuid.UUID) (*state.SavedGame, error)
	DeleteGame(ctx context.Context, id uuid.UUID) error
	ListGames(ctx context.Context) ([]uuid.UUID, error)
}
