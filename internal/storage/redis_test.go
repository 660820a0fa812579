package storage

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"

	"github.com/openquest/dungeonmaster/pkg/state"
)

func setupTestRedis(t *testing.T) (*RedisStorage, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	rs := NewRedisStorage(mr.Addr(), logger)
	return rs, mr
}

func testSavedGame(t *testing.T) *state.SavedGame {
	t.Helper()
	c, err := state.NewCharacter("Korga", "Warrior", state.Stats{Constitution: 14, Dexterity: 12})
	if err != nil {
		t.Fatalf("Failed to create character: %v", err)
	}
	gs := state.NewGameState()
	gs.Character = c
	gs.Gold = 25
	gs.Location = "tavern"
	gs.Inventory = []string{"Longsword", "Shield"}
	return &state.SavedGame{
		Version:   state.SaveVersion,
		ID:        uuid.New(),
		GameState: gs,
		Started:   true,
	}
}

func TestRedisStorage_SaveAndLoadGame(t *testing.T) {
	rs, mr := setupTestRedis(t)
	defer mr.Close()
	defer func() { _ = rs.Close() }()

	ctx := context.Background()
	sg := testSavedGame(t)

	if err := rs.SaveGame(ctx, sg); err != nil {
		t.Fatalf("Failed to save game: %v", err)
	}

	loaded, err := rs.LoadGame(ctx, sg.ID)
	if err != nil {
		t.Fatalf("Failed to load game: %v", err)
	}
	if loaded == nil {
		t.Fatal("Expected non-nil saved game")
	}
	if loaded.ID != sg.ID {
		t.Errorf("Expected ID %v, got %v", sg.ID, loaded.ID)
	}
	if loaded.GameState.Location != "tavern" {
		t.Errorf("Expected location 'tavern', got %v", loaded.GameState.Location)
	}
	if loaded.GameState.Character == nil || loaded.GameState.Character.Name != "Korga" {
		t.Errorf("Character did not round-trip: %+v", loaded.GameState.Character)
	}
	if len(loaded.GameState.Inventory) != 2 {
		t.Errorf("Expected 2 inventory items, got %d", len(loaded.GameState.Inventory))
	}
}

func TestRedisStorage_LoadNonExistentGame(t *testing.T) {
	rs, mr := setupTestRedis(t)
	defer mr.Close()
	defer func() { _ = rs.Close() }()

	loaded, err := rs.LoadGame(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("Expected no error for missing game, got: %v", err)
	}
	if loaded != nil {
		t.Errorf("Expected nil for missing game, got %+v", loaded)
	}
}

func TestRedisStorage_LoadCorruptGame(t *testing.T) {
	rs, mr := setupTestRedis(t)
	defer mr.Close()
	defer func() { _ = rs.Close() }()

	id := uuid.New()
	if err := mr.Set(savePrefix+id.String(), "{not json"); err != nil {
		t.Fatalf("Failed to seed corrupt blob: %v", err)
	}

	loaded, err := rs.LoadGame(context.Background(), id)
	if err != nil {
		t.Fatalf("Corrupt blob should degrade to fresh game, got error: %v", err)
	}
	if loaded != nil {
		t.Errorf("Expected nil for corrupt blob, got %+v", loaded)
	}
}

func TestRedisStorage_LoadVersionMismatch(t *testing.T) {
	rs, mr := setupTestRedis(t)
	defer mr.Close()
	defer func() { _ = rs.Close() }()

	ctx := context.Background()
	sg := testSavedGame(t)
	sg.Version = state.SaveVersion + 99
	if err := rs.SaveGame(ctx, sg); err != nil {
		t.Fatalf("Failed to save game: %v", err)
	}

	loaded, err := rs.LoadGame(ctx, sg.ID)
	if err != nil {
		t.Fatalf("Version mismatch should degrade to fresh game, got error: %v", err)
	}
	if loaded != nil {
		t.Errorf("Expected nil for version mismatch, got %+v", loaded)
	}
}

func TestRedisStorage_DeleteGame(t *testing.T) {
	rs, mr := setupTestRedis(t)
	defer mr.Close()
	defer func() { _ = rs.Close() }()

	ctx := context.Background()
	sg := testSavedGame(t)
	if err := rs.SaveGame(ctx, sg); err != nil {
		t.Fatalf("Failed to save game: %v", err)
	}
	if err := rs.DeleteGame(ctx, sg.ID); err != nil {
		t.Fatalf("Failed to delete game: %v", err)
	}

	loaded, err := rs.LoadGame(ctx, sg.ID)
	if err != nil || loaded != nil {
		t.Errorf("Expected game gone after delete, got %+v, %v", loaded, err)
	}
}

func TestRedisStorage_ListGames(t *testing.T) {
	rs, mr := setupTestRedis(t)
	defer mr.Close()
	defer func() { _ = rs.Close() }()

	ctx := context.Background()
	want := map[uuid.UUID]bool{}
	for i := 0; i < 3; i++ {
		sg := testSavedGame(t)
		if err := rs.SaveGame(ctx, sg); err != nil {
			t.Fatalf("Failed to save game: %v", err)
		}
		want[sg.ID] = true
	}

	ids, err := rs.ListGames(ctx)
	if err != nil {
		t.Fatalf("Failed to list games: %v", err)
	}
	if len(ids) != 3 {
		t.Fatalf("Expected 3 games, got %d", len(ids))
	}
	for _, id := range ids {
		if !want[id] {
			t.Errorf("Unexpected id in listing: %v", id)
		}
	}
}

func TestRedisStorage_Ping(t *testing.T) {
	rs, mr := setupTestRedis(t)
	defer func() { _ = rs.Close() }()

	if err := rs.Ping(context.Background()); err != nil {
		t.Fatalf("Ping failed against live server: %v", err)
	}

	mr.Close()
	if err := rs.Ping(context.Background()); err == nil {
		t.Error("Expected ping failure after server shutdown")
	}
}
