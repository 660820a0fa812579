package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestMockStorage_SaveAndLoadGame(t *testing.T) {
	m := NewMockStorage()
	ctx := context.Background()
	sg := testSavedGame(t)

	if err := m.SaveGame(ctx, sg); err != nil {
		t.Fatalf("Failed to save game: %v", err)
	}

	loaded, err := m.LoadGame(ctx, sg.ID)
	if err != nil {
		t.Fatalf("Failed to load game: %v", err)
	}
	if loaded == nil || loaded.ID != sg.ID {
		t.Fatalf("Round trip failed: %+v", loaded)
	}

	missing, err := m.LoadGame(ctx, uuid.New())
	if err != nil || missing != nil {
		t.Errorf("Expected nil, nil for missing game, got %+v, %v", missing, err)
	}
}

func TestMockStorage_Errors(t *testing.T) {
	m := NewMockStorage()
	ctx := context.Background()

	pingErr := errors.New("down")
	m.SetPingError(pingErr)
	if err := m.Ping(ctx); !errors.Is(err, pingErr) {
		t.Errorf("Ping() = %v, want %v", err, pingErr)
	}

	saveErr := errors.New("full")
	m.SetSaveError(saveErr)
	if err := m.SaveGame(ctx, testSavedGame(t)); !errors.Is(err, saveErr) {
		t.Errorf("SaveGame() = %v, want %v", err, saveErr)
	}
}
