package prompts

import (
	"fmt"
	"strings"
	"testing"

	"github.com/openquest/dungeonmaster/pkg/chat"
)

func TestBuilderBuild(t *testing.T) {
	gs := testGameState(t)
	history := []chat.ChatMessage{
		chat.NewMessage(chat.ChatRoleUser, "I enter the tavern."),
		chat.NewMessage(chat.ChatRoleAgent, "The room falls quiet as you step inside."),
	}

	msgs, err := New().
		WithGameState(gs).
		WithHistory(history).
		WithUserMessage("I order an ale.", chat.ChatRoleUser).
		Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	// system + 2 history + user + final reminder
	if len(msgs) != 5 {
		t.Fatalf("got %d messages, want 5", len(msgs))
	}
	if msgs[0].Role != chat.ChatRoleSystem || !strings.Contains(msgs[0].Content, "Dungeon Master") {
		t.Errorf("first message is not the system prompt: %+v", msgs[0])
	}
	if msgs[1].Content != "I enter the tavern." {
		t.Errorf("history out of order: %+v", msgs[1])
	}
	if msgs[3].Role != chat.ChatRoleUser || msgs[3].Content != "I order an ale." {
		t.Errorf("user message misplaced: %+v", msgs[3])
	}
	if msgs[4].Role != chat.ChatRoleSystem || msgs[4].Content != UserPostPrompt {
		t.Errorf("final reminder misplaced: %+v", msgs[4])
	}
}

func TestBuilderHistoryWindow(t *testing.T) {
	gs := testGameState(t)
	var history []chat.ChatMessage
	for i := 0; i < 30; i++ {
		history = append(history, chat.NewMessage(chat.ChatRoleUser, fmt.Sprintf("turn %d", i)))
	}

	msgs, err := New().
		WithGameState(gs).
		WithHistory(history).
		WithHistoryLimit(10).
		WithUserMessage("now", chat.ChatRoleUser).
		Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	// system + 10 windowed + user + final reminder
	if len(msgs) != 13 {
		t.Fatalf("got %d messages, want 13", len(msgs))
	}
	if msgs[1].Content != "turn 20" {
		t.Errorf("window start = %q, want the most recent 10 turns", msgs[1].Content)
	}
}

func TestBuilderRequiresGameState(t *testing.T) {
	if _, err := New().Build(); err == nil {
		t.Error("expected error without game state")
	}
}

func TestBuilderOmitsEmptyUserMessage(t *testing.T) {
	msgs, err := New().WithGameState(testGameState(t)).Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	// system + final reminder only
	if len(msgs) != 2 {
		t.Fatalf("got %d messages, want 2", len(msgs))
	}
}
