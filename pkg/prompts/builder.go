package prompts

import (
	"fmt"

	"github.com/openquest/dungeonmaster/pkg/chat"
	"github.com/openquest/dungeonmaster/pkg/state"
)

// Builder constructs the message array for one model call using a
// fluent interface. It separates prompt assembly from session state.
type Builder struct {
	gs           *state.GameState
	history      []chat.ChatMessage
	userMessage  string
	userRole     string
	historyLimit int
	messages     []chat.ChatMessage
}

// New creates a new prompt builder with default settings.
func New() *Builder {
	return &Builder{
		historyLimit: 20, // default history window
		messages:     make([]chat.ChatMessage, 0),
	}
}

// WithGameState sets the game state serialized into the system prompt.
func (b *Builder) WithGameState(gs *state.GameState) *Builder {
	b.gs = gs
	return b
}

// WithHistory sets the full message log; Build windows it.
func (b *Builder) WithHistory(msgs []chat.ChatMessage) *Builder {
	b.history = msgs
	return b
}

// WithUserMessage sets the current user message and role.
func (b *Builder) WithUserMessage(message string, role string) *Builder {
	b.userMessage = message
	b.userRole = role
	return b
}

// WithHistoryLimit sets the chat history window size.
func (b *Builder) WithHistoryLimit(limit int) *Builder {
	b.historyLimit = limit
	return b
}

// Build constructs the final message array for LLM consumption.
func (b *Builder) Build() ([]chat.ChatMessage, error) {
	if b.gs == nil {
		return nil, fmt.Errorf("game state is required")
	}

	b.messages = make([]chat.ChatMessage, 0)

	// 1. System prompt
	system, err := BuildSystemPrompt(b.gs)
	if err != nil {
		return nil, fmt.Errorf("error building system prompt: %w", err)
	}
	b.messages = append(b.messages, chat.ChatMessage{
		Role:    chat.ChatRoleSystem,
		Content: system,
	})

	// 2. Windowed chat history
	b.addHistory()

	// 3. User message
	if b.userMessage != "" {
		b.messages = append(b.messages, chat.ChatMessage{
			Role:    b.userRole,
			Content: b.userMessage,
		})
	}

	// 4. Final reminder
	b.messages = append(b.messages, chat.ChatMessage{
		Role:    chat.ChatRoleSystem,
		Content: UserPostPrompt,
	})

	return b.messages, nil
}

func (b *Builder) addHistory() {
	if len(b.history) == 0 {
		return
	}
	if len(b.history) <= b.historyLimit {
		b.messages = append(b.messages, b.history...)
		return
	}
	b.messages = append(b.messages, b.history[len(b.history)-b.historyLimit:]...)
}

// BuildMessages is a convenience function for the common case.
func BuildMessages(
	gs *state.GameState,
	history []chat.ChatMessage,
	message string,
	role string,
	historyLimit int,
) ([]chat.ChatMessage, error) {
	return New().
		WithGameState(gs).
		WithHistory(history).
		WithUserMessage(message, role).
		WithHistoryLimit(historyLimit).
		Build()
}
