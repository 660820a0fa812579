package services

import (
	"context"

	"github.com/openquest/dungeonmaster/pkg/chat"
)

// StreamChunk is one increment of a streaming model response. Content
// is the text delta, not the accumulated buffer; chunk boundaries are
// arbitrary and may fall inside a control tag.
type StreamChunk struct {
	Content string
	Done    bool
	Err     error
}

// LLMService defines the interface for interacting with the LLM API
type LLMService interface {
	// InitModel initializes the LLM model on startup
	InitModel(ctx context.Context, modelName string) error

	// ChatStream generates a streaming chat response. The returned
	// channel is closed after the Done or Err chunk.
	ChatStream(ctx context.Context, messages []chat.ChatMessage) (<-chan StreamChunk, error)

	// IsModelReady checks if the specified model is ready for use
	IsModelReady(ctx context.Context, modelName string) (bool, error)
}
