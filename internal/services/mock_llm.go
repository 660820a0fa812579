package services

import (
	"context"
	"sync"

	"github.com/openquest/dungeonmaster/pkg/chat"
)

// MockLLMService is a scriptable LLMService for testing. Each call to
// ChatStream pops the next scripted response and streams it chunk by
// chunk, so tests control exactly where chunk boundaries fall.
type MockLLMService struct {
	mu        sync.Mutex
	responses [][]StreamChunk
	streamErr error

	// Track calls for testing
	InitModelCalls  []string
	ChatStreamCalls [][]chat.ChatMessage
}

// NewMockLLMService creates a new mock LLM service.
func NewMockLLMService() *MockLLMService {
	return &MockLLMService{}
}

// ScriptResponse queues one streamed response, split at the given
// boundaries. A Done chunk is appended automatically.
func (m *MockLLMService) ScriptResponse(chunks ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var scripted []StreamChunk
	for _, c := range chunks {
		scripted = append(scripted, StreamChunk{Content: c})
	}
	scripted = append(scripted, StreamChunk{Done: true})
	m.responses = append(m.responses, scripted)
}

// ScriptError queues a response that fails mid-stream after the given
// chunks.
func (m *MockLLMService) ScriptError(err error, chunks ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var scripted []StreamChunk
	for _, c := range chunks {
		scripted = append(scripted, StreamChunk{Content: c})
	}
	scripted = append(scripted, StreamChunk{Err: err})
	m.responses = append(m.responses, scripted)
}

// SetStreamError makes ChatStream itself fail before streaming starts.
func (m *MockLLMService) SetStreamError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.streamErr = err
}

func (m *MockLLMService) InitModel(ctx context.Context, modelName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.InitModelCalls = append(m.InitModelCalls, modelName)
	return nil
}

func (m *MockLLMService) IsModelReady(ctx context.Context, modelName string) (bool, error) {
	return true, nil
}

func (m *MockLLMService) ChatStream(ctx context.Context, messages []chat.ChatMessage) (<-chan StreamChunk, error) {
	m.mu.Lock()
	m.ChatStreamCalls = append(m.ChatStreamCalls, messages)
	if m.streamErr != nil {
		err := m.streamErr
		m.mu.Unlock()
		return nil, err
	}
	var scripted []StreamChunk
	if len(m.responses) > 0 {
		scripted = m.responses[0]
		m.responses = m.responses[1:]
	} else {
		scripted = []StreamChunk{{Done: true}}
	}
	m.mu.Unlock()

	out := make(chan StreamChunk)
	go func() {
		defer close(out)
		for _, c := range scripted {
			select {
			case <-ctx.Done():
				out <- StreamChunk{Err: ctx.Err()}
				return
			case out <- c:
			}
			if c.Done || c.Err != nil {
				return
			}
		}
	}()
	return out, nil
}

// Ensure mocks satisfy the interface
var _ LLMService = (*MockLLMService)(nil)
