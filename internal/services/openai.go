package services

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/openquest/dungeonmaster/pkg/chat"
)

const (
	openAIBaseURL = "https://api.openai.com/v1"

	DefaultOpenAITemperature = 0.7
	DefaultOpenAIMaxTokens   = 2048
)

// OpenAIService implements LLMService for OpenAI chat completions.
type OpenAIService struct {
	apiKey     string
	modelName  string
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// OpenAIChatRequest represents the request structure for the chat
// completions API.
type OpenAIChatRequest struct {
	Model       string              `json:"model"`
	Messages    []OpenAIChatMessage `json:"messages"`
	Temperature float64             `json:"temperature,omitempty"`
	MaxTokens   int                 `json:"max_tokens,omitempty"`
	Stream      bool                `json:"stream"`
}

type OpenAIChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// OpenAIStreamEvent is one "data:" payload of a streamed completion.
type OpenAIStreamEvent struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Choices []struct {
		Index int `json:"index"`
		Delta struct {
			Role    string `json:"role,omitempty"`
			Content string `json:"content,omitempty"`
		} `json:"delta"`
		FinishReason *string `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// OpenAIModelsResponse represents the response from the models endpoint.
type OpenAIModelsResponse struct {
	Object string `json:"object"`
	Data   []struct {
		ID string `json:"id"`
	} `json:"data"`
}

// Ensure OpenAIService implements LLMService interface
var _ LLMService = (*OpenAIService)(nil)

// NewOpenAIService creates a new OpenAI service.
func NewOpenAIService(apiKey string, modelName string, logger *slog.Logger) *OpenAIService {
	return &OpenAIService{
		apiKey:    apiKey,
		modelName: modelName,
		baseURL:   openAIBaseURL,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
		logger: logger,
	}
}

// WithBaseURL overrides the API endpoint, used in tests.
func (s *OpenAIService) WithBaseURL(url string) *OpenAIService {
	s.baseURL = url
	return s
}

// InitModel verifies the configured model is available.
func (s *OpenAIService) InitModel(ctx context.Context, modelName string) error {
	ready, err := s.IsModelReady(ctx, modelName)
	if err != nil {
		return fmt.Errorf("failed to check model readiness: %w", err)
	}
	if !ready {
		return fmt.Errorf("model %q is not available", modelName)
	}
	return nil
}

// IsModelReady checks the models endpoint for the given model.
func (s *OpenAIService) IsModelReady(ctx context.Context, modelName string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", s.baseURL+"/models", nil)
	if err != nil {
		return false, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("failed to make request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return false, fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var models OpenAIModelsResponse
	if err := json.NewDecoder(resp.Body).Decode(&models); err != nil {
		return false, fmt.Errorf("failed to decode models response: %w", err)
	}
	for _, m := range models.Data {
		if m.ID == modelName {
			return true, nil
		}
	}
	return false, nil
}

// ChatStream starts a streamed completion and returns a channel of
// content deltas. The channel is closed after the final chunk.
func (s *OpenAIService) ChatStream(ctx context.Context, messages []chat.ChatMessage) (<-chan StreamChunk, error) {
	reqBody := OpenAIChatRequest{
		Model:       s.modelName,
		Messages:    toOpenAIMessages(messages),
		Temperature: DefaultOpenAITemperature,
		MaxTokens:   DefaultOpenAIMaxTokens,
		Stream:      true,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.baseURL+"/chat/completions", bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		return nil, fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
	}

	chunks := make(chan StreamChunk)
	go s.readStream(ctx, resp.Body, chunks)
	return chunks, nil
}

// readStream parses the SSE body line by line and forwards content
// deltas until [DONE] or an error.
func (s *OpenAIService) readStream(ctx context.Context, body io.ReadCloser, chunks chan<- StreamChunk) {
	defer close(chunks)
	defer func() { _ = body.Close() }()

	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			chunks <- StreamChunk{Err: ctx.Err()}
			return
		default:
		}

		line := scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		data := strings.TrimPrefix(line, "data: ")
		if data == "[DONE]" {
			chunks <- StreamChunk{Done: true}
			return
		}

		var event OpenAIStreamEvent
		if err := json.Unmarshal([]byte(data), &event); err != nil {
			s.logger.Warn("Skipping malformed stream event", "error", err)
			continue
		}
		if event.Error != nil {
			chunks <- StreamChunk{Err: fmt.Errorf("openai stream error: %s", event.Error.Message)}
			return
		}
		for _, choice := range event.Choices {
			if choice.Delta.Content != "" {
				chunks <- StreamChunk{Content: choice.Delta.Content}
			}
		}
	}

	if err := scanner.Err(); err != nil {
		chunks <- StreamChunk{Err: fmt.Errorf("error reading stream: %w", err)}
		return
	}
	// Stream ended without [DONE]; treat as complete.
	chunks <- StreamChunk{Done: true}
}

func toOpenAIMessages(messages []chat.ChatMessage) []OpenAIChatMessage {
	out := make([]OpenAIChatMessage, 0, len(messages))
	for _, m := range messages {
		out = append(out, OpenAIChatMessage{Role: m.Role, Content: m.Content})
	}
	return out
}
