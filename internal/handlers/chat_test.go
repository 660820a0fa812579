package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openquest/dungeonmaster/internal/session"
	"github.com/openquest/dungeonmaster/pkg/state"
)

func createTestGame(t *testing.T, manager *session.Manager) *session.Session {
	t.Helper()
	s := manager.Create()
	stats := state.Stats{Strength: 14, Dexterity: 12, Constitution: 10}
	_, err := s.CreateCharacter("Korga", "Warrior", stats, testScenario())
	require.NoError(t, err)
	return s
}

// parseSSE splits a recorded SSE body into (event, data) pairs.
func parseSSE(t *testing.T, body string) [][2]string {
	t.Helper()
	var events [][2]string
	var event, data string
	for _, line := range strings.Split(body, "\n") {
		switch {
		case strings.HasPrefix(line, "event: "):
			event = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			data = strings.TrimPrefix(line, "data: ")
		case line == "":
			if event != "" {
				events = append(events, [2]string{event, data})
				event, data = "", ""
			}
		}
	}
	return events
}

func TestChatHandler_StreamsResponse(t *testing.T) {
	manager, mock := newTestManager()
	s := createTestGame(t, manager)
	mock.ScriptResponse("You take a hit. [HP", ":-4]")

	handler := NewChatHandler(manager, handlerTestLogger())

	req := httptest.NewRequest(http.MethodPost, "/v1/game/"+s.Store().ID().String()+"/chat",
		strings.NewReader(`{"message":"I charge."}`))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, "text/event-stream", rr.Header().Get("Content-Type"))

	events := parseSSE(t, rr.Body.String())
	require.NotEmpty(t, events)
	assert.Equal(t, "chunk", events[0][0])
	assert.Equal(t, "done", events[len(events)-1][0])

	// Chunks carry the raw deltas, tag text included.
	var accumulated string
	for _, ev := range events {
		if ev[0] != "chunk" {
			continue
		}
		var payload struct {
			Content string `json:"content"`
		}
		require.NoError(t, json.Unmarshal([]byte(ev[1]), &payload))
		accumulated += payload.Content
	}
	assert.Equal(t, "You take a hit. [HP:-4]", accumulated)

	// The reducer ran: HP dropped, stored narration is clean.
	gs := s.Store().Snapshot().GameState
	assert.Equal(t, gs.Character.MaxHP-4, gs.Character.HP)
	msgs := s.Store().Messages()
	assert.Equal(t, "You take a hit.", msgs[len(msgs)-1].Content)
}

func TestChatHandler_Validation(t *testing.T) {
	manager, _ := newTestManager()
	s := createTestGame(t, manager)
	handler := NewChatHandler(manager, handlerTestLogger())
	base := "/v1/game/" + s.Store().ID().String() + "/chat"

	tests := []struct {
		name           string
		method         string
		path           string
		body           string
		expectedStatus int
	}{
		{"wrong method", http.MethodGet, base, "", http.StatusMethodNotAllowed},
		{"bad id", http.MethodPost, "/v1/game/nope/chat", `{"message":"hi"}`, http.StatusBadRequest},
		{"empty message", http.MethodPost, base, `{"message":""}`, http.StatusBadRequest},
		{"malformed body", http.MethodPost, base, `{`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)
			assert.Equal(t, tt.expectedStatus, rr.Code, rr.Body.String())
		})
	}
}

func TestChatHandler_UnknownGame(t *testing.T) {
	manager, _ := newTestManager()
	handler := NewChatHandler(manager, handlerTestLogger())

	req := httptest.NewRequest(http.MethodPost,
		"/v1/game/6a7a973e-9d9c-4a3e-9716-8db2d5f8c501/chat",
		strings.NewReader(`{"message":"hello?"}`))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
