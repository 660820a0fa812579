package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/openquest/dungeonmaster/internal/services"
	"github.com/openquest/dungeonmaster/internal/session"
	"github.com/openquest/dungeonmaster/pkg/chat"
)

// ChatHandler streams Dungeon Master responses over SSE.
// POST /v1/game/{id}/chat
type ChatHandler struct {
	manager *session.Manager
	logger  *slog.Logger
}

// NewChatHandler creates a new chat handler.
func NewChatHandler(manager *session.Manager, logger *slog.Logger) *ChatHandler {
	return &ChatHandler{
		manager: manager,
		logger:  logger,
	}
}

func (h *ChatHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Content-Type", "application/json")
		h.logger.Warn("Method not allowed for chat endpoint",
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr)
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Only POST is supported.")
		return
	}

	id, err := parseGameID(r.URL.Path)
	if err != nil || id == uuid.Nil {
		w.Header().Set("Content-Type", "application/json")
		writeError(w, h.logger, http.StatusBadRequest, "Invalid game ID format")
		return
	}

	var req chat.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.Header().Set("Content-Type", "application/json")
		writeError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		w.Header().Set("Content-Type", "application/json")
		writeError(w, h.logger, http.StatusBadRequest, err.Error())
		return
	}

	s, err := h.manager.Get(r.Context(), id)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		h.logger.Error("Failed to load game", "id", id.String(), "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to load game")
		return
	}
	if s == nil {
		w.Header().Set("Content-Type", "application/json")
		writeError(w, h.logger, http.StatusNotFound, "Game not found")
		return
	}

	chunks, err := s.SubmitAction(r.Context(), req.Message)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case errors.Is(err, session.ErrBusy):
			writeError(w, h.logger, http.StatusConflict, "A response is already in flight")
		case errors.Is(err, session.ErrGameNotStarted):
			writeError(w, h.logger, http.StatusConflict, "Game has not started")
		default:
			h.logger.Error("Failed to submit action", "id", id.String(), "error", err)
			writeError(w, h.logger, http.StatusInternalServerError, "Failed to submit action")
		}
		return
	}

	streamSSE(w, r, h.logger, chunks)
}

// streamSSE forwards model chunks to the client as Server-Sent Events:
// "chunk" events carry text deltas, one "done" or "error" event ends
// the stream.
func streamSSE(w http.ResponseWriter, r *http.Request, logger *slog.Logger, chunks <-chan services.StreamChunk) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	for c := range chunks {
		select {
		case <-r.Context().Done():
			logger.Info("SSE client disconnected before stream end")
			// Keep draining; the session goroutine finishes the
			// reduce cycle regardless of the client.
			continue
		default:
		}

		switch {
		case c.Err != nil:
			sendSSE(w, logger, "error", map[string]any{"error": c.Err.Error()})
		case c.Done:
			sendSSE(w, logger, "done", map[string]any{})
		default:
			sendSSE(w, logger, "chunk", map[string]any{"content": c.Content})
		}
	}
}

// sendSSE sends a Server-Sent Event to the client
func sendSSE(w http.ResponseWriter, logger *slog.Logger, eventType string, data any) {
	dataJSON, err := json.Marshal(data)
	if err != nil {
		logger.Error("Failed to marshal SSE data", "error", err)
		return
	}
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", eventType, dataJSON); err != nil {
		logger.Error("Failed to write SSE event", "error", err)
		return
	}
	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}
}
