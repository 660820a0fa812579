package handlers

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/openquest/dungeonmaster/internal/services/events"
	"github.com/openquest/dungeonmaster/internal/session"
)

// EventsHandler streams store change notifications over SSE, so a
// client can watch HP, inventory and combat updates land while the
// narration is still streaming on the chat connection.
// GET /v1/game/{id}/events
type EventsHandler struct {
	manager     *session.Manager
	broadcaster *events.Broadcaster
	logger      *slog.Logger
}

func NewEventsHandler(manager *session.Manager, broadcaster *events.Broadcaster, logger *slog.Logger) *EventsHandler {
	return &EventsHandler{
		manager:     manager,
		broadcaster: broadcaster,
		logger:      logger,
	}
}

func (h *EventsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Content-Type", "application/json")
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Only GET is supported.")
		return
	}

	id, err := parseGameID(r.URL.Path)
	if err != nil || id == uuid.Nil {
		w.Header().Set("Content-Type", "application/json")
		writeError(w, h.logger, http.StatusBadRequest, "Invalid game ID format")
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

	// Subscribe before acknowledging the stream: an event published the
	// moment this request returns headers must already have a listener.
	eventCh, stop := h.broadcaster.Subscribe(r.Context(), id)
	defer stop()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}

	h.logger.Debug("Event stream opened", "id", id.String())
	for {
		select {
		case <-r.Context().Done():
			h.logger.Debug("Event stream closed", "id", id.String())
			return
		case ev, ok := <-eventCh:
			if !ok {
				return
			}
			sendSSE(w, h.logger, string(ev.Type), ev)
		}
	}
}
