package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/openquest/dungeonmaster/internal/session"
	"github.com/openquest/dungeonmaster/pkg/dice"
)

// RollHandler resolves the pending dice roll and streams the model's
// narration of the outcome.
// POST /v1/game/{id}/roll
type RollHandler struct {
	manager *session.Manager
	logger  *slog.Logger
}

// NewRollHandler creates a new roll handler.
func NewRollHandler(manager *session.Manager, logger *slog.Logger) *RollHandler {
	return &RollHandler{
		manager: manager,
		logger:  logger,
	}
}

func (h *RollHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Content-Type", "application/json")
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Only POST is supported.")
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

	result, chunks, err := s.ResolvePendingRoll(r.Context())
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case errors.Is(err, session.ErrNoPendingRoll):
			writeError(w, h.logger, http.StatusConflict, "No pending roll to resolve")
		case errors.Is(err, session.ErrBusy):
			writeError(w, h.logger, http.StatusConflict, "A response is already in flight")
		case errors.Is(err, session.ErrGameNotStarted):
			writeError(w, h.logger, http.StatusConflict, "Game has not started")
		default:
			h.logger.Error("Failed to resolve roll", "id", id.String(), "error", err)
			writeError(w, h.logger, http.StatusInternalServerError, "Failed to resolve roll")
		}
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	sendSSE(w, h.logger, "roll", rollPayload(result))
	streamSSE(w, r, h.logger, chunks)
}

func rollPayload(result dice.Result) map[string]any {
	return map[string]any{
		"notation":  result.Notation,
		"total":     result.Total,
		"rolls":     result.Rolls,
		"modifier":  result.Modifier,
		"breakdown": result.Breakdown,
	}
}
