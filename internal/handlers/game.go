package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/openquest/dungeonmaster/internal/session"
	"github.com/openquest/dungeonmaster/pkg/dice"
	"github.com/openquest/dungeonmaster/pkg/scenario"
	"github.com/openquest/dungeonmaster/pkg/state"
)

// CreateGameRequest starts a new game. Stats are optional; omitted
// scores are rolled 4d6 drop lowest. ScenarioID is optional; empty
// picks a random scenario.
type CreateGameRequest struct {
	Name       string       `json:"name"`
	Class      string       `json:"class"`
	Stats      *state.Stats `json:"stats,omitempty"`
	ScenarioID string       `json:"scenario_id,omitempty"`
}

// GameResponse is the session snapshot returned by game endpoints.
type GameResponse struct {
	ID      string             `json:"id"`
	Game    *state.SavedGame   `json:"game"`
	Pending *state.PendingRoll `json:"pending_roll,omitempty"`
	Busy    bool               `json:"busy"`
}

type GameHandler struct {
	manager *session.Manager
	roller  dice.Roller
	logger  *slog.Logger
}

func NewGameHandler(manager *session.Manager, logger *slog.Logger) *GameHandler {
	return &GameHandler{
		manager: manager,
		roller:  dice.NewRoller(),
		logger:  logger,
	}
}

// ServeHTTP handles HTTP requests for game sessions
// Routes:
// POST /v1/game         - Create a new game
// GET /v1/game/{id}     - Read a game session
// DELETE /v1/game/{id}  - Delete a game session
func (h *GameHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	id, err := parseGameID(r.URL.Path)
	if err != nil {
		h.logger.Warn("Invalid game ID", "path", r.URL.Path, "error", err)
		writeError(w, h.logger, http.StatusBadRequest, "Invalid game ID format")
		return
	}

	switch r.Method {
	case http.MethodPost:
		h.handleCreate(w, r)

	case http.MethodGet:
		if id == uuid.Nil {
			writeError(w, h.logger, http.StatusBadRequest, "Game ID is required for GET requests")
			return
		}
		h.handleRead(w, r, id)

	case http.MethodDelete:
		if id == uuid.Nil {
			writeError(w, h.logger, http.StatusBadRequest, "Game ID is required for DELETE requests")
			return
		}
		h.handleDelete(w, r, id)

	default:
		h.logger.Warn("Method not allowed for game endpoint", "method", r.Method)
		writeError(w, h.logger, http.StatusMethodNotAllowed,
			"Method not allowed. Supported methods: POST, GET, DELETE")
	}
}

func (h *GameHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Name == "" || req.Class == "" {
		writeError(w, h.logger, http.StatusBadRequest, "Both name and class are required")
		return
	}

	var scen scenario.Scenario
	if req.ScenarioID != "" {
		var ok bool
		scen, ok = scenario.ByID(req.ScenarioID)
		if !ok {
			writeError(w, h.logger, http.StatusBadRequest, "Unknown scenario: "+req.ScenarioID)
			return
		}
	} else {
		scen = scenario.PickRandom()
	}

	stats := state.RollStats(h.roller)
	if req.Stats != nil {
		stats = *req.Stats
	}

	s := h.manager.Create()
	if _, err := s.CreateCharacter(strings.TrimSpace(req.Name), req.Class, stats, scen); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, h.logger, http.StatusCreated, gameResponse(s))
}

func (h *GameHandler) handleRead(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	s, err := h.manager.Get(r.Context(), id)
	if err != nil {
		h.logger.Error("Failed to load game", "id", id.String(), "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to load game")
		return
	}
	if s == nil {
		writeError(w, h.logger, http.StatusNotFound, "Game not found")
		return
	}
	writeJSON(w, h.logger, http.StatusOK, gameResponse(s))
}

func (h *GameHandler) handleDelete(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	if err := h.manager.Delete(r.Context(), id); err != nil {
		if errors.Is(err, session.ErrBusy) {
			writeError(w, h.logger, http.StatusConflict, "A response is in flight")
			return
		}
		h.logger.Error("Failed to delete game", "id", id.String(), "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to delete game")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func gameResponse(s *session.Session) GameResponse {
	resp := GameResponse{
		ID:   s.Store().ID().String(),
		Game: s.Store().Snapshot(),
		Busy: s.Busy(),
	}
	if pr, ok := s.Store().PendingRoll(); ok {
		resp.Pending = &pr
	}
	return resp
}
