package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/openquest/dungeonmaster/pkg/scenario"
	"github.com/openquest/dungeonmaster/pkg/state"
)

// ScenariosHandler lists the starting scenarios and character classes
// available for new games.
// GET /v1/scenarios
type ScenariosHandler struct {
	logger *slog.Logger
}

type ScenariosResponse struct {
	Scenarios []scenario.Scenario        `json:"scenarios"`
	Classes   map[string]state.ClassInfo `json:"classes"`
}

func NewScenariosHandler(logger *slog.Logger) *ScenariosHandler {
	return &ScenariosHandler{logger: logger}
}

func (h *ScenariosHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodGet {
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Only GET is supported.")
		return
	}

	response := ScenariosResponse{
		Scenarios: scenario.All(),
		Classes:   state.Classes,
	}
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.logger.Error("Failed to encode scenarios response", "error", err)
	}
}
