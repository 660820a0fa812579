package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, logger *slog.Logger, status int, msg string) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(ErrorResponse{Error: msg}); err != nil {
		logger.Error("Failed to encode error response", "error", err)
	}
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, status int, v any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Failed to encode response", "error", err)
	}
}

// parseGameID extracts the session id from a path like
// /v1/game/{id}[/suffix]. Returns uuid.Nil when absent.
func parseGameID(path string) (uuid.UUID, error) {
	rest := strings.TrimPrefix(path, "/v1/game")
	rest = strings.Trim(rest, "/")
	if rest == "" {
		return uuid.Nil, nil
	}
	idStr := rest
	if i := strings.IndexByte(rest, '/'); i >= 0 {
		idStr = rest[:i]
	}
	return uuid.Parse(idStr)
}
