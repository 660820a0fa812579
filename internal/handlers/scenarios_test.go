package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScenariosHandler_List(t *testing.T) {
	handler := NewScenariosHandler(handlerTestLogger())

	req := httptest.NewRequest(http.MethodGet, "/v1/scenarios", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var resp ScenariosResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Len(t, resp.Scenarios, 12)
	assert.Len(t, resp.Classes, 4)
	assert.Contains(t, resp.Classes, "Warrior")
}

func TestScenariosHandler_MethodNotAllowed(t *testing.T) {
	handler := NewScenariosHandler(handlerTestLogger())

	req := httptest.NewRequest(http.MethodPost, "/v1/scenarios", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}
