package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/openquest/dungeonmaster/pkg/scenario"
	"github.com/openquest/dungeonmaster/pkg/state"
)

// GameResponse matches the API's game session snapshot.
type GameResponse struct {
	ID      string             `json:"id"`
	Game    *state.SavedGame   `json:"game"`
	Pending *state.PendingRoll `json:"pending_roll,omitempty"`
	Busy    bool               `json:"busy"`
}

// CreateGameRequest matches the API's create-game body. Stats are
// omitted so the server rolls them.
type CreateGameRequest struct {
	Name       string `json:"name"`
	Class      string `json:"class"`
	ScenarioID string `json:"scenario_id,omitempty"`
}

// ScenariosResponse matches GET /v1/scenarios.
type ScenariosResponse struct {
	Scenarios []scenario.Scenario        `json:"scenarios"`
	Classes   map[string]state.ClassInfo `json:"classes"`
}

// RollResult is the payload of the "roll" SSE event.
type RollResult struct {
	Notation  string `json:"notation"`
	Total     int    `json:"total"`
	Rolls     []int  `json:"rolls"`
	Modifier  int    `json:"modifier"`
	Breakdown string `json:"breakdown"`
}

func testConnection(client *http.Client, baseURL string) bool {
	resp, err := client.Get(baseURL + "/health")
	if err != nil {
		return false
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()
	return resp.StatusCode == http.StatusOK
}

func getScenarios(client *http.Client, baseURL string) (*ScenariosResponse, error) {
	resp, err := client.Get(baseURL + "/v1/scenarios")
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, apiError(resp.StatusCode, body, "failed to list scenarios")
	}

	var scenarios ScenariosResponse
	if err := json.Unmarshal(body, &scenarios); err != nil {
		return nil, fmt.Errorf("failed to parse scenarios response: %w", err)
	}
	return &scenarios, nil
}

func createGame(client *http.Client, baseURL string, name string, class string, scenarioID string) (*GameResponse, error) {
	req := CreateGameRequest{
		Name:       name,
		Class:      class,
		ScenarioID: scenarioID,
	}

	jsonData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := client.Post(
		baseURL+"/v1/game",
		"application/json",
		bytes.NewBuffer(jsonData),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusCreated {
		return nil, apiError(resp.StatusCode, body, "failed to create game")
	}

	var game GameResponse
	if err := json.Unmarshal(body, &game); err != nil {
		return nil, fmt.Errorf("failed to parse game response: %w", err)
	}
	return &game, nil
}

func getGame(client *http.Client, baseURL string, gameID uuid.UUID) (*GameResponse, error) {
	resp, err := client.Get(fmt.Sprintf("%s/v1/game/%s", baseURL, gameID))
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, apiError(resp.StatusCode, body, "failed to get game")
	}

	var game GameResponse
	if err := json.Unmarshal(body, &game); err != nil {
		return nil, fmt.Errorf("failed to parse game response: %w", err)
	}
	return &game, nil
}

// streamEvent is one parsed event from a chat or roll SSE stream.
type streamEvent struct {
	Type    string
	Content string
	Roll    *RollResult
	Err     error
}

// streamChat posts a player action and returns a channel of parsed SSE
// events. The channel closes when the stream ends.
func streamChat(client *http.Client, baseURL string, gameID uuid.UUID, message string) (<-chan streamEvent, error) {
	jsonData, err := json.Marshal(map[string]string{"message": message})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	url := fmt.Sprintf("%s/v1/game/%s/chat", baseURL, gameID)
	return openStream(client, url, bytes.NewBuffer(jsonData))
}

// streamRoll resolves the pending dice roll and streams the follow-up
// narration. The first event is a "roll" event carrying the result.
func streamRoll(client *http.Client, baseURL string, gameID uuid.UUID) (<-chan streamEvent, error) {
	url := fmt.Sprintf("%s/v1/game/%s/roll", baseURL, gameID)
	return openStream(client, url, bytes.NewReader(nil))
}

func openStream(client *http.Client, url string, body io.Reader) (<-chan streamEvent, error) {
	req, err := http.NewRequest(http.MethodPost, url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		return nil, apiError(resp.StatusCode, respBody, "stream request failed")
	}

	events := make(chan streamEvent)
	go func() {
		defer close(events)
		defer func() {
			_ = resp.Body.Close()
		}()

		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 64*1024), 1024*1024)

		var eventType string
		for scanner.Scan() {
			line := scanner.Text()

			if line == "" {
				eventType = ""
				continue
			}
			if strings.HasPrefix(line, "event: ") {
				eventType = strings.TrimPrefix(line, "event: ")
				continue
			}
			if !strings.HasPrefix(line, "data: ") {
				continue
			}
			data := strings.TrimPrefix(line, "data: ")

			switch eventType {
			case "chunk":
				var payload struct {
					Content string `json:"content"`
				}
				if err := json.Unmarshal([]byte(data), &payload); err == nil {
					events <- streamEvent{Type: "chunk", Content: payload.Content}
				}
			case "roll":
				var roll RollResult
				if err := json.Unmarshal([]byte(data), &roll); err == nil {
					events <- streamEvent{Type: "roll", Roll: &roll}
				}
			case "error":
				var payload struct {
					Error string `json:"error"`
				}
				if err := json.Unmarshal([]byte(data), &payload); err == nil {
					events <- streamEvent{Type: "error", Err: fmt.Errorf("%s", payload.Error)}
				}
			case "done":
				events <- streamEvent{Type: "done"}
			}
		}
		if err := scanner.Err(); err != nil {
			events <- streamEvent{Type: "error", Err: fmt.Errorf("error reading stream: %w", err)}
		}
	}()

	return events, nil
}

func apiError(status int, body []byte, context string) error {
	var errorResp ErrorResponse
	if err := json.Unmarshal(body, &errorResp); err != nil || errorResp.Error == "" {
		return fmt.Errorf("API returned status %d: %s", status, string(body))
	}
	return fmt.Errorf("%s: %s", context, errorResp.Error)
}
