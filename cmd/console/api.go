package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type optionsResponse struct {
	Options []string `json:"options"`
}

type inventoryItem struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type inventoryResponse struct {
	Items []inventoryItem `json:"items"`
}

type diceResponse struct {
	Notation string   `json:"notation"`
	Symbols  []string `json:"symbols"`
	Total    int      `json:"total"`
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

// postAction runs one escape-room action and returns the player-facing
// message.
func postAction(client *http.Client, baseURL, action string, body map[string]string) (string, error) {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := client.Post(
		baseURL+"/v1/escape/"+action,
		"application/json",
		bytes.NewBuffer(jsonData),
	)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errorResp ErrorResponse
		if err := json.Unmarshal(respBody, &errorResp); err != nil {
			return "", fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(respBody))
		}
		return "", fmt.Errorf("%s failed: %s", action, errorResp.Error)
	}

	var msg messageResponse
	if err := json.Unmarshal(respBody, &msg); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	return msg.Message, nil
}

func listRooms(client *http.Client, baseURL string) ([]string, error) {
	resp, err := client.Get(baseURL + "/v1/escape/rooms")
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API returned status %d", resp.StatusCode)
	}

	var payload map[string][]string
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}
	return payload["rooms"], nil
}

func getOptions(client *http.Client, baseURL, player string) ([]string, error) {
	resp, err := client.Get(baseURL + "/v1/escape/options/" + player)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API returned status %d", resp.StatusCode)
	}

	var payload optionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}
	return payload.Options, nil
}

func getInventory(client *http.Client, baseURL, player string) ([]inventoryItem, error) {
	resp, err := client.Get(baseURL + "/v1/escape/inventory/" + player)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API returned status %d", resp.StatusCode)
	}

	var payload inventoryResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}
	return payload.Items, nil
}

func rollDice(client *http.Client, baseURL, notation string) (*diceResponse, error) {
	jsonData, err := json.Marshal(map[string]string{"notation": notation})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := client.Post(
		baseURL+"/v1/dice/roll",
		"application/json",
		bytes.NewBuffer(jsonData),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errorResp ErrorResponse
		if err := json.Unmarshal(respBody, &errorResp); err != nil {
			return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(respBody))
		}
		return nil, fmt.Errorf("roll failed: %s", errorResp.Error)
	}

	var roll diceResponse
	if err := json.Unmarshal(respBody, &roll); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return &roll, nil
}
