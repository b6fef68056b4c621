package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ferminhg/poker-planning/models"
)

// RoomClient talks to the room resource over HTTP. It implements the
// sync engine's RoomAPI boundary.
type RoomClient struct {
	baseURL string
	client  *http.Client
}

// NewRoomClient creates a client for a server base URL, e.g.
// "http://localhost:8080".
func NewRoomClient(baseURL string) *RoomClient {
	return &RoomClient{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Fetch returns the room state, or (nil, nil) when the room does not
// exist yet.
func (c *RoomClient) Fetch(ctx context.Context, roomID string) (*models.RoomState, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.roomURL(roomID), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch room: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp)
	}

	var state models.RoomState
	if err := json.NewDecoder(resp.Body).Decode(&state); err != nil {
		return nil, fmt.Errorf("failed to decode room state: %w", err)
	}
	return &state, nil
}

// Push writes a candidate state and returns the persisted state the
// server answered with. Callers must adopt the returned value as their
// new baseline; the server re-stamps and may further normalize it.
func (c *RoomClient) Push(ctx context.Context, roomID string, state *models.RoomState) (*models.RoomState, error) {
	body, err := json.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("failed to encode room state: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.roomURL(roomID), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to push room: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp)
	}

	var result struct {
		Success bool              `json:"success"`
		State   *models.RoomState `json:"state"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode push response: %w", err)
	}
	if !result.Success || result.State == nil {
		return nil, fmt.Errorf("push rejected for room %s", roomID)
	}
	return result.State, nil
}

// Remove deletes the room. Removing an absent room is not an error.
func (c *RoomClient) Remove(ctx context.Context, roomID string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.roomURL(roomID), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to delete room: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return statusError(resp)
	}
	return nil
}

func (c *RoomClient) roomURL(roomID string) string {
	return c.baseURL + "/room/" + roomID
}

func statusError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return fmt.Errorf("server returned status %d: %s", resp.StatusCode, string(body))
}
