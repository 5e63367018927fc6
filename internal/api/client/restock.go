package client

import (
	"context"

	domain "github.com/donaldgifford/restock-monitor/pkg/types"
)

// PauseState mirrors the body of the /api/v1/pause endpoints.
type PauseState struct {
	Paused  bool   `json:"paused"`
	Backend string `json:"backend"`
}

// SnapshotItem is one row of GET /api/v1/snapshot.
type SnapshotItem struct {
	Code    string `json:"code"`
	Name    string `json:"name,omitempty"`
	InStock bool   `json:"in_stock"`
}

// Check runs a stock check on the server and returns its report.
func (c *Client) Check(ctx context.Context) (*domain.RunReport, error) {
	var report domain.RunReport
	if err := c.post(ctx, "/api/v1/check", nil, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// GetPause returns the server's pause flag.
func (c *Client) GetPause(ctx context.Context) (*PauseState, error) {
	var st PauseState
	if err := c.get(ctx, "/api/v1/pause", &st); err != nil {
		return nil, err
	}
	return &st, nil
}

// SetPause pauses (true) or resumes (false) monitoring on the server.
func (c *Client) SetPause(ctx context.Context, paused bool) (*PauseState, error) {
	body := struct {
		Paused bool `json:"paused"`
	}{Paused: paused}

	var st PauseState
	if err := c.put(ctx, "/api/v1/pause", body, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

// Snapshot returns the server's persisted availability snapshot.
func (c *Client) Snapshot(ctx context.Context) ([]SnapshotItem, error) {
	var out struct {
		Items []SnapshotItem `json:"items"`
	}
	if err := c.get(ctx, "/api/v1/snapshot", &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}
