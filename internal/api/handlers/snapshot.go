package handlers

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	domain "github.com/donaldgifford/restock-monitor/pkg/types"
)

// SnapshotLoader reads the persisted availability snapshot.
type SnapshotLoader interface {
	Load(ctx context.Context) (map[string]bool, error)
}

// SnapshotHandler handles GET /api/v1/snapshot.
type SnapshotHandler struct {
	store SnapshotLoader
	names map[string]string
}

// NewSnapshotHandler creates a SnapshotHandler. Items supply display names.
func NewSnapshotHandler(s SnapshotLoader, items []domain.TrackedItem) *SnapshotHandler {
	names := make(map[string]string, len(items))
	for _, it := range items {
		names[it.Code] = it.Name
	}
	return &SnapshotHandler{store: s, names: names}
}

// SnapshotRow is one item of the snapshot response.
type SnapshotRow struct {
	Code    string `json:"code"`
	Name    string `json:"name,omitempty"`
	InStock bool   `json:"in_stock"`
}

// SnapshotOutput is the response for GET /api/v1/snapshot.
type SnapshotOutput struct {
	Body struct {
		Items []SnapshotRow `json:"items"`
	}
}

// GetSnapshot returns the persisted snapshot sorted by item code.
func (h *SnapshotHandler) GetSnapshot(ctx context.Context, _ *struct{}) (*SnapshotOutput, error) {
	snap, err := h.store.Load(ctx)
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to load snapshot")
	}

	out := &SnapshotOutput{}
	out.Body.Items = make([]SnapshotRow, 0, len(snap))
	for _, e := range domain.Entries(snap) {
		out.Body.Items = append(out.Body.Items, SnapshotRow{
			Code:    e.Code,
			Name:    h.names[e.Code],
			InStock: e.InStock,
		})
	}
	return out, nil
}

// RegisterSnapshotRoutes registers the snapshot route with the Huma API.
func RegisterSnapshotRoutes(api huma.API, h *SnapshotHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "get-snapshot",
		Method:      http.MethodGet,
		Path:        "/api/v1/snapshot",
		Summary:     "Get availability snapshot",
		Description: "Returns the last confirmed availability of every item seen so far.",
		Tags:        []string{"snapshot"},
		Errors:      []int{http.StatusInternalServerError},
	}, h.GetSnapshot)
}
