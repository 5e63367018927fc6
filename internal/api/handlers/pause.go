package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/donaldgifford/restock-monitor/internal/metrics"
	"github.com/donaldgifford/restock-monitor/internal/pause"
)

// PauseHandler reads and writes the pause flag.
type PauseHandler struct {
	flag pause.Flag
}

// NewPauseHandler creates a new PauseHandler.
func NewPauseHandler(f pause.Flag) *PauseHandler {
	return &PauseHandler{flag: f}
}

// PauseState is the pause flag as seen through the API.
type PauseState struct {
	Paused  bool   `json:"paused"  doc:"Whether scheduled checks are suspended"`
	Backend string `json:"backend" doc:"Flag storage backend" example:"github"`
}

// PauseOutput is the response for the pause endpoints.
type PauseOutput struct {
	Body PauseState
}

// SetPauseInput is the request for PUT /api/v1/pause.
type SetPauseInput struct {
	Body struct {
		Paused bool `json:"paused" doc:"true to pause, false to resume"`
	}
}

// GetPause returns the current flag value.
func (h *PauseHandler) GetPause(ctx context.Context, _ *struct{}) (*PauseOutput, error) {
	paused, err := h.flag.Paused(ctx)
	if err != nil {
		return nil, huma.Error502BadGateway("reading pause flag: " + err.Error())
	}
	metrics.Paused.Set(boolGauge(paused))
	return &PauseOutput{Body: PauseState{Paused: paused, Backend: h.flag.Backend()}}, nil
}

// SetPause writes the flag.
func (h *PauseHandler) SetPause(ctx context.Context, in *SetPauseInput) (*PauseOutput, error) {
	action := actionFor(in.Body.Paused)

	if err := h.flag.SetPaused(ctx, in.Body.Paused); err != nil {
		metrics.PauseToggleTotal.WithLabelValues(action, "failed").Inc()
		if errors.Is(err, pause.ErrReadOnly) {
			return nil, huma.Error409Conflict(err.Error())
		}
		return nil, huma.Error502BadGateway("writing pause flag: " + err.Error())
	}

	metrics.PauseToggleTotal.WithLabelValues(action, "ok").Inc()
	metrics.Paused.Set(boolGauge(in.Body.Paused))
	return &PauseOutput{Body: PauseState{Paused: in.Body.Paused, Backend: h.flag.Backend()}}, nil
}

// RegisterPauseRoutes registers the pause flag routes with the Huma API.
func RegisterPauseRoutes(api huma.API, h *PauseHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "get-pause",
		Method:      http.MethodGet,
		Path:        "/api/v1/pause",
		Summary:     "Get pause flag",
		Tags:        []string{"pause"},
		Errors:      []int{http.StatusBadGateway},
	}, h.GetPause)

	huma.Register(api, huma.Operation{
		OperationID: "set-pause",
		Method:      http.MethodPut,
		Path:        "/api/v1/pause",
		Summary:     "Pause or resume monitoring",
		Description: "Writes the pause flag. Scheduled checks read it at the start of every run.",
		Tags:        []string{"pause"},
		Errors:      []int{http.StatusConflict, http.StatusBadGateway},
	}, h.SetPause)
}

func actionFor(paused bool) string {
	if paused {
		return "pause"
	}
	return "resume"
}

func boolGauge(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
