package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	domain "github.com/donaldgifford/restock-monitor/pkg/types"
)

// Checker runs one stock check.
type Checker interface {
	RunCheck(ctx context.Context) (*domain.RunReport, error)
}

// History reports the outcome of the most recent run.
type History interface {
	LastRun() (*domain.RunReport, time.Time, error)
}

// CheckHandler handles manual check trigger requests.
type CheckHandler struct {
	checker Checker
	history History
}

// NewCheckHandler creates a new CheckHandler.
func NewCheckHandler(c Checker) *CheckHandler {
	return &CheckHandler{checker: c}
}

// WithHistory enables GET /api/v1/check/last.
func (h *CheckHandler) WithHistory(hist History) *CheckHandler {
	h.history = hist
	return h
}

// CheckOutput is the response for POST /api/v1/check.
type CheckOutput struct {
	Body *domain.RunReport
}

// Check runs a check immediately and returns its report.
func (h *CheckHandler) Check(ctx context.Context, _ *struct{}) (*CheckOutput, error) {
	report, err := h.checker.RunCheck(ctx)
	if err != nil {
		return nil, huma.Error500InternalServerError("check failed: " + err.Error())
	}
	return &CheckOutput{Body: report}, nil
}

// LastCheckOutput is the response for GET /api/v1/check/last.
type LastCheckOutput struct {
	Body struct {
		At     time.Time         `json:"at" doc:"When the run started"`
		Error  string            `json:"error,omitempty" doc:"Run failure, if any"`
		Report *domain.RunReport `json:"report,omitempty"`
	}
}

// LastCheck returns the most recent run, scheduled or manual.
func (h *CheckHandler) LastCheck(_ context.Context, _ *struct{}) (*LastCheckOutput, error) {
	report, at, err := h.history.LastRun()
	if report == nil && err == nil {
		return nil, huma.Error404NotFound("no check has run yet")
	}

	resp := &LastCheckOutput{}
	resp.Body.At = at
	resp.Body.Report = report
	if err != nil {
		resp.Body.Error = err.Error()
	}
	return resp, nil
}

// RegisterCheckRoutes registers the check trigger with the Huma API.
func RegisterCheckRoutes(api huma.API, h *CheckHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "trigger-check",
		Method:      http.MethodPost,
		Path:        "/api/v1/check",
		Summary:     "Run a stock check",
		Description: "Fetches every tracked page, updates the snapshot and " +
			"sends restock notifications. Honors the pause flag.",
		Tags:   []string{"check"},
		Errors: []int{http.StatusInternalServerError},
	}, h.Check)

	if h.history != nil {
		huma.Register(api, huma.Operation{
			OperationID: "last-check",
			Method:      http.MethodGet,
			Path:        "/api/v1/check/last",
			Summary:     "Get the last check",
			Tags:        []string{"check"},
			Errors:      []int{http.StatusNotFound},
		}, h.LastCheck)
	}
}
