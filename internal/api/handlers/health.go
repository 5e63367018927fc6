package handlers

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
)

// PauseReader reads the pause flag. Readiness depends on its backend being
// reachable.
type PauseReader interface {
	Paused(ctx context.Context) (bool, error)
}

// HealthHandler provides health and readiness endpoints.
type HealthHandler struct {
	flag PauseReader
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(f PauseReader) *HealthHandler {
	return &HealthHandler{flag: f}
}

// Healthz returns 200 if the process is running.
func (*HealthHandler) Healthz(c echo.Context) error {
	return c.JSON(http.StatusOK, StatusResponse{Status: "ok"})
}

// Readyz returns 200 if the pause flag backend answers, 503 otherwise.
func (h *HealthHandler) Readyz(c echo.Context) error {
	if h.flag != nil {
		if _, err := h.flag.Paused(c.Request().Context()); err != nil {
			return c.JSON(http.StatusServiceUnavailable, StatusResponse{Status: "unavailable"})
		}
	}
	return c.JSON(http.StatusOK, StatusResponse{Status: "ready"})
}
