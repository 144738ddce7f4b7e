// handlers_health.go - Health check handlers
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

const healthProbeTimeout = 2 * time.Second

// HealthHandlerImpl implements the HealthHandler interface
type HealthHandlerImpl struct {
	version string
	model   ModelChecker
	store   Pinger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(version string, model ModelChecker, store Pinger) HealthHandler {
	return &HealthHandlerImpl{
		version: version,
		model:   model,
		store:   store,
	}
}

// HandleHealth returns server health status.
// The service stays up when a dependency is down; it reports "degraded".
func (h *HealthHandlerImpl) HandleHealth(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), healthProbeTimeout)
	defer cancel()

	status := "ok"

	model := "unknown"
	if h.model != nil {
		if st, err := h.model.Health(ctx); err != nil {
			model = "unavailable"
			status = "degraded"
		} else if !st.ModelLoaded {
			model = "not_loaded"
			status = "degraded"
		} else {
			model = "ok"
		}
	}

	store := "unknown"
	if h.store != nil {
		if err := h.store.Ping(ctx); err != nil {
			store = "unavailable"
			status = "degraded"
		} else {
			store = "ok"
		}
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":  status,
		"version": h.version,
		"model":   model,
		"store":   store,
	})
}
