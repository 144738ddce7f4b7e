// handlers_stats.go - Recency-window statistics handler
package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/ml-punto-tech/sentiment-api/internal/stats"
)

// StatsHandlerImpl implements the StatsHandler interface
type StatsHandlerImpl struct {
	stats StatsProvider
}

// NewStatsHandler creates a new stats handler
func NewStatsHandler(s StatsProvider) StatsHandler {
	return &StatsHandlerImpl{stats: s}
}

// HandleStats aggregates the newest predictions.
// The snapshot is returned without the envelope.
func (h *StatsHandlerImpl) HandleStats(c echo.Context) error {
	limit := stats.DefaultWindow
	if raw := c.QueryParam("last"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < stats.MinWindow || n > stats.MaxWindow {
			return NewValidationError(fmt.Sprintf("last must be an integer between %d and %d", stats.MinWindow, stats.MaxWindow))
		}
		limit = n
	}

	snap, err := h.stats.Snapshot(c.Request().Context(), limit)
	if err != nil {
		return NewInternalError("failed to compute statistics", err)
	}

	return render(c, http.StatusOK, snap)
}
