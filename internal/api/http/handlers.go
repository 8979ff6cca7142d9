// Package http serves the pipe server's admin endpoints: health, Prometheus
// metrics and JSON loop stats.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/pipefilter/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/pipefilter/internal/pipeserver"
)

// StatsSource reports spawn loop counters. *pipeserver.Server implements it.
type StatsSource interface {
	Stats() pipeserver.Stats
}

// Handlers contains the admin HTTP handlers
type Handlers struct {
	stats   StatsSource
	metrics *monitoring.Metrics
}

// NewHandlers creates admin handlers. metrics may be nil.
func NewHandlers(stats StatsSource, metrics *monitoring.Metrics) *Handlers {
	return &Handlers{stats: stats, metrics: metrics}
}

// Health reports whether the pipe pair is in place.
func (h *Handlers) Health(c *gin.Context) {
	stats := h.stats.Stats()

	status, code := "ok", http.StatusOK
	switch {
	case !stats.PipesExist:
		status, code = "pipes missing", http.StatusServiceUnavailable
	case stats.BreakerOpen:
		status, code = "breaker open", http.StatusServiceUnavailable
	}

	c.JSON(code, gin.H{
		"status":       status,
		"pipes_exist":  stats.PipesExist,
		"breaker_open": stats.BreakerOpen,
	})
}

// Stats returns loop counters and, when available, request counters.
func (h *Handlers) Stats(c *gin.Context) {
	resp := gin.H{"server": h.stats.Stats()}
	if h.metrics != nil {
		resp["requests"] = h.metrics.Snapshot()
	}
	c.JSON(http.StatusOK, resp)
}
