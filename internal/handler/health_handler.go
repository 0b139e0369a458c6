package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger is a dependency the health check probes.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports liveness and dependency reachability.
type HealthHandler struct {
	deps map[string]Pinger
}

// NewHealthHandler creates a HealthHandler probing deps by name.
func NewHealthHandler(deps map[string]Pinger) *HealthHandler {
	return &HealthHandler{deps: deps}
}

// Health godoc
// @Summary      Health check
// @Tags         health
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      503  {object}  map[string]interface{}
// @Router       /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	checks := make(map[string]string, len(h.deps))
	for name, dep := range h.deps {
		if err := dep.Ping(ctx); err != nil {
			checks[name] = "unreachable"
			status = http.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}

	state := "ok"
	if status != http.StatusOK {
		state = "degraded"
	}
	c.JSON(status, gin.H{"status": state, "checks": checks})
}
