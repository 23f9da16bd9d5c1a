package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stwalsh4118/randwise/api/internal/middleware"
)

const (
	// APIVersion is the current version of the API
	APIVersion = "0.1.0"
	// HealthCheckTimeout is the timeout for each dependency health check
	HealthCheckTimeout = 2 * time.Second
)

// Checker is a dependency the service needs to be ready, such as the
// Postgres pool or the Redis cache.
type Checker interface {
	Name() string
	Ping(ctx context.Context) error
}

// HealthHandler handles health check and readiness endpoints.
type HealthHandler struct {
	checkers  []Checker
	startTime time.Time
	env       string
}

// NewHealthHandler creates a new HealthHandler instance. With no checkers
// the service is always ready.
func NewHealthHandler(env string, checkers ...Checker) *HealthHandler {
	return &HealthHandler{
		checkers:  checkers,
		startTime: time.Now(),
		env:       env,
	}
}

// HealthResponse represents the basic health check response.
type HealthResponse struct {
	Status string `json:"status"`
}

// ReadyResponse represents the readiness check response.
type ReadyResponse struct {
	Status       string            `json:"status"`
	Dependencies map[string]string `json:"dependencies"`
}

// InfoResponse represents the API information response.
type InfoResponse struct {
	Version     string `json:"version"`
	Environment string `json:"environment"`
	Uptime      string `json:"uptime"`
}

// Health handles GET /health endpoint.
// This is a liveness check and does not touch any dependency.
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status: "healthy",
	})
}

// Ready handles GET /health/ready endpoint.
// Every registered dependency is pinged; any failure yields 503.
func (h *HealthHandler) Ready(c *gin.Context) {
	deps := make(map[string]string, len(h.checkers))
	ready := true

	for _, checker := range h.checkers {
		ctx, cancel := context.WithTimeout(c.Request.Context(), HealthCheckTimeout)
		err := checker.Ping(ctx)
		cancel()

		if err != nil {
			ready = false
			deps[checker.Name()] = "disconnected"
			if log := middleware.GetLogger(c); log != nil {
				log.Error("Dependency health check failed", err, map[string]interface{}{
					"dependency": checker.Name(),
					"timeout":    HealthCheckTimeout.String(),
				})
			}
			continue
		}
		deps[checker.Name()] = "connected"
	}

	if !ready {
		c.JSON(http.StatusServiceUnavailable, ReadyResponse{
			Status:       "not_ready",
			Dependencies: deps,
		})
		return
	}

	c.JSON(http.StatusOK, ReadyResponse{
		Status:       "ready",
		Dependencies: deps,
	})
}

// Info handles GET /api/v1/info endpoint.
func (h *HealthHandler) Info(c *gin.Context) {
	uptime := time.Since(h.startTime)

	c.JSON(http.StatusOK, InfoResponse{
		Version:     APIVersion,
		Environment: h.env,
		Uptime:      formatUptime(uptime),
	})
}

// formatUptime formats a duration into a human-readable string.
func formatUptime(d time.Duration) string {
	days := int(d.Hours() / 24)
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm %ds", days, hours, minutes, seconds)
	}
	return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
}
