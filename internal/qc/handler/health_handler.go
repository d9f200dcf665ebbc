package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Check tests one dependency.
type Check func(ctx context.Context) error

// HealthHandler serves liveness, readiness and version.
type HealthHandler struct {
	version   string
	buildTime string
	checks    map[string]Check
}

func NewHealthHandler(version, buildTime string) *HealthHandler {
	return &HealthHandler{version: version, buildTime: buildTime, checks: map[string]Check{}}
}

// AddCheck registers a readiness check.
func (h *HealthHandler) AddCheck(name string, check Check) {
	h.checks[name] = check
}

func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ready reports 503 when any check fails.
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	results := gin.H{}
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			status = http.StatusServiceUnavailable
			results[name] = err.Error()
			continue
		}
		results[name] = "ok"
	}
	state := "ok"
	if status != http.StatusOK {
		state = "unavailable"
	}
	c.JSON(status, gin.H{"status": state, "checks": results})
}

func (h *HealthHandler) Version(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"version":    h.version,
		"build_time": h.buildTime,
	})
}
