package app

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/placereviews/auth-api/pkg/database"
	"go.uber.org/zap"
)

const healthCheckTimeout = 2 * time.Second

// pinger is a backing service the health check probes
type pinger interface {
	Ping(ctx context.Context) error
}

var (
	_ pinger = (*database.Postgres)(nil)
	_ pinger = (*database.Redis)(nil)
)

type HealthChecker struct {
	checks map[string]pinger
	logger *zap.Logger
}

func NewHealthChecker(infra Infrastructure) *HealthChecker {
	return newHealthChecker(infra.Logger(), map[string]pinger{
		"postgres": infra.Postgres(),
		"redis":    infra.Redis(),
	})
}

func newHealthChecker(logger *zap.Logger, checks map[string]pinger) *HealthChecker {
	return &HealthChecker{checks: checks, logger: logger}
}

type checkResult struct {
	name string
	err  error
}

// check pings every dependency concurrently and reports each one's status
func (h *HealthChecker) check(ctx context.Context) (map[string]string, bool) {
	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	results := make(chan checkResult, len(h.checks))
	for name, p := range h.checks {
		go func() {
			results <- checkResult{name: name, err: p.Ping(ctx)}
		}()
	}

	status := make(map[string]string, len(h.checks))
	healthy := true
	for range h.checks {
		r := <-results
		if r.err != nil {
			healthy = false
			status[r.name] = "fail"
			h.logger.Warn("Health check failed", zap.String("dependency", r.name), zap.Error(r.err))
			continue
		}
		status[r.name] = "pass"
	}

	return status, healthy
}

func (h *HealthChecker) Handler(c *gin.Context) {
	checks, healthy := h.check(c.Request.Context())
	if !healthy {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "fail",
			"checks": checks,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "pass",
		"checks": checks,
	})
}
