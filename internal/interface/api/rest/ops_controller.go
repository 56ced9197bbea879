package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// HealthCheck probes a dependency; a nil error means healthy.
type HealthCheck func(ctx context.Context) error

type OpsController struct {
	checks map[string]HealthCheck
	logger *zap.Logger
}

func NewOpsController(r *gin.Engine, logger *zap.Logger, checks map[string]HealthCheck) *OpsController {
	oc := &OpsController{
		checks: checks,
		logger: logger,
	}

	r.GET(RouteHealth, oc.HealthHandler)
	r.GET(RouteMetrics, gin.WrapH(promhttp.Handler()))

	return oc
}

func (oc *OpsController) HealthHandler(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	report := make(map[string]string, len(oc.checks))
	for name, check := range oc.checks {
		if err := check(ctx); err != nil {
			oc.logger.Warn("health check failed", zap.String("check", name), zap.Error(err))
			report[name] = "down"
			status = http.StatusServiceUnavailable
			continue
		}
		report[name] = "up"
	}

	c.JSON(status, gin.H{"status": http.StatusText(status), "checks": report})
}
