package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/studentms/internal/monitoring"
)

type healthProbe func(ctx context.Context) monitoring.HealthReport

// registerHealthRoutes mounts /health, /health/live and /health/ready on the root and
// again under /api. With monitoring disabled the same paths answer 404.
func registerHealthRoutes(r *gin.Engine, enabled bool, manager *monitoring.HealthManager) {
	routers := []gin.IRouter{r, r.Group("/api")}

	if !enabled || manager == nil {
		for _, router := range routers {
			for _, path := range []string{"/health", "/health/live", "/health/ready"} {
				router.GET(path, healthDisabled)
			}
		}
		return
	}

	combined := func(ctx context.Context) monitoring.HealthReport {
		return monitoring.MergeReports(manager.EvaluateLiveness(ctx), manager.EvaluateReadiness(ctx))
	}
	for _, router := range routers {
		router.GET("/health", serveHealth(combined, false))
		router.GET("/health/live", serveHealth(manager.EvaluateLiveness, true))
		router.GET("/health/ready", serveHealth(manager.EvaluateReadiness, true))
	}
}

func serveHealth(probe healthProbe, withChecks bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		report := probe(c.Request.Context())

		body := gin.H{
			"success":    report.Status != monitoring.StatusDown,
			"status":     report.Status,
			"checked_at": time.Now().UTC(),
		}
		if withChecks {
			body["checks"] = report.Checks
		}

		status := http.StatusOK
		if report.Status == monitoring.StatusDown {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, body)
	}
}

func healthDisabled(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"success": false, "status": "disabled"})
}
