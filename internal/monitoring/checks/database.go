package checks

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/charlesng35/studentms/internal/monitoring"
)

const defaultDatabaseTimeout = 2 * time.Second

// Database pings the notification store. A reachable store whose pool has every
// connection checked out reports degraded with the pool counters in Details.
func Database(db *gorm.DB, timeout time.Duration) monitoring.Check {
	timeout = orDefault(timeout, defaultDatabaseTimeout)

	return monitoring.NewCheck("database", func(ctx context.Context) monitoring.ProbeResult {
		if db == nil {
			return monitoring.ProbeResult{Status: monitoring.StatusDown, Details: "database not configured"}
		}

		start := time.Now()
		sqlDB, err := db.DB()
		if err == nil {
			probeCtx, cancel := context.WithTimeout(ctx, timeout)
			err = sqlDB.PingContext(probeCtx)
			cancel()
		}
		result := monitoring.ResultFromError("database", err, time.Since(start))
		if err != nil {
			return result
		}

		if stats := sqlDB.Stats(); stats.MaxOpenConnections > 0 && stats.InUse >= stats.MaxOpenConnections {
			result.Status = monitoring.StatusDegraded
			result.Details = fmt.Sprintf("connection pool exhausted: in_use=%d max=%d wait_count=%d",
				stats.InUse, stats.MaxOpenConnections, stats.WaitCount)
		}
		return result
	})
}

func orDefault(provided, fallback time.Duration) time.Duration {
	if provided <= 0 {
		return fallback
	}
	return provided
}
