package checks

import (
	"context"
	"fmt"
	"time"

	"github.com/charlesng35/studentms/internal/monitoring"
)

const defaultReporterMaxAge = 10 * time.Minute

// ReporterState exposes the outcome of the most recent maintenance run.
type ReporterState interface {
	LastRun() (at time.Time, stalePending int64, err error)
}

// Reporter degrades readiness when the status reporter fails, falls behind, or finds
// notifications stuck in Pending. A reporter that has not run yet reports up.
func Reporter(state ReporterState, maxAge time.Duration) monitoring.Check {
	maxAge = orDefault(maxAge, defaultReporterMaxAge)

	return monitoring.NewCheck("notification_reporter", func(context.Context) monitoring.ProbeResult {
		if state == nil {
			return monitoring.ProbeResult{Status: monitoring.StatusUp, Details: "reporter disabled"}
		}

		at, stale, err := state.LastRun()
		switch {
		case at.IsZero():
			return monitoring.ProbeResult{Status: monitoring.StatusUp, Details: "pending first run"}
		case err != nil:
			return monitoring.ProbeResult{Status: monitoring.StatusDegraded, Details: err.Error()}
		case time.Since(at) > maxAge:
			return monitoring.ProbeResult{
				Status:  monitoring.StatusDegraded,
				Details: "last run " + at.UTC().Format(time.RFC3339),
			}
		case stale > 0:
			return monitoring.ProbeResult{
				Status:  monitoring.StatusDegraded,
				Details: fmt.Sprintf("%d notifications stuck in Pending", stale),
			}
		}
		return monitoring.ProbeResult{Status: monitoring.StatusUp}
	})
}
