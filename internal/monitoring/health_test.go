package monitoring_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/charlesng35/studentms/internal/database/testutil"
	"github.com/charlesng35/studentms/internal/monitoring"
	"github.com/charlesng35/studentms/internal/monitoring/checks"
)

func TestHealthManagerEvaluate(t *testing.T) {
	t.Parallel()

	manager := monitoring.NewHealthManager()
	manager.RegisterReadiness(monitoring.NewCheck("database", func(context.Context) monitoring.ProbeResult {
		return monitoring.ProbeResult{Status: monitoring.StatusUp}
	}))
	manager.RegisterReadiness(monitoring.NewCheck("redis", func(context.Context) monitoring.ProbeResult {
		return monitoring.ProbeResult{Status: monitoring.StatusDegraded, Details: "connection refused"}
	}))
	manager.RegisterReadiness(monitoring.NewCheck("", nil))

	report := manager.EvaluateReadiness(context.Background())
	require.False(t, report.Success)
	require.Equal(t, monitoring.StatusDegraded, report.Status)
	require.Len(t, report.Checks, 2)
	require.Equal(t, "database", report.Checks[0].Component)
	require.Equal(t, "redis", report.Checks[1].Component)

	live := manager.EvaluateLiveness(context.Background())
	require.True(t, live.Success)
	require.Empty(t, live.Checks)
}

func TestHealthManagerRecoversPanickingProbe(t *testing.T) {
	t.Parallel()

	manager := monitoring.NewHealthManager()
	manager.RegisterLiveness(monitoring.NewCheck("broken", func(context.Context) monitoring.ProbeResult {
		panic("probe exploded")
	}))

	report := manager.EvaluateLiveness(context.Background())
	require.False(t, report.Success)
	require.Equal(t, monitoring.StatusDown, report.Status)
	require.Equal(t, "probe exploded", report.Checks[0].Details)
	require.Equal(t, "broken", report.Checks[0].Component)
}

func TestMergeReportsKeepsWorstStatus(t *testing.T) {
	t.Parallel()

	live := monitoring.HealthReport{Checks: []monitoring.ProbeResult{{Component: "process", Status: monitoring.StatusUp}}}
	ready := monitoring.HealthReport{Checks: []monitoring.ProbeResult{
		{Component: "redis", Status: monitoring.StatusDegraded},
		{Component: "database", Status: monitoring.StatusDown},
	}}

	merged := monitoring.MergeReports(live, ready)
	require.Equal(t, monitoring.StatusDown, merged.Status)
	require.Len(t, merged.Checks, 3)
}

func TestResultFromError(t *testing.T) {
	t.Parallel()

	require.Equal(t, monitoring.StatusUp, monitoring.ResultFromError("db", nil, -time.Second).Status)
	require.Equal(t, monitoring.StatusDegraded, monitoring.ResultFromError("db", context.DeadlineExceeded, 0).Status)

	down := monitoring.ResultFromError("db", errors.New("refused"), time.Millisecond)
	require.Equal(t, monitoring.StatusDown, down.Status)
	require.Equal(t, "refused", down.Details)
}

func TestDatabaseCheck(t *testing.T) {
	t.Parallel()

	db := testutil.MustOpenTestDB(t)
	result := checks.Database(db, 0).Run(context.Background())
	require.Equal(t, monitoring.StatusUp, result.Status)

	result = checks.Database(nil, 0).Run(context.Background())
	require.Equal(t, monitoring.StatusDown, result.Status)
}

func TestDatabaseCheckReportsExhaustedPool(t *testing.T) {
	t.Parallel()

	db := testutil.MustOpenTestDB(t)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(2)

	conn, err := sqlDB.Conn(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	result := checks.Database(db, 0).Run(context.Background())
	require.Equal(t, monitoring.StatusUp, result.Status)

	held, err := sqlDB.Conn(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { _ = held.Close() })

	result = checks.Database(db, 50*time.Millisecond).Run(context.Background())
	require.NotEqual(t, monitoring.StatusUp, result.Status)
}

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

func TestRedisCheck(t *testing.T) {
	t.Parallel()

	require.Equal(t, monitoring.StatusUp, checks.Redis(nil, false, 0).Run(context.Background()).Status)
	require.Equal(t, monitoring.StatusDegraded, checks.Redis(nil, true, 0).Run(context.Background()).Status)
	require.Equal(t, monitoring.StatusUp, checks.Redis(pinger{}, true, 0).Run(context.Background()).Status)

	failed := checks.Redis(pinger{err: errors.New("dial tcp: refused")}, true, 0).Run(context.Background())
	require.Equal(t, monitoring.StatusDegraded, failed.Status)
	require.Contains(t, failed.Details, "refused")
}

type reporterState struct {
	at    time.Time
	stale int64
	err   error
}

func (r reporterState) LastRun() (time.Time, int64, error) { return r.at, r.stale, r.err }

func TestReporterCheck(t *testing.T) {
	t.Parallel()

	run := func(state checks.ReporterState) monitoring.ProbeResult {
		return checks.Reporter(state, time.Minute).Run(context.Background())
	}

	require.Equal(t, monitoring.StatusUp, run(nil).Status)
	require.Equal(t, monitoring.StatusUp, run(reporterState{}).Status)
	require.Equal(t, monitoring.StatusUp, run(reporterState{at: time.Now()}).Status)
	require.Equal(t, monitoring.StatusDegraded, run(reporterState{at: time.Now(), err: errors.New("count failed")}).Status)
	require.Equal(t, monitoring.StatusDegraded, run(reporterState{at: time.Now().Add(-time.Hour)}).Status)

	stuck := run(reporterState{at: time.Now(), stale: 3})
	require.Equal(t, monitoring.StatusDegraded, stuck.Status)
	require.Equal(t, "3 notifications stuck in Pending", stuck.Details)
}
