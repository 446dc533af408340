package maintenance

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	dbtestutil "github.com/charlesng35/studentms/internal/database/testutil"
	"github.com/charlesng35/studentms/internal/models"
	"github.com/charlesng35/studentms/pkg/metrics"
)

type fixedClock struct {
	current time.Time
}

func (c *fixedClock) Now() time.Time {
	return c.current
}

func seedNotification(t *testing.T, db *gorm.DB, status models.Status, createdAt time.Time) models.Notification {
	t.Helper()

	n := models.Notification{
		RecipientID: 1,
		Title:       "Exam schedule",
		Message:     "Finals start Monday",
		Channel:     models.ChannelInApp,
		Status:      status,
		Priority:    models.DefaultPriority,
	}
	require.NoError(t, db.Create(&n).Error)
	require.NoError(t, db.Model(&n).UpdateColumn("created_at", createdAt).Error)
	return n
}

func TestReporterRunOnce(t *testing.T) {
	db := dbtestutil.MustOpenTestDB(t, dbtestutil.WithAutoMigrate())
	clock := &fixedClock{current: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)}

	stuck := seedNotification(t, db, models.StatusPending, clock.Now().Add(-2*time.Hour))
	seedNotification(t, db, models.StatusPending, clock.Now().Add(-time.Minute))
	seedNotification(t, db, models.StatusDelivered, clock.Now().Add(-3*time.Hour))
	seedNotification(t, db, models.StatusFailed, clock.Now().Add(-3*time.Hour))

	reporter, err := NewReporter(db,
		WithNow(clock.Now),
		WithStaleAfter(time.Hour),
		WithCron(cron.New(cron.WithLogger(cron.DiscardLogger))),
	)
	require.NoError(t, err)

	report, err := reporter.RunOnce(context.Background())
	require.NoError(t, err)

	require.Equal(t, int64(2), report.Counts[models.StatusPending])
	require.Equal(t, int64(1), report.Counts[models.StatusDelivered])
	require.Equal(t, int64(1), report.Counts[models.StatusFailed])
	require.Equal(t, int64(1), report.StalePending)
	require.Equal(t, []uint{stuck.ID}, report.StaleIDs)

	require.Equal(t, float64(2), testutil.ToFloat64(metrics.NotificationsByStatus.WithLabelValues(string(models.StatusPending))))
	require.Equal(t, float64(1), testutil.ToFloat64(metrics.StalePendingNotifications))

	at, stale, lastErr := reporter.LastRun()
	require.Equal(t, clock.Now(), at)
	require.Equal(t, int64(1), stale)
	require.NoError(t, lastErr)

	var reloaded models.Notification
	require.NoError(t, db.First(&reloaded, stuck.ID).Error)
	require.Equal(t, models.StatusPending, reloaded.Status)
}

func TestReporterRunOnceCombinesErrors(t *testing.T) {
	db := dbtestutil.MustOpenTestDB(t)

	reporter, err := NewReporter(db)
	require.NoError(t, err)

	_, err = reporter.RunOnce(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "count notifications by status")
	require.Contains(t, err.Error(), "count stale pending notifications")

	_, _, lastErr := reporter.LastRun()
	require.Error(t, lastErr)
}

func TestReporterStartRejectsInvalidSchedule(t *testing.T) {
	db := dbtestutil.MustOpenTestDB(t)

	reporter, err := NewReporter(db, WithSchedule("not a schedule"))
	require.NoError(t, err)
	require.Error(t, reporter.Start())

	_, err = NewReporter(nil)
	require.Error(t, err)
}

func TestReporterStartAndStop(t *testing.T) {
	db := dbtestutil.MustOpenTestDB(t, dbtestutil.WithAutoMigrate())

	reporter, err := NewReporter(db, WithSchedule("@every 1h"))
	require.NoError(t, err)
	require.NoError(t, reporter.Start())

	<-reporter.Stop().Done()
}
