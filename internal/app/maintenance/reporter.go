package maintenance

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/charlesng35/studentms/internal/models"
	"github.com/charlesng35/studentms/internal/services"
	"github.com/charlesng35/studentms/pkg/logger"
	"github.com/charlesng35/studentms/pkg/metrics"
)

const (
	defaultStatusSpec = "@every 1m"
	defaultStaleAfter = 15 * time.Minute
	staleSampleSize   = 10
)

// Report is the outcome of one reporter pass.
type Report struct {
	Counts       map[models.Status]int64
	StalePending int64
	// StaleIDs holds a bounded sample of stuck notification IDs, oldest first.
	StaleIDs []uint
}

// Reporter periodically publishes notification status counts and flags records that stay
// Pending longer than the stale threshold. It only reads; records are never modified.
type Reporter struct {
	db         *gorm.DB
	cron       *cron.Cron
	now        func() time.Time
	log        *zap.Logger
	schedule   string
	staleAfter time.Duration

	mu        sync.RWMutex
	lastRun   time.Time
	lastStale int64
	lastErr   error
}

// Option customises the Reporter.
type Option func(*Reporter)

// WithCron injects a preconfigured cron instance, primarily for testing.
func WithCron(c *cron.Cron) Option {
	return func(r *Reporter) {
		if c != nil {
			r.cron = c
		}
	}
}

// WithNow overrides the clock used for stale comparisons.
func WithNow(now func() time.Time) Option {
	return func(r *Reporter) {
		if now != nil {
			r.now = now
		}
	}
}

// WithSchedule overrides the cron expression of the status job.
func WithSchedule(spec string) Option {
	return func(r *Reporter) {
		if spec != "" {
			r.schedule = spec
		}
	}
}

// WithStaleAfter sets how long a record may stay Pending before it is reported.
func WithStaleAfter(d time.Duration) Option {
	return func(r *Reporter) {
		if d > 0 {
			r.staleAfter = d
		}
	}
}

// NewReporter constructs a Reporter with defaults applied.
func NewReporter(db *gorm.DB, opts ...Option) (*Reporter, error) {
	if db == nil {
		return nil, errors.New("maintenance reporter: db is required")
	}

	r := &Reporter{
		db:         db,
		now:        time.Now,
		log:        logger.WithModule("maintenance"),
		schedule:   defaultStatusSpec,
		staleAfter: defaultStaleAfter,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.cron == nil {
		r.cron = cron.New(cron.WithLogger(cron.DiscardLogger))
	}
	return r, nil
}

// Start registers the status job and launches the scheduler.
func (r *Reporter) Start() error {
	if _, err := r.cron.AddFunc(r.schedule, func() {
		if _, err := r.RunOnce(context.Background()); err != nil {
			r.log.Warn("notification status report failed", zap.Error(err))
		}
	}); err != nil {
		return fmt.Errorf("maintenance reporter: schedule %q: %w", r.schedule, err)
	}
	r.cron.Start()
	return nil
}

// Stop halts the scheduler. The returned context is done once running jobs finish.
func (r *Reporter) Stop() context.Context {
	return r.cron.Stop()
}

// RunOnce refreshes the status gauges and the stale Pending count. Both steps run even
// when one fails; their errors are combined.
func (r *Reporter) RunOnce(ctx context.Context) (Report, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	var (
		report Report
		errs   error
	)

	counts, err := services.CountNotificationsByStatus(ctx, r.db)
	if err != nil {
		errs = multierr.Append(errs, err)
	} else {
		report.Counts = counts
		for status, total := range counts {
			metrics.NotificationsByStatus.WithLabelValues(string(status)).Set(float64(total))
		}
	}

	stale, ids, err := r.stalePending(ctx)
	if err != nil {
		errs = multierr.Append(errs, err)
	} else {
		report.StalePending = stale
		report.StaleIDs = ids
		metrics.StalePendingNotifications.Set(float64(stale))
		if stale > 0 {
			r.log.Warn("notifications stuck in pending",
				zap.Int64("count", stale),
				zap.Uints("sample_ids", ids),
				zap.Duration("stale_after", r.staleAfter),
			)
		}
	}

	r.mu.Lock()
	r.lastRun = r.now()
	r.lastStale = report.StalePending
	r.lastErr = errs
	r.mu.Unlock()

	return report, errs
}

// LastRun reports the time, stale count and error of the most recent pass.
func (r *Reporter) LastRun() (time.Time, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lastRun, r.lastStale, r.lastErr
}

func (r *Reporter) stalePending(ctx context.Context) (int64, []uint, error) {
	cutoff := r.now().Add(-r.staleAfter)
	query := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("status = ? AND created_at < ?", models.StatusPending, cutoff)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return 0, nil, fmt.Errorf("count stale pending notifications: %w", err)
	}
	if total == 0 {
		return 0, nil, nil
	}

	var ids []uint
	if err := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("status = ? AND created_at < ?", models.StatusPending, cutoff).
		Order("created_at ASC").
		Limit(staleSampleSize).
		Pluck("id", &ids).Error; err != nil {
		return 0, nil, fmt.Errorf("sample stale pending notifications: %w", err)
	}
	return total, ids, nil
}
