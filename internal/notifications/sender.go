package notifications

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/charlesng35/studentms/internal/models"
	"github.com/charlesng35/studentms/pkg/metrics"
)

// Sender delivers a persisted Pending notification over one channel.
// Send never panics and never returns an error: every failure is recorded on the
// notification and reported as false.
type Sender interface {
	Send(ctx context.Context, n *models.Notification) bool
	ChannelKind() models.Channel
}

// deliverFunc performs the channel-specific transmission and returns the audit details.
type deliverFunc func(ctx context.Context, n *models.Notification) (string, error)

// dispatcher implements the algorithm shared by every channel: deliver, record the
// outcome on the notification, then append the audit entry.
type dispatcher struct {
	channel models.Channel
	store   *Store
	audit   *auditLogger
	now     func() time.Time
	log     *zap.Logger
}

func newDispatcher(channel models.Channel, store *Store, now func() time.Time, log *zap.Logger) dispatcher {
	return dispatcher{
		channel: channel,
		store:   store,
		audit:   &auditLogger{store: store},
		now:     now,
		log:     log.With(zap.String("channel", string(channel))),
	}
}

func (d *dispatcher) dispatch(ctx context.Context, n *models.Notification, deliver deliverFunc) bool {
	if n == nil {
		d.log.Error("dispatch called without notification")
		return false
	}
	if n.Channel != d.channel {
		d.log.Error("notification routed to wrong sender",
			zap.Uint("notification_id", n.ID),
			zap.String("notification_channel", string(n.Channel)),
		)
		return false
	}

	started := time.Now()
	defer func() {
		metrics.NotificationDispatchLatency.WithLabelValues(string(d.channel)).Observe(time.Since(started).Seconds())
	}()

	fields := []zap.Field{
		zap.Uint("notification_id", n.ID),
		zap.Uint("recipient_id", n.RecipientID),
	}

	details, deliveryErr := d.safeDeliver(ctx, n, deliver)

	// The outcome must land even when the caller went away mid-delivery.
	persistCtx := context.WithoutCancel(ensureContext(ctx))
	concludedAt := d.stamp(n)

	status := models.StatusDelivered
	var errMsg *string
	if deliveryErr != nil {
		status = models.StatusFailed
		msg := deliveryErr.Error()
		errMsg = &msg
		details = failureDetails(deliveryErr)
	}

	if err := d.store.SaveOutcome(persistCtx, n, status, concludedAt, errMsg); err != nil {
		d.log.Error("persist notification outcome", append(fields, zap.Error(err))...)
		metrics.NotificationDispatches.WithLabelValues(string(d.channel), "error").Inc()
		return false
	}

	if err := d.audit.record(persistCtx, n, concludedAt, details); err != nil {
		d.log.Error("append notification log", append(fields, zap.Error(err))...)
		metrics.NotificationDispatches.WithLabelValues(string(d.channel), "error").Inc()
		return false
	}

	if deliveryErr != nil {
		d.log.Warn("notification delivery failed", append(fields, zap.Error(deliveryErr))...)
		metrics.NotificationDispatches.WithLabelValues(string(d.channel), "failed").Inc()
		return false
	}

	d.log.Info("notification delivered", fields...)
	metrics.NotificationDispatches.WithLabelValues(string(d.channel), "delivered").Inc()
	return true
}

func (d *dispatcher) safeDeliver(ctx context.Context, n *models.Notification, deliver deliverFunc) (details string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s delivery panicked: %v", d.channel, r)
		}
	}()
	return deliver(ensureContext(ctx), n)
}

// stamp never precedes the record's creation, so SentDate and LogDate stay at or
// after CreatedDate even across clock skew.
func (d *dispatcher) stamp(n *models.Notification) time.Time {
	now := d.now()
	if now.Before(n.CreatedAt) {
		return n.CreatedAt
	}
	return now
}
