package notifications

import (
	"context"
	"time"

	"github.com/charlesng35/studentms/internal/models"
)

// Audit actions written to notification_logs.action.
const (
	ActionEmailSend   = "Email Send"
	ActionSMSSend     = "SMS Send"
	ActionInAppCreate = "InApp Create"
	ActionPushSend    = "Push Send"
)

func actionFor(channel models.Channel) string {
	switch channel {
	case models.ChannelEmail:
		return ActionEmailSend
	case models.ChannelSMS:
		return ActionSMSSend
	case models.ChannelInApp:
		return ActionInAppCreate
	case models.ChannelPush:
		return ActionPushSend
	default:
		return string(channel)
	}
}

type auditLogger struct {
	store *Store
}

func (a *auditLogger) record(ctx context.Context, n *models.Notification, at time.Time, details string) error {
	return a.store.AppendLog(ctx, &models.NotificationLog{
		NotificationID: n.ID,
		LogDate:        at,
		Action:         actionFor(n.Channel),
		Details:        details,
	})
}

func failureDetails(err error) string {
	return "Failed: " + err.Error()
}
