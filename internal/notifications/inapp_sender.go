package notifications

import (
	"context"

	"github.com/charlesng35/studentms/internal/models"
)

// EventNotificationCreated is published to live subscribers when an InApp notification lands.
const EventNotificationCreated = "notification.created"

// InAppSender delivers notifications to the recipient inbox. The persisted record is
// the delivery; live subscribers are told about it once it is Delivered.
type InAppSender struct {
	dispatcher
	publisher Publisher
}

func (s *InAppSender) ChannelKind() models.Channel { return models.ChannelInApp }

func (s *InAppSender) Send(ctx context.Context, n *models.Notification) bool {
	ok := s.dispatch(ctx, n, func(context.Context, *models.Notification) (string, error) {
		return "In-app notification created", nil
	})
	if ok && s.publisher != nil {
		s.publisher.Publish(n.RecipientID, EventNotificationCreated, *n)
	}
	return ok
}
