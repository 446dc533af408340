package notifications

import (
	"context"

	"github.com/charlesng35/studentms/internal/models"
)

// PushSender delivers notifications through a PushGateway.
type PushSender struct {
	dispatcher
	gateway PushGateway
}

func (s *PushSender) ChannelKind() models.Channel { return models.ChannelPush }

func (s *PushSender) Send(ctx context.Context, n *models.Notification) bool {
	return s.dispatch(ctx, n, func(ctx context.Context, n *models.Notification) (string, error) {
		if err := s.gateway.Push(ctx, n.RecipientID, n.Title, n.Message); err != nil {
			return "", err
		}
		return "Push notification sent successfully", nil
	})
}
