package notifications

import (
	"context"

	"github.com/charlesng35/studentms/internal/models"
)

// SMSSender delivers notifications as text messages through an SMSGateway.
type SMSSender struct {
	dispatcher
	gateway SMSGateway
}

func (s *SMSSender) ChannelKind() models.Channel { return models.ChannelSMS }

func (s *SMSSender) Send(ctx context.Context, n *models.Notification) bool {
	return s.dispatch(ctx, n, func(ctx context.Context, n *models.Notification) (string, error) {
		phone := n.Phone()
		if phone == "" {
			return "", ErrMissingPhone
		}
		if err := s.gateway.SendSMS(ctx, phone, n.Message); err != nil {
			return "", err
		}
		return "SMS sent successfully", nil
	})
}
