package notifications

import (
	"context"
	"fmt"

	"github.com/charlesng35/studentms/internal/models"
	"github.com/charlesng35/studentms/pkg/mail"
)

// EmailSender delivers notifications as HTML email.
type EmailSender struct {
	dispatcher
	mailer     mail.Mailer
	from       string
	senderName string
}

func (s *EmailSender) ChannelKind() models.Channel { return models.ChannelEmail }

func (s *EmailSender) Send(ctx context.Context, n *models.Notification) bool {
	return s.dispatch(ctx, n, s.deliver)
}

func (s *EmailSender) deliver(ctx context.Context, n *models.Notification) (string, error) {
	to := n.Email()
	if to == "" {
		return "", ErrMissingEmail
	}
	if s.mailer == nil {
		return "", fmt.Errorf("email transport is not configured")
	}

	body, err := RenderEmailBody(s.senderName, n.Message, s.now())
	if err != nil {
		return "", fmt.Errorf("render email body: %w", err)
	}

	if err := s.mailer.Send(ctx, mail.Message{
		From:    s.from,
		To:      []string{to},
		Subject: n.Title,
		Body:    body,
		HTML:    true,
	}); err != nil {
		return "", err
	}
	return "Email sent successfully", nil
}
