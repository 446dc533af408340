package notifications

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/charlesng35/studentms/pkg/logger"
)

// SMSGateway transmits a text message to a phone number.
type SMSGateway interface {
	SendSMS(ctx context.Context, phone, body string) error
}

// PushGateway delivers a push notification to the devices of a recipient.
type PushGateway interface {
	Push(ctx context.Context, recipientID uint, title, body string) error
}

// Publisher fans a notification event out to live subscribers of a recipient.
type Publisher interface {
	Publish(recipientID uint, event string, payload any)
}

// LogSMSGateway only logs outgoing messages. It stands in until a carrier is integrated.
type LogSMSGateway struct {
	SenderID string
	log      *zap.Logger
}

// NewLogSMSGateway returns a logging SMS gateway.
func NewLogSMSGateway(senderID string) *LogSMSGateway {
	return &LogSMSGateway{SenderID: strings.TrimSpace(senderID), log: logger.WithModule("sms")}
}

func (g *LogSMSGateway) SendSMS(_ context.Context, phone, body string) error {
	g.log.Info("sms dispatched",
		zap.String("sender_id", g.SenderID),
		zap.String("phone", phone),
		zap.Int("length", len(body)),
	)
	return nil
}

// LogPushGateway only logs push payloads.
type LogPushGateway struct {
	AppID string
	log   *zap.Logger
}

// NewLogPushGateway returns a logging push gateway.
func NewLogPushGateway(appID string) *LogPushGateway {
	return &LogPushGateway{AppID: strings.TrimSpace(appID), log: logger.WithModule("push")}
}

func (g *LogPushGateway) Push(_ context.Context, recipientID uint, title, _ string) error {
	g.log.Info("push dispatched",
		zap.String("app_id", g.AppID),
		zap.Uint("recipient_id", recipientID),
		zap.String("title", title),
	)
	return nil
}
