package notifications

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/charlesng35/studentms/internal/models"
	"github.com/charlesng35/studentms/pkg/logger"
	"github.com/charlesng35/studentms/pkg/mail"
)

// FactoryDeps are the collaborators handed to every sender the factory builds.
type FactoryDeps struct {
	Store     *Store
	Mailer    mail.Mailer
	SMS       SMSGateway
	Push      PushGateway
	Publisher Publisher

	// EmailFrom overrides the transport default sender address.
	EmailFrom  string
	SenderName string

	Now    func() time.Time
	Logger *zap.Logger
}

// Factory maps a channel to its Sender. It has no side effects.
type Factory struct {
	deps FactoryDeps
}

// NewFactory validates deps and fills defaults for optional collaborators.
func NewFactory(deps FactoryDeps) (*Factory, error) {
	if deps.Store == nil {
		return nil, errors.New("notification factory: store is required")
	}
	if deps.SMS == nil {
		deps.SMS = NewLogSMSGateway("")
	}
	if deps.Push == nil {
		deps.Push = NewLogPushGateway("")
	}
	if deps.SenderName == "" {
		deps.SenderName = DefaultSenderName
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Logger == nil {
		deps.Logger = logger.WithModule("notifications")
	}
	return &Factory{deps: deps}, nil
}

// Clock is the time source shared by the senders and the manager built on this factory.
func (f *Factory) Clock() func() time.Time {
	return f.deps.Now
}

// CreateSender returns a sender whose ChannelKind equals channel.
func (f *Factory) CreateSender(channel models.Channel) (Sender, error) {
	base := newDispatcher(channel, f.deps.Store, f.deps.Now, f.deps.Logger)

	switch channel {
	case models.ChannelEmail:
		return &EmailSender{dispatcher: base, mailer: f.deps.Mailer, from: f.deps.EmailFrom, senderName: f.deps.SenderName}, nil
	case models.ChannelSMS:
		return &SMSSender{dispatcher: base, gateway: f.deps.SMS}, nil
	case models.ChannelInApp:
		return &InAppSender{dispatcher: base, publisher: f.deps.Publisher}, nil
	case models.ChannelPush:
		return &PushSender{dispatcher: base, gateway: f.deps.Push}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownChannel, channel)
	}
}
