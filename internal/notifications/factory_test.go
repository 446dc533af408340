package notifications

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/charlesng35/studentms/internal/models"
)

func TestNewFactoryRequiresStore(t *testing.T) {
	_, err := NewFactory(FactoryDeps{})
	require.Error(t, err)
}

func TestFactoryCreateSenderMatchesChannel(t *testing.T) {
	f := newFixture(t)

	for _, channel := range models.Channels() {
		for i := 0; i < 3; i++ {
			sender, err := f.factory.CreateSender(channel)
			require.NoError(t, err)
			require.Equal(t, channel, sender.ChannelKind())
		}
	}
}

func TestFactoryCreateSenderConcreteTypes(t *testing.T) {
	f := newFixture(t)

	cases := map[models.Channel]any{
		models.ChannelEmail: &EmailSender{},
		models.ChannelSMS:   &SMSSender{},
		models.ChannelInApp: &InAppSender{},
		models.ChannelPush:  &PushSender{},
	}
	for channel, want := range cases {
		sender, err := f.factory.CreateSender(channel)
		require.NoError(t, err)
		require.IsType(t, want, sender)
	}
}

func TestFactoryRejectsUnknownChannel(t *testing.T) {
	f := newFixture(t)

	sender, err := f.factory.CreateSender(models.Channel("Fax"))
	require.Nil(t, sender)
	require.ErrorIs(t, err, ErrUnknownChannel)
	require.Contains(t, err.Error(), "Fax")
}

func TestNewFactoryDefaultsOptionalCollaborators(t *testing.T) {
	f := newFixture(t)

	factory, err := NewFactory(FactoryDeps{Store: f.store})
	require.NoError(t, err)
	require.IsType(t, &LogSMSGateway{}, factory.deps.SMS)
	require.IsType(t, &LogPushGateway{}, factory.deps.Push)
	require.Equal(t, DefaultSenderName, factory.deps.SenderName)
}
