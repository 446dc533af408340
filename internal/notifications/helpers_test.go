package notifications

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/charlesng35/studentms/internal/database/testutil"
	"github.com/charlesng35/studentms/internal/models"
	"github.com/charlesng35/studentms/pkg/mail"
)

var fixedNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

type recordingMailer struct {
	mu       sync.Mutex
	messages []mail.Message
	err      error
}

func (m *recordingMailer) Send(_ context.Context, msg mail.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, msg)
	return m.err
}

func (m *recordingMailer) sent() []mail.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]mail.Message(nil), m.messages...)
}

type stubSMS struct {
	calls int
	err   error
	panic bool
}

func (s *stubSMS) SendSMS(context.Context, string, string) error {
	s.calls++
	if s.panic {
		panic("carrier exploded")
	}
	return s.err
}

type stubPush struct {
	err error
}

func (s *stubPush) Push(context.Context, uint, string, string) error { return s.err }

type publishedEvent struct {
	recipientID uint
	event       string
	payload     any
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (p *recordingPublisher) Publish(recipientID uint, event string, payload any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{recipientID: recipientID, event: event, payload: payload})
}

type staticDirectory struct {
	recipients []Recipient
	err        error
}

func (d staticDirectory) ListRecipients(context.Context) ([]Recipient, error) {
	return d.recipients, d.err
}

var errGatewayDown = errors.New("gateway unavailable")

type fixture struct {
	db        *gorm.DB
	store     *Store
	mailer    *recordingMailer
	sms       *stubSMS
	push      *stubPush
	publisher *recordingPublisher
	factory   *Factory
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	store, err := NewStore(db)
	require.NoError(t, err)

	f := &fixture{
		db:        db,
		store:     store,
		mailer:    &recordingMailer{},
		sms:       &stubSMS{},
		push:      &stubPush{},
		publisher: &recordingPublisher{},
	}
	f.factory, err = NewFactory(FactoryDeps{
		Store:     store,
		Mailer:    f.mailer,
		SMS:       f.sms,
		Push:      f.push,
		Publisher: f.publisher,
		Now:       fixedClock,
	})
	require.NoError(t, err)
	return f
}

func (f *fixture) manager(t *testing.T, opts ...ManagerOption) *Manager {
	t.Helper()
	m, err := NewManager(f.store, f.factory, opts...)
	require.NoError(t, err)
	return m
}

func (f *fixture) pending(t *testing.T, channel models.Channel, email, phone string) *models.Notification {
	t.Helper()
	n := &models.Notification{
		BaseModel:      models.BaseModel{CreatedAt: fixedNow},
		RecipientID:    7,
		Title:          "Reminder",
		Message:        "Submit by Friday",
		Channel:        channel,
		Priority:       models.DefaultPriority,
		RecipientEmail: optional(email),
		RecipientPhone: optional(phone),
	}
	require.NoError(t, f.store.CreatePending(context.Background(), n))
	return n
}

func (f *fixture) reload(t *testing.T, id uint) *models.Notification {
	t.Helper()
	n, err := f.store.Get(context.Background(), id)
	require.NoError(t, err)
	return n
}

func (f *fixture) logs(t *testing.T, id uint) []models.NotificationLog {
	t.Helper()
	rows, err := f.store.Logs(context.Background(), id)
	require.NoError(t, err)
	return rows
}

func (f *fixture) count(t *testing.T, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(model).Count(&n).Error)
	return n
}
