package mail

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeSession struct {
	from   string
	rcpt   []string
	data   bytes.Buffer
	quit   bool
	closed bool
}

func (s *fakeSession) Mail(from string) error { s.from = from; return nil }
func (s *fakeSession) Rcpt(to string) error { s.rcpt = append(s.rcpt, to); return nil }
func (s *fakeSession) Data() (io.WriteCloser, error) { return nopWriteCloser{&s.data}, nil }
func (s *fakeSession) Quit() error { s.quit = true; return nil }
func (s *fakeSession) Close() error { s.closed = true; return nil }

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

func newFakeMailer(t *testing.T, cfg SMTPSettings) (*smtpMailer, *fakeSession) {
	t.Helper()
	m, err := NewSMTPMailer(cfg)
	require.NoError(t, err)

	sm := m.(*smtpMailer)
	session := &fakeSession{}
	sm.dial = func(context.Context, SMTPSettings) (smtpSession, error) { return session, nil }
	sm.now = func() time.Time { return time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC) }
	return sm, session
}

func TestNewSMTPMailerValidatesConfig(t *testing.T) {
	_, err := NewSMTPMailer(SMTPSettings{Enabled: true})
	require.ErrorContains(t, err, "host is required")

	_, err = NewSMTPMailer(SMTPSettings{Enabled: true, Host: "smtp.example.com"})
	require.ErrorContains(t, err, "port is required")

	mailer, err := NewSMTPMailer(SMTPSettings{Enabled: false})
	require.NoError(t, err)
	require.Positive(t, mailer.(*smtpMailer).cfg.Timeout)
}

func TestSMTPMailerSendDisabled(t *testing.T) {
	mailer, err := NewSMTPMailer(SMTPSettings{Enabled: false})
	require.NoError(t, err)

	err = mailer.Send(context.Background(), Message{To: []string{"test@example.com"}, Subject: "Test", Body: "Hello"})
	require.ErrorIs(t, err, ErrSMTPDisabled)
}

func TestSMTPMailerSendsHTMLWithDisplayName(t *testing.T) {
	mailer, session := newFakeMailer(t, SMTPSettings{
		Enabled:  true,
		Host:     "smtp.example.com",
		Port:     587,
		From:     "no-reply@example.com",
		FromName: "StudentMS",
	})

	err := mailer.Send(context.Background(), Message{
		To:      []string{"a@example.com", "a@example.com", " "},
		Subject: "Exam",
		Body:    "<p>Room 4</p>",
		HTML:    true,
	})
	require.NoError(t, err)
	require.Equal(t, "no-reply@example.com", session.from)
	require.Equal(t, []string{"a@example.com"}, session.rcpt)
	require.True(t, session.quit)
	require.True(t, session.closed)

	raw := session.data.String()
	require.Contains(t, raw, "From: \"StudentMS\" <no-reply@example.com>\r\n")
	require.Contains(t, raw, "Date: Mon, 02 Mar 2026 09:00:00 +0000\r\n")
	require.Contains(t, raw, "@example.com>\r\n")
	require.Contains(t, raw, "Content-Type: text/html; charset=UTF-8\r\n\r\n<p>Room 4</p>")
}

func TestSMTPMailerRejectsBadEnvelopeBeforeDialing(t *testing.T) {
	mailer, _ := newFakeMailer(t, SMTPSettings{Enabled: true, Host: "smtp.example.com", Port: 587, From: "no-reply@example.com"})
	mailer.dial = func(context.Context, SMTPSettings) (smtpSession, error) {
		return nil, errors.New("dial should not happen")
	}

	err := mailer.Send(context.Background(), Message{To: []string{"not-an-address"}, Subject: "x", Body: "y"})
	require.ErrorContains(t, err, "invalid recipient")

	err = mailer.Send(context.Background(), Message{To: []string{" "}, Subject: "x", Body: "y"})
	require.ErrorContains(t, err, "at least one recipient")
}

func TestSMTPMailerRequiresSender(t *testing.T) {
	mailer, _ := newFakeMailer(t, SMTPSettings{Enabled: true, Host: "smtp.example.com", Port: 25})

	err := mailer.Send(context.Background(), Message{To: []string{"a@example.com"}, Subject: "x", Body: "y"})
	require.ErrorContains(t, err, "sender address is required")
}

func TestComposeFlattensSubjectLineBreaks(t *testing.T) {
	env, err := newEnvelope(Message{To: []string{"to@example.com"}}, "from@example.com", "")
	require.NoError(t, err)

	content := env.compose(Message{Subject: "Subject\r\nBreak", Body: "Body"}, time.Unix(0, 0).UTC())
	require.Contains(t, content, "From: <from@example.com>\r\n")
	require.Contains(t, content, "Subject: Subject  Break\r\n")
	require.Contains(t, content, "Content-Type: text/plain; charset=UTF-8")
	require.True(t, strings.HasSuffix(content, "\r\n\r\nBody"))
}
