package mail

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/mrz1836/postmark"
)

// PostmarkSettings configure the Postmark transactional transport.
type PostmarkSettings struct {
	ServerToken  string
	AccountToken string
	From         string
	FromName     string
	Tag          string
	// BaseURL overrides the Postmark API endpoint. Empty keeps the client default.
	BaseURL string
}

type postmarkMailer struct {
	client *postmark.Client
	cfg    PostmarkSettings
}

// NewPostmarkMailer returns a Mailer delivering through the Postmark API.
func NewPostmarkMailer(cfg PostmarkSettings) (Mailer, error) {
	if strings.TrimSpace(cfg.ServerToken) == "" {
		return nil, errors.New("postmark: server token is required")
	}
	if strings.TrimSpace(cfg.From) == "" {
		return nil, errors.New("postmark: sender address is required")
	}
	if _, err := mail.ParseAddress(cfg.From); err != nil {
		return nil, fmt.Errorf("postmark: invalid from address: %w", err)
	}

	client := postmark.NewClient(cfg.ServerToken, cfg.AccountToken)
	if cfg.BaseURL != "" {
		client.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}

	return &postmarkMailer{client: client, cfg: cfg}, nil
}

func (m *postmarkMailer) Send(ctx context.Context, msg Message) error {
	env, err := newEnvelope(msg, m.cfg.From, m.cfg.FromName)
	if err != nil {
		return fmt.Errorf("postmark: %w", err)
	}

	email := postmark.Email{
		From:    env.from.String(),
		To:      strings.Join(env.to, ","),
		Subject: msg.Subject,
		Tag:     m.cfg.Tag,
	}
	if msg.HTML {
		email.HTMLBody = msg.Body
		email.TrackOpens = true
	} else {
		email.TextBody = msg.Body
	}

	resp, err := m.client.SendEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("postmark: send: %w", err)
	}
	if resp.ErrorCode > 0 {
		return fmt.Errorf("postmark: error %d: %s", resp.ErrorCode, resp.Message)
	}
	return nil
}

// Provider names accepted by NewMailer.
const (
	ProviderSMTP     = "smtp"
	ProviderPostmark = "postmark"
)

// NewMailer selects the email transport by provider name.
func NewMailer(provider string, smtpCfg SMTPSettings, postmarkCfg PostmarkSettings) (Mailer, error) {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case "", ProviderSMTP:
		return NewSMTPMailer(smtpCfg)
	case ProviderPostmark:
		return NewPostmarkMailer(postmarkCfg)
	default:
		return nil, fmt.Errorf("mail: unsupported provider %q", provider)
	}
}
