package app

import (
	"strings"

	"github.com/charlesng35/studentms/pkg/mail"
)

// SMTPSettings converts EmailConfig to the SMTP transport settings.
func (c EmailConfig) SMTPSettings() mail.SMTPSettings {
	return mail.SMTPSettings{
		Enabled:  c.SMTP.Enabled,
		Host:     strings.TrimSpace(c.SMTP.Host),
		Port:     c.SMTP.Port,
		Username: c.SMTP.Username,
		Password: c.SMTP.Password,
		From:     strings.TrimSpace(c.SMTP.From),
		FromName: strings.TrimSpace(c.SenderName),
		UseTLS:   c.SMTP.UseTLS,
		Timeout:  c.SMTP.Timeout,
	}
}

// PostmarkSettings converts EmailConfig to the Postmark transport settings.
func (c EmailConfig) PostmarkSettings() mail.PostmarkSettings {
	return mail.PostmarkSettings{
		ServerToken:  strings.TrimSpace(c.Postmark.ServerToken),
		AccountToken: strings.TrimSpace(c.Postmark.AccountToken),
		From:         strings.TrimSpace(c.Postmark.From),
		FromName:     strings.TrimSpace(c.SenderName),
		Tag:          strings.TrimSpace(c.Postmark.Tag),
	}
}

// Mailer builds the configured email transport.
func (c EmailConfig) Mailer() (mail.Mailer, error) {
	return mail.NewMailer(c.Provider, c.SMTPSettings(), c.PostmarkSettings())
}
