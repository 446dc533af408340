package mail

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrSMTPDisabled signals that SMTP delivery is disabled via configuration.
var ErrSMTPDisabled = errors.New("smtp: delivery disabled")

// Message is one outbound email. From may be empty to use the transport's sender.
type Message struct {
	From    string
	To      []string
	Subject string
	Body    string
	HTML    bool
}

// Mailer delivers a Message through some transport.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// envelope holds the parsed sender and the de-duplicated recipient list.
type envelope struct {
	from *mail.Address
	to   []string
}

func newEnvelope(msg Message, defaultFrom, defaultName string) (envelope, error) {
	seen := make(map[string]struct{}, len(msg.To))
	var to []string
	for _, raw := range msg.To {
		addr := strings.TrimSpace(raw)
		if addr == "" {
			continue
		}
		if _, dup := seen[addr]; dup {
			continue
		}
		if _, err := mail.ParseAddress(addr); err != nil {
			return envelope{}, fmt.Errorf("invalid recipient address %q: %w", addr, err)
		}
		seen[addr] = struct{}{}
		to = append(to, addr)
	}
	if len(to) == 0 {
		return envelope{}, errors.New("at least one recipient is required")
	}

	sender := strings.TrimSpace(msg.From)
	if sender == "" {
		sender = defaultFrom
	}
	if sender == "" {
		return envelope{}, errors.New("sender address is required")
	}
	from, err := mail.ParseAddress(sender)
	if err != nil {
		return envelope{}, fmt.Errorf("invalid from address: %w", err)
	}
	if from.Name == "" {
		from.Name = defaultName
	}
	return envelope{from: from, to: to}, nil
}

// compose renders an RFC 5322 message with CRLF header lines.
func (e envelope) compose(msg Message, now time.Time) string {
	contentType := "text/plain; charset=UTF-8"
	if msg.HTML {
		contentType = "text/html; charset=UTF-8"
	}

	var b strings.Builder
	for _, h := range [][2]string{
		{"From", e.from.String()},
		{"To", strings.Join(e.to, ", ")},
		{"Subject", encodeHeader(msg.Subject)},
		{"Date", now.Format(time.RFC1123Z)},
		{"Message-ID", "<" + uuid.NewString() + "@" + domainOf(e.from.Address) + ">"},
		{"MIME-Version", "1.0"},
		{"Content-Type", contentType},
	} {
		b.WriteString(h[0] + ": " + h[1] + "\r\n")
	}
	b.WriteString("\r\n")
	b.WriteString(msg.Body)
	return b.String()
}

func encodeHeader(value string) string {
	value = strings.NewReplacer("\r", " ", "\n", " ").Replace(value)
	return mime.QEncoding.Encode("utf-8", value)
}

func domainOf(address string) string {
	if at := strings.LastIndexByte(address, '@'); at >= 0 && at < len(address)-1 {
		return address[at+1:]
	}
	return "localhost"
}
