package models

import (
	"fmt"
	"strings"
	"time"
)

// Channel identifies the delivery mechanism of a notification.
type Channel string

const (
	ChannelEmail Channel = "Email"
	ChannelSMS   Channel = "SMS"
	ChannelInApp Channel = "InApp"
	ChannelPush  Channel = "Push"
)

// Channels lists every supported channel in declaration order.
func Channels() []Channel {
	return []Channel{ChannelEmail, ChannelSMS, ChannelInApp, ChannelPush}
}

// Valid reports whether c is one of the supported channels.
func (c Channel) Valid() bool {
	switch c {
	case ChannelEmail, ChannelSMS, ChannelInApp, ChannelPush:
		return true
	default:
		return false
	}
}

// ParseChannel resolves a channel name case-insensitively.
func ParseChannel(value string) (Channel, error) {
	trimmed := strings.TrimSpace(value)
	for _, c := range Channels() {
		if strings.EqualFold(string(c), trimmed) {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown notification channel %q", value)
}

// Status is the delivery state of a notification.
type Status string

const (
	StatusPending   Status = "Pending"
	StatusDelivered Status = "Delivered"
	StatusFailed    Status = "Failed"
)

// Statuses lists every status value.
func Statuses() []Status {
	return []Status{StatusPending, StatusDelivered, StatusFailed}
}

// Terminal reports whether no further transition is allowed from s.
func (s Status) Terminal() bool {
	return s == StatusDelivered || s == StatusFailed
}

// CanTransitionTo reports whether moving from s to next is a legal transition.
// Only Pending records may move, and only to a terminal state.
func (s Status) CanTransitionTo(next Status) bool {
	return s == StatusPending && next.Terminal()
}

// DefaultPriority is applied when a request does not carry one.
const DefaultPriority = "Medium"

// Notification is one persisted notification and its delivery outcome.
type Notification struct {
	BaseModel

	RecipientID    uint       `gorm:"not null;index" json:"recipient_id"`
	Title          string     `gorm:"type:varchar(100);not null" json:"title"`
	Message        string     `gorm:"type:text;not null" json:"message"`
	Channel        Channel    `gorm:"type:varchar(16);not null;index" json:"channel"`
	Status         Status     `gorm:"type:varchar(16);not null;index;default:'Pending'" json:"status"`
	SentAt         *time.Time `json:"sent_at"`
	RecipientEmail *string    `gorm:"type:varchar(255)" json:"recipient_email,omitempty"`
	RecipientPhone *string    `gorm:"type:varchar(20)" json:"recipient_phone,omitempty"`
	ErrorMessage   *string    `gorm:"type:text" json:"error_message,omitempty"`
	Priority       string     `gorm:"type:varchar(16);not null;default:'Medium'" json:"priority"`

	IsRead bool       `gorm:"default:false;index" json:"is_read"`
	ReadAt *time.Time `json:"read_at"`
}

// Email returns the recipient email or an empty string.
func (n *Notification) Email() string {
	if n.RecipientEmail == nil {
		return ""
	}
	return strings.TrimSpace(*n.RecipientEmail)
}

// Phone returns the recipient phone number or an empty string.
func (n *Notification) Phone() string {
	if n.RecipientPhone == nil {
		return ""
	}
	return strings.TrimSpace(*n.RecipientPhone)
}
