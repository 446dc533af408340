package notifications

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/charlesng35/studentms/internal/auditctx"
	"github.com/charlesng35/studentms/internal/models"
	"github.com/charlesng35/studentms/pkg/logger"
	"github.com/charlesng35/studentms/pkg/metrics"
)

const (
	// DefaultBroadcastConcurrency bounds parallel dispatches within one broadcast.
	DefaultBroadcastConcurrency = 4
	// MaxTitleLength matches the width of notifications.title.
	MaxTitleLength = 100
)

// SenderFactory resolves the sender for a channel.
type SenderFactory interface {
	CreateSender(channel models.Channel) (Sender, error)
}

// clockSource is implemented by factories that stamp outcomes and audit entries.
// The manager stamps CreatedAt from the same clock.
type clockSource interface {
	Clock() func() time.Time
}

// Recipient is a broadcast target together with its contact data.
type Recipient struct {
	ID    uint
	Email string
	Phone string
}

// RecipientDirectory enumerates the broadcast population.
type RecipientDirectory interface {
	ListRecipients(ctx context.Context) ([]Recipient, error)
}

// SendRequest describes a single notification.
type SendRequest struct {
	RecipientID uint
	Title       string
	Message     string
	Channel     models.Channel
	Email       string
	Phone       string
	Priority    string
}

// BroadcastRequest describes one message fanned out to every recipient.
type BroadcastRequest struct {
	Title    string
	Message  string
	Channel  models.Channel
	Priority string
}

// BroadcastRecord is the per-recipient outcome of a broadcast.
type BroadcastRecord struct {
	RecipientID    uint          `json:"recipient_id"`
	NotificationID uint          `json:"notification_id,omitempty"`
	Status         models.Status `json:"status"`
}

// BroadcastResult aggregates a broadcast. Failed recipients are listed explicitly.
type BroadcastResult struct {
	BatchID          string            `json:"batch_id"`
	Attempted        int               `json:"attempted"`
	Succeeded        int               `json:"succeeded"`
	Failed           int               `json:"failed"`
	FailedRecipients []uint            `json:"failed_recipients"`
	Records          []BroadcastRecord `json:"records"`
	Err              error             `json:"-"`
}

// Summary renders the human readable "sent N/M" line.
func (r BroadcastResult) Summary() string {
	return fmt.Sprintf("sent %d/%d", r.Succeeded, r.Attempted)
}

// ManagerOption customises a Manager.
type ManagerOption func(*Manager)

// WithDirectory sets the broadcast population source.
func WithDirectory(directory RecipientDirectory) ManagerOption {
	return func(m *Manager) {
		m.directory = directory
	}
}

// WithBroadcastConcurrency bounds parallel dispatches per broadcast.
func WithBroadcastConcurrency(n int) ManagerOption {
	return func(m *Manager) {
		if n > 0 {
			m.concurrency = n
		}
	}
}

// WithLogger sets the logger used by the manager.
func WithLogger(log *zap.Logger) ManagerOption {
	return func(m *Manager) {
		if log != nil {
			m.log = log
		}
	}
}

// Manager is the entry point for sending notifications.
type Manager struct {
	store       *Store
	factory     SenderFactory
	directory   RecipientDirectory
	concurrency int
	now         func() time.Time
	log         *zap.Logger
}

// NewManager constructs a Manager.
func NewManager(store *Store, factory SenderFactory, opts ...ManagerOption) (*Manager, error) {
	if store == nil {
		return nil, errors.New("notification manager: store is required")
	}
	if factory == nil {
		return nil, errors.New("notification manager: factory is required")
	}

	m := &Manager{
		store:       store,
		factory:     factory,
		concurrency: DefaultBroadcastConcurrency,
		now:         time.Now,
		log:         logger.WithModule("notifications"),
	}
	if clocked, ok := factory.(clockSource); ok {
		m.now = clocked.Clock()
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// SendNotification persists a Pending record, dispatches it and reports the outcome.
// It never returns an error: every failure is logged and yields false.
func (m *Manager) SendNotification(ctx context.Context, req SendRequest) bool {
	_, ok := m.send(detach(ctx), req)
	return ok
}

// detach keeps the caller's values (actor, request id) but drops its cancellation:
// once accepted, a notification is persisted and concluded even if the client leaves.
func detach(ctx context.Context) context.Context {
	return context.WithoutCancel(ensureContext(ctx))
}

func (m *Manager) send(ctx context.Context, req SendRequest) (n *models.Notification, ok bool) {
	log := m.log.With(zap.Uint("recipient_id", req.RecipientID), zap.String("channel", string(req.Channel))).
		With(auditctx.Fields(ctx)...)

	defer func() {
		if r := recover(); r != nil {
			log.Error("notification send panicked", zap.Any("panic", r))
			ok = false
		}
	}()

	title := strings.TrimSpace(req.Title)
	message := strings.TrimSpace(req.Message)
	if title == "" || message == "" {
		log.Warn("notification rejected: title and message are required")
		return nil, false
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		log.Warn("notification rejected: title too long", zap.Int("max", MaxTitleLength))
		return nil, false
	}

	sender, err := m.factory.CreateSender(req.Channel)
	if err != nil {
		log.Error("resolve notification sender", zap.Error(err))
		return nil, false
	}

	priority := strings.TrimSpace(req.Priority)
	if priority == "" {
		priority = models.DefaultPriority
	}

	n = &models.Notification{
		BaseModel:      models.BaseModel{CreatedAt: m.now()},
		RecipientID:    req.RecipientID,
		Title:          title,
		Message:        req.Message,
		Channel:        req.Channel,
		Status:         models.StatusPending,
		RecipientEmail: optional(req.Email),
		RecipientPhone: optional(req.Phone),
		Priority:       priority,
	}

	if err := m.store.CreatePending(ctx, n); err != nil {
		log.Error("persist pending notification", zap.Error(err))
		return nil, false
	}

	return n, sender.Send(ctx, n)
}

// SendBroadcast sends the same notification to every recipient in the directory.
// Recipients are dispatched independently; one failure never stops the others.
func (m *Manager) SendBroadcast(ctx context.Context, req BroadcastRequest) BroadcastResult {
	ctx = detach(ctx)
	result := BroadcastResult{
		BatchID:          uuid.NewString(),
		FailedRecipients: []uint{},
		Records:          []BroadcastRecord{},
	}
	log := m.log.With(zap.String("batch_id", result.BatchID), zap.String("channel", string(req.Channel))).
		With(auditctx.Fields(ctx)...)

	if m.directory == nil {
		result.Err = errors.New("notification manager: recipient directory is not configured")
		log.Error("broadcast aborted", zap.Error(result.Err))
		return result
	}

	recipients, err := m.directory.ListRecipients(ctx)
	if err != nil {
		result.Err = fmt.Errorf("notification manager: list recipients: %w", err)
		log.Error("broadcast aborted", zap.Error(result.Err))
		return result
	}
	metrics.Broadcasts.WithLabelValues(string(req.Channel)).Inc()

	var (
		mu    sync.Mutex
		group errgroup.Group
	)
	group.SetLimit(m.concurrency)

	for _, recipient := range recipients {
		group.Go(func() error {
			n, ok := m.send(ctx, SendRequest{
				RecipientID: recipient.ID,
				Title:       req.Title,
				Message:     req.Message,
				Channel:     req.Channel,
				Email:       recipient.Email,
				Phone:       recipient.Phone,
				Priority:    req.Priority,
			})

			record := BroadcastRecord{RecipientID: recipient.ID, Status: models.StatusFailed}
			if n != nil {
				record.NotificationID = n.ID
				record.Status = n.Status
			}

			mu.Lock()
			defer mu.Unlock()
			result.Attempted++
			result.Records = append(result.Records, record)
			if ok {
				result.Succeeded++
			} else {
				result.Failed++
				result.FailedRecipients = append(result.FailedRecipients, recipient.ID)
			}
			return nil
		})
	}
	_ = group.Wait()

	sort.Slice(result.Records, func(i, j int) bool { return result.Records[i].RecipientID < result.Records[j].RecipientID })
	sort.Slice(result.FailedRecipients, func(i, j int) bool { return result.FailedRecipients[i] < result.FailedRecipients[j] })

	log.Info("broadcast finished",
		zap.Int("attempted", result.Attempted),
		zap.Int("succeeded", result.Succeeded),
		zap.Int("failed", result.Failed),
	)
	return result
}

func optional(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}
