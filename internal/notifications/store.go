package notifications

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/charlesng35/studentms/internal/models"
)

// Store is the persistence handle shared by the manager, the factory and every sender.
// The caller that opened the underlying *gorm.DB owns its lifetime.
type Store struct {
	db *gorm.DB
}

// NewStore wraps an open database handle.
func NewStore(db *gorm.DB) (*Store, error) {
	if db == nil {
		return nil, errors.New("notification store: db is required")
	}
	return &Store{db: db}, nil
}

// CreatePending inserts n with status Pending and assigns its ID.
func (s *Store) CreatePending(ctx context.Context, n *models.Notification) error {
	if n == nil {
		return errors.New("notification store: notification is required")
	}
	n.Status = models.StatusPending
	n.SentAt = nil
	n.ErrorMessage = nil

	if err := s.db.WithContext(ensureContext(ctx)).Create(n).Error; err != nil {
		return fmt.Errorf("notification store: create pending: %w", err)
	}
	return nil
}

// SaveOutcome moves a Pending record to a terminal status exactly once.
// A record that already left Pending yields ErrInvalidTransition and is not modified.
func (s *Store) SaveOutcome(ctx context.Context, n *models.Notification, status models.Status, at time.Time, errMsg *string) error {
	if n == nil || n.ID == 0 {
		return errors.New("notification store: persisted notification is required")
	}
	if !n.Status.CanTransitionTo(status) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, n.Status, status)
	}
	if status == models.StatusDelivered {
		errMsg = nil
	}

	result := s.db.WithContext(ensureContext(ctx)).
		Model(&models.Notification{}).
		Where("id = ? AND status = ?", n.ID, models.StatusPending).
		Updates(map[string]any{
			"status":        status,
			"sent_at":       at,
			"error_message": errMsg,
		})
	if result.Error != nil {
		return fmt.Errorf("notification store: save outcome: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: notification %d is no longer pending", ErrInvalidTransition, n.ID)
	}

	n.Status = status
	n.SentAt = &at
	n.ErrorMessage = errMsg
	return nil
}

// AppendLog inserts an audit entry. Log rows are never updated or deleted.
func (s *Store) AppendLog(ctx context.Context, entry *models.NotificationLog) error {
	if entry == nil || entry.NotificationID == 0 {
		return errors.New("notification store: log entry requires a notification id")
	}
	if err := s.db.WithContext(ensureContext(ctx)).Create(entry).Error; err != nil {
		return fmt.Errorf("notification store: append log: %w", err)
	}
	return nil
}

// Get loads a single notification by ID.
func (s *Store) Get(ctx context.Context, id uint) (*models.Notification, error) {
	var n models.Notification
	if err := s.db.WithContext(ensureContext(ctx)).First(&n, id).Error; err != nil {
		return nil, fmt.Errorf("notification store: get %d: %w", id, err)
	}
	return &n, nil
}

// Logs returns the audit trail of a notification in insertion order.
func (s *Store) Logs(ctx context.Context, notificationID uint) ([]models.NotificationLog, error) {
	var rows []models.NotificationLog
	if err := s.db.WithContext(ensureContext(ctx)).
		Where("notification_id = ?", notificationID).
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("notification store: list logs: %w", err)
	}
	return rows, nil
}

func ensureContext(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
