package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"gorm.io/gorm"

	"github.com/charlesng35/studentms/internal/models"
	"github.com/charlesng35/studentms/internal/notifications"
	apperrors "github.com/charlesng35/studentms/pkg/errors"
)

// RecentNotificationsLimit is the size of the admin "recent notifications" view.
const RecentNotificationsLimit = 50

// Events published to inbox subscribers when read state changes.
const (
	EventNotificationRead    = "notification.read"
	EventNotificationReadAll = "notification.read_all"
)

// ErrNotificationNotFound indicates the notification does not exist or is not visible to the caller.
var ErrNotificationNotFound = apperrors.New("NOTIFICATION_NOT_FOUND", "Notification not found", http.StatusNotFound)

// InboxOptions controls inbox pagination.
type InboxOptions struct {
	Limit      int
	Offset     int
	UnreadOnly bool
}

// RecentOptions filters the admin listing.
type RecentOptions struct {
	Limit   int
	Channel models.Channel
	Status  models.Status
}

// NotificationQueryService serves the read side of notifications: the admin overview,
// audit trails and the recipient inbox. Read state never touches delivery status.
type NotificationQueryService struct {
	db        *gorm.DB
	publisher notifications.Publisher
	now       func() time.Time
}

// NewNotificationQueryService constructs a NotificationQueryService. publisher may be nil.
func NewNotificationQueryService(db *gorm.DB, publisher notifications.Publisher) (*NotificationQueryService, error) {
	if db == nil {
		return nil, errors.New("notification query service: db is required")
	}
	return &NotificationQueryService{db: db, publisher: publisher, now: time.Now}, nil
}

// ListRecent returns the newest notifications across all recipients.
func (s *NotificationQueryService) ListRecent(ctx context.Context, opts RecentOptions) ([]models.Notification, error) {
	ctx = ensureContext(ctx)

	limit := opts.Limit
	if limit <= 0 || limit > RecentNotificationsLimit {
		limit = RecentNotificationsLimit
	}

	query := s.db.WithContext(ctx).Model(&models.Notification{})
	if opts.Channel != "" {
		query = query.Where("channel = ?", opts.Channel)
	}
	if opts.Status != "" {
		query = query.Where("status = ?", opts.Status)
	}

	var rows []models.Notification
	if err := query.Order("created_at DESC").Order("id DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("notification query service: list recent: %w", err)
	}
	return rows, nil
}

// Get loads a single notification for the admin view.
func (s *NotificationQueryService) Get(ctx context.Context, id uint) (*models.Notification, error) {
	ctx = ensureContext(ctx)

	var n models.Notification
	err := s.db.WithContext(ctx).First(&n, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotificationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("notification query service: load notification: %w", err)
	}
	return &n, nil
}

// ListLogs returns the audit trail of a notification.
func (s *NotificationQueryService) ListLogs(ctx context.Context, notificationID uint) ([]models.NotificationLog, error) {
	if _, err := s.Get(ctx, notificationID); err != nil {
		return nil, err
	}

	var rows []models.NotificationLog
	if err := s.db.WithContext(ensureContext(ctx)).
		Where("notification_id = ?", notificationID).
		Order("log_date ASC").
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("notification query service: list logs: %w", err)
	}
	return rows, nil
}

func (s *NotificationQueryService) inbox(ctx context.Context, recipientID uint) *gorm.DB {
	return s.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("recipient_id = ? AND channel = ? AND status = ?", recipientID, models.ChannelInApp, models.StatusDelivered)
}

// ListInbox returns the delivered InApp notifications of a recipient, newest first.
func (s *NotificationQueryService) ListInbox(ctx context.Context, recipientID uint, opts InboxOptions) ([]models.Notification, int64, error) {
	ctx = ensureContext(ctx)

	limit := opts.Limit
	if limit <= 0 || limit > 100 {
		limit = 25
	}
	offset := opts.Offset
	if offset < 0 {
		offset = 0
	}

	query := s.inbox(ctx, recipientID)
	if opts.UnreadOnly {
		query = query.Where("is_read = ?", false)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("notification query service: count inbox: %w", err)
	}

	var rows []models.Notification
	if err := query.Order("created_at DESC").Order("id DESC").Limit(limit).Offset(offset).Find(&rows).Error; err != nil {
		return nil, 0, fmt.Errorf("notification query service: list inbox: %w", err)
	}
	return rows, total, nil
}

// UnreadCount returns the number of unread inbox notifications.
func (s *NotificationQueryService) UnreadCount(ctx context.Context, recipientID uint) (int64, error) {
	ctx = ensureContext(ctx)

	var count int64
	if err := s.inbox(ctx, recipientID).Where("is_read = ?", false).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("notification query service: unread count: %w", err)
	}
	return count, nil
}

// MarkRead flags one inbox notification as read. Marking an already read notification is a no-op.
func (s *NotificationQueryService) MarkRead(ctx context.Context, recipientID, notificationID uint) (*models.Notification, error) {
	ctx = ensureContext(ctx)

	var n models.Notification
	err := s.inbox(ctx, recipientID).Where("id = ?", notificationID).First(&n).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotificationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("notification query service: load notification: %w", err)
	}
	if n.IsRead {
		return &n, nil
	}

	now := s.now().UTC()
	if err := s.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("id = ?", n.ID).
		Updates(map[string]any{"is_read": true, "read_at": now}).Error; err != nil {
		return nil, fmt.Errorf("notification query service: mark read: %w", err)
	}
	n.IsRead = true
	n.ReadAt = &now

	s.publish(recipientID, EventNotificationRead, map[string]any{"notification_id": n.ID})
	return &n, nil
}

// MarkAllRead flags every unread inbox notification of the recipient and returns how many changed.
func (s *NotificationQueryService) MarkAllRead(ctx context.Context, recipientID uint) (int64, error) {
	ctx = ensureContext(ctx)

	now := s.now().UTC()
	result := s.inbox(ctx, recipientID).
		Where("is_read = ?", false).
		Updates(map[string]any{"is_read": true, "read_at": now})
	if result.Error != nil {
		return 0, fmt.Errorf("notification query service: mark all read: %w", result.Error)
	}

	if result.RowsAffected > 0 {
		s.publish(recipientID, EventNotificationReadAll, map[string]any{"updated": result.RowsAffected})
	}
	return result.RowsAffected, nil
}

// CountByStatus groups stored notifications by status. Missing statuses report zero.
func (s *NotificationQueryService) CountByStatus(ctx context.Context) (map[models.Status]int64, error) {
	return CountNotificationsByStatus(ensureContext(ctx), s.db)
}

// CountNotificationsByStatus groups stored notifications by status. Missing statuses report zero.
func CountNotificationsByStatus(ctx context.Context, db *gorm.DB) (map[models.Status]int64, error) {
	var rows []struct {
		Status models.Status
		Total  int64
	}
	if err := db.WithContext(ctx).
		Model(&models.Notification{}).
		Select("status, COUNT(*) AS total").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("count notifications by status: %w", err)
	}

	counts := make(map[models.Status]int64, len(models.Statuses()))
	for _, status := range models.Statuses() {
		counts[status] = 0
	}
	for _, row := range rows {
		counts[row.Status] = row.Total
	}
	return counts, nil
}

func (s *NotificationQueryService) publish(recipientID uint, event string, payload any) {
	if s.publisher == nil {
		return
	}
	s.publisher.Publish(recipientID, event, payload)
}
