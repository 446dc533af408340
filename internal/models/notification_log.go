package models

import "time"

// NotificationLog is an append-only audit entry describing one dispatch attempt.
type NotificationLog struct {
	ID             uint          `gorm:"primaryKey;autoIncrement" json:"id"`
	NotificationID uint          `gorm:"not null;index" json:"notification_id"`
	Notification   *Notification `gorm:"foreignKey:NotificationID;constraint:OnDelete:CASCADE" json:"-"`
	LogDate        time.Time     `gorm:"not null;index" json:"log_date"`
	Action         string        `gorm:"type:varchar(32);not null" json:"action"`
	Details        string        `gorm:"type:text" json:"details"`
}
