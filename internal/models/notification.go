package models

import "time"

// Notification is an in-app message for a single user about a single task.
type Notification struct {
	ID        uint             `gorm:"primaryKey" json:"id"`
	UserID    uint             `gorm:"index:idx_notification_key;not null" json:"user_id"`
	TaskID    uint             `gorm:"index:idx_notification_key;not null" json:"task_id"`
	Type      NotificationType `gorm:"size:30;index:idx_notification_key;not null" json:"type"`
	Message   string           `gorm:"size:500" json:"message"`
	Read      bool             `gorm:"column:is_read;default:false" json:"read"`
	CreatedAt time.Time        `json:"created_at"`
}

func (Notification) TableName() string { return "notifications" }
