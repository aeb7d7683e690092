package store

import (
	"context"
	"fmt"

	"github.com/NafisaTasnimR/UpNext/internal/lifecycle"
	"github.com/NafisaTasnimR/UpNext/internal/models"
)

type NotificationStore struct{ s *Store }

func (n NotificationStore) Exists(ctx context.Context, taskID, userID uint, typ models.NotificationType) (bool, error) {
	var count int64
	err := n.s.conn(ctx).Model(&models.Notification{}).
		Where("task_id = ? AND user_id = ? AND type = ?", taskID, userID, typ).
		Count(&count).Error
	return count > 0, err
}

func (n NotificationStore) Create(ctx context.Context, taskID, userID uint, typ models.NotificationType, message string) error {
	notification := models.Notification{
		TaskID:  taskID,
		UserID:  userID,
		Type:    typ,
		Message: message,
	}
	return n.s.conn(ctx).Create(&notification).Error
}

// ListForUser returns a user's notifications, newest first.
func (n NotificationStore) ListForUser(ctx context.Context, userID uint, unreadOnly bool) ([]models.Notification, error) {
	q := n.s.conn(ctx).Where("user_id = ?", userID)
	if unreadOnly {
		q = q.Where("is_read = ?", false)
	}
	var out []models.Notification
	err := q.Order("created_at DESC, id DESC").Find(&out).Error
	return out, err
}

func (n NotificationStore) CountUnread(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := n.s.conn(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	return count, err
}

// MarkRead flags one of the user's notifications as read. Another user's
// notification is reported as not found.
func (n NotificationStore) MarkRead(ctx context.Context, id, userID uint) error {
	res := n.s.conn(ctx).Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("is_read", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("notification %d: %w", id, lifecycle.ErrNotFound)
	}
	return nil
}

func (n NotificationStore) MarkAllRead(ctx context.Context, userID uint) (int64, error) {
	res := n.s.conn(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true)
	return res.RowsAffected, res.Error
}
