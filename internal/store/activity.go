package store

import (
	"context"
	"errors"
	"time"

	"github.com/NafisaTasnimR/UpNext/internal/models"
	"gorm.io/gorm"
)

type ActivityStore struct{ s *Store }

func (a ActivityStore) EarliestInsertActor(ctx context.Context, entityType models.EntityType, entityID uint) (string, bool, error) {
	var entry models.ActivityLog
	err := a.s.conn(ctx).
		Where("entity_type = ? AND entity_id = ? AND action = ?", entityType, entityID, models.ActionInsert).
		Order("occurred_at ASC, id ASC").
		First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return entry.PerformedBy, true, nil
}

func (a ActivityStore) Append(ctx context.Context, entry *models.ActivityLog) error {
	if entry.OccurredAt.IsZero() {
		entry.OccurredAt = time.Now()
	}
	return a.s.conn(ctx).Create(entry).Error
}

// ListForProject returns the project's own rows and those of its tasks, newest first.
func (a ActivityStore) ListForProject(ctx context.Context, projectID uint, limit int) ([]models.ActivityLog, error) {
	var entries []models.ActivityLog
	q := a.s.conn(ctx).
		Where("(entity_type = ? AND entity_id = ?) OR project_id = ?", models.EntityProject, projectID, projectID).
		Order("occurred_at DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&entries).Error
	return entries, err
}
