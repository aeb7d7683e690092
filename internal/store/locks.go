package store

import (
	"context"
	"fmt"
	"time"

	"github.com/NafisaTasnimR/UpNext/internal/models"
	"gorm.io/gorm/clause"
)

// TryAcquire claims the (name, key) lock for owner until now+ttl. It reports
// false when another owner holds an unexpired claim or the key is finished.
// An expired, unfinished claim is taken over.
func (s *Store) TryAcquire(ctx context.Context, name, key, owner string, ttl time.Duration) (bool, error) {
	now := time.Now()
	lock := models.SchedulerLock{
		LockName:  name,
		LockKey:   key,
		LockedBy:  owner,
		LockedAt:  now,
		ExpiresAt: now.Add(ttl),
	}
	res := s.conn(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&lock)
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 1 {
		return true, nil
	}
	res = s.conn(ctx).Model(&models.SchedulerLock{}).
		Where("lock_name = ? AND lock_key = ? AND finished = ? AND (expires_at < ? OR locked_by = ?)", name, key, false, now, owner).
		Updates(map[string]any{"locked_by": owner, "locked_at": now, "expires_at": now.Add(ttl)})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// Finish marks owner's claim as done. The key then stays taken for good.
func (s *Store) Finish(ctx context.Context, name, key, owner string) error {
	res := s.conn(ctx).Model(&models.SchedulerLock{}).
		Where("lock_name = ? AND lock_key = ? AND locked_by = ?", name, key, owner).
		Update("finished", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("lock %s/%s is not held by %s", name, key, owner)
	}
	return nil
}

// Release drops owner's claim so the key can be processed again.
func (s *Store) Release(ctx context.Context, name, key, owner string) error {
	return s.conn(ctx).
		Where("lock_name = ? AND lock_key = ? AND locked_by = ?", name, key, owner).
		Delete(&models.SchedulerLock{}).Error
}
