package models

import "time"

// SchedulerLock marks a scheduled job as claimed for a key (usually a date)
// so that only one running instance processes it. ExpiresAt bounds a claim
// whose holder died mid-run; a finished claim never expires.
type SchedulerLock struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	LockName  string    `gorm:"uniqueIndex:idx_lock_name_key;size:100;not null" json:"lock_name"`
	LockKey   string    `gorm:"uniqueIndex:idx_lock_name_key;size:100;not null" json:"lock_key"`
	LockedBy  string    `gorm:"size:100" json:"locked_by"`
	LockedAt  time.Time `json:"locked_at"`
	ExpiresAt time.Time `gorm:"index" json:"expires_at"`
	Finished  bool      `gorm:"not null;default:false" json:"finished"`
}

func (SchedulerLock) TableName() string { return "scheduler_locks" }
