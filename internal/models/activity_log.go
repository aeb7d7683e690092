package models

import "time"

// ActivityLog is the append-only record of who did what to a project or task.
// The earliest INSERT row for an entity names its creator.
type ActivityLog struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	EntityType  EntityType     `gorm:"size:20;index:idx_activity_entity;not null" json:"entity_type"`
	EntityID    uint           `gorm:"index:idx_activity_entity;not null" json:"entity_id"`
	Action      ActivityAction `gorm:"size:20;not null" json:"action"`
	PerformedBy string         `gorm:"size:100;not null" json:"performed_by"`
	ProjectID   *uint          `gorm:"index" json:"project_id"`
	TaskID      *uint          `gorm:"index" json:"task_id"`
	Details     string         `gorm:"type:text" json:"details"`
	OccurredAt  time.Time      `gorm:"index" json:"occurred_at"`
}

func (ActivityLog) TableName() string { return "activity_logs" }
