package models

import "time"

// Task is a unit of work inside a project. A task with ParentTaskID set is a subtask.
type Task struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	ProjectID      uint       `gorm:"index;not null" json:"project_id"`
	ParentTaskID   *uint      `gorm:"index" json:"parent_task_id"`
	AssigneeID     *uint      `gorm:"index" json:"assignee_id"`
	Title          string     `gorm:"size:300;not null" json:"title"`
	Description    string     `gorm:"type:text" json:"description"`
	Status         TaskStatus `gorm:"size:20;index;not null" json:"status"`
	Priority       Priority   `gorm:"size:20;default:MEDIUM;not null" json:"priority"`
	StartDate      *time.Time `gorm:"type:date" json:"start_date"`
	DueDate        *time.Time `gorm:"type:date;index" json:"due_date"`
	ProgressPct    float64    `gorm:"default:0" json:"progress_pct"`
	EstimatedHours *float64   `json:"estimated_hours"`
	ActualHours    *float64   `json:"actual_hours"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func (Task) TableName() string { return "tasks" }

// IsSubtask reports whether the task has a parent.
func (t *Task) IsSubtask() bool { return t.ParentTaskID != nil }

// TaskDependency is a predecessor -> successor edge; the successor may not
// start or complete while the predecessor is unfinished.
type TaskDependency struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	PredecessorTaskID uint      `gorm:"uniqueIndex:idx_dependency_edge;not null" json:"predecessor_task_id"`
	SuccessorTaskID   uint      `gorm:"uniqueIndex:idx_dependency_edge;index;not null" json:"successor_task_id"`
	CreatedAt         time.Time `json:"created_at"`
}

func (TaskDependency) TableName() string { return "task_dependencies" }

// Comment is free text attached to a task.
type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	TaskID    uint      `gorm:"index;not null" json:"task_id"`
	UserID    uint      `gorm:"not null" json:"user_id"`
	Body      string    `gorm:"type:text;not null" json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

func (Comment) TableName() string { return "comments" }

// Attachment records a file uploaded against a task. Only metadata is stored.
type Attachment struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	TaskID     uint      `gorm:"index;not null" json:"task_id"`
	FileName   string    `gorm:"size:255;not null" json:"file_name"`
	FilePath   string    `gorm:"size:1000" json:"file_path"`
	UploadedBy uint      `json:"uploaded_by"`
	CreatedAt  time.Time `json:"created_at"`
}

func (Attachment) TableName() string { return "attachments" }
