package models

import "time"

// Project groups tasks and drives their status through its own lifecycle.
type Project struct {
	ID          uint          `gorm:"primaryKey" json:"id"`
	Name        string        `gorm:"size:200;not null" json:"name"`
	Description string        `gorm:"type:text" json:"description"`
	OwnerID     uint          `gorm:"index;not null" json:"owner_id"`
	Owner       *User         `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	StartDate   *time.Time    `gorm:"type:date" json:"start_date"`
	EndDate     *time.Time    `gorm:"type:date" json:"end_date"`
	Status      ProjectStatus `gorm:"size:20;index;not null" json:"status"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

func (Project) TableName() string { return "projects" }
