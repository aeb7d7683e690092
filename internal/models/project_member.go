package models

import "time"

// ProjectMember represents a user's membership and role within a project.
type ProjectMember struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	ProjectID uint       `gorm:"uniqueIndex:idx_project_user;not null" json:"project_id"`
	UserID    uint       `gorm:"uniqueIndex:idx_project_user;not null" json:"user_id"`
	User      *User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Role      MemberRole `gorm:"size:20;default:MEMBER;not null" json:"role"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func (ProjectMember) TableName() string { return "project_members" }
