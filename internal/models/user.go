package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents a system user
type User struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	Username   string         `gorm:"uniqueIndex;size:100;not null" json:"username"`
	Password   string         `gorm:"size:255" json:"-"` // bcrypt hash
	Email      string         `gorm:"size:255" json:"email"`
	FullName   string         `gorm:"size:200" json:"full_name"`
	GlobalRole GlobalRole     `gorm:"size:20;default:MEMBER;not null" json:"global_role"`
	Status     UserStatus     `gorm:"size:20;default:ACTIVE;not null" json:"status"`
	LastLogin  *time.Time     `json:"last_login"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string { return "users" }

// IsActive reports whether the account may log in.
func (u *User) IsActive() bool { return u.Status == UserActive }
