package store

import (
	"context"
	"fmt"

	"github.com/NafisaTasnimR/UpNext/internal/lifecycle"
	"github.com/NafisaTasnimR/UpNext/internal/models"
	"gorm.io/gorm/clause"
)

type MemberStore struct{ s *Store }

func (m MemberStore) IsMember(ctx context.Context, projectID, userID uint) (bool, error) {
	var count int64
	err := m.s.conn(ctx).Model(&models.ProjectMember{}).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		Count(&count).Error
	return count > 0, err
}

func (m MemberStore) HasRole(ctx context.Context, projectID, userID uint, role models.MemberRole) (bool, error) {
	var count int64
	err := m.s.conn(ctx).Model(&models.ProjectMember{}).
		Where("project_id = ? AND user_id = ? AND role = ?", projectID, userID, role).
		Count(&count).Error
	return count > 0, err
}

func (m MemberStore) ListMembers(ctx context.Context, projectID uint) ([]models.ProjectMember, error) {
	var members []models.ProjectMember
	err := m.s.conn(ctx).Where("project_id = ?", projectID).
		Preload("User").
		Order("id").
		Find(&members).Error
	return members, err
}

func (m MemberStore) Upsert(ctx context.Context, projectID, userID uint, role models.MemberRole) error {
	member := models.ProjectMember{ProjectID: projectID, UserID: userID, Role: role}
	return m.s.conn(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "project_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"role", "updated_at"}),
	}).Create(&member).Error
}

func (m MemberStore) Remove(ctx context.Context, projectID, userID uint) error {
	res := m.s.conn(ctx).Where("project_id = ? AND user_id = ?", projectID, userID).Delete(&models.ProjectMember{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("member %d of project %d: %w", userID, projectID, lifecycle.ErrNotFound)
	}
	return nil
}
