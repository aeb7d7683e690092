package store

import (
	"context"

	"github.com/NafisaTasnimR/UpNext/internal/lifecycle"
	"github.com/NafisaTasnimR/UpNext/internal/models"
	"gorm.io/gorm"
)

type ProjectStore struct{ s *Store }

func (p ProjectStore) Get(ctx context.Context, id uint) (*models.Project, error) {
	var project models.Project
	if err := p.s.conn(ctx).First(&project, id).Error; err != nil {
		return nil, translate(err, "project", id)
	}
	return &project, nil
}

func (p ProjectStore) ListAll(ctx context.Context) ([]models.Project, error) {
	var projects []models.Project
	err := p.s.conn(ctx).Order("id").Find(&projects).Error
	return projects, err
}

func (p ProjectStore) ListByOwner(ctx context.Context, userID uint) ([]models.Project, error) {
	var projects []models.Project
	err := p.s.conn(ctx).Where("owner_id = ?", userID).Order("id").Find(&projects).Error
	return projects, err
}

func (p ProjectStore) ListByManager(ctx context.Context, userID uint) ([]models.Project, error) {
	return p.listByRole(ctx, userID, models.MemberRoleManager)
}

func (p ProjectStore) ListByMember(ctx context.Context, userID uint) ([]models.Project, error) {
	return p.listByRole(ctx, userID)
}

func (p ProjectStore) listByRole(ctx context.Context, userID uint, roles ...models.MemberRole) ([]models.Project, error) {
	sub := p.s.conn(ctx).Model(&models.ProjectMember{}).Select("project_id").Where("user_id = ?", userID)
	if len(roles) > 0 {
		sub = sub.Where("role IN ?", roles)
	}
	var projects []models.Project
	err := p.s.conn(ctx).Where("id IN (?)", sub).Order("id").Find(&projects).Error
	return projects, err
}

// Save inserts a new project or updates every column of an existing one.
func (p ProjectStore) Save(ctx context.Context, project *models.Project) error {
	project.StartDate = lifecycle.DayPtr(project.StartDate)
	project.EndDate = lifecycle.DayPtr(project.EndDate)
	return p.s.conn(ctx).Save(project).Error
}

func (p ProjectStore) UpdateStatus(ctx context.Context, id uint, status models.ProjectStatus) error {
	res := p.s.conn(ctx).Model(&models.Project{}).Where("id = ?", id).Update("status", status)
	return affected(res, "project", id)
}

// Delete removes the project, all its tasks and every row attached to them.
func (p ProjectStore) Delete(ctx context.Context, id uint) error {
	return p.s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		var taskIDs []uint
		if err := tx.Model(&models.Task{}).Where("project_id = ?", id).Pluck("id", &taskIDs).Error; err != nil {
			return err
		}
		if err := deleteTaskRows(tx, taskIDs); err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", id).Delete(&models.ProjectMember{}).Error; err != nil {
			return err
		}
		if err := tx.Where("(entity_type = ? AND entity_id = ?) OR project_id = ?", models.EntityProject, id, id).
			Delete(&models.ActivityLog{}).Error; err != nil {
			return err
		}
		return affected(tx.Delete(&models.Project{}, id), "project", id)
	})
}
