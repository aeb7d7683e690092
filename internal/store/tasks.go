package store

import (
	"context"
	"time"

	"github.com/NafisaTasnimR/UpNext/internal/lifecycle"
	"github.com/NafisaTasnimR/UpNext/internal/models"
	"gorm.io/gorm"
)

type TaskStore struct{ s *Store }

func (t TaskStore) Get(ctx context.Context, id uint) (*models.Task, error) {
	var task models.Task
	if err := t.s.conn(ctx).First(&task, id).Error; err != nil {
		return nil, translate(err, "task", id)
	}
	return &task, nil
}

func (t TaskStore) ListByProject(ctx context.Context, projectID uint) ([]models.Task, error) {
	var tasks []models.Task
	err := t.s.conn(ctx).Where("project_id = ?", projectID).Order("id").Find(&tasks).Error
	return tasks, err
}

func (t TaskStore) ListChildren(ctx context.Context, parentID uint) ([]models.Task, error) {
	var tasks []models.Task
	err := t.s.conn(ctx).Where("parent_task_id = ?", parentID).Order("id").Find(&tasks).Error
	return tasks, err
}

func (t TaskStore) ListDueOn(ctx context.Context, day time.Time) ([]models.Task, error) {
	start := lifecycle.Day(day)
	end := start.AddDate(0, 0, 1)
	var tasks []models.Task
	err := t.s.conn(ctx).
		Where("due_date >= ? AND due_date < ?", start, end).
		Order("id").
		Find(&tasks).Error
	return tasks, err
}

func (t TaskStore) ListByAssignee(ctx context.Context, userID uint) ([]models.Task, error) {
	var tasks []models.Task
	err := t.s.conn(ctx).Where("assignee_id = ?", userID).Order("id").Find(&tasks).Error
	return tasks, err
}

// ListOverdue returns open tasks whose due date is before today.
func (t TaskStore) ListOverdue(ctx context.Context, today time.Time, projectIDs []uint, assigneeID *uint) ([]models.Task, error) {
	q := t.s.conn(ctx).
		Where("due_date < ?", lifecycle.Day(today)).
		Where("status NOT IN ?", []models.TaskStatus{models.TaskDone, models.TaskCancelled})
	if projectIDs != nil {
		q = q.Where("project_id IN ?", projectIDs)
	}
	if assigneeID != nil {
		q = q.Where("assignee_id = ?", *assigneeID)
	}
	var tasks []models.Task
	err := q.Order("due_date, id").Find(&tasks).Error
	return tasks, err
}

func (t TaskStore) Save(ctx context.Context, task *models.Task) error {
	task.StartDate = lifecycle.DayPtr(task.StartDate)
	task.DueDate = lifecycle.DayPtr(task.DueDate)
	return t.s.conn(ctx).Save(task).Error
}

func (t TaskStore) UpdateStatus(ctx context.Context, id uint, status models.TaskStatus) error {
	res := t.s.conn(ctx).Model(&models.Task{}).Where("id = ?", id).Update("status", status)
	return affected(res, "task", id)
}

func (t TaskStore) SetProgress(ctx context.Context, id uint, pct float64) error {
	res := t.s.conn(ctx).Model(&models.Task{}).Where("id = ?", id).Update("progress_pct", pct)
	return affected(res, "task", id)
}

func (t TaskStore) Assign(ctx context.Context, id uint, userID *uint) error {
	res := t.s.conn(ctx).Model(&models.Task{}).Where("id = ?", id).Update("assignee_id", userID)
	return affected(res, "task", id)
}

// Delete removes the task with its whole subtree.
func (t TaskStore) Delete(ctx context.Context, id uint) error {
	return t.s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		var root models.Task
		if err := tx.Select("id").First(&root, id).Error; err != nil {
			return translate(err, "task", id)
		}
		ids, err := subtree(tx, id)
		if err != nil {
			return err
		}
		return deleteTaskRows(tx, ids)
	})
}

// subtree returns id and the ids of all its descendants.
func subtree(tx *gorm.DB, id uint) ([]uint, error) {
	ids := []uint{id}
	frontier := []uint{id}
	seen := map[uint]bool{id: true}
	for len(frontier) > 0 {
		var children []uint
		if err := tx.Model(&models.Task{}).Where("parent_task_id IN ?", frontier).Pluck("id", &children).Error; err != nil {
			return nil, err
		}
		frontier = frontier[:0]
		for _, c := range children {
			if !seen[c] {
				seen[c] = true
				ids = append(ids, c)
				frontier = append(frontier, c)
			}
		}
	}
	return ids, nil
}

func deleteTaskRows(tx *gorm.DB, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	steps := []func() error{
		func() error {
			return tx.Where("predecessor_task_id IN ? OR successor_task_id IN ?", ids, ids).Delete(&models.TaskDependency{}).Error
		},
		func() error { return tx.Where("task_id IN ?", ids).Delete(&models.Comment{}).Error },
		func() error { return tx.Where("task_id IN ?", ids).Delete(&models.Attachment{}).Error },
		func() error { return tx.Where("task_id IN ?", ids).Delete(&models.Notification{}).Error },
		func() error {
			return tx.Where("(entity_type = ? AND entity_id IN ?) OR task_id IN ?", models.EntityTask, ids, ids).
				Delete(&models.ActivityLog{}).Error
		},
		func() error { return tx.Where("id IN ?", ids).Delete(&models.Task{}).Error },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}
