package store

import (
	"context"
	"fmt"

	"github.com/NafisaTasnimR/UpNext/internal/lifecycle"
	"github.com/NafisaTasnimR/UpNext/internal/models"
)

type DependencyStore struct{ s *Store }

func (d DependencyStore) ListForSuccessor(ctx context.Context, taskID uint) ([]models.Task, error) {
	var tasks []models.Task
	err := d.s.conn(ctx).
		Joins("JOIN task_dependencies ON task_dependencies.predecessor_task_id = tasks.id").
		Where("task_dependencies.successor_task_id = ?", taskID).
		Order("tasks.id").
		Find(&tasks).Error
	return tasks, err
}

func (d DependencyStore) ListSuccessorIDs(ctx context.Context, taskID uint) ([]uint, error) {
	var ids []uint
	err := d.s.conn(ctx).Model(&models.TaskDependency{}).
		Where("predecessor_task_id = ?", taskID).
		Pluck("successor_task_id", &ids).Error
	return ids, err
}

// HasUnfinishedPredecessor treats every predecessor not DONE as unfinished,
// CANCELLED included.
func (d DependencyStore) HasUnfinishedPredecessor(ctx context.Context, taskID uint) (bool, error) {
	var count int64
	err := d.s.conn(ctx).Model(&models.TaskDependency{}).
		Joins("JOIN tasks ON tasks.id = task_dependencies.predecessor_task_id").
		Where("task_dependencies.successor_task_id = ? AND tasks.status <> ?", taskID, models.TaskDone).
		Count(&count).Error
	return count > 0, err
}

func (d DependencyStore) Exists(ctx context.Context, predecessorID, successorID uint) (bool, error) {
	var count int64
	err := d.s.conn(ctx).Model(&models.TaskDependency{}).
		Where("predecessor_task_id = ? AND successor_task_id = ?", predecessorID, successorID).
		Count(&count).Error
	return count > 0, err
}

func (d DependencyStore) Add(ctx context.Context, predecessorID, successorID uint) error {
	dep := models.TaskDependency{PredecessorTaskID: predecessorID, SuccessorTaskID: successorID}
	return d.s.conn(ctx).Create(&dep).Error
}

func (d DependencyStore) Remove(ctx context.Context, predecessorID, successorID uint) error {
	res := d.s.conn(ctx).
		Where("predecessor_task_id = ? AND successor_task_id = ?", predecessorID, successorID).
		Delete(&models.TaskDependency{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("dependency %d -> %d: %w", predecessorID, successorID, lifecycle.ErrNotFound)
	}
	return nil
}
