package lifecycle

import (
	"context"
	"errors"
	"fmt"

	"github.com/NafisaTasnimR/UpNext/internal/models"
)

// Guard decides who may delete projects and tasks. Creator identity comes
// from the activity log, never from a column on the entity.
type Guard struct {
	projects ProjectStore
	tasks    TaskStore
	activity ActivityLogStore
}

func NewGuard(projects ProjectStore, tasks TaskStore, activity ActivityLogStore) *Guard {
	return &Guard{projects: projects, tasks: tasks, activity: activity}
}

// FindCreator returns the username on the earliest INSERT row for the
// entity. found is false when no such row exists.
func (g *Guard) FindCreator(ctx context.Context, entityType models.EntityType, entityID uint) (string, bool, error) {
	return g.activity.EarliestInsertActor(ctx, entityType, entityID)
}

// CanDeleteProject is true only for an ADMIN who owns the project.
func CanDeleteProject(project *models.Project, actor Actor) bool {
	return actor.IsAdmin() && project.OwnerID == actor.UserID
}

// CanDeleteTask requires the actor to be the task's creator. Members may
// additionally only delete subtasks.
func (g *Guard) CanDeleteTask(ctx context.Context, task *models.Task, actor Actor) (bool, error) {
	creator, found, err := g.FindCreator(ctx, models.EntityTask, task.ID)
	if err != nil {
		return false, fmt.Errorf("find creator of task %d: %w", task.ID, err)
	}
	if !found || creator != actor.Username {
		return false, nil
	}

	switch actor.Role {
	case models.RoleAdmin, models.RoleManager:
		return true, nil
	case models.RoleMember:
		return task.IsSubtask(), nil
	default:
		return false, nil
	}
}

// DeleteProjectWithAuth deletes the project and everything under it, or
// returns ErrForbidden without writing anything.
func (g *Guard) DeleteProjectWithAuth(ctx context.Context, projectID uint, actor Actor) (*models.Project, error) {
	project, err := g.projects.Get(ctx, projectID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrForbidden
		}
		return nil, err
	}
	if !CanDeleteProject(project, actor) {
		return nil, ErrForbidden
	}
	if err := g.projects.Delete(ctx, projectID); err != nil {
		return nil, fmt.Errorf("delete project %d: %w", projectID, err)
	}
	return project, nil
}

// DeleteTaskWithAuth deletes the task and its subtree, or returns
// ErrForbidden without writing anything.
func (g *Guard) DeleteTaskWithAuth(ctx context.Context, taskID uint, actor Actor) (*models.Task, error) {
	task, err := g.tasks.Get(ctx, taskID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrForbidden
		}
		return nil, err
	}
	ok, err := g.CanDeleteTask(ctx, task, actor)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrForbidden
	}
	if err := g.tasks.Delete(ctx, taskID); err != nil {
		return nil, fmt.Errorf("delete task %d: %w", taskID, err)
	}
	return task, nil
}
