package services

import (
	"context"
	"fmt"

	"github.com/NafisaTasnimR/UpNext/internal/lifecycle"
	"github.com/NafisaTasnimR/UpNext/internal/models"
)

type DependencyService struct {
	lc *Lifecycle
}

func NewDependencyService(lc *Lifecycle) *DependencyService {
	return &DependencyService{lc: lc}
}

type AddDependencyRequest struct {
	PredecessorTaskID uint `json:"predecessor_task_id" binding:"required"`
}

// Predecessors lists the tasks the given task waits on.
func (s *DependencyService) Predecessors(ctx context.Context, taskID uint, actor lifecycle.Actor) ([]models.Task, error) {
	st := s.lc.store.Stores()
	task, err := st.Tasks.Get(ctx, taskID)
	if err != nil {
		return nil, hideMissing(err, actor)
	}
	if _, err := visibleProject(ctx, st, task.ProjectID, actor); err != nil {
		return nil, err
	}
	return st.Dependencies.ListForSuccessor(ctx, taskID)
}

// Satisfied reports whether every predecessor of the task is DONE.
func (s *DependencyService) Satisfied(ctx context.Context, taskID uint, actor lifecycle.Actor) (bool, error) {
	if _, err := s.Predecessors(ctx, taskID, actor); err != nil {
		return false, err
	}
	blocked, err := s.lc.Deps.HasUnfinishedPredecessor(ctx, taskID)
	return !blocked, err
}

// Add makes successorID wait on predecessorID. Only ADMIN and managers of
// the project may add edges; the edge must stay inside the project and keep
// the graph acyclic.
func (s *DependencyService) Add(ctx context.Context, successorID, predecessorID uint, actor lifecycle.Actor) error {
	return s.lc.inTx(ctx, func(r txRules) error {
		if err := s.authorize(ctx, r, successorID, actor); err != nil {
			return err
		}
		if err := r.deps.ValidateNewDependency(ctx, predecessorID, successorID); err != nil {
			return err
		}
		if err := r.Dependencies.Add(ctx, predecessorID, successorID); err != nil {
			return fmt.Errorf("add dependency: %w", err)
		}
		succ, err := r.Tasks.Get(ctx, successorID)
		if err != nil {
			return err
		}
		return logActivity(ctx, r.Stores, actor, models.EntityTask, successorID, models.ActionUpdate,
			uintPtr(succ.ProjectID), uintPtr(successorID), fmt.Sprintf("now depends on task %d", predecessorID))
	})
}

func (s *DependencyService) Remove(ctx context.Context, successorID, predecessorID uint, actor lifecycle.Actor) error {
	return s.lc.inTx(ctx, func(r txRules) error {
		if err := s.authorize(ctx, r, successorID, actor); err != nil {
			return err
		}
		if err := r.Dependencies.Remove(ctx, predecessorID, successorID); err != nil {
			return err
		}
		succ, err := r.Tasks.Get(ctx, successorID)
		if err != nil {
			return err
		}
		return logActivity(ctx, r.Stores, actor, models.EntityTask, successorID, models.ActionUpdate,
			uintPtr(succ.ProjectID), uintPtr(successorID), fmt.Sprintf("no longer depends on task %d", predecessorID))
	})
}

func (s *DependencyService) authorize(ctx context.Context, r txRules, successorID uint, actor lifecycle.Actor) error {
	succ, err := r.Tasks.Get(ctx, successorID)
	if err != nil {
		return hideMissing(err, actor)
	}
	project, err := r.Projects.Get(ctx, succ.ProjectID)
	if err != nil {
		return hideMissing(err, actor)
	}
	ok, err := canManage(ctx, r.Stores, project, actor)
	if err != nil {
		return err
	}
	if !ok {
		return lifecycle.ErrForbidden
	}
	return nil
}
