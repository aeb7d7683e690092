package lifecycle

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/NafisaTasnimR/UpNext/internal/models"
	"github.com/NafisaTasnimR/UpNext/pkg/logger"
	"github.com/rs/zerolog"
)

// DetermineInitialStatus returns PLANNING for a project that starts after
// today and ACTIVE otherwise, including when no start date is set.
func DetermineInitialStatus(start *time.Time, today time.Time) models.ProjectStatus {
	if start != nil && Day(*start).After(Day(today)) {
		return models.ProjectPlanning
	}
	return models.ProjectActive
}

// IncompleteTasks returns the tasks that are neither DONE nor CANCELLED.
func IncompleteTasks(tasks []models.Task) []models.Task {
	var out []models.Task
	for _, t := range tasks {
		if !t.Status.IsTerminal() {
			out = append(out, t)
		}
	}
	return out
}

// ValidateStatusTransition checks a proposed project status against the
// current one. incomplete is the project's tasks that are not DONE or CANCELLED.
func ValidateStatusTransition(current, proposed models.ProjectStatus, incomplete []models.Task) error {
	if current == proposed {
		return nil
	}
	if current == models.ProjectCancelled {
		return newValidation(KindInvalidTransition, "project is cancelled and cannot move to %s", proposed)
	}
	if proposed == models.ProjectCompleted && len(incomplete) > 0 {
		ids := make([]uint, 0, len(incomplete))
		names := make([]string, 0, len(incomplete))
		for _, t := range incomplete {
			ids = append(ids, t.ID)
			names = append(names, fmt.Sprintf("#%d %s (%s)", t.ID, t.Title, t.Status))
		}
		return &ValidationError{
			Kind:    KindInvalidTransition,
			Message: fmt.Sprintf("cannot complete project: %d incomplete task(s): %s", len(incomplete), strings.Join(names, ", ")),
			TaskIDs: ids,
		}
	}
	return nil
}

// CalculateAutoStatus returns the status a project should drift to on its
// own. A project with no tasks is never auto-completed.
func CalculateAutoStatus(project *models.Project, tasks []models.Task, today time.Time) models.ProjectStatus {
	switch project.Status {
	case models.ProjectOnHold, models.ProjectCancelled, models.ProjectCompleted:
		return project.Status
	}

	if len(tasks) > 0 {
		allDone := true
		for _, t := range tasks {
			if t.Status != models.TaskDone {
				allDone = false
				break
			}
		}
		if allDone {
			return models.ProjectCompleted
		}
	}

	if project.StartDate != nil {
		day := Day(today)
		start := Day(*project.StartDate)
		if day.Before(start) {
			return models.ProjectPlanning
		}
		if project.Status == models.ProjectPlanning {
			return models.ProjectActive
		}
	}
	return project.Status
}

// CanCreateTasksInProject is false once a project is COMPLETED or CANCELLED.
func CanCreateTasksInProject(status models.ProjectStatus) bool {
	return status != models.ProjectCompleted && status != models.ProjectCancelled
}

// OverallProgress is the mean task progress rounded to two decimals. DONE
// tasks count as 100 and an empty project is at 0.
func OverallProgress(tasks []models.Task) float64 {
	if len(tasks) == 0 {
		return 0
	}
	var sum float64
	for _, t := range tasks {
		if t.Status == models.TaskDone {
			sum += 100
			continue
		}
		sum += t.ProgressPct
	}
	return math.Round(sum/float64(len(tasks))*100) / 100
}

// StatusEngine applies project status changes and cascades them to tasks.
//
// With a Transactor the status write and the cascade commit or roll back
// together. Without one the cascade is best effort and failed task writes
// are reported in a *CascadeError.
type StatusEngine struct {
	stores Stores
	tx     Transactor
	log    zerolog.Logger
}

func NewStatusEngine(stores Stores, tx Transactor) *StatusEngine {
	return &StatusEngine{
		stores: stores,
		tx:     tx,
		log:    logger.With("status-engine"),
	}
}

func (e *StatusEngine) run(ctx context.Context, fn func(Stores) error) error {
	if e.tx != nil {
		return e.tx.InTx(ctx, fn)
	}
	return fn(e.stores)
}

// CascadeResult lists the tasks whose status was rewritten by a cascade.
type CascadeResult struct {
	ProjectID uint
	Status    models.ProjectStatus
	Changed   []uint
}

// UpdateTasksBasedOnProjectStatus re-derives every task of the project
// against newStatus and writes back only the statuses that differ.
func (e *StatusEngine) UpdateTasksBasedOnProjectStatus(ctx context.Context, projectID uint, newStatus models.ProjectStatus, today time.Time) (*CascadeResult, error) {
	var result *CascadeResult
	err := e.run(ctx, func(s Stores) error {
		r, err := e.cascade(ctx, s, projectID, newStatus, today)
		result = r
		return err
	})
	return result, err
}

func (e *StatusEngine) cascade(ctx context.Context, s Stores, projectID uint, status models.ProjectStatus, today time.Time) (*CascadeResult, error) {
	tasks, err := s.Tasks.ListByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("list tasks of project %d: %w", projectID, err)
	}

	result := &CascadeResult{ProjectID: projectID, Status: status}
	var failed map[uint]error
	for _, t := range tasks {
		next := DeriveTaskStatus(t.Status, status, t.StartDate, t.DueDate, today)
		if next == t.Status {
			continue
		}
		if err := s.Tasks.UpdateStatus(ctx, t.ID, next); err != nil {
			if e.tx != nil {
				return result, fmt.Errorf("update task %d status: %w", t.ID, err)
			}
			if failed == nil {
				failed = make(map[uint]error)
			}
			failed[t.ID] = err
			e.log.Error().Err(err).Uint("project_id", projectID).Uint("task_id", t.ID).Msg("cascade write failed")
			continue
		}
		result.Changed = append(result.Changed, t.ID)
	}

	if len(failed) > 0 {
		return result, &CascadeError{ProjectID: projectID, Failed: failed}
	}
	if len(result.Changed) > 0 {
		e.log.Debug().Uint("project_id", projectID).Str("status", string(status)).
			Int("changed", len(result.Changed)).Msg("cascade applied")
	}
	return result, nil
}

// ChangeProjectStatus validates and applies a requested project status,
// then cascades it to the project's tasks.
func (e *StatusEngine) ChangeProjectStatus(ctx context.Context, projectID uint, proposed models.ProjectStatus, today time.Time) (*CascadeResult, error) {
	var result *CascadeResult
	err := e.run(ctx, func(s Stores) error {
		project, err := s.Projects.Get(ctx, projectID)
		if err != nil {
			return err
		}
		tasks, err := s.Tasks.ListByProject(ctx, projectID)
		if err != nil {
			return fmt.Errorf("list tasks of project %d: %w", projectID, err)
		}
		if err := ValidateStatusTransition(project.Status, proposed, IncompleteTasks(tasks)); err != nil {
			return err
		}
		if project.Status == proposed {
			result = &CascadeResult{ProjectID: projectID, Status: proposed}
			return nil
		}
		if err := s.Projects.UpdateStatus(ctx, projectID, proposed); err != nil {
			return fmt.Errorf("update project %d status: %w", projectID, err)
		}
		r, err := e.cascade(ctx, s, projectID, proposed, today)
		result = r
		return err
	})
	return result, err
}

// RefreshAutoStatus applies CalculateAutoStatus to one project and cascades
// when the status moved. It reports whether anything changed.
func (e *StatusEngine) RefreshAutoStatus(ctx context.Context, projectID uint, today time.Time) (*CascadeResult, bool, error) {
	var (
		result  *CascadeResult
		changed bool
	)
	err := e.run(ctx, func(s Stores) error {
		project, err := s.Projects.Get(ctx, projectID)
		if err != nil {
			return err
		}
		tasks, err := s.Tasks.ListByProject(ctx, projectID)
		if err != nil {
			return fmt.Errorf("list tasks of project %d: %w", projectID, err)
		}
		next := CalculateAutoStatus(project, tasks, today)
		if next == project.Status {
			return nil
		}
		if err := s.Projects.UpdateStatus(ctx, projectID, next); err != nil {
			return fmt.Errorf("update project %d status: %w", projectID, err)
		}
		changed = true
		r, err := e.cascade(ctx, s, projectID, next, today)
		result = r
		return err
	})
	return result, changed, err
}
