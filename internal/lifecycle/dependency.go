package lifecycle

import (
	"context"
	"fmt"
	"strings"

	"github.com/NafisaTasnimR/UpNext/internal/models"
)

// DependencyChecker gates task start and completion on predecessors.
type DependencyChecker struct {
	deps  DependencyStore
	tasks TaskStore
}

func NewDependencyChecker(deps DependencyStore, tasks TaskStore) *DependencyChecker {
	return &DependencyChecker{deps: deps, tasks: tasks}
}

// HasUnfinishedPredecessor reports whether any predecessor of taskID is not DONE.
func (c *DependencyChecker) HasUnfinishedPredecessor(ctx context.Context, taskID uint) (bool, error) {
	return c.deps.HasUnfinishedPredecessor(ctx, taskID)
}

// RequireDependenciesSatisfied fails with ErrUnfinishedDependencies naming
// the blocking predecessors.
func (c *DependencyChecker) RequireDependenciesSatisfied(ctx context.Context, taskID uint) error {
	blocked, err := c.deps.HasUnfinishedPredecessor(ctx, taskID)
	if err != nil {
		return fmt.Errorf("check dependencies of task %d: %w", taskID, err)
	}
	if !blocked {
		return nil
	}

	preds, err := c.deps.ListForSuccessor(ctx, taskID)
	if err != nil {
		return fmt.Errorf("list predecessors of task %d: %w", taskID, err)
	}
	var (
		ids   []uint
		names []string
	)
	for _, p := range preds {
		if p.Status == models.TaskDone {
			continue
		}
		ids = append(ids, p.ID)
		names = append(names, fmt.Sprintf("#%d %s", p.ID, p.Title))
	}
	return &ValidationError{
		Kind:    KindUnfinishedDependencies,
		Message: "task has unfinished predecessors: " + strings.Join(names, ", "),
		TaskIDs: ids,
	}
}

// ValidateNewDependency checks a predecessor -> successor edge before it is
// stored: both tasks exist in the same project, the edge is new, and it does
// not close a cycle.
func (c *DependencyChecker) ValidateNewDependency(ctx context.Context, predecessorID, successorID uint) error {
	if predecessorID == successorID {
		return newValidation(KindDependencyCycle, "a task cannot depend on itself")
	}

	pred, err := c.tasks.Get(ctx, predecessorID)
	if err != nil {
		return err
	}
	succ, err := c.tasks.Get(ctx, successorID)
	if err != nil {
		return err
	}
	if pred.ProjectID != succ.ProjectID {
		return newValidation(KindInvalidInput, "dependencies must stay within one project")
	}

	exists, err := c.deps.Exists(ctx, predecessorID, successorID)
	if err != nil {
		return fmt.Errorf("check dependency: %w", err)
	}
	if exists {
		return newValidation(KindInvalidInput, "task %d already depends on task %d", successorID, predecessorID)
	}

	// The new edge closes a cycle iff the predecessor is already reachable
	// from the successor.
	reachable, err := c.reachable(ctx, successorID, predecessorID)
	if err != nil {
		return err
	}
	if reachable {
		return newValidation(KindDependencyCycle, "task %d already depends on task %d through other tasks", predecessorID, successorID)
	}
	return nil
}

func (c *DependencyChecker) reachable(ctx context.Context, from, to uint) (bool, error) {
	seen := map[uint]bool{from: true}
	queue := []uint{from}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		next, err := c.deps.ListSuccessorIDs(ctx, id)
		if err != nil {
			return false, fmt.Errorf("walk dependencies of task %d: %w", id, err)
		}
		for _, n := range next {
			if n == to {
				return true, nil
			}
			if !seen[n] {
				seen[n] = true
				queue = append(queue, n)
			}
		}
	}
	return false, nil
}
