package lifecycle

import (
	"context"
	"errors"
	"fmt"

	"github.com/NafisaTasnimR/UpNext/internal/models"
)

// CreationValidator decides whether tasks and subtasks may be created and by whom.
type CreationValidator struct {
	projects ProjectStore
	tasks    TaskStore
	members  MembershipStore
}

func NewCreationValidator(projects ProjectStore, tasks TaskStore, members MembershipStore) *CreationValidator {
	return &CreationValidator{projects: projects, tasks: tasks, members: members}
}

// ValidateTaskCreation rejects new tasks in COMPLETED or CANCELLED projects.
func ValidateTaskCreation(project *models.Project) error {
	if !CanCreateTasksInProject(project.Status) {
		return newValidation(KindProjectClosed, "project %q is %s; no new tasks can be added", project.Name, project.Status)
	}
	return nil
}

// SubtaskPlan is the outcome of a successful subtask validation.
type SubtaskPlan struct {
	Project *models.Project
	// ReopensParent is set when the parent is DONE and has to go back to IN_PROGRESS.
	ReopensParent bool
}

// ValidateSubtaskCreation checks the parent's project first, then the parent itself.
func (v *CreationValidator) ValidateSubtaskCreation(ctx context.Context, parent *models.Task) (*SubtaskPlan, error) {
	project, err := v.projects.Get(ctx, parent.ProjectID)
	if err != nil {
		return nil, err
	}
	if err := ValidateTaskCreation(project); err != nil {
		return nil, err
	}

	switch parent.Status {
	case models.TaskBlocked:
		return nil, newValidation(KindParentBlocked, "parent task %q is blocked", parent.Title)
	case models.TaskCancelled:
		return nil, newValidation(KindParentCancelled, "parent task %q is cancelled", parent.Title)
	}
	return &SubtaskPlan{Project: project, ReopensParent: parent.Status == models.TaskDone}, nil
}

// ManagesProject reports whether the user holds OWNER or MANAGER on the project.
func ManagesProject(ctx context.Context, members MembershipStore, projectID, userID uint) (bool, error) {
	for _, role := range []models.MemberRole{models.MemberRoleManager, models.MemberRoleOwner} {
		ok, err := members.HasRole(ctx, projectID, userID, role)
		if err != nil {
			return false, fmt.Errorf("check project role: %w", err)
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// AuthorizeSubtaskCreator permits ADMIN, a manager of the project, or the
// parent task's assignee.
func (v *CreationValidator) AuthorizeSubtaskCreator(ctx context.Context, parent *models.Task, actor Actor) error {
	if actor.IsAdmin() {
		return nil
	}
	if parent.AssigneeID != nil && *parent.AssigneeID == actor.UserID {
		return nil
	}
	manages, err := ManagesProject(ctx, v.members, parent.ProjectID, actor.UserID)
	if err != nil {
		return err
	}
	if manages {
		return nil
	}
	return ErrForbidden
}

// AuthorizeTaskCreator permits ADMIN or a manager of the project to add top-level tasks.
func (v *CreationValidator) AuthorizeTaskCreator(ctx context.Context, project *models.Project, actor Actor) error {
	if actor.IsAdmin() {
		return nil
	}
	manages, err := ManagesProject(ctx, v.members, project.ID, actor.UserID)
	if err != nil {
		return err
	}
	if manages {
		return nil
	}
	return ErrForbidden
}

// ValidateAssignee requires the assignee to be a member of the project.
func (v *CreationValidator) ValidateAssignee(ctx context.Context, projectID, assigneeID uint) error {
	ok, err := v.members.IsMember(ctx, projectID, assigneeID)
	if err != nil {
		return fmt.Errorf("check membership: %w", err)
	}
	if !ok {
		return newValidation(KindNotAProjectMember, "user %d is not a member of project %d", assigneeID, projectID)
	}
	return nil
}

// ValidateParent checks that parentID may become the parent of task: same
// project, and task is not an ancestor of parentID. A zero task.ID means the
// task is new and cannot be anyone's ancestor yet.
func (v *CreationValidator) ValidateParent(ctx context.Context, task *models.Task, parentID uint) error {
	if task.ID != 0 && task.ID == parentID {
		return newValidation(KindInvalidParent, "a task cannot be its own parent")
	}

	parent, err := v.tasks.Get(ctx, parentID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return newValidation(KindInvalidParent, "parent task %d does not exist", parentID)
		}
		return err
	}
	if parent.ProjectID != task.ProjectID {
		return newValidation(KindInvalidParent, "parent task belongs to a different project")
	}
	if task.ID == 0 {
		return nil
	}

	seen := map[uint]bool{}
	for cur := parent; cur.ParentTaskID != nil; {
		next := *cur.ParentTaskID
		if next == task.ID {
			return newValidation(KindInvalidParent, "task %d would become its own ancestor", task.ID)
		}
		if seen[next] {
			break
		}
		seen[next] = true
		cur, err = v.tasks.Get(ctx, next)
		if err != nil {
			return fmt.Errorf("walk ancestors of task %d: %w", parentID, err)
		}
	}
	return nil
}
