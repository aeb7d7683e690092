package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/NafisaTasnimR/UpNext/internal/lifecycle"
	"github.com/NafisaTasnimR/UpNext/internal/models"
	"github.com/NafisaTasnimR/UpNext/pkg/logger"
)

// TaskService orchestrates task creation, progress and deletion through the
// lifecycle rules.
type TaskService struct {
	lc *Lifecycle
}

func NewTaskService(lc *Lifecycle) *TaskService {
	return &TaskService{lc: lc}
}

type CreateTaskRequest struct {
	Title          string   `json:"title" binding:"required,max=300"`
	Description    string   `json:"description"`
	ParentTaskID   *uint    `json:"parent_task_id"`
	AssigneeID     *uint    `json:"assignee_id"`
	Priority       string   `json:"priority"`
	StartDate      string   `json:"start_date"`
	DueDate        string   `json:"due_date"`
	EstimatedHours *float64 `json:"estimated_hours" binding:"omitempty,min=0"`
}

type UpdateTaskRequest struct {
	Title          string   `json:"title" binding:"omitempty,max=300"`
	Description    *string  `json:"description"`
	Priority       string   `json:"priority"`
	StartDate      string   `json:"start_date"`
	DueDate        string   `json:"due_date"`
	ParentTaskID   *uint    `json:"parent_task_id"`
	EstimatedHours *float64 `json:"estimated_hours" binding:"omitempty,min=0"`
	ActualHours    *float64 `json:"actual_hours" binding:"omitempty,min=0"`
}

type TaskListRequest struct {
	Status     string `form:"status"`
	AssigneeID *uint  `form:"assignee_id"`
	TopLevel   bool   `form:"top_level"`
}

// newTask builds the unsaved task shared by Create and CreateSubtask.
func newTask(projectID uint, req *CreateTaskRequest) (*models.Task, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, lifecycle.InvalidInput(errors.New("title is required"))
	}
	priority, err := models.ParsePriority(req.Priority)
	if err != nil {
		return nil, lifecycle.InvalidInput(err)
	}
	start, err := parseDate("start_date", req.StartDate)
	if err != nil {
		return nil, err
	}
	due, err := parseDate("due_date", req.DueDate)
	if err != nil {
		return nil, err
	}
	if err := checkDateOrder("start_date", start, "due_date", due); err != nil {
		return nil, err
	}
	return &models.Task{
		ProjectID:      projectID,
		AssigneeID:     req.AssigneeID,
		Title:          title,
		Description:    req.Description,
		Priority:       priority,
		StartDate:      start,
		DueDate:        due,
		EstimatedHours: req.EstimatedHours,
	}, nil
}

// Create adds a top-level task, or a subtask when ParentTaskID is set.
func (s *TaskService) Create(ctx context.Context, projectID uint, req *CreateTaskRequest, actor lifecycle.Actor) (*models.Task, error) {
	if req.ParentTaskID != nil {
		return s.createSubtask(ctx, *req.ParentTaskID, &projectID, req, actor)
	}

	task, err := newTask(projectID, req)
	if err != nil {
		return nil, err
	}
	err = s.lc.inTx(ctx, func(r txRules) error {
		project, err := r.Projects.Get(ctx, projectID)
		if err != nil {
			return hideMissing(err, actor)
		}
		if err := r.creation.AuthorizeTaskCreator(ctx, project, actor); err != nil {
			return err
		}
		if err := lifecycle.ValidateTaskCreation(project); err != nil {
			return err
		}
		if task.AssigneeID != nil {
			if err := r.creation.ValidateAssignee(ctx, projectID, *task.AssigneeID); err != nil {
				return err
			}
		}
		task.Status = lifecycle.InitialTaskStatus(project.Status, task.StartDate, task.DueDate, s.lc.Today())
		if err := r.Tasks.Save(ctx, task); err != nil {
			return fmt.Errorf("save task: %w", err)
		}
		return logActivity(ctx, r.Stores, actor, models.EntityTask, task.ID, models.ActionInsert,
			uintPtr(projectID), uintPtr(task.ID), "created task "+task.Title)
	})
	if err != nil {
		return nil, err
	}
	logger.Infof("[Task] Created task %d in project %d (%s) by %s", task.ID, projectID, task.Status, actor.Username)
	return task, nil
}

// CreateSubtask adds a task under parentID. A DONE parent is reopened to
// IN_PROGRESS in the same transaction.
func (s *TaskService) CreateSubtask(ctx context.Context, parentID uint, req *CreateTaskRequest, actor lifecycle.Actor) (*models.Task, error) {
	return s.createSubtask(ctx, parentID, nil, req, actor)
}

func (s *TaskService) createSubtask(ctx context.Context, parentID uint, projectID *uint, req *CreateTaskRequest, actor lifecycle.Actor) (*models.Task, error) {
	var task *models.Task
	reopened := false
	err := s.lc.inTx(ctx, func(r txRules) error {
		parent, err := r.Tasks.Get(ctx, parentID)
		if err != nil {
			return hideMissing(err, actor)
		}
		if projectID != nil && parent.ProjectID != *projectID {
			return &lifecycle.ValidationError{
				Kind:    lifecycle.KindInvalidParent,
				Message: fmt.Sprintf("parent task %d belongs to a different project", parent.ID),
			}
		}
		if err := r.creation.AuthorizeSubtaskCreator(ctx, parent, actor); err != nil {
			return err
		}
		plan, err := r.creation.ValidateSubtaskCreation(ctx, parent)
		if err != nil {
			return err
		}

		task, err = newTask(parent.ProjectID, req)
		if err != nil {
			return err
		}
		task.ParentTaskID = uintPtr(parent.ID)
		if task.AssigneeID != nil {
			if err := r.creation.ValidateAssignee(ctx, parent.ProjectID, *task.AssigneeID); err != nil {
				return err
			}
		}
		task.Status = lifecycle.InitialTaskStatus(plan.Project.Status, task.StartDate, task.DueDate, s.lc.Today())
		if err := r.Tasks.Save(ctx, task); err != nil {
			return fmt.Errorf("save subtask: %w", err)
		}
		if err := logActivity(ctx, r.Stores, actor, models.EntityTask, task.ID, models.ActionInsert,
			uintPtr(parent.ProjectID), uintPtr(task.ID), fmt.Sprintf("created subtask %s under task %d", task.Title, parent.ID)); err != nil {
			return err
		}

		if plan.ReopensParent {
			if err := r.Tasks.UpdateStatus(ctx, parent.ID, models.TaskInProgress); err != nil {
				return fmt.Errorf("reopen parent task: %w", err)
			}
			reopened = true
			return logActivity(ctx, r.Stores, actor, models.EntityTask, parent.ID, models.ActionStatusChange,
				uintPtr(parent.ProjectID), uintPtr(parent.ID), "reopened by new subtask")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if reopened {
		logger.Infof("[Task] Parent task %d reopened by subtask %d", parentID, task.ID)
	}
	return task, nil
}

// Get returns a task of a project the actor may see.
func (s *TaskService) Get(ctx context.Context, id uint, actor lifecycle.Actor) (*models.Task, error) {
	st := s.lc.store.Stores()
	task, err := st.Tasks.Get(ctx, id)
	if err != nil {
		return nil, hideMissing(err, actor)
	}
	if _, err := visibleProject(ctx, st, task.ProjectID, actor); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *TaskService) ListByProject(ctx context.Context, projectID uint, req *TaskListRequest, actor lifecycle.Actor) ([]models.Task, error) {
	st := s.lc.store.Stores()
	if _, err := visibleProject(ctx, st, projectID, actor); err != nil {
		return nil, err
	}
	var statusFilter models.TaskStatus
	if req != nil && req.Status != "" {
		status, err := models.ParseTaskStatus(req.Status)
		if err != nil {
			return nil, lifecycle.InvalidInput(err)
		}
		statusFilter = status
	}

	tasks, err := st.Tasks.ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return tasks, nil
	}
	out := tasks[:0]
	for _, t := range tasks {
		if statusFilter != "" && t.Status != statusFilter {
			continue
		}
		if req.AssigneeID != nil && (t.AssigneeID == nil || *t.AssigneeID != *req.AssigneeID) {
			continue
		}
		if req.TopLevel && t.IsSubtask() {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

// Blocked lists the BLOCKED tasks of a project.
func (s *TaskService) Blocked(ctx context.Context, projectID uint, actor lifecycle.Actor) ([]models.Task, error) {
	return s.ListByProject(ctx, projectID, &TaskListRequest{Status: string(models.TaskBlocked)}, actor)
}

func (s *TaskService) Children(ctx context.Context, parentID uint, actor lifecycle.Actor) ([]models.Task, error) {
	parent, err := s.Get(ctx, parentID, actor)
	if err != nil {
		return nil, err
	}
	return s.lc.store.Stores().Tasks.ListChildren(ctx, parent.ID)
}

// MyTasks lists the tasks assigned to the actor.
func (s *TaskService) MyTasks(ctx context.Context, actor lifecycle.Actor) ([]models.Task, error) {
	return s.lc.store.Stores().Tasks.ListByAssignee(ctx, actor.UserID)
}

// workable loads a task the actor may work on: ADMIN, the assignee, or a
// manager of the task's project.
func workable(ctx context.Context, r txRules, id uint, actor lifecycle.Actor) (*models.Task, *models.Project, error) {
	task, err := r.Tasks.Get(ctx, id)
	if err != nil {
		return nil, nil, hideMissing(err, actor)
	}
	project, err := r.Projects.Get(ctx, task.ProjectID)
	if err != nil {
		return nil, nil, hideMissing(err, actor)
	}
	if actor.IsAdmin() || (task.AssigneeID != nil && *task.AssigneeID == actor.UserID) {
		return task, project, nil
	}
	ok, err := canManage(ctx, r.Stores, project, actor)
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		return nil, nil, lifecycle.ErrForbidden
	}
	return task, project, nil
}

func rejectTerminal(task *models.Task, action string) error {
	if task.Status.IsTerminal() {
		return &lifecycle.ValidationError{
			Kind:    lifecycle.KindInvalidTransition,
			Message: fmt.Sprintf("cannot %s task %q: it is %s", action, task.Title, task.Status),
			TaskIDs: []uint{task.ID},
		}
	}
	return nil
}

// Start moves the task to IN_PROGRESS once every predecessor is DONE.
func (s *TaskService) Start(ctx context.Context, id uint, actor lifecycle.Actor) (*models.Task, error) {
	return s.transition(ctx, id, actor, func(r txRules, task *models.Task) error {
		if err := rejectTerminal(task, "start"); err != nil {
			return err
		}
		if err := r.deps.RequireDependenciesSatisfied(ctx, id); err != nil {
			return err
		}
		return r.Tasks.UpdateStatus(ctx, id, models.TaskInProgress)
	}, "started")
}

// Complete marks the task DONE with full progress once every predecessor is DONE.
func (s *TaskService) Complete(ctx context.Context, id uint, actor lifecycle.Actor) (*models.Task, error) {
	return s.transition(ctx, id, actor, func(r txRules, task *models.Task) error {
		if task.Status == models.TaskCancelled {
			return rejectTerminal(task, "complete")
		}
		if err := r.deps.RequireDependenciesSatisfied(ctx, id); err != nil {
			return err
		}
		if err := r.Tasks.SetProgress(ctx, id, 100); err != nil {
			return err
		}
		return r.Tasks.UpdateStatus(ctx, id, models.TaskDone)
	}, "completed")
}

// SetProgress records progress in [0, 100]. Reaching 100 completes the task
// and is gated on dependencies like Complete.
func (s *TaskService) SetProgress(ctx context.Context, id uint, pct float64, actor lifecycle.Actor) (*models.Task, error) {
	if pct < 0 || pct > 100 {
		return nil, &lifecycle.ValidationError{
			Kind:    lifecycle.KindInvalidProgress,
			Message: fmt.Sprintf("progress must be between 0 and 100, got %g", pct),
			TaskIDs: []uint{id},
		}
	}
	return s.transition(ctx, id, actor, func(r txRules, task *models.Task) error {
		if pct == 100 {
			if task.Status == models.TaskCancelled {
				return rejectTerminal(task, "complete")
			}
			if err := r.deps.RequireDependenciesSatisfied(ctx, id); err != nil {
				return err
			}
		}
		if err := r.Tasks.SetProgress(ctx, id, pct); err != nil {
			return err
		}
		if pct == 100 {
			return r.Tasks.UpdateStatus(ctx, id, models.TaskDone)
		}
		return nil
	}, fmt.Sprintf("progress set to %g", pct))
}

// ChangeStatus applies a manually chosen status. IN_PROGRESS and DONE go
// through Start and Complete so the dependency gate always applies.
func (s *TaskService) ChangeStatus(ctx context.Context, id uint, status string, actor lifecycle.Actor) (*models.Task, error) {
	next, err := models.ParseTaskStatus(status)
	if err != nil {
		return nil, lifecycle.InvalidInput(err)
	}
	switch next {
	case models.TaskInProgress:
		return s.Start(ctx, id, actor)
	case models.TaskDone:
		return s.Complete(ctx, id, actor)
	}
	return s.transition(ctx, id, actor, func(r txRules, task *models.Task) error {
		if task.Status == models.TaskCancelled && next != models.TaskCancelled {
			return rejectTerminal(task, "reopen")
		}
		return r.Tasks.UpdateStatus(ctx, id, next)
	}, "status set to "+string(next))
}

func (s *TaskService) transition(ctx context.Context, id uint, actor lifecycle.Actor,
	apply func(r txRules, task *models.Task) error, what string) (*models.Task, error) {
	var updated *models.Task
	err := s.lc.inTx(ctx, func(r txRules) error {
		task, _, err := workable(ctx, r, id, actor)
		if err != nil {
			return err
		}
		if err := apply(r, task); err != nil {
			return err
		}
		if err := logActivity(ctx, r.Stores, actor, models.EntityTask, id, models.ActionStatusChange,
			uintPtr(task.ProjectID), uintPtr(id), what); err != nil {
			return err
		}
		updated, err = r.Tasks.Get(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	logger.Debugf("[Task] Task %d %s by %s", id, what, actor.Username)
	return updated, nil
}

// Assign sets or clears the task's assignee. Only ADMIN and project managers
// may assign, and the assignee must be a project member.
func (s *TaskService) Assign(ctx context.Context, id uint, assigneeID *uint, actor lifecycle.Actor) (*models.Task, error) {
	var updated *models.Task
	err := s.lc.inTx(ctx, func(r txRules) error {
		task, err := r.Tasks.Get(ctx, id)
		if err != nil {
			return hideMissing(err, actor)
		}
		project, err := r.Projects.Get(ctx, task.ProjectID)
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
		details := "unassigned"
		if assigneeID != nil {
			if err := r.creation.ValidateAssignee(ctx, task.ProjectID, *assigneeID); err != nil {
				return err
			}
			details = fmt.Sprintf("assigned to user %d", *assigneeID)
		}
		if err := r.Tasks.Assign(ctx, id, assigneeID); err != nil {
			return err
		}
		if err := logActivity(ctx, r.Stores, actor, models.EntityTask, id, models.ActionUpdate,
			uintPtr(task.ProjectID), uintPtr(id), details); err != nil {
			return err
		}
		updated, err = r.Tasks.Get(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Update edits task fields. A date change re-derives the status from the
// project status. A new parent passes the same checks as subtask creation,
// and a DONE parent is reopened to IN_PROGRESS.
func (s *TaskService) Update(ctx context.Context, id uint, req *UpdateTaskRequest, actor lifecycle.Actor) (*models.Task, error) {
	var updated *models.Task
	err := s.lc.inTx(ctx, func(r txRules) error {
		task, project, err := workable(ctx, r, id, actor)
		if err != nil {
			return err
		}

		if title := strings.TrimSpace(req.Title); title != "" {
			task.Title = title
		}
		if req.Description != nil {
			task.Description = *req.Description
		}
		if req.Priority != "" {
			if task.Priority, err = models.ParsePriority(req.Priority); err != nil {
				return lifecycle.InvalidInput(err)
			}
		}
		datesChanged := false
		if req.StartDate != "" {
			if task.StartDate, err = parseDate("start_date", req.StartDate); err != nil {
				return err
			}
			datesChanged = true
		}
		if req.DueDate != "" {
			if task.DueDate, err = parseDate("due_date", req.DueDate); err != nil {
				return err
			}
			datesChanged = true
		}
		if err := checkDateOrder("start_date", task.StartDate, "due_date", task.DueDate); err != nil {
			return err
		}
		var reopen *models.Task
		if req.ParentTaskID != nil && (task.ParentTaskID == nil || *task.ParentTaskID != *req.ParentTaskID) {
			if err := r.creation.ValidateParent(ctx, task, *req.ParentTaskID); err != nil {
				return err
			}
			parent, err := r.Tasks.Get(ctx, *req.ParentTaskID)
			if err != nil {
				return err
			}
			if err := r.creation.AuthorizeSubtaskCreator(ctx, parent, actor); err != nil {
				return err
			}
			plan, err := r.creation.ValidateSubtaskCreation(ctx, parent)
			if err != nil {
				return err
			}
			if plan.ReopensParent {
				reopen = parent
			}
			task.ParentTaskID = uintPtr(parent.ID)
		}
		if req.EstimatedHours != nil {
			task.EstimatedHours = req.EstimatedHours
		}
		if req.ActualHours != nil {
			task.ActualHours = req.ActualHours
		}
		if datesChanged {
			task.Status = lifecycle.DeriveTaskStatus(task.Status, project.Status, task.StartDate, task.DueDate, s.lc.Today())
		}

		if err := r.Tasks.Save(ctx, task); err != nil {
			return fmt.Errorf("save task: %w", err)
		}
		if err := logActivity(ctx, r.Stores, actor, models.EntityTask, id, models.ActionUpdate,
			uintPtr(task.ProjectID), uintPtr(id), "updated task fields"); err != nil {
			return err
		}
		updated = task
		if reopen != nil {
			if err := r.Tasks.UpdateStatus(ctx, reopen.ID, models.TaskInProgress); err != nil {
				return fmt.Errorf("reopen parent task: %w", err)
			}
			return logActivity(ctx, r.Stores, actor, models.EntityTask, reopen.ID, models.ActionStatusChange,
				uintPtr(reopen.ProjectID), uintPtr(reopen.ID), fmt.Sprintf("reopened by subtask %d", id))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes the task and its subtree when the actor created it; members
// may only delete subtasks they created.
func (s *TaskService) Delete(ctx context.Context, id uint, actor lifecycle.Actor) error {
	task, err := s.lc.Guard.DeleteTaskWithAuth(ctx, id, actor)
	if err != nil {
		return err
	}
	if err := logActivity(ctx, s.lc.store.Stores(), actor, models.EntityTask, id, models.ActionDelete,
		uintPtr(task.ProjectID), nil, "deleted task "+task.Title); err != nil {
		logger.Warnf("[Task] %v", err)
	}
	logger.Infof("[Task] Deleted task %d by %s", id, actor.Username)
	return nil
}

type CommentRequest struct {
	Body string `json:"body" binding:"required"`
}

type AttachmentRequest struct {
	FileName string `json:"file_name" binding:"required,max=255"`
	FilePath string `json:"file_path" binding:"max=1000"`
}

// AddComment lets anyone who can see the task comment on it.
func (s *TaskService) AddComment(ctx context.Context, taskID uint, req *CommentRequest, actor lifecycle.Actor) (*models.Comment, error) {
	body := strings.TrimSpace(req.Body)
	if body == "" {
		return nil, lifecycle.InvalidInput(errors.New("comment body is required"))
	}
	if _, err := s.Get(ctx, taskID, actor); err != nil {
		return nil, err
	}
	comment := &models.Comment{TaskID: taskID, UserID: actor.UserID, Body: body}
	if err := s.lc.store.Comments().AddComment(ctx, comment); err != nil {
		return nil, fmt.Errorf("add comment: %w", err)
	}
	return comment, nil
}

func (s *TaskService) Comments(ctx context.Context, taskID uint, actor lifecycle.Actor) ([]models.Comment, error) {
	if _, err := s.Get(ctx, taskID, actor); err != nil {
		return nil, err
	}
	return s.lc.store.Comments().ListComments(ctx, taskID)
}

// AddAttachment records attachment metadata; the file itself is stored elsewhere.
func (s *TaskService) AddAttachment(ctx context.Context, taskID uint, req *AttachmentRequest, actor lifecycle.Actor) (*models.Attachment, error) {
	if strings.TrimSpace(req.FileName) == "" {
		return nil, lifecycle.InvalidInput(errors.New("file_name is required"))
	}
	if _, err := s.Get(ctx, taskID, actor); err != nil {
		return nil, err
	}
	attachment := &models.Attachment{
		TaskID:     taskID,
		FileName:   strings.TrimSpace(req.FileName),
		FilePath:   req.FilePath,
		UploadedBy: actor.UserID,
	}
	if err := s.lc.store.Comments().AddAttachment(ctx, attachment); err != nil {
		return nil, fmt.Errorf("add attachment: %w", err)
	}
	return attachment, nil
}

func (s *TaskService) Attachments(ctx context.Context, taskID uint, actor lifecycle.Actor) ([]models.Attachment, error) {
	if _, err := s.Get(ctx, taskID, actor); err != nil {
		return nil, err
	}
	return s.lc.store.Comments().ListAttachments(ctx, taskID)
}
