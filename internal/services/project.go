package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/NafisaTasnimR/UpNext/internal/lifecycle"
	"github.com/NafisaTasnimR/UpNext/internal/models"
	"github.com/NafisaTasnimR/UpNext/pkg/logger"
	"github.com/NafisaTasnimR/UpNext/pkg/metrics"
)

type ProjectService struct {
	lc *Lifecycle
}

func NewProjectService(lc *Lifecycle) *ProjectService {
	return &ProjectService{lc: lc}
}

type ProjectListRequest struct {
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	Name     string `form:"name"`
	Status   string `form:"status"`
}

type ProjectListResponse struct {
	Total    int64            `json:"total"`
	Page     int              `json:"page"`
	PageSize int              `json:"page_size"`
	Items    []models.Project `json:"items"`
}

type CreateProjectRequest struct {
	Name        string `json:"name" binding:"required,max=200"`
	Description string `json:"description"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
}

type UpdateProjectRequest struct {
	Name        string  `json:"name" binding:"omitempty,max=200"`
	Description *string `json:"description"`
	StartDate   string  `json:"start_date"`
	EndDate     string  `json:"end_date"`
	Status      string  `json:"status"`
}

// ProjectDetail is a project with its aggregate progress.
type ProjectDetail struct {
	models.Project
	Progress  float64 `json:"progress"`
	TaskCount int     `json:"task_count"`
}

// Create opens a project owned by the actor. Only ADMIN and MANAGER accounts
// may create projects.
func (s *ProjectService) Create(ctx context.Context, req *CreateProjectRequest, actor lifecycle.Actor) (*models.Project, error) {
	if !actor.IsAdmin() && !actor.IsManager() {
		return nil, lifecycle.ErrForbidden
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, lifecycle.InvalidInput(errors.New("name is required"))
	}
	start, err := parseDate("start_date", req.StartDate)
	if err != nil {
		return nil, err
	}
	end, err := parseDate("end_date", req.EndDate)
	if err != nil {
		return nil, err
	}
	if err := checkDateOrder("start_date", start, "end_date", end); err != nil {
		return nil, err
	}

	project := &models.Project{
		Name:        name,
		Description: req.Description,
		OwnerID:     actor.UserID,
		StartDate:   start,
		EndDate:     end,
		Status:      lifecycle.DetermineInitialStatus(start, s.lc.Today()),
	}
	err = s.lc.inTx(ctx, func(r txRules) error {
		if err := r.Projects.Save(ctx, project); err != nil {
			return fmt.Errorf("save project: %w", err)
		}
		if err := r.Members.Upsert(ctx, project.ID, actor.UserID, models.MemberRoleOwner); err != nil {
			return fmt.Errorf("add owner membership: %w", err)
		}
		return logActivity(ctx, r.Stores, actor, models.EntityProject, project.ID, models.ActionInsert,
			uintPtr(project.ID), nil, "created project "+project.Name)
	})
	if err != nil {
		return nil, err
	}

	logger.Infof("[Project] Created project %d (%s) by %s", project.ID, project.Status, actor.Username)
	return project, nil
}

// Get returns the project with its progress if the actor may see it.
func (s *ProjectService) Get(ctx context.Context, id uint, actor lifecycle.Actor) (*ProjectDetail, error) {
	st := s.lc.store.Stores()
	project, err := visibleProject(ctx, st, id, actor)
	if err != nil {
		return nil, err
	}
	tasks, err := st.Tasks.ListByProject(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list tasks of project %d: %w", id, err)
	}
	return &ProjectDetail{
		Project:   *project,
		Progress:  lifecycle.OverallProgress(tasks),
		TaskCount: len(tasks),
	}, nil
}

// List returns the projects visible to the actor: every project for ADMIN,
// otherwise the ones the actor owns or belongs to.
func (s *ProjectService) List(ctx context.Context, req *ProjectListRequest, actor lifecycle.Actor) (*ProjectListResponse, error) {
	if req.Page <= 0 {
		req.Page = 1
	}
	if req.PageSize <= 0 {
		req.PageSize = 10
	}
	var statusFilter models.ProjectStatus
	if req.Status != "" {
		status, err := models.ParseProjectStatus(req.Status)
		if err != nil {
			return nil, lifecycle.InvalidInput(err)
		}
		statusFilter = status
	}

	projects, err := s.visible(ctx, actor)
	if err != nil {
		return nil, err
	}

	filtered := projects[:0]
	for _, p := range projects {
		if req.Name != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(req.Name)) {
			continue
		}
		if statusFilter != "" && p.Status != statusFilter {
			continue
		}
		filtered = append(filtered, p)
	}

	total := len(filtered)
	from := (req.Page - 1) * req.PageSize
	if from > total {
		from = total
	}
	to := from + req.PageSize
	if to > total {
		to = total
	}
	return &ProjectListResponse{
		Total:    int64(total),
		Page:     req.Page,
		PageSize: req.PageSize,
		Items:    filtered[from:to],
	}, nil
}

func (s *ProjectService) visible(ctx context.Context, actor lifecycle.Actor) ([]models.Project, error) {
	projects := s.lc.store.Stores().Projects
	if actor.IsAdmin() {
		return projects.ListAll(ctx)
	}
	owned, err := projects.ListByOwner(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	joined, err := projects.ListByMember(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}

	seen := make(map[uint]bool, len(owned)+len(joined))
	out := make([]models.Project, 0, len(owned)+len(joined))
	for _, list := range [][]models.Project{owned, joined} {
		for _, p := range list {
			if !seen[p.ID] {
				seen[p.ID] = true
				out = append(out, p)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Update changes project fields and, when Status is set, moves the project
// through the status engine. The transition is validated before any field is written.
func (s *ProjectService) Update(ctx context.Context, id uint, req *UpdateProjectRequest, actor lifecycle.Actor) (*models.Project, error) {
	st := s.lc.store.Stores()
	project, err := st.Projects.Get(ctx, id)
	if err != nil {
		return nil, hideMissing(err, actor)
	}
	ok, err := canManage(ctx, st, project, actor)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, lifecycle.ErrForbidden
	}

	var proposed models.ProjectStatus
	if req.Status != "" {
		proposed, err = models.ParseProjectStatus(req.Status)
		if err != nil {
			return nil, lifecycle.InvalidInput(err)
		}
		tasks, err := st.Tasks.ListByProject(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("list tasks of project %d: %w", id, err)
		}
		if err := lifecycle.ValidateStatusTransition(project.Status, proposed, lifecycle.IncompleteTasks(tasks)); err != nil {
			return nil, err
		}
	}

	changed := false
	if name := strings.TrimSpace(req.Name); name != "" && name != project.Name {
		project.Name = name
		changed = true
	}
	if req.Description != nil && *req.Description != project.Description {
		project.Description = *req.Description
		changed = true
	}
	if req.StartDate != "" {
		if project.StartDate, err = parseDate("start_date", req.StartDate); err != nil {
			return nil, err
		}
		changed = true
	}
	if req.EndDate != "" {
		if project.EndDate, err = parseDate("end_date", req.EndDate); err != nil {
			return nil, err
		}
		changed = true
	}
	if err := checkDateOrder("start_date", project.StartDate, "end_date", project.EndDate); err != nil {
		return nil, err
	}

	if changed {
		err = s.lc.inTx(ctx, func(r txRules) error {
			if err := r.Projects.Save(ctx, project); err != nil {
				return fmt.Errorf("save project: %w", err)
			}
			return logActivity(ctx, r.Stores, actor, models.EntityProject, id, models.ActionUpdate, uintPtr(id), nil, "updated project fields")
		})
		if err != nil {
			return nil, err
		}
	}

	if proposed != "" && proposed != project.Status {
		if _, err := s.changeStatus(ctx, project, proposed, actor); err != nil {
			return nil, err
		}
	}
	return st.Projects.Get(ctx, id)
}

// ChangeStatus validates the requested status, writes it and cascades the
// result to every task of the project.
func (s *ProjectService) ChangeStatus(ctx context.Context, id uint, status string, actor lifecycle.Actor) (*lifecycle.CascadeResult, error) {
	proposed, err := models.ParseProjectStatus(status)
	if err != nil {
		return nil, lifecycle.InvalidInput(err)
	}
	st := s.lc.store.Stores()
	project, err := st.Projects.Get(ctx, id)
	if err != nil {
		return nil, hideMissing(err, actor)
	}
	ok, err := canManage(ctx, st, project, actor)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, lifecycle.ErrForbidden
	}
	return s.changeStatus(ctx, project, proposed, actor)
}

func (s *ProjectService) changeStatus(ctx context.Context, project *models.Project, proposed models.ProjectStatus, actor lifecycle.Actor) (*lifecycle.CascadeResult, error) {
	result, err := s.lc.Engine.ChangeProjectStatus(ctx, project.ID, proposed, s.lc.Today())
	if err != nil {
		return nil, err
	}
	if project.Status == proposed {
		return result, nil
	}

	metrics.IncrementProjectStatusChange(string(proposed), "manual")
	metrics.IncrementCascadeChanges(string(proposed), len(result.Changed))
	details := fmt.Sprintf("status %s -> %s, %d task(s) updated", project.Status, proposed, len(result.Changed))
	if err := logActivity(ctx, s.lc.store.Stores(), actor, models.EntityProject, project.ID, models.ActionStatusChange,
		uintPtr(project.ID), nil, details); err != nil {
		logger.Warnf("[Project] %v", err)
	}
	logger.Infof("[Project] Project %d %s by %s", project.ID, details, actor.Username)
	return result, nil
}

// Progress is the mean task progress of a project, DONE counting as 100.
func (s *ProjectService) Progress(ctx context.Context, id uint, actor lifecycle.Actor) (float64, error) {
	detail, err := s.Get(ctx, id, actor)
	if err != nil {
		return 0, err
	}
	return detail.Progress, nil
}

// Activity returns the newest activity rows of a project and its tasks.
func (s *ProjectService) Activity(ctx context.Context, id uint, limit int, actor lifecycle.Actor) ([]models.ActivityLog, error) {
	if _, err := visibleProject(ctx, s.lc.store.Stores(), id, actor); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.lc.store.Activity().ListForProject(ctx, id, limit)
}

// Delete removes the project and everything under it. Only an ADMIN who
// owns the project may do so; any other attempt is forbidden.
func (s *ProjectService) Delete(ctx context.Context, id uint, actor lifecycle.Actor) error {
	project, err := s.lc.Guard.DeleteProjectWithAuth(ctx, id, actor)
	if err != nil {
		return err
	}
	if err := logActivity(ctx, s.lc.store.Stores(), actor, models.EntityProject, id, models.ActionDelete, nil, nil,
		"deleted project "+project.Name); err != nil {
		logger.Warnf("[Project] %v", err)
	}
	logger.Infof("[Project] Deleted project %d by %s", id, actor.Username)
	return nil
}

// RefreshAutoStatuses applies the automatic status rules to every project.
// A failure on one project does not stop the others.
func (s *ProjectService) RefreshAutoStatuses(ctx context.Context) (int, error) {
	projects, err := s.lc.store.Stores().Projects.ListAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("list projects: %w", err)
	}

	today := s.lc.Today()
	changed := 0
	var errs []error
	for _, p := range projects {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		result, moved, err := s.lc.Engine.RefreshAutoStatus(ctx, p.ID, today)
		if err != nil {
			logger.Errorf("[Project] Auto status refresh failed for project %d: %v", p.ID, err)
			errs = append(errs, fmt.Errorf("project %d: %w", p.ID, err))
			continue
		}
		if !moved {
			continue
		}
		changed++
		metrics.IncrementProjectStatusChange(string(result.Status), "auto")
		metrics.IncrementCascadeChanges(string(result.Status), len(result.Changed))
		logger.Infof("[Project] Project %d moved %s -> %s automatically", p.ID, p.Status, result.Status)
	}
	return changed, errors.Join(errs...)
}
