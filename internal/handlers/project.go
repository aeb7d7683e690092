package handlers

import (
	"strconv"

	"github.com/NafisaTasnimR/UpNext/internal/middleware"
	"github.com/NafisaTasnimR/UpNext/internal/services"
	"github.com/NafisaTasnimR/UpNext/pkg/response"
	"github.com/gin-gonic/gin"
)

type ProjectHandler struct {
	projectService *services.ProjectService
}

func NewProjectHandler(projectService *services.ProjectService) *ProjectHandler {
	return &ProjectHandler{projectService: projectService}
}

// StatusRequest carries a proposed project or task status.
type StatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// List returns paginated projects visible to the caller
// GET /api/projects
func (h *ProjectHandler) List(c *gin.Context) {
	var req services.ProjectListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	resp, err := h.projectService.List(c.Request.Context(), &req, middleware.GetActor(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, resp)
}

// GetByID returns a project with its progress
// GET /api/projects/:id
func (h *ProjectHandler) GetByID(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	project, err := h.projectService.Get(c.Request.Context(), id, middleware.GetActor(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, project)
}

// Create creates a new project
// POST /api/projects
func (h *ProjectHandler) Create(c *gin.Context) {
	var req services.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	project, err := h.projectService.Create(c.Request.Context(), &req, middleware.GetActor(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.Created(c, project)
}

// Update updates a project
// PUT /api/projects/:id
func (h *ProjectHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req services.UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	project, err := h.projectService.Update(c.Request.Context(), id, &req, middleware.GetActor(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, project)
}

// ChangeStatus moves a project to a new status and cascades it onto its tasks
// PUT /api/projects/:id/status
func (h *ProjectHandler) ChangeStatus(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.projectService.ChangeStatus(c.Request.Context(), id, req.Status, middleware.GetActor(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, gin.H{
		"project_id":    result.ProjectID,
		"status":        result.Status,
		"changed_tasks": result.Changed,
	})
}

// Progress
// GET /api/projects/:id/progress
func (h *ProjectHandler) Progress(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	pct, err := h.projectService.Progress(c.Request.Context(), id, middleware.GetActor(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, gin.H{"project_id": id, "progress": pct})
}

// Activity returns the project's change log, newest first
// GET /api/projects/:id/activity?limit=50
func (h *ProjectHandler) Activity(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	logs, err := h.projectService.Activity(c.Request.Context(), id, limit, middleware.GetActor(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, logs)
}

// Delete deletes a project
// DELETE /api/projects/:id
func (h *ProjectHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.projectService.Delete(c.Request.Context(), id, middleware.GetActor(c)); err != nil {
		fail(c, err)
		return
	}
	response.Success(c, nil)
}

// RefreshStatuses re-derives PLANNING/ACTIVE for every project
// POST /api/admin/projects/refresh-status
func (h *ProjectHandler) RefreshStatuses(c *gin.Context) {
	changed, err := h.projectService.RefreshAutoStatuses(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, gin.H{"changed": changed})
}
