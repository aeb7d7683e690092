package handlers

import (
	"github.com/NafisaTasnimR/UpNext/internal/middleware"
	"github.com/NafisaTasnimR/UpNext/internal/services"
	"github.com/NafisaTasnimR/UpNext/pkg/response"
	"github.com/gin-gonic/gin"
)

type TaskHandler struct {
	taskService *services.TaskService
}

func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

type ProgressRequest struct {
	ProgressPct *float64 `json:"progress_pct" binding:"required"`
}

// AssignRequest sets the assignee; a null assignee_id clears it.
type AssignRequest struct {
	AssigneeID *uint `json:"assignee_id"`
}

// ListByProject
// GET /api/projects/:id/tasks?status=&assignee_id=&top_level=
func (h *TaskHandler) ListByProject(c *gin.Context) {
	projectID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req services.TaskListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	tasks, err := h.taskService.ListByProject(c.Request.Context(), projectID, &req, middleware.GetActor(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, tasks)
}

// Blocked lists tasks waiting on their project
// GET /api/projects/:id/tasks/blocked
func (h *TaskHandler) Blocked(c *gin.Context) {
	projectID, ok := paramID(c, "id")
	if !ok {
		return
	}

	tasks, err := h.taskService.Blocked(c.Request.Context(), projectID, middleware.GetActor(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, tasks)
}

// Create adds a task to a project
// POST /api/projects/:id/tasks
func (h *TaskHandler) Create(c *gin.Context) {
	projectID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req services.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	task, err := h.taskService.Create(c.Request.Context(), projectID, &req, middleware.GetActor(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.Created(c, task)
}

// CreateSubtask adds a child under an existing task
// POST /api/tasks/:id/subtasks
func (h *TaskHandler) CreateSubtask(c *gin.Context) {
	parentID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req services.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	task, err := h.taskService.CreateSubtask(c.Request.Context(), parentID, &req, middleware.GetActor(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.Created(c, task)
}

// GetByID
// GET /api/tasks/:id
func (h *TaskHandler) GetByID(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	task, err := h.taskService.Get(c.Request.Context(), id, middleware.GetActor(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, task)
}

// Children
// GET /api/tasks/:id/subtasks
func (h *TaskHandler) Children(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	tasks, err := h.taskService.Children(c.Request.Context(), id, middleware.GetActor(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, tasks)
}

// MyTasks lists tasks assigned to the caller
// GET /api/tasks/mine
func (h *TaskHandler) MyTasks(c *gin.Context) {
	tasks, err := h.taskService.MyTasks(c.Request.Context(), middleware.GetActor(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, tasks)
}

// Start
// POST /api/tasks/:id/start
func (h *TaskHandler) Start(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	task, err := h.taskService.Start(c.Request.Context(), id, middleware.GetActor(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, task)
}

// Complete
// POST /api/tasks/:id/complete
func (h *TaskHandler) Complete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	task, err := h.taskService.Complete(c.Request.Context(), id, middleware.GetActor(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, task)
}

// SetProgress
// PUT /api/tasks/:id/progress
func (h *TaskHandler) SetProgress(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req ProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	task, err := h.taskService.SetProgress(c.Request.Context(), id, *req.ProgressPct, middleware.GetActor(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, task)
}

// ChangeStatus applies an explicit status such as ON_HOLD or CANCELLED
// PUT /api/tasks/:id/status
func (h *TaskHandler) ChangeStatus(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	task, err := h.taskService.ChangeStatus(c.Request.Context(), id, req.Status, middleware.GetActor(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, task)
}

// Assign
// PUT /api/tasks/:id/assignee
func (h *TaskHandler) Assign(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	task, err := h.taskService.Assign(c.Request.Context(), id, req.AssigneeID, middleware.GetActor(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, task)
}

// Update
// PUT /api/tasks/:id
func (h *TaskHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req services.UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	task, err := h.taskService.Update(c.Request.Context(), id, &req, middleware.GetActor(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, task)
}

// Delete
// DELETE /api/tasks/:id
func (h *TaskHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.taskService.Delete(c.Request.Context(), id, middleware.GetActor(c)); err != nil {
		fail(c, err)
		return
	}
	response.Success(c, nil)
}

// AddComment
// POST /api/tasks/:id/comments
func (h *TaskHandler) AddComment(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req services.CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	comment, err := h.taskService.AddComment(c.Request.Context(), id, &req, middleware.GetActor(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.Created(c, comment)
}

// Comments
// GET /api/tasks/:id/comments
func (h *TaskHandler) Comments(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	comments, err := h.taskService.Comments(c.Request.Context(), id, middleware.GetActor(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, comments)
}

// AddAttachment records file metadata against a task
// POST /api/tasks/:id/attachments
func (h *TaskHandler) AddAttachment(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req services.AttachmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	attachment, err := h.taskService.AddAttachment(c.Request.Context(), id, &req, middleware.GetActor(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.Created(c, attachment)
}

// Attachments
// GET /api/tasks/:id/attachments
func (h *TaskHandler) Attachments(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	attachments, err := h.taskService.Attachments(c.Request.Context(), id, middleware.GetActor(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, attachments)
}
