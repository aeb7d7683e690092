package handlers

import (
	"github.com/NafisaTasnimR/UpNext/internal/middleware"
	"github.com/NafisaTasnimR/UpNext/internal/services"
	"github.com/NafisaTasnimR/UpNext/pkg/response"
	"github.com/gin-gonic/gin"
)

type DependencyHandler struct {
	dependencyService *services.DependencyService
}

func NewDependencyHandler(dependencyService *services.DependencyService) *DependencyHandler {
	return &DependencyHandler{dependencyService: dependencyService}
}

// List returns the predecessors of a task and whether they are all done
// GET /api/tasks/:id/dependencies
func (h *DependencyHandler) List(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	actor := middleware.GetActor(c)

	predecessors, err := h.dependencyService.Predecessors(ctx, id, actor)
	if err != nil {
		fail(c, err)
		return
	}
	satisfied, err := h.dependencyService.Satisfied(ctx, id, actor)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, gin.H{
		"task_id":      id,
		"satisfied":    satisfied,
		"predecessors": predecessors,
	})
}

// Add
// POST /api/tasks/:id/dependencies
func (h *DependencyHandler) Add(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req services.AddDependencyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.dependencyService.Add(c.Request.Context(), id, req.PredecessorTaskID, middleware.GetActor(c)); err != nil {
		fail(c, err)
		return
	}
	response.Created(c, gin.H{"predecessor_task_id": req.PredecessorTaskID, "successor_task_id": id})
}

// Remove
// DELETE /api/tasks/:id/dependencies/:predecessor_id
func (h *DependencyHandler) Remove(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	predecessorID, ok := paramID(c, "predecessor_id")
	if !ok {
		return
	}

	if err := h.dependencyService.Remove(c.Request.Context(), id, predecessorID, middleware.GetActor(c)); err != nil {
		fail(c, err)
		return
	}
	response.Success(c, nil)
}
