package handlers

import (
	"github.com/NafisaTasnimR/UpNext/internal/middleware"
	"github.com/NafisaTasnimR/UpNext/internal/services"
	"github.com/NafisaTasnimR/UpNext/pkg/response"
	"github.com/gin-gonic/gin"
)

// ProjectMemberHandler provides CRUD endpoints for project members.
type ProjectMemberHandler struct {
	memberService *services.MemberService
}

func NewProjectMemberHandler(memberService *services.MemberService) *ProjectMemberHandler {
	return &ProjectMemberHandler{memberService: memberService}
}

// List returns all members of a project.
func (h *ProjectMemberHandler) List(c *gin.Context) {
	projectID, ok := paramID(c, "id")
	if !ok {
		return
	}

	members, err := h.memberService.List(c.Request.Context(), projectID, middleware.GetActor(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, members)
}

// Add adds a user to a project with the specified role.
func (h *ProjectMemberHandler) Add(c *gin.Context) {
	projectID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req services.AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	member, err := h.memberService.Add(c.Request.Context(), projectID, &req, middleware.GetActor(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.Created(c, member)
}

// UpdateRole changes a member's role.
func (h *ProjectMemberHandler) UpdateRole(c *gin.Context) {
	projectID, ok := paramID(c, "id")
	if !ok {
		return
	}
	userID, ok := paramID(c, "user_id")
	if !ok {
		return
	}
	var req services.UpdateMemberRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	member, err := h.memberService.UpdateRole(c.Request.Context(), projectID, userID, &req, middleware.GetActor(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, member)
}

// Remove removes a user from a project.
func (h *ProjectMemberHandler) Remove(c *gin.Context) {
	projectID, ok := paramID(c, "id")
	if !ok {
		return
	}
	userID, ok := paramID(c, "user_id")
	if !ok {
		return
	}

	if err := h.memberService.Remove(c.Request.Context(), projectID, userID, middleware.GetActor(c)); err != nil {
		fail(c, err)
		return
	}
	response.Success(c, nil)
}
