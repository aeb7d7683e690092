package handlers

import (
	"github.com/NafisaTasnimR/UpNext/internal/middleware"
	"github.com/NafisaTasnimR/UpNext/internal/services"
	"github.com/NafisaTasnimR/UpNext/pkg/response"
	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	notificationService *services.NotificationService
	scheduler           *services.NotificationScheduler
}

func NewNotificationHandler(notificationService *services.NotificationService, scheduler *services.NotificationScheduler) *NotificationHandler {
	return &NotificationHandler{
		notificationService: notificationService,
		scheduler:           scheduler,
	}
}

// Inbox returns the caller's notifications, newest first
// GET /api/notifications?unread_only=true
func (h *NotificationHandler) Inbox(c *gin.Context) {
	var req services.InboxRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	inbox, err := h.notificationService.Inbox(c.Request.Context(), &req, middleware.GetActor(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, inbox)
}

// MarkRead
// POST /api/notifications/:id/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.notificationService.MarkRead(c.Request.Context(), id, middleware.GetActor(c)); err != nil {
		fail(c, err)
		return
	}
	response.Success(c, nil)
}

// MarkAllRead
// POST /api/notifications/read-all
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	n, err := h.notificationService.MarkAllRead(c.Request.Context(), middleware.GetActor(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, gin.H{"updated": n})
}

// Overdue lists overdue tasks the caller is responsible for
// GET /api/tasks/overdue
func (h *NotificationHandler) Overdue(c *gin.Context) {
	tasks, err := h.notificationService.Overdue(c.Request.Context(), middleware.GetActor(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, tasks)
}

// RunScan queues the due-date scan for a date, today when omitted
// POST /api/admin/notifications/scan?date=2006-01-02
func (h *NotificationHandler) RunScan(c *gin.Context) {
	date := c.DefaultQuery("date", h.scheduler.Today().Format(services.DateLayout))
	if err := h.scheduler.TriggerFor(date); err != nil {
		fail(c, err)
		return
	}
	response.Success(c, gin.H{"date": date, "queued": true})
}
