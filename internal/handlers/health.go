package handlers

import (
	"net/http"

	"github.com/NafisaTasnimR/UpNext/internal/models"
	"github.com/NafisaTasnimR/UpNext/internal/services"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// HealthHandler reports database reachability and queue mode.
type HealthHandler struct {
	db    *gorm.DB
	queue services.TaskQueue
}

func NewHealthHandler(db *gorm.DB, queue services.TaskQueue) *HealthHandler {
	return &HealthHandler{db: db, queue: queue}
}

// CheckHealth returns the health status of all subsystems.
func (h *HealthHandler) CheckHealth(c *gin.Context) {
	overall := "healthy"
	status := http.StatusOK

	// Database check
	dbStatus := "ok"
	sqlDB, err := h.db.DB()
	if err != nil {
		dbStatus = "error: " + err.Error()
		overall = "unhealthy"
	} else if err := sqlDB.PingContext(c.Request.Context()); err != nil {
		dbStatus = "error: " + err.Error()
		overall = "unhealthy"
	}
	if overall != "healthy" {
		status = http.StatusServiceUnavailable
	}

	queueMode := "sync"
	if h.queue != nil && h.queue.IsAsync() {
		queueMode = "async (Redis)"
	}

	var unread int64
	if dbStatus == "ok" {
		h.db.WithContext(c.Request.Context()).Model(&models.Notification{}).Where("is_read = ?", false).Count(&unread)
	}

	c.JSON(status, gin.H{
		"status":  overall,
		"service": "upnext",
		"components": gin.H{
			"database":             dbStatus,
			"queue_mode":           queueMode,
			"unread_notifications": unread,
		},
	})
}
