package main

import (
	"github.com/NafisaTasnimR/UpNext/internal/config"
	"github.com/NafisaTasnimR/UpNext/internal/middleware"
	"github.com/NafisaTasnimR/UpNext/internal/models"
	"github.com/NafisaTasnimR/UpNext/pkg/logger"
	"github.com/NafisaTasnimR/UpNext/pkg/metrics"
	"github.com/gin-gonic/gin"
)

// registerRoutes sets up all HTTP routes on the given Gin engine.
func registerRoutes(r *gin.Engine, svc *appServices, cfg *config.ServerConfig) {
	// Middleware
	r.Use(logger.GinLogger(), logger.GinRecovery())
	r.RedirectTrailingSlash = false
	r.RedirectFixedPath = false
	r.Use(middleware.CORS(), metrics.Middleware())

	limiter := middleware.NewRateLimiter(cfg.RateLimit, cfg.RateBurst)

	r.GET("/health", svc.healthHandler.CheckHealth)
	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth", limiter.Middleware())
		{
			auth.POST("/login", svc.authHandler.Login)
			auth.POST("/register", svc.authHandler.Register)
		}

		// Protected routes
		protected := api.Group("")
		protected.Use(middleware.AuthRequired(), limiter.Middleware())
		{
			// Auth
			protected.GET("/auth/me", svc.authHandler.GetCurrentUser)
			protected.POST("/auth/logout", svc.authHandler.Logout)
			protected.POST("/auth/change-password", svc.authHandler.ChangePassword)

			// Users (directory for staffing projects)
			protected.GET("/users", middleware.RequireRole(models.RoleAdmin, models.RoleManager), svc.userHandler.List)

			// Projects
			protected.GET("/projects", svc.projectHandler.List)
			protected.POST("/projects", middleware.RequireRole(models.RoleAdmin, models.RoleManager), svc.projectHandler.Create)
			protected.GET("/projects/:id", svc.projectHandler.GetByID)
			protected.PUT("/projects/:id", svc.projectHandler.Update)
			protected.DELETE("/projects/:id", svc.projectHandler.Delete)
			protected.PUT("/projects/:id/status", svc.projectHandler.ChangeStatus)
			protected.GET("/projects/:id/progress", svc.projectHandler.Progress)
			protected.GET("/projects/:id/activity", svc.projectHandler.Activity)

			// Project members
			protected.GET("/projects/:id/members", svc.memberHandler.List)
			protected.POST("/projects/:id/members", svc.memberHandler.Add)
			protected.PUT("/projects/:id/members/:user_id", svc.memberHandler.UpdateRole)
			protected.DELETE("/projects/:id/members/:user_id", svc.memberHandler.Remove)

			// Tasks
			protected.GET("/projects/:id/tasks", svc.taskHandler.ListByProject)
			protected.GET("/projects/:id/tasks/blocked", svc.taskHandler.Blocked)
			protected.POST("/projects/:id/tasks", svc.taskHandler.Create)
			protected.GET("/tasks/mine", svc.taskHandler.MyTasks)
			protected.GET("/tasks/overdue", svc.notificationHandler.Overdue)
			protected.GET("/tasks/:id", svc.taskHandler.GetByID)
			protected.PUT("/tasks/:id", svc.taskHandler.Update)
			protected.DELETE("/tasks/:id", svc.taskHandler.Delete)
			protected.GET("/tasks/:id/subtasks", svc.taskHandler.Children)
			protected.POST("/tasks/:id/subtasks", svc.taskHandler.CreateSubtask)
			protected.POST("/tasks/:id/start", svc.taskHandler.Start)
			protected.POST("/tasks/:id/complete", svc.taskHandler.Complete)
			protected.PUT("/tasks/:id/progress", svc.taskHandler.SetProgress)
			protected.PUT("/tasks/:id/status", svc.taskHandler.ChangeStatus)
			protected.PUT("/tasks/:id/assignee", svc.taskHandler.Assign)
			protected.GET("/tasks/:id/comments", svc.taskHandler.Comments)
			protected.POST("/tasks/:id/comments", svc.taskHandler.AddComment)
			protected.GET("/tasks/:id/attachments", svc.taskHandler.Attachments)
			protected.POST("/tasks/:id/attachments", svc.taskHandler.AddAttachment)

			// Dependencies
			protected.GET("/tasks/:id/dependencies", svc.dependencyHandler.List)
			protected.POST("/tasks/:id/dependencies", svc.dependencyHandler.Add)
			protected.DELETE("/tasks/:id/dependencies/:predecessor_id", svc.dependencyHandler.Remove)

			// Notifications
			protected.GET("/notifications", svc.notificationHandler.Inbox)
			protected.POST("/notifications/read-all", svc.notificationHandler.MarkAllRead)
			protected.POST("/notifications/:id/read", svc.notificationHandler.MarkRead)
		}

		// Admin-only routes
		admin := api.Group("/admin")
		admin.Use(middleware.AuthRequired(), middleware.AdminRequired())
		{
			admin.PUT("/users/:id", svc.userHandler.Update)
			admin.POST("/projects/refresh-status", svc.projectHandler.RefreshStatuses)
			admin.POST("/notifications/scan", svc.notificationHandler.RunScan)
		}
	}
}
