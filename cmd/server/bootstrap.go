package main

import (
	"github.com/NafisaTasnimR/UpNext/internal/config"
	"github.com/NafisaTasnimR/UpNext/internal/handlers"
	"github.com/NafisaTasnimR/UpNext/internal/models"
	"github.com/NafisaTasnimR/UpNext/internal/services"
	"github.com/NafisaTasnimR/UpNext/internal/store"
	"github.com/NafisaTasnimR/UpNext/internal/utils"
	"github.com/NafisaTasnimR/UpNext/pkg/logger"
	"github.com/NafisaTasnimR/UpNext/pkg/metrics"
)

// appServices holds all initialized services and handlers needed by the application.
type appServices struct {
	taskQueue services.TaskQueue
	worker    *services.Worker
	scheduler *services.NotificationScheduler

	healthHandler       *handlers.HealthHandler
	authHandler         *handlers.AuthHandler
	userHandler         *handlers.UserHandler
	projectHandler      *handlers.ProjectHandler
	memberHandler       *handlers.ProjectMemberHandler
	taskHandler         *handlers.TaskHandler
	dependencyHandler   *handlers.DependencyHandler
	notificationHandler *handlers.NotificationHandler
}

// bootstrap initializes all application dependencies: database, services, schedulers.
func bootstrap(cfg *config.Config) *appServices {
	utils.SetJWTSecret(cfg.JWT.Secret)

	// Initialize database
	if err := models.InitDB(&cfg.Database); err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	// Auto migrate database
	if err := models.AutoMigrate(); err != nil {
		logger.Fatalf("Failed to migrate database: %v", err)
	}

	// Create default admin user
	if err := models.SeedDefaultData(); err != nil {
		logger.Warn().Err(err).Msg("Failed to seed default data")
	}

	if sqlDB, err := models.GetDB().DB(); err == nil {
		if err := metrics.RegisterDBStats(sqlDB); err != nil {
			logger.Warn().Err(err).Msg("Failed to register database metrics")
		}
	}

	st := store.New(models.GetDB())
	lc := services.NewLifecycle(st, nil, cfg.Scheduler.Location())
	projectService := services.NewProjectService(lc)

	// Initialize task queue (uses Redis if enabled, otherwise sync mode)
	taskQueue := services.InitTaskQueue(cfg)
	scheduler := services.NewNotificationScheduler(lc, projectService, taskQueue, cfg.Scheduler)
	if syncQueue, ok := taskQueue.(*services.SyncQueue); ok {
		syncQueue.SetProcessor(scheduler.Process)
	}

	// Start async worker if Redis is enabled
	var worker *services.Worker
	if cfg.Redis.Enabled {
		worker = services.InitWorker(&cfg.Redis)
		if worker != nil {
			worker.SetProcessor(scheduler.Process)
			if err := worker.Start(); err != nil {
				logger.Fatalf("Failed to start worker: %v", err)
			}
		}
	}

	if err := scheduler.Start(); err != nil {
		logger.Fatalf("Failed to start scheduler: %v", err)
	}

	return &appServices{
		taskQueue: taskQueue,
		worker:    worker,
		scheduler: scheduler,

		healthHandler:       handlers.NewHealthHandler(models.GetDB(), taskQueue),
		authHandler:         handlers.NewAuthHandler(services.NewAuthService(st, &cfg.JWT)),
		userHandler:         handlers.NewUserHandler(services.NewUserService(st)),
		projectHandler:      handlers.NewProjectHandler(projectService),
		memberHandler:       handlers.NewProjectMemberHandler(services.NewMemberService(lc)),
		taskHandler:         handlers.NewTaskHandler(services.NewTaskService(lc)),
		dependencyHandler:   handlers.NewDependencyHandler(services.NewDependencyService(lc)),
		notificationHandler: handlers.NewNotificationHandler(services.NewNotificationService(lc), scheduler),
	}
}

// shutdown gracefully stops all services.
func (s *appServices) shutdown() {
	s.scheduler.Stop()
	logger.Info().Msg("All schedulers stopped")

	if s.worker != nil {
		s.worker.Stop()
	}
	if s.taskQueue != nil {
		s.taskQueue.Close()
	}
}
