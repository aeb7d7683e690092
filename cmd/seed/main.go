// Command seed fills a database with a small demo workspace: a manager, two
// members, one project and a handful of tasks with a dependency between them.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/NafisaTasnimR/UpNext/internal/config"
	"github.com/NafisaTasnimR/UpNext/internal/lifecycle"
	"github.com/NafisaTasnimR/UpNext/internal/models"
	"github.com/NafisaTasnimR/UpNext/internal/services"
	"github.com/NafisaTasnimR/UpNext/internal/store"
	"github.com/NafisaTasnimR/UpNext/pkg/logger"
)

const demoPassword = "demo123"

func main() {
	configPath := flag.String("config", os.Getenv("CONFIG_PATH"), "path to config.yaml")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger.Init(cfg.Log.Level)

	db, err := models.Open(&cfg.Database)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	if err := models.Migrate(db); err != nil {
		logger.Fatalf("Failed to migrate database: %v", err)
	}
	if err := models.SeedAdmin(db); err != nil {
		logger.Fatalf("Failed to create admin: %v", err)
	}

	if err := seed(context.Background(), store.New(db), cfg); err != nil {
		logger.Fatalf("Seed failed: %v", err)
	}
	logger.Infof("[Seed] Done. Demo users share the password %q", demoPassword)
}

func seed(ctx context.Context, st *store.Store, cfg *config.Config) error {
	auth := services.NewAuthService(st, &cfg.JWT)
	users := services.NewUserService(st)
	lc := services.NewLifecycle(st, nil, cfg.Scheduler.Location())
	projects := services.NewProjectService(lc)
	members := services.NewMemberService(lc)
	tasks := services.NewTaskService(lc)
	deps := services.NewDependencyService(lc)

	adminUser, err := st.Users().GetByUsername(ctx, models.DefaultAdminUsername)
	if err != nil {
		return err
	}
	admin := actorFor(adminUser)

	manager, err := ensureUser(ctx, auth, st, "maria", "Maria Manager")
	if err != nil {
		return err
	}
	if manager.GlobalRole != models.RoleManager {
		if manager, err = users.Update(ctx, manager.ID, &services.UpdateUserRequest{Role: string(models.RoleManager)}, admin); err != nil {
			return err
		}
	}
	alice, err := ensureUser(ctx, auth, st, "alice", "Alice Developer")
	if err != nil {
		return err
	}
	bob, err := ensureUser(ctx, auth, st, "bob", "Bob Designer")
	if err != nil {
		return err
	}

	mgr := actorFor(manager)
	existing, err := st.Projects().ListByOwner(ctx, manager.ID)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		logger.Infof("[Seed] %s already owns %d project(s), skipping", manager.Username, len(existing))
		return nil
	}

	today := time.Now().UTC()
	day := func(offset int) string { return today.AddDate(0, 0, offset).Format(services.DateLayout) }

	project, err := projects.Create(ctx, &services.CreateProjectRequest{
		Name:        "Website relaunch",
		Description: "Demo project",
		StartDate:   day(-7),
		EndDate:     day(30),
	}, mgr)
	if err != nil {
		return err
	}
	for _, u := range []*models.User{alice, bob} {
		if _, err := members.Add(ctx, project.ID, &services.AddMemberRequest{UserID: u.ID}, mgr); err != nil {
			return err
		}
	}

	design, err := tasks.Create(ctx, project.ID, &services.CreateTaskRequest{
		Title: "Design mockups", Priority: "HIGH", AssigneeID: &bob.ID, StartDate: day(-7), DueDate: day(2),
	}, mgr)
	if err != nil {
		return err
	}
	build, err := tasks.Create(ctx, project.ID, &services.CreateTaskRequest{
		Title: "Build pages", AssigneeID: &alice.ID, StartDate: day(3), DueDate: day(20),
	}, mgr)
	if err != nil {
		return err
	}
	if _, err := tasks.CreateSubtask(ctx, build.ID, &services.CreateTaskRequest{
		Title: "Landing page", AssigneeID: &alice.ID, DueDate: day(10),
	}, mgr); err != nil {
		return err
	}
	if err := deps.Add(ctx, build.ID, design.ID, mgr); err != nil {
		return err
	}
	if _, err := tasks.Start(ctx, design.ID, actorFor(bob)); err != nil {
		return err
	}

	logger.Infof("[Seed] Created project %q (id %d) with tasks %d and %d", project.Name, project.ID, design.ID, build.ID)
	return nil
}

// ensureUser registers username unless it already exists.
func ensureUser(ctx context.Context, auth *services.AuthService, st *store.Store, username, fullName string) (*models.User, error) {
	user, err := st.Users().GetByUsername(ctx, username)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, lifecycle.ErrNotFound) {
		return nil, err
	}
	return auth.Register(ctx, &services.RegisterRequest{
		Username: username,
		Password: demoPassword,
		Email:    username + "@example.com",
		FullName: fullName,
	})
}

func actorFor(u *models.User) lifecycle.Actor {
	return lifecycle.Actor{UserID: u.ID, Username: u.Username, Role: u.GlobalRole}
}
