package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/NafisaTasnimR/UpNext/internal/config"
	"github.com/NafisaTasnimR/UpNext/internal/lifecycle"
	"github.com/NafisaTasnimR/UpNext/internal/models"
	"github.com/NafisaTasnimR/UpNext/internal/store"
)

var testToday = time.Date(2025, 6, 10, 9, 30, 0, 0, time.UTC)

type fixture struct {
	ctx      context.Context
	st       *store.Store
	lc       *Lifecycle
	projects *ProjectService
	tasks    *TaskService
	members  *MemberService
	deps     *DependencyService

	admin   lifecycle.Actor
	manager lifecycle.Actor
	alice   lifecycle.Actor
	bob     lifecycle.Actor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := models.Open(&config.DatabaseConfig{Driver: "sqlite", DSN: ":memory:"})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := models.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	st := store.New(db)
	lc := NewLifecycle(st, func() time.Time { return testToday }, time.UTC)
	f := &fixture{
		ctx:      context.Background(),
		st:       st,
		lc:       lc,
		projects: NewProjectService(lc),
		tasks:    NewTaskService(lc),
		members:  NewMemberService(lc),
		deps:     NewDependencyService(lc),
	}
	f.admin = f.user(t, "root", models.RoleAdmin)
	f.manager = f.user(t, "maria", models.RoleManager)
	f.alice = f.user(t, "alice", models.RoleMember)
	f.bob = f.user(t, "bob", models.RoleMember)
	return f
}

func (f *fixture) user(t *testing.T, name string, role models.GlobalRole) lifecycle.Actor {
	t.Helper()
	u := &models.User{Username: name, GlobalRole: role, Status: models.UserActive}
	if err := f.st.Users().Create(f.ctx, u); err != nil {
		t.Fatalf("create user %s: %v", name, err)
	}
	return lifecycle.Actor{UserID: u.ID, Username: u.Username, Role: u.GlobalRole}
}

// project creates a project owned by the manager with alice as a member.
func (f *fixture) project(t *testing.T, req *CreateProjectRequest) *models.Project {
	t.Helper()
	if req == nil {
		req = &CreateProjectRequest{Name: "Launch"}
	}
	p, err := f.projects.Create(f.ctx, req, f.manager)
	if err != nil {
		t.Fatalf("create project: %v", err)
	}
	if _, err := f.members.Add(f.ctx, p.ID, &AddMemberRequest{UserID: f.alice.UserID}, f.manager); err != nil {
		t.Fatalf("add alice: %v", err)
	}
	return p
}

func (f *fixture) task(t *testing.T, projectID uint, title string, assignee *lifecycle.Actor) *models.Task {
	t.Helper()
	req := &CreateTaskRequest{Title: title}
	if assignee != nil {
		req.AssigneeID = uintPtr(assignee.UserID)
	}
	task, err := f.tasks.Create(f.ctx, projectID, req, f.manager)
	if err != nil {
		t.Fatalf("create task %s: %v", title, err)
	}
	return task
}

func (f *fixture) reload(t *testing.T, id uint) *models.Task {
	t.Helper()
	task, err := f.st.Tasks().Get(f.ctx, id)
	if err != nil {
		t.Fatalf("get task %d: %v", id, err)
	}
	return task
}

func wantKind(t *testing.T, err error, kind lifecycle.Kind) {
	t.Helper()
	var ve *lifecycle.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected %s validation error, got %v", kind, err)
	}
	if ve.Kind != kind {
		t.Fatalf("expected kind %s, got %s (%s)", kind, ve.Kind, ve.Message)
	}
}

func wantForbidden(t *testing.T, err error) {
	t.Helper()
	if !errors.Is(err, lifecycle.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}
