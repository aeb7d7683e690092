package lifecycle

import (
	"context"
	"errors"
	"testing"

	"github.com/NafisaTasnimR/UpNext/internal/models"
)

func TestValidateTaskCreation(t *testing.T) {
	tests := []struct {
		status  models.ProjectStatus
		wantErr bool
	}{
		{models.ProjectPlanning, false},
		{models.ProjectActive, false},
		{models.ProjectOnHold, false},
		{models.ProjectCompleted, true},
		{models.ProjectCancelled, true},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			err := ValidateTaskCreation(&models.Project{Name: "P", Status: tt.status})
			if tt.wantErr && !errors.Is(err, ErrProjectClosed) {
				t.Errorf("err = %v, want ErrProjectClosed", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error %v", err)
			}
		})
	}
}

func TestValidateSubtaskCreation(t *testing.T) {
	ctx := context.Background()
	db := newMemDB()
	active := db.addProject(models.Project{Name: "active", Status: models.ProjectActive})
	closed := db.addProject(models.Project{Name: "closed", Status: models.ProjectCompleted})
	v := NewCreationValidator(memProjects{db}, memTasks{db}, memMembers{db})

	tests := []struct {
		name       string
		parent     models.Task
		wantErr    error
		wantReopen bool
	}{
		{"open parent", models.Task{ProjectID: active.ID, Status: models.TaskInProgress}, nil, false},
		{"blocked parent", models.Task{ProjectID: active.ID, Status: models.TaskBlocked}, ErrParentBlocked, false},
		{"cancelled parent", models.Task{ProjectID: active.ID, Status: models.TaskCancelled}, ErrParentCancelled, false},
		{"done parent reopens", models.Task{ProjectID: active.ID, Status: models.TaskDone}, nil, true},
		{"closed project checked first", models.Task{ProjectID: closed.ID, Status: models.TaskBlocked}, ErrProjectClosed, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := v.ValidateSubtaskCreation(ctx, &tt.parent)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error %v", err)
			}
			if plan.ReopensParent != tt.wantReopen {
				t.Errorf("ReopensParent = %v, want %v", plan.ReopensParent, tt.wantReopen)
			}
		})
	}
}

func TestAuthorizeSubtaskCreator(t *testing.T) {
	ctx := context.Background()
	db := newMemDB()
	p := db.addProject(models.Project{Name: "P", Status: models.ProjectActive, OwnerID: 1})
	db.members[[2]uint{p.ID, 1}] = models.MemberRoleOwner
	db.members[[2]uint{p.ID, 2}] = models.MemberRoleManager
	db.members[[2]uint{p.ID, 3}] = models.MemberRoleMember
	db.members[[2]uint{p.ID, 4}] = models.MemberRoleMember
	parent := db.addTask(models.Task{ProjectID: p.ID, Title: "parent", Status: models.TaskTodo, AssigneeID: ptr(uint(3))})
	v := NewCreationValidator(memProjects{db}, memTasks{db}, memMembers{db})

	tests := []struct {
		name  string
		actor Actor
		allow bool
	}{
		{"admin", Actor{UserID: 99, Role: models.RoleAdmin}, true},
		{"project owner", Actor{UserID: 1, Role: models.RoleManager}, true},
		{"project manager", Actor{UserID: 2, Role: models.RoleMember}, true},
		{"assignee", Actor{UserID: 3, Role: models.RoleMember}, true},
		{"other member", Actor{UserID: 4, Role: models.RoleMember}, false},
		{"global manager outside project", Actor{UserID: 5, Role: models.RoleManager}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.AuthorizeSubtaskCreator(ctx, parent, tt.actor)
			if tt.allow && err != nil {
				t.Errorf("unexpected error %v", err)
			}
			if !tt.allow && !errors.Is(err, ErrForbidden) {
				t.Errorf("err = %v, want ErrForbidden", err)
			}
		})
	}
}

func TestAuthorizeTaskCreator(t *testing.T) {
	ctx := context.Background()
	db := newMemDB()
	p := db.addProject(models.Project{Name: "P", Status: models.ProjectActive})
	db.members[[2]uint{p.ID, 2}] = models.MemberRoleManager
	db.members[[2]uint{p.ID, 3}] = models.MemberRoleMember
	v := NewCreationValidator(memProjects{db}, memTasks{db}, memMembers{db})

	if err := v.AuthorizeTaskCreator(ctx, p, Actor{UserID: 9, Role: models.RoleAdmin}); err != nil {
		t.Errorf("admin: %v", err)
	}
	if err := v.AuthorizeTaskCreator(ctx, p, Actor{UserID: 2, Role: models.RoleManager}); err != nil {
		t.Errorf("project manager: %v", err)
	}
	if err := v.AuthorizeTaskCreator(ctx, p, Actor{UserID: 3, Role: models.RoleMember}); !errors.Is(err, ErrForbidden) {
		t.Errorf("member: err = %v, want ErrForbidden", err)
	}
}

func TestValidateAssignee(t *testing.T) {
	ctx := context.Background()
	db := newMemDB()
	db.members[[2]uint{1, 10}] = models.MemberRoleViewer
	v := NewCreationValidator(memProjects{db}, memTasks{db}, memMembers{db})

	if err := v.ValidateAssignee(ctx, 1, 10); err != nil {
		t.Errorf("member: %v", err)
	}
	if err := v.ValidateAssignee(ctx, 1, 11); !errors.Is(err, ErrNotAProjectMember) {
		t.Errorf("non-member: err = %v", err)
	}
}

func TestValidateParent(t *testing.T) {
	ctx := context.Background()
	db := newMemDB()
	root := db.addTask(models.Task{ProjectID: 1, Title: "root"})
	child := db.addTask(models.Task{ProjectID: 1, Title: "child", ParentTaskID: ptr(root.ID)})
	grandchild := db.addTask(models.Task{ProjectID: 1, Title: "grandchild", ParentTaskID: ptr(child.ID)})
	other := db.addTask(models.Task{ProjectID: 2, Title: "other project"})
	v := NewCreationValidator(memProjects{db}, memTasks{db}, memMembers{db})

	tests := []struct {
		name     string
		task     models.Task
		parentID uint
		wantErr  bool
	}{
		{"new task under child", models.Task{ProjectID: 1}, child.ID, false},
		{"move grandchild to root", *grandchild, root.ID, false},
		{"self parent", *root, root.ID, true},
		{"root under its grandchild", *root, grandchild.ID, true},
		{"cross project", models.Task{ProjectID: 1}, other.ID, true},
		{"missing parent", models.Task{ProjectID: 1}, 999, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateParent(ctx, &tt.task, tt.parentID)
			if tt.wantErr && !errors.Is(err, ErrInvalidParent) {
				t.Errorf("err = %v, want ErrInvalidParent", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error %v", err)
			}
		})
	}
}
