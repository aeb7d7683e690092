package services

import (
	"errors"
	"testing"

	"github.com/NafisaTasnimR/UpNext/internal/lifecycle"
	"github.com/NafisaTasnimR/UpNext/internal/models"
)

func TestProjectService_Create(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name    string
		req     *CreateProjectRequest
		actor   lifecycle.Actor
		want    models.ProjectStatus
		wantErr bool
	}{
		{"no start date is active", &CreateProjectRequest{Name: "A"}, f.manager, models.ProjectActive, false},
		{"past start is active", &CreateProjectRequest{Name: "B", StartDate: "2025-06-01"}, f.manager, models.ProjectActive, false},
		{"future start is planning", &CreateProjectRequest{Name: "C", StartDate: "2025-07-01"}, f.admin, models.ProjectPlanning, false},
		{"member may not create", &CreateProjectRequest{Name: "D"}, f.alice, "", true},
		{"blank name", &CreateProjectRequest{Name: "  "}, f.manager, "", true},
		{"bad date", &CreateProjectRequest{Name: "E", StartDate: "06/01/2025"}, f.manager, "", true},
		{"end before start", &CreateProjectRequest{Name: "F", StartDate: "2025-06-10", EndDate: "2025-06-01"}, f.manager, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := f.projects.Create(f.ctx, tt.req, tt.actor)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Create: %v", err)
			}
			if p.Status != tt.want {
				t.Errorf("status = %s, want %s", p.Status, tt.want)
			}
			owner, err := f.st.Members().HasRole(f.ctx, p.ID, tt.actor.UserID, models.MemberRoleOwner)
			if err != nil || !owner {
				t.Errorf("creator should hold OWNER, got %v (%v)", owner, err)
			}
		})
	}
}

func TestProjectService_Visibility(t *testing.T) {
	f := newFixture(t)
	p := f.project(t, nil)

	if _, err := f.projects.Get(f.ctx, p.ID, f.alice); err != nil {
		t.Errorf("member should see project: %v", err)
	}
	if _, err := f.projects.Get(f.ctx, p.ID, f.admin); err != nil {
		t.Errorf("admin should see project: %v", err)
	}
	_, err := f.projects.Get(f.ctx, p.ID, f.bob)
	wantForbidden(t, err)

	list, err := f.projects.List(f.ctx, &ProjectListRequest{}, f.bob)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if list.Total != 0 {
		t.Errorf("bob sees %d projects, want 0", list.Total)
	}
	list, err = f.projects.List(f.ctx, &ProjectListRequest{}, f.alice)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if list.Total != 1 {
		t.Errorf("alice sees %d projects, want 1", list.Total)
	}
}

func TestProjectService_HiddenOrMissing(t *testing.T) {
	f := newFixture(t)
	p := f.project(t, nil)
	const missing = 9999

	tests := []struct {
		name string
		call func(id uint) error
	}{
		{"get", func(id uint) error { _, err := f.projects.Get(f.ctx, id, f.bob); return err }},
		{"update", func(id uint) error {
			_, err := f.projects.Update(f.ctx, id, &UpdateProjectRequest{Name: "Renamed"}, f.bob)
			return err
		}},
		{"change status", func(id uint) error { _, err := f.projects.ChangeStatus(f.ctx, id, "ON_HOLD", f.bob); return err }},
		{"activity", func(id uint) error { _, err := f.projects.Activity(f.ctx, id, 10, f.bob); return err }},
		{"members", func(id uint) error { _, err := f.members.List(f.ctx, id, f.bob); return err }},
		{"create task", func(id uint) error {
			_, err := f.tasks.Create(f.ctx, id, &CreateTaskRequest{Title: "t"}, f.bob)
			return err
		}},
		{"delete", func(id uint) error { return f.projects.Delete(f.ctx, id, f.bob) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wantForbidden(t, tt.call(p.ID))
			wantForbidden(t, tt.call(missing))
		})
	}

	if _, err := f.projects.Get(f.ctx, missing, f.admin); !errors.Is(err, lifecycle.ErrNotFound) {
		t.Errorf("admin Get missing = %v, want not found", err)
	}
}

// Completing a project with open work fails and names the open task;
// once the task is done the transition goes through without touching tasks.
func TestProjectService_CompleteScenario(t *testing.T) {
	f := newFixture(t)
	p := f.project(t, nil)
	t1 := f.task(t, p.ID, "design", &f.alice)
	t2 := f.task(t, p.ID, "build", &f.alice)

	if _, err := f.tasks.Complete(f.ctx, t1.ID, f.alice); err != nil {
		t.Fatalf("complete t1: %v", err)
	}
	if _, err := f.tasks.Start(f.ctx, t2.ID, f.alice); err != nil {
		t.Fatalf("start t2: %v", err)
	}

	_, err := f.projects.ChangeStatus(f.ctx, p.ID, "COMPLETED", f.manager)
	wantKind(t, err, lifecycle.KindInvalidTransition)
	var ve *lifecycle.ValidationError
	errors.As(err, &ve)
	if len(ve.TaskIDs) != 1 || ve.TaskIDs[0] != t2.ID {
		t.Errorf("incomplete tasks = %v, want [%d]", ve.TaskIDs, t2.ID)
	}

	if _, err := f.tasks.Complete(f.ctx, t2.ID, f.alice); err != nil {
		t.Fatalf("complete t2: %v", err)
	}
	result, err := f.projects.ChangeStatus(f.ctx, p.ID, "COMPLETED", f.manager)
	if err != nil {
		t.Fatalf("ChangeStatus: %v", err)
	}
	if len(result.Changed) != 0 {
		t.Errorf("cascade changed %v, want nothing", result.Changed)
	}
	detail, err := f.projects.Get(f.ctx, p.ID, f.manager)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if detail.Status != models.ProjectCompleted {
		t.Errorf("status = %s, want COMPLETED", detail.Status)
	}
	if detail.Progress != 100 {
		t.Errorf("progress = %v, want 100", detail.Progress)
	}
}

func TestProjectService_ChangeStatusCascades(t *testing.T) {
	f := newFixture(t)
	p := f.project(t, nil)
	open := f.task(t, p.ID, "open", &f.alice)
	done := f.task(t, p.ID, "done", &f.alice)
	if _, err := f.tasks.Complete(f.ctx, done.ID, f.alice); err != nil {
		t.Fatalf("complete: %v", err)
	}

	result, err := f.projects.ChangeStatus(f.ctx, p.ID, "ON_HOLD", f.manager)
	if err != nil {
		t.Fatalf("ChangeStatus: %v", err)
	}
	if len(result.Changed) != 1 || result.Changed[0] != open.ID {
		t.Errorf("changed = %v, want [%d]", result.Changed, open.ID)
	}
	if got := f.reload(t, open.ID).Status; got != models.TaskOnHold {
		t.Errorf("open task = %s, want ON_HOLD", got)
	}
	if got := f.reload(t, done.ID).Status; got != models.TaskDone {
		t.Errorf("done task = %s, want DONE", got)
	}

	if _, err := f.projects.ChangeStatus(f.ctx, p.ID, "CANCELLED", f.manager); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if got := f.reload(t, open.ID).Status; got != models.TaskBlocked {
		t.Errorf("open task = %s, want BLOCKED", got)
	}
	_, err = f.projects.ChangeStatus(f.ctx, p.ID, "ACTIVE", f.manager)
	wantKind(t, err, lifecycle.KindInvalidTransition)
}

func TestProjectService_ChangeStatusRequiresManager(t *testing.T) {
	f := newFixture(t)
	p := f.project(t, nil)

	_, err := f.projects.ChangeStatus(f.ctx, p.ID, "ON_HOLD", f.alice)
	wantForbidden(t, err)

	_, err = f.projects.ChangeStatus(f.ctx, p.ID, "PAUSED", f.manager)
	wantKind(t, err, lifecycle.KindInvalidInput)
}

func TestProjectService_Update(t *testing.T) {
	f := newFixture(t)
	p := f.project(t, nil)
	desc := "second phase"

	updated, err := f.projects.Update(f.ctx, p.ID, &UpdateProjectRequest{Name: "Launch v2", Description: &desc, Status: "ON_HOLD"}, f.manager)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Name != "Launch v2" || updated.Description != desc {
		t.Errorf("fields not saved: %+v", updated)
	}
	if updated.Status != models.ProjectOnHold {
		t.Errorf("status = %s, want ON_HOLD", updated.Status)
	}

	_, err = f.projects.Update(f.ctx, p.ID, &UpdateProjectRequest{Name: "x"}, f.alice)
	wantForbidden(t, err)
}

func TestProjectService_Delete(t *testing.T) {
	f := newFixture(t)
	managed := f.project(t, nil)

	owned, err := f.projects.Create(f.ctx, &CreateProjectRequest{Name: "Admin's"}, f.admin)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	tests := []struct {
		name      string
		id        uint
		actor     lifecycle.Actor
		forbidden bool
	}{
		{"owner without admin role", managed.ID, f.manager, true},
		{"admin who is not owner", managed.ID, f.admin, true},
		{"missing project", 9999, f.admin, true},
		{"admin owner", owned.ID, f.admin, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := f.projects.Delete(f.ctx, tt.id, tt.actor)
			if tt.forbidden {
				wantForbidden(t, err)
				return
			}
			if err != nil {
				t.Fatalf("Delete: %v", err)
			}
			if _, err := f.st.Projects().Get(f.ctx, tt.id); !errors.Is(err, lifecycle.ErrNotFound) {
				t.Errorf("project still present: %v", err)
			}
		})
	}
}

func TestProjectService_RefreshAutoStatuses(t *testing.T) {
	f := newFixture(t)

	planned, err := f.projects.Create(f.ctx, &CreateProjectRequest{Name: "Later", StartDate: "2025-06-10"}, f.manager)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	// started today, so it is already ACTIVE; force it back to PLANNING
	if err := f.st.Projects().UpdateStatus(f.ctx, planned.ID, models.ProjectPlanning); err != nil {
		t.Fatalf("update status: %v", err)
	}

	finished := f.project(t, &CreateProjectRequest{Name: "Done"})
	task := f.task(t, finished.ID, "only", &f.alice)
	if _, err := f.tasks.Complete(f.ctx, task.ID, f.alice); err != nil {
		t.Fatalf("complete: %v", err)
	}

	empty := f.project(t, &CreateProjectRequest{Name: "Empty"})

	changed, err := f.projects.RefreshAutoStatuses(f.ctx)
	if err != nil {
		t.Fatalf("RefreshAutoStatuses: %v", err)
	}
	if changed != 2 {
		t.Errorf("changed = %d, want 2", changed)
	}

	want := map[uint]models.ProjectStatus{
		planned.ID:  models.ProjectActive,
		finished.ID: models.ProjectCompleted,
		empty.ID:    models.ProjectActive,
	}
	for id, status := range want {
		p, err := f.st.Projects().Get(f.ctx, id)
		if err != nil {
			t.Fatalf("get %d: %v", id, err)
		}
		if p.Status != status {
			t.Errorf("project %d = %s, want %s", id, p.Status, status)
		}
	}
}

func TestProjectService_Activity(t *testing.T) {
	f := newFixture(t)
	p := f.project(t, nil)
	f.task(t, p.ID, "write docs", nil)

	rows, err := f.projects.Activity(f.ctx, p.ID, 0, f.alice)
	if err != nil {
		t.Fatalf("Activity: %v", err)
	}
	// project insert, alice added, task insert
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}
	if rows[0].EntityType != models.EntityTask || rows[0].Action != models.ActionInsert {
		t.Errorf("newest row = %s %s, want TASK INSERT", rows[0].EntityType, rows[0].Action)
	}

	_, err = f.projects.Activity(f.ctx, p.ID, 10, f.bob)
	wantForbidden(t, err)
}
