package services

import (
	"errors"
	"testing"
	"time"

	"github.com/NafisaTasnimR/UpNext/internal/config"
	"github.com/NafisaTasnimR/UpNext/internal/lifecycle"
	"github.com/NafisaTasnimR/UpNext/internal/models"
)

// seedDueTasks creates one task due in three days and one that was due
// yesterday, both assigned to alice, plus an unassigned overdue task.
func seedDueTasks(t *testing.T, f *fixture) (*models.Project, *models.Task, *models.Task) {
	t.Helper()
	p := f.project(t, nil)
	soon, err := f.tasks.Create(f.ctx, p.ID, &CreateTaskRequest{Title: "ship", DueDate: "2025-06-13", AssigneeID: uintPtr(f.alice.UserID)}, f.manager)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	late, err := f.tasks.Create(f.ctx, p.ID, &CreateTaskRequest{Title: "review", DueDate: "2025-06-09", AssigneeID: uintPtr(f.alice.UserID)}, f.manager)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := f.tasks.Create(f.ctx, p.ID, &CreateTaskRequest{Title: "triage", DueDate: "2025-06-02"}, f.manager); err != nil {
		t.Fatalf("create: %v", err)
	}
	return p, soon, late
}

func newScheduler(f *fixture) *NotificationScheduler {
	cfg := config.SchedulerConfig{Enabled: true, NotifyCron: "0 8 * * *", Timezone: "UTC", LockTTLMinutes: 30}
	return NewNotificationScheduler(f.lc, f.projects, NewSyncQueue(), cfg)
}

func TestNotificationScheduler_RunDaily(t *testing.T) {
	f := newFixture(t)
	_, soon, late := seedDueTasks(t, f)
	sched := newScheduler(f)

	report, err := sched.RunDaily(f.ctx, testToday)
	if err != nil {
		t.Fatalf("RunDaily: %v", err)
	}
	if report.Created != 2 {
		t.Errorf("created = %d, want 2", report.Created)
	}
	if report.ByType[models.NotifyDueSoon] != 1 || report.ByType[models.NotifyDeadlinePassed] != 1 {
		t.Errorf("by type = %v", report.ByType)
	}

	// a second run on the same day adds nothing
	report, err = sched.RunDaily(f.ctx, testToday)
	if err != nil {
		t.Fatalf("RunDaily: %v", err)
	}
	if report.Created != 0 {
		t.Errorf("second run created %d", report.Created)
	}

	for _, tc := range []struct {
		task *models.Task
		typ  models.NotificationType
	}{{soon, models.NotifyDueSoon}, {late, models.NotifyDeadlinePassed}} {
		ok, err := f.st.Notifications().Exists(f.ctx, tc.task.ID, f.alice.UserID, tc.typ)
		if err != nil || !ok {
			t.Errorf("%s for task %d missing (%v)", tc.typ, tc.task.ID, err)
		}
	}
}

func TestNotificationScheduler_TriggerThroughQueue(t *testing.T) {
	f := newFixture(t)
	seedDueTasks(t, f)

	queue := NewSyncQueue()
	cfg := config.SchedulerConfig{Enabled: true, NotifyCron: "0 8 * * *", Timezone: "UTC"}
	sched := NewNotificationScheduler(f.lc, f.projects, queue, cfg)
	queue.SetProcessor(sched.Process)

	if got := sched.Today().Format(DateLayout); got != "2025-06-10" {
		t.Fatalf("Today = %s", got)
	}
	sched.Trigger()
	queue.Wait()

	count, err := f.st.Notifications().CountUnread(f.ctx, f.alice.UserID)
	if err != nil {
		t.Fatalf("CountUnread: %v", err)
	}
	if count != 2 {
		t.Errorf("unread = %d, want 2", count)
	}
}

func TestNotificationScheduler_ProcessLock(t *testing.T) {
	f := newFixture(t)
	seedDueTasks(t, f)
	first := newScheduler(f)
	second := newScheduler(f)
	job := &NotificationJob{Date: "2025-06-10"}

	if err := first.Process(f.ctx, job); err != nil {
		t.Fatalf("first: %v", err)
	}
	// the lock row for the date is still held by the first instance
	ok, err := f.st.TryAcquire(f.ctx, notificationLock, job.Date, "someone-else", 0)
	if err != nil || ok {
		t.Fatalf("lock should be held, got %v (%v)", ok, err)
	}
	// even once the claim's TTL has run out, a finished date stays taken
	if err := f.st.DB().Model(&models.SchedulerLock{}).
		Where("lock_name = ? AND lock_key = ?", notificationLock, job.Date).
		Update("expires_at", testToday.Add(-24*time.Hour)).Error; err != nil {
		t.Fatalf("age lock: %v", err)
	}
	if err := second.Process(f.ctx, job); err != nil {
		t.Fatalf("second: %v", err)
	}
	var lock models.SchedulerLock
	if err := f.st.DB().Where("lock_name = ? AND lock_key = ?", notificationLock, job.Date).First(&lock).Error; err != nil {
		t.Fatalf("load lock: %v", err)
	}
	if lock.LockedBy != first.instance || !lock.Finished {
		t.Errorf("lock = %s finished=%v, want held by the first instance and finished", lock.LockedBy, lock.Finished)
	}
	if err := first.Process(f.ctx, job); err != nil {
		t.Fatalf("first again: %v", err)
	}

	items, err := f.st.Notifications().ListForUser(f.ctx, f.alice.UserID, false)
	if err != nil {
		t.Fatalf("ListForUser: %v", err)
	}
	if len(items) != 2 {
		t.Errorf("got %d notifications, want 2", len(items))
	}

	if err := first.Process(f.ctx, &NotificationJob{Date: "10/06/2025"}); err == nil {
		t.Error("expected error for a malformed date")
	}
}

func TestNotificationService_Inbox(t *testing.T) {
	f := newFixture(t)
	seedDueTasks(t, f)
	if _, err := newScheduler(f).RunDaily(f.ctx, testToday); err != nil {
		t.Fatalf("RunDaily: %v", err)
	}
	svc := NewNotificationService(f.lc)

	inbox, err := svc.Inbox(f.ctx, &InboxRequest{}, f.alice)
	if err != nil {
		t.Fatalf("Inbox: %v", err)
	}
	if inbox.Unread != 2 || len(inbox.Items) != 2 {
		t.Fatalf("inbox = %d unread, %d items", inbox.Unread, len(inbox.Items))
	}

	err = svc.MarkRead(f.ctx, inbox.Items[0].ID, f.bob)
	if !errors.Is(err, lifecycle.ErrNotFound) {
		t.Errorf("marking another user's notification: got %v", err)
	}
	if err := svc.MarkRead(f.ctx, inbox.Items[0].ID, f.alice); err != nil {
		t.Fatalf("MarkRead: %v", err)
	}
	unread, err := svc.Inbox(f.ctx, &InboxRequest{UnreadOnly: true}, f.alice)
	if err != nil {
		t.Fatalf("Inbox: %v", err)
	}
	if unread.Unread != 1 || len(unread.Items) != 1 {
		t.Errorf("after MarkRead: %d unread, %d items", unread.Unread, len(unread.Items))
	}

	n, err := svc.MarkAllRead(f.ctx, f.alice)
	if err != nil || n != 1 {
		t.Errorf("MarkAllRead = %d (%v), want 1", n, err)
	}
}

func TestNotificationService_Overdue(t *testing.T) {
	f := newFixture(t)
	seedDueTasks(t, f)
	svc := NewNotificationService(f.lc)

	tests := []struct {
		name  string
		actor lifecycle.Actor
		want  int
	}{
		{"admin sees everything", f.admin, 2},
		{"project owner sees the project", f.manager, 2},
		{"assignee sees own tasks", f.alice, 1},
		{"outsider sees nothing", f.bob, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tasks, err := svc.Overdue(f.ctx, tt.actor)
			if err != nil {
				t.Fatalf("Overdue: %v", err)
			}
			if len(tasks) != tt.want {
				t.Errorf("got %d tasks, want %d", len(tasks), tt.want)
			}
		})
	}
}
