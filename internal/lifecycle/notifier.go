package lifecycle

import (
	"context"
	"fmt"
	"time"

	"github.com/NafisaTasnimR/UpNext/internal/models"
	"github.com/NafisaTasnimR/UpNext/pkg/logger"
	"github.com/rs/zerolog"
)

const (
	DueSoonDays = 3
	// OverdueDays is how long after the due date the deadline notice goes out.
	OverdueDays = 1
)

// DueSoonMessage and DeadlinePassedMessage build the notification text.
func DueSoonMessage(title string) string {
	return "Task due in 3 days: " + title
}

func DeadlinePassedMessage(title string) string {
	return "Task deadline passed: " + title
}

// ItemFailure records one task the generator could not process.
type ItemFailure struct {
	TaskID uint
	Type   models.NotificationType
	Err    error
}

// RunReport summarizes one generator run.
type RunReport struct {
	Date     time.Time
	Scanned  int
	Created  int
	Skipped  int
	Failures []ItemFailure
	// ByType counts created notifications per type.
	ByType map[models.NotificationType]int
}

func (r RunReport) Failed() int { return len(r.Failures) }

// NotificationGenerator emits DUE_SOON_3D and DEADLINE_PASSED notifications.
// A failure on one task is logged and the run moves on to the next one.
type NotificationGenerator struct {
	tasks         TaskStore
	notifications NotificationStore
	log           zerolog.Logger
}

func NewNotificationGenerator(tasks TaskStore, notifications NotificationStore) *NotificationGenerator {
	return &NotificationGenerator{
		tasks:         tasks,
		notifications: notifications,
		log:           logger.With("notifier"),
	}
}

type scan struct {
	typ      models.NotificationType
	day      time.Time
	eligible func(*models.Task) bool
	message  func(string) string
}

// Run processes the tasks due on today+3 and today-1. The existence check
// before each insert is what makes repeated runs on one day idempotent.
func (g *NotificationGenerator) Run(ctx context.Context, today time.Time) RunReport {
	today = Day(today)
	report := RunReport{Date: today, ByType: make(map[models.NotificationType]int)}

	scans := []scan{
		{
			typ:      models.NotifyDueSoon,
			day:      today.AddDate(0, 0, DueSoonDays),
			eligible: func(t *models.Task) bool { return true },
			message:  DueSoonMessage,
		},
		{
			typ: models.NotifyDeadlinePassed,
			day: today.AddDate(0, 0, -OverdueDays),
			eligible: func(t *models.Task) bool {
				return t.Status == models.TaskTodo || t.Status == models.TaskInProgress
			},
			message: DeadlinePassedMessage,
		},
	}

	for _, sc := range scans {
		if err := ctx.Err(); err != nil {
			report.Failures = append(report.Failures, ItemFailure{Type: sc.typ, Err: err})
			break
		}
		tasks, err := g.tasks.ListDueOn(ctx, sc.day)
		if err != nil {
			g.log.Error().Err(err).Str("type", string(sc.typ)).Time("due", sc.day).Msg("list due tasks failed")
			report.Failures = append(report.Failures, ItemFailure{Type: sc.typ, Err: err})
			continue
		}
		for i := range tasks {
			t := &tasks[i]
			report.Scanned++
			if t.AssigneeID == nil || !sc.eligible(t) {
				report.Skipped++
				continue
			}
			created, err := g.notifyOnce(ctx, t, sc)
			if err != nil {
				g.log.Error().Err(err).Uint("task_id", t.ID).Str("type", string(sc.typ)).Msg("notification failed")
				report.Failures = append(report.Failures, ItemFailure{TaskID: t.ID, Type: sc.typ, Err: err})
				continue
			}
			if created {
				report.Created++
				report.ByType[sc.typ]++
			} else {
				report.Skipped++
			}
		}
	}

	g.log.Info().
		Time("date", today).
		Int("scanned", report.Scanned).
		Int("created", report.Created).
		Int("skipped", report.Skipped).
		Int("failed", report.Failed()).
		Msg("notification run finished")
	return report
}

func (g *NotificationGenerator) notifyOnce(ctx context.Context, t *models.Task, sc scan) (bool, error) {
	userID := *t.AssigneeID
	exists, err := g.notifications.Exists(ctx, t.ID, userID, sc.typ)
	if err != nil {
		return false, fmt.Errorf("check existing notification: %w", err)
	}
	if exists {
		return false, nil
	}
	if err := g.notifications.Create(ctx, t.ID, userID, sc.typ, sc.message(t.Title)); err != nil {
		return false, fmt.Errorf("create notification: %w", err)
	}
	return true, nil
}
