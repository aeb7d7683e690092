package services

import (
	"context"
	"fmt"
	"time"

	"github.com/NafisaTasnimR/UpNext/internal/config"
	"github.com/NafisaTasnimR/UpNext/internal/lifecycle"
	"github.com/NafisaTasnimR/UpNext/pkg/logger"
	"github.com/NafisaTasnimR/UpNext/pkg/metrics"
	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
)

const notificationLock = "notifications"

// NotificationScheduler fires the daily due-date scan. The cron entry only
// enqueues a job; Process does the work, guarded by a per-day lock row so
// that one instance handles each date.
type NotificationScheduler struct {
	lc       *Lifecycle
	projects *ProjectService
	queue    TaskQueue
	cfg      config.SchedulerConfig
	instance string
	cron     *cron.Cron
}

func NewNotificationScheduler(lc *Lifecycle, projects *ProjectService, queue TaskQueue, cfg config.SchedulerConfig) *NotificationScheduler {
	return &NotificationScheduler{
		lc:       lc,
		projects: projects,
		queue:    queue,
		cfg:      cfg,
		instance: uuid.NewString(),
	}
}

// Start registers the cron entry. It is a no-op when the scheduler is disabled.
func (s *NotificationScheduler) Start() error {
	if !s.cfg.Enabled {
		logger.Infof("[Scheduler] Disabled")
		return nil
	}
	s.cron = cron.New(cron.WithLocation(s.cfg.Location()))
	if _, err := s.cron.AddFunc(s.cfg.NotifyCron, s.Trigger); err != nil {
		return fmt.Errorf("schedule %q: %w", s.cfg.NotifyCron, err)
	}
	s.cron.Start()
	logger.Infof("[Scheduler] Started (cron: %s, tz: %s, instance: %s)", s.cfg.NotifyCron, s.cfg.Location(), s.instance)

	if s.cfg.RunOnStartup {
		s.Trigger()
	}
	return nil
}

func (s *NotificationScheduler) Stop() {
	if s.cron != nil {
		<-s.cron.Stop().Done()
		logger.Infof("[Scheduler] Stopped")
	}
}

// Today is the date the next scan covers. It follows the lifecycle's zone,
// which the server wires from the scheduler timezone.
func (s *NotificationScheduler) Today() time.Time {
	return s.lc.Today()
}

// Trigger enqueues the scan for today.
func (s *NotificationScheduler) Trigger() {
	date := s.Today().Format(DateLayout)
	if err := s.TriggerFor(date); err != nil {
		logger.Errorf("[Scheduler] Failed to enqueue scan for %s: %v", date, err)
	}
}

// TriggerFor enqueues the scan for a YYYY-MM-DD date.
func (s *NotificationScheduler) TriggerFor(date string) error {
	job := &NotificationJob{Date: date}
	if _, err := job.Day(); err != nil {
		return lifecycle.InvalidInput(fmt.Errorf("date must be in YYYY-MM-DD form"))
	}
	return s.queue.Enqueue(job)
}

func (s *NotificationScheduler) lockTTL() time.Duration {
	if s.cfg.LockTTLMinutes <= 0 {
		return time.Hour
	}
	return time.Duration(s.cfg.LockTTLMinutes) * time.Minute
}

// Process runs a queued job unless another instance already holds the
// date's lock. A successful run marks the lock finished so the date is never
// scanned twice; on failure the lock is dropped so a retry can claim it.
func (s *NotificationScheduler) Process(ctx context.Context, job *NotificationJob) error {
	day, err := job.Day()
	if err != nil {
		return fmt.Errorf("bad job date %q: %w", job.Date, err)
	}

	st := s.lc.Store()
	ok, err := st.TryAcquire(ctx, notificationLock, job.Date, s.instance, s.lockTTL())
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		logger.Infof("[Scheduler] Scan for %s is held by another instance", job.Date)
		metrics.IncrementNotificationRun("skipped")
		return nil
	}

	if _, err := s.RunDaily(ctx, day); err != nil {
		if relErr := st.Release(ctx, notificationLock, job.Date, s.instance); relErr != nil {
			logger.Warnf("[Scheduler] Failed to release lock for %s: %v", job.Date, relErr)
		}
		return err
	}
	if err := st.Finish(ctx, notificationLock, job.Date, s.instance); err != nil {
		logger.Warnf("[Scheduler] Failed to mark %s finished: %v", job.Date, err)
	}
	return nil
}

// RunDaily generates the notifications for day and then applies the
// automatic project status rules. Per-item failures are reported, not returned.
func (s *NotificationScheduler) RunDaily(ctx context.Context, day time.Time) (lifecycle.RunReport, error) {
	started := time.Now()
	report := s.lc.Notifier.Run(ctx, day)
	metrics.RecordNotificationRun(time.Since(started))
	for typ, n := range report.ByType {
		metrics.IncrementNotificationCreated(string(typ), n)
	}

	outcome := "success"
	if report.Failed() > 0 {
		outcome = "partial"
	}
	if err := ctx.Err(); err != nil {
		metrics.IncrementNotificationRun("failed")
		return report, err
	}

	changed, err := s.projects.RefreshAutoStatuses(ctx)
	if err != nil {
		logger.Errorf("[Scheduler] Auto status refresh finished with errors: %v", err)
		outcome = "partial"
	}
	metrics.IncrementNotificationRun(outcome)
	logger.Infof("[Scheduler] Daily run for %s: %d created, %d skipped, %d failed, %d projects moved",
		report.Date.Format(DateLayout), report.Created, report.Skipped, report.Failed(), changed)
	return report, nil
}
