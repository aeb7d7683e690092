package services

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/NafisaTasnimR/UpNext/internal/config"
	"github.com/NafisaTasnimR/UpNext/pkg/logger"
	"github.com/hibiken/asynq"
)

const (
	TaskTypeNotificationScan = "notifications:scan"
)

// NotificationJob asks for the daily scan of one calendar date.
type NotificationJob struct {
	Date string `json:"date"` // 2006-01-02
}

// Day parses the job date.
func (j *NotificationJob) Day() (time.Time, error) {
	return time.Parse(DateLayout, j.Date)
}

type JobProcessor func(context.Context, *NotificationJob) error

// TaskQueue hands daily scan jobs to whoever processes them
type TaskQueue interface {
	// Enqueue adds a job to the queue. Enqueueing the same date twice is not an error.
	Enqueue(job *NotificationJob) error
	// IsAsync returns true if jobs are processed by a separate worker
	IsAsync() bool
	Close() error
}

var (
	globalTaskQueue TaskQueue
	taskQueueOnce   sync.Once
)

// InitTaskQueue picks the Redis-backed queue when Redis is enabled and
// reachable, and the in-process queue otherwise.
func InitTaskQueue(cfg *config.Config) TaskQueue {
	taskQueueOnce.Do(func() {
		if cfg.Redis.Enabled {
			queue, err := NewAsyncQueue(&cfg.Redis)
			if err != nil {
				logger.Warnf("[TaskQueue] Redis unavailable, falling back to sync mode: %v", err)
				globalTaskQueue = NewSyncQueue()
			} else {
				logger.Infof("[TaskQueue] Async queue initialized with Redis at %s", cfg.Redis.Addr)
				globalTaskQueue = queue
			}
		} else {
			logger.Infof("[TaskQueue] Sync queue initialized (Redis disabled)")
			globalTaskQueue = NewSyncQueue()
		}
	})
	return globalTaskQueue
}

func redisOpt(cfg *config.RedisConfig) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
}

// AsyncQueue implements TaskQueue using asynq
type AsyncQueue struct {
	client *asynq.Client
}

func NewAsyncQueue(cfg *config.RedisConfig) (*AsyncQueue, error) {
	opt := redisOpt(cfg)
	client := asynq.NewClient(opt)

	inspector := asynq.NewInspector(opt)
	defer inspector.Close()
	if _, err := inspector.Queues(); err != nil {
		client.Close()
		return nil, err
	}

	return &AsyncQueue{client: client}, nil
}

// Enqueue uses the date as the asynq task id so only one job per day sits
// in Redis even when several instances fire the schedule.
func (q *AsyncQueue) Enqueue(job *NotificationJob) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return err
	}

	t := asynq.NewTask(TaskTypeNotificationScan, payload)
	info, err := q.client.Enqueue(t,
		asynq.Queue("default"),
		asynq.MaxRetry(3),
		asynq.TaskID(TaskTypeNotificationScan+":"+job.Date),
		asynq.Retention(24*time.Hour),
	)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		logger.Infof("[AsyncQueue] Scan for %s already queued", job.Date)
		return nil
	}
	if err != nil {
		return err
	}

	logger.Infof("[AsyncQueue] Job enqueued: id=%s, queue=%s", info.ID, info.Queue)
	return nil
}

func (q *AsyncQueue) IsAsync() bool {
	return true
}

func (q *AsyncQueue) Close() error {
	return q.client.Close()
}

// SyncQueue runs jobs in a goroutine of this process (no Redis)
type SyncQueue struct {
	processor JobProcessor
	wg        sync.WaitGroup
}

func NewSyncQueue() *SyncQueue {
	return &SyncQueue{}
}

func (q *SyncQueue) SetProcessor(processor JobProcessor) {
	q.processor = processor
}

func (q *SyncQueue) Enqueue(job *NotificationJob) error {
	if q.processor == nil {
		logger.Warnf("[SyncQueue] No processor set, job for %s dropped", job.Date)
		return nil
	}

	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		if err := q.processor(context.Background(), job); err != nil {
			logger.Errorf("[SyncQueue] Job for %s failed: %v", job.Date, err)
		}
	}()

	return nil
}

// Wait blocks until every enqueued job has finished.
func (q *SyncQueue) Wait() {
	q.wg.Wait()
}

func (q *SyncQueue) IsAsync() bool {
	return false
}

// Close waits for running jobs.
func (q *SyncQueue) Close() error {
	q.wg.Wait()
	return nil
}
