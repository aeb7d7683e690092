package services

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/NafisaTasnimR/UpNext/internal/config"
	"github.com/NafisaTasnimR/UpNext/pkg/logger"
	"github.com/hibiken/asynq"
)

// Worker consumes notification scan jobs from Redis
type Worker struct {
	server    *asynq.Server
	mux       *asynq.ServeMux
	processor JobProcessor
	wg        sync.WaitGroup
	running   bool
	mu        sync.Mutex
}

// NewWorker returns nil when Redis is disabled.
func NewWorker(cfg *config.RedisConfig) *Worker {
	if !cfg.Enabled {
		return nil
	}

	server := asynq.NewServer(
		redisOpt(cfg),
		asynq.Config{
			Concurrency: 2,
			Queues: map[string]int{
				"default": 1,
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				logger.Errorf("[Worker] Error processing task %s: %v", task.Type(), err)
			}),
		},
	)

	return &Worker{
		server: server,
		mux:    asynq.NewServeMux(),
	}
}

func (w *Worker) SetProcessor(processor JobProcessor) {
	w.processor = processor
}

func (w *Worker) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return nil
	}

	w.mux.HandleFunc(TaskTypeNotificationScan, w.handleScan)

	w.running = true
	w.wg.Add(1)

	go func() {
		defer w.wg.Done()
		logger.Infof("[Worker] Starting async worker...")
		if err := w.server.Run(w.mux); err != nil {
			logger.Errorf("[Worker] Server error: %v", err)
		}
	}()

	return nil
}

func (w *Worker) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return
	}

	logger.Infof("[Worker] Shutting down...")
	w.server.Shutdown()
	w.running = false
	w.wg.Wait()
	logger.Infof("[Worker] Shutdown complete")
}

func (w *Worker) handleScan(ctx context.Context, t *asynq.Task) error {
	job, err := decodeJob(t.Payload())
	if err != nil {
		logger.Errorf("[Worker] Failed to unmarshal job: %v", err)
		return err
	}

	logger.Infof("[Worker] Processing notification scan for %s", job.Date)

	if w.processor == nil {
		logger.Warnf("[Worker] No processor set")
		return nil
	}
	return w.processor(ctx, job)
}

func decodeJob(payload []byte) (*NotificationJob, error) {
	var job NotificationJob
	if err := json.Unmarshal(payload, &job); err != nil {
		return nil, err
	}
	if _, err := job.Day(); err != nil {
		return nil, err
	}
	return &job, nil
}

var (
	globalWorker *Worker
	workerOnce   sync.Once
)

func InitWorker(cfg *config.RedisConfig) *Worker {
	workerOnce.Do(func() {
		globalWorker = NewWorker(cfg)
	})
	return globalWorker
}
