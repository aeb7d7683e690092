package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/NafisaTasnimR/UpNext/internal/config"
)

func TestTaskTypeNotificationScan_Constant(t *testing.T) {
	if TaskTypeNotificationScan != "notifications:scan" {
		t.Errorf("TaskTypeNotificationScan = %q, expected %q", TaskTypeNotificationScan, "notifications:scan")
	}
}

func TestNotificationJob_Day(t *testing.T) {
	tests := []struct {
		date    string
		wantErr bool
	}{
		{"2025-06-10", false},
		{"2024-02-29", false},
		{"2025-02-30", true},
		{"10/06/2025", true},
		{"", true},
	}
	for _, tt := range tests {
		t.Run(tt.date, func(t *testing.T) {
			job := &NotificationJob{Date: tt.date}
			d, err := job.Day()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Day() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && d.Format(DateLayout) != tt.date {
				t.Errorf("Day() = %s, want %s", d.Format(DateLayout), tt.date)
			}
		})
	}
}

func TestDecodeJob(t *testing.T) {
	job, err := decodeJob([]byte(`{"date":"2025-06-10"}`))
	if err != nil {
		t.Fatalf("decodeJob: %v", err)
	}
	if job.Date != "2025-06-10" {
		t.Errorf("Date = %q", job.Date)
	}

	for _, payload := range []string{`not json`, `{"date":"tomorrow"}`} {
		if _, err := decodeJob([]byte(payload)); err == nil {
			t.Errorf("decodeJob(%s) should fail", payload)
		}
	}
}

func TestSyncQueue_IsAsync(t *testing.T) {
	q := NewSyncQueue()
	if q.IsAsync() {
		t.Error("SyncQueue.IsAsync() should return false")
	}
}

func TestSyncQueue_Close(t *testing.T) {
	q := NewSyncQueue()
	if err := q.Close(); err != nil {
		t.Errorf("SyncQueue.Close() returned error: %v", err)
	}
}

func TestSyncQueue_EnqueueWithoutProcessor(t *testing.T) {
	q := NewSyncQueue()
	if err := q.Enqueue(&NotificationJob{Date: "2025-06-10"}); err != nil {
		t.Errorf("Enqueue without processor returned error: %v", err)
	}
}

func TestSyncQueue_ProcessesJobs(t *testing.T) {
	q := NewSyncQueue()

	var (
		mu   sync.Mutex
		seen []string
	)
	q.SetProcessor(func(ctx context.Context, job *NotificationJob) error {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, job.Date)
		if job.Date == "2025-06-11" {
			return errors.New("boom")
		}
		return nil
	})

	for _, d := range []string{"2025-06-10", "2025-06-11"} {
		if err := q.Enqueue(&NotificationJob{Date: d}); err != nil {
			t.Fatalf("Enqueue: %v", err)
		}
	}
	q.Wait()

	mu.Lock()
	defer mu.Unlock()
	if len(seen) != 2 {
		t.Errorf("processed %d jobs, want 2", len(seen))
	}
}

func TestSyncQueue_ImplementsTaskQueue(t *testing.T) {
	var _ TaskQueue = (*SyncQueue)(nil)
	var _ TaskQueue = (*AsyncQueue)(nil)
}

func TestNewWorker_DisabledRedis(t *testing.T) {
	if w := NewWorker(&config.RedisConfig{Enabled: false}); w != nil {
		t.Error("NewWorker should return nil when Redis is disabled")
	}
}
