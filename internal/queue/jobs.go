package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// CleanupResumeTask is scheduled when an orphaned upload could not be
	// deleted inline.
	CleanupResumeTask = "resume:cleanup"
)

// CleanupPayload names the storage object to remove.
type CleanupPayload struct {
	Path string `json:"path"`
}

// Enqueuer is the part of *asynq.Client the scheduler needs.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Scheduler enqueues cleanup tasks.
type Scheduler struct {
	client Enqueuer
	delay  time.Duration
}

// NewScheduler constructs a Scheduler. delay postpones the first attempt so a
// transient storage outage has a chance to clear.
func NewScheduler(client Enqueuer, delay time.Duration) *Scheduler {
	return &Scheduler{client: client, delay: delay}
}

// NewCleanupTask builds the task for path.
func NewCleanupTask(path string) (*asynq.Task, error) {
	if path == "" {
		return nil, errors.New("cleanup path is empty")
	}
	data, err := json.Marshal(CleanupPayload{Path: path})
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	return asynq.NewTask(CleanupResumeTask, data), nil
}

// ScheduleCleanup enqueues deletion of path.
func (s *Scheduler) ScheduleCleanup(ctx context.Context, path string) error {
	task, err := NewCleanupTask(path)
	if err != nil {
		return err
	}
	opts := []asynq.Option{asynq.MaxRetry(5)}
	if s.delay > 0 {
		opts = append(opts, asynq.ProcessIn(s.delay))
	}
	if _, err := s.client.EnqueueContext(ctx, task, opts...); err != nil {
		return fmt.Errorf("enqueue cleanup task: %w", err)
	}
	return nil
}
