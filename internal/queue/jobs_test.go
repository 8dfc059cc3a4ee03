package queue

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/hibiken/asynq"
)

type fakeEnqueuer struct {
	tasks []*asynq.Task
	opts  [][]asynq.Option
	err   error
}

func (f *fakeEnqueuer) EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.tasks = append(f.tasks, task)
	f.opts = append(f.opts, opts)
	return &asynq.TaskInfo{ID: "t1", Type: task.Type()}, nil
}

func TestScheduleCleanup(t *testing.T) {
	fake := &fakeEnqueuer{}
	s := NewScheduler(fake, time.Minute)
	if err := s.ScheduleCleanup(context.Background(), "u1/resumes/1-cv.pdf"); err != nil {
		t.Fatalf("schedule: %v", err)
	}
	if len(fake.tasks) != 1 || fake.tasks[0].Type() != CleanupResumeTask {
		t.Fatalf("unexpected tasks %+v", fake.tasks)
	}
	var payload CleanupPayload
	if err := json.Unmarshal(fake.tasks[0].Payload(), &payload); err != nil || payload.Path != "u1/resumes/1-cv.pdf" {
		t.Fatalf("payload: %+v %v", payload, err)
	}
	if len(fake.opts[0]) != 2 {
		t.Fatalf("expected retry and delay options, got %v", fake.opts[0])
	}
}

func TestScheduleCleanupErrors(t *testing.T) {
	fake := &fakeEnqueuer{}
	s := NewScheduler(fake, 0)
	if err := s.ScheduleCleanup(context.Background(), ""); err == nil {
		t.Fatalf("empty path should be rejected")
	}
	fake.err = errors.New("redis down")
	if err := s.ScheduleCleanup(context.Background(), "u1/resumes/1-cv.pdf"); !errors.Is(err, fake.err) {
		t.Fatalf("expected wrapped enqueue error, got %v", err)
	}
}
