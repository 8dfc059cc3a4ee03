package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/dharsanguruparan/RecruitDesk/internal/queue"
)

// Deleter removes an object from storage.
type Deleter interface {
	Delete(ctx context.Context, path string) error
}

// Processor is plugged into the asynq worker loop.
type Processor struct {
	store Deleter
}

// NewProcessor constructs a worker processor.
func NewProcessor(store Deleter) *Processor {
	return &Processor{store: store}
}

// Handler registers the cleanup handler.
func (p *Processor) Handler() *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(queue.CleanupResumeTask, p.handleCleanup)
	return mux
}

func (p *Processor) handleCleanup(ctx context.Context, task *asynq.Task) error {
	var payload queue.CleanupPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil || payload.Path == "" {
		slog.Error("dropping malformed cleanup task", "payload", string(task.Payload()), "error", err)
		return fmt.Errorf("decode payload: %v: %w", err, asynq.SkipRetry)
	}
	if err := p.store.Delete(ctx, payload.Path); err != nil {
		slog.Warn("resume cleanup failed", "path", payload.Path, "error", err)
		return err
	}
	slog.Info("orphaned resume removed", "path", payload.Path)
	return nil
}
