// Command worker removes orphaned resume uploads queued by the server.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/dharsanguruparan/RecruitDesk/internal/app"
	"github.com/dharsanguruparan/RecruitDesk/internal/config"
	"github.com/dharsanguruparan/RecruitDesk/internal/s3storage"
	"github.com/dharsanguruparan/RecruitDesk/internal/worker"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	app.SetupLogging(cfg)
	if !cfg.RedisEnabled() {
		slog.Error("RECRUITDESK_REDIS_ADDR is required for the worker")
		os.Exit(1)
	}

	store, err := s3storage.New(cfg)
	if err != nil {
		slog.Error("init storage", "error", err)
		os.Exit(1)
	}
	if err := store.EnsureBucket(ctx); err != nil {
		slog.Error("ensure bucket", "error", err)
		os.Exit(1)
	}

	server := asynq.NewServer(app.RedisOpt(cfg), asynq.Config{
		Concurrency: cfg.WorkerConcurrency,
		Logger:      slogAdapter{},
	})
	mux := worker.NewProcessor(store).Handler()

	go func() {
		<-ctx.Done()
		server.Shutdown()
	}()

	slog.Info("worker started", "concurrency", cfg.WorkerConcurrency)
	if err := server.Run(mux); err != nil {
		slog.Error("worker stopped", "error", err)
		os.Exit(1)
	}
}

// slogAdapter routes asynq's internal logging through slog.
type slogAdapter struct{}

func (slogAdapter) Debug(args ...interface{}) { slog.Debug(sprint(args)) }
func (slogAdapter) Info(args ...interface{})  { slog.Info(sprint(args)) }
func (slogAdapter) Warn(args ...interface{})  { slog.Warn(sprint(args)) }
func (slogAdapter) Error(args ...interface{}) { slog.Error(sprint(args)) }
func (slogAdapter) Fatal(args ...interface{}) {
	slog.Error(sprint(args))
	os.Exit(1)
}

func sprint(args []interface{}) string {
	return fmt.Sprint(args...)
}
