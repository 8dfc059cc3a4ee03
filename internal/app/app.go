// Package app builds the dependency graph shared by the server and the CLI.
// Every client is constructed once here and released by Close.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/dharsanguruparan/RecruitDesk/internal/api"
	"github.com/dharsanguruparan/RecruitDesk/internal/auth"
	"github.com/dharsanguruparan/RecruitDesk/internal/config"
	"github.com/dharsanguruparan/RecruitDesk/internal/database"
	"github.com/dharsanguruparan/RecruitDesk/internal/ingest"
	"github.com/dharsanguruparan/RecruitDesk/internal/llm"
	pdfutil "github.com/dharsanguruparan/RecruitDesk/internal/pdf"
	"github.com/dharsanguruparan/RecruitDesk/internal/queue"
	"github.com/dharsanguruparan/RecruitDesk/internal/ratelimit"
	"github.com/dharsanguruparan/RecruitDesk/internal/repository"
	"github.com/dharsanguruparan/RecruitDesk/internal/s3storage"
	"github.com/dharsanguruparan/RecruitDesk/internal/service"
	"github.com/dharsanguruparan/RecruitDesk/internal/storage"
)

// cleanupDelay postpones a background cleanup so a brief storage outage can
// clear first.
const cleanupDelay = time.Minute

// App holds the constructed services.
type App struct {
	Config     *config.Config
	Candidates *service.CandidateService
	Notes      *service.NoteService
	Exports    *service.ExportService
	Storage    *s3storage.Storage
	Resumes    *ingest.Pipeline
	Auth       *auth.Authenticator
	Limiter    ratelimit.Limiter

	closers []func()
}

// SetupLogging installs a JSON slog handler at the configured level.
func SetupLogging(cfg *config.Config) {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel})
	slog.SetDefault(slog.New(handler))
}

type stores interface {
	service.CandidateStore
	service.NoteStore
}

type pgStore struct {
	*repository.CandidateRepository
	*repository.NoteRepository
}

// New connects to every backend named in cfg.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{Config: cfg, Auth: auth.NewAuthenticator(cfg.JWTSecret, cfg.SessionSecret)}

	st, err := a.openStore(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Candidates = service.NewCandidateService(st)
	a.Notes = service.NewNoteService(st, st)
	a.Exports = service.NewExportService(st)

	a.Storage, err = s3storage.New(cfg)
	if err != nil {
		a.Close()
		return nil, err
	}
	if err := a.Storage.EnsureBucket(ctx); err != nil {
		a.Close()
		return nil, fmt.Errorf("ensure bucket: %w", err)
	}

	extractor, err := llm.NewClient(cfg)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("init extraction client: %w", err)
	}
	if cfg.OpenAIAPIKey == "" {
		slog.Warn("OPENAI_API_KEY is not set; resume extraction will be unavailable")
	}
	var textOpts []pdfutil.Option
	if cfg.PDFExternalFallback {
		textOpts = append(textOpts, pdfutil.WithExternalFallback())
	}
	var pipelineOpts []ingest.Option
	if cfg.CleanupOnFailure {
		pipelineOpts = append(pipelineOpts, ingest.WithCleanup(a.cleanupScheduler()))
	}
	a.Resumes = ingest.New(a.Storage, pdfutil.NewExtractor(textOpts...), extractor, pipelineOpts...)

	if cfg.RedisEnabled() {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
		a.closers = append(a.closers, func() { _ = client.Close() })
		a.Limiter = ratelimit.NewRedisLimiter(client)
	} else {
		a.Limiter = ratelimit.NewMemoryLimiter()
	}
	return a, nil
}

func (a *App) openStore(ctx context.Context) (stores, error) {
	if a.Config.StoreBackend == config.StoreBackendMemory {
		slog.Warn("using the in-memory store; data is lost on restart")
		return storage.NewMemoryStore(), nil
	}
	pool, err := database.Connect(ctx, a.Config.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	a.closers = append(a.closers, pool.Close)
	if err := database.EnsureSchema(ctx, pool); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return pgStore{repository.NewCandidateRepository(pool), repository.NewNoteRepository(pool)}, nil
}

// cleanupScheduler returns nil when no queue is configured; the pipeline then
// only attempts the inline delete.
func (a *App) cleanupScheduler() ingest.CleanupScheduler {
	if !a.Config.RedisEnabled() {
		return nil
	}
	client := asynq.NewClient(RedisOpt(a.Config))
	a.closers = append(a.closers, func() { _ = client.Close() })
	return queue.NewScheduler(client, cleanupDelay)
}

// RedisOpt is the asynq connection for cfg.
func RedisOpt(cfg *config.Config) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB}
}

// APIDeps adapts the App to the HTTP layer.
func (a *App) APIDeps() api.Deps {
	return api.Deps{
		Candidates: a.Candidates,
		Notes:      a.Notes,
		Exports:    a.Exports,
		Resumes:    a.Resumes,
		Auth:       a.Auth,
		Limiter:    a.Limiter,
	}
}

// Close releases every client in reverse order of construction.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
