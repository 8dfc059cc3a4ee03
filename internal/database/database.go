package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dharsanguruparan/RecruitDesk/internal/model"
)

// Connect opens a pgx connection pool using the provided DSN and verifies it
// with a ping.
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	cfg.MaxConns = 8
	cfg.MaxConnIdleTime = 5 * time.Minute
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

// EnsureSchema creates the enum types, the candidates table and the notes
// table. Every statement is idempotent so the server, the worker and the CLI
// may all call it on start.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, SchemaSQL())
	if err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// SchemaSQL renders the DDL. The enum labels come from the model package so
// the database and the Go types cannot drift apart.
func SchemaSQL() string {
	jobTypes := make([]string, 0, len(model.JobTypes))
	for _, j := range model.JobTypes {
		jobTypes = append(jobTypes, quote(string(j)))
	}
	statuses := make([]string, 0, len(model.Statuses))
	for _, s := range model.Statuses {
		statuses = append(statuses, quote(string(s)))
	}
	return fmt.Sprintf(`
DO $$
BEGIN
	IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'job_type') THEN
		CREATE TYPE job_type AS ENUM (%s);
	END IF;
	IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'candidate_status') THEN
		CREATE TYPE candidate_status AS ENUM (%s);
	END IF;
END
$$;
CREATE TABLE IF NOT EXISTS candidates (
	id UUID PRIMARY KEY,
	user_id TEXT NOT NULL,
	name TEXT NOT NULL,
	email TEXT,
	phone TEXT,
	wechat TEXT,
	job_type job_type NOT NULL,
	current_company TEXT,
	school TEXT,
	linkedin_url TEXT,
	google_scholar TEXT,
	status candidate_status NOT NULL DEFAULT 'new',
	resume_url TEXT,
	resume_filename TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_candidates_user_created ON candidates(user_id, created_at DESC);
CREATE TABLE IF NOT EXISTS notes (
	id UUID PRIMARY KEY,
	candidate_id UUID NOT NULL REFERENCES candidates(id) ON DELETE CASCADE,
	user_id TEXT NOT NULL,
	content TEXT NOT NULL CHECK (char_length(content) BETWEEN 1 AND %d),
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_notes_candidate_created ON notes(candidate_id, created_at DESC);`,
		strings.Join(jobTypes, ", "), strings.Join(statuses, ", "), model.MaxNoteLength)
}

func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
