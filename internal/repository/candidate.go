package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dharsanguruparan/RecruitDesk/internal/apperr"
	"github.com/dharsanguruparan/RecruitDesk/internal/model"
)

const candidateColumns = `id::text, user_id, name, email, phone, wechat, job_type::text, current_company,
	school, linkedin_url, google_scholar, status::text, resume_url, resume_filename, created_at, updated_at`

// CandidateRepository wraps the SQL for the candidates table. Every query is
// filtered by user_id so rows owned by someone else behave as missing.
type CandidateRepository struct {
	pool *pgxpool.Pool
}

// NewCandidateRepository constructs a repository.
func NewCandidateRepository(pool *pgxpool.Pool) *CandidateRepository {
	return &CandidateRepository{pool: pool}
}

// execer is satisfied by both the pool and a transaction.
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// CreateCandidate inserts c, assigning its id and timestamps.
func (r *CandidateRepository) CreateCandidate(ctx context.Context, c *model.Candidate) error {
	return insertCandidate(ctx, r.pool, c)
}

// CreateCandidateWithNote inserts a candidate and its first note in a single
// transaction.
func (r *CandidateRepository) CreateCandidateWithNote(ctx context.Context, c *model.Candidate, n *model.Note) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)
	if err := insertCandidate(ctx, tx, c); err != nil {
		return err
	}
	n.CandidateID = c.ID
	n.UserID = c.UserID
	if err := insertNote(ctx, tx, n); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func insertCandidate(ctx context.Context, db execer, c *model.Candidate) error {
	now := time.Now().UTC()
	c.ID = uuid.NewString()
	c.CreatedAt = now
	c.UpdatedAt = now
	_, err := db.Exec(ctx, `
		INSERT INTO candidates (id, user_id, name, email, phone, wechat, job_type, current_company, school,
			linkedin_url, google_scholar, status, resume_url, resume_filename, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7::text::job_type,$8,$9,$10,$11,$12::text::candidate_status,$13,$14,$15,$16)
	`, c.ID, c.UserID, c.Name, c.Email, c.Phone, c.Wechat, string(c.JobType), c.CurrentCompany, c.School,
		c.LinkedinURL, c.GoogleScholar, string(c.Status), c.ResumeURL, c.ResumeFilename, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert candidate: %w", err)
	}
	return nil
}

// GetCandidate returns the candidate with id if userID owns it.
func (r *CandidateRepository) GetCandidate(ctx context.Context, userID, id string) (*model.Candidate, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+candidateColumns+` FROM candidates WHERE id=$1 AND user_id=$2`, id, userID)
	c, err := scanCandidate(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("candidate not found")
		}
		return nil, fmt.Errorf("select candidate: %w", err)
	}
	return c, nil
}

// ListCandidates returns every candidate owned by userID, newest first.
func (r *CandidateRepository) ListCandidates(ctx context.Context, userID string) ([]model.Candidate, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+candidateColumns+` FROM candidates WHERE user_id=$1 ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}
	return collectCandidates(rows)
}

// SearchCandidates matches query case-insensitively as a substring of name,
// email, current company or school, ordered by name.
func (r *CandidateRepository) SearchCandidates(ctx context.Context, userID, query string) ([]model.Candidate, error) {
	pattern := "%" + EscapeLike(query) + "%"
	rows, err := r.pool.Query(ctx, `
		SELECT `+candidateColumns+` FROM candidates
		WHERE user_id=$1 AND (name ILIKE $2 OR email ILIKE $2 OR current_company ILIKE $2 OR school ILIKE $2)
		ORDER BY lower(name) ASC, name ASC, id ASC
	`, userID, pattern)
	if err != nil {
		return nil, fmt.Errorf("search candidates: %w", err)
	}
	return collectCandidates(rows)
}

// UpdateCandidate applies patch to the candidate and returns the new row.
func (r *CandidateRepository) UpdateCandidate(ctx context.Context, userID, id string, patch model.CandidatePatch) (*model.Candidate, error) {
	sets := []string{}
	args := []any{}
	add := func(expr string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf(expr, len(args)))
	}
	if patch.Name != nil {
		add("name=$%d", strings.TrimSpace(*patch.Name))
	}
	if patch.JobType != nil {
		add("job_type=$%d::text::job_type", string(*patch.JobType))
	}
	if patch.Status != nil {
		add("status=$%d::text::candidate_status", string(*patch.Status))
	}
	for _, f := range patch.OptionalFields() {
		add(f.Column+"=$%d", f.Value)
	}
	add("updated_at=$%d", time.Now().UTC())
	args = append(args, id, userID)
	query := fmt.Sprintf(`UPDATE candidates SET %s WHERE id=$%d AND user_id=$%d RETURNING `+candidateColumns,
		strings.Join(sets, ", "), len(args)-1, len(args))

	c, err := scanCandidate(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("candidate not found")
		}
		return nil, fmt.Errorf("update candidate: %w", err)
	}
	return c, nil
}

// DeleteCandidate removes the candidate; its notes go with it through the
// foreign key cascade.
func (r *CandidateRepository) DeleteCandidate(ctx context.Context, userID, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM candidates WHERE id=$1 AND user_id=$2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete candidate: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("candidate not found")
	}
	return nil
}

func scanCandidate(row pgx.Row) (*model.Candidate, error) {
	var (
		c       model.Candidate
		jobType string
		status  string
	)
	err := row.Scan(&c.ID, &c.UserID, &c.Name, &c.Email, &c.Phone, &c.Wechat, &jobType, &c.CurrentCompany,
		&c.School, &c.LinkedinURL, &c.GoogleScholar, &status, &c.ResumeURL, &c.ResumeFilename, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	c.JobType = model.JobType(jobType)
	c.Status = model.Status(status)
	return &c, nil
}

func collectCandidates(rows pgx.Rows) ([]model.Candidate, error) {
	defer rows.Close()
	out := []model.Candidate{}
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan candidate: %w", err)
		}
		out = append(out, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate candidates: %w", err)
	}
	return out, nil
}

// EscapeLike escapes the LIKE wildcards in s so it matches literally.
func EscapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
