package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dharsanguruparan/RecruitDesk/internal/apperr"
	"github.com/dharsanguruparan/RecruitDesk/internal/model"
)

const noteNotFound = "note not found or not authorized"

// NoteRepository wraps the SQL for the notes table.
type NoteRepository struct {
	pool *pgxpool.Pool
}

// NewNoteRepository constructs a repository.
func NewNoteRepository(pool *pgxpool.Pool) *NoteRepository {
	return &NoteRepository{pool: pool}
}

// CreateNote inserts n, assigning its id and timestamps.
func (r *NoteRepository) CreateNote(ctx context.Context, n *model.Note) error {
	return insertNote(ctx, r.pool, n)
}

func insertNote(ctx context.Context, db execer, n *model.Note) error {
	now := time.Now().UTC()
	n.ID = uuid.NewString()
	n.CreatedAt = now
	n.UpdatedAt = now
	_, err := db.Exec(ctx, `
		INSERT INTO notes (id, candidate_id, user_id, content, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6)
	`, n.ID, n.CandidateID, n.UserID, n.Content, n.CreatedAt, n.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert note: %w", err)
	}
	return nil
}

// ListNotes returns the notes userID wrote on a candidate, newest first.
func (r *NoteRepository) ListNotes(ctx context.Context, userID, candidateID string) ([]model.Note, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, candidate_id::text, user_id, content, created_at, updated_at
		FROM notes WHERE candidate_id=$1 AND user_id=$2
		ORDER BY created_at DESC, id DESC
	`, candidateID, userID)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	defer rows.Close()
	out := []model.Note{}
	for rows.Next() {
		var n model.Note
		if err := rows.Scan(&n.ID, &n.CandidateID, &n.UserID, &n.Content, &n.CreatedAt, &n.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan note: %w", err)
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notes: %w", err)
	}
	return out, nil
}

// UpdateNote replaces the content of a note owned by userID.
func (r *NoteRepository) UpdateNote(ctx context.Context, userID, id, content string) (*model.Note, error) {
	var n model.Note
	err := r.pool.QueryRow(ctx, `
		UPDATE notes SET content=$1, updated_at=$2
		WHERE id=$3 AND user_id=$4
		RETURNING id::text, candidate_id::text, user_id, content, created_at, updated_at
	`, content, time.Now().UTC(), id, userID).Scan(&n.ID, &n.CandidateID, &n.UserID, &n.Content, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.New(apperr.CodeNotFoundOrUnauthorized, noteNotFound, nil)
		}
		return nil, fmt.Errorf("update note: %w", err)
	}
	return &n, nil
}

// DeleteNote removes a note owned by userID.
func (r *NoteRepository) DeleteNote(ctx context.Context, userID, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM notes WHERE id=$1 AND user_id=$2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete note: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.New(apperr.CodeNotFoundOrUnauthorized, noteNotFound, nil)
	}
	return nil
}
