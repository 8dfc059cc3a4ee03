package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/dharsanguruparan/RecruitDesk/internal/apperr"
	"github.com/dharsanguruparan/RecruitDesk/internal/model"
)

// NoteStore persists notes.
type NoteStore interface {
	CreateNote(ctx context.Context, n *model.Note) error
	ListNotes(ctx context.Context, userID, candidateID string) ([]model.Note, error)
	UpdateNote(ctx context.Context, userID, id, content string) (*model.Note, error)
	DeleteNote(ctx context.Context, userID, id string) error
}

const msgNoteNotFound = "note not found or not authorized"

// NoteService manages notes on candidates.
type NoteService struct {
	notes      NoteStore
	candidates CandidateStore
}

// NewNoteService constructs a NoteService. candidates is used to confirm the
// caller owns the candidate a note is attached to.
func NewNoteService(notes NoteStore, candidates CandidateStore) *NoteService {
	return &NoteService{notes: notes, candidates: candidates}
}

func (s *NoteService) content(raw string) (string, error) {
	in := model.NoteInput{Content: strings.TrimSpace(raw)}
	if err := checkStruct(in); err != nil {
		return "", err
	}
	return in.Content, nil
}

// Create attaches a note to one of the caller's candidates.
func (s *NoteService) Create(ctx context.Context, candidateID, content string) (*model.Note, error) {
	userID, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	text, err := s.content(content)
	if err != nil {
		return nil, err
	}
	if !validID(candidateID) {
		return nil, apperr.NotFound(msgCandidateNotFound)
	}
	if _, err := s.candidates.GetCandidate(ctx, userID, candidateID); err != nil {
		return nil, apperr.Boundary(err, "failed to create note")
	}
	n := &model.Note{UserID: userID, CandidateID: candidateID, Content: text}
	if err := s.notes.CreateNote(ctx, n); err != nil {
		slog.Error("create note failed", "user_id", userID, "candidate_id", candidateID, "error", err)
		return nil, apperr.Boundary(err, "failed to create note")
	}
	return n, nil
}

// ListByCandidate returns the caller's notes for a candidate, newest first.
func (s *NoteService) ListByCandidate(ctx context.Context, candidateID string) ([]model.Note, error) {
	userID, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	if !validID(candidateID) {
		return []model.Note{}, nil
	}
	out, err := s.notes.ListNotes(ctx, userID, candidateID)
	return out, apperr.Boundary(err, "failed to get notes")
}

// Update replaces a note's content.
func (s *NoteService) Update(ctx context.Context, id, content string) (*model.Note, error) {
	userID, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	text, err := s.content(content)
	if err != nil {
		return nil, err
	}
	if !validID(id) {
		return nil, apperr.New(apperr.CodeNotFoundOrUnauthorized, msgNoteNotFound, nil)
	}
	n, err := s.notes.UpdateNote(ctx, userID, id, text)
	return n, apperr.Boundary(err, "failed to update note")
}

// Delete removes a note. A missing or foreign note is reported, not ignored.
func (s *NoteService) Delete(ctx context.Context, id string) error {
	userID, err := caller(ctx)
	if err != nil {
		return err
	}
	if !validID(id) {
		return apperr.New(apperr.CodeNotFoundOrUnauthorized, msgNoteNotFound, nil)
	}
	return apperr.Boundary(s.notes.DeleteNote(ctx, userID, id), "failed to delete note")
}
