// Package service holds the caller-scoped operations behind every transport.
// Each method resolves the calling user from the context, validates input and
// converts unexpected failures into the apperr taxonomy.
package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/dharsanguruparan/RecruitDesk/internal/apperr"
	"github.com/dharsanguruparan/RecruitDesk/internal/auth"
	"github.com/dharsanguruparan/RecruitDesk/internal/model"
)

// CandidateStore persists candidates. Implementations scope every read and
// mutation to userID.
type CandidateStore interface {
	CreateCandidate(ctx context.Context, c *model.Candidate) error
	CreateCandidateWithNote(ctx context.Context, c *model.Candidate, n *model.Note) error
	GetCandidate(ctx context.Context, userID, id string) (*model.Candidate, error)
	ListCandidates(ctx context.Context, userID string) ([]model.Candidate, error)
	SearchCandidates(ctx context.Context, userID, query string) ([]model.Candidate, error)
	UpdateCandidate(ctx context.Context, userID, id string, patch model.CandidatePatch) (*model.Candidate, error)
	DeleteCandidate(ctx context.Context, userID, id string) error
}

const msgCandidateNotFound = "candidate not found"

// CandidateService manages candidates.
type CandidateService struct {
	store CandidateStore
}

// NewCandidateService constructs a CandidateService.
func NewCandidateService(store CandidateStore) *CandidateService {
	return &CandidateService{store: store}
}

func caller(ctx context.Context) (string, error) {
	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		return "", apperr.Unauthorized()
	}
	return userID, nil
}

// Create validates and stores a new candidate.
func (s *CandidateService) Create(ctx context.Context, in model.CandidateInput) (*model.Candidate, error) {
	userID, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	in.Normalize()
	if err := checkStruct(in); err != nil {
		return nil, err
	}
	c := in.Candidate(userID)
	if err := s.store.CreateCandidate(ctx, c); err != nil {
		slog.Error("create candidate failed", "user_id", userID, "error", err)
		return nil, apperr.Boundary(err, "failed to create candidate")
	}
	return c, nil
}

// CreateWithNote stores a candidate together with its first note. Either both
// are stored or neither is.
func (s *CandidateService) CreateWithNote(ctx context.Context, in model.CandidateInput, note string) (*model.Candidate, *model.Note, error) {
	userID, err := caller(ctx)
	if err != nil {
		return nil, nil, err
	}
	in.Normalize()
	if err := checkStruct(in); err != nil {
		return nil, nil, err
	}
	noteIn := model.NoteInput{Content: strings.TrimSpace(note)}
	if err := checkStruct(noteIn); err != nil {
		return nil, nil, err
	}
	c := in.Candidate(userID)
	n := &model.Note{Content: noteIn.Content}
	if err := s.store.CreateCandidateWithNote(ctx, c, n); err != nil {
		slog.Error("create candidate with note failed", "user_id", userID, "error", err)
		return nil, nil, apperr.Boundary(err, "failed to create candidate")
	}
	return c, n, nil
}

// Get returns a candidate owned by the caller.
func (s *CandidateService) Get(ctx context.Context, id string) (*model.Candidate, error) {
	userID, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	if !validID(id) {
		return nil, apperr.NotFound(msgCandidateNotFound)
	}
	c, err := s.store.GetCandidate(ctx, userID, id)
	return c, apperr.Boundary(err, "failed to get candidate")
}

// List returns the caller's candidates, newest first.
func (s *CandidateService) List(ctx context.Context) ([]model.Candidate, error) {
	userID, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	out, err := s.store.ListCandidates(ctx, userID)
	return out, apperr.Boundary(err, "failed to get candidates")
}

// Search matches query against name, email, company and school. A blank
// query lists everything instead.
func (s *CandidateService) Search(ctx context.Context, query string) ([]model.Candidate, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return s.List(ctx)
	}
	userID, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	out, err := s.store.SearchCandidates(ctx, userID, query)
	return out, apperr.Boundary(err, "failed to search candidates")
}

// Update applies a partial patch. Ownership is checked with a read before
// the write; the two steps are not atomic, which is safe because ownership
// never changes after creation.
func (s *CandidateService) Update(ctx context.Context, id string, patch model.CandidatePatch) (*model.Candidate, error) {
	userID, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	if !validID(id) {
		return nil, apperr.NotFound(msgCandidateNotFound)
	}
	if err := checkPatch(patch); err != nil {
		return nil, err
	}
	current, err := s.store.GetCandidate(ctx, userID, id)
	if err != nil {
		return nil, apperr.Boundary(err, "failed to update candidate")
	}
	if patch.Empty() {
		return current, nil
	}
	c, err := s.store.UpdateCandidate(ctx, userID, id, patch)
	if err != nil {
		slog.Error("update candidate failed", "user_id", userID, "candidate_id", id, "error", err)
	}
	return c, apperr.Boundary(err, "failed to update candidate")
}

// Delete removes a candidate and, through the store, its notes.
func (s *CandidateService) Delete(ctx context.Context, id string) error {
	userID, err := caller(ctx)
	if err != nil {
		return err
	}
	if !validID(id) {
		return apperr.NotFound(msgCandidateNotFound)
	}
	if _, err := s.store.GetCandidate(ctx, userID, id); err != nil {
		return apperr.Boundary(err, "failed to delete candidate")
	}
	if err := s.store.DeleteCandidate(ctx, userID, id); err != nil {
		slog.Error("delete candidate failed", "user_id", userID, "candidate_id", id, "error", err)
		return apperr.Boundary(err, "failed to delete candidate")
	}
	return nil
}
