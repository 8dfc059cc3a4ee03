// Package storage contains the in-memory persistence layer. It implements the
// same store contracts as the Postgres repositories so the service can run
// without a database.
package storage

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/dharsanguruparan/RecruitDesk/internal/apperr"
	"github.com/dharsanguruparan/RecruitDesk/internal/model"
)

// MemoryStore keeps candidates and notes in maps guarded by an RWMutex so
// concurrent readers never block each other.
type MemoryStore struct {
	mu         sync.RWMutex
	candidates map[string]*model.Candidate
	notes      map[string]*model.Note
	now        func() time.Time
	// last is the most recent creation stamp; creations are strictly ordered.
	last time.Time
}

// NewMemoryStore constructs a MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		candidates: make(map[string]*model.Candidate),
		notes:      make(map[string]*model.Note),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// CreateCandidate stores c, assigning its id and timestamps.
func (m *MemoryStore) CreateCandidate(ctx context.Context, c *model.Candidate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.insertCandidate(c)
	return nil
}

// CreateCandidateWithNote stores a candidate and its first note together.
func (m *MemoryStore) CreateCandidateWithNote(ctx context.Context, c *model.Candidate, n *model.Note) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.insertCandidate(c)
	n.CandidateID = c.ID
	n.UserID = c.UserID
	m.insertNote(n)
	return nil
}

func (m *MemoryStore) insertCandidate(c *model.Candidate) {
	now := m.stamp()
	c.ID = uuid.NewString()
	c.CreatedAt = now
	c.UpdatedAt = now
	stored := *c
	m.candidates[c.ID] = &stored
}

// GetCandidate returns a copy of the candidate if userID owns it.
func (m *MemoryStore) GetCandidate(ctx context.Context, userID, id string) (*model.Candidate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.candidates[id]
	if !ok || c.UserID != userID {
		return nil, apperr.NotFound("candidate not found")
	}
	out := *c
	return &out, nil
}

// ListCandidates returns userID's candidates, newest first.
func (m *MemoryStore) ListCandidates(ctx context.Context, userID string) ([]model.Candidate, error) {
	out := m.ownedCandidates(userID, func(*model.Candidate) bool { return true })
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

// SearchCandidates matches query against name, email, company and school.
func (m *MemoryStore) SearchCandidates(ctx context.Context, userID, query string) ([]model.Candidate, error) {
	needle := strings.ToLower(query)
	out := m.ownedCandidates(userID, func(c *model.Candidate) bool {
		for _, field := range []string{c.Name, model.StringValue(c.Email), model.StringValue(c.CurrentCompany), model.StringValue(c.School)} {
			if strings.Contains(strings.ToLower(field), needle) {
				return true
			}
		}
		return false
	})
	byName := collate.New(language.Und, collate.IgnoreCase)
	sort.Slice(out, func(i, j int) bool {
		if c := byName.CompareString(out[i].Name, out[j].Name); c != 0 {
			return c < 0
		}
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *MemoryStore) ownedCandidates(userID string, keep func(*model.Candidate) bool) []model.Candidate {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []model.Candidate{}
	for _, c := range m.candidates {
		if c.UserID == userID && keep(c) {
			out = append(out, *c)
		}
	}
	return out
}

// UpdateCandidate applies patch and returns the updated copy.
func (m *MemoryStore) UpdateCandidate(ctx context.Context, userID, id string, patch model.CandidatePatch) (*model.Candidate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.candidates[id]
	if !ok || c.UserID != userID {
		return nil, apperr.NotFound("candidate not found")
	}
	patch.Apply(c, m.later(c.UpdatedAt))
	out := *c
	return &out, nil
}

// DeleteCandidate removes the candidate and every note attached to it.
func (m *MemoryStore) DeleteCandidate(ctx context.Context, userID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.candidates[id]
	if !ok || c.UserID != userID {
		return apperr.NotFound("candidate not found")
	}
	delete(m.candidates, id)
	for noteID, n := range m.notes {
		if n.CandidateID == id {
			delete(m.notes, noteID)
		}
	}
	return nil
}

// CreateNote stores n. The candidate must exist, mirroring the foreign key.
func (m *MemoryStore) CreateNote(ctx context.Context, n *model.Note) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.candidates[n.CandidateID]; !ok {
		return apperr.NotFound("candidate not found")
	}
	m.insertNote(n)
	return nil
}

func (m *MemoryStore) insertNote(n *model.Note) {
	now := m.stamp()
	n.ID = uuid.NewString()
	n.CreatedAt = now
	n.UpdatedAt = now
	stored := *n
	m.notes[n.ID] = &stored
}

// ListNotes returns userID's notes on a candidate, newest first.
func (m *MemoryStore) ListNotes(ctx context.Context, userID, candidateID string) ([]model.Note, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []model.Note{}
	for _, n := range m.notes {
		if n.CandidateID == candidateID && n.UserID == userID {
			out = append(out, *n)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// UpdateNote replaces the content of a note owned by userID.
func (m *MemoryStore) UpdateNote(ctx context.Context, userID, id, content string) (*model.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.notes[id]
	if !ok || n.UserID != userID {
		return nil, apperr.New(apperr.CodeNotFoundOrUnauthorized, "note not found or not authorized", nil)
	}
	n.Content = content
	n.UpdatedAt = m.later(n.UpdatedAt)
	out := *n
	return &out, nil
}

// DeleteNote removes a note owned by userID.
func (m *MemoryStore) DeleteNote(ctx context.Context, userID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.notes[id]
	if !ok || n.UserID != userID {
		return apperr.New(apperr.CodeNotFoundOrUnauthorized, "note not found or not authorized", nil)
	}
	delete(m.notes, id)
	return nil
}

// stamp returns a creation time strictly after every earlier one. Callers
// hold the write lock.
func (m *MemoryStore) stamp() time.Time {
	m.last = m.later(m.last)
	return m.last
}

// later returns the current time, nudged past prev when the clock has not
// advanced, so updatedAt always moves forward on mutation.
func (m *MemoryStore) later(prev time.Time) time.Time {
	now := m.now()
	if !now.After(prev) {
		now = prev.Add(time.Microsecond)
	}
	return now
}
