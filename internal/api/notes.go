package api

import (
	"net/http"

	"github.com/dharsanguruparan/RecruitDesk/internal/model"
)

// handleCandidateNotes godoc
// @Summary List or add notes on a candidate
// @Tags notes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Candidate ID"
// @Success 200 {object} result
// @Failure 400 {object} result
// @Router /candidates/{id}/notes [get]
// @Router /candidates/{id}/notes [post]
func (s *Server) handleCandidateNotes(w http.ResponseWriter, r *http.Request, candidateID string) {
	switch r.Method {
	case http.MethodGet:
		notes, err := s.deps.Notes.ListByCandidate(r.Context(), candidateID)
		if err != nil {
			respondError(w, err)
			return
		}
		respondOK(w, http.StatusOK, "notes retrieved", notes)
	case http.MethodPost:
		var in model.NoteInput
		if err := decodeJSON(w, r, &in); err != nil {
			respondError(w, err)
			return
		}
		n, err := s.deps.Notes.Create(r.Context(), candidateID, in.Content)
		if err != nil {
			respondError(w, err)
			return
		}
		respondOK(w, http.StatusCreated, "note created", n)
	default:
		methodNotAllowed(w)
	}
}

// handleNoteRoute godoc
// @Summary Edit or delete a note
// @Tags notes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Note ID"
// @Success 200 {object} result
// @Failure 404 {object} result
// @Router /notes/{id} [patch]
// @Router /notes/{id} [delete]
func (s *Server) handleNoteRoute(w http.ResponseWriter, r *http.Request) {
	parts := splitPath(r.URL.Path, "/notes/")
	if len(parts) != 1 {
		notFound(w)
		return
	}
	id := parts[0]
	switch r.Method {
	case http.MethodPatch:
		var in model.NoteInput
		if err := decodeJSON(w, r, &in); err != nil {
			respondError(w, err)
			return
		}
		n, err := s.deps.Notes.Update(r.Context(), id, in.Content)
		if err != nil {
			respondError(w, err)
			return
		}
		respondOK(w, http.StatusOK, "note updated", n)
	case http.MethodDelete:
		if err := s.deps.Notes.Delete(r.Context(), id); err != nil {
			respondError(w, err)
			return
		}
		respondOK(w, http.StatusOK, "note deleted", nil)
	default:
		methodNotAllowed(w)
	}
}
