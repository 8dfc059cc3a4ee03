package api

import (
	"net/http"

	"github.com/dharsanguruparan/RecruitDesk/internal/model"
)

type createCandidateRequest struct {
	model.CandidateInput
	Note string `json:"note,omitempty"`
}

type candidateWithNote struct {
	Candidate *model.Candidate `json:"candidate"`
	Note      *model.Note      `json:"note,omitempty"`
}

// handleCandidates godoc
// @Summary List, search or create candidates
// @Tags candidates
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param q query string false "Case-insensitive match on name, email, company or school"
// @Success 200 {object} result
// @Failure 400 {object} result
// @Failure 401 {object} result
// @Router /candidates [get]
// @Router /candidates [post]
func (s *Server) handleCandidates(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		out, err := s.deps.Candidates.Search(r.Context(), r.URL.Query().Get("q"))
		if err != nil {
			respondError(w, err)
			return
		}
		respondOK(w, http.StatusOK, "candidates retrieved", out)
	case http.MethodPost:
		var req createCandidateRequest
		if err := decodeJSON(w, r, &req); err != nil {
			respondError(w, err)
			return
		}
		if req.Note == "" {
			c, err := s.deps.Candidates.Create(r.Context(), req.CandidateInput)
			if err != nil {
				respondError(w, err)
				return
			}
			respondOK(w, http.StatusCreated, "candidate created", candidateWithNote{Candidate: c})
			return
		}
		c, n, err := s.deps.Candidates.CreateWithNote(r.Context(), req.CandidateInput, req.Note)
		if err != nil {
			respondError(w, err)
			return
		}
		respondOK(w, http.StatusCreated, "candidate created", candidateWithNote{Candidate: c, Note: n})
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleCandidateRoute(w http.ResponseWriter, r *http.Request) {
	parts := splitPath(r.URL.Path, "/candidates/")
	switch {
	case len(parts) == 1:
		s.handleCandidate(w, r, parts[0])
	case len(parts) == 2 && parts[1] == "notes":
		s.handleCandidateNotes(w, r, parts[0])
	default:
		notFound(w)
	}
}

// handleCandidate godoc
// @Summary Get, update or delete a candidate
// @Tags candidates
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Candidate ID"
// @Success 200 {object} result
// @Failure 404 {object} result
// @Router /candidates/{id} [get]
// @Router /candidates/{id} [patch]
// @Router /candidates/{id} [delete]
func (s *Server) handleCandidate(w http.ResponseWriter, r *http.Request, id string) {
	switch r.Method {
	case http.MethodGet:
		c, err := s.deps.Candidates.Get(r.Context(), id)
		if err != nil {
			respondError(w, err)
			return
		}
		respondOK(w, http.StatusOK, "candidate retrieved", c)
	case http.MethodPatch:
		var patch model.CandidatePatch
		if err := decodeJSON(w, r, &patch); err != nil {
			respondError(w, err)
			return
		}
		c, err := s.deps.Candidates.Update(r.Context(), id, patch)
		if err != nil {
			respondError(w, err)
			return
		}
		respondOK(w, http.StatusOK, "candidate updated", c)
	case http.MethodDelete:
		if err := s.deps.Candidates.Delete(r.Context(), id); err != nil {
			respondError(w, err)
			return
		}
		respondOK(w, http.StatusOK, "candidate deleted", nil)
	default:
		methodNotAllowed(w)
	}
}
