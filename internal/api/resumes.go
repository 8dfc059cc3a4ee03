package api

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"

	"github.com/dharsanguruparan/RecruitDesk/internal/apperr"
	"github.com/dharsanguruparan/RecruitDesk/internal/ingest"
	pdfutil "github.com/dharsanguruparan/RecruitDesk/internal/pdf"
)

// handleUpload godoc
// @Summary Upload a resume and extract candidate fields
// @Description Stores the PDF, then returns the extracted profile and a draft candidate for review. Nothing is persisted as a candidate.
// @Tags resumes
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "Resume PDF"
// @Success 200 {object} result
// @Failure 400 {object} result
// @Failure 422 {object} result
// @Failure 429 {object} result
// @Failure 502 {object} result
// @Router /resumes [post]
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxFileSize+1024)
	mr, err := r.MultipartReader()
	if err != nil {
		respondError(w, apperr.Validation("expecting multipart form", err))
		return
	}
	part, err := nextFilePart(mr)
	if err != nil {
		respondError(w, apperr.Validation("missing file field", err))
		return
	}
	defer part.Close()
	upload, err := s.readUpload(part)
	if err != nil {
		respondError(w, err)
		return
	}
	res, err := s.deps.Resumes.Ingest(r.Context(), *upload)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, http.StatusOK, "resume processed", res)
}

// readUpload buffers the file part, enforcing the size cap and a PDF sniff.
func (s *Server) readUpload(part *multipart.Part) (*ingest.Upload, error) {
	var buf bytes.Buffer
	written, err := io.Copy(&buf, io.LimitReader(part, s.cfg.MaxFileSize+1))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, apperr.Validation(fmt.Sprintf("file exceeds limit (%d bytes)", s.cfg.MaxFileSize), err)
		}
		return nil, apperr.Validation("failed to read file", err)
	}
	if written == 0 {
		return nil, apperr.Validation("empty file", nil)
	}
	if written > s.cfg.MaxFileSize {
		return nil, apperr.Validation(fmt.Sprintf("file exceeds limit (%d bytes)", s.cfg.MaxFileSize), nil)
	}
	data := buf.Bytes()
	sniff := data
	if len(sniff) > 512 {
		sniff = sniff[:512]
	}
	if http.DetectContentType(sniff) != "application/pdf" || !pdfutil.IsPDF(data) {
		return nil, apperr.Validation("only PDF files supported", nil)
	}
	filename := filepath.Base(part.FileName())
	if filename == "" || filename == "." || filename == "/" {
		filename = "resume.pdf"
	}
	return &ingest.Upload{FileName: filename, ContentType: "application/pdf", Data: data}, nil
}

func nextFilePart(mr *multipart.Reader) (*multipart.Part, error) {
	for {
		part, err := mr.NextPart()
		if err != nil {
			return nil, err
		}
		if part.FormName() == "file" {
			return part, nil
		}
		part.Close()
	}
}

// handleResumeURL godoc
// @Summary Resolve a signed URL for one of the caller's resumes
// @Tags resumes
// @Produce json
// @Security BearerAuth
// @Param path query string true "Storage path returned by the upload"
// @Success 200 {object} result
// @Failure 404 {object} result
// @Router /resumes/url [get]
func (s *Server) handleResumeURL(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	path := r.URL.Query().Get("path")
	if path == "" {
		respondError(w, apperr.Validation("path is required", nil))
		return
	}
	u, err := s.deps.Resumes.ResolveURL(r.Context(), path)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, http.StatusOK, "resume url resolved", map[string]string{"url": u})
}

// handleDeleteResume godoc
// @Summary Delete one of the caller's resumes
// @Tags resumes
// @Produce json
// @Security BearerAuth
// @Param path query string true "Storage path"
// @Success 200 {object} result
// @Failure 404 {object} result
// @Router /resumes [delete]
func (s *Server) handleDeleteResume(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		respondError(w, apperr.Validation("path is required", nil))
		return
	}
	if err := s.deps.Resumes.DeleteResume(r.Context(), path); err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, http.StatusOK, "resume deleted", nil)
}
