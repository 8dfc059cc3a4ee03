// Package ingest sequences a resume upload through storage, text extraction
// and structured extraction.
package ingest

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/dharsanguruparan/RecruitDesk/internal/apperr"
	"github.com/dharsanguruparan/RecruitDesk/internal/auth"
	"github.com/dharsanguruparan/RecruitDesk/internal/model"
	"github.com/dharsanguruparan/RecruitDesk/internal/s3storage"
)

// ObjectStore is the storage gateway used by the pipeline.
type ObjectStore interface {
	Upload(ctx context.Context, userID, fileName, contentType string, body io.Reader, size int64) (string, error)
	ResolveURL(ctx context.Context, path string) (string, error)
	Delete(ctx context.Context, path string) error
}

// TextExtractor returns the plain text of a document, or false when it cannot
// be read at all.
type TextExtractor interface {
	ExtractText(data []byte) (string, bool)
}

// ProfileExtractor maps resume text onto a structured profile.
type ProfileExtractor interface {
	ExtractProfile(ctx context.Context, text string) (*model.ResumeProfile, error)
}

// CleanupScheduler defers deletion of an orphaned upload to a background
// worker.
type CleanupScheduler interface {
	ScheduleCleanup(ctx context.Context, path string) error
}

// Upload is a resume file received from a caller.
type Upload struct {
	FileName    string
	ContentType string
	Data        []byte
}

// Result is what a successful ingestion hands back to the caller.
type Result struct {
	Profile   *model.ResumeProfile `json:"resumeData"`
	ResumeURL string               `json:"resumeUrl"`
	FileName  string               `json:"fileName"`
	Path      string               `json:"path"`
	Draft     model.CandidateInput `json:"draft"`
}

// ParseFailedMessage is surfaced when no text could be read from the file.
const ParseFailedMessage = "failed to parse resume content"

// Pipeline runs resume ingestion.
type Pipeline struct {
	store     ObjectStore
	text      TextExtractor
	profiles  ProfileExtractor
	scheduler CleanupScheduler
	cleanup   bool
}

// Option customises a Pipeline.
type Option func(*Pipeline)

// WithCleanup deletes the uploaded object when a later stage fails. When the
// delete itself fails and scheduler is non-nil, the delete is retried in the
// background.
func WithCleanup(scheduler CleanupScheduler) Option {
	return func(p *Pipeline) {
		p.cleanup = true
		p.scheduler = scheduler
	}
}

// New constructs a Pipeline.
func New(store ObjectStore, text TextExtractor, profiles ProfileExtractor, opts ...Option) *Pipeline {
	p := &Pipeline{store: store, text: text, profiles: profiles}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Ingest uploads the file, resolves a signed URL, extracts text and then the
// structured profile. The first failing stage's error is returned unchanged.
func (p *Pipeline) Ingest(ctx context.Context, file Upload) (*Result, error) {
	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		return nil, apperr.Unauthorized()
	}
	if len(file.Data) == 0 {
		return nil, apperr.Validation("resume file is empty", nil)
	}
	log := slog.With("user_id", userID, "file", file.FileName)

	path, err := p.store.Upload(ctx, userID, file.FileName, file.ContentType, bytes.NewReader(file.Data), int64(len(file.Data)))
	if err != nil {
		log.Error("resume upload failed", "stage", "upload", "error", err)
		return nil, apperr.Boundary(err, "failed to upload resume")
	}
	fail := func(stage string, err error) (*Result, error) {
		log.Error("resume ingestion failed", "stage", stage, "path", path, "error", err)
		p.discard(ctx, path)
		return nil, err
	}

	signedURL, err := p.store.ResolveURL(ctx, path)
	if err != nil {
		return fail("resolve", apperr.Boundary(err, "failed to get resume URL"))
	}
	text, ok := p.text.ExtractText(file.Data)
	if !ok || strings.TrimSpace(text) == "" {
		return fail("parse", apperr.New(apperr.CodeParse, ParseFailedMessage, nil))
	}
	profile, err := p.profiles.ExtractProfile(ctx, text)
	if err != nil {
		return fail("extract", apperr.Boundary(err, "failed to extract resume data"))
	}
	log.Info("resume ingested", "path", path, "chars", len(text))
	return &Result{
		Profile:   profile,
		ResumeURL: signedURL,
		FileName:  file.FileName,
		Path:      path,
		Draft:     profile.Draft(path, file.FileName),
	}, nil
}

// discard removes an upload whose ingestion failed. It never changes the
// error reported to the caller.
func (p *Pipeline) discard(ctx context.Context, path string) {
	if !p.cleanup {
		return
	}
	// The request context may already be cancelled; cleanup should still run.
	cleanupCtx := context.WithoutCancel(ctx)
	err := p.store.Delete(cleanupCtx, path)
	if err == nil {
		return
	}
	slog.Warn("orphaned resume delete failed", "path", path, "error", err)
	if p.scheduler == nil {
		return
	}
	if err := p.scheduler.ScheduleCleanup(cleanupCtx, path); err != nil {
		slog.Error("schedule resume cleanup failed", "path", path, "error", err)
	}
}

// ResolveURL returns a signed URL for a resume owned by the caller.
func (p *Pipeline) ResolveURL(ctx context.Context, path string) (string, error) {
	if err := p.checkOwner(ctx, path); err != nil {
		return "", err
	}
	u, err := p.store.ResolveURL(ctx, path)
	return u, apperr.Boundary(err, "failed to get resume URL")
}

// DeleteResume removes a resume owned by the caller.
func (p *Pipeline) DeleteResume(ctx context.Context, path string) error {
	if err := p.checkOwner(ctx, path); err != nil {
		return err
	}
	return apperr.Boundary(p.store.Delete(ctx, path), "failed to delete resume")
}

// checkOwner rejects paths outside the caller's namespace as not found so that
// foreign files are indistinguishable from missing ones.
func (p *Pipeline) checkOwner(ctx context.Context, path string) error {
	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		return apperr.Unauthorized()
	}
	if strings.Contains(path, "..") || !strings.HasPrefix(path, s3storage.UserPrefix(userID)) {
		return apperr.NotFound("resume file not found in storage")
	}
	return nil
}
