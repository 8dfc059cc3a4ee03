// Package api exposes candidates, notes, resumes and exports over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/dharsanguruparan/RecruitDesk/internal/apperr"
	"github.com/dharsanguruparan/RecruitDesk/internal/auth"
	"github.com/dharsanguruparan/RecruitDesk/internal/config"
	"github.com/dharsanguruparan/RecruitDesk/internal/ingest"
	"github.com/dharsanguruparan/RecruitDesk/internal/ratelimit"
	"github.com/dharsanguruparan/RecruitDesk/internal/service"
)

// Deps are the collaborators behind the HTTP surface.
type Deps struct {
	Candidates *service.CandidateService
	Notes      *service.NoteService
	Exports    *service.ExportService
	Resumes    *ingest.Pipeline
	Auth       *auth.Authenticator
	Limiter    ratelimit.Limiter
}

// Server exposes HTTP endpoints for the recruiter workspace.
type Server struct {
	cfg     *config.Config
	deps    Deps
	handler http.Handler
	server  *http.Server
	once    sync.Once
}

// New constructs a Server.
func New(cfg *config.Config, deps Deps) *Server {
	return &Server{cfg: cfg, deps: deps}
}

// Handler returns the fully wrapped router.
func (s *Server) Handler() http.Handler {
	s.once.Do(func() {
		protect := s.deps.Auth.Middleware(func(w http.ResponseWriter, r *http.Request, err error) {
			respondError(w, apperr.Unauthorized())
		})
		limitIngest := ratelimit.Middleware(s.deps.Limiter, ingestKey, s.cfg.IngestRateLimit, s.cfg.IngestRateWindow,
			func(w http.ResponseWriter, r *http.Request) {
				respondJSON(w, http.StatusTooManyRequests, result{Message: "too many resume uploads, try again later"})
			})

		mux := http.NewServeMux()
		mux.HandleFunc("/healthz", s.handleHealth)
		mux.Handle("/swagger/", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
		mux.HandleFunc("/session", s.handleSession)
		mux.Handle("/candidates", protect(http.HandlerFunc(s.handleCandidates)))
		mux.Handle("/candidates/", protect(http.HandlerFunc(s.handleCandidateRoute)))
		mux.Handle("/notes/", protect(http.HandlerFunc(s.handleNoteRoute)))
		mux.Handle("/resumes", protect(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodPost:
				limitIngest(http.HandlerFunc(s.handleUpload)).ServeHTTP(w, r)
			case http.MethodDelete:
				s.handleDeleteResume(w, r)
			default:
				methodNotAllowed(w)
			}
		})))
		mux.Handle("/resumes/url", protect(http.HandlerFunc(s.handleResumeURL)))
		mux.Handle("/export", protect(http.HandlerFunc(s.handleExport)))

		c := cors.New(cors.Options{
			AllowedOrigins:   s.cfg.CORSAllowedOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
			AllowedHeaders:   []string{"Authorization", "Content-Type"},
			ExposedHeaders:   []string{"Content-Disposition"},
			AllowCredentials: true,
		})
		s.handler = c.Handler(loggingMiddleware(mux))
	})
	return s.handler
}

// Run starts the HTTP server and blocks until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	s.server = &http.Server{
		Addr:              s.cfg.Address,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()
	slog.Info("api listening", "addr", s.cfg.Address)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// handleHealth godoc
// @Summary Health check
// @Tags system
// @Produce json
// @Success 200 {object} map[string]string
// @Router /healthz [get]
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleSession godoc
// @Summary Exchange a bearer token for a cookie session, or end it
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} result
// @Failure 401 {object} result
// @Router /session [post]
// @Router /session [delete]
func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		header := r.Header.Get("Authorization")
		if header == "" {
			respondError(w, apperr.Unauthorized())
			return
		}
		userID, err := s.deps.Auth.Resolve(r)
		if err != nil {
			respondError(w, apperr.Unauthorized())
			return
		}
		if err := s.deps.Auth.StartSession(w, r, userID); err != nil {
			slog.Error("start session failed", "error", err)
			respondError(w, apperr.New(apperr.CodeOperationFailed, "failed to start session", err))
			return
		}
		respondOK(w, http.StatusOK, "session started", map[string]string{"userId": userID})
	case http.MethodDelete:
		if err := s.deps.Auth.EndSession(w, r); err != nil {
			respondError(w, apperr.New(apperr.CodeOperationFailed, "failed to end session", err))
			return
		}
		respondOK(w, http.StatusOK, "session ended", nil)
	default:
		methodNotAllowed(w)
	}
}

func ingestKey(r *http.Request) string {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		return ""
	}
	return "ingest:" + userID
}

// splitPath returns the non-empty segments after prefix.
func splitPath(path, prefix string) []string {
	rest := strings.Trim(strings.TrimPrefix(path, prefix), "/")
	if rest == "" {
		return nil
	}
	return strings.Split(rest, "/")
}

// result is the uniform envelope of every JSON response.
type result struct {
	IsSuccess bool   `json:"isSuccess"`
	Message   string `json:"message"`
	Data      any    `json:"data,omitempty"`
}

func respondOK(w http.ResponseWriter, status int, message string, data any) {
	respondJSON(w, status, result{IsSuccess: true, Message: message, Data: data})
}

func respondError(w http.ResponseWriter, err error) {
	status := apperr.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		slog.Error("request failed", "status", status, "error", err)
	}
	respondJSON(w, status, result{Message: apperr.Message(err)})
}

func methodNotAllowed(w http.ResponseWriter) {
	respondJSON(w, http.StatusMethodNotAllowed, result{Message: "method not allowed"})
}

func notFound(w http.ResponseWriter) {
	respondJSON(w, http.StatusNotFound, result{Message: "route not found"})
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("encode response", "error", err)
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return apperr.Validation("invalid request body", err)
	}
	return nil
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		slog.Info("request", "method", r.Method, "path", r.URL.Path, "status", rec.status, "duration", time.Since(start))
	})
}
