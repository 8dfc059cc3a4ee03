package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dharsanguruparan/RecruitDesk/internal/apperr"
	"github.com/dharsanguruparan/RecruitDesk/internal/auth"
	"github.com/dharsanguruparan/RecruitDesk/internal/config"
	"github.com/dharsanguruparan/RecruitDesk/internal/export"
	"github.com/dharsanguruparan/RecruitDesk/internal/ingest"
	"github.com/dharsanguruparan/RecruitDesk/internal/model"
	"github.com/dharsanguruparan/RecruitDesk/internal/ratelimit"
	"github.com/dharsanguruparan/RecruitDesk/internal/service"
	"github.com/dharsanguruparan/RecruitDesk/internal/storage"
)

type fakeObjects struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (f *fakeObjects) Upload(ctx context.Context, userID, fileName, contentType string, body io.Reader, size int64) (string, error) {
	data, _ := io.ReadAll(body)
	f.mu.Lock()
	defer f.mu.Unlock()
	path := userID + "/resumes/1700000000000-" + fileName
	f.objects[path] = data
	return path, nil
}

func (f *fakeObjects) ResolveURL(ctx context.Context, path string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.objects[path]; !ok {
		return "", apperr.NotFound("resume file not found in storage")
	}
	return "https://storage.test/" + path + "?X-Amz-Signature=sig", nil
}

func (f *fakeObjects) Delete(ctx context.Context, path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, path)
	return nil
}

type fakeText struct{}

func (fakeText) ExtractText(data []byte) (string, bool) { return "Ada Lovelace resume", true }

type fakeProfiles struct{}

func (fakeProfiles) ExtractProfile(ctx context.Context, text string) (*model.ResumeProfile, error) {
	return &model.ResumeProfile{Name: "Ada Lovelace", JobType: model.JobMLEngineer}, nil
}

type testEnv struct {
	handler http.Handler
	authn   *auth.Authenticator
	objects *fakeObjects
}

func newEnv(t *testing.T) *testEnv {
	t.Helper()
	cfg := &config.Config{
		MaxFileSize:        1 << 20,
		CORSAllowedOrigins: []string{"http://localhost:3000"},
		IngestRateLimit:    2,
		IngestRateWindow:   time.Minute,
	}
	store := storage.NewMemoryStore()
	objects := &fakeObjects{objects: map[string][]byte{}}
	authn := auth.NewAuthenticator([]byte("jwt-secret"), []byte("session-secret"))
	srv := New(cfg, Deps{
		Candidates: service.NewCandidateService(store),
		Notes:      service.NewNoteService(store, store),
		Exports:    service.NewExportService(store),
		Resumes:    ingest.New(objects, fakeText{}, fakeProfiles{}),
		Auth:       authn,
		Limiter:    ratelimit.NewMemoryLimiter(),
	})
	return &testEnv{handler: srv.Handler(), authn: authn, objects: objects}
}

func (e *testEnv) token(t *testing.T, user string) string {
	t.Helper()
	tok, err := e.authn.IssueToken(user, time.Hour)
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	return tok
}

func (e *testEnv) do(t *testing.T, user, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		reader = bytes.NewReader(data)
	}
	r := httptest.NewRequest(method, target, reader)
	if body != nil {
		r.Header.Set("Content-Type", "application/json")
	}
	if user != "" {
		r.Header.Set("Authorization", "Bearer "+e.token(t, user))
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, r)
	return rec
}

type envelope struct {
	IsSuccess bool            `json:"isSuccess"`
	Message   string          `json:"message"`
	Data      json.RawMessage `json:"data"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, data any) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope %q: %v", rec.Body.String(), err)
	}
	if data != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, data); err != nil {
			t.Fatalf("decode data: %v", err)
		}
	}
	return env
}

func TestHealth(t *testing.T) {
	e := newEnv(t)
	rec := e.do(t, "", http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "ok") {
		t.Fatalf("health: %d %s", rec.Code, rec.Body.String())
	}
}

func TestProtectedRoutesRequireCaller(t *testing.T) {
	e := newEnv(t)
	for _, target := range []string{"/candidates", "/export", "/resumes/url?path=x"} {
		rec := e.do(t, "", http.MethodGet, target, nil)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401, got %d", target, rec.Code)
		}
		env := decode(t, rec, nil)
		if env.IsSuccess || env.Message != "unauthorized" {
			t.Fatalf("%s: unexpected envelope %+v", target, env)
		}
	}
}

func TestCandidateAndNoteFlow(t *testing.T) {
	e := newEnv(t)
	rec := e.do(t, "u1", http.MethodPost, "/candidates", map[string]any{
		"name": "Ada Lovelace", "email": "ada@x.com", "jobType": "software_engineer", "status": "new", "note": "referred by Charles",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", rec.Code, rec.Body.String())
	}
	var created candidateWithNote
	decode(t, rec, &created)
	if created.Candidate == nil || created.Note == nil || created.Note.CandidateID != created.Candidate.ID {
		t.Fatalf("unexpected create payload %+v", created)
	}
	id := created.Candidate.ID

	rec = e.do(t, "u1", http.MethodGet, "/candidates?q=ADA", nil)
	var found []model.Candidate
	decode(t, rec, &found)
	if len(found) != 1 || found[0].ID != id {
		t.Fatalf("search: %+v", found)
	}

	if rec := e.do(t, "u2", http.MethodGet, "/candidates/"+id, nil); rec.Code != http.StatusNotFound {
		t.Fatalf("foreign get should be 404, got %d", rec.Code)
	}

	rec = e.do(t, "u1", http.MethodPatch, "/candidates/"+id, map[string]any{"status": "hired"})
	var updated model.Candidate
	decode(t, rec, &updated)
	if rec.Code != http.StatusOK || updated.Status != model.StatusHired || model.StringValue(updated.Email) != "ada@x.com" {
		t.Fatalf("patch: %d %+v", rec.Code, updated)
	}

	if rec := e.do(t, "u1", http.MethodPost, "/candidates/"+id+"/notes", map[string]any{"content": ""}); rec.Code != http.StatusBadRequest {
		t.Fatalf("empty note should be 400, got %d", rec.Code)
	}
	rec = e.do(t, "u1", http.MethodPost, "/candidates/"+id+"/notes", map[string]any{"content": "phone screen done"})
	var note model.Note
	decode(t, rec, &note)
	if rec.Code != http.StatusCreated {
		t.Fatalf("note create: %d %s", rec.Code, rec.Body.String())
	}
	if rec := e.do(t, "u2", http.MethodDelete, "/notes/"+note.ID, nil); rec.Code != http.StatusNotFound {
		t.Fatalf("foreign note delete should be 404, got %d", rec.Code)
	}
	if rec := e.do(t, "u1", http.MethodPatch, "/notes/"+note.ID, map[string]any{"content": "onsite booked"}); rec.Code != http.StatusOK {
		t.Fatalf("note update: %d", rec.Code)
	}

	if rec := e.do(t, "u1", http.MethodDelete, "/candidates/"+id, nil); rec.Code != http.StatusOK {
		t.Fatalf("delete: %d", rec.Code)
	}
	rec = e.do(t, "u1", http.MethodGet, "/candidates/"+id+"/notes", nil)
	var notes []model.Note
	decode(t, rec, &notes)
	if len(notes) != 0 {
		t.Fatalf("notes should cascade, got %+v", notes)
	}
}

func TestCreateRejectsInvalidInput(t *testing.T) {
	e := newEnv(t)
	rec := e.do(t, "u1", http.MethodPost, "/candidates", map[string]any{"name": "Ada", "jobType": "astronaut", "status": "new"})
	env := decode(t, rec, nil)
	if rec.Code != http.StatusBadRequest || env.IsSuccess || env.Message != "jobType is not a recognised job type" {
		t.Fatalf("unexpected response %d %+v", rec.Code, env)
	}
	rec = e.do(t, "u1", http.MethodPost, "/candidates", map[string]any{"name": "Ada", "jobType": "other", "bogus": 1})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown fields should be rejected, got %d", rec.Code)
	}
}

func uploadRequest(t *testing.T, token, fileName string, content []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", fileName)
	if err != nil {
		t.Fatalf("form file: %v", err)
	}
	fw.Write(content)
	mw.Close()
	r := httptest.NewRequest(http.MethodPost, "/resumes", &body)
	r.Header.Set("Content-Type", mw.FormDataContentType())
	r.Header.Set("Authorization", "Bearer "+token)
	return r
}

func TestResumeUploadAndRateLimit(t *testing.T) {
	e := newEnv(t)
	token := e.token(t, "u1")
	pdf := []byte("%PDF-1.4\n1 0 obj << >> endobj\ntrailer << >>\n%%EOF")

	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, uploadRequest(t, token, "resume.pdf", pdf))
	if rec.Code != http.StatusOK {
		t.Fatalf("upload: %d %s", rec.Code, rec.Body.String())
	}
	var res ingest.Result
	decode(t, rec, &res)
	if res.Path != "u1/resumes/1700000000000-resume.pdf" || res.Profile == nil || res.Profile.Name != "Ada Lovelace" {
		t.Fatalf("unexpected result %+v", res)
	}
	if res.Draft.JobType != model.JobMLEngineer || res.Draft.Status != model.StatusNew {
		t.Fatalf("unexpected draft %+v", res.Draft)
	}

	rec = httptest.NewRecorder()
	e.handler.ServeHTTP(rec, uploadRequest(t, token, "notes.txt", []byte("plain text, not a pdf")))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("non-PDF should be 400, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	e.handler.ServeHTTP(rec, uploadRequest(t, token, "resume.pdf", pdf))
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("third upload in the window should be limited, got %d", rec.Code)
	}
}

func TestResumeURLIsOwnerScoped(t *testing.T) {
	e := newEnv(t)
	e.objects.objects["u1/resumes/1-cv.pdf"] = []byte("%PDF-")
	rec := e.do(t, "u1", http.MethodGet, "/resumes/url?path=u1/resumes/1-cv.pdf", nil)
	var out map[string]string
	decode(t, rec, &out)
	if rec.Code != http.StatusOK || !strings.Contains(out["url"], "u1/resumes/1-cv.pdf") {
		t.Fatalf("resolve: %d %v", rec.Code, out)
	}
	if rec := e.do(t, "u2", http.MethodGet, "/resumes/url?path=u1/resumes/1-cv.pdf", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("foreign resolve should be 404, got %d", rec.Code)
	}
	if rec := e.do(t, "u1", http.MethodGet, "/resumes/url?path=u1/resumes/999-ghost.pdf", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("missing resolve should be 404, got %d", rec.Code)
	}
	if rec := e.do(t, "u1", http.MethodDelete, "/resumes?path=u1/resumes/1-cv.pdf", nil); rec.Code != http.StatusOK {
		t.Fatalf("delete: %d", rec.Code)
	}
}

func TestExportDownload(t *testing.T) {
	e := newEnv(t)
	e.do(t, "u1", http.MethodPost, "/candidates", map[string]any{"name": "Ada", "jobType": "designer", "status": "new"})

	rec := e.do(t, "u1", http.MethodGet, "/export", nil)
	if rec.Code != http.StatusOK || rec.Header().Get("Content-Type") != export.ContentType {
		t.Fatalf("export: %d %s", rec.Code, rec.Header().Get("Content-Type"))
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "candidates-") || !strings.HasSuffix(cd, `.xlsx"`) {
		t.Fatalf("unexpected disposition %q", cd)
	}
	if rec.Body.Len() == 0 {
		t.Fatalf("empty workbook")
	}

	rec = e.do(t, "u1", http.MethodPost, "/export", export.Filter{Status: "hired"})
	env := decode(t, rec, nil)
	if rec.Code != http.StatusNotFound || env.Message != "no candidates found matching the filter criteria" {
		t.Fatalf("filtered miss: %d %+v", rec.Code, env)
	}

	rec = e.do(t, "u1", http.MethodGet, "/export?jobType=designer", nil)
	if cd := rec.Header().Get("Content-Disposition"); rec.Code != http.StatusOK || !strings.Contains(cd, "candidates_filtered_export_") {
		t.Fatalf("filtered export: %d %q", rec.Code, cd)
	}
}

func TestSessionExchange(t *testing.T) {
	e := newEnv(t)
	rec := e.do(t, "u7", http.MethodPost, "/session", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("session: %d %s", rec.Code, rec.Body.String())
	}
	r := httptest.NewRequest(http.MethodGet, "/candidates", nil)
	for _, c := range rec.Result().Cookies() {
		r.AddCookie(c)
	}
	rec = httptest.NewRecorder()
	e.handler.ServeHTTP(rec, r)
	if rec.Code != http.StatusOK {
		t.Fatalf("cookie session should authenticate, got %d", rec.Code)
	}
	if rec := e.do(t, "", http.MethodPost, "/session", nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("session without token should be 401, got %d", rec.Code)
	}
}
