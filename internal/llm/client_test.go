package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dharsanguruparan/RecruitDesk/internal/apperr"
	"github.com/dharsanguruparan/RecruitDesk/internal/model"
)

const profileFixture = `{
	"name": "Ada Lovelace",
	"email": "ada@example.com",
	"phone": null,
	"wechat": null,
	"currentCompany": "Analytical Engines Ltd",
	"linkedinUrl": null,
	"googleScholar": null,
	"school": "University of London",
	"jobType": "data_scientist",
	"experience": [{"company": "Analytical Engines Ltd", "position": "Analyst", "startDate": "1842", "endDate": "1843", "description": "Notes on the engine"}],
	"education": null,
	"skills": ["mathematics", "programming"]
}`

func newTestClient(baseURL string) *Client {
	return &Client{
		apiKey:   "sk-test",
		model:    "gpt-4o-2024-11-20",
		baseURL:  baseURL,
		maxChars: 15000,
		http:     &http.Client{Timeout: 5 * time.Second},
	}
}

func completion(content string) string {
	body, _ := json.Marshal(map[string]any{
		"choices": []map[string]any{{
			"message":       map[string]any{"role": "assistant", "content": content},
			"finish_reason": "stop",
		}},
	})
	return string(body)
}

func TestExtractProfileRequiresAPIKey(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer srv.Close()
	c := newTestClient(srv.URL)
	c.apiKey = ""
	_, err := c.ExtractProfile(context.Background(), "resume")
	if !apperr.Is(err, apperr.CodeExtractionConfig) {
		t.Fatalf("expected config error, got %v", err)
	}
	if apperr.Message(err) != "OpenAI API key not configured" {
		t.Fatalf("unexpected message %q", apperr.Message(err))
	}
	if calls != 0 {
		t.Fatalf("no request should be sent without a key")
	}
}

func TestExtractProfileSendsStrictSchemaAndTruncates(t *testing.T) {
	longText := strings.Repeat("é", 20000)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("unexpected auth header %q", got)
		}
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.ResponseFormat.Type != "json_schema" || !req.ResponseFormat.JSONSchema.Strict {
			t.Errorf("response format not strict json_schema: %+v", req.ResponseFormat)
		}
		if req.ResponseFormat.JSONSchema.Name != "extracted_resume_data" {
			t.Errorf("unexpected schema name %q", req.ResponseFormat.JSONSchema.Name)
		}
		if req.ResponseFormat.JSONSchema.Schema["additionalProperties"] != false {
			t.Errorf("schema must forbid additional properties")
		}
		if len(req.Messages) != 2 || req.Messages[0].Role != "system" {
			t.Errorf("unexpected messages %+v", req.Messages)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if !strings.Contains(req.Messages[0].Content, "software_engineer") {
			t.Errorf("system prompt should list job types")
		}
		if n := len([]rune(req.Messages[1].Content)); n != 15000 {
			t.Errorf("user text should be truncated to 15000 characters, got %d", n)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(completion(profileFixture)))
	}))
	defer srv.Close()

	profile, err := newTestClient(srv.URL).ExtractProfile(context.Background(), longText)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if profile.Name != "Ada Lovelace" || profile.JobType != model.JobDataScientist {
		t.Fatalf("unexpected profile %+v", profile)
	}
	if profile.Phone != nil || profile.Education != nil {
		t.Fatalf("null fields should decode to nil")
	}
	if model.StringValue(profile.Email) != "ada@example.com" {
		t.Fatalf("unexpected email %v", profile.Email)
	}
	if len(profile.Experience) != 1 || profile.Experience[0].Position != "Analyst" {
		t.Fatalf("unexpected experience %+v", profile.Experience)
	}
}

func TestExtractProfileTimeoutIsSingleRequest(t *testing.T) {
	var calls int32
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		select {
		case <-release:
		case <-time.After(2 * time.Second):
		}
		_, _ = w.Write([]byte(completion(profileFixture)))
	}))
	defer srv.Close()
	defer close(release)

	c := newTestClient(srv.URL)
	c.http = &http.Client{Timeout: 50 * time.Millisecond}
	_, err := c.ExtractProfile(context.Background(), "resume")
	if !apperr.Is(err, apperr.CodeExtractionService) {
		t.Fatalf("expected service error, got %v", err)
	}
	if apperr.Message(err) != "failed to extract resume data" {
		t.Fatalf("unexpected message %q", apperr.Message(err))
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Fatalf("expected a single request, got %d", n)
	}
}

func TestExtractProfileServerErrorIsSingleRequest(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"overloaded","type":"server_error"}}`))
	}))
	defer srv.Close()
	_, err := newTestClient(srv.URL).ExtractProfile(context.Background(), "resume")
	if !apperr.Is(err, apperr.CodeExtractionService) {
		t.Fatalf("expected service error, got %v", err)
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Fatalf("expected a single request, got %d", n)
	}
}

func TestExtractProfileClientError(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"bad key","type":"invalid_request_error"}}`))
	}))
	defer srv.Close()
	_, err := newTestClient(srv.URL).ExtractProfile(context.Background(), "resume")
	if !apperr.Is(err, apperr.CodeExtractionService) {
		t.Fatalf("expected service error, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected a single attempt, got %d", calls)
	}
}

func TestExtractProfileBadContent(t *testing.T) {
	cases := map[string]string{
		"not json": completion("this is not json"),
		"empty":    completion(""),
		"refusal":  `{"choices":[{"message":{"content":null,"refusal":"I can't help with that"}}]}`,
		"none":     `{"choices":[]}`,
	}
	for name, body := range cases {
		body := body
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(body))
			}))
			defer srv.Close()
			_, err := newTestClient(srv.URL).ExtractProfile(context.Background(), "resume")
			if !apperr.Is(err, apperr.CodeExtractionService) {
				t.Fatalf("expected service error, got %v", err)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("héllo", 2); got != "hé" {
		t.Fatalf("got %q", got)
	}
	if got := Truncate("abc", 10); got != "abc" {
		t.Fatalf("got %q", got)
	}
	if got := Truncate("abc", 0); got != "abc" {
		t.Fatalf("zero limit should not truncate, got %q", got)
	}
}

func TestProfileSchemaValidation(t *testing.T) {
	schema, err := CompileSchema()
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if err := ValidatePayload(schema, profileFixture); err != nil {
		t.Fatalf("fixture should validate: %v", err)
	}
	extra := strings.Replace(profileFixture, `"skills"`, `"hobbies": null, "skills"`, 1)
	if err := ValidatePayload(schema, extra); err == nil {
		t.Fatalf("additional properties should be rejected")
	}
	badJob := strings.Replace(profileFixture, "data_scientist", "astronaut", 1)
	if err := ValidatePayload(schema, badJob); err == nil {
		t.Fatalf("unknown job type should be rejected")
	}
	missing := strings.Replace(profileFixture, `"wechat": null,`, "", 1)
	if err := ValidatePayload(schema, missing); err == nil {
		t.Fatalf("every property is required in strict mode")
	}
}

func TestProfileSchemaRequiresEveryProperty(t *testing.T) {
	schema := ProfileSchema()
	props := schema["properties"].(map[string]any)
	required := schema["required"].([]string)
	if len(props) != len(required) {
		t.Fatalf("required (%d) must list every property (%d)", len(required), len(props))
	}
	for _, name := range required {
		if _, ok := props[name]; !ok {
			t.Fatalf("required field %s has no property", name)
		}
	}
}
