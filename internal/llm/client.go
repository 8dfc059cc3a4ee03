// Package llm turns resume text into a structured profile through an OpenAI
// compatible chat completions endpoint constrained by a strict JSON schema.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/dharsanguruparan/RecruitDesk/internal/apperr"
	"github.com/dharsanguruparan/RecruitDesk/internal/config"
	"github.com/dharsanguruparan/RecruitDesk/internal/model"
)

const (
	msgNotConfigured = "OpenAI API key not configured"
	msgFailed        = "failed to extract resume data"
)

// Client calls the completion API.
type Client struct {
	apiKey   string
	model    string
	baseURL  string
	maxChars int
	http     *http.Client
	schema   *gojsonschema.Schema
}

// NewClient builds a Client from configuration. It fails only if the
// extraction schema itself is malformed; a missing API key is reported per
// call so the rest of the service can run without one.
func NewClient(cfg *config.Config) (*Client, error) {
	schema, err := CompileSchema()
	if err != nil {
		return nil, err
	}
	return &Client{
		apiKey:   cfg.OpenAIAPIKey,
		model:    cfg.OpenAIModel,
		baseURL:  strings.TrimRight(cfg.OpenAIBaseURL, "/"),
		maxChars: cfg.ExtractionMaxChars,
		http:     &http.Client{Timeout: cfg.ExtractionTimeout},
		schema:   schema,
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type jsonSchemaFormat struct {
	Name   string         `json:"name"`
	Strict bool           `json:"strict"`
	Schema map[string]any `json:"schema"`
}

type responseFormat struct {
	Type       string           `json:"type"`
	JSONSchema jsonSchemaFormat `json:"json_schema"`
}

type chatRequest struct {
	Model          string         `json:"model"`
	Messages       []chatMessage  `json:"messages"`
	ResponseFormat responseFormat `json:"response_format"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content *string `json:"content"`
			Refusal *string `json:"refusal"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// ExtractProfile sends text to the model and decodes the structured reply.
func (c *Client) ExtractProfile(ctx context.Context, text string) (*model.ResumeProfile, error) {
	if c.apiKey == "" {
		return nil, apperr.New(apperr.CodeExtractionConfig, msgNotConfigured, nil)
	}
	reqBody := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt()},
			{Role: "user", Content: Truncate(text, c.maxChars)},
		},
		ResponseFormat: responseFormat{
			Type: "json_schema",
			JSONSchema: jsonSchemaFormat{
				Name:   SchemaName,
				Strict: true,
				Schema: ProfileSchema(),
			},
		},
	}
	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, apperr.New(apperr.CodeExtractionService, msgFailed, err)
	}
	content, err := c.complete(ctx, body)
	if err != nil {
		slog.Error("resume extraction failed", "error", err)
		return nil, apperr.New(apperr.CodeExtractionService, msgFailed, err)
	}
	if c.schema != nil {
		// Strict mode should make this impossible; a mismatch is logged, not
		// rejected.
		if err := ValidatePayload(c.schema, content); err != nil {
			slog.Warn("extraction payload does not match schema", "error", err)
		}
	}
	var profile model.ResumeProfile
	if err := json.Unmarshal([]byte(content), &profile); err != nil {
		return nil, apperr.New(apperr.CodeExtractionService, msgFailed, fmt.Errorf("decode profile: %w", err))
	}
	return &profile, nil
}

func (c *Client) complete(ctx context.Context, body []byte) (string, error) {
	resp, err := c.post(ctx, "/chat/completions", body)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("decode response (status %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode/100 != 2 {
		if parsed.Error != nil {
			return "", fmt.Errorf("completion api status %d: %s", resp.StatusCode, parsed.Error.Message)
		}
		return "", fmt.Errorf("completion api status %d", resp.StatusCode)
	}
	if len(parsed.Choices) == 0 {
		return "", errors.New("completion returned no choices")
	}
	msg := parsed.Choices[0].Message
	if msg.Refusal != nil && *msg.Refusal != "" {
		return "", fmt.Errorf("model refused: %s", *msg.Refusal)
	}
	if msg.Content == nil || strings.TrimSpace(*msg.Content) == "" {
		return "", errors.New("completion returned empty content")
	}
	return *msg.Content, nil
}

// post issues a single request. Timeouts and server errors are reported to
// the caller rather than retried.
func (c *Client) post(ctx context.Context, path string, body []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("completion request: %w", err)
	}
	return resp, nil
}

// Truncate keeps the first max characters of s.
func Truncate(s string, max int) string {
	if max <= 0 {
		return s
	}
	count := 0
	for i := range s {
		if count == max {
			return s[:i]
		}
		count++
	}
	return s
}
