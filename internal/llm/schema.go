package llm

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/dharsanguruparan/RecruitDesk/internal/model"
)

// SchemaName is the name the completion API reports the schema under.
const SchemaName = "extracted_resume_data"

func nullableString() map[string]any {
	return map[string]any{"type": []string{"string", "null"}}
}

func nullableStringArray() map[string]any {
	return map[string]any{
		"type":  []string{"array", "null"},
		"items": map[string]any{"type": "string"},
	}
}

// ProfileSchema is the strict JSON schema sent with every extraction request.
// Strict mode requires every property to be listed as required and forbids
// extra keys, so optional values are expressed as nullable types instead.
func ProfileSchema() map[string]any {
	jobTypes := make([]string, 0, len(model.JobTypes))
	for _, j := range model.JobTypes {
		jobTypes = append(jobTypes, string(j))
	}
	experience := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []string{"company", "position", "startDate", "endDate", "description"},
		"properties": map[string]any{
			"company":     map[string]any{"type": "string"},
			"position":    map[string]any{"type": "string"},
			"startDate":   map[string]any{"type": "string"},
			"endDate":     map[string]any{"type": "string"},
			"description": map[string]any{"type": "string"},
		},
	}
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"required": []string{
			"name", "email", "phone", "wechat", "currentCompany", "linkedinUrl",
			"googleScholar", "school", "jobType", "experience", "education", "skills",
		},
		"properties": map[string]any{
			"name":           map[string]any{"type": "string"},
			"email":          nullableString(),
			"phone":          nullableString(),
			"wechat":         nullableString(),
			"currentCompany": nullableString(),
			"linkedinUrl":    nullableString(),
			"googleScholar":  nullableString(),
			"school":         nullableString(),
			"jobType":        map[string]any{"type": "string", "enum": jobTypes},
			"experience": map[string]any{
				"type":  []string{"array", "null"},
				"items": experience,
			},
			"education": nullableStringArray(),
			"skills":    nullableStringArray(),
		},
	}
}

// CompileSchema checks that ProfileSchema is a well formed JSON schema.
func CompileSchema() (*gojsonschema.Schema, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(ProfileSchema()))
	if err != nil {
		return nil, fmt.Errorf("compile extraction schema: %w", err)
	}
	return schema, nil
}

// ValidatePayload checks a raw model response against the schema.
func ValidatePayload(schema *gojsonschema.Schema, payload string) error {
	result, err := schema.Validate(gojsonschema.NewStringLoader(payload))
	if err != nil {
		return fmt.Errorf("validate payload: %w", err)
	}
	if result.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("payload does not match schema: %s", strings.Join(msgs, "; "))
}

func systemPrompt() string {
	jobTypes := make([]string, 0, len(model.JobTypes))
	for _, j := range model.JobTypes {
		jobTypes = append(jobTypes, string(j))
	}
	return `You are an expert resume parser assistant. Extract the following information from the provided resume text:

- Full name
- Email address
- Phone number
- WeChat ID (if available)
- Current company or most recent employer
- LinkedIn URL (if available)
- Google Scholar URL (if available)
- Educational institution (most recent)
- Most appropriate job type from this list: ` + strings.Join(jobTypes, ", ") + `
- Work experience (as an array with company, position, dates, and description)
- Education history (as an array of brief descriptions)
- Technical and professional skills (as an array)

If any field is not found in the resume, return null for that field.
For job type, make your best guess based on the resume content, defaulting to software_engineer if unclear.
For arrays, limit to the most relevant 3-5 items.`
}
