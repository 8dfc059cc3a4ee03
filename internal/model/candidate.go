// Package model contains the struct definitions shared across packages.
package model

import (
	"strings"
	"time"
)

// JobType classifies the role a candidate is tracked for. Declaring it as a
// named string keeps the closed set type safe while staying trivial to store.
type JobType string

const (
	JobSoftwareEngineer   JobType = "software_engineer"
	JobDataScientist      JobType = "data_scientist"
	JobProductManager     JobType = "product_manager"
	JobDesigner           JobType = "designer"
	JobDevOps             JobType = "devops"
	JobQAEngineer         JobType = "qa_engineer"
	JobFrontendDeveloper  JobType = "frontend_developer"
	JobBackendDeveloper   JobType = "backend_developer"
	JobFullstackDeveloper JobType = "fullstack_developer"
	JobMobileDeveloper    JobType = "mobile_developer"
	JobMLEngineer         JobType = "ml_engineer"
	JobOther              JobType = "other"
)

// JobTypes lists every JobType in declaration order.
var JobTypes = []JobType{
	JobSoftwareEngineer,
	JobDataScientist,
	JobProductManager,
	JobDesigner,
	JobDevOps,
	JobQAEngineer,
	JobFrontendDeveloper,
	JobBackendDeveloper,
	JobFullstackDeveloper,
	JobMobileDeveloper,
	JobMLEngineer,
	JobOther,
}

// Valid reports whether j belongs to the closed set.
func (j JobType) Valid() bool {
	for _, v := range JobTypes {
		if v == j {
			return true
		}
	}
	return false
}

// Status tracks where a candidate sits in the hiring funnel.
type Status string

const (
	StatusNew           Status = "new"
	StatusContacted     Status = "contacted"
	StatusInterviewing  Status = "interviewing"
	StatusOffered       Status = "offered"
	StatusHired         Status = "hired"
	StatusRejected      Status = "rejected"
	StatusOnHold        Status = "on_hold"
	StatusNotInterested Status = "not_interested"
)

// Statuses lists every Status in declaration order.
var Statuses = []Status{
	StatusNew,
	StatusContacted,
	StatusInterviewing,
	StatusOffered,
	StatusHired,
	StatusRejected,
	StatusOnHold,
	StatusNotInterested,
}

// Valid reports whether s belongs to the closed set.
func (s Status) Valid() bool {
	for _, v := range Statuses {
		if v == s {
			return true
		}
	}
	return false
}

// Candidate is a row in the candidates table. Optional columns are pointers so
// that a NULL survives the round trip to JSON as null.
type Candidate struct {
	ID             string    `json:"id"`
	UserID         string    `json:"userId"`
	Name           string    `json:"name"`
	Email          *string   `json:"email"`
	Phone          *string   `json:"phone"`
	Wechat         *string   `json:"wechat"`
	JobType        JobType   `json:"jobType"`
	CurrentCompany *string   `json:"currentCompany"`
	School         *string   `json:"school"`
	LinkedinURL    *string   `json:"linkedinUrl"`
	GoogleScholar  *string   `json:"googleScholar"`
	Status         Status    `json:"status"`
	ResumeURL      *string   `json:"resumeUrl"`
	ResumeFilename *string   `json:"resumeFilename"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// CandidateInput carries the fields a caller may set when creating a candidate.
type CandidateInput struct {
	Name           string  `json:"name" validate:"required,max=200"`
	Email          *string `json:"email" validate:"omitempty,email"`
	Phone          *string `json:"phone" validate:"omitempty,max=100"`
	Wechat         *string `json:"wechat" validate:"omitempty,max=100"`
	JobType        JobType `json:"jobType" validate:"required,jobtype"`
	CurrentCompany *string `json:"currentCompany" validate:"omitempty,max=200"`
	School         *string `json:"school" validate:"omitempty,max=200"`
	LinkedinURL    *string `json:"linkedinUrl" validate:"omitempty,max=500"`
	GoogleScholar  *string `json:"googleScholar" validate:"omitempty,max=500"`
	Status         Status  `json:"status" validate:"required,candidatestatus"`
	ResumeURL      *string `json:"resumeUrl"`
	ResumeFilename *string `json:"resumeFilename"`
}

// Normalize trims strings, drops blank optionals and defaults the status.
func (in *CandidateInput) Normalize() {
	in.Name = strings.TrimSpace(in.Name)
	for _, field := range in.optionals() {
		*field = blankToNil(*field)
	}
	if in.Status == "" {
		in.Status = StatusNew
	}
}

func (in *CandidateInput) optionals() []**string {
	return []**string{
		&in.Email, &in.Phone, &in.Wechat, &in.CurrentCompany, &in.School,
		&in.LinkedinURL, &in.GoogleScholar, &in.ResumeURL, &in.ResumeFilename,
	}
}

// Candidate materialises the input as a new record owned by userID. Identity
// and timestamps are assigned by the store.
func (in CandidateInput) Candidate(userID string) *Candidate {
	return &Candidate{
		UserID:         userID,
		Name:           in.Name,
		Email:          in.Email,
		Phone:          in.Phone,
		Wechat:         in.Wechat,
		JobType:        in.JobType,
		CurrentCompany: in.CurrentCompany,
		School:         in.School,
		LinkedinURL:    in.LinkedinURL,
		GoogleScholar:  in.GoogleScholar,
		Status:         in.Status,
		ResumeURL:      in.ResumeURL,
		ResumeFilename: in.ResumeFilename,
	}
}

// CandidatePatch is a partial update. A nil field is left untouched; an empty
// string on an optional field clears it.
type CandidatePatch struct {
	Name           *string  `json:"name"`
	Email          *string  `json:"email"`
	Phone          *string  `json:"phone"`
	Wechat         *string  `json:"wechat"`
	JobType        *JobType `json:"jobType"`
	CurrentCompany *string  `json:"currentCompany"`
	School         *string  `json:"school"`
	LinkedinURL    *string  `json:"linkedinUrl"`
	GoogleScholar  *string  `json:"googleScholar"`
	Status         *Status  `json:"status"`
	ResumeURL      *string  `json:"resumeUrl"`
	ResumeFilename *string  `json:"resumeFilename"`
}

// Empty reports whether the patch changes nothing.
func (p CandidatePatch) Empty() bool {
	return p.Name == nil && p.JobType == nil && p.Status == nil && len(p.OptionalFields()) == 0
}

// OptionalField pairs a nullable column with its patched value. Value is nil
// when the column should be cleared.
type OptionalField struct {
	Column string
	Value  *string
}

// OptionalFields returns the nullable columns present in the patch, in column
// order.
func (p CandidatePatch) OptionalFields() []OptionalField {
	candidates := []struct {
		column string
		value  *string
	}{
		{"email", p.Email},
		{"phone", p.Phone},
		{"wechat", p.Wechat},
		{"current_company", p.CurrentCompany},
		{"school", p.School},
		{"linkedin_url", p.LinkedinURL},
		{"google_scholar", p.GoogleScholar},
		{"resume_url", p.ResumeURL},
		{"resume_filename", p.ResumeFilename},
	}
	var out []OptionalField
	for _, c := range candidates {
		if c.value == nil {
			continue
		}
		out = append(out, OptionalField{Column: c.column, Value: blankToNil(c.value)})
	}
	return out
}

// Apply writes the patch onto c and refreshes UpdatedAt.
func (p CandidatePatch) Apply(c *Candidate, now time.Time) {
	if p.Name != nil {
		c.Name = strings.TrimSpace(*p.Name)
	}
	if p.JobType != nil {
		c.JobType = *p.JobType
	}
	if p.Status != nil {
		c.Status = *p.Status
	}
	for _, f := range p.OptionalFields() {
		switch f.Column {
		case "email":
			c.Email = f.Value
		case "phone":
			c.Phone = f.Value
		case "wechat":
			c.Wechat = f.Value
		case "current_company":
			c.CurrentCompany = f.Value
		case "school":
			c.School = f.Value
		case "linkedin_url":
			c.LinkedinURL = f.Value
		case "google_scholar":
			c.GoogleScholar = f.Value
		case "resume_url":
			c.ResumeURL = f.Value
		case "resume_filename":
			c.ResumeFilename = f.Value
		}
	}
	c.UpdatedAt = now
}

func blankToNil(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// StringValue dereferences s, returning "" for nil.
func StringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
