package model

// WorkExperience is one employment entry pulled out of a resume.
type WorkExperience struct {
	Company     string `json:"company"`
	Position    string `json:"position"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
	Description string `json:"description"`
}

// ResumeProfile is the structured view of a resume returned by the AI
// extractor. It is transient: only Draft output is ever persisted.
type ResumeProfile struct {
	Name           string           `json:"name"`
	Email          *string          `json:"email"`
	Phone          *string          `json:"phone"`
	Wechat         *string          `json:"wechat"`
	CurrentCompany *string          `json:"currentCompany"`
	LinkedinURL    *string          `json:"linkedinUrl"`
	GoogleScholar  *string          `json:"googleScholar"`
	School         *string          `json:"school"`
	JobType        JobType          `json:"jobType"`
	Experience     []WorkExperience `json:"experience"`
	Education      []string         `json:"education"`
	Skills         []string         `json:"skills"`
}

// Draft pre-fills a candidate form from the profile. resumePath is the storage
// path of the uploaded file, not a signed URL, so the record never holds an
// expiring link.
func (p ResumeProfile) Draft(resumePath, fileName string) CandidateInput {
	jobType := p.JobType
	if !jobType.Valid() {
		jobType = JobOther
	}
	in := CandidateInput{
		Name:           p.Name,
		Email:          p.Email,
		Phone:          p.Phone,
		Wechat:         p.Wechat,
		JobType:        jobType,
		CurrentCompany: p.CurrentCompany,
		School:         p.School,
		LinkedinURL:    p.LinkedinURL,
		GoogleScholar:  p.GoogleScholar,
		Status:         StatusNew,
		ResumeURL:      &resumePath,
		ResumeFilename: &fileName,
	}
	in.Normalize()
	return in
}
