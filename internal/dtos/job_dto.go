package dtos

import "strings"

// JobParams is the subset of Job fields a client may send. Nil fields are
// left untouched on update.
type JobParams struct {
	Title       *string `json:"title" form:"title"`
	Company     *string `json:"company" form:"company"`
	Location    *string `json:"location" form:"location"`
	Description *string `json:"description" form:"description"`
	Status      *string `json:"status" form:"status"`
	AppliedOn   *string `json:"applied_on" form:"applied_on"`
}

// JobForm is the merged, normalized state of a job that gets validated
// before anything is written.
type JobForm struct {
	Title       string `json:"title" validate:"notblank,max=255"`
	Company     string `json:"company" validate:"notblank,max=255"`
	Location    string `json:"location" validate:"notblank,max=255"`
	Description string `json:"description"`
	Status      string `json:"status" validate:"oneof=applied interview offer rejected pending other"`
	AppliedOn   string `json:"applied_on" validate:"omitempty,datetime=2006-01-02"`
}

// Apply copies every field present in p onto f.
func (p JobParams) Apply(f *JobForm) {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&f.Title, p.Title)
	set(&f.Company, p.Company)
	set(&f.Location, p.Location)
	set(&f.Description, p.Description)
	set(&f.Status, p.Status)
	set(&f.AppliedOn, p.AppliedOn)
}

// Normalize trims every field and lowercases the status; a blank status
// becomes "applied".
func (f *JobForm) Normalize() {
	f.Title = strings.TrimSpace(f.Title)
	f.Company = strings.TrimSpace(f.Company)
	f.Location = strings.TrimSpace(f.Location)
	f.Description = strings.TrimSpace(f.Description)
	f.AppliedOn = strings.TrimSpace(f.AppliedOn)
	f.Status = strings.ToLower(strings.TrimSpace(f.Status))
	if f.Status == "" {
		f.Status = "applied"
	}
}

type JobExtractionRequest struct {
	RawHTML string `json:"raw_html" form:"raw_html" validate:"notblank"`
	URL     string `json:"url" form:"url"`
}

// JobDraft is what the LLM pulls out of a pasted posting. Nothing is saved.
type JobDraft struct {
	Title       string `json:"title"`
	Company     string `json:"company"`
	Location    string `json:"location"`
	Description string `json:"description"`
	URL         string `json:"url,omitempty"`
}
