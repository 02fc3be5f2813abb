package handler

import (
	"time"

	"signalbox/internal/reportcase/models"
)

// SubmitRequest is the public report submission payload. The honeypot field
// ships to browsers hidden by CSS; humans leave it empty.
type SubmitRequest struct {
	Category        string     `json:"category"`
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	OccurredAt      *time.Time `json:"occurred_at,omitempty"`
	Location        string     `json:"location,omitempty"`
	InvolvedPersons string     `json:"involved_persons,omitempty"`
	Witnesses       string     `json:"witnesses,omitempty"`

	IsAnonymous   bool   `json:"is_anonymous"`
	ReporterName  string `json:"reporter_name,omitempty"`
	ReporterEmail string `json:"reporter_email,omitempty"`
	ReporterPhone string `json:"reporter_phone,omitempty"`

	Honeypot  string `json:"honeypot"`
	ElapsedMs int64  `json:"elapsed_ms"`
}

// Report converts the payload into the domain submission.
func (r SubmitRequest) Report() models.Report {
	return models.Report{
		Category:        r.Category,
		Title:           r.Title,
		Description:     r.Description,
		OccurredAt:      r.OccurredAt,
		Location:        r.Location,
		InvolvedPersons: r.InvolvedPersons,
		Witnesses:       r.Witnesses,
		IsAnonymous:     r.IsAnonymous,
		ReporterName:    r.ReporterName,
		ReporterEmail:   r.ReporterEmail,
		ReporterPhone:   r.ReporterPhone,
	}
}

// SubmitResponse hands the reporter their case number and, exactly once, the
// access credential.
type SubmitResponse struct {
	CaseNumber string `json:"case_number"`
	Credential string `json:"credential"`
	Status     string `json:"status"`
}

// TrackRequest carries the access credential. Tracking is a POST so the
// credential stays out of URLs, access logs and browser history.
type TrackRequest struct {
	Credential string `json:"credential"`
}

// ReplyRequest appends a reporter message to the case behind a credential.
type ReplyRequest struct {
	Credential string `json:"credential"`
	Body       string `json:"body"`
}
