package models

import (
	"fmt"
	"strings"
	"time"

	id "signalbox/pkg/domain"
	dErrors "signalbox/pkg/domain-errors"
)

// Severity is the staff-assigned triage level. Reporters never set or see it.
type Severity string

const (
	SeverityUnrated  Severity = "UNRATED"
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

// ParseSeverity validates a severity string from a trust boundary.
func ParseSeverity(raw string) (Severity, error) {
	switch s := Severity(raw); s {
	case SeverityUnrated, SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return s, nil
	default:
		return "", dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("unknown severity %q", raw))
	}
}

// minDescriptionLen rejects trivial and bot-generated report bodies.
const minDescriptionLen = 30

// Case is the aggregate root for one whistleblowing report.
//
// Invariants:
//   - TenantID is set at creation and immutable; every staff query is scoped
//     by it so cross-tenant access is structurally impossible
//   - CredentialHash is set exactly once at creation and never rotated
//   - CaseNumber is unique per tenant, CredentialHash unique globally
//   - Status moves only through the machine in status.go
//   - ReceivedAt is immutable; AcknowledgedAt, InvestigatedAt and ClosedAt
//     are each set exactly once, on the matching transition, never reset
//   - When IsAnonymous is true the reporter contact fields are empty
//
// The internal ID is never exposed to reporters; they hold only the access
// credential, and the case number alone retrieves nothing.
type Case struct {
	ID             id.CaseID   `json:"id"`
	TenantID       id.TenantID `json:"tenant_id"`
	CaseNumber     string      `json:"case_number"`
	CredentialHash string      `json:"-"`

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

	Status   Status   `json:"status"`
	Severity Severity `json:"severity"`

	ReceivedAt     time.Time  `json:"received_at"`
	AcknowledgedAt *time.Time `json:"acknowledged_at,omitempty"`
	InvestigatedAt *time.Time `json:"investigated_at,omitempty"`
	ClosedAt       *time.Time `json:"closed_at,omitempty"`
}

// Report is the validated submission content a new case is built from.
type Report struct {
	Category        string
	Title           string
	Description     string
	OccurredAt      *time.Time
	Location        string
	InvolvedPersons string
	Witnesses       string

	IsAnonymous   bool
	ReporterName  string
	ReporterEmail string
	ReporterPhone string
}

// Validate enforces the report content invariants.
func (r *Report) Validate() error {
	if strings.TrimSpace(r.Category) == "" {
		return dErrors.New(dErrors.CodeValidation, "category is required")
	}
	if strings.TrimSpace(r.Title) == "" {
		return dErrors.New(dErrors.CodeValidation, "title is required")
	}
	desc := strings.TrimSpace(r.Description)
	if desc == "" {
		return dErrors.New(dErrors.CodeValidation, "description is required")
	}
	if len(desc) < minDescriptionLen {
		return dErrors.New(dErrors.CodeValidation, "description is too short")
	}
	if r.IsAnonymous && (r.ReporterName != "" || r.ReporterEmail != "" || r.ReporterPhone != "") {
		return dErrors.New(dErrors.CodeValidation, "anonymous reports must not carry contact details")
	}
	return nil
}

// NewCase builds a case in its initial state from a validated report and an
// issued identity. The credential hash is fixed here and never changes again.
func NewCase(caseID id.CaseID, tenantID id.TenantID, caseNumber, credentialHash string, report Report, now time.Time) (*Case, error) {
	if err := report.Validate(); err != nil {
		return nil, err
	}
	if caseNumber == "" || credentialHash == "" {
		return nil, dErrors.New(dErrors.CodeInternal, "case identity is incomplete")
	}

	c := &Case{
		ID:              caseID,
		TenantID:        tenantID,
		CaseNumber:      caseNumber,
		CredentialHash:  credentialHash,
		Category:        strings.TrimSpace(report.Category),
		Title:           strings.TrimSpace(report.Title),
		Description:     strings.TrimSpace(report.Description),
		OccurredAt:      report.OccurredAt,
		Location:        strings.TrimSpace(report.Location),
		InvolvedPersons: strings.TrimSpace(report.InvolvedPersons),
		Witnesses:       strings.TrimSpace(report.Witnesses),
		IsAnonymous:     report.IsAnonymous,
		Status:          StatusReceived,
		Severity:        SeverityUnrated,
		ReceivedAt:      now,
	}
	if !report.IsAnonymous {
		c.ReporterName = strings.TrimSpace(report.ReporterName)
		c.ReporterEmail = strings.TrimSpace(report.ReporterEmail)
		c.ReporterPhone = strings.TrimSpace(report.ReporterPhone)
	}
	return c, nil
}

// CanTransitionTo checks the state machine without mutating the case.
// Returns an error carrying CodeInvalidTransition when the move is illegal.
func (c *Case) CanTransitionTo(target Status) error {
	if !c.Status.CanTransitionTo(target) {
		return dErrors.New(dErrors.CodeInvalidTransition,
			fmt.Sprintf("cannot transition from %s to %s", c.Status, target))
	}
	return nil
}

// ApplyTransition moves the case to target and stamps the matching lifecycle
// timestamp, each exactly once. Call CanTransitionTo first.
func (c *Case) ApplyTransition(target Status, now time.Time) {
	if c.Status == target {
		return
	}
	c.Status = target
	switch target {
	case StatusAcknowledged:
		if c.AcknowledgedAt == nil {
			c.AcknowledgedAt = &now
		}
	case StatusUnderInvestigation:
		if c.InvestigatedAt == nil {
			c.InvestigatedAt = &now
		}
	case StatusClosed, StatusDismissed:
		if c.ClosedAt == nil {
			c.ClosedAt = &now
		}
	}
}
