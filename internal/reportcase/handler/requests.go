package handler

// TransitionRequest moves a case to a new status. Reason is required when the
// target status is DISMISSED.
type TransitionRequest struct {
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
}

// MessageRequest appends a staff message to the case thread.
type MessageRequest struct {
	Body       string `json:"body"`
	IsInternal bool   `json:"is_internal"`
}

// SeverityRequest sets the staff triage level.
type SeverityRequest struct {
	Severity string `json:"severity"`
}
