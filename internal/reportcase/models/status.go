package models

import (
	"fmt"

	dErrors "signalbox/pkg/domain-errors"
)

// Status is a case lifecycle state.
//
// The lifecycle is monotonic:
//
//	RECEIVED → ACKNOWLEDGED → UNDER_INVESTIGATION → ACTION_TAKEN → RESOLVED → CLOSED
//
// with DISMISSED reachable from any non-terminal state. No step may be
// skipped or reversed; re-entering the current state is a no-op so staff
// retries stay idempotent.
type Status string

const (
	StatusReceived           Status = "RECEIVED"
	StatusAcknowledged       Status = "ACKNOWLEDGED"
	StatusUnderInvestigation Status = "UNDER_INVESTIGATION"
	StatusActionTaken        Status = "ACTION_TAKEN"
	StatusResolved           Status = "RESOLVED"
	StatusClosed             Status = "CLOSED"
	StatusDismissed          Status = "DISMISSED"
)

// forwardOrder maps each non-terminal state to its only legal successor.
var forwardOrder = map[Status]Status{
	StatusReceived:           StatusAcknowledged,
	StatusAcknowledged:       StatusUnderInvestigation,
	StatusUnderInvestigation: StatusActionTaken,
	StatusActionTaken:        StatusResolved,
	StatusResolved:           StatusClosed,
}

// ParseStatus validates a status string from a trust boundary.
func ParseStatus(raw string) (Status, error) {
	switch s := Status(raw); s {
	case StatusReceived, StatusAcknowledged, StatusUnderInvestigation,
		StatusActionTaken, StatusResolved, StatusClosed, StatusDismissed:
		return s, nil
	default:
		return "", dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("unknown status %q", raw))
	}
}

// IsTerminal reports whether no further transition may leave this state.
func (s Status) IsTerminal() bool {
	return s == StatusClosed || s == StatusDismissed
}

// CanTransitionTo reports whether the move from s to target is legal.
// A same-state "transition" is legal (callers treat it as a no-op).
func (s Status) CanTransitionTo(target Status) bool {
	if s == target {
		return true
	}
	if s.IsTerminal() {
		return false
	}
	if target == StatusDismissed {
		return true
	}
	return forwardOrder[s] == target
}
