// Package events carries the notification contract of the reporting core.
//
// The core never sends email or SMS itself. On every successful status
// transition and on every new non-internal message it emits an Event for an
// external notification service to consume. Events are transport-agnostic;
// sinks fan them out (Kafka in production, memory in tests).
package events

import (
	"time"

	id "signalbox/pkg/domain"
)

// Kind classifies a notification event.
type Kind string

const (
	// KindCaseReceived is emitted once, when a case is created in its
	// initial status.
	KindCaseReceived Kind = "case_received"
	// KindStatusChanged is emitted on every successful status transition.
	KindStatusChanged Kind = "status_changed"
	// KindMessageAppended is emitted for every new non-internal message.
	// Internal notes never produce events.
	KindMessageAppended Kind = "message_appended"
)

// Event is the notification payload. It deliberately carries no report
// content and no credential material: a summary plus enough identity for the
// consumer to look the case up through staff tooling.
type Event struct {
	Kind       Kind        `json:"kind"`
	TenantID   id.TenantID `json:"tenant_id"`
	CaseID     id.CaseID   `json:"case_id"`
	CaseNumber string      `json:"case_number"`
	Status     string      `json:"status,omitempty"`
	Sender     string      `json:"sender,omitempty"`
	Summary    string      `json:"summary"`
	OccurredAt time.Time   `json:"occurred_at"`
}
