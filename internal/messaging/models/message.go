package models

import (
	"strings"
	"time"

	id "signalbox/pkg/domain"
	dErrors "signalbox/pkg/domain-errors"
)

// Sender identifies who authored a thread entry.
type Sender string

const (
	// SenderReporter is the credential-bearing reporter.
	SenderReporter Sender = "REPORTER"
	// SenderHandler is a tenant-authenticated staff member.
	SenderHandler Sender = "HANDLER"
	// SenderSystem marks machine-generated entries: status narration,
	// dismissal reasons.
	SenderSystem Sender = "SYSTEM"
)

// Viewer classifies who is reading a thread. Visibility filtering keys on
// this, never on transport details.
type Viewer string

const (
	// ViewerReporter reads through the access credential. Internal notes are
	// never part of this view.
	ViewerReporter Viewer = "REPORTER"
	// ViewerHandler reads through tenant-authenticated staff tooling and
	// sees the full thread.
	ViewerHandler Viewer = "HANDLER"
)

// Message is one append-only thread entry. Messages are never edited, never
// deleted, and never move between cases.
type Message struct {
	ID         id.MessageID `json:"id"`
	CaseID     id.CaseID    `json:"case_id"`
	Sender     Sender       `json:"sender"`
	Body       string       `json:"body"`
	IsInternal bool         `json:"is_internal"`
	CreatedAt  time.Time    `json:"created_at"`
}

// VisibleTo reports whether a viewer class may see this message.
func (m *Message) VisibleTo(viewer Viewer) bool {
	if viewer == ViewerHandler {
		return true
	}
	return !m.IsInternal
}

// NewMessage builds a validated thread entry.
func NewMessage(caseID id.CaseID, sender Sender, body string, isInternal bool, now time.Time) (*Message, error) {
	if caseID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInternal, "message requires a case")
	}
	if strings.TrimSpace(body) == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "message body is required")
	}
	switch sender {
	case SenderReporter, SenderHandler, SenderSystem:
	default:
		return nil, dErrors.New(dErrors.CodeInternal, "unknown message sender")
	}
	if sender == SenderReporter && isInternal {
		// A reporter cannot author notes hidden from themselves.
		return nil, dErrors.New(dErrors.CodeInternal, "reporter messages cannot be internal")
	}
	return &Message{
		ID:         id.NewMessageID(),
		CaseID:     caseID,
		Sender:     sender,
		Body:       strings.TrimSpace(body),
		IsInternal: isInternal,
		CreatedAt:  now,
	}, nil
}
