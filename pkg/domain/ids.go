// Package domain defines the typed identifiers shared across the reporting core.
//
// Every ID is a distinct type over uuid.UUID so the compiler rejects
// cross-entity assignment. A lookup scoped by the wrong tenant simply cannot
// be written by accident: store signatures demand a TenantID, not a string.
package domain

import (
	"github.com/google/uuid"

	dErrors "signalbox/pkg/domain-errors"
)

type (
	// TenantID identifies the organization that owns a case.
	TenantID uuid.UUID
	// CaseID is the internal, never-exposed identity of a case.
	CaseID uuid.UUID
	// MessageID identifies a single thread entry.
	MessageID uuid.UUID
	// ActorID identifies a staff member driving a transition or authoring a message.
	ActorID uuid.UUID
)

func (id TenantID) IsNil() bool  { return uuid.UUID(id) == uuid.Nil }
func (id CaseID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }
func (id MessageID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id ActorID) IsNil() bool   { return uuid.UUID(id) == uuid.Nil }

func (id TenantID) String() string  { return uuid.UUID(id).String() }
func (id CaseID) String() string    { return uuid.UUID(id).String() }
func (id MessageID) String() string { return uuid.UUID(id).String() }
func (id ActorID) String() string   { return uuid.UUID(id).String() }

// The ID types are distinct from uuid.UUID, so they carry their own text
// marshalling; without it encoding/json would emit raw byte arrays.

func (id TenantID) MarshalText() ([]byte, error)  { return []byte(id.String()), nil }
func (id CaseID) MarshalText() ([]byte, error)    { return []byte(id.String()), nil }
func (id MessageID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }
func (id ActorID) MarshalText() ([]byte, error)   { return []byte(id.String()), nil }

func (id *TenantID) UnmarshalText(b []byte) error {
	parsed, err := ParseTenantID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id *CaseID) UnmarshalText(b []byte) error {
	parsed, err := ParseCaseID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id *MessageID) UnmarshalText(b []byte) error {
	parsed, err := ParseMessageID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id *ActorID) UnmarshalText(b []byte) error {
	parsed, err := ParseActorID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// NewTenantID returns a fresh random TenantID.
func NewTenantID() TenantID { return TenantID(uuid.New()) }

// NewCaseID returns a fresh random CaseID.
func NewCaseID() CaseID { return CaseID(uuid.New()) }

// NewMessageID returns a fresh random MessageID.
func NewMessageID() MessageID { return MessageID(uuid.New()) }

// NewActorID returns a fresh random ActorID.
func NewActorID() ActorID { return ActorID(uuid.New()) }

// parseUUID enforces the shared parsing invariant: IDs must be valid,
// non-empty, non-nil UUIDs. All exported Parse helpers funnel through here so
// trust-boundary behavior stays identical for every ID type.
func parseUUID(raw string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id cannot be empty")
	}
	if len(raw) > 64 {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id is too long")
	}
	parsed, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id is not a valid UUID")
	}
	if parsed == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id cannot be the nil UUID")
	}
	return parsed, nil
}

// ParseTenantID parses and validates a tenant ID from its string form.
func ParseTenantID(raw string) (TenantID, error) {
	parsed, err := parseUUID(raw)
	if err != nil {
		return TenantID{}, err
	}
	return TenantID(parsed), nil
}

// ParseCaseID parses and validates a case ID from its string form.
func ParseCaseID(raw string) (CaseID, error) {
	parsed, err := parseUUID(raw)
	if err != nil {
		return CaseID{}, err
	}
	return CaseID(parsed), nil
}

// ParseMessageID parses and validates a message ID from its string form.
func ParseMessageID(raw string) (MessageID, error) {
	parsed, err := parseUUID(raw)
	if err != nil {
		return MessageID{}, err
	}
	return MessageID(parsed), nil
}

// ParseActorID parses and validates an actor ID from its string form.
func ParseActorID(raw string) (ActorID, error) {
	parsed, err := parseUUID(raw)
	if err != nil {
		return ActorID{}, err
	}
	return ActorID(parsed), nil
}
