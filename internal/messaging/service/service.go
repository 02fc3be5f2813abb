// Package service mediates the case thread: appends are validated here,
// reads are visibility-filtered here. No other code path may hand messages
// to a viewer.
package service

import (
	"context"
	"log/slog"

	"signalbox/internal/messaging/models"
	id "signalbox/pkg/domain"
	dErrors "signalbox/pkg/domain-errors"
	"signalbox/pkg/requestcontext"
)

// MessageStore is the persistence the service needs. Append-only: there is
// deliberately no update or delete.
type MessageStore interface {
	Append(ctx context.Context, m *models.Message) error
	ListByCase(ctx context.Context, caseID id.CaseID) ([]*models.Message, error)
}

// Service orchestrates thread appends and filtered reads.
type Service struct {
	store  MessageStore
	logger *slog.Logger
}

// New creates the messaging service.
func New(store MessageStore, logger *slog.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// Append validates and persists one thread entry. Appending never touches
// case status; any status implication is a separate, explicit call into the
// state machine.
func (s *Service) Append(ctx context.Context, caseID id.CaseID, sender models.Sender, body string, isInternal bool) (*models.Message, error) {
	m, err := models.NewMessage(caseID, sender, body, isInternal, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	if err := s.store.Append(ctx, m); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to append message")
	}
	return m, nil
}

// ListForViewer returns the case thread a viewer class is allowed to see,
// ordered by creation time ascending. Reporter views never contain internal
// notes, whatever the sender.
func (s *Service) ListForViewer(ctx context.Context, caseID id.CaseID, viewer models.Viewer) ([]*models.Message, error) {
	all, err := s.store.ListByCase(ctx, caseID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list messages")
	}

	out := make([]*models.Message, 0, len(all))
	for _, m := range all {
		if m.VisibleTo(viewer) {
			out = append(out, m)
		}
	}
	return out, nil
}
