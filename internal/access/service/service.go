// Package service resolves reporter access. The only key it accepts is the
// access credential handed out at submission; internal case IDs, tenant IDs
// and case numbers resolve nothing here.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	msgmodels "signalbox/internal/messaging/models"
	"signalbox/internal/platform/metrics"
	"signalbox/internal/reportcase/credential"
	"signalbox/internal/reportcase/models"
	id "signalbox/pkg/domain"
	dErrors "signalbox/pkg/domain-errors"
	"signalbox/pkg/events"
	"signalbox/pkg/platform/sentinel"
)

// CaseLookup is the single store capability the resolver needs.
type CaseLookup interface {
	FindByCredentialHash(ctx context.Context, hash string) (*models.Case, error)
}

// Messages is the slice of the messaging service the resolver needs.
type Messages interface {
	Append(ctx context.Context, caseID id.CaseID, sender msgmodels.Sender, body string, isInternal bool) (*msgmodels.Message, error)
	ListForViewer(ctx context.Context, caseID id.CaseID, viewer msgmodels.Viewer) ([]*msgmodels.Message, error)
}

// CaseView is the reporter-facing projection of a case. It carries no
// internal IDs, no severity, no staff data and no internal messages.
type CaseView struct {
	CaseNumber string               `json:"case_number"`
	Title      string               `json:"title"`
	Status     models.Status        `json:"status"`
	ReceivedAt time.Time            `json:"received_at"`
	ClosedAt   *time.Time           `json:"closed_at,omitempty"`
	Messages   []*msgmodels.Message `json:"messages"`
}

// Service resolves credentials to case views.
type Service struct {
	lookup    CaseLookup
	messages  Messages
	hasher    *credential.Hasher
	publisher *events.Publisher
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

// New creates the access service.
func New(lookup CaseLookup, messages Messages, hasher *credential.Hasher, publisher *events.Publisher, m *metrics.Metrics, logger *slog.Logger) *Service {
	return &Service{
		lookup:    lookup,
		messages:  messages,
		hasher:    hasher,
		publisher: publisher,
		metrics:   m,
		logger:    logger,
	}
}

// errNoCase is the uniform resolution failure. Malformed, tampered and merely
// unknown credentials are indistinguishable to the caller, so a probe learns
// nothing about which credentials exist.
func errNoCase() error {
	return dErrors.New(dErrors.CodeNotFound, "no case found for this credential")
}

func (s *Service) resolve(ctx context.Context, credentialValue string) (*models.Case, error) {
	s.metrics.TrackLookups.Inc()
	if credential.Normalize(credentialValue) == "" {
		s.metrics.TrackMisses.Inc()
		return nil, errNoCase()
	}
	c, err := s.lookup.FindByCredentialHash(ctx, s.hasher.Hash(credentialValue))
	if errors.Is(err, sentinel.ErrNotFound) {
		s.metrics.TrackMisses.Inc()
		return nil, errNoCase()
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve credential")
	}
	return c, nil
}

// Track returns the reporter's view of the case a credential resolves to:
// status, lifecycle dates and the non-internal thread.
func (s *Service) Track(ctx context.Context, credentialValue string) (*CaseView, error) {
	c, err := s.resolve(ctx, credentialValue)
	if err != nil {
		return nil, err
	}

	visible, err := s.messages.ListForViewer(ctx, c.ID, msgmodels.ViewerReporter)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load messages")
	}

	return &CaseView{
		CaseNumber: c.CaseNumber,
		Title:      c.Title,
		Status:     c.Status,
		ReceivedAt: c.ReceivedAt,
		ClosedAt:   c.ClosedAt,
		Messages:   visible,
	}, nil
}

// AppendReporterMessage adds a reporter message to the thread behind a
// credential. Reporter messages are never internal.
func (s *Service) AppendReporterMessage(ctx context.Context, credentialValue, body string) (*msgmodels.Message, error) {
	c, err := s.resolve(ctx, credentialValue)
	if err != nil {
		return nil, err
	}

	m, err := s.messages.Append(ctx, c.ID, msgmodels.SenderReporter, body, false)
	if err != nil {
		return nil, err
	}

	s.metrics.MessagesAppended.WithLabelValues(string(msgmodels.SenderReporter)).Inc()
	event := events.Event{
		Kind:       events.KindMessageAppended,
		TenantID:   c.TenantID,
		CaseID:     c.ID,
		CaseNumber: c.CaseNumber,
		Sender:     string(msgmodels.SenderReporter),
		Summary:    "new message from reporter",
		OccurredAt: m.CreatedAt,
	}
	if err := s.publisher.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to emit event",
			"kind", event.Kind, "case_number", c.CaseNumber, "error", err)
	}
	return m, nil
}
