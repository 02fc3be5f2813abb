// Package service implements the staff-facing case lifecycle: intake,
// identity issuance, status transitions and the handler side of the thread.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"signalbox/internal/intake"
	msgmodels "signalbox/internal/messaging/models"
	"signalbox/internal/platform/metrics"
	"signalbox/internal/reportcase/credential"
	"signalbox/internal/reportcase/models"
	id "signalbox/pkg/domain"
	dErrors "signalbox/pkg/domain-errors"
	"signalbox/pkg/events"
	"signalbox/pkg/platform/sentinel"
	"signalbox/pkg/requestcontext"
)

// CaseStore is the persistence boundary for cases.
type CaseStore interface {
	Create(ctx context.Context, c *models.Case) error
	FindByID(ctx context.Context, tenantID id.TenantID, caseID id.CaseID) (*models.Case, error)
	ListByTenant(ctx context.Context, tenantID id.TenantID, status *models.Status) ([]*models.Case, error)
	CountByTenantYear(ctx context.Context, tenantID id.TenantID, year int) (int, error)
	UpdateStatus(ctx context.Context, c *models.Case, expected models.Status) error
	UpdateSeverity(ctx context.Context, tenantID id.TenantID, caseID id.CaseID, severity models.Severity) error
}

// Messages is the slice of the messaging service this service needs.
type Messages interface {
	Append(ctx context.Context, caseID id.CaseID, sender msgmodels.Sender, body string, isInternal bool) (*msgmodels.Message, error)
	ListForViewer(ctx context.Context, caseID id.CaseID, viewer msgmodels.Viewer) ([]*msgmodels.Message, error)
}

// StoreTx runs a function within one storage transaction so that a status
// update and its narration commit or roll back together. Postgres deployments
// use the runner from internal/platform/postgres; the default passthrough
// runs the function directly.
type StoreTx interface {
	RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error
}

type passthroughTx struct{}

func (passthroughTx) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	return fn(ctx)
}

// Option configures the case service.
type Option func(*Service)

// WithTxRunner sets the transaction runner used for multi-write operations.
func WithTxRunner(tx StoreTx) Option {
	return func(s *Service) {
		s.tx = tx
	}
}

// Service orchestrates case creation and the staff lifecycle.
type Service struct {
	store     CaseStore
	messages  Messages
	gate      *intake.Gate
	issuer    *Issuer
	publisher *events.Publisher
	metrics   *metrics.Metrics
	logger    *slog.Logger
	tx        StoreTx
}

// New creates the case service.
func New(
	store CaseStore,
	messages Messages,
	gate *intake.Gate,
	hasher *credential.Hasher,
	publisher *events.Publisher,
	m *metrics.Metrics,
	logger *slog.Logger,
	opts ...Option,
) *Service {
	s := &Service{
		store:     store,
		messages:  messages,
		gate:      gate,
		issuer:    NewIssuer(store, hasher),
		publisher: publisher,
		metrics:   m,
		logger:    logger,
		tx:        passthroughTx{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateCase runs the full intake pipeline: abuse gate, content validation,
// identity issuance, persistence, notification. The returned string is the
// plaintext access credential; it is shown to the reporter exactly once and
// is not recoverable afterwards.
func (s *Service) CreateCase(ctx context.Context, tenantID id.TenantID, report models.Report, signals intake.Signals) (*models.Case, string, error) {
	if err := s.gate.Check(signals); err != nil {
		s.metrics.IntakeRejections.Inc()
		return nil, "", err
	}
	if err := report.Validate(); err != nil {
		return nil, "", err
	}

	c, credentialValue, err := s.issuer.Issue(ctx, tenantID, report, requestcontext.Now(ctx))
	if err != nil {
		return nil, "", err
	}

	s.metrics.CasesCreated.Inc()
	s.emit(ctx, events.Event{
		Kind:       events.KindCaseReceived,
		TenantID:   c.TenantID,
		CaseID:     c.ID,
		CaseNumber: c.CaseNumber,
		Status:     string(c.Status),
		Summary:    "new case received",
		OccurredAt: c.ReceivedAt,
	})
	s.logger.InfoContext(ctx, "case created",
		"case_number", c.CaseNumber,
		"tenant_id", c.TenantID,
		"anonymous", c.IsAnonymous,
	)
	return c, credentialValue, nil
}

// GetCase returns a case scoped to the tenant.
func (s *Service) GetCase(ctx context.Context, tenantID id.TenantID, caseID id.CaseID) (*models.Case, error) {
	c, err := s.store.FindByID(ctx, tenantID, caseID)
	if err != nil {
		return nil, mapStoreErr(err, "failed to load case")
	}
	return c, nil
}

// ListCases returns the tenant's cases, newest first, optionally filtered by
// status.
func (s *Service) ListCases(ctx context.Context, tenantID id.TenantID, status *models.Status) ([]*models.Case, error) {
	cases, err := s.store.ListByTenant(ctx, tenantID, status)
	if err != nil {
		return nil, mapStoreErr(err, "failed to list cases")
	}
	return cases, nil
}

// TransitionStatus moves a case through its lifecycle. A transition to the
// current status is a no-op that returns the case unchanged: no timestamps,
// no narration, no event. Dismissal requires a reason, which becomes the
// narration body so the decision is on the record for reporter and staff
// alike.
func (s *Service) TransitionStatus(ctx context.Context, tenantID id.TenantID, caseID id.CaseID, target models.Status, reason string) (*models.Case, error) {
	c, err := s.store.FindByID(ctx, tenantID, caseID)
	if err != nil {
		return nil, mapStoreErr(err, "failed to load case")
	}
	if c.Status == target {
		return c, nil
	}
	if err := c.CanTransitionTo(target); err != nil {
		return nil, err
	}

	reason = strings.TrimSpace(reason)
	if target == models.StatusDismissed && reason == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "dismissal requires a reason")
	}

	expected := c.Status
	c.ApplyTransition(target, requestcontext.Now(ctx))

	// The status update and its narration are one unit: a transition whose
	// record cannot be written is not a transition, and a dismissal must
	// never commit without its reason on the thread.
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.store.UpdateStatus(txCtx, c, expected); err != nil {
			return mapStoreErr(err, "failed to update status")
		}
		if _, err := s.messages.Append(txCtx, c.ID, msgmodels.SenderSystem, narration(target, reason), false); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.Transitions.WithLabelValues(string(target)).Inc()
	s.emit(ctx, events.Event{
		Kind:       events.KindStatusChanged,
		TenantID:   c.TenantID,
		CaseID:     c.ID,
		CaseNumber: c.CaseNumber,
		Status:     string(target),
		Summary:    fmt.Sprintf("case moved to %s", target),
		OccurredAt: requestcontext.Now(ctx),
	})
	s.logger.InfoContext(ctx, "case status changed",
		"case_number", c.CaseNumber, "from", expected, "to", target)
	return c, nil
}

func narration(target models.Status, reason string) string {
	if target == models.StatusDismissed {
		return fmt.Sprintf("Case dismissed: %s", reason)
	}
	return fmt.Sprintf("Status changed to %s.", target)
}

// AppendHandlerMessage adds a staff message to the case thread. Internal
// notes stay invisible to the reporter and never produce an event.
func (s *Service) AppendHandlerMessage(ctx context.Context, tenantID id.TenantID, caseID id.CaseID, body string, isInternal bool) (*msgmodels.Message, error) {
	c, err := s.store.FindByID(ctx, tenantID, caseID)
	if err != nil {
		return nil, mapStoreErr(err, "failed to load case")
	}

	m, err := s.messages.Append(ctx, c.ID, msgmodels.SenderHandler, body, isInternal)
	if err != nil {
		return nil, err
	}

	s.metrics.MessagesAppended.WithLabelValues(string(msgmodels.SenderHandler)).Inc()
	if !isInternal {
		s.emit(ctx, events.Event{
			Kind:       events.KindMessageAppended,
			TenantID:   c.TenantID,
			CaseID:     c.ID,
			CaseNumber: c.CaseNumber,
			Sender:     string(msgmodels.SenderHandler),
			Summary:    "new message from case handler",
			OccurredAt: m.CreatedAt,
		})
	}
	return m, nil
}

// ListThread returns the full case thread for staff, internal notes included.
func (s *Service) ListThread(ctx context.Context, tenantID id.TenantID, caseID id.CaseID) ([]*msgmodels.Message, error) {
	c, err := s.store.FindByID(ctx, tenantID, caseID)
	if err != nil {
		return nil, mapStoreErr(err, "failed to load case")
	}
	return s.messages.ListForViewer(ctx, c.ID, msgmodels.ViewerHandler)
}

// UpdateSeverity sets the staff triage level.
func (s *Service) UpdateSeverity(ctx context.Context, tenantID id.TenantID, caseID id.CaseID, severity models.Severity) error {
	if err := s.store.UpdateSeverity(ctx, tenantID, caseID, severity); err != nil {
		return mapStoreErr(err, "failed to update severity")
	}
	return nil
}

func (s *Service) emit(ctx context.Context, event events.Event) {
	if err := s.publisher.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to emit event",
			"kind", event.Kind, "case_number", event.CaseNumber, "error", err)
	}
}

func mapStoreErr(err error, msg string) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "case not found")
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.New(dErrors.CodeConflict, "case was modified concurrently")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, msg)
}
