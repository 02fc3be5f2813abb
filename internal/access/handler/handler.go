// Package handler exposes the public, unauthenticated endpoints: report
// submission and credential-based tracking. Everything here is reachable by
// anyone, so responses leak nothing beyond the reporter's own view.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	accessservice "signalbox/internal/access/service"
	"signalbox/internal/intake"
	msgmodels "signalbox/internal/messaging/models"
	"signalbox/internal/reportcase/models"
	tenantmodels "signalbox/internal/tenant/models"
	id "signalbox/pkg/domain"
	dErrors "signalbox/pkg/domain-errors"
	"signalbox/pkg/platform/httputil"
	"signalbox/pkg/requestcontext"
)

// Tenants resolves the channel path to an organization.
type Tenants interface {
	ResolveBySlug(ctx context.Context, slug string) (*tenantmodels.Tenant, error)
}

// Cases is the slice of the case service the public surface needs.
type Cases interface {
	CreateCase(ctx context.Context, tenantID id.TenantID, report models.Report, signals intake.Signals) (*models.Case, string, error)
}

// Access resolves credentials for tracking and reporter replies.
type Access interface {
	Track(ctx context.Context, credentialValue string) (*accessservice.CaseView, error)
	AppendReporterMessage(ctx context.Context, credentialValue, body string) (*msgmodels.Message, error)
}

// Handler wires the public endpoints.
type Handler struct {
	tenants Tenants
	cases   Cases
	access  Access
	logger  *slog.Logger
}

// New constructs the public handler.
func New(tenants Tenants, cases Cases, access Access, logger *slog.Logger) *Handler {
	return &Handler{tenants: tenants, cases: cases, access: access, logger: logger}
}

// Register mounts the public endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/channels/{slug}/reports", h.HandleSubmit)
	r.Post("/track", h.HandleTrack)
	r.Post("/track/messages", h.HandleReply)
}

// HandleSubmit handles POST /channels/{slug}/reports.
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	t, err := h.tenants.ResolveBySlug(ctx, chi.URLParam(r, "slug"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeJSON[SubmitRequest](w, r)
	if !ok {
		return
	}

	signals := intake.Signals{
		Honeypot:  req.Honeypot,
		Elapsed:   time.Duration(req.ElapsedMs) * time.Millisecond,
		UserAgent: requestcontext.UserAgent(ctx),
	}
	c, credentialValue, err := h.cases.CreateCase(ctx, t.ID, req.Report(), signals)
	if err != nil {
		// Intake refusals are logged at info: they are routine, and the log
		// must not become a debugging oracle for probing bots.
		if dErrors.HasCode(err, dErrors.CodeRejected) {
			h.logger.InfoContext(ctx, "submission rejected", "tenant", t.Slug)
		} else {
			h.logger.ErrorContext(ctx, "submission failed", "tenant", t.Slug, "error", err)
		}
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "report submitted", "tenant", t.Slug, "case_number", c.CaseNumber)
	httputil.WriteJSON(w, http.StatusCreated, SubmitResponse{
		CaseNumber: c.CaseNumber,
		Credential: credentialValue,
		Status:     string(c.Status),
	})
}

// HandleTrack handles POST /track.
func (h *Handler) HandleTrack(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.DecodeJSON[TrackRequest](w, r)
	if !ok {
		return
	}

	view, err := h.access.Track(r.Context(), req.Credential)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, view)
}

// HandleReply handles POST /track/messages.
func (h *Handler) HandleReply(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.DecodeJSON[ReplyRequest](w, r)
	if !ok {
		return
	}

	m, err := h.access.AppendReporterMessage(r.Context(), req.Credential, req.Body)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, m)
}
