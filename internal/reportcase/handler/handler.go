// Package handler exposes the staff case endpoints. Every request arrives
// through the staff auth middleware, so the tenant scope is already on the
// context.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	msgmodels "signalbox/internal/messaging/models"
	"signalbox/internal/reportcase/models"
	id "signalbox/pkg/domain"
	dErrors "signalbox/pkg/domain-errors"
	"signalbox/pkg/platform/httputil"
	"signalbox/pkg/requestcontext"
)

// Service is the case service surface the staff endpoints use.
type Service interface {
	GetCase(ctx context.Context, tenantID id.TenantID, caseID id.CaseID) (*models.Case, error)
	ListCases(ctx context.Context, tenantID id.TenantID, status *models.Status) ([]*models.Case, error)
	TransitionStatus(ctx context.Context, tenantID id.TenantID, caseID id.CaseID, target models.Status, reason string) (*models.Case, error)
	AppendHandlerMessage(ctx context.Context, tenantID id.TenantID, caseID id.CaseID, body string, isInternal bool) (*msgmodels.Message, error)
	ListThread(ctx context.Context, tenantID id.TenantID, caseID id.CaseID) ([]*msgmodels.Message, error)
	UpdateSeverity(ctx context.Context, tenantID id.TenantID, caseID id.CaseID, severity models.Severity) error
}

// Handler wires the staff case endpoints.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs the staff handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the staff endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/cases", h.HandleList)
	r.Get("/cases/{caseID}", h.HandleGet)
	r.Post("/cases/{caseID}/status", h.HandleTransition)
	r.Get("/cases/{caseID}/messages", h.HandleListMessages)
	r.Post("/cases/{caseID}/messages", h.HandleAppendMessage)
	r.Put("/cases/{caseID}/severity", h.HandleSeverity)
}

func (h *Handler) scope(w http.ResponseWriter, r *http.Request) (id.TenantID, id.CaseID, bool) {
	tenantID := requestcontext.TenantID(r.Context())
	if tenantID.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return id.TenantID{}, id.CaseID{}, false
	}
	caseID, err := id.ParseCaseID(chi.URLParam(r, "caseID"))
	if err != nil {
		httputil.WriteError(w, err)
		return id.TenantID{}, id.CaseID{}, false
	}
	return tenantID, caseID, true
}

// HandleList handles GET /cases with an optional ?status= filter.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tenantID := requestcontext.TenantID(ctx)
	if tenantID.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	var filter *models.Status
	if raw := r.URL.Query().Get("status"); raw != "" {
		status, err := models.ParseStatus(raw)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		filter = &status
	}

	cases, err := h.service.ListCases(ctx, tenantID, filter)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, cases)
}

// HandleGet handles GET /cases/{caseID}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	tenantID, caseID, ok := h.scope(w, r)
	if !ok {
		return
	}

	c, err := h.service.GetCase(r.Context(), tenantID, caseID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, c)
}

// HandleTransition handles POST /cases/{caseID}/status.
func (h *Handler) HandleTransition(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tenantID, caseID, ok := h.scope(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeJSON[TransitionRequest](w, r)
	if !ok {
		return
	}
	target, err := models.ParseStatus(req.Status)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	c, err := h.service.TransitionStatus(ctx, tenantID, caseID, target, req.Reason)
	if err != nil {
		h.logger.WarnContext(ctx, "status transition refused",
			"case_id", caseID, "target", target, "actor_id", requestcontext.ActorID(ctx), "error", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, c)
}

// HandleListMessages handles GET /cases/{caseID}/messages.
func (h *Handler) HandleListMessages(w http.ResponseWriter, r *http.Request) {
	tenantID, caseID, ok := h.scope(w, r)
	if !ok {
		return
	}

	thread, err := h.service.ListThread(r.Context(), tenantID, caseID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, thread)
}

// HandleAppendMessage handles POST /cases/{caseID}/messages.
func (h *Handler) HandleAppendMessage(w http.ResponseWriter, r *http.Request) {
	tenantID, caseID, ok := h.scope(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeJSON[MessageRequest](w, r)
	if !ok {
		return
	}

	m, err := h.service.AppendHandlerMessage(r.Context(), tenantID, caseID, req.Body, req.IsInternal)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, m)
}

// HandleSeverity handles PUT /cases/{caseID}/severity.
func (h *Handler) HandleSeverity(w http.ResponseWriter, r *http.Request) {
	tenantID, caseID, ok := h.scope(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeJSON[SeverityRequest](w, r)
	if !ok {
		return
	}
	severity, err := models.ParseSeverity(req.Severity)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.service.UpdateSeverity(r.Context(), tenantID, caseID, severity); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
