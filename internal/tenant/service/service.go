// Package service resolves and provisions tenants.
package service

import (
	"context"
	"errors"
	"log/slog"

	"signalbox/internal/tenant/models"
	id "signalbox/pkg/domain"
	dErrors "signalbox/pkg/domain-errors"
	"signalbox/pkg/platform/sentinel"
	"signalbox/pkg/requestcontext"
)

// TenantStore is the persistence boundary for tenants.
type TenantStore interface {
	Create(ctx context.Context, t *models.Tenant) error
	FindByID(ctx context.Context, tenantID id.TenantID) (*models.Tenant, error)
	FindBySlug(ctx context.Context, slug string) (*models.Tenant, error)
}

// Service is the tenant directory.
type Service struct {
	store  TenantStore
	logger *slog.Logger
}

// New creates the tenant service.
func New(store TenantStore, logger *slog.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// Create provisions a tenant with a unique slug.
func (s *Service) Create(ctx context.Context, slug, name string) (*models.Tenant, error) {
	t, err := models.NewTenant(slug, name, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	if err := s.store.Create(ctx, t); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			return nil, dErrors.New(dErrors.CodeConflict, "tenant slug is already taken")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create tenant")
	}
	s.logger.InfoContext(ctx, "tenant created", "slug", t.Slug)
	return t, nil
}

// ResolveBySlug maps the public channel path to a tenant.
func (s *Service) ResolveBySlug(ctx context.Context, slug string) (*models.Tenant, error) {
	t, err := s.store.FindBySlug(ctx, slug)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.New(dErrors.CodeNotFound, "unknown organization")
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve tenant")
	}
	return t, nil
}

// EnsureSeed creates the tenant if the slug is free and returns it either
// way. Used to bootstrap development environments.
func (s *Service) EnsureSeed(ctx context.Context, slug, name string) (*models.Tenant, error) {
	t, err := s.store.FindBySlug(ctx, slug)
	if err == nil {
		return t, nil
	}
	if !errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve tenant")
	}
	return s.Create(ctx, slug, name)
}
