package tenants

import (
	"context"
	"sync"

	"signalbox/internal/tenant/models"
	id "signalbox/pkg/domain"
	"signalbox/pkg/platform/sentinel"
)

// InMemory is the map-backed tenant store for tests and single-node
// development.
type InMemory struct {
	mu     sync.RWMutex
	byID   map[id.TenantID]*models.Tenant
	bySlug map[string]*models.Tenant
}

// NewInMemory creates an empty in-memory tenant store.
func NewInMemory() *InMemory {
	return &InMemory{
		byID:   make(map[id.TenantID]*models.Tenant),
		bySlug: make(map[string]*models.Tenant),
	}
}

func (s *InMemory) Create(_ context.Context, t *models.Tenant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.bySlug[t.Slug]; ok {
		return sentinel.ErrAlreadyUsed
	}
	cp := *t
	s.byID[t.ID] = &cp
	s.bySlug[t.Slug] = &cp
	return nil
}

func (s *InMemory) FindByID(_ context.Context, tenantID id.TenantID) (*models.Tenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.byID[tenantID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (s *InMemory) FindBySlug(_ context.Context, slug string) (*models.Tenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.bySlug[slug]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *t
	return &cp, nil
}
