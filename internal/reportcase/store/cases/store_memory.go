// Package cases persists Case aggregates. Two implementations: InMemory for
// tests and broker-less deployments, PostgresStore for production.
//
// Both enforce the same uniqueness facts (case number per tenant, credential
// hash globally) and the same compare-and-swap rule for status updates, so
// services behave identically against either.
package cases

import (
	"context"
	"sort"
	"sync"
	"time"

	"signalbox/internal/reportcase/models"
	id "signalbox/pkg/domain"
	"signalbox/pkg/platform/sentinel"
)

// InMemory is a mutex-guarded map store.
type InMemory struct {
	mu           sync.RWMutex
	byID         map[id.CaseID]*models.Case
	byCredential map[string]id.CaseID
	byNumber     map[numberKey]id.CaseID
}

type numberKey struct {
	tenantID   id.TenantID
	caseNumber string
}

// NewInMemory creates an empty in-memory case store.
func NewInMemory() *InMemory {
	return &InMemory{
		byID:         make(map[id.CaseID]*models.Case),
		byCredential: make(map[string]id.CaseID),
		byNumber:     make(map[numberKey]id.CaseID),
	}
}

// Create inserts a new case, enforcing the uniqueness constraints the
// Postgres schema declares. Returns sentinel.ErrAlreadyUsed when the case
// number or credential hash is taken.
func (s *InMemory) Create(_ context.Context, c *models.Case) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byCredential[c.CredentialHash]; exists {
		return sentinel.ErrAlreadyUsed
	}
	key := numberKey{tenantID: c.TenantID, caseNumber: c.CaseNumber}
	if _, exists := s.byNumber[key]; exists {
		return sentinel.ErrAlreadyUsed
	}

	clone := *c
	s.byID[c.ID] = &clone
	s.byCredential[c.CredentialHash] = c.ID
	s.byNumber[key] = c.ID
	return nil
}

// FindByID retrieves a case scoped by tenant. A case from another tenant is
// indistinguishable from a missing one.
func (s *InMemory) FindByID(_ context.Context, tenantID id.TenantID, caseID id.CaseID) (*models.Case, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.byID[caseID]
	if !ok || c.TenantID != tenantID {
		return nil, sentinel.ErrNotFound
	}
	clone := *c
	return &clone, nil
}

// FindByCredentialHash retrieves a case by exact hash match, across all
// tenants. The credential alone is globally unique and sufficient.
func (s *InMemory) FindByCredentialHash(_ context.Context, hash string) (*models.Case, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	caseID, ok := s.byCredential[hash]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	clone := *s.byID[caseID]
	return &clone, nil
}

// ListByTenant returns a tenant's cases, newest first, optionally filtered
// by status.
func (s *InMemory) ListByTenant(_ context.Context, tenantID id.TenantID, status *models.Status) ([]*models.Case, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.Case
	for _, c := range s.byID {
		if c.TenantID != tenantID {
			continue
		}
		if status != nil && c.Status != *status {
			continue
		}
		clone := *c
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ReceivedAt.After(out[j].ReceivedAt)
	})
	return out, nil
}

// CountByTenantYear counts a tenant's cases received in the given year. The
// issuer derives sequence candidates from it.
func (s *InMemory) CountByTenantYear(_ context.Context, tenantID id.TenantID, year int) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, c := range s.byID {
		if c.TenantID == tenantID && c.ReceivedAt.Year() == year {
			count++
		}
	}
	return count, nil
}

// UpdateStatus persists the case's status and lifecycle timestamps, but only
// if the stored status still equals expected. Returns sentinel.ErrConflict
// when a concurrent transition won the race.
func (s *InMemory) UpdateStatus(_ context.Context, c *models.Case, expected models.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.byID[c.ID]
	if !ok || stored.TenantID != c.TenantID {
		return sentinel.ErrNotFound
	}
	if stored.Status != expected {
		return sentinel.ErrConflict
	}

	stored.Status = c.Status
	stored.AcknowledgedAt = copyTime(c.AcknowledgedAt)
	stored.InvestigatedAt = copyTime(c.InvestigatedAt)
	stored.ClosedAt = copyTime(c.ClosedAt)
	return nil
}

// UpdateSeverity persists a staff severity assessment.
func (s *InMemory) UpdateSeverity(_ context.Context, tenantID id.TenantID, caseID id.CaseID, severity models.Severity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.byID[caseID]
	if !ok || stored.TenantID != tenantID {
		return sentinel.ErrNotFound
	}
	stored.Severity = severity
	return nil
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	clone := *t
	return &clone
}
