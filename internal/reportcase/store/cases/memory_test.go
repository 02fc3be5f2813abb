package cases

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"signalbox/internal/reportcase/models"
	id "signalbox/pkg/domain"
	"signalbox/pkg/platform/sentinel"
)

type CaseStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
}

func (s *CaseStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
}

func TestCaseStoreSuite(t *testing.T) {
	suite.Run(t, new(CaseStoreSuite))
}

func (s *CaseStoreSuite) newCase(tenantID id.TenantID, number, hash string) *models.Case {
	c, err := models.NewCase(id.NewCaseID(), tenantID, number, hash, models.Report{
		Category:    "conduct",
		Title:       "Test report",
		Description: "A sufficiently long description of the reported incident.",
		IsAnonymous: true,
	}, time.Now())
	s.Require().NoError(err)
	return c
}

func (s *CaseStoreSuite) TestCreationAndLookups() {
	tenantID := id.NewTenantID()

	s.Run("creates and finds case by ID within tenant", func() {
		c := s.newCase(tenantID, "WB-2026-0001", "hash-1")
		s.Require().NoError(s.store.Create(s.ctx, c))

		found, err := s.store.FindByID(s.ctx, tenantID, c.ID)
		s.Require().NoError(err)
		s.Equal(c.CaseNumber, found.CaseNumber)
		s.Equal(models.StatusReceived, found.Status)
	})

	s.Run("hides case from other tenants", func() {
		c := s.newCase(tenantID, "WB-2026-0002", "hash-2")
		s.Require().NoError(s.store.Create(s.ctx, c))

		_, err := s.store.FindByID(s.ctx, id.NewTenantID(), c.ID)
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("finds case by credential hash without tenant scope", func() {
		c := s.newCase(tenantID, "WB-2026-0003", "hash-3")
		s.Require().NoError(s.store.Create(s.ctx, c))

		found, err := s.store.FindByCredentialHash(s.ctx, "hash-3")
		s.Require().NoError(err)
		s.Equal(c.ID, found.ID)
	})

	s.Run("unknown credential hash yields ErrNotFound", func() {
		_, err := s.store.FindByCredentialHash(s.ctx, "no-such-hash")
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *CaseStoreSuite) TestUniqueness() {
	tenantID := id.NewTenantID()

	s.Run("rejects duplicate case number within tenant", func() {
		s.Require().NoError(s.store.Create(s.ctx, s.newCase(tenantID, "WB-2026-0010", "hash-a")))

		err := s.store.Create(s.ctx, s.newCase(tenantID, "WB-2026-0010", "hash-b"))
		s.Require().ErrorIs(err, sentinel.ErrAlreadyUsed)
	})

	s.Run("allows same case number in a different tenant", func() {
		s.Require().NoError(s.store.Create(s.ctx, s.newCase(id.NewTenantID(), "WB-2026-0010", "hash-c")))
	})

	s.Run("rejects duplicate credential hash across tenants", func() {
		err := s.store.Create(s.ctx, s.newCase(id.NewTenantID(), "WB-2026-0011", "hash-a"))
		s.Require().ErrorIs(err, sentinel.ErrAlreadyUsed)
	})
}

func (s *CaseStoreSuite) TestStatusCompareAndSwap() {
	tenantID := id.NewTenantID()
	c := s.newCase(tenantID, "WB-2026-0020", "hash-cas")
	s.Require().NoError(s.store.Create(s.ctx, c))

	s.Run("succeeds when the stored status matches", func() {
		updated := *c
		updated.ApplyTransition(models.StatusAcknowledged, time.Now())
		s.Require().NoError(s.store.UpdateStatus(s.ctx, &updated, models.StatusReceived))

		found, err := s.store.FindByID(s.ctx, tenantID, c.ID)
		s.Require().NoError(err)
		s.Equal(models.StatusAcknowledged, found.Status)
		s.NotNil(found.AcknowledgedAt)
	})

	s.Run("fails with ErrConflict when the stored status moved on", func() {
		stale := *c
		stale.ApplyTransition(models.StatusAcknowledged, time.Now())
		err := s.store.UpdateStatus(s.ctx, &stale, models.StatusReceived)
		s.Require().ErrorIs(err, sentinel.ErrConflict)
	})

	s.Run("fails with ErrNotFound for a foreign tenant", func() {
		foreign := *c
		foreign.TenantID = id.NewTenantID()
		err := s.store.UpdateStatus(s.ctx, &foreign, models.StatusAcknowledged)
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *CaseStoreSuite) TestListAndCount() {
	tenantID := id.NewTenantID()

	first := s.newCase(tenantID, "WB-2026-0030", "hash-l1")
	first.ReceivedAt = time.Now().Add(-2 * time.Hour)
	second := s.newCase(tenantID, "WB-2026-0031", "hash-l2")
	second.ReceivedAt = time.Now().Add(-1 * time.Hour)
	s.Require().NoError(s.store.Create(s.ctx, first))
	s.Require().NoError(s.store.Create(s.ctx, second))
	s.Require().NoError(s.store.Create(s.ctx, s.newCase(id.NewTenantID(), "WB-2026-0032", "hash-l3")))

	s.Run("lists only the tenant's cases, newest first", func() {
		listed, err := s.store.ListByTenant(s.ctx, tenantID, nil)
		s.Require().NoError(err)
		s.Require().Len(listed, 2)
		s.Equal(second.ID, listed[0].ID)
		s.Equal(first.ID, listed[1].ID)
	})

	s.Run("filters by status", func() {
		updated := *first
		updated.ApplyTransition(models.StatusAcknowledged, time.Now())
		s.Require().NoError(s.store.UpdateStatus(s.ctx, &updated, models.StatusReceived))

		status := models.StatusAcknowledged
		listed, err := s.store.ListByTenant(s.ctx, tenantID, &status)
		s.Require().NoError(err)
		s.Require().Len(listed, 1)
		s.Equal(first.ID, listed[0].ID)
	})

	s.Run("counts cases for the tenant and year", func() {
		count, err := s.store.CountByTenantYear(s.ctx, tenantID, time.Now().Year())
		s.Require().NoError(err)
		s.Equal(2, count)
	})
}

func (s *CaseStoreSuite) TestUpdateSeverity() {
	tenantID := id.NewTenantID()
	c := s.newCase(tenantID, "WB-2026-0040", "hash-sev")
	s.Require().NoError(s.store.Create(s.ctx, c))

	s.Require().NoError(s.store.UpdateSeverity(s.ctx, tenantID, c.ID, models.SeverityHigh))

	found, err := s.store.FindByID(s.ctx, tenantID, c.ID)
	s.Require().NoError(err)
	s.Equal(models.SeverityHigh, found.Severity)

	err = s.store.UpdateSeverity(s.ctx, id.NewTenantID(), c.ID, models.SeverityLow)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}
