//go:build integration

package messages

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"signalbox/internal/messaging/models"
	casemodels "signalbox/internal/reportcase/models"
	"signalbox/internal/reportcase/store/cases"
	tenantmodels "signalbox/internal/tenant/models"
	"signalbox/internal/tenant/store/tenants"
	id "signalbox/pkg/domain"
	"signalbox/pkg/testutil/containers"
)

type PostgresMessageSuite struct {
	suite.Suite
	pg     *containers.PostgresContainer
	store  *PostgresStore
	ctx    context.Context
	caseID id.CaseID
}

func (s *PostgresMessageSuite) SetupSuite() {
	s.pg = containers.NewPostgresContainer(s.T())
	s.store = NewPostgres(s.pg.DB)
	s.ctx = context.Background()
}

func (s *PostgresMessageSuite) SetupTest() {
	s.Require().NoError(s.pg.TruncateTables(s.ctx))

	now := time.Now().UTC().Truncate(time.Microsecond)
	t, err := tenantmodels.NewTenant("acme-corp", "ACME Corporation", now)
	s.Require().NoError(err)
	s.Require().NoError(tenants.NewPostgres(s.pg.DB).Create(s.ctx, t))

	report := casemodels.Report{
		Category:    "safety",
		Title:       "Blocked fire exits in the warehouse",
		Description: "The emergency exits on the ground floor have been blocked by pallets for at least two weeks.",
		IsAnonymous: true,
	}
	c, err := casemodels.NewCase(id.NewCaseID(), t.ID, "WB-2026-0001", "hash-1", report, now)
	s.Require().NoError(err)
	s.Require().NoError(cases.NewPostgres(s.pg.DB).Create(s.ctx, c))
	s.caseID = c.ID
}

func (s *PostgresMessageSuite) newMessage(body string, sender models.Sender, internal bool, at time.Time) *models.Message {
	m, err := models.NewMessage(s.caseID, sender, body, internal, at)
	s.Require().NoError(err)
	return m
}

func (s *PostgresMessageSuite) TestAppendAndList() {
	base := time.Now().UTC().Truncate(time.Microsecond)
	s.Require().NoError(s.store.Append(s.ctx, s.newMessage("second", models.SenderHandler, false, base.Add(time.Minute))))
	s.Require().NoError(s.store.Append(s.ctx, s.newMessage("first", models.SenderSystem, false, base)))
	s.Require().NoError(s.store.Append(s.ctx, s.newMessage("note", models.SenderHandler, true, base.Add(2*time.Minute))))

	got, err := s.store.ListByCase(s.ctx, s.caseID)
	s.Require().NoError(err)
	s.Require().Len(got, 3)
	s.Equal("first", got[0].Body)
	s.Equal("second", got[1].Body)
	s.True(got[2].IsInternal)
}

func (s *PostgresMessageSuite) TestListScopedToCase() {
	now := time.Now().UTC().Truncate(time.Microsecond)
	s.Require().NoError(s.store.Append(s.ctx, s.newMessage("mine", models.SenderHandler, false, now)))

	got, err := s.store.ListByCase(s.ctx, id.NewCaseID())
	s.Require().NoError(err)
	s.Empty(got)
}

func TestPostgresMessageSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresMessageSuite))
}
