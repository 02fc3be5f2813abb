package messages

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"signalbox/internal/messaging/models"
	id "signalbox/pkg/domain"
)

type MessageStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
}

func (s *MessageStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
}

func (s *MessageStoreSuite) newMessage(caseID id.CaseID, body string, at time.Time) *models.Message {
	m, err := models.NewMessage(caseID, models.SenderHandler, body, false, at)
	s.Require().NoError(err)
	return m
}

func (s *MessageStoreSuite) TestAppendAndList() {
	caseID := id.NewCaseID()
	base := time.Date(2026, 2, 10, 8, 0, 0, 0, time.UTC)

	first := s.newMessage(caseID, "first", base)
	second := s.newMessage(caseID, "second", base.Add(time.Minute))
	s.Require().NoError(s.store.Append(s.ctx, first))
	s.Require().NoError(s.store.Append(s.ctx, second))

	got, err := s.store.ListByCase(s.ctx, caseID)
	s.Require().NoError(err)
	s.Require().Len(got, 2)
	s.Equal("first", got[0].Body)
	s.Equal("second", got[1].Body)
}

func (s *MessageStoreSuite) TestListSortsByCreatedAt() {
	caseID := id.NewCaseID()
	base := time.Date(2026, 2, 10, 8, 0, 0, 0, time.UTC)

	late := s.newMessage(caseID, "late", base.Add(time.Hour))
	early := s.newMessage(caseID, "early", base)
	s.Require().NoError(s.store.Append(s.ctx, late))
	s.Require().NoError(s.store.Append(s.ctx, early))

	got, err := s.store.ListByCase(s.ctx, caseID)
	s.Require().NoError(err)
	s.Require().Len(got, 2)
	s.Equal("early", got[0].Body)
	s.Equal("late", got[1].Body)
}

func (s *MessageStoreSuite) TestListScopedToCase() {
	caseA := id.NewCaseID()
	caseB := id.NewCaseID()
	now := time.Now().UTC()

	s.Require().NoError(s.store.Append(s.ctx, s.newMessage(caseA, "for A", now)))
	s.Require().NoError(s.store.Append(s.ctx, s.newMessage(caseB, "for B", now)))

	got, err := s.store.ListByCase(s.ctx, caseA)
	s.Require().NoError(err)
	s.Require().Len(got, 1)
	s.Equal("for A", got[0].Body)
}

func (s *MessageStoreSuite) TestListReturnsCopies() {
	caseID := id.NewCaseID()
	s.Require().NoError(s.store.Append(s.ctx, s.newMessage(caseID, "original", time.Now().UTC())))

	got, err := s.store.ListByCase(s.ctx, caseID)
	s.Require().NoError(err)
	got[0].Body = "mutated"

	again, err := s.store.ListByCase(s.ctx, caseID)
	s.Require().NoError(err)
	s.Equal("original", again[0].Body)
}

func (s *MessageStoreSuite) TestEmptyCase() {
	got, err := s.store.ListByCase(s.ctx, id.NewCaseID())
	s.Require().NoError(err)
	s.Empty(got)
}

func TestMessageStoreSuite(t *testing.T) {
	suite.Run(t, new(MessageStoreSuite))
}
