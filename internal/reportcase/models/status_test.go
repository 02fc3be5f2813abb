package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "signalbox/pkg/domain"
	dErrors "signalbox/pkg/domain-errors"
)

func TestStatus_ForwardOnly(t *testing.T) {
	tests := []struct {
		from    Status
		to      Status
		allowed bool
	}{
		{StatusReceived, StatusAcknowledged, true},
		{StatusAcknowledged, StatusUnderInvestigation, true},
		{StatusUnderInvestigation, StatusActionTaken, true},
		{StatusActionTaken, StatusResolved, true},
		{StatusResolved, StatusClosed, true},

		// Skipping is not allowed
		{StatusReceived, StatusUnderInvestigation, false},
		{StatusReceived, StatusResolved, false},
		{StatusAcknowledged, StatusResolved, false},
		{StatusReceived, StatusClosed, false},

		// Reversing is not allowed
		{StatusResolved, StatusAcknowledged, false},
		{StatusUnderInvestigation, StatusReceived, false},

		// Dismissal from any non-terminal state
		{StatusReceived, StatusDismissed, true},
		{StatusAcknowledged, StatusDismissed, true},
		{StatusUnderInvestigation, StatusDismissed, true},
		{StatusActionTaken, StatusDismissed, true},
		{StatusResolved, StatusDismissed, true},

		// Terminal states allow nothing new
		{StatusClosed, StatusDismissed, false},
		{StatusDismissed, StatusClosed, false},
		{StatusClosed, StatusAcknowledged, false},

		// Same-state retry is a no-op, not an error
		{StatusReceived, StatusReceived, true},
		{StatusClosed, StatusClosed, true},
		{StatusDismissed, StatusDismissed, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestParseStatus(t *testing.T) {
	s, err := ParseStatus("UNDER_INVESTIGATION")
	require.NoError(t, err)
	assert.Equal(t, StatusUnderInvestigation, s)

	_, err = ParseStatus("reopened")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
}

func validReport() Report {
	return Report{
		Category:    "financial",
		Title:       "Suspicious invoicing",
		Description: "Invoices approved without the required second signature for months.",
		IsAnonymous: true,
	}
}

func newTestCase(t *testing.T) *Case {
	t.Helper()
	c, err := NewCase(id.NewCaseID(), id.NewTenantID(), "WB-2026-0001", "hash", validReport(), time.Now())
	require.NoError(t, err)
	return c
}

func TestApplyTransition_TimestampsSetOnce(t *testing.T) {
	c := newTestCase(t)
	first := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	later := first.Add(48 * time.Hour)

	require.NoError(t, c.CanTransitionTo(StatusAcknowledged))
	c.ApplyTransition(StatusAcknowledged, first)
	require.NotNil(t, c.AcknowledgedAt)
	assert.Equal(t, first, *c.AcknowledgedAt)

	// A same-state retry changes nothing.
	c.ApplyTransition(StatusAcknowledged, later)
	assert.Equal(t, first, *c.AcknowledgedAt)

	c.ApplyTransition(StatusUnderInvestigation, later)
	require.NotNil(t, c.InvestigatedAt)
	assert.Equal(t, later, *c.InvestigatedAt)
	assert.Nil(t, c.ClosedAt)
}

func TestApplyTransition_DismissalStampsClosedAt(t *testing.T) {
	c := newTestCase(t)
	now := time.Now()

	require.NoError(t, c.CanTransitionTo(StatusDismissed))
	c.ApplyTransition(StatusDismissed, now)

	assert.Equal(t, StatusDismissed, c.Status)
	require.NotNil(t, c.ClosedAt)
	assert.Nil(t, c.AcknowledgedAt)
}

func TestCanTransitionTo_InvalidCode(t *testing.T) {
	c := newTestCase(t)
	c.Status = StatusResolved

	err := c.CanTransitionTo(StatusAcknowledged)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidTransition))
}

func TestReport_Validate(t *testing.T) {
	t.Run("valid anonymous report", func(t *testing.T) {
		r := validReport()
		require.NoError(t, r.Validate())
	})

	t.Run("missing title", func(t *testing.T) {
		r := validReport()
		r.Title = "  "
		err := r.Validate()
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("description too short", func(t *testing.T) {
		r := validReport()
		r.Description = "too short"
		err := r.Validate()
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("anonymous report with contact details", func(t *testing.T) {
		r := validReport()
		r.ReporterEmail = "someone@example.com"
		err := r.Validate()
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("named report keeps contact details", func(t *testing.T) {
		r := validReport()
		r.IsAnonymous = false
		r.ReporterName = "Jo Reporter"
		r.ReporterEmail = "jo@example.com"
		require.NoError(t, r.Validate())

		c, err := NewCase(id.NewCaseID(), id.NewTenantID(), "WB-2026-0002", "hash", r, time.Now())
		require.NoError(t, err)
		assert.Equal(t, "Jo Reporter", c.ReporterName)
	})

	t.Run("anonymous case never stores contact fields", func(t *testing.T) {
		c := newTestCase(t)
		assert.Empty(t, c.ReporterName)
		assert.Empty(t, c.ReporterEmail)
		assert.Empty(t, c.ReporterPhone)
	})
}
