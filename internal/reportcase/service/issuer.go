package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"signalbox/internal/reportcase/credential"
	"signalbox/internal/reportcase/models"
	id "signalbox/pkg/domain"
	dErrors "signalbox/pkg/domain-errors"
	"signalbox/pkg/platform/sentinel"
)

const caseNumberPrefix = "WB"

// maxIssueAttempts bounds the retry loop around the store's uniqueness
// constraints. With a 128-bit credential space a collision is effectively a
// store misconfiguration, so a handful of attempts is plenty.
const maxIssueAttempts = 5

// Issuer mints the identity of a new case: a per-tenant human-readable case
// number and a one-time access credential, persisted atomically with the case
// itself so a uniqueness race can be retried with fresh values.
type Issuer struct {
	store  CaseStore
	hasher *credential.Hasher
}

// NewIssuer creates an issuer over the given store and credential hasher.
func NewIssuer(store CaseStore, hasher *credential.Hasher) *Issuer {
	return &Issuer{store: store, hasher: hasher}
}

// nextCaseNumber derives the next sequential number for the tenant's current
// year, e.g. WB-2026-0007. Sequence gaps after failed attempts are fine; only
// uniqueness matters and the store enforces it.
func (i *Issuer) nextCaseNumber(ctx context.Context, tenantID id.TenantID, now time.Time) (string, error) {
	count, err := i.store.CountByTenantYear(ctx, tenantID, now.Year())
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%d-%04d", caseNumberPrefix, now.Year(), count+1), nil
}

// Issue builds and persists a new case. The returned string is the plaintext
// access credential: this is the only moment it exists server-side, callers
// must hand it to the reporter and drop it.
func (i *Issuer) Issue(ctx context.Context, tenantID id.TenantID, report models.Report, now time.Time) (*models.Case, string, error) {
	for attempt := 0; attempt < maxIssueAttempts; attempt++ {
		value, err := credential.Generate()
		if err != nil {
			return nil, "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to generate credential")
		}

		number, err := i.nextCaseNumber(ctx, tenantID, now)
		if err != nil {
			return nil, "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to derive case number")
		}

		c, err := models.NewCase(id.NewCaseID(), tenantID, number, i.hasher.Hash(value), report, now)
		if err != nil {
			return nil, "", err
		}

		err = i.store.Create(ctx, c)
		if err == nil {
			return c, value, nil
		}
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			// Case number or credential hash raced another insert; both are
			// regenerated on the next attempt.
			continue
		}
		return nil, "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to store case")
	}
	return nil, "", dErrors.New(dErrors.CodeIssuanceFailed, "could not issue a unique case identity")
}
