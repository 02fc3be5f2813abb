// Package models defines the organizations the reporting channel serves.
package models

import (
	"regexp"
	"strings"
	"time"

	id "signalbox/pkg/domain"
	dErrors "signalbox/pkg/domain-errors"
)

// slugPattern keeps slugs URL-safe: lowercase alphanumerics and single
// hyphens, 2-64 characters.
var slugPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// Tenant is one organization with its own reporting channel. Every case and
// every staff actor belongs to exactly one tenant.
type Tenant struct {
	ID        id.TenantID `json:"id"`
	Slug      string      `json:"slug"`
	Name      string      `json:"name"`
	CreatedAt time.Time   `json:"created_at"`
}

// NewTenant validates and builds a tenant.
func NewTenant(slug, name string, now time.Time) (*Tenant, error) {
	slug = strings.TrimSpace(slug)
	name = strings.TrimSpace(name)
	if len(slug) < 2 || len(slug) > 64 || !slugPattern.MatchString(slug) {
		return nil, dErrors.New(dErrors.CodeValidation, "invalid tenant slug")
	}
	if name == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "tenant name is required")
	}
	return &Tenant{
		ID:        id.NewTenantID(),
		Slug:      slug,
		Name:      name,
		CreatedAt: now,
	}, nil
}
