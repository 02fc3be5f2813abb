package tenants

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"signalbox/internal/tenant/models"
	id "signalbox/pkg/domain"
	"signalbox/pkg/platform/sentinel"
	txcontext "signalbox/pkg/platform/tx"
)

// PostgresStore persists tenants in the tenants table.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres creates a Postgres-backed tenant store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresStore) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *PostgresStore) Create(ctx context.Context, t *models.Tenant) error {
	_, err := s.execer(ctx).ExecContext(ctx,
		`INSERT INTO tenants (id, slug, name, created_at) VALUES ($1, $2, $3, $4)`,
		t.ID.String(), t.Slug, t.Name, t.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("insert tenant: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, tenantID id.TenantID) (*models.Tenant, error) {
	row := s.execer(ctx).QueryRowContext(ctx,
		`SELECT id, slug, name, created_at FROM tenants WHERE id = $1`, tenantID.String())
	return scanTenant(row)
}

func (s *PostgresStore) FindBySlug(ctx context.Context, slug string) (*models.Tenant, error) {
	row := s.execer(ctx).QueryRowContext(ctx,
		`SELECT id, slug, name, created_at FROM tenants WHERE slug = $1`, slug)
	return scanTenant(row)
}

func scanTenant(row *sql.Row) (*models.Tenant, error) {
	var (
		t     models.Tenant
		rawID string
	)
	if err := row.Scan(&rawID, &t.Slug, &t.Name, &t.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan tenant: %w", err)
	}
	tenantID, err := id.ParseTenantID(rawID)
	if err != nil {
		return nil, fmt.Errorf("scan tenant id: %w", err)
	}
	t.ID = tenantID
	return &t, nil
}
