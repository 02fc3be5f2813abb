package cases

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"signalbox/internal/reportcase/models"
	id "signalbox/pkg/domain"
	"signalbox/pkg/platform/sentinel"
	txcontext "signalbox/pkg/platform/tx"
)

// PostgresStore persists cases in the cases table. Uniqueness lives in the
// schema constraints; this store just translates violations into sentinels.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres creates a Postgres-backed case store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresStore) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

const caseColumns = `id, tenant_id, case_number, credential_hash, category, title,
	description, occurred_at, location, involved_persons, witnesses,
	is_anonymous, reporter_name, reporter_email, reporter_phone,
	status, severity, received_at, acknowledged_at, investigated_at, closed_at`

// Create inserts the case row. The unique constraints on
// (tenant_id, case_number) and credential_hash surface as ErrAlreadyUsed so
// the issuer can retry with fresh values.
func (s *PostgresStore) Create(ctx context.Context, c *models.Case) error {
	query := `
		INSERT INTO cases (` + caseColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
	`
	_, err := s.execer(ctx).ExecContext(ctx, query,
		c.ID.String(), c.TenantID.String(), c.CaseNumber, c.CredentialHash,
		c.Category, c.Title, c.Description,
		c.OccurredAt, nullable(c.Location), nullable(c.InvolvedPersons), nullable(c.Witnesses),
		c.IsAnonymous, nullable(c.ReporterName), nullable(c.ReporterEmail), nullable(c.ReporterPhone),
		string(c.Status), string(c.Severity),
		c.ReceivedAt, c.AcknowledgedAt, c.InvestigatedAt, c.ClosedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("insert case: %w", err)
	}
	return nil
}

// FindByID retrieves a case scoped by tenant.
func (s *PostgresStore) FindByID(ctx context.Context, tenantID id.TenantID, caseID id.CaseID) (*models.Case, error) {
	query := `SELECT ` + caseColumns + ` FROM cases WHERE id = $1 AND tenant_id = $2`
	return s.scanOne(s.execer(ctx).QueryRowContext(ctx, query, caseID.String(), tenantID.String()))
}

// FindByCredentialHash retrieves a case by exact hash match with no tenant
// filter: the credential is globally unique and sufficient.
func (s *PostgresStore) FindByCredentialHash(ctx context.Context, hash string) (*models.Case, error) {
	query := `SELECT ` + caseColumns + ` FROM cases WHERE credential_hash = $1`
	return s.scanOne(s.execer(ctx).QueryRowContext(ctx, query, hash))
}

// ListByTenant returns a tenant's cases, newest first, optionally filtered
// by status.
func (s *PostgresStore) ListByTenant(ctx context.Context, tenantID id.TenantID, status *models.Status) ([]*models.Case, error) {
	query := `SELECT ` + caseColumns + ` FROM cases WHERE tenant_id = $1`
	args := []any{tenantID.String()}
	if status != nil {
		query += ` AND status = $2`
		args = append(args, string(*status))
	}
	query += ` ORDER BY received_at DESC`

	rows, err := s.execer(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list cases: %w", err)
	}
	defer rows.Close()

	var out []*models.Case
	for rows.Next() {
		c, err := scanCase(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// CountByTenantYear counts a tenant's cases received in the given year.
func (s *PostgresStore) CountByTenantYear(ctx context.Context, tenantID id.TenantID, year int) (int, error) {
	query := `
		SELECT COUNT(*) FROM cases
		WHERE tenant_id = $1 AND date_part('year', received_at) = $2
	`
	var count int
	if err := s.execer(ctx).QueryRowContext(ctx, query, tenantID.String(), year).Scan(&count); err != nil {
		return 0, fmt.Errorf("count cases: %w", err)
	}
	return count, nil
}

// UpdateStatus is the compare-and-swap on (caseId, status): the row only
// changes if it still holds the expected status, so two concurrent staff
// actions cannot both succeed.
func (s *PostgresStore) UpdateStatus(ctx context.Context, c *models.Case, expected models.Status) error {
	query := `
		UPDATE cases
		SET status = $1, acknowledged_at = $2, investigated_at = $3, closed_at = $4
		WHERE id = $5 AND tenant_id = $6 AND status = $7
	`
	res, err := s.execer(ctx).ExecContext(ctx, query,
		string(c.Status), c.AcknowledgedAt, c.InvestigatedAt, c.ClosedAt,
		c.ID.String(), c.TenantID.String(), string(expected),
	)
	if err != nil {
		return fmt.Errorf("update case status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update case status: %w", err)
	}
	if affected == 0 {
		// Distinguish a lost race from a missing case.
		if _, findErr := s.FindByID(ctx, c.TenantID, c.ID); findErr != nil {
			return sentinel.ErrNotFound
		}
		return sentinel.ErrConflict
	}
	return nil
}

// UpdateSeverity persists a staff severity assessment.
func (s *PostgresStore) UpdateSeverity(ctx context.Context, tenantID id.TenantID, caseID id.CaseID, severity models.Severity) error {
	res, err := s.execer(ctx).ExecContext(ctx,
		`UPDATE cases SET severity = $1 WHERE id = $2 AND tenant_id = $3`,
		string(severity), caseID.String(), tenantID.String(),
	)
	if err != nil {
		return fmt.Errorf("update case severity: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update case severity: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *PostgresStore) scanOne(row *sql.Row) (*models.Case, error) {
	c, err := scanCase(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

func scanCase(row rowScanner) (*models.Case, error) {
	var (
		c                                   models.Case
		rawID, rawTenant, status, severity  string
		location, involved, witnesses       sql.NullString
		reporterName, reporterEmail, phone  sql.NullString
	)
	err := row.Scan(
		&rawID, &rawTenant, &c.CaseNumber, &c.CredentialHash,
		&c.Category, &c.Title, &c.Description,
		&c.OccurredAt, &location, &involved, &witnesses,
		&c.IsAnonymous, &reporterName, &reporterEmail, &phone,
		&status, &severity,
		&c.ReceivedAt, &c.AcknowledgedAt, &c.InvestigatedAt, &c.ClosedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan case: %w", err)
	}

	caseID, err := id.ParseCaseID(rawID)
	if err != nil {
		return nil, fmt.Errorf("scan case id: %w", err)
	}
	tenantID, err := id.ParseTenantID(rawTenant)
	if err != nil {
		return nil, fmt.Errorf("scan tenant id: %w", err)
	}
	c.ID = caseID
	c.TenantID = tenantID
	c.Status = models.Status(status)
	c.Severity = models.Severity(severity)
	c.Location = location.String
	c.InvolvedPersons = involved.String
	c.Witnesses = witnesses.String
	c.ReporterName = reporterName.String
	c.ReporterEmail = reporterEmail.String
	c.ReporterPhone = phone.String
	return &c, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
