// Package postgres opens the shared database handle and owns the schema the
// reporting core persists: one cases table, one messages table, one tenants
// table. Uniqueness the domain depends on (case number per tenant, credential
// hash globally) is enforced here by constraints, not by application checks
// alone.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	txcontext "signalbox/pkg/platform/tx"
)

// Schema creates all tables the core owns. Idempotent.
const Schema = `
CREATE TABLE IF NOT EXISTS tenants (
	id          UUID PRIMARY KEY,
	slug        TEXT NOT NULL,
	name        TEXT NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL,
	CONSTRAINT tenants_slug_unique UNIQUE (slug)
);

CREATE TABLE IF NOT EXISTS cases (
	id               UUID PRIMARY KEY,
	tenant_id        UUID NOT NULL REFERENCES tenants (id),
	case_number      TEXT NOT NULL,
	credential_hash  TEXT NOT NULL,
	category         TEXT NOT NULL,
	title            TEXT NOT NULL,
	description      TEXT NOT NULL,
	occurred_at      TIMESTAMPTZ,
	location         TEXT,
	involved_persons TEXT,
	witnesses        TEXT,
	is_anonymous     BOOLEAN NOT NULL,
	reporter_name    TEXT,
	reporter_email   TEXT,
	reporter_phone   TEXT,
	status           TEXT NOT NULL,
	severity         TEXT NOT NULL,
	received_at      TIMESTAMPTZ NOT NULL,
	acknowledged_at  TIMESTAMPTZ,
	investigated_at  TIMESTAMPTZ,
	closed_at        TIMESTAMPTZ,
	CONSTRAINT cases_number_per_tenant_unique UNIQUE (tenant_id, case_number),
	CONSTRAINT cases_credential_hash_unique UNIQUE (credential_hash)
);

CREATE INDEX IF NOT EXISTS cases_tenant_status_idx ON cases (tenant_id, status, received_at DESC);

CREATE TABLE IF NOT EXISTS messages (
	id          UUID PRIMARY KEY,
	case_id     UUID NOT NULL REFERENCES cases (id),
	sender      TEXT NOT NULL,
	body        TEXT NOT NULL,
	is_internal BOOLEAN NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS messages_case_created_idx ON messages (case_id, created_at ASC);
`

// Open connects to Postgres through the pgx stdlib driver and verifies the
// connection.
func Open(url string) (*sql.DB, error) {
	db, err := sql.Open("pgx", url)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetConnMaxIdleTime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// Migrate applies the schema.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// TxRunner runs a callback inside one SQL transaction. The transaction rides
// the context, so every store write made through the callback's context lands
// in the same transaction and commits or rolls back as a unit.
type TxRunner struct {
	db *sql.DB
}

// NewTxRunner creates a TxRunner over the shared handle.
func NewTxRunner(db *sql.DB) *TxRunner {
	return &TxRunner{db: db}
}

// RunInTx begins a transaction, runs fn with the transaction in context, and
// commits when fn returns nil. Any error rolls everything back.
func (r *TxRunner) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	sqlTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		_ = sqlTx.Rollback()
	}()

	if err := fn(txcontext.WithTx(ctx, sqlTx)); err != nil {
		return err
	}
	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
