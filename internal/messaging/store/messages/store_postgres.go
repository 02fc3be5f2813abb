package messages

import (
	"context"
	"database/sql"
	"fmt"

	"signalbox/internal/messaging/models"
	id "signalbox/pkg/domain"
	txcontext "signalbox/pkg/platform/tx"
)

// PostgresStore persists messages in the messages table.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres creates a Postgres-backed message store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (s *PostgresStore) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

// Append inserts one message row.
func (s *PostgresStore) Append(ctx context.Context, m *models.Message) error {
	query := `
		INSERT INTO messages (id, case_id, sender, body, is_internal, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := s.execer(ctx).ExecContext(ctx, query,
		m.ID.String(), m.CaseID.String(), string(m.Sender), m.Body, m.IsInternal, m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

// ListByCase returns a case's full thread ordered by created_at ascending.
func (s *PostgresStore) ListByCase(ctx context.Context, caseID id.CaseID) ([]*models.Message, error) {
	query := `
		SELECT id, case_id, sender, body, is_internal, created_at
		FROM messages
		WHERE case_id = $1
		ORDER BY created_at ASC
	`
	rows, err := s.execer(ctx).QueryContext(ctx, query, caseID.String())
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	var out []*models.Message
	for rows.Next() {
		var (
			m                    models.Message
			rawID, rawCase, sndr string
		)
		if err := rows.Scan(&rawID, &rawCase, &sndr, &m.Body, &m.IsInternal, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		messageID, err := id.ParseMessageID(rawID)
		if err != nil {
			return nil, fmt.Errorf("scan message id: %w", err)
		}
		parsedCaseID, err := id.ParseCaseID(rawCase)
		if err != nil {
			return nil, fmt.Errorf("scan message case id: %w", err)
		}
		m.ID = messageID
		m.CaseID = parsedCaseID
		m.Sender = models.Sender(sndr)
		out = append(out, &m)
	}
	return out, rows.Err()
}
