// Package tx carries a SQL transaction through the context so that several
// store writes can share one transaction without the stores knowing who
// started it. The runner in internal/platform/postgres is the only writer;
// stores only ever read with From.
package tx

import (
	"context"
	"database/sql"
)

type ctxKey struct{}

var txKey = ctxKey{}

// WithTx returns a context that routes store writes through the transaction.
func WithTx(ctx context.Context, tx *sql.Tx) context.Context {
	if tx == nil {
		return ctx
	}
	return context.WithValue(ctx, txKey, tx)
}

// From reports the transaction in ctx, if any. Stores fall back to their
// plain handle when there is none.
func From(ctx context.Context) (*sql.Tx, bool) {
	tx, ok := ctx.Value(txKey).(*sql.Tx)
	return tx, ok
}
