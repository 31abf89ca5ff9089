package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// TxManager runs a unit of work inside one database transaction. The function
// either commits as a whole or rolls back as a whole; callers retry the entire
// operation on failure, never individual steps.
type TxManager interface {
	// WithinTx runs fn inside a read-committed transaction.
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx pgx.Tx) error) error

	// WithinSerializableTx runs fn at serializable isolation. Required where a
	// read-then-write spans rows an idempotency or fan-out decision depends on.
	WithinSerializableTx(ctx context.Context, fn func(ctx context.Context, tx pgx.Tx) error) error
}
