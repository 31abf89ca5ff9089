package pgsql

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/merchantledger/merchant_ledger_app/internal/apperrors"
	portsrepo "github.com/merchantledger/merchant_ledger_app/internal/core/ports/repositories"
)

// BaseRepository provides common functionality for all repositories
type BaseRepository struct {
	Pool *pgxpool.Pool
}

// Begin starts a new database transaction
func (r *BaseRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.Pool.Begin(ctx)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to begin transaction", err)
	}
	return tx, nil
}

// Commit commits a transaction
func (r *BaseRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	if err := tx.Commit(ctx); err != nil {
		return apperrors.NewAppError(500, "failed to commit transaction", err)
	}
	return nil
}

// Rollback rolls back a transaction
func (r *BaseRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	if err := tx.Rollback(ctx); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return apperrors.NewAppError(500, "failed to rollback transaction", err)
	}
	return nil
}

// pgxTxManager implements portsrepo.TxManager on a pgx pool.
type pgxTxManager struct {
	pool *pgxpool.Pool
}

// NewTxManager creates a transaction manager for the pool.
func NewTxManager(pool *pgxpool.Pool) portsrepo.TxManager {
	return &pgxTxManager{pool: pool}
}

var _ portsrepo.TxManager = (*pgxTxManager)(nil)

func (m *pgxTxManager) withinTx(ctx context.Context, opts pgx.TxOptions, fn func(ctx context.Context, tx pgx.Tx) error) error {
	tx, err := m.pool.BeginTx(ctx, opts)
	if err != nil {
		return apperrors.NewAppError(500, "failed to begin transaction", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(ctx, tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return apperrors.NewAppError(500, "failed to commit transaction", err)
	}
	return nil
}

// WithinTx runs fn inside a read-committed transaction.
func (m *pgxTxManager) WithinTx(ctx context.Context, fn func(ctx context.Context, tx pgx.Tx) error) error {
	return m.withinTx(ctx, pgx.TxOptions{}, fn)
}

// WithinSerializableTx runs fn at serializable isolation.
func (m *pgxTxManager) WithinSerializableTx(ctx context.Context, fn func(ctx context.Context, tx pgx.Tx) error) error {
	return m.withinTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable}, fn)
}
