package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	portsrepo "github.com/merchantledger/merchant_ledger_app/internal/core/ports/repositories"
)

type PgxPeriodRepository struct {
	BaseRepository
}

// newPgxPeriodRepository creates a new repository for accounting period locks.
func newPgxPeriodRepository(pool *pgxpool.Pool) portsrepo.PeriodRepositoryFacade {
	return &PgxPeriodRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxPeriodRepository implements portsrepo.PeriodRepositoryFacade
var _ portsrepo.PeriodRepositoryFacade = (*PgxPeriodRepository)(nil)

// IsDateClosedInTx reports whether the date falls inside a closed period.
func (r *PgxPeriodRepository) IsDateClosedInTx(ctx context.Context, tx pgx.Tx, date time.Time) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM closed_periods
			WHERE $1::date BETWEEN starts_on AND ends_on
		);
	`
	var closed bool
	if err := tx.QueryRow(ctx, query, date).Scan(&closed); err != nil {
		return false, fmt.Errorf("failed to check closed periods: %w", err)
	}
	return closed, nil
}
