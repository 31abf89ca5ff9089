package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
)

// PeriodRepositoryFacade consults the accounting-period lock service. Revenue
// may not be recognized into a closed period.
type PeriodRepositoryFacade interface {
	// IsDateClosedInTx reports whether the date falls inside a closed period.
	IsDateClosedInTx(ctx context.Context, tx pgx.Tx, date time.Time) (bool, error)
}
