package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/merchantledger/merchant_ledger_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CapitalRepositoryFacade defines persistence for investors and their capital
// transactions. Share recomputation fans out across every investor, so writes
// happen under a transaction that locked the whole table slice.
type CapitalRepositoryFacade interface {
	// ListInvestorsForUpdate retrieves and row-locks all active investors.
	ListInvestorsForUpdate(ctx context.Context, tx pgx.Tx) ([]domain.Investor, error)

	// SaveCapitalTransactionInTx persists one deposit/withdrawal record.
	SaveCapitalTransactionInTx(ctx context.Context, tx pgx.Tx, capitalTx domain.CapitalTransaction) error

	// UpdateInvestorContributionInTx rewrites an investor's net contributed capital.
	UpdateInvestorContributionInTx(ctx context.Context, tx pgx.Tx, investorID string, netContributed decimal.Decimal, actorID string, now time.Time) error

	// UpdateInvestorSharesInTx rewrites current shares for all listed investors.
	UpdateInvestorSharesInTx(ctx context.Context, tx pgx.Tx, shares map[string]decimal.Decimal, actorID string, now time.Time) error

	// FindInvestorByID retrieves one investor.
	FindInvestorByID(ctx context.Context, investorID string) (*domain.Investor, error)
}
