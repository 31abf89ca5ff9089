package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/merchantledger/merchant_ledger_app/internal/apperrors"
	"github.com/merchantledger/merchant_ledger_app/internal/core/domain"
	portsrepo "github.com/merchantledger/merchant_ledger_app/internal/core/ports/repositories"
)

type PgxCapitalRepository struct {
	BaseRepository
}

// newPgxCapitalRepository creates a new repository for investor capital data.
func newPgxCapitalRepository(pool *pgxpool.Pool) portsrepo.CapitalRepositoryFacade {
	return &PgxCapitalRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxCapitalRepository implements portsrepo.CapitalRepositoryFacade
var _ portsrepo.CapitalRepositoryFacade = (*PgxCapitalRepository)(nil)

const investorColumns = `investor_id, name, net_contributed, current_share, is_active, joined_at, created_at, created_by, last_updated_at, last_updated_by`

func scanInvestor(row pgx.Row) (domain.Investor, error) {
	var inv domain.Investor
	err := row.Scan(
		&inv.InvestorID,
		&inv.Name,
		&inv.NetContributed,
		&inv.CurrentShare,
		&inv.IsActive,
		&inv.JoinedAt,
		&inv.CreatedAt,
		&inv.CreatedBy,
		&inv.LastUpdatedAt,
		&inv.LastUpdatedBy,
	)
	return inv, err
}

// ListInvestorsForUpdate retrieves and row-locks all active investors, ordered
// by ID to keep lock acquisition deterministic.
func (r *PgxCapitalRepository) ListInvestorsForUpdate(ctx context.Context, tx pgx.Tx) ([]domain.Investor, error) {
	query := `SELECT ` + investorColumns + ` FROM investors WHERE is_active = TRUE ORDER BY investor_id FOR UPDATE;`
	rows, err := tx.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to lock investors: %w", err)
	}
	defer rows.Close()

	investors := []domain.Investor{}
	for rows.Next() {
		inv, err := scanInvestor(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan investor row: %w", err)
		}
		investors = append(investors, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating investor rows: %w", err)
	}
	return investors, nil
}

// FindInvestorByID retrieves one investor.
func (r *PgxCapitalRepository) FindInvestorByID(ctx context.Context, investorID string) (*domain.Investor, error) {
	query := `SELECT ` + investorColumns + ` FROM investors WHERE investor_id = $1;`
	inv, err := scanInvestor(r.Pool.QueryRow(ctx, query, investorID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find investor %s: %w", investorID, err)
	}
	return &inv, nil
}

// SaveCapitalTransactionInTx persists one deposit/withdrawal record.
func (r *PgxCapitalRepository) SaveCapitalTransactionInTx(ctx context.Context, tx pgx.Tx, capitalTx domain.CapitalTransaction) error {
	query := `
		INSERT INTO capital_transactions (transaction_id, investor_id, transaction_type, amount, description, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	_, err := tx.Exec(ctx, query,
		capitalTx.TransactionID,
		capitalTx.InvestorID,
		capitalTx.Type,
		capitalTx.Amount,
		capitalTx.Description,
		capitalTx.CreatedAt,
		capitalTx.CreatedBy,
		capitalTx.LastUpdatedAt,
		capitalTx.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to save capital transaction %s: %w", capitalTx.TransactionID, err)
	}
	return nil
}

// UpdateInvestorContributionInTx rewrites an investor's net contributed capital.
func (r *PgxCapitalRepository) UpdateInvestorContributionInTx(ctx context.Context, tx pgx.Tx, investorID string, netContributed decimal.Decimal, actorID string, now time.Time) error {
	query := `
		UPDATE investors
		SET net_contributed = $2, last_updated_at = $3, last_updated_by = $4
		WHERE investor_id = $1;
	`
	tag, err := tx.Exec(ctx, query, investorID, netContributed, now, actorID)
	if err != nil {
		return fmt.Errorf("failed to update contribution for investor %s: %w", investorID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// UpdateInvestorSharesInTx rewrites current shares for all listed investors.
func (r *PgxCapitalRepository) UpdateInvestorSharesInTx(ctx context.Context, tx pgx.Tx, shares map[string]decimal.Decimal, actorID string, now time.Time) error {
	if len(shares) == 0 {
		return nil
	}
	query := `
		UPDATE investors
		SET current_share = $2, last_updated_at = $3, last_updated_by = $4
		WHERE investor_id = $1;
	`
	batch := &pgx.Batch{}
	for investorID, share := range shares {
		batch.Queue(query, investorID, share, now, actorID)
	}
	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return fmt.Errorf("failed to update investor shares: %w", err)
	}
	return nil
}
