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

type PgxPayableRepository struct {
	BaseRepository
}

// newPgxPayableRepository creates a new repository for supplier obligations.
func newPgxPayableRepository(pool *pgxpool.Pool) portsrepo.PayableRepositoryFacade {
	return &PgxPayableRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxPayableRepository implements portsrepo.PayableRepositoryFacade
var _ portsrepo.PayableRepositoryFacade = (*PgxPayableRepository)(nil)

// FindSupplierByID retrieves a supplier with its running balance.
func (r *PgxPayableRepository) FindSupplierByID(ctx context.Context, supplierID string) (*domain.Supplier, error) {
	query := `
		SELECT supplier_id, name, balance, is_active, created_at, created_by, last_updated_at, last_updated_by
		FROM suppliers
		WHERE supplier_id = $1;
	`
	var s domain.Supplier
	err := r.Pool.QueryRow(ctx, query, supplierID).Scan(
		&s.SupplierID,
		&s.Name,
		&s.Balance,
		&s.IsActive,
		&s.CreatedAt,
		&s.CreatedBy,
		&s.LastUpdatedAt,
		&s.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find supplier %s: %w", supplierID, err)
	}
	return &s, nil
}

// FindPayableByInvoiceForUpdate retrieves and row-locks the AP record for an
// invoice within a transaction.
func (r *PgxPayableRepository) FindPayableByInvoiceForUpdate(ctx context.Context, tx pgx.Tx, invoiceID string) (*domain.AccountsPayable, error) {
	query := `
		SELECT payable_id, invoice_id, supplier_id, amount, status, created_at, created_by, last_updated_at, last_updated_by
		FROM accounts_payables
		WHERE invoice_id = $1
		FOR UPDATE;
	`
	var p domain.AccountsPayable
	err := tx.QueryRow(ctx, query, invoiceID).Scan(
		&p.PayableID,
		&p.InvoiceID,
		&p.SupplierID,
		&p.Amount,
		&p.Status,
		&p.CreatedAt,
		&p.CreatedBy,
		&p.LastUpdatedAt,
		&p.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to lock payable for invoice %s: %w", invoiceID, err)
	}
	return &p, nil
}

// SavePayableInTx persists a new AP record.
func (r *PgxPayableRepository) SavePayableInTx(ctx context.Context, tx pgx.Tx, payable domain.AccountsPayable) error {
	query := `
		INSERT INTO accounts_payables (payable_id, invoice_id, supplier_id, amount, status, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	_, err := tx.Exec(ctx, query,
		payable.PayableID,
		payable.InvoiceID,
		payable.SupplierID,
		payable.Amount,
		payable.Status,
		payable.CreatedAt,
		payable.CreatedBy,
		payable.LastUpdatedAt,
		payable.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to save payable %s: %w", payable.PayableID, err)
	}
	return nil
}

// UpdatePayableInTx rewrites an AP record's outstanding amount and status.
func (r *PgxPayableRepository) UpdatePayableInTx(ctx context.Context, tx pgx.Tx, payableID string, amount decimal.Decimal, status domain.PayableStatus, actorID string) error {
	query := `
		UPDATE accounts_payables
		SET amount = $2, status = $3, last_updated_at = $4, last_updated_by = $5
		WHERE payable_id = $1;
	`
	tag, err := tx.Exec(ctx, query, payableID, amount, status, time.Now().UTC(), actorID)
	if err != nil {
		return fmt.Errorf("failed to update payable %s: %w", payableID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// AdjustSupplierBalanceInTx atomically increments the supplier's running
// balance by delta.
func (r *PgxPayableRepository) AdjustSupplierBalanceInTx(ctx context.Context, tx pgx.Tx, supplierID string, delta decimal.Decimal, actorID string) error {
	query := `
		UPDATE suppliers
		SET balance = balance + $2, last_updated_at = $3, last_updated_by = $4
		WHERE supplier_id = $1;
	`
	tag, err := tx.Exec(ctx, query, supplierID, delta, time.Now().UTC(), actorID)
	if err != nil {
		return fmt.Errorf("failed to adjust balance for supplier %s: %w", supplierID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// SavePaymentInTx persists a supplier payment record.
func (r *PgxPayableRepository) SavePaymentInTx(ctx context.Context, tx pgx.Tx, payment domain.SupplierPayment) error {
	query := `
		INSERT INTO supplier_payments (payment_id, invoice_id, amount, treasury_account_id, method, reference, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	_, err := tx.Exec(ctx, query,
		payment.PaymentID,
		payment.InvoiceID,
		payment.Amount,
		payment.TreasuryAccountID,
		payment.Method,
		payment.Reference,
		payment.CreatedAt,
		payment.CreatedBy,
		payment.LastUpdatedAt,
		payment.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to save payment %s: %w", payment.PaymentID, err)
	}
	return nil
}
