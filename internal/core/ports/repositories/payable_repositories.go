package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/merchantledger/merchant_ledger_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// PayableReader defines read operations for supplier obligations.
type PayableReader interface {
	// FindSupplierByID retrieves a supplier with its running balance.
	FindSupplierByID(ctx context.Context, supplierID string) (*domain.Supplier, error)

	// FindPayableByInvoiceForUpdate retrieves and row-locks the AP record for
	// an invoice within a transaction.
	FindPayableByInvoiceForUpdate(ctx context.Context, tx pgx.Tx, invoiceID string) (*domain.AccountsPayable, error)
}

// PayableWriter defines write operations for supplier obligations.
type PayableWriter interface {
	// SavePayableInTx persists a new AP record.
	SavePayableInTx(ctx context.Context, tx pgx.Tx, payable domain.AccountsPayable) error

	// UpdatePayableInTx rewrites an AP record's outstanding amount and status.
	UpdatePayableInTx(ctx context.Context, tx pgx.Tx, payableID string, amount decimal.Decimal, status domain.PayableStatus, actorID string) error

	// AdjustSupplierBalanceInTx atomically increments the supplier's running
	// balance by delta (negative to decrement).
	AdjustSupplierBalanceInTx(ctx context.Context, tx pgx.Tx, supplierID string, delta decimal.Decimal, actorID string) error

	// SavePaymentInTx persists a supplier payment record.
	SavePaymentInTx(ctx context.Context, tx pgx.Tx, payment domain.SupplierPayment) error
}

// PayableRepositoryFacade combines all payable-related repository interfaces.
type PayableRepositoryFacade interface {
	PayableReader
	PayableWriter
}
