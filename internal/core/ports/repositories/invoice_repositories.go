package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/merchantledger/merchant_ledger_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// InvoiceReader defines read operations for purchase invoices.
type InvoiceReader interface {
	// FindInvoiceByID retrieves an invoice with its items.
	FindInvoiceByID(ctx context.Context, invoiceID string) (*domain.PurchaseInvoice, error)

	// FindInvoiceByIDForUpdate retrieves and row-locks an invoice (with items)
	// within a transaction.
	FindInvoiceByIDForUpdate(ctx context.Context, tx pgx.Tx, invoiceID string) (*domain.PurchaseInvoice, error)

	// ListAuditLog returns the append-only transition history, oldest first.
	ListAuditLog(ctx context.Context, invoiceID string) ([]domain.InvoiceAuditLog, error)
}

// InvoiceWriter defines write operations for purchase invoices.
type InvoiceWriter interface {
	// SaveInvoice persists a new invoice header and any initial items.
	SaveInvoice(ctx context.Context, invoice domain.PurchaseInvoice) error

	// SaveItemInTx appends one item to a DRAFT/REVIEWED invoice.
	SaveItemInTx(ctx context.Context, tx pgx.Tx, item domain.PurchaseInvoiceItem) error

	// UpdateTotalsInTx rewrites the invoice's derived totals.
	UpdateTotalsInTx(ctx context.Context, tx pgx.Tx, invoice domain.PurchaseInvoice) error

	// UpdateStatusInTx moves the invoice to a new lifecycle status. postedDate
	// is set only for the POSTED transition.
	UpdateStatusInTx(ctx context.Context, tx pgx.Tx, invoiceID string, status domain.InvoiceStatus, postedDate *time.Time, actorID string, now time.Time) error

	// UpdateItemFinalCostsInTx stores landed-cost-adjusted unit costs per item.
	UpdateItemFinalCostsInTx(ctx context.Context, tx pgx.Tx, finalUnitCosts map[string]decimal.Decimal) error

	// UpdatePaymentAmountsInTx rewrites paid/remaining amounts and the payment
	// status after a supplier payment.
	UpdatePaymentAmountsInTx(ctx context.Context, tx pgx.Tx, invoiceID string, paid, remaining decimal.Decimal, paymentStatus domain.InvoicePaymentStatus, actorID string, now time.Time) error

	// AppendAuditLogInTx appends one immutable transition record.
	AppendAuditLogInTx(ctx context.Context, tx pgx.Tx, log domain.InvoiceAuditLog) error
}

// InvoiceRepositoryFacade combines all invoice-related repository interfaces.
type InvoiceRepositoryFacade interface {
	InvoiceReader
	InvoiceWriter
}
