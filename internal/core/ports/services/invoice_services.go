package services

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/merchantledger/merchant_ledger_app/internal/core/domain"
	"github.com/merchantledger/merchant_ledger_app/internal/dto"
)

// InvoiceReaderSvc defines read operations for purchase invoices
type InvoiceReaderSvc interface {
	// GetInvoiceByID retrieves an invoice with its items.
	GetInvoiceByID(ctx context.Context, invoiceID string) (*domain.PurchaseInvoice, error)

	// ListAuditLog returns the invoice's transition history, oldest first.
	ListAuditLog(ctx context.Context, invoiceID string) ([]domain.InvoiceAuditLog, error)
}

// InvoiceWriterSvc defines write operations for purchase invoices
type InvoiceWriterSvc interface {
	// CreateInvoice persists a new DRAFT invoice with its items.
	CreateInvoice(ctx context.Context, req dto.CreateInvoiceRequest, creatorID string) (*domain.PurchaseInvoice, error)

	// AddItem appends an item to a DRAFT or REVIEWED invoice and refreshes totals.
	AddItem(ctx context.Context, invoiceID string, req dto.AddInvoiceItemRequest, actorID string) (*domain.PurchaseInvoice, error)

	// ApplyLandedCosts distributes freight/duty/handling across invoice items.
	ApplyLandedCosts(ctx context.Context, invoiceID string, req dto.ApplyLandedCostsRequest, actorID string) (*domain.PurchaseInvoice, error)

	// Transition moves the invoice through its lifecycle. Posting is not done
	// here; the intake flow drives the POSTED transition.
	Transition(ctx context.Context, invoiceID string, target domain.InvoiceStatus, note string, actorID string) (*domain.PurchaseInvoice, error)
}

// InvoiceTxSvc defines transition operations scoped to a caller-provided
// transaction.
type InvoiceTxSvc interface {
	// TransitionToPostedInTx locks the invoice, validates it is postable, and
	// moves it APPROVED -> POSTED with an audit record.
	TransitionToPostedInTx(ctx context.Context, tx pgx.Tx, invoiceID string, note string, actorID string) (*domain.PurchaseInvoice, error)
}

// InvoiceSvcFacade combines all invoice-related service interfaces
type InvoiceSvcFacade interface {
	InvoiceReaderSvc
	InvoiceWriterSvc
	InvoiceTxSvc
}
