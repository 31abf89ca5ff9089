package services

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/merchantledger/merchant_ledger_app/internal/core/domain"
	"github.com/merchantledger/merchant_ledger_app/internal/dto"
)

// PayableSvcFacade manages supplier obligations and their settlement.
type PayableSvcFacade interface {
	// CreateObligationInTx posts the invoice's grand total to the ledger
	// (inventory against accounts payable), opens the AP record and bumps the
	// supplier balance. Called from the intake flow.
	CreateObligationInTx(ctx context.Context, tx pgx.Tx, invoice *domain.PurchaseInvoice, actorID string) (*domain.AccountsPayable, error)

	// RecordPayment settles part or all of an invoice obligation from a
	// treasury account.
	RecordPayment(ctx context.Context, invoiceID string, req dto.RecordSupplierPaymentRequest, actorID string) (*domain.SupplierPayment, error)
}
