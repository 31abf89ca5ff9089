package services

import (
	"context"

	"github.com/merchantledger/merchant_ledger_app/internal/core/domain"
	"github.com/merchantledger/merchant_ledger_app/internal/dto"
)

// IntakeSvcFacade drives the invoice posting flow: status transition, stock
// receipt, weighted-average cost update and ledger posting in one transaction.
type IntakeSvcFacade interface {
	// PostInvoice posts an APPROVED invoice into a warehouse.
	PostInvoice(ctx context.Context, invoiceID string, req dto.PostInvoiceRequest, actorID string) (*domain.StockInEvent, error)
}
