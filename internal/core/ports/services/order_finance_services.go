package services

import (
	"context"

	"github.com/merchantledger/merchant_ledger_app/internal/core/domain"
	"github.com/merchantledger/merchant_ledger_app/internal/dto"
)

// OrderFinanceSvcFacade owns the financial lifecycle of sales orders:
// payment receipt, revenue recognition, refunds and cancellation.
type OrderFinanceSvcFacade interface {
	// RecordPaymentReceipt records a prepaid collection as deferred revenue.
	// Cash-on-delivery orders are a no-op and return a nil entry.
	RecordPaymentReceipt(ctx context.Context, orderID string, actorID string) (*domain.JournalEntry, error)

	// RecognizeRevenue recognizes an order's revenue and cost of goods sold.
	// Calling it again for the same order is a benign no-op.
	RecognizeRevenue(ctx context.Context, orderID string, actorID string) (*domain.RevenueRecognition, error)

	// RefundOrder proportionally unwinds recognized figures for a partial refund.
	RefundOrder(ctx context.Context, orderID string, req dto.RefundOrderRequest, actorID string) (*domain.RevenueRecognition, error)

	// CancelOrder reverses the order's journal entries, removes its
	// recognition and returns shipped stock to the warehouse.
	CancelOrder(ctx context.Context, orderID string, reason string, actorID string) error
}
