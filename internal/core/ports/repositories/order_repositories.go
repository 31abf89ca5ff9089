package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/merchantledger/merchant_ledger_app/internal/core/domain"
)

// OrderReader defines read operations for sales orders and recognitions.
type OrderReader interface {
	// FindOrderByID retrieves an order with its items.
	FindOrderByID(ctx context.Context, orderID string) (*domain.SalesOrder, error)

	// FindRecognitionByOrderID retrieves the order's revenue recognition, or
	// ErrNotFound when revenue has not been recognized.
	FindRecognitionByOrderID(ctx context.Context, orderID string) (*domain.RevenueRecognition, error)

	// FindRecognitionByOrderIDInTx is FindRecognitionByOrderID as visible to a
	// caller-provided transaction.
	FindRecognitionByOrderIDInTx(ctx context.Context, tx pgx.Tx, orderID string) (*domain.RevenueRecognition, error)
}

// OrderWriter defines write operations for revenue recognitions.
type OrderWriter interface {
	// SaveRecognitionInTx persists a recognition. A concurrent duplicate for
	// the same order surfaces as ErrDuplicate.
	SaveRecognitionInTx(ctx context.Context, tx pgx.Tx, recognition domain.RevenueRecognition) error

	// SetRecognitionEntryIDsInTx links the posted journal entries back onto the
	// recognition record.
	SetRecognitionEntryIDsInTx(ctx context.Context, tx pgx.Tx, recognitionID string, revenueEntryID, cogsEntryID *string) error

	// UpdateRecognitionAmountsInTx rewrites the stored figures after a
	// proportional refund.
	UpdateRecognitionAmountsInTx(ctx context.Context, tx pgx.Tx, recognition domain.RevenueRecognition) error

	// DeleteRecognitionInTx removes the recognition on full cancellation, after
	// its journal effects have been reversed.
	DeleteRecognitionInTx(ctx context.Context, tx pgx.Tx, recognitionID string) error
}

// OrderRepositoryFacade combines all order-finance repository interfaces.
type OrderRepositoryFacade interface {
	OrderReader
	OrderWriter
}
