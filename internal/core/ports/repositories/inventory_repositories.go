package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/merchantledger/merchant_ledger_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// InventoryReader defines read operations for stock and costing data.
type InventoryReader interface {
	// FindVariantCost returns a variant's current moving average cost.
	FindVariantCost(ctx context.Context, variantID string) (decimal.Decimal, error)

	// FindBatchesByVariant lists FIFO cost layers, oldest first.
	FindBatchesByVariant(ctx context.Context, variantID string) ([]domain.InventoryBatch, error)

	// FindCostHistoryByVariant lists the append-only cost audit trail, oldest first.
	FindCostHistoryByVariant(ctx context.Context, variantID string) ([]domain.CostHistory, error)
}

// InventoryTransactionSupport defines intake/release operations scoped to a
// caller-provided transaction.
type InventoryTransactionSupport interface {
	// CreateStockInEventInTx records one invoice posting into a warehouse.
	CreateStockInEventInTx(ctx context.Context, tx pgx.Tx, event domain.StockInEvent) error

	// CreateBatchInTx persists an immutable FIFO cost layer.
	CreateBatchInTx(ctx context.Context, tx pgx.Tx, batch domain.InventoryBatch) error

	// LockVariantCostInTx row-locks the variant and returns its current cost
	// price, serializing concurrent cost recomputations.
	LockVariantCostInTx(ctx context.Context, tx pgx.Tx, variantID string) (decimal.Decimal, error)

	// VariantOnHandInTx sums the variant's available quantity across all
	// warehouses as currently visible to the transaction.
	VariantOnHandInTx(ctx context.Context, tx pgx.Tx, variantID string) (decimal.Decimal, error)

	// AdjustWarehouseStockInTx increments (or creates) the available counter
	// for (warehouse, variant) by qtyDelta.
	AdjustWarehouseStockInTx(ctx context.Context, tx pgx.Tx, warehouseID, variantID string, qtyDelta decimal.Decimal, actorID string) error

	// UpdateVariantCostInTx persists a recomputed moving average cost.
	UpdateVariantCostInTx(ctx context.Context, tx pgx.Tx, variantID string, newCost decimal.Decimal) error

	// AppendCostHistoryInTx appends one cost-change audit record.
	AppendCostHistoryInTx(ctx context.Context, tx pgx.Tx, history domain.CostHistory) error

	// AppendStockMovementInTx appends one stock-movement audit record.
	AppendStockMovementInTx(ctx context.Context, tx pgx.Tx, movement domain.StockMovement) error
}

// InventoryRepositoryFacade combines all inventory-related repository interfaces.
type InventoryRepositoryFacade interface {
	InventoryReader
	InventoryTransactionSupport
}
