package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/merchantledger/merchant_ledger_app/internal/apperrors"
	"github.com/merchantledger/merchant_ledger_app/internal/core/domain"
	portsrepo "github.com/merchantledger/merchant_ledger_app/internal/core/ports/repositories"
)

type PgxInventoryRepository struct {
	BaseRepository
}

// newPgxInventoryRepository creates a new repository for stock and costing data.
func newPgxInventoryRepository(pool *pgxpool.Pool) portsrepo.InventoryRepositoryFacade {
	return &PgxInventoryRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxInventoryRepository implements portsrepo.InventoryRepositoryFacade
var _ portsrepo.InventoryRepositoryFacade = (*PgxInventoryRepository)(nil)

// CreateStockInEventInTx records one invoice posting into a warehouse.
func (r *PgxInventoryRepository) CreateStockInEventInTx(ctx context.Context, tx pgx.Tx, event domain.StockInEvent) error {
	query := `
		INSERT INTO stock_in_events (stock_in_id, invoice_id, warehouse_id, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`
	_, err := tx.Exec(ctx, query,
		event.StockInID,
		event.InvoiceID,
		event.WarehouseID,
		event.CreatedAt,
		event.CreatedBy,
		event.LastUpdatedAt,
		event.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to create stock-in event %s: %w", event.StockInID, err)
	}
	return nil
}

// CreateBatchInTx persists an immutable FIFO cost layer.
func (r *PgxInventoryRepository) CreateBatchInTx(ctx context.Context, tx pgx.Tx, batch domain.InventoryBatch) error {
	query := `
		INSERT INTO inventory_batches (batch_id, variant_id, invoice_item_id, stock_in_id, initial_quantity, remaining_quantity, unit_cost, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`
	_, err := tx.Exec(ctx, query,
		batch.BatchID,
		batch.VariantID,
		batch.InvoiceItemID,
		batch.StockInID,
		batch.InitialQuantity,
		batch.RemainingQuantity,
		batch.UnitCost,
		batch.CreatedAt,
		batch.CreatedBy,
		batch.LastUpdatedAt,
		batch.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to create inventory batch %s: %w", batch.BatchID, err)
	}
	return nil
}

// LockVariantCostInTx row-locks the variant's cost row and returns the current
// cost price. A variant with no cost row yet gets one inserted at zero.
func (r *PgxInventoryRepository) LockVariantCostInTx(ctx context.Context, tx pgx.Tx, variantID string) (decimal.Decimal, error) {
	insert := `
		INSERT INTO variant_costs (variant_id, cost_price)
		VALUES ($1, 0)
		ON CONFLICT (variant_id) DO NOTHING;
	`
	if _, err := tx.Exec(ctx, insert, variantID); err != nil {
		return decimal.Zero, fmt.Errorf("failed to ensure cost row for variant %s: %w", variantID, err)
	}

	var cost decimal.Decimal
	query := `SELECT cost_price FROM variant_costs WHERE variant_id = $1 FOR UPDATE;`
	if err := tx.QueryRow(ctx, query, variantID).Scan(&cost); err != nil {
		return decimal.Zero, fmt.Errorf("failed to lock cost for variant %s: %w", variantID, err)
	}
	return cost, nil
}

// VariantOnHandInTx sums the variant's available quantity across warehouses.
func (r *PgxInventoryRepository) VariantOnHandInTx(ctx context.Context, tx pgx.Tx, variantID string) (decimal.Decimal, error) {
	var onHand decimal.Decimal
	query := `SELECT COALESCE(SUM(available), 0) FROM warehouse_stocks WHERE variant_id = $1;`
	if err := tx.QueryRow(ctx, query, variantID).Scan(&onHand); err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum on-hand for variant %s: %w", variantID, err)
	}
	return onHand, nil
}

// AdjustWarehouseStockInTx increments (or creates) the available counter for
// (warehouse, variant) by qtyDelta.
func (r *PgxInventoryRepository) AdjustWarehouseStockInTx(ctx context.Context, tx pgx.Tx, warehouseID, variantID string, qtyDelta decimal.Decimal, actorID string) error {
	query := `
		INSERT INTO warehouse_stocks (warehouse_id, variant_id, available, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, NOW(), $4, NOW(), $4)
		ON CONFLICT (warehouse_id, variant_id)
		DO UPDATE SET available = warehouse_stocks.available + EXCLUDED.available,
		              last_updated_at = NOW(), last_updated_by = EXCLUDED.last_updated_by;
	`
	if _, err := tx.Exec(ctx, query, warehouseID, variantID, qtyDelta, actorID); err != nil {
		return fmt.Errorf("failed to adjust stock for variant %s in warehouse %s: %w", variantID, warehouseID, err)
	}
	return nil
}

// UpdateVariantCostInTx persists a recomputed moving average cost.
func (r *PgxInventoryRepository) UpdateVariantCostInTx(ctx context.Context, tx pgx.Tx, variantID string, newCost decimal.Decimal) error {
	query := `UPDATE variant_costs SET cost_price = $2 WHERE variant_id = $1;`
	tag, err := tx.Exec(ctx, query, variantID, newCost)
	if err != nil {
		return fmt.Errorf("failed to update cost for variant %s: %w", variantID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// AppendCostHistoryInTx appends one cost-change audit record.
func (r *PgxInventoryRepository) AppendCostHistoryInTx(ctx context.Context, tx pgx.Tx, history domain.CostHistory) error {
	query := `
		INSERT INTO cost_histories (history_id, variant_id, old_cost, new_cost, reason, reference_id, created_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	_, err := tx.Exec(ctx, query,
		history.HistoryID,
		history.VariantID,
		history.OldCost,
		history.NewCost,
		history.Reason,
		history.ReferenceID,
		history.CreatedAt,
		history.CreatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to append cost history for variant %s: %w", history.VariantID, err)
	}
	return nil
}

// AppendStockMovementInTx appends one stock-movement audit record.
func (r *PgxInventoryRepository) AppendStockMovementInTx(ctx context.Context, tx pgx.Tx, movement domain.StockMovement) error {
	query := `
		INSERT INTO stock_movements (movement_id, warehouse_id, variant_id, movement_type, quantity, reference_id, notes, created_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	_, err := tx.Exec(ctx, query,
		movement.MovementID,
		movement.WarehouseID,
		movement.VariantID,
		movement.Type,
		movement.Quantity,
		movement.ReferenceID,
		movement.Notes,
		movement.CreatedAt,
		movement.CreatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to append stock movement %s: %w", movement.MovementID, err)
	}
	return nil
}

// FindVariantCost returns a variant's current moving average cost.
func (r *PgxInventoryRepository) FindVariantCost(ctx context.Context, variantID string) (decimal.Decimal, error) {
	var cost decimal.Decimal
	query := `SELECT cost_price FROM variant_costs WHERE variant_id = $1;`
	if err := r.Pool.QueryRow(ctx, query, variantID).Scan(&cost); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, apperrors.ErrNotFound
		}
		return decimal.Zero, fmt.Errorf("failed to find cost for variant %s: %w", variantID, err)
	}
	return cost, nil
}

// FindBatchesByVariant lists FIFO cost layers, oldest first.
func (r *PgxInventoryRepository) FindBatchesByVariant(ctx context.Context, variantID string) ([]domain.InventoryBatch, error) {
	query := `
		SELECT batch_id, variant_id, invoice_item_id, stock_in_id, initial_quantity, remaining_quantity, unit_cost, created_at, created_by, last_updated_at, last_updated_by
		FROM inventory_batches
		WHERE variant_id = $1
		ORDER BY created_at, batch_id;
	`
	rows, err := r.Pool.Query(ctx, query, variantID)
	if err != nil {
		return nil, fmt.Errorf("failed to query batches for variant %s: %w", variantID, err)
	}
	defer rows.Close()

	batches := []domain.InventoryBatch{}
	for rows.Next() {
		var b domain.InventoryBatch
		if err := rows.Scan(
			&b.BatchID,
			&b.VariantID,
			&b.InvoiceItemID,
			&b.StockInID,
			&b.InitialQuantity,
			&b.RemainingQuantity,
			&b.UnitCost,
			&b.CreatedAt,
			&b.CreatedBy,
			&b.LastUpdatedAt,
			&b.LastUpdatedBy,
		); err != nil {
			return nil, fmt.Errorf("failed to scan batch row: %w", err)
		}
		batches = append(batches, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating batch rows: %w", err)
	}
	return batches, nil
}

// FindCostHistoryByVariant lists the append-only cost audit trail, oldest first.
func (r *PgxInventoryRepository) FindCostHistoryByVariant(ctx context.Context, variantID string) ([]domain.CostHistory, error) {
	query := `
		SELECT history_id, variant_id, old_cost, new_cost, reason, reference_id, created_at, created_by
		FROM cost_histories
		WHERE variant_id = $1
		ORDER BY created_at, history_id;
	`
	rows, err := r.Pool.Query(ctx, query, variantID)
	if err != nil {
		return nil, fmt.Errorf("failed to query cost history for variant %s: %w", variantID, err)
	}
	defer rows.Close()

	histories := []domain.CostHistory{}
	for rows.Next() {
		var h domain.CostHistory
		if err := rows.Scan(
			&h.HistoryID,
			&h.VariantID,
			&h.OldCost,
			&h.NewCost,
			&h.Reason,
			&h.ReferenceID,
			&h.CreatedAt,
			&h.CreatedBy,
		); err != nil {
			return nil, fmt.Errorf("failed to scan cost history row: %w", err)
		}
		histories = append(histories, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cost history rows: %w", err)
	}
	return histories, nil
}
