package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/merchantledger/merchant_ledger_app/internal/apperrors"
	"github.com/merchantledger/merchant_ledger_app/internal/core/domain"
	portsrepo "github.com/merchantledger/merchant_ledger_app/internal/core/ports/repositories"
)

type PgxOrderRepository struct {
	BaseRepository
}

// newPgxOrderRepository creates a new repository for sales orders and revenue
// recognitions.
func newPgxOrderRepository(pool *pgxpool.Pool) portsrepo.OrderRepositoryFacade {
	return &PgxOrderRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxOrderRepository implements portsrepo.OrderRepositoryFacade
var _ portsrepo.OrderRepositoryFacade = (*PgxOrderRepository)(nil)

// FindOrderByID retrieves an order with its items.
func (r *PgxOrderRepository) FindOrderByID(ctx context.Context, orderID string) (*domain.SalesOrder, error) {
	query := `
		SELECT order_id, total, discount_amount, payment_method, coupon_code
		FROM sales_orders
		WHERE order_id = $1;
	`
	var order domain.SalesOrder
	err := r.Pool.QueryRow(ctx, query, orderID).Scan(
		&order.OrderID,
		&order.Total,
		&order.DiscountAmount,
		&order.PaymentMethod,
		&order.CouponCode,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find order %s: %w", orderID, err)
	}

	itemQuery := `
		SELECT item_id, order_id, variant_id, quantity, cost_at_purchase, warehouse_id
		FROM sales_order_items
		WHERE order_id = $1
		ORDER BY item_id;
	`
	rows, err := r.Pool.Query(ctx, itemQuery, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to query items for order %s: %w", orderID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var item domain.SalesOrderItem
		if err := rows.Scan(
			&item.ItemID,
			&item.OrderID,
			&item.VariantID,
			&item.Quantity,
			&item.CostAtPurchase,
			&item.WarehouseID,
		); err != nil {
			return nil, fmt.Errorf("failed to scan order item row: %w", err)
		}
		order.Items = append(order.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating order item rows: %w", err)
	}
	return &order, nil
}

const recognitionColumns = `recognition_id, order_id, gross_revenue, discount_amount, tax_amount, net_revenue, cogs_amount, gross_profit, revenue_entry_id, cogs_entry_id, recognized_at, recognized_by`

func scanRecognition(row pgx.Row) (domain.RevenueRecognition, error) {
	var rec domain.RevenueRecognition
	err := row.Scan(
		&rec.RecognitionID,
		&rec.OrderID,
		&rec.GrossRevenue,
		&rec.DiscountAmount,
		&rec.TaxAmount,
		&rec.NetRevenue,
		&rec.COGSAmount,
		&rec.GrossProfit,
		&rec.RevenueEntryID,
		&rec.COGSEntryID,
		&rec.RecognizedAt,
		&rec.RecognizedBy,
	)
	return rec, err
}

// FindRecognitionByOrderID retrieves the order's revenue recognition.
func (r *PgxOrderRepository) FindRecognitionByOrderID(ctx context.Context, orderID string) (*domain.RevenueRecognition, error) {
	query := `SELECT ` + recognitionColumns + ` FROM revenue_recognitions WHERE order_id = $1;`
	rec, err := scanRecognition(r.Pool.QueryRow(ctx, query, orderID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find recognition for order %s: %w", orderID, err)
	}
	return &rec, nil
}

// FindRecognitionByOrderIDInTx is FindRecognitionByOrderID as visible to a
// caller-provided transaction.
func (r *PgxOrderRepository) FindRecognitionByOrderIDInTx(ctx context.Context, tx pgx.Tx, orderID string) (*domain.RevenueRecognition, error) {
	query := `SELECT ` + recognitionColumns + ` FROM revenue_recognitions WHERE order_id = $1;`
	rec, err := scanRecognition(tx.QueryRow(ctx, query, orderID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find recognition for order %s: %w", orderID, err)
	}
	return &rec, nil
}

// SaveRecognitionInTx persists a recognition. The unique index on order_id
// surfaces concurrent duplicates as ErrDuplicate.
func (r *PgxOrderRepository) SaveRecognitionInTx(ctx context.Context, tx pgx.Tx, recognition domain.RevenueRecognition) error {
	query := `
		INSERT INTO revenue_recognitions (` + recognitionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
	`
	_, err := tx.Exec(ctx, query,
		recognition.RecognitionID,
		recognition.OrderID,
		recognition.GrossRevenue,
		recognition.DiscountAmount,
		recognition.TaxAmount,
		recognition.NetRevenue,
		recognition.COGSAmount,
		recognition.GrossProfit,
		recognition.RevenueEntryID,
		recognition.COGSEntryID,
		recognition.RecognizedAt,
		recognition.RecognizedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: recognition for order %s already exists", apperrors.ErrDuplicate, recognition.OrderID)
		}
		return fmt.Errorf("failed to save recognition for order %s: %w", recognition.OrderID, err)
	}
	return nil
}

// SetRecognitionEntryIDsInTx links the posted journal entries back onto the
// recognition record.
func (r *PgxOrderRepository) SetRecognitionEntryIDsInTx(ctx context.Context, tx pgx.Tx, recognitionID string, revenueEntryID, cogsEntryID *string) error {
	query := `UPDATE revenue_recognitions SET revenue_entry_id = $2, cogs_entry_id = $3 WHERE recognition_id = $1;`
	tag, err := tx.Exec(ctx, query, recognitionID, revenueEntryID, cogsEntryID)
	if err != nil {
		return fmt.Errorf("failed to set entry IDs on recognition %s: %w", recognitionID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// UpdateRecognitionAmountsInTx rewrites the stored figures after a refund.
func (r *PgxOrderRepository) UpdateRecognitionAmountsInTx(ctx context.Context, tx pgx.Tx, recognition domain.RevenueRecognition) error {
	query := `
		UPDATE revenue_recognitions
		SET gross_revenue = $2, discount_amount = $3, tax_amount = $4, net_revenue = $5, cogs_amount = $6, gross_profit = $7
		WHERE recognition_id = $1;
	`
	tag, err := tx.Exec(ctx, query,
		recognition.RecognitionID,
		recognition.GrossRevenue,
		recognition.DiscountAmount,
		recognition.TaxAmount,
		recognition.NetRevenue,
		recognition.COGSAmount,
		recognition.GrossProfit,
	)
	if err != nil {
		return fmt.Errorf("failed to update recognition %s: %w", recognition.RecognitionID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// DeleteRecognitionInTx removes the recognition on full cancellation.
func (r *PgxOrderRepository) DeleteRecognitionInTx(ctx context.Context, tx pgx.Tx, recognitionID string) error {
	query := `DELETE FROM revenue_recognitions WHERE recognition_id = $1;`
	tag, err := tx.Exec(ctx, query, recognitionID)
	if err != nil {
		return fmt.Errorf("failed to delete recognition %s: %w", recognitionID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
