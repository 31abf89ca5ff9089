package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/merchantledger/merchant_ledger_app/internal/apperrors"
	"github.com/merchantledger/merchant_ledger_app/internal/core/domain"
	portsrepo "github.com/merchantledger/merchant_ledger_app/internal/core/ports/repositories"
)

type PgxInvoiceRepository struct {
	BaseRepository
}

// newPgxInvoiceRepository creates a new repository for purchase invoice data.
func newPgxInvoiceRepository(pool *pgxpool.Pool) portsrepo.InvoiceRepositoryFacade {
	return &PgxInvoiceRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxInvoiceRepository implements portsrepo.InvoiceRepositoryFacade
var _ portsrepo.InvoiceRepositoryFacade = (*PgxInvoiceRepository)(nil)

const invoiceColumns = `invoice_id, supplier_id, invoice_date, reference, status, subtotal, tax_amount, landed_cost_total, grand_total, amount_paid, remaining_amount, payment_status, posted_date, created_at, created_by, last_updated_at, last_updated_by`

func scanInvoice(row pgx.Row) (domain.PurchaseInvoice, error) {
	var inv domain.PurchaseInvoice
	err := row.Scan(
		&inv.InvoiceID,
		&inv.SupplierID,
		&inv.InvoiceDate,
		&inv.Reference,
		&inv.Status,
		&inv.Subtotal,
		&inv.TaxAmount,
		&inv.LandedCostTotal,
		&inv.GrandTotal,
		&inv.AmountPaid,
		&inv.RemainingAmount,
		&inv.PaymentStatus,
		&inv.PostedDate,
		&inv.CreatedAt,
		&inv.CreatedBy,
		&inv.LastUpdatedAt,
		&inv.LastUpdatedBy,
	)
	return inv, err
}

// SaveInvoice persists a new invoice header and any initial items in one
// transaction.
func (r *PgxInvoiceRepository) SaveInvoice(ctx context.Context, invoice domain.PurchaseInvoice) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	query := `
		INSERT INTO purchase_invoices (` + invoiceColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17);
	`
	_, err = tx.Exec(ctx, query,
		invoice.InvoiceID,
		invoice.SupplierID,
		invoice.InvoiceDate,
		invoice.Reference,
		invoice.Status,
		invoice.Subtotal,
		invoice.TaxAmount,
		invoice.LandedCostTotal,
		invoice.GrandTotal,
		invoice.AmountPaid,
		invoice.RemainingAmount,
		invoice.PaymentStatus,
		invoice.PostedDate,
		invoice.CreatedAt,
		invoice.CreatedBy,
		invoice.LastUpdatedAt,
		invoice.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: invoice %s already exists", apperrors.ErrDuplicate, invoice.InvoiceID)
		}
		return fmt.Errorf("failed to save invoice %s: %w", invoice.InvoiceID, err)
	}

	for _, item := range invoice.Items {
		if err := r.SaveItemInTx(ctx, tx, item); err != nil {
			return err
		}
	}
	return r.Commit(ctx, tx)
}

// SaveItemInTx appends one item row.
func (r *PgxInvoiceRepository) SaveItemInTx(ctx context.Context, tx pgx.Tx, item domain.PurchaseInvoiceItem) error {
	query := `
		INSERT INTO purchase_invoice_items (item_id, invoice_id, variant_id, quantity, unit_cost, final_unit_cost, is_stock_tracked, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`
	_, err := tx.Exec(ctx, query,
		item.ItemID,
		item.InvoiceID,
		item.VariantID,
		item.Quantity,
		item.UnitCost,
		item.FinalUnitCost,
		item.IsStockTracked,
		item.CreatedAt,
		item.CreatedBy,
		item.LastUpdatedAt,
		item.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to save invoice item %s: %w", item.ItemID, err)
	}
	return nil
}

func (r *PgxInvoiceRepository) findItems(ctx context.Context, q interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}, invoiceID string) ([]domain.PurchaseInvoiceItem, error) {
	query := `
		SELECT item_id, invoice_id, variant_id, quantity, unit_cost, final_unit_cost, is_stock_tracked, created_at, created_by, last_updated_at, last_updated_by
		FROM purchase_invoice_items
		WHERE invoice_id = $1
		ORDER BY created_at, item_id;
	`
	rows, err := q.Query(ctx, query, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to query items for invoice %s: %w", invoiceID, err)
	}
	defer rows.Close()

	items := []domain.PurchaseInvoiceItem{}
	for rows.Next() {
		var item domain.PurchaseInvoiceItem
		if err := rows.Scan(
			&item.ItemID,
			&item.InvoiceID,
			&item.VariantID,
			&item.Quantity,
			&item.UnitCost,
			&item.FinalUnitCost,
			&item.IsStockTracked,
			&item.CreatedAt,
			&item.CreatedBy,
			&item.LastUpdatedAt,
			&item.LastUpdatedBy,
		); err != nil {
			return nil, fmt.Errorf("failed to scan invoice item row: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating invoice item rows: %w", err)
	}
	return items, nil
}

// FindInvoiceByID retrieves an invoice with its items.
func (r *PgxInvoiceRepository) FindInvoiceByID(ctx context.Context, invoiceID string) (*domain.PurchaseInvoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM purchase_invoices WHERE invoice_id = $1;`
	inv, err := scanInvoice(r.Pool.QueryRow(ctx, query, invoiceID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find invoice %s: %w", invoiceID, err)
	}
	items, err := r.findItems(ctx, r.Pool, invoiceID)
	if err != nil {
		return nil, err
	}
	inv.Items = items
	return &inv, nil
}

// FindInvoiceByIDForUpdate retrieves and row-locks an invoice with its items.
func (r *PgxInvoiceRepository) FindInvoiceByIDForUpdate(ctx context.Context, tx pgx.Tx, invoiceID string) (*domain.PurchaseInvoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM purchase_invoices WHERE invoice_id = $1 FOR UPDATE;`
	inv, err := scanInvoice(tx.QueryRow(ctx, query, invoiceID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to lock invoice %s: %w", invoiceID, err)
	}
	items, err := r.findItems(ctx, tx, invoiceID)
	if err != nil {
		return nil, err
	}
	inv.Items = items
	return &inv, nil
}

// UpdateTotalsInTx rewrites the invoice's derived totals.
func (r *PgxInvoiceRepository) UpdateTotalsInTx(ctx context.Context, tx pgx.Tx, invoice domain.PurchaseInvoice) error {
	query := `
		UPDATE purchase_invoices
		SET subtotal = $2, tax_amount = $3, landed_cost_total = $4, grand_total = $5,
		    remaining_amount = $6, last_updated_at = $7, last_updated_by = $8
		WHERE invoice_id = $1;
	`
	tag, err := tx.Exec(ctx, query,
		invoice.InvoiceID,
		invoice.Subtotal,
		invoice.TaxAmount,
		invoice.LandedCostTotal,
		invoice.GrandTotal,
		invoice.RemainingAmount,
		invoice.LastUpdatedAt,
		invoice.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update totals for invoice %s: %w", invoice.InvoiceID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// UpdateStatusInTx moves the invoice to a new lifecycle status.
func (r *PgxInvoiceRepository) UpdateStatusInTx(ctx context.Context, tx pgx.Tx, invoiceID string, status domain.InvoiceStatus, postedDate *time.Time, actorID string, now time.Time) error {
	query := `
		UPDATE purchase_invoices
		SET status = $2, posted_date = COALESCE($3, posted_date), last_updated_at = $4, last_updated_by = $5
		WHERE invoice_id = $1;
	`
	tag, err := tx.Exec(ctx, query, invoiceID, status, postedDate, now, actorID)
	if err != nil {
		return fmt.Errorf("failed to update status for invoice %s: %w", invoiceID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// UpdateItemFinalCostsInTx stores landed-cost-adjusted unit costs per item.
func (r *PgxInvoiceRepository) UpdateItemFinalCostsInTx(ctx context.Context, tx pgx.Tx, finalUnitCosts map[string]decimal.Decimal) error {
	if len(finalUnitCosts) == 0 {
		return nil
	}
	query := `UPDATE purchase_invoice_items SET final_unit_cost = $2 WHERE item_id = $1;`
	batch := &pgx.Batch{}
	for itemID, cost := range finalUnitCosts {
		batch.Queue(query, itemID, cost)
	}
	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return fmt.Errorf("failed to update item final costs: %w", err)
	}
	return nil
}

// UpdatePaymentAmountsInTx rewrites paid/remaining amounts and payment status.
func (r *PgxInvoiceRepository) UpdatePaymentAmountsInTx(ctx context.Context, tx pgx.Tx, invoiceID string, paid, remaining decimal.Decimal, paymentStatus domain.InvoicePaymentStatus, actorID string, now time.Time) error {
	query := `
		UPDATE purchase_invoices
		SET amount_paid = $2, remaining_amount = $3, payment_status = $4, last_updated_at = $5, last_updated_by = $6
		WHERE invoice_id = $1;
	`
	tag, err := tx.Exec(ctx, query, invoiceID, paid, remaining, paymentStatus, now, actorID)
	if err != nil {
		return fmt.Errorf("failed to update payment amounts for invoice %s: %w", invoiceID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// AppendAuditLogInTx appends one immutable transition record.
func (r *PgxInvoiceRepository) AppendAuditLogInTx(ctx context.Context, tx pgx.Tx, log domain.InvoiceAuditLog) error {
	query := `
		INSERT INTO invoice_audit_logs (log_id, invoice_id, from_status, to_status, note, actor_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`
	_, err := tx.Exec(ctx, query, log.LogID, log.InvoiceID, log.FromStatus, log.ToStatus, log.Note, log.ActorID, log.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to append audit log for invoice %s: %w", log.InvoiceID, err)
	}
	return nil
}

// ListAuditLog returns the append-only transition history, oldest first.
func (r *PgxInvoiceRepository) ListAuditLog(ctx context.Context, invoiceID string) ([]domain.InvoiceAuditLog, error) {
	query := `
		SELECT log_id, invoice_id, from_status, to_status, note, actor_id, created_at
		FROM invoice_audit_logs
		WHERE invoice_id = $1
		ORDER BY created_at, log_id;
	`
	rows, err := r.Pool.Query(ctx, query, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit log for invoice %s: %w", invoiceID, err)
	}
	defer rows.Close()

	logs := []domain.InvoiceAuditLog{}
	for rows.Next() {
		var l domain.InvoiceAuditLog
		if err := rows.Scan(&l.LogID, &l.InvoiceID, &l.FromStatus, &l.ToStatus, &l.Note, &l.ActorID, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan audit log row: %w", err)
		}
		logs = append(logs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating audit log rows: %w", err)
	}
	return logs, nil
}
