package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/merchantledger/merchant_ledger_app/internal/core/domain"
	portsrepo "github.com/merchantledger/merchant_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/merchantledger/merchant_ledger_app/internal/core/ports/services"
	"github.com/merchantledger/merchant_ledger_app/internal/dto"
	"github.com/merchantledger/merchant_ledger_app/internal/platform/logging"
	"github.com/merchantledger/merchant_ledger_app/internal/utils/costing"
)

const costChangeReasonInvoicePost = "INVOICE_POST"

// intakeService drives invoice posting: the APPROVED -> POSTED transition,
// stock receipt, weighted-average cost recomputation and the ledger/payable
// effects, all in one transaction.
type intakeService struct {
	inventoryRepo portsrepo.InventoryRepositoryFacade
	invoiceSvc    portssvc.InvoiceTxSvc
	payableSvc    portssvc.PayableSvcFacade
	txManager     portsrepo.TxManager
}

// NewIntakeService creates a new IntakeService.
func NewIntakeService(inventoryRepo portsrepo.InventoryRepositoryFacade, invoiceSvc portssvc.InvoiceTxSvc, payableSvc portssvc.PayableSvcFacade, txManager portsrepo.TxManager) portssvc.IntakeSvcFacade {
	return &intakeService{
		inventoryRepo: inventoryRepo,
		invoiceSvc:    invoiceSvc,
		payableSvc:    payableSvc,
		txManager:     txManager,
	}
}

// Ensure intakeService implements the portssvc.IntakeSvcFacade interface
var _ portssvc.IntakeSvcFacade = (*intakeService)(nil)

// PostInvoice posts an APPROVED invoice into a warehouse. Any failure rolls
// back every effect: status, stock, costs, ledger and payable.
// Implements portssvc.IntakeSvcFacade
func (s *intakeService) PostInvoice(ctx context.Context, invoiceID string, req dto.PostInvoiceRequest, actorID string) (*domain.StockInEvent, error) {
	logger := logging.FromContext(ctx)

	if err := dto.Validate(req); err != nil {
		return nil, err
	}

	var event *domain.StockInEvent
	err := s.txManager.WithinTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		invoice, err := s.invoiceSvc.TransitionToPostedInTx(ctx, tx, invoiceID, req.Note, actorID)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		audit := domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actorID,
			LastUpdatedAt: now,
			LastUpdatedBy: actorID,
		}
		event = &domain.StockInEvent{
			StockInID:   uuid.NewString(),
			InvoiceID:   invoiceID,
			WarehouseID: req.WarehouseID,
			AuditFields: audit,
		}
		if err := s.inventoryRepo.CreateStockInEventInTx(ctx, tx, *event); err != nil {
			return fmt.Errorf("failed to create stock-in event: %w", err)
		}

		for _, item := range invoice.Items {
			if !item.IsStockTracked {
				continue
			}
			if err := s.receiveItem(ctx, tx, event, item, actorID, now); err != nil {
				return err
			}
		}

		if _, err := s.payableSvc.CreateObligationInTx(ctx, tx, invoice, actorID); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("invoice posted into stock",
		slog.String("invoice_id", invoiceID),
		slog.String("warehouse_id", req.WarehouseID),
		slog.String("stock_in_id", event.StockInID))
	return event, nil
}

// receiveItem receives one stock-tracked invoice item: FIFO batch, warehouse
// counter, weighted-average cost, audit trails. The average is computed from
// the on-hand quantity read before this receipt is applied.
func (s *intakeService) receiveItem(ctx context.Context, tx pgx.Tx, event *domain.StockInEvent, item domain.PurchaseInvoiceItem, actorID string, now time.Time) error {
	currentCost, err := s.inventoryRepo.LockVariantCostInTx(ctx, tx, item.VariantID)
	if err != nil {
		return fmt.Errorf("failed to lock variant cost for %s: %w", item.VariantID, err)
	}
	onHand, err := s.inventoryRepo.VariantOnHandInTx(ctx, tx, item.VariantID)
	if err != nil {
		return fmt.Errorf("failed to read on-hand quantity for %s: %w", item.VariantID, err)
	}

	unitCost := item.EffectiveUnitCost()
	batch := domain.InventoryBatch{
		BatchID:           uuid.NewString(),
		VariantID:         item.VariantID,
		InvoiceItemID:     item.ItemID,
		StockInID:         event.StockInID,
		InitialQuantity:   item.Quantity,
		RemainingQuantity: item.Quantity,
		UnitCost:          unitCost,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actorID,
			LastUpdatedAt: now,
			LastUpdatedBy: actorID,
		},
	}
	if err := s.inventoryRepo.CreateBatchInTx(ctx, tx, batch); err != nil {
		return fmt.Errorf("failed to create inventory batch: %w", err)
	}
	if err := s.inventoryRepo.AdjustWarehouseStockInTx(ctx, tx, event.WarehouseID, item.VariantID, item.Quantity, actorID); err != nil {
		return fmt.Errorf("failed to adjust warehouse stock: %w", err)
	}

	newCost := costing.CalculateWeightedAverage(onHand, currentCost, item.Quantity, unitCost)
	if err := s.inventoryRepo.UpdateVariantCostInTx(ctx, tx, item.VariantID, newCost); err != nil {
		return fmt.Errorf("failed to update variant cost: %w", err)
	}
	if err := s.inventoryRepo.AppendCostHistoryInTx(ctx, tx, domain.CostHistory{
		HistoryID:   uuid.NewString(),
		VariantID:   item.VariantID,
		OldCost:     currentCost,
		NewCost:     newCost,
		Reason:      costChangeReasonInvoicePost,
		ReferenceID: event.InvoiceID,
		CreatedAt:   now,
		CreatedBy:   actorID,
	}); err != nil {
		return fmt.Errorf("failed to append cost history: %w", err)
	}
	if err := s.inventoryRepo.AppendStockMovementInTx(ctx, tx, domain.StockMovement{
		MovementID:  uuid.NewString(),
		WarehouseID: event.WarehouseID,
		VariantID:   item.VariantID,
		Type:        domain.MovementReceipt,
		Quantity:    item.Quantity,
		ReferenceID: event.InvoiceID,
		CreatedAt:   now,
		CreatedBy:   actorID,
	}); err != nil {
		return fmt.Errorf("failed to append stock movement: %w", err)
	}
	return nil
}
