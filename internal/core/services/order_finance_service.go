package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/merchantledger/merchant_ledger_app/internal/apperrors"
	"github.com/merchantledger/merchant_ledger_app/internal/core/domain"
	portsrepo "github.com/merchantledger/merchant_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/merchantledger/merchant_ledger_app/internal/core/ports/services"
	"github.com/merchantledger/merchant_ledger_app/internal/dto"
	"github.com/merchantledger/merchant_ledger_app/internal/platform/logging"
	"github.com/merchantledger/merchant_ledger_app/internal/utils/accounting"
)

var (
	ErrRecognitionNotFound  = errors.New("order has no revenue recognition")
	ErrRefundExceedsRevenue = errors.New("refund exceeds remaining recognized revenue")
	ErrRefundAmountInvalid  = errors.New("refund amount must be positive")
)

// ClosedPeriodError reports an attempt to recognize revenue into a closed
// accounting period.
type ClosedPeriodError struct {
	Date time.Time
}

func (e *ClosedPeriodError) Error() string {
	return fmt.Sprintf("accounting period for %s is closed", e.Date.Format("2006-01-02"))
}

// orderFinanceService owns the financial lifecycle of sales orders.
type orderFinanceService struct {
	orderRepo          portsrepo.OrderRepositoryFacade
	inventoryRepo      portsrepo.InventoryRepositoryFacade
	periodRepo         portsrepo.PeriodRepositoryFacade
	ledgerSvc          portssvc.LedgerSvcFacade
	txManager          portsrepo.TxManager
	taxRate            decimal.Decimal
	defaultWarehouseID string
	hooks              *hookRunner
}

// NewOrderFinanceService creates a new OrderFinanceService. taxRate is the
// tax-inclusive sales rate (e.g. 0.14); hooks run after a recognition commits.
func NewOrderFinanceService(orderRepo portsrepo.OrderRepositoryFacade, inventoryRepo portsrepo.InventoryRepositoryFacade, periodRepo portsrepo.PeriodRepositoryFacade, ledgerSvc portssvc.LedgerSvcFacade, txManager portsrepo.TxManager, taxRate decimal.Decimal, defaultWarehouseID string, hooks ...RecognitionHook) portssvc.OrderFinanceSvcFacade {
	return &orderFinanceService{
		orderRepo:          orderRepo,
		inventoryRepo:      inventoryRepo,
		periodRepo:         periodRepo,
		ledgerSvc:          ledgerSvc,
		txManager:          txManager,
		taxRate:            taxRate,
		defaultWarehouseID: defaultWarehouseID,
		hooks:              newHookRunner(hooks...),
	}
}

// Ensure orderFinanceService implements the portssvc.OrderFinanceSvcFacade interface
var _ portssvc.OrderFinanceSvcFacade = (*orderFinanceService)(nil)

func paymentReceiptReference(orderID string) string {
	return fmt.Sprintf("ORDPAY-%s", orderID)
}

// RecordPaymentReceipt records a prepaid collection: cash in, revenue
// deferred until recognition. Calling it again for the same order returns the
// existing entry. Cash-on-delivery orders collect at recognition time, so the
// call is a no-op for them.
// Implements portssvc.OrderFinanceSvcFacade
func (s *orderFinanceService) RecordPaymentReceipt(ctx context.Context, orderID string, actorID string) (*domain.JournalEntry, error) {
	logger := logging.FromContext(ctx)

	order, err := s.orderRepo.FindOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.PaymentMethod != domain.Prepaid {
		logger.Info("payment receipt skipped, order collects on delivery",
			slog.String("order_id", orderID),
			slog.String("payment_method", string(order.PaymentMethod)))
		return nil, nil
	}

	reference := paymentReceiptReference(orderID)
	existing, err := s.ledgerSvc.ListEntriesByReference(ctx, reference)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing receipt entries: %w", err)
	}
	for i := range existing {
		if existing[i].Status == domain.Posted && existing[i].OriginalEntryID == nil {
			logger.Info("payment receipt already recorded", slog.String("order_id", orderID))
			return &existing[i], nil
		}
	}

	var entry *domain.JournalEntry
	err = s.txManager.WithinTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		var txErr error
		entry, txErr = s.ledgerSvc.PostEntryInTx(ctx, tx, domain.LedgerEntryInput{
			Description: fmt.Sprintf("Prepaid collection for order %s", orderID),
			Reference:   reference,
			EntryDate:   time.Now().UTC(),
			OrderID:     &orderID,
			Lines: []domain.LedgerLineInput{
				{AccountCode: domain.CodeCash, Debit: order.Total},
				{AccountCode: domain.CodeDeferredRevenue, Credit: order.Total},
			},
		}, actorID)
		return txErr
	})
	if err != nil {
		return nil, err
	}

	logger.Info("payment receipt recorded",
		slog.String("order_id", orderID),
		slog.String("amount", order.Total.String()))
	return entry, nil
}

// itemCOGS returns the cost basis for one order item. Rows written before cost
// snapshotting lack CostAtPurchase; those fall back to the variant's current
// average cost, which is logged because it can drift from the cost at sale time.
func (s *orderFinanceService) itemCOGS(ctx context.Context, item domain.SalesOrderItem) (decimal.Decimal, error) {
	logger := logging.FromContext(ctx)

	if item.CostAtPurchase != nil {
		return item.CostAtPurchase.Mul(item.Quantity), nil
	}
	currentCost, err := s.inventoryRepo.FindVariantCost(ctx, item.VariantID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("no cost basis for order item, using zero",
				slog.String("item_id", item.ItemID),
				slog.String("variant_id", item.VariantID))
			return decimal.Zero, nil
		}
		return decimal.Zero, err
	}
	logger.Warn("order item missing cost snapshot, falling back to current average cost",
		slog.String("item_id", item.ItemID),
		slog.String("variant_id", item.VariantID),
		slog.String("current_cost", currentCost.String()))
	return currentCost.Mul(item.Quantity), nil
}

// RecognizeRevenue recognizes an order's revenue and cost of goods sold at
// serializable isolation. A second call for an already-recognized order is a
// benign no-op returning the stored recognition.
// Implements portssvc.OrderFinanceSvcFacade
func (s *orderFinanceService) RecognizeRevenue(ctx context.Context, orderID string, actorID string) (*domain.RevenueRecognition, error) {
	logger := logging.FromContext(ctx)

	var recognition *domain.RevenueRecognition
	var alreadyRecognized bool
	err := s.txManager.WithinSerializableTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		existing, err := s.orderRepo.FindRecognitionByOrderIDInTx(ctx, tx, orderID)
		if err == nil {
			recognition = existing
			alreadyRecognized = true
			return nil
		}
		if !errors.Is(err, apperrors.ErrNotFound) {
			return err
		}

		now := time.Now().UTC()
		closed, err := s.periodRepo.IsDateClosedInTx(ctx, tx, now)
		if err != nil {
			return fmt.Errorf("failed to check accounting period: %w", err)
		}
		if closed {
			return &ClosedPeriodError{Date: now}
		}

		order, err := s.orderRepo.FindOrderByID(ctx, orderID)
		if err != nil {
			return err
		}

		net, tax := accounting.SplitTaxInclusive(order.Total, s.taxRate)
		cogs := decimal.Zero
		for _, item := range order.Items {
			itemCost, err := s.itemCOGS(ctx, item)
			if err != nil {
				return err
			}
			cogs = cogs.Add(itemCost)
		}

		recognition = &domain.RevenueRecognition{
			RecognitionID:  uuid.NewString(),
			OrderID:        orderID,
			GrossRevenue:   net.Add(order.DiscountAmount),
			DiscountAmount: order.DiscountAmount,
			TaxAmount:      tax,
			NetRevenue:     net,
			COGSAmount:     cogs,
			GrossProfit:    net.Sub(cogs),
			RecognizedAt:   now,
			RecognizedBy:   actorID,
		}
		if err := s.orderRepo.SaveRecognitionInTx(ctx, tx, *recognition); err != nil {
			return fmt.Errorf("failed to save recognition: %w", err)
		}

		debitCode := domain.CodeCash
		if order.PaymentMethod == domain.Prepaid {
			debitCode = domain.CodeDeferredRevenue
		}
		revenueLines := []domain.LedgerLineInput{
			{AccountCode: debitCode, Debit: order.Total},
			{AccountCode: domain.CodeSalesRevenue, Credit: net},
		}
		if tax.IsPositive() {
			revenueLines = append(revenueLines, domain.LedgerLineInput{AccountCode: domain.CodeSalesTaxPayable, Credit: tax})
		}
		revenueEntry, err := s.ledgerSvc.PostEntryInTx(ctx, tx, domain.LedgerEntryInput{
			Description: fmt.Sprintf("Revenue recognition for order %s", orderID),
			Reference:   fmt.Sprintf("ORD-%s", orderID),
			EntryDate:   now,
			OrderID:     &orderID,
			Lines:       revenueLines,
		}, actorID)
		if err != nil {
			return fmt.Errorf("failed to post revenue entry: %w", err)
		}
		recognition.RevenueEntryID = &revenueEntry.EntryID

		var cogsEntryID *string
		if cogs.IsPositive() {
			cogsEntry, err := s.ledgerSvc.PostEntryInTx(ctx, tx, domain.LedgerEntryInput{
				Description: fmt.Sprintf("Cost of goods sold for order %s", orderID),
				Reference:   fmt.Sprintf("ORD-%s", orderID),
				EntryDate:   now,
				OrderID:     &orderID,
				Lines: []domain.LedgerLineInput{
					{AccountCode: domain.CodeCOGS, Debit: cogs},
					{AccountCode: domain.CodeInventoryAsset, Credit: cogs},
				},
			}, actorID)
			if err != nil {
				return fmt.Errorf("failed to post COGS entry: %w", err)
			}
			cogsEntryID = &cogsEntry.EntryID
			recognition.COGSEntryID = cogsEntryID
		}

		return s.orderRepo.SetRecognitionEntryIDsInTx(ctx, tx, recognition.RecognitionID, recognition.RevenueEntryID, cogsEntryID)
	})
	if err != nil {
		return nil, err
	}

	if alreadyRecognized {
		logger.Info("revenue already recognized", slog.String("order_id", orderID))
		return recognition, nil
	}

	logger.Info("revenue recognized",
		slog.String("order_id", orderID),
		slog.String("net_revenue", recognition.NetRevenue.String()),
		slog.String("cogs", recognition.COGSAmount.String()))
	s.hooks.run(ctx, *recognition)
	return recognition, nil
}

// RefundOrder proportionally unwinds recognized figures for a partial refund.
// The ratio applies to the CURRENT stored figures, so repeated refunds compound
// correctly.
// Implements portssvc.OrderFinanceSvcFacade
func (s *orderFinanceService) RefundOrder(ctx context.Context, orderID string, req dto.RefundOrderRequest, actorID string) (*domain.RevenueRecognition, error) {
	logger := logging.FromContext(ctx)

	if err := dto.Validate(req); err != nil {
		return nil, err
	}
	if !req.Amount.IsPositive() {
		return nil, ErrRefundAmountInvalid
	}

	var updated *domain.RevenueRecognition
	err := s.txManager.WithinSerializableTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		recognition, err := s.orderRepo.FindRecognitionByOrderIDInTx(ctx, tx, orderID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return fmt.Errorf("%w: order %s", ErrRecognitionNotFound, orderID)
			}
			return err
		}
		order, err := s.orderRepo.FindOrderByID(ctx, orderID)
		if err != nil {
			return err
		}

		remaining := recognition.NetRevenue.Add(recognition.TaxAmount)
		if req.Amount.GreaterThan(remaining) {
			return fmt.Errorf("%w: remaining %s, requested %s",
				ErrRefundExceedsRevenue, remaining.String(), req.Amount.String())
		}

		ratio := req.Amount.Div(order.Total)
		decNet := recognition.NetRevenue.Mul(ratio).Round(2)
		decTax := recognition.TaxAmount.Mul(ratio).Round(2)
		decGross := recognition.GrossRevenue.Mul(ratio).Round(2)
		decDiscount := recognition.DiscountAmount.Mul(ratio).Round(2)
		decCOGS := recognition.COGSAmount.Mul(ratio).Round(2)

		now := time.Now().UTC()
		refundLines := []domain.LedgerLineInput{
			{AccountCode: domain.CodeSalesRevenue, Debit: decNet},
		}
		if decTax.IsPositive() {
			refundLines = append(refundLines, domain.LedgerLineInput{AccountCode: domain.CodeSalesTaxPayable, Debit: decTax})
		}
		refundLines = append(refundLines, domain.LedgerLineInput{AccountCode: domain.CodeCash, Credit: decNet.Add(decTax)})
		if _, err := s.ledgerSvc.PostEntryInTx(ctx, tx, domain.LedgerEntryInput{
			Description: fmt.Sprintf("Refund for order %s: %s", orderID, req.Reason),
			Reference:   fmt.Sprintf("REF-%s", orderID),
			EntryDate:   now,
			OrderID:     &orderID,
			Lines:       refundLines,
		}, actorID); err != nil {
			return fmt.Errorf("failed to post refund entry: %w", err)
		}

		if decCOGS.IsPositive() {
			if _, err := s.ledgerSvc.PostEntryInTx(ctx, tx, domain.LedgerEntryInput{
				Description: fmt.Sprintf("COGS reversal for refund on order %s", orderID),
				Reference:   fmt.Sprintf("REF-%s", orderID),
				EntryDate:   now,
				OrderID:     &orderID,
				Lines: []domain.LedgerLineInput{
					{AccountCode: domain.CodeInventoryAsset, Debit: decCOGS},
					{AccountCode: domain.CodeCOGS, Credit: decCOGS},
				},
			}, actorID); err != nil {
				return fmt.Errorf("failed to post COGS reversal entry: %w", err)
			}
		}

		recognition.GrossRevenue = recognition.GrossRevenue.Sub(decGross)
		recognition.DiscountAmount = recognition.DiscountAmount.Sub(decDiscount)
		recognition.NetRevenue = recognition.NetRevenue.Sub(decNet)
		recognition.TaxAmount = recognition.TaxAmount.Sub(decTax)
		recognition.COGSAmount = recognition.COGSAmount.Sub(decCOGS)
		recognition.GrossProfit = recognition.NetRevenue.Sub(recognition.COGSAmount)
		if err := s.orderRepo.UpdateRecognitionAmountsInTx(ctx, tx, *recognition); err != nil {
			return fmt.Errorf("failed to update recognition amounts: %w", err)
		}
		updated = recognition
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("order refunded",
		slog.String("order_id", orderID),
		slog.String("amount", req.Amount.String()))
	return updated, nil
}

// CancelOrder reverses the order's journal entries, removes its recognition
// and returns the order's stock to the warehouse. Stock is released whether or
// not revenue was recognized; the journal reversals only apply where entries
// exist.
// Implements portssvc.OrderFinanceSvcFacade
func (s *orderFinanceService) CancelOrder(ctx context.Context, orderID string, reason string, actorID string) error {
	logger := logging.FromContext(ctx)

	err := s.txManager.WithinSerializableTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		order, err := s.orderRepo.FindOrderByID(ctx, orderID)
		if err != nil {
			return err
		}

		description := fmt.Sprintf("Cancellation of order %s: %s", orderID, reason)

		recognition, err := s.orderRepo.FindRecognitionByOrderIDInTx(ctx, tx, orderID)
		if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
			return err
		}
		if err == nil {
			if recognition.RevenueEntryID != nil {
				if _, err := s.ledgerSvc.ReverseEntryInTx(ctx, tx, *recognition.RevenueEntryID, description, actorID); err != nil {
					return fmt.Errorf("failed to reverse revenue entry: %w", err)
				}
			}
			if recognition.COGSEntryID != nil {
				if _, err := s.ledgerSvc.ReverseEntryInTx(ctx, tx, *recognition.COGSEntryID, description, actorID); err != nil {
					return fmt.Errorf("failed to reverse COGS entry: %w", err)
				}
			}
			if err := s.orderRepo.DeleteRecognitionInTx(ctx, tx, recognition.RecognitionID); err != nil {
				return fmt.Errorf("failed to delete recognition: %w", err)
			}
		}

		if err := s.returnStock(ctx, tx, order, actorID); err != nil {
			return err
		}

		receipts, err := s.ledgerSvc.ListEntriesByReference(ctx, paymentReceiptReference(orderID))
		if err != nil {
			return fmt.Errorf("failed to list receipt entries: %w", err)
		}
		for _, receipt := range receipts {
			if receipt.Status == domain.Posted && receipt.OriginalEntryID == nil {
				if _, err := s.ledgerSvc.ReverseEntryInTx(ctx, tx, receipt.EntryID, description, actorID); err != nil {
					return fmt.Errorf("failed to reverse payment receipt: %w", err)
				}
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info("order cancelled", slog.String("order_id", orderID))
	return nil
}

// returnStock puts cancelled order quantities back into stock. Items without a
// warehouse fall back to the configured default.
func (s *orderFinanceService) returnStock(ctx context.Context, tx pgx.Tx, order *domain.SalesOrder, actorID string) error {
	logger := logging.FromContext(ctx)

	now := time.Now().UTC()
	for _, item := range order.Items {
		warehouseID := s.defaultWarehouseID
		if item.WarehouseID != nil {
			warehouseID = *item.WarehouseID
		} else {
			logger.Warn("order item has no warehouse, returning stock to default",
				slog.String("item_id", item.ItemID),
				slog.String("default_warehouse_id", warehouseID))
		}
		if err := s.inventoryRepo.AdjustWarehouseStockInTx(ctx, tx, warehouseID, item.VariantID, item.Quantity, actorID); err != nil {
			return fmt.Errorf("failed to return stock for item %s: %w", item.ItemID, err)
		}
		if err := s.inventoryRepo.AppendStockMovementInTx(ctx, tx, domain.StockMovement{
			MovementID:  uuid.NewString(),
			WarehouseID: warehouseID,
			VariantID:   item.VariantID,
			Type:        domain.MovementRelease,
			Quantity:    item.Quantity,
			ReferenceID: order.OrderID,
			Notes:       "order cancellation",
			CreatedAt:   now,
			CreatedBy:   actorID,
		}); err != nil {
			return fmt.Errorf("failed to append stock movement: %w", err)
		}
	}
	return nil
}
