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

	"github.com/merchantledger/merchant_ledger_app/internal/core/domain"
	portsrepo "github.com/merchantledger/merchant_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/merchantledger/merchant_ledger_app/internal/core/ports/services"
	"github.com/merchantledger/merchant_ledger_app/internal/dto"
	"github.com/merchantledger/merchant_ledger_app/internal/platform/logging"
	"github.com/merchantledger/merchant_ledger_app/internal/utils/costing"
)

var (
	ErrInvoiceNotEditable = errors.New("invoice can only be edited in DRAFT or REVIEWED status")
	ErrInvoiceNoItems     = errors.New("invoice must have at least one item")
	ErrItemQtyNotPositive = errors.New("invoice item quantity must be positive")
	ErrItemZeroCost       = errors.New("invoice item has zero unit cost")
	ErrPostViaIntake      = errors.New("posting an invoice runs through the intake flow, not a direct transition")
)

// InvalidTransitionError reports a lifecycle transition the state machine does
// not allow.
type InvalidTransitionError struct {
	From domain.InvoiceStatus
	To   domain.InvoiceStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid invoice transition from %s to %s", e.From, e.To)
}

// allowedTransitions is the full invoice lifecycle, including the review
// backtracks. POSTED and CANCELLED are terminal.
var allowedTransitions = map[domain.InvoiceStatus][]domain.InvoiceStatus{
	domain.InvoiceDraft:     {domain.InvoiceReviewed, domain.InvoiceCancelled},
	domain.InvoiceReviewed:  {domain.InvoiceApproved, domain.InvoiceDraft, domain.InvoiceCancelled},
	domain.InvoiceApproved:  {domain.InvoicePosted, domain.InvoiceReviewed, domain.InvoiceCancelled},
	domain.InvoicePosted:    {},
	domain.InvoiceCancelled: {},
}

func transitionAllowed(from, to domain.InvoiceStatus) bool {
	for _, t := range allowedTransitions[from] {
		if t == to {
			return true
		}
	}
	return false
}

// invoiceService manages the purchase invoice lifecycle up to (but not
// including) the stock and ledger effects of posting.
type invoiceService struct {
	invoiceRepo        portsrepo.InvoiceRepositoryFacade
	txManager          portsrepo.TxManager
	allowZeroCostItems bool
}

// NewInvoiceService creates a new InvoiceService.
func NewInvoiceService(invoiceRepo portsrepo.InvoiceRepositoryFacade, txManager portsrepo.TxManager, allowZeroCostItems bool) portssvc.InvoiceSvcFacade {
	return &invoiceService{
		invoiceRepo:        invoiceRepo,
		txManager:          txManager,
		allowZeroCostItems: allowZeroCostItems,
	}
}

// Ensure invoiceService implements the portssvc.InvoiceSvcFacade interface
var _ portssvc.InvoiceSvcFacade = (*invoiceService)(nil)

// recalcTotals rewrites the invoice's derived money fields from its items.
// GrandTotal = subtotal + tax + landed costs; RemainingAmount tracks AmountPaid.
func recalcTotals(invoice *domain.PurchaseInvoice) {
	subtotal := decimal.Zero
	for _, item := range invoice.Items {
		subtotal = subtotal.Add(item.Quantity.Mul(item.UnitCost))
	}
	invoice.Subtotal = subtotal
	invoice.GrandTotal = subtotal.Add(invoice.TaxAmount).Add(invoice.LandedCostTotal)
	invoice.RemainingAmount = invoice.GrandTotal.Sub(invoice.AmountPaid)
}

// validatePostable enforces the pre-posting checks: at least one item, all
// quantities positive, and no zero-cost items unless the policy allows them.
func (s *invoiceService) validatePostable(invoice *domain.PurchaseInvoice) error {
	if len(invoice.Items) == 0 {
		return ErrInvoiceNoItems
	}
	for _, item := range invoice.Items {
		if !item.Quantity.IsPositive() {
			return fmt.Errorf("%w: item %s has quantity %s", ErrItemQtyNotPositive, item.ItemID, item.Quantity.String())
		}
		if item.EffectiveUnitCost().IsZero() && !s.allowZeroCostItems {
			return fmt.Errorf("%w: item %s", ErrItemZeroCost, item.ItemID)
		}
	}
	return nil
}

// CreateInvoice persists a new DRAFT invoice with its items.
// Implements portssvc.InvoiceSvcFacade
func (s *invoiceService) CreateInvoice(ctx context.Context, req dto.CreateInvoiceRequest, creatorID string) (*domain.PurchaseInvoice, error) {
	logger := logging.FromContext(ctx)

	if err := dto.Validate(req); err != nil {
		return nil, err
	}
	for _, item := range req.Items {
		if !item.Quantity.IsPositive() {
			return nil, fmt.Errorf("%w: variant %s", ErrItemQtyNotPositive, item.VariantID)
		}
	}

	now := time.Now().UTC()
	audit := domain.AuditFields{
		CreatedAt:     now,
		CreatedBy:     creatorID,
		LastUpdatedAt: now,
		LastUpdatedBy: creatorID,
	}
	invoiceID := uuid.NewString()

	items := make([]domain.PurchaseInvoiceItem, len(req.Items))
	for i, itemReq := range req.Items {
		items[i] = domain.PurchaseInvoiceItem{
			ItemID:         uuid.NewString(),
			InvoiceID:      invoiceID,
			VariantID:      itemReq.VariantID,
			Quantity:       itemReq.Quantity,
			UnitCost:       itemReq.UnitCost,
			IsStockTracked: itemReq.IsStockTracked,
			AuditFields:    audit,
		}
	}

	invoice := domain.PurchaseInvoice{
		InvoiceID:     invoiceID,
		SupplierID:    req.SupplierID,
		InvoiceDate:   req.InvoiceDate,
		Reference:     req.Reference,
		Status:        domain.InvoiceDraft,
		PaymentStatus: domain.PaymentUnpaid,
		TaxAmount:     req.TaxAmount,
		Items:         items,
		AuditFields:   audit,
	}
	recalcTotals(&invoice)

	if err := s.invoiceRepo.SaveInvoice(ctx, invoice); err != nil {
		logger.Error("failed to save invoice", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to save invoice: %w", err)
	}

	logger.Info("invoice created",
		slog.String("invoice_id", invoiceID),
		slog.String("supplier_id", req.SupplierID),
		slog.Int("item_count", len(items)))
	return &invoice, nil
}

// AddItem appends an item to an editable invoice and refreshes totals.
// Implements portssvc.InvoiceSvcFacade
func (s *invoiceService) AddItem(ctx context.Context, invoiceID string, req dto.AddInvoiceItemRequest, actorID string) (*domain.PurchaseInvoice, error) {
	if err := dto.Validate(req); err != nil {
		return nil, err
	}
	if !req.Quantity.IsPositive() {
		return nil, fmt.Errorf("%w: variant %s", ErrItemQtyNotPositive, req.VariantID)
	}

	var updated *domain.PurchaseInvoice
	err := s.txManager.WithinTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		invoice, err := s.invoiceRepo.FindInvoiceByIDForUpdate(ctx, tx, invoiceID)
		if err != nil {
			return err
		}
		if invoice.Status != domain.InvoiceDraft && invoice.Status != domain.InvoiceReviewed {
			return fmt.Errorf("%w: status is %s", ErrInvoiceNotEditable, invoice.Status)
		}

		now := time.Now().UTC()
		item := domain.PurchaseInvoiceItem{
			ItemID:         uuid.NewString(),
			InvoiceID:      invoiceID,
			VariantID:      req.VariantID,
			Quantity:       req.Quantity,
			UnitCost:       req.UnitCost,
			IsStockTracked: req.IsStockTracked,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     actorID,
				LastUpdatedAt: now,
				LastUpdatedBy: actorID,
			},
		}
		if err := s.invoiceRepo.SaveItemInTx(ctx, tx, item); err != nil {
			return fmt.Errorf("failed to save invoice item: %w", err)
		}

		invoice.Items = append(invoice.Items, item)
		recalcTotals(invoice)
		invoice.LastUpdatedAt = now
		invoice.LastUpdatedBy = actorID
		if err := s.invoiceRepo.UpdateTotalsInTx(ctx, tx, *invoice); err != nil {
			return fmt.Errorf("failed to update invoice totals: %w", err)
		}
		updated = invoice
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// ApplyLandedCosts distributes freight/duty/handling across the invoice's
// items and stores the adjusted per-item cost. Only editable invoices accept
// landed costs; the adjusted cost is what intake will capitalize.
// Implements portssvc.InvoiceSvcFacade
func (s *invoiceService) ApplyLandedCosts(ctx context.Context, invoiceID string, req dto.ApplyLandedCostsRequest, actorID string) (*domain.PurchaseInvoice, error) {
	logger := logging.FromContext(ctx)

	if err := dto.Validate(req); err != nil {
		return nil, err
	}
	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("landed cost amount must be positive, got %s", req.Amount.String())
	}

	var updated *domain.PurchaseInvoice
	err := s.txManager.WithinTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		invoice, err := s.invoiceRepo.FindInvoiceByIDForUpdate(ctx, tx, invoiceID)
		if err != nil {
			return err
		}
		if invoice.Status != domain.InvoiceDraft && invoice.Status != domain.InvoiceReviewed {
			return fmt.Errorf("%w: status is %s", ErrInvoiceNotEditable, invoice.Status)
		}
		if len(invoice.Items) == 0 {
			return ErrInvoiceNoItems
		}

		allocItems := make([]costing.AllocationItem, len(invoice.Items))
		for i, item := range invoice.Items {
			allocItems[i] = costing.AllocationItem{
				ItemID:   item.ItemID,
				Quantity: item.Quantity,
				UnitCost: item.UnitCost,
			}
		}
		shares := costing.AllocateLandedCosts(allocItems, req.Amount, req.Method)

		now := time.Now().UTC()
		finalCosts := make(map[string]decimal.Decimal, len(invoice.Items))
		for i := range invoice.Items {
			item := &invoice.Items[i]
			share := shares[item.ItemID]
			perUnit := decimal.Zero
			if item.Quantity.IsPositive() {
				perUnit = share.Div(item.Quantity)
			}
			final := item.UnitCost.Add(perUnit).Round(4)
			item.FinalUnitCost = &final
			finalCosts[item.ItemID] = final
		}
		if err := s.invoiceRepo.UpdateItemFinalCostsInTx(ctx, tx, finalCosts); err != nil {
			return fmt.Errorf("failed to store landed costs: %w", err)
		}

		invoice.LandedCostTotal = invoice.LandedCostTotal.Add(req.Amount)
		recalcTotals(invoice)
		invoice.LastUpdatedAt = now
		invoice.LastUpdatedBy = actorID
		if err := s.invoiceRepo.UpdateTotalsInTx(ctx, tx, *invoice); err != nil {
			return fmt.Errorf("failed to update invoice totals: %w", err)
		}
		updated = invoice
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("landed costs applied",
		slog.String("invoice_id", invoiceID),
		slog.String("amount", req.Amount.String()),
		slog.String("method", string(req.Method)))
	return updated, nil
}

// Transition moves the invoice through its lifecycle. POSTED is rejected here;
// that transition is owned by the intake flow so stock and ledger effects land
// in the same transaction.
// Implements portssvc.InvoiceSvcFacade
func (s *invoiceService) Transition(ctx context.Context, invoiceID string, target domain.InvoiceStatus, note string, actorID string) (*domain.PurchaseInvoice, error) {
	logger := logging.FromContext(ctx)

	if target == domain.InvoicePosted {
		return nil, ErrPostViaIntake
	}

	var updated *domain.PurchaseInvoice
	err := s.txManager.WithinTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		invoice, err := s.invoiceRepo.FindInvoiceByIDForUpdate(ctx, tx, invoiceID)
		if err != nil {
			return err
		}
		if !transitionAllowed(invoice.Status, target) {
			return &InvalidTransitionError{From: invoice.Status, To: target}
		}

		now := time.Now().UTC()
		if err := s.invoiceRepo.UpdateStatusInTx(ctx, tx, invoiceID, target, nil, actorID, now); err != nil {
			return fmt.Errorf("failed to update invoice status: %w", err)
		}
		if err := s.invoiceRepo.AppendAuditLogInTx(ctx, tx, domain.InvoiceAuditLog{
			LogID:      uuid.NewString(),
			InvoiceID:  invoiceID,
			FromStatus: invoice.Status,
			ToStatus:   target,
			Note:       note,
			ActorID:    actorID,
			CreatedAt:  now,
		}); err != nil {
			return fmt.Errorf("failed to append invoice audit log: %w", err)
		}

		invoice.Status = target
		invoice.LastUpdatedAt = now
		invoice.LastUpdatedBy = actorID
		updated = invoice
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("invoice transitioned",
		slog.String("invoice_id", invoiceID),
		slog.String("to_status", string(target)))
	return updated, nil
}

// TransitionToPostedInTx locks the invoice, validates it is postable and moves
// it APPROVED -> POSTED. Called by the intake flow inside its transaction.
func (s *invoiceService) TransitionToPostedInTx(ctx context.Context, tx pgx.Tx, invoiceID string, note string, actorID string) (*domain.PurchaseInvoice, error) {
	invoice, err := s.invoiceRepo.FindInvoiceByIDForUpdate(ctx, tx, invoiceID)
	if err != nil {
		return nil, err
	}
	if !transitionAllowed(invoice.Status, domain.InvoicePosted) {
		return nil, &InvalidTransitionError{From: invoice.Status, To: domain.InvoicePosted}
	}
	if err := s.validatePostable(invoice); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if err := s.invoiceRepo.UpdateStatusInTx(ctx, tx, invoiceID, domain.InvoicePosted, &now, actorID, now); err != nil {
		return nil, fmt.Errorf("failed to update invoice status: %w", err)
	}
	if err := s.invoiceRepo.AppendAuditLogInTx(ctx, tx, domain.InvoiceAuditLog{
		LogID:      uuid.NewString(),
		InvoiceID:  invoiceID,
		FromStatus: invoice.Status,
		ToStatus:   domain.InvoicePosted,
		Note:       note,
		ActorID:    actorID,
		CreatedAt:  now,
	}); err != nil {
		return nil, fmt.Errorf("failed to append invoice audit log: %w", err)
	}

	invoice.Status = domain.InvoicePosted
	invoice.PostedDate = &now
	invoice.LastUpdatedAt = now
	invoice.LastUpdatedBy = actorID
	return invoice, nil
}

// GetInvoiceByID retrieves an invoice with its items.
// Implements portssvc.InvoiceSvcFacade
func (s *invoiceService) GetInvoiceByID(ctx context.Context, invoiceID string) (*domain.PurchaseInvoice, error) {
	return s.invoiceRepo.FindInvoiceByID(ctx, invoiceID)
}

// ListAuditLog returns the invoice's transition history, oldest first.
// Implements portssvc.InvoiceSvcFacade
func (s *invoiceService) ListAuditLog(ctx context.Context, invoiceID string) ([]domain.InvoiceAuditLog, error) {
	return s.invoiceRepo.ListAuditLog(ctx, invoiceID)
}
