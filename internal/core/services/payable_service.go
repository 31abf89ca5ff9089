package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/merchantledger/merchant_ledger_app/internal/core/domain"
	portsrepo "github.com/merchantledger/merchant_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/merchantledger/merchant_ledger_app/internal/core/ports/services"
	"github.com/merchantledger/merchant_ledger_app/internal/dto"
	"github.com/merchantledger/merchant_ledger_app/internal/platform/logging"
)

// OverpaymentError reports a payment exceeding the invoice's outstanding amount.
type OverpaymentError struct {
	Outstanding decimal.Decimal
	Attempted   decimal.Decimal
}

func (e *OverpaymentError) Error() string {
	return fmt.Sprintf("payment %s exceeds outstanding amount %s",
		e.Attempted.String(), e.Outstanding.String())
}

// payableService manages supplier obligations: creation at invoice posting and
// settlement by treasury payments.
type payableService struct {
	payableRepo portsrepo.PayableRepositoryFacade
	invoiceRepo portsrepo.InvoiceRepositoryFacade
	ledgerSvc   portssvc.LedgerTxSvc
	txManager   portsrepo.TxManager
	tolerance   decimal.Decimal
}

// NewPayableService creates a new PayableService. tolerance is the maximum
// residual treated as fully paid, absorbing payment-channel rounding.
func NewPayableService(payableRepo portsrepo.PayableRepositoryFacade, invoiceRepo portsrepo.InvoiceRepositoryFacade, ledgerSvc portssvc.LedgerTxSvc, txManager portsrepo.TxManager, tolerance decimal.Decimal) portssvc.PayableSvcFacade {
	return &payableService{
		payableRepo: payableRepo,
		invoiceRepo: invoiceRepo,
		ledgerSvc:   ledgerSvc,
		txManager:   txManager,
		tolerance:   tolerance,
	}
}

// Ensure payableService implements the portssvc.PayableSvcFacade interface
var _ portssvc.PayableSvcFacade = (*payableService)(nil)

// CreateObligationInTx posts the acquisition entry (debit inventory asset,
// credit accounts payable, grand total including tax and landed costs), opens
// the AP record and bumps the supplier's running balance. Called from the
// intake flow inside its transaction.
func (s *payableService) CreateObligationInTx(ctx context.Context, tx pgx.Tx, invoice *domain.PurchaseInvoice, actorID string) (*domain.AccountsPayable, error) {
	logger := logging.FromContext(ctx)

	reference := fmt.Sprintf("PINV-%s", invoice.InvoiceID)
	_, err := s.ledgerSvc.PostEntryInTx(ctx, tx, domain.LedgerEntryInput{
		Description: fmt.Sprintf("Purchase invoice %s", invoice.Reference),
		Reference:   reference,
		EntryDate:   invoice.InvoiceDate,
		Lines: []domain.LedgerLineInput{
			{AccountCode: domain.CodeInventoryAsset, Debit: invoice.GrandTotal},
			{AccountCode: domain.CodeAccountsPayable, Credit: invoice.GrandTotal},
		},
	}, actorID)
	if err != nil {
		return nil, fmt.Errorf("failed to post acquisition entry: %w", err)
	}

	now := invoice.LastUpdatedAt
	payable := domain.AccountsPayable{
		PayableID:  uuid.NewString(),
		InvoiceID:  invoice.InvoiceID,
		SupplierID: invoice.SupplierID,
		Amount:     invoice.RemainingAmount,
		Status:     domain.PayableOpen,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actorID,
			LastUpdatedAt: now,
			LastUpdatedBy: actorID,
		},
	}
	if payable.Amount.LessThanOrEqual(s.tolerance) {
		payable.Status = domain.PayableCleared
	}
	if err := s.payableRepo.SavePayableInTx(ctx, tx, payable); err != nil {
		return nil, fmt.Errorf("failed to save payable: %w", err)
	}
	if payable.Amount.IsPositive() {
		if err := s.payableRepo.AdjustSupplierBalanceInTx(ctx, tx, invoice.SupplierID, payable.Amount, actorID); err != nil {
			return nil, fmt.Errorf("failed to adjust supplier balance: %w", err)
		}
	}

	logger.Info("supplier obligation created",
		slog.String("invoice_id", invoice.InvoiceID),
		slog.String("supplier_id", invoice.SupplierID),
		slog.String("amount", payable.Amount.String()))
	return &payable, nil
}

// RecordPayment settles part or all of an invoice obligation from a treasury
// account. A residual within tolerance clears the obligation.
// Implements portssvc.PayableSvcFacade
func (s *payableService) RecordPayment(ctx context.Context, invoiceID string, req dto.RecordSupplierPaymentRequest, actorID string) (*domain.SupplierPayment, error) {
	logger := logging.FromContext(ctx)

	if err := dto.Validate(req); err != nil {
		return nil, err
	}
	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("payment amount must be positive, got %s", req.Amount.String())
	}

	var payment *domain.SupplierPayment
	err := s.txManager.WithinTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		payable, err := s.payableRepo.FindPayableByInvoiceForUpdate(ctx, tx, invoiceID)
		if err != nil {
			return err
		}
		if req.Amount.GreaterThan(payable.Amount) {
			return &OverpaymentError{Outstanding: payable.Amount, Attempted: req.Amount}
		}

		invoice, err := s.invoiceRepo.FindInvoiceByIDForUpdate(ctx, tx, invoiceID)
		if err != nil {
			return err
		}

		_, err = s.ledgerSvc.PostEntryInTx(ctx, tx, domain.LedgerEntryInput{
			Description: fmt.Sprintf("Payment for invoice %s", invoice.Reference),
			Reference:   fmt.Sprintf("PAY-%s", invoiceID),
			EntryDate:   req.PaymentDate,
			Lines: []domain.LedgerLineInput{
				{AccountCode: domain.CodeAccountsPayable, Debit: req.Amount},
				{AccountCode: req.TreasuryAccount, Credit: req.Amount},
			},
		}, actorID)
		if err != nil {
			return fmt.Errorf("failed to post payment entry: %w", err)
		}

		now := req.PaymentDate
		remaining := payable.Amount.Sub(req.Amount)
		payableStatus := domain.PayableOpen
		paymentStatus := domain.PaymentPartial
		if remaining.LessThanOrEqual(s.tolerance) {
			payableStatus = domain.PayableCleared
			paymentStatus = domain.PaymentPaid
		}
		if err := s.payableRepo.UpdatePayableInTx(ctx, tx, payable.PayableID, remaining, payableStatus, actorID); err != nil {
			return fmt.Errorf("failed to update payable: %w", err)
		}
		if err := s.payableRepo.AdjustSupplierBalanceInTx(ctx, tx, payable.SupplierID, req.Amount.Neg(), actorID); err != nil {
			return fmt.Errorf("failed to adjust supplier balance: %w", err)
		}

		paid := invoice.AmountPaid.Add(req.Amount)
		if err := s.invoiceRepo.UpdatePaymentAmountsInTx(ctx, tx, invoiceID, paid, invoice.GrandTotal.Sub(paid), paymentStatus, actorID, now); err != nil {
			return fmt.Errorf("failed to update invoice payment amounts: %w", err)
		}

		payment = &domain.SupplierPayment{
			PaymentID:         uuid.NewString(),
			InvoiceID:         invoiceID,
			Amount:            req.Amount,
			TreasuryAccountID: req.TreasuryAccount,
			Method:            req.Method,
			Reference:         req.Note,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     actorID,
				LastUpdatedAt: now,
				LastUpdatedBy: actorID,
			},
		}
		if err := s.payableRepo.SavePaymentInTx(ctx, tx, *payment); err != nil {
			return fmt.Errorf("failed to save payment: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("supplier payment recorded",
		slog.String("invoice_id", invoiceID),
		slog.String("amount", req.Amount.String()))
	return payment, nil
}
