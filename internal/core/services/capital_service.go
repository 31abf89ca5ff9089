package services

import (
	"context"
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
)

// InsufficientCashError reports a withdrawal exceeding the cash balance.
type InsufficientCashError struct {
	CashBalance decimal.Decimal
	Requested   decimal.Decimal
}

func (e *InsufficientCashError) Error() string {
	return fmt.Sprintf("withdrawal %s exceeds cash balance %s",
		e.Requested.String(), e.CashBalance.String())
}

// capitalService manages investor capital movements and ownership shares.
type capitalService struct {
	capitalRepo portsrepo.CapitalRepositoryFacade
	accountRepo portsrepo.AccountRepositoryFacade
	ledgerSvc   portssvc.LedgerTxSvc
	txManager   portsrepo.TxManager
}

// NewCapitalService creates a new CapitalService.
func NewCapitalService(capitalRepo portsrepo.CapitalRepositoryFacade, accountRepo portsrepo.AccountRepositoryFacade, ledgerSvc portssvc.LedgerTxSvc, txManager portsrepo.TxManager) portssvc.CapitalSvcFacade {
	return &capitalService{
		capitalRepo: capitalRepo,
		accountRepo: accountRepo,
		ledgerSvc:   ledgerSvc,
		txManager:   txManager,
	}
}

// Ensure capitalService implements the portssvc.CapitalSvcFacade interface
var _ portssvc.CapitalSvcFacade = (*capitalService)(nil)

// RecordCapitalTransaction records a deposit or withdrawal, posts the matching
// journal entry and recomputes every investor's ownership share. Runs at
// serializable isolation so concurrent movements cannot base shares on stale
// totals.
// Implements portssvc.CapitalSvcFacade
func (s *capitalService) RecordCapitalTransaction(ctx context.Context, req dto.RecordCapitalTransactionRequest, actorID string) (*domain.CapitalTransaction, error) {
	logger := logging.FromContext(ctx)

	if err := dto.Validate(req); err != nil {
		return nil, err
	}
	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("capital transaction amount must be positive, got %s", req.Amount.String())
	}

	var capitalTx *domain.CapitalTransaction
	err := s.txManager.WithinSerializableTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		investors, err := s.capitalRepo.ListInvestorsForUpdate(ctx, tx)
		if err != nil {
			return fmt.Errorf("failed to lock investors: %w", err)
		}
		var investor *domain.Investor
		for i := range investors {
			if investors[i].InvestorID == req.InvestorID {
				investor = &investors[i]
				break
			}
		}
		if investor == nil {
			return fmt.Errorf("investor %s not found among active investors", req.InvestorID)
		}

		if req.TransactionType == domain.Withdrawal {
			cashAccount, err := s.accountRepo.FindAccountByCode(ctx, domain.CodeCash)
			if err != nil {
				return fmt.Errorf("failed to fetch cash account: %w", err)
			}
			// Compare against the row-locked balance, not the pooled read.
			locked, err := s.accountRepo.FindAccountsByIDsForUpdate(ctx, tx, []string{cashAccount.AccountID})
			if err != nil {
				return fmt.Errorf("failed to lock cash account: %w", err)
			}
			lockedCash, ok := locked[cashAccount.AccountID]
			if !ok {
				return fmt.Errorf("cash account %s disappeared while locking", cashAccount.AccountID)
			}
			if req.Amount.GreaterThan(lockedCash.Balance) {
				return &InsufficientCashError{CashBalance: lockedCash.Balance, Requested: req.Amount}
			}
		}

		now := time.Now().UTC()
		capitalTx = &domain.CapitalTransaction{
			TransactionID: uuid.NewString(),
			InvestorID:    req.InvestorID,
			Type:          req.TransactionType,
			Amount:        req.Amount,
			Description:   req.Note,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     actorID,
				LastUpdatedAt: now,
				LastUpdatedBy: actorID,
			},
		}
		if err := s.capitalRepo.SaveCapitalTransactionInTx(ctx, tx, *capitalTx); err != nil {
			return fmt.Errorf("failed to save capital transaction: %w", err)
		}

		var lines []domain.LedgerLineInput
		newContribution := investor.NetContributed
		if req.TransactionType == domain.Deposit {
			newContribution = newContribution.Add(req.Amount)
			lines = []domain.LedgerLineInput{
				{AccountCode: domain.CodeCash, Debit: req.Amount},
				{AccountCode: domain.CodeOwnersEquity, Credit: req.Amount},
			}
		} else {
			newContribution = newContribution.Sub(req.Amount)
			lines = []domain.LedgerLineInput{
				{AccountCode: domain.CodeOwnersEquity, Debit: req.Amount},
				{AccountCode: domain.CodeCash, Credit: req.Amount},
			}
		}
		if _, err := s.ledgerSvc.PostEntryInTx(ctx, tx, domain.LedgerEntryInput{
			Description: fmt.Sprintf("Capital %s by investor %s", req.TransactionType, req.InvestorID),
			Reference:   fmt.Sprintf("CAP-%s", capitalTx.TransactionID),
			EntryDate:   req.TransactionDate,
			CapitalTxID: &capitalTx.TransactionID,
			Lines:       lines,
		}, actorID); err != nil {
			return fmt.Errorf("failed to post capital entry: %w", err)
		}

		investor.NetContributed = newContribution
		if err := s.capitalRepo.UpdateInvestorContributionInTx(ctx, tx, investor.InvestorID, newContribution, actorID, now); err != nil {
			return fmt.Errorf("failed to update investor contribution: %w", err)
		}

		shares := recomputeShares(investors)
		if len(shares) > 0 {
			if err := s.capitalRepo.UpdateInvestorSharesInTx(ctx, tx, shares, actorID, now); err != nil {
				return fmt.Errorf("failed to update investor shares: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("capital transaction recorded",
		slog.String("investor_id", req.InvestorID),
		slog.String("type", string(req.TransactionType)),
		slog.String("amount", req.Amount.String()))
	return capitalTx, nil
}

// recomputeShares derives each investor's percentage from net contributions.
// When total capital is not positive, shares are left untouched.
func recomputeShares(investors []domain.Investor) map[string]decimal.Decimal {
	total := decimal.Zero
	for _, inv := range investors {
		total = total.Add(inv.NetContributed)
	}
	if !total.IsPositive() {
		return nil
	}
	hundred := decimal.NewFromInt(100)
	shares := make(map[string]decimal.Decimal, len(investors))
	for _, inv := range investors {
		shares[inv.InvestorID] = inv.NetContributed.Div(total).Mul(hundred).Round(4)
	}
	return shares
}

// GetInvestorByID retrieves one investor with current share figures.
// Implements portssvc.CapitalSvcFacade
func (s *capitalService) GetInvestorByID(ctx context.Context, investorID string) (*domain.Investor, error) {
	return s.capitalRepo.FindInvestorByID(ctx, investorID)
}
