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
	ErrEntryMinLines        = errors.New("journal entry must have at least two transaction lines")
	ErrEntryMinAccounts     = errors.New("journal entry must affect at least two different accounts")
	ErrLineOneSided         = errors.New("transaction line must have exactly one positive side")
	ErrAccountNotFound      = errors.New("account not found")
	ErrAccountInactive      = errors.New("account is inactive")
	ErrEntryAlreadyReversed = errors.New("journal entry is already reversed")
)

// UnbalancedEntryError reports a debit/credit mismatch with both totals so the
// caller can see the exact discrepancy.
type UnbalancedEntryError struct {
	DebitTotal  decimal.Decimal
	CreditTotal decimal.Decimal
}

func (e *UnbalancedEntryError) Error() string {
	return fmt.Sprintf("journal entry does not balance: debits %s, credits %s",
		e.DebitTotal.String(), e.CreditTotal.String())
}

// ledgerService provides core journal posting and reversal operations.
type ledgerService struct {
	accountRepo portsrepo.AccountRepositoryFacade
	journalRepo portsrepo.JournalRepositoryFacade
	txManager   portsrepo.TxManager
}

// NewLedgerService creates a new LedgerService.
func NewLedgerService(accountRepo portsrepo.AccountRepositoryFacade, journalRepo portsrepo.JournalRepositoryFacade, txManager portsrepo.TxManager) portssvc.LedgerSvcFacade {
	return &ledgerService{
		accountRepo: accountRepo,
		journalRepo: journalRepo,
		txManager:   txManager,
	}
}

// Ensure ledgerService implements the portssvc.LedgerSvcFacade interface
var _ portssvc.LedgerSvcFacade = (*ledgerService)(nil)

// validateLines checks structural rules on a set of lines: at least two lines,
// at least two distinct accounts, each line one-sided and positive, and exact
// debit/credit equality.
func (s *ledgerService) validateLines(lines []domain.TransactionLine) error {
	if len(lines) < 2 {
		return ErrEntryMinLines
	}

	accountSet := make(map[string]bool)
	for _, line := range lines {
		accountSet[line.AccountID] = true
		debitSet := line.Debit.IsPositive()
		creditSet := line.Credit.IsPositive()
		if debitSet == creditSet || line.Debit.IsNegative() || line.Credit.IsNegative() {
			return fmt.Errorf("%w: line for account %s has debit %s and credit %s",
				ErrLineOneSided, line.AccountID, line.Debit.String(), line.Credit.String())
		}
	}
	if len(accountSet) < 2 {
		return ErrEntryMinAccounts
	}

	debitTotal, creditTotal := accounting.SumDebitsCredits(lines)
	if !debitTotal.Equal(creditTotal) {
		return &UnbalancedEntryError{DebitTotal: debitTotal, CreditTotal: creditTotal}
	}
	return nil
}

// resolveBalanceDeltas fetches the affected accounts, checks they are usable
// and returns the signed net balance change per account.
func (s *ledgerService) resolveBalanceDeltas(accounts map[string]domain.Account, lines []domain.TransactionLine) (map[string]decimal.Decimal, error) {
	deltas := make(map[string]decimal.Decimal)
	for _, line := range lines {
		acc, found := accounts[line.AccountID]
		if !found {
			return nil, fmt.Errorf("%w: ID %s", ErrAccountNotFound, line.AccountID)
		}
		if !acc.IsActive {
			return nil, fmt.Errorf("%w: ID %s", ErrAccountInactive, line.AccountID)
		}
		signed, err := accounting.SignedDelta(line, acc.AccountType)
		if err != nil {
			return nil, err
		}
		deltas[line.AccountID] = deltas[line.AccountID].Add(signed)
	}
	return deltas, nil
}

// buildEntry assembles a posted entry and its lines from validated input.
func buildEntry(input domain.LedgerEntryInput, accountIDsByCode map[string]string, creatorID string, now time.Time) (domain.JournalEntry, []domain.TransactionLine) {
	entryID := uuid.NewString()
	audit := domain.AuditFields{
		CreatedAt:     now,
		CreatedBy:     creatorID,
		LastUpdatedAt: now,
		LastUpdatedBy: creatorID,
	}

	lines := make([]domain.TransactionLine, len(input.Lines))
	debitTotal := decimal.Zero
	for i, in := range input.Lines {
		lines[i] = domain.TransactionLine{
			LineID:      uuid.NewString(),
			EntryID:     entryID,
			AccountID:   accountIDsByCode[in.AccountCode],
			Debit:       in.Debit,
			Credit:      in.Credit,
			Description: in.Description,
			AuditFields: audit,
		}
		debitTotal = debitTotal.Add(in.Debit)
	}

	entry := domain.JournalEntry{
		EntryID:     entryID,
		Description: input.Description,
		Reference:   input.Reference,
		EntryDate:   input.EntryDate,
		Status:      domain.Posted,
		Amount:      debitTotal,
		OrderID:     input.OrderID,
		CapitalTxID: input.CapitalTxID,
		Lines:       lines,
		AuditFields: audit,
	}
	return entry, lines
}

// CreateJournalEntry creates a new balanced journal entry from a manual request.
// Implements portssvc.LedgerSvcFacade
func (s *ledgerService) CreateJournalEntry(ctx context.Context, req dto.CreateJournalEntryRequest, creatorID string) (*domain.JournalEntry, error) {
	logger := logging.FromContext(ctx)

	if err := dto.Validate(req); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	entryID := uuid.NewString()
	audit := domain.AuditFields{
		CreatedAt:     now,
		CreatedBy:     creatorID,
		LastUpdatedAt: now,
		LastUpdatedBy: creatorID,
	}

	lines := make([]domain.TransactionLine, len(req.Lines))
	accountIDs := make([]string, 0, len(req.Lines))
	for i, lineReq := range req.Lines {
		lines[i] = domain.TransactionLine{
			LineID:      uuid.NewString(),
			EntryID:     entryID,
			AccountID:   lineReq.AccountID,
			Debit:       lineReq.Debit,
			Credit:      lineReq.Credit,
			Description: lineReq.Description,
			AuditFields: audit,
		}
		accountIDs = append(accountIDs, lineReq.AccountID)
	}

	if err := s.validateLines(lines); err != nil {
		return nil, err
	}

	accounts, err := s.accountRepo.FindAccountsByIDs(ctx, uniqueStrings(accountIDs))
	if err != nil {
		logger.Error("failed to fetch accounts for journal entry", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to fetch accounts: %w", err)
	}
	deltas, err := s.resolveBalanceDeltas(accounts, lines)
	if err != nil {
		return nil, err
	}

	debitTotal, _ := accounting.SumDebitsCredits(lines)
	entry := domain.JournalEntry{
		EntryID:     entryID,
		Description: req.Description,
		Reference:   req.Reference,
		EntryDate:   req.EntryDate,
		Status:      domain.Posted,
		Amount:      debitTotal,
		Lines:       lines,
		AuditFields: audit,
	}

	if err := s.journalRepo.SaveEntry(ctx, entry, lines, deltas); err != nil {
		logger.Error("failed to save journal entry", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to save journal entry: %w", err)
	}

	logger.Info("journal entry created",
		slog.String("entry_id", entryID),
		slog.String("amount", entry.Amount.String()))
	return &entry, nil
}

// PostEntryInTx posts an entry whose lines are keyed by account code, inside a
// caller-provided transaction. Used by the intake, order and capital flows so
// the ledger effect commits or rolls back with the rest of their state.
func (s *ledgerService) PostEntryInTx(ctx context.Context, tx pgx.Tx, input domain.LedgerEntryInput, creatorID string) (*domain.JournalEntry, error) {
	logger := logging.FromContext(ctx)

	codes := make([]string, 0, len(input.Lines))
	for _, line := range input.Lines {
		codes = append(codes, line.AccountCode)
	}
	accountsByCode, err := s.accountRepo.FindAccountsByCodes(ctx, uniqueStrings(codes))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve account codes: %w", err)
	}
	accountIDsByCode := make(map[string]string, len(accountsByCode))
	for code, acc := range accountsByCode {
		accountIDsByCode[code] = acc.AccountID
	}
	for _, code := range codes {
		if _, found := accountIDsByCode[code]; !found {
			return nil, fmt.Errorf("%w: code %s", ErrAccountNotFound, code)
		}
	}

	entry, lines := buildEntry(input, accountIDsByCode, creatorID, time.Now().UTC())
	if err := s.validateLines(lines); err != nil {
		return nil, err
	}

	accountIDs := make([]string, 0, len(lines))
	for _, line := range lines {
		accountIDs = append(accountIDs, line.AccountID)
	}
	lockedAccounts, err := s.accountRepo.FindAccountsByIDsForUpdate(ctx, tx, uniqueStrings(accountIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to lock accounts: %w", err)
	}
	deltas, err := s.resolveBalanceDeltas(lockedAccounts, lines)
	if err != nil {
		return nil, err
	}

	if err := s.journalRepo.SaveEntryInTx(ctx, tx, entry, lines, deltas); err != nil {
		return nil, fmt.Errorf("failed to save journal entry: %w", err)
	}
	if err := s.accountRepo.ApplyBalanceDeltasInTx(ctx, tx, deltas, creatorID, entry.CreatedAt); err != nil {
		return nil, fmt.Errorf("failed to apply balance changes: %w", err)
	}

	logger.Info("journal entry posted",
		slog.String("entry_id", entry.EntryID),
		slog.String("reference", entry.Reference),
		slog.String("amount", entry.Amount.String()))
	return &entry, nil
}

// ReverseEntry creates a mirror-image entry for an existing posted entry.
// Implements portssvc.LedgerSvcFacade
func (s *ledgerService) ReverseEntry(ctx context.Context, entryID string, actorID string) (*domain.JournalEntry, error) {
	var reversal *domain.JournalEntry
	err := s.txManager.WithinTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		var txErr error
		reversal, txErr = s.ReverseEntryInTx(ctx, tx, entryID, "", actorID)
		return txErr
	})
	if err != nil {
		return nil, err
	}
	return reversal, nil
}

// ReverseEntryInTx reverses a posted entry within the caller's transaction.
// The original keeps its lines untouched; a new entry with swapped sides is
// posted and the two are linked.
func (s *ledgerService) ReverseEntryInTx(ctx context.Context, tx pgx.Tx, entryID string, description string, actorID string) (*domain.JournalEntry, error) {
	logger := logging.FromContext(ctx)

	original, err := s.journalRepo.FindEntryByID(ctx, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch entry %s: %w", entryID, err)
	}
	if original.Status == domain.Reversed {
		return nil, fmt.Errorf("%w: ID %s", ErrEntryAlreadyReversed, entryID)
	}

	if description == "" {
		description = fmt.Sprintf("Reversal of: %s", original.Description)
	}
	now := time.Now().UTC()
	input := domain.LedgerEntryInput{
		Description: description,
		Reference:   original.Reference,
		EntryDate:   now,
		OrderID:     original.OrderID,
		CapitalTxID: original.CapitalTxID,
	}

	accountIDs := make([]string, 0, len(original.Lines))
	for _, line := range original.Lines {
		accountIDs = append(accountIDs, line.AccountID)
	}
	accounts, err := s.accountRepo.FindAccountsByIDsForUpdate(ctx, tx, uniqueStrings(accountIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to lock accounts: %w", err)
	}

	audit := domain.AuditFields{
		CreatedAt:     now,
		CreatedBy:     actorID,
		LastUpdatedAt: now,
		LastUpdatedBy: actorID,
	}
	reversalID := uuid.NewString()
	lines := make([]domain.TransactionLine, len(original.Lines))
	for i, line := range original.Lines {
		lines[i] = domain.TransactionLine{
			LineID:      uuid.NewString(),
			EntryID:     reversalID,
			AccountID:   line.AccountID,
			Debit:       line.Credit,
			Credit:      line.Debit,
			Description: line.Description,
			AuditFields: audit,
		}
	}
	deltas, err := s.resolveBalanceDeltas(accounts, lines)
	if err != nil {
		return nil, err
	}

	reversal := domain.JournalEntry{
		EntryID:         reversalID,
		Description:     input.Description,
		Reference:       input.Reference,
		EntryDate:       input.EntryDate,
		Status:          domain.Posted,
		Amount:          original.Amount,
		OriginalEntryID: &original.EntryID,
		OrderID:         input.OrderID,
		CapitalTxID:     input.CapitalTxID,
		Lines:           lines,
		AuditFields:     audit,
	}

	if err := s.journalRepo.SaveEntryInTx(ctx, tx, reversal, lines, deltas); err != nil {
		return nil, fmt.Errorf("failed to save reversing entry: %w", err)
	}
	if err := s.accountRepo.ApplyBalanceDeltasInTx(ctx, tx, deltas, actorID, now); err != nil {
		return nil, fmt.Errorf("failed to apply balance changes: %w", err)
	}
	if err := s.journalRepo.MarkEntryReversedInTx(ctx, tx, original.EntryID, reversalID, actorID, now); err != nil {
		return nil, fmt.Errorf("failed to mark entry reversed: %w", err)
	}

	logger.Info("journal entry reversed",
		slog.String("original_entry_id", original.EntryID),
		slog.String("reversing_entry_id", reversalID))
	return &reversal, nil
}

// GetEntryByID retrieves a journal entry with its lines.
// Implements portssvc.LedgerSvcFacade
func (s *ledgerService) GetEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	entry, err := s.journalRepo.FindEntryByID(ctx, entryID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to fetch entry %s: %w", entryID, err)
	}
	return entry, nil
}

// ListEntriesByReference retrieves all entries sharing a correlation key.
// Implements portssvc.LedgerSvcFacade
func (s *ledgerService) ListEntriesByReference(ctx context.Context, reference string) ([]domain.JournalEntry, error) {
	return s.journalRepo.FindEntriesByReference(ctx, reference)
}
