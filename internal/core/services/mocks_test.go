package services_test

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/merchantledger/merchant_ledger_app/internal/core/domain"
	portsrepo "github.com/merchantledger/merchant_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/merchantledger/merchant_ledger_app/internal/core/ports/services"
	"github.com/merchantledger/merchant_ledger_app/internal/dto"
)

// fakeTxManager runs the callback synchronously with a nil transaction so
// service flows can be exercised against mocks.
type fakeTxManager struct{}

var _ portsrepo.TxManager = (*fakeTxManager)(nil)

func (f *fakeTxManager) WithinTx(ctx context.Context, fn func(ctx context.Context, tx pgx.Tx) error) error {
	return fn(ctx, nil)
}

func (f *fakeTxManager) WithinSerializableTx(ctx context.Context, fn func(ctx context.Context, tx pgx.Tx) error) error {
	return fn(ctx, nil)
}

// --- Mock AccountRepository ---
type MockAccountRepository struct {
	mock.Mock
}

// Ensure MockAccountRepository implements portsrepo.AccountRepositoryFacade
var _ portsrepo.AccountRepositoryFacade = (*MockAccountRepository)(nil)

func (m *MockAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, accountIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) FindAccountByCode(ctx context.Context, code string) (*domain.Account, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) FindAccountsByCodes(ctx context.Context, codes []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, codes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) RecomputeBalanceFromLines(ctx context.Context, accountID string) (decimal.Decimal, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return decimal.Zero, args.Error(1)
	}
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) DeactivateAccount(ctx context.Context, accountID string, actorID string, now time.Time) error {
	args := m.Called(ctx, accountID, actorID, now)
	return args.Error(0)
}

func (m *MockAccountRepository) FindAccountsByIDsForUpdate(ctx context.Context, tx pgx.Tx, accountIDs []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, tx, accountIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) ApplyBalanceDeltasInTx(ctx context.Context, tx pgx.Tx, deltas map[string]decimal.Decimal, actorID string, now time.Time) error {
	args := m.Called(ctx, tx, deltas, actorID, now)
	return args.Error(0)
}

// --- Mock JournalRepository ---
type MockJournalRepository struct {
	mock.Mock
}

// Ensure MockJournalRepository implements portsrepo.JournalRepositoryFacade
var _ portsrepo.JournalRepositoryFacade = (*MockJournalRepository)(nil)

func (m *MockJournalRepository) FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockJournalRepository) FindEntriesByReference(ctx context.Context, reference string) ([]domain.JournalEntry, error) {
	args := m.Called(ctx, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.JournalEntry), args.Error(1)
}

func (m *MockJournalRepository) SaveEntry(ctx context.Context, entry domain.JournalEntry, lines []domain.TransactionLine, balanceDeltas map[string]decimal.Decimal) error {
	args := m.Called(ctx, entry, lines, balanceDeltas)
	return args.Error(0)
}

func (m *MockJournalRepository) SaveEntryInTx(ctx context.Context, tx pgx.Tx, entry domain.JournalEntry, lines []domain.TransactionLine, balanceDeltas map[string]decimal.Decimal) error {
	args := m.Called(ctx, tx, entry, lines, balanceDeltas)
	return args.Error(0)
}

func (m *MockJournalRepository) MarkEntryReversedInTx(ctx context.Context, tx pgx.Tx, entryID string, reversingEntryID string, actorID string, now time.Time) error {
	args := m.Called(ctx, tx, entryID, reversingEntryID, actorID, now)
	return args.Error(0)
}

// --- Mock InvoiceRepository ---
type MockInvoiceRepository struct {
	mock.Mock
}

// Ensure MockInvoiceRepository implements portsrepo.InvoiceRepositoryFacade
var _ portsrepo.InvoiceRepositoryFacade = (*MockInvoiceRepository)(nil)

func (m *MockInvoiceRepository) FindInvoiceByID(ctx context.Context, invoiceID string) (*domain.PurchaseInvoice, error) {
	args := m.Called(ctx, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PurchaseInvoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindInvoiceByIDForUpdate(ctx context.Context, tx pgx.Tx, invoiceID string) (*domain.PurchaseInvoice, error) {
	args := m.Called(ctx, tx, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PurchaseInvoice), args.Error(1)
}

func (m *MockInvoiceRepository) ListAuditLog(ctx context.Context, invoiceID string) ([]domain.InvoiceAuditLog, error) {
	args := m.Called(ctx, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.InvoiceAuditLog), args.Error(1)
}

func (m *MockInvoiceRepository) SaveInvoice(ctx context.Context, invoice domain.PurchaseInvoice) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

func (m *MockInvoiceRepository) SaveItemInTx(ctx context.Context, tx pgx.Tx, item domain.PurchaseInvoiceItem) error {
	args := m.Called(ctx, tx, item)
	return args.Error(0)
}

func (m *MockInvoiceRepository) UpdateTotalsInTx(ctx context.Context, tx pgx.Tx, invoice domain.PurchaseInvoice) error {
	args := m.Called(ctx, tx, invoice)
	return args.Error(0)
}

func (m *MockInvoiceRepository) UpdateStatusInTx(ctx context.Context, tx pgx.Tx, invoiceID string, status domain.InvoiceStatus, postedDate *time.Time, actorID string, now time.Time) error {
	args := m.Called(ctx, tx, invoiceID, status, postedDate, actorID, now)
	return args.Error(0)
}

func (m *MockInvoiceRepository) UpdateItemFinalCostsInTx(ctx context.Context, tx pgx.Tx, finalUnitCosts map[string]decimal.Decimal) error {
	args := m.Called(ctx, tx, finalUnitCosts)
	return args.Error(0)
}

func (m *MockInvoiceRepository) UpdatePaymentAmountsInTx(ctx context.Context, tx pgx.Tx, invoiceID string, paid, remaining decimal.Decimal, paymentStatus domain.InvoicePaymentStatus, actorID string, now time.Time) error {
	args := m.Called(ctx, tx, invoiceID, paid, remaining, paymentStatus, actorID, now)
	return args.Error(0)
}

func (m *MockInvoiceRepository) AppendAuditLogInTx(ctx context.Context, tx pgx.Tx, log domain.InvoiceAuditLog) error {
	args := m.Called(ctx, tx, log)
	return args.Error(0)
}

// --- Mock InventoryRepository ---
type MockInventoryRepository struct {
	mock.Mock
}

// Ensure MockInventoryRepository implements portsrepo.InventoryRepositoryFacade
var _ portsrepo.InventoryRepositoryFacade = (*MockInventoryRepository)(nil)

func (m *MockInventoryRepository) FindVariantCost(ctx context.Context, variantID string) (decimal.Decimal, error) {
	args := m.Called(ctx, variantID)
	if args.Get(0) == nil {
		return decimal.Zero, args.Error(1)
	}
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockInventoryRepository) FindBatchesByVariant(ctx context.Context, variantID string) ([]domain.InventoryBatch, error) {
	args := m.Called(ctx, variantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.InventoryBatch), args.Error(1)
}

func (m *MockInventoryRepository) FindCostHistoryByVariant(ctx context.Context, variantID string) ([]domain.CostHistory, error) {
	args := m.Called(ctx, variantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CostHistory), args.Error(1)
}

func (m *MockInventoryRepository) CreateStockInEventInTx(ctx context.Context, tx pgx.Tx, event domain.StockInEvent) error {
	args := m.Called(ctx, tx, event)
	return args.Error(0)
}

func (m *MockInventoryRepository) CreateBatchInTx(ctx context.Context, tx pgx.Tx, batch domain.InventoryBatch) error {
	args := m.Called(ctx, tx, batch)
	return args.Error(0)
}

func (m *MockInventoryRepository) LockVariantCostInTx(ctx context.Context, tx pgx.Tx, variantID string) (decimal.Decimal, error) {
	args := m.Called(ctx, tx, variantID)
	if args.Get(0) == nil {
		return decimal.Zero, args.Error(1)
	}
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockInventoryRepository) VariantOnHandInTx(ctx context.Context, tx pgx.Tx, variantID string) (decimal.Decimal, error) {
	args := m.Called(ctx, tx, variantID)
	if args.Get(0) == nil {
		return decimal.Zero, args.Error(1)
	}
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockInventoryRepository) AdjustWarehouseStockInTx(ctx context.Context, tx pgx.Tx, warehouseID, variantID string, qtyDelta decimal.Decimal, actorID string) error {
	args := m.Called(ctx, tx, warehouseID, variantID, qtyDelta, actorID)
	return args.Error(0)
}

func (m *MockInventoryRepository) UpdateVariantCostInTx(ctx context.Context, tx pgx.Tx, variantID string, newCost decimal.Decimal) error {
	args := m.Called(ctx, tx, variantID, newCost)
	return args.Error(0)
}

func (m *MockInventoryRepository) AppendCostHistoryInTx(ctx context.Context, tx pgx.Tx, history domain.CostHistory) error {
	args := m.Called(ctx, tx, history)
	return args.Error(0)
}

func (m *MockInventoryRepository) AppendStockMovementInTx(ctx context.Context, tx pgx.Tx, movement domain.StockMovement) error {
	args := m.Called(ctx, tx, movement)
	return args.Error(0)
}

// --- Mock OrderRepository ---
type MockOrderRepository struct {
	mock.Mock
}

// Ensure MockOrderRepository implements portsrepo.OrderRepositoryFacade
var _ portsrepo.OrderRepositoryFacade = (*MockOrderRepository)(nil)

func (m *MockOrderRepository) FindOrderByID(ctx context.Context, orderID string) (*domain.SalesOrder, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SalesOrder), args.Error(1)
}

func (m *MockOrderRepository) FindRecognitionByOrderID(ctx context.Context, orderID string) (*domain.RevenueRecognition, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RevenueRecognition), args.Error(1)
}

func (m *MockOrderRepository) FindRecognitionByOrderIDInTx(ctx context.Context, tx pgx.Tx, orderID string) (*domain.RevenueRecognition, error) {
	args := m.Called(ctx, tx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RevenueRecognition), args.Error(1)
}

func (m *MockOrderRepository) SaveRecognitionInTx(ctx context.Context, tx pgx.Tx, recognition domain.RevenueRecognition) error {
	args := m.Called(ctx, tx, recognition)
	return args.Error(0)
}

func (m *MockOrderRepository) SetRecognitionEntryIDsInTx(ctx context.Context, tx pgx.Tx, recognitionID string, revenueEntryID, cogsEntryID *string) error {
	args := m.Called(ctx, tx, recognitionID, revenueEntryID, cogsEntryID)
	return args.Error(0)
}

func (m *MockOrderRepository) UpdateRecognitionAmountsInTx(ctx context.Context, tx pgx.Tx, recognition domain.RevenueRecognition) error {
	args := m.Called(ctx, tx, recognition)
	return args.Error(0)
}

func (m *MockOrderRepository) DeleteRecognitionInTx(ctx context.Context, tx pgx.Tx, recognitionID string) error {
	args := m.Called(ctx, tx, recognitionID)
	return args.Error(0)
}

// --- Mock PayableRepository ---
type MockPayableRepository struct {
	mock.Mock
}

// Ensure MockPayableRepository implements portsrepo.PayableRepositoryFacade
var _ portsrepo.PayableRepositoryFacade = (*MockPayableRepository)(nil)

func (m *MockPayableRepository) FindSupplierByID(ctx context.Context, supplierID string) (*domain.Supplier, error) {
	args := m.Called(ctx, supplierID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Supplier), args.Error(1)
}

func (m *MockPayableRepository) FindPayableByInvoiceForUpdate(ctx context.Context, tx pgx.Tx, invoiceID string) (*domain.AccountsPayable, error) {
	args := m.Called(ctx, tx, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AccountsPayable), args.Error(1)
}

func (m *MockPayableRepository) SavePayableInTx(ctx context.Context, tx pgx.Tx, payable domain.AccountsPayable) error {
	args := m.Called(ctx, tx, payable)
	return args.Error(0)
}

func (m *MockPayableRepository) UpdatePayableInTx(ctx context.Context, tx pgx.Tx, payableID string, amount decimal.Decimal, status domain.PayableStatus, actorID string) error {
	args := m.Called(ctx, tx, payableID, amount, status, actorID)
	return args.Error(0)
}

func (m *MockPayableRepository) AdjustSupplierBalanceInTx(ctx context.Context, tx pgx.Tx, supplierID string, delta decimal.Decimal, actorID string) error {
	args := m.Called(ctx, tx, supplierID, delta, actorID)
	return args.Error(0)
}

func (m *MockPayableRepository) SavePaymentInTx(ctx context.Context, tx pgx.Tx, payment domain.SupplierPayment) error {
	args := m.Called(ctx, tx, payment)
	return args.Error(0)
}

// --- Mock CapitalRepository ---
type MockCapitalRepository struct {
	mock.Mock
}

// Ensure MockCapitalRepository implements portsrepo.CapitalRepositoryFacade
var _ portsrepo.CapitalRepositoryFacade = (*MockCapitalRepository)(nil)

func (m *MockCapitalRepository) ListInvestorsForUpdate(ctx context.Context, tx pgx.Tx) ([]domain.Investor, error) {
	args := m.Called(ctx, tx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Investor), args.Error(1)
}

func (m *MockCapitalRepository) SaveCapitalTransactionInTx(ctx context.Context, tx pgx.Tx, capitalTx domain.CapitalTransaction) error {
	args := m.Called(ctx, tx, capitalTx)
	return args.Error(0)
}

func (m *MockCapitalRepository) UpdateInvestorContributionInTx(ctx context.Context, tx pgx.Tx, investorID string, netContributed decimal.Decimal, actorID string, now time.Time) error {
	args := m.Called(ctx, tx, investorID, netContributed, actorID, now)
	return args.Error(0)
}

func (m *MockCapitalRepository) UpdateInvestorSharesInTx(ctx context.Context, tx pgx.Tx, shares map[string]decimal.Decimal, actorID string, now time.Time) error {
	args := m.Called(ctx, tx, shares, actorID, now)
	return args.Error(0)
}

func (m *MockCapitalRepository) FindInvestorByID(ctx context.Context, investorID string) (*domain.Investor, error) {
	args := m.Called(ctx, investorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Investor), args.Error(1)
}

// --- Mock PeriodRepository ---
type MockPeriodRepository struct {
	mock.Mock
}

// Ensure MockPeriodRepository implements portsrepo.PeriodRepositoryFacade
var _ portsrepo.PeriodRepositoryFacade = (*MockPeriodRepository)(nil)

func (m *MockPeriodRepository) IsDateClosedInTx(ctx context.Context, tx pgx.Tx, date time.Time) (bool, error) {
	args := m.Called(ctx, tx, date)
	return args.Bool(0), args.Error(1)
}

// --- Mock LedgerService ---
type MockLedgerService struct {
	mock.Mock
}

// Ensure MockLedgerService implements portssvc.LedgerSvcFacade
var _ portssvc.LedgerSvcFacade = (*MockLedgerService)(nil)

func (m *MockLedgerService) GetEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockLedgerService) ListEntriesByReference(ctx context.Context, reference string) ([]domain.JournalEntry, error) {
	args := m.Called(ctx, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.JournalEntry), args.Error(1)
}

func (m *MockLedgerService) CreateJournalEntry(ctx context.Context, req dto.CreateJournalEntryRequest, creatorID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, req, creatorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockLedgerService) ReverseEntry(ctx context.Context, entryID string, actorID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, entryID, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockLedgerService) PostEntryInTx(ctx context.Context, tx pgx.Tx, input domain.LedgerEntryInput, creatorID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, tx, input, creatorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockLedgerService) ReverseEntryInTx(ctx context.Context, tx pgx.Tx, entryID string, description string, actorID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, tx, entryID, description, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

// --- Mock InvoiceTxService ---
type MockInvoiceTxService struct {
	mock.Mock
}

// Ensure MockInvoiceTxService implements portssvc.InvoiceTxSvc
var _ portssvc.InvoiceTxSvc = (*MockInvoiceTxService)(nil)

func (m *MockInvoiceTxService) TransitionToPostedInTx(ctx context.Context, tx pgx.Tx, invoiceID string, note string, actorID string) (*domain.PurchaseInvoice, error) {
	args := m.Called(ctx, tx, invoiceID, note, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PurchaseInvoice), args.Error(1)
}

// --- Mock PayableService ---
type MockPayableService struct {
	mock.Mock
}

// Ensure MockPayableService implements portssvc.PayableSvcFacade
var _ portssvc.PayableSvcFacade = (*MockPayableService)(nil)

func (m *MockPayableService) CreateObligationInTx(ctx context.Context, tx pgx.Tx, invoice *domain.PurchaseInvoice, actorID string) (*domain.AccountsPayable, error) {
	args := m.Called(ctx, tx, invoice, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AccountsPayable), args.Error(1)
}

func (m *MockPayableService) RecordPayment(ctx context.Context, invoiceID string, req dto.RecordSupplierPaymentRequest, actorID string) (*domain.SupplierPayment, error) {
	args := m.Called(ctx, invoiceID, req, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SupplierPayment), args.Error(1)
}
