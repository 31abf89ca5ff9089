package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/merchantledger/merchant_ledger_app/internal/apperrors"
	"github.com/merchantledger/merchant_ledger_app/internal/core/domain"
	portssvc "github.com/merchantledger/merchant_ledger_app/internal/core/ports/services"
	"github.com/merchantledger/merchant_ledger_app/internal/core/services"
	"github.com/merchantledger/merchant_ledger_app/internal/dto"
)

type LedgerServiceTestSuite struct {
	suite.Suite
	mockAccountRepo  *MockAccountRepository
	mockJournalRepo  *MockJournalRepository
	service          portssvc.LedgerSvcFacade
	assetAccount     domain.Account
	liabilityAccount domain.Account
	revenueAccount   domain.Account
	userID           string
}

func (suite *LedgerServiceTestSuite) SetupTest() {
	suite.mockAccountRepo = new(MockAccountRepository)
	suite.mockJournalRepo = new(MockJournalRepository)
	suite.service = services.NewLedgerService(suite.mockAccountRepo, suite.mockJournalRepo, &fakeTxManager{})

	suite.userID = uuid.NewString()

	suite.assetAccount = domain.Account{
		AccountID:   uuid.NewString(),
		Code:        domain.CodeCash,
		AccountType: domain.Asset,
		Balance:     decimal.NewFromInt(500),
		IsActive:    true,
	}
	suite.liabilityAccount = domain.Account{
		AccountID:   uuid.NewString(),
		Code:        domain.CodeAccountsPayable,
		AccountType: domain.Liability,
		Balance:     decimal.Zero,
		IsActive:    true,
	}
	suite.revenueAccount = domain.Account{
		AccountID:   uuid.NewString(),
		Code:        domain.CodeSalesRevenue,
		AccountType: domain.Revenue,
		Balance:     decimal.Zero,
		IsActive:    true,
	}
}

func (suite *LedgerServiceTestSuite) balancedRequest(amount decimal.Decimal) dto.CreateJournalEntryRequest {
	return dto.CreateJournalEntryRequest{
		Description: "Manual adjustment",
		EntryDate:   time.Now().UTC(),
		Lines: []dto.CreateJournalLineRequest{
			{AccountID: suite.assetAccount.AccountID, Debit: amount},
			{AccountID: suite.liabilityAccount.AccountID, Credit: amount},
		},
	}
}

func (suite *LedgerServiceTestSuite) TestCreateJournalEntry_Success() {
	ctx := context.Background()
	amount := decimal.NewFromInt(100)
	req := suite.balancedRequest(amount)

	accountsMap := map[string]domain.Account{
		suite.assetAccount.AccountID:     suite.assetAccount,
		suite.liabilityAccount.AccountID: suite.liabilityAccount,
	}
	suite.mockAccountRepo.On("FindAccountsByIDs", ctx, mock.AnythingOfType("[]string")).Return(accountsMap, nil).Once()
	suite.mockJournalRepo.On("SaveEntry", ctx, mock.AnythingOfType("domain.JournalEntry"), mock.AnythingOfType("[]domain.TransactionLine"),
		mock.MatchedBy(func(deltas map[string]decimal.Decimal) bool {
			// Debit on a debit-normal asset and credit on a credit-normal
			// liability both raise the cached balance.
			return deltas[suite.assetAccount.AccountID].Equal(amount) &&
				deltas[suite.liabilityAccount.AccountID].Equal(amount)
		})).Return(nil).Once()

	entry, err := suite.service.CreateJournalEntry(ctx, req, suite.userID)

	suite.Require().NoError(err)
	suite.Require().NotNil(entry)
	suite.NotEmpty(entry.EntryID)
	suite.Equal(domain.Posted, entry.Status)
	suite.True(entry.Amount.Equal(amount))
	suite.Equal(suite.userID, entry.CreatedBy)
	suite.Len(entry.Lines, 2)

	suite.mockAccountRepo.AssertExpectations(suite.T())
	suite.mockJournalRepo.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestCreateJournalEntry_Unbalanced() {
	ctx := context.Background()
	req := dto.CreateJournalEntryRequest{
		Description: "Unbalanced",
		EntryDate:   time.Now().UTC(),
		Lines: []dto.CreateJournalLineRequest{
			{AccountID: suite.assetAccount.AccountID, Debit: decimal.NewFromInt(100)},
			{AccountID: suite.liabilityAccount.AccountID, Credit: decimal.NewFromInt(90)},
		},
	}

	_, err := suite.service.CreateJournalEntry(ctx, req, suite.userID)

	suite.Require().Error(err)
	var unbalanced *services.UnbalancedEntryError
	suite.Require().ErrorAs(err, &unbalanced)
	suite.True(unbalanced.DebitTotal.Equal(decimal.NewFromInt(100)))
	suite.True(unbalanced.CreditTotal.Equal(decimal.NewFromInt(90)))
	suite.mockJournalRepo.AssertNotCalled(suite.T(), "SaveEntry", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *LedgerServiceTestSuite) TestCreateJournalEntry_SingleLine() {
	ctx := context.Background()
	req := dto.CreateJournalEntryRequest{
		Description: "One sided",
		EntryDate:   time.Now().UTC(),
		Lines: []dto.CreateJournalLineRequest{
			{AccountID: suite.assetAccount.AccountID, Debit: decimal.NewFromInt(100)},
		},
	}

	_, err := suite.service.CreateJournalEntry(ctx, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *LedgerServiceTestSuite) TestCreateJournalEntry_BothSidesSet() {
	ctx := context.Background()
	req := dto.CreateJournalEntryRequest{
		Description: "Both sides",
		EntryDate:   time.Now().UTC(),
		Lines: []dto.CreateJournalLineRequest{
			{AccountID: suite.assetAccount.AccountID, Debit: decimal.NewFromInt(100), Credit: decimal.NewFromInt(100)},
			{AccountID: suite.liabilityAccount.AccountID, Credit: decimal.NewFromInt(100)},
		},
	}

	_, err := suite.service.CreateJournalEntry(ctx, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrLineOneSided)
}

func (suite *LedgerServiceTestSuite) TestCreateJournalEntry_SingleAccount() {
	ctx := context.Background()
	req := dto.CreateJournalEntryRequest{
		Description: "Self transfer",
		EntryDate:   time.Now().UTC(),
		Lines: []dto.CreateJournalLineRequest{
			{AccountID: suite.assetAccount.AccountID, Debit: decimal.NewFromInt(100)},
			{AccountID: suite.assetAccount.AccountID, Credit: decimal.NewFromInt(100)},
		},
	}

	_, err := suite.service.CreateJournalEntry(ctx, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrEntryMinAccounts)
}

func (suite *LedgerServiceTestSuite) TestCreateJournalEntry_InactiveAccount() {
	ctx := context.Background()
	inactive := suite.liabilityAccount
	inactive.IsActive = false
	req := suite.balancedRequest(decimal.NewFromInt(50))

	accountsMap := map[string]domain.Account{
		suite.assetAccount.AccountID: suite.assetAccount,
		inactive.AccountID:           inactive,
	}
	suite.mockAccountRepo.On("FindAccountsByIDs", ctx, mock.AnythingOfType("[]string")).Return(accountsMap, nil).Once()

	_, err := suite.service.CreateJournalEntry(ctx, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrAccountInactive)
	suite.mockJournalRepo.AssertNotCalled(suite.T(), "SaveEntry", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *LedgerServiceTestSuite) TestCreateJournalEntry_AccountMissing() {
	ctx := context.Background()
	req := suite.balancedRequest(decimal.NewFromInt(50))

	accountsMap := map[string]domain.Account{
		suite.assetAccount.AccountID: suite.assetAccount,
	}
	suite.mockAccountRepo.On("FindAccountsByIDs", ctx, mock.AnythingOfType("[]string")).Return(accountsMap, nil).Once()

	_, err := suite.service.CreateJournalEntry(ctx, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrAccountNotFound)
}

func (suite *LedgerServiceTestSuite) TestPostEntryInTx_Success() {
	ctx := context.Background()
	amount := decimal.NewFromInt(250)
	input := domain.LedgerEntryInput{
		Description: "Inventory acquisition",
		Reference:   "PINV-42",
		EntryDate:   time.Now().UTC(),
		Lines: []domain.LedgerLineInput{
			{AccountCode: domain.CodeCash, Debit: amount},
			{AccountCode: domain.CodeAccountsPayable, Credit: amount},
		},
	}

	byCode := map[string]domain.Account{
		domain.CodeCash:            suite.assetAccount,
		domain.CodeAccountsPayable: suite.liabilityAccount,
	}
	byID := map[string]domain.Account{
		suite.assetAccount.AccountID:     suite.assetAccount,
		suite.liabilityAccount.AccountID: suite.liabilityAccount,
	}
	suite.mockAccountRepo.On("FindAccountsByCodes", ctx, mock.AnythingOfType("[]string")).Return(byCode, nil).Once()
	suite.mockAccountRepo.On("FindAccountsByIDsForUpdate", ctx, mock.Anything, mock.AnythingOfType("[]string")).Return(byID, nil).Once()
	suite.mockJournalRepo.On("SaveEntryInTx", ctx, mock.Anything, mock.AnythingOfType("domain.JournalEntry"), mock.AnythingOfType("[]domain.TransactionLine"), mock.Anything).Return(nil).Once()
	suite.mockAccountRepo.On("ApplyBalanceDeltasInTx", ctx, mock.Anything, mock.Anything, suite.userID, mock.AnythingOfType("time.Time")).Return(nil).Once()

	entry, err := suite.service.PostEntryInTx(ctx, nil, input, suite.userID)

	suite.Require().NoError(err)
	suite.Require().NotNil(entry)
	suite.Equal("PINV-42", entry.Reference)
	suite.Equal(domain.Posted, entry.Status)
	suite.True(entry.Amount.Equal(amount))
	suite.Equal(suite.assetAccount.AccountID, entry.Lines[0].AccountID)

	suite.mockAccountRepo.AssertExpectations(suite.T())
	suite.mockJournalRepo.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestPostEntryInTx_UnknownCode() {
	ctx := context.Background()
	input := domain.LedgerEntryInput{
		Description: "Bad code",
		EntryDate:   time.Now().UTC(),
		Lines: []domain.LedgerLineInput{
			{AccountCode: "9999", Debit: decimal.NewFromInt(10)},
			{AccountCode: domain.CodeCash, Credit: decimal.NewFromInt(10)},
		},
	}
	byCode := map[string]domain.Account{
		domain.CodeCash: suite.assetAccount,
	}
	suite.mockAccountRepo.On("FindAccountsByCodes", ctx, mock.AnythingOfType("[]string")).Return(byCode, nil).Once()

	_, err := suite.service.PostEntryInTx(ctx, nil, input, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrAccountNotFound)
	suite.mockJournalRepo.AssertNotCalled(suite.T(), "SaveEntryInTx", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *LedgerServiceTestSuite) TestReverseEntry_Success() {
	ctx := context.Background()
	amount := decimal.NewFromInt(80)
	originalID := uuid.NewString()
	original := &domain.JournalEntry{
		EntryID:     originalID,
		Description: "Sale",
		Reference:   "ORD-7",
		Status:      domain.Posted,
		Amount:      amount,
		Lines: []domain.TransactionLine{
			{LineID: uuid.NewString(), EntryID: originalID, AccountID: suite.assetAccount.AccountID, Debit: amount, Credit: decimal.Zero},
			{LineID: uuid.NewString(), EntryID: originalID, AccountID: suite.revenueAccount.AccountID, Debit: decimal.Zero, Credit: amount},
		},
	}

	byID := map[string]domain.Account{
		suite.assetAccount.AccountID:   suite.assetAccount,
		suite.revenueAccount.AccountID: suite.revenueAccount,
	}
	suite.mockJournalRepo.On("FindEntryByID", ctx, originalID).Return(original, nil).Once()
	suite.mockAccountRepo.On("FindAccountsByIDsForUpdate", ctx, mock.Anything, mock.AnythingOfType("[]string")).Return(byID, nil).Once()
	suite.mockJournalRepo.On("SaveEntryInTx", ctx, mock.Anything, mock.AnythingOfType("domain.JournalEntry"),
		mock.MatchedBy(func(lines []domain.TransactionLine) bool {
			// Sides swap, amounts stay.
			return len(lines) == 2 &&
				lines[0].Credit.Equal(amount) && lines[0].Debit.IsZero() &&
				lines[1].Debit.Equal(amount) && lines[1].Credit.IsZero()
		}),
		mock.MatchedBy(func(deltas map[string]decimal.Decimal) bool {
			return deltas[suite.assetAccount.AccountID].Equal(amount.Neg()) &&
				deltas[suite.revenueAccount.AccountID].Equal(amount.Neg())
		})).Return(nil).Once()
	suite.mockAccountRepo.On("ApplyBalanceDeltasInTx", ctx, mock.Anything, mock.Anything, suite.userID, mock.AnythingOfType("time.Time")).Return(nil).Once()
	suite.mockJournalRepo.On("MarkEntryReversedInTx", ctx, mock.Anything, originalID, mock.AnythingOfType("string"), suite.userID, mock.AnythingOfType("time.Time")).Return(nil).Once()

	reversal, err := suite.service.ReverseEntry(ctx, originalID, suite.userID)

	suite.Require().NoError(err)
	suite.Require().NotNil(reversal)
	suite.Require().NotNil(reversal.OriginalEntryID)
	suite.Equal(originalID, *reversal.OriginalEntryID)
	suite.Equal("Reversal of: Sale", reversal.Description)
	suite.Equal(original.Reference, reversal.Reference)
	suite.True(reversal.Amount.Equal(amount))

	suite.mockAccountRepo.AssertExpectations(suite.T())
	suite.mockJournalRepo.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestReverseEntry_AlreadyReversed() {
	ctx := context.Background()
	entryID := uuid.NewString()
	original := &domain.JournalEntry{
		EntryID: entryID,
		Status:  domain.Reversed,
	}
	suite.mockJournalRepo.On("FindEntryByID", ctx, entryID).Return(original, nil).Once()

	_, err := suite.service.ReverseEntry(ctx, entryID, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrEntryAlreadyReversed)
	suite.mockJournalRepo.AssertNotCalled(suite.T(), "SaveEntryInTx", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestLedgerServiceTestSuite(t *testing.T) {
	suite.Run(t, new(LedgerServiceTestSuite))
}
