package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/merchantledger/merchant_ledger_app/internal/core/domain"
	portssvc "github.com/merchantledger/merchant_ledger_app/internal/core/ports/services"
	"github.com/merchantledger/merchant_ledger_app/internal/core/services"
	"github.com/merchantledger/merchant_ledger_app/internal/dto"
)

type PayableServiceTestSuite struct {
	suite.Suite
	mockPayableRepo *MockPayableRepository
	mockInvoiceRepo *MockInvoiceRepository
	mockLedgerSvc   *MockLedgerService
	service         portssvc.PayableSvcFacade
	userID          string
}

func (suite *PayableServiceTestSuite) SetupTest() {
	suite.mockPayableRepo = new(MockPayableRepository)
	suite.mockInvoiceRepo = new(MockInvoiceRepository)
	suite.mockLedgerSvc = new(MockLedgerService)
	suite.service = services.NewPayableService(suite.mockPayableRepo, suite.mockInvoiceRepo, suite.mockLedgerSvc, &fakeTxManager{}, decimal.RequireFromString("0.01"))
	suite.userID = uuid.NewString()
}

func (suite *PayableServiceTestSuite) testInvoice(grandTotal decimal.Decimal) *domain.PurchaseInvoice {
	now := time.Now().UTC()
	return &domain.PurchaseInvoice{
		InvoiceID:       uuid.NewString(),
		SupplierID:      uuid.NewString(),
		Reference:       "SUP-REF-1",
		Status:          domain.InvoicePosted,
		InvoiceDate:     now,
		GrandTotal:      grandTotal,
		AmountPaid:      decimal.Zero,
		RemainingAmount: grandTotal,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     suite.userID,
			LastUpdatedAt: now,
			LastUpdatedBy: suite.userID,
		},
	}
}

func (suite *PayableServiceTestSuite) TestCreateObligationInTx_Open() {
	ctx := context.Background()
	invoice := suite.testInvoice(decimal.NewFromInt(40))

	suite.mockLedgerSvc.On("PostEntryInTx", ctx, mock.Anything,
		mock.MatchedBy(func(input domain.LedgerEntryInput) bool {
			return input.Reference == "PINV-"+invoice.InvoiceID &&
				input.Lines[0].AccountCode == domain.CodeInventoryAsset && input.Lines[0].Debit.Equal(decimal.NewFromInt(40)) &&
				input.Lines[1].AccountCode == domain.CodeAccountsPayable && input.Lines[1].Credit.Equal(decimal.NewFromInt(40))
		}), suite.userID).Return(&domain.JournalEntry{EntryID: uuid.NewString(), Status: domain.Posted}, nil).Once()
	suite.mockPayableRepo.On("SavePayableInTx", ctx, mock.Anything,
		mock.MatchedBy(func(payable domain.AccountsPayable) bool {
			return payable.InvoiceID == invoice.InvoiceID && payable.Status == domain.PayableOpen && payable.Amount.Equal(decimal.NewFromInt(40))
		})).Return(nil).Once()
	suite.mockPayableRepo.On("AdjustSupplierBalanceInTx", ctx, mock.Anything, invoice.SupplierID,
		mock.MatchedBy(func(delta decimal.Decimal) bool { return delta.Equal(decimal.NewFromInt(40)) }),
		suite.userID).Return(nil).Once()

	payable, err := suite.service.CreateObligationInTx(ctx, nil, invoice, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(domain.PayableOpen, payable.Status)
	suite.mockPayableRepo.AssertExpectations(suite.T())
	suite.mockLedgerSvc.AssertExpectations(suite.T())
}

func (suite *PayableServiceTestSuite) TestCreateObligationInTx_ZeroTotalCleared() {
	ctx := context.Background()
	invoice := suite.testInvoice(decimal.Zero)

	suite.mockLedgerSvc.On("PostEntryInTx", ctx, mock.Anything, mock.AnythingOfType("domain.LedgerEntryInput"), suite.userID).
		Return(&domain.JournalEntry{EntryID: uuid.NewString(), Status: domain.Posted}, nil).Once()
	suite.mockPayableRepo.On("SavePayableInTx", ctx, mock.Anything,
		mock.MatchedBy(func(payable domain.AccountsPayable) bool {
			return payable.Status == domain.PayableCleared && payable.Amount.IsZero()
		})).Return(nil).Once()

	payable, err := suite.service.CreateObligationInTx(ctx, nil, invoice, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(domain.PayableCleared, payable.Status)
	suite.mockPayableRepo.AssertNotCalled(suite.T(), "AdjustSupplierBalanceInTx", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *PayableServiceTestSuite) TestRecordPayment_Partial() {
	ctx := context.Background()
	invoice := suite.testInvoice(decimal.NewFromInt(40))
	payable := &domain.AccountsPayable{
		PayableID:  uuid.NewString(),
		InvoiceID:  invoice.InvoiceID,
		SupplierID: invoice.SupplierID,
		Amount:     decimal.NewFromInt(40),
		Status:     domain.PayableOpen,
	}
	req := dto.RecordSupplierPaymentRequest{
		Amount:          decimal.NewFromInt(15),
		PaymentDate:     time.Now().UTC(),
		TreasuryAccount: domain.CodeCash,
		Method:          "BANK_TRANSFER",
	}

	suite.mockPayableRepo.On("FindPayableByInvoiceForUpdate", ctx, mock.Anything, invoice.InvoiceID).Return(payable, nil).Once()
	suite.mockInvoiceRepo.On("FindInvoiceByIDForUpdate", ctx, mock.Anything, invoice.InvoiceID).Return(invoice, nil).Once()
	suite.mockLedgerSvc.On("PostEntryInTx", ctx, mock.Anything,
		mock.MatchedBy(func(input domain.LedgerEntryInput) bool {
			return input.Reference == "PAY-"+invoice.InvoiceID &&
				input.Lines[0].AccountCode == domain.CodeAccountsPayable && input.Lines[0].Debit.Equal(decimal.NewFromInt(15)) &&
				input.Lines[1].AccountCode == domain.CodeCash && input.Lines[1].Credit.Equal(decimal.NewFromInt(15))
		}), suite.userID).Return(&domain.JournalEntry{EntryID: uuid.NewString(), Status: domain.Posted}, nil).Once()
	suite.mockPayableRepo.On("UpdatePayableInTx", ctx, mock.Anything, payable.PayableID,
		mock.MatchedBy(func(remaining decimal.Decimal) bool { return remaining.Equal(decimal.NewFromInt(25)) }),
		domain.PayableOpen, suite.userID).Return(nil).Once()
	suite.mockPayableRepo.On("AdjustSupplierBalanceInTx", ctx, mock.Anything, invoice.SupplierID,
		mock.MatchedBy(func(delta decimal.Decimal) bool { return delta.Equal(decimal.NewFromInt(-15)) }),
		suite.userID).Return(nil).Once()
	suite.mockInvoiceRepo.On("UpdatePaymentAmountsInTx", ctx, mock.Anything, invoice.InvoiceID,
		mock.MatchedBy(func(paid decimal.Decimal) bool { return paid.Equal(decimal.NewFromInt(15)) }),
		mock.MatchedBy(func(remaining decimal.Decimal) bool { return remaining.Equal(decimal.NewFromInt(25)) }),
		domain.PaymentPartial, suite.userID, req.PaymentDate).Return(nil).Once()
	suite.mockPayableRepo.On("SavePaymentInTx", ctx, mock.Anything,
		mock.MatchedBy(func(payment domain.SupplierPayment) bool {
			return payment.InvoiceID == invoice.InvoiceID && payment.Amount.Equal(decimal.NewFromInt(15)) &&
				payment.TreasuryAccountID == domain.CodeCash && payment.Method == "BANK_TRANSFER"
		})).Return(nil).Once()

	payment, err := suite.service.RecordPayment(ctx, invoice.InvoiceID, req, suite.userID)

	suite.Require().NoError(err)
	suite.True(payment.Amount.Equal(decimal.NewFromInt(15)))
	suite.mockPayableRepo.AssertExpectations(suite.T())
	suite.mockInvoiceRepo.AssertExpectations(suite.T())
	suite.mockLedgerSvc.AssertExpectations(suite.T())
}

func (suite *PayableServiceTestSuite) TestRecordPayment_ClearedWithinTolerance() {
	ctx := context.Background()
	invoice := suite.testInvoice(decimal.NewFromInt(40))
	payable := &domain.AccountsPayable{
		PayableID:  uuid.NewString(),
		InvoiceID:  invoice.InvoiceID,
		SupplierID: invoice.SupplierID,
		Amount:     decimal.NewFromInt(40),
		Status:     domain.PayableOpen,
	}
	req := dto.RecordSupplierPaymentRequest{
		Amount:          decimal.RequireFromString("39.995"),
		PaymentDate:     time.Now().UTC(),
		TreasuryAccount: domain.CodeCash,
		Method:          "CASH",
	}

	suite.mockPayableRepo.On("FindPayableByInvoiceForUpdate", ctx, mock.Anything, invoice.InvoiceID).Return(payable, nil).Once()
	suite.mockInvoiceRepo.On("FindInvoiceByIDForUpdate", ctx, mock.Anything, invoice.InvoiceID).Return(invoice, nil).Once()
	suite.mockLedgerSvc.On("PostEntryInTx", ctx, mock.Anything, mock.AnythingOfType("domain.LedgerEntryInput"), suite.userID).
		Return(&domain.JournalEntry{EntryID: uuid.NewString(), Status: domain.Posted}, nil).Once()
	suite.mockPayableRepo.On("UpdatePayableInTx", ctx, mock.Anything, payable.PayableID,
		mock.MatchedBy(func(remaining decimal.Decimal) bool { return remaining.Equal(decimal.RequireFromString("0.005")) }),
		domain.PayableCleared, suite.userID).Return(nil).Once()
	suite.mockPayableRepo.On("AdjustSupplierBalanceInTx", ctx, mock.Anything, invoice.SupplierID, mock.Anything, suite.userID).Return(nil).Once()
	suite.mockInvoiceRepo.On("UpdatePaymentAmountsInTx", ctx, mock.Anything, invoice.InvoiceID,
		mock.Anything, mock.Anything, domain.PaymentPaid, suite.userID, req.PaymentDate).Return(nil).Once()
	suite.mockPayableRepo.On("SavePaymentInTx", ctx, mock.Anything, mock.AnythingOfType("domain.SupplierPayment")).Return(nil).Once()

	_, err := suite.service.RecordPayment(ctx, invoice.InvoiceID, req, suite.userID)

	suite.Require().NoError(err)
	suite.mockPayableRepo.AssertExpectations(suite.T())
	suite.mockInvoiceRepo.AssertExpectations(suite.T())
}

func (suite *PayableServiceTestSuite) TestRecordPayment_Overpayment() {
	ctx := context.Background()
	invoiceID := uuid.NewString()
	payable := &domain.AccountsPayable{
		PayableID: uuid.NewString(),
		InvoiceID: invoiceID,
		Amount:    decimal.NewFromInt(40),
		Status:    domain.PayableOpen,
	}
	req := dto.RecordSupplierPaymentRequest{
		Amount:          decimal.NewFromInt(50),
		PaymentDate:     time.Now().UTC(),
		TreasuryAccount: domain.CodeCash,
		Method:          "CASH",
	}

	suite.mockPayableRepo.On("FindPayableByInvoiceForUpdate", ctx, mock.Anything, invoiceID).Return(payable, nil).Once()

	_, err := suite.service.RecordPayment(ctx, invoiceID, req, suite.userID)

	suite.Require().Error(err)
	var overpayment *services.OverpaymentError
	suite.Require().ErrorAs(err, &overpayment)
	suite.True(overpayment.Outstanding.Equal(decimal.NewFromInt(40)))
	suite.mockLedgerSvc.AssertNotCalled(suite.T(), "PostEntryInTx", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *PayableServiceTestSuite) TestRecordPayment_NonPositiveAmount() {
	ctx := context.Background()
	req := dto.RecordSupplierPaymentRequest{
		Amount:          decimal.NewFromInt(-5),
		PaymentDate:     time.Now().UTC(),
		TreasuryAccount: domain.CodeCash,
		Method:          "CASH",
	}

	_, err := suite.service.RecordPayment(ctx, uuid.NewString(), req, suite.userID)

	suite.Require().Error(err)
	suite.mockPayableRepo.AssertNotCalled(suite.T(), "FindPayableByInvoiceForUpdate", mock.Anything, mock.Anything, mock.Anything)
}

func TestPayableServiceTestSuite(t *testing.T) {
	suite.Run(t, new(PayableServiceTestSuite))
}
