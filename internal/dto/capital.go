package dto

import (
	"time"

	"github.com/merchantledger/merchant_ledger_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// RecordCapitalTransactionRequest records an investor deposit or withdrawal.
type RecordCapitalTransactionRequest struct {
	InvestorID      string                        `json:"investorID" validate:"required"`
	TransactionType domain.CapitalTransactionType `json:"transactionType" validate:"required,oneof=DEPOSIT WITHDRAWAL"`
	Amount          decimal.Decimal               `json:"amount" validate:"required"`
	TransactionDate time.Time                     `json:"transactionDate" validate:"required"`
	Note            string                        `json:"note"`
}
