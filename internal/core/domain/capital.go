package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CapitalTransactionType is the direction of an investor capital movement.
type CapitalTransactionType string

const (
	Deposit    CapitalTransactionType = "DEPOSIT"
	Withdrawal CapitalTransactionType = "WITHDRAWAL"
)

// Investor holds net contributed capital and the derived ownership share.
// CurrentShare is recomputed globally on every capital transaction so that
// shares always sum to 100% while total capital is positive.
type Investor struct {
	InvestorID     string          `json:"investorID"`
	Name           string          `json:"name"`
	NetContributed decimal.Decimal `json:"netContributed"`
	CurrentShare   decimal.Decimal `json:"currentShare"` // Percentage
	IsActive       bool            `json:"isActive"`
	JoinedAt       time.Time       `json:"joinedAt"`
	AuditFields
}

// CapitalTransaction records one investor deposit or withdrawal.
type CapitalTransaction struct {
	TransactionID string                 `json:"transactionID"`
	InvestorID    string                 `json:"investorID"`
	Type          CapitalTransactionType `json:"type"`
	Amount        decimal.Decimal        `json:"amount"`
	Description   string                 `json:"description"`
	AuditFields
}
