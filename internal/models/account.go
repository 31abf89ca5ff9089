package models

import (
	"github.com/shopspring/decimal"
)

// AccountType defines the fundamental accounting type of an account.
type AccountType string

const (
	Asset     AccountType = "ASSET"
	Liability AccountType = "LIABILITY"
	Equity    AccountType = "EQUITY"
	Revenue   AccountType = "REVENUE"
	Expense   AccountType = "EXPENSE"
)

// Account represents a financial account row in the chart of accounts.
type Account struct {
	AccountID   string          `db:"account_id"`
	Code        string          `db:"code"` // Unique short code, e.g. "1000"
	Name        string          `db:"name"`
	AccountType AccountType     `db:"account_type"`
	Balance     decimal.Decimal `db:"balance"` // Cached; mutated only by journal posting
	IsActive    bool            `db:"is_active"`
	IsSystem    bool            `db:"is_system"`
	AuditFields
}
