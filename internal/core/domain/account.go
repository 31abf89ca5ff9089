package domain

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

// Well-known chart-of-accounts codes. Seeded at provisioning time; the services
// post against these codes rather than hard-coded account IDs.
const (
	CodeCash               = "1000"
	CodeAccountsReceivable = "1100"
	CodeInventoryAsset     = "1400"
	CodeAccountsPayable    = "2000"
	CodeSalesTaxPayable    = "2100"
	CodeDeferredRevenue    = "2200"
	CodeOwnersEquity       = "3000"
	CodeSalesRevenue       = "4000"
	CodeCOGS               = "5000"
)

// Account represents a chart-of-accounts entry.
// Balance is a cached running total; it changes only through journal posting.
type Account struct {
	AccountID   string          `json:"accountID"`   // Primary Key (UUID)
	Code        string          `json:"code"`        // Unique short code, e.g. "1001"
	Name        string          `json:"name"`        // User-defined name
	AccountType AccountType     `json:"accountType"` // ASSET, LIABILITY, etc.
	Balance     decimal.Decimal `json:"balance"`     // Cached sum of signed postings
	IsActive    bool            `json:"isActive"`
	IsSystem    bool            `json:"isSystem"` // Seed accounts; protected from deletion
	AuditFields
}
