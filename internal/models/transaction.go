package models

import "github.com/shopspring/decimal"

// TransactionLine represents a single line item within a journal entry,
// affecting one account. Exactly one of Debit/Credit is positive.
type TransactionLine struct {
	LineID      string          `db:"line_id"`
	EntryID     string          `db:"entry_id"`
	AccountID   string          `db:"account_id"`
	Debit       decimal.Decimal `db:"debit"`
	Credit      decimal.Decimal `db:"credit"`
	Description string          `db:"description"`
	AuditFields
}
