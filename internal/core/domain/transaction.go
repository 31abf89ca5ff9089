package domain

import "github.com/shopspring/decimal"

// TransactionLine is one side of a journal entry, affecting one account.
// Conventional usage sets exactly one of Debit/Credit nonzero; the model does
// not forbid both being set.
type TransactionLine struct {
	LineID      string          `json:"lineID"`  // Primary Key (UUID)
	EntryID     string          `json:"entryID"` // FK -> JournalEntry.entryID
	AccountID   string          `json:"accountID"`
	Debit       decimal.Decimal `json:"debit"`  // >= 0
	Credit      decimal.Decimal `json:"credit"` // >= 0
	Description string          `json:"description"`
	AuditFields
}
