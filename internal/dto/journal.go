package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateJournalLineRequest is one line of a manual entry. Exactly one of
// Debit/Credit must be positive; the validator enforces non-negativity and the
// service enforces the one-sided rule.
type CreateJournalLineRequest struct {
	AccountID   string          `json:"accountID" validate:"required"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Description string          `json:"description"`
}

// CreateJournalEntryRequest defines the data for a manual journal entry.
type CreateJournalEntryRequest struct {
	Description string                     `json:"description" validate:"required"`
	Reference   string                     `json:"reference"`
	EntryDate   time.Time                  `json:"entryDate" validate:"required"`
	Lines       []CreateJournalLineRequest `json:"lines" validate:"required,min=2,dive"`
}
