package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// JournalStatus indicates the state of a journal entry.
type JournalStatus string

const (
	Posted   JournalStatus = "POSTED"
	Reversed JournalStatus = "REVERSED"
)

// JournalEntry represents a balanced financial event row.
type JournalEntry struct {
	EntryID          string          `db:"entry_id"`
	Description      string          `db:"description"`
	Reference        string          `db:"reference"`
	EntryDate        time.Time       `db:"entry_date"`
	Status           JournalStatus   `db:"status"`
	Amount           decimal.Decimal `db:"amount"` // Debit-side total
	OriginalEntryID  *string         `db:"original_entry_id"`
	ReversingEntryID *string         `db:"reversing_entry_id"`
	OrderID          *string         `db:"order_id"`
	CapitalTxID      *string         `db:"capital_tx_id"`
	AuditFields
}
