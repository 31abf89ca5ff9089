package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// JournalStatus indicates the state of a journal entry.
// Entries are created already posted; a reversal marks the original REVERSED
// without ever editing its lines.
type JournalStatus string

const (
	Posted   JournalStatus = "POSTED"
	Reversed JournalStatus = "REVERSED"
)

// JournalEntry represents a single, balanced financial event composed of
// multiple transaction lines. Immutable once created.
type JournalEntry struct {
	EntryID          string            `json:"entryID"`     // Primary Key (UUID)
	Description      string            `json:"description"` // Not null
	Reference        string            `json:"reference"`   // Free-text correlation key, e.g. "PINV-<id>"
	EntryDate        time.Time         `json:"entryDate"`
	Status           JournalStatus     `json:"status"`
	Amount           decimal.Decimal   `json:"amount"` // Debit-side total; the entry's economic value
	OriginalEntryID  *string           `json:"originalEntryID,omitempty"`  // Set on reversing entries
	ReversingEntryID *string           `json:"reversingEntryID,omitempty"` // Set on reversed originals
	OrderID          *string           `json:"orderID,omitempty"`
	CapitalTxID      *string           `json:"capitalTxID,omitempty"`
	Lines            []TransactionLine `json:"lines,omitempty"`
	AuditFields
}

// LedgerLineInput is one side of a posting, keyed by account code so internal
// flows can post without resolving IDs first. Exactly one of Debit or Credit
// is positive; the other is zero.
type LedgerLineInput struct {
	AccountCode string
	Debit       decimal.Decimal
	Credit      decimal.Decimal
	Description string
}

// LedgerEntryInput describes an entry to be posted from an internal flow.
type LedgerEntryInput struct {
	Description string
	Reference   string
	EntryDate   time.Time
	OrderID     *string
	CapitalTxID *string
	Lines       []LedgerLineInput
}
