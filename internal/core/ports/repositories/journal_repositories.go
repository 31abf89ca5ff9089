package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/merchantledger/merchant_ledger_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// JournalReader defines read operations for journal data.
type JournalReader interface {
	// FindEntryByID retrieves a journal entry with its transaction lines.
	FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error)

	// FindEntriesByReference retrieves all entries sharing a correlation key,
	// oldest first.
	FindEntriesByReference(ctx context.Context, reference string) ([]domain.JournalEntry, error)
}

// JournalWriter defines write operations for journal data.
type JournalWriter interface {
	// SaveEntry persists an entry, its lines, and the account balance deltas in
	// one transaction of its own.
	SaveEntry(ctx context.Context, entry domain.JournalEntry, lines []domain.TransactionLine, balanceDeltas map[string]decimal.Decimal) error

	// SaveEntryInTx is SaveEntry scoped to a caller-provided transaction, used
	// when a journal entry must land atomically with other state (stock intake,
	// revenue recognition).
	SaveEntryInTx(ctx context.Context, tx pgx.Tx, entry domain.JournalEntry, lines []domain.TransactionLine, balanceDeltas map[string]decimal.Decimal) error

	// MarkEntryReversedInTx flips an original entry to REVERSED and links its
	// reversing entry. Lines are never touched.
	MarkEntryReversedInTx(ctx context.Context, tx pgx.Tx, entryID string, reversingEntryID string, actorID string, now time.Time) error
}

// JournalRepositoryFacade combines all journal-related repository interfaces.
type JournalRepositoryFacade interface {
	JournalReader
	JournalWriter
}
