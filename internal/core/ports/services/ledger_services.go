package services

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/merchantledger/merchant_ledger_app/internal/core/domain"
	"github.com/merchantledger/merchant_ledger_app/internal/dto"
)

// LedgerReaderSvc defines read operations for journal data
type LedgerReaderSvc interface {
	// GetEntryByID retrieves a specific journal entry with its lines.
	GetEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error)

	// ListEntriesByReference retrieves the audit trail for a correlation key.
	ListEntriesByReference(ctx context.Context, reference string) ([]domain.JournalEntry, error)
}

// LedgerWriterSvc defines write operations for journal data
type LedgerWriterSvc interface {
	// CreateJournalEntry validates, balances and persists a new entry with its
	// lines, in a transaction of its own.
	CreateJournalEntry(ctx context.Context, req dto.CreateJournalEntryRequest, creatorID string) (*domain.JournalEntry, error)

	// ReverseEntry creates a mirror-image entry for an existing posted entry
	// and marks the original REVERSED.
	ReverseEntry(ctx context.Context, entryID string, actorID string) (*domain.JournalEntry, error)
}

// LedgerTxSvc defines posting operations scoped to a caller-provided
// transaction, for flows where an entry must land atomically with other state.
type LedgerTxSvc interface {
	// PostEntryInTx posts an entry whose lines are keyed by account code.
	PostEntryInTx(ctx context.Context, tx pgx.Tx, input domain.LedgerEntryInput, creatorID string) (*domain.JournalEntry, error)

	// ReverseEntryInTx reverses a posted entry within the caller's transaction.
	ReverseEntryInTx(ctx context.Context, tx pgx.Tx, entryID string, description string, actorID string) (*domain.JournalEntry, error)
}

// LedgerSvcFacade combines all ledger-related service interfaces
type LedgerSvcFacade interface {
	LedgerReaderSvc
	LedgerWriterSvc
	LedgerTxSvc
}
