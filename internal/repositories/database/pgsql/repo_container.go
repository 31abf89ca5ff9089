package pgsql

import (
	portsrepo "github.com/merchantledger/merchant_ledger_app/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	accountRepo := newPgxAccountRepository(dbPool)
	journalRepo := newPgxJournalRepository(dbPool, accountRepo)
	invoiceRepo := newPgxInvoiceRepository(dbPool)
	inventoryRepo := newPgxInventoryRepository(dbPool)
	orderRepo := newPgxOrderRepository(dbPool)
	payableRepo := newPgxPayableRepository(dbPool)
	capitalRepo := newPgxCapitalRepository(dbPool)
	periodRepo := newPgxPeriodRepository(dbPool)

	return portsrepo.RepositoryProvider{
		Tx:            NewTxManager(dbPool),
		AccountRepo:   accountRepo,
		JournalRepo:   journalRepo,
		InvoiceRepo:   invoiceRepo,
		InventoryRepo: inventoryRepo,
		OrderRepo:     orderRepo,
		PayableRepo:   payableRepo,
		CapitalRepo:   capitalRepo,
		PeriodRepo:    periodRepo,
	}
}
