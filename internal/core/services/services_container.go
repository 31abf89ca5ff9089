package services

import (
	portsrepo "github.com/merchantledger/merchant_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/merchantledger/merchant_ledger_app/internal/core/ports/services"
	"github.com/merchantledger/merchant_ledger_app/pkg/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, hooks ...RecognitionHook) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	// Ledger first since most other services post through it
	container.Account = NewAccountService(repos.AccountRepo)
	container.Ledger = NewLedgerService(repos.AccountRepo, repos.JournalRepo, repos.Tx)

	container.Invoice = NewInvoiceService(repos.InvoiceRepo, repos.Tx, cfg.AllowZeroCostItems)
	container.Payable = NewPayableService(repos.PayableRepo, repos.InvoiceRepo, container.Ledger, repos.Tx, cfg.PaymentRoundingTolerance)
	container.Intake = NewIntakeService(repos.InventoryRepo, container.Invoice, container.Payable, repos.Tx)

	container.OrderFinance = NewOrderFinanceService(
		repos.OrderRepo,
		repos.InventoryRepo,
		repos.PeriodRepo,
		container.Ledger,
		repos.Tx,
		cfg.SalesTaxRate,
		cfg.DefaultWarehouseID,
		hooks...,
	)
	container.Capital = NewCapitalService(repos.CapitalRepo, repos.AccountRepo, container.Ledger, repos.Tx)

	return container
}
