package repositories

// RepositoryProvider holds all repository interfaces needed by services.
// This makes passing dependencies to the service container constructor cleaner.
type RepositoryProvider struct {
	Tx            TxManager
	AccountRepo   AccountRepositoryFacade
	JournalRepo   JournalRepositoryFacade
	InvoiceRepo   InvoiceRepositoryFacade
	InventoryRepo InventoryRepositoryFacade
	OrderRepo     OrderRepositoryFacade
	PayableRepo   PayableRepositoryFacade
	CapitalRepo   CapitalRepositoryFacade
	PeriodRepo    PeriodRepositoryFacade
}
