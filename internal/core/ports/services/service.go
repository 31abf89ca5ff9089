package services

// ServiceContainer holds all the application services.
type ServiceContainer struct {
	Account      AccountSvcFacade
	Ledger       LedgerSvcFacade
	Invoice      InvoiceSvcFacade
	Intake       IntakeSvcFacade
	Payable      PayableSvcFacade
	OrderFinance OrderFinanceSvcFacade
	Capital      CapitalSvcFacade
}
