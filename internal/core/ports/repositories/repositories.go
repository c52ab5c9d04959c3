package repositories

// RepositoryProvider holds all repository interfaces needed by services.
// This makes passing dependencies to the service container constructor cleaner.
type RepositoryProvider struct {
	UnitOfWork            UnitOfWork
	InvoiceRepo           InvoiceRepositoryFacade
	OrganizationRepo      OrganizationRepositoryFacade
	CreditFacilityRepo    CreditFacilityRepositoryFacade
	AccountRepo           AccountRepositoryFacade
	JournalRepo           JournalRepositoryFacade
	TransactionRecordRepo TransactionRecordRepositoryFacade
	ReportingRepo         ReportingRepository
}
