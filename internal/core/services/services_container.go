package services

import (
	portsrepo "github.com/SscSPs/invoice_finance_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/invoice_finance_app/internal/core/ports/services"
	"github.com/SscSPs/invoice_finance_app/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, dispatcher portssvc.EventDispatcher) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{Events: dispatcher}

	// One locker for every service that takes invoice or organization keys
	locker := NewKeyedLocker()
	policy := NewRolePolicy()
	container.Authorizer = policy

	accounting := NewAccountingService(repos.UnitOfWork, repos.AccountRepo, repos.JournalRepo, cfg.BankOrganizationID)
	container.Accounting = accounting

	container.Credit = NewCreditService(repos.UnitOfWork, repos.CreditFacilityRepo, repos.OrganizationRepo)

	container.Invoice = NewInvoiceService(repos, accounting, container.Credit,
		WithInvoiceAuthorizer(policy),
		WithKeyedLocker(locker),
	)

	container.Maturity = NewMaturityService(repos.UnitOfWork, repos.InvoiceRepo, WithMaturityLocker(locker))
	container.Reporting = NewReportingService(repos.ReportingRepo, repos.TransactionRecordRepo, repos.OrganizationRepo)

	return container
}

// Helper to check interface implementations at compile time
var (
	_ portssvc.AccountingSvcFacade = (*accountingService)(nil)
	_ portssvc.CreditSvcFacade     = (*creditService)(nil)
	_ portssvc.InvoiceSvcFacade    = (*invoiceService)(nil)
)
