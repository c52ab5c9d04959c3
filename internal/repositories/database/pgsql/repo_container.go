package pgsql

import (
	portsrepo "github.com/SscSPs/invoice_finance_app/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	uow := newPgxUnitOfWork(dbPool)
	accountRepo := newPgxAccountRepository(dbPool)
	journalRepo := newPgxJournalRepository(dbPool, accountRepo, uow)

	return portsrepo.RepositoryProvider{
		UnitOfWork:            uow,
		InvoiceRepo:           newPgxInvoiceRepository(dbPool),
		OrganizationRepo:      newPgxOrganizationRepository(dbPool),
		CreditFacilityRepo:    newPgxCreditFacilityRepository(dbPool),
		AccountRepo:           accountRepo,
		JournalRepo:           journalRepo,
		TransactionRecordRepo: newPgxTransactionRecordRepository(dbPool),
		ReportingRepo:         newReportingRepository(dbPool),
	}
}
