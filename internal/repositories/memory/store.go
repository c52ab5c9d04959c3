// Package memory is an in-process implementation of the repository ports.
// It backs tests and the STORAGE_DRIVER=memory mode.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/SscSPs/invoice_finance_app/internal/apperrors"
	"github.com/SscSPs/invoice_finance_app/internal/core/domain"
	portsrepo "github.com/SscSPs/invoice_finance_app/internal/core/ports/repositories"
)

type unitCtxKey struct{}

// Store holds every table in maps. Units of work run one at a time and
// restore a snapshot of the maps when they fail.
type Store struct {
	unitMu sync.Mutex
	mu     sync.RWMutex

	organizations map[string]domain.Organization
	facilities    map[string]domain.CreditFacility
	accounts      map[string]domain.Account
	invoices      map[string]domain.Invoice
	entries       map[string]domain.JournalEntry
	entryOrder    []string
	lines         map[string][]domain.JournalEntryLine
	records       []domain.TransactionRecord
}

// New returns an empty store.
func New() *Store {
	return &Store{
		organizations: make(map[string]domain.Organization),
		facilities:    make(map[string]domain.CreditFacility),
		accounts:      make(map[string]domain.Account),
		invoices:      make(map[string]domain.Invoice),
		entries:       make(map[string]domain.JournalEntry),
		entryOrder:    make([]string, 0),
		lines:         make(map[string][]domain.JournalEntryLine),
		records:       make([]domain.TransactionRecord, 0),
	}
}

var _ portsrepo.UnitOfWork = (*Store)(nil)

// RunInTx runs fn as one unit. A unit started inside another joins it.
func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if s.inUnit(ctx) {
		return fn(ctx)
	}

	s.unitMu.Lock()
	defer s.unitMu.Unlock()

	snap := s.snapshot()
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic in unit of work: %v", p)
		}
		if err != nil {
			s.restore(snap)
		}
	}()

	return fn(context.WithValue(ctx, unitCtxKey{}, s))
}

func (s *Store) inUnit(ctx context.Context) bool {
	owner, _ := ctx.Value(unitCtxKey{}).(*Store)
	return owner == s
}

// mutate applies fn under the write lock, inside a unit of work.
func (s *Store) mutate(ctx context.Context, fn func() error) error {
	return s.RunInTx(ctx, func(context.Context) error {
		s.mu.Lock()
		defer s.mu.Unlock()
		return fn()
	})
}

type snapshot struct {
	organizations map[string]domain.Organization
	facilities    map[string]domain.CreditFacility
	accounts      map[string]domain.Account
	invoices      map[string]domain.Invoice
	entries       map[string]domain.JournalEntry
	entryOrder    []string
	lines         map[string][]domain.JournalEntryLine
	records       []domain.TransactionRecord
}

func (s *Store) snapshot() snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lines := make(map[string][]domain.JournalEntryLine, len(s.lines))
	for k, v := range s.lines {
		lines[k] = append([]domain.JournalEntryLine(nil), v...)
	}
	return snapshot{
		organizations: copyMap(s.organizations),
		facilities:    copyMap(s.facilities),
		accounts:      copyMap(s.accounts),
		invoices:      copyMap(s.invoices),
		entries:       copyMap(s.entries),
		entryOrder:    append([]string(nil), s.entryOrder...),
		lines:         lines,
		records:       append([]domain.TransactionRecord(nil), s.records...),
	}
}

func (s *Store) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.organizations = snap.organizations
	s.facilities = snap.facilities
	s.accounts = snap.accounts
	s.invoices = snap.invoices
	s.entries = snap.entries
	s.entryOrder = snap.entryOrder
	s.lines = snap.lines
	s.records = snap.records
}

func copyMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// NewRepositoryProvider wires every memory repository to one store.
func NewRepositoryProvider(s *Store) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		UnitOfWork:            s,
		InvoiceRepo:           &invoiceRepository{s: s},
		OrganizationRepo:      &organizationRepository{s: s},
		CreditFacilityRepo:    &creditFacilityRepository{s: s},
		AccountRepo:           &accountRepository{s: s},
		JournalRepo:           &journalRepository{s: s},
		TransactionRecordRepo: &transactionRecordRepository{s: s},
		ReportingRepo:         &reportingRepository{s: s},
	}
}

func requireUnit(ctx context.Context, s *Store, op string) error {
	if !s.inUnit(ctx) {
		return apperrors.NewPersistenceError(op, errors.New("no unit of work bound to context"))
	}
	return nil
}
