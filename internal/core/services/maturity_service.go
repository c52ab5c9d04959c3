package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/SscSPs/invoice_finance_app/internal/core/domain"
	portsrepo "github.com/SscSPs/invoice_finance_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/invoice_finance_app/internal/core/ports/services"
)

type maturityService struct {
	BaseService
	uow         portsrepo.UnitOfWork
	invoiceRepo portsrepo.InvoiceRepositoryFacade
	locker      *KeyedLocker
}

// MaturityServiceOption is a functional option for configuring the maturity service
type MaturityServiceOption func(*maturityService)

// WithMaturityLocker shares the lifecycle controller's locker.
func WithMaturityLocker(locker *KeyedLocker) MaturityServiceOption {
	return func(s *maturityService) {
		s.locker = locker
	}
}

// NewMaturityService creates the service behind the periodic maturity sweep.
func NewMaturityService(uow portsrepo.UnitOfWork, invoiceRepo portsrepo.InvoiceRepositoryFacade, options ...MaturityServiceOption) portssvc.MaturitySvc {
	svc := &maturityService{
		uow:         uow,
		invoiceRepo: invoiceRepo,
		locker:      NewKeyedLocker(),
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.MaturitySvc = (*maturityService)(nil)

// SweepMatured flags every funded invoice whose due date is before now. Invoices are
// handled one unit of work at a time so one failure does not hold back the rest.
func (s *maturityService) SweepMatured(ctx context.Context, now time.Time) ([]domain.DomainEvent, error) {
	now = now.UTC()
	candidates, err := s.invoiceRepo.ListPastDueInvoices(ctx, now)
	if err != nil {
		s.LogError(ctx, err, "Failed to list past due invoices")
		return nil, err
	}

	var events []domain.DomainEvent
	var errs []error
	for _, candidate := range candidates {
		event, flagged, err := s.markMatured(ctx, candidate.InvoiceID, now)
		if err != nil {
			s.LogError(ctx, err, "Failed to mark invoice matured", slog.String("invoice_id", candidate.InvoiceID))
			errs = append(errs, err)
			continue
		}
		if flagged {
			events = append(events, event)
		}
	}

	s.LogInfo(ctx, "Maturity sweep finished",
		slog.Int("candidates", len(candidates)),
		slog.Int("matured", len(events)),
		slog.Int("failed", len(errs)))
	return events, errors.Join(errs...)
}

func (s *maturityService) markMatured(ctx context.Context, invoiceID string, now time.Time) (domain.DomainEvent, bool, error) {
	unlock := s.locker.Lock(invoiceKey(invoiceID))
	defer unlock()

	var event domain.DomainEvent
	flagged := false
	err := s.uow.RunInTx(ctx, func(ctx context.Context) error {
		inv, err := s.invoiceRepo.FindInvoiceByIDForUpdate(ctx, invoiceID)
		if err != nil {
			return err
		}
		// Paid or already flagged since the listing.
		if !inv.IsPastDue(now) || inv.Matured {
			return nil
		}
		maturedAt := now
		inv.Matured = true
		inv.MaturedAt = &maturedAt
		inv.Touch(domain.SystemPrincipal.UserID, now)
		if err := s.invoiceRepo.UpdateInvoice(ctx, *inv); err != nil {
			return err
		}
		event = newEvent(domain.EventInvoiceMatured, *inv, inv.BuyerOrgID, now, map[string]string{
			"dueDate": inv.DueDate.Format(time.DateOnly),
			"amount":  inv.Amount.StringFixed(2),
		})
		flagged = true
		return nil
	})
	return event, flagged, err
}
