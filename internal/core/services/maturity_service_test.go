package services_test

import (
	"time"

	"github.com/SscSPs/invoice_finance_app/internal/core/domain"
	"github.com/SscSPs/invoice_finance_app/internal/core/services"
	"github.com/shopspring/decimal"
)

func (s *InvoiceLifecycleTestSuite) TestSweepMaturedFlagsPastDueFundedInvoices() {
	funded := s.approved("INV-900", "1000.00")
	_, err := s.service.Fund(s.ctx, funded.InvoiceID, decimal.NewFromInt(2), decimal.Zero, s.operator)
	s.Require().NoError(err)
	open := s.approved("INV-901", "1000.00")

	sweeper := services.NewMaturityService(s.repos.UnitOfWork, s.repos.InvoiceRepo)
	afterDue := funded.DueDate.Add(24 * time.Hour)

	events, err := sweeper.SweepMatured(s.ctx, afterDue)
	s.Require().NoError(err)
	s.Require().Len(events, 1)
	s.Equal(domain.EventInvoiceMatured, events[0].Kind)
	s.Equal(buyerOrgID, events[0].TargetOrgID)
	s.Equal(funded.InvoiceID, events[0].InvoiceID)

	inv, err := s.service.GetInvoice(s.ctx, funded.InvoiceID)
	s.Require().NoError(err)
	s.True(inv.Matured)
	s.Equal(afterDue, *inv.MaturedAt)
	s.Equal(domain.InvoiceFunded, inv.Status)

	untouched, err := s.service.GetInvoice(s.ctx, open.InvoiceID)
	s.Require().NoError(err)
	s.False(untouched.Matured)

	again, err := sweeper.SweepMatured(s.ctx, afterDue.Add(time.Hour))
	s.Require().NoError(err)
	s.Empty(again)

	// Matured does not block settlement.
	_, err = s.service.RecordBuyerPayment(s.ctx, funded.InvoiceID, decimal.NewFromInt(1000), afterDue, s.buyer)
	s.NoError(err)
}
