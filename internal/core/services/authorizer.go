package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SscSPs/invoice_finance_app/internal/apperrors"
	"github.com/SscSPs/invoice_finance_app/internal/core/domain"
	portssvc "github.com/SscSPs/invoice_finance_app/internal/core/ports/services"
)

// rolePolicy grants invoice actions by the principal's role and whether its
// organization is a party to the invoice. Bank operators and the system may do everything.
type rolePolicy struct {
	BaseService
}

// NewRolePolicy returns the default invoice authorizer.
func NewRolePolicy() portssvc.InvoiceAuthorizerSvc {
	return &rolePolicy{}
}

var _ portssvc.InvoiceAuthorizerSvc = (*rolePolicy)(nil)

func (p *rolePolicy) AuthorizeInvoiceAction(ctx context.Context, by domain.Principal, invoice domain.Invoice, action portssvc.InvoiceAction) error {
	if by.Role == domain.RoleBankOperator || by.Role == domain.RoleSystem {
		return nil
	}

	isSeller := by.Role == domain.RoleSeller && by.OrganizationID == invoice.SellerOrgID
	isBuyer := by.Role == domain.RoleBuyer && by.OrganizationID == invoice.BuyerOrgID

	allowed := false
	switch action {
	case portssvc.ActionUpload, portssvc.ActionView:
		allowed = isSeller || isBuyer
	case portssvc.ActionRecordPay, portssvc.ActionOfferEarly:
		allowed = isBuyer
	case portssvc.ActionRespondEarly:
		allowed = isSeller
	}
	if allowed {
		return nil
	}

	p.LogDebug(ctx, "Invoice action denied",
		slog.String("user_id", by.UserID),
		slog.String("role", string(by.Role)),
		slog.String("invoice_id", invoice.InvoiceID),
		slog.String("action", string(action)))
	return fmt.Errorf("%w: %s may not %s invoice %s", apperrors.ErrForbidden, by.Role, action, invoice.InvoiceID)
}
