package pgsql

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/SscSPs/invoice_finance_app/internal/apperrors"
	"github.com/SscSPs/invoice_finance_app/internal/core/domain"
	portsrepo "github.com/SscSPs/invoice_finance_app/internal/core/ports/repositories"
	"github.com/SscSPs/invoice_finance_app/internal/models"
	"github.com/SscSPs/invoice_finance_app/internal/utils/mapping"
	"github.com/SscSPs/invoice_finance_app/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const invoiceColumns = `invoice_id, invoice_number, amount, currency_code, issue_date, due_date,
	seller_org_id, buyer_org_id, counterparty_id, origin, status,
	funded_amount, discount_rate, paid_amount, rejection_reason,
	buyer_approved, buyer_approval_date, seller_accepted, funding_date, payment_date,
	matured, matured_at, created_at, created_by, last_updated_at, last_updated_by`

type PgxInvoiceRepository struct {
	BaseRepository
}

func newPgxInvoiceRepository(pool *pgxpool.Pool) *PgxInvoiceRepository {
	return &PgxInvoiceRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.InvoiceRepositoryFacade = (*PgxInvoiceRepository)(nil)

func scanInvoice(row pgx.Row) (domain.Invoice, error) {
	var m models.Invoice
	err := row.Scan(
		&m.InvoiceID,
		&m.InvoiceNumber,
		&m.Amount,
		&m.CurrencyCode,
		&m.IssueDate,
		&m.DueDate,
		&m.SellerOrgID,
		&m.BuyerOrgID,
		&m.CounterpartyID,
		&m.Origin,
		&m.Status,
		&m.FundedAmount,
		&m.DiscountRate,
		&m.PaidAmount,
		&m.RejectionReason,
		&m.BuyerApproved,
		&m.BuyerApprovalDate,
		&m.SellerAccepted,
		&m.FundingDate,
		&m.PaymentDate,
		&m.Matured,
		&m.MaturedAt,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return mapping.ToDomainInvoice(m), err
}

// SaveInvoice inserts a new invoice.
func (r *PgxInvoiceRepository) SaveInvoice(ctx context.Context, invoice domain.Invoice) error {
	m := mapping.ToModelInvoice(invoice)
	query := `INSERT INTO invoices (` + invoiceColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13,
			$14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26);`
	_, err := r.conn(ctx).Exec(ctx, query,
		m.InvoiceID, m.InvoiceNumber, m.Amount, m.CurrencyCode, m.IssueDate, m.DueDate,
		m.SellerOrgID, m.BuyerOrgID, m.CounterpartyID, m.Origin, m.Status,
		m.FundedAmount, m.DiscountRate, m.PaidAmount, m.RejectionReason,
		m.BuyerApproved, m.BuyerApprovalDate, m.SellerAccepted, m.FundingDate, m.PaymentDate,
		m.Matured, m.MaturedAt, m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	return mapError("save invoice "+m.InvoiceNumber, err)
}

// FindInvoiceByID retrieves an invoice by its ID.
func (r *PgxInvoiceRepository) FindInvoiceByID(ctx context.Context, invoiceID string) (*domain.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE invoice_id = $1;`
	inv, err := scanInvoice(r.conn(ctx).QueryRow(ctx, query, invoiceID))
	if err != nil {
		return nil, mapError("find invoice "+invoiceID, err)
	}
	return &inv, nil
}

// FindInvoiceByIDForUpdate retrieves an invoice and locks its row.
func (r *PgxInvoiceRepository) FindInvoiceByIDForUpdate(ctx context.Context, invoiceID string) (*domain.Invoice, error) {
	if txFromContext(ctx) == nil {
		return nil, apperrors.NewPersistenceError("lock invoice", fmt.Errorf("no transaction bound to context"))
	}
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE invoice_id = $1 FOR UPDATE;`
	inv, err := scanInvoice(r.conn(ctx).QueryRow(ctx, query, invoiceID))
	if err != nil {
		return nil, mapError("lock invoice "+invoiceID, err)
	}
	return &inv, nil
}

// FindInvoiceByNumber retrieves a seller's invoice by its number.
func (r *PgxInvoiceRepository) FindInvoiceByNumber(ctx context.Context, sellerOrgID, invoiceNumber string) (*domain.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE seller_org_id = $1 AND invoice_number = $2;`
	inv, err := scanInvoice(r.conn(ctx).QueryRow(ctx, query, sellerOrgID, invoiceNumber))
	if err != nil {
		return nil, mapError("find invoice "+invoiceNumber, err)
	}
	return &inv, nil
}

// UpdateInvoice writes every mutable column of the invoice.
func (r *PgxInvoiceRepository) UpdateInvoice(ctx context.Context, invoice domain.Invoice) error {
	m := mapping.ToModelInvoice(invoice)
	query := `
		UPDATE invoices
		SET status = $2, funded_amount = $3, discount_rate = $4, paid_amount = $5, rejection_reason = $6,
			buyer_approved = $7, buyer_approval_date = $8, seller_accepted = $9, funding_date = $10,
			payment_date = $11, matured = $12, matured_at = $13, last_updated_at = $14, last_updated_by = $15
		WHERE invoice_id = $1;
	`
	tag, err := r.conn(ctx).Exec(ctx, query,
		m.InvoiceID, m.Status, m.FundedAmount, m.DiscountRate, m.PaidAmount, m.RejectionReason,
		m.BuyerApproved, m.BuyerApprovalDate, m.SellerAccepted, m.FundingDate,
		m.PaymentDate, m.Matured, m.MaturedAt, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		return mapError("update invoice "+m.InvoiceID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("invoice %s: %w", m.InvoiceID, apperrors.ErrNotFound)
	}
	return nil
}

// ListInvoices retrieves a page of invoices ordered by creation time, newest first.
func (r *PgxInvoiceRepository) ListInvoices(ctx context.Context, filter portsrepo.InvoiceFilter, limit int, nextToken *string) ([]domain.Invoice, *string, error) {
	if limit <= 0 {
		limit = pagination.DefaultLimit
	}
	// We fetch one extra item to determine if there's a next page.
	fetchLimit := limit + 1

	conditions := []string{}
	args := []any{}
	if filter.OrganizationID != "" {
		args = append(args, filter.OrganizationID)
		conditions = append(conditions, "(seller_org_id = $"+strconv.Itoa(len(args))+" OR buyer_org_id = $"+strconv.Itoa(len(args))+")")
	}
	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		conditions = append(conditions, "status = $"+strconv.Itoa(len(args)))
	}
	if nextToken != nil && *nextToken != "" {
		lastCreatedAt, lastID, err := pagination.DecodeTimeIDToken(*nextToken)
		if err != nil {
			return nil, nil, apperrors.NewValidationError("nextToken", err.Error())
		}
		args = append(args, lastCreatedAt, lastID)
		conditions = append(conditions, "(created_at, invoice_id) < ($"+strconv.Itoa(len(args)-1)+", $"+strconv.Itoa(len(args))+")")
	}

	query := `SELECT ` + invoiceColumns + ` FROM invoices`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	args = append(args, fetchLimit)
	query += " ORDER BY created_at DESC, invoice_id DESC LIMIT $" + strconv.Itoa(len(args)) + ";"

	invoices, err := r.queryInvoices(ctx, query, args...)
	if err != nil {
		return nil, nil, mapError("list invoices", err)
	}

	var nextTokenVal *string
	if len(invoices) > limit {
		last := invoices[limit-1]
		token := pagination.EncodeTimeIDToken(last.CreatedAt, last.InvoiceID)
		nextTokenVal = &token
		invoices = invoices[:limit]
	}
	return invoices, nextTokenVal, nil
}

// ListPastDueInvoices returns funded invoices past their due date that are not yet flagged matured.
func (r *PgxInvoiceRepository) ListPastDueInvoices(ctx context.Context, asOf time.Time) ([]domain.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices
		WHERE status = $1 AND matured = FALSE AND due_date < $2
		ORDER BY due_date;`
	invoices, err := r.queryInvoices(ctx, query, string(domain.InvoiceFunded), asOf)
	if err != nil {
		return nil, mapError("list past due invoices", err)
	}
	return invoices, nil
}

func (r *PgxInvoiceRepository) queryInvoices(ctx context.Context, query string, args ...any) ([]domain.Invoice, error) {
	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	invoices := []domain.Invoice{}
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, inv)
	}
	return invoices, rows.Err()
}
