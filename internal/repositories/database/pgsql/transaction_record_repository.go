package pgsql

import (
	"context"
	"time"

	"github.com/SscSPs/invoice_finance_app/internal/core/domain"
	portsrepo "github.com/SscSPs/invoice_finance_app/internal/core/ports/repositories"
	"github.com/SscSPs/invoice_finance_app/internal/models"
	"github.com/SscSPs/invoice_finance_app/internal/utils/mapping"
	"github.com/jackc/pgx/v5/pgxpool"
)

const recordColumns = `record_id, record_type, organization_id, invoice_id, description, amount, rate,
	transaction_date, maturity_date, is_paid, payment_date,
	created_at, created_by, last_updated_at, last_updated_by`

type PgxTransactionRecordRepository struct {
	BaseRepository
}

func newPgxTransactionRecordRepository(pool *pgxpool.Pool) *PgxTransactionRecordRepository {
	return &PgxTransactionRecordRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.TransactionRecordRepositoryFacade = (*PgxTransactionRecordRepository)(nil)

// SaveTransactionRecord inserts a funding, payment, fee or interest record.
func (r *PgxTransactionRecordRepository) SaveTransactionRecord(ctx context.Context, record domain.TransactionRecord) error {
	m := mapping.ToModelTransactionRecord(record)
	query := `INSERT INTO transaction_records (` + recordColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15);`
	_, err := r.conn(ctx).Exec(ctx, query,
		m.RecordID, m.RecordType, m.OrganizationID, m.InvoiceID, m.Description, m.Amount, m.Rate,
		m.TransactionDate, m.MaturityDate, m.IsPaid, m.PaymentDate,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	return mapError("save "+m.RecordType+" record for invoice "+m.InvoiceID, err)
}

// MarkRecordsPaid flags the invoice's records of one type as settled.
func (r *PgxTransactionRecordRepository) MarkRecordsPaid(ctx context.Context, invoiceID string, recordType domain.TransactionRecordType, paymentDate time.Time, userID string) error {
	query := `
		UPDATE transaction_records
		SET is_paid = TRUE, payment_date = $3, last_updated_at = $3, last_updated_by = $4
		WHERE invoice_id = $1 AND record_type = $2 AND is_paid = FALSE;
	`
	_, err := r.conn(ctx).Exec(ctx, query, invoiceID, string(recordType), paymentDate, userID)
	return mapError("mark records paid for invoice "+invoiceID, err)
}

// ListRecordsByInvoice returns an invoice's records, oldest first.
func (r *PgxTransactionRecordRepository) ListRecordsByInvoice(ctx context.Context, invoiceID string) ([]domain.TransactionRecord, error) {
	query := `SELECT ` + recordColumns + ` FROM transaction_records
		WHERE invoice_id = $1 ORDER BY transaction_date, created_at;`
	records, err := r.queryRecords(ctx, query, invoiceID)
	if err != nil {
		return nil, mapError("list records for invoice "+invoiceID, err)
	}
	return records, nil
}

// ListRecordsByOrganization returns the organization's records dated before `before`, oldest first.
func (r *PgxTransactionRecordRepository) ListRecordsByOrganization(ctx context.Context, organizationID string, before time.Time) ([]domain.TransactionRecord, error) {
	query := `SELECT ` + recordColumns + ` FROM transaction_records
		WHERE organization_id = $1 AND transaction_date < $2
		ORDER BY transaction_date, created_at;`
	records, err := r.queryRecords(ctx, query, organizationID, before)
	if err != nil {
		return nil, mapError("list records for organization "+organizationID, err)
	}
	return records, nil
}

func (r *PgxTransactionRecordRepository) queryRecords(ctx context.Context, query string, args ...any) ([]domain.TransactionRecord, error) {
	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []domain.TransactionRecord{}
	for rows.Next() {
		var m models.TransactionRecord
		if err := rows.Scan(
			&m.RecordID,
			&m.RecordType,
			&m.OrganizationID,
			&m.InvoiceID,
			&m.Description,
			&m.Amount,
			&m.Rate,
			&m.TransactionDate,
			&m.MaturityDate,
			&m.IsPaid,
			&m.PaymentDate,
			&m.CreatedAt,
			&m.CreatedBy,
			&m.LastUpdatedAt,
			&m.LastUpdatedBy,
		); err != nil {
			return nil, err
		}
		records = append(records, mapping.ToDomainTransactionRecord(m))
	}
	return records, rows.Err()
}
