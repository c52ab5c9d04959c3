package pgsql

import (
	"context"
	"time"

	"github.com/SscSPs/invoice_finance_app/internal/core/domain"
	portsrepo "github.com/SscSPs/invoice_finance_app/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

// reportingRepository implements the ReportingRepository interface
type reportingRepository struct {
	BaseRepository
}

// newReportingRepository creates a new reporting repository
func newReportingRepository(db *pgxpool.Pool) portsrepo.ReportingRepository {
	return &reportingRepository{
		BaseRepository: BaseRepository{Pool: db},
	}
}

// GetTrialBalanceData sums posted lines per account up to and including asOf.
// Accounts without activity are still listed with zero totals.
func (r *reportingRepository) GetTrialBalanceData(ctx context.Context, asOf time.Time) ([]domain.TrialBalanceRow, error) {
	query := `
		SELECT
			a.account_id,
			a.code,
			a.name AS account_name,
			a.account_type,
			COALESCE(t.total_debit, 0) AS total_debit,
			COALESCE(t.total_credit, 0) AS total_credit
		FROM accounts a
		LEFT JOIN (
			SELECT l.account_id, SUM(l.debit) AS total_debit, SUM(l.credit) AS total_credit
			FROM journal_entry_lines l
			JOIN journal_entries j ON l.journal_entry_id = j.journal_entry_id
			WHERE j.status = 'POSTED'
				AND j.transaction_date <= $1
			GROUP BY l.account_id
		) t ON t.account_id = a.account_id
		ORDER BY a.code
	`

	rows, err := r.conn(ctx).Query(ctx, query, asOf)
	if err != nil {
		return nil, mapError("query trial balance data", err)
	}
	defer rows.Close()

	result := []domain.TrialBalanceRow{}
	for rows.Next() {
		var row domain.TrialBalanceRow
		var accountType string

		if err := rows.Scan(
			&row.AccountID,
			&row.Code,
			&row.AccountName,
			&accountType,
			&row.Debit,
			&row.Credit,
		); err != nil {
			return nil, mapError("scan trial balance row", err)
		}

		row.AccountType = domain.AccountType(accountType)
		result = append(result, row)
	}

	if err := rows.Err(); err != nil {
		return nil, mapError("iterate trial balance rows", err)
	}
	return result, nil
}
