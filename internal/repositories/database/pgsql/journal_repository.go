package pgsql

import (
	"context"
	"fmt"
	"strconv"

	"github.com/SscSPs/invoice_finance_app/internal/apperrors"
	"github.com/SscSPs/invoice_finance_app/internal/core/domain"
	portsrepo "github.com/SscSPs/invoice_finance_app/internal/core/ports/repositories"
	"github.com/SscSPs/invoice_finance_app/internal/models"
	"github.com/SscSPs/invoice_finance_app/internal/utils/mapping"
	"github.com/SscSPs/invoice_finance_app/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const journalColumns = `journal_entry_id, reference, posting_type, transaction_date, description,
	organization_id, invoice_id, status, amount, posted_at, posted_by,
	created_at, created_by, last_updated_at, last_updated_by`

type PgxJournalRepository struct {
	BaseRepository
	accountRepo portsrepo.AccountRepositoryFacade
	uow         portsrepo.UnitOfWork
}

// newPgxJournalRepository creates a new repository for journal entries and their lines.
func newPgxJournalRepository(pool *pgxpool.Pool, accountRepo portsrepo.AccountRepositoryFacade, uow portsrepo.UnitOfWork) *PgxJournalRepository {
	return &PgxJournalRepository{
		BaseRepository: BaseRepository{Pool: pool},
		accountRepo:    accountRepo,
		uow:            uow,
	}
}

// Ensure PgxJournalRepository implements portsrepo.JournalRepositoryFacade
var _ portsrepo.JournalRepositoryFacade = (*PgxJournalRepository)(nil)

func scanJournalEntry(row pgx.Row) (domain.JournalEntry, error) {
	var m models.JournalEntry
	err := row.Scan(
		&m.JournalEntryID,
		&m.Reference,
		&m.PostingType,
		&m.TransactionDate,
		&m.Description,
		&m.OrganizationID,
		&m.InvoiceID,
		&m.Status,
		&m.Amount,
		&m.PostedAt,
		&m.PostedBy,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return mapping.ToDomainJournalEntry(m), err
}

// SaveJournalEntry saves the header, locks and updates the touched accounts
// and inserts the lines. It joins the caller's unit of work when there is one.
func (r *PgxJournalRepository) SaveJournalEntry(ctx context.Context, entry domain.JournalEntry, lines []domain.JournalEntryLine, balanceChanges map[string]decimal.Decimal) error {
	return r.uow.RunInTx(ctx, func(ctx context.Context) error {
		db := r.conn(ctx)
		now := entry.CreatedAt
		userID := entry.CreatedBy

		// 1. Insert the journal entry header
		m := mapping.ToModelJournalEntry(entry)
		headerQuery := `INSERT INTO journal_entries (` + journalColumns + `)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15);`
		_, err := db.Exec(ctx, headerQuery,
			m.JournalEntryID,
			m.Reference,
			m.PostingType,
			m.TransactionDate,
			m.Description,
			m.OrganizationID,
			m.InvoiceID,
			m.Status,
			m.Amount,
			m.PostedAt,
			m.PostedBy,
			m.CreatedAt,
			m.CreatedBy,
			m.LastUpdatedAt,
			m.LastUpdatedBy,
		)
		if err != nil {
			return mapError("insert journal entry "+m.Reference, err)
		}

		// 2. Lock accounts touched by the balance changes
		accountIDs := make([]string, 0, len(balanceChanges))
		for accID := range balanceChanges {
			accountIDs = append(accountIDs, accID)
		}
		if _, err := r.accountRepo.FindAccountsByIDsForUpdate(ctx, accountIDs); err != nil {
			return fmt.Errorf("lock accounts for entry %s: %w", m.Reference, err)
		}

		// 3. Apply the balance changes
		if err := r.accountRepo.UpdateAccountBalances(ctx, balanceChanges, userID, now); err != nil {
			return fmt.Errorf("update balances for entry %s: %w", m.Reference, err)
		}

		// 4. Insert the lines in one batch
		batch := &pgx.Batch{}
		lineQuery := `
			INSERT INTO journal_entry_lines (line_id, journal_entry_id, line_number, account_id, debit, credit, description, organization_id, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
		`
		for i, line := range lines {
			ml := mapping.ToModelJournalEntryLine(line)
			ml.CreatedAt = now
			batch.Queue(lineQuery,
				ml.LineID,
				ml.JournalEntryID,
				i+1,
				ml.AccountID,
				ml.Debit,
				ml.Credit,
				ml.Description,
				ml.OrganizationID,
				ml.CreatedAt,
			)
		}
		br := db.SendBatch(ctx, batch)
		if err := br.Close(); err != nil {
			return mapError("insert lines for entry "+m.Reference, err)
		}
		return nil
	})
}

// FindJournalEntryByID retrieves an entry with its lines.
func (r *PgxJournalRepository) FindJournalEntryByID(ctx context.Context, journalEntryID string) (*domain.JournalEntry, error) {
	query := `SELECT ` + journalColumns + ` FROM journal_entries WHERE journal_entry_id = $1;`
	entry, err := scanJournalEntry(r.conn(ctx).QueryRow(ctx, query, journalEntryID))
	if err != nil {
		return nil, mapError("find journal entry "+journalEntryID, err)
	}

	linesByEntry, err := r.findLinesByEntryIDs(ctx, []string{entry.JournalEntryID})
	if err != nil {
		return nil, err
	}
	entry.Lines = linesByEntry[entry.JournalEntryID]
	return &entry, nil
}

// ListJournalEntriesByInvoice retrieves every entry posted for an invoice, oldest first.
func (r *PgxJournalRepository) ListJournalEntriesByInvoice(ctx context.Context, invoiceID string) ([]domain.JournalEntry, error) {
	query := `SELECT ` + journalColumns + ` FROM journal_entries
		WHERE invoice_id = $1
		ORDER BY transaction_date, created_at, reference;`
	entries, err := r.queryEntries(ctx, query, invoiceID)
	if err != nil {
		return nil, mapError("list journal entries for invoice "+invoiceID, err)
	}

	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.JournalEntryID
	}
	linesByEntry, err := r.findLinesByEntryIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range entries {
		entries[i].Lines = linesByEntry[entries[i].JournalEntryID]
	}
	return entries, nil
}

// ListJournalEntries retrieves a page of entry headers, newest first.
func (r *PgxJournalRepository) ListJournalEntries(ctx context.Context, limit int, nextToken *string) ([]domain.JournalEntry, *string, error) {
	if limit <= 0 {
		limit = pagination.DefaultLimit
	}
	fetchLimit := limit + 1

	// Ordering is crucial and must be stable
	orderByClause := `ORDER BY transaction_date DESC, created_at DESC`
	args := []any{}
	query := `SELECT ` + journalColumns + ` FROM journal_entries`

	if nextToken != nil && *nextToken != "" {
		lastDate, lastCreatedAt, decodeErr := pagination.DecodeToken(*nextToken)
		if decodeErr != nil {
			return nil, nil, apperrors.NewValidationError("nextToken", decodeErr.Error())
		}
		args = append(args, lastDate, lastCreatedAt)
		query += ` WHERE (transaction_date, created_at) < ($1, $2)`
	}
	args = append(args, fetchLimit)
	query += " " + orderByClause + " LIMIT $" + strconv.Itoa(len(args)) + ";"

	entries, err := r.queryEntries(ctx, query, args...)
	if err != nil {
		return nil, nil, mapError("list journal entries", err)
	}

	var nextTokenVal *string
	if len(entries) > limit {
		last := entries[limit-1]
		token := pagination.EncodeToken(last.TransactionDate, last.CreatedAt)
		nextTokenVal = &token
		entries = entries[:limit]
	}
	return entries, nextTokenVal, nil
}

func (r *PgxJournalRepository) queryEntries(ctx context.Context, query string, args ...any) ([]domain.JournalEntry, error) {
	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []domain.JournalEntry{}
	for rows.Next() {
		e, err := scanJournalEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// findLinesByEntryIDs returns lines grouped by journal entry ID.
func (r *PgxJournalRepository) findLinesByEntryIDs(ctx context.Context, entryIDs []string) (map[string][]domain.JournalEntryLine, error) {
	result := make(map[string][]domain.JournalEntryLine, len(entryIDs))
	if len(entryIDs) == 0 {
		return result, nil
	}

	query := `
		SELECT line_id, journal_entry_id, account_id, debit, credit, description, organization_id, created_at
		FROM journal_entry_lines
		WHERE journal_entry_id = ANY($1)
		ORDER BY journal_entry_id, line_number;
	`
	rows, err := r.conn(ctx).Query(ctx, query, entryIDs)
	if err != nil {
		return nil, mapError("query journal entry lines", err)
	}
	defer rows.Close()

	for rows.Next() {
		var ml models.JournalEntryLine
		if err := rows.Scan(
			&ml.LineID,
			&ml.JournalEntryID,
			&ml.AccountID,
			&ml.Debit,
			&ml.Credit,
			&ml.Description,
			&ml.OrganizationID,
			&ml.CreatedAt,
		); err != nil {
			return nil, mapError("scan journal entry line", err)
		}
		result[ml.JournalEntryID] = append(result[ml.JournalEntryID], mapping.ToDomainJournalEntryLine(ml))
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("iterate journal entry lines", err)
	}
	return result, nil
}
