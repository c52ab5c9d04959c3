package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/SscSPs/invoice_finance_app/internal/apperrors"
	"github.com/SscSPs/invoice_finance_app/internal/core/domain"
	portsrepo "github.com/SscSPs/invoice_finance_app/internal/core/ports/repositories"
	"github.com/SscSPs/invoice_finance_app/internal/models"
	"github.com/SscSPs/invoice_finance_app/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const facilityColumns = `facility_id, organization_id, facility_type, credit_limit, utilized_amount, is_active,
	created_at, created_by, last_updated_at, last_updated_by`

type PgxCreditFacilityRepository struct {
	BaseRepository
}

func newPgxCreditFacilityRepository(pool *pgxpool.Pool) *PgxCreditFacilityRepository {
	return &PgxCreditFacilityRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.CreditFacilityRepositoryFacade = (*PgxCreditFacilityRepository)(nil)

func scanFacility(row pgx.Row) (domain.CreditFacility, error) {
	var m models.CreditFacility
	err := row.Scan(
		&m.FacilityID,
		&m.OrganizationID,
		&m.FacilityType,
		&m.CreditLimit,
		&m.Utilized,
		&m.IsActive,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return mapping.ToDomainCreditFacility(m), err
}

// SaveFacility inserts a new facility. The partial unique index on
// (organization_id, facility_type) WHERE is_active rejects a second active one.
func (r *PgxCreditFacilityRepository) SaveFacility(ctx context.Context, facility domain.CreditFacility) error {
	m := mapping.ToModelCreditFacility(facility)
	query := `INSERT INTO credit_facilities (` + facilityColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);`
	_, err := r.conn(ctx).Exec(ctx, query,
		m.FacilityID, m.OrganizationID, m.FacilityType, m.CreditLimit, m.Utilized, m.IsActive,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	return mapError("save facility for organization "+m.OrganizationID, err)
}

// FindActiveFacility returns the organization's active facility of the given type.
func (r *PgxCreditFacilityRepository) FindActiveFacility(ctx context.Context, organizationID string, facilityType domain.FacilityType) (*domain.CreditFacility, error) {
	query := `SELECT ` + facilityColumns + ` FROM credit_facilities
		WHERE organization_id = $1 AND facility_type = $2 AND is_active = TRUE;`
	f, err := scanFacility(r.conn(ctx).QueryRow(ctx, query, organizationID, string(facilityType)))
	if err != nil {
		return nil, mapError("find facility for organization "+organizationID, err)
	}
	return &f, nil
}

// FindActiveFacilityForUpdate is FindActiveFacility with a row lock.
func (r *PgxCreditFacilityRepository) FindActiveFacilityForUpdate(ctx context.Context, organizationID string, facilityType domain.FacilityType) (*domain.CreditFacility, error) {
	if txFromContext(ctx) == nil {
		return nil, apperrors.NewPersistenceError("lock facility", fmt.Errorf("no transaction bound to context"))
	}
	query := `SELECT ` + facilityColumns + ` FROM credit_facilities
		WHERE organization_id = $1 AND facility_type = $2 AND is_active = TRUE
		FOR UPDATE;`
	f, err := scanFacility(r.conn(ctx).QueryRow(ctx, query, organizationID, string(facilityType)))
	if err != nil {
		return nil, mapError("lock facility for organization "+organizationID, err)
	}
	return &f, nil
}

// ListFacilitiesByOrganization returns every facility of an organization.
func (r *PgxCreditFacilityRepository) ListFacilitiesByOrganization(ctx context.Context, organizationID string) ([]domain.CreditFacility, error) {
	query := `SELECT ` + facilityColumns + ` FROM credit_facilities
		WHERE organization_id = $1 ORDER BY created_at;`
	rows, err := r.conn(ctx).Query(ctx, query, organizationID)
	if err != nil {
		return nil, mapError("list facilities", err)
	}
	return collectFacilities(rows)
}

// ListAllFacilities returns the facilities of every organization.
func (r *PgxCreditFacilityRepository) ListAllFacilities(ctx context.Context) ([]domain.CreditFacility, error) {
	query := `SELECT ` + facilityColumns + ` FROM credit_facilities
		ORDER BY organization_id, created_at;`
	rows, err := r.conn(ctx).Query(ctx, query)
	if err != nil {
		return nil, mapError("list all facilities", err)
	}
	return collectFacilities(rows)
}

func collectFacilities(rows pgx.Rows) ([]domain.CreditFacility, error) {
	defer rows.Close()

	facilities := []domain.CreditFacility{}
	for rows.Next() {
		f, err := scanFacility(rows)
		if err != nil {
			return nil, mapError("scan facility", err)
		}
		facilities = append(facilities, f)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("iterate facilities", err)
	}
	return facilities, nil
}

// UpdateFacilityUtilization sets the utilized amount. The table's check
// constraint keeps it between zero and the limit.
func (r *PgxCreditFacilityRepository) UpdateFacilityUtilization(ctx context.Context, facilityID string, utilized decimal.Decimal, userID string, now time.Time) error {
	query := `
		UPDATE credit_facilities
		SET utilized_amount = $2, last_updated_at = $3, last_updated_by = $4
		WHERE facility_id = $1;
	`
	tag, err := r.conn(ctx).Exec(ctx, query, facilityID, utilized, now, userID)
	if err != nil {
		return mapError("update utilization of facility "+facilityID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("facility %s: %w", facilityID, apperrors.ErrNotFound)
	}
	return nil
}
