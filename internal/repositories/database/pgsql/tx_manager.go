package pgsql

import (
	"context"
	"fmt"
	"log/slog"

	portsrepo "github.com/SscSPs/invoice_finance_app/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxUnitOfWork runs a function inside a single database transaction.
type PgxUnitOfWork struct {
	BaseRepository
}

func newPgxUnitOfWork(pool *pgxpool.Pool) *PgxUnitOfWork {
	return &PgxUnitOfWork{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.UnitOfWork = (*PgxUnitOfWork)(nil)

// RunInTx commits when fn returns nil and rolls back on error or panic.
// Calls made while a transaction is already bound to ctx join it.
func (u *PgxUnitOfWork) RunInTx(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if txFromContext(ctx) != nil {
		return fn(ctx)
	}

	tx, err := u.Begin(ctx)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = u.Rollback(ctx, tx)
			err = fmt.Errorf("panic in unit of work: %v", p)
			return
		}
		if err != nil {
			if rbErr := u.Rollback(ctx, tx); rbErr != nil {
				slog.ErrorContext(ctx, "Failed to roll back unit of work", "error", rbErr)
			}
			return
		}
		err = u.Commit(ctx, tx)
	}()

	err = fn(context.WithValue(ctx, txCtxKey{}, tx))
	return err
}
