package repositories

import (
	"context"
)

// UnitOfWork runs fn so that every repository call made with the context fn
// receives commits or rolls back as one. A nested RunInTx joins the outer unit.
type UnitOfWork interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}
