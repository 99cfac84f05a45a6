package dbtest

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/medico/hospital/internal/platform/db"
)

// Transactor runs fn directly and counts calls. Nested calls are counted
// once per RunInTx.
type Transactor struct {
	Calls int
	Err   error
}

func (t *Transactor) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	t.Calls++
	if t.Err != nil {
		return t.Err
	}
	return fn(ctx)
}

// Tx is a pgx.Tx whose statements are answered by Q. Commit and Rollback
// are not scripted.
type Tx struct {
	pgx.Tx
	Q *Querier
}

func (t *Tx) QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row {
	return t.Q.QueryRow(ctx, sql, args...)
}

func (t *Tx) Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error) {
	return t.Q.Exec(ctx, sql, args...)
}

func (t *Tx) Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error) {
	return t.Q.Query(ctx, sql, args...)
}

// InTx returns ctx with q installed as the active transaction.
func InTx(ctx context.Context, q *Querier) context.Context {
	return context.WithValue(ctx, db.DBTxKey, pgx.Tx(&Tx{Q: q}))
}
