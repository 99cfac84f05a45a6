package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/medico/hospital/internal/platform/errs"
)

// Assignments collects the SET list of a partial update. Columns are fixed
// by the caller; only values become parameters.
type Assignments struct {
	cols []string
	args []interface{}
}

// Set adds col = value.
func (a *Assignments) Set(col string, value interface{}) {
	a.args = append(a.args, value)
	a.cols = append(a.cols, fmt.Sprintf("%s = $%d", col, len(a.args)))
}

func (a *Assignments) Empty() bool { return len(a.cols) == 0 }

// Update renders UPDATE table SET ... WHERE keyCol = $n and its arguments.
func (a *Assignments) Update(table, keyCol string, key interface{}) (string, []interface{}) {
	args := append(append([]interface{}{}, a.args...), key)
	sql := fmt.Sprintf("UPDATE %s SET %s WHERE %s = $%d",
		table, strings.Join(a.cols, ", "), keyCol, len(args))
	return sql, args
}

// Apply runs the update and reports whether a row changed. An empty patch
// is a no-op and reports false without touching the table.
func (a *Assignments) Apply(ctx context.Context, q Querier, table, keyCol string, key interface{}) (bool, error) {
	if a.Empty() {
		return false, nil
	}
	sql, args := a.Update(table, keyCol, key)
	tag, err := q.Exec(ctx, sql, args...)
	if err != nil {
		return false, errs.Storage("update "+table, err)
	}
	return tag.RowsAffected() > 0, nil
}

// DeleteRow deletes by primary key and reports whether a row was removed.
func DeleteRow(ctx context.Context, q Querier, table, keyCol string, key interface{}) (bool, error) {
	tag, err := q.Exec(ctx, fmt.Sprintf("DELETE FROM %s WHERE %s = $1", table, keyCol), key)
	if err != nil {
		return false, errs.Storage("delete "+table, err)
	}
	return tag.RowsAffected() > 0, nil
}

// SetIf adds col = *v when v is not nil.
func SetIf[T any](a *Assignments, col string, v *T) {
	if v != nil {
		a.Set(col, *v)
	}
}
