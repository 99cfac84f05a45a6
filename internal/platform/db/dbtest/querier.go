// Package dbtest provides a scripted db.Querier for unit tests of code that
// issues single-row SQL.
package dbtest

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Row is a canned result. Values are assigned to Scan destinations in
// order; a nil value zeroes the destination.
type Row struct {
	Values []interface{}
	Err    error
}

func (r Row) Scan(dest ...interface{}) error {
	if r.Err != nil {
		return r.Err
	}
	if len(dest) != len(r.Values) {
		return fmt.Errorf("dbtest: scan %d values into %d destinations", len(r.Values), len(dest))
	}
	for i, d := range dest {
		dv := reflect.ValueOf(d)
		if dv.Kind() != reflect.Ptr || dv.IsNil() {
			return fmt.Errorf("dbtest: destination %d is not a pointer", i)
		}
		dv = dv.Elem()
		if r.Values[i] == nil {
			dv.Set(reflect.Zero(dv.Type()))
			continue
		}
		v := reflect.ValueOf(r.Values[i])
		switch {
		case v.Type().AssignableTo(dv.Type()):
			dv.Set(v)
		case dv.Kind() == reflect.Ptr && v.Type().AssignableTo(dv.Type().Elem()):
			p := reflect.New(dv.Type().Elem())
			p.Elem().Set(v)
			dv.Set(p)
		case v.Type().ConvertibleTo(dv.Type()):
			dv.Set(v.Convert(dv.Type()))
		default:
			return fmt.Errorf("dbtest: cannot scan %T into %T", r.Values[i], d)
		}
	}
	return nil
}

// Rule answers every statement containing Match.
type Rule struct {
	Match string
	Row   Row
	// Tag is returned by Exec.
	Tag string
}

// Call records one statement.
type Call struct {
	SQL  string
	Args []interface{}
}

// Querier answers statements from Rules, first match wins. Unmatched
// QueryRow calls return pgx.ErrNoRows; unmatched Exec calls succeed.
type Querier struct {
	mu    sync.Mutex
	Rules []Rule
	Calls []Call
}

func New(rules ...Rule) *Querier {
	return &Querier{Rules: rules}
}

func (q *Querier) record(sql string, args []interface{}) (Rule, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.Calls = append(q.Calls, Call{SQL: sql, Args: args})
	for _, r := range q.Rules {
		if strings.Contains(sql, r.Match) {
			return r, true
		}
	}
	return Rule{}, false
}

func (q *Querier) QueryRow(_ context.Context, sql string, args ...interface{}) pgx.Row {
	r, ok := q.record(sql, args)
	if !ok {
		return Row{Err: pgx.ErrNoRows}
	}
	return r.Row
}

func (q *Querier) Exec(_ context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error) {
	r, ok := q.record(sql, args)
	if ok && r.Row.Err != nil {
		return pgconn.CommandTag{}, r.Row.Err
	}
	return pgconn.NewCommandTag(r.Tag), nil
}

func (q *Querier) Query(_ context.Context, sql string, args ...interface{}) (pgx.Rows, error) {
	q.record(sql, args)
	return nil, errors.New("dbtest: Query is not scripted")
}

// Executed reports whether any recorded statement contains match.
func (q *Querier) Executed(match string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, c := range q.Calls {
		if strings.Contains(c.SQL, match) {
			return true
		}
	}
	return false
}
