package db

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestAssignments(t *testing.T) {
	var a Assignments
	if !a.Empty() {
		t.Fatal("new Assignments should be empty")
	}
	a.Set("payment_method", "Insurance")
	a.Set("encounter_id", "ENC000002")

	sql, args := a.Update("claims_and_billing", "billing_id", "BILL000001")
	want := "UPDATE claims_and_billing SET payment_method = $1, encounter_id = $2 WHERE billing_id = $3"
	if sql != want {
		t.Errorf("sql =\n%s\nwant\n%s", sql, want)
	}
	if len(args) != 3 || args[2] != "BILL000001" {
		t.Errorf("unexpected args: %v", args)
	}
}

type tagQuerier struct {
	Querier
	sql  string
	args []interface{}
	tag  string
}

func (q *tagQuerier) Exec(_ context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error) {
	q.sql, q.args = sql, args
	return pgconn.NewCommandTag(q.tag), nil
}

func TestApply(t *testing.T) {
	var a Assignments
	a.Set("cost", 10)
	q := &tagQuerier{tag: "UPDATE 1"}
	ok, err := a.Apply(context.Background(), q, "medications", "medication_id", "MED000001")
	if err != nil || !ok {
		t.Fatalf("got %v, %v", ok, err)
	}
	if q.sql != "UPDATE medications SET cost = $1 WHERE medication_id = $2" {
		t.Errorf("sql = %q", q.sql)
	}

	q.tag = "UPDATE 0"
	if ok, _ := a.Apply(context.Background(), q, "medications", "medication_id", "MED000404"); ok {
		t.Error("expected false when no row matched")
	}
}

func TestApply_EmptyPatchIsNoop(t *testing.T) {
	var a Assignments
	q := &tagQuerier{tag: "UPDATE 1"}
	ok, err := a.Apply(context.Background(), q, "patients", "patient_id", "PAT000001")
	if err != nil || ok {
		t.Fatalf("got %v, %v; want false, nil", ok, err)
	}
	if q.sql != "" {
		t.Errorf("no statement expected, ran %q", q.sql)
	}
}

func TestDeleteRow(t *testing.T) {
	q := &tagQuerier{tag: "DELETE 1"}
	ok, err := DeleteRow(context.Background(), q, "denials", "denial_id", "DEN000001")
	if err != nil || !ok {
		t.Fatalf("got %v, %v", ok, err)
	}
	if q.sql != "DELETE FROM denials WHERE denial_id = $1" {
		t.Errorf("sql = %q", q.sql)
	}
}
