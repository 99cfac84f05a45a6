package ident

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"

	dto "github.com/prometheus/client_model/go"

	"github.com/medico/hospital/internal/platform/db/dbtest"
	"github.com/medico/hospital/internal/platform/errs"
	"github.com/medico/hospital/internal/platform/metrics"
)

func strp(s string) *string { return &s }

func TestFollowing(t *testing.T) {
	tests := []struct {
		name    string
		current *string
		want    int
	}{
		{"no digits anywhere", nil, 1},
		{"highest suffix", strp("41"), 42},
		{"beyond padding", strp("99999"), 100000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := following(tt.current)
			if err != nil || got != tt.want {
				t.Errorf("following() = %d, %v, want %d", got, err, tt.want)
			}
		})
	}
	if _, err := following(strp("99999999999999999999999")); err == nil {
		t.Error("expected error for a suffix that overflows int")
	}
}

func TestWellFormed(t *testing.T) {
	re := regexp.MustCompile(wellFormed("PRO"))
	for _, id := range []string{"PRO000003", "PRO1"} {
		if !re.MatchString(id) {
			t.Errorf("%q should be well formed", id)
		}
	}
	for _, id := range []string{"PRO-ALPHA-X", "PROC000001", "PRO", "XPRO000001", "PRO00001A"} {
		if re.MatchString(id) {
			t.Errorf("%q should not be well formed", id)
		}
	}
	if !regexp.MustCompile(wellFormed("")).MatchString("12") {
		t.Error("integer column should be well formed")
	}
}

// The database ranks suffixes; Next must turn the highest one into the
// following identifier rather than restart next to an irregular value.
func TestNext_FollowsHighestWellFormed(t *testing.T) {
	q := dbtest.New(
		dbtest.Rule{Match: "pg_advisory_xact_lock", Tag: "SELECT 1"},
		dbtest.Rule{Match: "COALESCE", Row: dbtest.Row{Values: []interface{}{strp("3")}}},
	)
	m := metrics.NewCollector("test")
	id, err := NewGenerator(nil, m).Next(dbtest.InTx(context.Background(), q), Provider)
	if err != nil {
		t.Fatal(err)
	}
	if id != "PRO000004" {
		t.Errorf("id = %q, want PRO000004", id)
	}

	last := q.Calls[len(q.Calls)-1]
	if !strings.Contains(last.SQL, `"providers"`) || !strings.Contains(last.SQL, `"provider_id"`) {
		t.Errorf("unexpected query: %s", last.SQL)
	}
	if len(last.Args) != 2 || last.Args[0] != "^PRO[0-9]+$" || last.Args[1] != 4 {
		t.Errorf("unexpected args: %v", last.Args)
	}

	var out dto.Metric
	if err := m.IDsAllocatedTotal.WithLabelValues(Provider.String()).Write(&out); err != nil {
		t.Fatal(err)
	}
	if out.GetCounter().GetValue() != 1 {
		t.Errorf("allocation counter = %v", out.GetCounter().GetValue())
	}
}

func TestNext_EmptyTableStartsAtOne(t *testing.T) {
	q := dbtest.New(dbtest.Rule{Match: "COALESCE", Row: dbtest.Row{Values: []interface{}{nil}}})
	id, err := NewGenerator(nil, nil).Next(dbtest.InTx(context.Background(), q), LabTest)
	if err != nil || id != "T00001" {
		t.Fatalf("got %q, %v", id, err)
	}
}

func TestNext_StorageFailure(t *testing.T) {
	q := dbtest.New(dbtest.Rule{Match: "COALESCE", Row: dbtest.Row{Err: errors.New("conn reset")}})
	_, err := NewGenerator(nil, nil).Next(dbtest.InTx(context.Background(), q), Denial)
	var se *errs.StorageError
	if !errors.As(err, &se) {
		t.Fatalf("expected StorageError, got %v", err)
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		kind Kind
		n    int
		want string
	}{
		{Patient, 1, "PAT000001"},
		{Encounter, 42, "ENC000042"},
		{Billing, 7, "BILL000007"},
		{Claim, 123456, "CLM123456"},
		{LabTest, 3, "T00003"},
		{Procedure, 1234567, "PROC1234567"},
		{DepartmentHead, 12, "12"},
	}
	for _, tt := range tests {
		if got := Format(tt.kind, tt.n); got != tt.want {
			t.Errorf("Format(%s, %d) = %q, want %q", tt.kind, tt.n, got, tt.want)
		}
	}
}

func TestKindsRegistered(t *testing.T) {
	for k := Patient; k <= Denial; k++ {
		if _, ok := kinds[k]; !ok {
			t.Errorf("kind %d has no metadata", k)
		}
	}
	if Kind(99).String() != "Kind(99)" {
		t.Errorf("unexpected String for unknown kind: %s", Kind(99))
	}
	if Encounter.Prefix() != "ENC" {
		t.Errorf("expected ENC prefix, got %q", Encounter.Prefix())
	}
}

func TestNext_UnknownKind(t *testing.T) {
	_, err := NewGenerator(nil, nil).Next(context.Background(), Kind(0))
	if !errors.Is(err, errs.ErrInvalidEntity) {
		t.Fatalf("expected ErrInvalidEntity, got %v", err)
	}
}

func TestNext_RequiresTransaction(t *testing.T) {
	if _, err := NewGenerator(nil, nil).Next(context.Background(), Patient); err == nil {
		t.Fatal("expected error outside a transaction")
	}
}
