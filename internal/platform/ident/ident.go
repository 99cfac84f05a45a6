// Package ident allocates sequential human-readable identifiers such as
// PAT000001 or ENC000042.
package ident

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"

	"github.com/jackc/pgx/v5"

	"github.com/medico/hospital/internal/platform/db"
	"github.com/medico/hospital/internal/platform/errs"
	"github.com/medico/hospital/internal/platform/metrics"
)

// Kind names an identifier column. Only the kinds declared here can be
// allocated.
type Kind int

const (
	Patient Kind = iota + 1
	Provider
	DepartmentHead
	Encounter
	Diagnosis
	LabTest
	Procedure
	Medication
	Billing
	Claim
	Denial
)

type kindInfo struct {
	table   string
	column  string
	prefix  string
	padding int
}

var kinds = map[Kind]kindInfo{
	Patient:        {"patients", "patient_id", "PAT", 6},
	Provider:       {"providers", "provider_id", "PRO", 6},
	DepartmentHead: {"department_heads", "head_id", "", 0},
	Encounter:      {"encounters", "encounter_id", "ENC", 6},
	Diagnosis:      {"diagnoses", "diagnosis_id", "DIA", 6},
	LabTest:        {"lab_tests", "test_id", "T", 5},
	Procedure:      {"procedures", "procedure_id", "PROC", 6},
	Medication:     {"medications", "medication_id", "MED", 6},
	Billing:        {"claims_and_billing", "billing_id", "BILL", 6},
	Claim:          {"claims_and_billing", "claim_id", "CLM", 6},
	Denial:         {"denials", "denial_id", "DEN", 6},
}

func (k Kind) String() string {
	if s, ok := kinds[k]; ok {
		return s.table + "." + s.column
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// Prefix returns the literal prefix of identifiers of this kind.
func (k Kind) Prefix() string { return kinds[k].prefix }

// Generator allocates identifiers. Next must be called inside the
// transaction that inserts the row: it takes a transaction-scoped advisory
// lock on the identifier column so concurrent writers are serialized until
// commit.
type Generator struct {
	fallback db.Querier
	metrics  *metrics.Collector
}

func NewGenerator(fallback db.Querier, m *metrics.Collector) *Generator {
	return &Generator{fallback: fallback, metrics: m}
}

// Next returns the identifier following the highest existing one for kind.
// Only values of the form prefix+digits are ranked; stored values of any
// other shape are consulted, digits only, when no well-formed value exists.
func (g *Generator) Next(ctx context.Context, kind Kind) (string, error) {
	s, ok := kinds[kind]
	if !ok {
		return "", fmt.Errorf("%w: %s", errs.ErrInvalidEntity, kind)
	}
	if db.TxFromContext(ctx) == nil {
		return "", errors.New("ident: Next called outside a transaction")
	}
	q := db.Conn(ctx, g.fallback)

	if _, err := q.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, kind.String()); err != nil {
		return "", errs.Storage("lock "+kind.String(), err)
	}

	query := fmt.Sprintf(`
		SELECT COALESCE(
			(SELECT max(substr(%[1]s::text, $2)::numeric) FROM %[2]s WHERE %[1]s::text ~ $1),
			(SELECT max(NULLIF(regexp_replace(%[1]s::text, '[^0-9]', '', 'g'), '')::numeric) FROM %[2]s)
		)::text`,
		pgx.Identifier{s.column}.Sanitize(), pgx.Identifier{s.table}.Sanitize())

	var current *string
	if err := q.QueryRow(ctx, query, wellFormed(s.prefix), len(s.prefix)+1).Scan(&current); err != nil {
		return "", errs.Storage("max "+kind.String(), err)
	}
	n, err := following(current)
	if err != nil {
		return "", fmt.Errorf("ident: %s: %w", kind, err)
	}
	g.metrics.IDAllocated(kind.String())
	return Format(kind, n), nil
}

// wellFormed matches identifiers generated for prefix.
func wellFormed(prefix string) string {
	return "^" + regexp.QuoteMeta(prefix) + "[0-9]+$"
}

// following returns the number after current, the highest numeric suffix
// in use. A nil current means no identifier carries digits yet.
func following(current *string) (int, error) {
	if current == nil {
		return 1, nil
	}
	n, err := strconv.Atoi(*current)
	if err != nil {
		return 0, fmt.Errorf("numeric suffix %q: %w", *current, err)
	}
	return n + 1, nil
}

// Format renders n with the kind's prefix and zero padding.
func Format(kind Kind, n int) string {
	s := kinds[kind]
	return fmt.Sprintf("%s%0*d", s.prefix, s.padding, n)
}
