// Package reference resolves foreign keys to the attributes other records
// are derived from. A missing row is always an *errs.ReferenceNotFoundError.
package reference

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/medico/hospital/internal/platform/db"
	"github.com/medico/hospital/internal/platform/errs"
)

// Ref names a referenceable key.
type Ref int

const (
	Patient Ref = iota + 1
	Provider
	Encounter
	Claim
	Insurer
	DepartmentHead
)

var refs = map[Ref]struct {
	name  string
	query string
}{
	Patient:        {"patient", `SELECT 1 FROM patients WHERE patient_id = $1`},
	Provider:       {"provider", `SELECT 1 FROM providers WHERE provider_id = $1`},
	Encounter:      {"encounter", `SELECT 1 FROM encounters WHERE encounter_id = $1`},
	Claim:          {"claim", `SELECT 1 FROM claims_and_billing WHERE claim_id = $1`},
	Insurer:        {"insurer", `SELECT 1 FROM insurers WHERE code = $1`},
	DepartmentHead: {"department head", `SELECT 1 FROM department_heads WHERE head_id::text = $1`},
}

func (r Ref) String() string { return refs[r].name }

// Candidate is the provider data copied onto a department head.
type Candidate struct {
	Name       string
	Email      *string
	Department string
}

// BillingParty is who an encounter is billed to.
type BillingParty struct {
	PatientID     string
	InsuranceType *string
}

type Resolver struct {
	fallback db.Querier
}

func NewResolver(fallback db.Querier) *Resolver {
	return &Resolver{fallback: fallback}
}

func (r *Resolver) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.fallback)
}

func notFound(ref Ref, key string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return errs.ReferenceNotFound(ref.String(), key)
	}
	return errs.Storage("resolve "+ref.String(), err)
}

// Exists returns nil when key is present for ref.
func (r *Resolver) Exists(ctx context.Context, ref Ref, key string) error {
	m, ok := refs[ref]
	if !ok {
		return fmt.Errorf("%w: reference %d", errs.ErrInvalidEntity, ref)
	}
	var one int
	if err := r.conn(ctx).QueryRow(ctx, m.query, key).Scan(&one); err != nil {
		return notFound(ref, key, err)
	}
	return nil
}

// ProviderDepartment returns the provider's department, or "" when the
// provider has none recorded.
func (r *Resolver) ProviderDepartment(ctx context.Context, providerID string) (string, error) {
	var dept *string
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT department FROM providers WHERE provider_id = $1`, providerID).Scan(&dept)
	if err != nil {
		return "", notFound(Provider, providerID, err)
	}
	if dept == nil {
		return "", nil
	}
	return *dept, nil
}

// EncounterOwner returns the patient_id of the encounter.
func (r *Resolver) EncounterOwner(ctx context.Context, encounterID string) (string, error) {
	var patientID string
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT patient_id FROM encounters WHERE encounter_id = $1`, encounterID).Scan(&patientID)
	if err != nil {
		return "", notFound(Encounter, encounterID, err)
	}
	return patientID, nil
}

// DepartmentHeadCandidate returns the provider attributes a department head
// record copies and is validated against.
func (r *Resolver) DepartmentHeadCandidate(ctx context.Context, providerID string) (*Candidate, error) {
	var c Candidate
	var dept *string
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT name, email, department FROM providers WHERE provider_id = $1`, providerID).
		Scan(&c.Name, &c.Email, &dept)
	if err != nil {
		return nil, notFound(Provider, providerID, err)
	}
	if dept != nil {
		c.Department = *dept
	}
	return &c, nil
}

// EncounterBillingParty joins the encounter to its patient.
func (r *Resolver) EncounterBillingParty(ctx context.Context, encounterID string) (*BillingParty, error) {
	var p BillingParty
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT p.patient_id, p.insurance_type
		FROM encounters e
		JOIN patients p ON p.patient_id = e.patient_id
		WHERE e.encounter_id = $1`, encounterID).Scan(&p.PatientID, &p.InsuranceType)
	if err != nil {
		return nil, notFound(Encounter, encounterID, err)
	}
	return &p, nil
}

// InsurerCode returns the code of insurer insurerID.
func (r *Resolver) InsurerCode(ctx context.Context, insurerID int) (string, error) {
	var code string
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT code FROM insurers WHERE insurer_id = $1`, insurerID).Scan(&code)
	if err != nil {
		return "", notFound(Insurer, fmt.Sprint(insurerID), err)
	}
	return code, nil
}
