// Package guard implements the pre-delete checks that keep dependent rows
// from being orphaned. Each check counts the blocking rows and returns an
// *errs.ConflictError when any exist; it never removes anything.
package guard

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/medico/hospital/internal/domain/reference"
	"github.com/medico/hospital/internal/platform/db"
	"github.com/medico/hospital/internal/platform/errs"
	"github.com/medico/hospital/internal/platform/metrics"
)

// ClaimStatusDenied is the only claim status whose denials block deletion.
const ClaimStatusDenied = "Denied"

type insurerCodes interface {
	InsurerCode(ctx context.Context, insurerID int) (string, error)
}

type Policy struct {
	fallback db.Querier
	insurers insurerCodes
	metrics  *metrics.Collector
}

func NewPolicy(fallback db.Querier, m *metrics.Collector) *Policy {
	return &Policy{fallback: fallback, insurers: reference.NewResolver(fallback), metrics: m}
}

func (p *Policy) count(ctx context.Context, query string, args ...interface{}) (int, error) {
	var n int
	if err := db.Conn(ctx, p.fallback).QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, errs.Storage("guard count", err)
	}
	return n, nil
}

func (p *Policy) block(entity, relation string, n int, msg string) error {
	p.metrics.GuardBlocked(entity)
	return &errs.ConflictError{Relation: relation, Count: n, Message: msg}
}

// Patient blocks while encounters reference the patient.
func (p *Policy) Patient(ctx context.Context, patientID string) error {
	n, err := p.count(ctx, `SELECT COUNT(*) FROM encounters WHERE patient_id = $1`, patientID)
	if err != nil || n == 0 {
		return err
	}
	return p.block("patient", "encounters", n,
		fmt.Sprintf("Cannot delete patient %s: Delete related encounters first.", patientID))
}

// Provider blocks while encounters reference the provider or the provider
// heads a department.
func (p *Policy) Provider(ctx context.Context, providerID string) error {
	n, err := p.count(ctx, `SELECT COUNT(*) FROM encounters WHERE provider_id = $1`, providerID)
	if err != nil {
		return err
	}
	if n > 0 {
		return p.block("provider", "encounters", n,
			"Cannot delete provider: It has linked encounter records.")
	}
	n, err = p.count(ctx, `SELECT COUNT(*) FROM department_heads WHERE head_provider_id = $1`, providerID)
	if err != nil || n == 0 {
		return err
	}
	return p.block("provider", "department_heads", n,
		"Cannot delete provider: It is linked as a department head.")
}

// Encounter blocks while claims reference the encounter.
func (p *Policy) Encounter(ctx context.Context, encounterID string) error {
	n, err := p.count(ctx, `SELECT COUNT(*) FROM claims_and_billing WHERE encounter_id = $1`, encounterID)
	if err != nil || n == 0 {
		return err
	}
	return p.block("encounter", "claims_and_billing", n,
		"Cannot delete encounter: It has linked billing records.")
}

// DepartmentHead blocks while providers point at the head.
func (p *Policy) DepartmentHead(ctx context.Context, headID int) error {
	n, err := p.count(ctx, `SELECT COUNT(*) FROM providers WHERE head_id = $1`, headID)
	if err != nil || n == 0 {
		return err
	}
	return p.block("department_head", "providers", n,
		"Cannot delete department head: It has linked provider records.")
}

// Insurer blocks while patients carry the insurer's code. A missing insurer
// passes; the delete reports it.
func (p *Policy) Insurer(ctx context.Context, insurerID int) error {
	code, err := p.insurers.InsurerCode(ctx, insurerID)
	var rnf *errs.ReferenceNotFoundError
	if errors.As(err, &rnf) {
		return nil
	}
	if err != nil {
		return err
	}
	n, err := p.count(ctx, `SELECT COUNT(*) FROM patients WHERE insurance_type = $1`, code)
	if err != nil || n == 0 {
		return err
	}
	return p.block("insurer", "patients", n,
		fmt.Sprintf("Cannot delete insurer %d: It is referenced by %d patient record(s).", insurerID, n))
}

// Claim blocks a denied claim that still has denial rows. Claims in any
// other status are not checked. A missing claim passes; the delete reports
// it.
func (p *Policy) Claim(ctx context.Context, billingID string) error {
	var claimID *string
	var status string
	err := db.Conn(ctx, p.fallback).QueryRow(ctx,
		`SELECT claim_id, claim_status FROM claims_and_billing WHERE billing_id = $1`, billingID).
		Scan(&claimID, &status)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil
	}
	if err != nil {
		return errs.Storage("guard claim", err)
	}
	if status != ClaimStatusDenied || claimID == nil {
		return nil
	}
	n, err := p.count(ctx, `SELECT COUNT(*) FROM denials WHERE claim_id = $1`, *claimID)
	if err != nil || n == 0 {
		return err
	}
	return p.block("claim", "denials", n,
		fmt.Sprintf("Cannot delete claim %s: It has %d denial record(s). Delete denial records first.", billingID, n))
}
