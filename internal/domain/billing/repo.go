package billing

import (
	"context"

	"github.com/shopspring/decimal"
)

type InsurerRepository interface {
	Create(ctx context.Context, i *Insurer) error
	GetByID(ctx context.Context, id int) (*Insurer, error)
	// CodeTaken reports whether another insurer than exceptID holds code.
	CodeTaken(ctx context.Context, code string, exceptID int) (bool, error)
	Update(ctx context.Context, id int, p *InsurerPatch) (bool, error)
	Delete(ctx context.Context, id int) (bool, error)
	List(ctx context.Context, limit, offset int) ([]*Insurer, int, error)
}

type ClaimRepository interface {
	Create(ctx context.Context, c *Claim) error
	GetByID(ctx context.Context, billingID string) (*Claim, error)
	// ByEncounter returns the encounter's claim, or ErrNotFound.
	ByEncounter(ctx context.Context, encounterID string) (*Claim, error)
	Update(ctx context.Context, billingID string, p *ClaimPatch) (bool, error)
	SetBilledAmount(ctx context.Context, billingID string, amount decimal.Decimal) error
	Delete(ctx context.Context, billingID string) (bool, error)
	List(ctx context.Context, f ClaimFilter, limit, offset int) ([]*Claim, int, error)
}

// CostLedger reads the billable costs recorded against an encounter.
type CostLedger interface {
	// LockEncounter takes a row lock on the encounter for the rest of the
	// transaction and reports whether it exists.
	LockEncounter(ctx context.Context, encounterID string) (bool, error)
	// EncounterTotal sums procedure and medication costs; no rows is zero.
	EncounterTotal(ctx context.Context, encounterID string) (decimal.Decimal, error)
}

type DenialRepository interface {
	Create(ctx context.Context, d *Denial) error
	GetByID(ctx context.Context, id string) (*Denial, error)
	Update(ctx context.Context, id string, p *DenialPatch) (bool, error)
	Delete(ctx context.Context, id string) (bool, error)
	List(ctx context.Context, limit, offset int) ([]*Denial, int, error)
	ListByClaim(ctx context.Context, claimID string, limit, offset int) ([]*Denial, int, error)
}
