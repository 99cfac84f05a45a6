package billing

import (
	"context"
	"errors"

	"github.com/medico/hospital/internal/domain/reference"
	"github.com/medico/hospital/internal/platform/db"
	"github.com/medico/hospital/internal/platform/errs"
	"github.com/medico/hospital/internal/platform/ident"
)

type IDGenerator interface {
	Next(ctx context.Context, kind ident.Kind) (string, error)
}

type Resolver interface {
	Exists(ctx context.Context, ref reference.Ref, key string) error
	EncounterOwner(ctx context.Context, encounterID string) (string, error)
}

type Guard interface {
	Insurer(ctx context.Context, insurerID int) error
	Claim(ctx context.Context, billingID string) error
}

type Service struct {
	insurers InsurerRepository
	claims   ClaimRepository
	denials  DenialRepository
	sync     *SyncEngine
	tx       db.Transactor
	ids      IDGenerator
	refs     Resolver
	guard    Guard
}

func NewService(insurers InsurerRepository, claims ClaimRepository, denials DenialRepository, sync *SyncEngine,
	tx db.Transactor, ids IDGenerator, refs Resolver, guard Guard) *Service {
	return &Service{
		insurers: insurers,
		claims:   claims,
		denials:  denials,
		sync:     sync,
		tx:       tx,
		ids:      ids,
		refs:     refs,
		guard:    guard,
	}
}

// -- Insurer --

func duplicateCode(code string) error {
	return errs.Validation("code", "Code '%s' already exists (must be UNIQUE)", code)
}

func (s *Service) CreateInsurer(ctx context.Context, i *Insurer) error {
	if err := i.Validate(); err != nil {
		return err
	}
	return s.tx.RunInTx(ctx, func(ctx context.Context) error {
		taken, err := s.insurers.CodeTaken(ctx, i.Code, 0)
		if err != nil {
			return err
		}
		if taken {
			return duplicateCode(i.Code)
		}
		return s.insurers.Create(ctx, i)
	})
}

func (s *Service) GetInsurer(ctx context.Context, id int) (*Insurer, error) {
	return s.insurers.GetByID(ctx, id)
}

// UpdateInsurer writes the supplied columns. A code rename reaches patients
// and claims through ON UPDATE CASCADE.
func (s *Service) UpdateInsurer(ctx context.Context, id int, p *InsurerPatch) (bool, error) {
	if err := p.Validate(); err != nil {
		return false, err
	}
	var ok bool
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if p.Code != nil {
			taken, err := s.insurers.CodeTaken(ctx, *p.Code, id)
			if err != nil {
				return err
			}
			if taken {
				return duplicateCode(*p.Code)
			}
		}
		var err error
		ok, err = s.insurers.Update(ctx, id, p)
		return err
	})
	return ok, err
}

func (s *Service) DeleteInsurer(ctx context.Context, id int) (bool, error) {
	var ok bool
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.guard.Insurer(ctx, id); err != nil {
			return err
		}
		var err error
		ok, err = s.insurers.Delete(ctx, id)
		return err
	})
	return ok, err
}

func (s *Service) ListInsurers(ctx context.Context, limit, offset int) ([]*Insurer, int, error) {
	return s.insurers.List(ctx, limit, offset)
}

// -- Claim --

// CreateClaim records a claim entered by hand. Both identifiers are
// allocated and the patient is taken from the encounter.
func (s *Service) CreateClaim(ctx context.Context, c *Claim) error {
	if err := c.Validate(); err != nil {
		return err
	}
	c.applyDefaults()
	return s.tx.RunInTx(ctx, func(ctx context.Context) error {
		patientID, err := s.refs.EncounterOwner(ctx, c.EncounterID)
		if err != nil {
			return err
		}
		c.PatientID = patientID
		if c.InsuranceProvider != nil {
			if err := s.refs.Exists(ctx, reference.Insurer, *c.InsuranceProvider); err != nil {
				return err
			}
		}
		if c.BillingID, err = s.ids.Next(ctx, ident.Billing); err != nil {
			return err
		}
		claimID, err := s.ids.Next(ctx, ident.Claim)
		if err != nil {
			return err
		}
		c.ClaimID = &claimID
		return s.claims.Create(ctx, c)
	})
}

func (s *Service) GetClaim(ctx context.Context, billingID string) (*Claim, error) {
	return s.claims.GetByID(ctx, billingID)
}

// UpdateClaim writes the supplied columns. Moving the claim to another
// encounter also moves it to that encounter's patient.
func (s *Service) UpdateClaim(ctx context.Context, billingID string, p *ClaimPatch) (bool, error) {
	if err := p.Validate(); err != nil {
		return false, err
	}
	var ok bool
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if p.EncounterID != nil {
			patientID, err := s.refs.EncounterOwner(ctx, *p.EncounterID)
			if err != nil {
				return err
			}
			p.patientID = &patientID
		}
		if p.InsuranceProvider != nil {
			if err := s.refs.Exists(ctx, reference.Insurer, *p.InsuranceProvider); err != nil {
				return err
			}
		}
		var err error
		ok, err = s.claims.Update(ctx, billingID, p)
		return err
	})
	return ok, err
}

func (s *Service) DeleteClaim(ctx context.Context, billingID string) (bool, error) {
	var ok bool
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.guard.Claim(ctx, billingID); err != nil {
			return err
		}
		var err error
		ok, err = s.claims.Delete(ctx, billingID)
		return err
	})
	return ok, err
}

func (s *Service) ListClaims(ctx context.Context, f ClaimFilter, limit, offset int) ([]*Claim, int, error) {
	return s.claims.List(ctx, f, limit, offset)
}

// SyncClaim recomputes the encounter's claim on demand.
func (s *Service) SyncClaim(ctx context.Context, encounterID string) (bool, error) {
	return s.sync.Sync(ctx, encounterID)
}

// -- Denial --

func (s *Service) CreateDenial(ctx context.Context, d *Denial) error {
	if err := d.Validate(); err != nil {
		return err
	}
	return s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.refs.Exists(ctx, reference.Claim, d.ClaimID); err != nil {
			return err
		}
		if d.ID == "" {
			id, err := s.ids.Next(ctx, ident.Denial)
			if err != nil {
				return err
			}
			d.ID = id
		}
		return s.denials.Create(ctx, d)
	})
}

func (s *Service) GetDenial(ctx context.Context, id string) (*Denial, error) {
	return s.denials.GetByID(ctx, id)
}

// UpdateDenial writes the supplied columns. Appeal completeness is checked
// against the row as it will be after the update.
func (s *Service) UpdateDenial(ctx context.Context, id string, p *DenialPatch) (bool, error) {
	if err := p.Validate(); err != nil {
		return false, err
	}
	var ok bool
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if p.touchesAppeal() {
			cur, err := s.denials.GetByID(ctx, id)
			if errors.Is(err, errs.ErrNotFound) {
				return nil
			}
			if err != nil {
				return err
			}
			if err := p.merged(cur).validateAppeal(); err != nil {
				return err
			}
		}
		if p.ClaimID != nil {
			if err := s.refs.Exists(ctx, reference.Claim, *p.ClaimID); err != nil {
				return err
			}
		}
		var err error
		ok, err = s.denials.Update(ctx, id, p)
		return err
	})
	return ok, err
}

func (s *Service) DeleteDenial(ctx context.Context, id string) (bool, error) {
	var ok bool
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		ok, err = s.denials.Delete(ctx, id)
		return err
	})
	return ok, err
}

func (s *Service) ListDenials(ctx context.Context, claimID string, limit, offset int) ([]*Denial, int, error) {
	if claimID != "" {
		return s.denials.ListByClaim(ctx, claimID, limit, offset)
	}
	return s.denials.List(ctx, limit, offset)
}
