package identity

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/medico/hospital/internal/domain/reference"
	"github.com/medico/hospital/internal/platform/db"
	"github.com/medico/hospital/internal/platform/errs"
	"github.com/medico/hospital/internal/platform/ident"
)

// IDGenerator allocates identifiers inside the caller's transaction.
type IDGenerator interface {
	Next(ctx context.Context, kind ident.Kind) (string, error)
}

type Resolver interface {
	Exists(ctx context.Context, ref reference.Ref, key string) error
	DepartmentHeadCandidate(ctx context.Context, providerID string) (*reference.Candidate, error)
}

type Guard interface {
	Patient(ctx context.Context, patientID string) error
	Provider(ctx context.Context, providerID string) error
	DepartmentHead(ctx context.Context, headID int) error
}

type Service struct {
	patients  PatientRepository
	providers ProviderRepository
	heads     DepartmentHeadRepository
	tx        db.Transactor
	ids       IDGenerator
	refs      Resolver
	guard     Guard
	now       func() time.Time
}

func NewService(patients PatientRepository, providers ProviderRepository, heads DepartmentHeadRepository,
	tx db.Transactor, ids IDGenerator, refs Resolver, guard Guard) *Service {
	return &Service{
		patients:  patients,
		providers: providers,
		heads:     heads,
		tx:        tx,
		ids:       ids,
		refs:      refs,
		guard:     guard,
		now:       time.Now,
	}
}

// -- Patient --

func (s *Service) CreatePatient(ctx context.Context, p *Patient) error {
	if err := p.Validate(); err != nil {
		return err
	}
	p.applyDefaults(s.now())
	return s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if p.InsuranceType != nil {
			if err := s.refs.Exists(ctx, reference.Insurer, *p.InsuranceType); err != nil {
				return err
			}
		}
		id, err := s.ids.Next(ctx, ident.Patient)
		if err != nil {
			return err
		}
		p.ID = id
		return s.patients.Create(ctx, p)
	})
}

func (s *Service) GetPatient(ctx context.Context, id string) (*Patient, error) {
	return s.patients.GetByID(ctx, id)
}

func (s *Service) UpdatePatient(ctx context.Context, id string, p *PatientPatch) (bool, error) {
	if err := p.Validate(); err != nil {
		return false, err
	}
	var ok bool
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if p.InsuranceType != nil {
			if err := s.refs.Exists(ctx, reference.Insurer, *p.InsuranceType); err != nil {
				return err
			}
		}
		var err error
		ok, err = s.patients.Update(ctx, id, p)
		return err
	})
	return ok, err
}

func (s *Service) DeletePatient(ctx context.Context, id string) (bool, error) {
	var ok bool
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.guard.Patient(ctx, id); err != nil {
			return err
		}
		var err error
		ok, err = s.patients.Delete(ctx, id)
		return err
	})
	return ok, err
}

func (s *Service) ListPatients(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	return s.patients.List(ctx, limit, offset)
}

// -- Provider --

func (s *Service) CreateProvider(ctx context.Context, p *Provider) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if p.Inhouse == nil {
		yes := true
		p.Inhouse = &yes
	}
	return s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if p.HeadID != nil {
			if err := s.refs.Exists(ctx, reference.DepartmentHead, strconv.Itoa(*p.HeadID)); err != nil {
				return err
			}
		}
		if p.ID == "" {
			id, err := s.ids.Next(ctx, ident.Provider)
			if err != nil {
				return err
			}
			p.ID = id
		}
		return s.providers.Create(ctx, p)
	})
}

func (s *Service) GetProvider(ctx context.Context, id string) (*Provider, error) {
	return s.providers.GetByID(ctx, id)
}

// UpdateProvider writes the mutable provider columns. A name or email
// change is copied onto the department heads linked to the provider.
func (s *Service) UpdateProvider(ctx context.Context, id string, p *ProviderPatch) (bool, error) {
	if err := p.Validate(); err != nil {
		return false, err
	}
	var ok bool
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		if ok, err = s.providers.Update(ctx, id, p); err != nil || !ok {
			return err
		}
		if p.touchesHead() {
			return s.heads.RefreshCopies(ctx, id)
		}
		return nil
	})
	return ok, err
}

func (s *Service) DeleteProvider(ctx context.Context, id string) (bool, error) {
	var ok bool
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.guard.Provider(ctx, id); err != nil {
			return err
		}
		var err error
		ok, err = s.providers.Delete(ctx, id)
		return err
	})
	return ok, err
}

func (s *Service) ListProviders(ctx context.Context, limit, offset int) ([]*Provider, int, error) {
	return s.providers.List(ctx, limit, offset)
}

// -- Department Head --

// candidate resolves providerID and checks that it works in department.
func (s *Service) candidate(ctx context.Context, providerID, department string) (*reference.Candidate, error) {
	c, err := s.refs.DepartmentHeadCandidate(ctx, providerID)
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(c.Department, department) {
		return nil, errs.Validation("department",
			"Provider's department (%s) must match the department head's department (%s)", c.Department, department)
	}
	return c, nil
}

func (s *Service) CreateDepartmentHead(ctx context.Context, h *DepartmentHead) error {
	if err := h.Validate(); err != nil {
		return err
	}
	return s.tx.RunInTx(ctx, func(ctx context.Context) error {
		c, err := s.candidate(ctx, h.HeadProviderID, h.Department)
		if err != nil {
			return err
		}
		h.HeadName, h.HeadEmail = c.Name, c.Email
		if h.ID == 0 {
			next, err := s.ids.Next(ctx, ident.DepartmentHead)
			if err != nil {
				return err
			}
			if h.ID, err = strconv.Atoi(next); err != nil {
				return fmt.Errorf("department head id %q: %w", next, err)
			}
		}
		return s.heads.Create(ctx, h)
	})
}

func (s *Service) GetDepartmentHead(ctx context.Context, id int) (*DepartmentHead, error) {
	return s.heads.GetByID(ctx, id)
}

// UpdateDepartmentHead relinks the head to another provider of the same
// department. Only head_provider_id is written; a patch without it is a
// no-op and reports false.
func (s *Service) UpdateDepartmentHead(ctx context.Context, id int, p *DepartmentHeadPatch) (bool, error) {
	if err := p.Validate(); err != nil {
		return false, err
	}
	if p.HeadProviderID == nil {
		return false, nil
	}
	var ok bool
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		current, err := s.heads.GetByID(ctx, id)
		if errors.Is(err, errs.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		c, err := s.candidate(ctx, *p.HeadProviderID, current.Department)
		if err != nil {
			return err
		}
		ok, err = s.heads.Relink(ctx, id, *p.HeadProviderID, c.Name, c.Email)
		return err
	})
	return ok, err
}

func (s *Service) DeleteDepartmentHead(ctx context.Context, id int) (bool, error) {
	var ok bool
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.guard.DepartmentHead(ctx, id); err != nil {
			return err
		}
		var err error
		ok, err = s.heads.Delete(ctx, id)
		return err
	})
	return ok, err
}

func (s *Service) ListDepartmentHeads(ctx context.Context, limit, offset int) ([]*DepartmentHead, int, error) {
	return s.heads.List(ctx, limit, offset)
}
