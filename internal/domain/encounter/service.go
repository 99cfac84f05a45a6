package encounter

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
	ProviderDepartment(ctx context.Context, providerID string) (string, error)
}

type Guard interface {
	Encounter(ctx context.Context, encounterID string) error
}

type Service struct {
	encounters EncounterRepository
	diagnoses  DiagnosisRepository
	labs       LabTestRepository
	tx         db.Transactor
	ids        IDGenerator
	refs       Resolver
	guard      Guard
}

func NewService(encounters EncounterRepository, diagnoses DiagnosisRepository, labs LabTestRepository,
	tx db.Transactor, ids IDGenerator, refs Resolver, guard Guard) *Service {
	return &Service{
		encounters: encounters,
		diagnoses:  diagnoses,
		labs:       labs,
		tx:         tx,
		ids:        ids,
		refs:       refs,
		guard:      guard,
	}
}

// -- Encounter --

// department returns the department recorded on the provider. A provider
// without one cannot open encounters.
func (s *Service) department(ctx context.Context, providerID string) (string, error) {
	if err := s.refs.Exists(ctx, reference.Provider, providerID); err != nil {
		return "", err
	}
	dept, err := s.refs.ProviderDepartment(ctx, providerID)
	if err != nil {
		return "", err
	}
	if dept == "" {
		return "", errs.Validation("provider_id",
			"Provider %s does not have a department assigned. Please assign a department to the provider first.", providerID)
	}
	return dept, nil
}

func (s *Service) CreateEncounter(ctx context.Context, e *Encounter) error {
	if err := e.Validate(); err != nil {
		return err
	}
	e.applyDefaults()
	return s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.refs.Exists(ctx, reference.Patient, e.PatientID); err != nil {
			return err
		}
		dept, err := s.department(ctx, e.ProviderID)
		if err != nil {
			return err
		}
		if e.Department == nil || *e.Department == "" {
			e.Department = &dept
		}
		id, err := s.ids.Next(ctx, ident.Encounter)
		if err != nil {
			return err
		}
		e.ID = id
		return s.encounters.Create(ctx, e)
	})
}

func (s *Service) GetEncounter(ctx context.Context, id string) (*Encounter, error) {
	return s.encounters.GetByID(ctx, id)
}

// UpdateEncounter writes the supplied columns. Changing the provider
// refreshes the department unless one is supplied; changing the patient
// moves the encounter's claims with it.
func (s *Service) UpdateEncounter(ctx context.Context, id string, p *EncounterPatch) (bool, error) {
	if err := p.Validate(); err != nil {
		return false, err
	}
	var ok bool
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if p.PatientID != nil {
			if err := s.refs.Exists(ctx, reference.Patient, *p.PatientID); err != nil {
				return err
			}
		}
		if p.ProviderID != nil {
			dept, err := s.department(ctx, *p.ProviderID)
			if err != nil {
				return err
			}
			if p.Department == nil || *p.Department == "" {
				p.Department = &dept
			}
		}
		var err error
		if ok, err = s.encounters.Update(ctx, id, p); err != nil || !ok {
			return err
		}
		if p.PatientID != nil {
			return s.encounters.ReassignClaims(ctx, id, *p.PatientID)
		}
		return nil
	})
	return ok, err
}

func (s *Service) DeleteEncounter(ctx context.Context, id string) (bool, error) {
	var ok bool
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.guard.Encounter(ctx, id); err != nil {
			return err
		}
		var err error
		ok, err = s.encounters.Delete(ctx, id)
		return err
	})
	return ok, err
}

func (s *Service) ListEncounters(ctx context.Context, limit, offset int) ([]*Encounter, int, error) {
	return s.encounters.List(ctx, limit, offset)
}

func (s *Service) ListEncountersByPatient(ctx context.Context, patientID string, limit, offset int) ([]*Encounter, int, error) {
	return s.encounters.ListByPatient(ctx, patientID, limit, offset)
}

// -- Diagnosis --

// CreateDiagnosis records a diagnosis and makes its code the encounter's
// current diagnosis code.
func (s *Service) CreateDiagnosis(ctx context.Context, d *Diagnosis) error {
	if err := d.Validate(); err != nil {
		return err
	}
	if d.PrimaryFlag == nil {
		yes := true
		d.PrimaryFlag = &yes
	}
	return s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.refs.Exists(ctx, reference.Encounter, d.EncounterID); err != nil {
			return err
		}
		if d.ID == "" {
			id, err := s.ids.Next(ctx, ident.Diagnosis)
			if err != nil {
				return err
			}
			d.ID = id
		}
		if err := s.diagnoses.Create(ctx, d); err != nil {
			return err
		}
		return s.encounters.SetDiagnosisCode(ctx, d.EncounterID, d.DiagnosisCode)
	})
}

func (s *Service) GetDiagnosis(ctx context.Context, id string) (*Diagnosis, error) {
	return s.diagnoses.GetByID(ctx, id)
}

// UpdateDiagnosis writes the supplied columns. A code change is copied to
// the encounter; moving the diagnosis recomputes the code on the encounter
// it left.
func (s *Service) UpdateDiagnosis(ctx context.Context, id string, p *DiagnosisPatch) (bool, error) {
	if err := p.Validate(); err != nil {
		return false, err
	}
	var ok bool
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		current, err := s.diagnoses.GetByID(ctx, id)
		if errors.Is(err, errs.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if p.EncounterID != nil {
			if err := s.refs.Exists(ctx, reference.Encounter, *p.EncounterID); err != nil {
				return err
			}
		}
		if ok, err = s.diagnoses.Update(ctx, id, p); err != nil || !ok {
			return err
		}

		target := current.EncounterID
		if p.EncounterID != nil && *p.EncounterID != current.EncounterID {
			target = *p.EncounterID
			if err := s.encounters.RefreshDiagnosisCode(ctx, current.EncounterID); err != nil {
				return err
			}
		}
		if p.DiagnosisCode != nil {
			return s.encounters.SetDiagnosisCode(ctx, target, *p.DiagnosisCode)
		}
		if target != current.EncounterID {
			return s.encounters.SetDiagnosisCode(ctx, target, current.DiagnosisCode)
		}
		return nil
	})
	return ok, err
}

// DeleteDiagnosis removes the diagnosis and points the encounter at its
// newest remaining diagnosis, or NULL.
func (s *Service) DeleteDiagnosis(ctx context.Context, id string) (bool, error) {
	var ok bool
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		current, err := s.diagnoses.GetByID(ctx, id)
		if errors.Is(err, errs.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if ok, err = s.diagnoses.Delete(ctx, id); err != nil || !ok {
			return err
		}
		return s.encounters.RefreshDiagnosisCode(ctx, current.EncounterID)
	})
	return ok, err
}

func (s *Service) ListDiagnoses(ctx context.Context, encounterID string, limit, offset int) ([]*Diagnosis, int, error) {
	return s.diagnoses.ListByEncounter(ctx, encounterID, limit, offset)
}

// -- Lab Test --

func (s *Service) CreateLabTest(ctx context.Context, l *LabTest) error {
	if err := l.Validate(); err != nil {
		return err
	}
	l.applyDefaults()
	return s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.refs.Exists(ctx, reference.Encounter, l.EncounterID); err != nil {
			return err
		}
		if l.ID == "" {
			id, err := s.ids.Next(ctx, ident.LabTest)
			if err != nil {
				return err
			}
			l.ID = id
		}
		return s.labs.Create(ctx, l)
	})
}

func (s *Service) GetLabTest(ctx context.Context, id string) (*LabTest, error) {
	return s.labs.GetByID(ctx, id)
}

func (s *Service) UpdateLabTest(ctx context.Context, id string, p *LabTestPatch) (bool, error) {
	if err := p.Validate(); err != nil {
		return false, err
	}
	var ok bool
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if p.EncounterID != nil {
			if err := s.refs.Exists(ctx, reference.Encounter, *p.EncounterID); err != nil {
				return err
			}
		}
		var err error
		ok, err = s.labs.Update(ctx, id, p)
		return err
	})
	return ok, err
}

func (s *Service) DeleteLabTest(ctx context.Context, id string) (bool, error) {
	var ok bool
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		ok, err = s.labs.Delete(ctx, id)
		return err
	})
	return ok, err
}

func (s *Service) ListLabTests(ctx context.Context, encounterID string, limit, offset int) ([]*LabTest, int, error) {
	return s.labs.ListByEncounter(ctx, encounterID, limit, offset)
}
