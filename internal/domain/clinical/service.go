package clinical

import (
	"context"
	"errors"
	"sort"

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
}

// ClaimSyncer recomputes the claim of an encounter.
type ClaimSyncer interface {
	Sync(ctx context.Context, encounterID string) (bool, error)
}

type Service struct {
	procedures  ProcedureRepository
	medications MedicationRepository
	tx          db.Transactor
	ids         IDGenerator
	refs        Resolver
	claims      ClaimSyncer
}

func NewService(procedures ProcedureRepository, medications MedicationRepository,
	tx db.Transactor, ids IDGenerator, refs Resolver, claims ClaimSyncer) *Service {
	return &Service{
		procedures:  procedures,
		medications: medications,
		tx:          tx,
		ids:         ids,
		refs:        refs,
		claims:      claims,
	}
}

// resync recomputes the claims of every distinct encounter given, in a
// stable order so concurrent writers lock encounters the same way.
func (s *Service) resync(ctx context.Context, encounterIDs ...string) error {
	seen := make(map[string]bool, len(encounterIDs))
	var ids []string
	for _, id := range encounterIDs {
		if id != "" && !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	for _, id := range ids {
		if _, err := s.claims.Sync(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) checkRefs(ctx context.Context, encounterID, providerID *string) error {
	if encounterID != nil {
		if err := s.refs.Exists(ctx, reference.Encounter, *encounterID); err != nil {
			return err
		}
	}
	if providerID != nil {
		if err := s.refs.Exists(ctx, reference.Provider, *providerID); err != nil {
			return err
		}
	}
	return nil
}

// -- Procedure --

// CreateProcedure records a procedure and bills it to the encounter's claim.
func (s *Service) CreateProcedure(ctx context.Context, p *Procedure) error {
	if err := p.Validate(); err != nil {
		return err
	}
	return s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.checkRefs(ctx, &p.EncounterID, &p.ProviderID); err != nil {
			return err
		}
		if p.ID == "" {
			id, err := s.ids.Next(ctx, ident.Procedure)
			if err != nil {
				return err
			}
			p.ID = id
		}
		if err := s.procedures.Create(ctx, p); err != nil {
			return err
		}
		return s.resync(ctx, p.EncounterID)
	})
}

func (s *Service) GetProcedure(ctx context.Context, id string) (*Procedure, error) {
	return s.procedures.GetByID(ctx, id)
}

// UpdateProcedure writes the supplied columns and resyncs the encounter the
// procedure belonged to and, if it moved, the one it belongs to now.
func (s *Service) UpdateProcedure(ctx context.Context, id string, p *ProcedurePatch) (bool, error) {
	if err := p.Validate(); err != nil {
		return false, err
	}
	var ok bool
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		cur, err := s.procedures.GetByID(ctx, id)
		if errors.Is(err, errs.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := s.checkRefs(ctx, p.EncounterID, p.ProviderID); err != nil {
			return err
		}
		if ok, err = s.procedures.Update(ctx, id, p); err != nil || !ok {
			return err
		}
		target := cur.EncounterID
		if p.EncounterID != nil {
			target = *p.EncounterID
		}
		return s.resync(ctx, cur.EncounterID, target)
	})
	return ok, err
}

// DeleteProcedure removes the procedure and takes its cost off the claim.
func (s *Service) DeleteProcedure(ctx context.Context, id string) (bool, error) {
	var ok bool
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		cur, err := s.procedures.GetByID(ctx, id)
		if errors.Is(err, errs.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if ok, err = s.procedures.Delete(ctx, id); err != nil || !ok {
			return err
		}
		return s.resync(ctx, cur.EncounterID)
	})
	return ok, err
}

func (s *Service) ListProcedures(ctx context.Context, encounterID string, limit, offset int) ([]*Procedure, int, error) {
	if encounterID != "" {
		return s.procedures.ListByEncounter(ctx, encounterID, limit, offset)
	}
	return s.procedures.List(ctx, limit, offset)
}

// -- Medication --

// CreateMedication records a prescription and bills it to the encounter's
// claim.
func (s *Service) CreateMedication(ctx context.Context, m *Medication) error {
	if err := m.Validate(); err != nil {
		return err
	}
	return s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.checkRefs(ctx, &m.EncounterID, &m.PrescriberID); err != nil {
			return err
		}
		if m.ID == "" {
			id, err := s.ids.Next(ctx, ident.Medication)
			if err != nil {
				return err
			}
			m.ID = id
		}
		if err := s.medications.Create(ctx, m); err != nil {
			return err
		}
		return s.resync(ctx, m.EncounterID)
	})
}

func (s *Service) GetMedication(ctx context.Context, id string) (*Medication, error) {
	return s.medications.GetByID(ctx, id)
}

func (s *Service) UpdateMedication(ctx context.Context, id string, p *MedicationPatch) (bool, error) {
	if err := p.Validate(); err != nil {
		return false, err
	}
	var ok bool
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		cur, err := s.medications.GetByID(ctx, id)
		if errors.Is(err, errs.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := s.checkRefs(ctx, p.EncounterID, p.PrescriberID); err != nil {
			return err
		}
		if ok, err = s.medications.Update(ctx, id, p); err != nil || !ok {
			return err
		}
		target := cur.EncounterID
		if p.EncounterID != nil {
			target = *p.EncounterID
		}
		return s.resync(ctx, cur.EncounterID, target)
	})
	return ok, err
}

func (s *Service) DeleteMedication(ctx context.Context, id string) (bool, error) {
	var ok bool
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		cur, err := s.medications.GetByID(ctx, id)
		if errors.Is(err, errs.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if ok, err = s.medications.Delete(ctx, id); err != nil || !ok {
			return err
		}
		return s.resync(ctx, cur.EncounterID)
	})
	return ok, err
}

func (s *Service) ListMedications(ctx context.Context, encounterID string, limit, offset int) ([]*Medication, int, error) {
	if encounterID != "" {
		return s.medications.ListByEncounter(ctx, encounterID, limit, offset)
	}
	return s.medications.List(ctx, limit, offset)
}
