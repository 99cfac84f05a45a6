package clinical

import "context"

type ProcedureRepository interface {
	Create(ctx context.Context, p *Procedure) error
	GetByID(ctx context.Context, id string) (*Procedure, error)
	Update(ctx context.Context, id string, p *ProcedurePatch) (bool, error)
	Delete(ctx context.Context, id string) (bool, error)
	List(ctx context.Context, limit, offset int) ([]*Procedure, int, error)
	ListByEncounter(ctx context.Context, encounterID string, limit, offset int) ([]*Procedure, int, error)
}

type MedicationRepository interface {
	Create(ctx context.Context, m *Medication) error
	GetByID(ctx context.Context, id string) (*Medication, error)
	Update(ctx context.Context, id string, p *MedicationPatch) (bool, error)
	Delete(ctx context.Context, id string) (bool, error)
	List(ctx context.Context, limit, offset int) ([]*Medication, int, error)
	ListByEncounter(ctx context.Context, encounterID string, limit, offset int) ([]*Medication, int, error)
}
