package encounter

import "context"

type EncounterRepository interface {
	Create(ctx context.Context, e *Encounter) error
	GetByID(ctx context.Context, id string) (*Encounter, error)
	Update(ctx context.Context, id string, p *EncounterPatch) (bool, error)
	Delete(ctx context.Context, id string) (bool, error)
	List(ctx context.Context, limit, offset int) ([]*Encounter, int, error)
	ListByPatient(ctx context.Context, patientID string, limit, offset int) ([]*Encounter, int, error)
	// SetDiagnosisCode points the encounter at code.
	SetDiagnosisCode(ctx context.Context, encounterID, code string) error
	// RefreshDiagnosisCode points the encounter at its newest remaining
	// diagnosis, or clears the pointer.
	RefreshDiagnosisCode(ctx context.Context, encounterID string) error
	// ReassignClaims moves the encounter's claims to patientID.
	ReassignClaims(ctx context.Context, encounterID, patientID string) error
}

type DiagnosisRepository interface {
	Create(ctx context.Context, d *Diagnosis) error
	GetByID(ctx context.Context, id string) (*Diagnosis, error)
	Update(ctx context.Context, id string, p *DiagnosisPatch) (bool, error)
	Delete(ctx context.Context, id string) (bool, error)
	ListByEncounter(ctx context.Context, encounterID string, limit, offset int) ([]*Diagnosis, int, error)
}

type LabTestRepository interface {
	Create(ctx context.Context, l *LabTest) error
	GetByID(ctx context.Context, id string) (*LabTest, error)
	Update(ctx context.Context, id string, p *LabTestPatch) (bool, error)
	Delete(ctx context.Context, id string) (bool, error)
	ListByEncounter(ctx context.Context, encounterID string, limit, offset int) ([]*LabTest, int, error)
}
