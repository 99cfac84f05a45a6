package clinical

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/medico/hospital/internal/platform/db"
	"github.com/medico/hospital/internal/platform/errs"
)

// notNegative rejects negative costs.
var notNegative = validation.By(func(v interface{}) error {
	var d decimal.Decimal
	switch x := v.(type) {
	case decimal.Decimal:
		d = x
	case *decimal.Decimal:
		if x == nil {
			return nil
		}
		d = *x
	default:
		return nil
	}
	if d.IsNegative() {
		return validation.NewError("validation_negative", "cannot be negative")
	}
	return nil
})

// Procedure maps to the procedures table. Its cost counts toward the
// owning encounter's claim.
type Procedure struct {
	ID                   string          `json:"procedure_id"`
	EncounterID          string          `json:"encounter_id"`
	ProcedureCode        string          `json:"procedure_code"`
	ProcedureDescription *string         `json:"procedure_description,omitempty"`
	ProcedureDate        pgtype.Date     `json:"procedure_date"`
	ProviderID           string          `json:"provider_id"`
	ProcedureCost        decimal.Decimal `json:"procedure_cost"`
}

func (p *Procedure) Validate() error {
	return errs.Check(validation.ValidateStruct(p,
		validation.Field(&p.EncounterID, errs.Required),
		validation.Field(&p.ProcedureCode, errs.Required),
		validation.Field(&p.ProcedureDate, errs.Required),
		validation.Field(&p.ProviderID, errs.Required),
		validation.Field(&p.ProcedureCost, notNegative),
	))
}

type ProcedurePatch struct {
	EncounterID          *string          `json:"encounter_id"`
	ProcedureCode        *string          `json:"procedure_code"`
	ProcedureDescription *string          `json:"procedure_description"`
	ProcedureDate        *pgtype.Date     `json:"procedure_date"`
	ProviderID           *string          `json:"provider_id"`
	ProcedureCost        *decimal.Decimal `json:"procedure_cost"`
}

func (p *ProcedurePatch) Validate() error {
	return errs.Check(validation.ValidateStruct(p,
		validation.Field(&p.EncounterID, errs.NotEmpty),
		validation.Field(&p.ProcedureCode, errs.NotEmpty),
		validation.Field(&p.ProviderID, errs.NotEmpty),
		validation.Field(&p.ProcedureCost, notNegative),
	))
}

func (p *ProcedurePatch) assignments() *db.Assignments {
	var a db.Assignments
	db.SetIf(&a, "encounter_id", p.EncounterID)
	db.SetIf(&a, "procedure_code", p.ProcedureCode)
	db.SetIf(&a, "procedure_description", p.ProcedureDescription)
	db.SetIf(&a, "procedure_date", p.ProcedureDate)
	db.SetIf(&a, "provider_id", p.ProviderID)
	db.SetIf(&a, "procedure_cost", p.ProcedureCost)
	return &a
}

// Medication maps to the medications table. Its cost counts toward the
// owning encounter's claim.
type Medication struct {
	ID             string          `json:"medication_id"`
	EncounterID    string          `json:"encounter_id"`
	DrugName       string          `json:"drug_name"`
	Dosage         *string         `json:"dosage,omitempty"`
	Route          *string         `json:"route,omitempty"`
	Frequency      *string         `json:"frequency,omitempty"`
	Duration       *string         `json:"duration,omitempty"`
	PrescribedDate pgtype.Date     `json:"prescribed_date"`
	PrescriberID   string          `json:"prescriber_id"`
	Cost           decimal.Decimal `json:"cost"`
}

func (m *Medication) Validate() error {
	return errs.Check(validation.ValidateStruct(m,
		validation.Field(&m.EncounterID, errs.Required),
		validation.Field(&m.DrugName, errs.Required),
		validation.Field(&m.PrescribedDate, errs.Required),
		validation.Field(&m.PrescriberID, errs.Required),
		validation.Field(&m.Cost, notNegative),
	))
}

type MedicationPatch struct {
	EncounterID    *string          `json:"encounter_id"`
	DrugName       *string          `json:"drug_name"`
	Dosage         *string          `json:"dosage"`
	Route          *string          `json:"route"`
	Frequency      *string          `json:"frequency"`
	Duration       *string          `json:"duration"`
	PrescribedDate *pgtype.Date     `json:"prescribed_date"`
	PrescriberID   *string          `json:"prescriber_id"`
	Cost           *decimal.Decimal `json:"cost"`
}

func (p *MedicationPatch) Validate() error {
	return errs.Check(validation.ValidateStruct(p,
		validation.Field(&p.EncounterID, errs.NotEmpty),
		validation.Field(&p.DrugName, errs.NotEmpty),
		validation.Field(&p.PrescriberID, errs.NotEmpty),
		validation.Field(&p.Cost, notNegative),
	))
}

func (p *MedicationPatch) assignments() *db.Assignments {
	var a db.Assignments
	db.SetIf(&a, "encounter_id", p.EncounterID)
	db.SetIf(&a, "drug_name", p.DrugName)
	db.SetIf(&a, "dosage", p.Dosage)
	db.SetIf(&a, "route", p.Route)
	db.SetIf(&a, "frequency", p.Frequency)
	db.SetIf(&a, "duration", p.Duration)
	db.SetIf(&a, "prescribed_date", p.PrescribedDate)
	db.SetIf(&a, "prescriber_id", p.PrescriberID)
	db.SetIf(&a, "cost", p.Cost)
	return &a
}
