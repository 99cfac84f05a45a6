package encounter

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/medico/hospital/internal/platform/db"
	"github.com/medico/hospital/internal/platform/errs"
)

const (
	DefaultStatus = "Not Completed"
	NotApplicable = "N/A"
)

// Encounter maps to the encounters table. DiagnosisCode mirrors the code of
// the encounter's newest diagnosis.
type Encounter struct {
	ID             string      `json:"encounter_id"`
	PatientID      string      `json:"patient_id"`
	ProviderID     string      `json:"provider_id"`
	VisitDate      pgtype.Date `json:"visit_date"`
	VisitType      *string     `json:"visit_type,omitempty"`
	Department     *string     `json:"department,omitempty"`
	ReasonForVisit *string     `json:"reason_for_visit,omitempty"`
	DiagnosisCode  *string     `json:"diagnosis_code,omitempty"`
	AdmissionType  *string     `json:"admission_type,omitempty"`
	DischargeDate  pgtype.Date `json:"discharge_date"`
	LengthOfStay   *int        `json:"length_of_stay,omitempty"`
	Status         string      `json:"status"`
	ReadmittedFlag *bool       `json:"readmitted_flag,omitempty"`
}

func (e *Encounter) Validate() error {
	return errs.Check(validation.ValidateStruct(e,
		validation.Field(&e.PatientID, errs.Required),
		validation.Field(&e.ProviderID, errs.Required),
		validation.Field(&e.VisitDate, errs.Required),
	))
}

func (e *Encounter) applyDefaults() {
	if e.Status == "" {
		e.Status = DefaultStatus
	}
	if e.LengthOfStay == nil {
		n := 0
		e.LengthOfStay = &n
	}
	if e.ReadmittedFlag == nil {
		b := false
		e.ReadmittedFlag = &b
	}
}

type EncounterPatch struct {
	PatientID      *string      `json:"patient_id"`
	ProviderID     *string      `json:"provider_id"`
	VisitDate      *pgtype.Date `json:"visit_date"`
	VisitType      *string      `json:"visit_type"`
	Department     *string      `json:"department"`
	ReasonForVisit *string      `json:"reason_for_visit"`
	DiagnosisCode  *string      `json:"diagnosis_code"`
	AdmissionType  *string      `json:"admission_type"`
	DischargeDate  *pgtype.Date `json:"discharge_date"`
	LengthOfStay   *int         `json:"length_of_stay"`
	Status         *string      `json:"status"`
	ReadmittedFlag *bool        `json:"readmitted_flag"`
}

func (p *EncounterPatch) Validate() error {
	return errs.Check(validation.ValidateStruct(p,
		validation.Field(&p.PatientID, errs.NotEmpty),
		validation.Field(&p.ProviderID, errs.NotEmpty),
		validation.Field(&p.Status, errs.NotEmpty),
	))
}

func (p *EncounterPatch) assignments() *db.Assignments {
	var a db.Assignments
	db.SetIf(&a, "patient_id", p.PatientID)
	db.SetIf(&a, "provider_id", p.ProviderID)
	db.SetIf(&a, "visit_date", p.VisitDate)
	db.SetIf(&a, "visit_type", p.VisitType)
	db.SetIf(&a, "department", p.Department)
	db.SetIf(&a, "reason_for_visit", p.ReasonForVisit)
	db.SetIf(&a, "diagnosis_code", p.DiagnosisCode)
	db.SetIf(&a, "admission_type", p.AdmissionType)
	db.SetIf(&a, "discharge_date", p.DischargeDate)
	db.SetIf(&a, "length_of_stay", p.LengthOfStay)
	db.SetIf(&a, "status", p.Status)
	db.SetIf(&a, "readmitted_flag", p.ReadmittedFlag)
	return &a
}

type Diagnosis struct {
	ID                   string  `json:"diagnosis_id"`
	EncounterID          string  `json:"encounter_id"`
	DiagnosisCode        string  `json:"diagnosis_code"`
	DiagnosisDescription *string `json:"diagnosis_description,omitempty"`
	PrimaryFlag          *bool   `json:"primary_flag,omitempty"`
	ChronicFlag          *bool   `json:"chronic_flag,omitempty"`
}

func (d *Diagnosis) Validate() error {
	return errs.Check(validation.ValidateStruct(d,
		validation.Field(&d.EncounterID, errs.Required),
		validation.Field(&d.DiagnosisCode, errs.Required),
	))
}

type DiagnosisPatch struct {
	EncounterID          *string `json:"encounter_id"`
	DiagnosisCode        *string `json:"diagnosis_code"`
	DiagnosisDescription *string `json:"diagnosis_description"`
	PrimaryFlag          *bool   `json:"primary_flag"`
	ChronicFlag          *bool   `json:"chronic_flag"`
}

func (p *DiagnosisPatch) Validate() error {
	return errs.Check(validation.ValidateStruct(p,
		validation.Field(&p.EncounterID, errs.NotEmpty),
		validation.Field(&p.DiagnosisCode, errs.NotEmpty),
	))
}

func (p *DiagnosisPatch) assignments() *db.Assignments {
	var a db.Assignments
	db.SetIf(&a, "encounter_id", p.EncounterID)
	db.SetIf(&a, "diagnosis_code", p.DiagnosisCode)
	db.SetIf(&a, "diagnosis_description", p.DiagnosisDescription)
	db.SetIf(&a, "primary_flag", p.PrimaryFlag)
	db.SetIf(&a, "chronic_flag", p.ChronicFlag)
	return &a
}

type LabTest struct {
	ID           string      `json:"test_id"`
	LabID        *string     `json:"lab_id,omitempty"`
	EncounterID  string      `json:"encounter_id"`
	TestName     string      `json:"test_name"`
	TestCode     string      `json:"test_code"`
	SpecimenType *string     `json:"specimen_type,omitempty"`
	TestResult   *string     `json:"test_result,omitempty"`
	Units        *string     `json:"units,omitempty"`
	NormalRange  *string     `json:"normal_range,omitempty"`
	TestDate     pgtype.Date `json:"test_date"`
	Status       string      `json:"status"`
}

func (l *LabTest) Validate() error {
	return errs.Check(validation.ValidateStruct(l,
		validation.Field(&l.EncounterID, errs.Required),
		validation.Field(&l.TestName, errs.Required),
		validation.Field(&l.TestCode, errs.Required),
		validation.Field(&l.TestDate, errs.Required),
		validation.Field(&l.Status, errs.Required),
	))
}

func (l *LabTest) applyDefaults() {
	if l.Units == nil {
		s := NotApplicable
		l.Units = &s
	}
	if l.NormalRange == nil {
		s := NotApplicable
		l.NormalRange = &s
	}
}

type LabTestPatch struct {
	LabID        *string      `json:"lab_id"`
	EncounterID  *string      `json:"encounter_id"`
	TestName     *string      `json:"test_name"`
	TestCode     *string      `json:"test_code"`
	SpecimenType *string      `json:"specimen_type"`
	TestResult   *string      `json:"test_result"`
	Units        *string      `json:"units"`
	NormalRange  *string      `json:"normal_range"`
	TestDate     *pgtype.Date `json:"test_date"`
	Status       *string      `json:"status"`
}

func (p *LabTestPatch) Validate() error {
	return errs.Check(validation.ValidateStruct(p,
		validation.Field(&p.EncounterID, errs.NotEmpty),
		validation.Field(&p.TestName, errs.NotEmpty),
		validation.Field(&p.TestCode, errs.NotEmpty),
		validation.Field(&p.Status, errs.NotEmpty),
	))
}

func (p *LabTestPatch) assignments() *db.Assignments {
	var a db.Assignments
	db.SetIf(&a, "lab_id", p.LabID)
	db.SetIf(&a, "encounter_id", p.EncounterID)
	db.SetIf(&a, "test_name", p.TestName)
	db.SetIf(&a, "test_code", p.TestCode)
	db.SetIf(&a, "specimen_type", p.SpecimenType)
	db.SetIf(&a, "test_result", p.TestResult)
	db.SetIf(&a, "units", p.Units)
	db.SetIf(&a, "normal_range", p.NormalRange)
	db.SetIf(&a, "test_date", p.TestDate)
	db.SetIf(&a, "status", p.Status)
	return &a
}
