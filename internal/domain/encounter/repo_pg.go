package encounter

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medico/hospital/internal/platform/db"
	"github.com/medico/hospital/internal/platform/errs"
)

// =========== Encounter Repository ===========

type encounterRepoPG struct {
	pool *pgxpool.Pool
}

func NewEncounterRepo(pool *pgxpool.Pool) EncounterRepository {
	return &encounterRepoPG{pool: pool}
}

func (r *encounterRepoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

// A stored NULL department reads as the provider's department.
const encSelect = `SELECT e.encounter_id, e.patient_id, e.provider_id, e.visit_date,
	e.visit_type, COALESCE(e.department, p.department), e.reason_for_visit,
	e.diagnosis_code, e.admission_type, e.discharge_date, e.length_of_stay,
	e.status, e.readmitted_flag
	FROM encounters e
	LEFT JOIN providers p ON p.provider_id = e.provider_id`

func scanEncounter(row pgx.Row) (*Encounter, error) {
	var e Encounter
	err := row.Scan(&e.ID, &e.PatientID, &e.ProviderID, &e.VisitDate,
		&e.VisitType, &e.Department, &e.ReasonForVisit,
		&e.DiagnosisCode, &e.AdmissionType, &e.DischargeDate, &e.LengthOfStay,
		&e.Status, &e.ReadmittedFlag)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func collectEncounters(rows pgx.Rows, total int) ([]*Encounter, int, error) {
	var items []*Encounter
	for rows.Next() {
		e, err := scanEncounter(rows)
		if err != nil {
			return nil, 0, errs.Storage("scan encounter", err)
		}
		items = append(items, e)
	}
	return items, total, errs.Storage("list encounters", rows.Err())
}

func (r *encounterRepoPG) Create(ctx context.Context, e *Encounter) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO encounters (encounter_id, patient_id, provider_id, visit_date,
			visit_type, department, reason_for_visit, diagnosis_code, admission_type,
			discharge_date, length_of_stay, status, readmitted_flag)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`,
		e.ID, e.PatientID, e.ProviderID, e.VisitDate,
		e.VisitType, e.Department, e.ReasonForVisit, e.DiagnosisCode, e.AdmissionType,
		e.DischargeDate, e.LengthOfStay, e.Status, e.ReadmittedFlag)
	return errs.Storage("insert encounter", err)
}

func (r *encounterRepoPG) GetByID(ctx context.Context, id string) (*Encounter, error) {
	e, err := scanEncounter(r.conn(ctx).QueryRow(ctx, encSelect+` WHERE e.encounter_id = $1`, id))
	return e, errs.Storage("get encounter", err)
}

func (r *encounterRepoPG) Update(ctx context.Context, id string, p *EncounterPatch) (bool, error) {
	return p.assignments().Apply(ctx, r.conn(ctx), "encounters", "encounter_id", id)
}

func (r *encounterRepoPG) Delete(ctx context.Context, id string) (bool, error) {
	return db.DeleteRow(ctx, r.conn(ctx), "encounters", "encounter_id", id)
}

func (r *encounterRepoPG) List(ctx context.Context, limit, offset int) ([]*Encounter, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM encounters`).Scan(&total); err != nil {
		return nil, 0, errs.Storage("count encounters", err)
	}
	rows, err := r.conn(ctx).Query(ctx,
		encSelect+` ORDER BY e.visit_date DESC, e.encounter_id LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, errs.Storage("list encounters", err)
	}
	defer rows.Close()
	return collectEncounters(rows, total)
}

func (r *encounterRepoPG) ListByPatient(ctx context.Context, patientID string, limit, offset int) ([]*Encounter, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM encounters WHERE patient_id = $1`, patientID).Scan(&total); err != nil {
		return nil, 0, errs.Storage("count encounters", err)
	}
	rows, err := r.conn(ctx).Query(ctx,
		encSelect+` WHERE e.patient_id = $1 ORDER BY e.visit_date DESC, e.encounter_id LIMIT $2 OFFSET $3`,
		patientID, limit, offset)
	if err != nil {
		return nil, 0, errs.Storage("list encounters", err)
	}
	defer rows.Close()
	return collectEncounters(rows, total)
}

func (r *encounterRepoPG) SetDiagnosisCode(ctx context.Context, encounterID, code string) error {
	_, err := r.conn(ctx).Exec(ctx,
		`UPDATE encounters SET diagnosis_code = $2 WHERE encounter_id = $1`, encounterID, code)
	return errs.Storage("set diagnosis code", err)
}

// Diagnosis IDs are sequential, so the longest then greatest ID is the
// newest row.
func (r *encounterRepoPG) RefreshDiagnosisCode(ctx context.Context, encounterID string) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE encounters SET diagnosis_code = (
			SELECT d.diagnosis_code FROM diagnoses d
			WHERE d.encounter_id = $1
			ORDER BY length(d.diagnosis_id) DESC, d.diagnosis_id DESC
			LIMIT 1)
		WHERE encounter_id = $1`, encounterID)
	return errs.Storage("refresh diagnosis code", err)
}

func (r *encounterRepoPG) ReassignClaims(ctx context.Context, encounterID, patientID string) error {
	_, err := r.conn(ctx).Exec(ctx,
		`UPDATE claims_and_billing SET patient_id = $2 WHERE encounter_id = $1`, encounterID, patientID)
	return errs.Storage("reassign claims", err)
}

// =========== Diagnosis Repository ===========

type diagnosisRepoPG struct {
	pool *pgxpool.Pool
}

func NewDiagnosisRepo(pool *pgxpool.Pool) DiagnosisRepository {
	return &diagnosisRepoPG{pool: pool}
}

func (r *diagnosisRepoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

const diagCols = `diagnosis_id, encounter_id, diagnosis_code, diagnosis_description,
	primary_flag, chronic_flag`

func scanDiagnosis(row pgx.Row) (*Diagnosis, error) {
	var d Diagnosis
	err := row.Scan(&d.ID, &d.EncounterID, &d.DiagnosisCode, &d.DiagnosisDescription,
		&d.PrimaryFlag, &d.ChronicFlag)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *diagnosisRepoPG) Create(ctx context.Context, d *Diagnosis) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO diagnoses (`+diagCols+`)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		d.ID, d.EncounterID, d.DiagnosisCode, d.DiagnosisDescription, d.PrimaryFlag, d.ChronicFlag)
	return errs.Storage("insert diagnosis", err)
}

func (r *diagnosisRepoPG) GetByID(ctx context.Context, id string) (*Diagnosis, error) {
	d, err := scanDiagnosis(r.conn(ctx).QueryRow(ctx,
		`SELECT `+diagCols+` FROM diagnoses WHERE diagnosis_id = $1`, id))
	return d, errs.Storage("get diagnosis", err)
}

func (r *diagnosisRepoPG) Update(ctx context.Context, id string, p *DiagnosisPatch) (bool, error) {
	return p.assignments().Apply(ctx, r.conn(ctx), "diagnoses", "diagnosis_id", id)
}

func (r *diagnosisRepoPG) Delete(ctx context.Context, id string) (bool, error) {
	return db.DeleteRow(ctx, r.conn(ctx), "diagnoses", "diagnosis_id", id)
}

func (r *diagnosisRepoPG) ListByEncounter(ctx context.Context, encounterID string, limit, offset int) ([]*Diagnosis, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM diagnoses WHERE encounter_id = $1`, encounterID).Scan(&total); err != nil {
		return nil, 0, errs.Storage("count diagnoses", err)
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+diagCols+` FROM diagnoses WHERE encounter_id = $1 ORDER BY diagnosis_id LIMIT $2 OFFSET $3`,
		encounterID, limit, offset)
	if err != nil {
		return nil, 0, errs.Storage("list diagnoses", err)
	}
	defer rows.Close()

	var items []*Diagnosis
	for rows.Next() {
		d, err := scanDiagnosis(rows)
		if err != nil {
			return nil, 0, errs.Storage("scan diagnosis", err)
		}
		items = append(items, d)
	}
	return items, total, errs.Storage("list diagnoses", rows.Err())
}

// =========== Lab Test Repository ===========

type labTestRepoPG struct {
	pool *pgxpool.Pool
}

func NewLabTestRepo(pool *pgxpool.Pool) LabTestRepository {
	return &labTestRepoPG{pool: pool}
}

func (r *labTestRepoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

const labCols = `test_id, lab_id, encounter_id, test_name, test_code, specimen_type,
	test_result, units, normal_range, test_date, status`

func scanLabTest(row pgx.Row) (*LabTest, error) {
	var l LabTest
	err := row.Scan(&l.ID, &l.LabID, &l.EncounterID, &l.TestName, &l.TestCode, &l.SpecimenType,
		&l.TestResult, &l.Units, &l.NormalRange, &l.TestDate, &l.Status)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *labTestRepoPG) Create(ctx context.Context, l *LabTest) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO lab_tests (`+labCols+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		l.ID, l.LabID, l.EncounterID, l.TestName, l.TestCode, l.SpecimenType,
		l.TestResult, l.Units, l.NormalRange, l.TestDate, l.Status)
	return errs.Storage("insert lab test", err)
}

func (r *labTestRepoPG) GetByID(ctx context.Context, id string) (*LabTest, error) {
	l, err := scanLabTest(r.conn(ctx).QueryRow(ctx,
		`SELECT `+labCols+` FROM lab_tests WHERE test_id = $1`, id))
	return l, errs.Storage("get lab test", err)
}

func (r *labTestRepoPG) Update(ctx context.Context, id string, p *LabTestPatch) (bool, error) {
	return p.assignments().Apply(ctx, r.conn(ctx), "lab_tests", "test_id", id)
}

func (r *labTestRepoPG) Delete(ctx context.Context, id string) (bool, error) {
	return db.DeleteRow(ctx, r.conn(ctx), "lab_tests", "test_id", id)
}

func (r *labTestRepoPG) ListByEncounter(ctx context.Context, encounterID string, limit, offset int) ([]*LabTest, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM lab_tests WHERE encounter_id = $1`, encounterID).Scan(&total); err != nil {
		return nil, 0, errs.Storage("count lab tests", err)
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+labCols+` FROM lab_tests WHERE encounter_id = $1 ORDER BY test_date DESC, test_id LIMIT $2 OFFSET $3`,
		encounterID, limit, offset)
	if err != nil {
		return nil, 0, errs.Storage("list lab tests", err)
	}
	defer rows.Close()

	var items []*LabTest
	for rows.Next() {
		l, err := scanLabTest(rows)
		if err != nil {
			return nil, 0, errs.Storage("scan lab test", err)
		}
		items = append(items, l)
	}
	return items, total, errs.Storage("list lab tests", rows.Err())
}
