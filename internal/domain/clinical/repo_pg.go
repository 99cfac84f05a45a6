package clinical

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medico/hospital/internal/platform/db"
	"github.com/medico/hospital/internal/platform/errs"
)

// =========== Procedure Repository ===========

type procedureRepoPG struct {
	pool *pgxpool.Pool
}

func NewProcedureRepo(pool *pgxpool.Pool) ProcedureRepository {
	return &procedureRepoPG{pool: pool}
}

func (r *procedureRepoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

const procCols = `procedure_id, encounter_id, procedure_code, procedure_description,
	procedure_date, provider_id, COALESCE(procedure_cost, 0)`

func scanProcedure(row pgx.Row) (*Procedure, error) {
	var p Procedure
	err := row.Scan(&p.ID, &p.EncounterID, &p.ProcedureCode, &p.ProcedureDescription,
		&p.ProcedureDate, &p.ProviderID, &p.ProcedureCost)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func collectProcedures(rows pgx.Rows, total int) ([]*Procedure, int, error) {
	var items []*Procedure
	for rows.Next() {
		p, err := scanProcedure(rows)
		if err != nil {
			return nil, 0, errs.Storage("scan procedure", err)
		}
		items = append(items, p)
	}
	return items, total, errs.Storage("list procedures", rows.Err())
}

func (r *procedureRepoPG) Create(ctx context.Context, p *Procedure) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO procedures (procedure_id, encounter_id, procedure_code, procedure_description,
			procedure_date, provider_id, procedure_cost)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		p.ID, p.EncounterID, p.ProcedureCode, p.ProcedureDescription,
		p.ProcedureDate, p.ProviderID, p.ProcedureCost)
	return errs.Storage("insert procedure", err)
}

func (r *procedureRepoPG) GetByID(ctx context.Context, id string) (*Procedure, error) {
	p, err := scanProcedure(r.conn(ctx).QueryRow(ctx,
		`SELECT `+procCols+` FROM procedures WHERE procedure_id = $1`, id))
	return p, errs.Storage("get procedure", err)
}

func (r *procedureRepoPG) Update(ctx context.Context, id string, p *ProcedurePatch) (bool, error) {
	return p.assignments().Apply(ctx, r.conn(ctx), "procedures", "procedure_id", id)
}

func (r *procedureRepoPG) Delete(ctx context.Context, id string) (bool, error) {
	return db.DeleteRow(ctx, r.conn(ctx), "procedures", "procedure_id", id)
}

func (r *procedureRepoPG) List(ctx context.Context, limit, offset int) ([]*Procedure, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM procedures`).Scan(&total); err != nil {
		return nil, 0, errs.Storage("count procedures", err)
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+procCols+` FROM procedures ORDER BY procedure_date DESC, procedure_id LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, 0, errs.Storage("list procedures", err)
	}
	defer rows.Close()
	return collectProcedures(rows, total)
}

func (r *procedureRepoPG) ListByEncounter(ctx context.Context, encounterID string, limit, offset int) ([]*Procedure, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM procedures WHERE encounter_id = $1`, encounterID).Scan(&total); err != nil {
		return nil, 0, errs.Storage("count procedures", err)
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+procCols+` FROM procedures WHERE encounter_id = $1
		ORDER BY procedure_date DESC, procedure_id LIMIT $2 OFFSET $3`,
		encounterID, limit, offset)
	if err != nil {
		return nil, 0, errs.Storage("list procedures", err)
	}
	defer rows.Close()
	return collectProcedures(rows, total)
}

// =========== Medication Repository ===========

type medicationRepoPG struct {
	pool *pgxpool.Pool
}

func NewMedicationRepo(pool *pgxpool.Pool) MedicationRepository {
	return &medicationRepoPG{pool: pool}
}

func (r *medicationRepoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

const medCols = `medication_id, encounter_id, drug_name, dosage, route, frequency,
	duration, prescribed_date, prescriber_id, COALESCE(cost, 0)`

func scanMedication(row pgx.Row) (*Medication, error) {
	var m Medication
	err := row.Scan(&m.ID, &m.EncounterID, &m.DrugName, &m.Dosage, &m.Route, &m.Frequency,
		&m.Duration, &m.PrescribedDate, &m.PrescriberID, &m.Cost)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func collectMedications(rows pgx.Rows, total int) ([]*Medication, int, error) {
	var items []*Medication
	for rows.Next() {
		m, err := scanMedication(rows)
		if err != nil {
			return nil, 0, errs.Storage("scan medication", err)
		}
		items = append(items, m)
	}
	return items, total, errs.Storage("list medications", rows.Err())
}

func (r *medicationRepoPG) Create(ctx context.Context, m *Medication) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO medications (medication_id, encounter_id, drug_name, dosage, route, frequency,
			duration, prescribed_date, prescriber_id, cost)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		m.ID, m.EncounterID, m.DrugName, m.Dosage, m.Route, m.Frequency,
		m.Duration, m.PrescribedDate, m.PrescriberID, m.Cost)
	return errs.Storage("insert medication", err)
}

func (r *medicationRepoPG) GetByID(ctx context.Context, id string) (*Medication, error) {
	m, err := scanMedication(r.conn(ctx).QueryRow(ctx,
		`SELECT `+medCols+` FROM medications WHERE medication_id = $1`, id))
	return m, errs.Storage("get medication", err)
}

func (r *medicationRepoPG) Update(ctx context.Context, id string, p *MedicationPatch) (bool, error) {
	return p.assignments().Apply(ctx, r.conn(ctx), "medications", "medication_id", id)
}

func (r *medicationRepoPG) Delete(ctx context.Context, id string) (bool, error) {
	return db.DeleteRow(ctx, r.conn(ctx), "medications", "medication_id", id)
}

func (r *medicationRepoPG) List(ctx context.Context, limit, offset int) ([]*Medication, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM medications`).Scan(&total); err != nil {
		return nil, 0, errs.Storage("count medications", err)
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+medCols+` FROM medications ORDER BY prescribed_date DESC, medication_id LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, 0, errs.Storage("list medications", err)
	}
	defer rows.Close()
	return collectMedications(rows, total)
}

func (r *medicationRepoPG) ListByEncounter(ctx context.Context, encounterID string, limit, offset int) ([]*Medication, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM medications WHERE encounter_id = $1`, encounterID).Scan(&total); err != nil {
		return nil, 0, errs.Storage("count medications", err)
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+medCols+` FROM medications WHERE encounter_id = $1
		ORDER BY prescribed_date DESC, medication_id LIMIT $2 OFFSET $3`,
		encounterID, limit, offset)
	if err != nil {
		return nil, 0, errs.Storage("list medications", err)
	}
	defer rows.Close()
	return collectMedications(rows, total)
}
