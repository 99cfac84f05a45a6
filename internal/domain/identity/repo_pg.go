package identity

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medico/hospital/internal/platform/db"
	"github.com/medico/hospital/internal/platform/errs"
)

// =========== Patient Repository ===========

type patientRepoPG struct {
	pool *pgxpool.Pool
}

func NewPatientRepo(pool *pgxpool.Pool) PatientRepository {
	return &patientRepoPG{pool: pool}
}

func (r *patientRepoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

const patientCols = `patient_id, first_name, last_name, dob,
	EXTRACT(YEAR FROM age(CURRENT_DATE, dob))::int,
	gender, ethnicity, insurance_type, marital_status,
	address, city, state, zip, phone, email, registration_date`

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(&p.ID, &p.FirstName, &p.LastName, &p.DOB, &p.Age,
		&p.Gender, &p.Ethnicity, &p.InsuranceType, &p.MaritalStatus,
		&p.Address, &p.City, &p.State, &p.Zip, &p.Phone, &p.Email, &p.RegistrationDate)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *patientRepoPG) Create(ctx context.Context, p *Patient) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO patients (patient_id, first_name, last_name, dob, gender,
			ethnicity, insurance_type, marital_status,
			address, city, state, zip, phone, email, registration_date)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)`,
		p.ID, p.FirstName, p.LastName, p.DOB, p.Gender,
		p.Ethnicity, p.InsuranceType, p.MaritalStatus,
		p.Address, p.City, p.State, p.Zip, p.Phone, p.Email, p.RegistrationDate)
	return errs.Storage("insert patient", err)
}

func (r *patientRepoPG) GetByID(ctx context.Context, id string) (*Patient, error) {
	p, err := scanPatient(r.conn(ctx).QueryRow(ctx,
		`SELECT `+patientCols+` FROM patients WHERE patient_id = $1`, id))
	return p, errs.Storage("get patient", err)
}

func (r *patientRepoPG) Update(ctx context.Context, id string, p *PatientPatch) (bool, error) {
	return p.assignments().Apply(ctx, r.conn(ctx), "patients", "patient_id", id)
}

func (r *patientRepoPG) Delete(ctx context.Context, id string) (bool, error) {
	return db.DeleteRow(ctx, r.conn(ctx), "patients", "patient_id", id)
}

func (r *patientRepoPG) List(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM patients`).Scan(&total); err != nil {
		return nil, 0, errs.Storage("count patients", err)
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+patientCols+` FROM patients ORDER BY patient_id LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, errs.Storage("list patients", err)
	}
	defer rows.Close()

	var items []*Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, 0, errs.Storage("scan patient", err)
		}
		items = append(items, p)
	}
	return items, total, errs.Storage("list patients", rows.Err())
}

// =========== Provider Repository ===========

type providerRepoPG struct {
	pool *pgxpool.Pool
}

func NewProviderRepo(pool *pgxpool.Pool) ProviderRepository {
	return &providerRepoPG{pool: pool}
}

func (r *providerRepoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

const providerCols = `provider_id, name, department, specialty, npi, inhouse,
	location, years_experience, contact_info, email, head_id`

func scanProvider(row pgx.Row) (*Provider, error) {
	var p Provider
	err := row.Scan(&p.ID, &p.Name, &p.Department, &p.Specialty, &p.NPI, &p.Inhouse,
		&p.Location, &p.YearsExperience, &p.ContactInfo, &p.Email, &p.HeadID)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *providerRepoPG) Create(ctx context.Context, p *Provider) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO providers (provider_id, name, department, specialty, npi, inhouse,
			location, years_experience, contact_info, email, head_id)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		p.ID, p.Name, p.Department, p.Specialty, p.NPI, p.Inhouse,
		p.Location, p.YearsExperience, p.ContactInfo, p.Email, p.HeadID)
	return errs.Storage("insert provider", err)
}

func (r *providerRepoPG) GetByID(ctx context.Context, id string) (*Provider, error) {
	p, err := scanProvider(r.conn(ctx).QueryRow(ctx,
		`SELECT `+providerCols+` FROM providers WHERE provider_id = $1`, id))
	return p, errs.Storage("get provider", err)
}

func (r *providerRepoPG) Update(ctx context.Context, id string, p *ProviderPatch) (bool, error) {
	return p.assignments().Apply(ctx, r.conn(ctx), "providers", "provider_id", id)
}

func (r *providerRepoPG) Delete(ctx context.Context, id string) (bool, error) {
	return db.DeleteRow(ctx, r.conn(ctx), "providers", "provider_id", id)
}

func (r *providerRepoPG) List(ctx context.Context, limit, offset int) ([]*Provider, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM providers`).Scan(&total); err != nil {
		return nil, 0, errs.Storage("count providers", err)
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+providerCols+` FROM providers ORDER BY provider_id LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, errs.Storage("list providers", err)
	}
	defer rows.Close()

	var items []*Provider
	for rows.Next() {
		p, err := scanProvider(rows)
		if err != nil {
			return nil, 0, errs.Storage("scan provider", err)
		}
		items = append(items, p)
	}
	return items, total, errs.Storage("list providers", rows.Err())
}

// =========== Department Head Repository ===========

type departmentHeadRepoPG struct {
	pool *pgxpool.Pool
}

func NewDepartmentHeadRepo(pool *pgxpool.Pool) DepartmentHeadRepository {
	return &departmentHeadRepoPG{pool: pool}
}

func (r *departmentHeadRepoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

// Name and email come from the provider row, falling back to the copies.
const headSelect = `SELECT d.head_id, d.department, d.head_provider_id,
	COALESCE(p.name, d.head_name), COALESCE(p.email, d.head_email)
	FROM department_heads d
	LEFT JOIN providers p ON p.provider_id = d.head_provider_id`

func scanHead(row pgx.Row) (*DepartmentHead, error) {
	var h DepartmentHead
	if err := row.Scan(&h.ID, &h.Department, &h.HeadProviderID, &h.HeadName, &h.HeadEmail); err != nil {
		return nil, err
	}
	return &h, nil
}

func (r *departmentHeadRepoPG) Create(ctx context.Context, h *DepartmentHead) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO department_heads (head_id, department, head_provider_id, head_name, head_email)
		VALUES ($1,$2,$3,$4,$5)`,
		h.ID, h.Department, h.HeadProviderID, h.HeadName, h.HeadEmail)
	return errs.Storage("insert department head", err)
}

func (r *departmentHeadRepoPG) GetByID(ctx context.Context, id int) (*DepartmentHead, error) {
	h, err := scanHead(r.conn(ctx).QueryRow(ctx, headSelect+` WHERE d.head_id = $1`, id))
	return h, errs.Storage("get department head", err)
}

func (r *departmentHeadRepoPG) Relink(ctx context.Context, id int, providerID, name string, email *string) (bool, error) {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE department_heads SET head_provider_id = $2, head_name = $3, head_email = $4
		WHERE head_id = $1`, id, providerID, name, email)
	if err != nil {
		return false, errs.Storage("relink department head", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *departmentHeadRepoPG) RefreshCopies(ctx context.Context, providerID string) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE department_heads d SET head_name = p.name, head_email = p.email
		FROM providers p
		WHERE p.provider_id = d.head_provider_id AND d.head_provider_id = $1`, providerID)
	return errs.Storage("refresh department head", err)
}

func (r *departmentHeadRepoPG) Delete(ctx context.Context, id int) (bool, error) {
	return db.DeleteRow(ctx, r.conn(ctx), "department_heads", "head_id", id)
}

func (r *departmentHeadRepoPG) List(ctx context.Context, limit, offset int) ([]*DepartmentHead, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM department_heads`).Scan(&total); err != nil {
		return nil, 0, errs.Storage("count department heads", err)
	}
	rows, err := r.conn(ctx).Query(ctx, headSelect+` ORDER BY d.head_id LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, errs.Storage("list department heads", err)
	}
	defer rows.Close()

	var items []*DepartmentHead
	for rows.Next() {
		h, err := scanHead(rows)
		if err != nil {
			return nil, 0, errs.Storage("scan department head", err)
		}
		items = append(items, h)
	}
	return items, total, errs.Storage("list department heads", rows.Err())
}
