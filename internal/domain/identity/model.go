package identity

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/medico/hospital/internal/platform/db"
	"github.com/medico/hospital/internal/platform/errs"
)

const DefaultMaritalStatus = "unknown"

// Patient maps to the patients table. Age is derived from DOB on read and
// is never written.
type Patient struct {
	ID               string      `json:"patient_id"`
	FirstName        string      `json:"first_name"`
	LastName         string      `json:"last_name"`
	DOB              pgtype.Date `json:"dob"`
	Age              *int        `json:"age,omitempty"`
	Gender           string      `json:"gender"`
	Ethnicity        *string     `json:"ethnicity,omitempty"`
	InsuranceType    *string     `json:"insurance_type,omitempty"`
	MaritalStatus    *string     `json:"marital_status,omitempty"`
	Address          *string     `json:"address,omitempty"`
	City             *string     `json:"city,omitempty"`
	State            *string     `json:"state,omitempty"`
	Zip              *string     `json:"zip,omitempty"`
	Phone            *string     `json:"phone,omitempty"`
	Email            *string     `json:"email,omitempty"`
	RegistrationDate pgtype.Date `json:"registration_date"`
}

func (p *Patient) Validate() error {
	return errs.Check(validation.ValidateStruct(p,
		validation.Field(&p.FirstName, errs.Required),
		validation.Field(&p.LastName, errs.Required),
		validation.Field(&p.DOB, errs.Required),
		validation.Field(&p.Gender, errs.Required),
	))
}

// applyDefaults fills marital status and stamps the registration date.
func (p *Patient) applyDefaults(now time.Time) {
	if p.MaritalStatus == nil {
		ms := DefaultMaritalStatus
		p.MaritalStatus = &ms
	}
	if !p.RegistrationDate.Valid {
		y, m, d := now.Date()
		p.RegistrationDate = pgtype.Date{Time: time.Date(y, m, d, 0, 0, 0, 0, time.UTC), Valid: true}
	}
}

// PatientPatch lists the updatable patient columns. Nil fields are left
// unchanged.
type PatientPatch struct {
	FirstName        *string      `json:"first_name"`
	LastName         *string      `json:"last_name"`
	DOB              *pgtype.Date `json:"dob"`
	Gender           *string      `json:"gender"`
	Ethnicity        *string      `json:"ethnicity"`
	InsuranceType    *string      `json:"insurance_type"`
	MaritalStatus    *string      `json:"marital_status"`
	Address          *string      `json:"address"`
	City             *string      `json:"city"`
	State            *string      `json:"state"`
	Zip              *string      `json:"zip"`
	Phone            *string      `json:"phone"`
	Email            *string      `json:"email"`
	RegistrationDate *pgtype.Date `json:"registration_date"`
}

func (p *PatientPatch) Validate() error {
	return errs.Check(validation.ValidateStruct(p,
		validation.Field(&p.FirstName, errs.NotEmpty),
		validation.Field(&p.LastName, errs.NotEmpty),
		validation.Field(&p.Gender, errs.NotEmpty),
	))
}

func (p *PatientPatch) assignments() *db.Assignments {
	var a db.Assignments
	db.SetIf(&a, "first_name", p.FirstName)
	db.SetIf(&a, "last_name", p.LastName)
	db.SetIf(&a, "dob", p.DOB)
	db.SetIf(&a, "gender", p.Gender)
	db.SetIf(&a, "ethnicity", p.Ethnicity)
	db.SetIf(&a, "insurance_type", p.InsuranceType)
	db.SetIf(&a, "marital_status", p.MaritalStatus)
	db.SetIf(&a, "address", p.Address)
	db.SetIf(&a, "city", p.City)
	db.SetIf(&a, "state", p.State)
	db.SetIf(&a, "zip", p.Zip)
	db.SetIf(&a, "phone", p.Phone)
	db.SetIf(&a, "email", p.Email)
	db.SetIf(&a, "registration_date", p.RegistrationDate)
	return &a
}

// Provider maps to the providers table. Department, specialty, NPI and
// head are fixed at creation.
type Provider struct {
	ID              string  `json:"provider_id"`
	Name            string  `json:"name"`
	Department      string  `json:"department"`
	Specialty       string  `json:"specialty"`
	NPI             string  `json:"npi"`
	Inhouse         *bool   `json:"inhouse,omitempty"`
	Location        *string `json:"location,omitempty"`
	YearsExperience *int    `json:"years_experience,omitempty"`
	ContactInfo     *string `json:"contact_info,omitempty"`
	Email           *string `json:"email,omitempty"`
	HeadID          *int    `json:"head_id,omitempty"`
}

func (p *Provider) Validate() error {
	return errs.Check(validation.ValidateStruct(p,
		validation.Field(&p.Name, errs.Required),
		validation.Field(&p.Department, errs.Required),
		validation.Field(&p.Specialty, errs.Required),
		validation.Field(&p.NPI, errs.Required),
	))
}

// ProviderPatch lists the updatable provider columns. Department,
// Specialty, NPI and HeadID are accepted and never written.
type ProviderPatch struct {
	Name            *string `json:"name"`
	Inhouse         *bool   `json:"inhouse"`
	Location        *string `json:"location"`
	YearsExperience *int    `json:"years_experience"`
	ContactInfo     *string `json:"contact_info"`
	Email           *string `json:"email"`

	Department *string `json:"department"`
	Specialty  *string `json:"specialty"`
	NPI        *string `json:"npi"`
	HeadID     *int    `json:"head_id"`
}

func (p *ProviderPatch) Validate() error {
	return errs.Check(validation.ValidateStruct(p,
		validation.Field(&p.Name, errs.NotEmpty),
	))
}

// touchesHead reports whether the patch changes a column copied onto
// department heads.
func (p *ProviderPatch) touchesHead() bool {
	return p.Name != nil || p.Email != nil
}

func (p *ProviderPatch) assignments() *db.Assignments {
	var a db.Assignments
	db.SetIf(&a, "name", p.Name)
	db.SetIf(&a, "inhouse", p.Inhouse)
	db.SetIf(&a, "location", p.Location)
	db.SetIf(&a, "years_experience", p.YearsExperience)
	db.SetIf(&a, "contact_info", p.ContactInfo)
	db.SetIf(&a, "email", p.Email)
	return &a
}

// DepartmentHead maps to department_heads. HeadName and HeadEmail are
// copies of the linked provider's name and email; reads return the live
// provider values.
type DepartmentHead struct {
	ID             int     `json:"head_id"`
	Department     string  `json:"department"`
	HeadProviderID string  `json:"head_provider_id"`
	HeadName       string  `json:"head_name"`
	HeadEmail      *string `json:"head_email,omitempty"`
}

func (h *DepartmentHead) Validate() error {
	return errs.Check(validation.ValidateStruct(h,
		validation.Field(&h.Department, errs.Required),
		validation.Field(&h.HeadProviderID, errs.Required),
	))
}

// DepartmentHeadPatch relinks a department to another provider. Department
// and the copied name and email are accepted and never written.
type DepartmentHeadPatch struct {
	HeadProviderID *string `json:"head_provider_id"`

	Department *string `json:"department"`
	HeadName   *string `json:"head_name"`
	HeadEmail  *string `json:"head_email"`
}

func (p *DepartmentHeadPatch) Validate() error {
	return errs.Check(validation.ValidateStruct(p,
		validation.Field(&p.HeadProviderID, errs.NotEmpty),
	))
}
