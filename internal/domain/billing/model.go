package billing

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/medico/hospital/internal/platform/db"
	"github.com/medico/hospital/internal/platform/errs"
)

const (
	StatusPending = "Pending"

	PaymentSelfpay   = "Selfpay"
	PaymentInsurance = "Insurance"
)

// Insurer maps to the insurers table. Code is referenced by patients and
// claims and renames cascade through the foreign keys.
type Insurer struct {
	ID        int     `json:"insurer_id"`
	Code      string  `json:"code"`
	Name      string  `json:"name"`
	PayerType string  `json:"payer_type"`
	Phone     *string `json:"phone,omitempty"`
}

func (i *Insurer) Validate() error {
	return errs.Check(validation.ValidateStruct(i,
		validation.Field(&i.Code, errs.Required),
		validation.Field(&i.Name, errs.Required),
		validation.Field(&i.PayerType, errs.Required),
	))
}

type InsurerPatch struct {
	Code      *string `json:"code"`
	Name      *string `json:"name"`
	PayerType *string `json:"payer_type"`
	Phone     *string `json:"phone"`
}

func (p *InsurerPatch) Validate() error {
	return errs.Check(validation.ValidateStruct(p,
		validation.Field(&p.Code, errs.NotEmpty),
		validation.Field(&p.Name, errs.NotEmpty),
		validation.Field(&p.PayerType, errs.NotEmpty),
	))
}

func (p *InsurerPatch) assignments() *db.Assignments {
	var a db.Assignments
	db.SetIf(&a, "code", p.Code)
	db.SetIf(&a, "name", p.Name)
	db.SetIf(&a, "payer_type", p.PayerType)
	db.SetIf(&a, "phone", p.Phone)
	return &a
}

// Claim maps to a claims_and_billing row. ClaimID is nil for self-pay
// claims. BilledAmount tracks the encounter's procedure and medication
// costs once synchronized.
type Claim struct {
	BillingID         string          `json:"billing_id"`
	PatientID         string          `json:"patient_id"`
	EncounterID       string          `json:"encounter_id"`
	InsuranceProvider *string         `json:"insurance_provider,omitempty"`
	PaymentMethod     *string         `json:"payment_method,omitempty"`
	ClaimID           *string         `json:"claim_id,omitempty"`
	ClaimBillingDate  pgtype.Date     `json:"claim_billing_date"`
	BilledAmount      decimal.Decimal `json:"billed_amount"`
	PaidAmount        decimal.Decimal `json:"paid_amount"`
	ClaimStatus       string          `json:"claim_status"`
	DenialReason      *string         `json:"denial_reason,omitempty"`
}

func (c *Claim) Validate() error {
	return errs.Check(validation.ValidateStruct(c,
		validation.Field(&c.EncounterID, errs.Required),
		validation.Field(&c.ClaimBillingDate, errs.Required),
	))
}

func (c *Claim) applyDefaults() {
	if c.ClaimStatus == "" {
		c.ClaimStatus = StatusPending
	}
}

// ClaimPatch lists the updatable claim columns. patientID is set by the
// service when the encounter changes and is never read from a request.
type ClaimPatch struct {
	EncounterID       *string          `json:"encounter_id"`
	InsuranceProvider *string          `json:"insurance_provider"`
	PaymentMethod     *string          `json:"payment_method"`
	ClaimBillingDate  *pgtype.Date     `json:"claim_billing_date"`
	BilledAmount      *decimal.Decimal `json:"billed_amount"`
	PaidAmount        *decimal.Decimal `json:"paid_amount"`
	ClaimStatus       *string          `json:"claim_status"`
	DenialReason      *string          `json:"denial_reason"`

	patientID *string
}

func (p *ClaimPatch) Validate() error {
	return errs.Check(validation.ValidateStruct(p,
		validation.Field(&p.EncounterID, errs.NotEmpty),
		validation.Field(&p.ClaimStatus, errs.NotEmpty),
	))
}

func (p *ClaimPatch) assignments() *db.Assignments {
	var a db.Assignments
	db.SetIf(&a, "encounter_id", p.EncounterID)
	db.SetIf(&a, "patient_id", p.patientID)
	db.SetIf(&a, "insurance_provider", p.InsuranceProvider)
	db.SetIf(&a, "payment_method", p.PaymentMethod)
	db.SetIf(&a, "claim_billing_date", p.ClaimBillingDate)
	db.SetIf(&a, "billed_amount", p.BilledAmount)
	db.SetIf(&a, "paid_amount", p.PaidAmount)
	db.SetIf(&a, "claim_status", p.ClaimStatus)
	db.SetIf(&a, "denial_reason", p.DenialReason)
	return &a
}

// ClaimFilter narrows claim listings. Empty fields are ignored.
type ClaimFilter struct {
	EncounterID string
	PatientID   string
	Status      string
}

// Denial maps to the denials table.
type Denial struct {
	ID                      string              `json:"denial_id"`
	ClaimID                 string              `json:"claim_id"`
	DenialReasonCode        string              `json:"denial_reason_code"`
	DenialReasonDescription *string             `json:"denial_reason_description,omitempty"`
	DeniedAmount            decimal.NullDecimal `json:"denied_amount"`
	DenialDate              pgtype.Date         `json:"denial_date"`
	AppealFiled             *string             `json:"appeal_filed,omitempty"`
	AppealStatus            *string             `json:"appeal_status,omitempty"`
	AppealResolutionDate    pgtype.Date         `json:"appeal_resolution_date"`
	FinalOutcome            *string             `json:"final_outcome,omitempty"`
}

func (d *Denial) Validate() error {
	if err := errs.Check(validation.ValidateStruct(d,
		validation.Field(&d.ClaimID, errs.Required),
		validation.Field(&d.DenialReasonCode, errs.Required),
		validation.Field(&d.DeniedAmount, errs.Required),
		validation.Field(&d.DenialDate, errs.Required),
	)); err != nil {
		return err
	}
	return d.validateAppeal()
}

// appealFiled reports whether the appeal flag is "yes" in any case.
func (d *Denial) appealFiled() bool {
	return d.AppealFiled != nil && strings.EqualFold(strings.TrimSpace(*d.AppealFiled), "yes")
}

// validateAppeal mirrors chk_appeal_details: a filed appeal needs its
// status, resolution date and outcome.
func (d *Denial) validateAppeal() error {
	filed := d.appealFiled()
	required := validation.When(filed, validation.Required.Error("is required when appeal_filed is yes"))
	return errs.Check(validation.ValidateStruct(d,
		validation.Field(&d.AppealStatus, required),
		validation.Field(&d.AppealResolutionDate, required),
		validation.Field(&d.FinalOutcome, required),
	))
}

type DenialPatch struct {
	ClaimID                 *string          `json:"claim_id"`
	DenialReasonCode        *string          `json:"denial_reason_code"`
	DenialReasonDescription *string          `json:"denial_reason_description"`
	DeniedAmount            *decimal.Decimal `json:"denied_amount"`
	DenialDate              *pgtype.Date     `json:"denial_date"`
	AppealFiled             *string          `json:"appeal_filed"`
	AppealStatus            *string          `json:"appeal_status"`
	AppealResolutionDate    *pgtype.Date     `json:"appeal_resolution_date"`
	FinalOutcome            *string          `json:"final_outcome"`
}

func (p *DenialPatch) Validate() error {
	return errs.Check(validation.ValidateStruct(p,
		validation.Field(&p.ClaimID, errs.NotEmpty),
		validation.Field(&p.DenialReasonCode, errs.NotEmpty),
	))
}

// touchesAppeal reports whether the patch changes any appeal column.
func (p *DenialPatch) touchesAppeal() bool {
	return p.AppealFiled != nil || p.AppealStatus != nil || p.AppealResolutionDate != nil || p.FinalOutcome != nil
}

// merged returns cur with the patch's appeal columns applied.
func (p *DenialPatch) merged(cur *Denial) *Denial {
	out := *cur
	if p.AppealFiled != nil {
		out.AppealFiled = p.AppealFiled
	}
	if p.AppealStatus != nil {
		out.AppealStatus = p.AppealStatus
	}
	if p.AppealResolutionDate != nil {
		out.AppealResolutionDate = *p.AppealResolutionDate
	}
	if p.FinalOutcome != nil {
		out.FinalOutcome = p.FinalOutcome
	}
	return &out
}

func (p *DenialPatch) assignments() *db.Assignments {
	var a db.Assignments
	db.SetIf(&a, "claim_id", p.ClaimID)
	db.SetIf(&a, "denial_reason_code", p.DenialReasonCode)
	db.SetIf(&a, "denial_reason_description", p.DenialReasonDescription)
	db.SetIf(&a, "denied_amount", p.DeniedAmount)
	db.SetIf(&a, "denial_date", p.DenialDate)
	db.SetIf(&a, "appeal_filed", p.AppealFiled)
	db.SetIf(&a, "appeal_status", p.AppealStatus)
	db.SetIf(&a, "appeal_resolution_date", p.AppealResolutionDate)
	db.SetIf(&a, "final_outcome", p.FinalOutcome)
	return &a
}
