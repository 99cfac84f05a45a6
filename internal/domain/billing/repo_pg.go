package billing

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/medico/hospital/internal/platform/db"
	"github.com/medico/hospital/internal/platform/errs"
)

// =========== Insurer Repository ===========

type insurerRepoPG struct {
	pool *pgxpool.Pool
}

func NewInsurerRepo(pool *pgxpool.Pool) InsurerRepository {
	return &insurerRepoPG{pool: pool}
}

func (r *insurerRepoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

const insurerCols = `insurer_id, code, name, payer_type, phone`

func scanInsurer(row pgx.Row) (*Insurer, error) {
	var i Insurer
	if err := row.Scan(&i.ID, &i.Code, &i.Name, &i.PayerType, &i.Phone); err != nil {
		return nil, err
	}
	return &i, nil
}

func (r *insurerRepoPG) Create(ctx context.Context, i *Insurer) error {
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO insurers (code, name, payer_type, phone)
		VALUES ($1, $2, $3, $4)
		RETURNING insurer_id`,
		i.Code, i.Name, i.PayerType, i.Phone).Scan(&i.ID)
	return errs.Storage("insert insurer", err)
}

func (r *insurerRepoPG) GetByID(ctx context.Context, id int) (*Insurer, error) {
	i, err := scanInsurer(r.conn(ctx).QueryRow(ctx,
		`SELECT `+insurerCols+` FROM insurers WHERE insurer_id = $1`, id))
	return i, errs.Storage("get insurer", err)
}

func (r *insurerRepoPG) CodeTaken(ctx context.Context, code string, exceptID int) (bool, error) {
	var taken bool
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM insurers WHERE code = $1 AND insurer_id <> $2)`,
		code, exceptID).Scan(&taken)
	return taken, errs.Storage("check insurer code", err)
}

func (r *insurerRepoPG) Update(ctx context.Context, id int, p *InsurerPatch) (bool, error) {
	return p.assignments().Apply(ctx, r.conn(ctx), "insurers", "insurer_id", id)
}

func (r *insurerRepoPG) Delete(ctx context.Context, id int) (bool, error) {
	return db.DeleteRow(ctx, r.conn(ctx), "insurers", "insurer_id", id)
}

func (r *insurerRepoPG) List(ctx context.Context, limit, offset int) ([]*Insurer, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM insurers`).Scan(&total); err != nil {
		return nil, 0, errs.Storage("count insurers", err)
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+insurerCols+` FROM insurers ORDER BY insurer_id LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, errs.Storage("list insurers", err)
	}
	defer rows.Close()

	var items []*Insurer
	for rows.Next() {
		i, err := scanInsurer(rows)
		if err != nil {
			return nil, 0, errs.Storage("scan insurer", err)
		}
		items = append(items, i)
	}
	return items, total, errs.Storage("list insurers", rows.Err())
}

// =========== Claim Repository ===========

type claimRepoPG struct {
	pool *pgxpool.Pool
}

// NewClaimRepo returns the claims_and_billing store. The returned value
// also implements CostLedger.
func NewClaimRepo(pool *pgxpool.Pool) *claimRepoPG {
	return &claimRepoPG{pool: pool}
}

func (r *claimRepoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

const claimCols = `billing_id, patient_id, encounter_id, insurance_provider, payment_method,
	claim_id, claim_billing_date, billed_amount, paid_amount, claim_status, denial_reason`

func scanClaim(row pgx.Row) (*Claim, error) {
	var c Claim
	var paid decimal.NullDecimal
	err := row.Scan(&c.BillingID, &c.PatientID, &c.EncounterID, &c.InsuranceProvider, &c.PaymentMethod,
		&c.ClaimID, &c.ClaimBillingDate, &c.BilledAmount, &paid, &c.ClaimStatus, &c.DenialReason)
	if err != nil {
		return nil, err
	}
	c.PaidAmount = paid.Decimal
	return &c, nil
}

func (r *claimRepoPG) Create(ctx context.Context, c *Claim) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO claims_and_billing (`+claimCols+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		c.BillingID, c.PatientID, c.EncounterID, c.InsuranceProvider, c.PaymentMethod,
		c.ClaimID, c.ClaimBillingDate, c.BilledAmount, c.PaidAmount, c.ClaimStatus, c.DenialReason)
	return errs.Storage("insert claim", err)
}

func (r *claimRepoPG) GetByID(ctx context.Context, billingID string) (*Claim, error) {
	c, err := scanClaim(r.conn(ctx).QueryRow(ctx,
		`SELECT `+claimCols+` FROM claims_and_billing WHERE billing_id = $1`, billingID))
	return c, errs.Storage("get claim", err)
}

func (r *claimRepoPG) ByEncounter(ctx context.Context, encounterID string) (*Claim, error) {
	c, err := scanClaim(r.conn(ctx).QueryRow(ctx,
		`SELECT `+claimCols+` FROM claims_and_billing WHERE encounter_id = $1 ORDER BY billing_id LIMIT 1`,
		encounterID))
	return c, errs.Storage("get claim by encounter", err)
}

func (r *claimRepoPG) Update(ctx context.Context, billingID string, p *ClaimPatch) (bool, error) {
	return p.assignments().Apply(ctx, r.conn(ctx), "claims_and_billing", "billing_id", billingID)
}

func (r *claimRepoPG) SetBilledAmount(ctx context.Context, billingID string, amount decimal.Decimal) error {
	_, err := r.conn(ctx).Exec(ctx,
		`UPDATE claims_and_billing SET billed_amount = $2 WHERE billing_id = $1`, billingID, amount)
	return errs.Storage("set billed amount", err)
}

func (r *claimRepoPG) Delete(ctx context.Context, billingID string) (bool, error) {
	return db.DeleteRow(ctx, r.conn(ctx), "claims_and_billing", "billing_id", billingID)
}

func (f ClaimFilter) where() (string, []interface{}) {
	var conds []string
	var args []interface{}
	add := func(col, v string) {
		if v == "" {
			return
		}
		args = append(args, v)
		conds = append(conds, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	add("encounter_id", f.EncounterID)
	add("patient_id", f.PatientID)
	add("claim_status", f.Status)
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (r *claimRepoPG) List(ctx context.Context, f ClaimFilter, limit, offset int) ([]*Claim, int, error) {
	where, args := f.where()

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM claims_and_billing`+where, args...).Scan(&total); err != nil {
		return nil, 0, errs.Storage("count claims", err)
	}
	query := fmt.Sprintf(`SELECT %s FROM claims_and_billing%s ORDER BY claim_billing_date DESC, billing_id LIMIT $%d OFFSET $%d`,
		claimCols, where, len(args)+1, len(args)+2)
	rows, err := r.conn(ctx).Query(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, errs.Storage("list claims", err)
	}
	defer rows.Close()

	var items []*Claim
	for rows.Next() {
		c, err := scanClaim(rows)
		if err != nil {
			return nil, 0, errs.Storage("scan claim", err)
		}
		items = append(items, c)
	}
	return items, total, errs.Storage("list claims", rows.Err())
}

func (r *claimRepoPG) LockEncounter(ctx context.Context, encounterID string) (bool, error) {
	var id string
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT encounter_id FROM encounters WHERE encounter_id = $1 FOR UPDATE`, encounterID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, errs.Storage("lock encounter", err)
	}
	return true, nil
}

func (r *claimRepoPG) EncounterTotal(ctx context.Context, encounterID string) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT
			(SELECT COALESCE(SUM(procedure_cost), 0) FROM procedures WHERE encounter_id = $1) +
			(SELECT COALESCE(SUM(cost), 0) FROM medications WHERE encounter_id = $1)`,
		encounterID).Scan(&total)
	if err != nil {
		return decimal.Zero, errs.Storage("sum encounter costs", err)
	}
	return total, nil
}

// =========== Denial Repository ===========

type denialRepoPG struct {
	pool *pgxpool.Pool
}

func NewDenialRepo(pool *pgxpool.Pool) DenialRepository {
	return &denialRepoPG{pool: pool}
}

func (r *denialRepoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

const denialCols = `denial_id, claim_id, denial_reason_code, denial_reason_description, denied_amount,
	denial_date, appeal_filed, appeal_status, appeal_resolution_date, final_outcome`

func scanDenial(row pgx.Row) (*Denial, error) {
	var d Denial
	err := row.Scan(&d.ID, &d.ClaimID, &d.DenialReasonCode, &d.DenialReasonDescription, &d.DeniedAmount,
		&d.DenialDate, &d.AppealFiled, &d.AppealStatus, &d.AppealResolutionDate, &d.FinalOutcome)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *denialRepoPG) Create(ctx context.Context, d *Denial) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO denials (`+denialCols+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		d.ID, d.ClaimID, d.DenialReasonCode, d.DenialReasonDescription, d.DeniedAmount,
		d.DenialDate, d.AppealFiled, d.AppealStatus, d.AppealResolutionDate, d.FinalOutcome)
	return errs.Storage("insert denial", err)
}

func (r *denialRepoPG) GetByID(ctx context.Context, id string) (*Denial, error) {
	d, err := scanDenial(r.conn(ctx).QueryRow(ctx,
		`SELECT `+denialCols+` FROM denials WHERE denial_id = $1`, id))
	return d, errs.Storage("get denial", err)
}

func (r *denialRepoPG) Update(ctx context.Context, id string, p *DenialPatch) (bool, error) {
	return p.assignments().Apply(ctx, r.conn(ctx), "denials", "denial_id", id)
}

func (r *denialRepoPG) Delete(ctx context.Context, id string) (bool, error) {
	return db.DeleteRow(ctx, r.conn(ctx), "denials", "denial_id", id)
}

func (r *denialRepoPG) List(ctx context.Context, limit, offset int) ([]*Denial, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM denials`).Scan(&total); err != nil {
		return nil, 0, errs.Storage("count denials", err)
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+denialCols+` FROM denials ORDER BY denial_date DESC, denial_id LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, errs.Storage("list denials", err)
	}
	defer rows.Close()
	return collectDenials(rows, total)
}

func (r *denialRepoPG) ListByClaim(ctx context.Context, claimID string, limit, offset int) ([]*Denial, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM denials WHERE claim_id = $1`, claimID).Scan(&total); err != nil {
		return nil, 0, errs.Storage("count denials", err)
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+denialCols+` FROM denials WHERE claim_id = $1 ORDER BY denial_date DESC, denial_id LIMIT $2 OFFSET $3`,
		claimID, limit, offset)
	if err != nil {
		return nil, 0, errs.Storage("list denials", err)
	}
	defer rows.Close()
	return collectDenials(rows, total)
}

func collectDenials(rows pgx.Rows, total int) ([]*Denial, int, error) {
	var items []*Denial
	for rows.Next() {
		d, err := scanDenial(rows)
		if err != nil {
			return nil, 0, errs.Storage("scan denial", err)
		}
		items = append(items, d)
	}
	return items, total, errs.Storage("list denials", rows.Err())
}
