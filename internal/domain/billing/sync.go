package billing

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/medico/hospital/internal/domain/reference"
	"github.com/medico/hospital/internal/platform/db"
	"github.com/medico/hospital/internal/platform/errs"
	"github.com/medico/hospital/internal/platform/ident"
	"github.com/medico/hospital/internal/platform/metrics"
)

// Sync outcomes reported to metrics.
const (
	SyncCreated = "created"
	SyncUpdated = "updated"
	SyncSkipped = "skipped"
	SyncError   = "error"
)

// PartyResolver finds who an encounter is billed to.
type PartyResolver interface {
	EncounterBillingParty(ctx context.Context, encounterID string) (*reference.BillingParty, error)
}

// SyncEngine keeps an encounter's claim in step with the costs of its
// procedures and medications.
type SyncEngine struct {
	claims  ClaimRepository
	ledger  CostLedger
	ids     IDGenerator
	parties PartyResolver
	tx      db.Transactor
	metrics *metrics.Collector
	log     zerolog.Logger
	now     func() time.Time
}

func NewSyncEngine(claims ClaimRepository, ledger CostLedger, ids IDGenerator, parties PartyResolver,
	tx db.Transactor, m *metrics.Collector, log zerolog.Logger) *SyncEngine {
	return &SyncEngine{
		claims:  claims,
		ledger:  ledger,
		ids:     ids,
		parties: parties,
		tx:      tx,
		metrics: m,
		log:     log.With().Str("component", "claim_sync").Logger(),
		now:     time.Now,
	}
}

// DeriveBillingID maps ENC000042 to BILL000042. Identifiers without the
// ENC prefix are appended whole.
func DeriveBillingID(encounterID string) string {
	if strings.HasPrefix(encounterID, ident.Encounter.Prefix()) {
		return ident.Billing.Prefix() + encounterID[len(ident.Encounter.Prefix()):]
	}
	return ident.Billing.Prefix() + encounterID
}

// IsSelfPay reports whether an insurance type routes claims to the patient.
func IsSelfPay(insuranceType *string) bool {
	return insuranceType != nil && strings.Contains(strings.ToLower(*insuranceType), "self")
}

func (e *SyncEngine) logger(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &e.log
}

// Sync recomputes the billed amount of the encounter's claim, creating the
// claim when none exists. It joins the caller's transaction when there is
// one. A missing encounter or patient makes it a no-op returning false.
func (e *SyncEngine) Sync(ctx context.Context, encounterID string) (bool, error) {
	start := time.Now()
	outcome := SyncError
	defer func() { e.metrics.ObserveSync(outcome, time.Since(start).Seconds()) }()

	var synced bool
	err := e.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		outcome, err = e.sync(ctx, encounterID)
		synced = outcome != SyncSkipped
		return err
	})
	if err != nil {
		outcome = SyncError
		e.logger(ctx).Error().Err(err).Str("encounter_id", encounterID).Msg("claim sync failed")
		return false, err
	}
	return synced, nil
}

func (e *SyncEngine) sync(ctx context.Context, encounterID string) (string, error) {
	log := e.logger(ctx).With().Str("encounter_id", encounterID).Logger()

	found, err := e.ledger.LockEncounter(ctx, encounterID)
	if err != nil {
		return SyncError, err
	}
	if !found {
		log.Warn().Msg("encounter not found, claim sync skipped")
		return SyncSkipped, nil
	}

	total, err := e.ledger.EncounterTotal(ctx, encounterID)
	if err != nil {
		return SyncError, err
	}

	claim, err := e.claims.ByEncounter(ctx, encounterID)
	switch {
	case err == nil:
		if err := e.claims.SetBilledAmount(ctx, claim.BillingID, total); err != nil {
			return SyncError, err
		}
		log.Debug().Str("billing_id", claim.BillingID).Str("billed_amount", total.StringFixed(2)).Msg("claim amount updated")
		return SyncUpdated, nil
	case !errors.Is(err, errs.ErrNotFound):
		return SyncError, err
	}

	party, err := e.parties.EncounterBillingParty(ctx, encounterID)
	var rnf *errs.ReferenceNotFoundError
	if errors.As(err, &rnf) {
		log.Warn().Msg("encounter has no billable patient, claim sync skipped")
		return SyncSkipped, nil
	}
	if err != nil {
		return SyncError, err
	}

	claim, err = e.newClaim(ctx, encounterID, party, total)
	if err != nil {
		return SyncError, err
	}
	if err := e.claims.Create(ctx, claim); err != nil {
		return SyncError, err
	}
	log.Info().
		Str("billing_id", claim.BillingID).
		Str("payment_method", *claim.PaymentMethod).
		Str("billed_amount", total.StringFixed(2)).
		Msg("claim created")
	return SyncCreated, nil
}

// newClaim builds the claim for an encounter billed for the first time.
// Routing is decided here and never revisited by later syncs.
func (e *SyncEngine) newClaim(ctx context.Context, encounterID string, party *reference.BillingParty, total decimal.Decimal) (*Claim, error) {
	y, m, d := e.now().Date()
	c := &Claim{
		BillingID:        DeriveBillingID(encounterID),
		PatientID:        party.PatientID,
		EncounterID:      encounterID,
		ClaimBillingDate: pgtype.Date{Time: time.Date(y, m, d, 0, 0, 0, 0, time.UTC), Valid: true},
		BilledAmount:     total,
		PaidAmount:       decimal.Zero,
		ClaimStatus:      StatusPending,
	}
	method := PaymentInsurance
	if IsSelfPay(party.InsuranceType) {
		method = PaymentSelfpay
	} else {
		id, err := e.ids.Next(ctx, ident.Claim)
		if err != nil {
			return nil, err
		}
		c.ClaimID = &id
		c.InsuranceProvider = party.InsuranceType
	}
	c.PaymentMethod = &method
	return c, nil
}
