package commands

import (
	"context"

	"plogo-server/internal/domain/charging"
	"plogo-server/internal/domain/payment"
	"plogo-server/internal/infra"
	"plogo-server/internal/infra/enode"
	"plogo-server/internal/pkg/clock"
	"plogo-server/internal/pkg/errs"

	"github.com/google/uuid"
)

type StartSessionResult struct {
	Session *charging.Session
	// Replayed is true when an in-progress session already existed and no
	// new START action was issued.
	Replayed bool
}

type StopSessionResult struct {
	Session *charging.Session
	Payment *payment.BookingPayment
}

// ChargingCommands owns the per-driver session state machine.
type ChargingCommands interface {
	StartSession(ctx context.Context, stationID, driverProfileID uuid.UUID) (*StartSessionResult, error)
	StopSession(ctx context.Context, stationID, driverProfileID uuid.UUID) (*StopSessionResult, error)
}

// sessionContext is everything Start and Stop resolve before touching the
// external platform.
type sessionContext struct {
	station    *StationSnapshot
	membership *MembershipSnapshot
	owner      *OwnerSnapshot
}

type chargingUseCaseImpl struct {
	stationRepo StationRepository
	profileRepo ProfileRepository
	slotRepo    SlotRepository
	sessionRepo SessionRepository
	payments    PaymentCommands
	gateway     ChargerGateway
	clock       clock.Clock
}

func NewChargingUseCase(
	stationRepo StationRepository,
	profileRepo ProfileRepository,
	slotRepo SlotRepository,
	sessionRepo SessionRepository,
	payments PaymentCommands,
	gateway ChargerGateway,
	clk clock.Clock,
) ChargingCommands {
	return &chargingUseCaseImpl{
		stationRepo: stationRepo,
		profileRepo: profileRepo,
		slotRepo:    slotRepo,
		sessionRepo: sessionRepo,
		payments:    payments,
		gateway:     gateway,
		clock:       clk,
	}
}

func (c *chargingUseCaseImpl) StartSession(ctx context.Context, stationID, driverProfileID uuid.UUID) (*StartSessionResult, error) {
	sctx, err := c.resolveContext(ctx, stationID, driverProfileID)
	if err != nil {
		return nil, err
	}

	now := c.clock.Now()
	slot, err := c.slotRepo.FindActiveForMembership(ctx, stationID, sctx.membership.ID, now)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.Kindf(errs.KindValidation, "no active booking slot for this station")
		}
		return nil, errs.WithKind(err, errs.KindInternal, "failed to resolve active slot")
	}

	if _, err := c.payments.EnsureForSlot(ctx, sctx.station, slot, driverProfileID); err != nil {
		return nil, err
	}

	existing, err := c.sessionRepo.FindActive(ctx, stationID, driverProfileID)
	if err != nil && !infra.IsKind(err, infra.KindNotFound) {
		return nil, errs.WithKind(err, errs.KindInternal, "failed to look up active session")
	}
	if existing != nil && existing.Status == charging.StatusInProgress {
		// Idempotent replay; no second START reaches the platform.
		return &StartSessionResult{Session: existing, Replayed: true}, nil
	}

	snapshot, err := c.gateway.SendAction(ctx, *sctx.station.ChargerExternalID, enode.ActionStart)
	if err != nil {
		// No session row is created when the platform rejects the command.
		return nil, err
	}

	session := &charging.Session{
		ID:              uuid.New(),
		StationID:       stationID,
		DriverProfileID: driverProfileID,
		SlotID:          &slot.ID,
		Status:          charging.StatusInProgress,
		StartAt:         now,
		Metadata: map[string]any{
			"slot": slotSummary(slot),
		},
	}
	if snapshot != nil {
		if snapshot.ID != "" {
			actionID := snapshot.ID
			session.StartActionID = &actionID
		}
		session.Metadata["start_action"] = snapshot.Raw
		session.RawPayload = map[string]any{"start": snapshot.Raw}
	}

	if err := c.sessionRepo.CreateReplacingActive(ctx, session, now); err != nil {
		return nil, errs.WithKind(err, errs.KindInternal, "failed to persist charging session")
	}

	return &StartSessionResult{Session: session}, nil
}

func (c *chargingUseCaseImpl) StopSession(ctx context.Context, stationID, driverProfileID uuid.UUID) (*StopSessionResult, error) {
	sctx, err := c.resolveContext(ctx, stationID, driverProfileID)
	if err != nil {
		return nil, err
	}

	session, err := c.sessionRepo.FindActive(ctx, stationID, driverProfileID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.Kindf(errs.KindValidation, "no charging session in progress")
		}
		return nil, errs.WithKind(err, errs.KindInternal, "failed to look up active session")
	}
	if session.Status != charging.StatusInProgress {
		return nil, errs.Kindf(errs.KindValidation, "no charging session in progress")
	}

	if session.SlotID == nil {
		return nil, errs.Kindf(errs.KindInternal, "charging session carries no slot")
	}
	slot, err := c.slotRepo.FindByID(ctx, *session.SlotID)
	if err != nil {
		// A session without a resolvable slot is a data-integrity violation.
		return nil, errs.WithKind(err, errs.KindInternal, "failed to resolve session slot")
	}

	if _, err := c.payments.EnsureForSlot(ctx, sctx.station, slot, driverProfileID); err != nil {
		return nil, err
	}

	snapshot, err := c.gateway.SendAction(ctx, *sctx.station.ChargerExternalID, enode.ActionStop)
	if err != nil {
		return nil, err
	}

	now := c.clock.Now()
	from, to := charging.StatsWindow(session.StartAt, now)
	records, err := c.gateway.FetchStats(ctx, *sctx.owner.ExternalAccountID, *sctx.station.ChargerExternalID, from, to)
	if err != nil {
		return nil, err
	}

	match := charging.MatchUsageRecord(records, session.StartAt)
	var energy *float64
	if match != nil {
		energy = match.EnergyKWh
	}

	session.Status = charging.StatusCompleted
	session.EndAt = &now
	session.EnergyKWh = energy
	session.Amount = payment.ComputeAmount(energy, sctx.station.PricePerKWh)
	if session.Metadata == nil {
		session.Metadata = map[string]any{}
	}
	if snapshot != nil {
		if snapshot.ID != "" {
			actionID := snapshot.ID
			session.StopActionID = &actionID
		}
		session.Metadata["stop_action"] = snapshot.Raw
		if session.RawPayload == nil {
			session.RawPayload = map[string]any{}
		}
		session.RawPayload["stop"] = snapshot.Raw
	}
	if match != nil {
		session.Metadata["usage_record"] = match.Raw
	}

	if err := c.sessionRepo.Update(ctx, session); err != nil {
		return nil, errs.WithKind(err, errs.KindInternal, "failed to persist completed session")
	}

	record, err := c.payments.RecomputeTotals(ctx, slot.ID)
	if err != nil {
		return nil, err
	}

	return &StopSessionResult{Session: session, Payment: record}, nil
}

// resolveContext applies the shared preconditions: approved membership, a
// linked charger, and an owner with an external account.
func (c *chargingUseCaseImpl) resolveContext(ctx context.Context, stationID, driverProfileID uuid.UUID) (*sessionContext, error) {
	station, err := c.stationRepo.FindByID(ctx, stationID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.Kindf(errs.KindNotFound, "station not found")
		}
		return nil, errs.WithKind(err, errs.KindInternal, "failed to load station")
	}

	membership, err := c.stationRepo.FindApprovedMembership(ctx, stationID, driverProfileID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.Kindf(errs.KindForbidden, "no approved membership for this station")
		}
		return nil, errs.WithKind(err, errs.KindInternal, "failed to load membership")
	}

	if station.ChargerExternalID == nil || *station.ChargerExternalID == "" {
		return nil, errs.Kindf(errs.KindValidation, "station has no linked charger")
	}

	owner, err := c.profileRepo.FindOwner(ctx, station.OwnerProfileID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.Kindf(errs.KindValidation, "station owner has no linked account")
		}
		return nil, errs.WithKind(err, errs.KindInternal, "failed to load owner profile")
	}
	if owner.ExternalAccountID == nil || *owner.ExternalAccountID == "" {
		return nil, errs.Kindf(errs.KindValidation, "station owner has no linked account")
	}

	return &sessionContext{station: station, membership: membership, owner: owner}, nil
}

func slotSummary(slot *charging.Slot) map[string]any {
	summary := map[string]any{
		"id":       slot.ID.String(),
		"start_at": slot.StartAt,
		"end_at":   slot.EndAt,
	}
	if slot.MembershipID != nil {
		summary["membership_id"] = slot.MembershipID.String()
	}
	return summary
}
