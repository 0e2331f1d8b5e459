package commands

import (
	"context"

	"plogo-server/internal/domain/charging"
	"plogo-server/internal/domain/payment"
	"plogo-server/internal/infra"
	"plogo-server/internal/pkg/clock"
	"plogo-server/internal/pkg/errs"

	"github.com/google/uuid"
)

type DriverPaymentAction string

type OwnerPaymentAction string

const (
	DriverActionMark   DriverPaymentAction = "mark"
	DriverActionCancel DriverPaymentAction = "cancel"

	OwnerActionConfirm OwnerPaymentAction = "confirm"
	OwnerActionCancel  OwnerPaymentAction = "cancel"
)

// PaymentCommands owns the booking-payment ledger: lazy record creation,
// totals recomputation after each stop, and the dual-party confirmation
// workflow.
type PaymentCommands interface {
	EnsureForSlot(ctx context.Context, station *StationSnapshot, slot *charging.Slot, driverProfileID uuid.UUID) (*payment.BookingPayment, error)
	RecomputeTotals(ctx context.Context, slotID uuid.UUID) (*payment.BookingPayment, error)
	DriverAction(ctx context.Context, slotID, callerID uuid.UUID, action DriverPaymentAction) (*payment.BookingPayment, error)
	OwnerAction(ctx context.Context, slotID, callerID uuid.UUID, action OwnerPaymentAction) (*payment.BookingPayment, error)
}

type paymentUseCaseImpl struct {
	paymentRepo PaymentRepository
	sessionRepo SessionRepository
	slotRepo    SlotRepository
	clock       clock.Clock
}

func NewPaymentUseCase(
	paymentRepo PaymentRepository,
	sessionRepo SessionRepository,
	slotRepo SlotRepository,
	clk clock.Clock,
) PaymentCommands {
	return &paymentUseCaseImpl{
		paymentRepo: paymentRepo,
		sessionRepo: sessionRepo,
		slotRepo:    slotRepo,
		clock:       clk,
	}
}

// EnsureForSlot returns the slot's ledger record, creating it when absent.
// The insert is an upsert on slot_id, so concurrent first calls converge on
// one record.
func (p *paymentUseCaseImpl) EnsureForSlot(
	ctx context.Context,
	station *StationSnapshot,
	slot *charging.Slot,
	driverProfileID uuid.UUID,
) (*payment.BookingPayment, error) {
	existing, err := p.paymentRepo.FindBySlot(ctx, slot.ID)
	if err == nil {
		return existing, nil
	}
	if !infra.IsKind(err, infra.KindNotFound) {
		return nil, errs.WithKind(err, errs.KindInternal, "failed to load booking payment")
	}

	if slot.MembershipID == nil {
		return nil, errs.Kindf(errs.KindValidation, "slot is not a member booking")
	}

	now := p.clock.Now()
	record := &payment.BookingPayment{
		ID:               uuid.New(),
		StationID:        station.ID,
		SlotID:           slot.ID,
		MembershipID:     *slot.MembershipID,
		DriverProfileID:  driverProfileID,
		OwnerProfileID:   station.OwnerProfileID,
		Status:           payment.InitialStatus(slot.StartAt, now),
		PaymentReference: payment.Reference(station.Name, slot.StartAt, slot.ID),
	}

	created, err := p.paymentRepo.Insert(ctx, record)
	if err != nil {
		return nil, errs.WithKind(err, errs.KindInternal, "failed to create booking payment")
	}
	return created, nil
}

// RecomputeTotals sums energy and amount across every session of the slot
// and applies the ledger transition rule.
func (p *paymentUseCaseImpl) RecomputeTotals(ctx context.Context, slotID uuid.UUID) (*payment.BookingPayment, error) {
	record, err := p.paymentRepo.FindBySlot(ctx, slotID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.Kindf(errs.KindNotFound, "booking payment not found")
		}
		return nil, errs.WithKind(err, errs.KindInternal, "failed to load booking payment")
	}

	slot, err := p.slotRepo.FindByID(ctx, slotID)
	if err != nil {
		return nil, errs.WithKind(err, errs.KindInternal, "failed to load slot for totals")
	}

	energies, amounts, err := p.sessionRepo.SumBySlot(ctx, slotID)
	if err != nil {
		return nil, errs.WithKind(err, errs.KindInternal, "failed to sum slot sessions")
	}

	totals := payment.ComputeTotals(energies, amounts)
	record.TotalEnergyKWh = totals.EnergyKWh
	record.TotalAmount = totals.Amount
	record.Status = payment.NextStatusAfterTotals(record.Status, slot.HasEndedAt(p.clock.Now()), totals.HasAmount())

	if err := p.paymentRepo.Update(ctx, record); err != nil {
		return nil, errs.WithKind(err, errs.KindInternal, "failed to persist booking payment totals")
	}
	return record, nil
}

func (p *paymentUseCaseImpl) DriverAction(
	ctx context.Context,
	slotID, callerID uuid.UUID,
	action DriverPaymentAction,
) (*payment.BookingPayment, error) {
	record, err := p.loadForAction(ctx, slotID)
	if err != nil {
		return nil, err
	}
	if record.DriverProfileID != callerID {
		return nil, errs.Kindf(errs.KindForbidden, "only the booking driver may act on this payment")
	}

	switch action {
	case DriverActionMark:
		err = record.Mark(p.clock.Now())
	case DriverActionCancel:
		err = record.CancelMark()
	default:
		return nil, errs.Kindf(errs.KindValidation, "unknown driver payment action %q", action)
	}
	if err != nil {
		return nil, errs.WithKind(err, errs.KindValidation, err.Error())
	}

	return p.persist(ctx, record)
}

func (p *paymentUseCaseImpl) OwnerAction(
	ctx context.Context,
	slotID, callerID uuid.UUID,
	action OwnerPaymentAction,
) (*payment.BookingPayment, error) {
	record, err := p.loadForAction(ctx, slotID)
	if err != nil {
		return nil, err
	}
	if record.OwnerProfileID != callerID {
		return nil, errs.Kindf(errs.KindForbidden, "only the station owner may act on this payment")
	}

	switch action {
	case OwnerActionConfirm:
		err = record.Confirm(p.clock.Now())
	case OwnerActionCancel:
		err = record.CancelConfirm()
	default:
		return nil, errs.Kindf(errs.KindValidation, "unknown owner payment action %q", action)
	}
	if err != nil {
		return nil, errs.WithKind(err, errs.KindValidation, err.Error())
	}

	return p.persist(ctx, record)
}

func (p *paymentUseCaseImpl) loadForAction(ctx context.Context, slotID uuid.UUID) (*payment.BookingPayment, error) {
	record, err := p.paymentRepo.FindBySlot(ctx, slotID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.Kindf(errs.KindNotFound, "booking payment not found")
		}
		return nil, errs.WithKind(err, errs.KindInternal, "failed to load booking payment")
	}
	return record, nil
}

func (p *paymentUseCaseImpl) persist(ctx context.Context, record *payment.BookingPayment) (*payment.BookingPayment, error) {
	if err := p.paymentRepo.Update(ctx, record); err != nil {
		return nil, errs.WithKind(err, errs.KindInternal, "failed to persist booking payment")
	}
	return record, nil
}
