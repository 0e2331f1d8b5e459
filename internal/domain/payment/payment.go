package payment

import (
	"math"
	"time"

	"github.com/google/uuid"

	"plogo-server/internal/pkg/errs"
)

var (
	ErrNotPayableYet    = errs.New("booking payment is not payable yet")
	ErrNothingToPay     = errs.New("booking payment has no amount to settle")
	ErrAlreadyConfirmed = errs.New("booking payment already confirmed by the owner")
	ErrNotMarked        = errs.New("booking payment has not been marked by the driver")
	ErrNotConfirmed     = errs.New("booking payment has no owner confirmation to cancel")
)

type Status string

const (
	StatusUpcoming     Status = "upcoming"
	StatusInProgress   Status = "in_progress"
	StatusToPay        Status = "to_pay"
	StatusDriverMarked Status = "driver_marked"
	StatusPaid         Status = "paid"
)

// AmountThreshold separates a real payment obligation from metering noise:
// computed totals at or below it are treated as "no meaningful charge
// delivered" and stored as null.
const AmountThreshold = 0.009

// BookingPayment is the per-slot settlement record between a driver and a
// station owner. Unique per SlotID; never deleted.
type BookingPayment struct {
	ID               uuid.UUID
	StationID        uuid.UUID
	SlotID           uuid.UUID
	MembershipID     uuid.UUID
	DriverProfileID  uuid.UUID
	OwnerProfileID   uuid.UUID
	Status           Status
	PaymentReference string
	TotalEnergyKWh   *float64
	TotalAmount      *float64
	DriverMarkedAt   *time.Time
	OwnerMarkedAt    *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// InitialStatus derives the status of a lazily created record from whether
// the slot window has already opened.
func InitialStatus(slotStartAt, now time.Time) Status {
	if !now.Before(slotStartAt) {
		return StatusInProgress
	}
	return StatusUpcoming
}

// Mark records the driver's claim of having paid. Re-marking is an idempotent
// no-op that preserves the original timestamp.
func (p *BookingPayment) Mark(now time.Time) error {
	if p.Status == StatusDriverMarked {
		return nil
	}
	if p.Status == StatusPaid {
		return ErrAlreadyConfirmed
	}
	if p.Status != StatusToPay {
		return ErrNotPayableYet
	}
	if p.TotalAmount == nil || *p.TotalAmount <= 0 {
		return ErrNothingToPay
	}
	p.Status = StatusDriverMarked
	if p.DriverMarkedAt == nil {
		p.DriverMarkedAt = &now
	}
	return nil
}

// CancelMark reverses the driver's claim, clearing both marked timestamps.
func (p *BookingPayment) CancelMark() error {
	if p.Status == StatusPaid {
		return ErrAlreadyConfirmed
	}
	if p.Status != StatusDriverMarked {
		return ErrNotMarked
	}
	p.Status = StatusToPay
	p.DriverMarkedAt = nil
	p.OwnerMarkedAt = nil
	return nil
}

// Confirm is the owner's final acknowledgment of the settlement.
func (p *BookingPayment) Confirm(now time.Time) error {
	if p.Status != StatusDriverMarked {
		return ErrNotMarked
	}
	p.Status = StatusPaid
	p.OwnerMarkedAt = &now
	return nil
}

// CancelConfirm reverses the owner's acknowledgment, the only way out of the
// paid status.
func (p *BookingPayment) CancelConfirm() error {
	if p.Status != StatusPaid {
		return ErrNotConfirmed
	}
	p.Status = StatusDriverMarked
	p.OwnerMarkedAt = nil
	return nil
}

// Totals is the reconciled sum over every session recorded for a slot.
type Totals struct {
	EnergyKWh *float64
	Amount    *float64
}

// ComputeTotals sums energy and amount across the slot's sessions and
// applies the meaningful-charge threshold: both fields stay null unless the
// summed amount exceeds it. The amount is rounded to 2 decimals.
func ComputeTotals(energies []float64, amounts []float64) Totals {
	var energySum, amountSum float64
	for _, energy := range energies {
		energySum += energy
	}
	for _, amount := range amounts {
		amountSum += amount
	}

	if amountSum <= AmountThreshold {
		return Totals{}
	}

	rounded := RoundAmount(amountSum)
	return Totals{EnergyKWh: &energySum, Amount: &rounded}
}

func (t Totals) HasAmount() bool {
	return t.Amount != nil
}

// NextStatusAfterTotals applies the ledger transition rule after a totals
// recompute. Only upcoming/in_progress records move; everything later in the
// workflow is owned by the explicit driver/owner actions.
func NextStatusAfterTotals(current Status, slotEnded bool, hasAmount bool) Status {
	if current != StatusUpcoming && current != StatusInProgress {
		return current
	}
	if slotEnded && hasAmount {
		return StatusToPay
	}
	if !slotEnded && current == StatusUpcoming {
		return StatusInProgress
	}
	return current
}

// RoundAmount rounds a monetary value half-up to 2 decimal places.
func RoundAmount(value float64) float64 {
	return math.Round(value*100) / 100
}

// ComputeAmount prices delivered energy; nil when either operand is missing
// or not a number.
func ComputeAmount(energyKWh *float64, pricePerKWh *float64) *float64 {
	if energyKWh == nil || pricePerKWh == nil {
		return nil
	}
	if math.IsNaN(*energyKWh) || math.IsNaN(*pricePerKWh) {
		return nil
	}
	amount := RoundAmount(*energyKWh * *pricePerKWh)
	return &amount
}
