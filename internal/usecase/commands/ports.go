package commands

import (
	"context"
	"time"

	"plogo-server/internal/domain/charging"
	"plogo-server/internal/domain/payment"
	"plogo-server/internal/infra/enode"

	"github.com/google/uuid"
)

// StationSnapshot is the station context resolved for every session
// operation. ChargerExternalID and the owner's account id gate all charging
// calls.
type StationSnapshot struct {
	ID                uuid.UUID
	OwnerProfileID    uuid.UUID
	Name              string
	Address           *string
	ChargerExternalID *string
	PricePerKWh       *float64
}

type MembershipSnapshot struct {
	ID        uuid.UUID
	StationID uuid.UUID
	ProfileID uuid.UUID
	Status    string
}

type OwnerSnapshot struct {
	ProfileID         uuid.UUID
	ExternalAccountID *string
}

type StationRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*StationSnapshot, error)
	FindApprovedMembership(ctx context.Context, stationID, profileID uuid.UUID) (*MembershipSnapshot, error)
	// OwnerHasOtherLinkedCharger reports whether another station of the same
	// owner already carries a linked charger.
	OwnerHasOtherLinkedCharger(ctx context.Context, ownerProfileID, stationID uuid.UUID) (bool, error)
	LinkCharger(ctx context.Context, stationID uuid.UUID, charger enode.Charger) error
	EnsureOwnerMembership(ctx context.Context, stationID, ownerProfileID uuid.UUID) error
}

type ProfileRepository interface {
	FindOwner(ctx context.Context, profileID uuid.UUID) (*OwnerSnapshot, error)
	SetExternalAccountID(ctx context.Context, profileID uuid.UUID, accountID string) error
}

type SlotRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*charging.Slot, error)
	// FindActiveForMembership resolves the member-booking slot whose window
	// contains the given instant.
	FindActiveForMembership(ctx context.Context, stationID, membershipID uuid.UUID, at time.Time) (*charging.Slot, error)
}

type SessionRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*charging.Session, error)
	// FindActive returns the single non-terminal session for the pair, or a
	// NOT_FOUND repository error.
	FindActive(ctx context.Context, stationID, driverProfileID uuid.UUID) (*charging.Session, error)
	// CreateReplacingActive force-cancels any stale non-terminal session for
	// the pair and inserts the new one in a single transaction.
	CreateReplacingActive(ctx context.Context, session *charging.Session, now time.Time) error
	Update(ctx context.Context, session *charging.Session) error
	// SumBySlot aggregates energy and amount across every session of the
	// slot, regardless of status.
	SumBySlot(ctx context.Context, slotID uuid.UUID) (energies []float64, amounts []float64, err error)
}

type PaymentRepository interface {
	FindBySlot(ctx context.Context, slotID uuid.UUID) (*payment.BookingPayment, error)
	// Insert is an upsert on slot_id; when a concurrent request won the race
	// the existing record is returned untouched.
	Insert(ctx context.Context, record *payment.BookingPayment) (*payment.BookingPayment, error)
	Update(ctx context.Context, record *payment.BookingPayment) error
}

// ChargerGateway is the outbound surface to the charger-control platform.
type ChargerGateway interface {
	SendAction(ctx context.Context, chargerID string, kind enode.ActionKind) (*enode.ActionSnapshot, error)
	FetchAction(ctx context.Context, chargerID, actionID string) (*enode.ActionSnapshot, error)
	FetchStats(ctx context.Context, accountID, chargerID string, from, to time.Time) ([]charging.UsageRecord, error)
	CreateLinkSession(ctx context.Context, accountID, redirectURI string) (string, error)
	ListChargers(ctx context.Context, accountID string) ([]enode.Charger, error)
}

// StateCodec signs and verifies the opaque linking state token.
type StateCodec interface {
	Create(payload map[string]string) (string, error)
	Verify(token string) (map[string]string, error)
}
