package queries

import (
	"context"
	"time"

	"plogo-server/internal/domain/profile"

	"github.com/google/uuid"
)

// ListLimit caps role-scoped payment listings.
const ListLimit = 200

type StationDisplay struct {
	Name        string
	Address     *string
	PricePerKWh *float64
}

type SlotWindow struct {
	StartAt time.Time
	EndAt   time.Time
}

type DriverDisplay struct {
	FullName     *string
	VehicleBrand *string
	VehicleModel *string
	VehiclePlate *string
}

// BookingPaymentView is the denormalized read model served to both parties.
// The same record is exposed through a driver view and an owner view; Role
// asserts which identity the caller acted under.
type BookingPaymentView struct {
	ID               uuid.UUID
	StationID        uuid.UUID
	SlotID           uuid.UUID
	Status           string
	PaymentReference string
	TotalEnergyKWh   *float64
	TotalAmount      *float64
	DriverMarkedAt   *time.Time
	OwnerMarkedAt    *time.Time
	Role             string
	Station          StationDisplay
	Slot             SlotWindow
	Driver           DriverDisplay
}

type BookingPaymentQueries interface {
	// ListForProfile returns the caller's payments in the given role,
	// optionally filtered by status, newest slot first.
	ListForProfile(ctx context.Context, profileID uuid.UUID, role profile.Role, statuses []string) ([]*BookingPaymentView, error)
}
