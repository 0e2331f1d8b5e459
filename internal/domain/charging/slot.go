package charging

import (
	"time"

	"github.com/google/uuid"
)

// Slot is a reserved time window on a station, created by the booking flow
// and read-only here. MembershipID comes from the slot metadata for
// member-booking slots.
type Slot struct {
	ID           uuid.UUID
	StationID    uuid.UUID
	StartAt      time.Time
	EndAt        time.Time
	MembershipID *uuid.UUID
	Metadata     map[string]any
}

// IsActiveAt reports whether the slot window contains the reference time.
// Boundaries are inclusive, matching the booking process contract.
func (s Slot) IsActiveAt(now time.Time) bool {
	return !now.Before(s.StartAt) && !now.After(s.EndAt)
}

// HasEndedAt is the single slot-ended check shared by the ledger and the
// lifecycle controller; all callers pass the reference time explicitly.
func (s Slot) HasEndedAt(now time.Time) bool {
	return now.After(s.EndAt)
}

// HasStartedAt reports whether the slot window has opened.
func (s Slot) HasStartedAt(now time.Time) bool {
	return !now.Before(s.StartAt)
}
