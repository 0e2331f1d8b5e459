package charging

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusReady      Status = "ready"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusCancelled  Status = "cancelled"
)

// ActiveStatuses are the non-terminal statuses; at most one session per
// (station, driver) may carry one of them at any time.
var ActiveStatuses = []Status{StatusPending, StatusReady, StatusInProgress}

func (s Status) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusCancelled:
		return true
	default:
		return false
	}
}

// ActionState is the lifecycle of a start/stop command on the external
// charger platform, confirmed out-of-band.
type ActionState string

const (
	ActionPending   ActionState = "PENDING"
	ActionConfirmed ActionState = "CONFIRMED"
	ActionFailed    ActionState = "FAILED"
	ActionCancelled ActionState = "CANCELLED"
)

// ParseActionState normalizes a raw state value; unknown values map to the
// empty state so the reconciler treats them as "no information".
func ParseActionState(value string) ActionState {
	switch upper := ActionState(strings.ToUpper(value)); upper {
	case ActionPending, ActionConfirmed, ActionFailed, ActionCancelled:
		return upper
	default:
		return ""
	}
}

// Session is the mutable aggregate under control. Metadata holds denormalized
// action snapshots; RawPayload mirrors the external payloads verbatim.
type Session struct {
	ID              uuid.UUID
	StationID       uuid.UUID
	DriverProfileID uuid.UUID
	SlotID          *uuid.UUID
	Status          Status
	StartAt         time.Time
	EndAt           *time.Time
	EnergyKWh       *float64
	Amount          *float64
	StartActionID   *string
	StopActionID    *string
	Metadata        map[string]any
	RawPayload      map[string]any
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// ReconcileStatus derives the next session status from the freshest action
// states, in priority order: a failure on either side dominates everything, a
// confirmed stop completes the session, cancellation only wins while nothing
// is confirmed. Unrecognized combinations keep the current status.
func ReconcileStatus(current Status, startState, stopState ActionState) Status {
	if startState == ActionFailed || stopState == ActionFailed {
		return StatusFailed
	}
	if stopState == ActionConfirmed {
		return StatusCompleted
	}
	if (startState == ActionCancelled || stopState == ActionCancelled) &&
		startState != ActionConfirmed && stopState != ActionConfirmed {
		return StatusCancelled
	}
	if startState == ActionConfirmed && (stopState == "" || stopState == ActionPending) {
		// A confirmed START means the charger is delivering power.
		return StatusInProgress
	}
	if startState == ActionPending && (stopState == "" || stopState == ActionPending) {
		return StatusPending
	}
	return current
}
