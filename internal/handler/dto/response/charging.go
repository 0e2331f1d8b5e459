package response

import (
	"time"

	"plogo-server/internal/domain/charging"
	"plogo-server/internal/usecase/commands"

	"github.com/google/uuid"
)

type SessionResponse struct {
	ID              uuid.UUID  `json:"id"`
	StationID       uuid.UUID  `json:"stationId"`
	DriverProfileID uuid.UUID  `json:"driverProfileId"`
	SlotID          *uuid.UUID `json:"slotId,omitempty"`
	Status          string     `json:"status"`
	StartAt         time.Time  `json:"startAt"`
	EndAt           *time.Time `json:"endAt,omitempty"`
	EnergyKWh       *float64   `json:"energyKwh,omitempty"`
	Amount          *float64   `json:"amount,omitempty"`
	StartActionID   *string    `json:"startActionId,omitempty"`
	StopActionID    *string    `json:"stopActionId,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

type StartSessionResponse struct {
	Message  string           `json:"message"`
	Session  *SessionResponse `json:"session"`
	Slot     any              `json:"slot,omitempty"`
	Replayed bool             `json:"replayed"`
}

type StopSessionResponse struct {
	Message string                  `json:"message"`
	Session *SessionResponse        `json:"session"`
	Slot    any                     `json:"slot,omitempty"`
	Payment *BookingPaymentResponse `json:"payment,omitempty"`
}

type SyncSessionResponse struct {
	Session    *SessionResponse `json:"session"`
	StartState string           `json:"startState,omitempty"`
	StopState  string           `json:"stopState,omitempty"`
	Changed    bool             `json:"changed"`
}

func FromSession(s *charging.Session) *SessionResponse {
	return &SessionResponse{
		ID:              s.ID,
		StationID:       s.StationID,
		DriverProfileID: s.DriverProfileID,
		SlotID:          s.SlotID,
		Status:          string(s.Status),
		StartAt:         s.StartAt,
		EndAt:           s.EndAt,
		EnergyKWh:       s.EnergyKWh,
		Amount:          s.Amount,
		StartActionID:   s.StartActionID,
		StopActionID:    s.StopActionID,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
	}
}

func FromStartResult(r *commands.StartSessionResult) *StartSessionResponse {
	message := "Charging session started"
	if r.Replayed {
		message = "Charging session already in progress"
	}
	return &StartSessionResponse{
		Message:  message,
		Session:  FromSession(r.Session),
		Slot:     r.Session.Metadata["slot"],
		Replayed: r.Replayed,
	}
}

func FromStopResult(r *commands.StopSessionResult) *StopSessionResponse {
	resp := &StopSessionResponse{
		Message: "Charging session stopped",
		Session: FromSession(r.Session),
		Slot:    r.Session.Metadata["slot"],
	}
	if r.Payment != nil {
		resp.Payment = FromBookingPayment(r.Payment)
	}
	return resp
}

func FromSyncResult(r *commands.SyncSessionResult) *SyncSessionResponse {
	return &SyncSessionResponse{
		Session:    FromSession(r.Session),
		StartState: string(r.StartState),
		StopState:  string(r.StopState),
		Changed:    r.Changed,
	}
}
