package request

import (
	"github.com/google/uuid"
)

type StartSessionRequest struct {
	StationID uuid.UUID `json:"station_id" binding:"required"`
}

type StopSessionRequest struct {
	StationID uuid.UUID `json:"station_id" binding:"required"`
}
