package request

import (
	"github.com/google/uuid"
)

type CreateLinkRequest struct {
	StationID uuid.UUID `json:"station_id" binding:"required"`
}

type SelectChargerRequest struct {
	StationID uuid.UUID `json:"station_id" binding:"required"`
	ChargerID string    `json:"charger_id" binding:"required"`
}
