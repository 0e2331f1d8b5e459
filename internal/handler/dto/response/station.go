package response

import (
	"plogo-server/internal/infra/enode"
	"plogo-server/internal/usecase/commands"

	"github.com/google/uuid"
)

type LinkSessionResponse struct {
	LinkURL string `json:"linkUrl"`
}

type ChargerResponse struct {
	ID    string  `json:"id"`
	Brand *string `json:"brand,omitempty"`
	Model *string `json:"model,omitempty"`
}

type LinkOutcomeResponse struct {
	StationID uuid.UUID       `json:"stationId"`
	Charger   ChargerResponse `json:"charger"`
}

func FromCharger(ch enode.Charger) ChargerResponse {
	return ChargerResponse{
		ID:    ch.ExternalID,
		Brand: ch.Brand,
		Model: ch.Model,
	}
}

func FromLinkOutcome(o *commands.LinkOutcome) *LinkOutcomeResponse {
	return &LinkOutcomeResponse{
		StationID: o.StationID,
		Charger:   FromCharger(o.Charger),
	}
}
