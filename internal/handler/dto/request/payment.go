package request

import (
	"strings"

	"github.com/google/uuid"
)

type PaymentActionRequest struct {
	SlotID uuid.UUID `json:"slot_id" binding:"required"`
	Action string    `json:"action" binding:"required"`
}

func (r PaymentActionRequest) NormalizedAction() string {
	return strings.ToLower(strings.TrimSpace(r.Action))
}
