package response

import (
	"time"

	"plogo-server/internal/domain/payment"
	"plogo-server/internal/usecase/queries"

	"github.com/google/uuid"
)

type BookingPaymentResponse struct {
	ID               uuid.UUID  `json:"id"`
	StationID        uuid.UUID  `json:"stationId"`
	SlotID           uuid.UUID  `json:"slotId"`
	Status           string     `json:"status"`
	PaymentReference string     `json:"paymentReference"`
	TotalEnergyKWh   *float64   `json:"totalEnergyKwh,omitempty"`
	TotalAmount      *float64   `json:"totalAmount,omitempty"`
	DriverMarkedAt   *time.Time `json:"driverMarkedAt,omitempty"`
	OwnerMarkedAt    *time.Time `json:"ownerMarkedAt,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

type StationDisplayResponse struct {
	Name        string   `json:"name"`
	Address     *string  `json:"address,omitempty"`
	PricePerKWh *float64 `json:"pricePerKwh,omitempty"`
}

type SlotWindowResponse struct {
	StartAt time.Time `json:"startAt"`
	EndAt   time.Time `json:"endAt"`
}

type DriverDisplayResponse struct {
	FullName     *string `json:"fullName,omitempty"`
	VehicleBrand *string `json:"vehicleBrand,omitempty"`
	VehicleModel *string `json:"vehicleModel,omitempty"`
	VehiclePlate *string `json:"vehiclePlate,omitempty"`
}

type BookingPaymentListResponse struct {
	ID               uuid.UUID              `json:"id"`
	StationID        uuid.UUID              `json:"stationId"`
	SlotID           uuid.UUID              `json:"slotId"`
	Status           string                 `json:"status"`
	PaymentReference string                 `json:"paymentReference"`
	TotalEnergyKWh   *float64               `json:"totalEnergyKwh,omitempty"`
	TotalAmount      *float64               `json:"totalAmount,omitempty"`
	DriverMarkedAt   *time.Time             `json:"driverMarkedAt,omitempty"`
	OwnerMarkedAt    *time.Time             `json:"ownerMarkedAt,omitempty"`
	Role             string                 `json:"role"`
	Station          StationDisplayResponse `json:"station"`
	Slot             SlotWindowResponse     `json:"slot"`
	Driver           *DriverDisplayResponse `json:"driver,omitempty"`
}

func FromBookingPayment(p *payment.BookingPayment) *BookingPaymentResponse {
	return &BookingPaymentResponse{
		ID:               p.ID,
		StationID:        p.StationID,
		SlotID:           p.SlotID,
		Status:           string(p.Status),
		PaymentReference: p.PaymentReference,
		TotalEnergyKWh:   p.TotalEnergyKWh,
		TotalAmount:      p.TotalAmount,
		DriverMarkedAt:   p.DriverMarkedAt,
		OwnerMarkedAt:    p.OwnerMarkedAt,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}

func FromBookingPaymentView(v *queries.BookingPaymentView) *BookingPaymentListResponse {
	resp := &BookingPaymentListResponse{
		ID:               v.ID,
		StationID:        v.StationID,
		SlotID:           v.SlotID,
		Status:           v.Status,
		PaymentReference: v.PaymentReference,
		TotalEnergyKWh:   v.TotalEnergyKWh,
		TotalAmount:      v.TotalAmount,
		DriverMarkedAt:   v.DriverMarkedAt,
		OwnerMarkedAt:    v.OwnerMarkedAt,
		Role:             v.Role,
		Station: StationDisplayResponse{
			Name:        v.Station.Name,
			Address:     v.Station.Address,
			PricePerKWh: v.Station.PricePerKWh,
		},
		Slot: SlotWindowResponse{
			StartAt: v.Slot.StartAt,
			EndAt:   v.Slot.EndAt,
		},
	}
	// Vehicle details only matter to the owner side of the ledger.
	if v.Role == "owner" {
		resp.Driver = &DriverDisplayResponse{
			FullName:     v.Driver.FullName,
			VehicleBrand: v.Driver.VehicleBrand,
			VehicleModel: v.Driver.VehicleModel,
			VehiclePlate: v.Driver.VehiclePlate,
		}
	}
	return resp
}
