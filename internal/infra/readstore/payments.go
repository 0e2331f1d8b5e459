package readstore

import (
	"context"
	"strconv"

	"plogo-server/internal/domain/profile"
	"plogo-server/internal/infra"
	"plogo-server/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PaymentReadStore serves the denormalized booking-payment views. The same
// record backs both role views; only the identity column filtered on differs.
type PaymentReadStore struct {
	db *pgxpool.Pool
}

func NewPaymentReadStore(db *pgxpool.Pool) *PaymentReadStore {
	return &PaymentReadStore{db: db}
}

func (r *PaymentReadStore) ListForProfile(
	ctx context.Context,
	profileID uuid.UUID,
	role profile.Role,
	statuses []string,
) ([]*queries.BookingPaymentView, error) {
	identityColumn := "bp.driver_profile_id"
	if role == profile.RoleOwner {
		identityColumn = "bp.owner_profile_id"
	}

	query := `
		SELECT bp.id, bp.station_id, bp.slot_id, bp.status, bp.payment_reference,
		       bp.total_energy_kwh, bp.total_amount, bp.driver_marked_at, bp.owner_marked_at,
		       st.name, st.address, st.price_per_kwh::float8,
		       sl.start_at, sl.end_at,
		       dp.full_name, dp.vehicle_brand, dp.vehicle_model, dp.vehicle_plate
		FROM station_booking_payments bp
		JOIN stations st ON st.id = bp.station_id
		JOIN reservation_slots sl ON sl.id = bp.slot_id
		JOIN profiles dp ON dp.id = bp.driver_profile_id
		WHERE ` + identityColumn + ` = $1
		  AND ($2::text[] IS NULL OR bp.status = ANY($2))
		ORDER BY sl.start_at DESC
		LIMIT ` + strconv.Itoa(queries.ListLimit)

	var statusFilter []string
	if len(statuses) > 0 {
		statusFilter = statuses
	}

	rows, err := r.db.Query(ctx, query, profileID, statusFilter)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list booking payments", err)
	}
	defer rows.Close()

	result := make([]*queries.BookingPaymentView, 0)
	for rows.Next() {
		view := &queries.BookingPaymentView{Role: role.String()}
		err := rows.Scan(
			&view.ID,
			&view.StationID,
			&view.SlotID,
			&view.Status,
			&view.PaymentReference,
			&view.TotalEnergyKWh,
			&view.TotalAmount,
			&view.DriverMarkedAt,
			&view.OwnerMarkedAt,
			&view.Station.Name,
			&view.Station.Address,
			&view.Station.PricePerKWh,
			&view.Slot.StartAt,
			&view.Slot.EndAt,
			&view.Driver.FullName,
			&view.Driver.VehicleBrand,
			&view.Driver.VehicleModel,
			&view.Driver.VehiclePlate,
		)
		if err != nil {
			return nil, infra.WrapRepoErr("failed to scan booking payment view", err)
		}
		result = append(result, view)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate booking payments", err)
	}
	return result, nil
}
