package repository

import (
	"context"

	"plogo-server/internal/domain/payment"
	"plogo-server/internal/infra"
	"plogo-server/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PaymentRepository struct {
	db *pgxpool.Pool
}

func NewPaymentRepository(db *pgxpool.Pool) *PaymentRepository {
	return &PaymentRepository{db: db}
}

const paymentColumns = `
	id, station_id, slot_id, membership_id, driver_profile_id, owner_profile_id,
	status, payment_reference, total_energy_kwh, total_amount,
	driver_marked_at, owner_marked_at, created_at, updated_at`

func (r *PaymentRepository) FindBySlot(ctx context.Context, slotID uuid.UUID) (*payment.BookingPayment, error) {
	query := `SELECT ` + paymentColumns + ` FROM station_booking_payments WHERE slot_id = $1`

	record, err := scanPayment(r.db.QueryRow(ctx, query, slotID))
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("booking payment not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find booking payment", err)
	}
	return record, nil
}

// Insert upserts on slot_id: when a concurrent request already created the
// record, the existing one is returned untouched.
func (r *PaymentRepository) Insert(ctx context.Context, record *payment.BookingPayment) (*payment.BookingPayment, error) {
	const query = `
		INSERT INTO station_booking_payments (
			id, station_id, slot_id, membership_id, driver_profile_id,
			owner_profile_id, status, payment_reference
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (slot_id) DO NOTHING
		RETURNING ` + paymentColumns

	created, err := scanPayment(r.db.QueryRow(ctx, query,
		record.ID,
		record.StationID,
		record.SlotID,
		record.MembershipID,
		record.DriverProfileID,
		record.OwnerProfileID,
		string(record.Status),
		record.PaymentReference,
	))
	if err != nil {
		if pgconv.IsNoRows(err) {
			// Lost the race; the winner's record is authoritative.
			return r.FindBySlot(ctx, record.SlotID)
		}
		return nil, infra.WrapRepoErr("failed to insert booking payment", err)
	}
	return created, nil
}

func (r *PaymentRepository) Update(ctx context.Context, record *payment.BookingPayment) error {
	const query = `
		UPDATE station_booking_payments
		SET status = $2,
		    total_energy_kwh = $3,
		    total_amount = $4,
		    driver_marked_at = $5,
		    owner_marked_at = $6,
		    updated_at = now()
		WHERE id = $1`

	tag, err := r.db.Exec(ctx, query,
		record.ID,
		string(record.Status),
		record.TotalEnergyKWh,
		record.TotalAmount,
		record.DriverMarkedAt,
		record.OwnerMarkedAt,
	)
	if err != nil {
		return infra.WrapRepoErr("failed to update booking payment", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("booking payment not found", nil, infra.KindNotFound)
	}
	return nil
}

func scanPayment(row rowScanner) (*payment.BookingPayment, error) {
	var record payment.BookingPayment
	var status string
	err := row.Scan(
		&record.ID,
		&record.StationID,
		&record.SlotID,
		&record.MembershipID,
		&record.DriverProfileID,
		&record.OwnerProfileID,
		&status,
		&record.PaymentReference,
		&record.TotalEnergyKWh,
		&record.TotalAmount,
		&record.DriverMarkedAt,
		&record.OwnerMarkedAt,
		&record.CreatedAt,
		&record.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	record.Status = payment.Status(status)
	return &record, nil
}
