package repository

import (
	"context"
	"time"

	"plogo-server/internal/domain/charging"
	"plogo-server/internal/infra"
	"plogo-server/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type SlotRepository struct {
	db *pgxpool.Pool
}

func NewSlotRepository(db *pgxpool.Pool) *SlotRepository {
	return &SlotRepository{db: db}
}

const slotColumns = `id, station_id, start_at, end_at, membership_id, metadata`

func (r *SlotRepository) FindByID(ctx context.Context, id uuid.UUID) (*charging.Slot, error) {
	query := `SELECT ` + slotColumns + ` FROM reservation_slots WHERE id = $1`

	slot, err := r.scanSlot(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("slot not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find slot by ID", err)
	}
	return slot, nil
}

// FindActiveForMembership picks the member-booking slot whose inclusive
// window contains the instant. Overlapping windows resolve to the latest
// start.
func (r *SlotRepository) FindActiveForMembership(ctx context.Context, stationID, membershipID uuid.UUID, at time.Time) (*charging.Slot, error) {
	query := `
		SELECT ` + slotColumns + `
		FROM reservation_slots
		WHERE station_id = $1 AND membership_id = $2 AND start_at <= $3 AND end_at >= $3
		ORDER BY start_at DESC
		LIMIT 1`

	slot, err := r.scanSlot(r.db.QueryRow(ctx, query, stationID, membershipID, at))
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("no active slot for membership", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find active slot", err)
	}
	return slot, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *SlotRepository) scanSlot(row rowScanner) (*charging.Slot, error) {
	var slot charging.Slot
	err := row.Scan(
		&slot.ID,
		&slot.StationID,
		&slot.StartAt,
		&slot.EndAt,
		&slot.MembershipID,
		&slot.Metadata,
	)
	if err != nil {
		return nil, err
	}
	return &slot, nil
}
