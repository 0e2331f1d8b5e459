package repository

import (
	"context"

	"plogo-server/internal/infra"
	"plogo-server/internal/infra/enode"
	"plogo-server/internal/pkg/pgconv"
	"plogo-server/internal/usecase/commands"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type StationRepository struct {
	db *pgxpool.Pool
}

func NewStationRepository(db *pgxpool.Pool) *StationRepository {
	return &StationRepository{db: db}
}

func (r *StationRepository) FindByID(ctx context.Context, id uuid.UUID) (*commands.StationSnapshot, error) {
	const query = `
		SELECT id, owner_profile_id, name, address, charger_external_id, price_per_kwh::float8
		FROM stations
		WHERE id = $1`

	var snapshot commands.StationSnapshot
	err := r.db.QueryRow(ctx, query, id).Scan(
		&snapshot.ID,
		&snapshot.OwnerProfileID,
		&snapshot.Name,
		&snapshot.Address,
		&snapshot.ChargerExternalID,
		&snapshot.PricePerKWh,
	)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("station not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find station by ID", err)
	}
	return &snapshot, nil
}

func (r *StationRepository) FindApprovedMembership(ctx context.Context, stationID, profileID uuid.UUID) (*commands.MembershipSnapshot, error) {
	const query = `
		SELECT id, station_id, profile_id, status
		FROM station_memberships
		WHERE station_id = $1 AND profile_id = $2 AND status = 'approved'`

	var snapshot commands.MembershipSnapshot
	err := r.db.QueryRow(ctx, query, stationID, profileID).Scan(
		&snapshot.ID,
		&snapshot.StationID,
		&snapshot.ProfileID,
		&snapshot.Status,
	)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("approved membership not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find membership", err)
	}
	return &snapshot, nil
}

func (r *StationRepository) OwnerHasOtherLinkedCharger(ctx context.Context, ownerProfileID, stationID uuid.UUID) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1 FROM stations
			WHERE owner_profile_id = $1 AND id <> $2 AND charger_external_id IS NOT NULL
		)`

	var exists bool
	if err := r.db.QueryRow(ctx, query, ownerProfileID, stationID).Scan(&exists); err != nil {
		return false, infra.WrapRepoErr("failed to check linked chargers", err)
	}
	return exists, nil
}

func (r *StationRepository) LinkCharger(ctx context.Context, stationID uuid.UUID, charger enode.Charger) error {
	const query = `
		UPDATE stations
		SET charger_external_id = $2,
		    charger_brand = $3,
		    charger_model = $4,
		    charger_metadata = $5,
		    updated_at = now()
		WHERE id = $1`

	tag, err := r.db.Exec(ctx, query, stationID, charger.ExternalID, charger.Brand, charger.Model, charger.Raw)
	if err != nil {
		return infra.WrapRepoErr("failed to link charger", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("station not found", nil, infra.KindNotFound)
	}
	return nil
}

func (r *StationRepository) EnsureOwnerMembership(ctx context.Context, stationID, ownerProfileID uuid.UUID) error {
	const query = `
		INSERT INTO station_memberships (id, station_id, profile_id, status)
		VALUES ($1, $2, $3, 'approved')
		ON CONFLICT (station_id, profile_id) DO UPDATE SET status = 'approved'`

	if _, err := r.db.Exec(ctx, query, uuid.New(), stationID, ownerProfileID); err != nil {
		if pgconv.IsForeignKeyViolation(err) {
			return infra.WrapRepoErr("station or profile missing", err, infra.KindForeignKeyViolated)
		}
		return infra.WrapRepoErr("failed to ensure owner membership", err)
	}
	return nil
}
