package repository

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"plogo-server/internal/domain/charging"
	"plogo-server/internal/infra"
	"plogo-server/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type SessionRepository struct {
	db *pgxpool.Pool
}

func NewSessionRepository(db *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{db: db}
}

const sessionColumns = `
	id, station_id, driver_profile_id, slot_id, status, start_at, end_at,
	energy_kwh, amount, start_action_id, stop_action_id, metadata,
	raw_enode_payload, created_at, updated_at`

func (r *SessionRepository) FindByID(ctx context.Context, id uuid.UUID) (*charging.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM charging_sessions WHERE id = $1`

	session, err := scanSession(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("session not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find session by ID", err)
	}
	return session, nil
}

func (r *SessionRepository) FindActive(ctx context.Context, stationID, driverProfileID uuid.UUID) (*charging.Session, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM charging_sessions
		WHERE station_id = $1 AND driver_profile_id = $2
		  AND status = ANY($3)
		ORDER BY created_at DESC
		LIMIT 1`

	session, err := scanSession(r.db.QueryRow(ctx, query, stationID, driverProfileID, activeStatusStrings()))
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("no active session", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find active session", err)
	}
	return session, nil
}

// CreateReplacingActive force-cancels any stale non-terminal session for the
// pair and inserts the new one in the same transaction. The partial unique
// index on (station_id, driver_profile_id) over non-terminal statuses closes
// the race with a concurrent start.
func (r *SessionRepository) CreateReplacingActive(ctx context.Context, session *charging.Session, now time.Time) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return infra.WrapRepoErr("failed to begin transaction", err)
	}
	defer func() {
		if rollbackErr := tx.Rollback(ctx); rollbackErr != nil && !errors.Is(rollbackErr, pgx.ErrTxClosed) {
			slog.Warn("failed to rollback session transaction", "error", rollbackErr)
		}
	}()

	const cancelStale = `
		UPDATE charging_sessions
		SET status = 'cancelled', end_at = $3, updated_at = now()
		WHERE station_id = $1 AND driver_profile_id = $2 AND status = ANY($4)`

	if _, err := tx.Exec(ctx, cancelStale, session.StationID, session.DriverProfileID, now, activeStatusStrings()); err != nil {
		return infra.WrapRepoErr("failed to cancel stale sessions", err)
	}

	const insert = `
		INSERT INTO charging_sessions (
			id, station_id, driver_profile_id, slot_id, status, start_at, end_at,
			energy_kwh, amount, start_action_id, stop_action_id, metadata, raw_enode_payload
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err = tx.Exec(ctx, insert,
		session.ID,
		session.StationID,
		session.DriverProfileID,
		session.SlotID,
		string(session.Status),
		session.StartAt,
		session.EndAt,
		session.EnergyKWh,
		session.Amount,
		session.StartActionID,
		session.StopActionID,
		session.Metadata,
		session.RawPayload,
	)
	if err != nil {
		if pgconv.IsUniqueViolation(err) {
			return infra.WrapRepoErr("active session already exists", err, infra.KindDuplicateKey)
		}
		return infra.WrapRepoErr("failed to insert session", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return infra.WrapRepoErr("failed to commit session transaction", err)
	}
	return nil
}

func (r *SessionRepository) Update(ctx context.Context, session *charging.Session) error {
	const query = `
		UPDATE charging_sessions
		SET status = $2,
		    end_at = $3,
		    energy_kwh = $4,
		    amount = $5,
		    start_action_id = $6,
		    stop_action_id = $7,
		    metadata = $8,
		    raw_enode_payload = $9,
		    updated_at = now()
		WHERE id = $1`

	tag, err := r.db.Exec(ctx, query,
		session.ID,
		string(session.Status),
		session.EndAt,
		session.EnergyKWh,
		session.Amount,
		session.StartActionID,
		session.StopActionID,
		session.Metadata,
		session.RawPayload,
	)
	if err != nil {
		return infra.WrapRepoErr("failed to update session", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("session not found", nil, infra.KindNotFound)
	}
	return nil
}

// SumBySlot collects the non-null energy and amount values across every
// session of the slot, regardless of status.
func (r *SessionRepository) SumBySlot(ctx context.Context, slotID uuid.UUID) ([]float64, []float64, error) {
	const query = `SELECT energy_kwh, amount FROM charging_sessions WHERE slot_id = $1`

	rows, err := r.db.Query(ctx, query, slotID)
	if err != nil {
		return nil, nil, infra.WrapRepoErr("failed to sum slot sessions", err)
	}
	defer rows.Close()

	var energies, amounts []float64
	for rows.Next() {
		var energy, amount *float64
		if err := rows.Scan(&energy, &amount); err != nil {
			return nil, nil, infra.WrapRepoErr("failed to scan slot session", err)
		}
		if energy != nil {
			energies = append(energies, *energy)
		}
		if amount != nil {
			amounts = append(amounts, *amount)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, nil, infra.WrapRepoErr("failed to iterate slot sessions", err)
	}
	return energies, amounts, nil
}

func scanSession(row rowScanner) (*charging.Session, error) {
	var session charging.Session
	var status string
	err := row.Scan(
		&session.ID,
		&session.StationID,
		&session.DriverProfileID,
		&session.SlotID,
		&status,
		&session.StartAt,
		&session.EndAt,
		&session.EnergyKWh,
		&session.Amount,
		&session.StartActionID,
		&session.StopActionID,
		&session.Metadata,
		&session.RawPayload,
		&session.CreatedAt,
		&session.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	session.Status = charging.Status(status)
	return &session, nil
}

func activeStatusStrings() []string {
	statuses := make([]string, len(charging.ActiveStatuses))
	for i, status := range charging.ActiveStatuses {
		statuses[i] = string(status)
	}
	return statuses
}
