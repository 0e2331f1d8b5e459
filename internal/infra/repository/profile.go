package repository

import (
	"context"

	"plogo-server/internal/infra"
	"plogo-server/internal/pkg/pgconv"
	"plogo-server/internal/usecase/commands"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ProfileRepository struct {
	db *pgxpool.Pool
}

func NewProfileRepository(db *pgxpool.Pool) *ProfileRepository {
	return &ProfileRepository{db: db}
}

func (r *ProfileRepository) FindOwner(ctx context.Context, profileID uuid.UUID) (*commands.OwnerSnapshot, error) {
	const query = `SELECT id, external_account_id FROM profiles WHERE id = $1`

	var snapshot commands.OwnerSnapshot
	err := r.db.QueryRow(ctx, query, profileID).Scan(&snapshot.ProfileID, &snapshot.ExternalAccountID)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("owner profile not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find owner profile", err)
	}
	return &snapshot, nil
}

func (r *ProfileRepository) SetExternalAccountID(ctx context.Context, profileID uuid.UUID, accountID string) error {
	const query = `UPDATE profiles SET external_account_id = $2, updated_at = now() WHERE id = $1`

	tag, err := r.db.Exec(ctx, query, profileID, accountID)
	if err != nil {
		return infra.WrapRepoErr("failed to set external account id", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("owner profile not found", nil, infra.KindNotFound)
	}
	return nil
}
