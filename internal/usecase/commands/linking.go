package commands

import (
	"context"

	"plogo-server/internal/infra"
	"plogo-server/internal/infra/enode"
	"plogo-server/internal/pkg/config"
	"plogo-server/internal/pkg/errs"

	"github.com/google/uuid"
)

type LinkOutcome struct {
	StationID uuid.UUID
	Charger   enode.Charger
}

// LinkingCommands connects a station owner's physical charger through the
// platform's vendor-linking flow. The signed state token carries the owner
// and station identity across the out-of-band redirect.
type LinkingCommands interface {
	CreateLinkSession(ctx context.Context, stationID, ownerProfileID uuid.UUID) (string, error)
	ListChargers(ctx context.Context, ownerProfileID uuid.UUID) ([]enode.Charger, error)
	CompleteLinkFromCallback(ctx context.Context, stateToken string) (*LinkOutcome, error)
	SelectCharger(ctx context.Context, stationID, ownerProfileID uuid.UUID, chargerExternalID string) (*LinkOutcome, error)
}

type linkingUseCaseImpl struct {
	stationRepo StationRepository
	profileRepo ProfileRepository
	gateway     ChargerGateway
	codec       StateCodec
	cfg         config.EnodeConfig
}

func NewLinkingUseCase(
	stationRepo StationRepository,
	profileRepo ProfileRepository,
	gateway ChargerGateway,
	codec StateCodec,
	cfg config.EnodeConfig,
) LinkingCommands {
	return &linkingUseCaseImpl{
		stationRepo: stationRepo,
		profileRepo: profileRepo,
		gateway:     gateway,
		codec:       codec,
		cfg:         cfg,
	}
}

func (l *linkingUseCaseImpl) CreateLinkSession(ctx context.Context, stationID, ownerProfileID uuid.UUID) (string, error) {
	station, err := l.loadOwnedStation(ctx, stationID, ownerProfileID)
	if err != nil {
		return "", err
	}

	hasOther, err := l.stationRepo.OwnerHasOtherLinkedCharger(ctx, ownerProfileID, station.ID)
	if err != nil {
		return "", errs.WithKind(err, errs.KindInternal, "failed to check linked chargers")
	}
	if hasOther {
		return "", errs.Kindf(errs.KindValidation, "another station of this owner already has a linked charger")
	}

	accountID, err := l.ensureAccountID(ctx, ownerProfileID)
	if err != nil {
		return "", err
	}

	state, err := l.codec.Create(map[string]string{
		"profile_id": ownerProfileID.String(),
		"station_id": station.ID.String(),
	})
	if err != nil {
		return "", errs.WithKind(err, errs.KindInternal, "failed to sign link state")
	}

	linkURL, err := l.gateway.CreateLinkSession(ctx, accountID, l.cfg.RedirectURI+"/"+state)
	if err != nil {
		return "", err
	}
	return linkURL, nil
}

func (l *linkingUseCaseImpl) ListChargers(ctx context.Context, ownerProfileID uuid.UUID) ([]enode.Charger, error) {
	accountID, err := l.ensureAccountID(ctx, ownerProfileID)
	if err != nil {
		return nil, err
	}
	return l.gateway.ListChargers(ctx, accountID)
}

// CompleteLinkFromCallback runs after the owner returns from the vendor flow.
// Without an explicit choice the first charger on the account is linked.
func (l *linkingUseCaseImpl) CompleteLinkFromCallback(ctx context.Context, stateToken string) (*LinkOutcome, error) {
	payload, err := l.codec.Verify(stateToken)
	if err != nil {
		return nil, errs.WithKind(err, errs.KindUnauthorized, "invalid link state token")
	}

	profileID, err := uuid.Parse(payload["profile_id"])
	if err != nil {
		return nil, errs.Kindf(errs.KindValidation, "link state carries no profile")
	}
	stationID, err := uuid.Parse(payload["station_id"])
	if err != nil {
		return nil, errs.Kindf(errs.KindValidation, "link state carries no station")
	}

	return l.linkCharger(ctx, stationID, profileID, nil)
}

func (l *linkingUseCaseImpl) SelectCharger(ctx context.Context, stationID, ownerProfileID uuid.UUID, chargerExternalID string) (*LinkOutcome, error) {
	if chargerExternalID == "" {
		return nil, errs.Kindf(errs.KindValidation, "charger id is required")
	}
	return l.linkCharger(ctx, stationID, ownerProfileID, &chargerExternalID)
}

func (l *linkingUseCaseImpl) linkCharger(ctx context.Context, stationID, ownerProfileID uuid.UUID, chargerExternalID *string) (*LinkOutcome, error) {
	station, err := l.loadOwnedStation(ctx, stationID, ownerProfileID)
	if err != nil {
		return nil, err
	}

	accountID, err := l.ensureAccountID(ctx, ownerProfileID)
	if err != nil {
		return nil, err
	}

	chargers, err := l.gateway.ListChargers(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if len(chargers) == 0 {
		return nil, errs.Kindf(errs.KindValidation, "no chargers found on the linked account")
	}

	chosen := chargers[0]
	if chargerExternalID != nil {
		found := false
		for _, charger := range chargers {
			if charger.ExternalID == *chargerExternalID {
				chosen = charger
				found = true
				break
			}
		}
		if !found {
			return nil, errs.Kindf(errs.KindValidation, "charger %q is not on the linked account", *chargerExternalID)
		}
	}
	if chosen.ExternalID == "" {
		return nil, errs.Kindf(errs.KindValidation, "linked account returned a charger without an id")
	}

	if err := l.stationRepo.LinkCharger(ctx, station.ID, chosen); err != nil {
		return nil, errs.WithKind(err, errs.KindInternal, "failed to persist linked charger")
	}
	if err := l.stationRepo.EnsureOwnerMembership(ctx, station.ID, ownerProfileID); err != nil {
		return nil, errs.WithKind(err, errs.KindInternal, "failed to ensure owner membership")
	}

	return &LinkOutcome{StationID: station.ID, Charger: chosen}, nil
}

func (l *linkingUseCaseImpl) loadOwnedStation(ctx context.Context, stationID, ownerProfileID uuid.UUID) (*StationSnapshot, error) {
	station, err := l.stationRepo.FindByID(ctx, stationID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.Kindf(errs.KindNotFound, "station not found")
		}
		return nil, errs.WithKind(err, errs.KindInternal, "failed to load station")
	}
	if station.OwnerProfileID != ownerProfileID {
		return nil, errs.Kindf(errs.KindForbidden, "caller does not own this station")
	}
	return station, nil
}

// ensureAccountID backfills a missing external account id with the profile id
// so first-time owners can start the linking flow.
func (l *linkingUseCaseImpl) ensureAccountID(ctx context.Context, ownerProfileID uuid.UUID) (string, error) {
	owner, err := l.profileRepo.FindOwner(ctx, ownerProfileID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return "", errs.Kindf(errs.KindNotFound, "owner profile not found")
		}
		return "", errs.WithKind(err, errs.KindInternal, "failed to load owner profile")
	}

	if owner.ExternalAccountID != nil && *owner.ExternalAccountID != "" {
		return *owner.ExternalAccountID, nil
	}

	accountID := ownerProfileID.String()
	if err := l.profileRepo.SetExternalAccountID(ctx, ownerProfileID, accountID); err != nil {
		return "", errs.WithKind(err, errs.KindInternal, "failed to backfill external account id")
	}
	return accountID, nil
}
