//go:build unit

package commands_test

import (
	"context"
	"testing"

	"plogo-server/internal/infra/enode"
	"plogo-server/internal/pkg/config"
	"plogo-server/internal/pkg/errs"
	"plogo-server/internal/usecase/commands"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type linkingEnv struct {
	stationID uuid.UUID
	ownerID   uuid.UUID

	stationRepo *fakeStationRepo
	profileRepo *fakeProfileRepo
	gateway     *fakeGateway
	codec       *fakeCodec
	linking     commands.LinkingCommands
}

func newLinkingEnv(t *testing.T) *linkingEnv {
	t.Helper()

	stationID := uuid.New()
	ownerID := uuid.New()
	accountID := "acct-1"
	brand := "Easee"

	env := &linkingEnv{
		stationID: stationID,
		ownerID:   ownerID,
		stationRepo: &fakeStationRepo{
			station: &commands.StationSnapshot{
				ID:             stationID,
				OwnerProfileID: ownerID,
				Name:           "Borne du Port",
			},
		},
		profileRepo: &fakeProfileRepo{
			owner: &commands.OwnerSnapshot{ProfileID: ownerID, ExternalAccountID: &accountID},
		},
		gateway: &fakeGateway{
			linkURL: "https://link.example/session/abc",
			chargers: []enode.Charger{
				{ExternalID: "charger-1", Brand: &brand},
				{ExternalID: "charger-2"},
			},
		},
		codec: &fakeCodec{},
	}

	env.linking = commands.NewLinkingUseCase(
		env.stationRepo,
		env.profileRepo,
		env.gateway,
		env.codec,
		config.EnodeConfig{RedirectURI: "https://api.example/stations/link/callback"},
	)
	return env
}

func TestCreateLinkSession(t *testing.T) {
	t.Run("signs the state and returns the link url", func(t *testing.T) {
		env := newLinkingEnv(t)

		linkURL, err := env.linking.CreateLinkSession(context.Background(), env.stationID, env.ownerID)
		require.NoError(t, err)
		assert.Equal(t, "https://link.example/session/abc", linkURL)

		require.Len(t, env.codec.created, 1)
		assert.Equal(t, env.ownerID.String(), env.codec.created[0]["profile_id"])
		assert.Equal(t, env.stationID.String(), env.codec.created[0]["station_id"])
	})

	t.Run("rejects callers who do not own the station", func(t *testing.T) {
		env := newLinkingEnv(t)

		_, err := env.linking.CreateLinkSession(context.Background(), env.stationID, uuid.New())
		require.Error(t, err)
		assert.Equal(t, errs.KindForbidden, errs.KindOf(err))
	})

	t.Run("rejects owners with another linked station", func(t *testing.T) {
		env := newLinkingEnv(t)
		env.stationRepo.hasOtherLinked = true

		_, err := env.linking.CreateLinkSession(context.Background(), env.stationID, env.ownerID)
		require.Error(t, err)
		assert.Equal(t, errs.KindValidation, errs.KindOf(err))
	})

	t.Run("backfills a missing external account id", func(t *testing.T) {
		env := newLinkingEnv(t)
		env.profileRepo.owner.ExternalAccountID = nil

		_, err := env.linking.CreateLinkSession(context.Background(), env.stationID, env.ownerID)
		require.NoError(t, err)
		assert.Equal(t, []string{env.ownerID.String()}, env.profileRepo.backfilled)
	})
}

func TestCompleteLinkFromCallback(t *testing.T) {
	t.Run("links the first charger and ensures the owner membership", func(t *testing.T) {
		env := newLinkingEnv(t)
		env.codec.payload = map[string]string{
			"profile_id": env.ownerID.String(),
			"station_id": env.stationID.String(),
		}

		outcome, err := env.linking.CompleteLinkFromCallback(context.Background(), "signed-state")
		require.NoError(t, err)
		assert.Equal(t, env.stationID, outcome.StationID)
		assert.Equal(t, "charger-1", outcome.Charger.ExternalID)

		require.Len(t, env.stationRepo.linkedChargers, 1)
		assert.Equal(t, []uuid.UUID{env.stationID}, env.stationRepo.ensuredMembership)
	})

	t.Run("rejects a tampered state token", func(t *testing.T) {
		env := newLinkingEnv(t)
		env.codec.err = errs.New("signature mismatch")

		_, err := env.linking.CompleteLinkFromCallback(context.Background(), "forged")
		require.Error(t, err)
		assert.Equal(t, errs.KindUnauthorized, errs.KindOf(err))
	})

	t.Run("rejects a state for a station the profile does not own", func(t *testing.T) {
		env := newLinkingEnv(t)
		env.codec.payload = map[string]string{
			"profile_id": uuid.NewString(),
			"station_id": env.stationID.String(),
		}

		_, err := env.linking.CompleteLinkFromCallback(context.Background(), "signed-state")
		require.Error(t, err)
		assert.Equal(t, errs.KindForbidden, errs.KindOf(err))
	})

	t.Run("fails when the account has no chargers", func(t *testing.T) {
		env := newLinkingEnv(t)
		env.gateway.chargers = nil
		env.codec.payload = map[string]string{
			"profile_id": env.ownerID.String(),
			"station_id": env.stationID.String(),
		}

		_, err := env.linking.CompleteLinkFromCallback(context.Background(), "signed-state")
		require.Error(t, err)
		assert.Equal(t, errs.KindValidation, errs.KindOf(err))
	})
}

func TestSelectCharger(t *testing.T) {
	t.Run("links the chosen charger", func(t *testing.T) {
		env := newLinkingEnv(t)

		outcome, err := env.linking.SelectCharger(context.Background(), env.stationID, env.ownerID, "charger-2")
		require.NoError(t, err)
		assert.Equal(t, "charger-2", outcome.Charger.ExternalID)
	})

	t.Run("rejects a charger that is not on the account", func(t *testing.T) {
		env := newLinkingEnv(t)

		_, err := env.linking.SelectCharger(context.Background(), env.stationID, env.ownerID, "charger-99")
		require.Error(t, err)
		assert.Equal(t, errs.KindValidation, errs.KindOf(err))
	})

	t.Run("requires a charger id", func(t *testing.T) {
		env := newLinkingEnv(t)

		_, err := env.linking.SelectCharger(context.Background(), env.stationID, env.ownerID, "")
		require.Error(t, err)
		assert.Equal(t, errs.KindValidation, errs.KindOf(err))
	})
}
