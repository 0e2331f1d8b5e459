//go:build unit

package commands_test

import (
	"context"
	"testing"
	"time"

	"plogo-server/internal/domain/charging"
	"plogo-server/internal/infra/enode"
	"plogo-server/internal/pkg/clock"
	"plogo-server/internal/pkg/errs"
	"plogo-server/internal/usecase/commands"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type syncEnv struct {
	session *charging.Session
	ownerID uuid.UUID

	sessionRepo *fakeSessionRepo
	gateway     *fakeGateway
	sync        commands.SyncCommands
}

func newSyncEnv(t *testing.T) *syncEnv {
	t.Helper()

	stationID := uuid.New()
	ownerID := uuid.New()
	chargerID := "charger-1"
	startActionID := "act-start"
	stopActionID := "act-stop"

	session := &charging.Session{
		ID:              uuid.New(),
		StationID:       stationID,
		DriverProfileID: uuid.New(),
		Status:          charging.StatusInProgress,
		StartAt:         time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC),
		StartActionID:   &startActionID,
		StopActionID:    &stopActionID,
	}

	env := &syncEnv{
		session: session,
		ownerID: ownerID,
		sessionRepo: &fakeSessionRepo{
			byID: map[uuid.UUID]*charging.Session{session.ID: session},
		},
		gateway: &fakeGateway{fetched: map[string]*enode.ActionSnapshot{}},
	}

	stationRepo := &fakeStationRepo{
		station: &commands.StationSnapshot{
			ID:                stationID,
			OwnerProfileID:    ownerID,
			ChargerExternalID: &chargerID,
		},
	}
	env.sync = commands.NewSyncUseCase(
		env.sessionRepo,
		stationRepo,
		env.gateway,
		clock.NewMockClock(time.Date(2025, 3, 14, 11, 0, 0, 0, time.UTC)),
	)
	return env
}

func TestSyncSession(t *testing.T) {
	t.Run("confirmed stop completes the session with its timestamp", func(t *testing.T) {
		env := newSyncEnv(t)
		completedAt := time.Date(2025, 3, 14, 10, 45, 0, 0, time.UTC)
		env.gateway.fetched["act-start"] = &enode.ActionSnapshot{ID: "act-start", State: charging.ActionConfirmed, Raw: map[string]any{"state": "CONFIRMED"}}
		env.gateway.fetched["act-stop"] = &enode.ActionSnapshot{ID: "act-stop", State: charging.ActionConfirmed, CompletedAt: &completedAt, Raw: map[string]any{"state": "CONFIRMED"}}

		result, err := env.sync.SyncSession(context.Background(), env.session.ID, env.session.DriverProfileID)
		require.NoError(t, err)
		assert.True(t, result.Changed)
		assert.Equal(t, charging.StatusCompleted, result.Session.Status)
		require.NotNil(t, result.Session.EndAt)
		assert.Equal(t, completedAt, *result.Session.EndAt)
		assert.Contains(t, result.Session.Metadata, "last_sync_at")
	})

	t.Run("failure dominates confirmation", func(t *testing.T) {
		env := newSyncEnv(t)
		reason := "charger unreachable"
		env.gateway.fetched["act-start"] = &enode.ActionSnapshot{State: charging.ActionConfirmed}
		env.gateway.fetched["act-stop"] = &enode.ActionSnapshot{State: charging.ActionFailed, FailureReason: &reason}

		result, err := env.sync.SyncSession(context.Background(), env.session.ID, env.session.DriverProfileID)
		require.NoError(t, err)
		assert.Equal(t, charging.StatusFailed, result.Session.Status)
		assert.Equal(t, reason, result.Session.Metadata["failure_reason"])
	})

	t.Run("unrecognized combination keeps the status", func(t *testing.T) {
		env := newSyncEnv(t)
		env.gateway.fetched["act-start"] = &enode.ActionSnapshot{State: charging.ActionCancelled}
		env.gateway.fetched["act-stop"] = &enode.ActionSnapshot{State: charging.ActionConfirmed}

		result, err := env.sync.SyncSession(context.Background(), env.session.ID, env.session.DriverProfileID)
		require.NoError(t, err)
		// A confirmed stop still completes; cancellation never outranks it.
		assert.Equal(t, charging.StatusCompleted, result.Session.Status)
	})

	t.Run("station owner may sync", func(t *testing.T) {
		env := newSyncEnv(t)
		env.gateway.fetched["act-start"] = &enode.ActionSnapshot{State: charging.ActionPending}
		env.gateway.fetched["act-stop"] = nil

		result, err := env.sync.SyncSession(context.Background(), env.session.ID, env.ownerID)
		require.NoError(t, err)
		assert.Equal(t, charging.StatusPending, result.Session.Status)
	})

	t.Run("strangers are forbidden", func(t *testing.T) {
		env := newSyncEnv(t)

		_, err := env.sync.SyncSession(context.Background(), env.session.ID, uuid.New())
		require.Error(t, err)
		assert.Equal(t, errs.KindForbidden, errs.KindOf(err))
	})

	t.Run("fails without any known action id", func(t *testing.T) {
		env := newSyncEnv(t)
		env.session.StartActionID = nil
		env.session.StopActionID = nil

		_, err := env.sync.SyncSession(context.Background(), env.session.ID, env.session.DriverProfileID)
		require.Error(t, err)
		assert.Equal(t, errs.KindValidation, errs.KindOf(err))
	})

	t.Run("falls back to ids embedded in the raw payload", func(t *testing.T) {
		env := newSyncEnv(t)
		env.session.StartActionID = nil
		env.session.StopActionID = nil
		env.session.RawPayload = map[string]any{"start": map[string]any{"id": "raw-start"}}
		env.gateway.fetched["raw-start"] = &enode.ActionSnapshot{State: charging.ActionPending}

		result, err := env.sync.SyncSession(context.Background(), env.session.ID, env.session.DriverProfileID)
		require.NoError(t, err)
		assert.Equal(t, []string{"raw-start"}, env.gateway.fetchCalls)
		assert.Equal(t, charging.StatusPending, result.Session.Status)
	})

	t.Run("unknown session is not found", func(t *testing.T) {
		env := newSyncEnv(t)

		_, err := env.sync.SyncSession(context.Background(), uuid.New(), env.session.DriverProfileID)
		require.Error(t, err)
		assert.Equal(t, errs.KindNotFound, errs.KindOf(err))
	})
}
