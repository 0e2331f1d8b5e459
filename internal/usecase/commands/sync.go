package commands

import (
	"context"
	"time"

	"plogo-server/internal/domain/charging"
	"plogo-server/internal/infra"
	"plogo-server/internal/infra/enode"
	"plogo-server/internal/pkg/clock"
	"plogo-server/internal/pkg/errs"

	"github.com/google/uuid"
)

type SyncSessionResult struct {
	Session    *charging.Session
	StartState charging.ActionState
	StopState  charging.ActionState
	// Changed is true when the reconciliation moved the session status or
	// its end timestamp.
	Changed bool
}

// SyncCommands re-fetches the platform's view of previously issued actions
// and advances the local session status. Callers may re-issue it to converge
// eventually-consistent external state; no automatic retries happen here.
type SyncCommands interface {
	SyncSession(ctx context.Context, sessionID, callerProfileID uuid.UUID) (*SyncSessionResult, error)
}

type syncUseCaseImpl struct {
	sessionRepo SessionRepository
	stationRepo StationRepository
	gateway     ChargerGateway
	clock       clock.Clock
}

func NewSyncUseCase(
	sessionRepo SessionRepository,
	stationRepo StationRepository,
	gateway ChargerGateway,
	clk clock.Clock,
) SyncCommands {
	return &syncUseCaseImpl{
		sessionRepo: sessionRepo,
		stationRepo: stationRepo,
		gateway:     gateway,
		clock:       clk,
	}
}

func (s *syncUseCaseImpl) SyncSession(ctx context.Context, sessionID, callerProfileID uuid.UUID) (*SyncSessionResult, error) {
	session, err := s.sessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.Kindf(errs.KindNotFound, "charging session not found")
		}
		return nil, errs.WithKind(err, errs.KindInternal, "failed to load charging session")
	}

	station, err := s.stationRepo.FindByID(ctx, session.StationID)
	if err != nil {
		return nil, errs.WithKind(err, errs.KindInternal, "failed to load session station")
	}

	if callerProfileID != session.DriverProfileID && callerProfileID != station.OwnerProfileID {
		return nil, errs.Kindf(errs.KindForbidden, "caller is neither the session driver nor the station owner")
	}

	startActionID := actionID(session.StartActionID, session.RawPayload, "start")
	stopActionID := actionID(session.StopActionID, session.RawPayload, "stop")
	if startActionID == "" && stopActionID == "" {
		return nil, errs.Kindf(errs.KindValidation, "session has no known charger actions to sync")
	}
	if station.ChargerExternalID == nil || *station.ChargerExternalID == "" {
		return nil, errs.Kindf(errs.KindValidation, "station has no linked charger")
	}

	startSnap, err := s.fetch(ctx, *station.ChargerExternalID, startActionID)
	if err != nil {
		return nil, err
	}
	stopSnap, err := s.fetch(ctx, *station.ChargerExternalID, stopActionID)
	if err != nil {
		return nil, err
	}

	startState := snapshotState(startSnap)
	stopState := snapshotState(stopSnap)

	previousStatus := session.Status
	session.Status = charging.ReconcileStatus(session.Status, startState, stopState)

	endAtChanged := false
	if stopState == charging.ActionConfirmed && stopSnap.CompletedAt != nil {
		if session.EndAt == nil || !session.EndAt.Equal(*stopSnap.CompletedAt) {
			completedAt := *stopSnap.CompletedAt
			session.EndAt = &completedAt
			endAtChanged = true
		}
	}

	s.mergeMetadata(session, startSnap, stopSnap)

	if err := s.sessionRepo.Update(ctx, session); err != nil {
		return nil, errs.WithKind(err, errs.KindInternal, "failed to persist synced session")
	}

	return &SyncSessionResult{
		Session:    session,
		StartState: startState,
		StopState:  stopState,
		Changed:    session.Status != previousStatus || endAtChanged,
	}, nil
}

func (s *syncUseCaseImpl) fetch(ctx context.Context, chargerID, actionID string) (*enode.ActionSnapshot, error) {
	if actionID == "" {
		return nil, nil
	}
	return s.gateway.FetchAction(ctx, chargerID, actionID)
}

func (s *syncUseCaseImpl) mergeMetadata(session *charging.Session, startSnap, stopSnap *enode.ActionSnapshot) {
	if session.Metadata == nil {
		session.Metadata = map[string]any{}
	}
	session.Metadata["last_sync_at"] = s.clock.Now().UTC().Format(time.RFC3339)

	if startSnap != nil {
		session.Metadata["start_action"] = startSnap.Raw
	}
	if stopSnap != nil {
		session.Metadata["stop_action"] = stopSnap.Raw
	}

	for _, snap := range []*enode.ActionSnapshot{stopSnap, startSnap} {
		if snap != nil && snap.FailureReason != nil {
			session.Metadata["failure_reason"] = *snap.FailureReason
			break
		}
	}
}

// actionID prefers the stored column and falls back to the id embedded in a
// previously persisted raw payload.
func actionID(stored *string, rawPayload map[string]any, key string) string {
	if stored != nil && *stored != "" {
		return *stored
	}
	if rawPayload == nil {
		return ""
	}
	if raw, ok := rawPayload[key].(map[string]any); ok {
		if id, ok := raw["id"].(string); ok {
			return id
		}
	}
	return ""
}

func snapshotState(snap *enode.ActionSnapshot) charging.ActionState {
	if snap == nil {
		return ""
	}
	return snap.State
}
