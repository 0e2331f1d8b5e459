//go:build unit

package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"plogo-server/internal/domain/charging"
	"plogo-server/internal/domain/payment"
	"plogo-server/internal/domain/profile"
	"plogo-server/internal/infra/enode"
	"plogo-server/internal/usecase/commands"
	"plogo-server/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// testAuth injects the authenticated identity the way the real middleware
// does, gated on the presence of an Authorization header.
func testAuth(profileID uuid.UUID, role profile.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Access token required"})
			return
		}
		c.Set("profile_id", profileID)
		c.Set("profile_role", role)
		c.Next()
	}
}

func performRequest(t *testing.T, router *gin.Engine, method, url string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, url, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
}

func testSession(stationID, driverID uuid.UUID) *charging.Session {
	slotID := uuid.New()
	startAction := "act-start-1"
	now := time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)
	return &charging.Session{
		ID:              uuid.New(),
		StationID:       stationID,
		DriverProfileID: driverID,
		SlotID:          &slotID,
		Status:          charging.StatusInProgress,
		StartAt:         now,
		StartActionID:   &startAction,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

func testPayment(stationID uuid.UUID) *payment.BookingPayment {
	now := time.Date(2025, 3, 14, 12, 30, 0, 0, time.UTC)
	energy := 12.0
	amount := 4.2
	return &payment.BookingPayment{
		ID:               uuid.New(),
		StationID:        stationID,
		SlotID:           uuid.New(),
		MembershipID:     uuid.New(),
		DriverProfileID:  uuid.New(),
		OwnerProfileID:   uuid.New(),
		Status:           payment.StatusToPay,
		PaymentReference: "BORNED25031409300B55",
		TotalEnergyKWh:   &energy,
		TotalAmount:      &amount,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// ---------------------------------------------------------------------------
// Hand-written fakes for the command and query ports
// ---------------------------------------------------------------------------

type fakeChargingCommands struct {
	startFn func(ctx context.Context, stationID, driverProfileID uuid.UUID) (*commands.StartSessionResult, error)
	stopFn  func(ctx context.Context, stationID, driverProfileID uuid.UUID) (*commands.StopSessionResult, error)
}

func (f *fakeChargingCommands) StartSession(ctx context.Context, stationID, driverProfileID uuid.UUID) (*commands.StartSessionResult, error) {
	return f.startFn(ctx, stationID, driverProfileID)
}

func (f *fakeChargingCommands) StopSession(ctx context.Context, stationID, driverProfileID uuid.UUID) (*commands.StopSessionResult, error) {
	return f.stopFn(ctx, stationID, driverProfileID)
}

type fakeSyncCommands struct {
	syncFn func(ctx context.Context, sessionID, callerProfileID uuid.UUID) (*commands.SyncSessionResult, error)
}

func (f *fakeSyncCommands) SyncSession(ctx context.Context, sessionID, callerProfileID uuid.UUID) (*commands.SyncSessionResult, error) {
	return f.syncFn(ctx, sessionID, callerProfileID)
}

type fakePaymentCommands struct {
	driverFn func(ctx context.Context, slotID, callerID uuid.UUID, action commands.DriverPaymentAction) (*payment.BookingPayment, error)
	ownerFn  func(ctx context.Context, slotID, callerID uuid.UUID, action commands.OwnerPaymentAction) (*payment.BookingPayment, error)
}

func (f *fakePaymentCommands) EnsureForSlot(_ context.Context, _ *commands.StationSnapshot, _ *charging.Slot, _ uuid.UUID) (*payment.BookingPayment, error) {
	panic("not expected in handler tests")
}

func (f *fakePaymentCommands) RecomputeTotals(_ context.Context, _ uuid.UUID) (*payment.BookingPayment, error) {
	panic("not expected in handler tests")
}

func (f *fakePaymentCommands) DriverAction(ctx context.Context, slotID, callerID uuid.UUID, action commands.DriverPaymentAction) (*payment.BookingPayment, error) {
	return f.driverFn(ctx, slotID, callerID, action)
}

func (f *fakePaymentCommands) OwnerAction(ctx context.Context, slotID, callerID uuid.UUID, action commands.OwnerPaymentAction) (*payment.BookingPayment, error) {
	return f.ownerFn(ctx, slotID, callerID, action)
}

type fakePaymentQueries struct {
	listFn func(ctx context.Context, profileID uuid.UUID, role profile.Role, statuses []string) ([]*queries.BookingPaymentView, error)
}

func (f *fakePaymentQueries) ListForProfile(ctx context.Context, profileID uuid.UUID, role profile.Role, statuses []string) ([]*queries.BookingPaymentView, error) {
	return f.listFn(ctx, profileID, role, statuses)
}

type fakeLinkingCommands struct {
	createFn   func(ctx context.Context, stationID, ownerProfileID uuid.UUID) (string, error)
	listFn     func(ctx context.Context, ownerProfileID uuid.UUID) ([]enode.Charger, error)
	completeFn func(ctx context.Context, stateToken string) (*commands.LinkOutcome, error)
	selectFn   func(ctx context.Context, stationID, ownerProfileID uuid.UUID, chargerExternalID string) (*commands.LinkOutcome, error)
}

func (f *fakeLinkingCommands) CreateLinkSession(ctx context.Context, stationID, ownerProfileID uuid.UUID) (string, error) {
	return f.createFn(ctx, stationID, ownerProfileID)
}

func (f *fakeLinkingCommands) ListChargers(ctx context.Context, ownerProfileID uuid.UUID) ([]enode.Charger, error) {
	return f.listFn(ctx, ownerProfileID)
}

func (f *fakeLinkingCommands) CompleteLinkFromCallback(ctx context.Context, stateToken string) (*commands.LinkOutcome, error) {
	return f.completeFn(ctx, stateToken)
}

func (f *fakeLinkingCommands) SelectCharger(ctx context.Context, stationID, ownerProfileID uuid.UUID, chargerExternalID string) (*commands.LinkOutcome, error) {
	return f.selectFn(ctx, stationID, ownerProfileID, chargerExternalID)
}
