//go:build unit

package api_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"plogo-server/internal/domain/payment"
	"plogo-server/internal/domain/profile"
	"plogo-server/internal/handler/api"
	"plogo-server/internal/pkg/errs"
	"plogo-server/internal/usecase/commands"
	"plogo-server/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

type PaymentHandlerTestSuite struct {
	suite.Suite
	router    *gin.Engine
	commands  *fakePaymentCommands
	queries   *fakePaymentQueries
	profileID uuid.UUID
}

func (s *PaymentHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.router = gin.New()

	s.commands = &fakePaymentCommands{}
	s.queries = &fakePaymentQueries{}
	s.profileID = uuid.New()
	handler := api.NewPaymentHandler(s.commands, s.queries)

	auth := testAuth(s.profileID, profile.RoleDriver)
	s.router.GET("/api/booking-payments", auth, handler.ListBookingPayments)
	s.router.POST("/api/booking-payments/driver-action", auth, handler.DriverAction)
	s.router.POST("/api/booking-payments/owner-action", auth, handler.OwnerAction)
}

func TestPaymentHandlerSuite(t *testing.T) {
	suite.Run(t, new(PaymentHandlerTestSuite))
}

func (s *PaymentHandlerTestSuite) TestListBookingPayments() {
	s.Run("success: returns views in the caller's role", func() {
		amount := 4.2
		view := &queries.BookingPaymentView{
			ID:               uuid.New(),
			StationID:        uuid.New(),
			SlotID:           uuid.New(),
			Status:           "to_pay",
			PaymentReference: "BORNED25031409300B55",
			TotalAmount:      &amount,
			Role:             "driver",
			Station:          queries.StationDisplay{Name: "Borne du Port"},
			Slot: queries.SlotWindow{
				StartAt: time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC),
				EndAt:   time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC),
			},
		}
		s.queries.listFn = func(_ context.Context, gotProfile uuid.UUID, gotRole profile.Role, statuses []string) ([]*queries.BookingPaymentView, error) {
			s.Equal(s.profileID, gotProfile)
			s.Equal(profile.RoleDriver, gotRole)
			s.Equal([]string{"to_pay", "driver_marked"}, statuses)
			return []*queries.BookingPaymentView{view}, nil
		}

		rec := performRequest(s.T(), s.router, http.MethodGet,
			"/api/booking-payments?status=to_pay&status=driver_marked", nil, "token")

		s.Equal(http.StatusOK, rec.Code)
		var body []map[string]any
		decodeBody(s.T(), rec, &body)
		s.Len(body, 1)
		s.Equal("to_pay", body[0]["status"])
		s.Equal("driver", body[0]["role"])
		// A driver's own listing carries no vehicle block.
		s.NotContains(body[0], "driver")
	})

	s.Run("success: comma-separated status filter is split", func() {
		s.queries.listFn = func(_ context.Context, _ uuid.UUID, _ profile.Role, statuses []string) ([]*queries.BookingPaymentView, error) {
			s.Equal([]string{"to_pay", "paid"}, statuses)
			return nil, nil
		}
		rec := performRequest(s.T(), s.router, http.MethodGet,
			"/api/booking-payments?status=to_pay,paid", nil, "token")
		s.Equal(http.StatusOK, rec.Code)
	})

	s.Run("error: 403 when requesting another role's view", func() {
		rec := performRequest(s.T(), s.router, http.MethodGet,
			"/api/booking-payments?role=owner", nil, "token")
		s.Equal(http.StatusForbidden, rec.Code)
	})

	s.Run("error: 401 without a token", func() {
		rec := performRequest(s.T(), s.router, http.MethodGet, "/api/booking-payments", nil, "")
		s.Equal(http.StatusUnauthorized, rec.Code)
	})
}

func (s *PaymentHandlerTestSuite) TestDriverAction() {
	slotID := uuid.New()

	s.Run("success: mark is lowercased and forwarded", func() {
		record := testPayment(uuid.New())
		record.Status = "driver_marked"
		s.commands.driverFn = func(_ context.Context, gotSlot, gotCaller uuid.UUID, action commands.DriverPaymentAction) (*payment.BookingPayment, error) {
			s.Equal(slotID, gotSlot)
			s.Equal(s.profileID, gotCaller)
			s.Equal(commands.DriverActionMark, action)
			return record, nil
		}

		rec := performRequest(s.T(), s.router, http.MethodPost, "/api/booking-payments/driver-action",
			map[string]any{"slot_id": slotID, "action": " MARK "}, "token")

		s.Equal(http.StatusOK, rec.Code)
		var body map[string]any
		decodeBody(s.T(), rec, &body)
		s.Equal("driver_marked", body["status"])
	})

	s.Run("error: 422 when payment is not payable yet", func() {
		s.commands.driverFn = func(_ context.Context, _, _ uuid.UUID, _ commands.DriverPaymentAction) (*payment.BookingPayment, error) {
			return nil, errs.Kindf(errs.KindValidation, "booking payment is not payable yet")
		}
		rec := performRequest(s.T(), s.router, http.MethodPost, "/api/booking-payments/driver-action",
			map[string]any{"slot_id": slotID, "action": "mark"}, "token")
		s.Equal(http.StatusUnprocessableEntity, rec.Code)
	})

	s.Run("error: 403 when the caller is not the slot's driver", func() {
		s.commands.driverFn = func(_ context.Context, _, _ uuid.UUID, _ commands.DriverPaymentAction) (*payment.BookingPayment, error) {
			return nil, errs.Kindf(errs.KindForbidden, "payment belongs to another driver")
		}
		rec := performRequest(s.T(), s.router, http.MethodPost, "/api/booking-payments/driver-action",
			map[string]any{"slot_id": slotID, "action": "mark"}, "token")
		s.Equal(http.StatusForbidden, rec.Code)
	})

	s.Run("error: 400 on missing action", func() {
		rec := performRequest(s.T(), s.router, http.MethodPost, "/api/booking-payments/driver-action",
			map[string]any{"slot_id": slotID}, "token")
		s.Equal(http.StatusBadRequest, rec.Code)
	})
}

func (s *PaymentHandlerTestSuite) TestOwnerAction() {
	slotID := uuid.New()

	s.Run("success: confirm transitions to paid", func() {
		record := testPayment(uuid.New())
		record.Status = "paid"
		s.commands.ownerFn = func(_ context.Context, gotSlot, gotCaller uuid.UUID, action commands.OwnerPaymentAction) (*payment.BookingPayment, error) {
			s.Equal(slotID, gotSlot)
			s.Equal(s.profileID, gotCaller)
			s.Equal(commands.OwnerActionConfirm, action)
			return record, nil
		}

		rec := performRequest(s.T(), s.router, http.MethodPost, "/api/booking-payments/owner-action",
			map[string]any{"slot_id": slotID, "action": "confirm"}, "token")

		s.Equal(http.StatusOK, rec.Code)
		var body map[string]any
		decodeBody(s.T(), rec, &body)
		s.Equal("paid", body["status"])
	})

	s.Run("error: 422 when nothing was marked", func() {
		s.commands.ownerFn = func(_ context.Context, _, _ uuid.UUID, _ commands.OwnerPaymentAction) (*payment.BookingPayment, error) {
			return nil, errs.Kindf(errs.KindValidation, "booking payment has not been marked by the driver")
		}
		rec := performRequest(s.T(), s.router, http.MethodPost, "/api/booking-payments/owner-action",
			map[string]any{"slot_id": slotID, "action": "confirm"}, "token")
		s.Equal(http.StatusUnprocessableEntity, rec.Code)
	})
}
