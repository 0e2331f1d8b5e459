package api

import (
	"net/http"
	"strings"

	reqdto "plogo-server/internal/handler/dto/request"
	resdto "plogo-server/internal/handler/dto/response"
	"plogo-server/internal/handler/httperr"
	"plogo-server/internal/handler/middleware"
	"plogo-server/internal/usecase/commands"
	"plogo-server/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

type PaymentHandler struct {
	paymentUseCase commands.PaymentCommands
	paymentQueries queries.BookingPaymentQueries
}

func NewPaymentHandler(paymentUseCase commands.PaymentCommands, paymentQueries queries.BookingPaymentQueries) *PaymentHandler {
	return &PaymentHandler{
		paymentUseCase: paymentUseCase,
		paymentQueries: paymentQueries,
	}
}

// @Summary List booking payments
// @Description List the caller's booking payments in their role, newest slot first
// @Tags booking-payments
// @Produce json
// @Security BearerAuth
// @Param role query string false "Must match the caller's own role when given"
// @Param status query []string false "Filter by payment status, repeatable or comma-separated" collectionFormat(multi)
// @Success 200 {array} resdto.BookingPaymentListResponse
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Router /booking-payments [get]
func (h *PaymentHandler) ListBookingPayments(c *gin.Context) {
	profileID, ok := middleware.GetProfileID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}
	role, ok := middleware.GetProfileRole(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	// A caller may name the view explicitly, but only their own.
	if requested := c.Query("role"); requested != "" && requested != role.String() {
		c.JSON(http.StatusForbidden, gin.H{
			"error": "Cannot list payments for another role",
		})
		return
	}

	statuses := splitStatuses(c.QueryArray("status"))

	views, err := h.paymentQueries.ListForProfile(c.Request.Context(), profileID, role, statuses)
	if err != nil {
		httperr.AbortWithKind(c, err)
		return
	}

	response := make([]*resdto.BookingPaymentListResponse, len(views))
	for i, view := range views {
		response[i] = resdto.FromBookingPaymentView(view)
	}

	c.JSON(http.StatusOK, response)
}

// @Summary Driver payment action
// @Description Mark a payment as settled or cancel a previous mark
// @Tags booking-payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.PaymentActionRequest true "Action request"
// @Success 200 {object} resdto.BookingPaymentResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 403 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 422 {object} httperr.Response
// @Router /booking-payments/driver-action [post]
func (h *PaymentHandler) DriverAction(c *gin.Context) {
	profileID, ok := middleware.GetProfileID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	var req reqdto.PaymentActionRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	record, err := h.paymentUseCase.DriverAction(
		c.Request.Context(),
		req.SlotID,
		profileID,
		commands.DriverPaymentAction(req.NormalizedAction()),
	)
	if err != nil {
		httperr.AbortWithKind(c, err)
		return
	}

	c.JSON(http.StatusOK, resdto.FromBookingPayment(record))
}

// splitStatuses accepts both repeated query params and comma-separated lists.
func splitStatuses(raw []string) []string {
	var statuses []string
	for _, value := range raw {
		for _, part := range strings.Split(value, ",") {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				statuses = append(statuses, trimmed)
			}
		}
	}
	return statuses
}

// @Summary Owner payment action
// @Description Confirm a driver-marked payment or cancel a previous confirmation
// @Tags booking-payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.PaymentActionRequest true "Action request"
// @Success 200 {object} resdto.BookingPaymentResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 403 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 422 {object} httperr.Response
// @Router /booking-payments/owner-action [post]
func (h *PaymentHandler) OwnerAction(c *gin.Context) {
	profileID, ok := middleware.GetProfileID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	var req reqdto.PaymentActionRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	record, err := h.paymentUseCase.OwnerAction(
		c.Request.Context(),
		req.SlotID,
		profileID,
		commands.OwnerPaymentAction(req.NormalizedAction()),
	)
	if err != nil {
		httperr.AbortWithKind(c, err)
		return
	}

	c.JSON(http.StatusOK, resdto.FromBookingPayment(record))
}
