package api

import (
	"net/http"

	reqdto "plogo-server/internal/handler/dto/request"
	resdto "plogo-server/internal/handler/dto/response"
	"plogo-server/internal/handler/httperr"
	"plogo-server/internal/handler/middleware"
	"plogo-server/internal/usecase/commands"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ChargingHandler struct {
	chargingUseCase commands.ChargingCommands
	syncUseCase     commands.SyncCommands
}

func NewChargingHandler(chargingUseCase commands.ChargingCommands, syncUseCase commands.SyncCommands) *ChargingHandler {
	return &ChargingHandler{
		chargingUseCase: chargingUseCase,
		syncUseCase:     syncUseCase,
	}
}

// @Summary Start charging session
// @Description Issue a START action and record the session for the caller's active slot
// @Tags charging
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.StartSessionRequest true "Start request"
// @Success 201 {object} resdto.StartSessionResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 403 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 502 {object} httperr.Response
// @Router /charging/start [post]
func (h *ChargingHandler) StartSession(c *gin.Context) {
	profileID, ok := middleware.GetProfileID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	var req reqdto.StartSessionRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	result, err := h.chargingUseCase.StartSession(c.Request.Context(), req.StationID, profileID)
	if err != nil {
		httperr.AbortWithKind(c, err)
		return
	}

	status := http.StatusCreated
	if result.Replayed {
		status = http.StatusOK
	}
	c.JSON(status, resdto.FromStartResult(result))
}

// @Summary Stop charging session
// @Description Issue a STOP action, settle usage and recompute the slot's payment
// @Tags charging
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.StopSessionRequest true "Stop request"
// @Success 200 {object} resdto.StopSessionResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 403 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 502 {object} httperr.Response
// @Router /charging/stop [post]
func (h *ChargingHandler) StopSession(c *gin.Context) {
	profileID, ok := middleware.GetProfileID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	var req reqdto.StopSessionRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	result, err := h.chargingUseCase.StopSession(c.Request.Context(), req.StationID, profileID)
	if err != nil {
		httperr.AbortWithKind(c, err)
		return
	}

	c.JSON(http.StatusOK, resdto.FromStopResult(result))
}

// @Summary Sync charging session
// @Description Re-fetch action states from the charger platform and reconcile the session status
// @Tags charging
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Success 200 {object} resdto.SyncSessionResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 403 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 502 {object} httperr.Response
// @Router /charging/sessions/{id}/sync [post]
func (h *ChargingHandler) SyncSession(c *gin.Context) {
	profileID, ok := middleware.GetProfileID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid session ID format",
		})
		return
	}

	result, err := h.syncUseCase.SyncSession(c.Request.Context(), sessionID, profileID)
	if err != nil {
		httperr.AbortWithKind(c, err)
		return
	}

	c.JSON(http.StatusOK, resdto.FromSyncResult(result))
}
