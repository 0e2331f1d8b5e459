package api

import (
	"net/http"

	reqdto "plogo-server/internal/handler/dto/request"
	resdto "plogo-server/internal/handler/dto/response"
	"plogo-server/internal/handler/httperr"
	"plogo-server/internal/handler/middleware"
	"plogo-server/internal/usecase/commands"

	"github.com/gin-gonic/gin"
)

type StationHandler struct {
	linkingUseCase commands.LinkingCommands
}

func NewStationHandler(linkingUseCase commands.LinkingCommands) *StationHandler {
	return &StationHandler{
		linkingUseCase: linkingUseCase,
	}
}

// @Summary Create charger link session
// @Description Start the vendor-linking flow for a station and return the hosted link URL
// @Tags stations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.CreateLinkRequest true "Link request"
// @Success 201 {object} resdto.LinkSessionResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 403 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 502 {object} httperr.Response
// @Router /stations/link [post]
func (h *StationHandler) CreateLinkSession(c *gin.Context) {
	profileID, ok := middleware.GetProfileID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	var req reqdto.CreateLinkRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	linkURL, err := h.linkingUseCase.CreateLinkSession(c.Request.Context(), req.StationID, profileID)
	if err != nil {
		httperr.AbortWithKind(c, err)
		return
	}

	c.JSON(http.StatusCreated, resdto.LinkSessionResponse{LinkURL: linkURL})
}

// @Summary Complete charger link
// @Description Finish the vendor-linking flow from the out-of-band redirect; the state token carries the identity
// @Tags stations
// @Produce json
// @Param state path string true "Signed state token"
// @Success 200 {object} resdto.LinkOutcomeResponse
// @Failure 401 {object} httperr.Response
// @Failure 403 {object} httperr.Response
// @Failure 422 {object} httperr.Response
// @Router /stations/link/callback/{state} [get]
func (h *StationHandler) CompleteLinkFromCallback(c *gin.Context) {
	state := c.Param("state")
	if state == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Missing state token",
		})
		return
	}

	outcome, err := h.linkingUseCase.CompleteLinkFromCallback(c.Request.Context(), state)
	if err != nil {
		httperr.AbortWithKind(c, err)
		return
	}

	c.JSON(http.StatusOK, resdto.FromLinkOutcome(outcome))
}

// @Summary List linked account chargers
// @Description List the chargers visible on the caller's external account
// @Tags stations
// @Produce json
// @Security BearerAuth
// @Success 200 {array} resdto.ChargerResponse
// @Failure 401 {object} map[string]string
// @Failure 502 {object} httperr.Response
// @Router /stations/chargers [get]
func (h *StationHandler) ListChargers(c *gin.Context) {
	profileID, ok := middleware.GetProfileID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	chargers, err := h.linkingUseCase.ListChargers(c.Request.Context(), profileID)
	if err != nil {
		httperr.AbortWithKind(c, err)
		return
	}

	response := make([]resdto.ChargerResponse, len(chargers))
	for i, charger := range chargers {
		response[i] = resdto.FromCharger(charger)
	}

	c.JSON(http.StatusOK, response)
}

// @Summary Select charger for station
// @Description Bind a specific charger from the caller's account to a station
// @Tags stations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.SelectChargerRequest true "Charger selection"
// @Success 200 {object} resdto.LinkOutcomeResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 403 {object} httperr.Response
// @Failure 422 {object} httperr.Response
// @Router /stations/select-charger [post]
func (h *StationHandler) SelectCharger(c *gin.Context) {
	profileID, ok := middleware.GetProfileID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	var req reqdto.SelectChargerRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	outcome, err := h.linkingUseCase.SelectCharger(c.Request.Context(), req.StationID, profileID, req.ChargerID)
	if err != nil {
		httperr.AbortWithKind(c, err)
		return
	}

	c.JSON(http.StatusOK, resdto.FromLinkOutcome(outcome))
}
