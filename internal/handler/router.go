package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"plogo-server/internal/domain/profile"
	"plogo-server/internal/handler/api"
	"plogo-server/internal/handler/middleware"
	"plogo-server/internal/pkg/config"
)

type route struct {
	Method  string
	Path    string
	Handler gin.HandlerFunc
	Mw      []gin.HandlerFunc
}

func NewRouter(
	engine *gin.Engine,
	cfg config.Config,
	chargingHandler *api.ChargingHandler,
	paymentHandler *api.PaymentHandler,
	stationHandler *api.StationHandler,
	authMiddleware *middleware.AuthMiddleware,
) {
	setupMiddleware(engine, cfg)
	setupRoutes(engine, chargingHandler, paymentHandler, stationHandler, authMiddleware)
}

func setupMiddleware(engine *gin.Engine, cfg config.Config) {
	// Recovery must be first (outermost) to catch panics from all other middleware
	engine.Use(middleware.CustomRecovery())
	engine.Use(middleware.NewCORSMiddleware(cfg.CORS))
	engine.Use(middleware.LoggingMiddleware(cfg.Log))
	engine.Use(middleware.ErrorHandler())
}

func setupRoutes(
	engine *gin.Engine,
	chargingHandler *api.ChargingHandler,
	paymentHandler *api.PaymentHandler,
	stationHandler *api.StationHandler,
	authMiddleware *middleware.AuthMiddleware,
) {
	engine.GET("/health", healthCheck)

	apiGroup := engine.Group("/api")
	{
		charging := apiGroup.Group("/charging")
		charging.Use(authMiddleware.RequireAuth())
		{
			addRoutes(charging, []route{
				{Method: http.MethodPost, Path: "/start", Handler: chargingHandler.StartSession,
					Mw: []gin.HandlerFunc{authMiddleware.RequireRole(profile.RoleDriver)}},
				{Method: http.MethodPost, Path: "/stop", Handler: chargingHandler.StopSession,
					Mw: []gin.HandlerFunc{authMiddleware.RequireRole(profile.RoleDriver)}},
				// Either party of a session may sync; the usecase checks identity.
				{Method: http.MethodPost, Path: "/sessions/:id/sync", Handler: chargingHandler.SyncSession},
			})
		}

		payments := apiGroup.Group("/booking-payments")
		payments.Use(authMiddleware.RequireAuth())
		{
			addRoutes(payments, []route{
				{Method: http.MethodGet, Path: "", Handler: paymentHandler.ListBookingPayments},
				{Method: http.MethodPost, Path: "/driver-action", Handler: paymentHandler.DriverAction,
					Mw: []gin.HandlerFunc{authMiddleware.RequireRole(profile.RoleDriver)}},
				{Method: http.MethodPost, Path: "/owner-action", Handler: paymentHandler.OwnerAction,
					Mw: []gin.HandlerFunc{authMiddleware.RequireRole(profile.RoleOwner)}},
			})
		}

		stations := apiGroup.Group("/stations")
		{
			// The vendor redirect lands here without a bearer token; the
			// signed state token is the credential.
			addRoutes(stations, []route{
				{Method: http.MethodGet, Path: "/link/callback/:state", Handler: stationHandler.CompleteLinkFromCallback},
			})

			owned := stations.Group("")
			owned.Use(authMiddleware.RequireAuth(), authMiddleware.RequireRole(profile.RoleOwner))
			addRoutes(owned, []route{
				{Method: http.MethodPost, Path: "/link", Handler: stationHandler.CreateLinkSession},
				{Method: http.MethodGet, Path: "/chargers", Handler: stationHandler.ListChargers},
				{Method: http.MethodPost, Path: "/select-charger", Handler: stationHandler.SelectCharger},
			})
		}
	}
}

// @Summary Health check
// @Description Check if the service is healthy
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Service is healthy",
	})
}

func addRoutes(g *gin.RouterGroup, rs []route) {
	for _, r := range rs {
		h := r.Handler
		if len(r.Mw) > 0 {
			h = chainHandlers(append(r.Mw, r.Handler)...)
		}
		switch r.Method {
		case http.MethodGet:
			g.GET(r.Path, h)
		case http.MethodPost:
			g.POST(r.Path, h)
		case http.MethodPut:
			g.PUT(r.Path, h)
		case http.MethodPatch:
			g.PATCH(r.Path, h)
		case http.MethodDelete:
			g.DELETE(r.Path, h)
		default:
			g.Any(r.Path, h)
		}
	}
}

func chainHandlers(hs ...gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, h := range hs {
			h(c)
			if c.IsAborted() {
				return
			}
		}
	}
}
