package components

import (
	"plogo-server/internal/handler"
	"plogo-server/internal/handler/api"
	"plogo-server/internal/handler/middleware"

	"go.uber.org/fx"
)

var HandlerModule = fx.Module("handler",
	fx.Provide(
		api.NewChargingHandler,
		api.NewPaymentHandler,
		api.NewStationHandler,
		middleware.NewAuthMiddleware,
	),
	fx.Invoke(handler.NewRouter),
)
