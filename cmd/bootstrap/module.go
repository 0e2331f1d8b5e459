package bootstrap

import (
	"plogo-server/cmd/bootstrap/components"

	"go.uber.org/fx"
)

var Module = fx.Options(
	ConfigModule,
	DBModule,
	JWTModule,
	EnodeModule,
	components.RepositoryModule,
	components.UseCaseModule,
	components.HandlerModule,
)
