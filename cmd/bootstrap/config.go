package bootstrap

import (
	"plogo-server/internal/pkg/config"

	"go.uber.org/fx"
)

var ConfigModule = fx.Module("config",
	fx.Provide(
		config.LoadConfig,
		func(cfg config.Config) config.EnodeConfig {
			return cfg.Enode
		},
	),
)
