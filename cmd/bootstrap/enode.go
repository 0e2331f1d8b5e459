package bootstrap

import (
	"plogo-server/internal/infra/enode"
	"plogo-server/internal/pkg/clock"
	"plogo-server/internal/pkg/config"
	"plogo-server/internal/pkg/statetoken"
	"plogo-server/internal/usecase/commands"

	"go.uber.org/fx"
)

var EnodeModule = fx.Module("enode",
	fx.Provide(
		fx.Annotate(
			enode.NewTokenProvider,
			fx.As(new(enode.TokenSource)),
		),
		fx.Annotate(
			enode.NewClient,
			fx.As(new(commands.ChargerGateway)),
		),
		fx.Annotate(
			NewStateCodec,
			fx.As(new(commands.StateCodec)),
		),
	),
)

func NewStateCodec(cfg config.EnodeConfig, clk clock.Clock) *statetoken.Codec {
	return statetoken.NewCodec(cfg.StateSecret, clk)
}
