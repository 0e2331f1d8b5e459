package components

import (
	"plogo-server/internal/infra/readstore"
	repo_impl "plogo-server/internal/infra/repository"
	"plogo-server/internal/usecase/commands"
	"plogo-server/internal/usecase/queries"

	"go.uber.org/fx"
)

var RepositoryModule = fx.Module("repository",
	fx.Provide(
		fx.Annotate(
			repo_impl.NewStationRepository,
			fx.As(new(commands.StationRepository)),
		),
		fx.Annotate(
			repo_impl.NewProfileRepository,
			fx.As(new(commands.ProfileRepository)),
		),
		fx.Annotate(
			repo_impl.NewSlotRepository,
			fx.As(new(commands.SlotRepository)),
		),
		fx.Annotate(
			repo_impl.NewSessionRepository,
			fx.As(new(commands.SessionRepository)),
		),
		fx.Annotate(
			repo_impl.NewPaymentRepository,
			fx.As(new(commands.PaymentRepository)),
		),
		// Read-side store for role-scoped payment listings
		fx.Annotate(
			readstore.NewPaymentReadStore,
			fx.As(new(queries.BookingPaymentQueries)),
		),
	),
)
