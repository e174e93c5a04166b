//go:build wireinject
// +build wireinject

package di

import (
	wire "github.com/google/wire"
	"varietyd/internal"
	"varietyd/internal/controllers"
	"varietyd/internal/providers"
	"varietyd/internal/services"
	"varietyd/internal/statistic"
	"varietyd/internal/structures"
	"varietyd/internal/upstream"
)

func InitApp(cfg *structures.CliFlags) (*internal.App, error) {

	wire.Build(
		providers.NewConfigProvider,
		providers.NewLogProvider,
		providers.NewMetricsProvider,
		providers.NewInstrumentedCacheProvider,
		providers.NewClockProvider,

		upstream.NewClient,
		upstream.NewFetcher,
		services.NewCoordinator,
		statistic.NewZstdCompressor,
		statistic.NewScheduler,
		controllers.NewApiController,
		controllers.NewHealthController,
		internal.InitRoutes,
		internal.NewApp,
	)

	return nil, nil
}
