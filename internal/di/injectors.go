//go:build wireinject
// +build wireinject

package di

import (
	wire "github.com/google/wire"
	"studiosync/internal"
	"studiosync/internal/analytics"
	"studiosync/internal/controllers"
	"studiosync/internal/persistence"
	"studiosync/internal/providers"
	"studiosync/internal/registry"
	"studiosync/internal/services"
	"studiosync/internal/structures"
	"studiosync/internal/syncer"
)

func InitApp(cfg *structures.CliFlags) (*internal.App, error) {

	wire.Build(
		providers.NewConfigProvider,
		providers.NewLogProvider,
		providers.NewMetricsProvider,
		providers.NewInstrumentedCacheProvider,

		persistence.NewZstdCompressor,
		persistence.NewFileManager,
		registry.NewFileStore,
		analytics.NewKeyPool,
		analytics.NewHTTPClient,
		analytics.NewFetcher,
		services.NewSyncService,
		syncer.NewScheduler,
		controllers.NewApiController,
		controllers.NewHealthController,
		internal.InitRoutes,
		internal.NewApp,

		wire.Bind(new(services.StatsFetcher), new(*analytics.Fetcher)),
		wire.Bind(new(providers.RegistrySizer), new(registry.StoreInterface)),
		wire.Bind(new(providers.KeyPoolObserver), new(*analytics.KeyPool)),
	)

	return nil, nil
}
