//go:build wireinject
// +build wireinject

package di

import (
	"ValuPull/pkg/config"
	"ValuPull/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideKafkaProducer,
		ProvideCache,

		// Repositories
		ProvideValuationLog,
		ProvideEventPublisher,

		// Extraction + use case
		ProvideSources,
		ProvideExtractor,
		ProvideAggregator,

		// HTTP surface
		ProvideHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
