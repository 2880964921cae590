//go:build wireinject
// +build wireinject

package di

import (
	"DrawPulse/pkg/config"
	"DrawPulse/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Ambient
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideKafkaProducer,
		ProvideKafkaConsumer,

		// Repositories
		ProvideStorage,
		ProvideStorageIface,
		ProvideOutcomeStore,
		ProvidePublisher,
		ProvideDrawStream,

		// Core engine and caching
		ProvideEngine,
		ProvideBytesCache,

		// Use cases
		ProvideOutcomeProcessor,
		ProvidePredictionService,
		ProvideHistoryUseCase,
		ProvideDrawCollector,
		ProvideKafkaOutcomesHandler,

		// HTTP
		ProvideHTTPHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
