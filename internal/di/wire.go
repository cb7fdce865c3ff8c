//go:build wireinject
// +build wireinject

package di

import (
	"StockPulse/internal/usecase"
	"StockPulse/pkg/config"
	"StockPulse/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Observability
		ProvideKafkaProducer,
		ProvideLogger,
		ProvideMetrics,
		ProvideTracing,

		// Storage
		ProvideClickHouseClient,
		ProvideSalesStore,
		ProvideInventoryStore,
		ProvideOverrides,
		ProvideRedisClient,
		ProvideCache,
		ProvideSalesPublisher,

		// Use cases
		ProvideEngine,
		ProvideSalesIngestor,
		ProvideForecastUseCase,
		ProvideSalesEventsHandler,
		ProvideKafkaConsumer,
		ProvideHub,
		ProvideWarmQueue,
		ProvideWarmScheduler,

		// Transport
		ProvideLimiter,
		ProvideForecastHandler,
		ProvideHTTPServer,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}

// InitializeForecasts wires the read path only, for one-shot CLI commands.
func InitializeForecasts(cfg *config.Config) (*usecase.ForecastUseCase, error) {
	wire.Build(
		ProvideKafkaProducer,
		ProvideLogger,
		ProvideMetrics,
		ProvideClickHouseClient,
		ProvideSalesStore,
		ProvideInventoryStore,
		ProvideOverrides,
		ProvideRedisClient,
		ProvideCache,
		ProvideEngine,
		ProvideForecastUseCase,
	)
	return &usecase.ForecastUseCase{}, nil
}
