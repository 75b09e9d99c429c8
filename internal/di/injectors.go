//go:build wireinject
// +build wireinject

package di

import (
	"context"

	wire "github.com/google/wire"

	"logistics-scheduler-service/internal/config"
	"logistics-scheduler-service/internal/platform/compress"
	"logistics-scheduler-service/internal/services"
)

var baseSet = wire.NewSet(
	ProvideLogger,
	ProvideRegistry,
	ProvideMetrics,
	ProvidePool,
	ProvideDocumentStore,
)

func InitServer(ctx context.Context, cfg *config.Config) (*Server, func(), error) {
	wire.Build(
		baseSet,
		ProvideDistanceCache,
		ProvideDirections,
		ProvideFleet,
		services.NewCostModel,
		ProvideRouteOptimizer,
		ProvideMetricsHandler,
		ProvideRouter,
		ProvideHTTPServer,
		NewServer,
	)

	return nil, nil, nil
}

func InitJobs(ctx context.Context, cfg *config.Config) (*Jobs, func(), error) {
	wire.Build(
		baseSet,
		ProvideObjectStore,
		ProvideEventPublisher,
		compress.NewZstdCompressor,
		ProvideArchiver,
		ProvideJobEnv,
		ProvideBackupOptions,
		services.NewRecurrenceScheduler,
		services.NewBackupService,
		NewJobs,
	)

	return nil, nil, nil
}
