//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"SensorStat/internal/domain/repository"
	"SensorStat/pkg/config"
	"SensorStat/pkg/metrics"
	"SensorStat/pkg/runner"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(ctx context.Context, cfg *config.Config) (*runner.App, func(), error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,
		wire.Bind(new(repository.Metrics), new(*metrics.Recorder)),

		// Pipeline stages
		ProvideIngestor,
		ProvideSummarizer,

		// Sinks
		ProvideReporters,

		ProvideBatchProcessor,
		ProvideApp,
	)
	return nil, nil, nil
}
