package repository

import (
	"context"

	"SensorStat/internal/domain/models"
)

// Reporter delivers a finished FileReport somewhere: a terminal, a topic, a table.
type Reporter interface {
	Name() string
	Report(ctx context.Context, r *models.FileReport) error
	Close() error
}

// Metrics records pipeline observations.
type Metrics interface {
	RecordFile(result string)
	RecordRows(outcome string, n int)
	RecordSummary(file string, mean, stdDev float64, anomalies int)
	RecordLatency(stage string, seconds float64)
	RecordSinkError(sink string)
}
