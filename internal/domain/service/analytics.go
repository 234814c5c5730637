package service

import (
	"context"
	"io"

	"SensorStat/internal/domain/models"
)

// Ingestor turns a delimited readings file into a normalized series.
type Ingestor interface {
	IngestFile(ctx context.Context, path string) (*models.IngestResult, error)
	Ingest(ctx context.Context, r io.Reader) (*models.IngestResult, error)
}

// Summarizer computes aggregate statistics over a normalized series.
// It must be a pure function of its input.
type Summarizer interface {
	Summarize(data []float64) (models.Summary, error)
}
