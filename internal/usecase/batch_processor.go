package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"SensorStat/internal/domain/models"
	drepo "SensorStat/internal/domain/repository"
	"SensorStat/internal/domain/service"
	"SensorStat/pkg/logger"
)

// File results reported to metrics.
const (
	ResultOK    = "ok"
	ResultEmpty = "empty"
	ResultError = "error"
)

// BatchProcessor runs one file through ingest, statistics and every reporter.
type BatchProcessor struct {
	ingestor    service.Ingestor
	summarizer  service.Summarizer
	reporters   []drepo.Reporter
	metrics     drepo.Metrics
	log         *logger.Logger
	sinkTimeout time.Duration
	now         func() time.Time
}

// NewBatchProcessor creates a new BatchProcessor instance.
func NewBatchProcessor(
	ingestor service.Ingestor,
	summarizer service.Summarizer,
	reporters []drepo.Reporter,
	metrics drepo.Metrics,
	log *logger.Logger,
	sinkTimeout time.Duration,
) *BatchProcessor {
	if log == nil {
		log = logger.Nop()
	}
	return &BatchProcessor{
		ingestor:    ingestor,
		summarizer:  summarizer,
		reporters:   reporters,
		metrics:     metrics,
		log:         log,
		sinkTimeout: sinkTimeout,
		now:         time.Now,
	}
}

// Process ingests path, summarizes it and hands the report to every sink.
// Errors from IngestFile are returned as-is so callers can test them with
// models.IsFatal. Sink failures are logged and never returned.
func (p *BatchProcessor) Process(ctx context.Context, path string) (*models.FileReport, error) {
	log := p.log.With(logger.String("file", path))

	start := p.now()
	res, err := p.ingestor.IngestFile(ctx, path)
	ingestDur := p.now().Sub(start)
	if err != nil {
		p.metrics.RecordFile(ResultError)
		return nil, err
	}
	p.metrics.RecordLatency("ingest", ingestDur.Seconds())
	p.recordRows(res)

	report := &models.FileReport{
		File:           path,
		Anomalies:      res.Anomalies,
		Accepted:       res.Accepted(),
		Rows:           res.Rows,
		Skipped:        res.Skipped,
		IngestDuration: ingestDur,
	}

	if res.Accepted() == 0 {
		// Summarize would fail with ErrNoData; report the empty file instead.
		log.Warn("no valid readings", logger.Int("rows", res.Rows))
		p.metrics.RecordFile(ResultEmpty)
	} else {
		start = p.now()
		summary, err := p.summarizer.Summarize(res.Readings)
		report.ComputeDuration = p.now().Sub(start)
		if err != nil {
			p.metrics.RecordFile(ResultError)
			return nil, fmt.Errorf("summarize %s: %w", path, err)
		}
		report.Summary = &summary
		p.metrics.RecordLatency("compute", report.ComputeDuration.Seconds())
		p.metrics.RecordSummary(path, summary.Mean, summary.StdDev, res.Anomalies)
		p.metrics.RecordFile(ResultOK)
	}
	report.ProcessedAt = p.now()

	log.Debug("rows skipped",
		logger.Int(string(models.SkipMalformed), res.Skipped[models.SkipMalformed]),
		logger.Int(string(models.SkipMissing), res.Skipped[models.SkipMissing]),
		logger.Int(string(models.SkipUnparsable), res.Skipped[models.SkipUnparsable]),
		logger.Int(string(models.SkipOutOfRange), res.Skipped[models.SkipOutOfRange]),
	)
	log.Info("file processed",
		logger.Int("rows", report.Rows),
		logger.Int("accepted", report.Accepted),
		logger.Int("anomalies", report.Anomalies),
		logger.Duration("ingest_ms", report.IngestDuration),
		logger.Duration("compute_ms", report.ComputeDuration),
	)

	p.publish(ctx, log, report)
	return report, nil
}

func (p *BatchProcessor) publish(ctx context.Context, log *logger.Logger, report *models.FileReport) {
	for _, r := range p.reporters {
		sctx, cancel := ctx, context.CancelFunc(func() {})
		if p.sinkTimeout > 0 {
			sctx, cancel = context.WithTimeout(ctx, p.sinkTimeout)
		}
		err := r.Report(sctx, report)
		cancel()
		if err != nil {
			p.metrics.RecordSinkError(r.Name())
			log.Warn("report delivery failed", logger.String("sink", r.Name()), logger.Error(err))
		}
	}
}

func (p *BatchProcessor) recordRows(res *models.IngestResult) {
	p.metrics.RecordRows("accepted", res.Accepted())
	for _, reason := range models.SkipReasons {
		p.metrics.RecordRows(string(reason), res.Skipped[reason])
	}
}

// Close closes every reporter and returns the combined error.
func (p *BatchProcessor) Close() error {
	var errs []error
	for _, r := range p.reporters {
		if err := r.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", r.Name(), err))
		}
	}
	return errors.Join(errs...)
}
