package repository

import (
	"context"

	"SensorStat/internal/domain/models"
	"SensorStat/internal/domain/repository"
)

// MessagePublisher is the slice of pkg/kafka.Producer the reporter needs.
type MessagePublisher interface {
	Publish(ctx context.Context, topic string, key []byte, value interface{}) error
	Close() error
}

// KafkaReporter publishes each report as JSON keyed by file name.
type KafkaReporter struct {
	producer MessagePublisher
	topic    string
}

// NewKafkaReporter creates Kafka reporter.
func NewKafkaReporter(producer MessagePublisher, topic string) repository.Reporter {
	return &KafkaReporter{producer: producer, topic: topic}
}

func (k *KafkaReporter) Name() string { return "kafka" }

func (k *KafkaReporter) Report(ctx context.Context, r *models.FileReport) error {
	return k.producer.Publish(ctx, k.topic, []byte(r.File), newSummaryMessage(r))
}

func (k *KafkaReporter) Close() error {
	if k.producer != nil {
		return k.producer.Close()
	}
	return nil
}

// summaryMessage is the wire form shared by the kafka and redis sinks.
// Durations are seconds so consumers need no Go-specific decoding.
type summaryMessage struct {
	File          string                    `json:"file"`
	Mean          *float64                  `json:"mean"`
	Variance      *float64                  `json:"variance"`
	StdDev        *float64                  `json:"std_dev"`
	Trend         models.Trend              `json:"trend,omitempty"`
	Anomalies     int                       `json:"anomalies"`
	Accepted      int                       `json:"accepted"`
	Rows          int                       `json:"rows"`
	Skipped       map[models.SkipReason]int `json:"skipped,omitempty"`
	IngestSecs    float64                   `json:"ingest_seconds"`
	ComputeSecs   float64                   `json:"compute_seconds"`
	ProcessedAtMS int64                     `json:"processed_at_ms"`
}

func newSummaryMessage(r *models.FileReport) summaryMessage {
	m := summaryMessage{
		File:          r.File,
		Anomalies:     r.Anomalies,
		Accepted:      r.Accepted,
		Rows:          r.Rows,
		Skipped:       r.Skipped,
		IngestSecs:    r.IngestDuration.Seconds(),
		ComputeSecs:   r.ComputeDuration.Seconds(),
		ProcessedAtMS: r.ProcessedAt.UnixMilli(),
	}
	if s := r.Summary; s != nil {
		m.Mean, m.Variance, m.StdDev = &s.Mean, &s.Variance, &s.StdDev
		m.Trend = s.Trend
	}
	return m
}
