package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements repository.Metrics on a private Prometheus registry.
// A batch run has no scrape endpoint, so the registry is flushed to a
// node_exporter textfile at the end instead.
type Recorder struct {
	registry   *prometheus.Registry
	files      *prometheus.CounterVec
	rows       *prometheus.CounterVec
	anomalies  *prometheus.GaugeVec
	mean       *prometheus.GaugeVec
	stdDev     *prometheus.GaugeVec
	latency    *prometheus.HistogramVec
	sinkErrors *prometheus.CounterVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		files: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sensorstat_files_processed_total",
				Help: "Input files processed, by outcome",
			},
			[]string{"result"},
		),
		rows: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sensorstat_rows_total",
				Help: "Data rows seen, by outcome",
			},
			[]string{"outcome"},
		),
		anomalies: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "sensorstat_anomalies",
				Help: "Normalized readings above the anomaly threshold in the last run of a file",
			},
			[]string{"file"},
		),
		mean: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "sensorstat_reading_mean",
				Help: "Mean of the normalized readings of a file",
			},
			[]string{"file"},
		),
		stdDev: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "sensorstat_reading_stddev",
				Help: "Population standard deviation of the normalized readings of a file",
			},
			[]string{"file"},
		),
		latency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "sensorstat_stage_duration_seconds",
				Help:    "Duration of pipeline stages in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"stage"},
		),
		sinkErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sensorstat_sink_errors_total",
				Help: "Reports a sink failed to deliver",
			},
			[]string{"sink"},
		),
	}
}

// Registry exposes the underlying registry so other collectors can join it.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// RecordFile counts a processed file by result (ok, empty, error).
func (r *Recorder) RecordFile(result string) {
	r.files.WithLabelValues(result).Inc()
}

// RecordRows adds n rows under outcome.
func (r *Recorder) RecordRows(outcome string, n int) {
	if n <= 0 {
		return
	}
	r.rows.WithLabelValues(outcome).Add(float64(n))
}

// RecordSummary publishes the per-file statistics gauges.
func (r *Recorder) RecordSummary(file string, mean, stdDev float64, anomalies int) {
	r.mean.WithLabelValues(file).Set(mean)
	r.stdDev.WithLabelValues(file).Set(stdDev)
	r.anomalies.WithLabelValues(file).Set(float64(anomalies))
}

// RecordLatency records stage latency in seconds.
func (r *Recorder) RecordLatency(stage string, seconds float64) {
	r.latency.WithLabelValues(stage).Observe(seconds)
}

// RecordSinkError counts a failed delivery to sink.
func (r *Recorder) RecordSinkError(sink string) {
	r.sinkErrors.WithLabelValues(sink).Inc()
}

// WriteTextfile writes the registry in the text exposition format.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
