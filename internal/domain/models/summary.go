package models

import "time"

// Trend is the qualitative direction of consecutive window averages.
type Trend string

const (
	TrendIncreasing Trend = "increasing"
	TrendDecreasing Trend = "decreasing"
	TrendStable     Trend = "stable"
)

// Summary holds the aggregate statistics of a normalized series.
type Summary struct {
	Mean     float64 `json:"mean"`
	Variance float64 `json:"variance"` // population variance
	StdDev   float64 `json:"std_dev"`
	Trend    Trend   `json:"trend"`
}

// FileReport is everything a reporter receives about one processed file.
// Summary is nil when the file produced no readings.
type FileReport struct {
	File            string             `json:"file"`
	Summary         *Summary           `json:"summary,omitempty"`
	Anomalies       int                `json:"anomalies"`
	Accepted        int                `json:"accepted"`
	Rows            int                `json:"rows"`
	Skipped         map[SkipReason]int `json:"skipped,omitempty"`
	IngestDuration  time.Duration      `json:"ingest_duration"`
	ComputeDuration time.Duration      `json:"compute_duration"`
	ProcessedAt     time.Time          `json:"processed_at"`
}

// TotalDuration is ingest plus compute time.
func (r *FileReport) TotalDuration() time.Duration {
	return r.IngestDuration + r.ComputeDuration
}
