package models

// SkipReason classifies why a data row produced no reading.
type SkipReason string

const (
	SkipNone       SkipReason = ""             // row accepted
	SkipMalformed  SkipReason = "malformed"    // not text, or no value field
	SkipMissing    SkipReason = "missing"      // literal NA marker
	SkipUnparsable SkipReason = "unparsable"   // value is not a number
	SkipOutOfRange SkipReason = "out_of_range" // outside [MinVal, MaxVal]
)

// SkipReasons lists every rejection outcome in a stable order.
var SkipReasons = []SkipReason{SkipMalformed, SkipMissing, SkipUnparsable, SkipOutOfRange}

// IngestResult is the output of one ingestion pass over a file.
type IngestResult struct {
	Readings  []float64 // normalized values in [0,1], input order
	Anomalies int       // readings above the anomaly threshold
	Rows      int       // data rows seen, header excluded
	Skipped   map[SkipReason]int
}

// NewIngestResult returns an empty result with its counters allocated.
func NewIngestResult() *IngestResult {
	return &IngestResult{Skipped: make(map[SkipReason]int, len(SkipReasons))}
}

// Accepted is the number of rows that produced a reading.
func (r *IngestResult) Accepted() int {
	return len(r.Readings)
}
