package ingest

import (
	"fmt"
	"strconv"
	"strings"

	"SensorStat/internal/domain/models"
)

const (
	DefaultMinVal           = 1.0
	DefaultMaxVal           = 99.0
	DefaultAnomalyThreshold = 0.9

	missingMarker = "NA"
)

// Bounds is the accepted raw domain and the normalized anomaly cut-off.
type Bounds struct {
	MinVal           float64
	MaxVal           float64
	AnomalyThreshold float64
}

// DefaultBounds returns the stock sensor domain [1, 99] with threshold 0.9.
func DefaultBounds() Bounds {
	return Bounds{
		MinVal:           DefaultMinVal,
		MaxVal:           DefaultMaxVal,
		AnomalyThreshold: DefaultAnomalyThreshold,
	}
}

// Validate checks that the domain is non-empty and the threshold is a normalized value.
func (b Bounds) Validate() error {
	if !(b.MinVal < b.MaxVal) {
		return fmt.Errorf("min_val (%g) must be less than max_val (%g)", b.MinVal, b.MaxVal)
	}
	if b.AnomalyThreshold < 0 || b.AnomalyThreshold > 1 {
		return fmt.Errorf("anomaly_threshold must be within [0,1], got %g", b.AnomalyThreshold)
	}
	return nil
}

// Normalizer maps raw value fields into [0,1].
type Normalizer struct {
	bounds Bounds
	span   float64
}

// NewNormalizer validates b and builds a Normalizer for it.
func NewNormalizer(b Bounds) (*Normalizer, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return &Normalizer{bounds: b, span: b.MaxVal - b.MinVal}, nil
}

// Normalize applies the acceptance guards to one value field. It returns the
// normalized value and models.SkipNone, or the reason the field was dropped.
func (n *Normalizer) Normalize(field string) (float64, models.SkipReason) {
	field = strings.TrimSpace(field)
	if field == missingMarker {
		return 0, models.SkipMissing
	}
	v, err := strconv.ParseFloat(field, 64)
	if err != nil {
		return 0, models.SkipUnparsable
	}
	// NaN fails both comparisons.
	if !(v >= n.bounds.MinVal && v <= n.bounds.MaxVal) {
		return 0, models.SkipOutOfRange
	}
	return (v - n.bounds.MinVal) / n.span, models.SkipNone
}

// IsAnomaly reports whether a normalized value exceeds the threshold.
func (n *Normalizer) IsAnomaly(t float64) bool {
	return t > n.bounds.AnomalyThreshold
}
