package ingest

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SensorStat/internal/domain/models"
)

func TestNormalize(t *testing.T) {
	n, err := NewNormalizer(DefaultBounds())
	require.NoError(t, err)

	tests := []struct {
		field  string
		want   float64
		reason models.SkipReason
	}{
		{"1", 0, models.SkipNone},
		{"99", 1, models.SkipNone},
		{"50", 0.5, models.SkipNone},
		{" 5 ", 4.0 / 98.0, models.SkipNone},
		{"NA", 0, models.SkipMissing},
		{"  NA\r", 0, models.SkipMissing},
		{"na", 0, models.SkipUnparsable},
		{"", 0, models.SkipUnparsable},
		{"12,5", 0, models.SkipUnparsable},
		{"abc", 0, models.SkipUnparsable},
		{"0.999", 0, models.SkipOutOfRange},
		{"150", 0, models.SkipOutOfRange},
		{"-3", 0, models.SkipOutOfRange},
		{"NaN", 0, models.SkipOutOfRange},
		{"Inf", 0, models.SkipOutOfRange},
	}

	for _, tt := range tests {
		got, reason := n.Normalize(tt.field)
		assert.Equal(t, tt.reason, reason, "field %q", tt.field)
		if reason == models.SkipNone {
			assert.InDelta(t, tt.want, got, 1e-12, "field %q", tt.field)
			assert.True(t, got >= 0 && got <= 1)
		}
	}
}

func TestNormalizeCustomDomain(t *testing.T) {
	n, err := NewNormalizer(Bounds{MinVal: -10, MaxVal: 10, AnomalyThreshold: 0.75})
	require.NoError(t, err)

	got, reason := n.Normalize("5")
	require.Equal(t, models.SkipNone, reason)
	assert.InDelta(t, 0.75, got, 1e-12)
	assert.False(t, n.IsAnomaly(got))
	assert.True(t, n.IsAnomaly(math.Nextafter(0.75, 1)))
}

func TestBoundsValidate(t *testing.T) {
	assert.NoError(t, DefaultBounds().Validate())
	assert.Error(t, Bounds{MinVal: 5, MaxVal: 5, AnomalyThreshold: 0.9}.Validate())
	assert.Error(t, Bounds{MinVal: 9, MaxVal: 1, AnomalyThreshold: 0.9}.Validate())
	assert.Error(t, Bounds{MinVal: 1, MaxVal: 99, AnomalyThreshold: 1.5}.Validate())

	_, err := NewNormalizer(Bounds{MinVal: 1, MaxVal: 1})
	assert.Error(t, err)
}
