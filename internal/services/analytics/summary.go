package analytics

import (
	"math"

	"SensorStat/internal/domain/models"
)

// DefaultWindowSize is the number of readings per moving-average window.
const DefaultWindowSize = 100

// Options tunes the statistics engine.
type Options struct {
	WindowSize int
	// ShrinkPartialWindow divides a short series by its own length instead of
	// WindowSize when fewer than WindowSize readings exist.
	ShrinkPartialWindow bool
}

// Engine computes summaries with fixed options. It holds no state between calls.
type Engine struct {
	opts Options
}

// NewEngine creates an Engine, falling back to DefaultWindowSize for a zero window.
func NewEngine(opts Options) *Engine {
	if opts.WindowSize == 0 {
		opts.WindowSize = DefaultWindowSize
	}
	return &Engine{opts: opts}
}

// Summarize implements service.Summarizer.
func (e *Engine) Summarize(data []float64) (models.Summary, error) {
	return Summarize(data, e.opts)
}

// Summarize computes mean, population variance, standard deviation and trend
// of a non-empty series.
func Summarize(data []float64, opts Options) (models.Summary, error) {
	mean, variance, err := Moments(data)
	if err != nil {
		return models.Summary{}, err
	}
	trend, err := ClassifyTrend(data, opts.WindowSize, opts.ShrinkPartialWindow)
	if err != nil {
		return models.Summary{}, err
	}
	return models.Summary{
		Mean:     mean,
		Variance: variance,
		StdDev:   math.Sqrt(variance),
		Trend:    trend,
	}, nil
}

// Moments returns the mean and population variance of data using one pass of
// running sums. Cancellation can push the variance slightly below zero; it is
// clamped.
func Moments(data []float64) (mean, variance float64, err error) {
	n := len(data)
	if n == 0 {
		return 0, 0, models.NewDomainError("moments", models.ErrNoData)
	}
	sum := 0.0
	sum2 := 0.0
	for _, x := range data {
		sum += x
		sum2 += x * x
	}
	mean = sum / float64(n)
	variance = sum2/float64(n) - mean*mean
	if variance < 0 {
		variance = 0
	}
	return mean, variance, nil
}
