package analytics

import "SensorStat/internal/domain/models"

// ClassifyTrend compares consecutive moving averages of `window` readings and
// labels the series by whichever direction occurred more often.
//
// A series shorter than the window is evaluated as a single window. Its
// average is divided by window, not by len(data), unless shrink is set. A
// single window has nothing to compare against, so the result is stable
// either way.
func ClassifyTrend(data []float64, window int, shrink bool) (models.Trend, error) {
	if window <= 0 {
		return "", models.NewDomainError("trend", models.ErrInvalidWindow)
	}
	n := len(data)
	if n == 0 {
		return "", models.NewDomainError("trend", models.ErrNoData)
	}

	prefix := make([]float64, n+1)
	for i, x := range data {
		prefix[i+1] = prefix[i] + x
	}

	divisor := float64(window)
	if shrink && n < window {
		divisor = float64(n)
	}

	last := n - window
	if last < 0 {
		last = 0
	}

	increasing, decreasing := 0, 0
	var prev float64
	for i := 0; i <= last; i++ {
		end := i + window
		if end > n {
			end = n
		}
		cur := (prefix[end] - prefix[i]) / divisor
		if i > 0 {
			switch {
			case cur > prev:
				increasing++
			case cur < prev:
				decreasing++
			}
		}
		prev = cur
	}

	switch {
	case increasing > decreasing:
		return models.TrendIncreasing, nil
	case decreasing > increasing:
		return models.TrendDecreasing, nil
	default:
		return models.TrendStable, nil
	}
}
