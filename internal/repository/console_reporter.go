package repository

import (
	"context"
	"fmt"
	"io"
	"strings"

	"SensorStat/internal/domain/models"
	"SensorStat/internal/domain/repository"
)

// ConsoleReporter prints the human-readable per-file result block.
type ConsoleReporter struct {
	w io.Writer
}

// NewConsoleReporter creates a reporter writing to w.
func NewConsoleReporter(w io.Writer) repository.Reporter {
	return &ConsoleReporter{w: w}
}

func (c *ConsoleReporter) Name() string { return "console" }

func (c *ConsoleReporter) Report(_ context.Context, r *models.FileReport) error {
	var b strings.Builder
	fmt.Fprintf(&b, "--- Results for %s ---\n", r.File)
	if r.Summary != nil {
		fmt.Fprintf(&b, "Mean: %.5f\n", r.Summary.Mean)
		fmt.Fprintf(&b, "Variance: %.5f\n", r.Summary.Variance)
		fmt.Fprintf(&b, "Standard Deviation: %.5f\n", r.Summary.StdDev)
		fmt.Fprintf(&b, "Trend: %s\n", r.Summary.Trend)
	} else {
		b.WriteString("No valid readings\n")
	}
	fmt.Fprintf(&b, "Anomalies detected: %d\n", r.Anomalies)
	fmt.Fprintf(&b, "Processing time: %.5f seconds\n", r.IngestDuration.Seconds())
	fmt.Fprintf(&b, "Calculation time: %.5f seconds\n", r.ComputeDuration.Seconds())
	fmt.Fprintf(&b, "Total time: %.5f seconds\n\n", r.TotalDuration().Seconds())

	_, err := io.WriteString(c.w, b.String())
	return err
}

func (c *ConsoleReporter) Close() error { return nil }
