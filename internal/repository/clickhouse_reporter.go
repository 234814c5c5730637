package repository

import (
	"context"
	"database/sql"
	"fmt"
	"io"

	"SensorStat/internal/domain/models"
	"SensorStat/internal/domain/repository"
)

// SummarySchema returns the DDL for the summaries table.
func SummarySchema(database, table string) []string {
	return []string{
		fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", database),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.%s (
	processed_at DateTime64(3),
	file String,
	rows UInt64,
	accepted UInt64,
	anomalies UInt64,
	mean Nullable(Float64),
	variance Nullable(Float64),
	std_dev Nullable(Float64),
	trend LowCardinality(String),
	ingest_seconds Float64,
	compute_seconds Float64
) ENGINE = MergeTree ORDER BY (file, processed_at)`, database, table),
	}
}

// ClickHouseReporter appends one row per report.
type ClickHouseReporter struct {
	db    *sql.DB
	table string
	owner io.Closer
}

// NewClickHouseReporter creates a reporter writing to the fully qualified
// table. owner, when non-nil, is closed with the reporter.
func NewClickHouseReporter(db *sql.DB, table string, owner io.Closer) repository.Reporter {
	return &ClickHouseReporter{db: db, table: table, owner: owner}
}

func (c *ClickHouseReporter) Name() string { return "clickhouse" }

func (c *ClickHouseReporter) Report(ctx context.Context, r *models.FileReport) error {
	q := fmt.Sprintf("INSERT INTO %s (processed_at, file, rows, accepted, anomalies, mean, variance, std_dev, trend, ingest_seconds, compute_seconds) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)", c.table)

	var mean, variance, stdDev sql.NullFloat64
	trend := ""
	if s := r.Summary; s != nil {
		mean = sql.NullFloat64{Float64: s.Mean, Valid: true}
		variance = sql.NullFloat64{Float64: s.Variance, Valid: true}
		stdDev = sql.NullFloat64{Float64: s.StdDev, Valid: true}
		trend = string(s.Trend)
	}

	_, err := c.db.ExecContext(ctx, q,
		r.ProcessedAt,
		r.File,
		uint64(r.Rows),
		uint64(r.Accepted),
		uint64(r.Anomalies),
		mean,
		variance,
		stdDev,
		trend,
		r.IngestDuration.Seconds(),
		r.ComputeDuration.Seconds(),
	)
	if err != nil {
		return fmt.Errorf("insert summary: %w", err)
	}
	return nil
}

func (c *ClickHouseReporter) Close() error {
	if c.owner != nil {
		return c.owner.Close()
	}
	return nil
}
