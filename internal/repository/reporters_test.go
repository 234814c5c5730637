package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SensorStat/internal/domain/models"
	"SensorStat/pkg/cache"
)

// mapCache is a cache.Service kept in a map, storing values as JSON.
type mapCache struct {
	data map[string][]byte
	ttl  map[string]time.Duration
}

func newMapCache() *mapCache {
	return &mapCache{data: map[string][]byte{}, ttl: map[string]time.Duration{}}
}

func (m *mapCache) Set(_ context.Context, key string, value interface{}, expiration time.Duration) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.data[key] = b
	m.ttl[key] = expiration
	return nil
}

func (m *mapCache) Get(_ context.Context, key string, dest interface{}) error {
	b, ok := m.data[key]
	if !ok {
		return cache.ErrCacheMiss
	}
	return json.Unmarshal(b, dest)
}

func (m *mapCache) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(m.data, k)
		delete(m.ttl, k)
	}
	return nil
}

func (m *mapCache) Exists(_ context.Context, keys ...string) (bool, error) {
	for _, k := range keys {
		if _, ok := m.data[k]; !ok {
			return false, nil
		}
	}
	return len(keys) > 0, nil
}

func (m *mapCache) Close() error { return nil }

func sampleReport() *models.FileReport {
	return &models.FileReport{
		File: "small_sensor_data_2024.csv",
		Summary: &models.Summary{
			Mean:     0.5,
			Variance: 0.12345678,
			StdDev:   0.35136,
			Trend:    models.TrendStable,
		},
		Anomalies:       1,
		Accepted:        3,
		Rows:            4,
		Skipped:         map[models.SkipReason]int{models.SkipMissing: 1},
		IngestDuration:  1500 * time.Millisecond,
		ComputeDuration: 250 * time.Millisecond,
		ProcessedAt:     time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestConsoleReporterFormat(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewConsoleReporter(&buf).Report(context.Background(), sampleReport()))

	want := strings.Join([]string{
		"--- Results for small_sensor_data_2024.csv ---",
		"Mean: 0.50000",
		"Variance: 0.12346",
		"Standard Deviation: 0.35136",
		"Trend: stable",
		"Anomalies detected: 1",
		"Processing time: 1.50000 seconds",
		"Calculation time: 0.25000 seconds",
		"Total time: 1.75000 seconds",
		"",
		"",
	}, "\n")
	assert.Equal(t, want, buf.String())
}

func TestConsoleReporterNoReadings(t *testing.T) {
	r := sampleReport()
	r.Summary = nil
	r.Anomalies = 0

	var buf bytes.Buffer
	require.NoError(t, NewConsoleReporter(&buf).Report(context.Background(), r))
	assert.Contains(t, buf.String(), "No valid readings\n")
	assert.NotContains(t, buf.String(), "Mean:")
	assert.NotContains(t, buf.String(), "NaN")
}

type fakePublisher struct {
	topic  string
	key    []byte
	value  interface{}
	err    error
	closed bool
}

func (f *fakePublisher) Publish(_ context.Context, topic string, key []byte, value interface{}) error {
	f.topic, f.key, f.value = topic, key, value
	return f.err
}

func (f *fakePublisher) Close() error {
	f.closed = true
	return nil
}

func TestKafkaReporter(t *testing.T) {
	pub := &fakePublisher{}
	rep := NewKafkaReporter(pub, "sensorstat.summaries")
	require.NoError(t, rep.Report(context.Background(), sampleReport()))

	assert.Equal(t, "sensorstat.summaries", pub.topic)
	assert.Equal(t, []byte("small_sensor_data_2024.csv"), pub.key)

	b, err := json.Marshal(pub.value)
	require.NoError(t, err)
	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &got))
	assert.Equal(t, 0.5, got["mean"])
	assert.Equal(t, "stable", got["trend"])
	assert.EqualValues(t, 1, got["anomalies"])
	assert.EqualValues(t, 1.5, got["ingest_seconds"])

	require.NoError(t, rep.Close())
	assert.True(t, pub.closed)
}

func TestKafkaReporterPropagatesErrors(t *testing.T) {
	pub := &fakePublisher{err: errors.New("broker down")}
	err := NewKafkaReporter(pub, "t").Report(context.Background(), sampleReport())
	assert.EqualError(t, err, "broker down")
}

func TestSummaryMessageWithoutSummary(t *testing.T) {
	r := sampleReport()
	r.Summary = nil
	b, err := json.Marshal(newSummaryMessage(r))
	require.NoError(t, err)
	assert.Contains(t, string(b), `"mean":null`)
	assert.NotContains(t, string(b), `"trend"`)
}

func TestRedisReporterStoresLatestSummary(t *testing.T) {
	ctx := context.Background()
	c := newMapCache()
	rep := NewRedisReporter(c, time.Hour)

	first := sampleReport()
	require.NoError(t, rep.Report(ctx, first))
	second := sampleReport()
	second.Summary = &models.Summary{Mean: 0.7, Trend: models.TrendIncreasing}
	require.NoError(t, rep.Report(ctx, second))

	var got summaryMessage
	require.NoError(t, c.Get(ctx, SummaryKey(first.File), &got))
	require.NotNil(t, got.Mean)
	assert.Equal(t, 0.7, *got.Mean)
	assert.Equal(t, models.TrendIncreasing, got.Trend)
	assert.Len(t, c.data, 1)
	assert.Equal(t, time.Hour, c.ttl[SummaryKey(first.File)])
}

func TestSummarySchema(t *testing.T) {
	stmts := SummarySchema("sensorstat", "sensor_summaries")
	require.Len(t, stmts, 2)
	assert.Contains(t, stmts[0], "CREATE DATABASE IF NOT EXISTS sensorstat")
	assert.Contains(t, stmts[1], "CREATE TABLE IF NOT EXISTS sensorstat.sensor_summaries")
	assert.Contains(t, stmts[1], "ENGINE = MergeTree")
}
