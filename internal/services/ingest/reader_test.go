package ingest

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SensorStat/internal/domain/models"
)

func newIngestor(t *testing.T, opts ...Option) *CSVIngestor {
	t.Helper()
	c, err := NewCSVIngestor(DefaultBounds(), opts...)
	require.NoError(t, err)
	return c
}

func TestIngestAcceptedValues(t *testing.T) {
	in := "sensor_id,timestamp,value\n" +
		"s1,2024-01-01T00:00:00Z,5\n" +
		"s1,2024-01-01T00:00:01Z,50\n" +
		"s1,2024-01-01T00:00:02Z,95\n"

	res, err := newIngestor(t).Ingest(context.Background(), strings.NewReader(in))
	require.NoError(t, err)

	require.Len(t, res.Readings, 3)
	assert.InDelta(t, 0.04082, res.Readings[0], 1e-5)
	assert.InDelta(t, 0.5, res.Readings[1], 1e-12)
	assert.InDelta(t, 0.95918, res.Readings[2], 1e-5)
	assert.Equal(t, 1, res.Anomalies)
	assert.Equal(t, 3, res.Rows)
	assert.Equal(t, 3, res.Accepted())
}

func TestIngestDropsBadRowsSilently(t *testing.T) {
	in := strings.Join([]string{
		"whatever header, even with,commas,and,more",
		"s1,t,NA",
		"s1,t,150",
		"s1,t,0.5",
		"s1,t,abc",
		"only,two",
		"",
		"s1,t,\xff\xfe",
		"s1,t,\t42\t",
		"s1,t,97,extra,columns",
		"s\xff,t,30",
	}, "\n")

	res, err := newIngestor(t).Ingest(context.Background(), strings.NewReader(in))
	require.NoError(t, err)

	require.Len(t, res.Readings, 1)
	assert.InDelta(t, 41.0/98.0, res.Readings[0], 1e-12)
	assert.Equal(t, 0, res.Anomalies)

	assert.Equal(t, 10, res.Rows)
	assert.Equal(t, 1, res.Skipped[models.SkipMissing])
	assert.Equal(t, 2, res.Skipped[models.SkipOutOfRange])
	assert.Equal(t, 2, res.Skipped[models.SkipUnparsable])
	assert.Equal(t, 4, res.Skipped[models.SkipMalformed])

	total := res.Accepted()
	for _, n := range res.Skipped {
		total += n
	}
	assert.Equal(t, res.Rows, total)
}

func TestIngestHeaderOnlyAndEmpty(t *testing.T) {
	res, err := newIngestor(t).Ingest(context.Background(), strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, res.Readings)

	res, err = newIngestor(t).Ingest(context.Background(), strings.NewReader("s1,t,50\n"))
	require.NoError(t, err)
	assert.Empty(t, res.Readings, "first line is a header regardless of content")
	assert.Equal(t, 0, res.Rows)
}

func TestIngestAnomalyCountMatchesReadings(t *testing.T) {
	var b strings.Builder
	b.WriteString("id,ts,value\n")
	for v := 0; v <= 120; v++ {
		b.WriteString("x,y," + strconv.Itoa(v) + "\n")
	}

	res, err := newIngestor(t).Ingest(context.Background(), strings.NewReader(b.String()))
	require.NoError(t, err)

	want := 0
	for _, r := range res.Readings {
		assert.True(t, r >= 0 && r <= 1)
		if r > DefaultAnomalyThreshold {
			want++
		}
	}
	assert.Equal(t, want, res.Anomalies)
	assert.Len(t, res.Readings, 99)
}

func TestIngestThirdFieldKeepsTrailingColumns(t *testing.T) {
	in := "h\ns1,t,97,extra\ns1,t,97\n"

	res, err := newIngestor(t).Ingest(context.Background(), strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, res.Readings, 1)
	assert.InDelta(t, 96.0/98.0, res.Readings[0], 1e-12)
	assert.Equal(t, 1, res.Skipped[models.SkipUnparsable])
}

func TestIngestSkipsLineTooLong(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"middle", "h\na,b,50\na,b," + strings.Repeat("9", 128) + "\na,b,60\n"},
		{"crlf", "h\r\na,b,50\r\na,b," + strings.Repeat("9", 128) + "\r\na,b,60\r\n"},
		{"last without newline", "h\na,b,50\na,b,60\na,b," + strings.Repeat("9", 128)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := newIngestor(t, WithMaxLineBytes(64)).Ingest(context.Background(), strings.NewReader(tt.in))
			require.NoError(t, err)
			require.Len(t, res.Readings, 2)
			assert.InDelta(t, 49.0/98.0, res.Readings[0], 1e-12)
			assert.InDelta(t, 59.0/98.0, res.Readings[1], 1e-12)
			assert.Equal(t, 3, res.Rows)
			assert.Equal(t, 1, res.Skipped[models.SkipMalformed])
		})
	}
}

func TestIngestLineAtLimitIsParsed(t *testing.T) {
	line := "a,b," + strings.Repeat(" ", 60) + "50"
	require.Len(t, line, 66)

	res, err := newIngestor(t, WithMaxLineBytes(66)).Ingest(context.Background(), strings.NewReader("h\n"+line+"\n"))
	require.NoError(t, err)
	require.Len(t, res.Readings, 1)

	res, err = newIngestor(t, WithMaxLineBytes(65)).Ingest(context.Background(), strings.NewReader("h\n"+line+"\n"))
	require.NoError(t, err)
	assert.Empty(t, res.Readings)
	assert.Equal(t, 1, res.Skipped[models.SkipMalformed])
}

func TestIngestReadFailure(t *testing.T) {
	r := io.MultiReader(strings.NewReader("h\na,b,50\n"), iotest.ErrReader(errors.New("disk gone")))

	_, err := newIngestor(t).Ingest(context.Background(), r)
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrReadInput))
}

func TestIngestFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "small.csv")
	require.NoError(t, os.WriteFile(path, []byte("id,ts,value\r\na,b,50\r\na,b,NA\r\n"), 0o644))

	res, err := newIngestor(t).IngestFile(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, res.Readings, 1)
	assert.InDelta(t, 0.5, res.Readings[0], 1e-12)

	_, err = newIngestor(t).IngestFile(context.Background(), filepath.Join(dir, "missing.csv"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrOpenInput))
	assert.True(t, models.IsFatal(err))
}

func TestIngestHonoursCancellation(t *testing.T) {
	var b strings.Builder
	b.WriteString("h\n")
	for i := 0; i < 3*cancelCheckEvery; i++ {
		b.WriteString("a,b,50\n")
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newIngestor(t).Ingest(ctx, strings.NewReader(b.String()))
	assert.ErrorIs(t, err, context.Canceled)
}
