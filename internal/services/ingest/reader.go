package ingest

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	"SensorStat/internal/domain/models"
)

// DefaultMaxLineBytes bounds a single input line.
const DefaultMaxLineBytes = 4 * 1024 * 1024

// valueField is the zero-based column holding the reading.
const valueField = 2

// cancelCheckEvery is how many rows pass between context checks.
const cancelCheckEvery = 1024

// Option configures a CSVIngestor.
type Option func(*CSVIngestor)

// WithMaxLineBytes sets the longest line that is still parsed.
func WithMaxLineBytes(n int) Option {
	return func(c *CSVIngestor) {
		if n > 0 {
			c.maxLine = n
		}
	}
}

// CSVIngestor reads `<id>,<timestamp>,<value>` files with a header line.
// Bad rows are dropped silently and only counted.
type CSVIngestor struct {
	norm    *Normalizer
	maxLine int
}

// NewCSVIngestor creates an ingestor for the given bounds.
func NewCSVIngestor(b Bounds, opts ...Option) (*CSVIngestor, error) {
	norm, err := NewNormalizer(b)
	if err != nil {
		return nil, fmt.Errorf("ingest bounds: %w", err)
	}
	c := &CSVIngestor{norm: norm, maxLine: DefaultMaxLineBytes}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// IngestFile opens path and ingests it. An open failure wraps models.ErrOpenInput.
func (c *CSVIngestor) IngestFile(ctx context.Context, path string) (*models.IngestResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w %s: %v", models.ErrOpenInput, path, err)
	}
	defer f.Close()

	res, err := c.Ingest(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return res, nil
}

// Ingest consumes r line by line. The first line is always treated as a header.
// A line longer than the configured maximum is consumed and counted as malformed.
func (c *CSVIngestor) Ingest(ctx context.Context, r io.Reader) (*models.IngestResult, error) {
	size := 64 * 1024
	if c.maxLine < size {
		size = c.maxLine
	}
	lr := &lineReader{br: bufio.NewReaderSize(r, size), max: c.maxLine}

	res := models.NewIngestResult()

	// header
	if _, _, err := lr.next(); err != nil {
		if err == io.EOF {
			return res, nil
		}
		return nil, fmt.Errorf("%w: header: %v", models.ErrReadInput, err)
	}

	for {
		line, tooLong, err := lr.next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", models.ErrReadInput, res.Rows+2, err)
		}

		res.Rows++
		if res.Rows%cancelCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		if tooLong {
			res.Skipped[models.SkipMalformed]++
			continue
		}
		t, reason := c.parseLine(line)
		if reason != models.SkipNone {
			res.Skipped[reason]++
			continue
		}
		res.Readings = append(res.Readings, t)
		if c.norm.IsAnomaly(t) {
			res.Anomalies++
		}
	}
	return res, nil
}

// parseLine splits into at most three fields and normalizes the third, so
// anything after the second comma belongs to the value.
func (c *CSVIngestor) parseLine(line []byte) (float64, models.SkipReason) {
	if !utf8.Valid(line) {
		return 0, models.SkipMalformed
	}
	parts := bytes.SplitN(line, []byte{','}, valueField+1)
	if len(parts) <= valueField {
		return 0, models.SkipMalformed
	}
	return c.norm.Normalize(string(parts[valueField]))
}

// lineReader yields lines without their \n or \r\n terminator. The returned
// slice is only valid until the next call.
type lineReader struct {
	br  *bufio.Reader
	buf []byte
	max int
}

// next returns the next line. When the line exceeds max bytes the rest of it
// is discarded and tooLong is set. io.EOF is returned once no line remains.
func (lr *lineReader) next() (line []byte, tooLong bool, err error) {
	lr.buf = lr.buf[:0]
	for {
		chunk, rerr := lr.br.ReadSlice('\n')
		if !tooLong {
			lr.buf = append(lr.buf, chunk...)
			if len(lr.buf) > lr.max+2 {
				tooLong = true
				lr.buf = lr.buf[:0]
			}
		}

		switch rerr {
		case nil:
		case bufio.ErrBufferFull:
			continue
		case io.EOF:
			if len(lr.buf) == 0 && !tooLong {
				return nil, false, io.EOF
			}
		default:
			return nil, false, rerr
		}

		line = bytes.TrimSuffix(lr.buf, []byte{'\n'})
		line = bytes.TrimSuffix(line, []byte{'\r'})
		if len(line) > lr.max {
			tooLong = true
		}
		return line, tooLong, nil
	}
}
