package models

import (
	"errors"
	"fmt"
)

var (
	// ErrOpenInput marks an input file that could not be opened.
	ErrOpenInput = errors.New("open input")
	// ErrReadInput marks an I/O failure from the underlying reader after the
	// file was opened. Over-long lines are not I/O failures; they are skipped.
	ErrReadInput = errors.New("read input")
	// ErrNoData is returned when statistics are requested over zero readings.
	ErrNoData = errors.New("no data to summarize")
	// ErrInvalidWindow is returned for a non-positive trend window.
	ErrInvalidWindow = errors.New("window size must be positive")
)

// DomainError reports a violated precondition of a pure computation.
type DomainError struct {
	Op  string
	Err error
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap returns the sentinel so callers can use errors.Is.
func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a DomainError for op wrapping a sentinel.
func NewDomainError(op string, err error) *DomainError {
	return &DomainError{Op: op, Err: err}
}

// IsFatal reports whether err must stop the whole batch.
func IsFatal(err error) bool {
	return errors.Is(err, ErrOpenInput) || errors.Is(err, ErrReadInput)
}
