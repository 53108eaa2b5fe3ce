package repository

import (
	"errors"
	"fmt"
)

// Sentinel kinds for roster artifact errors.
var (
	// ErrFormat means the artifact exists but is not a valid roster.
	ErrFormat = errors.New("malformed roster artifact")
	// ErrIO means the artifact could not be read or written.
	ErrIO = errors.New("roster artifact i/o failed")
)

// RowError reports a malformed data row. Record is 1-based and counts the
// header, so it matches the line a spreadsheet shows for single-line rows.
type RowError struct {
	Record int
	Reason string
}

func (e *RowError) Error() string {
	return fmt.Sprintf("%s: record %d: %s", ErrFormat, e.Record, e.Reason)
}

// Unwrap lets errors.Is(err, ErrFormat) match row errors.
func (e *RowError) Unwrap() error { return ErrFormat }
