package dataset

import (
	"errors"
	"fmt"
)

// Sentinel causes wrapped by DataLoadError.
var (
	// ErrSourceUnreadable is returned when the source cannot be opened or read.
	ErrSourceUnreadable = errors.New("source unreadable")

	// ErrEmptyTable is returned when the source has a header but no rows.
	ErrEmptyTable = errors.New("table has no rows")

	// ErrMissingColumn is returned when a required column is absent.
	ErrMissingColumn = errors.New("missing required column")

	// ErrMalformedValue is returned when a cell cannot be parsed.
	ErrMalformedValue = errors.New("malformed value")

	// ErrOutOfRange is returned when a value violates its stated range.
	ErrOutOfRange = errors.New("value out of range")

	// ErrDuplicateRow is returned when a (country, year) pair repeats.
	ErrDuplicateRow = errors.New("duplicate country/year")

	// ErrInconsistentCode is returned when a country's code changes across
	// years or two countries share a code.
	ErrInconsistentCode = errors.New("inconsistent country code")
)

// DataLoadError reports why a source table was rejected. Line is the
// 1-based source line (CSV) or row number (SQL); zero when not row-specific.
type DataLoadError struct {
	Source string
	Line   int
	Column string
	Err    error
	Detail string
}

func (e *DataLoadError) Error() string {
	msg := fmt.Sprintf("load %s", e.Source)
	if e.Line > 0 {
		msg += fmt.Sprintf(": line %d", e.Line)
	}
	if e.Column != "" {
		msg += fmt.Sprintf(": column %s", e.Column)
	}
	msg += ": " + e.Err.Error()
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

func (e *DataLoadError) Unwrap() error { return e.Err }
