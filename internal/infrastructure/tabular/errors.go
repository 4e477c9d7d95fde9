package tabular

import (
	"errors"
	"fmt"
)

// Common extraction errors
var (
	// ErrEmptyFile is returned when the uploaded file has no content
	ErrEmptyFile = errors.New("file is empty")

	// ErrInvalidEncoding is returned when a CSV file is not valid UTF-8
	ErrInvalidEncoding = errors.New("invalid file encoding")

	// ErrMissingHeader is returned when the file has no header row
	ErrMissingHeader = errors.New("file missing header row")

	// ErrNoDataRows is returned when the file has a header but no data
	ErrNoDataRows = errors.New("file contains no data rows")

	// ErrUnsupportedFormat is returned for file extensions other than
	// .xlsx and .csv
	ErrUnsupportedFormat = errors.New("unsupported file format")
)

// HeaderError reports required columns absent from the header row
type HeaderError struct {
	Missing []string
	Sheet   string
}

// Error implements the error interface
func (e HeaderError) Error() string {
	if e.Sheet != "" {
		return fmt.Sprintf("sheet %q missing required columns: %v", e.Sheet, e.Missing)
	}
	return fmt.Sprintf("missing required columns: %v", e.Missing)
}

// RowError reports a malformed value in a specific data row
type RowError struct {
	Row     int
	Column  string
	Value   string
	Message string
}

// Error implements the error interface
func (e RowError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("row %d, column %q: %s", e.Row, e.Column, e.Message)
	}
	return fmt.Sprintf("row %d: %s", e.Row, e.Message)
}

func newRowError(row int, column, value, message string) RowError {
	return RowError{Row: row, Column: column, Value: value, Message: message}
}
