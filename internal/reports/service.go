// internal/reports/service.go
package reports

import (
	"context"
	"errors"
)

var (
	// ErrInvalidMonth is returned when the month is outside 1..12.
	ErrInvalidMonth = errors.New("month must be between 1 and 12")
	// ErrNoMatchingRecords is returned when no returned loan falls in the
	// requested period; no file is produced.
	ErrNoMatchingRecords = errors.New("no returned loans for the requested period")
)

// Export describes a generated report file.
type Export struct {
	Filename string `json:"filename"`
	Records  int    `json:"records"`
}

// Service defines the interface for the report exporter.
type Service interface {
	// ExportMonthly writes the returned loans of one calendar month to a
	// CSV file named deterministically from year and month.
	ExportMonthly(ctx context.Context, year string, month int) (*Export, error)
}
