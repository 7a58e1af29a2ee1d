package primary

import (
	"context"
	"io"
)

// ImportService turns tabular rows into reports.
type ImportService interface {
	// ImportRows maps already decoded rows (header row first) into reports
	// and submits them through the ledger. Rows missing a date or a site are
	// skipped.
	ImportRows(ctx context.Context, rows [][]string) (*ImportResult, error)

	// ImportFile decodes a .csv, .xls or .xlsx file and imports its rows.
	ImportFile(ctx context.Context, path string) (*ImportResult, error)
}

// ImportResult contains the counts of an import run.
type ImportResult struct {
	Imported int
	Skipped  int
}

// ExportService writes the cached reports as a table.
type ExportService interface {
	// Export writes every report in the given format ("csv" or "xlsx").
	Export(ctx context.Context, format string, w io.Writer) error

	// Upload exports and stores the file remotely, returning its location.
	Upload(ctx context.Context, format string) (string, error)
}
