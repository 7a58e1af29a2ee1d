package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/thiagorusso-10/contagemdeculto/internal/core/tabular"
	"github.com/thiagorusso-10/contagemdeculto/internal/ports/primary"
)

// TransferAdapter drives spreadsheet import and export.
type TransferAdapter struct {
	importer primary.ImportService
	exporter primary.ExportService
	out      io.Writer
}

// NewTransferAdapter creates a new TransferAdapter.
func NewTransferAdapter(importer primary.ImportService, exporter primary.ExportService, out io.Writer) *TransferAdapter {
	return &TransferAdapter{
		importer: importer,
		exporter: exporter,
		out:      out,
	}
}

// Import reads path and prints the counts. A partial import is reported as
// a warning, not a failure.
func (a *TransferAdapter) Import(ctx context.Context, path string) (*primary.ImportResult, error) {
	result, err := a.importer.ImportFile(ctx, path)

	var partialErr *tabular.PartialImportError
	switch {
	case errors.As(err, &partialErr):
		fmt.Fprintf(a.out, "%s Imported %d reports, skipped %d rows\n",
			color.New(color.FgYellow).Sprint("!"), partialErr.Imported, partialErr.Skipped)
		return result, nil
	case err != nil:
		return result, fmt.Errorf("failed to import %s: %w", path, err)
	}

	fmt.Fprintf(a.out, "✓ Imported %d reports\n", result.Imported)
	return result, nil
}

// Export writes the report table to w.
func (a *TransferAdapter) Export(ctx context.Context, format string, w io.Writer) error {
	if err := a.exporter.Export(ctx, format, w); err != nil {
		return fmt.Errorf("failed to export: %w", err)
	}
	return nil
}

// Upload exports to the configured bucket and prints where it went.
func (a *TransferAdapter) Upload(ctx context.Context, format string) (string, error) {
	location, err := a.exporter.Upload(ctx, format)
	if err != nil {
		return "", err
	}
	fmt.Fprintf(a.out, "✓ Export uploaded to %s\n", location)
	return location, nil
}
