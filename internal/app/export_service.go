package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/thiagorusso-10/contagemdeculto/internal/core/tabular"
	"github.com/thiagorusso-10/contagemdeculto/internal/ports/primary"
	"github.com/thiagorusso-10/contagemdeculto/internal/ports/secondary"
)

// Export formats.
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// ExportServiceImpl implements the ExportService interface.
type ExportServiceImpl struct {
	cache    *EntityCache
	uploader secondary.BlobUploader
	now      func() time.Time
}

var _ primary.ExportService = (*ExportServiceImpl)(nil)

// NewExportService creates a new ExportService. uploader may be nil when no
// remote bucket is configured.
func NewExportService(cache *EntityCache, uploader secondary.BlobUploader) *ExportServiceImpl {
	return &ExportServiceImpl{cache: cache, uploader: uploader, now: time.Now}
}

// Export writes every cached report in format to w.
func (s *ExportServiceImpl) Export(ctx context.Context, format string, w io.Writer) error {
	rows := tabular.BuildExport(s.cache.Snapshot())
	switch format {
	case FormatCSV, "":
		return tabular.WriteCSV(w, rows)
	case FormatXLSX:
		return tabular.WriteXLSX(w, rows)
	default:
		return fmt.Errorf("unknown export format %q (use csv or xlsx)", format)
	}
}

// Upload exports into memory and hands the file to the uploader.
func (s *ExportServiceImpl) Upload(ctx context.Context, format string) (string, error) {
	if s.uploader == nil {
		return "", errors.New("no export bucket configured")
	}
	if format == "" {
		format = FormatCSV
	}

	var buf bytes.Buffer
	if err := s.Export(ctx, format, &buf); err != nil {
		return "", err
	}

	key := ExportFileName(s.now(), format)
	location, err := s.uploader.Upload(ctx, key, contentType(format), buf.Bytes())
	if err != nil {
		return "", fmt.Errorf("failed to upload export: %w", err)
	}
	return location, nil
}

// ExportFileName names an export taken at t.
func ExportFileName(t time.Time, format string) string {
	return fmt.Sprintf("relatorio_cultos_%s.%s", t.Format("2006-01-02"), format)
}

func contentType(format string) string {
	if format == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}
