package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/thiagorusso-10/contagemdeculto/internal/core/attendance"
	"github.com/thiagorusso-10/contagemdeculto/internal/core/tabular"
	"github.com/thiagorusso-10/contagemdeculto/internal/ports/primary"
	"github.com/thiagorusso-10/contagemdeculto/internal/ports/secondary"
)

// ImportServiceImpl implements the ImportService interface.
type ImportServiceImpl struct {
	ledger primary.LedgerService
	source secondary.RowSource
	logger *slog.Logger
}

var _ primary.ImportService = (*ImportServiceImpl)(nil)

// NewImportService creates a new ImportService with injected dependencies.
func NewImportService(ledger primary.LedgerService, source secondary.RowSource, logger *slog.Logger) *ImportServiceImpl {
	if logger == nil {
		logger = slog.Default()
	}
	return &ImportServiceImpl{
		ledger: ledger,
		source: source,
		logger: logger.With(slog.String("component", "import")),
	}
}

// ImportFile decodes path and imports its rows.
func (s *ImportServiceImpl) ImportFile(ctx context.Context, path string) (*primary.ImportResult, error) {
	if s.source == nil {
		return nil, errors.New("no spreadsheet reader configured")
	}
	rows, err := s.source.ReadRows(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return s.ImportRows(ctx, rows)
}

// ImportRows maps rows onto reports and submits them through the ledger,
// then waits for every write to settle.
//
// Sites are matched by name ignoring case and accents; an unmatched site
// falls back to the first site. Presenters are matched the same way; each
// distinct unmatched name is created once. Rows without a presenter use the
// first presenter, or a single "Unknown" presenter when there are none.
func (s *ImportServiceImpl) ImportRows(ctx context.Context, rows [][]string) (*primary.ImportResult, error) {
	parsed, skipped := tabular.ParseRows(rows)
	result := &primary.ImportResult{Skipped: skipped}
	if len(parsed) == 0 {
		return result, partial(result)
	}

	snap := s.ledger.Snapshot()
	if len(snap.Sites) == 0 {
		return nil, errors.New("no sites to import into")
	}

	sites := make(map[string]string, len(snap.Sites))
	for _, site := range snap.Sites {
		sites[tabular.Fold(site.Name)] = site.ID
	}
	presenters := make(map[string]string, len(snap.Presenters))
	for _, p := range snap.Presenters {
		if _, ok := presenters[tabular.Fold(p.Name)]; !ok {
			presenters[tabular.Fold(p.Name)] = p.ID
		}
	}
	defaultPresenter := ""
	if len(snap.Presenters) > 0 {
		defaultPresenter = snap.Presenters[0].ID
	}

	presenterFor := func(name string) (string, error) {
		if name == "" {
			if defaultPresenter != "" {
				return defaultPresenter, nil
			}
			name = tabular.UnknownName
		}
		key := tabular.Fold(name)
		if id, ok := presenters[key]; ok {
			return id, nil
		}
		h, err := s.ledger.AddPresenter(ctx, name)
		if err != nil {
			return "", err
		}
		presenters[key] = h.TempID()
		if name == tabular.UnknownName && defaultPresenter == "" {
			defaultPresenter = h.TempID()
		}
		return h.TempID(), nil
	}

	var handles []primary.Handle
	for _, row := range parsed {
		siteID, ok := sites[tabular.Fold(row.Site)]
		if !ok {
			siteID = snap.Sites[0].ID
		}
		presenterID, err := presenterFor(row.Presenter)
		if err != nil {
			s.logger.Warn("skipping row", "line", row.Line, "error", err)
			result.Skipped++
			continue
		}

		report := attendance.Report{
			SiteID:      siteID,
			Date:        row.Date,
			Time:        row.Time,
			PresenterID: presenterID,
			Notes:       row.Notes,
			Attendance: attendance.Attendance{
				Adults:   row.Adults,
				Kids:     row.Kids,
				Visitors: row.Visitors,
				Teens:    row.Teens,
			},
		}
		if row.Volunteers > 0 {
			report.VolunteerBreakdown = map[string]int{attendance.ImportedAreaKey: row.Volunteers}
		}

		h, err := s.ledger.AddReport(ctx, report)
		if err != nil {
			s.logger.Warn("skipping row", "line", row.Line, "error", err)
			result.Skipped++
			continue
		}
		handles = append(handles, h)
	}

	for _, h := range handles {
		if _, err := h.Wait(ctx); err != nil {
			if ctx.Err() != nil {
				return result, ctx.Err()
			}
			result.Skipped++
			continue
		}
		result.Imported++
	}

	s.logger.Info("import finished", "imported", result.Imported, "skipped", result.Skipped)
	return result, partial(result)
}

func partial(r *primary.ImportResult) error {
	if r.Skipped == 0 {
		return nil
	}
	if r.Imported == 0 {
		return fmt.Errorf("no rows imported: %d skipped", r.Skipped)
	}
	return &tabular.PartialImportError{Imported: r.Imported, Skipped: r.Skipped}
}
