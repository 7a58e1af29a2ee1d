package cli

import (
	"context"
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/thiagorusso-10/contagemdeculto/internal/core/aggregate"
	"github.com/thiagorusso-10/contagemdeculto/internal/core/attendance"
	"github.com/thiagorusso-10/contagemdeculto/internal/ctxutil"
	"github.com/thiagorusso-10/contagemdeculto/internal/ports/primary"
)

// LedgerAdapter is a thin adapter that translates CLI operations to
// LedgerService calls. Each write waits for its outcome so the process does
// not exit with the remote write still in flight.
type LedgerAdapter struct {
	ledger  primary.LedgerService
	insight primary.InsightService
	out     io.Writer
}

// NewLedgerAdapter creates a new LedgerAdapter.
func NewLedgerAdapter(ledger primary.LedgerService, insight primary.InsightService, out io.Writer) *LedgerAdapter {
	return &LedgerAdapter{
		ledger:  ledger,
		insight: insight,
		out:     out,
	}
}

// guardEdit checks the acting user's capabilities for siteID. Without a
// configured user the CLI runs as the local operator and is not restricted.
func (a *LedgerAdapter) guardEdit(ctx context.Context, siteID string) error {
	if ctxutil.UserFromContext(ctx) == "" {
		return nil
	}
	caps, err := a.insight.Capabilities(ctx)
	if err != nil {
		return fmt.Errorf("failed to resolve role: %w", err)
	}
	return caps.CheckEdit(siteID).Error()
}

func (a *LedgerAdapter) guardCatalog(ctx context.Context) error {
	if ctxutil.UserFromContext(ctx) == "" {
		return nil
	}
	caps, err := a.insight.Capabilities(ctx)
	if err != nil {
		return fmt.Errorf("failed to resolve role: %w", err)
	}
	return caps.CheckCatalog().Error()
}

// settle waits for h and reports the confirmed id.
func (a *LedgerAdapter) settle(ctx context.Context, h primary.Handle, what string) (primary.Outcome, error) {
	outcome, err := h.Wait(ctx)
	if err != nil {
		return outcome, fmt.Errorf("failed to save %s: %w", what, err)
	}
	fmt.Fprintf(a.out, "✓ %s saved: %s\n", what, outcome.ID)
	return outcome, nil
}

// ListReports prints reports, newest first, optionally for one site.
func (a *LedgerAdapter) ListReports(ctx context.Context, siteID string) []attendance.Report {
	reports := a.insight.Reports(ctx, siteID)
	if len(reports) == 0 {
		fmt.Fprintln(a.out, "No reports found.")
		return reports
	}
	sort.SliceStable(reports, func(i, j int) bool {
		if reports[i].Date != reports[j].Date {
			return reports[i].Date > reports[j].Date
		}
		return reports[i].Time > reports[j].Time
	})

	snap := a.ledger.Snapshot()
	w := tabwriter.NewWriter(a.out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "ID\tDATE\tTIME\tSITE\tPRESENTER\tTOTAL")
	fmt.Fprintln(w, "--\t----\t----\t----\t---------\t-----")
	for _, r := range reports {
		site, ok := snap.FindSite(r.SiteID)
		if !ok {
			site.Name = r.SiteID
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\n",
			r.ID,
			aggregate.FormatLongDate(r.Date),
			r.Time,
			siteLabel(site),
			presenterName(snap, r.PresenterID),
			aggregate.ReportTotal(r),
		)
	}
	w.Flush()
	return reports
}

// ShowReport displays every field of one report.
func (a *LedgerAdapter) ShowReport(_ context.Context, reportID string) (attendance.Report, error) {
	snap := a.ledger.Snapshot()
	r, ok := snap.FindReport(reportID)
	if !ok {
		return r, fmt.Errorf("report %s not found", reportID)
	}

	fmt.Fprintf(a.out, "\nReport: %s\n", r.ID)
	fmt.Fprintf(a.out, "Site:       %s\n", snap.SiteName(r.SiteID))
	fmt.Fprintf(a.out, "Date:       %s %s (%s)\n", aggregate.FormatLongDate(r.Date), r.Time, aggregate.ServiceLabel(r.Time))
	fmt.Fprintf(a.out, "Presenter:  %s\n", presenterName(snap, r.PresenterID))
	fmt.Fprintf(a.out, "Adults:     %d\n", r.Attendance.Adults)
	fmt.Fprintf(a.out, "Kids:       %d\n", r.Attendance.Kids)
	fmt.Fprintf(a.out, "Teens:      %d\n", r.Attendance.Teens)
	fmt.Fprintf(a.out, "Visitors:   %d\n", r.Attendance.Visitors)
	fmt.Fprintf(a.out, "Volunteers: %d\n", r.Attendance.Volunteers)

	areaIDs := make([]string, 0, len(r.VolunteerBreakdown))
	for id := range r.VolunteerBreakdown {
		areaIDs = append(areaIDs, id)
	}
	sort.Strings(areaIDs)
	for _, id := range areaIDs {
		name := id
		if area, ok := snap.FindArea(id); ok {
			name = area.Name
		}
		fmt.Fprintf(a.out, "  %-12s %d\n", name, r.VolunteerBreakdown[id])
	}
	fmt.Fprintf(a.out, "Total:      %d\n", aggregate.ReportTotal(r))
	if r.Notes != "" {
		fmt.Fprintf(a.out, "Notes:      %s\n", r.Notes)
	}
	fmt.Fprintln(a.out)
	return r, nil
}

// AddReport records a report and waits for the store to confirm it.
func (a *LedgerAdapter) AddReport(ctx context.Context, report attendance.Report) (primary.Outcome, error) {
	if err := a.guardEdit(ctx, report.SiteID); err != nil {
		return primary.Outcome{}, err
	}
	h, err := a.ledger.AddReport(ctx, report)
	if err != nil {
		return primary.Outcome{}, err
	}
	return a.settle(ctx, h, "report")
}

// UpdateReport replaces a report and waits for the store to confirm it.
func (a *LedgerAdapter) UpdateReport(ctx context.Context, report attendance.Report) (primary.Outcome, error) {
	if current, ok := a.ledger.Snapshot().FindReport(report.ID); ok {
		if err := a.guardEdit(ctx, current.SiteID); err != nil {
			return primary.Outcome{}, err
		}
	}
	if err := a.guardEdit(ctx, report.SiteID); err != nil {
		return primary.Outcome{}, err
	}
	h, err := a.ledger.UpdateReport(ctx, report)
	if err != nil {
		return primary.Outcome{}, err
	}
	return a.settle(ctx, h, "report")
}

// DeleteReport removes a report.
func (a *LedgerAdapter) DeleteReport(ctx context.Context, reportID string) error {
	current, ok := a.ledger.Snapshot().FindReport(reportID)
	if !ok {
		return fmt.Errorf("report %s not found", reportID)
	}
	if err := a.guardEdit(ctx, current.SiteID); err != nil {
		return err
	}
	h, err := a.ledger.DeleteReport(ctx, reportID)
	if err != nil {
		return err
	}
	if _, err := h.Wait(ctx); err != nil {
		return fmt.Errorf("failed to delete report: %w", err)
	}
	fmt.Fprintf(a.out, "✓ Report %s deleted\n", reportID)
	return nil
}

// ListSites prints sites in display order.
func (a *LedgerAdapter) ListSites(_ context.Context) []attendance.Site {
	sites := a.ledger.Snapshot().Sites
	if len(sites) == 0 {
		fmt.Fprintln(a.out, "No sites found.")
		return sites
	}
	w := tabwriter.NewWriter(a.out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tCOLOR")
	fmt.Fprintln(w, "--\t----\t-----")
	for _, s := range sites {
		fmt.Fprintf(w, "%s\t%s\t%s\n", s.ID, siteLabel(s), s.Color)
	}
	w.Flush()
	return sites
}

// AddSite registers a site.
func (a *LedgerAdapter) AddSite(ctx context.Context, name, color string) (primary.Outcome, error) {
	if err := a.guardCatalog(ctx); err != nil {
		return primary.Outcome{}, err
	}
	h, err := a.ledger.AddSite(ctx, name, color)
	if err != nil {
		return primary.Outcome{}, err
	}
	return a.settle(ctx, h, "site")
}

// ListPresenters prints presenters.
func (a *LedgerAdapter) ListPresenters(_ context.Context) []attendance.Presenter {
	presenters := a.ledger.Snapshot().Presenters
	if len(presenters) == 0 {
		fmt.Fprintln(a.out, "No presenters found.")
		return presenters
	}
	w := tabwriter.NewWriter(a.out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME")
	fmt.Fprintln(w, "--\t----")
	for _, p := range presenters {
		fmt.Fprintf(w, "%s\t%s\n", p.ID, p.Name)
	}
	w.Flush()
	return presenters
}

// AddPresenter registers a presenter.
func (a *LedgerAdapter) AddPresenter(ctx context.Context, name string) (primary.Outcome, error) {
	if err := a.guardCatalog(ctx); err != nil {
		return primary.Outcome{}, err
	}
	h, err := a.ledger.AddPresenter(ctx, name)
	if err != nil {
		return primary.Outcome{}, err
	}
	return a.settle(ctx, h, "presenter")
}

// DeletePresenter removes a presenter.
func (a *LedgerAdapter) DeletePresenter(ctx context.Context, presenterID string) error {
	if err := a.guardCatalog(ctx); err != nil {
		return err
	}
	h, err := a.ledger.DeletePresenter(ctx, presenterID)
	if err != nil {
		return err
	}
	if _, err := h.Wait(ctx); err != nil {
		return fmt.Errorf("failed to delete presenter: %w", err)
	}
	fmt.Fprintf(a.out, "✓ Presenter %s deleted\n", presenterID)
	return nil
}

// ListAreas prints volunteer areas.
func (a *LedgerAdapter) ListAreas(_ context.Context) []attendance.VolunteerArea {
	areas := a.ledger.Snapshot().VolunteerAreas
	if len(areas) == 0 {
		fmt.Fprintln(a.out, "No volunteer areas found.")
		return areas
	}
	w := tabwriter.NewWriter(a.out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME")
	fmt.Fprintln(w, "--\t----")
	for _, area := range areas {
		fmt.Fprintf(w, "%s\t%s\n", area.ID, area.Name)
	}
	w.Flush()
	return areas
}

// AddArea registers a volunteer area.
func (a *LedgerAdapter) AddArea(ctx context.Context, name string) (primary.Outcome, error) {
	if err := a.guardCatalog(ctx); err != nil {
		return primary.Outcome{}, err
	}
	h, err := a.ledger.AddVolunteerArea(ctx, name)
	if err != nil {
		return primary.Outcome{}, err
	}
	return a.settle(ctx, h, "volunteer area")
}

// DeleteArea removes a volunteer area.
func (a *LedgerAdapter) DeleteArea(ctx context.Context, areaID string) error {
	if err := a.guardCatalog(ctx); err != nil {
		return err
	}
	h, err := a.ledger.DeleteVolunteerArea(ctx, areaID)
	if err != nil {
		return err
	}
	if _, err := h.Wait(ctx); err != nil {
		return fmt.Errorf("failed to delete volunteer area: %w", err)
	}
	fmt.Fprintf(a.out, "✓ Volunteer area %s deleted\n", areaID)
	return nil
}
