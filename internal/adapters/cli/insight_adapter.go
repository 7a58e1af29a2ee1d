package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/thiagorusso-10/contagemdeculto/internal/core/access"
	"github.com/thiagorusso-10/contagemdeculto/internal/core/aggregate"
	"github.com/thiagorusso-10/contagemdeculto/internal/core/attendance"
	"github.com/thiagorusso-10/contagemdeculto/internal/core/tabular"
	"github.com/thiagorusso-10/contagemdeculto/internal/ctxutil"
	"github.com/thiagorusso-10/contagemdeculto/internal/ports/primary"
)

// InsightAdapter renders the read-only views (dashboard, history, analytics).
// Names are resolved against the ledger's cached snapshot.
type InsightAdapter struct {
	service primary.InsightService
	ledger  primary.LedgerService
	out     io.Writer
}

// NewInsightAdapter creates a new InsightAdapter.
func NewInsightAdapter(service primary.InsightService, ledger primary.LedgerService, out io.Writer) *InsightAdapter {
	return &InsightAdapter{
		service: service,
		ledger:  ledger,
		out:     out,
	}
}

// Dashboard prints the headline figure and one line per site.
func (a *InsightAdapter) Dashboard(ctx context.Context) aggregate.Dashboard {
	d := a.service.Dashboard(ctx)

	if d.Headline == nil {
		fmt.Fprintln(a.out, "No reports yet.")
		fmt.Fprintln(a.out)
		fmt.Fprintln(a.out, "Record the first service:")
		fmt.Fprintln(a.out, "  culto report add --site <SITE-ID> --date 2024-05-12 --presenter <PRESENTER-ID> --adults 100")
	} else {
		fmt.Fprintf(a.out, "\nLatest service: %s  %d people\n\n", d.Headline.DisplayDate, d.Headline.Total)
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "SITE\tLAST SERVICE\tTOTAL\tREPORTS")
	fmt.Fprintln(w, "----\t------------\t-----\t-------")
	for _, tile := range d.Tiles {
		last, total := "-", "-"
		if tile.Latest != nil {
			last = tile.Latest.DisplayDate
			total = fmt.Sprintf("%d", tile.Latest.Total)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", siteLabel(tile.Site), last, total, tile.Reports)
	}
	w.Flush()
	return d
}

// History prints reports grouped by year, month and day.
func (a *InsightAdapter) History(ctx context.Context) []aggregate.YearGroup {
	years := a.service.History(ctx)
	if len(years) == 0 {
		fmt.Fprintln(a.out, "No reports yet.")
		return years
	}

	snap := a.ledger.Snapshot()
	for _, y := range years {
		fmt.Fprintf(a.out, "\n%s  (%d)\n", y.Year, y.Total)
		for _, m := range y.Months {
			fmt.Fprintf(a.out, "  %s  (%d)\n", m.Month, m.Total)
			for _, d := range m.Days {
				a.printDay(snap, d, "    ")
			}
		}
	}
	return years
}

// Weeks prints reports grouped by ISO week.
func (a *InsightAdapter) Weeks(ctx context.Context) []aggregate.WeekGroup {
	weeks := a.service.Weeks(ctx)
	if len(weeks) == 0 {
		fmt.Fprintln(a.out, "No reports yet.")
		return weeks
	}

	snap := a.ledger.Snapshot()
	for _, wk := range weeks {
		fmt.Fprintf(a.out, "\n%s  from %s  (%d)\n", wk.Key, aggregate.FormatLongDate(wk.Start), wk.Total)
		for _, d := range wk.Days {
			a.printDay(snap, d, "  ")
		}
	}
	return weeks
}

func (a *InsightAdapter) printDay(snap attendance.Snapshot, d aggregate.DayGroup, indent string) {
	fmt.Fprintf(a.out, "%s%s  %d\n", indent, aggregate.FormatLongDate(d.Date), d.Total)
	for _, r := range d.Reports {
		site, ok := snap.FindSite(r.SiteID)
		if !ok {
			site.Name = tabular.UnknownName
		}
		fmt.Fprintf(a.out, "%s  %s %-7s %s  %s  %d\n",
			indent, r.Time, aggregate.ServiceLabel(r.Time), siteLabel(site),
			presenterName(snap, r.PresenterID), aggregate.ReportTotal(r))
	}
}

// Analytics prints growth, visitor share and the trend with the selected
// point marked.
func (a *InsightAdapter) Analytics(ctx context.Context, req primary.AnalyticsRequest) aggregate.AnalyticsView {
	view := a.service.Analytics(ctx, req)

	scope := "all sites"
	if req.SiteID != "" {
		scope = a.ledger.Snapshot().SiteName(req.SiteID)
	}
	fmt.Fprintf(a.out, "\nAnalytics: %s\n\n", scope)

	s := view.Summary
	fmt.Fprintf(a.out, "This week:  %d (%d visitors)\n", s.ThisWeekTotal, s.ThisWeekVisitors)
	fmt.Fprintf(a.out, "Last week:  %d (%d visitors)\n", s.LastWeekTotal, s.LastWeekVisitors)
	fmt.Fprintf(a.out, "Growth:     %s", growthLabel(s.GrowthPercent))
	if s.UsedFallback {
		fmt.Fprint(a.out, dim("  (comparing the two latest service days)"))
	}
	fmt.Fprintln(a.out)
	fmt.Fprintf(a.out, "Visitors:   %d of %d (%.1f%%)\n\n",
		view.VisitorShare.Visitors, view.VisitorShare.Visitors+view.VisitorShare.Regulars, view.VisitorShare.VisitorPercent)

	if len(view.Trend) == 0 {
		fmt.Fprintln(a.out, "No trend data.")
		return view
	}

	selected := -1
	if view.Selection.Point != nil {
		selected = view.Selection.Point.Index
	}
	peak := 0
	for _, p := range view.Trend {
		if p.Total > peak {
			peak = p.Total
		}
	}
	for _, p := range view.Trend {
		marker := "  "
		if p.Index == selected {
			marker = "→ "
		}
		fmt.Fprintf(a.out, "%s%s %s %d\n", marker, p.DisplayDate, bar(p.Total, peak), p.Total)
	}

	if sel := view.Selection.Point; sel != nil {
		demo := view.Selection.Demographics
		fmt.Fprintf(a.out, "\n%s: %d regulars, %d visitors (%.1f%%)\n",
			sel.DisplayDate, demo.Regulars, demo.Visitors, demo.VisitorPercent)
	}
	return view
}

const barWidth = 30

func bar(value, peak int) string {
	if peak <= 0 {
		return ""
	}
	n := value * barWidth / peak
	return strings.Repeat("█", n) + strings.Repeat(" ", barWidth-n)
}

// Whoami prints the acting user and what they may do.
func (a *InsightAdapter) Whoami(ctx context.Context) (access.Capabilities, error) {
	caps, err := a.service.Capabilities(ctx)
	if err != nil {
		return caps, fmt.Errorf("failed to resolve role: %w", err)
	}

	user := ctxutil.UserFromContext(ctx)
	if user == "" {
		user = "(none; set CULTO_USER_ID)"
	}
	role := string(caps.Role)
	if role == "" {
		role = "(no role)"
	}
	fmt.Fprintf(a.out, "User:       %s\n", user)
	fmt.Fprintf(a.out, "Role:       %s\n", role)
	if caps.SiteID != "" {
		fmt.Fprintf(a.out, "Site:       %s\n", a.ledger.Snapshot().SiteName(caps.SiteID))
	}
	fmt.Fprintf(a.out, "Create:     %s\n", yesNo(caps.CanCreate()))
	fmt.Fprintf(a.out, "View all:   %s\n", yesNo(caps.CanViewAll()))
	fmt.Fprintf(a.out, "Catalog:    %s\n", yesNo(caps.CanManageCatalog()))
	return caps, nil
}

func presenterName(snap attendance.Snapshot, id string) string {
	if name := snap.PresenterName(id); name != "" {
		return name
	}
	return tabular.UnknownName
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
