package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/thiagorusso-10/contagemdeculto/internal/core/attendance"
	"github.com/thiagorusso-10/contagemdeculto/internal/wire"
)

const defaultServiceTime = "19:30"

// reportFlags collects the editable fields of a report.
type reportFlags struct {
	site       string
	date       string
	time       string
	presenter  string
	adults     int
	kids       int
	visitors   int
	teens      int
	volunteers map[string]int
	notes      string
}

func (f *reportFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.site, "site", "", "Site ID or name")
	cmd.Flags().StringVar(&f.date, "date", time.Now().UTC().Format("2006-01-02"), "Service date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.time, "time", defaultServiceTime, "Service time (HH:MM)")
	cmd.Flags().StringVar(&f.presenter, "presenter", "", "Presenter ID or name")
	cmd.Flags().IntVar(&f.adults, "adults", 0, "Adults present")
	cmd.Flags().IntVar(&f.kids, "kids", 0, "Kids present")
	cmd.Flags().IntVar(&f.visitors, "visitors", 0, "Visitors present")
	cmd.Flags().IntVar(&f.teens, "teens", 0, "Teens present")
	cmd.Flags().StringToIntVar(&f.volunteers, "volunteer", nil, "Volunteers per area, e.g. --volunteer Louvor=5 (repeatable)")
	cmd.Flags().StringVar(&f.notes, "notes", "", "Free-text notes")
}

// apply copies every flag the user set onto r, resolving names to IDs.
func (f *reportFlags) apply(cmd *cobra.Command, snap attendance.Snapshot, r *attendance.Report) error {
	changed := cmd.Flags().Changed

	if changed("site") {
		site, err := resolveSite(snap, f.site)
		if err != nil {
			return err
		}
		r.SiteID = site.ID
	}
	if changed("presenter") {
		presenter, err := resolvePresenter(snap, f.presenter)
		if err != nil {
			return err
		}
		r.PresenterID = presenter.ID
	}
	if changed("date") || r.Date == "" {
		r.Date = f.date
	}
	if changed("time") || r.Time == "" {
		r.Time = f.time
	}
	if changed("adults") {
		r.Attendance.Adults = f.adults
	}
	if changed("kids") {
		r.Attendance.Kids = f.kids
	}
	if changed("visitors") {
		r.Attendance.Visitors = f.visitors
	}
	if changed("teens") {
		r.Attendance.Teens = f.teens
	}
	if changed("volunteer") {
		breakdown := make(map[string]int, len(f.volunteers))
		for key, n := range f.volunteers {
			area, err := resolveArea(snap, key)
			if err != nil {
				return err
			}
			breakdown[area.ID] = n
		}
		r.VolunteerBreakdown = breakdown
	}
	if changed("notes") {
		r.Notes = f.notes
	}
	return nil
}

// ReportCmd returns the report command
func ReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Manage service reports",
		Long:  "Record, edit, list and remove attendance reports",
	}

	cmd.AddCommand(reportAddCmd())
	cmd.AddCommand(reportEditCmd())
	cmd.AddCommand(reportDeleteCmd())
	cmd.AddCommand(reportListCmd())
	cmd.AddCommand(reportShowCmd())

	return cmd
}

func reportAddCmd() *cobra.Command {
	var flags reportFlags

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a new report",
		Example: `  culto report add --site "INA Centro" --presenter "Pr. João" --adults 120 --kids 30 \
      --volunteer Louvor=6 --volunteer Recepção=4`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("site") || !cmd.Flags().Changed("presenter") {
				return fmt.Errorf("--site and --presenter are required")
			}
			ctx := wire.Context(cmd.Context())
			adapter := wire.LedgerAdapter()

			var report attendance.Report
			if err := flags.apply(cmd, wire.LedgerService().Snapshot(), &report); err != nil {
				return err
			}
			_, err := adapter.AddReport(ctx, report)
			return err
		},
	}
	flags.register(cmd)
	return cmd
}

func reportEditCmd() *cobra.Command {
	var flags reportFlags

	cmd := &cobra.Command{
		Use:   "edit [report-id]",
		Short: "Change fields of an existing report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := wire.Context(cmd.Context())
			snap := wire.LedgerService().Snapshot()

			report, ok := snap.FindReport(args[0])
			if !ok {
				return fmt.Errorf("report %s not found", args[0])
			}
			if err := flags.apply(cmd, snap, &report); err != nil {
				return err
			}
			_, err := wire.LedgerAdapter().UpdateReport(ctx, report)
			return err
		},
	}
	flags.register(cmd)
	return cmd
}

func reportDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [report-id]",
		Short: "Delete a report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return wire.LedgerAdapter().DeleteReport(wire.Context(cmd.Context()), args[0])
		},
	}
}

func reportListCmd() *cobra.Command {
	var site string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List reports, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := wire.Context(cmd.Context())
			siteID, err := optionalSite(site)
			if err != nil {
				return err
			}
			wire.LedgerAdapter().ListReports(ctx, siteID)
			return nil
		},
	}
	cmd.Flags().StringVar(&site, "site", "", "Only reports of this site (ID or name)")
	return cmd
}

func reportShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [report-id]",
		Short: "Show report details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := wire.LedgerAdapter().ShowReport(wire.Context(cmd.Context()), args[0])
			return err
		},
	}
}

// optionalSite resolves a --site flag that may be empty.
func optionalSite(ref string) (string, error) {
	if ref == "" {
		return "", nil
	}
	site, err := resolveSite(wire.LedgerService().Snapshot(), ref)
	if err != nil {
		return "", err
	}
	return site.ID, nil
}

func resolveSite(snap attendance.Snapshot, ref string) (attendance.Site, error) {
	for _, s := range snap.Sites {
		if s.ID == ref || strings.EqualFold(s.Name, ref) {
			return s, nil
		}
	}
	return attendance.Site{}, fmt.Errorf("site %q not found", ref)
}

func resolvePresenter(snap attendance.Snapshot, ref string) (attendance.Presenter, error) {
	for _, p := range snap.Presenters {
		if p.ID == ref || strings.EqualFold(p.Name, ref) {
			return p, nil
		}
	}
	return attendance.Presenter{}, fmt.Errorf("presenter %q not found", ref)
}

func resolveArea(snap attendance.Snapshot, ref string) (attendance.VolunteerArea, error) {
	if ref == attendance.ImportedAreaKey {
		return attendance.VolunteerArea{ID: ref, Name: ref}, nil
	}
	for _, a := range snap.VolunteerAreas {
		if a.ID == ref || strings.EqualFold(a.Name, ref) {
			return a, nil
		}
	}
	return attendance.VolunteerArea{}, fmt.Errorf("volunteer area %q not found", ref)
}

