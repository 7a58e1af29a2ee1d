package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/thiagorusso-10/contagemdeculto/internal/ports/primary"
	"github.com/thiagorusso-10/contagemdeculto/internal/wire"
)

// DashboardCmd returns the dashboard command
func DashboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show the latest service per site",
		RunE: func(cmd *cobra.Command, args []string) error {
			wire.InsightAdapter().Dashboard(wire.Context(cmd.Context()))
			return nil
		},
	}
}

// HistoryCmd returns the history command
func HistoryCmd() *cobra.Command {
	var by string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show reports grouped by month or ISO week",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := wire.Context(cmd.Context())
			switch by {
			case "month":
				wire.InsightAdapter().History(ctx)
			case "week":
				wire.InsightAdapter().Weeks(ctx)
			default:
				return fmt.Errorf("--by must be month or week, got %q", by)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&by, "by", "month", "Grouping: month or week")
	return cmd
}

// AnalyticsCmd returns the analytics command
func AnalyticsCmd() *cobra.Command {
	var (
		site     string
		today    string
		selected int
	)

	cmd := &cobra.Command{
		Use:   "analytics",
		Short: "Show growth, trend and demographics",
		Long: `Show month-over-month growth, visitors, the service trend and the
demographic split of one service.

Without --site every site is aggregated. --select picks a point of the
trend (0 is the oldest); by default the most recent service is shown.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := wire.Context(cmd.Context())

			siteID, err := optionalSite(site)
			if err != nil {
				return err
			}
			req := primary.AnalyticsRequest{SiteID: siteID}
			if today != "" {
				t, err := time.Parse("2006-01-02", today)
				if err != nil {
					return fmt.Errorf("--today must be YYYY-MM-DD: %w", err)
				}
				req.Today = t
			}
			if cmd.Flags().Changed("select") {
				req.Selected = &selected
			}

			wire.InsightAdapter().Analytics(ctx, req)
			return nil
		},
	}
	cmd.Flags().StringVar(&site, "site", "", "Site ID or name (default: all sites)")
	cmd.Flags().StringVar(&today, "today", "", "Reference date for monthly growth (YYYY-MM-DD)")
	cmd.Flags().IntVar(&selected, "select", 0, "Index of the trend point to detail")
	return cmd
}

// WhoamiCmd returns the whoami command
func WhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the acting user's role and permissions",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := wire.InsightAdapter().Whoami(wire.Context(cmd.Context()))
			return err
		},
	}
}
