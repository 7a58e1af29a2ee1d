package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/thiagorusso-10/contagemdeculto/internal/cli"
	"github.com/thiagorusso-10/contagemdeculto/internal/version"
	"github.com/thiagorusso-10/contagemdeculto/internal/wire"
)

func main() {
	var verbose bool

	rootCmd := &cobra.Command{
		Use:     "culto",
		Short:   "culto - attendance ledger for church services",
		Version: version.String(),
		Long: `culto records attendance reports for services across sites and
summarizes them: latest service per site, history by month or week, growth
and demographics.

Writes are applied to the local view immediately and confirmed against the
store (sqlite by default, Postgres with CULTO_DRIVER=postgres).`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			wire.SetVerbose(verbose)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			return wire.Shutdown(ctx)
		},
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging")

	rootCmd.AddCommand(cli.InitCmd())
	rootCmd.AddCommand(cli.DashboardCmd())
	rootCmd.AddCommand(cli.HistoryCmd())
	rootCmd.AddCommand(cli.AnalyticsCmd())
	rootCmd.AddCommand(cli.WhoamiCmd())

	// Ledger entities
	rootCmd.AddCommand(cli.ReportCmd())
	rootCmd.AddCommand(cli.SiteCmd())
	rootCmd.AddCommand(cli.PresenterCmd())
	rootCmd.AddCommand(cli.AreaCmd())

	rootCmd.AddCommand(cli.ImportCmd())
	rootCmd.AddCommand(cli.ExportCmd())
	rootCmd.AddCommand(cli.ServeCmd())
	rootCmd.AddCommand(cli.VersionCmd())

	// Developer tools
	rootCmd.AddCommand(cli.DevCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
