package cli

import (
	"github.com/spf13/cobra"

	"github.com/thiagorusso-10/contagemdeculto/internal/wire"
)

// SiteCmd returns the site command
func SiteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "site",
		Short: "Manage sites",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List sites",
		RunE: func(cmd *cobra.Command, args []string) error {
			wire.LedgerAdapter().ListSites(wire.Context(cmd.Context()))
			return nil
		},
	})
	cmd.AddCommand(siteAddCmd())

	return cmd
}

func siteAddCmd() *cobra.Command {
	var color string

	cmd := &cobra.Command{
		Use:   "add [name]",
		Short: "Register a site",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := wire.LedgerAdapter().AddSite(wire.Context(cmd.Context()), args[0], color)
			return err
		},
	}
	cmd.Flags().StringVar(&color, "color", "", "Display color class, e.g. bg-neo-green")
	return cmd
}

// PresenterCmd returns the presenter command
func PresenterCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "presenter",
		Aliases: []string{"preacher"},
		Short:   "Manage presenters",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List presenters",
		RunE: func(cmd *cobra.Command, args []string) error {
			wire.LedgerAdapter().ListPresenters(wire.Context(cmd.Context()))
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "add [name]",
		Short: "Register a presenter",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := wire.LedgerAdapter().AddPresenter(wire.Context(cmd.Context()), args[0])
			return err
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "delete [presenter-id]",
		Short: "Remove a presenter",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return wire.LedgerAdapter().DeletePresenter(wire.Context(cmd.Context()), args[0])
		},
	})

	return cmd
}

// AreaCmd returns the volunteer area command
func AreaCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "area",
		Short: "Manage volunteer areas",
		Long: `Manage the ministry areas volunteers are counted in.

Deleting an area keeps the counts already recorded under it in old reports.`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List volunteer areas",
		RunE: func(cmd *cobra.Command, args []string) error {
			wire.LedgerAdapter().ListAreas(wire.Context(cmd.Context()))
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "add [name]",
		Short: "Register a volunteer area",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := wire.LedgerAdapter().AddArea(wire.Context(cmd.Context()), args[0])
			return err
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "delete [area-id]",
		Short: "Remove a volunteer area",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return wire.LedgerAdapter().DeleteArea(wire.Context(cmd.Context()), args[0])
		},
	})

	return cmd
}
