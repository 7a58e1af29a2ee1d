package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/thiagorusso-10/contagemdeculto/internal/config"
	"github.com/thiagorusso-10/contagemdeculto/internal/core/access"
	"github.com/thiagorusso-10/contagemdeculto/internal/db"
	"github.com/thiagorusso-10/contagemdeculto/internal/wire"
)

// DevCmd returns the dev command group for development utilities.
func DevCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dev",
		Short: "Development utilities",
		Long: `Development utilities for working with a local culto database.

reset only touches the sqlite file named by CULTO_SQLITE_PATH, so the
default database in ~/.culto is never reset by accident.`,
	}

	cmd.AddCommand(devResetCmd())
	cmd.AddCommand(devGrantCmd())
	return cmd
}

func devResetCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Reset dev database with fresh fixtures",
		Long: `Delete the dev database and recreate it with fixture data:
the default sites and volunteer areas, two presenters, a dev-admin
user and three weeks of reports per site.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if wire.Config().Driver != config.DriverSQLite {
				return fmt.Errorf("dev reset only works with the sqlite driver")
			}
			dbPath := os.Getenv("CULTO_SQLITE_PATH")
			if dbPath == "" {
				return fmt.Errorf("CULTO_SQLITE_PATH not set\n\nThis safety check prevents accidental reset of your main database")
			}

			if !force {
				fmt.Printf("This will delete and recreate: %s\n", dbPath)
				fmt.Print("Continue? [y/N] ")
				var response string
				fmt.Scanln(&response)
				if response != "y" && response != "Y" {
					fmt.Println("Aborted.")
					return nil
				}
			}

			db.Close()

			if err := os.Remove(dbPath); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("failed to delete database: %w", err)
			}
			fmt.Printf("✓ Deleted %s\n", dbPath)

			database, err := db.GetDB(dbPath)
			if err != nil {
				return fmt.Errorf("failed to create database: %w", err)
			}
			fmt.Println("✓ Created fresh database with schema")

			if err := db.SeedFixtures(database); err != nil {
				return fmt.Errorf("failed to seed fixtures: %w", err)
			}
			fmt.Println("✓ Seeded fixture data")
			fmt.Println("\nTry: CULTO_USER_ID=dev-admin culto whoami")
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Skip confirmation prompt")
	return cmd
}

func devGrantCmd() *cobra.Command {
	var site string

	cmd := &cobra.Command{
		Use:   "grant [user-id] [role]",
		Short: "Assign a role to a user",
		Long: `Assign a role to a user. Roles: admin, global_viewer, campus_leader.

A campus_leader must be bound to a site with --site.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, roleArg := args[0], args[1]
			role := access.ParseRole(roleArg)
			if role == access.RoleNone {
				return fmt.Errorf("unknown role %q", roleArg)
			}

			var siteID string
			if role == access.RoleSiteLeader {
				if site == "" {
					return fmt.Errorf("--site is required for %s", role)
				}
				resolved, err := resolveSite(wire.LedgerService().Snapshot(), site)
				if err != nil {
					return err
				}
				siteID = resolved.ID
			}

			assigner := wire.RoleAssigner()
			if assigner == nil {
				return fmt.Errorf("the %s store does not support role assignment", wire.Config().Driver)
			}
			if err := assigner.AssignRole(cmd.Context(), userID, string(role), siteID); err != nil {
				return err
			}
			fmt.Printf("✓ %s is now %s\n", userID, role)
			return nil
		},
	}
	cmd.Flags().StringVar(&site, "site", "", "Site ID or name (campus leaders only)")
	return cmd
}
