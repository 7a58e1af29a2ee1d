package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/thiagorusso-10/contagemdeculto/internal/config"
	"github.com/thiagorusso-10/contagemdeculto/internal/wire"
)

// InitCmd returns the init command
func InitCmd() *cobra.Command {
	var (
		driver string
		dsn    string
		user   string
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write .culto/config.json and prepare the store",
		Long: `Write .culto/config.json in the current directory and load the store.

On an empty store the default sites and volunteer areas are created.
Environment variables (CULTO_*) and .env still override the file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cwd, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to get working directory: %w", err)
			}

			cfg := config.Default()
			cfg.Driver = driver
			cfg.PostgresDSN = dsn
			cfg.UserID = user
			if err := cfg.Validate(); err != nil {
				return err
			}
			if err := config.SaveConfig(cwd, cfg); err != nil {
				return err
			}
			fmt.Println("✓ Config written to .culto/config.json")

			snap := wire.LedgerService().Snapshot()
			fmt.Printf("✓ Store ready: %d sites, %d volunteer areas, %d reports\n",
				len(snap.Sites), len(snap.VolunteerAreas), len(snap.Reports))
			fmt.Println()
			fmt.Println("Next steps:")
			fmt.Println("  culto presenter add \"Pr. João\"")
			fmt.Println("  culto report add --site \"INA Centro\" --presenter \"Pr. João\" --adults 100")
			fmt.Println("  culto dashboard")
			return nil
		},
	}
	cmd.Flags().StringVar(&driver, "driver", config.DriverSQLite, "Store driver: sqlite or postgres")
	cmd.Flags().StringVar(&dsn, "dsn", "", "Postgres DSN (postgres driver)")
	cmd.Flags().StringVar(&user, "user", "", "Acting user id for role checks")
	return cmd
}
