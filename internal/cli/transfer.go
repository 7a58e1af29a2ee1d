package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/thiagorusso-10/contagemdeculto/internal/app"
	"github.com/thiagorusso-10/contagemdeculto/internal/wire"
)

// ImportCmd returns the import command
func ImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import [file]",
		Short: "Import reports from a .csv, .xls or .xlsx file",
		Long: `Import reports from a spreadsheet.

The first row is the header. Columns are matched by name (Data, Horário,
Campus, Pregador, Adultos, Kids, Visitantes, Adolescentes, Voluntários, ...);
rows without a date or an unknown site are skipped. Unknown presenters are
created on the fly.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := wire.TransferAdapter().Import(wire.Context(cmd.Context()), args[0])
			return err
		},
	}
}

// ExportCmd returns the export command
func ExportCmd() *cobra.Command {
	var (
		format string
		out    string
		upload bool
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export every report as CSV or XLSX",
		Long: `Export every report, one row per report.

By default the file is written to relatorio_cultos_<date>.<format> in the
current directory. Use --out - for stdout, or --s3 to upload to the
configured bucket instead.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			format = strings.ToLower(format)
			ctx := wire.Context(cmd.Context())
			adapter := wire.TransferAdapter()

			if upload {
				_, err := adapter.Upload(ctx, format)
				return err
			}

			var w io.Writer = os.Stdout
			if out != "-" {
				if out == "" {
					out = app.ExportFileName(time.Now().UTC(), format)
				}
				f, err := os.Create(filepath.Clean(out))
				if err != nil {
					return fmt.Errorf("failed to create %s: %w", out, err)
				}
				defer f.Close()
				w = f
			}

			if err := adapter.Export(ctx, format, w); err != nil {
				return err
			}
			if out != "-" {
				fmt.Printf("✓ Exported to %s\n", out)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", app.FormatCSV, "Output format: csv or xlsx")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (- for stdout)")
	cmd.Flags().BoolVar(&upload, "s3", false, "Upload to the configured S3 bucket")
	return cmd
}
