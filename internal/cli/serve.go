package cli

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/thiagorusso-10/contagemdeculto/internal/wire"
)

const shutdownTimeout = 10 * time.Second

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	var (
		addr    string
		refresh time.Duration
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the read-only JSON API",
		Long: `Serve dashboard, history, analytics and report views over HTTP.

Requests may name the acting user with the X-User-ID header; site-scoped
views are then restricted to what that user's role may see. The cache is
reloaded from the store every --refresh interval.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = wire.Config().HTTPAddr
			}
			logger := wire.Logger()
			server := wire.HTTPServer()
			ledger := wire.LedgerService()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if refresh > 0 {
				go func() {
					ticker := time.NewTicker(refresh)
					defer ticker.Stop()
					for {
						select {
						case <-ctx.Done():
							return
						case <-ticker.C:
							if err := ledger.Refresh(ctx); err != nil && !errors.Is(err, context.Canceled) {
								logger.Warn("periodic refresh failed", slog.String("error", err.Error()))
							}
						}
					}
				}()
			}

			errCh := make(chan error, 1)
			go func() {
				errCh <- server.Listen(addr)
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			logger.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config, :8080)")
	cmd.Flags().DurationVar(&refresh, "refresh", time.Minute, "Cache reload interval (0 disables)")
	return cmd
}
