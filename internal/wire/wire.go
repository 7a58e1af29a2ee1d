// Package wire provides dependency injection for culto.
// It creates singleton services with lazy initialization.
package wire

import (
	"context"
	"io"
	"log"
	"log/slog"
	"os"
	"sync"
	"time"

	cliadapter "github.com/thiagorusso-10/contagemdeculto/internal/adapters/cli"
	"github.com/thiagorusso-10/contagemdeculto/internal/adapters/httpapi"
	"github.com/thiagorusso-10/contagemdeculto/internal/adapters/postgres"
	"github.com/thiagorusso-10/contagemdeculto/internal/adapters/s3export"
	"github.com/thiagorusso-10/contagemdeculto/internal/adapters/spreadsheet"
	"github.com/thiagorusso-10/contagemdeculto/internal/adapters/sqlite"
	"github.com/thiagorusso-10/contagemdeculto/internal/app"
	"github.com/thiagorusso-10/contagemdeculto/internal/config"
	"github.com/thiagorusso-10/contagemdeculto/internal/ctxutil"
	"github.com/thiagorusso-10/contagemdeculto/internal/db"
	"github.com/thiagorusso-10/contagemdeculto/internal/ports/primary"
	"github.com/thiagorusso-10/contagemdeculto/internal/ports/secondary"
)

const initialRefreshTimeout = 15 * time.Second

var (
	cfg      *config.Config
	logLevel = new(slog.LevelVar)
	logger   *slog.Logger
	baseOnce sync.Once

	store          secondary.RemoteStore
	closeStore     func() error
	cache          *app.EntityCache
	ledgerService  *app.Reconciler
	insightService primary.InsightService
	importService  primary.ImportService
	exportService  primary.ExportService
	once           sync.Once
)

// SetVerbose switches logging to debug level. Call before any accessor.
func SetVerbose(v bool) {
	if v {
		logLevel.Set(slog.LevelDebug)
	} else {
		logLevel.Set(slog.LevelInfo)
	}
}

// Config returns the loaded configuration.
func Config() *config.Config {
	baseOnce.Do(initBase)
	return cfg
}

// Logger returns the process logger.
func Logger() *slog.Logger {
	baseOnce.Do(initBase)
	return logger
}

// Context attaches the configured acting user to ctx.
func Context(ctx context.Context) context.Context {
	if user := Config().UserID; user != "" {
		return ctxutil.WithUserID(ctx, user)
	}
	return ctx
}

// LedgerService returns the singleton LedgerService instance.
func LedgerService() primary.LedgerService {
	once.Do(initServices)
	return ledgerService
}

// InsightService returns the singleton InsightService instance.
func InsightService() primary.InsightService {
	once.Do(initServices)
	return insightService
}

// ImportService returns the singleton ImportService instance.
func ImportService() primary.ImportService {
	once.Do(initServices)
	return importService
}

// ExportService returns the singleton ExportService instance.
func ExportService() primary.ExportService {
	once.Do(initServices)
	return exportService
}

// RoleAssigner returns the role administration gateway of the active store.
func RoleAssigner() secondary.RoleAssigner {
	once.Do(initServices)
	if ra, ok := store.(secondary.RoleAssigner); ok {
		return ra
	}
	return nil
}

// Shutdown waits for in-flight mutations and closes the store.
func Shutdown(ctx context.Context) error {
	if ledgerService == nil {
		return nil
	}
	if err := ledgerService.Wait(ctx); err != nil {
		return err
	}
	return closeStore()
}

func initBase() {
	logLevel.Set(slog.LevelInfo)
	if config.GetEnv("CULTO_DEBUG") != "" {
		logLevel.Set(slog.LevelDebug)
	}
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	cwd, err := os.Getwd()
	if err != nil {
		log.Fatalf("failed to get working directory: %v", err)
	}
	cfg, err = config.Load(cwd)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
}

// initServices initializes all services and their dependencies.
// This is called once via sync.Once.
func initServices() {
	baseOnce.Do(initBase)

	switch cfg.Driver {
	case config.DriverPostgres:
		pg, err := postgres.Open(cfg.PostgresDSN, logger)
		if err != nil {
			log.Fatalf("failed to initialize postgres: %v", err)
		}
		store, closeStore = pg, pg.Close
	default:
		database, err := db.GetDB(cfg.SQLitePath)
		if err != nil {
			log.Fatalf("failed to initialize database: %v", err)
		}
		store, closeStore = sqlite.NewStore(database), db.Close
	}

	cache = app.NewEntityCache()
	notifier := cliadapter.NewConsoleNotifier(os.Stderr)
	ledgerService = app.NewReconciler(store, cache, notifier, app.ReconcilerOptions{
		PinnedSite:   cfg.PinnedSite,
		SeedDefaults: true,
		Logger:       logger,
	})

	var uploader secondary.BlobUploader
	if cfg.UploadsEnabled() {
		u, err := s3export.New(context.Background(), s3export.Config{
			Bucket:    cfg.Export.S3Bucket,
			Region:    cfg.Export.S3Region,
			Endpoint:  cfg.Export.S3Endpoint,
			PathStyle: cfg.Export.S3PathStyle,
			Prefix:    cfg.Export.S3Prefix,
		})
		if err != nil {
			log.Fatalf("failed to initialize uploads: %v", err)
		}
		uploader = u
	}

	insightService = app.NewInsightService(cache, store, cfg.PinnedSite)
	importService = app.NewImportService(ledgerService, spreadsheet.NewReader(), logger)
	exportService = app.NewExportService(cache, uploader)

	// A failed first load leaves an empty cache; the reconciler already
	// reported it through the notifier.
	ctx, cancel := context.WithTimeout(context.Background(), initialRefreshTimeout)
	defer cancel()
	if err := ledgerService.Refresh(ctx); err != nil {
		logger.Warn("initial refresh failed", slog.String("error", err.Error()))
	}
}

// InsightAdapter returns a new InsightAdapter writing to stdout.
// Each call creates a new adapter (adapters are stateless translators).
func InsightAdapter() *cliadapter.InsightAdapter {
	return InsightAdapterWithOutput(os.Stdout)
}

// InsightAdapterWithOutput returns a new InsightAdapter writing to the given output.
func InsightAdapterWithOutput(out io.Writer) *cliadapter.InsightAdapter {
	once.Do(initServices)
	return cliadapter.NewInsightAdapter(insightService, ledgerService, out)
}

// LedgerAdapter returns a new LedgerAdapter writing to stdout.
func LedgerAdapter() *cliadapter.LedgerAdapter {
	return LedgerAdapterWithOutput(os.Stdout)
}

// LedgerAdapterWithOutput returns a new LedgerAdapter writing to the given output.
func LedgerAdapterWithOutput(out io.Writer) *cliadapter.LedgerAdapter {
	once.Do(initServices)
	return cliadapter.NewLedgerAdapter(ledgerService, insightService, out)
}

// TransferAdapter returns a new TransferAdapter writing to stdout.
func TransferAdapter() *cliadapter.TransferAdapter {
	return TransferAdapterWithOutput(os.Stdout)
}

// TransferAdapterWithOutput returns a new TransferAdapter writing to the given output.
func TransferAdapterWithOutput(out io.Writer) *cliadapter.TransferAdapter {
	once.Do(initServices)
	return cliadapter.NewTransferAdapter(importService, exportService, out)
}

// HTTPServer returns a new API server over the singleton services.
func HTTPServer() *httpapi.Server {
	once.Do(initServices)
	return httpapi.NewServer(insightService, ledgerService, logger)
}
