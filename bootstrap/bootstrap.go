// Package bootstrap wires all dependencies and starts the application.
// Configuration comes from a YAML file (with GROWTHMETER_* environment
// overrides); the file is watched for changes and reloaded on SIGHUP.
package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/agencyos/growthmeter/adapters/clock"
	apihttp "github.com/agencyos/growthmeter/adapters/http"
	"github.com/agencyos/growthmeter/adapters/idgen"
	"github.com/agencyos/growthmeter/adapters/metrics"
	"github.com/agencyos/growthmeter/adapters/sqlite"
	"github.com/agencyos/growthmeter/app"
	"github.com/agencyos/growthmeter/config"
	"github.com/rs/zerolog"
)

// App represents the running application.
type App struct {
	Logger     zerolog.Logger
	Config     *config.Holder
	DB         *sqlite.DB
	HTTPServer *http.Server
	Metrics    *metrics.Collector
	Ledger     *app.LedgerService
	Allocator  *app.AllocatorService

	retentionStop chan struct{}
	retentionDone chan struct{}
}

// Options provides optional knobs for application initialization.
type Options struct {
	// ConfigPath is the YAML config file. Empty means defaults plus
	// environment overrides.
	ConfigPath string
	// WatchConfig enables fsnotify-based hot reload of the config file.
	WatchConfig bool
}

// New creates and initializes the application.
func New(opts Options) (*App, error) {
	holder, err := newConfigHolder(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	cfg := holder.Get()

	logger := SetupLogger(cfg.Logging)
	logger.Info().Msg("initializing growthmeter")

	a := &App{
		Logger: logger,
		Config: holder,
	}

	if err := a.initDatabase(cfg); err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}

	if cfg.Metrics.Enabled {
		a.Metrics = metrics.New()
		logger.Info().Msg("prometheus metrics enabled")
	}

	limits, err := cfg.Limits()
	if err != nil {
		a.DB.Close()
		return nil, fmt.Errorf("quota limits: %w", err)
	}

	a.Ledger = app.NewLedgerService(app.LedgerConfig{
		Store:     sqlite.NewUsageStore(a.DB),
		Limits:    limits,
		Clock:     clock.Real{},
		IDs:       idgen.UUID{},
		Logger:    logger,
		Metrics:   a.Metrics,
		Retention: cfg.RetentionWindow(),
	})
	a.Allocator = app.NewAllocatorService(logger, a.Metrics)

	a.initHTTPServer(cfg)

	if opts.WatchConfig && opts.ConfigPath != "" {
		if err := holder.WatchFile(); err != nil {
			logger.Warn().Err(err).Msg("config file watch unavailable")
		}
	}
	holder.WatchSignals()
	holder.OnChange(func(c *config.Config) {
		a.applyConfig(c)
	})

	return a, nil
}

func newConfigHolder(path string) (*config.Holder, error) {
	if path != "" {
		logger := SetupLogger(config.Defaults().Logging)
		return config.NewHolder(path, logger)
	}
	cfg, err := config.LoadWithFallback("")
	if err != nil {
		return nil, err
	}
	return config.NewStaticHolder(cfg), nil
}

func (a *App) initDatabase(cfg *config.Config) error {
	db, err := sqlite.Open(cfg.Database.Path)
	if err != nil {
		return err
	}

	if err := db.Migrate(); err != nil {
		db.Close()
		return fmt.Errorf("migrate: %w", err)
	}

	a.DB = db
	a.Logger.Info().Str("path", cfg.Database.Path).Msg("database initialized")
	return nil
}

func (a *App) initHTTPServer(cfg *config.Config) {
	handler := apihttp.NewHandler(apihttp.HandlerConfig{
		Ledger:    a.Ledger,
		Allocator: a.Allocator,
		Logger:    a.Logger,
		Metrics:   a.Metrics,
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	a.HTTPServer = &http.Server{
		Addr:         addr,
		Handler:      handler.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	a.Logger.Info().Str("addr", addr).Msg("http server configured")
}

// applyConfig picks up hot-reloadable settings. Server address, database
// path and metrics toggles need a restart and are logged when they differ.
func (a *App) applyConfig(cfg *config.Config) {
	limits, err := cfg.Limits()
	if err != nil {
		a.Logger.Error().Err(err).Msg("reloaded config has invalid quota overrides, keeping old limits")
		return
	}
	a.Ledger.SetLimits(limits)
	a.Ledger.SetRetention(cfg.RetentionWindow())
	a.Logger.Info().Msg("quota limits and retention window updated from config")

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	if addr != a.HTTPServer.Addr {
		a.Logger.Warn().Str("addr", addr).Msg("server address change requires a restart")
	}
}

// Run starts the HTTP server and retention loop and blocks until shutdown.
func (a *App) Run() error {
	a.startRetentionLoop()

	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info().
			Str("addr", a.HTTPServer.Addr).
			Msg("starting http server")
		if err := a.HTTPServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		a.Logger.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	return a.Shutdown()
}

// startRetentionLoop periodically removes usage events older than the
// retention window. The first sweep runs immediately on startup.
func (a *App) startRetentionLoop() {
	interval := a.Config.Get().Retention.CleanupInterval
	if interval <= 0 {
		interval = 24 * time.Hour
	}

	a.retentionStop = make(chan struct{})
	a.retentionDone = make(chan struct{})

	go func() {
		defer close(a.retentionDone)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		a.runCleanup()
		for {
			select {
			case <-ticker.C:
				a.runCleanup()
			case <-a.retentionStop:
				return
			}
		}
	}()

	a.Logger.Info().Dur("interval", interval).Msg("retention loop started")
}

func (a *App) runCleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	deleted, err := a.Ledger.CleanupOldUsage(ctx)
	if err != nil {
		a.Logger.Error().Err(err).Msg("retention cleanup failed")
		return
	}
	if deleted > 0 {
		a.Logger.Info().Int64("deleted", deleted).Msg("retention cleanup removed old usage events")
	}
}

// Shutdown gracefully stops the application.
func (a *App) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if a.retentionStop != nil {
		close(a.retentionStop)
		select {
		case <-a.retentionDone:
		case <-ctx.Done():
		}
		a.retentionStop = nil
	}

	if a.HTTPServer != nil {
		if err := a.HTTPServer.Shutdown(ctx); err != nil {
			a.Logger.Error().Err(err).Msg("http server shutdown error")
		}
	}

	if a.Config != nil {
		a.Config.Stop()
	}

	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			a.Logger.Error().Err(err).Msg("database close error")
		}
	}

	a.Logger.Info().Msg("shutdown complete")
	return nil
}

// SetupLogger builds a zerolog logger from logging config.
func SetupLogger(cfg config.LoggingConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Format == "text" {
		output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
		return zerolog.New(output).With().Timestamp().Logger()
	}

	return zerolog.New(os.Stdout).With().Timestamp().Logger()
}
