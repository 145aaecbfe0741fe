package cmd

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/fulmenhq/gofulmen/signals"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/hayeswinckle/appraisals/internal/appraisal"
	"github.com/hayeswinckle/appraisals/internal/config"
	errwrap "github.com/hayeswinckle/appraisals/internal/errors"
	"github.com/hayeswinckle/appraisals/internal/lead"
	"github.com/hayeswinckle/appraisals/internal/leadid"
	"github.com/hayeswinckle/appraisals/internal/mailer"
	"github.com/hayeswinckle/appraisals/internal/metrics"
	"github.com/hayeswinckle/appraisals/internal/observability"
	"github.com/hayeswinckle/appraisals/internal/ratelimit"
	"github.com/hayeswinckle/appraisals/internal/server"
	"github.com/hayeswinckle/appraisals/internal/server/handlers"
	"github.com/hayeswinckle/appraisals/internal/site"
)

var (
	serverPort int
	serverHost string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Start the appraisal site with graceful shutdown support.

Signal Handling:
  • Ctrl+C (SIGINT) or SIGTERM: Graceful shutdown
  • Ctrl+C twice within 2s: Force quit
  • SIGHUP: Reload config and apply new rate limit settings

Expired rate limit entries are swept every rate_limit.cleanup_interval.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serverHost, "host", "localhost", "server host (overrides server.host)")
	serveCmd.Flags().IntVarP(&serverPort, "port", "p", 8080, "server port (overrides server.port)")
}

func runServe(cmd *cobra.Command, args []string) error {
	identity := GetAppIdentity()
	namespace := identity.TelemetryNamespace()

	cfg, err := loadedConfig(cmd.Context())
	if err != nil {
		return errwrap.WrapConfigInvalid(cmd.Context(), err, "config load failed")
	}
	if cmd.Flags().Changed("host") {
		cfg.Server.Host = serverHost
	}
	if cmd.Flags().Changed("port") {
		cfg.Server.Port = serverPort
	}

	observability.InitServerLogger(observability.ServerLogOptions{
		Service:   identity.BinaryName,
		Level:     cfg.Logging.Level,
		Profile:   cfg.Logging.Profile,
		Namespace: namespace,
	})
	logger := observability.ServerLogger

	if cfg.Metrics.Enabled {
		if err := observability.InitMetrics(identity.BinaryName, cfg.Metrics.Port, namespace); err != nil {
			logger.Error("Failed to initialize metrics", zap.Error(err))
			return errwrap.WrapInternal(cmd.Context(), err, "metrics initialization failed")
		}
	}

	if err := cfg.Email.ValidateAccounts(); err != nil {
		logger.Error("EmailJS accounts are incomplete", zap.Error(err))
		return errwrap.WrapConfigInvalid(cmd.Context(), err, "email configuration invalid")
	}

	app, err := buildApp(cfg)
	if err != nil {
		logger.Error("Failed to wire application", zap.Error(err))
		return errwrap.WrapInternal(cmd.Context(), err, "application wiring failed")
	}

	logger.Info("Initializing server",
		zap.String("service", identity.BinaryName),
		zap.String("namespace", namespace),
		zap.String("version", versionInfo.Version),
		zap.String("host", cfg.Server.Host),
		zap.Int("port", cfg.Server.Port),
		zap.Bool("metrics_enabled", cfg.Metrics.Enabled),
		zap.Int("metrics_port", observability.GetMetricsPort()),
		zap.Int("rate_limit_max", cfg.RateLimit.MaxRequests),
		zap.Duration("rate_limit_window", cfg.RateLimit.Window))

	hm := handlers.NewHealthManager(versionInfo.Version)
	registerHealthChecks(hm, cfg, app)
	handlers.SetAppIdentity(identity)

	srv := server.New(cfg.Server.Host, cfg.Server.Port, server.Options{
		Appraisals:    handlers.NewAppraisalHandler(app.service, app.renderer),
		Health:        hm,
		DisableHealth: !cfg.Health.Enabled,
		MetricsPort:   observability.GetMetricsPort(),
		ReadTimeout:   cfg.Server.ReadTimeout,
		WriteTimeout:  cfg.Server.WriteTimeout,
		IdleTimeout:   cfg.Server.IdleTimeout,
	})

	shutdownTimeout := cfg.Server.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}

	// LIFO: the HTTP server stops first, the logger flushes last.
	signals.OnShutdown(func(ctx context.Context) error {
		logger.Info("Flushing logger...")
		if err := logger.Sync(); err != nil {
			logger.Warn("Logger sync returned error (may be benign)", zap.Error(err))
		}
		return nil
	})
	signals.OnShutdown(func(ctx context.Context) error {
		if err := observability.ShutdownMetrics(); err != nil {
			logger.Warn("Metrics exporter stop returned error", zap.Error(err))
		}
		return nil
	})
	signals.OnShutdown(func(ctx context.Context) error {
		logger.Info("Shutting down HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return errwrap.WrapInternal(ctx, err, "server shutdown failed")
		}
		logger.Info("HTTP server stopped gracefully")
		return nil
	})

	signals.OnReload(func(ctx context.Context) error {
		logger.Info("Received SIGHUP: reloading configuration")
		reloaded, err := config.LoadFile(ctx, cfgFile)
		if err != nil {
			logger.Error("Failed to reload config", zap.Error(err))
			return errwrap.WrapConfigInvalid(ctx, err, "config reload failed")
		}
		app.limiter.SetLimits(reloaded.RateLimit.MaxRequests, reloaded.RateLimit.Window)
		logger.Info("Rate limit settings reloaded",
			zap.Int("rate_limit_max", reloaded.RateLimit.MaxRequests),
			zap.Duration("rate_limit_window", reloaded.RateLimit.Window))
		return nil
	})

	if err := signals.EnableDoubleTap(signals.DoubleTapConfig{
		Window:  2 * time.Second,
		Message: "Press Ctrl+C again within 2 seconds to force quit",
	}); err != nil {
		logger.Warn("Failed to enable double-tap force quit", zap.Error(err))
	}

	runCtx, stop := context.WithCancel(cmd.Context())
	defer stop()

	started := time.Now()
	metrics.SetServerStartTime(started.Unix())

	g, gctx := errgroup.WithContext(runCtx)
	g.Go(func() error {
		defer stop()
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return app.limiter.Run(gctx, cfg.RateLimit.CleanupInterval, func(removed int, err error) {
			metrics.SetServerUptime(int64(time.Since(started).Seconds()))
			if err != nil {
				logger.Warn("Rate limit sweep failed", zap.Error(err))
				return
			}
			remaining := app.store.Len()
			metrics.RecordRateLimitSweep(removed, remaining)
			logger.Debug("Rate limit sweep complete",
				zap.Int("evicted", removed),
				zap.Int("remaining", remaining))
		})
	})
	g.Go(func() error {
		if err := signals.Listen(gctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Signal handler error", zap.Error(err))
			return err
		}
		return nil
	})

	hm.MarkStarted()

	if err := g.Wait(); err != nil {
		return errwrap.WrapInternal(cmd.Context(), err, "server error")
	}
	return nil
}

// components holds the wired parts serve needs to reach after startup.
type components struct {
	renderer *site.Renderer
	store    *ratelimit.MemoryStore
	limiter  *ratelimit.Limiter
	service  *appraisal.Service
}

func buildApp(cfg *config.Config) (*components, error) {
	if err := leadid.Init(cfg.Site.NodeID); err != nil {
		return nil, err
	}

	catalog, err := lead.LoadCatalog()
	if err != nil {
		return nil, err
	}
	renderer, err := site.NewRenderer(catalog)
	if err != nil {
		return nil, err
	}
	location, err := cfg.Site.Location()
	if err != nil {
		return nil, err
	}

	store := ratelimit.NewMemoryStore()
	limiter := ratelimit.New(cfg.RateLimit.MaxRequests, cfg.RateLimit.Window)
	limiter.Store = store

	client := mailer.NewClient(cfg.Email.BaseURL, cfg.Email.RatePerSecond, cfg.Email.Burst)
	client.Timeout = cfg.Email.Timeout

	service, err := appraisal.NewService(appraisal.Options{
		Catalog:    catalog,
		Limiter:    limiter,
		Sender:     client,
		Accounts:   cfg.Email.Accounts(),
		Location:   location,
		References: leadid.NextReference,
		Logger:     observability.ServerLogger,
	})
	if err != nil {
		return nil, err
	}

	return &components{
		renderer: renderer,
		store:    store,
		limiter:  limiter,
		service:  service,
	}, nil
}

func registerHealthChecks(hm *handlers.HealthManager, cfg *config.Config, a *components) {
	identity := GetAppIdentity()

	hm.RegisterChecker("app_identity", handlers.CheckerFunc(func(ctx context.Context) error {
		switch {
		case identity == nil || identity.BinaryName == "":
			return errwrap.NewConfigInvalidError("app identity missing binary name")
		case identity.EnvPrefix == "":
			return errwrap.NewConfigInvalidError("app identity missing env prefix")
		}
		return nil
	}))
	hm.RegisterChecker("email_accounts", handlers.CheckerFunc(func(ctx context.Context) error {
		return cfg.Email.ValidateAccounts()
	}))
	hm.RegisterChecker("rate_limiter", handlers.CheckerFunc(func(ctx context.Context) error {
		_, err := a.store.Entries(ctx)
		return err
	}))
	if cfg.Metrics.Enabled {
		hm.RegisterChecker("telemetry", handlers.CheckerFunc(func(ctx context.Context) error {
			if observability.TelemetrySystem == nil || observability.PrometheusExporter == nil {
				return errwrap.NewInternalError("telemetry system not initialized")
			}
			return nil
		}))
	}
}
