package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"dwellmetrics/api/analytics"
	"dwellmetrics/api/config"
	"dwellmetrics/api/database"
	"dwellmetrics/api/handlers"
	"dwellmetrics/api/logging"
	"dwellmetrics/api/metrics"
	"dwellmetrics/api/store"
	"dwellmetrics/api/utils"
)

func newServeCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long: `Start the tracking and reporting API.

Configuration is read from the environment (see .env). Users always live in
PostgreSQL; events go to the backend named by EVENT_BACKEND.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(root.envFiles...)
			if err != nil {
				return err
			}
			if err := cfg.ValidateServer(); err != nil {
				return err
			}
			return runServe(cmd.Context(), cfg)
		},
	}
}

func runServe(ctx context.Context, cfg *config.Config) error {
	logger := logging.New(cfg.LogLevel, cfg.Server.Release)
	if cfg.Server.Release {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pg, err := database.NewPostgresDB(ctx, cfg.Postgres, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize PostgreSQL database: %w", err)
	}
	defer pg.Close()
	if err := pg.EnsureSchema(ctx); err != nil {
		return err
	}

	events, closeEvents, err := openEventStore(ctx, cfg, pg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize event store: %w", err)
	}
	defer closeEvents()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.NewMetrics(reg)

	reports := analytics.NewService(events, newEngine(cfg.Analytics),
		analytics.WithTimeout(cfg.Analytics.QueryTimeout),
		analytics.WithRecorder(m),
		analytics.WithLogger(logger),
	)
	tokens := utils.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	router := newRouter(routerDeps{
		auth: handlers.NewAuthHandlers(store.NewUserStore(pg.DB, logger), tokens, logger),
		tracking: handlers.NewTrackingHandlers(events, reports, handlers.TrackingConfig{
			IngestTimeout: cfg.Analytics.IngestTimeout,
			QueryTimeout:  cfg.Analytics.QueryTimeout,
			Ingested:      m,
		}, logger),
		tokens:   tokens,
		apiKey:   cfg.Auth.APIKey,
		origin:   cfg.Server.FrontendOrigin,
		metrics:  m,
		gatherer: reg,
		logger:   logger,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.WithField("port", cfg.Server.Port).Info("API server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("API server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	logger.Info("Server exiting")
	return nil
}
