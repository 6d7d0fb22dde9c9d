package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"healthcli/internal/config"
	"healthcli/internal/health"
	"healthcli/internal/infrastructure"
	"healthcli/internal/middleware"
	transport "healthcli/internal/transport/http"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := infrastructure.MustInitializeLogger(cfg.Logging)
	defer infrastructure.CloseLogFile()

	if err := run(cfg, logger); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx := context.Background()

	providers, err := infrastructure.InitializeOTel(infrastructure.DefaultOTelConfig(), logger)
	if err != nil {
		return fmt.Errorf("initialize observability: %w", err)
	}
	defer providers.Shutdown(ctx)

	rules := health.DefaultRules()
	if cfg.Analysis.RulesFile != "" {
		if rules, err = health.LoadRulesFile(cfg.Analysis.RulesFile); err != nil {
			return fmt.Errorf("load rules: %w", err)
		}
	}

	analyzer := health.NewAnalyzer(rules, logger)
	analyzer.SetConfiguration(cfg.Analysis.RollingWindow, cfg.Analysis.Workers)

	router := buildRouter(cfg, logger, analyzer, providers)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case sig := <-stop:
		logger.Info("shutting down", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func buildRouter(cfg *config.Config, logger *slog.Logger, analyzer *health.Analyzer, providers *infrastructure.OTelProviders) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.StructuredLogger(logger))
	r.Use(middleware.Recoverer(logger))
	r.Use(middleware.Timeout(cfg.Server.WriteTimeout, logger))
	r.Use(render.SetContentType(render.ContentTypeJSON))
	if cfg.Server.RateLimit.Enabled {
		limiter := middleware.NewRateLimiter(cfg.Server.RateLimit.RPS, cfg.Server.RateLimit.Burst, logger)
		r.Use(limiter.Handler)
	}

	healthHandler := transport.NewHealthHandler(logger)
	analysisHandler := transport.NewAnalysisHandler(analyzer, logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.HealthCheck)
		analysisHandler.RegisterRoutes(r)
	})

	if providers.PrometheusHTTP != nil {
		r.Handle("/metrics", providers.PrometheusHTTP)
	}
	return r
}
