package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pratik-mahalle/linkboost/internal/api/handlers"
	"github.com/pratik-mahalle/linkboost/internal/api/middleware"
	"github.com/pratik-mahalle/linkboost/internal/api/router"
	"github.com/pratik-mahalle/linkboost/internal/config"
	"github.com/pratik-mahalle/linkboost/internal/gateway"
	"github.com/pratik-mahalle/linkboost/internal/health"
	"github.com/pratik-mahalle/linkboost/internal/pkg/logger"
	"github.com/pratik-mahalle/linkboost/internal/pkg/tracing"
	"github.com/pratik-mahalle/linkboost/internal/pkg/validator"
	"github.com/pratik-mahalle/linkboost/internal/realtime"
	"github.com/pratik-mahalle/linkboost/internal/repository/postgres"
	"github.com/pratik-mahalle/linkboost/internal/services"
	"github.com/pratik-mahalle/linkboost/migrations"
)

// @title LinkBoost API
// @version 1.0
// @description LinkedIn profile and engagement analytics
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log := logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	log.WithFields(map[string]interface{}{
		"service":     cfg.Server.ServiceName,
		"version":     cfg.Server.Version,
		"environment": cfg.Server.Environment,
	}).Info("Starting LinkBoost API")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tp, err := tracing.New(ctx, tracing.Config{
		ServiceName: cfg.Server.ServiceName,
		Version:     cfg.Server.Version,
		Exporter:    cfg.Tracing.Exporter,
	})
	if err != nil {
		return fmt.Errorf("failed to init tracing: %w", err)
	}

	db, err := postgres.New(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := postgres.RunMigrations(db, cfg.Database.Driver, migrations.GetFS()); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	log.With("driver", cfg.Database.Driver).Info("Database ready")

	// Realtime hub, on its own listener
	var (
		eventPub  handlers.EventPublisher
		healthPub health.Publisher
		wsServer  *http.Server
	)
	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	if cfg.WebSocket.Enabled {
		hub := realtime.NewHub(cfg.Auth.JWTSecret, []string{cfg.Server.FrontendURL}, log)
		eventPub, healthPub = hub, hub
		go hub.Run(hubCtx)

		mux := http.NewServeMux()
		mux.Handle("/ws", hub)
		wsServer = &http.Server{
			Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.WebSocket.Port),
			Handler:           mux,
			ReadHeaderTimeout: cfg.Server.ReadTimeout,
		}
	}

	// Health aggregation
	prober := health.NewProber(nil)
	agg := health.NewAggregator(health.Info{
		Service:     cfg.Server.ServiceName,
		Version:     cfg.Server.Version,
		Environment: cfg.Server.Environment,
		Started:     time.Now(),
	}, cfg.Health.Timeout)
	agg.Register(health.DatabaseCheck(db, cfg.Health.Timeout))
	for _, svc := range cfg.Health.ExternalServices {
		agg.Register(health.ServiceCheck(svc.Name, svc.URL, svc.Required, prober, cfg.Health.Timeout))
	}
	agg.Register(health.MemoryCheck(health.Thresholds{
		Warning:  cfg.Health.MemoryWarning,
		Critical: cfg.Health.MemoryCritical,
	}))
	agg.Register(health.CPUCheck(health.NewCPUSampler(), health.Thresholds{
		Warning:  cfg.Health.CPUWarning,
		Critical: cfg.Health.CPUCritical,
	}))

	monitor, err := health.NewMonitor(agg, cfg.Health.MonitorSchedule, log, healthPub)
	if err != nil {
		return err
	}
	monitor.Start()
	defer monitor.Stop()

	limiter := middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	go limiter.Run(ctx)

	proxy := gateway.New(gateway.Config{Timeout: cfg.Upstream.Timeout}, log, tp.Tracer())
	metricService := services.NewMetricsService(postgres.NewMetricRepository(db), log)

	h := &router.Handlers{
		Health:  handlers.NewHealthHandler(agg),
		Metrics: handlers.NewMetricsHandler(metricService, eventPub, log, validator.New(), cfg.Server.Environment),
		Proxy:   handlers.NewProxyHandler(proxy, cfg.Upstream.AnalyticsServiceURL, cfg.Upstream.GatewayURL),
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.New(cfg, log, h, limiter),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 2)
	go func() {
		log.With("addr", srv.Addr).Info("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()
	if wsServer != nil {
		go func() {
			log.With("addr", wsServer.Addr).Info("WebSocket server listening")
			if err := wsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("websocket server: %w", err)
			}
		}()
	}

	var runErr error
	select {
	case <-ctx.Done():
		log.Info("Shutdown signal received")
	case runErr = <-errCh:
		log.ErrorWithErr(runErr, "Server failed")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.ErrorWithErr(err, "HTTP server shutdown failed")
	}
	if wsServer != nil {
		if err := wsServer.Shutdown(shutdownCtx); err != nil {
			log.ErrorWithErr(err, "WebSocket server shutdown failed")
		}
	}
	stopHub()
	if err := tp.Shutdown(shutdownCtx); err != nil {
		log.ErrorWithErr(err, "Tracer shutdown failed")
	}

	log.Info("Server stopped")
	return runErr
}
