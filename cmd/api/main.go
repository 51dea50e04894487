package main

import (
	"context"
	"crypto/tls"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/clinicdesk/platform/internal/api/router"
	"github.com/clinicdesk/platform/internal/appointments"
	"github.com/clinicdesk/platform/internal/availability"
	"github.com/clinicdesk/platform/internal/civiltime"
	"github.com/clinicdesk/platform/internal/clinics"
	appconfig "github.com/clinicdesk/platform/internal/config"
	"github.com/clinicdesk/platform/internal/http/handlers"
	"github.com/clinicdesk/platform/internal/observability/metrics"
	"github.com/clinicdesk/platform/internal/schedule"
	"github.com/clinicdesk/platform/pkg/logging"
)

func main() {
	// Load .env when present; real deployments use the environment.
	_ = godotenv.Load()

	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting clinicdesk API server",
		"env", cfg.Env,
		"port", cfg.Port,
		"timezone", cfg.ClinicTimezone,
	)

	clock, err := civiltime.NewClock(cfg.ClinicTimezone)
	if err != nil {
		logger.Error("invalid clinic timezone", "error", err, "timezone", cfg.ClinicTimezone)
		os.Exit(1)
	}

	if cfg.DatabaseURL == "" {
		logger.Error("DATABASE_URL is required")
		os.Exit(1)
	}
	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	schedMetrics := metrics.NewSchedulingMetrics(prometheus.DefaultRegisterer)

	// Slot cache is optional; everything degrades to direct reads without it.
	var slotCache *schedule.SlotCache
	if cfg.RedisAddr != "" {
		opts := &redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword}
		if cfg.RedisTLS {
			opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}
		slotCache = schedule.NewSlotCache(redis.NewClient(opts), cfg.SlotCacheTTL, logger)
		logger.Info("slot cache enabled", "addr", cfg.RedisAddr, "ttl", cfg.SlotCacheTTL)
	}

	clinicRepo := clinics.NewRepository(pool)
	ruleRepo := availability.NewRepository(pool)
	apptRepo := appointments.NewRepository(pool)

	scheduleService := schedule.NewService(clinicRepo, ruleRepo, apptRepo, clock, cfg.DefaultSlotMinutes, logger).
		WithCache(slotCache).
		WithMetrics(schedMetrics)
	bookingService := appointments.NewService(apptRepo, ruleRepo, clinicRepo, clock, cfg.DefaultSlotMinutes, logger).
		WithMetrics(schedMetrics)
	if slotCache != nil {
		bookingService = bookingService.WithInvalidator(slotCache)
	}

	routerCfg := &router.Config{
		Logger:              logger,
		ScheduleHandler:     schedule.NewHandler(scheduleService, logger),
		ClinicsHandler:      clinics.NewHandler(clinicRepo, logger),
		AppointmentsHandler: appointments.NewHandler(bookingService, logger),
		AdminAppointments:   handlers.NewAdminAppointmentsHandler(apptRepo, clock, logger),
		MetricsHandler:      promhttp.Handler(),
		AdminAuthSecret:     cfg.AdminJWTSecret,
		CORSAllowedOrigins:  cfg.CORSAllowedOrigins,
		RateLimitPerSecond:  cfg.RateLimitPerSecond,
		RateLimitBurst:      cfg.RateLimitBurst,
	}
	r := router.New(routerCfg)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
