package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	_ "github.com/joho/godotenv/autoload"
	"github.com/riandyrn/otelchi"
	otelchimetric "github.com/riandyrn/otelchi/metric"
	"github.com/socialchef/edgewatch/internal/config"
	"github.com/socialchef/edgewatch/internal/db"
	"github.com/socialchef/edgewatch/internal/feedback"
	"github.com/socialchef/edgewatch/internal/logger"
	"github.com/socialchef/edgewatch/internal/metrics"
	"github.com/socialchef/edgewatch/internal/middleware"
	"github.com/socialchef/edgewatch/internal/monitor"
	"github.com/socialchef/edgewatch/internal/sentry"
	"github.com/socialchef/edgewatch/internal/telemetry"
	"go.opentelemetry.io/otel"
)

func main() {
	ctx := context.Background()

	cfg := config.MustLoad()

	// Initialize logger with OTel support
	appLogger := logger.New(cfg.Environment)
	slog.SetDefault(appLogger)

	policy, err := monitor.NewPolicy(monitor.Settings{
		Environment:  cfg.Environment,
		DSN:          cfg.SentryDSN,
		SampleRate:   cfg.SentrySampleRate,
		Release:      cfg.Release,
		FunctionName: cfg.FunctionName,
		Runtime:      cfg.Observability.Runtime,
		Deployment:   cfg.Observability.Deployment,
	})
	if err != nil {
		log.Fatalf("Invalid monitoring config: %v", err)
	}

	// Initialize telemetry
	headers, err := cfg.OTLPHeaders()
	if err != nil {
		log.Fatalf("Invalid OTLP headers: %v", err)
	}
	shutdown, err := telemetry.InitTelemetry(ctx, telemetry.Config{
		ServiceName:    cfg.FunctionName,
		ServiceVersion: cfg.Release,
		Environment:    cfg.Environment,
		Endpoint:       cfg.OtelExporterOTLPEndpoint,
		Headers:        headers,
		SampleRate:     policy.TraceSampleRate(),
	})
	if err != nil {
		slog.Warn("Failed to init telemetry", "error", err)
	} else {
		defer shutdown(ctx)
	}

	// Initialize Sentry
	sentryClient := sentry.NewClient(
		metrics.NewCounters(otel.Meter("edgewatch/functions")),
		sentry.WithLogger(appLogger),
	)
	mon, err := monitor.New(policy, sentryClient, monitor.WithLogger(appLogger))
	if err != nil {
		log.Fatalf("Failed to initialize monitoring: %v", err)
	}
	defer sentryClient.Flush(cfg.Observability.FlushTimeout)
	defer sentryClient.Recover()

	// Database connection
	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	feedbackHandler := feedback.NewHandler(mon, feedback.NewPGStore(pool))

	// Router
	r := chi.NewRouter()

	// Middleware
	r.Use(otelchi.Middleware(cfg.FunctionName,
		otelchi.WithChiRoutes(r),
		otelchi.WithFilter(func(r *http.Request) bool {
			return r.URL.Path != "/health"
		}),
	))

	// HTTP metrics
	metricCfg := otelchimetric.NewBaseConfig(cfg.FunctionName, otelchimetric.WithMeterProvider(otel.GetMeterProvider()))
	r.Use(otelchimetric.NewRequestDurationMillis(metricCfg))
	r.Use(otelchimetric.NewRequestInFlight(metricCfg))
	r.Use(otelchimetric.NewResponseSizeBytes(metricCfg))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Client-Info", "apikey", middleware.RequestIDHeader},
		ExposedHeaders: []string{middleware.RequestIDHeader},
	}))

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Function routes
	r.Group(func(r chi.Router) {
		r.Use(middleware.Instrument(mon, sentryClient))
		if cfg.AuthEnabled() {
			r.Use(middleware.AuthMiddleware(cfg.SupabaseJWTSecret, cfg.SupabaseURL, mon))
		} else {
			slog.Warn("SUPABASE_JWT_SECRET not set, function routes are unauthenticated")
		}
		r.Method(http.MethodPost, "/functions/v1/feedback", feedbackHandler)
	})

	slog.Info("Starting server",
		"port", cfg.Port,
		"function", cfg.FunctionName,
		"environment", policy.Mode().String(),
	)

	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		slog.Error("Server failed", "error", err)
	}
}
