// Package main is the entry point for the Körjournal API server.
// Its sole responsibility is wiring dependencies together and starting the server.
// No business logic belongs here.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/pressly/goose/v3"

	"github.com/mlindvall/korjournal/internal/config"
	"github.com/mlindvall/korjournal/internal/domain"
	"github.com/mlindvall/korjournal/internal/ha"
	"github.com/mlindvall/korjournal/internal/handler"
	"github.com/mlindvall/korjournal/internal/middleware"
	"github.com/mlindvall/korjournal/internal/repo"
	"github.com/mlindvall/korjournal/internal/service"
	"github.com/mlindvall/korjournal/migrations"
)

// maxRequestBodyBytes caps JSON payloads. Trip and settings bodies are tiny;
// anything near this size is abuse.
const maxRequestBodyBytes = 1 << 20

func main() {
	// --- Config -----------------------------------------------------------
	// .env is a local development convenience; absence is not an error.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	// --- Logger -----------------------------------------------------------
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// --- Database ---------------------------------------------------------
	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// Verify the DB is reachable before accepting traffic.
	if err := pool.Ping(context.Background()); err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	slog.Info("database connection established")

	if err := runMigrations(pool); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// --- Repositories and services ----------------------------------------
	atomic := repo.NewAtomic(pool)
	tripRepo := repo.NewTripRepo(pool)
	vehicleRepo := repo.NewVehicleRepo(pool)
	templateRepo := repo.NewTemplateRepo(pool)
	settingsRepo := repo.NewSettingsRepo(pool)
	snapshotRepo := repo.NewSnapshotRepo(pool)

	haFallback := domain.HASettings{
		BaseURL:        cfg.HABaseURL,
		Token:          cfg.HAToken,
		OdometerEntity: cfg.HAOdometerEntity,
		ForceDomain:    cfg.HAForceDomain,
		ForceService:   cfg.HAForceService,
		ForceData:      cfg.HAForceData,
	}
	newHAClient := func(baseURL, token string) service.HAClient {
		if cfg.HAVerifySSL {
			return ha.NewClient(baseURL, token)
		}
		return ha.NewClient(baseURL, token, ha.WithInsecureTLS())
	}

	tripService := service.NewTripService(atomic, tripRepo)
	exportService := service.NewExportService(tripRepo)
	templateService := service.NewTemplateService(templateRepo)
	settingsService := service.NewSettingsService(settingsRepo)
	haService := service.NewHAService(settingsRepo, vehicleRepo, snapshotRepo, haFallback, newHAClient)

	server := handler.NewServer(tripService, exportService, templateService, settingsService, haService, pool)

	// --- Router -----------------------------------------------------------
	// Middleware order: RequestID → RealIP → SlogLogger → Recoverer → CORS →
	// body size cap. Auth wraps only the API routes; /healthz stays open for
	// load balancer probes.
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(maxRequestBodyBytes))

	r.Get("/healthz", server.Healthz())

	r.Group(func(r chi.Router) {
		r.Use(middleware.NewAuthHandler([]byte(cfg.JWTSecret)))
		r.Mount("/", server.Routes())
	})

	// --- Background poller -------------------------------------------------
	// Optional: polls the odometer on a fixed interval using the server-wide
	// HA settings and feeds the motion tracker. It shuts down with the server.
	pollCtx, cancelPoll := context.WithCancel(context.Background())
	defer cancelPoll()

	if cfg.HAPollInterval > 0 {
		poller := ha.NewPoller(cfg.HAPollInterval, func(ctx context.Context) (ha.Reading, error) {
			reading, err := haService.Poll(ctx, uuid.Nil, cfg.HAPollVehicle)
			if err != nil {
				return ha.Reading{}, err
			}
			return ha.Reading{ValueKm: reading.ValueKm, Entity: reading.Entity, At: reading.At}, nil
		}, logger)
		go poller.Run(pollCtx)
	}

	// --- HTTP Server ------------------------------------------------------
	// Explicit timeouts prevent slowloris and resource exhaustion attacks.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown: wait for OS signal, then give in-flight requests
	// up to 15 seconds to complete before forcefully closing.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-stop
	slog.Info("shutting down server")
	cancelPoll()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// runMigrations applies all pending migrations from the embedded FS.
// goose needs a database/sql handle, so one is borrowed from the pool.
func runMigrations(pool *pgxpool.Pool) error {
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.FS)
	if err != nil {
		return err
	}

	results, err := provider.Up(context.Background())
	if err != nil {
		return err
	}
	for _, res := range results {
		slog.Info("migration applied", "source", res.Source.Path)
	}
	return nil
}
