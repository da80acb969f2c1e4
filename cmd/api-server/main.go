package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/Abrahamm4/HomeCare/internal/api"
	"github.com/Abrahamm4/HomeCare/internal/auth"
	"github.com/Abrahamm4/HomeCare/internal/config"
	"github.com/Abrahamm4/HomeCare/internal/db"
	redisclient "github.com/Abrahamm4/HomeCare/internal/redis"
	"github.com/Abrahamm4/HomeCare/internal/schedule"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	logger, err := newLogger(cfg.Env)
	if err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("api-server starting up",
		zap.String("env", cfg.Env),
		zap.String("http_port", cfg.HTTPPort),
	)

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect Postgres
	pgCtx, cancelPg := context.WithTimeout(rootCtx, 10*time.Second)
	pgPool, err := db.ConnectPostgres(pgCtx, cfg.PostgresDSN)
	cancelPg()
	if err != nil {
		logger.Fatal("postgres connection error", zap.Error(err))
	}
	defer pgPool.Close()

	migCtx, cancelMig := context.WithTimeout(rootCtx, 30*time.Second)
	err = db.Migrate(migCtx, pgPool)
	cancelMig()
	if err != nil {
		logger.Fatal("migration error", zap.Error(err))
	}
	logger.Info("connected to Postgres")

	// Connect Redis
	rdb, err := redisclient.NewRedisClient(cfg.RedisAddr, cfg.RedisUsername, cfg.RedisPassword)
	if err != nil {
		logger.Fatal("redis connection error", zap.Error(err))
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			logger.Warn("error closing redis", zap.Error(err))
		}
	}()
	logger.Info("connected to Redis")

	repo := schedule.NewPgRepository(pgPool)
	locker := redisclient.NewRedisSlotLocker(rdb, cfg.LockTTL)

	slotSvc := schedule.NewSlotService(repo, logger)
	bookingSvc := schedule.NewBookingService(repo, locker, logger)

	tokens := auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)
	authSvc := auth.NewService(auth.NewPgStore(pgPool), logger)

	handler := api.NewRouter(api.RouterConfig{
		Slots:    slotSvc,
		Bookings: bookingSvc,
		Auth:     authSvc,
		Tokens:   tokens,
		Validate: api.NewValidator(),
		Logger:   logger,
		PgPool:   pgPool,
		Redis:    rdb,
		Env:      cfg.Env,
		Version:  version,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("http server error", zap.Error(err))
		}
	}()
	logger.Info("listening", zap.String("addr", srv.Addr))

	<-rootCtx.Done()
	logger.Info("shutting down api-server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}

func newLogger(env string) (*zap.Logger, error) {
	if env == "prod" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
