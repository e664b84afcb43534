// AngelaMos | 2026
// main.go

package main

import (
	"context"
	"errors"
	"flag"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/catclube/registry/internal/auth"
	"github.com/catclube/registry/internal/config"
	"github.com/catclube/registry/internal/core"
	"github.com/catclube/registry/internal/health"
	"github.com/catclube/registry/internal/middleware"
	"github.com/catclube/registry/internal/notify"
	"github.com/catclube/registry/internal/server"
	"github.com/catclube/registry/internal/storage"
)

const (
	drainDelay = 5 * time.Second
)

func main() {
	configPath := flag.String("config", "", "path to an optional YAML config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

//nolint:funlen // bootstrap code is inherently verbose
func run(configPath string) error {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := setupLogger(cfg.Log)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"name", cfg.App.Name,
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
	)

	var telemetry *core.Telemetry
	if cfg.Otel.Enabled {
		tel, telErr := core.NewTelemetry(ctx, cfg.Otel, cfg.App)
		if telErr != nil {
			logger.Warn("failed to initialize telemetry", "error", telErr)
		} else {
			telemetry = tel
			logger.Info("OpenTelemetry tracer initialized",
				"endpoint", cfg.Otel.Endpoint,
			)
		}
	}

	backend, err := storage.Open(ctx, cfg.Database, true)
	if err != nil {
		return err
	}
	logger.Info("storage ready", "driver", backend.Driver)

	redis, err := core.NewRedis(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	if redis.Enabled() {
		logger.Info("redis connected", "pool_size", cfg.Redis.PoolSize)
	} else {
		logger.Warn("redis not configured, using in-process revocation and rate limits")
	}

	sessions, err := newSessionManager(cfg, redis)
	if err != nil {
		return err
	}
	logger.Info("session signer initialized",
		"algorithm", "ES256",
		"key_id", sessions.GetKeyID(),
	)

	validate, err := server.NewValidator()
	if err != nil {
		return err
	}

	mailer := notify.NewDispatcher(notify.NewSender(cfg.Mail, logger))

	deps := []health.Dependency{{Name: "storage", Checker: backend}}
	if redis.Enabled() {
		deps = append(deps, health.Dependency{Name: "redis", Checker: redis})
	}
	healthHandler := health.NewHandler(deps...)

	srv := server.New(server.Config{
		ServerConfig:  cfg.Server,
		CORS:          cfg.CORS,
		Production:    cfg.IsProduction(),
		HealthHandler: healthHandler,
		Logger:        logger,
		GlobalLimiter: middleware.NewRateLimiter(redis.Client, middleware.RateLimitConfig{
			Limit: middleware.Per(
				cfg.RateLimit.Window,
				cfg.RateLimit.Requests,
				cfg.RateLimit.Burst,
			),
		}).Handler,
	})

	routes := server.NewRoutes(server.Deps{
		Backend:  backend,
		Redis:    redis,
		Sessions: sessions,
		Validate: validate,
		Notifier: mailer,
		Session:  cfg.Session,
		Reset:    cfg.Reset,
	})
	routes.CredentialLimiter = middleware.NewRateLimiter(redis.Client, middleware.RateLimitConfig{
		Limit: middleware.PerMinute(
			cfg.RateLimit.AuthRequests,
			cfg.RateLimit.AuthBurst,
		),
		KeyFunc: middleware.KeyByIPAndEndpoint,
	}).Handler
	if cfg.Metrics.Enabled {
		routes.MetricsPath = cfg.Metrics.Path
	}
	srv.Mount(routes)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		cfg.Server.ShutdownTimeout+drainDelay+5*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx, drainDelay); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	mailer.Wait()

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			logger.Error("telemetry shutdown error", "error", err)
		}
	}

	if err := redis.Close(); err != nil {
		logger.Error("redis close error", "error", err)
	}

	if err := backend.Close(); err != nil {
		logger.Error("database close error", "error", err)
	}

	logger.Info("application stopped")
	return nil
}

// newSessionManager loads the signing key from disk. Outside production a
// missing key file is replaced by a throwaway key.
func newSessionManager(cfg *config.Config, redis *core.Redis) (*auth.JWTManager, error) {
	var revocations auth.RevocationList
	if redis.Enabled() {
		revocations = auth.NewRedisRevocationList(redis.Client)
	}

	manager, err := auth.NewJWTManager(cfg.Session, revocations)
	if err == nil || cfg.IsProduction() || !errors.Is(err, fs.ErrNotExist) {
		return manager, err
	}

	slog.Warn("session key not found, using an ephemeral key",
		"path", cfg.Session.PrivateKeyPath,
	)
	return auth.NewEphemeralJWTManager(cfg.Session, revocations)
}

func setupLogger(cfg config.LogConfig) *slog.Logger {
	var handler slog.Handler

	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
