// Command server runs the SnapOrtho site: server-rendered pages, the
// deep-link bounce, and the JSON API behind BroBot.
//
// @title                      SnapOrtho API
// @version                    1.0
// @description                BroBot case-prep answers, feedback, accounts, onboarding profiles and one-time UI flags.
// @BasePath                   /api/v1
// @securityDefinitions.apikey BearerAuth
// @in                         header
// @name                       Authorization
// @description                Session token as "Bearer <token>".
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

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/snaportho/snaportho-web/internal/config"
	"github.com/snaportho/snaportho-web/internal/generation"
	httpapi "github.com/snaportho/snaportho-web/internal/http"
	"github.com/snaportho/snaportho-web/internal/observability"
	"github.com/snaportho/snaportho-web/internal/repo"
	"github.com/snaportho/snaportho-web/internal/seen"
	"github.com/snaportho/snaportho-web/internal/sysutil"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

const idempotencySweepEvery = 15 * time.Minute

func main() {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg := config.MustLoad()

	closeLog := sysutil.SetupLogger(sysutil.LoggerOptions{
		Level:   cfg.LogLevel,
		Pretty:  cfg.LogPretty,
		File:    cfg.LogFile,
		Service: sysutil.FirstNonEmpty(cfg.OTEL.ServiceName, "snaportho-web"),
	})
	defer func() { _ = closeLog() }()

	if err := run(cfg); err != nil {
		log.Error().Err(err).Msg("server exited")
		_ = closeLog()
		os.Exit(1)
	}
}

func run(cfg config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Auth.JWTSecret == config.DevJWTSecret {
		log.Warn().Msg("AUTH_JWT_SECRET is not set; using the development signing key")
	}

	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		return fmt.Errorf("otel: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownOTel(sctx); err != nil {
			log.Warn().Err(err).Msg("otel shutdown")
		}
	}()

	db, err := repo.Open(repo.Options{
		Driver:  cfg.DB.Driver,
		Path:    cfg.DB.Path,
		URL:     cfg.DB.URL,
		Tracing: cfg.OTEL.Enabled,
	})
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	if err := repo.AutoMigrate(db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	gen, err := newGenerator(ctx, cfg.BroBot)
	if err != nil {
		return err
	}
	store, closeStore, err := newSeenStore(ctx, cfg.Seen, db)
	if err != nil {
		return err
	}
	defer closeStore()

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	httpapi.RegisterRoutes(r, db, gen, store, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}

	go sweepIdempotency(ctx, db)

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("addr", srv.Addr).
			Str("db", cfg.DB.Driver).
			Str("generator", cfg.BroBot.Generator).
			Str("seen", cfg.Seen.Backend).
			Str("version", version).
			Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	}

	sctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info().Msg("shutdown complete")
	return nil
}

// newGenerator selects the case-prep backend from GENERATOR.
func newGenerator(ctx context.Context, cfg config.BroBotConfig) (generation.Generator, error) {
	switch cfg.Generator {
	case "gemini":
		g, err := generation.NewGeminiGenerator(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, fmt.Errorf("gemini generator: %w", err)
		}
		return g, nil
	default:
		return generation.NewHTTPGenerator(cfg.GeneratorURL, cfg.GeneratorKey, cfg.Timeout), nil
	}
}

// newSeenStore selects the seen-flag backend from SEEN_BACKEND.
func newSeenStore(ctx context.Context, cfg config.SeenConfig, db *gorm.DB) (seen.Store, func(), error) {
	switch cfg.Backend {
	case "memory":
		return seen.NewMemory(), func() {}, nil
	case "redis":
		rc, err := seen.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		return &seen.Redis{Client: rc, TTL: cfg.TTL}, func() { _ = rc.Close() }, nil
	default:
		return &seen.DB{DB: db}, func() {}, nil
	}
}

// sweepIdempotency deletes expired idempotency records until ctx ends.
func sweepIdempotency(ctx context.Context, db *gorm.DB) {
	t := time.NewTicker(idempotencySweepEvery)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			n, err := repo.PurgeExpiredIdempotency(ctx, db, now.UTC())
			if err != nil {
				log.Warn().Err(err).Msg("purge expired idempotency keys")
				continue
			}
			if n > 0 {
				log.Debug().Int64("deleted", n).Msg("purged expired idempotency keys")
			}
		}
	}
}
