// Command pv-server starts the PhotoVault HTTP server.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/jackc/pgx/v5/pgxpool"

	"photovault/internal/blob"
	"photovault/internal/config"
	"photovault/internal/limiter"
	"photovault/internal/migrate"
	"photovault/internal/repository/postgres"
	"photovault/internal/server/httpserver"
	"photovault/internal/service"
	"photovault/internal/storage"
	"photovault/internal/token"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

// main parses configuration, runs migrations, and starts the HTTP server.
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	// Flags override environment values.
	flag.StringVar(&cfg.Addr, "addr", cfg.Addr, "listen address")
	flag.StringVar(&cfg.DSN, "dsn", cfg.DSN, "PostgreSQL DSN")
	flag.StringVar(&cfg.SigningKey, "signing-key", cfg.SigningKey, "base64 HS256 signing key (required)")
	flag.DurationVar(&cfg.TokenTTL, "token-ttl", cfg.TokenTTL, "session token TTL")
	flag.StringVar(&cfg.UploadDir, "upload-dir", cfg.UploadDir, "root directory for stored photo bytes")
	flag.Parse()

	logger, _ := zap.NewProduction()
	defer func() { _ = logger.Sync() }()
	logger.Info("starting",
		zap.String("version", version),
		zap.String("buildDate", buildDate),
		zap.String("addr", cfg.Addr),
	)

	signKey, err := cfg.DecodeSigningKey()
	if err != nil {
		logger.Fatal("signing key", zap.Error(err))
	}

	// Context with OS signals
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := migrate.Up(ctx, cfg.DSN); err != nil {
		logger.Fatal("migrate up", zap.Error(err))
	}

	// DB pool
	pool, err := pgxpool.New(ctx, cfg.DSN)
	if err != nil {
		logger.Fatal("pgxpool.New", zap.Error(err))
	}
	defer pool.Close()

	// Repositories and byte store
	db := &postgres.DB{Pool: pool}
	accountRepo := postgres.NewAccountRepo(db)
	fileRepo := postgres.NewFileRepo(db)

	blobs, err := blob.NewFSStore(cfg.UploadDir)
	if err != nil {
		logger.Fatal("blob store", zap.Error(err))
	}

	lim := limiter.NewPG(pool, cfg.LimiterWindow, cfg.LimiterMaxFails, cfg.LimiterBlockFor)

	// Services
	tokens, err := token.New(signKey, cfg.TokenTTL)
	if err != nil {
		logger.Fatal("token service", zap.Error(err))
	}
	authSvc := service.NewAuthService(accountRepo, tokens, lim)
	photoSvc := service.NewPhotoService(storage.NewFileStore(fileRepo, blobs))

	app := httpserver.New(authSvc, photoSvc, tokens, logger)
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           app.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", cfg.Addr))
		errCh <- srv.ListenAndServe()
	}()

	// Wait for stop
	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			_ = srv.Close()
		}
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", zap.Error(err))
			os.Exit(1)
		}
	}

	logger.Info("shutdown complete")
}
