package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/folio/internal/config"
	"github.com/folio/internal/db"
	"github.com/folio/internal/logger"
	"github.com/folio/internal/middleware"
	"github.com/folio/internal/router"
	"github.com/folio/internal/seed"
	"github.com/folio/internal/storage"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := bootstrap()
	if err != nil {
		return err
	}
	gin.SetMode(cfg.GinMode)

	if created, err := db.EnsureUser(db.DB, cfg.SuperRootUserName, cfg.SuperRootPassword); err != nil {
		return fmt.Errorf("ensure admin user: %w", err)
	} else if created {
		logger.Info().Str("username", cfg.SuperRootUserName).Msg("admin user created")
	}

	if cfg.SeedOnStart {
		data, err := seed.Default()
		if err != nil {
			return err
		}
		if _, err := seed.NewSeeder(db.DB).Apply(data); err != nil {
			return fmt.Errorf("seed on start: %w", err)
		}
	}

	store, err := newStore(cfg)
	if err != nil {
		return err
	}

	var scanner storage.Scanner
	if cfg.ClamdAddr != "" {
		scanner = storage.NewClamdScanner(cfg.ClamdAddr)
		logger.Info().Str("addr", cfg.ClamdAddr).Msg("upload scanning enabled")
	}

	limiter := middleware.NewRateLimiter(cfg.ContactRateLimit, cfg.ContactRateBurst)
	defer limiter.Stop()

	engine, err := router.SetupRouter(db.DB, store, router.Options{
		SessionSecret:  cfg.SessionSecret,
		MediaURLPath:   cfg.MediaURLPath,
		CVDownloadName: cfg.CVDownloadName,
		CORSOrigins:    cfg.CORSOrigins(),
		TrustedProxies: cfg.TrustedProxyList(),
		Scanner:        scanner,
		ContactLimiter: limiter,
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", cfg.ListenAddr).Str("storage", cfg.StorageBackend).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("run server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown server: %w", err)
	}
	return nil
}

func newStore(cfg config.AppConfig) (storage.Store, error) {
	switch cfg.StorageBackend {
	case config.StorageMinIO:
		store, err := storage.NewMinIOStore(cfg.MinIO)
		if err != nil {
			return nil, fmt.Errorf("connect minio: %w", err)
		}
		return store, nil
	default:
		store, err := storage.NewLocalStore(cfg.UploadDir)
		if err != nil {
			return nil, err
		}
		return store, nil
	}
}
