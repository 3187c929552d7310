package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rohits-web03/sharelink/internal/api"
	"github.com/rohits-web03/sharelink/internal/api/handlers"
	"github.com/rohits-web03/sharelink/internal/config"
	"github.com/rohits-web03/sharelink/internal/logging"
	"github.com/rohits-web03/sharelink/internal/ratelimit"
	"github.com/rohits-web03/sharelink/internal/repositories"
	"github.com/rohits-web03/sharelink/internal/services"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

const shutdownTimeout = 15 * time.Second

// @title Sharelink API
// @version 1.0
// @description Self-hosted file sharing with expiring, download-limited share links.
// @BasePath /
func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "sharelink:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(logging.Options{
		Level: cfg.Log.Level,
		JSON:  cfg.Log.Format == "json",
	})
	if err != nil {
		return err
	}

	db, err := repositories.Open(cfg.Database, logger)
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	chunks, err := localArea(cfg.Storage.Path, "chunks")
	if err != nil {
		return err
	}
	blobs, err := blobStore(cfg, logger)
	if err != nil {
		return err
	}

	storage := services.NewStorageService(
		repositories.NewFileRepository(db),
		blobs,
		chunks,
		services.StorageOptions{
			MaxFileSize:      cfg.Storage.MaxFileSize,
			MaxChunkBytes:    cfg.MaxChunkBytes(),
			Retention:        cfg.FileRetention(),
			ChunkSessionTTL:  cfg.ChunkSessionTTL(),
			AllowedMimeTypes: cfg.Storage.AllowedMimeTypes,
		},
		logger,
	)
	shared := services.NewSharedVolumeService(cfg.Shared)
	links := services.NewLinkService(
		repositories.NewLinkRepository(db),
		storage,
		shared,
		cfg.Links.TokenLength,
		cfg.LinkExpiration(),
		logger,
	)
	downloads := services.NewDownloadService(links, storage, shared, logger)
	sessions, err := services.NewSessionManager(cfg.Auth, cfg.SessionTimeout())
	if err != nil {
		return err
	}
	audit := services.NewAuditService(repositories.NewAuditRepository(db), cfg.AuditRetention(), logger)
	sweeper := services.NewRetentionSweeper(storage, links, audit, cfg.CleanupInterval(), logger)
	limiter := ratelimit.New()

	router := api.SetupRouter(api.RouterDeps{
		Handlers: handlers.New(handlers.Deps{
			Config:    cfg,
			Storage:   storage,
			Shared:    shared,
			Links:     links,
			Downloads: downloads,
			Sessions:  sessions,
			Audit:     audit,
			Logger:    logger,
			Version:   version,
		}),
		Sessions: sessions,
		Shared:   shared,
		Limiter:  limiter,
		Cors:     cfg.CorsOptions(),
		Upload:   cfg.UploadEnabled,
		Logger:   logger,
	})

	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: router,
		// no write timeout: downloads stream for as long as the client reads
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting server",
			"port", cfg.Port,
			"env", cfg.Environment,
			"storage", cfg.Storage.Backend,
			"shared_volume", shared.Enabled(),
			"auth", sessions.Enabled(),
			"uploads", cfg.UploadEnabled,
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen on port %s: %w", cfg.Port, err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logger.Info("shutting down")
		return server.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		limiter.Run(gctx, ratelimit.SweepInterval)
		return nil
	})
	g.Go(func() error {
		return sweeper.Run(gctx)
	})

	return g.Wait()
}

// localArea returns a filesystem rooted at <base>/<name>, creating it first.
func localArea(base, name string) (afero.Fs, error) {
	dir := filepath.Join(base, name)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create %s directory: %w", name, err)
	}
	return afero.NewBasePathFs(afero.NewOsFs(), dir), nil
}

func blobStore(cfg config.Config, logger *slog.Logger) (repositories.BlobStore, error) {
	switch cfg.Storage.Backend {
	case "r2":
		logger.Info("using r2 blob store", "bucket", cfg.R2.BucketName)
		spool, err := localArea(cfg.Storage.Path, "spool")
		if err != nil {
			return nil, err
		}
		return repositories.NewR2BlobStore(cfg.R2, spool), nil
	default:
		files, err := localArea(cfg.Storage.Path, "files")
		if err != nil {
			return nil, err
		}
		return repositories.NewLocalBlobStore(files), nil
	}
}
