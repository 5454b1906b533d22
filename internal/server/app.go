// Package server initializes and runs the media server: it wires the
// configuration, the content-addressable file store, the database-backed
// repository and the HTTP API, and handles graceful shutdown.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrijs2005/mediakeeper/internal/filex"
	"github.com/dmitrijs2005/mediakeeper/internal/logging"
	"github.com/dmitrijs2005/mediakeeper/internal/server/config"
	"github.com/dmitrijs2005/mediakeeper/internal/server/presign"
	"github.com/dmitrijs2005/mediakeeper/internal/server/repositories/media"
	"github.com/dmitrijs2005/mediakeeper/internal/server/services"
	"github.com/dmitrijs2005/mediakeeper/internal/server/shared/db"
	"github.com/dmitrijs2005/mediakeeper/internal/server/storage"
	"github.com/dmitrijs2005/mediakeeper/internal/server/web"
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	slogger *slog.Logger
	repo    *media.ReconnectingRepository
	service *services.MediaService
}

// NewApp wires the application. A failed database dial does not abort
// startup: the server comes up degraded and the reconnection loop restores
// service once the database is reachable.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	slogger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(slogger)

	storageRoot, err := filex.EnsureDir(cfg.StorageRoot)
	if err != nil {
		return nil, fmt.Errorf("storage root init error: %w", err)
	}
	store := storage.NewFilesystem(storageRoot, logger)

	dialer := db.NewDialer(cfg.DatabaseDSN)
	var repo *media.ReconnectingRepository
	if conn, err := dialer(ctx); err != nil {
		logger.Warn(ctx, "database unreachable, starting degraded", "error", err)
		repo = media.NewDisconnected(err.Error(), dialer, cfg.ReconnectInterval, logger)
	} else {
		repo = media.NewConnected(conn, dialer, cfg.ReconnectInterval, logger)
	}

	presigner := presign.NewService(cfg.UploadSecret, cfg.BaseURL, cfg.UploadURLLifetime, cfg.MaxFileSize)
	service := services.NewMediaService(repo, store, presigner, logger)

	return &App{
		config:  cfg,
		logger:  logger,
		slogger: slogger,
		repo:    repo,
		service: service,
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run starts the HTTP server and the database reconnection loop and blocks
// until the context is cancelled or a component fails.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "starting app", "addr", app.config.EndpointAddrHTTP,
		"storage_root", app.config.StorageRoot, "db_connected", app.repo.IsConnected())

	app.initSignalHandler(cancelFunc)

	srv := web.NewServer(app.slogger, app.config.EndpointAddrHTTP,
		web.NewMediaHandler(app.service))

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("http server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		app.repo.Run(ctx)
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Stop(shutdownCtx); err != nil {
			app.logger.Error(ctx, "server shutdown error", "error", err)
		}
		return app.repo.Close()
	})

	err := g.Wait()
	app.logger.Info(ctx, "app stopped")
	return err
}
