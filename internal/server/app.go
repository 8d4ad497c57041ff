// Package server assembles the mirror: storage, the document API and the
// gRPC health service, and runs them until a termination signal arrives.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/trainingportal/internal/logging"
	"github.com/dmitrijs2005/trainingportal/internal/server/config"
	"github.com/dmitrijs2005/trainingportal/internal/server/devices"
	"github.com/dmitrijs2005/trainingportal/internal/server/documents"
	"github.com/dmitrijs2005/trainingportal/internal/server/httpapi"
	"github.com/dmitrijs2005/trainingportal/internal/server/storage"

	gs "github.com/dmitrijs2005/trainingportal/internal/server/grpc"
)

const healthCheckInterval = 15 * time.Second

type App struct {
	config *config.Config
	logger logging.Logger
	store  storage.Manager
	api    *httpapi.API
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(os.Stdout, logging.ParseLevel(c.LogLevel, slog.LevelInfo))

	store, err := storage.Open(ctx, c.StorageKind, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	return newApp(c, logger, store), nil
}

func newApp(c *config.Config, logger logging.Logger, store storage.Manager) *App {
	docs := documents.NewService(store.Documents(), logger)
	devs := devices.NewService(store.Devices(), c.SecretKey, c.TokenValidity)
	api := httpapi.NewAPI(docs, devs, store, logger, httpapi.Options{AllowedOrigins: c.AllowedOrigins})

	return &App{config: c, logger: logger, store: store, api: api}
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := httpapi.NewServer(app.config.HTTPAddr, app.api.Router(), app.logger)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startHealthServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := gs.NewHealthServer(app.config.HealthAddr, app.logger, app.store.Ping, healthCheckInterval)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run blocks until ctx is done, a signal arrives or either server fails.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "storage", app.config.StorageKind)

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startHealthServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.store.Close(); err != nil {
		app.logger.Error(context.Background(), "storage close failed", "error", err)
	}
	app.logger.Info(context.Background(), "Stopped")
}
