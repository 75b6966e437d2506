// Package app initializes and runs the back-office application.
// It wires the realtime store client, the joined directory view, the
// side-effect dispatcher, the AI narrative service with its persisted
// cache, and the HTTP API server, and handles graceful shutdown.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/robfig/cron/v3"

	"github.com/cancheito/backoffice/internal/ai"
	"github.com/cancheito/backoffice/internal/aicache"
	"github.com/cancheito/backoffice/internal/config"
	"github.com/cancheito/backoffice/internal/dispatch"
	"github.com/cancheito/backoffice/internal/logging"
	"github.com/cancheito/backoffice/internal/server"
	"github.com/cancheito/backoffice/internal/services"
	"github.com/cancheito/backoffice/internal/store/rtdb"
	"github.com/cancheito/backoffice/internal/view"
)

// feedCapacity bounds the in-memory notification buffer.
const feedCapacity = 200

type App struct {
	config     *config.Config
	logger     logging.Logger
	view       *view.View
	dispatcher *dispatch.Dispatcher
	vertex     *ai.VertexClient
	cacheDB    *sql.DB
	server     *server.Server
	cron       *cron.Cron
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {

	slog := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(slog)

	client := rtdb.New(cfg.StoreURL, cfg.StoreAuthToken, logger)
	v := view.New(client, logger, view.WithDebounce(cfg.Debounce))

	feed := server.NewFeed(feedCapacity)
	dispatcher := dispatch.New(client, logger)
	dispatcher.AddNotifier(feed)
	v.OnRefresh(dispatcher.Handle)

	cacheDB, err := aicache.Open(ctx, cfg.CacheDSN)
	if err != nil {
		return nil, fmt.Errorf("cache init error: %w", err)
	}
	cache := aicache.New(aicache.NewSQLiteRepository(cacheDB), logger, aicache.WithTTL(cfg.CacheTTL))

	vertex, err := ai.NewVertexClient(ctx, cfg.VertexProjectID, cfg.VertexLocation, cfg.VertexModel)
	if err != nil {
		cacheDB.Close()
		return nil, fmt.Errorf("vertex init error: %w", err)
	}
	narrator := ai.NewService(vertex)

	us := services.NewUsersService(client, v, narrator, logger)
	ofs := services.NewOffersService(client, logger)
	as := services.NewAnalyticsService(v, narrator, cache, logger)

	srv := server.NewServer(cfg.HTTPAddr, v, us, ofs, as, feed, logger)

	c := cron.New()
	if _, err := c.AddFunc(cfg.SweepSchedule, dispatcher.Sweep); err != nil {
		vertex.Close()
		cacheDB.Close()
		return nil, fmt.Errorf("sweep schedule error: %w", err)
	}

	return &App{
		config:     cfg,
		logger:     logger,
		view:       v,
		dispatcher: dispatcher,
		vertex:     vertex,
		cacheDB:    cacheDB,
		server:     srv,
		cron:       c,
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

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.server.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	if err := app.view.Open(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}

	app.cron.Start()

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	<-app.cron.Stop().Done()
	app.view.Close()
	app.vertex.Close()

	if err := app.cacheDB.Close(); err != nil {
		app.logger.Error(context.Background(), err.Error())
	}
}
