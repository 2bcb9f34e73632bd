// Package importer is the scheduled sync from the upstream candidates API
// into the local ClickHouse store. Every cron tick it pulls ballots
// modified since the newest timestamp it holds, plus the party register,
// and invalidates the candidate-list cache for every ballot it touches.
package importer

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/mux"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/democlub/wcivf/pkg/cache"
	"github.com/democlub/wcivf/pkg/db/store"
	"github.com/democlub/wcivf/pkg/logging"
	"github.com/democlub/wcivf/pkg/utils"
	"github.com/democlub/wcivf/pkg/ynr"
)

// App pulls upstream election data into the store on a cron schedule.
type App struct {
	Store store.Store
	// Cache is nil when Redis is disabled; invalidation is then a no-op.
	Cache *cache.Client
	YNR   *ynr.Client

	// Cron is the scheduler that triggers sync runs at intervals given by CronSpec.
	Cron     *cron.Cron
	CronSpec string

	// Logger is used to log messages, errors, and events during the application's lifecycle and operations.
	Logger *zap.Logger

	// Server is the HTTP server that serves the health endpoints.
	Server *http.Server

	// syncing enforces single-flight: a tick that fires while the previous
	// sync is still running is skipped, not queued.
	syncing atomic.Bool
	// synced flips after the first successful run; backs the readiness probe.
	synced atomic.Bool
}

// Initialize initializes the App.
func Initialize(ctx context.Context) (*App, error) {
	logger, err := logging.New()
	if err != nil {
		// nothing else to do here, we'll just log to stderr
		panic(err)
	}

	db, err := store.New(ctx, logger)
	if err != nil {
		logger.Fatal("Unable to initialize elections database", zap.Error(err))
	}

	var cacheClient *cache.Client
	if utils.Env("REDIS_ENABLED", "false") == "true" {
		cacheClient, err = cache.New(ctx, logger)
		if err != nil {
			logger.Warn("Failed to initialize Redis client - cache invalidation disabled",
				zap.Error(err))
			cacheClient = nil
		}
	}

	app := &App{
		Store:    db,
		Cache:    cacheClient,
		YNR:      ynr.New(ynr.Opts{}),
		CronSpec: utils.Env("IMPORT_CRON", "0 */5 * * * *"),
		Logger:   logger,
	}

	if err := app.SetupScheduler(ctx, cron.DefaultLogger); err != nil {
		return nil, err
	}
	return app, nil
}

// SetupScheduler sets up the cron scheduler.
func (a *App) SetupScheduler(ctx context.Context, logger cron.Logger) error {
	// Seconds field, optional
	a.Cron = cron.New(cron.WithSeconds(), cron.WithChain(cron.Recover(logger)))

	_, err := a.Cron.AddFunc(a.CronSpec, func() {
		// keep each run bounded
		rctx, cancel := context.WithTimeout(ctx, 20*time.Minute)
		defer cancel()
		if err := a.Sync(rctx); err != nil {
			logger.Info("[importer] sync error", "error", err)
		}
	})
	return err
}

// SetupServer sets up the HTTP health server.
func (a *App) SetupServer() {
	// use <ip>:<port> to bind to a specific interface or :<port> to bind to all interfaces
	addr := utils.Env("ADDR", ":3002")

	r := mux.NewRouter()

	r.Handle("/healthz", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(200) })).Methods("GET")
	r.Handle("/readyz", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if a.synced.Load() {
			w.WriteHeader(200)
		} else {
			w.WriteHeader(503)
		}
	})).Methods("GET")

	a.Server = &http.Server{Addr: addr, Handler: r}
}

// StartCron starts the cron scheduler.
func (a *App) StartCron() {
	a.Cron.Start()
	a.Logger.Info("[importer] Cron started", zap.String("cronSpec", a.CronSpec))
}

// SyncOnce runs one sync immediately, before the scheduler takes over.
func (a *App) SyncOnce(ctx context.Context) {
	if err := a.Sync(ctx); err != nil {
		a.Logger.Error("[importer] initial sync failed", zap.Error(err))
	}
}

// Start starts the health server and blocks until the context is done.
func (a *App) Start(ctx context.Context) {
	go func() { _ = a.Server.ListenAndServe() }()
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if a.Cron != nil {
		<-a.Cron.Stop().Done()
	}
	if err := a.Store.Close(); err != nil {
		a.Logger.Error("Failed to close database connection", zap.Error(err))
	}
	if a.Cache != nil {
		if err := a.Cache.Close(); err != nil {
			a.Logger.Error("Failed to close Redis connection", zap.Error(err))
		}
	}

	_ = a.Server.Shutdown(shutdownCtx)
	time.Sleep(200 * time.Millisecond)
	a.Logger.Info("goodbye!")
}
