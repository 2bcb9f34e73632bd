package types

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/democlub/wcivf/pkg/cache"
	"github.com/democlub/wcivf/pkg/db/store"
	"github.com/democlub/wcivf/pkg/elections"
	"github.com/democlub/wcivf/pkg/resolve"
)

type App struct {
	Store store.Store
	// Cache is nil when Redis is disabled; candidate lists are then
	// assembled from the store on every request.
	Cache      *cache.Client
	Resolver   *resolve.Resolver
	Candidates *elections.CandidateLister
	// Zap Logger
	Logger *zap.Logger
	// Server represents the HTTP server instance used to handle incoming client requests and manage HTTP routes.
	Server *http.Server
}

// Start starts the application.
func (a *App) Start(ctx context.Context) {
	go func() { _ = a.Server.ListenAndServe() }()
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

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
