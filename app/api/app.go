package api

import (
	"context"

	"go.uber.org/zap"

	"github.com/democlub/wcivf/app/api/types"
	"github.com/democlub/wcivf/pkg/cache"
	"github.com/democlub/wcivf/pkg/db/store"
	"github.com/democlub/wcivf/pkg/devsdc"
	"github.com/democlub/wcivf/pkg/elections"
	"github.com/democlub/wcivf/pkg/logging"
	"github.com/democlub/wcivf/pkg/resolve"
	"github.com/democlub/wcivf/pkg/utils"
)

// Initialize initializes the application.
func Initialize(ctx context.Context) *types.App {
	logger, err := logging.New()
	if err != nil {
		// nothing else to do here, we'll just log to stderr
		panic(err)
	}

	db, err := store.New(ctx, logger)
	if err != nil {
		logger.Fatal("Unable to initialize elections database", zap.Error(err))
	}

	// Redis is optional: without it every candidate list is assembled from
	// the store, which is correct but slower.
	var cacheClient *cache.Client
	if utils.Env("REDIS_ENABLED", "false") == "true" {
		cacheClient, err = cache.New(ctx, logger)
		if err != nil {
			logger.Warn("Failed to initialize Redis client - candidate list caching disabled",
				zap.Error(err))
			cacheClient = nil
		}
	} else {
		logger.Info("Redis disabled - candidate list caching not available")
	}

	resolver := &resolve.Resolver{
		Lookup:    devsdc.New(devsdc.Opts{}),
		Ballots:   db,
		Analytics: db,
		Logger:    logger,
	}

	candidates := &elections.CandidateLister{Store: db}
	if cacheClient != nil {
		candidates.Cache = cacheClient
	}

	return &types.App{
		Store:      db,
		Cache:      cacheClient,
		Resolver:   resolver,
		Candidates: candidates,
		Logger:     logger,
	}
}
