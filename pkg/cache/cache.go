// Package cache is the Redis-backed cache for assembled candidate lists.
// Every operation is best-effort: a cache failure is logged and treated as
// a miss, so Redis being down degrades to slower responses, never errors.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/democlub/wcivf/pkg/elections"
	"github.com/democlub/wcivf/pkg/utils"
)

// DefaultTTL bounds staleness even when an invalidation is missed.
const DefaultTTL = 15 * time.Minute

// Client wraps the Redis client for candidate list caching.
type Client struct {
	client *redis.Client
	logger *zap.Logger
	ttl    time.Duration
}

// New creates a Redis cache client using environment variables for
// configuration:
//   - REDIS_HOST: Redis host (default: "localhost")
//   - REDIS_PORT: Redis port (default: "6379")
//   - REDIS_PASSWORD: Redis password (default: "")
//   - REDIS_DB: Redis database number (default: "0")
//   - CACHE_TTL_SECONDS: candidate list TTL (default: 900)
func New(ctx context.Context, logger *zap.Logger) (*Client, error) {
	host := utils.Env("REDIS_HOST", "localhost")
	port := utils.Env("REDIS_PORT", "6379")
	password := utils.Env("REDIS_PASSWORD", "")
	db := utils.EnvInt("REDIS_DB", 0)
	ttl := time.Duration(utils.EnvInt("CACHE_TTL_SECONDS", int(DefaultTTL/time.Second))) * time.Second

	addr := fmt.Sprintf("%s:%s", host, port)

	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,

		PoolSize:     10,
		MinIdleConns: 2,

		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := rdb.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}

	logger.Info("Connected to Redis",
		zap.String("addr", addr),
		zap.Int("db", db),
		zap.Duration("ttl", ttl))

	return &Client{client: rdb, logger: logger, ttl: ttl}, nil
}

// Close closes the Redis connection.
func (c *Client) Close() error {
	return c.client.Close()
}

// Health checks if Redis is healthy.
func (c *Client) Health(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// candidateKey namespaces by ballot and by list shape, so compact and full
// lists never collide.
func candidateKey(ballotPaperID string, compact bool) string {
	shape := "full"
	if compact {
		shape = "compact"
	}
	return fmt.Sprintf("wcivf:candidates:%s:%s", ballotPaperID, shape)
}

// GetCandidates returns the cached candidate list for a ballot, or
// (nil, false) on a miss. Errors count as misses.
func (c *Client) GetCandidates(ctx context.Context, ballotPaperID string, compact bool) ([]*elections.Candidacy, bool) {
	raw, err := c.client.Get(ctx, candidateKey(ballotPaperID, compact)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("Candidate cache read failed",
				zap.String("ballot", ballotPaperID),
				zap.Error(err))
		}
		return nil, false
	}

	var cands []*elections.Candidacy
	if err := json.Unmarshal(raw, &cands); err != nil {
		c.logger.Warn("Candidate cache entry corrupt",
			zap.String("ballot", ballotPaperID),
			zap.Error(err))
		return nil, false
	}
	return cands, true
}

// SetCandidates stores an assembled candidate list with the configured TTL.
func (c *Client) SetCandidates(ctx context.Context, ballotPaperID string, compact bool, cands []*elections.Candidacy) {
	raw, err := json.Marshal(cands)
	if err != nil {
		c.logger.Warn("Candidate cache encode failed",
			zap.String("ballot", ballotPaperID),
			zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, candidateKey(ballotPaperID, compact), raw, c.ttl).Err(); err != nil {
		c.logger.Warn("Candidate cache write failed",
			zap.String("ballot", ballotPaperID),
			zap.Error(err))
	}
}

// InvalidateBallot drops both cached list shapes for a ballot. The importer
// calls this after any write touching the ballot's candidacies.
func (c *Client) InvalidateBallot(ctx context.Context, ballotPaperID string) {
	keys := []string{
		candidateKey(ballotPaperID, true),
		candidateKey(ballotPaperID, false),
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.logger.Warn("Candidate cache invalidation failed",
			zap.String("ballot", ballotPaperID),
			zap.Error(err))
	}
}
