// Package clickhouse wraps the ClickHouse driver with connection setup,
// retrying, and small query helpers shared by the stores built on top.
package clickhouse

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"go.uber.org/zap"

	"github.com/democlub/wcivf/pkg/retry"
	"github.com/democlub/wcivf/pkg/utils"
)

// Table engines used by the stores.
const (
	MergeTree          = "MergeTree"
	ReplacingMergeTree = "ReplacingMergeTree"
)

// Client is a thin wrapper around a driver connection plus the logger and
// target database name.
type Client struct {
	Logger         *zap.Logger
	Db             driver.Conn
	TargetDatabase string
}

// New opens a connection pool against CLICKHOUSE_ADDR, retrying with
// backoff until the server is reachable. The target database is created by
// the store's InitializeDB, not here, so first boot works against an empty
// server.
func New(ctx context.Context, logger *zap.Logger, dbName string) (Client, error) {
	connCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	client := Client{Logger: logger, TargetDatabase: dbName}

	addr := utils.Env("CLICKHOUSE_ADDR", "localhost:9000")
	username := utils.Env("CLICKHOUSE_USER", "default")
	password := utils.Env("CLICKHOUSE_PASSWORD", "")

	options := &clickhouse.Options{
		Addr: []string{addr},
		Auth: clickhouse.Auth{
			Database: "default",
			Username: username,
			Password: password,
		},
		DialTimeout:     10 * time.Second,
		MaxOpenConns:    utils.EnvInt("CLICKHOUSE_MAX_OPEN_CONNS", 10),
		MaxIdleConns:    utils.EnvInt("CLICKHOUSE_MAX_IDLE_CONNS", 5),
		ConnMaxLifetime: time.Hour,
		Compression: &clickhouse.Compression{
			Method: clickhouse.CompressionLZ4,
		},
	}

	err := retry.WithBackoff(connCtx, retry.DefaultConfig(), logger, "clickhouse_connection", func() error {
		conn, err := clickhouse.Open(options)
		if err != nil {
			return fmt.Errorf("failed to open clickhouse connection: %w", err)
		}
		if err := conn.Ping(connCtx); err != nil {
			return fmt.Errorf("failed to ping clickhouse: %w", err)
		}
		client.Db = conn
		return nil
	})
	if err != nil {
		return Client{}, err
	}

	client.Logger.Info("ClickHouse connection pool configured",
		zap.String("addr", addr),
		zap.String("database", dbName))
	return client, nil
}

func (c *Client) Exec(ctx context.Context, query string, args ...interface{}) error {
	return c.Db.Exec(ctx, query, args...)
}

func (c *Client) QueryRow(ctx context.Context, query string, args ...interface{}) driver.Row {
	return c.Db.QueryRow(ctx, query, args...)
}

func (c *Client) Query(ctx context.Context, query string, args ...interface{}) (driver.Rows, error) {
	return c.Db.Query(ctx, query, args...)
}

func (c *Client) Select(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	return c.Db.Select(ctx, dest, query, args...)
}

func (c *Client) PrepareBatch(ctx context.Context, query string) (driver.Batch, error) {
	return c.Db.PrepareBatch(ctx, query)
}

func (c *Client) Ping(ctx context.Context) error {
	return c.Db.Ping(ctx)
}

func (c *Client) Close() error {
	return c.Db.Close()
}

// CreateDbIfNotExists creates the named database.
func (c *Client) CreateDbIfNotExists(ctx context.Context, dbName string) error {
	return c.Exec(ctx, fmt.Sprintf(`CREATE DATABASE IF NOT EXISTS "%s"`, SanitizeName(dbName)))
}

// SanitizeName restricts an identifier to characters safe in ClickHouse
// database and table names.
func SanitizeName(id string) string {
	s := strings.ToLower(id)
	var b strings.Builder
	for _, r := range s {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}

// Engine renders a table engine clause, with the version column for
// ReplacingMergeTree deduplication.
func Engine(engine, versionCol string) string {
	if engine == ReplacingMergeTree && versionCol != "" {
		return fmt.Sprintf("ReplacingMergeTree(%s)", versionCol)
	}
	return engine
}
