// Package store is the ClickHouse-backed repository for election data.
// Entity tables use ReplacingMergeTree keyed on their stable id with the
// modification timestamp as the dedup version, so the importer can upsert
// by plain batch insert and readers deduplicate with FINAL. Reads return
// materialised aggregates: a ballot comes back with its election, post and
// hustings attached, and candidate loads attach person, party and previous
// affiliations, so callers never chase relations.
package store

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/democlub/wcivf/pkg/db/clickhouse"
	"github.com/democlub/wcivf/pkg/utils"
)

// DB is the elections database handle. It implements Store.
type DB struct {
	clickhouse.Client
	Name string
}

// New connects to ClickHouse and ensures the elections database and tables
// exist.
func New(ctx context.Context, logger *zap.Logger) (*DB, error) {
	dbName := clickhouse.SanitizeName(utils.Env("WCIVF_DB", "wcivf"))

	client, err := clickhouse.New(ctx, logger.With(zap.String("db", dbName)), dbName)
	if err != nil {
		return nil, err
	}

	db := &DB{Client: client, Name: dbName}
	if err := db.InitializeDB(ctx); err != nil {
		return nil, err
	}
	return db, nil
}

// InitializeDB creates the database and every table if missing.
func (db *DB) InitializeDB(ctx context.Context) error {
	if err := db.CreateDbIfNotExists(ctx, db.Name); err != nil {
		return fmt.Errorf("failed to create database %s: %w", db.Name, err)
	}

	inits := []struct {
		name string
		fn   func(context.Context) error
	}{
		{"elections", db.initElections},
		{"posts", db.initPosts},
		{"ballots", db.initBallots},
		{"parties", db.initParties},
		{"people", db.initPeople},
		{"candidacies", db.initCandidacies},
		{"hustings", db.initHustings},
		{"postcode_lookups", db.initPostcodeLookups},
	}
	for _, init := range inits {
		if err := init.fn(ctx); err != nil {
			return fmt.Errorf("init %s: %w", init.name, err)
		}
	}

	db.Logger.Info("Elections database initialized", zap.String("database", db.Name))
	return nil
}
