package store

import (
	"context"
	"fmt"

	"github.com/democlub/wcivf/pkg/db/clickhouse"
	"github.com/democlub/wcivf/pkg/resolve"
)

const postcodeLookupsTableName = "postcode_lookups"

// Append-only analytics log; never deduplicated.
func (db *DB) initPostcodeLookups(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS "%s"."%s" (
			postcode String CODEC(ZSTD(1)),
			utm_source String CODEC(ZSTD(1)),
			utm_medium String CODEC(ZSTD(1)),
			utm_campaign String CODEC(ZSTD(1)),
			calls_devs_dc_api Bool,
			created DateTime64(3)
		) ENGINE = %s
		ORDER BY created
	`, db.Name, postcodeLookupsTableName, clickhouse.Engine(clickhouse.MergeTree, ""))

	if err := db.Exec(ctx, query); err != nil {
		return fmt.Errorf("create %s: %w", postcodeLookupsTableName, err)
	}
	return nil
}

// LogPostcodeLookup records one resolved postcode lookup.
func (db *DB) LogPostcodeLookup(ctx context.Context, entry resolve.LookupEntry) error {
	query := fmt.Sprintf(`INSERT INTO "%s"."%s" (
		postcode, utm_source, utm_medium, utm_campaign, calls_devs_dc_api, created
	) VALUES (?, ?, ?, ?, ?, ?)`, db.Name, postcodeLookupsTableName)

	return db.Exec(ctx, query,
		entry.Postcode,
		entry.UTMSource,
		entry.UTMMedium,
		entry.UTMCampaign,
		entry.CalledAPI,
		entry.Timestamp,
	)
}
