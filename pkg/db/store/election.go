package store

import (
	"context"
	"fmt"
	"time"

	"github.com/democlub/wcivf/pkg/db/clickhouse"
	"github.com/democlub/wcivf/pkg/elections"
)

const electionsTableName = "elections"

func (db *DB) initElections(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS "%s"."%s" (
			slug String CODEC(ZSTD(1)),
			name String CODEC(ZSTD(1)),
			election_date Date,
			election_type LowCardinality(String),
			current Bool,
			voting_system LowCardinality(String),
			election_weight Int32,
			any_non_by_elections Bool,
			description String CODEC(ZSTD(1)),
			modified DateTime64(3)
		) ENGINE = %s
		ORDER BY slug
	`, db.Name, electionsTableName, clickhouse.Engine(clickhouse.ReplacingMergeTree, "modified"))

	if err := db.Exec(ctx, query); err != nil {
		return fmt.Errorf("create %s: %w", electionsTableName, err)
	}
	return nil
}

// UpsertElections batch inserts election rows; ReplacingMergeTree dedups on
// slug by modified.
func (db *DB) UpsertElections(ctx context.Context, rows []*elections.Election) error {
	if len(rows) == 0 {
		return nil
	}

	query := fmt.Sprintf(`INSERT INTO "%s"."%s" (
		slug, name, election_date, election_type, current, voting_system,
		election_weight, any_non_by_elections, description, modified
	) VALUES`, db.Name, electionsTableName)

	batch, err := db.PrepareBatch(ctx, query)
	if err != nil {
		return err
	}
	defer func() { _ = batch.Abort() }()

	for _, e := range rows {
		if err := batch.Append(
			e.Slug,
			e.Name,
			e.Date,
			e.Type,
			e.Current,
			e.VotingSystemSlug,
			e.Weight,
			e.AnyNonByElections,
			e.Description,
			e.Modified,
		); err != nil {
			return err
		}
	}
	return batch.Send()
}

type electionRow struct {
	Slug              string    `ch:"slug"`
	Name              string    `ch:"name"`
	Date              time.Time `ch:"election_date"`
	Type              string    `ch:"election_type"`
	Current           bool      `ch:"current"`
	VotingSystem      string    `ch:"voting_system"`
	Weight            int32     `ch:"election_weight"`
	AnyNonByElections bool      `ch:"any_non_by_elections"`
	Description       string    `ch:"description"`
	Modified          time.Time `ch:"modified"`
}

func (r *electionRow) toModel() *elections.Election {
	return &elections.Election{
		Slug:              r.Slug,
		Name:              r.Name,
		Date:              r.Date,
		Type:              r.Type,
		Current:           r.Current,
		VotingSystemSlug:  r.VotingSystem,
		Weight:            r.Weight,
		AnyNonByElections: r.AnyNonByElections,
		Description:       r.Description,
		Modified:          r.Modified,
	}
}

// electionsBySlugs returns the latest row per slug, keyed by slug.
func (db *DB) electionsBySlugs(ctx context.Context, slugs []string) (map[string]*elections.Election, error) {
	out := map[string]*elections.Election{}
	if len(slugs) == 0 {
		return out, nil
	}

	var rows []electionRow
	query := fmt.Sprintf(`
		SELECT slug, name, election_date, election_type, current, voting_system,
		       election_weight, any_non_by_elections, description, modified
		FROM "%s"."%s" FINAL
		WHERE slug IN (?)
	`, db.Name, electionsTableName)
	if err := db.Select(ctx, &rows, query, slugs); err != nil {
		return nil, err
	}

	for i := range rows {
		out[rows[i].Slug] = rows[i].toModel()
	}
	return out, nil
}
