package store

import (
	"context"
	"fmt"
	"time"

	"github.com/democlub/wcivf/pkg/db/clickhouse"
	"github.com/democlub/wcivf/pkg/elections"
)

const postsTableName = "posts"

func (db *DB) initPosts(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS "%s"."%s" (
			post_id String CODEC(ZSTD(1)),
			label String CODEC(ZSTD(1)),
			role String CODEC(ZSTD(1)),
			organization String CODEC(ZSTD(1)),
			organization_type LowCardinality(String),
			territory LowCardinality(String),
			division_type LowCardinality(String),
			modified DateTime64(3)
		) ENGINE = %s
		ORDER BY post_id
	`, db.Name, postsTableName, clickhouse.Engine(clickhouse.ReplacingMergeTree, "modified"))

	if err := db.Exec(ctx, query); err != nil {
		return fmt.Errorf("create %s: %w", postsTableName, err)
	}
	return nil
}

func (db *DB) UpsertPosts(ctx context.Context, rows []*elections.Post) error {
	if len(rows) == 0 {
		return nil
	}

	query := fmt.Sprintf(`INSERT INTO "%s"."%s" (
		post_id, label, role, organization, organization_type, territory,
		division_type, modified
	) VALUES`, db.Name, postsTableName)

	batch, err := db.PrepareBatch(ctx, query)
	if err != nil {
		return err
	}
	defer func() { _ = batch.Abort() }()

	for _, p := range rows {
		if err := batch.Append(
			p.ID,
			p.Label,
			p.Role,
			p.Organization,
			p.OrganizationType,
			string(p.Territory),
			p.DivisionType,
			p.Modified,
		); err != nil {
			return err
		}
	}
	return batch.Send()
}

type postRow struct {
	ID               string    `ch:"post_id"`
	Label            string    `ch:"label"`
	Role             string    `ch:"role"`
	Organization     string    `ch:"organization"`
	OrganizationType string    `ch:"organization_type"`
	Territory        string    `ch:"territory"`
	DivisionType     string    `ch:"division_type"`
	Modified         time.Time `ch:"modified"`
}

func (r *postRow) toModel() *elections.Post {
	return &elections.Post{
		ID:               r.ID,
		Label:            r.Label,
		Role:             r.Role,
		Organization:     r.Organization,
		OrganizationType: r.OrganizationType,
		Territory:        elections.Nation(r.Territory),
		DivisionType:     r.DivisionType,
		Modified:         r.Modified,
	}
}

func (db *DB) postsByIDs(ctx context.Context, ids []string) (map[string]*elections.Post, error) {
	out := map[string]*elections.Post{}
	if len(ids) == 0 {
		return out, nil
	}

	var rows []postRow
	query := fmt.Sprintf(`
		SELECT post_id, label, role, organization, organization_type, territory,
		       division_type, modified
		FROM "%s"."%s" FINAL
		WHERE post_id IN (?)
	`, db.Name, postsTableName)
	if err := db.Select(ctx, &rows, query, ids); err != nil {
		return nil, err
	}

	for i := range rows {
		out[rows[i].ID] = rows[i].toModel()
	}
	return out, nil
}
