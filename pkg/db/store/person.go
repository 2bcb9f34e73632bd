package store

import (
	"context"
	"fmt"
	"time"

	"github.com/democlub/wcivf/pkg/db/clickhouse"
	"github.com/democlub/wcivf/pkg/elections"
)

const peopleTableName = "people"

func (db *DB) initPeople(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS "%s"."%s" (
			person_id Int64,
			name String CODEC(ZSTD(1)),
			sort_name String CODEC(ZSTD(1)),
			statement String CODEC(ZSTD(1)),
			photo_url String CODEC(ZSTD(1)),
			last_updated DateTime64(3)
		) ENGINE = %s
		ORDER BY person_id
	`, db.Name, peopleTableName, clickhouse.Engine(clickhouse.ReplacingMergeTree, "last_updated"))

	if err := db.Exec(ctx, query); err != nil {
		return fmt.Errorf("create %s: %w", peopleTableName, err)
	}
	return nil
}

func (db *DB) UpsertPeople(ctx context.Context, rows []*elections.Person) error {
	if len(rows) == 0 {
		return nil
	}

	query := fmt.Sprintf(`INSERT INTO "%s"."%s" (
		person_id, name, sort_name, statement, photo_url, last_updated
	) VALUES`, db.Name, peopleTableName)

	batch, err := db.PrepareBatch(ctx, query)
	if err != nil {
		return err
	}
	defer func() { _ = batch.Abort() }()

	for _, p := range rows {
		if err := batch.Append(
			p.ID,
			p.Name,
			p.SortName,
			p.Statement,
			p.PhotoURL,
			p.LastUpdated,
		); err != nil {
			return err
		}
	}
	return batch.Send()
}

type personRow struct {
	ID          int64     `ch:"person_id"`
	Name        string    `ch:"name"`
	SortName    string    `ch:"sort_name"`
	Statement   string    `ch:"statement"`
	PhotoURL    string    `ch:"photo_url"`
	LastUpdated time.Time `ch:"last_updated"`
}

func (r *personRow) toModel() *elections.Person {
	return &elections.Person{
		ID:          r.ID,
		Name:        r.Name,
		SortName:    r.SortName,
		Statement:   r.Statement,
		PhotoURL:    r.PhotoURL,
		LastUpdated: r.LastUpdated,
	}
}

func (db *DB) peopleByIDs(ctx context.Context, ids []int64) (map[int64]*elections.Person, error) {
	out := map[int64]*elections.Person{}
	if len(ids) == 0 {
		return out, nil
	}

	var rows []personRow
	query := fmt.Sprintf(`
		SELECT person_id, name, sort_name, statement, photo_url, last_updated
		FROM "%s"."%s" FINAL
		WHERE person_id IN (?)
	`, db.Name, peopleTableName)
	if err := db.Select(ctx, &rows, query, ids); err != nil {
		return nil, err
	}

	for i := range rows {
		out[rows[i].ID] = rows[i].toModel()
	}
	return out, nil
}

// LastPersonUpdated returns the newest person update timestamp, or the zero
// time when no people exist.
func (db *DB) LastPersonUpdated(ctx context.Context) (time.Time, error) {
	var ts time.Time
	query := fmt.Sprintf(`SELECT max(last_updated) FROM "%s"."%s"`, db.Name, peopleTableName)
	if err := db.QueryRow(ctx, query).Scan(&ts); err != nil {
		return time.Time{}, err
	}
	return ts, nil
}
