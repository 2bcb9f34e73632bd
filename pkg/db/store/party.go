package store

import (
	"context"
	"fmt"
	"time"

	"github.com/democlub/wcivf/pkg/db/clickhouse"
	"github.com/democlub/wcivf/pkg/elections"
)

const partiesTableName = "parties"

func (db *DB) initParties(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS "%s"."%s" (
			party_id String CODEC(ZSTD(1)),
			ec_id String CODEC(ZSTD(1)),
			party_name String CODEC(ZSTD(1)),
			alternative_name String CODEC(ZSTD(1)),
			status LowCardinality(String),
			register LowCardinality(String),
			nations Array(String),
			emblem_url String CODEC(ZSTD(1)),
			description String CODEC(ZSTD(1)),
			date_registered Nullable(Date),
			date_deregistered Nullable(Date),
			modified DateTime64(3)
		) ENGINE = %s
		ORDER BY party_id
	`, db.Name, partiesTableName, clickhouse.Engine(clickhouse.ReplacingMergeTree, "modified"))

	if err := db.Exec(ctx, query); err != nil {
		return fmt.Errorf("create %s: %w", partiesTableName, err)
	}
	return nil
}

func (db *DB) UpsertParties(ctx context.Context, rows []*elections.Party) error {
	if len(rows) == 0 {
		return nil
	}

	query := fmt.Sprintf(`INSERT INTO "%s"."%s" (
		party_id, ec_id, party_name, alternative_name, status, register,
		nations, emblem_url, description, date_registered, date_deregistered,
		modified
	) VALUES`, db.Name, partiesTableName)

	batch, err := db.PrepareBatch(ctx, query)
	if err != nil {
		return err
	}
	defer func() { _ = batch.Abort() }()

	for _, p := range rows {
		if err := batch.Append(
			p.ID,
			p.ECID,
			p.Name,
			p.AlternativeName,
			p.Status,
			p.Register,
			p.Nations,
			p.EmblemURL,
			p.Description,
			p.DateRegistered,
			p.DateDeregistered,
			p.Modified,
		); err != nil {
			return err
		}
	}
	return batch.Send()
}

type partyRow struct {
	ID               string     `ch:"party_id"`
	ECID             string     `ch:"ec_id"`
	Name             string     `ch:"party_name"`
	AlternativeName  string     `ch:"alternative_name"`
	Status           string     `ch:"status"`
	Register         string     `ch:"register"`
	Nations          []string   `ch:"nations"`
	EmblemURL        string     `ch:"emblem_url"`
	Description      string     `ch:"description"`
	DateRegistered   *time.Time `ch:"date_registered"`
	DateDeregistered *time.Time `ch:"date_deregistered"`
	Modified         time.Time  `ch:"modified"`
}

func (r *partyRow) toModel() *elections.Party {
	return &elections.Party{
		ID:               r.ID,
		ECID:             r.ECID,
		Name:             r.Name,
		AlternativeName:  r.AlternativeName,
		Status:           r.Status,
		Register:         r.Register,
		Nations:          r.Nations,
		EmblemURL:        r.EmblemURL,
		Description:      r.Description,
		DateRegistered:   r.DateRegistered,
		DateDeregistered: r.DateDeregistered,
		Modified:         r.Modified,
	}
}

func (db *DB) partiesByIDs(ctx context.Context, ids []string) (map[string]*elections.Party, error) {
	out := map[string]*elections.Party{}
	if len(ids) == 0 {
		return out, nil
	}

	var rows []partyRow
	query := fmt.Sprintf(`
		SELECT party_id, ec_id, party_name, alternative_name, status, register,
		       nations, emblem_url, description, date_registered,
		       date_deregistered, modified
		FROM "%s"."%s" FINAL
		WHERE party_id IN (?)
	`, db.Name, partiesTableName)
	if err := db.Select(ctx, &rows, query, ids); err != nil {
		return nil, err
	}

	for i := range rows {
		out[rows[i].ID] = rows[i].toModel()
	}
	return out, nil
}
