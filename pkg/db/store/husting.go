package store

import (
	"context"
	"fmt"
	"time"

	"github.com/democlub/wcivf/pkg/db/clickhouse"
	"github.com/democlub/wcivf/pkg/elections"
)

const hustingsTableName = "hustings"

func (db *DB) initHustings(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS "%s"."%s" (
			ballot_paper_id String CODEC(ZSTD(1)),
			title String CODEC(ZSTD(1)),
			url String CODEC(ZSTD(1)),
			starts DateTime64(3),
			ends Nullable(DateTime64(3)),
			location String CODEC(ZSTD(1)),
			postevent_url String CODEC(ZSTD(1)),
			modified DateTime64(3)
		) ENGINE = %s
		ORDER BY (ballot_paper_id, starts)
	`, db.Name, hustingsTableName, clickhouse.Engine(clickhouse.ReplacingMergeTree, "modified"))

	if err := db.Exec(ctx, query); err != nil {
		return fmt.Errorf("create %s: %w", hustingsTableName, err)
	}
	return nil
}

func (db *DB) UpsertHustings(ctx context.Context, rows []*elections.Husting) error {
	if len(rows) == 0 {
		return nil
	}

	query := fmt.Sprintf(`INSERT INTO "%s"."%s" (
		ballot_paper_id, title, url, starts, ends, location, postevent_url,
		modified
	) VALUES`, db.Name, hustingsTableName)

	batch, err := db.PrepareBatch(ctx, query)
	if err != nil {
		return err
	}
	defer func() { _ = batch.Abort() }()

	now := time.Now().UTC()
	for _, h := range rows {
		if err := batch.Append(
			h.BallotPaperID,
			h.Title,
			h.URL,
			h.Starts,
			h.Ends,
			h.Location,
			h.PostEventURL,
			now,
		); err != nil {
			return err
		}
	}
	return batch.Send()
}

type hustingRow struct {
	BallotPaperID string     `ch:"ballot_paper_id"`
	Title         string     `ch:"title"`
	URL           string     `ch:"url"`
	Starts        time.Time  `ch:"starts"`
	Ends          *time.Time `ch:"ends"`
	Location      string     `ch:"location"`
	PostEventURL  string     `ch:"postevent_url"`
}

func (db *DB) hustingsForBallots(ctx context.Context, ballotPaperIDs []string) (map[string][]*elections.Husting, error) {
	out := map[string][]*elections.Husting{}
	if len(ballotPaperIDs) == 0 {
		return out, nil
	}

	var rows []hustingRow
	query := fmt.Sprintf(`
		SELECT ballot_paper_id, title, url, starts, ends, location, postevent_url
		FROM "%s"."%s" FINAL
		WHERE ballot_paper_id IN (?)
		ORDER BY starts ASC
	`, db.Name, hustingsTableName)
	if err := db.Select(ctx, &rows, query, ballotPaperIDs); err != nil {
		return nil, err
	}

	for i := range rows {
		r := &rows[i]
		out[r.BallotPaperID] = append(out[r.BallotPaperID], &elections.Husting{
			BallotPaperID: r.BallotPaperID,
			Title:         r.Title,
			URL:           r.URL,
			Starts:        r.Starts,
			Ends:          r.Ends,
			Location:      r.Location,
			PostEventURL:  r.PostEventURL,
		})
	}
	return out, nil
}
