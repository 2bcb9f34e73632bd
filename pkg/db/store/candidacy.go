package store

import (
	"context"
	"fmt"
	"time"

	"github.com/democlub/wcivf/pkg/db/clickhouse"
	"github.com/democlub/wcivf/pkg/elections"
)

const candidaciesTableName = "candidacies"

func (db *DB) initCandidacies(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS "%s"."%s" (
			ballot_paper_id String CODEC(ZSTD(1)),
			person_id Int64,
			party_id String CODEC(ZSTD(1)),
			party_name String CODEC(ZSTD(1)),
			list_position Nullable(Int32),
			votes_cast Nullable(UInt32),
			elected Nullable(Bool),
			deselected Bool,
			deselected_source String CODEC(ZSTD(1)),
			previous_party_ids Array(String),
			pledge_texts Array(String),
			pledge_sources Array(String),
			modified DateTime64(3)
		) ENGINE = %s
		ORDER BY (ballot_paper_id, person_id)
	`, db.Name, candidaciesTableName, clickhouse.Engine(clickhouse.ReplacingMergeTree, "modified"))

	if err := db.Exec(ctx, query); err != nil {
		return fmt.Errorf("create %s: %w", candidaciesTableName, err)
	}
	return nil
}

// UpsertCandidacies batch inserts candidacy rows. The insert time is the
// dedup version, so the latest import always wins.
func (db *DB) UpsertCandidacies(ctx context.Context, rows []*elections.Candidacy) error {
	if len(rows) == 0 {
		return nil
	}

	query := fmt.Sprintf(`INSERT INTO "%s"."%s" (
		ballot_paper_id, person_id, party_id, party_name, list_position,
		votes_cast, elected, deselected, deselected_source,
		previous_party_ids, pledge_texts, pledge_sources, modified
	) VALUES`, db.Name, candidaciesTableName)

	batch, err := db.PrepareBatch(ctx, query)
	if err != nil {
		return err
	}
	defer func() { _ = batch.Abort() }()

	now := time.Now().UTC()
	for _, c := range rows {
		var personID int64
		if c.Person != nil {
			personID = c.Person.ID
		}
		var partyID string
		if c.Party != nil {
			partyID = c.Party.ID
		}
		prevIDs := make([]string, 0, len(c.PreviousParties))
		for _, p := range c.PreviousParties {
			prevIDs = append(prevIDs, p.ID)
		}
		texts := make([]string, 0, len(c.Pledges))
		sources := make([]string, 0, len(c.Pledges))
		for _, pl := range c.Pledges {
			texts = append(texts, pl.Text)
			sources = append(sources, pl.SourceURL)
		}
		if err := batch.Append(
			c.BallotPaperID,
			personID,
			partyID,
			c.PartyName,
			c.ListPosition,
			c.Votes,
			c.Elected,
			c.Deselected,
			c.DeselectedSource,
			prevIDs,
			texts,
			sources,
			now,
		); err != nil {
			return err
		}
	}
	return batch.Send()
}

type candidacyRow struct {
	BallotPaperID    string   `ch:"ballot_paper_id"`
	PersonID         int64    `ch:"person_id"`
	PartyID          string   `ch:"party_id"`
	PartyName        string   `ch:"party_name"`
	ListPosition     *int32   `ch:"list_position"`
	Votes            *uint32  `ch:"votes_cast"`
	Elected          *bool    `ch:"elected"`
	Deselected       bool     `ch:"deselected"`
	DeselectedSource string   `ch:"deselected_source"`
	PreviousPartyIDs []string `ch:"previous_party_ids"`
	PledgeTexts      []string `ch:"pledge_texts"`
	PledgeSources    []string `ch:"pledge_sources"`
}

// CandidaciesForBallot loads the raw candidacies on a ballot with person,
// party and previous affiliations attached. Compact mode skips pledges.
// Ordering is left to the caller; it depends on the ballot's voting system.
func (db *DB) CandidaciesForBallot(ctx context.Context, ballotPaperID string, compact bool) ([]*elections.Candidacy, error) {
	var rows []candidacyRow
	query := fmt.Sprintf(`
		SELECT ballot_paper_id, person_id, party_id, party_name, list_position,
		       votes_cast, elected, deselected, deselected_source,
		       previous_party_ids, pledge_texts, pledge_sources
		FROM "%s"."%s" FINAL
		WHERE ballot_paper_id = ?
	`, db.Name, candidaciesTableName)
	if err := db.Select(ctx, &rows, query, ballotPaperID); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	personSet := map[int64]struct{}{}
	partySet := map[string]struct{}{}
	for i := range rows {
		personSet[rows[i].PersonID] = struct{}{}
		if rows[i].PartyID != "" {
			partySet[rows[i].PartyID] = struct{}{}
		}
		for _, id := range rows[i].PreviousPartyIDs {
			partySet[id] = struct{}{}
		}
	}

	personIDs := make([]int64, 0, len(personSet))
	for id := range personSet {
		personIDs = append(personIDs, id)
	}
	people, err := db.peopleByIDs(ctx, personIDs)
	if err != nil {
		return nil, err
	}
	parties, err := db.partiesByIDs(ctx, keys(partySet))
	if err != nil {
		return nil, err
	}

	out := make([]*elections.Candidacy, 0, len(rows))
	for i := range rows {
		r := &rows[i]
		c := &elections.Candidacy{
			BallotPaperID:    r.BallotPaperID,
			Person:           people[r.PersonID],
			Party:            parties[r.PartyID],
			PartyName:        r.PartyName,
			ListPosition:     r.ListPosition,
			Votes:            r.Votes,
			Elected:          r.Elected,
			Deselected:       r.Deselected,
			DeselectedSource: r.DeselectedSource,
		}
		for _, id := range r.PreviousPartyIDs {
			if p := parties[id]; p != nil {
				c.PreviousParties = append(c.PreviousParties, p)
			}
		}
		if !compact {
			for j := range r.PledgeTexts {
				pl := elections.Pledge{Text: r.PledgeTexts[j]}
				if j < len(r.PledgeSources) {
					pl.SourceURL = r.PledgeSources[j]
				}
				c.Pledges = append(c.Pledges, pl)
			}
		}
		out = append(out, c)
	}
	return out, nil
}
