package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/democlub/wcivf/pkg/db/clickhouse"
	"github.com/democlub/wcivf/pkg/elections"
)

const ballotsTableName = "ballots"

func (db *DB) initBallots(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS "%s"."%s" (
			ballot_paper_id String CODEC(ZSTD(1)),
			post_id String CODEC(ZSTD(1)),
			election_slug String CODEC(ZSTD(1)),
			contested Bool,
			winner_count Nullable(Int32),
			locked Bool,
			cancelled Bool,
			cancellation_reason LowCardinality(String),
			replaced_by String CODEC(ZSTD(1)),
			voting_system LowCardinality(String),
			electorate Nullable(UInt32),
			turnout Nullable(UInt32),
			spoilt_ballots Nullable(UInt32),
			papers_issued Nullable(UInt32),
			metadata_title String CODEC(ZSTD(1)),
			metadata_url String CODEC(ZSTD(1)),
			metadata_detail String CODEC(ZSTD(1)),
			modified DateTime64(3)
		) ENGINE = %s
		ORDER BY ballot_paper_id
	`, db.Name, ballotsTableName, clickhouse.Engine(clickhouse.ReplacingMergeTree, "modified"))

	if err := db.Exec(ctx, query); err != nil {
		return fmt.Errorf("create %s: %w", ballotsTableName, err)
	}
	return nil
}

func (db *DB) UpsertBallots(ctx context.Context, rows []*elections.Ballot) error {
	if len(rows) == 0 {
		return nil
	}

	query := fmt.Sprintf(`INSERT INTO "%s"."%s" (
		ballot_paper_id, post_id, election_slug, contested, winner_count,
		locked, cancelled, cancellation_reason, replaced_by, voting_system,
		electorate, turnout, spoilt_ballots, papers_issued,
		metadata_title, metadata_url, metadata_detail, modified
	) VALUES`, db.Name, ballotsTableName)

	batch, err := db.PrepareBatch(ctx, query)
	if err != nil {
		return err
	}
	defer func() { _ = batch.Abort() }()

	for _, b := range rows {
		var metaTitle, metaURL, metaDetail string
		if b.Metadata != nil {
			metaTitle = b.Metadata.Title
			metaURL = b.Metadata.URL
			metaDetail = b.Metadata.Detail
		}
		if err := batch.Append(
			b.BallotPaperID,
			b.PostID,
			b.ElectionSlug,
			b.Contested,
			b.SeatsContested,
			b.Locked,
			b.Cancelled,
			string(b.CancellationReason),
			b.ReplacedBy,
			b.VotingSystemSlug,
			b.Electorate,
			b.TurnoutCount,
			b.SpoiltBallots,
			b.PapersIssued,
			metaTitle,
			metaURL,
			metaDetail,
			b.Modified,
		); err != nil {
			return err
		}
	}
	return batch.Send()
}

type ballotRow struct {
	BallotPaperID      string    `ch:"ballot_paper_id"`
	PostID             string    `ch:"post_id"`
	ElectionSlug       string    `ch:"election_slug"`
	Contested          bool      `ch:"contested"`
	SeatsContested     *int32    `ch:"winner_count"`
	Locked             bool      `ch:"locked"`
	Cancelled          bool      `ch:"cancelled"`
	CancellationReason string    `ch:"cancellation_reason"`
	ReplacedBy         string    `ch:"replaced_by"`
	VotingSystem       string    `ch:"voting_system"`
	Electorate         *uint32   `ch:"electorate"`
	Turnout            *uint32   `ch:"turnout"`
	SpoiltBallots      *uint32   `ch:"spoilt_ballots"`
	PapersIssued       *uint32   `ch:"papers_issued"`
	MetadataTitle      string    `ch:"metadata_title"`
	MetadataURL        string    `ch:"metadata_url"`
	MetadataDetail     string    `ch:"metadata_detail"`
	Modified           time.Time `ch:"modified"`
}

func (r *ballotRow) toModel() *elections.Ballot {
	b := &elections.Ballot{
		BallotPaperID:      r.BallotPaperID,
		PostID:             r.PostID,
		ElectionSlug:       r.ElectionSlug,
		Contested:          r.Contested,
		SeatsContested:     r.SeatsContested,
		Locked:             r.Locked,
		Cancelled:          r.Cancelled,
		CancellationReason: elections.CancellationReason(r.CancellationReason),
		ReplacedBy:         r.ReplacedBy,
		VotingSystemSlug:   r.VotingSystem,
		Electorate:         r.Electorate,
		TurnoutCount:       r.Turnout,
		SpoiltBallots:      r.SpoiltBallots,
		PapersIssued:       r.PapersIssued,
		Modified:           r.Modified,
	}
	if r.MetadataTitle != "" || r.MetadataURL != "" || r.MetadataDetail != "" {
		b.Metadata = &elections.BallotMetadata{
			Title:  r.MetadataTitle,
			URL:    r.MetadataURL,
			Detail: r.MetadataDetail,
		}
	}
	return b
}

const ballotColumns = `ballot_paper_id, post_id, election_slug, contested, winner_count,
	       locked, cancelled, cancellation_reason, replaced_by, voting_system,
	       electorate, turnout, spoilt_ballots, papers_issued,
	       metadata_title, metadata_url, metadata_detail, modified`

// BallotsByIDs loads the named ballots with election, post and hustings
// attached. Unknown ids are simply absent from the result; candidacies are
// loaded separately so the candidate cache can sit in front of them.
func (db *DB) BallotsByIDs(ctx context.Context, ids []string) ([]*elections.BallotDetail, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var rows []ballotRow
	query := fmt.Sprintf(`
		SELECT %s
		FROM "%s"."%s" FINAL
		WHERE ballot_paper_id IN (?)
	`, ballotColumns, db.Name, ballotsTableName)
	if err := db.Select(ctx, &rows, query, ids); err != nil {
		return nil, err
	}

	return db.attachRelations(ctx, rows)
}

// QueryBallots lists ballots for the public API, newest election first.
func (db *DB) QueryBallots(ctx context.Context, opts QueryOpts) ([]*elections.BallotDetail, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM "%s"."%s" AS b FINAL
	`, prefixColumns("b", ballotColumns), db.Name, ballotsTableName)

	var (
		conds []string
		args  []interface{}
	)
	if len(opts.BallotPaperIDs) > 0 {
		conds = append(conds, "b.ballot_paper_id IN (?)")
		args = append(args, opts.BallotPaperIDs)
	}
	if opts.ModifiedGT != nil {
		conds = append(conds, "b.modified > ?")
		args = append(args, *opts.ModifiedGT)
	}
	if opts.CurrentOnly {
		query += fmt.Sprintf(`
		INNER JOIN "%s"."%s" AS e FINAL ON e.slug = b.election_slug`, db.Name, electionsTableName)
		conds = append(conds, "e.current = true")
	}
	if len(conds) > 0 {
		query += "\n\t\tWHERE " + strings.Join(conds, " AND ")
	}
	query += "\n\t\tORDER BY b.ballot_paper_id"
	if opts.Limit > 0 {
		query += fmt.Sprintf("\n\t\tLIMIT %d", opts.Limit)
	}

	var rows []ballotRow
	if err := db.Select(ctx, &rows, query, args...); err != nil {
		return nil, err
	}
	return db.attachRelations(ctx, rows)
}

// BallotsForPost lists ballots on the given post whose election is of the
// given type and falls on or after the given day, soonest first. Used to
// find the replacement contest after a cancellation.
func (db *DB) BallotsForPost(ctx context.Context, postID, electionType string, onOrAfter time.Time) ([]*elections.BallotDetail, error) {
	var rows []ballotRow
	query := fmt.Sprintf(`
		SELECT %s
		FROM "%s"."%s" AS b FINAL
		INNER JOIN "%s"."%s" AS e FINAL ON e.slug = b.election_slug
		WHERE b.post_id = ?
		  AND e.election_type = ?
		  AND e.election_date >= ?
		ORDER BY e.election_date ASC
	`, prefixColumns("b", ballotColumns), db.Name, ballotsTableName, db.Name, electionsTableName)
	if err := db.Select(ctx, &rows, query, postID, electionType, dateOnly(onOrAfter)); err != nil {
		return nil, err
	}
	return db.attachRelations(ctx, rows)
}

// LastBallotModified returns the newest ballot modification timestamp, or
// the zero time when no ballots exist.
func (db *DB) LastBallotModified(ctx context.Context) (time.Time, error) {
	var ts time.Time
	query := fmt.Sprintf(`SELECT max(modified) FROM "%s"."%s"`, db.Name, ballotsTableName)
	if err := db.QueryRow(ctx, query).Scan(&ts); err != nil {
		return time.Time{}, err
	}
	return ts, nil
}

// attachRelations hydrates ballot rows into details by bulk-loading the
// referenced elections, posts and hustings.
func (db *DB) attachRelations(ctx context.Context, rows []ballotRow) ([]*elections.BallotDetail, error) {
	if len(rows) == 0 {
		return nil, nil
	}

	slugSet := map[string]struct{}{}
	postSet := map[string]struct{}{}
	ids := make([]string, 0, len(rows))
	for i := range rows {
		slugSet[rows[i].ElectionSlug] = struct{}{}
		postSet[rows[i].PostID] = struct{}{}
		ids = append(ids, rows[i].BallotPaperID)
	}

	elems, err := db.electionsBySlugs(ctx, keys(slugSet))
	if err != nil {
		return nil, err
	}
	posts, err := db.postsByIDs(ctx, keys(postSet))
	if err != nil {
		return nil, err
	}
	hustings, err := db.hustingsForBallots(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]*elections.BallotDetail, 0, len(rows))
	for i := range rows {
		b := rows[i].toModel()
		out = append(out, &elections.BallotDetail{
			Ballot:   *b,
			Election: elems[b.ElectionSlug],
			Post:     posts[b.PostID],
			Hustings: hustings[b.BallotPaperID],
		})
	}
	return out, nil
}

func keys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	return out
}

// prefixColumns qualifies a comma separated column list with a table alias.
func prefixColumns(alias, columns string) string {
	parts := strings.Split(columns, ",")
	for i, p := range parts {
		parts[i] = alias + "." + strings.TrimSpace(p)
	}
	return strings.Join(parts, ", ")
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
