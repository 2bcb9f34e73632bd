package store

import (
	"context"
	"time"

	"github.com/democlub/wcivf/pkg/elections"
	"github.com/democlub/wcivf/pkg/resolve"
)

// QueryOpts filters the ballot listing used by the public API. Zero values
// mean "no filter".
type QueryOpts struct {
	BallotPaperIDs []string
	ModifiedGT     *time.Time
	CurrentOnly    bool
	Limit          int
}

// Store describes the repository operations the API, resolver and importer
// need.
type Store interface {
	InitializeDB(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error

	// --- Importer writes

	UpsertElections(ctx context.Context, rows []*elections.Election) error
	UpsertPosts(ctx context.Context, rows []*elections.Post) error
	UpsertBallots(ctx context.Context, rows []*elections.Ballot) error
	UpsertParties(ctx context.Context, rows []*elections.Party) error
	UpsertPeople(ctx context.Context, rows []*elections.Person) error
	UpsertCandidacies(ctx context.Context, rows []*elections.Candidacy) error
	UpsertHustings(ctx context.Context, rows []*elections.Husting) error

	// --- Aggregate reads

	BallotsByIDs(ctx context.Context, ids []string) ([]*elections.BallotDetail, error)
	QueryBallots(ctx context.Context, opts QueryOpts) ([]*elections.BallotDetail, error)
	BallotsForPost(ctx context.Context, postID, electionType string, onOrAfter time.Time) ([]*elections.BallotDetail, error)
	CandidaciesForBallot(ctx context.Context, ballotPaperID string, compact bool) ([]*elections.Candidacy, error)

	// --- Timestamps

	LastBallotModified(ctx context.Context) (time.Time, error)
	LastPersonUpdated(ctx context.Context) (time.Time, error)

	// --- Analytics

	LogPostcodeLookup(ctx context.Context, entry resolve.LookupEntry) error
}

var _ Store = (*DB)(nil)
