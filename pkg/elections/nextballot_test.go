package elections

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBallotFinder struct {
	ballots []*BallotDetail
}

func (f *fakeBallotFinder) BallotsForPost(_ context.Context, postID, electionType string, onOrAfter time.Time) ([]*BallotDetail, error) {
	var out []*BallotDetail
	for _, b := range f.ballots {
		if b.PostID != postID || b.Election.Type != electionType {
			continue
		}
		if b.Election.Date.Before(onOrAfter) {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

func postBallot(id, postID string, date time.Time, current bool) *BallotDetail {
	return &BallotDetail{
		Ballot: Ballot{BallotPaperID: id, PostID: postID},
		Election: &Election{
			Slug:    "local." + date.Format("2006-01-02"),
			Type:    "local",
			Date:    date,
			Current: current,
		},
	}
}

// TestNextBallot verifies the replacement lookup depends on the query day:
// the 2021 sibling is found while it is still ahead, and gone once it has
// passed.
func TestNextBallot(t *testing.T) {
	old := postBallot("local.x.ward.2019-05-02", "WARD:1", time.Date(2019, 5, 2, 0, 0, 0, 0, time.UTC), false)
	sibling := postBallot("local.x.ward.2021-05-06", "WARD:1", time.Date(2021, 5, 6, 0, 0, 0, 0, time.UTC), false)
	finder := &fakeBallotFinder{ballots: []*BallotDetail{old, sibling}}

	before := time.Date(2021, 5, 1, 0, 0, 0, 0, time.UTC)
	next, err := NextBallot(context.Background(), finder, old, before)
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, "local.x.ward.2021-05-06", next.BallotPaperID)

	after := time.Date(2021, 5, 7, 0, 0, 0, 0, time.UTC)
	next, err = NextBallot(context.Background(), finder, old, after)
	require.NoError(t, err)
	assert.Nil(t, next)
}

// TestNextBallotSkipsCurrentElection verifies current ballots never look
// for a successor.
func TestNextBallotSkipsCurrentElection(t *testing.T) {
	current := postBallot("local.x.ward.2021-05-06", "WARD:1", time.Date(2021, 5, 6, 0, 0, 0, 0, time.UTC), true)
	later := postBallot("local.x.ward.2022-05-05", "WARD:1", time.Date(2022, 5, 5, 0, 0, 0, 0, time.UTC), false)
	finder := &fakeBallotFinder{ballots: []*BallotDetail{current, later}}

	next, err := NextBallot(context.Background(), finder, current, time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Nil(t, next)
}

// TestNextBallotIgnoresOtherPosts verifies the lookup never crosses posts
// or election types.
func TestNextBallotIgnoresOtherPosts(t *testing.T) {
	old := postBallot("local.x.ward.2019-05-02", "WARD:1", time.Date(2019, 5, 2, 0, 0, 0, 0, time.UTC), false)
	otherPost := postBallot("local.x.other.2021-05-06", "WARD:2", time.Date(2021, 5, 6, 0, 0, 0, 0, time.UTC), false)
	finder := &fakeBallotFinder{ballots: []*BallotDetail{old, otherPost}}

	next, err := NextBallot(context.Background(), finder, old, time.Date(2021, 5, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Nil(t, next)
}
