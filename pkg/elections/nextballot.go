package elections

import (
	"context"
	"time"
)

// NextBallotFinder returns ballots at a post for a given election type with
// poll dates on or after the given day, ordered by date ascending.
type NextBallotFinder interface {
	BallotsForPost(ctx context.Context, postID, electionType string, onOrAfter time.Time) ([]*BallotDetail, error)
}

// NextBallot finds the nearest strictly-later ballot at the same post for
// the same election type whose date is asOf or later. Current elections
// skip the lookup entirely: there is nothing newer to point at yet.
func NextBallot(ctx context.Context, finder NextBallotFinder, b *BallotDetail, asOf time.Time) (*BallotDetail, error) {
	if b.Election == nil || b.Election.Current {
		return nil, nil
	}

	siblings, err := finder.BallotsForPost(ctx, b.PostID, b.Election.Type, asOf)
	if err != nil {
		return nil, err
	}
	for _, sib := range siblings {
		if sib.BallotPaperID == b.BallotPaperID || sib.Election == nil {
			continue
		}
		if sib.Election.Date.After(b.Election.Date) {
			return sib, nil
		}
	}
	return nil, nil
}
