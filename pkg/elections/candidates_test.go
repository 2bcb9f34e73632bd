package elections

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCandidacyStore struct {
	cands []*Candidacy
	calls int
}

func (f *fakeCandidacyStore) CandidaciesForBallot(_ context.Context, _ string, _ bool) ([]*Candidacy, error) {
	f.calls++
	return f.cands, nil
}

type fakeCandidateCache struct {
	entries map[string][]*Candidacy
	sets    int
}

func (f *fakeCandidateCache) key(id string, compact bool) string {
	if compact {
		return id + ":compact"
	}
	return id + ":full"
}

func (f *fakeCandidateCache) GetCandidates(_ context.Context, id string, compact bool) ([]*Candidacy, bool) {
	cands, ok := f.entries[f.key(id, compact)]
	return cands, ok
}

func (f *fakeCandidateCache) SetCandidates(_ context.Context, id string, compact bool, cands []*Candidacy) {
	f.sets++
	f.entries[f.key(id, compact)] = cands
}

// TestCandidateListerSortsAndCaches verifies a miss loads from the store,
// sorts for display and populates the cache.
func TestCandidateListerSortsAndCaches(t *testing.T) {
	zebra := candidate("Amy Zebra", "")
	aardvark := candidate("Zoe Aardvark", "")
	store := &fakeCandidacyStore{cands: []*Candidacy{zebra, aardvark}}
	cache := &fakeCandidateCache{entries: map[string][]*Candidacy{}}
	lister := &CandidateLister{Store: store, Cache: cache}

	b := &BallotDetail{
		Ballot:   Ballot{BallotPaperID: "local.sheffield.ecclesall.2023-05-04"},
		Election: &Election{VotingSystemSlug: SystemFPTP},
	}

	cands, err := lister.ForBallot(context.Background(), b, true)
	require.NoError(t, err)
	require.Len(t, cands, 2)
	assert.Same(t, aardvark, cands[0])
	assert.Same(t, zebra, cands[1])
	assert.Equal(t, 1, store.calls)
	assert.Equal(t, 1, cache.sets)

	// Second call hits the cache, not the store.
	cands, err = lister.ForBallot(context.Background(), b, true)
	require.NoError(t, err)
	require.Len(t, cands, 2)
	assert.Equal(t, 1, store.calls)
}

// TestCandidateListerCompactKeyedSeparately verifies compact and full
// lists never share a cache entry.
func TestCandidateListerCompactKeyedSeparately(t *testing.T) {
	store := &fakeCandidacyStore{cands: []*Candidacy{candidate("A One", "")}}
	cache := &fakeCandidateCache{entries: map[string][]*Candidacy{}}
	lister := &CandidateLister{Store: store, Cache: cache}

	b := &BallotDetail{
		Ballot:   Ballot{BallotPaperID: "local.sheffield.ecclesall.2023-05-04"},
		Election: &Election{VotingSystemSlug: SystemFPTP},
	}

	_, err := lister.ForBallot(context.Background(), b, true)
	require.NoError(t, err)
	_, err = lister.ForBallot(context.Background(), b, false)
	require.NoError(t, err)
	assert.Equal(t, 2, store.calls)
	assert.Equal(t, 2, cache.sets)
}

// TestCandidateListerNoCache verifies the lister works with no cache
// wired at all.
func TestCandidateListerNoCache(t *testing.T) {
	store := &fakeCandidacyStore{cands: []*Candidacy{candidate("A One", "")}}
	lister := &CandidateLister{Store: store}

	b := &BallotDetail{
		Ballot:   Ballot{BallotPaperID: "local.sheffield.ecclesall.2023-05-04"},
		Election: &Election{VotingSystemSlug: SystemFPTP},
	}

	cands, err := lister.ForBallot(context.Background(), b, true)
	require.NoError(t, err)
	assert.Len(t, cands, 1)
}
