package elections

import "context"

// CandidacyStore loads the fully-enriched candidacies for a ballot in one
// call: person, party and previous affiliations attached, pledges included
// unless compact.
type CandidacyStore interface {
	CandidaciesForBallot(ctx context.Context, ballotPaperID string, compact bool) ([]*Candidacy, error)
}

// CandidateCache is a best-effort cache keyed by (ballot paper id, compact
// flag). Implementations swallow their own errors: a broken cache is a
// miss, never a request failure. The cache is a performance optimisation
// only; the importer calls the invalidation hook when candidacy data
// changes.
type CandidateCache interface {
	GetCandidates(ctx context.Context, ballotPaperID string, compact bool) ([]*Candidacy, bool)
	SetCandidates(ctx context.Context, ballotPaperID string, compact bool, cands []*Candidacy)
}

// CandidateLister assembles the ordered, enriched candidate list for a
// ballot.
type CandidateLister struct {
	Store CandidacyStore
	Cache CandidateCache
}

// ForBallot returns the display-ordered candidacies for a ballot. Compact
// skips lower-priority associated data (pledges). The result is fully
// materialised; callers never need follow-up fetches.
func (l *CandidateLister) ForBallot(ctx context.Context, b *BallotDetail, compact bool) ([]*Candidacy, error) {
	if l.Cache != nil {
		if cands, ok := l.Cache.GetCandidates(ctx, b.BallotPaperID, compact); ok {
			return cands, nil
		}
	}

	cands, err := l.Store.CandidaciesForBallot(ctx, b.BallotPaperID, compact)
	if err != nil {
		return nil, err
	}
	SortCandidacies(cands, b.UsesLists())

	if l.Cache != nil {
		l.Cache.SetCandidates(ctx, b.BallotPaperID, compact, cands)
	}
	return cands, nil
}
