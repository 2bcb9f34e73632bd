package elections

import "strconv"

// apNumber spells out small cardinals in words, AP style: one through nine
// as words, everything else as digits.
func apNumber(n int) string {
	words := []string{"zero", "one", "two", "three", "four", "five", "six", "seven", "eight", "nine"}
	if n >= 0 && n < len(words) {
		return words[n]
	}
	return strconv.Itoa(n)
}

// PartyCount summarises who is standing on a list-system ballot.
type PartyCount struct {
	// Parties is the number of distinct non-independent parties fielding
	// candidates.
	Parties int
	// Independents is the number of independent candidates.
	Independents int
}

// CountParties tallies distinct parties and independents across a
// candidate list.
func CountParties(cands []*Candidacy) PartyCount {
	seen := map[string]bool{}
	var pc PartyCount
	for _, c := range cands {
		if c.Party != nil && c.Party.IsIndependent() {
			pc.Independents++
			continue
		}
		key := c.partyDisplayName()
		if c.Party != nil {
			key = c.Party.ID
		}
		if !seen[key] {
			seen[key] = true
			pc.Parties++
		}
	}
	return pc
}

// Text renders the display-string contract for list ballots: "<N>
// parties[ or independent candidate(s)]", number words and pluralisation
// included. N counts each independent individually alongside the distinct
// parties, so 3 parties and 2 independents reads "five parties or
// independent candidates".
func (pc PartyCount) Text() string {
	total := pc.Parties + pc.Independents
	noun := " parties"
	if total == 1 {
		noun = " party"
	}
	s := apNumber(total) + noun
	switch {
	case pc.Independents == 1:
		s += " or independent candidate"
	case pc.Independents > 1:
		s += " or independent candidates"
	}
	return s
}

// CandidateCountText is the non-list equivalent: a plain candidate count in
// words.
func CandidateCountText(n int) string {
	if n == 1 {
		return "one candidate"
	}
	return apNumber(n) + " candidates"
}

// BallotCountText summarises who is standing on a ballot, picking the
// phrasing appropriate to its voting system.
func (b *BallotDetail) BallotCountText() string {
	if b.UsesLists() {
		return CountParties(b.Candidacies).Text()
	}
	return CandidateCountText(len(b.Candidacies))
}
