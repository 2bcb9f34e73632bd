package elections

import (
	"sort"
	"strings"
)

// SortCandidacies orders a candidate list for display, in place. The order
// is a total order and the sort is stable, so sorting twice yields the same
// sequence.
//
// Primary key: elected, descending, unknowns last (winners first, then
// known losers, then undeclared). Secondary: votes descending, unknowns
// last. Tertiary: list systems group by party name then list position;
// everything else sorts by display sort name then full name.
func SortCandidacies(cands []*Candidacy, usesLists bool) {
	sort.SliceStable(cands, func(i, j int) bool {
		a, b := cands[i], cands[j]

		if ra, rb := electedRank(a.Elected), electedRank(b.Elected); ra != rb {
			return ra < rb
		}
		if ra, rb := votesRank(a.Votes), votesRank(b.Votes); ra != rb {
			return ra > rb
		}

		if usesLists {
			if pa, pb := a.partyDisplayName(), b.partyDisplayName(); pa != pb {
				return pa < pb
			}
			return listPositionRank(a.ListPosition) < listPositionRank(b.ListPosition)
		}

		if sa, sb := a.sortName(), b.sortName(); sa != sb {
			return sa < sb
		}
		return a.personName() < b.personName()
	})
}

// electedRank: true sorts first, then false, then unknown.
func electedRank(elected *bool) int {
	switch {
	case elected == nil:
		return 2
	case *elected:
		return 0
	default:
		return 1
	}
}

// votesRank: compared descending; unknown counts sort after zero.
func votesRank(votes *uint32) int64 {
	if votes == nil {
		return -1
	}
	return int64(*votes)
}

func listPositionRank(pos *int32) int32 {
	if pos == nil {
		return 1<<31 - 1
	}
	return *pos
}

func (c *Candidacy) partyDisplayName() string {
	if c.Party != nil && c.Party.Name != "" {
		return c.Party.Name
	}
	return c.PartyName
}

func (c *Candidacy) personName() string {
	if c.Person == nil {
		return ""
	}
	return c.Person.Name
}

func (c *Candidacy) sortName() string {
	if c.Person == nil {
		return ""
	}
	return strings.ToLower(c.Person.DisplaySortName())
}
