package elections

import "strings"

// CategoryKind is the primary classification of a ballot, derived purely
// from its ballot paper id prefix. Never guessed from other fields.
type CategoryKind int

const (
	// CategoryLocal is the default for ids with no special prefix.
	CategoryLocal CategoryKind = iota
	CategoryMayoral
	CategoryParliamentary
	CategoryPCC
	CategoryReferendum
	// CategoryRegional covers region-wide list seats on devolved and
	// London Assembly ballots.
	CategoryRegional
	// CategoryConstituency covers the constituency seats of those same
	// bodies.
	CategoryConstituency
)

func (k CategoryKind) String() string {
	switch k {
	case CategoryMayoral:
		return "mayoral"
	case CategoryParliamentary:
		return "parliamentary"
	case CategoryPCC:
		return "pcc"
	case CategoryReferendum:
		return "referendum"
	case CategoryRegional:
		return "regional"
	case CategoryConstituency:
		return "constituency"
	default:
		return "local"
	}
}

// Category is the result of parsing a ballot paper id once. The boolean
// accessors below are informative but not mutually exclusive: a London
// Assembly additional-member ballot is both regional and
// london-assembly-additional.
type Category struct {
	Kind CategoryKind
	// LondonAssemblyAdditional marks gla.a ballots specifically.
	LondonAssemblyAdditional bool
}

// Fixed literal prefix sets. The id convention encodes type + area + date;
// these prefixes are the type portion.
var (
	constituencyPrefixes = []string{"gla.c", "senedd.c", "sp.c"}
	regionalPrefixes     = []string{"gla.a", "senedd.r", "sp.r"}
)

// ParseCategory classifies a ballot paper id by its prefix. This is the
// single parse step; callers hold on to the result rather than re-testing
// prefixes at every call site.
func ParseCategory(ballotPaperID string) Category {
	switch {
	case strings.HasPrefix(ballotPaperID, "mayor."):
		return Category{Kind: CategoryMayoral}
	case strings.HasPrefix(ballotPaperID, "parl."):
		return Category{Kind: CategoryParliamentary}
	case strings.HasPrefix(ballotPaperID, "pcc."):
		return Category{Kind: CategoryPCC}
	case strings.HasPrefix(ballotPaperID, "ref."):
		return Category{Kind: CategoryReferendum}
	}
	for _, p := range constituencyPrefixes {
		if strings.HasPrefix(ballotPaperID, p) {
			return Category{Kind: CategoryConstituency}
		}
	}
	for _, p := range regionalPrefixes {
		if strings.HasPrefix(ballotPaperID, p) {
			return Category{
				Kind:                     CategoryRegional,
				LondonAssemblyAdditional: strings.HasPrefix(ballotPaperID, "gla.a"),
			}
		}
	}
	return Category{Kind: CategoryLocal}
}

func (c Category) IsMayoral() bool       { return c.Kind == CategoryMayoral }
func (c Category) IsParliamentary() bool { return c.Kind == CategoryParliamentary }
func (c Category) IsPCC() bool           { return c.Kind == CategoryPCC }
func (c Category) IsReferendum() bool    { return c.Kind == CategoryReferendum }
func (c Category) IsRegional() bool      { return c.Kind == CategoryRegional }
func (c Category) IsConstituency() bool  { return c.Kind == CategoryConstituency }

func (c Category) IsLondonAssemblyAdditional() bool { return c.LondonAssemblyAdditional }
