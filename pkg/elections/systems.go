package elections

// Voting system slugs, as imported from the upstream election data source.
const (
	SystemFPTP = "FPTP" // first-past-the-post
	SystemAMS  = "AMS"  // additional-member
	SystemSV   = "sv"   // supplementary-vote
	SystemSTV  = "STV"  // single-transferable-vote
)

// VotingSystem describes how a ballot is decided.
type VotingSystem struct {
	Slug        string `ch:"slug" json:"slug"`
	Name        string `ch:"name" json:"name"`
	Description string `ch:"description" json:"description"`
}

// votingSystems is the small fixed set of systems used across UK elections.
var votingSystems = map[string]VotingSystem{
	SystemFPTP: {Slug: SystemFPTP, Name: "First-past-the-post"},
	SystemAMS:  {Slug: SystemAMS, Name: "Additional Member System"},
	SystemSV:   {Slug: SystemSV, Name: "Supplementary Vote"},
	SystemSTV:  {Slug: SystemSTV, Name: "Single Transferable Vote"},
}

// VotingSystemBySlug returns the known voting system for a slug. Unknown
// slugs return a bare record carrying just the slug so display code keeps
// working when the importer is ahead of this list.
func VotingSystemBySlug(slug string) VotingSystem {
	if vs, ok := votingSystems[slug]; ok {
		return vs
	}
	return VotingSystem{Slug: slug, Name: slug}
}

// VotingSystemIsList reports whether candidates are grouped and ranked by
// party rather than shown individually.
func VotingSystemIsList(slug string) bool {
	return slug == SystemAMS
}

// VotingSystemSuppressesVoteCounts reports whether per-candidate vote
// counts are meaningless to display for this system. STV reallocates votes
// across rounds and SV across preferences, so a single number misleads.
func VotingSystemSuppressesVoteCounts(slug string) bool {
	return slug == SystemSTV || slug == SystemSV
}
