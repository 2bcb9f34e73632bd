// Package elections holds the core data model for elections, ballots,
// candidacies and parties, plus the derivation rules layered on top of them
// (ballot classification, friendly names, candidate ordering, cancellation
// notices). Everything here is plain data and pure functions; persistence
// lives in pkg/db and transport in app/api.
package elections

import (
	"fmt"
	"strings"
	"time"
)

// Nation codes follow the territory codes used by the upstream candidates API.
type Nation string

const (
	NationEngland         Nation = "ENG"
	NationScotland        Nation = "SCT"
	NationWales           Nation = "WLS"
	NationNorthernIreland Nation = "NIR"
)

// Reserved party identifiers. Independents and the Speaker seeking
// re-election are modelled as pseudo parties with fixed well-known ids,
// never matched by name.
const (
	IndependentPartyID = "ynmp-party:2"
	SpeakerPartyID     = "ynmp-party:12522"
)

// Election is a distinct electoral event, e.g. "Sheffield local elections
// 2023". Read-mostly: created and updated by the importer.
type Election struct {
	Slug             string    `ch:"slug" json:"slug"`
	Name             string    `ch:"name" json:"name"`
	Date             time.Time `ch:"election_date" json:"election_date"`
	Type             string    `ch:"election_type" json:"election_type"`
	Current          bool      `ch:"current" json:"current"`
	VotingSystemSlug string    `ch:"voting_system" json:"voting_system"`
	Weight           int32     `ch:"election_weight" json:"election_weight"`
	// AnyNonByElections is true when this event groups ordinary scheduled
	// elections rather than being a standalone by-election.
	AnyNonByElections bool      `ch:"any_non_by_elections" json:"any_non_by_elections"`
	Description       string    `ch:"description" json:"description"`
	Modified          time.Time `ch:"modified" json:"modified"`
}

// InPast reports whether the election date has passed as of the given day.
func (e *Election) InPast(asOf time.Time) bool {
	return dateOnly(e.Date).Before(dateOnly(asOf))
}

// IsElectionDay reports whether asOf falls on the election date itself.
func (e *Election) IsElectionDay(asOf time.Time) bool {
	return dateOnly(e.Date).Equal(dateOnly(asOf))
}

// Polling stations open 07:00 and close 22:00 on election day.
func (e *Election) StartTime() time.Time {
	d := dateOnly(e.Date)
	return time.Date(d.Year(), d.Month(), d.Day(), 7, 0, 0, 0, time.Local)
}

func (e *Election) EndTime() time.Time {
	d := dateOnly(e.Date)
	return time.Date(d.Year(), d.Month(), d.Day(), 22, 0, 0, 0, time.Local)
}

// FriendlyDay phrases the election date relative to asOf, for display.
func (e *Election) FriendlyDay(asOf time.Time) string {
	days := int(dateOnly(e.Date).Sub(dateOnly(asOf)).Hours() / 24)
	switch {
	case days == 0:
		return "today"
	case days == -1:
		return "yesterday"
	case days < 0 && days > -5:
		return fmt.Sprintf("%d days ago", -days)
	case days == 1:
		return "tomorrow"
	case days > 0 && days < 7:
		return fmt.Sprintf("in %d days", days)
	default:
		return "on " + formatDayMonthYear(e.Date)
	}
}

// NiceName rephrases mayoral election names as "Mayor of X election";
// everything else keeps its imported name.
func (e *Election) NiceName() string {
	if e.Type != "mayor" {
		return e.Name
	}
	name := strings.TrimSuffix(e.Name, " election")
	if strings.HasPrefix(name, "Mayor of") {
		return name + " election"
	}
	return e.Name
}

// UsesLists reports whether candidates on this election are grouped by
// party list rather than shown individually.
func (e *Election) UsesLists() bool {
	return VotingSystemIsList(e.VotingSystemSlug)
}

// Post is a contestable seat or division: a ward, constituency, mayoralty.
type Post struct {
	ID               string    `ch:"post_id" json:"post_id"`
	Label            string    `ch:"label" json:"label"`
	Role             string    `ch:"role" json:"role"`
	Organization     string    `ch:"organization" json:"organization"`
	OrganizationType string    `ch:"organization_type" json:"organization_type"`
	Territory        Nation    `ch:"territory" json:"territory"`
	DivisionType     string    `ch:"division_type" json:"division_type"`
	Modified         time.Time `ch:"modified" json:"modified"`
}

// divisionSuffixes maps register division-type codes to the human suffix
// appended to a post label ("Ecclesall ward", "Sheffield Hallam
// constituency"). Codes without an entry get no suffix.
var divisionSuffixes = map[string]string{
	"DIW": "ward",
	"UTW": "ward",
	"LBW": "ward",
	"MTW": "ward",
	"CPW": "ward",
	"UTE": "ward",
	"WMC": "constituency",
	"SPC": "constituency",
	"WAC": "constituency",
	"CED": "division",
	"SPE": "region",
	"WAE": "region",
	"LAC": "constituency",
}

// DivisionSuffix returns the human suffix for the post's division type, or
// the empty string when the code is unknown.
func (p *Post) DivisionSuffix() string {
	return divisionSuffixes[p.DivisionType]
}

// Nation returns the post's territory, defaulting to England when the
// importer had no territory data.
func (p *Post) Nation() Nation {
	if p.Territory == "" {
		return NationEngland
	}
	return p.Territory
}

// CancellationReason enumerates the fixed reasons a ballot can be
// cancelled. The empty string means cancelled-without-reason (or not
// cancelled at all).
type CancellationReason string

const (
	ReasonNoCandidates    CancellationReason = "NO_CANDIDATES"
	ReasonEqualCandidates CancellationReason = "EQUAL_CANDIDATES"
	ReasonUnderContested  CancellationReason = "UNDER_CONTESTED"
	ReasonCandidateDeath  CancellationReason = "CANDIDATE_DEATH"
)

// BallotMetadata carries legacy free-text cancellation metadata attached by
// older imports, used only when no reason code is present.
type BallotMetadata struct {
	Title  string `json:"title,omitempty"`
	URL    string `json:"url,omitempty"`
	Detail string `json:"detail,omitempty"`
}

// Ballot is one post contested in one election, keyed by its ballot paper
// id. The ballot paper id is the stable cross-system reference: it is what
// the address-lookup service returns and what API callers query by.
type Ballot struct {
	BallotPaperID      string             `ch:"ballot_paper_id" json:"ballot_paper_id"`
	PostID             string             `ch:"post_id" json:"post_id"`
	ElectionSlug       string             `ch:"election_slug" json:"election_slug"`
	Contested          bool               `ch:"contested" json:"contested"`
	SeatsContested     *int32             `ch:"winner_count" json:"seats_contested"`
	Locked             bool               `ch:"locked" json:"ballot_locked"`
	Cancelled          bool               `ch:"cancelled" json:"cancelled"`
	CancellationReason CancellationReason `ch:"cancellation_reason" json:"cancellation_reason"`
	// ReplacedBy points at the ballot re-run after a cancellation, when one
	// exists.
	ReplacedBy string `ch:"replaced_by" json:"replaced_by"`
	// VotingSystemSlug overrides the election's voting system for this
	// ballot only. Empty means fall back to the election.
	VotingSystemSlug string `ch:"voting_system" json:"voting_system"`
	// Result fields, populated after the results import.
	Electorate    *uint32 `ch:"electorate" json:"electorate"`
	TurnoutCount  *uint32 `ch:"turnout" json:"turnout"`
	SpoiltBallots *uint32 `ch:"spoilt_ballots" json:"spoilt_ballots"`
	PapersIssued  *uint32 `ch:"papers_issued" json:"papers_issued"`
	Metadata      *BallotMetadata
	Modified      time.Time `ch:"modified" json:"modified"`

	cat *Category
}

// Category parses the ballot paper id into its tagged category. The parse
// happens once per ballot and is cached; classification never consults any
// field other than the identifier.
func (b *Ballot) Category() Category {
	if b.cat == nil {
		c := ParseCategory(b.BallotPaperID)
		b.cat = &c
	}
	return *b.cat
}

// AbsoluteURL is the canonical path for this ballot on the website.
func (b *Ballot) AbsoluteURL() string {
	return "/elections/" + b.BallotPaperID + "/"
}

// Person is a candidate as known to the upstream candidates API.
type Person struct {
	ID          int64     `ch:"person_id" json:"person_id"`
	Name        string    `ch:"name" json:"name"`
	SortName    string    `ch:"sort_name" json:"sort_name"`
	Statement   string    `ch:"statement" json:"statement_to_voters"`
	PhotoURL    string    `ch:"photo_url" json:"photo_url"`
	LastUpdated time.Time `ch:"last_updated" json:"last_updated"`
}

// DisplaySortName is the explicit sort name when one is set, else the last
// whitespace-delimited token of the full name.
func (p *Person) DisplaySortName() string {
	if p.SortName != "" {
		return p.SortName
	}
	fields := strings.Fields(p.Name)
	if len(fields) == 0 {
		return p.Name
	}
	return fields[len(fields)-1]
}

// AbsoluteURL is the canonical path for this person on the website.
func (p *Person) AbsoluteURL() string {
	return fmt.Sprintf("/person/%d/%s/", p.ID, slugify(p.Name))
}

// Party is an Electoral Commission registered party, or one of the pseudo
// parties (independent, speaker) identified by reserved ids.
type Party struct {
	ID               string     `ch:"party_id" json:"party_id"`
	ECID             string     `ch:"ec_id" json:"ec_id"`
	Name             string     `ch:"party_name" json:"party_name"`
	AlternativeName  string     `ch:"alternative_name" json:"alternative_name"`
	Status           string     `ch:"status" json:"status"`
	Register         string     `ch:"register" json:"register"`
	Nations          []string   `ch:"nations" json:"nations"`
	EmblemURL        string     `ch:"emblem_url" json:"emblem_url"`
	Description      string     `ch:"description" json:"description"`
	DateRegistered   *time.Time `ch:"date_registered" json:"date_registered"`
	DateDeregistered *time.Time `ch:"date_deregistered" json:"date_deregistered"`
	Modified         time.Time  `ch:"modified" json:"modified"`
}

func (p *Party) IsIndependent() bool { return p.ID == IndependentPartyID }

func (p *Party) IsSpeaker() bool { return p.ID == SpeakerPartyID }

func (p *Party) IsJointParty() bool { return strings.HasPrefix(p.ID, "joint-party:") }

func (p *Party) IsDeregistered(asOf time.Time) bool {
	return p.DateDeregistered != nil && p.DateDeregistered.Before(asOf)
}

// FormatName appends a deregistration marker when the party is no longer
// registered.
func (p *Party) FormatName(asOf time.Time) string {
	if p.IsDeregistered(asOf) {
		return p.Name + " (Deregistered)"
	}
	return p.Name
}

// Candidacy is one person standing on one ballot for one party.
type Candidacy struct {
	BallotPaperID string  `json:"ballot_paper_id"`
	Person        *Person `json:"person"`
	Party         *Party  `json:"party"`
	// PartyName is denormalised at the time of standing; the Party record
	// may have been renamed since.
	PartyName    string `json:"party_name"`
	ListPosition *int32 `json:"list_position"`
	Votes        *uint32 `json:"votes_cast"`
	// Elected is tri-state: nil until results are known.
	Elected          *bool    `json:"elected"`
	Deselected       bool     `json:"deselected"`
	DeselectedSource string   `json:"deselected_source"`
	PreviousParties  []*Party `json:"previous_party_affiliations"`
	// Pledges are only loaded for non-compact candidate lists.
	Pledges []Pledge `json:"pledges,omitempty"`
}

// Pledge is a campaign promise attached to a candidacy; lower priority
// associated data skipped by compact candidate lists.
type Pledge struct {
	Text       string `json:"text"`
	SourceURL  string `json:"source_url"`
}

// Husting is a public candidate event attached to a ballot.
type Husting struct {
	BallotPaperID string     `ch:"ballot_paper_id" json:"ballot_paper_id"`
	Title         string     `ch:"title" json:"title"`
	URL           string     `ch:"url" json:"url"`
	Starts        time.Time  `ch:"starts" json:"starts"`
	Ends          *time.Time `ch:"ends" json:"ends"`
	Location      string     `ch:"location" json:"location"`
	PostEventURL  string     `ch:"postevent_url" json:"postevent_url"`
}

// BallotDetail is the materialised aggregate the rest of the system works
// with: the ballot plus its election, post, ordered candidacies and
// hustings, loaded in one store call so no follow-up fetches are needed.
type BallotDetail struct {
	Ballot
	Election *Election  `json:"election"`
	Post     *Post      `json:"post"`
	Candidacies []*Candidacy `json:"candidacies"`
	Hustings    []*Husting   `json:"hustings"`
	// InPast classifies the ballot's election date relative to the request
	// day. Set by the resolver; classification, not filtering.
	InPast bool `json:"in_past"`
}

// VotingSystem resolves the effective voting system slug: the per-ballot
// override when present, else the election's.
func (b *BallotDetail) VotingSystem() string {
	if b.Ballot.VotingSystemSlug != "" {
		return b.Ballot.VotingSystemSlug
	}
	if b.Election != nil {
		return b.Election.VotingSystemSlug
	}
	return ""
}

// UsesLists reports whether this ballot's candidates are grouped by party
// list.
func (b *BallotDetail) UsesLists() bool {
	return VotingSystemIsList(b.VotingSystem())
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func formatDayMonthYear(t time.Time) string {
	return fmt.Sprintf("%s %d %s %d", t.Weekday().String(), t.Day(), t.Month().String(), t.Year())
}

func slugify(s string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}
