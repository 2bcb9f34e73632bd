package ynr

import (
	"strings"
	"time"
)

// Date unmarshals the upstream's plain YYYY-MM-DD date fields.
type Date struct {
	time.Time
}

func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		d.Time = time.Time{}
		return nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

// BallotPage is one page of the upstream ballots feed. Next is the
// absolute URL of the following page, empty on the last one.
type BallotPage struct {
	Count    int      `json:"count"`
	Next     string   `json:"next"`
	Previous string   `json:"previous"`
	Results  []Ballot `json:"results"`
}

// Ballot is an upstream ballot with its election, post and candidacies
// embedded. One feed drives the whole entity graph except parties.
type Ballot struct {
	BallotPaperID      string          `json:"ballot_paper_id"`
	Election           Election        `json:"election"`
	Post               Post            `json:"post"`
	WinnerCount        *int32          `json:"winner_count"`
	Cancelled          bool            `json:"cancelled"`
	CancellationReason string          `json:"cancellation_reason"`
	CandidatesLocked   bool            `json:"candidates_locked"`
	ReplacedBy         string          `json:"replaced_by"`
	VotingSystem       *VotingSystem   `json:"voting_system"`
	Candidacies        []Candidacy     `json:"candidacies"`
	Results            *BallotResults  `json:"results"`
	Metadata           *BallotMetadata `json:"metadata"`
	LastUpdated        time.Time       `json:"last_updated"`
}

type Election struct {
	Slug              string        `json:"slug"`
	Name              string        `json:"name"`
	ElectionDate      Date          `json:"election_date"`
	Current           bool          `json:"current"`
	ElectionWeight    int32         `json:"election_weight"`
	AnyNonByElections bool          `json:"any_non_by_elections"`
	VotingSystem      *VotingSystem `json:"voting_system"`
	Description       string        `json:"description"`
}

// Type is the election family: the first dotted segment of the slug.
func (e *Election) Type() string {
	if i := strings.IndexByte(e.Slug, '.'); i >= 0 {
		return e.Slug[:i]
	}
	return e.Slug
}

type Post struct {
	ID               string `json:"id"`
	Label            string `json:"label"`
	Role             string `json:"role"`
	Organization     string `json:"organization"`
	OrganizationType string `json:"organization_type"`
	Territory        string `json:"territory"`
	DivisionType     string `json:"division_type"`
}

type VotingSystem struct {
	Slug string `json:"slug"`
	Name string `json:"name"`
}

type BallotResults struct {
	Electorate            *uint32 `json:"total_electorate"`
	TurnoutPercentage     *uint32 `json:"turnout_percentage"`
	SpoiltBallots         *uint32 `json:"num_spoilt_ballots"`
	TurnoutReported       *uint32 `json:"num_turnout_reported"`
	TotalBallotsCast      *uint32 `json:"total_ballots_cast"`
}

type BallotMetadata struct {
	Title  string `json:"title"`
	URL    string `json:"url"`
	Detail string `json:"detail"`
}

type Candidacy struct {
	Person           Person   `json:"person"`
	Party            Party    `json:"party"`
	PartyName        string   `json:"party_name"`
	PartyListPosition *int32  `json:"party_list_position"`
	Elected          *bool    `json:"elected"`
	Deselected       bool     `json:"deselected"`
	DeselectedSource string   `json:"deselected_source"`
	PreviousPartyIDs []string `json:"previous_party_affiliations"`
	Votes            *uint32  `json:"votes_cast"`
	Pledges          []Pledge `json:"pledges"`
}

type Pledge struct {
	Text      string `json:"text"`
	SourceURL string `json:"source_url"`
}

type Person struct {
	ID                int64     `json:"id"`
	Name              string    `json:"name"`
	SortName          string    `json:"sort_name"`
	StatementToVoters string    `json:"statement_to_voters"`
	PhotoURL          string    `json:"photo_url"`
	LastUpdated       time.Time `json:"last_updated"`
}

// PartyPage is one page of the upstream parties feed.
type PartyPage struct {
	Count    int     `json:"count"`
	Next     string  `json:"next"`
	Previous string  `json:"previous"`
	Results  []Party `json:"results"`
}

type Party struct {
	ID               string `json:"party_id"`
	ECID             string `json:"ec_id"`
	Name             string `json:"name"`
	AlternativeName  string `json:"alternative_name"`
	Status           string `json:"status"`
	Register         string `json:"register"`
	Nations          []string `json:"nations"`
	EmblemURL        string `json:"default_emblem"`
	Description      string `json:"description"`
	DateRegistered   *Date  `json:"date_registered"`
	DateDeregistered *Date  `json:"date_deregistered"`
	LastUpdated      time.Time `json:"last_updated"`
}

// Husting is one entry of the optional hustings feed: a flat JSON array,
// not paged.
type Husting struct {
	BallotPaperID string     `json:"ballot_paper_id"`
	Title         string     `json:"title"`
	URL           string     `json:"url"`
	Starts        time.Time  `json:"starts"`
	Ends          *time.Time `json:"ends"`
	Location      string     `json:"location"`
	PostEventURL  string     `json:"postevent_url"`
}
