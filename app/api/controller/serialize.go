package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/democlub/wcivf/pkg/elections"
	"github.com/democlub/wcivf/pkg/eligibility"
	"github.com/democlub/wcivf/pkg/timetable"
)

// Wire shapes for the public API. These are a compatibility surface:
// field names and null-vs-empty behaviour are load-bearing for existing
// consumers, so change them only deliberately.

type partyJSON struct {
	PartyID   string `json:"party_id"`
	PartyName string `json:"party_name"`
}

type personJSON struct {
	YNRID       int64  `json:"ynr_id"`
	Name        string `json:"name"`
	AbsoluteURL string `json:"absolute_url"`
}

type candidateJSON struct {
	ListPosition              *int32      `json:"list_position"`
	Party                     partyJSON   `json:"party"`
	Person                    personJSON  `json:"person"`
	PreviousPartyAffiliations []partyJSON `json:"previous_party_affiliations"`
	Elected                   *bool       `json:"elected"`
	VotesCast                 *uint32     `json:"votes_cast"`
	Deselected                bool        `json:"deselected"`
}

type postJSON struct {
	PostName string `json:"post_name"`
	PostSlug string `json:"post_slug"`
}

type votingSystemJSON struct {
	Slug        string `json:"slug"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type hustingJSON struct {
	Title        string     `json:"title"`
	URL          string     `json:"url"`
	Starts       time.Time  `json:"starts"`
	Ends         *time.Time `json:"ends"`
	Location     string     `json:"location"`
	PostEventURL string     `json:"postevent_url"`
}

type cancellationJSON struct {
	Message        string  `json:"message"`
	Title          *string `json:"title"`
	URL            *string `json:"url"`
	ShowCandidates bool    `json:"show_candidates"`
}

type ballotJSON struct {
	BallotPaperID            string           `json:"ballot_paper_id"`
	AbsoluteURL              string           `json:"absolute_url"`
	ElectionDate             string           `json:"election_date"`
	ElectionDateText         string           `json:"election_date_text"`
	ElectionName             string           `json:"election_name"`
	ElectionID               string           `json:"election_id"`
	Post                     postJSON         `json:"post"`
	Cancelled                bool             `json:"cancelled"`
	Cancellation             *cancellationJSON `json:"cancellation"`
	BallotLocked             bool             `json:"ballot_locked"`
	ReplacedBy               *string          `json:"replaced_by"`
	NextBallot               *string          `json:"next_ballot"`
	Candidates               []candidateJSON  `json:"candidates"`
	CandidatesSummary        string           `json:"candidates_summary"`
	VotingSystem             votingSystemJSON `json:"voting_system"`
	VoterIDRequirements      *string          `json:"voter_id_requirements"`
	PostalVotingRequirements *string          `json:"postal_voting_requirements"`
	SeatsContested           *int32           `json:"seats_contested"`
	SOPNDate                 *string          `json:"sopn_date"`
	RegistrationDeadline     *string          `json:"registration_deadline"`
	PostalVoteDeadline       *string          `json:"postal_vote_application_deadline"`
	OrganisationType         string           `json:"organisation_type"`
	Hustings                 []hustingJSON    `json:"hustings"`
	LastUpdated              time.Time        `json:"last_updated"`
}

// serializeBallot builds the wire object for one ballot, loading its
// candidate list through the cache-backed lister.
func (c *Controller) serializeBallot(ctx context.Context, r *http.Request, b *elections.BallotDetail) (*ballotJSON, error) {
	cands, err := c.App.Candidates.ForBallot(ctx, b, true)
	if err != nil {
		return nil, err
	}

	nation := elections.NationEngland
	if b.Post != nil {
		nation = b.Post.Nation()
	}
	matcher := eligibility.RulesMatcher{}

	out := &ballotJSON{
		BallotPaperID:            b.BallotPaperID,
		AbsoluteURL:              absoluteURL(r, b.AbsoluteURL()),
		Cancelled:                b.Cancelled,
		BallotLocked:             b.Locked,
		ReplacedBy:               nullableString(b.ReplacedBy),
		Candidates:               serializeCandidates(cands),
		VotingSystem:             serializeVotingSystem(b.VotingSystem()),
		VoterIDRequirements:      nullableString(eligibility.SafeIDRequirements(matcher, b.BallotPaperID, nation)),
		PostalVotingRequirements: nullableString(eligibility.SafePostalVotingRequirements(matcher, b.BallotPaperID, nation)),
		SeatsContested:           b.SeatsContested,
		Hustings:                 serializeHustings(b.Hustings),
		LastUpdated:              b.Modified,
	}
	// Timetable facts are supplementary: unknown patterns leave them null.
	if tt := timetable.Safe(timetable.Rules{}, b.BallotPaperID, nation); tt != nil {
		out.SOPNDate = nullableDate(tt.SOPNPublishDate)
		out.RegistrationDeadline = nullableDate(tt.RegistrationDeadline)
		out.PostalVoteDeadline = nullableDate(tt.PostalVoteApplicationDeadline)
	}

	b.Candidacies = cands
	out.CandidatesSummary = b.BallotCountText()

	if notice := b.Cancellation(time.Now()); notice != nil {
		out.Cancellation = &cancellationJSON{
			Message:        notice.Message,
			Title:          nullableString(notice.Title),
			URL:            nullableString(notice.URL),
			ShowCandidates: notice.ShowCandidates,
		}
		// Reason-coded cancellations suppress the candidate list.
		if !notice.ShowCandidates {
			out.Candidates = []candidateJSON{}
		}
	}

	// Point voters whose election is over (or cancelled) at their next
	// chance to vote here. Supplementary, so lookup failures stay silent.
	if b.Cancelled || (b.Election != nil && b.Election.InPast(time.Now())) {
		if next, err := elections.NextBallot(ctx, c.App.Store, b, time.Now()); err == nil && next != nil {
			out.NextBallot = &next.BallotPaperID
		}
	}
	if b.Election != nil {
		out.ElectionDate = b.Election.Date.Format("2006-01-02")
		out.ElectionDateText = b.Election.FriendlyDay(time.Now())
		out.ElectionName = b.Election.NiceName()
		out.ElectionID = b.Election.Slug
	}
	if b.Post != nil {
		out.Post = postJSON{PostName: b.Post.Label, PostSlug: b.Post.ID}
		out.OrganisationType = b.Post.OrganizationType
	}
	return out, nil
}

func serializeCandidates(cands []*elections.Candidacy) []candidateJSON {
	out := make([]candidateJSON, 0, len(cands))
	for _, cand := range cands {
		cj := candidateJSON{
			ListPosition:              cand.ListPosition,
			Party:                     partyJSON{PartyName: cand.PartyName},
			PreviousPartyAffiliations: []partyJSON{},
			Elected:                   cand.Elected,
			VotesCast:                 cand.Votes,
			Deselected:                cand.Deselected,
		}
		if cand.Party != nil {
			cj.Party.PartyID = cand.Party.ID
			if cj.Party.PartyName == "" {
				cj.Party.PartyName = cand.Party.FormatName(time.Now())
			}
		}
		if cand.Person != nil {
			cj.Person = personJSON{
				YNRID:       cand.Person.ID,
				Name:        cand.Person.Name,
				AbsoluteURL: cand.Person.AbsoluteURL(),
			}
		}
		for _, p := range cand.PreviousParties {
			cj.PreviousPartyAffiliations = append(cj.PreviousPartyAffiliations, partyJSON{
				PartyID:   p.ID,
				PartyName: p.Name,
			})
		}
		out = append(out, cj)
	}
	return out
}

func serializeVotingSystem(slug string) votingSystemJSON {
	vs := elections.VotingSystemBySlug(slug)
	return votingSystemJSON{Slug: vs.Slug, Name: vs.Name, Description: vs.Description}
}

// serializeHustings returns nil (JSON null) when a ballot has no hustings,
// matching the established wire behaviour.
func serializeHustings(hustings []*elections.Husting) []hustingJSON {
	if len(hustings) == 0 {
		return nil
	}
	out := make([]hustingJSON, 0, len(hustings))
	for _, h := range hustings {
		out = append(out, hustingJSON{
			Title:        h.Title,
			URL:          h.URL,
			Starts:       h.Starts,
			Ends:         h.Ends,
			Location:     h.Location,
			PostEventURL: h.PostEventURL,
		})
	}
	return out
}

func nullableDate(t time.Time) *string {
	if t.IsZero() {
		return nil
	}
	s := t.Format("2006-01-02")
	return &s
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// absoluteURL rebuilds a fully-qualified URL for a site path from the
// inbound request, honouring proxy forwarding headers.
func absoluteURL(r *http.Request, path string) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if fwd := r.Header.Get("X-Forwarded-Proto"); fwd != "" {
		scheme = fwd
	}
	host := r.Host
	if fwd := r.Header.Get("X-Forwarded-Host"); fwd != "" {
		host = fwd
	}
	return scheme + "://" + host + path
}
