package importer

import (
	"time"

	"github.com/democlub/wcivf/pkg/elections"
	"github.com/democlub/wcivf/pkg/ynr"
)

// pageBatch is the converted contents of one upstream ballot page, split
// per entity table and already deduplicated across the run.
type pageBatch struct {
	elections   []*elections.Election
	posts       []*elections.Post
	ballots     []*elections.Ballot
	people      []*elections.Person
	candidacies []*elections.Candidacy
}

func convertBallotPage(page []ynr.Ballot, seen *seenState) *pageBatch {
	batch := &pageBatch{}

	for i := range page {
		yb := &page[i]

		if _, loaded := seen.elections.LoadOrStore(yb.Election.Slug, struct{}{}); !loaded {
			batch.elections = append(batch.elections, convertElection(&yb.Election, yb.LastUpdated))
		}
		if _, loaded := seen.posts.LoadOrStore(yb.Post.ID, struct{}{}); !loaded {
			batch.posts = append(batch.posts, convertPost(&yb.Post, yb.LastUpdated))
		}

		batch.ballots = append(batch.ballots, convertBallot(yb))

		for j := range yb.Candidacies {
			yc := &yb.Candidacies[j]
			if _, loaded := seen.people.LoadOrStore(yc.Person.ID, struct{}{}); !loaded {
				batch.people = append(batch.people, convertPerson(&yc.Person))
			}
			batch.candidacies = append(batch.candidacies, convertCandidacy(yb.BallotPaperID, yc))
		}
	}
	return batch
}

func convertElection(ye *ynr.Election, modified time.Time) *elections.Election {
	e := &elections.Election{
		Slug:              ye.Slug,
		Name:              ye.Name,
		Date:              ye.ElectionDate.Time,
		Type:              ye.Type(),
		Current:           ye.Current,
		Weight:            ye.ElectionWeight,
		AnyNonByElections: ye.AnyNonByElections,
		Description:       ye.Description,
		Modified:          modified,
	}
	if ye.VotingSystem != nil {
		e.VotingSystemSlug = ye.VotingSystem.Slug
	}
	return e
}

func convertPost(yp *ynr.Post, modified time.Time) *elections.Post {
	return &elections.Post{
		ID:               yp.ID,
		Label:            yp.Label,
		Role:             yp.Role,
		Organization:     yp.Organization,
		OrganizationType: yp.OrganizationType,
		Territory:        elections.Nation(yp.Territory),
		DivisionType:     yp.DivisionType,
		Modified:         modified,
	}
}

func convertBallot(yb *ynr.Ballot) *elections.Ballot {
	b := &elections.Ballot{
		BallotPaperID:      yb.BallotPaperID,
		PostID:             yb.Post.ID,
		ElectionSlug:       yb.Election.Slug,
		Contested:          !yb.Cancelled,
		SeatsContested:     yb.WinnerCount,
		Locked:             yb.CandidatesLocked,
		Cancelled:          yb.Cancelled,
		CancellationReason: elections.CancellationReason(yb.CancellationReason),
		ReplacedBy:         yb.ReplacedBy,
		Modified:           yb.LastUpdated,
	}

	// Only store a per-ballot voting system when it actually overrides the
	// election's; readers fall back to the election otherwise.
	var electionSystem string
	if yb.Election.VotingSystem != nil {
		electionSystem = yb.Election.VotingSystem.Slug
	}
	if yb.VotingSystem != nil && yb.VotingSystem.Slug != electionSystem {
		b.VotingSystemSlug = yb.VotingSystem.Slug
	}

	if yb.Results != nil {
		b.Electorate = yb.Results.Electorate
		b.TurnoutCount = yb.Results.TurnoutReported
		b.SpoiltBallots = yb.Results.SpoiltBallots
		b.PapersIssued = yb.Results.TotalBallotsCast
	}
	if yb.Metadata != nil {
		b.Metadata = &elections.BallotMetadata{
			Title:  yb.Metadata.Title,
			URL:    yb.Metadata.URL,
			Detail: yb.Metadata.Detail,
		}
	}
	return b
}

func convertPerson(yp *ynr.Person) *elections.Person {
	return &elections.Person{
		ID:          yp.ID,
		Name:        yp.Name,
		SortName:    yp.SortName,
		Statement:   yp.StatementToVoters,
		PhotoURL:    yp.PhotoURL,
		LastUpdated: yp.LastUpdated,
	}
}

func convertCandidacy(ballotPaperID string, yc *ynr.Candidacy) *elections.Candidacy {
	c := &elections.Candidacy{
		BallotPaperID:    ballotPaperID,
		Person:           convertPerson(&yc.Person),
		Party:            &elections.Party{ID: yc.Party.ID},
		PartyName:        yc.PartyName,
		ListPosition:     yc.PartyListPosition,
		Votes:            yc.Votes,
		Elected:          yc.Elected,
		Deselected:       yc.Deselected,
		DeselectedSource: yc.DeselectedSource,
	}
	if c.PartyName == "" {
		c.PartyName = yc.Party.Name
	}
	for _, id := range yc.PreviousPartyIDs {
		c.PreviousParties = append(c.PreviousParties, &elections.Party{ID: id})
	}
	for _, p := range yc.Pledges {
		c.Pledges = append(c.Pledges, elections.Pledge{Text: p.Text, SourceURL: p.SourceURL})
	}
	return c
}

func convertParties(page []ynr.Party) []*elections.Party {
	out := make([]*elections.Party, 0, len(page))
	for i := range page {
		yp := &page[i]
		p := &elections.Party{
			ID:              yp.ID,
			ECID:            yp.ECID,
			Name:            yp.Name,
			AlternativeName: yp.AlternativeName,
			Status:          yp.Status,
			Register:        yp.Register,
			Nations:         yp.Nations,
			EmblemURL:       yp.EmblemURL,
			Description:     yp.Description,
			Modified:        yp.LastUpdated,
		}
		if p.Modified.IsZero() {
			p.Modified = time.Now().UTC()
		}
		if yp.DateRegistered != nil {
			t := yp.DateRegistered.Time
			p.DateRegistered = &t
		}
		if yp.DateDeregistered != nil {
			t := yp.DateDeregistered.Time
			p.DateDeregistered = &t
		}
		out = append(out, p)
	}
	return out
}

func convertHustings(feed []ynr.Husting) []*elections.Husting {
	out := make([]*elections.Husting, 0, len(feed))
	for i := range feed {
		yh := &feed[i]
		out = append(out, &elections.Husting{
			BallotPaperID: yh.BallotPaperID,
			Title:         yh.Title,
			URL:           yh.URL,
			Starts:        yh.Starts,
			Ends:          yh.Ends,
			Location:      yh.Location,
			PostEventURL:  yh.PostEventURL,
		})
	}
	return out
}
