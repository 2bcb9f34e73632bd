package controller

import (
	"errors"
	"net/http"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/democlub/wcivf/pkg/db/store"
	"github.com/democlub/wcivf/pkg/elections"
	"github.com/democlub/wcivf/pkg/resolve"
)

// maxBallotResults caps the ballots-query endpoint result set.
const maxBallotResults = 100

// CandidatesForPostcode resolves a postcode to its ballots and returns
// them, candidates attached, as a flat JSON array.
func (c *Controller) CandidatesForPostcode(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	postcode := r.URL.Query().Get("postcode")
	if postcode == "" {
		c.writeError(w, http.StatusBadRequest, "postcode_required", "postcode is a required GET parameter")
		return
	}

	prov := resolve.Provenance{
		UTMSource:   r.URL.Query().Get("utm_source"),
		UTMMedium:   r.URL.Query().Get("utm_medium"),
		UTMCampaign: r.URL.Query().Get("utm_campaign"),
	}

	result, err := c.App.Resolver.Resolve(ctx, postcode, r.URL.Query().Get("uprn"), prov)
	if err != nil {
		if errors.Is(err, resolve.ErrInvalidPostcode) {
			c.writeError(w, http.StatusBadRequest, "postcode_invalid", "Could not find postcode")
			return
		}
		c.App.Logger.Error("Postcode resolution failed",
			zap.String("postcode", postcode),
			zap.Error(err))
		c.writeError(w, http.StatusInternalServerError, "upstream_error", "The address lookup service could not be reached")
		return
	}

	c.writeBallots(w, r, result.Ballots)
}

// CandidatesForBallots returns the named (or recently modified) ballots,
// candidates attached, as a flat JSON array.
func (c *Controller) CandidatesForBallots(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	opts := store.QueryOpts{Limit: maxBallotResults}

	if ids := q.Get("ballot_ids"); ids != "" {
		for _, id := range strings.Split(ids, ",") {
			if id = strings.TrimSpace(id); id != "" {
				opts.BallotPaperIDs = append(opts.BallotPaperIDs, id)
			}
		}
	}
	if raw := q.Get("modified_gt"); raw != "" {
		ts, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.writeError(w, http.StatusBadRequest, "modified_gt_invalid", "modified_gt must be an ISO 8601 timestamp")
			return
		}
		opts.ModifiedGT = &ts
	}
	if len(opts.BallotPaperIDs) == 0 && opts.ModifiedGT == nil {
		c.writeError(w, http.StatusBadRequest, "ballot_ids_required", "ballot_ids is a required GET parameter")
		return
	}
	opts.CurrentOnly = q.Get("current") != ""

	ballots, err := c.App.Store.QueryBallots(ctx, opts)
	if err != nil {
		c.App.Logger.Error("Ballot query failed", zap.Error(err))
		c.writeError(w, http.StatusInternalServerError, "server_error", "Could not load ballots")
		return
	}

	// Soonest election first, heaviest last within a date.
	sort.SliceStable(ballots, func(i, j int) bool {
		a, b := ballots[i], ballots[j]
		if a.Election == nil || b.Election == nil {
			return b.Election == nil && a.Election != nil
		}
		if !a.Election.Date.Equal(b.Election.Date) {
			return a.Election.Date.Before(b.Election.Date)
		}
		return a.Election.Weight < b.Election.Weight
	})

	c.writeBallots(w, r, ballots)
}

func (c *Controller) writeBallots(w http.ResponseWriter, r *http.Request, ballots []*elections.BallotDetail) {
	results := make([]*ballotJSON, 0, len(ballots))
	for _, b := range ballots {
		bj, err := c.serializeBallot(r.Context(), r, b)
		if err != nil {
			c.App.Logger.Error("Ballot serialization failed",
				zap.String("ballot", b.BallotPaperID),
				zap.Error(err))
			c.writeError(w, http.StatusInternalServerError, "server_error", "Could not load candidates")
			return
		}
		results = append(results, bj)
	}
	c.writeJSON(w, http.StatusOK, results)
}
