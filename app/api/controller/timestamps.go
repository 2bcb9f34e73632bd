package controller

import (
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/democlub/wcivf/pkg/utils"
)

type lastUpdatedJSON struct {
	BallotTimestamp      *string `json:"ballot_timestamp"`
	PersonTimestamp      *string `json:"person_timestamp"`
	BallotLastUpdatedURL *string `json:"ballot_last_updated_url"`
	PersonLastUpdatedURL *string `json:"person_last_updated_url"`
}

// LastUpdated reports the newest ballot and person timestamps we hold,
// with ready-made follow-up query URLs into the upstream candidates API.
func (c *Controller) LastUpdated(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	out := lastUpdatedJSON{}
	apiBase := utils.Env("YNR_BASE", "https://candidates.democracyclub.org.uk") + "/api/next/"
	apiKey := utils.Env("YNR_API_KEY", "")

	if ts, err := c.App.Store.LastBallotModified(ctx); err != nil {
		c.App.Logger.Warn("Ballot timestamp lookup failed", zap.Error(err))
	} else if !ts.IsZero() {
		iso := ts.UTC().Format(time.RFC3339)
		out.BallotTimestamp = &iso

		params := url.Values{"last_updated": {iso}}
		if apiKey != "" {
			params.Set("auth_token", apiKey)
		}
		u := apiBase + "ballots/?" + params.Encode()
		out.BallotLastUpdatedURL = &u
	}

	if ts, err := c.App.Store.LastPersonUpdated(ctx); err != nil {
		c.App.Logger.Warn("Person timestamp lookup failed", zap.Error(err))
	} else if !ts.IsZero() {
		iso := ts.UTC().Format(time.RFC3339)
		out.PersonTimestamp = &iso

		params := url.Values{"last_updated": {iso}}
		u := apiBase + "people/?" + params.Encode()
		out.PersonLastUpdatedURL = &u
	}

	c.writeJSON(w, http.StatusOK, out)
}
