package importer

import (
	"context"
	"fmt"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/puzpuzpuz/xsync/v4"
	"go.uber.org/zap"

	"github.com/democlub/wcivf/pkg/retry"
	"github.com/democlub/wcivf/pkg/utils"
	"github.com/democlub/wcivf/pkg/ynr"
)

const maxImportWorkers = 4

// Sync runs one full import pass: changed ballots (with their embedded
// elections, posts, people and candidacies), then the party register, then
// the optional hustings feed. Pages are fetched sequentially because the
// upstream paginates by cursor, but each page is transformed and written
// concurrently on a worker pool.
func (a *App) Sync(ctx context.Context) error {
	if !a.syncing.CompareAndSwap(false, true) {
		a.Logger.Info("[importer] sync still running, skipping tick")
		return nil
	}
	defer a.syncing.Store(false)

	started := time.Now()

	since, err := a.Store.LastBallotModified(ctx)
	if err != nil {
		return fmt.Errorf("load ballot watermark: %w", err)
	}
	var sincePtr *time.Time
	if !since.IsZero() {
		sincePtr = &since
	}

	pool := pond.NewPool(maxImportWorkers, pond.WithQueueSize(64))
	defer pool.StopAndWait()
	group := pool.NewGroupContext(ctx)
	groupCtx := group.Context()

	// Entities repeat across pages (one election spans many ballots); the
	// shared seen-maps make each write once-per-run across pool workers.
	seen := &seenState{
		elections: xsync.NewMap[string, struct{}](),
		posts:     xsync.NewMap[string, struct{}](),
		people:    xsync.NewMap[int64, struct{}](),
	}

	pages, ballots := 0, 0
	pageURL := ""
	for {
		var page *ynr.BallotPage
		err := retry.WithBackoff(ctx, retry.DefaultConfig(), a.Logger, "ynr_ballot_page", func() error {
			var perr error
			page, perr = a.YNR.BallotPage(ctx, pageURL, sincePtr)
			return perr
		})
		if err != nil {
			return fmt.Errorf("fetch ballot page: %w", err)
		}

		results := page.Results
		group.SubmitErr(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			return a.importBallotPage(groupCtx, results, seen)
		})

		pages++
		ballots += len(results)
		if page.Next == "" {
			break
		}
		pageURL = page.Next
	}

	if err := group.Wait(); err != nil {
		return fmt.Errorf("import ballot pages: %w", err)
	}

	if err := a.syncParties(ctx); err != nil {
		return err
	}
	if err := a.syncHustings(ctx); err != nil {
		return err
	}

	a.synced.Store(true)
	a.Logger.Info("[importer] sync complete",
		zap.Int("pages", pages),
		zap.Int("ballots", ballots),
		zap.Duration("elapsed", time.Since(started)))
	return nil
}

type seenState struct {
	elections *xsync.Map[string, struct{}]
	posts     *xsync.Map[string, struct{}]
	people    *xsync.Map[int64, struct{}]
}

// importBallotPage transforms one upstream page and writes every entity it
// carries, then drops the cached candidate lists for the touched ballots.
func (a *App) importBallotPage(ctx context.Context, page []ynr.Ballot, seen *seenState) error {
	batch := convertBallotPage(page, seen)

	writes := []struct {
		name string
		fn   func() error
	}{
		{"upsert_elections", func() error { return a.Store.UpsertElections(ctx, batch.elections) }},
		{"upsert_posts", func() error { return a.Store.UpsertPosts(ctx, batch.posts) }},
		{"upsert_people", func() error { return a.Store.UpsertPeople(ctx, batch.people) }},
		{"upsert_ballots", func() error { return a.Store.UpsertBallots(ctx, batch.ballots) }},
		{"upsert_candidacies", func() error { return a.Store.UpsertCandidacies(ctx, batch.candidacies) }},
	}
	for _, write := range writes {
		if err := retry.WithBackoff(ctx, retry.DefaultConfig(), a.Logger, write.name, write.fn); err != nil {
			return fmt.Errorf("%s: %w", write.name, err)
		}
	}

	if a.Cache != nil {
		for _, b := range batch.ballots {
			a.Cache.InvalidateBallot(ctx, b.BallotPaperID)
		}
	}
	return nil
}

// syncParties refreshes the whole party register. It is small enough to
// rewrite every run, which also picks up deregistrations.
func (a *App) syncParties(ctx context.Context) error {
	pageURL := ""
	for {
		var page *ynr.PartyPage
		err := retry.WithBackoff(ctx, retry.DefaultConfig(), a.Logger, "ynr_party_page", func() error {
			var perr error
			page, perr = a.YNR.PartyPage(ctx, pageURL)
			return perr
		})
		if err != nil {
			return fmt.Errorf("fetch party page: %w", err)
		}

		parties := convertParties(page.Results)
		if err := retry.WithBackoff(ctx, retry.DefaultConfig(), a.Logger, "upsert_parties", func() error {
			return a.Store.UpsertParties(ctx, parties)
		}); err != nil {
			return fmt.Errorf("upsert parties: %w", err)
		}

		if page.Next == "" {
			return nil
		}
		pageURL = page.Next
	}
}

// syncHustings loads the flat hustings feed when one is configured.
func (a *App) syncHustings(ctx context.Context) error {
	feedURL := utils.Env("HUSTINGS_FEED_URL", "")
	if feedURL == "" {
		return nil
	}

	feed, err := a.YNR.Hustings(ctx, feedURL)
	if err != nil {
		// The feed is supplementary; a broken feed should not fail ballots
		// already imported this run.
		a.Logger.Warn("[importer] hustings feed fetch failed", zap.Error(err))
		return nil
	}

	hustings := convertHustings(feed)
	if err := a.Store.UpsertHustings(ctx, hustings); err != nil {
		return fmt.Errorf("upsert hustings: %w", err)
	}

	if a.Cache != nil {
		for _, h := range hustings {
			a.Cache.InvalidateBallot(ctx, h.BallotPaperID)
		}
	}
	return nil
}
