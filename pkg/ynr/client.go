// Package ynr is the HTTP client for the upstream candidates API that the
// importer syncs from. The feeds are cursor paged: each page carries the
// absolute URL of the next one, so the client walks pages and the caller
// decides how far to go.
package ynr

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/democlub/wcivf/pkg/utils"
)

const defaultPageSize = 200

// Client calls the upstream candidates API.
type Client struct {
	base     string
	apiKey   string
	pageSize int
	http     *http.Client
}

// Opts configures a Client. Zero values fall back to environment
// configuration.
type Opts struct {
	BaseURL    string
	APIKey     string
	PageSize   int
	Timeout    time.Duration
	HTTPClient *http.Client
}

// New builds a Client from options, defaulting from YNR_BASE, YNR_API_KEY,
// YNR_PAGE_SIZE and YNR_TIMEOUT_SECONDS.
func New(o Opts) *Client {
	if o.BaseURL == "" {
		o.BaseURL = utils.Env("YNR_BASE", "https://candidates.democracyclub.org.uk")
	}
	if o.APIKey == "" {
		o.APIKey = utils.Env("YNR_API_KEY", "")
	}
	if o.PageSize <= 0 {
		o.PageSize = utils.EnvInt("YNR_PAGE_SIZE", defaultPageSize)
	}
	if o.Timeout <= 0 {
		o.Timeout = time.Duration(utils.EnvInt("YNR_TIMEOUT_SECONDS", 30)) * time.Second
	}
	client := o.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: o.Timeout}
	} else if client.Timeout == 0 {
		client.Timeout = o.Timeout
	}
	return &Client{base: o.BaseURL, apiKey: o.APIKey, pageSize: o.PageSize, http: client}
}

// BallotPage fetches one page of the ballots feed. An empty pageURL starts
// from the beginning, filtered to ballots modified after lastUpdated when
// one is given. Follow the returned Next URL for subsequent pages.
func (c *Client) BallotPage(ctx context.Context, pageURL string, lastUpdated *time.Time) (*BallotPage, error) {
	if pageURL == "" {
		q := url.Values{}
		q.Set("page_size", strconv.Itoa(c.pageSize))
		if lastUpdated != nil && !lastUpdated.IsZero() {
			q.Set("last_updated", lastUpdated.UTC().Format(time.RFC3339))
		}
		pageURL = c.base + "/api/next/ballots/?" + q.Encode()
	}

	var page BallotPage
	if err := c.getJSON(ctx, pageURL, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// PartyPage fetches one page of the parties feed. An empty pageURL starts
// from the beginning.
func (c *Client) PartyPage(ctx context.Context, pageURL string) (*PartyPage, error) {
	if pageURL == "" {
		q := url.Values{}
		q.Set("page_size", strconv.Itoa(c.pageSize))
		pageURL = c.base + "/api/next/parties/?" + q.Encode()
	}

	var page PartyPage
	if err := c.getJSON(ctx, pageURL, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// Hustings fetches the optional hustings feed, a flat JSON array at the
// given URL.
func (c *Client) Hustings(ctx context.Context, feedURL string) ([]Husting, error) {
	var out []Husting
	if err := c.getJSON(ctx, feedURL, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) getJSON(ctx context.Context, rawURL string, dest interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Token "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("candidates api request failed: %w", err)
	}
	defer func() { _ = utils.DrainAndClose(resp.Body) }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("candidates api returned status %d for %s", resp.StatusCode, rawURL)
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("candidates api returned malformed body: %w", err)
	}
	return nil
}
