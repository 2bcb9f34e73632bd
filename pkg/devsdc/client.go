// Package devsdc is the HTTP client for the external address-to-ballots
// lookup API. Given a postcode (or a specific UPRN once the user has picked
// an address) it returns the per-date ballot groups and polling-station
// data for that address.
package devsdc

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/democlub/wcivf/pkg/utils"
)

// APIError is any non-success outcome from the lookup API: an HTTP status
// of 400 or above, a transport failure, or a timeout. Status and Message
// are preserved for operator logs, never shown to end users. A malformed
// error body degrades to an empty message, not a crash.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("address lookup failed: status %d", e.Status)
	}
	return fmt.Sprintf("address lookup failed: status %d: %s", e.Status, e.Message)
}

// Client calls the address-lookup API. One outbound call per inbound
// request; no retries. The explicit timeout makes a hung upstream a bounded
// failure, surfaced as an APIError like any other upstream problem.
type Client struct {
	base   string
	apiKey string
	http   *http.Client
}

// Opts configures a Client. Zero values fall back to environment
// configuration.
type Opts struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// New builds a Client from options, defaulting from DEVS_DC_BASE,
// DEVS_DC_API_KEY and DEVS_DC_TIMEOUT_SECONDS.
func New(o Opts) *Client {
	if o.BaseURL == "" {
		o.BaseURL = utils.Env("DEVS_DC_BASE", "https://developers.democracyclub.org.uk")
	}
	if o.APIKey == "" {
		o.APIKey = utils.Env("DEVS_DC_API_KEY", "")
	}
	if o.Timeout <= 0 {
		o.Timeout = time.Duration(utils.EnvInt("DEVS_DC_TIMEOUT_SECONDS", 10)) * time.Second
	}
	client := o.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: o.Timeout}
	} else if client.Timeout == 0 {
		client.Timeout = o.Timeout
	}
	return &Client{base: o.BaseURL, apiKey: o.APIKey, http: client}
}

// Lookup queries by postcode, or by UPRN when the user has already picked
// an address. The postcode must be normalised before calling; it is used
// verbatim in the request path.
func (c *Client) Lookup(ctx context.Context, postcode, uprn string) (*Response, error) {
	path := "/api/v1/postcode/" + url.PathEscape(postcode) + "/"
	if uprn != "" {
		path = "/api/v1/address/" + url.PathEscape(uprn) + "/"
	}

	q := url.Values{}
	if c.apiKey != "" {
		q.Set("auth_token", c.apiKey)
	}
	q.Set("include_current", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &APIError{Message: err.Error()}
	}
	defer func() { _ = utils.DrainAndClose(resp.Body) }()

	if resp.StatusCode >= 400 {
		return nil, &APIError{Status: resp.StatusCode, Message: errorMessage(resp)}
	}

	var out Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, &APIError{Status: resp.StatusCode, Message: "malformed response body"}
	}
	return &out, nil
}

// errorMessage pulls the upstream's message out of an error body, treating
// malformed JSON as an empty message.
func errorMessage(resp *http.Response) string {
	var body struct {
		Message string `json:"message"`
		Detail  string `json:"detail"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return ""
	}
	if body.Message != "" {
		return body.Message
	}
	return body.Detail
}
