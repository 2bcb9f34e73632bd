// Package resolve turns a free-text postcode (optionally plus a picked
// address) into the set of locally-known ballots for that address, with
// polling-station data attached. It is the request path's only outbound
// dependency: one lookup call, a store read, no retries.
package resolve

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/democlub/wcivf/pkg/devsdc"
	"github.com/democlub/wcivf/pkg/elections"
)

// ErrInvalidPostcode means the upstream did not recognise the postcode.
// Handlers recover from this by prompting for re-entry; it must never
// surface as a server error.
var ErrInvalidPostcode = errors.New("invalid postcode")

// AddressLookup is the external address-to-ballots service.
type AddressLookup interface {
	Lookup(ctx context.Context, postcode, uprn string) (*devsdc.Response, error)
}

// BallotSource loads materialised ballot aggregates by paper id.
type BallotSource interface {
	BallotsByIDs(ctx context.Context, ids []string) ([]*elections.BallotDetail, error)
}

// LookupLogger records postcode searches for analytics.
type LookupLogger interface {
	LogPostcodeLookup(ctx context.Context, entry LookupEntry) error
}

// LookupEntry is one analytics record: the searched postcode plus request
// provenance tags.
type LookupEntry struct {
	Postcode     string    `json:"postcode"`
	UTMSource    string    `json:"utm_source"`
	UTMMedium    string    `json:"utm_medium"`
	UTMCampaign  string    `json:"utm_campaign"`
	CalledAPI    bool      `json:"calls_devs_dc_api"`
	Timestamp    time.Time `json:"timestamp"`
}

// Provenance carries the campaign/source tags from the inbound request.
type Provenance struct {
	UTMSource   string
	UTMMedium   string
	UTMCampaign string
}

// Result is the resolution bundle handed to presentation.
type Result struct {
	Postcode string
	// AddressPicker short-circuits everything else: when true only
	// Addresses is populated and no ballot resolution was attempted.
	AddressPicker bool
	Addresses     []devsdc.Address
	// Ballots carries every locally-known ballot across all date groups,
	// each annotated past/future, ordered past first, then by ascending
	// date, then by descending election weight.
	Ballots []*elections.BallotDetail
	// PollingStation reflects only the date groups where the station was
	// known.
	PollingStationKnown bool
	PollingStation      *devsdc.PollingStation
	ElectoralServices   *devsdc.ElectoralServices
}

// Resolver wires the lookup client, the local ballot store and the
// analytics sink.
type Resolver struct {
	Lookup    AddressLookup
	Ballots   BallotSource
	Analytics LookupLogger
	Logger    *zap.Logger

	// Now is injectable for tests; defaults to time.Now.
	Now func() time.Time
}

func (r *Resolver) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

// NormalizePostcode canonicalises arbitrary user formatting to the
// uppercase "outward inward" form used for lookups and cache keys.
func NormalizePostcode(raw string) string {
	s := strings.ToUpper(strings.Join(strings.Fields(raw), ""))
	if len(s) > 3 {
		return s[:len(s)-3] + " " + s[len(s)-3:]
	}
	return s
}

// Resolve maps a postcode (and optional picked address) onto local
// ballots. Unrecognised postcodes return ErrInvalidPostcode; any other
// upstream failure returns the devsdc.APIError for the caller to log.
func (r *Resolver) Resolve(ctx context.Context, postcode, uprn string, prov Provenance) (*Result, error) {
	postcode = NormalizePostcode(postcode)

	resp, err := r.Lookup.Lookup(ctx, postcode, uprn)
	if err != nil {
		var apiErr *devsdc.APIError
		if errors.As(err, &apiErr) && apiErr.Status == 400 {
			return nil, ErrInvalidPostcode
		}
		return nil, err
	}

	r.logLookup(postcode, prov)

	out := &Result{
		Postcode:          postcode,
		AddressPicker:     resp.AddressPicker,
		ElectoralServices: resp.ElectoralServices,
	}
	if resp.AddressPicker {
		out.Addresses = resp.Addresses
		return out, nil
	}

	var ids []string
	for _, group := range resp.Dates {
		for _, ref := range group.Ballots {
			ids = append(ids, ref.BallotPaperID)
		}
		if group.PollingStation != nil && group.PollingStation.PollingStationKnown {
			out.PollingStationKnown = true
			out.PollingStation = group.PollingStation
		}
	}

	ballots, err := r.Ballots.BallotsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if r.Logger != nil && len(ballots) < len(ids) {
		// The upstream may reference ballots we have not imported yet;
		// they are dropped, but visibly, so import gaps can be spotted.
		r.Logger.Debug("upstream referenced unknown ballots",
			zap.Int("referenced", len(ids)),
			zap.Int("known", len(ballots)),
			zap.String("postcode", postcode))
	}

	today := r.now()
	for _, b := range ballots {
		b.InPast = b.Election != nil && b.Election.InPast(today)
	}
	sortBallots(ballots)
	out.Ballots = ballots

	return out, nil
}

// sortBallots orders past before today/future, then ascending election
// date, then descending election weight so higher-priority concurrent
// elections come first.
func sortBallots(ballots []*elections.BallotDetail) {
	sort.SliceStable(ballots, func(i, j int) bool {
		a, b := ballots[i], ballots[j]
		if a.InPast != b.InPast {
			return a.InPast
		}
		ad, bd := electionDate(a), electionDate(b)
		if !ad.Equal(bd) {
			return ad.Before(bd)
		}
		return electionWeight(a) > electionWeight(b)
	})
}

func electionDate(b *elections.BallotDetail) time.Time {
	if b.Election == nil {
		return time.Time{}
	}
	return b.Election.Date
}

func electionWeight(b *elections.BallotDetail) int32 {
	if b.Election == nil {
		return 0
	}
	return b.Election.Weight
}

// logLookup records the search for analytics off the request path. Failures
// are logged and forgotten; analytics never blocks or fails a lookup.
func (r *Resolver) logLookup(postcode string, prov Provenance) {
	if r.Analytics == nil {
		return
	}
	entry := LookupEntry{
		Postcode:    postcode,
		UTMSource:   prov.UTMSource,
		UTMMedium:   prov.UTMMedium,
		UTMCampaign: prov.UTMCampaign,
		CalledAPI:   true,
		Timestamp:   r.now(),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := r.Analytics.LogPostcodeLookup(ctx, entry); err != nil && r.Logger != nil {
			r.Logger.Warn("postcode lookup logging failed", zap.Error(err))
		}
	}()
}
