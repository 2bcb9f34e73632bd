package resolve

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/democlub/wcivf/pkg/devsdc"
	"github.com/democlub/wcivf/pkg/elections"
)

func TestNormalizePostcode(t *testing.T) {
	tests := []struct {
		in       string
		expected string
	}{
		{"s101aa", "S10 1AA"},
		{"S10 1AA", "S10 1AA"},
		{"  s10   1aa  ", "S10 1AA"},
		{"ec1a1bb", "EC1A 1BB"},
		{"w1a", "W1A"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, NormalizePostcode(tt.in), "input %q", tt.in)
	}
}

type fakeLookup struct {
	resp        *devsdc.Response
	err         error
	gotPostcode string
	gotUPRN     string
}

func (f *fakeLookup) Lookup(_ context.Context, postcode, uprn string) (*devsdc.Response, error) {
	f.gotPostcode = postcode
	f.gotUPRN = uprn
	return f.resp, f.err
}

type fakeBallotSource struct {
	ballots map[string]*elections.BallotDetail
}

func (f *fakeBallotSource) BallotsByIDs(_ context.Context, ids []string) ([]*elections.BallotDetail, error) {
	var out []*elections.BallotDetail
	for _, id := range ids {
		if b, ok := f.ballots[id]; ok {
			out = append(out, b)
		}
	}
	return out, nil
}

type fakeAnalytics struct {
	mu      sync.Mutex
	entries []LookupEntry
}

func (f *fakeAnalytics) LogPostcodeLookup(_ context.Context, entry LookupEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, entry)
	return nil
}

func detailBallot(id string, date time.Time, weight int32) *elections.BallotDetail {
	return &elections.BallotDetail{
		Ballot: elections.Ballot{BallotPaperID: id},
		Election: &elections.Election{
			Slug:   "test." + date.Format("2006-01-02"),
			Date:   date,
			Weight: weight,
		},
	}
}

func fixedNow() time.Time {
	return time.Date(2023, 5, 1, 12, 0, 0, 0, time.UTC)
}

func newResolver(t *testing.T, lookup *fakeLookup, source *fakeBallotSource) *Resolver {
	return &Resolver{
		Lookup:  lookup,
		Ballots: source,
		Logger:  zaptest.NewLogger(t),
		Now:     fixedNow,
	}
}

// TestResolveOrdersBallots verifies past ballots sort before future ones,
// then by ascending date, then by descending weight.
func TestResolveOrdersBallots(t *testing.T) {
	now := fixedNow()
	past := detailBallot("local.old.2021-05-06", now.AddDate(-2, 0, 0), 10)
	heavy := detailBallot("parl.future.2023-05-04", now.AddDate(0, 0, 3), 100)
	light := detailBallot("local.future.2023-05-04", now.AddDate(0, 0, 3), 10)
	later := detailBallot("local.later.2023-06-01", now.AddDate(0, 1, 0), 50)

	lookup := &fakeLookup{resp: &devsdc.Response{
		Dates: []devsdc.DateGroup{
			{Ballots: []devsdc.BallotRef{
				{BallotPaperID: "local.later.2023-06-01"},
				{BallotPaperID: "local.future.2023-05-04"},
			}},
			{Ballots: []devsdc.BallotRef{
				{BallotPaperID: "parl.future.2023-05-04"},
				{BallotPaperID: "local.old.2021-05-06"},
			}},
		},
	}}
	source := &fakeBallotSource{ballots: map[string]*elections.BallotDetail{
		past.BallotPaperID:  past,
		heavy.BallotPaperID: heavy,
		light.BallotPaperID: light,
		later.BallotPaperID: later,
	}}

	result, err := newResolver(t, lookup, source).Resolve(context.Background(), "s101aa", "", Provenance{})
	require.NoError(t, err)

	require.Len(t, result.Ballots, 4)
	assert.Equal(t, "local.old.2021-05-06", result.Ballots[0].BallotPaperID)
	assert.Equal(t, "parl.future.2023-05-04", result.Ballots[1].BallotPaperID)
	assert.Equal(t, "local.future.2023-05-04", result.Ballots[2].BallotPaperID)
	assert.Equal(t, "local.later.2023-06-01", result.Ballots[3].BallotPaperID)

	assert.True(t, result.Ballots[0].InPast)
	assert.False(t, result.Ballots[1].InPast)
	assert.Equal(t, "S10 1AA", lookup.gotPostcode)
}

// TestResolveInvalidPostcode verifies an upstream 400 maps to the typed
// sentinel, never a raw error.
func TestResolveInvalidPostcode(t *testing.T) {
	lookup := &fakeLookup{err: &devsdc.APIError{Status: 400, Message: "Could not geocode"}}
	source := &fakeBallotSource{}

	_, err := newResolver(t, lookup, source).Resolve(context.Background(), "zz11zz", "", Provenance{})
	assert.ErrorIs(t, err, ErrInvalidPostcode)
}

// TestResolveUpstreamFailurePassedThrough verifies non-400 failures keep
// their APIError identity for operator logging.
func TestResolveUpstreamFailurePassedThrough(t *testing.T) {
	lookup := &fakeLookup{err: &devsdc.APIError{Status: 503}}
	source := &fakeBallotSource{}

	_, err := newResolver(t, lookup, source).Resolve(context.Background(), "s101aa", "", Provenance{})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidPostcode)

	var apiErr *devsdc.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 503, apiErr.Status)
}

// TestResolveAddressPicker verifies the picker short-circuits ballot
// resolution entirely.
func TestResolveAddressPicker(t *testing.T) {
	lookup := &fakeLookup{resp: &devsdc.Response{
		AddressPicker: true,
		Addresses: []devsdc.Address{
			{Address: "1 High Street", UPRN: "100050123456"},
			{Address: "2 High Street", UPRN: "100050123457"},
		},
	}}
	source := &fakeBallotSource{}

	result, err := newResolver(t, lookup, source).Resolve(context.Background(), "s101aa", "", Provenance{})
	require.NoError(t, err)

	assert.True(t, result.AddressPicker)
	assert.Len(t, result.Addresses, 2)
	assert.Empty(t, result.Ballots)
}

// TestResolveDropsUnknownBallots verifies upstream ids we have not
// imported are silently absent from the result.
func TestResolveDropsUnknownBallots(t *testing.T) {
	now := fixedNow()
	known := detailBallot("local.known.2023-05-04", now.AddDate(0, 0, 3), 10)

	lookup := &fakeLookup{resp: &devsdc.Response{
		Dates: []devsdc.DateGroup{
			{Ballots: []devsdc.BallotRef{
				{BallotPaperID: "local.known.2023-05-04"},
				{BallotPaperID: "local.unknown.2023-05-04"},
			}},
		},
	}}
	source := &fakeBallotSource{ballots: map[string]*elections.BallotDetail{
		known.BallotPaperID: known,
	}}

	result, err := newResolver(t, lookup, source).Resolve(context.Background(), "s101aa", "", Provenance{})
	require.NoError(t, err)
	require.Len(t, result.Ballots, 1)
	assert.Equal(t, "local.known.2023-05-04", result.Ballots[0].BallotPaperID)
}

// TestResolvePollingStation verifies the station is taken from the date
// groups where it is known.
func TestResolvePollingStation(t *testing.T) {
	lookup := &fakeLookup{resp: &devsdc.Response{
		Dates: []devsdc.DateGroup{
			{PollingStation: &devsdc.PollingStation{PollingStationKnown: false}},
			{PollingStation: &devsdc.PollingStation{PollingStationKnown: true}},
		},
		ElectoralServices: &devsdc.ElectoralServices{Name: "Sheffield City Council"},
	}}
	source := &fakeBallotSource{}

	result, err := newResolver(t, lookup, source).Resolve(context.Background(), "s101aa", "", Provenance{})
	require.NoError(t, err)
	assert.True(t, result.PollingStationKnown)
	require.NotNil(t, result.PollingStation)
	assert.True(t, result.PollingStation.PollingStationKnown)
	require.NotNil(t, result.ElectoralServices)
	assert.Equal(t, "Sheffield City Council", result.ElectoralServices.Name)
}

// TestResolveLogsLookup verifies the analytics entry is recorded with the
// normalised postcode and provenance tags.
func TestResolveLogsLookup(t *testing.T) {
	lookup := &fakeLookup{resp: &devsdc.Response{}}
	source := &fakeBallotSource{}
	analytics := &fakeAnalytics{}

	r := newResolver(t, lookup, source)
	r.Analytics = analytics

	_, err := r.Resolve(context.Background(), "s101aa", "", Provenance{UTMSource: "partner"})
	require.NoError(t, err)

	// The analytics write happens off the request path.
	assert.Eventually(t, func() bool {
		analytics.mu.Lock()
		defer analytics.mu.Unlock()
		return len(analytics.entries) == 1
	}, time.Second, 10*time.Millisecond)

	analytics.mu.Lock()
	defer analytics.mu.Unlock()
	entry := analytics.entries[0]
	assert.Equal(t, "S10 1AA", entry.Postcode)
	assert.Equal(t, "partner", entry.UTMSource)
	assert.True(t, entry.CalledAPI)
}
