package eligibility

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/democlub/wcivf/pkg/elections"
)

func TestIDRequirements(t *testing.T) {
	tests := []struct {
		name     string
		id       string
		nation   elections.Nation
		expected string
	}{
		{
			name:     "northern ireland always EFA-2002",
			id:       "parl.belfast-north.2019-12-12",
			nation:   elections.NationNorthernIreland,
			expected: InstrumentEFA2002,
		},
		{
			name:     "parliamentary after commencement",
			id:       "parl.sheffield-hallam.2024-07-04",
			nation:   elections.NationEngland,
			expected: InstrumentEA2022,
		},
		{
			name:     "parliamentary before commencement",
			id:       "parl.sheffield-hallam.2019-12-12",
			nation:   elections.NationEngland,
			expected: "",
		},
		{
			name:     "english local on the commencement date",
			id:       "local.sheffield.ecclesall.2023-05-04",
			nation:   elections.NationEngland,
			expected: InstrumentEA2022,
		},
		{
			name:     "pcc in wales is reserved",
			id:       "pcc.south-wales.2024-05-02",
			nation:   elections.NationWales,
			expected: InstrumentEA2022,
		},
		{
			name:     "scottish local has no requirement",
			id:       "local.highland.wick.2027-05-06",
			nation:   elections.NationScotland,
			expected: "",
		},
		{
			name:     "senedd constituency has no requirement",
			id:       "senedd.c.aberavon.2026-05-07",
			nation:   elections.NationWales,
			expected: "",
		},
		{
			name:     "london assembly additional member",
			id:       "gla.a.2024-05-02",
			nation:   elections.NationEngland,
			expected: InstrumentEA2022,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tag, err := RulesMatcher{}.IDRequirements(tt.id, tt.nation)
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, tag)
		})
	}
}

func TestPostalVotingRequirements(t *testing.T) {
	tests := []struct {
		name     string
		id       string
		nation   elections.Nation
		expected string
	}{
		{
			name:     "northern ireland",
			id:       "parl.belfast-north.2019-12-12",
			nation:   elections.NationNorthernIreland,
			expected: InstrumentEFA2002,
		},
		{
			name:     "reserved election in scotland",
			id:       "parl.glasgow-north.2024-07-04",
			nation:   elections.NationScotland,
			expected: InstrumentEA2022,
		},
		{
			name:     "scottish local uses paper route",
			id:       "local.highland.wick.2022-05-05",
			nation:   elections.NationScotland,
			expected: InstrumentRPA2000,
		},
		{
			name:     "welsh local uses paper route",
			id:       "local.cardiff.cathays.2022-05-05",
			nation:   elections.NationWales,
			expected: InstrumentRPA2000,
		},
		{
			name:     "english local",
			id:       "local.sheffield.ecclesall.2023-05-04",
			nation:   elections.NationEngland,
			expected: InstrumentEA2022,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tag, err := RulesMatcher{}.PostalVotingRequirements(tt.id, tt.nation)
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, tag)
		})
	}
}

type failingMatcher struct{}

func (failingMatcher) IDRequirements(string, elections.Nation) (string, error) {
	return "", errors.New("boom")
}

func (failingMatcher) PostalVotingRequirements(string, elections.Nation) (string, error) {
	return "", errors.New("boom")
}

// TestSafeHelpers verifies matcher failures degrade to "unknown" instead
// of propagating.
func TestSafeHelpers(t *testing.T) {
	assert.Equal(t, "", SafeIDRequirements(failingMatcher{}, "x", elections.NationEngland))
	assert.Equal(t, "", SafePostalVotingRequirements(failingMatcher{}, "x", elections.NationEngland))
	assert.False(t, PostalVoteRequiresForm(failingMatcher{}, "x", elections.NationEngland))
}

func TestPostalVoteRequiresForm(t *testing.T) {
	assert.True(t, PostalVoteRequiresForm(RulesMatcher{}, "local.sheffield.ecclesall.2023-05-04", elections.NationEngland))
	assert.False(t, PostalVoteRequiresForm(RulesMatcher{}, "local.highland.wick.2022-05-05", elections.NationScotland))
}
