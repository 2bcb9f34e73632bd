// Package eligibility matches ballots against the legislative instruments
// governing voter ID and postal-vote applications. The matcher returns
// instrument tags, not prose: presentation decides how to phrase them.
package eligibility

import (
	"time"

	"github.com/democlub/wcivf/pkg/elections"
)

// Instrument tags returned by the matcher.
const (
	// InstrumentEA2022 is the Elections Act 2022: photo ID at the polling
	// station, postal votes applied for online.
	InstrumentEA2022 = "EA-2022"
	// InstrumentEFA2002 is the Electoral Fraud (Northern Ireland) Act
	// 2002.
	InstrumentEFA2002 = "EFA-2002"
	// InstrumentRPA2000 is the Representation of the People Act 2000
	// paper application route used by the devolved franchises.
	InstrumentRPA2000 = "RPA-2000"
)

// ea2022From is the first poll date the Elections Act 2022 voter ID
// requirement applied to.
var ea2022From = time.Date(2023, 5, 4, 0, 0, 0, 0, time.UTC)

// Matcher resolves the instruments applying to one ballot. Errors from a
// Matcher are always swallowed by the Safe helpers: unknown eligibility
// must never break page rendering.
type Matcher interface {
	IDRequirements(ballotPaperID string, nation elections.Nation) (string, error)
	PostalVotingRequirements(ballotPaperID string, nation elections.Nation) (string, error)
}

// RulesMatcher implements Matcher from the fixed national rules.
type RulesMatcher struct{}

// IDRequirements returns the voter ID instrument tag for a ballot, or ""
// when no requirement is known. Northern Ireland has required ID since
// 2002; in Great Britain the Elections Act 2022 applies to reserved
// elections (UK Parliament, PCC) everywhere and to English local, mayoral
// and London Assembly polls, from May 2023 onward. Devolved Scottish and
// Welsh franchises have no ID requirement.
func (RulesMatcher) IDRequirements(ballotPaperID string, nation elections.Nation) (string, error) {
	if nation == elections.NationNorthernIreland {
		return InstrumentEFA2002, nil
	}
	poll, err := elections.PollDate(ballotPaperID)
	if err != nil {
		return "", err
	}
	if poll.Before(ea2022From) {
		return "", nil
	}

	cat := elections.ParseCategory(ballotPaperID)
	switch cat.Kind {
	case elections.CategoryParliamentary, elections.CategoryPCC:
		return InstrumentEA2022, nil
	case elections.CategoryLocal, elections.CategoryMayoral, elections.CategoryReferendum:
		if nation == elections.NationEngland {
			return InstrumentEA2022, nil
		}
	case elections.CategoryRegional, elections.CategoryConstituency:
		if cat.IsLondonAssemblyAdditional() || nation == elections.NationEngland {
			return InstrumentEA2022, nil
		}
	}
	return "", nil
}

// PostalVotingRequirements returns the instrument governing postal-vote
// applications for a ballot, or "" when unknown.
func (RulesMatcher) PostalVotingRequirements(ballotPaperID string, nation elections.Nation) (string, error) {
	if nation == elections.NationNorthernIreland {
		return InstrumentEFA2002, nil
	}

	cat := elections.ParseCategory(ballotPaperID)
	switch cat.Kind {
	case elections.CategoryParliamentary, elections.CategoryPCC:
		return InstrumentEA2022, nil
	}
	switch nation {
	case elections.NationScotland, elections.NationWales:
		return InstrumentRPA2000, nil
	default:
		return InstrumentEA2022, nil
	}
}

// SafeIDRequirements applies the deliberate degradation policy: any matcher
// failure reads as "no requirement known".
func SafeIDRequirements(m Matcher, ballotPaperID string, nation elections.Nation) string {
	tag, err := m.IDRequirements(ballotPaperID, nation)
	if err != nil {
		return ""
	}
	return tag
}

// SafePostalVotingRequirements is the postal-vote counterpart of
// SafeIDRequirements.
func SafePostalVotingRequirements(m Matcher, ballotPaperID string, nation elections.Nation) string {
	tag, err := m.PostalVotingRequirements(ballotPaperID, nation)
	if err != nil {
		return ""
	}
	return tag
}

// PostalVoteRequiresForm reports whether a downloadable application form is
// the route for this ballot. True only under the Elections Act 2022
// instrument; every other outcome, including unknown, is false.
func PostalVoteRequiresForm(m Matcher, ballotPaperID string, nation elections.Nation) bool {
	return SafePostalVotingRequirements(m, ballotPaperID, nation) == InstrumentEA2022
}
