// Package timetable derives fixed national election-timetable facts for a
// ballot: when the Statement of Persons Nominated is published and the
// registration and postal-vote deadlines. Dates are computed from the poll
// date embedded in the ballot paper id plus the ballot's nation, using the
// statutory working-day offsets.
package timetable

import (
	"errors"
	"fmt"
	"time"

	"github.com/democlub/wcivf/pkg/elections"
)

// ErrNoTimetable is returned when no timetable rule matches a ballot id
// pattern. Callers whose output tolerates missing data should use the Safe
// helpers instead of handling this directly.
var ErrNoTimetable = errors.New("no timetable for ballot")

// Timetable holds the derived dates for one ballot.
type Timetable struct {
	PollDate                      time.Time
	SOPNPublishDate               time.Time
	RegistrationDeadline          time.Time
	PostalVoteApplicationDeadline time.Time
}

// Source looks up the timetable for a ballot. The production implementation
// is Rules; tests substitute fakes.
type Source interface {
	Timetable(ballotPaperID string, nation elections.Nation) (*Timetable, error)
}

// Rules computes timetables from the statutory working-day offsets.
//
// Offsets are in working days before the poll. Weekends are excluded; bank
// holidays are not modelled, matching the precision of the data this
// service displays (deadlines are phrased as dates, not instants).
type Rules struct{}

const (
	registrationOffset = 12
	postalVoteOffset   = 11
)

// sopnOffset is the Statement of Persons Nominated publication deadline in
// working days before the poll. Scotland's local timetable runs longer; so
// does Northern Ireland's short parliamentary one.
func sopnOffset(cat elections.Category, nation elections.Nation) int {
	switch {
	case nation == elections.NationNorthernIreland:
		return 16
	case nation == elections.NationScotland && cat.Kind == elections.CategoryLocal:
		return 23
	default:
		return 19
	}
}

func (Rules) Timetable(ballotPaperID string, nation elections.Nation) (*Timetable, error) {
	poll, err := elections.PollDate(ballotPaperID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNoTimetable, ballotPaperID)
	}
	cat := elections.ParseCategory(ballotPaperID)

	return &Timetable{
		PollDate:                      poll,
		SOPNPublishDate:               subtractWorkingDays(poll, sopnOffset(cat, nation)),
		RegistrationDeadline:          subtractWorkingDays(poll, registrationOffset),
		PostalVoteApplicationDeadline: subtractWorkingDays(poll, postalVoteOffset),
	}, nil
}

func subtractWorkingDays(d time.Time, n int) time.Time {
	for n > 0 {
		d = d.AddDate(0, 0, -1)
		if wd := d.Weekday(); wd != time.Saturday && wd != time.Sunday {
			n--
		}
	}
	return d
}

// Safe wraps a Source lookup for callers that tolerate missing data:
// failures come back as nil, never an error. Eligibility facts are
// supplementary, not load-bearing, for page rendering.
func Safe(src Source, ballotPaperID string, nation elections.Nation) *Timetable {
	tt, err := src.Timetable(ballotPaperID, nation)
	if err != nil {
		return nil
	}
	return tt
}
