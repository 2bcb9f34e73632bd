package timetable

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/democlub/wcivf/pkg/elections"
)

// Poll Thursday 2023-05-04. Counting working days backwards:
//
//	11 -> Wed 2023-04-19 (postal vote)
//	12 -> Tue 2023-04-18 (registration)
//	19 -> Fri 2023-04-07 (SOPN, standard)
func TestTimetableStandardOffsets(t *testing.T) {
	tt, err := Rules{}.Timetable("local.sheffield.ecclesall.2023-05-04", elections.NationEngland)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2023, 5, 4, 0, 0, 0, 0, time.UTC), tt.PollDate)
	assert.Equal(t, time.Date(2023, 4, 19, 0, 0, 0, 0, time.UTC), tt.PostalVoteApplicationDeadline)
	assert.Equal(t, time.Date(2023, 4, 18, 0, 0, 0, 0, time.UTC), tt.RegistrationDeadline)
	assert.Equal(t, time.Date(2023, 4, 7, 0, 0, 0, 0, time.UTC), tt.SOPNPublishDate)
}

// TestTimetableSOPNVariants verifies the nation-specific SOPN offsets:
// 23 working days for Scottish locals, 16 for Northern Ireland.
func TestTimetableSOPNVariants(t *testing.T) {
	scot, err := Rules{}.Timetable("local.highland.wick.2022-05-05", elections.NationScotland)
	require.NoError(t, err)
	// Thu 2022-05-05 minus 23 working days = Mon 2022-04-04.
	assert.Equal(t, time.Date(2022, 4, 4, 0, 0, 0, 0, time.UTC), scot.SOPNPublishDate)

	// Scottish non-local ballots use the standard offset.
	scotParl, err := Rules{}.Timetable("sp.c.aberdeen-central.2021-05-06", elections.NationScotland)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2021, 4, 9, 0, 0, 0, 0, time.UTC), scotParl.SOPNPublishDate)

	ni, err := Rules{}.Timetable("parl.belfast-north.2019-12-12", elections.NationNorthernIreland)
	require.NoError(t, err)
	// Thu 2019-12-12 minus 16 working days = Wed 2019-11-20.
	assert.Equal(t, time.Date(2019, 11, 20, 0, 0, 0, 0, time.UTC), ni.SOPNPublishDate)
}

func TestTimetableWeekendsSkipped(t *testing.T) {
	// Monday poll: one working day back is Friday, not Sunday.
	d := subtractWorkingDays(time.Date(2023, 5, 8, 0, 0, 0, 0, time.UTC), 1)
	assert.Equal(t, time.Weekday(time.Friday), d.Weekday())
	assert.Equal(t, time.Date(2023, 5, 5, 0, 0, 0, 0, time.UTC), d)
}

func TestTimetableUnparseableID(t *testing.T) {
	_, err := Rules{}.Timetable("not-a-ballot-id", elections.NationEngland)
	assert.ErrorIs(t, err, ErrNoTimetable)
}

// TestSafe verifies the degradation policy: failures become nil, never an
// error.
func TestSafe(t *testing.T) {
	assert.Nil(t, Safe(Rules{}, "not-a-ballot-id", elections.NationEngland))

	tt := Safe(Rules{}, "local.sheffield.ecclesall.2023-05-04", elections.NationEngland)
	require.NotNil(t, tt)
	assert.Equal(t, time.Date(2023, 5, 4, 0, 0, 0, 0, time.UTC), tt.PollDate)
}
