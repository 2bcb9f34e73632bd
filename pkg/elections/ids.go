package elections

import (
	"fmt"
	"strings"
	"time"
)

// PollDate extracts the poll date embedded in a ballot paper id or election
// slug. By convention the final dot-separated segment is an ISO date, e.g.
// "local.sheffield.ecclesall.by.2023-01-12".
func PollDate(id string) (time.Time, error) {
	segments := strings.Split(id, ".")
	last := segments[len(segments)-1]
	d, err := time.ParseInLocation("2006-01-02", last, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("no poll date in id %q: %w", id, err)
	}
	return d, nil
}

// IsByElection reports whether the id carries the by-election marker
// segment.
func IsByElection(id string) bool {
	return strings.Contains(id, ".by.")
}
