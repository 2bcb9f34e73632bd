package elections

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var cancelTestDay = time.Date(2023, 5, 1, 12, 0, 0, 0, time.UTC)

func cancelledBallot(reason CancellationReason, meta *BallotMetadata, electionDate time.Time) *BallotDetail {
	return &BallotDetail{
		Ballot: Ballot{
			BallotPaperID:      "local.sheffield.ecclesall.2023-05-04",
			Cancelled:          true,
			CancellationReason: reason,
			Metadata:           meta,
		},
		Election: &Election{Date: electionDate},
	}
}

// TestCancellationNotCancelled verifies non-cancelled ballots produce no
// notice.
func TestCancellationNotCancelled(t *testing.T) {
	b := &BallotDetail{Ballot: Ballot{Cancelled: false}}
	assert.Nil(t, b.Cancellation(cancelTestDay))
}

// TestCancellationReasonMessages verifies each reason code maps to its
// fixed message with the candidate list suppressed.
func TestCancellationReasonMessages(t *testing.T) {
	tests := []struct {
		reason  CancellationReason
		message string
	}{
		{ReasonNoCandidates, "This election was cancelled because no candidates stood for the available seats."},
		{ReasonEqualCandidates, "This election was uncontested because the number of candidates who stood was equal to the number of available seats."},
		{ReasonUnderContested, "This election was uncontested because fewer candidates stood than there were available seats."},
		{ReasonCandidateDeath, "This election was cancelled due to the death of a candidate."},
	}

	for _, tt := range tests {
		t.Run(string(tt.reason), func(t *testing.T) {
			b := cancelledBallot(tt.reason, nil, cancelTestDay.AddDate(0, 0, 3))
			notice := b.Cancellation(cancelTestDay)
			require.NotNil(t, notice)
			assert.Equal(t, tt.message, notice.Message)
			assert.False(t, notice.ShowCandidates)
		})
	}
}

// TestCancellationReasonBeatsMetadata verifies the priority chain: a
// reason code wins even when legacy metadata is also present.
func TestCancellationReasonBeatsMetadata(t *testing.T) {
	meta := &BallotMetadata{
		Title:  "Poll cancelled",
		URL:    "https://example.com/notice",
		Detail: "Legacy cancellation notice",
	}
	b := cancelledBallot(ReasonCandidateDeath, meta, cancelTestDay.AddDate(0, 0, 3))

	notice := b.Cancellation(cancelTestDay)
	require.NotNil(t, notice)
	assert.Equal(t, "This election was cancelled due to the death of a candidate.", notice.Message)
	assert.Empty(t, notice.Title)
	assert.False(t, notice.ShowCandidates)
}

// TestCancellationMetadataFallback verifies legacy metadata is used when
// no reason code exists, keeping the candidate list visible.
func TestCancellationMetadataFallback(t *testing.T) {
	meta := &BallotMetadata{
		Title:  "Poll cancelled",
		URL:    "https://example.com/notice",
		Detail: "Legacy cancellation notice",
	}
	b := cancelledBallot("", meta, cancelTestDay.AddDate(0, 0, 3))

	notice := b.Cancellation(cancelTestDay)
	require.NotNil(t, notice)
	assert.Equal(t, "Poll cancelled", notice.Title)
	assert.Equal(t, "https://example.com/notice", notice.URL)
	assert.Equal(t, "Legacy cancellation notice", notice.Message)
	assert.True(t, notice.ShowCandidates)
}

// TestCancellationGenericMessage verifies the generic fallback and that
// its tense follows the election date.
func TestCancellationGenericMessage(t *testing.T) {
	future := cancelledBallot("", nil, cancelTestDay.AddDate(0, 0, 3))
	notice := future.Cancellation(cancelTestDay)
	require.NotNil(t, notice)
	assert.Equal(t, "The poll for this election will not take place.", notice.Message)
	assert.True(t, notice.ShowCandidates)

	past := cancelledBallot("", nil, cancelTestDay.AddDate(0, 0, -30))
	notice = past.Cancellation(cancelTestDay)
	require.NotNil(t, notice)
	assert.Equal(t, "The poll for this election did not take place.", notice.Message)
}
