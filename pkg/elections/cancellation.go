package elections

import "time"

// Fixed cancellation messages, one per reason code.
var cancellationMessages = map[CancellationReason]string{
	ReasonNoCandidates:    "This election was cancelled because no candidates stood for the available seats.",
	ReasonEqualCandidates: "This election was uncontested because the number of candidates who stood was equal to the number of available seats.",
	ReasonUnderContested:  "This election was uncontested because fewer candidates stood than there were available seats.",
	ReasonCandidateDeath:  "This election was cancelled due to the death of a candidate.",
}

// CancellationNotice is what a cancelled ballot should display.
type CancellationNotice struct {
	// ShowCandidates is false when the candidate list must be suppressed
	// (any reason-coded cancellation).
	ShowCandidates bool
	Message        string
	// Title and URL come from legacy metadata, when that path is taken.
	Title string
	URL   string
}

// Cancellation resolves the notice for a ballot, or nil when the ballot is
// not cancelled. The fallback chain is priority ordered and must stay that
// way: a reason code always wins over legacy metadata, which wins over
// the generic message.
//
//	reason code          -> fixed per-reason message, candidates hidden
//	legacy metadata      -> metadata title/link, candidates shown
//	neither              -> generic message (tense follows asOf), candidates shown
func (b *BallotDetail) Cancellation(asOf time.Time) *CancellationNotice {
	if !b.Cancelled {
		return nil
	}

	if msg, ok := cancellationMessages[b.CancellationReason]; ok {
		return &CancellationNotice{ShowCandidates: false, Message: msg}
	}

	if b.Metadata != nil && b.Metadata.Title != "" {
		return &CancellationNotice{
			ShowCandidates: true,
			Message:        b.Metadata.Detail,
			Title:          b.Metadata.Title,
			URL:            b.Metadata.URL,
		}
	}

	msg := "The poll for this election will not take place."
	if b.Election != nil && b.Election.InPast(asOf) {
		msg = "The poll for this election did not take place."
	}
	return &CancellationNotice{ShowCandidates: true, Message: msg}
}
