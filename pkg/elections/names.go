package elections

import "strings"

// FriendlyName renders the human name for a ballot:
//
//   - mayoral ballots: "<post> mayoral election"
//   - PCC ballots: the post label with the word "Police" stripped, suffixed
//     "Police force area"
//   - everything else: the post label with its division-type suffix
//     ("ward", "constituency") when known, else the raw label
func (b *BallotDetail) FriendlyName() string {
	if b.Post == nil {
		return b.BallotPaperID
	}
	label := b.Post.Label

	switch b.Category().Kind {
	case CategoryMayoral:
		return label + " mayoral election"
	case CategoryPCC:
		area := strings.Join(strings.Fields(strings.ReplaceAll(label, "Police", "")), " ")
		return area + " Police force area"
	}

	if suffix := b.Post.DivisionSuffix(); suffix != "" {
		return label + " " + suffix
	}
	return label
}
