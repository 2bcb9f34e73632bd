package elections

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestParseCategory verifies that each identifier prefix maps to exactly
// one category and that the boolean accessors stay mutually consistent.
func TestParseCategory(t *testing.T) {
	tests := []struct {
		name string
		id   string
		kind CategoryKind
	}{
		{
			name: "mayoral",
			id:   "mayor.hackney.2022-05-05",
			kind: CategoryMayoral,
		},
		{
			name: "parliamentary",
			id:   "parl.sheffield-hallam.2019-12-12",
			kind: CategoryParliamentary,
		},
		{
			name: "parliamentary by-election",
			id:   "parl.oldham-west-and-royton.by.2015-12-03",
			kind: CategoryParliamentary,
		},
		{
			name: "police and crime commissioner",
			id:   "pcc.avon-and-somerset.2021-05-06",
			kind: CategoryPCC,
		},
		{
			name: "referendum",
			id:   "ref.croydon.2021-10-07",
			kind: CategoryReferendum,
		},
		{
			name: "london assembly constituency",
			id:   "gla.c.barnet-and-camden.2021-05-06",
			kind: CategoryConstituency,
		},
		{
			name: "london assembly additional",
			id:   "gla.a.2021-05-06",
			kind: CategoryRegional,
		},
		{
			name: "senedd constituency",
			id:   "senedd.c.aberavon.2021-05-06",
			kind: CategoryConstituency,
		},
		{
			name: "senedd region",
			id:   "senedd.r.south-wales-west.2021-05-06",
			kind: CategoryRegional,
		},
		{
			name: "scottish parliament constituency",
			id:   "sp.c.aberdeen-central.2021-05-06",
			kind: CategoryConstituency,
		},
		{
			name: "scottish parliament region",
			id:   "sp.r.glasgow.2021-05-06",
			kind: CategoryRegional,
		},
		{
			name: "plain local election defaults to local",
			id:   "local.sheffield.ecclesall.2023-05-04",
			kind: CategoryLocal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cat := ParseCategory(tt.id)
			assert.Equal(t, tt.kind, cat.Kind)

			assert.Equal(t, tt.kind == CategoryMayoral, cat.IsMayoral())
			assert.Equal(t, tt.kind == CategoryParliamentary, cat.IsParliamentary())
			assert.Equal(t, tt.kind == CategoryPCC, cat.IsPCC())
			assert.Equal(t, tt.kind == CategoryReferendum, cat.IsReferendum())
			assert.Equal(t, tt.kind == CategoryConstituency, cat.IsConstituency())
			assert.Equal(t, tt.kind == CategoryRegional, cat.IsRegional())
		})
	}
}

// TestParseCategoryLondonAdditional verifies the London additional-member
// flag is set only for the gla.a prefix.
func TestParseCategoryLondonAdditional(t *testing.T) {
	assert.True(t, ParseCategory("gla.a.2021-05-06").LondonAssemblyAdditional)
	assert.False(t, ParseCategory("gla.c.barnet-and-camden.2021-05-06").LondonAssemblyAdditional)
	assert.False(t, ParseCategory("sp.r.glasgow.2021-05-06").LondonAssemblyAdditional)
}

// TestBallotCategoryCached verifies the parse runs once and sticks.
func TestBallotCategoryCached(t *testing.T) {
	b := &Ballot{BallotPaperID: "mayor.hackney.2022-05-05"}
	first := b.Category()
	second := b.Category()
	assert.Equal(t, first, second)
	assert.True(t, first.IsMayoral())
}
