package asof

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bondlab/internal/rating"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestAssignCarriesForward(t *testing.T) {
	ratings := []rating.Record{
		{CUSIP: "X", Date: day(2010, time.January, 10), Category: rating.CategoryAAndAbove, Score: 1, Scored: true},
		{CUSIP: "X", Date: day(2010, time.June, 1), Category: rating.CategoryJunk, Score: 12, Scored: true},
	}
	keys := []Key{
		{CUSIP: "X", Date: day(2010, time.February, 1)},
		{CUSIP: "X", Date: day(2010, time.July, 1)},
	}

	got := Assign(keys, ratings)
	require.Len(t, got, 2)
	assert.Equal(t, rating.CategoryAAndAbove, got[0].Category)
	assert.Equal(t, day(2010, time.January, 10), got[0].RatingDate)
	assert.Equal(t, rating.CategoryJunk, got[1].Category)
	assert.Equal(t, day(2010, time.June, 1), got[1].RatingDate)
}

func TestAssignSameDayRatingVisible(t *testing.T) {
	// A rating effective on the trade date is visible to that trade.
	ratings := []rating.Record{
		{CUSIP: "X", Date: day(2010, time.March, 1), Category: rating.CategoryBBB, Score: 9, Scored: true},
	}
	keys := []Key{{CUSIP: "X", Date: day(2010, time.March, 1)}}

	got := Assign(keys, ratings)
	require.Len(t, got, 1)
	assert.True(t, got[0].OK)
	assert.Equal(t, rating.CategoryBBB, got[0].Category)
}

func TestAssignNoLookAhead(t *testing.T) {
	ratings := []rating.Record{
		{CUSIP: "X", Date: day(2010, time.March, 2), Category: rating.CategoryBBB, Score: 9, Scored: true},
	}
	keys := []Key{{CUSIP: "X", Date: day(2010, time.March, 1)}}

	got := Assign(keys, ratings)
	require.Len(t, got, 1)
	assert.False(t, got[0].OK, "a trade must never see a later rating")
}

func TestAssignPerBondIsolation(t *testing.T) {
	ratings := []rating.Record{
		{CUSIP: "A", Date: day(2010, time.January, 1), Category: rating.CategoryAAndAbove, Score: 1, Scored: true},
	}
	keys := []Key{
		{CUSIP: "A", Date: day(2010, time.February, 1)},
		{CUSIP: "B", Date: day(2010, time.February, 1)},
	}

	got := Assign(keys, ratings)
	assert.True(t, got[0].OK)
	assert.False(t, got[1].OK, "carried state must reset between bonds")
}

func TestAssignNullCategoryDoesNotOverwrite(t *testing.T) {
	// Forward-fill semantics over a null column: an unscorable rating
	// neither assigns nor clears the carried category.
	ratings := []rating.Record{
		{CUSIP: "X", Date: day(2010, time.January, 1), Category: rating.CategoryBBB, Score: 9, Scored: true},
		{CUSIP: "X", Date: day(2010, time.February, 1), Category: rating.CategoryNone},
	}
	keys := []Key{{CUSIP: "X", Date: day(2010, time.March, 1)}}

	got := Assign(keys, ratings)
	require.Len(t, got, 1)
	assert.True(t, got[0].OK)
	assert.Equal(t, rating.CategoryBBB, got[0].Category)
	assert.Equal(t, day(2010, time.January, 1), got[0].RatingDate)
}

func TestAssignInvariantRatingDateNotAfterTrade(t *testing.T) {
	ratings := []rating.Record{
		{CUSIP: "X", Date: day(2010, time.January, 1), Category: rating.CategoryBBB, Score: 9, Scored: true},
		{CUSIP: "X", Date: day(2010, time.March, 15), Category: rating.CategoryJunk, Score: 12, Scored: true},
		{CUSIP: "Y", Date: day(2011, time.June, 5), Category: rating.CategoryAAndAbove, Score: 2, Scored: true},
	}
	keys := []Key{
		{CUSIP: "X", Date: day(2010, time.March, 14)},
		{CUSIP: "X", Date: day(2010, time.March, 15)},
		{CUSIP: "X", Date: day(2010, time.March, 16)},
		{CUSIP: "Y", Date: day(2011, time.June, 5)},
		{CUSIP: "Y", Date: day(2012, time.June, 5)},
	}

	got := Assign(keys, ratings)
	for i, a := range got {
		if !a.OK {
			continue
		}
		assert.False(t, a.RatingDate.After(keys[i].Date),
			"enriched record %d has a look-ahead rating", i)
	}
	assert.Equal(t, rating.CategoryBBB, got[0].Category)
	assert.Equal(t, rating.CategoryJunk, got[1].Category)
	assert.Equal(t, rating.CategoryJunk, got[2].Category)
}
