package rating

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestCategoryOf(t *testing.T) {
	tests := []struct {
		score int
		want  Category
	}{
		{0, CategoryAAndAbove},
		{1, CategoryAAndAbove},
		{6, CategoryAAndAbove},
		{7, CategoryBBB},
		{9, CategoryBBB},
		{10, CategoryJunk},
		{18, CategoryJunk},
		{22, CategoryJunk},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CategoryOf(tt.score), "score %d", tt.score)
	}
}

func TestNormalizeScoring(t *testing.T) {
	n := NewNormalizer(ModeSPOnly, nil)
	records := n.Normalize(context.Background(), []RawRow{
		{IssueID: "1", CUSIP: "AAA111", Agency: AgencySP, Date: day(2010, time.March, 1), Code: "AAA"},
		{IssueID: "2", CUSIP: "BBB222", Agency: AgencySP, Date: day(2010, time.March, 1), Code: "BBB"},
		{IssueID: "3", CUSIP: "CCC333", Agency: AgencySP, Date: day(2010, time.March, 1), Code: "CCC"},
		{IssueID: "4", CUSIP: "MDY444", Agency: AgencyMoodys, Date: day(2010, time.March, 1), Code: "Baa2"},
	})

	require.Len(t, records, 3, "Moody's rows are filtered out in S&P-only mode")
	assert.Equal(t, 1, records[0].Score)
	assert.Equal(t, CategoryAAndAbove, records[0].Category)
	assert.Equal(t, 9, records[1].Score)
	assert.Equal(t, CategoryBBB, records[1].Category)
	assert.Equal(t, 18, records[2].Score)
	assert.Equal(t, CategoryJunk, records[2].Category)
}

func TestNormalizeUnmappedCodePropagatesNull(t *testing.T) {
	n := NewNormalizer(ModeSPOnly, nil)
	records := n.Normalize(context.Background(), []RawRow{
		{IssueID: "1", CUSIP: "AAA111", Agency: AgencySP, Date: day(2010, time.March, 1), Code: "ZZZ"},
	})

	require.Len(t, records, 1)
	assert.False(t, records[0].Scored)
	assert.Equal(t, CategoryNone, records[0].Category, "unmapped codes must not be coerced into a bucket")
}

func TestNormalizeExcludedCodes(t *testing.T) {
	var rows []RawRow
	for _, code := range []string{"NR", "NR/NR", "SUSP", "P-1", "0", "NAV"} {
		rows = append(rows, RawRow{IssueID: code, CUSIP: "X", Agency: AgencySP, Date: day(2010, time.March, 1), Code: code})
	}
	rows = append(rows, RawRow{IssueID: "keep", CUSIP: "X", Agency: AgencySP, Date: day(2010, time.April, 1), Code: "A"})

	n := NewNormalizer(ModeSPOnly, nil)
	records := n.Normalize(context.Background(), rows)

	require.Len(t, records, 1)
	assert.Equal(t, "keep", records[0].IssueID)
}

func TestNormalizeDeduplicatesSameDay(t *testing.T) {
	n := NewNormalizer(ModeSPOnly, nil)
	records := n.Normalize(context.Background(), []RawRow{
		{IssueID: "1", CUSIP: "AAA111", Agency: AgencySP, Date: day(2010, time.March, 1), Code: "AA"},
		{IssueID: "1", CUSIP: "AAA111", Agency: AgencySP, Date: day(2010, time.March, 1), Code: "BB"},
	})

	require.Len(t, records, 1)
	assert.Equal(t, "AA", records[0].Code, "first-seen row survives the same-day dedupe")
}

func TestNormalizeCoalesce(t *testing.T) {
	n := NewNormalizer(ModeSPWithMoodysFallback, nil)
	records := n.Normalize(context.Background(), []RawRow{
		// Both agencies rate on the same day: S&P wins.
		{IssueID: "1", CUSIP: "AAA111", Agency: AgencySP, Date: day(2010, time.March, 1), Code: "A"},
		{IssueID: "1", CUSIP: "AAA111", Agency: AgencyMoodys, Date: day(2010, time.March, 1), Code: "Ba1"},
		// Moody's fills the gap where S&P never rated.
		{IssueID: "1", CUSIP: "AAA111", Agency: AgencyMoodys, Date: day(2010, time.June, 1), Code: "Baa2"},
	})

	require.Len(t, records, 2)
	assert.Equal(t, 6, records[0].Score, "S&P score used when both agencies rated")
	assert.Equal(t, 9, records[1].Score, "Moody's score fills the gap")
}

func TestNormalizeSortedOutput(t *testing.T) {
	n := NewNormalizer(ModeSPOnly, nil)
	records := n.Normalize(context.Background(), []RawRow{
		{IssueID: "2", CUSIP: "B", Agency: AgencySP, Date: day(2011, time.March, 1), Code: "A"},
		{IssueID: "1", CUSIP: "A", Agency: AgencySP, Date: day(2012, time.March, 1), Code: "A"},
		{IssueID: "1", CUSIP: "A", Agency: AgencySP, Date: day(2010, time.March, 1), Code: "A"},
	})

	require.Len(t, records, 3)
	assert.Equal(t, "A", records[0].CUSIP)
	assert.True(t, records[0].Date.Before(records[1].Date))
	assert.Equal(t, "B", records[2].CUSIP)
}

func TestEncodeLoadRoundTrip(t *testing.T) {
	rows := Encode([]Record{
		{IssueID: "1", CUSIP: "AAA111", Date: day(2010, time.March, 1), Code: "A", Score: 6, Scored: true, Category: CategoryAAndAbove},
		{IssueID: "2", CUSIP: "BBB222", Date: day(2010, time.March, 2), Code: "ZZZ"},
	})

	require.Len(t, rows, 2)
	assert.Equal(t, "6", rows[0][4])
	assert.Equal(t, "", rows[1][4], "unscored records keep an empty score cell")
	assert.Equal(t, "", rows[1][5])
}
