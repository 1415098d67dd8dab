// Package rating normalizes raw agency credit ratings into ordinal scores
// and the three reporting categories used by the subsample aggregation.
package rating

import "time"

// Agency identifies the rating agency of a raw rating row, using the
// rating_type codes of the source feed.
type Agency string

const (
	// AgencySP is Standard & Poor's ("SPR" in the feed).
	AgencySP Agency = "SPR"
	// AgencyMoodys is Moody's ("MR" in the feed).
	AgencyMoodys Agency = "MR"
)

// Category is the credit-quality bucket a bond belongs to at a point in time.
type Category string

const (
	CategoryAAndAbove Category = "A and above"
	CategoryBBB       Category = "BBB"
	CategoryJunk      Category = "Junk"
	// CategoryNone marks a rating whose code could not be scored. Such rows
	// propagate unchanged until the as-of merge drops them; they must never
	// be coerced into a bucket.
	CategoryNone Category = ""
)

// CategoryOf buckets an ordinal score. Lower scores mean better credit
// quality: 0-6 is single-A or better, 7-9 is the BBB band, everything
// below investment grade is Junk.
func CategoryOf(score int) Category {
	switch {
	case score <= 6:
		return CategoryAAndAbove
	case score <= 9:
		return CategoryBBB
	default:
		return CategoryJunk
	}
}

// RawRow is one row of the provider rating file before normalization.
type RawRow struct {
	IssueID string
	CUSIP   string
	Agency  Agency
	Date    time.Time
	Code    string
}

// Record is a normalized point-in-time rating for one bond.
type Record struct {
	IssueID  string
	CUSIP    string
	Date     time.Time
	Code     string
	Score    int
	Scored   bool
	Category Category
}

// spScores maps S&P letter grades to ordinal scores, AAA=1 through D=22.
var spScores = map[string]int{
	"AAA":       1,
	"AA+":       2,
	"AA":        3,
	"AA/A-1+":   3,
	"AA-":       4,
	"AA-/A-1+":  4,
	"A+":        5,
	"A":         6,
	"A-":        7,
	"BBB+":      8,
	"BBB":       9,
	"BBB/A-2":   9,
	"BBB-":      10,
	"BB+":       11,
	"BB":        12,
	"BB-":       13,
	"B+":        14,
	"B":         15,
	"B-":        16,
	"CCC+":      17,
	"CCC":       18,
	"CCC-":      19,
	"CC":        20,
	"C":         21,
	"D":         22,
}

// moodysScores maps Moody's grades to ordinal scores, Aaa=1 through C=21.
var moodysScores = map[string]int{
	"Aaa":  1,
	"Aa1":  2,
	"Aa2":  3,
	"Aa3":  4,
	"A1":   5,
	"A2":   6,
	"A3":   7,
	"Baa1": 8,
	"Baa2": 9,
	"Baa3": 10,
	"Ba1":  11,
	"Ba2":  12,
	"Ba3":  13,
	"B1":   14,
	"B2":   15,
	"B3":   16,
	"Caa1": 17,
	"Caa2": 18,
	"Caa3": 19,
	"Ca":   20,
	"C":    21,
}

// excludedCodes are non-ratings (not-rated markers, suspensions, short-term
// scales) that must be removed from the sample entirely rather than scored.
var excludedCodes = map[string]struct{}{
	"NR":    {},
	"NR/NR": {},
	"SUSP":  {},
	"P-1":   {},
	"0":     {},
	"NAV":   {},
}
