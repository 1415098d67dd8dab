// Package asof implements the last-observation-carried-forward join that
// assigns each trade the rating in force on its execution date.
//
// The join is deliberately spelled out as the tag/concat/sort/fill/drop
// sequence rather than delegated to a generic as-of primitive: the
// tie-break (a rating dated on the trade date is visible to that trade,
// not only strictly-prior ratings) is load-bearing for reproducing the
// reference numbers.
package asof

import (
	"sort"
	"time"

	"bondlab/internal/rating"
)

// Key identifies one trade row to be enriched.
type Key struct {
	CUSIP string
	Date  time.Time
}

// Assignment is the rating state carried forward onto one trade row.
type Assignment struct {
	Category   rating.Category
	RatingDate time.Time
	// OK is false when no rating ever preceded the trade; such rows are
	// dropped by callers, never imputed.
	OK bool
}

const (
	sourceRating = 0
	sourceTrade  = 1
)

type event struct {
	cusip  string
	date   time.Time
	source int
	idx    int
}

// Assign computes, for each trade key, the most recent rating dated at or
// before the trade date for the same bond. The result is positionally
// aligned with keys. Ratings with a null category are carried over, not
// filled: they never overwrite an earlier valid category, matching
// forward-fill semantics over a null column.
func Assign(keys []Key, ratings []rating.Record) []Assignment {
	events := make([]event, 0, len(keys)+len(ratings))
	for i, r := range ratings {
		events = append(events, event{cusip: r.CUSIP, date: r.Date, source: sourceRating, idx: i})
	}
	for i, k := range keys {
		events = append(events, event{cusip: k.CUSIP, date: k.Date, source: sourceTrade, idx: i})
	}

	// Sort by (bond, date, source); the rating-before-trade tie-break on
	// equal dates makes a same-day rating visible to the trade.
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].cusip != events[j].cusip {
			return events[i].cusip < events[j].cusip
		}
		if !events[i].date.Equal(events[j].date) {
			return events[i].date.Before(events[j].date)
		}
		return events[i].source < events[j].source
	})

	out := make([]Assignment, len(keys))
	var (
		current string
		carried Assignment
	)
	for _, ev := range events {
		if ev.cusip != current {
			current = ev.cusip
			carried = Assignment{}
		}
		switch ev.source {
		case sourceRating:
			r := ratings[ev.idx]
			if r.Category != rating.CategoryNone {
				carried = Assignment{Category: r.Category, RatingDate: r.Date, OK: true}
			}
		case sourceTrade:
			out[ev.idx] = carried
		}
	}
	return out
}
