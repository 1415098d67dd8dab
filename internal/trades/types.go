// Package trades holds per-trade bond observations and the liquidity
// screens that remove thinly-traded bond-days before metric derivation.
package trades

import (
	"sort"
	"time"
)

// Record is one bond-day observation from a raw feed. The bid/ask feed
// populates Bid and Ask; the daily price feed populates Clean (clean
// price) and CSDur (duration-adjusted credit spread). The two feeds are
// processed independently and never populate each other's fields.
type Record struct {
	CUSIP string
	Date  time.Time

	Bid float64
	Ask float64

	Clean float64
	CSDur float64
}

// Annotated is a Record with the liquidity fields computed against the
// bond's full pre-filter trade history.
type Annotated struct {
	Record

	// GapBusinessDays counts business days between this trade and the
	// bond's previous trade; 0 for the bond's first observation.
	GapBusinessDays int
	// MonthTrades counts the bond's trades in this calendar month.
	MonthTrades int
	// First marks the bond's first observation in the stream.
	First bool
}

// SortRecords orders observations by (bond, date), the order every
// per-bond computation in the pipeline assumes.
func SortRecords(records []Record) {
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].CUSIP != records[j].CUSIP {
			return records[i].CUSIP < records[j].CUSIP
		}
		return records[i].Date.Before(records[j].Date)
	})
}
