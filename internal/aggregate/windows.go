// Package aggregate joins the two metric families into the final
// per-bond-day table and reduces it to subsample means by rating category.
package aggregate

import "time"

// Window is an inclusive date range the sample is partitioned into for
// reporting.
type Window struct {
	Name  string
	Start time.Time
	End   time.Time
	// UpToLatest replaces End with the latest date observed in the data.
	UpToLatest bool
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DefaultWindows are the historical subsamples of the reference study.
// They are defaults, not constants: configuration may override them, but
// the acceptance checks are calibrated against these.
func DefaultWindows() []Window {
	return []Window{
		{Name: "Full sample", Start: day(2002, time.July, 1), End: day(2022, time.September, 30)},
		{Name: "Pre-crisis", Start: day(2002, time.July, 1), End: day(2007, time.June, 30)},
		{Name: "Crisis", Start: day(2007, time.July, 1), End: day(2009, time.April, 30)},
		{Name: "Post-Crisis", Start: day(2009, time.May, 1), End: day(2012, time.May, 31)},
		{Name: "Basel II.5 and III", Start: day(2012, time.June, 1), End: day(2014, time.March, 31)},
		{Name: "Post-Volcker", Start: day(2014, time.April, 1), End: day(2022, time.September, 30)},
		{Name: "Up to latest", Start: day(2002, time.July, 1), UpToLatest: true},
	}
}

// contains reports whether a date falls inside the window, both bounds
// inclusive. latest is substituted for the end bound of UpToLatest
// windows.
func (w Window) contains(date, latest time.Time) bool {
	end := w.End
	if w.UpToLatest {
		end = latest
	}
	return !date.Before(w.Start) && !date.After(end)
}
