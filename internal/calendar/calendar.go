// Package calendar provides the US business-day calendar used by the
// liquidity filters. A business day is any weekday that is not a US
// federal holiday (observed dates: Saturday holidays shift to Friday,
// Sunday holidays shift to Monday).
package calendar

import (
	"fmt"
	"time"
)

// Calendar holds the set of holiday dates for a fixed [start, end] range.
// It is built once per run and treated as read-only afterwards.
type Calendar struct {
	start    time.Time
	end      time.Time
	holidays map[time.Time]struct{}
}

// NewUSFederal builds a calendar of observed US federal holidays covering
// [start, end]. Dates outside the range are still weekday-checked but carry
// no holiday information, so callers should size the range to their sample.
func NewUSFederal(start, end time.Time) (*Calendar, error) {
	start = Normalize(start)
	end = Normalize(end)
	if end.Before(start) {
		return nil, fmt.Errorf("calendar range end %s before start %s",
			end.Format("2006-01-02"), start.Format("2006-01-02"))
	}

	c := &Calendar{
		start:    start,
		end:      end,
		holidays: make(map[time.Time]struct{}),
	}
	for year := start.Year(); year <= end.Year(); year++ {
		for _, h := range federalHolidays(year) {
			if !h.Before(start) && !h.After(end) {
				c.holidays[h] = struct{}{}
			}
		}
	}
	return c, nil
}

// Normalize truncates a timestamp to midnight UTC so dates compare and hash
// consistently regardless of how they were parsed.
func Normalize(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// IsHoliday reports whether the date is an observed federal holiday.
func (c *Calendar) IsHoliday(t time.Time) bool {
	_, ok := c.holidays[Normalize(t)]
	return ok
}

// IsBusinessDay reports whether the date is a weekday and not a holiday.
func (c *Calendar) IsBusinessDay(t time.Time) bool {
	t = Normalize(t)
	wd := t.Weekday()
	if wd == time.Saturday || wd == time.Sunday {
		return false
	}
	return !c.IsHoliday(t)
}

// BusinessDaysBetween counts business days in the half-open interval
// [from, to). This matches the convention of counting the days elapsed
// since the previous trade: consecutive trading days yield 1, the same
// day yields 0.
func (c *Calendar) BusinessDaysBetween(from, to time.Time) int {
	from = Normalize(from)
	to = Normalize(to)
	if !from.Before(to) {
		return 0
	}
	n := 0
	for d := from; d.Before(to); d = d.AddDate(0, 0, 1) {
		if c.IsBusinessDay(d) {
			n++
		}
	}
	return n
}

// observed shifts a fixed-date holiday falling on a weekend to the nearest
// weekday.
func observed(t time.Time) time.Time {
	switch t.Weekday() {
	case time.Saturday:
		return t.AddDate(0, 0, -1)
	case time.Sunday:
		return t.AddDate(0, 0, 1)
	}
	return t
}

// nthWeekday returns the n-th (1-based) given weekday of a month.
func nthWeekday(year int, month time.Month, wd time.Weekday, n int) time.Time {
	t := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	offset := (int(wd) - int(t.Weekday()) + 7) % 7
	return t.AddDate(0, 0, offset+7*(n-1))
}

// lastWeekday returns the last given weekday of a month.
func lastWeekday(year int, month time.Month, wd time.Weekday) time.Time {
	t := time.Date(year, month+1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)
	offset := (int(t.Weekday()) - int(wd) + 7) % 7
	return t.AddDate(0, 0, -offset)
}

// federalHolidays lists the observed US federal holidays for one year.
func federalHolidays(year int) []time.Time {
	hs := []time.Time{
		observed(time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)),   // New Year's Day
		nthWeekday(year, time.January, time.Monday, 3),                     // Martin Luther King Jr. Day
		nthWeekday(year, time.February, time.Monday, 3),                    // Presidents Day
		lastWeekday(year, time.May, time.Monday),                           // Memorial Day
		observed(time.Date(year, time.July, 4, 0, 0, 0, 0, time.UTC)),      // Independence Day
		nthWeekday(year, time.September, time.Monday, 1),                   // Labor Day
		nthWeekday(year, time.October, time.Monday, 2),                     // Columbus Day
		observed(time.Date(year, time.November, 11, 0, 0, 0, 0, time.UTC)), // Veterans Day
		nthWeekday(year, time.November, time.Thursday, 4),                  // Thanksgiving
		observed(time.Date(year, time.December, 25, 0, 0, 0, 0, time.UTC)), // Christmas Day
	}
	if year >= 2021 {
		// Juneteenth became a federal holiday in 2021.
		hs = append(hs, observed(time.Date(year, time.June, 19, 0, 0, 0, 0, time.UTC)))
	}
	return hs
}
