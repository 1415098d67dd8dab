package aggregate

import (
	"strconv"
	"time"
)

// DailyHeaders is the column layout of the full merged daily artifact,
// kept both for reporting and as a regression fixture.
var DailyHeaders = []string{"cusip_id", "date", "category", "spread", "winsorized_bias", "daily_return_bps", "cs_dur_bps"}

// EncodeDaily converts merged rows to CSV rows matching DailyHeaders.
func EncodeDaily(rows []Row) [][]string {
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, []string{
			r.CUSIP,
			r.Date.Format(time.DateOnly),
			string(r.Category),
			strconv.FormatFloat(r.SpreadBps, 'g', -1, 64),
			strconv.FormatFloat(r.BiasBps, 'g', -1, 64),
			strconv.FormatFloat(r.ReturnBps, 'g', -1, 64),
			strconv.FormatFloat(r.CreditSpreadBps, 'g', -1, 64),
		})
	}
	return out
}
