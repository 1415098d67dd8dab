package aggregate

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"bondlab/internal/asof"
	"bondlab/internal/metrics"
	"bondlab/internal/rating"
)

// Row is one bond-day of the final merged table: both metric families
// plus the rating category in force on the trade date.
type Row struct {
	CUSIP           string
	Date            time.Time
	Category        rating.Category
	SpreadBps       float64
	BiasBps         float64
	ReturnBps       float64
	CreditSpreadBps float64
}

type bondDate struct {
	cusip string
	date  int64
}

// Join inner-joins the two metric families on (bond, date). Only
// bond-days present in both feeds survive; this is a deliberate
// restriction of the reporting table, not an accident of the data.
func Join(ctx context.Context, quotes []metrics.SpreadBias, prices []metrics.ReturnCS, logger *slog.Logger) []Row {
	if logger == nil {
		logger = slog.Default()
	}

	byKey := make(map[bondDate]metrics.ReturnCS, len(prices))
	for _, p := range prices {
		byKey[bondDate{p.CUSIP, p.Date.Unix()}] = p
	}

	rows := make([]Row, 0, len(quotes))
	for _, q := range quotes {
		p, ok := byKey[bondDate{q.CUSIP, q.Date.Unix()}]
		if !ok {
			continue
		}
		rows = append(rows, Row{
			CUSIP:           q.CUSIP,
			Date:            q.Date,
			SpreadBps:       q.SpreadBps,
			BiasBps:         q.WinsorizedBias,
			ReturnBps:       p.DailyReturnBps,
			CreditSpreadBps: p.CreditSpreadBps,
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].CUSIP != rows[j].CUSIP {
			return rows[i].CUSIP < rows[j].CUSIP
		}
		return rows[i].Date.Before(rows[j].Date)
	})

	logger.InfoContext(ctx, "joined metric families",
		"quote_rows", len(quotes),
		"price_rows", len(prices),
		"joined_rows", len(rows),
	)
	return rows
}

// AttachCategories assigns each row the rating category in force on its
// date via the as-of join and drops rows no rating ever preceded.
func AttachCategories(ctx context.Context, rows []Row, ratings []rating.Record, logger *slog.Logger) []Row {
	if logger == nil {
		logger = slog.Default()
	}

	keys := make([]asof.Key, len(rows))
	for i, r := range rows {
		keys[i] = asof.Key{CUSIP: r.CUSIP, Date: r.Date}
	}
	assignments := asof.Assign(keys, ratings)

	kept := make([]Row, 0, len(rows))
	for i, r := range rows {
		if !assignments[i].OK {
			continue
		}
		r.Category = assignments[i].Category
		kept = append(kept, r)
	}

	logger.InfoContext(ctx, "attached rating categories",
		"input_rows", len(rows),
		"rated_rows", len(kept),
		"unrated_dropped", len(rows)-len(kept),
	)
	return kept
}
