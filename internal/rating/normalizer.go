package rating

import (
	"context"
	"log/slog"
	"sort"
)

// Mode selects which agencies contribute to the normalized rating stream.
type Mode string

const (
	// ModeSPOnly keeps S&P ratings only.
	ModeSPOnly Mode = "sp"
	// ModeSPWithMoodysFallback keeps S&P ratings and fills (bond, date)
	// gaps with Moody's where no S&P rating exists on that date.
	ModeSPWithMoodysFallback Mode = "sp_moodys"
)

// Normalizer converts raw agency rows into the normalized rating stream.
type Normalizer struct {
	mode   Mode
	logger *slog.Logger
}

// NewNormalizer creates a Normalizer for the given agency mode.
func NewNormalizer(mode Mode, logger *slog.Logger) *Normalizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Normalizer{mode: mode, logger: logger}
}

// Normalize maps raw codes to ordinal scores, deduplicates per
// (issue, rating date), coalesces the two agencies with S&P taking
// precedence, removes excluded non-rating codes, and returns the stream
// sorted by (bond, rating date). Unmappable codes survive with a null
// category so they can be dropped explicitly at the as-of merge.
func (n *Normalizer) Normalize(ctx context.Context, rows []RawRow) []Record {
	sp := n.scoreAgency(rows, AgencySP, spScores)
	records := sp
	if n.mode == ModeSPWithMoodysFallback {
		moodys := n.scoreAgency(rows, AgencyMoodys, moodysScores)
		records = coalesce(sp, moodys)
	}

	kept := records[:0]
	excluded := 0
	for _, r := range records {
		if _, skip := excludedCodes[r.Code]; skip {
			excluded++
			continue
		}
		kept = append(kept, r)
	}

	sortRecords(kept)

	n.logger.InfoContext(ctx, "normalized ratings",
		"mode", string(n.mode),
		"raw_rows", len(rows),
		"records", len(kept),
		"excluded_codes", excluded,
	)
	return kept
}

// scoreAgency filters to one agency, scores its codes, and deduplicates by
// (issue, rating date) keeping the first-seen row. Duplicate same-day
// ratings are not meaningfully orderable, so only one may survive.
func (n *Normalizer) scoreAgency(rows []RawRow, agency Agency, scores map[string]int) []Record {
	seen := make(map[issueDateKey]struct{})
	var out []Record
	for _, row := range rows {
		if row.Agency != agency {
			continue
		}
		key := issueDateKey{row.IssueID, row.Date.Unix()}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		rec := Record{
			IssueID: row.IssueID,
			CUSIP:   row.CUSIP,
			Date:    row.Date,
			Code:    row.Code,
		}
		if score, ok := scores[row.Code]; ok {
			rec.Score = score
			rec.Scored = true
			rec.Category = CategoryOf(score)
		}
		out = append(out, rec)
	}
	return out
}

type issueDateKey struct {
	issueID string
	date    int64
}

// coalesce merges the two agency streams into one row per (issue, date),
// with the S&P row winning whenever both agencies rated on the same day.
func coalesce(sp, moodys []Record) []Record {
	merged := make([]Record, 0, len(sp)+len(moodys))
	merged = append(merged, sp...)
	merged = append(merged, moodys...)
	// Stable sort keeps S&P ahead of Moody's on equal (bond, date) keys.
	sortRecords(merged)

	seen := make(map[issueDateKey]struct{}, len(merged))
	out := merged[:0]
	for _, r := range merged {
		key := issueDateKey{r.IssueID, r.Date.Unix()}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, r)
	}
	return out
}

func sortRecords(records []Record) {
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].CUSIP != records[j].CUSIP {
			return records[i].CUSIP < records[j].CUSIP
		}
		return records[i].Date.Before(records[j].Date)
	})
}
