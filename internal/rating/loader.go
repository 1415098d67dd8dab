package rating

import (
	"fmt"
	"strconv"
	"time"

	"bondlab/internal/exporter"
)

// Headers is the column layout of the normalized rating artifact.
var Headers = []string{"issue_id", "complete_cusip", "rating_date", "rating", "score", "category"}

// LoadRaw reads the provider rating file
// (issue_id, complete_cusip, rating_type, rating_date, rating).
func LoadRaw(path string) ([]RawRow, error) {
	frame, err := exporter.ReadCSV(path)
	if err != nil {
		return nil, err
	}
	issueCol, err := frame.Column("issue_id")
	if err != nil {
		return nil, err
	}
	cusipCol, err := frame.Column("complete_cusip")
	if err != nil {
		return nil, err
	}
	typeCol, err := frame.Column("rating_type")
	if err != nil {
		return nil, err
	}
	dateCol, err := frame.Column("rating_date")
	if err != nil {
		return nil, err
	}
	codeCol, err := frame.Column("rating")
	if err != nil {
		return nil, err
	}

	rows := make([]RawRow, 0, len(frame.Rows))
	for i, row := range frame.Rows {
		date, err := exporter.ParseDate(row[dateCol])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		rows = append(rows, RawRow{
			IssueID: row[issueCol],
			CUSIP:   row[cusipCol],
			Agency:  Agency(row[typeCol]),
			Date:    date,
			Code:    row[codeCol],
		})
	}
	return rows, nil
}

// LoadNormalized reads back a normalized rating artifact written by Encode.
func LoadNormalized(path string) ([]Record, error) {
	frame, err := exporter.ReadCSV(path)
	if err != nil {
		return nil, err
	}
	issueCol, err := frame.Column("issue_id")
	if err != nil {
		return nil, err
	}
	cusipCol, err := frame.Column("complete_cusip")
	if err != nil {
		return nil, err
	}
	dateCol, err := frame.Column("rating_date")
	if err != nil {
		return nil, err
	}
	codeCol, err := frame.Column("rating")
	if err != nil {
		return nil, err
	}
	scoreCol, err := frame.Column("score")
	if err != nil {
		return nil, err
	}
	catCol, err := frame.Column("category")
	if err != nil {
		return nil, err
	}

	records := make([]Record, 0, len(frame.Rows))
	for i, row := range frame.Rows {
		date, err := exporter.ParseDate(row[dateCol])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		rec := Record{
			IssueID:  row[issueCol],
			CUSIP:    row[cusipCol],
			Date:     date,
			Code:     row[codeCol],
			Category: Category(row[catCol]),
		}
		if row[scoreCol] != "" {
			score, err := strconv.Atoi(row[scoreCol])
			if err != nil {
				return nil, fmt.Errorf("row %d: score: %w", i+1, err)
			}
			rec.Score = score
			rec.Scored = true
		}
		records = append(records, rec)
	}
	return records, nil
}

// Encode converts normalized records to CSV rows matching Headers.
func Encode(records []Record) [][]string {
	out := make([][]string, 0, len(records))
	for _, r := range records {
		score := ""
		if r.Scored {
			score = strconv.Itoa(r.Score)
		}
		out = append(out, []string{
			r.IssueID,
			r.CUSIP,
			r.Date.Format(time.DateOnly),
			r.Code,
			score,
			string(r.Category),
		})
	}
	return out
}
