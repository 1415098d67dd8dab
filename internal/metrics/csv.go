package metrics

import (
	"fmt"
	"strconv"
	"time"

	"bondlab/internal/exporter"
)

// SpreadBiasHeaders is the column layout of the spread_bias artifact.
var SpreadBiasHeaders = []string{"cusip_id", "date", "spread", "winsorized_bias"}

// ReturnCSHeaders is the column layout of the daily_return_cs artifact.
var ReturnCSHeaders = []string{"cusip_id", "date", "daily_return_bps", "cs_dur_bps"}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// EncodeSpreadBias converts derived quote metrics to CSV rows.
func EncodeSpreadBias(rows []SpreadBias) [][]string {
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, []string{
			r.CUSIP,
			r.Date.Format(time.DateOnly),
			formatFloat(r.SpreadBps),
			formatFloat(r.WinsorizedBias),
		})
	}
	return out
}

// EncodeReturnCS converts derived price metrics to CSV rows.
func EncodeReturnCS(rows []ReturnCS) [][]string {
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, []string{
			r.CUSIP,
			r.Date.Format(time.DateOnly),
			formatFloat(r.DailyReturnBps),
			formatFloat(r.CreditSpreadBps),
		})
	}
	return out
}

// LoadSpreadBias reads back a spread_bias artifact.
func LoadSpreadBias(path string) ([]SpreadBias, error) {
	frame, err := exporter.ReadCSV(path)
	if err != nil {
		return nil, err
	}
	cusipCol, err := frame.Column("cusip_id")
	if err != nil {
		return nil, err
	}
	dateCol, err := frame.Column("date")
	if err != nil {
		return nil, err
	}
	spreadCol, err := frame.Column("spread")
	if err != nil {
		return nil, err
	}
	biasCol, err := frame.Column("winsorized_bias")
	if err != nil {
		return nil, err
	}

	rows := make([]SpreadBias, 0, len(frame.Rows))
	for i, row := range frame.Rows {
		date, err := exporter.ParseDate(row[dateCol])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		spread, _, err := exporter.ParseFloat(row[spreadCol])
		if err != nil {
			return nil, fmt.Errorf("row %d: spread: %w", i+1, err)
		}
		bias, _, err := exporter.ParseFloat(row[biasCol])
		if err != nil {
			return nil, fmt.Errorf("row %d: winsorized_bias: %w", i+1, err)
		}
		rows = append(rows, SpreadBias{
			CUSIP:          row[cusipCol],
			Date:           date,
			SpreadBps:      spread,
			WinsorizedBias: bias,
		})
	}
	return rows, nil
}

// LoadReturnCS reads back a daily_return_cs artifact.
func LoadReturnCS(path string) ([]ReturnCS, error) {
	frame, err := exporter.ReadCSV(path)
	if err != nil {
		return nil, err
	}
	cusipCol, err := frame.Column("cusip_id")
	if err != nil {
		return nil, err
	}
	dateCol, err := frame.Column("date")
	if err != nil {
		return nil, err
	}
	retCol, err := frame.Column("daily_return_bps")
	if err != nil {
		return nil, err
	}
	csCol, err := frame.Column("cs_dur_bps")
	if err != nil {
		return nil, err
	}

	rows := make([]ReturnCS, 0, len(frame.Rows))
	for i, row := range frame.Rows {
		date, err := exporter.ParseDate(row[dateCol])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		ret, _, err := exporter.ParseFloat(row[retCol])
		if err != nil {
			return nil, fmt.Errorf("row %d: daily_return_bps: %w", i+1, err)
		}
		cs, _, err := exporter.ParseFloat(row[csCol])
		if err != nil {
			return nil, fmt.Errorf("row %d: cs_dur_bps: %w", i+1, err)
		}
		rows = append(rows, ReturnCS{
			CUSIP:           row[cusipCol],
			Date:            date,
			DailyReturnBps:  ret,
			CreditSpreadBps: cs,
		})
	}
	return rows, nil
}
