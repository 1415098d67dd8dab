package trades

import (
	"fmt"
	"log/slog"

	"bondlab/internal/exporter"
)

// LoadQuotes reads the bid/ask feed (cusip_id, trd_exctn_dt, prc_bid,
// prc_ask). Rows missing either side of the quote are skipped.
func LoadQuotes(path string, logger *slog.Logger) ([]Record, error) {
	if logger == nil {
		logger = slog.Default()
	}
	frame, err := exporter.ReadCSV(path)
	if err != nil {
		return nil, err
	}
	cusipCol, err := frame.Column("cusip_id")
	if err != nil {
		return nil, err
	}
	dateCol, err := frame.Column("trd_exctn_dt")
	if err != nil {
		return nil, err
	}
	bidCol, err := frame.Column("prc_bid")
	if err != nil {
		return nil, err
	}
	askCol, err := frame.Column("prc_ask")
	if err != nil {
		return nil, err
	}

	records := make([]Record, 0, len(frame.Rows))
	skipped := 0
	for i, row := range frame.Rows {
		date, err := exporter.ParseDate(row[dateCol])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		bid, bidOK, err := exporter.ParseFloat(row[bidCol])
		if err != nil {
			return nil, fmt.Errorf("row %d: bid: %w", i+1, err)
		}
		ask, askOK, err := exporter.ParseFloat(row[askCol])
		if err != nil {
			return nil, fmt.Errorf("row %d: ask: %w", i+1, err)
		}
		if !bidOK || !askOK {
			skipped++
			continue
		}
		records = append(records, Record{
			CUSIP: row[cusipCol],
			Date:  date,
			Bid:   bid,
			Ask:   ask,
		})
	}
	logger.Info("loaded bid/ask feed", "path", path, "rows", len(records), "skipped", skipped)
	SortRecords(records)
	return records, nil
}

// LoadPrices reads the daily price / credit-spread feed (cusip_id,
// trd_exctn_dt, prclean, cs_dur). Rows without a clean price are skipped;
// a missing credit spread is carried as zero and only affects the
// credit-spread column downstream.
func LoadPrices(path string, logger *slog.Logger) ([]Record, error) {
	if logger == nil {
		logger = slog.Default()
	}
	frame, err := exporter.ReadCSV(path)
	if err != nil {
		return nil, err
	}
	cusipCol, err := frame.Column("cusip_id")
	if err != nil {
		return nil, err
	}
	dateCol, err := frame.Column("trd_exctn_dt")
	if err != nil {
		return nil, err
	}
	cleanCol, err := frame.Column("prclean")
	if err != nil {
		return nil, err
	}
	csCol, err := frame.Column("cs_dur")
	if err != nil {
		return nil, err
	}

	records := make([]Record, 0, len(frame.Rows))
	skipped := 0
	for i, row := range frame.Rows {
		date, err := exporter.ParseDate(row[dateCol])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		clean, cleanOK, err := exporter.ParseFloat(row[cleanCol])
		if err != nil {
			return nil, fmt.Errorf("row %d: prclean: %w", i+1, err)
		}
		cs, _, err := exporter.ParseFloat(row[csCol])
		if err != nil {
			return nil, fmt.Errorf("row %d: cs_dur: %w", i+1, err)
		}
		if !cleanOK {
			skipped++
			continue
		}
		records = append(records, Record{
			CUSIP: row[cusipCol],
			Date:  date,
			Clean: clean,
			CSDur: cs,
		})
	}
	logger.Info("loaded price feed", "path", path, "rows", len(records), "skipped", skipped)
	SortRecords(records)
	return records, nil
}
