// Package report renders the final subsample table for the written
// report: a fixed-point text table, a CSV artifact, and an xlsx workbook.
package report

import (
	"fmt"
	"math"
	"strings"

	"bondlab/internal/aggregate"
)

// formatCell renders one mean with the report's three-decimal convention.
func formatCell(v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	return fmt.Sprintf("%.3f", v)
}

// TableHeaders is the column layout of the rendered table artifact.
var TableHeaders = []string{"subsample", "variable", "All", "A and above", "BBB", "Junk"}

// EncodeCSV converts the table to CSV rows matching TableHeaders.
func EncodeCSV(table *aggregate.Table) [][]string {
	out := make([][]string, 0, len(table.Rows))
	for _, row := range table.Rows {
		record := []string{row.Window, string(row.Metric)}
		for _, v := range row.Values {
			record = append(record, formatCell(v))
		}
		out = append(out, record)
	}
	return out
}

// RenderText renders the table as aligned fixed-width text.
func RenderText(table *aggregate.Table) string {
	rows := EncodeCSV(table)

	widths := make([]int, len(TableHeaders))
	for i, h := range TableHeaders {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	var b strings.Builder
	writeRow := func(cells []string) {
		for i, cell := range cells {
			if i > 0 {
				b.WriteString("  ")
			}
			if i < 2 {
				fmt.Fprintf(&b, "%-*s", widths[i], cell)
			} else {
				fmt.Fprintf(&b, "%*s", widths[i], cell)
			}
		}
		b.WriteByte('\n')
	}

	writeRow(TableHeaders)
	prevWindow := ""
	for _, row := range rows {
		display := make([]string, len(row))
		copy(display, row)
		// Print each window name once per block, like a grouped index.
		if display[0] == prevWindow {
			display[0] = ""
		} else {
			prevWindow = display[0]
		}
		writeRow(display)
	}
	return b.String()
}
