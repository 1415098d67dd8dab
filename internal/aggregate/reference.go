package aggregate

import (
	"math"
)

// referenceWindows are the windows the published table reports; the open
// "Up to latest" window has no reference values.
var referenceWindows = []string{
	"Full sample",
	"Pre-crisis",
	"Crisis",
	"Post-Crisis",
	"Basel II.5 and III",
	"Post-Volcker",
}

// referenceValues holds the hand-verified published table, keyed by
// column, in window-major, MetricOrder-minor order.
var referenceValues = map[string][]float64{
	"All": {
		0.148, 1.703, 35.13, 323.6,
		0.278, 1.374, 51.80, 314.7,
		0.323, -2.499, 59.04, 602.9,
		0.168, 6.899, 42.47, 440.6,
		0.081, 1.914, 29.52, 305.5,
		0.049, 0.768, 19.87, 238.0,
	},
	"A and above": {
		0.114, 1.022, 29.90, 137.5,
		0.202, -0.450, 42.00, 106.9,
		0.285, 1.538, 57.60, 318.0,
		0.149, 4.572, 40.98, 211.9,
		0.061, 1.356, 24.87, 141.3,
		0.029, 0.291, 14.86, 91.51,
	},
	"BBB": {
		0.138, 0.898, 34.23, 234.3,
		0.270, -1.424, 50.78, 218.2,
		0.287, -1.460, 53.03, 475.2,
		0.138, 6.194, 38.80, 297.6,
		0.075, 2.083, 29.96, 229.9,
		0.046, 0.420, 20.67, 173.7,
	},
	"Junk": {
		0.204, 1.665, 42.77, 691.3,
		0.373, 2.980, 63.32, 653.2,
		0.429, -11.23, 66.28, 1309.6,
		0.217, 10.50, 48.28, 835.1,
		0.113, 1.851, 36.26, 625.2,
		0.079, 0.375, 26.20, 555.3,
	},
}

// Tolerances are the acceptance thresholds, per metric, for the mean
// absolute deviation of a derived table from the published values. The
// pipeline reproduces the paper approximately, not bit-exactly.
var Tolerances = map[Metric]float64{
	MetricBias:         10,
	MetricReturn:       5,
	MetricSpread:       10,
	MetricCreditSpread: 500,
}

// SignAgreementFloors are the minimum fractions of (window, category)
// cells whose sign must match the published table.
var SignAgreementFloors = map[Metric]float64{
	MetricBias:         0.95,
	MetricReturn:       0.70,
	MetricSpread:       0.95,
	MetricCreditSpread: 0.95,
}

// ReferenceTable rebuilds the published table in the report layout.
func ReferenceTable() *Table {
	table := &Table{}
	for wi, window := range referenceWindows {
		for mi, metric := range MetricOrder {
			row := TableRow{Window: window, Metric: metric}
			for ci, column := range ColumnOrder {
				row.Values[ci] = referenceValues[column][wi*len(MetricOrder)+mi]
			}
			table.Rows = append(table.Rows, row)
		}
	}
	return table
}

// MeanAbsDeviation computes the mean absolute deviation between two
// tables for one metric, over the cells both tables define with finite
// values.
func MeanAbsDeviation(got, want *Table, metric Metric) float64 {
	sum := 0.0
	n := 0
	for _, wr := range want.Rows {
		if wr.Metric != metric {
			continue
		}
		for ci, column := range ColumnOrder {
			g, ok := got.Cell(wr.Window, metric, column)
			if !ok || math.IsNaN(g) {
				continue
			}
			sum += math.Abs(g - wr.Values[ci])
			n++
		}
	}
	if n == 0 {
		return math.NaN()
	}
	return sum / float64(n)
}

// SignAgreement computes the fraction of cells whose sign matches the
// reference for one metric.
func SignAgreement(got, want *Table, metric Metric) float64 {
	agree := 0
	n := 0
	for _, wr := range want.Rows {
		if wr.Metric != metric {
			continue
		}
		for ci, column := range ColumnOrder {
			g, ok := got.Cell(wr.Window, metric, column)
			if !ok || math.IsNaN(g) {
				continue
			}
			n++
			if g*wr.Values[ci] > 0 {
				agree++
			}
		}
	}
	if n == 0 {
		return math.NaN()
	}
	return float64(agree) / float64(n)
}
