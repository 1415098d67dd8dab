package report

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"bondlab/internal/aggregate"
)

const sheetName = "Subsample means"

// WriteXLSX writes the table as an xlsx workbook, atomically. Numeric
// cells keep full precision; the three-decimal display is applied as a
// number format so the workbook stays usable for further analysis.
func WriteXLSX(path string, table *aggregate.Table) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	for i, h := range TableHeaders {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return fmt.Errorf("header cell: %w", err)
		}
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}

	numFmt := "0.000"
	style, err := f.NewStyle(&excelize.Style{CustomNumFmt: &numFmt})
	if err != nil {
		return fmt.Errorf("number style: %w", err)
	}

	for ri, row := range table.Rows {
		excelRow := ri + 2
		if err := setString(f, 1, excelRow, row.Window); err != nil {
			return err
		}
		if err := setString(f, 2, excelRow, string(row.Metric)); err != nil {
			return err
		}
		for ci, v := range row.Values {
			cell, err := excelize.CoordinatesToCellName(ci+3, excelRow)
			if err != nil {
				return fmt.Errorf("value cell: %w", err)
			}
			if math.IsNaN(v) {
				if err := f.SetCellValue(sheetName, cell, "NaN"); err != nil {
					return fmt.Errorf("write cell %s: %w", cell, err)
				}
				continue
			}
			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				return fmt.Errorf("write cell %s: %w", cell, err)
			}
			if err := f.SetCellStyle(sheetName, cell, cell, style); err != nil {
				return fmt.Errorf("style cell %s: %w", cell, err)
			}
		}
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*.xlsx")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpName)

	if err := f.SaveAs(tmpName); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename into place: %w", err)
	}
	return nil
}

func setString(f *excelize.File, col, row int, value string) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return fmt.Errorf("cell name: %w", err)
	}
	if err := f.SetCellValue(sheetName, cell, value); err != nil {
		return fmt.Errorf("write cell %s: %w", cell, err)
	}
	return nil
}
