package report

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestWriteXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "table.xlsx")
	require.NoError(t, WriteXLSX(path, sampleTable()))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	a1, err := f.GetCellValue(sheetName, "A1")
	require.NoError(t, err)
	assert.Equal(t, "subsample", a1)

	b2, err := f.GetCellValue(sheetName, "B2")
	require.NoError(t, err)
	assert.Equal(t, "Bid-ask bias bps", b2)

	// NaN cells are written as text, not as a number.
	f2, err := f.GetCellValue(sheetName, "F2")
	require.NoError(t, err)
	assert.Equal(t, "NaN", f2)

	// The number format keeps three decimals in the displayed value.
	c2, err := f.GetCellValue(sheetName, "C2")
	require.NoError(t, err)
	assert.Equal(t, "0.323", c2)
}

func TestWriteTextTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "table.txt")
	table := sampleTable()
	require.NoError(t, WriteTextTable(path, table))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, RenderText(table), string(data))
}
