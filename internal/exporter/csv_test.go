package exporter

import (
	"compress/gzip"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteCSVRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out", "artifact.csv")

	writer := NewCSVWriter(nil)
	err := writer.WriteCSV(path, []string{"cusip_id", "date"}, [][]string{
		{"X1", "2010-03-01"},
		{"X2", "2010-03-02"},
	})
	require.NoError(t, err)

	frame, err := ReadCSV(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"cusip_id", "date"}, frame.Headers)
	require.Len(t, frame.Rows, 2)
	assert.Equal(t, []string{"X2", "2010-03-02"}, frame.Rows[1])
}

func TestWriteCSVLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "artifact.csv")

	writer := NewCSVWriter(nil)
	require.NoError(t, writer.WriteCSV(path, []string{"a"}, [][]string{{"1"}}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "artifact.csv", entries[0].Name())
}

func TestReadCSVGzip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "feed.csv.gzip")

	f, err := os.Create(path)
	require.NoError(t, err)
	gz := gzip.NewWriter(f)
	_, err = gz.Write([]byte("cusip_id,prclean\nX1,101.5\n"))
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	require.NoError(t, f.Close())

	frame, err := ReadCSV(path)
	require.NoError(t, err)
	col, err := frame.Column("prclean")
	require.NoError(t, err)
	assert.Equal(t, "101.5", frame.Rows[0][col])
}

func TestReadCSVErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := ReadCSV(filepath.Join(dir, "absent.csv"))
	assert.Error(t, err)

	empty := filepath.Join(dir, "empty.csv")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))
	_, err = ReadCSV(empty)
	assert.ErrorContains(t, err, "empty file")
}

func TestFrameColumn(t *testing.T) {
	frame := &Frame{Headers: []string{" CUSIP_ID ", "trd_exctn_dt"}}

	i, err := frame.Column("cusip_id")
	require.NoError(t, err)
	assert.Equal(t, 0, i)

	_, err = frame.Column("prc_bid")
	assert.ErrorContains(t, err, "missing column")
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  time.Time
		fails bool
	}{
		{name: "iso", input: "2010-03-01", want: time.Date(2010, time.March, 1, 0, 0, 0, 0, time.UTC)},
		{name: "iso datetime truncated", input: "2010-03-01 15:30:00", want: time.Date(2010, time.March, 1, 0, 0, 0, 0, time.UTC)},
		{name: "us", input: "03/01/2010", want: time.Date(2010, time.March, 1, 0, 0, 0, 0, time.UTC)},
		{name: "compact", input: "20100301", want: time.Date(2010, time.March, 1, 0, 0, 0, 0, time.UTC)},
		{name: "padded", input: " 2010-03-01 ", want: time.Date(2010, time.March, 1, 0, 0, 0, 0, time.UTC)},
		{name: "garbage", input: "not a date", fails: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDate(tt.input)
			if tt.fails {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got))
		})
	}
}

func TestParseFloat(t *testing.T) {
	f, ok, err := ParseFloat("101.5")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.InDelta(t, 101.5, f, 1e-12)

	_, ok, err = ParseFloat("  ")
	require.NoError(t, err)
	assert.False(t, ok, "blank cells are missing values, not errors")

	_, _, err = ParseFloat("n/a")
	assert.Error(t, err)
}
