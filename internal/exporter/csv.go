// Package exporter reads and writes the flat-file artifacts that connect
// the pipeline stages: comma-separated columnar files, optionally
// gzip-compressed, plus the rendered report formats.
package exporter

import (
	"compress/gzip"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// CSVWriter writes CSV artifacts atomically: data goes to a temp file in
// the target directory which is renamed into place only after a clean
// flush, so a failed stage never leaves a partially-written output behind.
type CSVWriter struct {
	logger *slog.Logger
}

// NewCSVWriter creates a new CSV writer instance.
func NewCSVWriter(logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{logger: logger}
}

// WriteCSV writes headers and records to path atomically.
func (w *CSVWriter) WriteCSV(path string, headers []string, records [][]string) error {
	w.logger.Info("writing CSV file",
		slog.String("path", path),
		slog.Int("record_count", len(records)),
	)

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := writeAll(tmp, headers, records); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename into place: %w", err)
	}
	return nil
}

func writeAll(f *os.File, headers []string, records [][]string) error {
	writer := csv.NewWriter(f)
	if len(headers) > 0 {
		if err := writer.Write(headers); err != nil {
			return fmt.Errorf("write headers: %w", err)
		}
	}
	for i, record := range records {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write record %d: %w", i, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// Frame is an in-memory CSV file: a header row plus data rows, with
// column lookup by header name.
type Frame struct {
	Headers []string
	Rows    [][]string

	index map[string]int
}

// Column returns the position of a header, case-insensitively. The raw
// provider feeds are inconsistent about header casing.
func (f *Frame) Column(name string) (int, error) {
	if f.index == nil {
		f.index = make(map[string]int, len(f.Headers))
		for i, h := range f.Headers {
			f.index[strings.ToLower(strings.TrimSpace(h))] = i
		}
	}
	i, ok := f.index[strings.ToLower(name)]
	if !ok {
		return 0, fmt.Errorf("missing column %q", name)
	}
	return i, nil
}

// ReadCSV loads a CSV file into memory. Files ending in .gz or .gzip are
// transparently decompressed; the provider delivers both plain and
// compressed artifacts.
func ReadCSV(path string) (*Frame, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	var reader io.Reader = file
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".gz" || ext == ".gzip" {
		gz, err := gzip.NewReader(file)
		if err != nil {
			return nil, fmt.Errorf("gzip open %s: %w", path, err)
		}
		defer gz.Close()
		reader = gz
	}

	cr := csv.NewReader(reader)
	cr.FieldsPerRecord = -1
	all, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(all) == 0 {
		return nil, fmt.Errorf("read %s: empty file", path)
	}
	return &Frame{Headers: all[0], Rows: all[1:]}, nil
}
