package report

import (
	"bondlab/internal/aggregate"
	"bondlab/internal/exporter"
)

// WriteTextTable renders the table as aligned text and writes it
// atomically.
func WriteTextTable(path string, table *aggregate.Table) error {
	return exporter.WriteTextFile(path, RenderText(table))
}
