// Package pipeline sequences the batch transforms of a run: rating
// normalization, the two metric pipelines, and the derive/aggregate step.
// Each stage is a pure file-to-file transform; the manager runs them in
// dependency order, traces them, and fails the run on the first error.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"bondlab/internal/aggregate"
	"bondlab/internal/calendar"
	"bondlab/internal/config"
	"bondlab/internal/exporter"
)

// Stage is a single batch transform from named input file(s) to named
// output file(s).
type Stage interface {
	// ID returns the unique identifier for this stage.
	ID() string

	// Name returns the human-readable name for this stage.
	Name() string

	// Validate checks the stage's inputs exist before it runs.
	Validate(state *State) error

	// Execute runs the stage.
	Execute(ctx context.Context, state *State) error
}

// State carries the run-wide dependencies every stage shares. Stages do
// not pass data to each other in memory; the flat-file artifacts are the
// interface between them.
type State struct {
	Config *config.Config
	Logger *slog.Logger
	Writer *exporter.CSVWriter
}

// NewState builds a run state from configuration.
func NewState(cfg *config.Config, logger *slog.Logger) *State {
	if logger == nil {
		logger = slog.Default()
	}
	return &State{
		Config: cfg,
		Logger: logger,
		Writer: exporter.NewCSVWriter(logger),
	}
}

// Artifact file names, shared by producers and consumers.
const (
	ArtifactRating       = "rating.csv"
	ArtifactSpreadBias   = "spread_bias.csv"
	ArtifactReturnCS     = "daily_return_cs.csv"
	ArtifactDaily        = "daily.csv"
	ArtifactTableCSV     = "derived_table.csv"
	ArtifactTableXLSX    = "derived_table.xlsx"
	ArtifactTableText    = "derived_table.txt"
)

// DataPath resolves an intermediate artifact inside the data directory.
func (s *State) DataPath(name string) string {
	return filepath.Join(s.Config.Paths.DataDir, name)
}

// OutputPath resolves a report artifact inside the output directory.
func (s *State) OutputPath(name string) string {
	return filepath.Join(s.Config.Paths.OutputDir, name)
}

// requireFile checks an input artifact exists before a stage runs.
func requireFile(path string) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("required input %s: %w", path, err)
	}
	return nil
}

// SampleCalendar builds the business-day calendar over the configured
// sample range.
func (s *State) SampleCalendar() (*calendar.Calendar, error) {
	start, err := s.Config.Sample.StartDate()
	if err != nil {
		return nil, err
	}
	end, err := s.Config.Sample.EndDate()
	if err != nil {
		return nil, err
	}
	return calendar.NewUSFederal(start, end)
}

// Windows resolves the subsample windows: the configured override when
// present, otherwise the defaults of the reference study.
func (s *State) Windows() ([]aggregate.Window, error) {
	if len(s.Config.Windows) == 0 {
		return aggregate.DefaultWindows(), nil
	}
	windows := make([]aggregate.Window, 0, len(s.Config.Windows))
	for _, wc := range s.Config.Windows {
		start, end, err := wc.Dates()
		if err != nil {
			return nil, fmt.Errorf("window %q: %w", wc.Name, err)
		}
		windows = append(windows, aggregate.Window{
			Name:       wc.Name,
			Start:      start,
			End:        end,
			UpToLatest: wc.UpToLatest,
		})
	}
	return windows, nil
}
