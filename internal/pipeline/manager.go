package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName identifies the pipeline tracer.
const TracerName = "bondlab.pipeline"

// Manager runs stages sequentially in the order they were registered,
// which is the dependency order of the artifact graph.
type Manager struct {
	stages []Stage
	logger *slog.Logger
	tracer trace.Tracer
}

// NewManager creates a Manager over the given stages.
func NewManager(logger *slog.Logger, stages ...Stage) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		stages: stages,
		logger: logger,
		tracer: otel.Tracer(TracerName),
	}
}

// Run executes every stage under one run ID. The first stage failure
// aborts the run; the atomic writers guarantee no partial artifact was
// left behind by the failed stage.
func (m *Manager) Run(ctx context.Context, state *State) error {
	runID := uuid.NewString()
	start := time.Now()

	ctx, span := m.tracer.Start(ctx, "pipeline.run",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("run.id", runID),
			attribute.Int("run.stages", len(m.stages)),
		),
	)
	defer span.End()

	m.logger.InfoContext(ctx, "starting pipeline run",
		"run_id", runID,
		"stages", len(m.stages),
	)

	for _, stage := range m.stages {
		if err := ctx.Err(); err != nil {
			span.SetStatus(codes.Error, "run cancelled")
			return fmt.Errorf("pipeline cancelled before stage %s: %w", stage.ID(), err)
		}
		if err := m.runStage(ctx, stage, state, runID); err != nil {
			span.SetStatus(codes.Error, err.Error())
			return err
		}
	}

	span.SetStatus(codes.Ok, "")
	m.logger.InfoContext(ctx, "pipeline run completed",
		"run_id", runID,
		"duration", time.Since(start),
	)
	return nil
}

func (m *Manager) runStage(ctx context.Context, stage Stage, state *State, runID string) error {
	ctx, span := m.tracer.Start(ctx, "pipeline.stage."+stage.ID(),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("run.id", runID),
			attribute.String("stage.id", stage.ID()),
			attribute.String("stage.name", stage.Name()),
		),
	)
	defer span.End()

	start := time.Now()
	m.logger.InfoContext(ctx, "stage starting",
		"run_id", runID,
		"stage", stage.ID(),
	)

	if err := stage.Validate(state); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("stage %s validation: %w", stage.ID(), err)
	}
	if err := stage.Execute(ctx, state); err != nil {
		span.SetStatus(codes.Error, err.Error())
		m.logger.ErrorContext(ctx, "stage failed",
			"run_id", runID,
			"stage", stage.ID(),
			"error", err,
		)
		return fmt.Errorf("stage %s: %w", stage.ID(), err)
	}

	span.SetStatus(codes.Ok, "")
	m.logger.InfoContext(ctx, "stage completed",
		"run_id", runID,
		"stage", stage.ID(),
		"duration", time.Since(start),
	)
	return nil
}
