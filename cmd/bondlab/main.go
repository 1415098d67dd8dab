// Command bondlab runs the corporate-bond microstructure pipeline:
// rating normalization, liquidity filtering, metric derivation, and
// subsample aggregation, as batch transforms over flat files.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"bondlab/internal/config"
	"bondlab/internal/infrastructure"
	"bondlab/internal/pipeline"
)

var (
	configFile string
	traceSpans bool
)

func main() {
	root := &cobra.Command{
		Use:           "bondlab",
		Short:         "Corporate-bond market microstructure research pipeline",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configFile, "config", "", "path to YAML config file")
	root.PersistentFlags().BoolVar(&traceSpans, "trace", false, "emit OpenTelemetry spans to stderr")

	root.AddCommand(
		stageCommand("ratings", "Normalize the provider rating file", pipeline.RatingsStage{}),
		stageCommand("spreadbias", "Derive bid-ask spread and bias from the quote feed", pipeline.SpreadBiasStage{}),
		stageCommand("returncs", "Derive daily returns and credit spreads from the price feed", pipeline.ReturnCSStage{}),
		stageCommand("derive", "Merge metric families and build the subsample table", pipeline.DeriveStage{}),
		stageCommand("run", "Run the full pipeline in dependency order",
			pipeline.RatingsStage{},
			pipeline.SpreadBiasStage{},
			pipeline.ReturnCSStage{},
			pipeline.DeriveStage{},
		),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func stageCommand(use, short string, stages ...pipeline.Stage) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStages(cmd.Context(), stages...)
		},
	}
}

func runStages(ctx context.Context, stages ...pipeline.Stage) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}

	var spanOutput io.Writer
	if traceSpans {
		spanOutput = os.Stderr
	}
	providers, err := infrastructure.InitializeOTel(ctx, spanOutput)
	if err != nil {
		return fmt.Errorf("initialize tracing: %w", err)
	}
	defer func() {
		if err := providers.Shutdown(context.Background()); err != nil {
			logger.Warn("tracing shutdown failed", "error", err)
		}
	}()

	state := pipeline.NewState(cfg, logger)
	manager := pipeline.NewManager(logger, stages...)
	return manager.Run(ctx, state)
}
