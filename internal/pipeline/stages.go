package pipeline

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"bondlab/internal/aggregate"
	"bondlab/internal/asof"
	"bondlab/internal/metrics"
	"bondlab/internal/rating"
	"bondlab/internal/report"
	"bondlab/internal/trades"
)

func ratingMode(cfg string) rating.Mode {
	if cfg == "sp" {
		return rating.ModeSPOnly
	}
	return rating.ModeSPWithMoodysFallback
}

func (s *State) winsorizeBounds() metrics.WinsorizeBounds {
	return metrics.WinsorizeBounds{
		Lower: s.Config.Winsorize.Lower,
		Upper: s.Config.Winsorize.Upper,
	}
}

func (s *State) clampAtDerivation() bool {
	return aggregate.WinsorizeScope(s.Config.Winsorize.Scope) == aggregate.ScopeRun
}

// RatingsStage normalizes the provider rating file into the rating
// artifact consumed by the merge steps.
type RatingsStage struct{}

func (RatingsStage) ID() string   { return "ratings" }
func (RatingsStage) Name() string { return "Rating normalization" }

func (RatingsStage) Validate(state *State) error {
	return requireFile(state.DataPath(state.Config.Paths.RatingFile))
}

func (RatingsStage) Execute(ctx context.Context, state *State) error {
	rows, err := rating.LoadRaw(state.DataPath(state.Config.Paths.RatingFile))
	if err != nil {
		return fmt.Errorf("load ratings: %w", err)
	}

	normalizer := rating.NewNormalizer(ratingMode(state.Config.Rating.Mode), state.Logger)
	records := normalizer.Normalize(ctx, rows)

	path := state.DataPath(ArtifactRating)
	if err := state.Writer.WriteCSV(path, rating.Headers, rating.Encode(records)); err != nil {
		return fmt.Errorf("write %s: %w", ArtifactRating, err)
	}
	return nil
}

// SpreadBiasStage runs the quote pipeline: liquidity screens over the
// bid/ask feed, then spread and bias derivation.
type SpreadBiasStage struct{}

func (SpreadBiasStage) ID() string   { return "spreadbias" }
func (SpreadBiasStage) Name() string { return "Bid-ask spread and bias" }

func (SpreadBiasStage) Validate(state *State) error {
	if err := requireFile(state.DataPath(state.Config.Paths.QuoteFile)); err != nil {
		return err
	}
	if state.Config.Merge.Strategy == "union" {
		// Union mode merges ratings before the liquidity screens.
		return requireFile(state.DataPath(ArtifactRating))
	}
	return nil
}

func (SpreadBiasStage) Execute(ctx context.Context, state *State) error {
	records, err := trades.LoadQuotes(state.DataPath(state.Config.Paths.QuoteFile), state.Logger)
	if err != nil {
		return fmt.Errorf("load quotes: %w", err)
	}

	if state.Config.Merge.Strategy == "union" {
		records, err = dropUnrated(ctx, state, records)
		if err != nil {
			return err
		}
	}

	cal, err := state.SampleCalendar()
	if err != nil {
		return fmt.Errorf("build calendar: %w", err)
	}
	filter := trades.NewFilter(cal,
		state.Config.Liquidity.MinMonthlyTrades,
		state.Config.Liquidity.MaxGapQuoteDays,
		state.Logger,
	)
	filtered := filter.Run(ctx, records)

	deriver := metrics.NewSpreadBiasDeriver(state.winsorizeBounds(), state.clampAtDerivation(), state.Logger)
	derived, err := deriver.Derive(ctx, filtered)
	if err != nil {
		return fmt.Errorf("derive spread/bias: %w", err)
	}

	path := state.DataPath(ArtifactSpreadBias)
	if err := state.Writer.WriteCSV(path, metrics.SpreadBiasHeaders, metrics.EncodeSpreadBias(derived)); err != nil {
		return fmt.Errorf("write %s: %w", ArtifactSpreadBias, err)
	}
	return nil
}

// dropUnrated removes quote observations no rating ever preceded, before
// the liquidity screens see the history.
func dropUnrated(ctx context.Context, state *State, records []trades.Record) ([]trades.Record, error) {
	ratings, err := rating.LoadNormalized(state.DataPath(ArtifactRating))
	if err != nil {
		return nil, fmt.Errorf("load normalized ratings: %w", err)
	}
	keys := make([]asof.Key, len(records))
	for i, r := range records {
		keys[i] = asof.Key{CUSIP: r.CUSIP, Date: r.Date}
	}
	assignments := asof.Assign(keys, ratings)

	kept := make([]trades.Record, 0, len(records))
	for i, r := range records {
		if assignments[i].OK {
			kept = append(kept, r)
		}
	}
	state.Logger.InfoContext(ctx, "dropped unrated quotes before filtering",
		"input_rows", len(records),
		"rated_rows", len(kept),
	)
	return kept, nil
}

// ReturnCSStage runs the price pipeline: liquidity screens over the daily
// price feed, then return and credit-spread derivation.
type ReturnCSStage struct{}

func (ReturnCSStage) ID() string   { return "returncs" }
func (ReturnCSStage) Name() string { return "Daily return and credit spread" }

func (ReturnCSStage) Validate(state *State) error {
	return requireFile(state.DataPath(state.Config.Paths.PriceFile))
}

func (ReturnCSStage) Execute(ctx context.Context, state *State) error {
	records, err := trades.LoadPrices(state.DataPath(state.Config.Paths.PriceFile), state.Logger)
	if err != nil {
		return fmt.Errorf("load prices: %w", err)
	}

	cal, err := state.SampleCalendar()
	if err != nil {
		return fmt.Errorf("build calendar: %w", err)
	}
	filter := trades.NewFilter(cal,
		state.Config.Liquidity.MinMonthlyTrades,
		state.Config.Liquidity.MaxGapPriceDays,
		state.Logger,
	)
	filtered := filter.Run(ctx, records)

	deriver := metrics.NewReturnDeriver(
		state.winsorizeBounds(),
		state.Config.Liquidity.MaxAbsReturn,
		state.clampAtDerivation(),
		state.Logger,
	)
	derived, err := deriver.Derive(ctx, filtered)
	if err != nil {
		return fmt.Errorf("derive returns: %w", err)
	}

	path := state.DataPath(ArtifactReturnCS)
	if err := state.Writer.WriteCSV(path, metrics.ReturnCSHeaders, metrics.EncodeReturnCS(derived)); err != nil {
		return fmt.Errorf("write %s: %w", ArtifactReturnCS, err)
	}
	return nil
}

// DeriveStage joins the two metric families, attaches rating categories,
// and renders the subsample report.
type DeriveStage struct{}

func (DeriveStage) ID() string   { return "derive" }
func (DeriveStage) Name() string { return "Merge and subsample aggregation" }

func (DeriveStage) Validate(state *State) error {
	for _, artifact := range []string{ArtifactSpreadBias, ArtifactReturnCS, ArtifactRating} {
		if err := requireFile(state.DataPath(artifact)); err != nil {
			return err
		}
	}
	return nil
}

func (DeriveStage) Execute(ctx context.Context, state *State) error {
	var (
		quotes  []metrics.SpreadBias
		prices  []metrics.ReturnCS
		ratings []rating.Record
	)
	var g errgroup.Group
	g.Go(func() error {
		var err error
		quotes, err = metrics.LoadSpreadBias(state.DataPath(ArtifactSpreadBias))
		return err
	})
	g.Go(func() error {
		var err error
		prices, err = metrics.LoadReturnCS(state.DataPath(ArtifactReturnCS))
		return err
	})
	g.Go(func() error {
		var err error
		ratings, err = rating.LoadNormalized(state.DataPath(ArtifactRating))
		return err
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("load artifacts: %w", err)
	}

	rows := aggregate.Join(ctx, quotes, prices, state.Logger)
	rows = aggregate.AttachCategories(ctx, rows, ratings, state.Logger)

	if err := state.Writer.WriteCSV(state.DataPath(ArtifactDaily), aggregate.DailyHeaders, aggregate.EncodeDaily(rows)); err != nil {
		return fmt.Errorf("write %s: %w", ArtifactDaily, err)
	}

	windows, err := state.Windows()
	if err != nil {
		return err
	}
	aggregator := aggregate.NewAggregator(
		windows,
		aggregate.WinsorizeScope(state.Config.Winsorize.Scope),
		state.winsorizeBounds(),
		state.Logger,
	)
	table, err := aggregator.Aggregate(ctx, rows)
	if err != nil {
		return fmt.Errorf("aggregate: %w", err)
	}

	if err := state.Writer.WriteCSV(state.OutputPath(ArtifactTableCSV), report.TableHeaders, report.EncodeCSV(table)); err != nil {
		return fmt.Errorf("write %s: %w", ArtifactTableCSV, err)
	}
	if err := report.WriteXLSX(state.OutputPath(ArtifactTableXLSX), table); err != nil {
		return fmt.Errorf("write %s: %w", ArtifactTableXLSX, err)
	}
	if err := report.WriteTextTable(state.OutputPath(ArtifactTableText), table); err != nil {
		return fmt.Errorf("write %s: %w", ArtifactTableText, err)
	}
	return nil
}
