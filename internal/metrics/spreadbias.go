package metrics

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"bondlab/internal/trades"
)

// SpreadBias is the quote-side metric family for one bond-day.
type SpreadBias struct {
	CUSIP          string
	Date           time.Time
	SpreadBps      float64
	BiasBps        float64
	WinsorizedBias float64
}

// SpreadBiasDeriver computes bid-ask spread and bid-ask bias in basis
// points from filtered quote observations.
type SpreadBiasDeriver struct {
	bounds WinsorizeBounds
	// clampSample applies the cross-sectional winsorization over the full
	// run. Disabled when the clamp is recomputed per subsample window
	// downstream.
	clampSample bool
	logger      *slog.Logger
}

// NewSpreadBiasDeriver creates a deriver with the given winsorization
// bounds. When clampSample is false the WinsorizedBias column carries the
// raw bias and the aggregation stage owns the clamp.
func NewSpreadBiasDeriver(bounds WinsorizeBounds, clampSample bool, logger *slog.Logger) *SpreadBiasDeriver {
	if logger == nil {
		logger = slog.Default()
	}
	return &SpreadBiasDeriver{bounds: bounds, clampSample: clampSample, logger: logger}
}

// Derive computes, per bond-day:
//
//	spread = 2 * (bid - ask) / (bid + ask) * 10000
//	bias   = ((bid - ask) / (bid + ask))^2 * 10000
//
// Quotes with bid+ask == 0 are data-quality rejections: they are dropped
// rather than letting a non-finite value reach the subsample means.
func (d *SpreadBiasDeriver) Derive(ctx context.Context, observations []trades.Annotated) ([]SpreadBias, error) {
	out := make([]SpreadBias, 0, len(observations))
	rejected := 0
	for _, obs := range observations {
		mid := obs.Bid + obs.Ask
		if mid == 0 {
			rejected++
			continue
		}
		rel := (obs.Bid - obs.Ask) / mid
		out = append(out, SpreadBias{
			CUSIP:     obs.CUSIP,
			Date:      obs.Date,
			SpreadBps: 2 * rel * 10000,
			BiasBps:   rel * rel * 10000,
		})
	}

	if d.clampSample {
		biases := make([]float64, len(out))
		for i := range out {
			biases[i] = out[i].BiasBps
		}
		clamped, err := Winsorize(biases, d.bounds)
		if err != nil {
			return nil, fmt.Errorf("winsorize bias: %w", err)
		}
		for i := range out {
			out[i].WinsorizedBias = clamped[i]
		}
	} else {
		for i := range out {
			out[i].WinsorizedBias = out[i].BiasBps
		}
	}

	d.logger.InfoContext(ctx, "derived spread and bias",
		"input_rows", len(observations),
		"output_rows", len(out),
		"zero_quote_rejections", rejected,
		"sample_winsorized", d.clampSample,
	)
	return out, nil
}
