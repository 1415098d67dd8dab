package metrics

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"bondlab/internal/trades"
)

// ReturnCS is the price-side metric family for one bond-day.
type ReturnCS struct {
	CUSIP           string
	Date            time.Time
	DailyReturnBps  float64
	CreditSpreadBps float64
}

// ReturnDeriver computes daily returns and duration-adjusted credit
// spreads in basis points from filtered price observations.
type ReturnDeriver struct {
	bounds WinsorizeBounds
	// maxAbsReturn bounds the magnitude filter; the methodology uses 0.20.
	maxAbsReturn float64
	clampSample  bool
	logger       *slog.Logger
}

// NewReturnDeriver creates a deriver. When clampSample is false the
// credit-spread winsorization is deferred to the aggregation stage.
func NewReturnDeriver(bounds WinsorizeBounds, maxAbsReturn float64, clampSample bool, logger *slog.Logger) *ReturnDeriver {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReturnDeriver{
		bounds:       bounds,
		maxAbsReturn: maxAbsReturn,
		clampSample:  clampSample,
		logger:       logger,
	}
}

// dailyReturn is one observation with its per-bond return state. The
// previous return is the one from the pre-filter sequence: the reversal
// screen looks at the move that immediately preceded the candidate in the
// raw data, not in the already-filtered output.
type dailyReturn struct {
	obs     trades.Annotated
	ret     float64
	hasRet  bool
	prev    float64
	hasPrev bool
}

// Derive walks each bond's observations in date order and:
//
//  1. computes the one-day percentage change of the clean price (a bond's
//     first observation has no return and is dropped),
//  2. drops returns of at least maxAbsReturn that reverse the sign of the
//     immediately preceding return (data artifacts, not real moves),
//  3. drops any remaining return larger than maxAbsReturn in magnitude,
//  4. scales the surviving return and credit spread to basis points.
func (d *ReturnDeriver) Derive(ctx context.Context, observations []trades.Annotated) ([]ReturnCS, error) {
	series := make([]dailyReturn, len(observations))
	badPrice := 0
	for i, obs := range observations {
		series[i] = dailyReturn{obs: obs}
		if i == 0 || observations[i-1].CUSIP != obs.CUSIP {
			continue
		}
		prevClean := observations[i-1].Clean
		if prevClean == 0 {
			// Undefined percentage change; treated as a data-quality
			// rejection like a non-finite quote.
			badPrice++
			continue
		}
		series[i].ret = obs.Clean/prevClean - 1
		series[i].hasRet = true
		if series[i-1].hasRet {
			series[i].prev = series[i-1].ret
			series[i].hasPrev = true
		}
	}

	out := make([]ReturnCS, 0, len(series))
	reversals := 0
	outsized := 0
	for _, s := range series {
		if !s.hasRet {
			continue
		}
		if isReversal(s, d.maxAbsReturn) {
			reversals++
			continue
		}
		if math.Abs(s.ret) > d.maxAbsReturn {
			outsized++
			continue
		}
		out = append(out, ReturnCS{
			CUSIP:           s.obs.CUSIP,
			Date:            s.obs.Date,
			DailyReturnBps:  s.ret * 10000,
			CreditSpreadBps: s.obs.CSDur * 10000,
		})
	}

	if d.clampSample {
		spreads := make([]float64, len(out))
		for i := range out {
			spreads[i] = out[i].CreditSpreadBps
		}
		clamped, err := Winsorize(spreads, d.bounds)
		if err != nil {
			return nil, fmt.Errorf("winsorize credit spread: %w", err)
		}
		for i := range out {
			out[i].CreditSpreadBps = clamped[i]
		}
	}

	d.logger.InfoContext(ctx, "derived daily returns and credit spreads",
		"input_rows", len(observations),
		"output_rows", len(out),
		"reversal_drops", reversals,
		"magnitude_drops", outsized,
		"zero_price_rejections", badPrice,
		"sample_winsorized", d.clampSample,
	)
	return out, nil
}

// isReversal reports whether a return is a large sign-reversing move. A
// first return has no predecessor and is never eligible to be the
// reversal.
func isReversal(s dailyReturn, threshold float64) bool {
	return s.hasPrev && math.Abs(s.ret) >= threshold && s.ret*s.prev < 0
}
