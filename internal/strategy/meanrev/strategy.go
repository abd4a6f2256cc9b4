// Package meanrev implements the bound-based mean-reversion strategy: buy a
// day that dips to the lower bound of an instrument's historical return
// envelope, sell a day that spikes to the upper bound.
package meanrev

import (
	"github.com/oturner/hindsight/internal/core"
	"github.com/oturner/hindsight/internal/indicator"
	"github.com/oturner/hindsight/internal/strategy"
)

// hardStopPercent closes any position once it is this far under water,
// regardless of the bounds.
const hardStopPercent = 5.0

// Strategy is the mean-reversion variant. Prepare derives one Bound per
// symbol from its full history; the per-day decisions only need the latest
// close and its day-over-day change.
type Strategy struct {
	stepSize       int
	deviationScale float64
	minGainPercent float64
	bounds         map[string]core.Bound
}

// New creates the strategy. stepSize controls how many day-over-day changes
// are averaged into one periodic return; minGainPercent gates upper-bound
// sells so volatility alone doesn't close an entry at a loss.
func New(stepSize int, deviationScale, minGainPercent float64) *Strategy {
	return &Strategy{
		stepSize:       stepSize,
		deviationScale: deviationScale,
		minGainPercent: minGainPercent,
		bounds:         make(map[string]core.Bound),
	}
}

func (s *Strategy) Name() string {
	return "meanrev"
}

// Lookback is two closes: the day under decision and the prior close for its
// percent change.
func (s *Strategy) Lookback() int {
	return 2
}

// Prepare computes the per-symbol bound envelopes over periodic average
// returns.
func (s *Strategy) Prepare(stocks []core.Stock) error {
	for _, stock := range stocks {
		changes := indicator.AverageChanges(stock.History, s.stepSize)
		if changes == nil {
			continue
		}
		s.bounds[stock.Symbol] = indicator.Bounds(changes, s.deviationScale)
	}
	return nil
}

// Bound returns the prepared envelope for symbol.
func (s *Strategy) Bound(symbol string) (core.Bound, bool) {
	bound, ok := s.bounds[symbol]
	return bound, ok
}

// ShouldBuy buys the dip: the day's change must reach the lower bound, the
// instrument must not be a penny stock, and its average return must be
// positive.
func (s *Strategy) ShouldBuy(ctx strategy.Context) bool {
	day := s.day(ctx)

	if day.Value <= 1.0 {
		return false
	}

	bound, ok := s.bounds[ctx.Symbol]
	if !ok || bound.Middle <= 0 {
		return false
	}

	return day.PercentChange <= bound.Lower
}

// ShouldSell sells the peak: a hard stop under water, or a day that spikes to
// the upper bound while the position is ahead by at least the minimum gain.
func (s *Strategy) ShouldSell(ctx strategy.Context, entryPrice float64) bool {
	day := s.day(ctx)
	margin := indicator.PercentChange(day.Value, entryPrice)

	if margin <= -hardStopPercent {
		return true
	}

	bound, ok := s.bounds[ctx.Symbol]
	if !ok {
		return false
	}

	return day.PercentChange >= bound.Upper && margin > s.minGainPercent
}

func (s *Strategy) day(ctx strategy.Context) core.Close {
	latest := ctx.Latest()
	var change float64
	if len(ctx.Closes) >= 2 {
		change = indicator.PercentChange(latest, ctx.Closes[len(ctx.Closes)-2])
	}
	return core.Close{Value: latest, PercentChange: change}
}
