// Package trend implements the close-window trend-following strategy: enter
// on a clean, freshly steepening uptrend, exit on stop-loss or on the first
// pullback after the take-gain threshold is cleared.
package trend

import (
	"github.com/oturner/hindsight/internal/core"
	"github.com/oturner/hindsight/internal/indicator"
	"github.com/oturner/hindsight/internal/strategy"
)

const (
	// recentDays is how many of the newest closes form the "new" segment.
	recentDays = 4
	// oldSegmentPoints is how many points of the old segment the old trend
	// is fitted over.
	oldSegmentPoints = 14
	// minCorrelation rejects noisy trends.
	minCorrelation = 0.83
	// minNewGradient/maxNewGradient bracket the acceptable new-trend slope.
	minNewGradient = 0.010
	maxNewGradient = 0.030
	// maxRecentDifference rejects entries that chase a spike between the
	// old and new segments.
	maxRecentDifference = 1.0
	// sellWindow is how many closes the pullback detector looks at.
	sellWindow = 10
)

// Strategy is the trend-following variant.
type Strategy struct {
	lookback        int
	sellLossPercent float64
	sellGainPercent float64
}

// New creates the strategy with the given close-window length and the
// stop-loss / take-gain thresholds in percent.
func New(lookback int, sellLossPercent, sellGainPercent float64) *Strategy {
	return &Strategy{
		lookback:        lookback,
		sellLossPercent: sellLossPercent,
		sellGainPercent: sellGainPercent,
	}
}

func (s *Strategy) Name() string {
	return "trend"
}

func (s *Strategy) Lookback() int {
	return s.lookback
}

// Prepare is a no-op; the trend variant needs no per-symbol precomputation.
func (s *Strategy) Prepare([]core.Stock) error {
	return nil
}

// ShouldBuy applies the entry filters over the close window. Every threshold
// here is load-bearing; see the package tests for the pinned behavior.
func (s *Strategy) ShouldBuy(ctx strategy.Context) bool {
	closes := ctx.Closes
	if len(closes) < oldSegmentPoints+recentDays {
		return false
	}

	// ignore penny stocks
	if ctx.Latest() < 1.0 {
		return false
	}

	// stay away from dying stocks
	overallGradient, _, err := indicator.BestFit(closes)
	if err != nil || overallGradient < 0.0 {
		return false
	}

	split := len(closes) - recentDays
	oldValues := closes[:split]
	newValues := closes[split:]

	oldGradient, oldR, err := indicator.BestFit(oldValues[len(oldValues)-oldSegmentPoints:])
	if err != nil {
		return false
	}
	newGradient, newR, err := indicator.BestFit(newValues)
	if err != nil {
		return false
	}

	// no recent decreases
	if newValues[recentDays-1] < newValues[recentDays-2] ||
		newValues[recentDays-2] < newValues[recentDays-3] {
		return false
	}

	// recent difference isn't too much
	recentDifference := indicator.PercentChange(newValues[len(newValues)-1], oldValues[len(oldValues)-1])
	if abs(recentDifference) >= maxRecentDifference {
		return false
	}

	// the trend correlation is strong enough
	if abs(oldR) < minCorrelation || newR < minCorrelation {
		return false
	}

	// new trend is in the right range
	if newGradient < minNewGradient || newGradient > maxNewGradient {
		return false
	}

	// check the gradient difference is in the right range
	gradientDifference := indicator.PercentChange(newGradient, oldGradient)
	if abs(gradientDifference) < 30.0 && abs(gradientDifference) < 100.0 {
		return false
	}

	return true
}

// ShouldSell exits immediately at the stop-loss, holds below the take-gain
// threshold, and past it waits for a pullback from the recent peak so a pure
// uptrend keeps running.
func (s *Strategy) ShouldSell(ctx strategy.Context, entryPrice float64) bool {
	currentGains := indicator.PercentChange(ctx.Latest(), entryPrice)

	// sell if we've reached the loss margin
	if currentGains <= -s.sellLossPercent {
		return true
	}

	// hold on if we haven't reached the gain margin
	if currentGains <= s.sellGainPercent {
		return false
	}

	// now wait till our profit maximises
	closes := ctx.Closes
	if len(closes) > sellWindow {
		closes = closes[len(closes)-sellWindow:]
	}
	return indicator.RecentLow(closes)
}

func abs(value float64) float64 {
	if value < 0 {
		return -value
	}
	return value
}
