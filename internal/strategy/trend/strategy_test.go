package trend

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oturner/hindsight/internal/strategy"
)

// buyableWindow builds a 30-close window that clears every entry filter: a
// clean 0.008/day old trend around $2 and a fresh 0.015/day new trend that
// stays within 1% of the old segment's last close.
func buyableWindow() []float64 {
	closes := make([]float64, 0, 30)
	for i := 0; i < 26; i++ {
		closes = append(closes, 1.904+0.008*float64(i))
	}
	closes = append(closes, 2.065, 2.080, 2.095, 2.110)
	return closes
}

func ctxWith(closes []float64) strategy.Context {
	return strategy.Context{
		Symbol: "ABC",
		Closes: closes,
		Date:   time.Date(2019, 6, 3, 0, 0, 0, 0, time.UTC),
	}
}

func TestShouldBuy_AcceptsCleanSteepeningTrend(t *testing.T) {
	s := New(30, 1.5, 999)
	assert.True(t, s.ShouldBuy(ctxWith(buyableWindow())))
}

func TestShouldBuy_RejectsPennyStock(t *testing.T) {
	s := New(30, 1.5, 999)

	closes := buyableWindow()
	for i := range closes {
		closes[i] /= 10
	}
	assert.False(t, s.ShouldBuy(ctxWith(closes)))
}

func TestShouldBuy_RejectsOverallDowntrend(t *testing.T) {
	s := New(30, 1.5, 999)

	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 5.0 - 0.05*float64(i)
	}
	assert.False(t, s.ShouldBuy(ctxWith(closes)))
}

func TestShouldBuy_RejectsRecentDownDay(t *testing.T) {
	s := New(30, 1.5, 999)

	closes := buyableWindow()
	closes[28] = closes[27] - 0.01 // one down-day inside the new segment
	assert.False(t, s.ShouldBuy(ctxWith(closes)))
}

func TestShouldBuy_RejectsSpikeAwayFromOldSegment(t *testing.T) {
	s := New(30, 1.5, 999)

	closes := buyableWindow()
	// Push the new segment ~3% above the old segment's last close while
	// keeping its own slope in range.
	for i := 26; i < 30; i++ {
		closes[i] += 0.06
	}
	assert.False(t, s.ShouldBuy(ctxWith(closes)))
}

func TestShouldBuy_RejectsNoisyTrend(t *testing.T) {
	s := New(30, 1.5, 999)

	closes := buyableWindow()
	// Break the old segment's correlation without flipping its slope.
	for i := 12; i < 26; i += 2 {
		closes[i] += 0.15
	}
	assert.False(t, s.ShouldBuy(ctxWith(closes)))
}

// The gradient-difference check rejects whenever the change between old and
// new slope is under 30% in magnitude; the second 100% clause is subsumed by
// the first. This pins the literal double-threshold behavior.
func TestShouldBuy_GradientDifferencePinned(t *testing.T) {
	s := New(30, 1.5, 999)

	// 0.008 -> 0.015 is an 87.5% steepening: inside [30, 100), accepted.
	require.True(t, s.ShouldBuy(ctxWith(buyableWindow())))

	// 0.012 -> 0.015 is a 25% steepening: under both thresholds, rejected.
	closes := make([]float64, 0, 30)
	for i := 0; i < 26; i++ {
		closes = append(closes, 1.8+0.012*float64(i))
	}
	last := closes[25]
	closes = append(closes, last-0.039, last-0.024, last-0.009, last+0.006)
	assert.False(t, s.ShouldBuy(ctxWith(closes)))
}

func TestShouldSell_StopLoss(t *testing.T) {
	s := New(30, 7.0, 999)

	closes := []float64{2.0, 1.95, 1.9, 1.84} // 8% under the 2.0 entry
	assert.True(t, s.ShouldSell(ctxWith(closes), 2.0))
}

func TestShouldSell_HoldsBelowGainThreshold(t *testing.T) {
	s := New(30, 7.0, 50.0)

	closes := []float64{2.0, 2.1, 2.2, 2.3} // +15%, under the 50% target
	assert.False(t, s.ShouldSell(ctxWith(closes), 2.0))
}

func TestShouldSell_WaitsForPullbackAboveGainThreshold(t *testing.T) {
	s := New(30, 7.0, 50.0)

	// Well past the gain target but still climbing: keep holding.
	uptrend := []float64{2.0, 2.1, 2.2, 2.3, 2.4, 2.5, 2.6, 2.7, 2.8, 2.9}
	assert.False(t, s.ShouldSell(ctxWith(uptrend), 1.0))

	// Past the target and pulled back from the peak: take the profit.
	pullback := []float64{2.0, 3.0, 2.6, 2.4, 2.5, 2.5, 2.5, 2.5, 2.5, 2.4}
	assert.True(t, s.ShouldSell(ctxWith(pullback), 1.0))
}
