// Package indicator provides the pure statistical signal functions the
// decision strategies are built on. Every function is side-effect free and
// deterministic; divisions by zero are defined to return 0 rather than
// relying on native float behavior.
package indicator

import (
	"math"

	"github.com/oturner/hindsight/internal/core"
)

// DefaultDeviationScale is the tuned multiplier applied to the standard
// deviation when deriving Bounds. Tuned against historical runs, not derived.
const DefaultDeviationScale = 0.608

// volatilityChunkSize is the number of closes per chunk when measuring
// average volatility.
const volatilityChunkSize = 7

// PercentChange returns the percent change from oldValue to newValue.
// A zero oldValue yields 0.
func PercentChange(newValue, oldValue float64) float64 {
	if oldValue == 0 {
		return 0
	}
	return (newValue - oldValue) / oldValue * 100.0
}

// BestFit performs an ordinary least-squares regression of series[i] against
// the index i and returns the slope alongside the Pearson correlation
// coefficient between index and value. At least two points are required.
func BestFit(series []float64) (slope, correlation float64, err error) {
	n := len(series)
	if n < 2 {
		return 0, 0, core.ErrInsufficientData
	}

	var sumX, sumY float64
	for i, y := range series {
		sumX += float64(i)
		sumY += y
	}
	meanX := sumX / float64(n)
	meanY := sumY / float64(n)

	var covXY, varX, varY float64
	for i, y := range series {
		dx := float64(i) - meanX
		dy := y - meanY
		covXY += dx * dy
		varX += dx * dx
		varY += dy * dy
	}

	slope = covXY / varX

	// A constant series has no correlation with the index.
	denom := math.Sqrt(varX * varY)
	if denom == 0 {
		return slope, 0, nil
	}

	return slope, covXY / denom, nil
}

// RecentLow reports whether the last value sits at a local low that formed
// after the most recent peak. The peak is the first occurrence of the running
// maximum; the low is the first occurrence of the minimum between the peak
// and the second-to-last element. The low must be distinct from the peak and
// more than two elements before the end, so a pullback that only just started
// does not count.
func RecentLow(series []float64) bool {
	if len(series) < 2 {
		return false
	}

	peak := 0
	for i, value := range series {
		if value > series[peak] {
			peak = i
		}
	}

	low := -1
	for i := peak; i <= len(series)-2; i++ {
		if low == -1 || series[i] < series[low] {
			low = i
		}
	}
	if low == -1 || low == peak {
		return false
	}

	last := series[len(series)-1]
	if last > series[low] {
		return false
	}

	return len(series)-1-low > 2
}

// AverageVolatility partitions the series into chunks of seven closes (the
// trailing partial chunk included) and averages each chunk's percent change
// between its high and low. High and low both start from 0.0, so a chunk
// that never crosses zero keeps one of them at 0. Returns 0 for an empty
// series.
func AverageVolatility(series []float64) float64 {
	var sum float64
	var chunks int

	for start := 0; start < len(series); start += volatilityChunkSize {
		end := start + volatilityChunkSize
		if end > len(series) {
			end = len(series)
		}

		var high, low float64
		for _, value := range series[start:end] {
			if value > high {
				high = value
			}
			if value < low {
				low = value
			}
		}

		sum += PercentChange(high, low)
		chunks++
	}

	if chunks == 0 {
		return 0
	}
	return sum / float64(chunks)
}

// Bounds derives the {upper, middle, lower} envelope of a series of periodic
// average returns: the mean, plus and minus the scaled population standard
// deviation.
func Bounds(series []float64, scale float64) core.Bound {
	if len(series) == 0 {
		return core.Bound{}
	}

	var sum float64
	for _, value := range series {
		sum += value
	}
	mean := sum / float64(len(series))

	var squared float64
	for _, value := range series {
		deviation := value - mean
		squared += deviation * deviation
	}
	stddev := math.Sqrt(squared / float64(len(series)))

	return core.Bound{
		Upper:  mean + scale*stddev,
		Middle: mean,
		Lower:  mean - scale*stddev,
	}
}

// AverageChanges computes the day-over-day percent change for every
// consecutive candle pair, then reduces consecutive runs of stepSize changes
// to their mean, yielding one averaged return per period. The trailing
// partial run is kept.
func AverageChanges(candles []core.Candle, stepSize int) []float64 {
	if stepSize < 1 || len(candles) < 2 {
		return nil
	}

	changes := make([]float64, 0, len(candles)-1)
	for i := 1; i < len(candles); i++ {
		changes = append(changes, PercentChange(candles[i].Close, candles[i-1].Close))
	}

	averaged := make([]float64, 0, (len(changes)+stepSize-1)/stepSize)
	for start := 0; start < len(changes); start += stepSize {
		end := start + stepSize
		if end > len(changes) {
			end = len(changes)
		}

		var sum float64
		for _, change := range changes[start:end] {
			sum += change
		}
		averaged = append(averaged, sum/float64(end-start))
	}

	return averaged
}
