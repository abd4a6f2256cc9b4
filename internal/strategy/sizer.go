package strategy

import (
	"github.com/oturner/hindsight/internal/indicator"
)

// riskVolatilityFloor is the inverse-volatility threshold below which the
// buy budget is halved.
const riskVolatilityFloor = 0.3

// RiskFactoredSizer scales position size down for historically volatile
// instruments.
type RiskFactoredSizer struct{}

// Amount halves the budget when the inverse of the window's average
// volatility falls below the floor; otherwise the full budget is returned.
func (RiskFactoredSizer) Amount(max float64, closes []float64) float64 {
	volatility := indicator.AverageVolatility(closes)
	if volatility == 0 {
		return max
	}

	if 1.0/volatility < riskVolatilityFloor {
		return max * 0.5
	}
	return max
}

// NoopSizer always returns the requested budget unchanged. It stands in for
// variants whose risk sizing was never finished.
type NoopSizer struct{}

// Amount returns max untouched.
func (NoopSizer) Amount(max float64, _ []float64) float64 {
	return max
}
