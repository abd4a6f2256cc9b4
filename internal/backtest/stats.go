package backtest

import (
	"math"

	"github.com/oturner/hindsight/internal/indicator"
	"github.com/oturner/hindsight/internal/portfolio"
)

// Stats holds the performance summary of a run, reconstructed from the final
// ledger.
type Stats struct {
	TotalTrades   int
	WinningTrades int
	LosingTrades  int
	WinRate       float64 // percentage of profitable closed trades
	TotalReturn   float64 // percent change of the final balance over the start
	AnnualReturn  float64 // total return spread across the simulated years
	MaxDrawdown   float64 // largest peak-to-trough decline, percent
	SharpeRatio   float64 // risk-adjusted return, annualized
	FinalBalance  float64
}

// CalculateStats computes performance statistics from the run's ledger.
// Trades whose sell side never filled are counted but excluded from the
// win/loss and risk figures.
func CalculateStats(ledger *portfolio.Portfolio, cfg Config) Stats {
	stats := Stats{
		TotalTrades:  len(ledger.Trades),
		FinalBalance: ledger.Balance,
		TotalReturn:  indicator.PercentChange(ledger.Balance, cfg.Balance),
	}

	years := cfg.EndDate.Sub(cfg.StartDate).Hours() / 24 / 365
	if years > 0 {
		stats.AnnualReturn = stats.TotalReturn / years
	}

	var returns []float64
	for _, trade := range ledger.Trades {
		if trade.IsOpen() {
			continue
		}
		returns = append(returns, trade.Return()/100)
		if trade.IsWin() {
			stats.WinningTrades++
		} else {
			stats.LosingTrades++
		}
	}

	closed := stats.WinningTrades + stats.LosingTrades
	if closed > 0 {
		stats.WinRate = float64(stats.WinningTrades) / float64(closed) * 100
	}

	stats.MaxDrawdown = maxDrawdown(returns) * 100
	stats.SharpeRatio = sharpeRatio(returns)

	return stats
}

// maxDrawdown finds the largest peak-to-trough decline across the compounded
// per-trade returns.
func maxDrawdown(returns []float64) float64 {
	if len(returns) == 0 {
		return 0
	}

	var worst, peak float64
	cumulative := 1.0

	for _, r := range returns {
		cumulative *= 1 + r
		if cumulative > peak {
			peak = cumulative
		}
		if peak > 0 {
			drawdown := (peak - cumulative) / peak
			if drawdown > worst {
				worst = drawdown
			}
		}
	}

	return worst
}

// sharpeRatio computes risk-adjusted return over the per-trade returns,
// assuming a zero risk-free rate and ~252 trading days per year.
func sharpeRatio(returns []float64) float64 {
	if len(returns) < 2 {
		return 0
	}

	var sum float64
	for _, r := range returns {
		sum += r
	}
	mean := sum / float64(len(returns))

	var variance float64
	for _, r := range returns {
		variance += (r - mean) * (r - mean)
	}
	stddev := math.Sqrt(variance / float64(len(returns)-1))
	if stddev == 0 {
		return 0
	}

	return (mean * 252) / (stddev * math.Sqrt(252))
}
