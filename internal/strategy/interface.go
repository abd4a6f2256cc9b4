// Package strategy defines the trading decision capabilities the simulation
// driver is built against. Concrete strategies live in sub-packages; the
// driver is agnostic to which variant is active.
package strategy

import (
	"time"

	"github.com/oturner/hindsight/internal/core"
)

// Context is the per-day, per-instrument view a strategy decides on. Closes
// is the rolling window of the most recent closing prices, newest last, with
// Closes[len-1] being the close on Date.
type Context struct {
	Symbol string
	Closes []float64
	Date   time.Time
}

// Latest returns the newest close in the window.
func (c Context) Latest() float64 {
	return c.Closes[len(c.Closes)-1]
}

// Strategy decides whether to enter or exit a position on a given day.
type Strategy interface {
	// Name identifies the strategy in logs and run records.
	Name() string

	// Lookback is the number of closes the driver must supply per
	// evaluation. Days without that much trailing history are skipped.
	Lookback() int

	// Prepare runs once before the simulation with the full instrument set,
	// for strategies that precompute per-symbol state.
	Prepare(stocks []core.Stock) error

	// ShouldBuy reports whether to open a position.
	ShouldBuy(ctx Context) bool

	// ShouldSell reports whether to close the position entered at entryPrice.
	ShouldSell(ctx Context, entryPrice float64) bool
}

// Sizer scales a requested buy budget before the driver applies it.
type Sizer interface {
	// Amount returns the budget to spend given the maximum allowed and the
	// instrument's recent closes.
	Amount(max float64, closes []float64) float64
}
