// Package portfolio holds the in-memory ledger for a simulation run: the
// cash balance, the open positions keyed by symbol, and the append-only
// trade record. ApplyBuy and ApplySell are the only mutators; the driver
// never touches the fields directly.
package portfolio

import (
	"github.com/oturner/hindsight/internal/core"
)

// FrictionFactor models round-trip transaction cost. It is applied once per
// leg: the buy quantity is computed from the budget scaled by it, and the
// sell proceeds are scaled by it again.
const FrictionFactor = 0.995

// Position is an open holding. At most one position per symbol exists at any
// time.
type Position struct {
	Price    float64 // entry price per share
	Quantity float64
}

// Trade is one entry/exit pair in the ledger. An empty SellDate marks a
// trade whose position is still open; the sell side is filled exactly once.
type Trade struct {
	Symbol    string  `json:"symbol"`
	BuyPrice  float64 `json:"buy_price"`
	BuyDate   string  `json:"buy_date"`
	SellPrice float64 `json:"sell_price"`
	SellDate  string  `json:"sell_date"`
	Quantity  float64 `json:"quantity"`
}

// IsOpen reports whether the trade's position has not been closed yet.
func (t Trade) IsOpen() bool {
	return t.SellDate == ""
}

// Return is the percent gain of a closed trade.
func (t Trade) Return() float64 {
	if t.BuyPrice == 0 {
		return 0
	}
	return (t.SellPrice - t.BuyPrice) / t.BuyPrice * 100
}

// IsWin reports whether a closed trade exited above its entry.
func (t Trade) IsWin() bool {
	return t.SellPrice > t.BuyPrice
}

// Portfolio is the ledger for one simulation run.
type Portfolio struct {
	Balance   float64
	Positions map[string]Position
	Trades    []Trade
}

// New creates a Portfolio with the given starting balance.
func New(balance float64) *Portfolio {
	return &Portfolio{
		Balance:   balance,
		Positions: make(map[string]Position),
	}
}

// ApplyBuy debits cost from the balance, opens a position, and appends an
// open trade. A buy the balance cannot cover, or one with a non-positive
// cost or quantity, is rejected outright: no partial fills, no trade record.
// Returns whether the buy was applied.
func (p *Portfolio) ApplyBuy(symbol string, price, quantity float64, date string, cost float64) bool {
	if cost <= 0 || quantity <= 0 || p.Balance < cost {
		return false
	}

	p.Balance -= cost
	p.Positions[symbol] = Position{Price: price, Quantity: quantity}
	p.Trades = append(p.Trades, Trade{
		Symbol:   symbol,
		BuyPrice: price,
		BuyDate:  date,
		Quantity: quantity,
	})

	return true
}

// ApplySell closes the open position for symbol at price, crediting the
// proceeds less friction, and fills the sell side of the symbol's most
// recent trade. Selling without an open position is a driver sequencing bug
// and returns ErrNoPosition.
func (p *Portfolio) ApplySell(symbol string, price float64, date string) error {
	position, ok := p.Positions[symbol]
	if !ok {
		return core.ErrNoPosition
	}

	p.Balance += price * position.Quantity * FrictionFactor
	delete(p.Positions, symbol)

	trade := p.LastTrade(symbol)
	if trade == nil {
		// A position always has a matching open trade.
		return core.ErrNoPosition
	}
	trade.SellPrice = price
	trade.SellDate = date

	return nil
}

// LastTrade returns a pointer to the most recent trade for symbol, or nil
// when the symbol has never traded.
func (p *Portfolio) LastTrade(symbol string) *Trade {
	for i := len(p.Trades) - 1; i >= 0; i-- {
		if p.Trades[i].Symbol == symbol {
			return &p.Trades[i]
		}
	}
	return nil
}

// OpenTrades counts trades whose sell side is still unset. It always equals
// the number of open positions after any valid sequence of operations.
func (p *Portfolio) OpenTrades() int {
	var open int
	for _, trade := range p.Trades {
		if trade.IsOpen() {
			open++
		}
	}
	return open
}
