package core

// Stock is one listed instrument with its full daily price history.
// History is date-ascending with no duplicate dates and is immutable once
// loaded; the simulation only ever reads it.
type Stock struct {
	Symbol      string   `json:"symbol"`
	ListingDate string   `json:"listing_date"`
	History     []Candle `json:"history,omitempty"`
}

// Candle is one day's OHLCV bar. Only Date and Close are consumed by the
// engine; the remaining fields pass through from the data source.
type Candle struct {
	Date   string  `json:"Date"`
	Open   float64 `json:"Open"`
	High   float64 `json:"High"`
	Low    float64 `json:"Low"`
	Close  float64 `json:"Close"`
	Volume float64 `json:"Volume"`
}

// Close is a single day's closing view of an instrument: the close value,
// its percent change from the prior close, and the trading date.
type Close struct {
	Value         float64
	PercentChange float64
	Date          string
}

// Bound is a per-instrument statistical envelope over periodic average
// returns. The mean-reversion strategy buys at Lower and sells at Upper.
type Bound struct {
	Upper  float64
	Middle float64
	Lower  float64
}

// Closes returns the instrument's closing prices in history order.
func (s Stock) Closes() []float64 {
	closes := make([]float64, len(s.History))
	for i, candle := range s.History {
		closes[i] = candle.Close
	}
	return closes
}

// IsValid checks that the stock has the fields the engine requires.
func (s Stock) IsValid() bool {
	return s.Symbol != "" && s.ListingDate != ""
}

// RecentCloses returns the window of daysToGoBack closes ending exactly on
// the candle dated date (YYYY-MM-DD). It returns nil when that date is
// absent from the history or when fewer prior candles exist than the window
// needs; both mean "no actionable signal today", not an error.
func (s Stock) RecentCloses(date string, daysToGoBack int) []float64 {
	required := daysToGoBack - 1

	for i, candle := range s.History {
		if candle.Date != date {
			continue
		}

		if i < required {
			return nil
		}

		closes := make([]float64, 0, daysToGoBack)
		for j := i - required; j <= i; j++ {
			closes = append(closes, s.History[j].Close)
		}
		return closes
	}

	return nil
}
