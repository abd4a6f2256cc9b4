// Package backtest replays historical daily price series through a trading
// strategy and reports the resulting ledger and performance statistics. The
// driver is strictly sequential: each simulated day completes for every
// instrument before the clock advances, so positions opened on day N are
// visible to the sell check on day N+1.
package backtest

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/oturner/hindsight/internal/core"
	"github.com/oturner/hindsight/internal/dates"
	"github.com/oturner/hindsight/internal/portfolio"
	"github.com/oturner/hindsight/internal/strategy"
)

// UnwindPolicy selects how still-open positions are closed once the clock
// passes the end date.
type UnwindPolicy string

const (
	// UnwindBoundary liquidates each remaining position at the next
	// obtainable market price after the end date, recording a synthetic
	// closing trade.
	UnwindBoundary UnwindPolicy = "boundary"

	// UnwindToToday keeps stepping the normal loop past the end date,
	// selling only, until positions close naturally or the real today is
	// reached; leftovers are valued at their last known close and added
	// back to cash without a trade record.
	UnwindToToday UnwindPolicy = "today"
)

// Config holds the parameters for one simulation run. It is immutable for
// the run's duration.
type Config struct {
	Balance      float64
	BuyAmount    float64
	CooldownDays int
	StartDate    time.Time
	EndDate      time.Time
	Unwind       UnwindPolicy

	// Today overrides the real current date; the zero value means now.
	// The today-unwind policy steps toward it.
	Today time.Time
}

// Observer is invoked once per simulated day. It replaces any global
// progress state; day counts from 1 up to total.
type Observer func(date time.Time, day, total int)

// Result is the complete output of one run.
type Result struct {
	Strategy  string
	StartDate time.Time
	EndDate   time.Time
	Portfolio *portfolio.Portfolio
	Stats     Stats
}

// Simulator steps a clock one calendar day at a time across the date range,
// evaluating every instrument against the injected strategy and sizer.
type Simulator struct {
	cfg      Config
	strat    strategy.Strategy
	sizer    strategy.Sizer
	logger   *zap.Logger
	observer Observer
}

// New creates a Simulator. A nil logger is replaced with a no-op one.
func New(cfg Config, strat strategy.Strategy, sizer strategy.Sizer, logger *zap.Logger) *Simulator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Unwind == "" {
		cfg.Unwind = UnwindBoundary
	}
	if cfg.Today.IsZero() {
		cfg.Today = dates.Today()
	}
	return &Simulator{
		cfg:    cfg,
		strat:  strat,
		sizer:  sizer,
		logger: logger,
	}
}

// OnDay registers the per-day observer.
func (s *Simulator) OnDay(observer Observer) {
	s.observer = observer
}

// Run executes the simulation over the given instruments. Instruments are
// evaluated in slice order, which makes runs deterministic for identical
// inputs. The returned result owns the final ledger; remaining open
// positions are unwound per the configured policy before it is handed back.
func (s *Simulator) Run(ctx context.Context, stocks []core.Stock) (*Result, error) {
	if err := s.strat.Prepare(stocks); err != nil {
		return nil, err
	}

	ledger := portfolio.New(s.cfg.Balance)

	tradingDate := s.cfg.StartDate
	interval := 24 * time.Hour
	total := int(s.cfg.EndDate.Sub(s.cfg.StartDate) / interval)
	day := 0

	// keep looping until past end-date
	for !dates.IsPast(tradingDate, s.cfg.EndDate) {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		for _, stock := range stocks {
			if err := s.checkStock(stock, tradingDate, ledger, true); err != nil {
				return nil, err
			}
		}

		day++
		if s.observer != nil {
			s.observer(tradingDate, day, total)
		}
		tradingDate = tradingDate.Add(interval)
	}

	if err := s.unwind(ctx, stocks, ledger, tradingDate); err != nil {
		return nil, err
	}

	stats := CalculateStats(ledger, s.cfg)

	return &Result{
		Strategy:  s.strat.Name(),
		StartDate: s.cfg.StartDate,
		EndDate:   s.cfg.EndDate,
		Portfolio: ledger,
		Stats:     stats,
	}, nil
}

// checkStock runs one instrument through one simulated day.
func (s *Simulator) checkStock(stock core.Stock, date time.Time, ledger *portfolio.Portfolio, allowBuy bool) error {
	// skip pre-listed stocks
	listing, err := dates.Parse(stock.ListingDate)
	if err != nil || !dates.IsPast(date, listing) {
		return nil
	}

	// check we have closing data for this day
	closes := stock.RecentCloses(dates.Format(date), s.strat.Lookback())
	if closes == nil {
		return nil
	}

	decision := strategy.Context{
		Symbol: stock.Symbol,
		Closes: closes,
		Date:   date,
	}

	if _, open := ledger.Positions[stock.Symbol]; open {
		return s.analyzeSelling(decision, ledger)
	}
	if allowBuy {
		s.analyzeBuying(decision, ledger)
	}
	return nil
}

func (s *Simulator) analyzeBuying(decision strategy.Context, ledger *portfolio.Portfolio) {
	if !s.strat.ShouldBuy(decision) {
		return
	}

	// don't re-enter recent trades
	if s.soldRecently(ledger, decision.Symbol, decision.Date) {
		return
	}

	amount := s.sizer.Amount(s.cfg.BuyAmount, decision.Closes)
	price := decision.Latest()
	if amount <= 0 {
		return
	}

	quantity := amount * portfolio.FrictionFactor / price
	date := dates.Format(decision.Date)

	if ledger.ApplyBuy(decision.Symbol, price, quantity, date, amount) {
		s.logger.Debug("bought",
			zap.String("symbol", decision.Symbol),
			zap.String("date", date),
			zap.Float64("price", price),
			zap.Float64("quantity", quantity))
	}
}

func (s *Simulator) analyzeSelling(decision strategy.Context, ledger *portfolio.Portfolio) error {
	position := ledger.Positions[decision.Symbol]

	if !s.strat.ShouldSell(decision, position.Price) {
		return nil
	}

	price := decision.Latest()
	date := dates.Format(decision.Date)
	if err := ledger.ApplySell(decision.Symbol, price, date); err != nil {
		return err
	}

	s.logger.Debug("sold",
		zap.String("symbol", decision.Symbol),
		zap.String("date", date),
		zap.Float64("price", price),
		zap.Float64("entry", position.Price))
	return nil
}

// soldRecently reports whether the symbol's last trade closed within the
// re-entry cooldown.
func (s *Simulator) soldRecently(ledger *portfolio.Portfolio, symbol string, date time.Time) bool {
	if s.cfg.CooldownDays <= 0 {
		return false
	}

	last := ledger.LastTrade(symbol)
	if last == nil || last.IsOpen() {
		return false
	}

	soldDate, err := dates.Parse(last.SellDate)
	if err != nil {
		return false
	}
	return date.Sub(soldDate) < time.Duration(s.cfg.CooldownDays)*24*time.Hour
}

// unwind closes whatever positions remain after the end date.
func (s *Simulator) unwind(ctx context.Context, stocks []core.Stock, ledger *portfolio.Portfolio, tradingDate time.Time) error {
	switch s.cfg.Unwind {
	case UnwindToToday:
		return s.unwindToToday(ctx, stocks, ledger, tradingDate)
	default:
		return s.unwindAtBoundary(stocks, ledger, tradingDate)
	}
}

// unwindAtBoundary liquidates each remaining position at the next market
// price obtainable after the end date. The search date is shared across
// positions, so later liquidations never happen before earlier ones.
func (s *Simulator) unwindAtBoundary(stocks []core.Stock, ledger *portfolio.Portfolio, tradingDate time.Time) error {
	interval := 24 * time.Hour

	for _, symbol := range openSymbols(ledger) {
		stock, ok := findStock(stocks, symbol)
		if !ok {
			return core.WrapError(core.ErrSymbolNotFound, nil)
		}

		// try to find the next obtainable close for this stock
		closes := stock.Closes()
		for !dates.IsPast(tradingDate, s.cfg.Today) {
			if window := stock.RecentCloses(dates.Format(tradingDate), 3); window != nil {
				closes = window
				break
			}
			tradingDate = tradingDate.Add(interval)
		}
		if len(closes) == 0 {
			return core.WrapError(core.ErrNoData, nil)
		}

		price := closes[len(closes)-1]
		date := dates.Format(tradingDate)
		if err := ledger.ApplySell(symbol, price, date); err != nil {
			return err
		}

		s.logger.Info("unwound position",
			zap.String("symbol", symbol),
			zap.String("date", date),
			zap.Float64("price", price))
	}

	return nil
}

// unwindToToday keeps running the daily loop, selling only, until every
// position closes or the real today is reached. Anything still open is
// valued at its last known close and folded back into cash without a trade
// record.
func (s *Simulator) unwindToToday(ctx context.Context, stocks []core.Stock, ledger *portfolio.Portfolio, tradingDate time.Time) error {
	interval := 24 * time.Hour

	for len(ledger.Positions) > 0 && !dates.IsPast(tradingDate, s.cfg.Today) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		for _, stock := range stocks {
			if _, open := ledger.Positions[stock.Symbol]; !open {
				continue
			}
			if err := s.checkStock(stock, tradingDate, ledger, false); err != nil {
				return err
			}
		}
		tradingDate = tradingDate.Add(interval)
	}

	for _, symbol := range openSymbols(ledger) {
		stock, ok := findStock(stocks, symbol)
		if !ok || len(stock.History) == 0 {
			continue
		}

		position := ledger.Positions[symbol]
		last := stock.History[len(stock.History)-1].Close
		value := position.Quantity * last

		ledger.Balance += value
		delete(ledger.Positions, symbol)

		// Logged, not ledgered: the trade never closed inside the run.
		s.logger.Info("valued open position at last close",
			zap.String("symbol", symbol),
			zap.Float64("price", last),
			zap.Float64("value", value))
	}

	return nil
}

// openSymbols lists the symbols with open positions in a stable order.
func openSymbols(ledger *portfolio.Portfolio) []string {
	symbols := make([]string, 0, len(ledger.Positions))
	for symbol := range ledger.Positions {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)
	return symbols
}

func findStock(stocks []core.Stock, symbol string) (core.Stock, bool) {
	for _, stock := range stocks {
		if stock.Symbol == symbol {
			return stock, true
		}
	}
	return core.Stock{}, false
}
