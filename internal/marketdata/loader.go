// Package marketdata loads stock listings and their daily price history from
// disk. A listings JSON file names the instruments; each instrument's
// candles come from <history dir>/<SYMBOL>.csv in Date,Open,High,Low,Close,
// Volume order. Everything is materialized in memory before the simulation
// starts.
package marketdata

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/oturner/hindsight/internal/core"
	"github.com/oturner/hindsight/internal/dates"
)

// Loader reads instruments and their histories from the local filesystem.
type Loader struct {
	listingsPath string
	historyDir   string
	logger       *zap.Logger
}

// NewLoader creates a Loader. A nil logger is replaced with a no-op one.
func NewLoader(listingsPath, historyDir string, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{
		listingsPath: listingsPath,
		historyDir:   historyDir,
		logger:       logger,
	}
}

// Load reads the listings file and attaches each stock's history. A stock
// whose history file is missing or unreadable is skipped with a warning
// rather than failing the whole load; a stock with an invalid listing entry
// is dropped the same way.
func (l *Loader) Load() ([]core.Stock, error) {
	raw, err := os.ReadFile(l.listingsPath)
	if err != nil {
		return nil, fmt.Errorf("reading listings: %w", err)
	}

	var listed []core.Stock
	if err := json.Unmarshal(raw, &listed); err != nil {
		return nil, fmt.Errorf("parsing listings: %w", err)
	}

	stocks := make([]core.Stock, 0, len(listed))
	for _, stock := range listed {
		if !stock.IsValid() {
			l.logger.Warn("skipping invalid listing", zap.String("symbol", stock.Symbol))
			continue
		}

		history, err := l.loadHistory(stock)
		if err != nil {
			l.logger.Warn("skipping stock without usable history",
				zap.String("symbol", stock.Symbol),
				zap.Error(err))
			continue
		}

		stock.History = history
		stocks = append(stocks, stock)
	}

	return stocks, nil
}

// loadHistory parses the stock's CSV history, keeping only candles past the
// listing date.
func (l *Loader) loadHistory(stock core.Stock) ([]core.Candle, error) {
	listing, err := dates.Parse(stock.ListingDate)
	if err != nil {
		return nil, fmt.Errorf("listing date: %w", err)
	}

	path := filepath.Join(l.historyDir, strings.ToUpper(stock.Symbol)+".csv")
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = 6

	// header row
	if _, err := reader.Read(); err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	var history []core.Candle
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading record: %w", err)
		}

		candle, err := parseCandle(record)
		if err != nil {
			return nil, err
		}

		date, err := dates.Parse(candle.Date)
		if err != nil {
			return nil, fmt.Errorf("candle date %q: %w", candle.Date, err)
		}

		// ensure it is past the listing date
		if dates.IsPast(date, listing) {
			history = append(history, candle)
		}
	}

	return history, nil
}

func parseCandle(record []string) (core.Candle, error) {
	values := make([]float64, 5)
	for i, field := range record[1:] {
		value, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return core.Candle{}, fmt.Errorf("parsing %q: %w", field, err)
		}
		values[i] = value
	}

	return core.Candle{
		Date:   record[0],
		Open:   values[0],
		High:   values[1],
		Low:    values[2],
		Close:  values[3],
		Volume: values[4],
	}, nil
}
