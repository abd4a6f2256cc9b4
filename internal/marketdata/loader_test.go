package marketdata

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const listingsJSON = `[
	{"symbol": "abc", "listing_date": "2019-01-02"},
	{"symbol": "GONE", "listing_date": "2019-01-02"},
	{"symbol": "", "listing_date": "2019-01-02"}
]`

const abcCSV = `Date,Open,High,Low,Close,Volume
2019-01-02,1.0,1.1,0.9,1.05,1000
2019-01-03,1.05,1.2,1.0,1.15,1500
2019-01-04,1.15,1.3,1.1,1.25,900
`

func writeFixtures(t *testing.T) (listings, historyDir string) {
	t.Helper()
	dir := t.TempDir()

	listings = filepath.Join(dir, "stocks.json")
	require.NoError(t, os.WriteFile(listings, []byte(listingsJSON), 0644))

	historyDir = filepath.Join(dir, "history")
	require.NoError(t, os.MkdirAll(historyDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(historyDir, "ABC.csv"), []byte(abcCSV), 0644))

	return listings, historyDir
}

func TestLoad(t *testing.T) {
	listings, historyDir := writeFixtures(t)

	loader := NewLoader(listings, historyDir, nil)
	stocks, err := loader.Load()
	require.NoError(t, err)

	// GONE has no history file and the blank symbol is invalid; both skip.
	require.Len(t, stocks, 1)
	stock := stocks[0]
	assert.Equal(t, "abc", stock.Symbol)

	// Candles on or within one day of the listing date fall inside the
	// grace band and are excluded; only 2019-01-04 survives.
	require.Len(t, stock.History, 1)
	assert.Equal(t, "2019-01-04", stock.History[0].Date)
	assert.InDelta(t, 1.25, stock.History[0].Close, 1e-9)
	assert.InDelta(t, 900.0, stock.History[0].Volume, 1e-9)
}

func TestLoad_MissingListings(t *testing.T) {
	loader := NewLoader("/nonexistent/stocks.json", "/nonexistent", nil)
	_, err := loader.Load()
	assert.Error(t, err)
}

func TestLoad_MalformedListings(t *testing.T) {
	dir := t.TempDir()
	listings := filepath.Join(dir, "stocks.json")
	require.NoError(t, os.WriteFile(listings, []byte("not json"), 0644))

	loader := NewLoader(listings, dir, nil)
	_, err := loader.Load()
	assert.Error(t, err)
}

func TestLoad_MalformedHistoryIsSkipped(t *testing.T) {
	listings, historyDir := writeFixtures(t)
	require.NoError(t, os.WriteFile(
		filepath.Join(historyDir, "ABC.csv"),
		[]byte("Date,Open,High,Low,Close,Volume\n2019-01-04,not,a,number,at,all\n"),
		0644))

	loader := NewLoader(listings, historyDir, nil)
	stocks, err := loader.Load()
	require.NoError(t, err)
	assert.Empty(t, stocks)
}
