package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oturner/hindsight/internal/portfolio"
)

func openTestRecorder(t *testing.T) *SQLiteRecorder {
	t.Helper()
	r, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })
	return r
}

func TestRecordRun(t *testing.T) {
	r := openTestRecorder(t)

	run := &RunRecord{
		Strategy:     "trend",
		StartDate:    "2015-01-01",
		EndDate:      "2020-08-01",
		FinalBalance: 1234.5,
		TotalReturn:  23.45,
		WinRate:      60,
		Trades: []portfolio.Trade{
			{Symbol: "ABC", BuyPrice: 2.0, BuyDate: "2016-03-01", SellPrice: 2.5, SellDate: "2016-04-01", Quantity: 99.5},
			{Symbol: "XYZ", BuyPrice: 5.0, BuyDate: "2017-01-10", Quantity: 40},
		},
	}

	require.NoError(t, r.RecordRun(run))
	assert.NotEmpty(t, run.ID, "an empty run ID should be assigned")

	var runs int
	require.NoError(t, r.db.QueryRow(`SELECT COUNT(*) FROM runs`).Scan(&runs))
	assert.Equal(t, 1, runs)

	var trades int
	require.NoError(t, r.db.QueryRow(`SELECT COUNT(*) FROM trades WHERE run_id = ?`, run.ID).Scan(&trades))
	assert.Equal(t, 2, trades)

	var sellDate string
	require.NoError(t, r.db.QueryRow(
		`SELECT sell_date FROM trades WHERE symbol = ?`, "XYZ").Scan(&sellDate))
	assert.Empty(t, sellDate, "open trades keep an empty sell date")
}

func TestRecordRun_KeepsProvidedID(t *testing.T) {
	r := openTestRecorder(t)

	run := &RunRecord{ID: "run-42", Strategy: "meanrev", StartDate: "2015-01-01", EndDate: "2016-01-01"}
	require.NoError(t, r.RecordRun(run))
	assert.Equal(t, "run-42", run.ID)
}

func TestNoopRecorder(t *testing.T) {
	var r Recorder = NoopRecorder{}
	assert.NoError(t, r.RecordRun(&RunRecord{}))
	assert.NoError(t, r.Close())
}
