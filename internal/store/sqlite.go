package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.
)

// Compile-time interface check.
var _ Recorder = (*SQLiteRecorder)(nil)

// SQLiteRecorder persists run records to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs
// migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id            TEXT PRIMARY KEY,
			strategy      TEXT NOT NULL,
			start_date    TEXT NOT NULL,
			end_date      TEXT NOT NULL,
			final_balance REAL,
			total_return  REAL,
			annual_return REAL,
			win_rate      REAL
		)`,

		`CREATE TABLE IF NOT EXISTS trades (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id     TEXT NOT NULL REFERENCES runs(id),
			symbol     TEXT NOT NULL,
			buy_price  REAL,
			buy_date   TEXT,
			sell_price REAL,
			sell_date  TEXT,
			quantity   REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_trades_run ON trades(run_id)`,
		`CREATE INDEX IF NOT EXISTS idx_trades_symbol ON trades(symbol)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:30], err)
		}
	}
	return nil
}

// RecordRun inserts the run summary and its trades in one transaction. An
// empty run ID is assigned a fresh UUID.
func (r *SQLiteRecorder) RecordRun(run *RunRecord) error {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(`INSERT INTO runs
		(id, strategy, start_date, end_date, final_balance, total_return, annual_return, win_rate)
		VALUES (?,?,?,?,?,?,?,?)`,
		run.ID, run.Strategy, run.StartDate, run.EndDate,
		run.FinalBalance, run.TotalReturn, run.AnnualReturn, run.WinRate,
	)
	if err != nil {
		return err
	}

	for _, trade := range run.Trades {
		_, err = tx.Exec(`INSERT INTO trades
			(run_id, symbol, buy_price, buy_date, sell_price, sell_date, quantity)
			VALUES (?,?,?,?,?,?,?)`,
			run.ID, trade.Symbol, trade.BuyPrice, trade.BuyDate,
			trade.SellPrice, trade.SellDate, trade.Quantity,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// Close closes the underlying database connection.
func (r *SQLiteRecorder) Close() error {
	return r.db.Close()
}
