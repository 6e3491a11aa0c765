// Package store keeps backtest results in a local SQLite file, for runs
// without a Postgres database.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"stratlab/types"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite" // Pure-Go SQLite driver.
)

const schema = `
CREATE TABLE IF NOT EXISTS backtest_results (
    id              INTEGER PRIMARY KEY AUTOINCREMENT,
    strategy_name   TEXT NOT NULL,
    strategy_type   TEXT NOT NULL,
    parameters      TEXT NOT NULL,
    symbol          TEXT NOT NULL,
    start_date      TEXT NOT NULL,
    end_date        TEXT NOT NULL,
    initial_capital TEXT NOT NULL,
    final_capital   TEXT NOT NULL,
    total_return    TEXT NOT NULL,
    sharpe_ratio    TEXT NOT NULL,
    max_drawdown    TEXT NOT NULL,
    win_rate        TEXT NOT NULL,
    total_trades    INTEGER NOT NULL,
    trades          TEXT NOT NULL,
    equity_curve    TEXT NOT NULL,
    created_at      TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_backtest_results_created ON backtest_results (created_at);
`

// createdAtLayout is fixed width so that created_at sorts as text.
const createdAtLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteStore implements the runner's result store on a SQLite database.
// Decimals are stored as text so they come back exactly.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath and creates
// its table.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	// SQLite allows one writer; a single connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SQLiteStore{db: db, now: time.Now}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveResult inserts a finished run and returns its id.
func (s *SQLiteStore) SaveResult(ctx context.Context, rec types.StoredResult) (int64, error) {
	params, err := json.Marshal(rec.Parameters)
	if err != nil {
		return 0, fmt.Errorf("encode parameters: %w", err)
	}
	trades, err := json.Marshal(rec.Trades)
	if err != nil {
		return 0, fmt.Errorf("encode trades: %w", err)
	}
	equity, err := json.Marshal(rec.EquityCurve)
	if err != nil {
		return 0, fmt.Errorf("encode equity curve: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO backtest_results (strategy_name, strategy_type, parameters, symbol, start_date, end_date,
			initial_capital, final_capital, total_return, sharpe_ratio, max_drawdown, win_rate,
			total_trades, trades, equity_curve, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.StrategyName,
		rec.StrategyType,
		string(params),
		rec.Symbol,
		rec.StartDate.UTC().Format(time.RFC3339),
		rec.EndDate.UTC().Format(time.RFC3339),
		rec.InitialCapital.String(),
		rec.FinalCapital.String(),
		rec.TotalReturn.String(),
		rec.SharpeRatio.String(),
		rec.MaxDrawdown.String(),
		rec.WinRate.String(),
		rec.TotalTrades,
		string(trades),
		string(equity),
		s.now().UTC().Format(createdAtLayout),
	)
	if err != nil {
		return 0, fmt.Errorf("insert backtest result: %w", err)
	}
	return res.LastInsertId()
}

// ListResults returns up to limit runs, newest first.
func (s *SQLiteStore) ListResults(ctx context.Context, limit int) ([]types.StoredResult, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, strategy_name, strategy_type, parameters, symbol, start_date, end_date,
			initial_capital, final_capital, total_return, sharpe_ratio, max_drawdown, win_rate,
			total_trades, trades, equity_curve, created_at
		FROM backtest_results
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query backtest results: %w", err)
	}
	defer rows.Close()

	out := []types.StoredResult{}
	for rows.Next() {
		rec, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func scanResult(rows *sql.Rows) (types.StoredResult, error) {
	var (
		rec                                   types.StoredResult
		params, trades, equity                string
		start, end, created                   string
		initial, final, ret, sharpe, dd, wins string
	)
	if err := rows.Scan(&rec.ID, &rec.StrategyName, &rec.StrategyType, &params, &rec.Symbol, &start, &end,
		&initial, &final, &ret, &sharpe, &dd, &wins, &rec.TotalTrades, &trades, &equity, &created); err != nil {
		return rec, fmt.Errorf("scan backtest result: %w", err)
	}

	var err error
	parseTime := func(v string, layout string) time.Time {
		t, perr := time.Parse(layout, v)
		if perr != nil && err == nil {
			err = fmt.Errorf("result %d: parse time %q: %w", rec.ID, v, perr)
		}
		return t
	}
	parseDecimal := func(v string) decimal.Decimal {
		d, perr := decimal.NewFromString(v)
		if perr != nil && err == nil {
			err = fmt.Errorf("result %d: parse decimal %q: %w", rec.ID, v, perr)
		}
		return d
	}

	rec.StartDate = parseTime(start, time.RFC3339)
	rec.EndDate = parseTime(end, time.RFC3339)
	rec.CreatedAt = parseTime(created, createdAtLayout)
	rec.InitialCapital = parseDecimal(initial)
	rec.FinalCapital = parseDecimal(final)
	rec.TotalReturn = parseDecimal(ret)
	rec.SharpeRatio = parseDecimal(sharpe)
	rec.MaxDrawdown = parseDecimal(dd)
	rec.WinRate = parseDecimal(wins)
	if err != nil {
		return rec, err
	}

	if err := json.Unmarshal([]byte(params), &rec.Parameters); err != nil {
		return rec, fmt.Errorf("result %d: decode parameters: %w", rec.ID, err)
	}
	if err := json.Unmarshal([]byte(trades), &rec.Trades); err != nil {
		return rec, fmt.Errorf("result %d: decode trades: %w", rec.ID, err)
	}
	if err := json.Unmarshal([]byte(equity), &rec.EquityCurve); err != nil {
		return rec, fmt.Errorf("result %d: decode equity curve: %w", rec.ID, err)
	}
	if rec.Trades == nil {
		rec.Trades = []types.Trade{}
	}
	if rec.EquityCurve == nil {
		rec.EquityCurve = []types.EquityPoint{}
	}
	return rec, nil
}
