package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

// DBTX is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type AssetRow struct {
	ID         int32
	Ticker     string
	Name       string
	Type       string
	CreatedAt  *time.Time
	ModifiedAt *time.Time
}

const getAssetByTicker = `-- name: GetAssetByTicker :one
SELECT id, ticker, name, type, created_at, modified_at
FROM assets
WHERE ticker = $1`

func (q *Queries) GetAssetByTicker(ctx context.Context, ticker string) (AssetRow, error) {
	var i AssetRow
	err := q.db.QueryRow(ctx, getAssetByTicker, ticker).Scan(
		&i.ID,
		&i.Ticker,
		&i.Name,
		&i.Type,
		&i.CreatedAt,
		&i.ModifiedAt,
	)
	return i, err
}

type GetAggregatesParams struct {
	TimeBucket string
	AssetID    int32
	Starttime  *time.Time
	Endtime    *time.Time
}

type GetAggregatesRow struct {
	Bucket  *time.Time
	AssetID int32
	Open    decimal.Decimal
	High    decimal.Decimal
	Low     decimal.Decimal
	Close   decimal.Decimal
	Volume  decimal.Decimal
}

// Buckets are built with TimescaleDB's time_bucket/first/last.
const getAggregates = `-- name: GetAggregates :many
SELECT time_bucket($1::text::interval, timestamp) AS bucket,
       asset_id,
       first(open, timestamp)  AS open,
       max(high)               AS high,
       min(low)                AS low,
       last(close, timestamp)  AS close,
       sum(volume)::numeric    AS volume
FROM candles
WHERE asset_id = $2
  AND timestamp >= $3
  AND ($4::timestamptz IS NULL OR timestamp <= $4)
GROUP BY bucket, asset_id
ORDER BY bucket`

func (q *Queries) GetAggregates(ctx context.Context, arg GetAggregatesParams) ([]GetAggregatesRow, error) {
	rows, err := q.db.Query(ctx, getAggregates, arg.TimeBucket, arg.AssetID, arg.Starttime, arg.Endtime)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []GetAggregatesRow
	for rows.Next() {
		var i GetAggregatesRow
		if err := rows.Scan(
			&i.Bucket,
			&i.AssetID,
			&i.Open,
			&i.High,
			&i.Low,
			&i.Close,
			&i.Volume,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

type UpsertStrategyParams struct {
	Name        string
	Description string
	Type        string
	Parameters  []byte
}

const upsertStrategy = `-- name: UpsertStrategy :one
INSERT INTO strategies (name, description, type, parameters)
VALUES ($1, $2, $3, $4::jsonb)
ON CONFLICT (name) DO UPDATE
    SET type = EXCLUDED.type, parameters = EXCLUDED.parameters
RETURNING id`

func (q *Queries) UpsertStrategy(ctx context.Context, arg UpsertStrategyParams) (int32, error) {
	var id int32
	err := q.db.QueryRow(ctx, upsertStrategy, arg.Name, arg.Description, arg.Type, arg.Parameters).Scan(&id)
	return id, err
}

type InsertBacktestResultParams struct {
	StrategyID     int32
	Symbol         string
	StartDate      time.Time
	EndDate        time.Time
	InitialCapital decimal.Decimal
	FinalCapital   decimal.Decimal
	TotalReturn    decimal.Decimal
	SharpeRatio    decimal.Decimal
	MaxDrawdown    decimal.Decimal
	WinRate        decimal.Decimal
	TotalTrades    int32
	Trades         []byte
}

const insertBacktestResult = `-- name: InsertBacktestResult :one
INSERT INTO backtest_results (strategy_id, symbol, start_date, end_date, initial_capital, final_capital,
                              total_return, sharpe_ratio, max_drawdown, win_rate, total_trades, trades)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12::jsonb)
RETURNING id, created_at`

func (q *Queries) InsertBacktestResult(ctx context.Context, arg InsertBacktestResultParams) (int32, *time.Time, error) {
	var id int32
	var createdAt *time.Time
	err := q.db.QueryRow(ctx, insertBacktestResult,
		arg.StrategyID,
		arg.Symbol,
		arg.StartDate,
		arg.EndDate,
		arg.InitialCapital,
		arg.FinalCapital,
		arg.TotalReturn,
		arg.SharpeRatio,
		arg.MaxDrawdown,
		arg.WinRate,
		arg.TotalTrades,
		arg.Trades,
	).Scan(&id, &createdAt)
	return id, createdAt, err
}

type ListBacktestResultsRow struct {
	ID             int32
	StrategyName   string
	StrategyType   string
	Parameters     []byte
	Symbol         string
	StartDate      time.Time
	EndDate        time.Time
	InitialCapital decimal.Decimal
	FinalCapital   decimal.Decimal
	TotalReturn    decimal.Decimal
	SharpeRatio    decimal.Decimal
	MaxDrawdown    decimal.Decimal
	WinRate        decimal.Decimal
	TotalTrades    int32
	Trades         []byte
	CreatedAt      *time.Time
}

const listBacktestResults = `-- name: ListBacktestResults :many
SELECT r.id, s.name, s.type, s.parameters, r.symbol, r.start_date, r.end_date, r.initial_capital,
       r.final_capital, r.total_return, r.sharpe_ratio, r.max_drawdown, r.win_rate, r.total_trades,
       r.trades, r.created_at
FROM backtest_results r
JOIN strategies s ON s.id = r.strategy_id
ORDER BY r.created_at DESC, r.id DESC
LIMIT $1`

func (q *Queries) ListBacktestResults(ctx context.Context, limit int32) ([]ListBacktestResultsRow, error) {
	rows, err := q.db.Query(ctx, listBacktestResults, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ListBacktestResultsRow
	for rows.Next() {
		var i ListBacktestResultsRow
		if err := rows.Scan(
			&i.ID,
			&i.StrategyName,
			&i.StrategyType,
			&i.Parameters,
			&i.Symbol,
			&i.StartDate,
			&i.EndDate,
			&i.InitialCapital,
			&i.FinalCapital,
			&i.TotalReturn,
			&i.SharpeRatio,
			&i.MaxDrawdown,
			&i.WinRate,
			&i.TotalTrades,
			&i.Trades,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
