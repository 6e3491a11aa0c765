package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"stratlab/internal/config"
	"stratlab/internal/repository"
	"stratlab/internal/store"
)

var ErrNoDataSource = errors.New("no data source configured: set database.url or storage.parquet_dir")

// FromConfig opens the data source and result store named by cfg and returns
// a runner over them. Postgres is preferred over parquet files for bars; a
// SQLite path takes precedence over Postgres for results. The returned
// cleanup closes whatever was opened.
func FromConfig(ctx context.Context, cfg *config.Config, logger *slog.Logger, progress io.Writer) (*Runner, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	var (
		source BarSource
		db     *repository.Database
	)
	switch {
	case cfg.Database.URL != "":
		var err error
		db, err = repository.NewDatabase(ctx, cfg.Database.URL)
		if err != nil {
			return nil, cleanup, fmt.Errorf("connect database: %w", err)
		}
		closers = append(closers, db.Close)
		if err := db.Migrate(ctx); err != nil {
			cleanup()
			return nil, func() {}, err
		}
		source = db
		logger.Info("reading bars from postgres")
	case cfg.Storage.ParquetDir != "":
		source = repository.NewParquetSource(cfg.Storage.ParquetDir)
		logger.Info("reading bars from parquet", "dir", cfg.Storage.ParquetDir)
	default:
		return nil, cleanup, ErrNoDataSource
	}

	opts := []Option{
		WithLogger(logger),
		WithMaxWorkers(cfg.Runner.MaxWorkers),
	}
	if progress != nil {
		opts = append(opts, WithProgress(progress))
	}

	switch {
	case cfg.Storage.SQLitePath != "":
		s, err := store.NewSQLiteStore(cfg.Storage.SQLitePath)
		if err != nil {
			cleanup()
			return nil, func() {}, fmt.Errorf("open result store: %w", err)
		}
		closers = append(closers, func() {
			if err := s.Close(); err != nil {
				logger.Warn("close result store", "err", err)
			}
		})
		opts = append(opts, WithStore(s))
	case db != nil:
		opts = append(opts, WithStore(db))
	}

	return New(source, opts...), cleanup, nil
}
