package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/autodoc/internal/runlog"
)

// initStore opens the run log backend selected by config.
func initStore(ctx context.Context) (runlog.Store, error) {
	switch cfg.Store.Driver {
	case "csv":
		path := cfg.Store.Path
		if path == "" {
			path = "report_log.csv"
		}
		return runlog.NewCSV(path), nil
	case "sqlite":
		dsn := cfg.Store.Path
		if dsn == "" {
			dsn = "report_log.db"
		}
		return runlog.NewSQLite(dsn)
	case "postgres":
		return runlog.NewPostgres(ctx, cfg.Store.DatabaseURL, &runlog.PoolConfig{
			MaxConns: cfg.Store.Pool.MaxConns,
			MinConns: cfg.Store.Pool.MinConns,
		})
	case "memory":
		return runlog.NewMemory(), nil
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}
