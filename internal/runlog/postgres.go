package runlog

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/autodoc/internal/db"
	"github.com/sells-group/autodoc/internal/model"
)

// PostgresStore implements Store using pgxpool. Meant for deployments where
// several workers share one log.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// preparedStatements lists queries to prepare on each new connection for
// faster execution of the hot store operations.
var preparedStatements = map[string]string{
	"insert_log_entry": `INSERT INTO report_log (report_id, project, engineer, component_count, status, generated_at, output_path) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
	"read_log":         `SELECT report_id, project, engineer, component_count, status, generated_at, output_path FROM report_log ORDER BY seq`,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "runlog: parse postgres config")
	}

	// Apply pool sizing from config with sensible defaults.
	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	// Prepare frequently-used statements on each new connection.
	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "runlog: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "runlog: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "runlog: ping postgres")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS report_log (
	seq             BIGSERIAL PRIMARY KEY,
	report_id       TEXT NOT NULL,
	project         TEXT NOT NULL,
	engineer        TEXT NOT NULL DEFAULT '',
	component_count INTEGER NOT NULL DEFAULT 0,
	status          TEXT NOT NULL,
	generated_at    TIMESTAMPTZ NOT NULL,
	output_path     TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_report_log_project ON report_log(project);
CREATE INDEX IF NOT EXISTS idx_report_log_generated_at ON report_log(generated_at);
`

func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "runlog: ping postgres")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "runlog: migrate postgres")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) Append(ctx context.Context, entry model.LogEntry) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO report_log (report_id, project, engineer, component_count, status, generated_at, output_path)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		entry.ReportID, entry.Project, entry.Engineer, entry.ComponentCount,
		string(entry.Status), entry.GeneratedAt.UTC(), entry.OutputPath,
	)
	return eris.Wrap(err, "runlog: insert entry")
}

func (s *PostgresStore) ReadAll(ctx context.Context) ([]model.LogEntry, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT report_id, project, engineer, component_count, status, generated_at, output_path
		 FROM report_log ORDER BY seq`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "runlog: read entries")
	}
	defer rows.Close()

	var entries []model.LogEntry
	for rows.Next() {
		var e model.LogEntry
		var status string
		if err := rows.Scan(&e.ReportID, &e.Project, &e.Engineer, &e.ComponentCount, &status, &e.GeneratedAt, &e.OutputPath); err != nil {
			return nil, eris.Wrap(err, "runlog: scan entry")
		}
		e.Status = model.RunStatus(status)
		e.GeneratedAt = e.GeneratedAt.UTC()
		entries = append(entries, e)
	}
	return entries, eris.Wrap(rows.Err(), "runlog: iterate entries")
}

func (s *PostgresStore) Stats(ctx context.Context) (*model.Stats, error) {
	entries, err := s.ReadAll(ctx)
	if err != nil {
		return nil, err
	}
	return computeStats(entries), nil
}
