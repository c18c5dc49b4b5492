package runlog

import (
	"context"
	"database/sql"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/autodoc/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "runlog: open sqlite")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, eris.Wrapf(err, "runlog: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS report_log (
	seq             INTEGER PRIMARY KEY AUTOINCREMENT,
	report_id       TEXT NOT NULL,
	project         TEXT NOT NULL,
	engineer        TEXT NOT NULL DEFAULT '',
	component_count INTEGER NOT NULL DEFAULT 0,
	status          TEXT NOT NULL,
	generated_at    DATETIME NOT NULL,
	output_path     TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_report_log_project ON report_log(project);
CREATE INDEX IF NOT EXISTS idx_report_log_generated_at ON report_log(generated_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "runlog: migrate sqlite")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Append(ctx context.Context, entry model.LogEntry) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO report_log (report_id, project, engineer, component_count, status, generated_at, output_path)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.ReportID, entry.Project, entry.Engineer, entry.ComponentCount,
		string(entry.Status), entry.GeneratedAt.UTC(), entry.OutputPath,
	)
	return eris.Wrap(err, "runlog: insert entry")
}

func (s *SQLiteStore) ReadAll(ctx context.Context) ([]model.LogEntry, error) {
	rows, err := s.db.QueryContext(ctx,
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

func (s *SQLiteStore) Stats(ctx context.Context) (*model.Stats, error) {
	entries, err := s.ReadAll(ctx)
	if err != nil {
		return nil, err
	}
	return computeStats(entries), nil
}
