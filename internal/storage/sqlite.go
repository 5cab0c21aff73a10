package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	logx "workstarter/pkg/logx"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id        TEXT PRIMARY KEY,
	start     TEXT NOT NULL,
	finished  TEXT NOT NULL,
	tasks     INTEGER NOT NULL,
	succeeded INTEGER NOT NULL,
	failed    INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS run_tasks (
	run_id    TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	idx       INTEGER NOT NULL,
	task_id   TEXT NOT NULL,
	name      TEXT NOT NULL,
	type      TEXT NOT NULL,
	target    TEXT NOT NULL,
	state     TEXT NOT NULL,
	scheduled TEXT NOT NULL,
	started   TEXT,
	finished  TEXT,
	err       TEXT,
	PRIMARY KEY (run_id, idx)
);

CREATE TABLE IF NOT EXISTS events (
	seq     INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id  TEXT NOT NULL,
	task_id TEXT NOT NULL,
	name    TEXT NOT NULL,
	state   TEXT NOT NULL,
	at      TEXT NOT NULL,
	err     TEXT
);
CREATE INDEX IF NOT EXISTS events_run ON events(run_id);
`

type sqliteStore struct {
	db  *sql.DB
	log logx.Logger
}

func openSQLite(cfg Config, log logx.Logger) (Store, error) {
	if strings.TrimSpace(cfg.Path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	path := cfg.Path
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// The agent and the editor may hold the file at once; one connection each.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	busy := cfg.BusyTimeout
	if busy <= 0 {
		busy = 5 * time.Second
	}
	_, _ = db.Exec(fmt.Sprintf("PRAGMA busy_timeout = %d", busy.Milliseconds()))
	_, _ = db.Exec("PRAGMA journal_mode = WAL")
	_, _ = db.Exec("PRAGMA synchronous = NORMAL")
	_, _ = db.Exec("PRAGMA foreign_keys = ON")

	st := &sqliteStore{db: db, log: log}
	if err := st.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return st, nil
}

func (s *sqliteStore) migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

func (s *sqliteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *sqliteStore) AppendRun(ctx context.Context, r RunRecord) error {
	if s == nil || s.db == nil {
		return ErrDisabled
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs(id, start, finished, tasks, succeeded, failed) VALUES(?,?,?,?,?,?)`,
		r.ID, fmtTime(r.Start), fmtTime(r.Finished), r.Tasks, r.Succeeded, r.Failed,
	); err != nil {
		return err
	}
	for _, t := range r.Results {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO run_tasks(run_id, idx, task_id, name, type, target, state, scheduled, started, finished, err)
			 VALUES(?,?,?,?,?,?,?,?,?,?,?)`,
			r.ID, t.Index, t.ID, t.Name, t.Type, t.Target, t.State,
			fmtTime(t.Scheduled), nullTime(t.Started), nullTime(t.Finished), nullStr(t.Error),
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *sqliteStore) AppendEvent(ctx context.Context, e EventRecord) error {
	if s == nil || s.db == nil {
		return ErrDisabled
	}
	if e.At.IsZero() {
		e.At = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO events(run_id, task_id, name, state, at, err) VALUES(?,?,?,?,?,?)`,
		e.RunID, e.TaskID, e.Name, e.State, fmtTime(e.At), nullStr(e.Error),
	)
	return err
}

func (s *sqliteStore) Runs(ctx context.Context, limit int) ([]RunRecord, error) {
	if s == nil || s.db == nil {
		return nil, ErrDisabled
	}
	q := `SELECT id, start, finished, tasks, succeeded, failed FROM runs ORDER BY rowid DESC`
	var args []any
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	var runs []RunRecord
	for rows.Next() {
		var r RunRecord
		var start, finished string
		if err := rows.Scan(&r.ID, &start, &finished, &r.Tasks, &r.Succeeded, &r.Failed); err != nil {
			_ = rows.Close()
			return nil, err
		}
		r.Start = parseTime(start)
		r.Finished = parseTime(finished)
		runs = append(runs, r)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Single connection: the runs cursor must be closed before querying tasks.
	for i := range runs {
		res, err := s.runTasks(ctx, runs[i].ID)
		if err != nil {
			return nil, err
		}
		runs[i].Results = res
	}
	return runs, nil
}

func (s *sqliteStore) runTasks(ctx context.Context, runID string) ([]TaskRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT idx, task_id, name, type, target, state, scheduled, started, finished, err
		 FROM run_tasks WHERE run_id = ? ORDER BY idx`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TaskRecord
	for rows.Next() {
		var t TaskRecord
		var scheduled string
		var started, finished, errStr sql.NullString
		if err := rows.Scan(&t.Index, &t.ID, &t.Name, &t.Type, &t.Target, &t.State, &scheduled, &started, &finished, &errStr); err != nil {
			return nil, err
		}
		t.Scheduled = parseTime(scheduled)
		t.Started = parseTime(started.String)
		t.Finished = parseTime(finished.String)
		t.Error = errStr.String
		out = append(out, t)
	}
	return out, rows.Err()
}

func fmtTime(t time.Time) string { return t.UTC().Format(time.RFC3339Nano) }

func nullTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return fmtTime(t)
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func nullStr(v string) any {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	return v
}
