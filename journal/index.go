package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// DefaultResultLimit bounds Results when the query sets no limit.
const DefaultResultLimit = 50

// LevelResult is one solved level.
type LevelResult struct {
	RunID       string    `json:"run_id"`
	SessionID   string    `json:"session_id"`
	PackID      string    `json:"pack_id"`
	LevelIndex  int       `json:"level_index"`
	LevelName   string    `json:"level_name"`
	MoveCount   int       `json:"move_count"`
	Moves       string    `json:"moves,omitempty"`
	CompletedAt time.Time `json:"completed_at"`
}

// ResultQuery filters Results. Empty fields match everything.
type ResultQuery struct {
	RunID     string
	SessionID string
	PackID    string
	Limit     int
}

// Run is one process lifetime of the journal.
type Run struct {
	RunID     string     `json:"run_id"`
	StartedAt time.Time  `json:"started_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
	StreamDir string     `json:"stream_dir"`
}

// Index is the SQLite side of the journal.
type Index struct {
	db *sql.DB
}

// OpenIndex opens or creates the index database at path.
func OpenIndex(path string) (*Index, error) {
	if path == "" {
		return nil, errors.New("empty index path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Index{db: db}, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			run_id TEXT PRIMARY KEY,
			started_at TEXT NOT NULL,
			ended_at TEXT,
			stream_dir TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS level_results (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL,
			session_id TEXT NOT NULL,
			pack_id TEXT NOT NULL,
			level_index INTEGER NOT NULL,
			level_name TEXT NOT NULL,
			move_count INTEGER NOT NULL,
			moves TEXT NOT NULL,
			completed_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS level_results_session ON level_results(session_id);`,
		`CREATE INDEX IF NOT EXISTS level_results_pack ON level_results(pack_id, level_index);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (x *Index) Close() error {
	return x.db.Close()
}

// StartRun records the start of a run.
func (x *Index) StartRun(ctx context.Context, run Run) error {
	_, err := x.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO runs(run_id,started_at,stream_dir) VALUES(?,?,?)`,
		run.RunID, formatTime(run.StartedAt), run.StreamDir)
	return err
}

// EndRun stamps the end time of a run.
func (x *Index) EndRun(ctx context.Context, runID string, endedAt time.Time) error {
	_, err := x.db.ExecContext(ctx,
		`UPDATE runs SET ended_at=? WHERE run_id=?`,
		formatTime(endedAt), runID)
	return err
}

// Runs returns the most recent runs first.
func (x *Index) Runs(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = DefaultResultLimit
	}
	rows, err := x.db.QueryContext(ctx,
		`SELECT run_id,started_at,ended_at,stream_dir FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var (
			r       Run
			started string
			ended   sql.NullString
		)
		if err := rows.Scan(&r.RunID, &started, &ended, &r.StreamDir); err != nil {
			return nil, err
		}
		r.StartedAt = parseTime(started)
		if ended.Valid {
			t := parseTime(ended.String)
			r.EndedAt = &t
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// RecordResult inserts one solved level.
func (x *Index) RecordResult(ctx context.Context, r LevelResult) error {
	_, err := x.db.ExecContext(ctx,
		`INSERT INTO level_results(run_id,session_id,pack_id,level_index,level_name,move_count,moves,completed_at) VALUES(?,?,?,?,?,?,?,?)`,
		r.RunID, r.SessionID, r.PackID, r.LevelIndex, r.LevelName, r.MoveCount, r.Moves, formatTime(r.CompletedAt))
	if err != nil {
		return fmt.Errorf("record level result: %w", err)
	}
	return nil
}

// Results returns solved levels matching q, newest first.
func (x *Index) Results(ctx context.Context, q ResultQuery) ([]LevelResult, error) {
	var (
		where []string
		args  []any
	)
	if q.RunID != "" {
		where = append(where, "run_id=?")
		args = append(args, q.RunID)
	}
	if q.SessionID != "" {
		where = append(where, "session_id=? COLLATE NOCASE")
		args = append(args, q.SessionID)
	}
	if q.PackID != "" {
		where = append(where, "pack_id=?")
		args = append(args, q.PackID)
	}
	limit := q.Limit
	if limit <= 0 {
		limit = DefaultResultLimit
	}

	query := `SELECT run_id,session_id,pack_id,level_index,level_name,move_count,moves,completed_at FROM level_results`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := x.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []LevelResult{}
	for rows.Next() {
		var (
			r         LevelResult
			completed string
		)
		if err := rows.Scan(&r.RunID, &r.SessionID, &r.PackID, &r.LevelIndex, &r.LevelName, &r.MoveCount, &r.Moves, &completed); err != nil {
			return nil, err
		}
		r.CompletedAt = parseTime(completed)
		out = append(out, r)
	}
	return out, rows.Err()
}

// BestResult returns the fewest-moves result for a level of a pack, or
// false when the level was never solved.
func (x *Index) BestResult(ctx context.Context, packID string, levelIndex int) (LevelResult, bool, error) {
	row := x.db.QueryRowContext(ctx,
		`SELECT run_id,session_id,pack_id,level_index,level_name,move_count,moves,completed_at FROM level_results
		 WHERE pack_id=? AND level_index=? ORDER BY move_count ASC, id ASC LIMIT 1`, packID, levelIndex)

	var (
		r         LevelResult
		completed string
	)
	err := row.Scan(&r.RunID, &r.SessionID, &r.PackID, &r.LevelIndex, &r.LevelName, &r.MoveCount, &r.Moves, &completed)
	if errors.Is(err, sql.ErrNoRows) {
		return LevelResult{}, false, nil
	}
	if err != nil {
		return LevelResult{}, false, err
	}
	r.CompletedAt = parseTime(completed)
	return r, true, nil
}

// timeLayout keeps a fixed width so stored times sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}
