package trackers

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	ts "github.com/samuelfneumann/qlambda/timestep"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id      TEXT PRIMARY KEY,
	config_json TEXT,
	created_at  TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS episodes (
	run_id    TEXT NOT NULL,
	episode   INTEGER NOT NULL,
	ep_return REAL NOT NULL,
	length    INTEGER NOT NULL,
	end_type  TEXT NOT NULL,
	PRIMARY KEY (run_id, episode)
);
`

// Episode is a single finished episode stored by a SQLite Tracker
type Episode struct {
	RunID   string
	Episode int
	Return  float64
	Length  int
	EndType string
}

// OpenDB opens the SQLite database at path and creates the tables used
// by SQLite Trackers. A path of ":memory:" opens an in-memory database.
func OpenDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("openDB: %w", err)
	}
	if path == ":memory:" {
		// Each connection to :memory: is a separate database
		db.SetMaxOpenConns(1)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("openDB: migrate: %w", err)
	}
	return db, nil
}

// SQLite tracks the return, length, and ending of every episode of a
// run and writes one row per finished episode to a SQLite database.
// Episodes are written in batches when Save is called.
type SQLite struct {
	db    *sql.DB
	runID string

	episode       int
	currentReturn float64
	pending       []Episode
}

// NewSQLite returns a new SQLite Tracker which records episodes of the
// run runID in db. The run is registered in the runs table along with
// its JSON configuration.
func NewSQLite(db *sql.DB, runID, configJSON string) (*SQLite, error) {
	_, err := db.Exec(
		`INSERT INTO runs (run_id, config_json, created_at) VALUES (?, ?, ?)`,
		runID, configJSON, time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, fmt.Errorf("newSQLite: insert run: %w", err)
	}

	return &SQLite{db: db, runID: runID}, nil
}

// Track accumulates the return of the current episode and caches the
// episode once it has finished
func (s *SQLite) Track(step ts.TimeStep) error {
	if step.First() {
		s.currentReturn = 0
		return nil
	}

	s.currentReturn += step.Reward
	if step.Last() {
		s.pending = append(s.pending, Episode{
			RunID:   s.runID,
			Episode: s.episode,
			Return:  s.currentReturn,
			Length:  step.Number,
			EndType: step.EndType().String(),
		})
		s.episode++
		s.currentReturn = 0
	}
	return nil
}

// Save writes all cached episodes to the database in one transaction
func (s *SQLite) Save() error {
	if len(s.pending) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("save: begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT INTO episodes
		(run_id, episode, ep_return, length, end_type) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("save: prepare: %w", err)
	}
	defer stmt.Close()

	for _, e := range s.pending {
		if _, err := stmt.Exec(e.RunID, e.Episode, e.Return, e.Length,
			e.EndType); err != nil {
			return fmt.Errorf("save: insert episode %d: %w", e.Episode, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save: commit: %w", err)
	}
	s.pending = s.pending[:0]
	return nil
}

// Episodes returns every episode stored for run runID, ordered by
// episode number
func Episodes(db *sql.DB, runID string) ([]Episode, error) {
	rows, err := db.Query(`SELECT run_id, episode, ep_return, length, end_type
		FROM episodes WHERE run_id = ? ORDER BY episode`, runID)
	if err != nil {
		return nil, fmt.Errorf("episodes: query: %w", err)
	}
	defer rows.Close()

	var episodes []Episode
	for rows.Next() {
		var e Episode
		if err := rows.Scan(&e.RunID, &e.Episode, &e.Return, &e.Length,
			&e.EndType); err != nil {
			return nil, fmt.Errorf("episodes: scan: %w", err)
		}
		episodes = append(episodes, e)
	}
	return episodes, rows.Err()
}

// Runs returns the ids of all runs stored in db, oldest first
func Runs(db *sql.DB) ([]string, error) {
	rows, err := db.Query(`SELECT run_id FROM runs ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("runs: query: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("runs: scan: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
