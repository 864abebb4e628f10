// Package store persists community detection runs in SQLite so partitions
// can be recomputed later without detecting again.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/gilchrisn/graph-community-filter/pkg/membership"
)

// ErrRunNotFound is returned when a run id is not in the store.
var ErrRunNotFound = errors.New("run not found")

// DB wraps a SQLite database connection.
type DB struct {
	db *sql.DB
}

// Run describes a stored detection run.
type Run struct {
	ID          string    `json:"id" yaml:"id"`
	Detector    string    `json:"detector" yaml:"detector"`
	Fingerprint string    `json:"fingerprint" yaml:"fingerprint"`
	NumNodes    int       `json:"num_nodes" yaml:"num_nodes"`
	CreatedAt   time.Time `json:"created_at" yaml:"created_at"`
}

// Open opens or creates a SQLite database at path. Use ":memory:" for a
// throwaway store.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite doesn't support concurrent writes

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &DB{db: db}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

func createSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			detector TEXT NOT NULL,
			fingerprint TEXT NOT NULL,
			num_nodes INTEGER NOT NULL,
			created_at INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_runs_fingerprint ON runs(fingerprint, detector);

		CREATE TABLE IF NOT EXISTS assignments (
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			node_id TEXT NOT NULL,
			community INTEGER NOT NULL,
			PRIMARY KEY (run_id, node_id)
		);
	`
	_, err := db.Exec(schema)
	return err
}

// SaveRun stores an assignment and returns the new run. nodes fixes the
// order rows are stored in; every node must be assigned.
func (d *DB) SaveRun(detector, fingerprint string, nodes []string, a membership.Assignment) (*Run, error) {
	run := &Run{
		ID:          uuid.NewString(),
		Detector:    detector,
		Fingerprint: fingerprint,
		NumNodes:    len(nodes),
		CreatedAt:   time.Now().UTC().Truncate(time.Second),
	}

	tx, err := d.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`INSERT INTO runs (id, detector, fingerprint, num_nodes, created_at) VALUES (?, ?, ?, ?, ?)`,
		run.ID, run.Detector, run.Fingerprint, run.NumNodes, run.CreatedAt.Unix(),
	); err != nil {
		return nil, fmt.Errorf("inserting run: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO assignments (run_id, position, node_id, community) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return nil, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, id := range nodes {
		c, ok := a[id]
		if !ok {
			return nil, fmt.Errorf("%w: node %q has no community", membership.ErrIncompleteAssignment, id)
		}
		if _, err := stmt.Exec(run.ID, i, id, c); err != nil {
			return nil, fmt.Errorf("inserting assignment for %s: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing run: %w", err)
	}
	return run, nil
}

// LoadRun returns a stored run and its assignment.
func (d *DB) LoadRun(id string) (*Run, membership.Assignment, error) {
	run, err := d.getRun(`SELECT id, detector, fingerprint, num_nodes, created_at FROM runs WHERE id = ?`, id)
	if err != nil {
		return nil, nil, err
	}

	rows, err := d.db.Query(`SELECT node_id, community FROM assignments WHERE run_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, nil, fmt.Errorf("querying assignments: %w", err)
	}
	defer rows.Close()

	a := make(membership.Assignment, run.NumNodes)
	for rows.Next() {
		var node string
		var c int
		if err := rows.Scan(&node, &c); err != nil {
			return nil, nil, fmt.Errorf("scanning assignment: %w", err)
		}
		a[node] = c
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}
	return run, a, nil
}

// LatestRun returns the most recent run for a graph fingerprint and detector.
func (d *DB) LatestRun(fingerprint, detector string) (*Run, error) {
	return d.getRun(`SELECT id, detector, fingerprint, num_nodes, created_at FROM runs
		WHERE fingerprint = ? AND detector = ? ORDER BY created_at DESC, rowid DESC LIMIT 1`,
		fingerprint, detector)
}

// ListRuns returns all runs, newest first.
func (d *DB) ListRuns() ([]Run, error) {
	rows, err := d.db.Query(`SELECT id, detector, fingerprint, num_nodes, created_at FROM runs
		ORDER BY created_at DESC, rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// DeleteRun removes a run and its assignment rows.
func (d *DB) DeleteRun(id string) error {
	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM assignments WHERE run_id = ?`, id); err != nil {
		return fmt.Errorf("deleting assignments: %w", err)
	}
	res, err := tx.Exec(`DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return tx.Commit()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (*Run, error) {
	var run Run
	var created int64
	if err := s.Scan(&run.ID, &run.Detector, &run.Fingerprint, &run.NumNodes, &created); err != nil {
		return nil, err
	}
	run.CreatedAt = time.Unix(created, 0).UTC()
	return &run, nil
}

func (d *DB) getRun(query string, args ...any) (*Run, error) {
	run, err := scanRun(d.db.QueryRow(query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %v", ErrRunNotFound, args)
	}
	if err != nil {
		return nil, fmt.Errorf("querying run: %w", err)
	}
	return run, nil
}
