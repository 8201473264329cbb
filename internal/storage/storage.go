// Package storage persists a ledger of solve runs and their per-input
// outcomes. The database is advisory: a nil *Store disables recording
// without changing pipeline behavior.
package storage

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Store wraps SQLite-backed persistence for solve history.
type Store struct {
	DB *sql.DB
}

// New opens (or creates) the database at path and ensures schema.
func New(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	s := &Store{DB: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) ensureSchema() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS solve_runs (
            id TEXT PRIMARY KEY,
            started_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
            finished_at TIMESTAMP,
            total INTEGER DEFAULT 0,
            solved INTEGER DEFAULT 0,
            unsolved INTEGER DEFAULT 0,
            skipped INTEGER DEFAULT 0
        );`,
		`CREATE TABLE IF NOT EXISTS solve_inputs (
            id TEXT PRIMARY KEY,
            run_id TEXT NOT NULL,
            input TEXT NOT NULL,
            base TEXT,
            status TEXT NOT NULL,
            ra REAL,
            dec REAL,
            field_w REAL,
            field_h REAL,
            field_units TEXT,
            error_message TEXT,
            created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
        );`,
		`CREATE INDEX IF NOT EXISTS idx_solve_inputs_run ON solve_inputs(run_id);`,
		`CREATE INDEX IF NOT EXISTS idx_solve_inputs_input ON solve_inputs(input);`,
	}
	for _, stmt := range stmts {
		if _, err := s.DB.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the underlying DB.
func (s *Store) Close() error {
	if s == nil || s.DB == nil {
		return nil
	}
	return s.DB.Close()
}

// InputRecord captures one processed input's outcome.
type InputRecord struct {
	ID         string
	RunID      string
	Input      string
	Base       string
	Status     string // solved, unsolved, skipped, failed
	RA, Dec    float64
	FieldW     float64
	FieldH     float64
	FieldUnits string
	Error      string
	CreatedAt  time.Time
}

// BeginRun inserts a new run row and returns its id.
func (s *Store) BeginRun() (string, error) {
	if s == nil {
		return "", nil
	}
	id := uuid.NewString()
	_, err := s.DB.Exec(`INSERT INTO solve_runs (id) VALUES (?);`, id)
	if err != nil {
		return "", err
	}
	return id, nil
}

// FinishRun finalizes a run with its aggregate counts.
func (s *Store) FinishRun(runID string, total, solved, unsolved, skipped int) error {
	if s == nil || runID == "" {
		return nil
	}
	_, err := s.DB.Exec(
		`UPDATE solve_runs SET finished_at=CURRENT_TIMESTAMP, total=?, solved=?, unsolved=?, skipped=? WHERE id=?;`,
		total, solved, unsolved, skipped, runID)
	return err
}

// RecordInput persists one input's terminal state.
func (s *Store) RecordInput(rec InputRecord) error {
	if s == nil {
		return nil
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	_, err := s.DB.Exec(
		`INSERT INTO solve_inputs (id, run_id, input, base, status, ra, dec, field_w, field_h, field_units, error_message)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`,
		rec.ID, rec.RunID, rec.Input, rec.Base, rec.Status,
		rec.RA, rec.Dec, rec.FieldW, rec.FieldH, rec.FieldUnits, rec.Error)
	return err
}

// RecentInputs returns the latest input records up to limit.
func (s *Store) RecentInputs(limit int) ([]InputRecord, error) {
	if s == nil {
		return nil, errors.New("store not initialized")
	}
	rows, err := s.DB.Query(
		`SELECT id, run_id, input, base, status, ra, dec, field_w, field_h, field_units, error_message, created_at
         FROM solve_inputs ORDER BY created_at DESC LIMIT ?;`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []InputRecord
	for rows.Next() {
		var rec InputRecord
		var base, units, errMsg sql.NullString
		if err := rows.Scan(&rec.ID, &rec.RunID, &rec.Input, &base, &rec.Status,
			&rec.RA, &rec.Dec, &rec.FieldW, &rec.FieldH, &units, &errMsg, &rec.CreatedAt); err != nil {
			return nil, err
		}
		rec.Base = base.String
		rec.FieldUnits = units.String
		rec.Error = errMsg.String
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}
