// Package diag persists per-run diagnostics of the diffusion scheme:
// sweep counters and optional per-face, per-layer flux arrays, stored in a
// SQLite database for later inspection.
package diag

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/halocline-data/epineutral/internal/neutral"

	_ "modernc.org/sqlite"
)

// Store wraps the diagnostics database.
type Store struct {
	*sql.DB
}

// Open opens (creating if needed) the diagnostics database at path and
// brings its schema up to date.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	s := &Store{db}
	if err := s.MigrateUp(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate diagnostics schema: %w", err)
	}

	log.Println("initialized diagnostics database schema")
	return s, nil
}

// RunInfo describes one diffusion run for the runs table.
type RunInfo struct {
	Columns         int
	Order           string
	CoefficientMode string
	RootFindMethod  string
	Kappa           float64
	Dt              float64
}

// BeginRun inserts a run record and returns its generated run ID.
func (s *Store) BeginRun(info RunInfo) (string, error) {
	runID := uuid.NewString()
	_, err := s.Exec(
		`INSERT INTO runs (run_id, started_unix_nanos, columns, recon_order, coefficient_mode, rootfind_method, kappa, dt)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, time.Now().UnixNano(), info.Columns, info.Order, info.CoefficientMode, info.RootFindMethod, info.Kappa, info.Dt,
	)
	if err != nil {
		return "", err
	}
	return runID, nil
}

// RecordStep persists one step's counters and, when withFluxes is set, its
// per-face flux samples.
func (s *Store) RecordStep(runID string, step int, d *neutral.Diagnostics, withFluxes bool) error {
	if d == nil {
		return nil
	}
	_, err := s.Exec(
		`INSERT INTO steps (run_id, step, sublayers, root_finds, snaps, truncated_sweeps, limiter_hits, unstable_cells)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, step, d.Sublayers, d.RootFinds, d.Snaps, d.TruncatedSweeps, d.LimiterHits, d.UnstableCells,
	)
	if err != nil {
		return err
	}
	if !withFluxes || len(d.Fluxes) == 0 {
		return nil
	}

	tx, err := s.Begin()
	if err != nil {
		return err
	}
	stmt, err := tx.Prepare(`INSERT INTO face_flux (run_id, step, face, col, tracer, layer, delta) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()
	for _, f := range d.Fluxes {
		if _, err := stmt.Exec(runID, step, f.Face, f.Column, f.Tracer, f.Layer, f.Delta); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// StepSummary is one row of the steps table.
type StepSummary struct {
	Step            int
	Sublayers       int
	RootFinds       int
	Snaps           int
	TruncatedSweeps int
	LimiterHits     int
	UnstableCells   int
}

// StepSummaries returns the recorded counters of a run in step order.
func (s *Store) StepSummaries(runID string) ([]StepSummary, error) {
	rows, err := s.Query(
		`SELECT step, sublayers, root_finds, snaps, truncated_sweeps, limiter_hits, unstable_cells
		 FROM steps WHERE run_id = ? ORDER BY step`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []StepSummary
	for rows.Next() {
		var st StepSummary
		if err := rows.Scan(&st.Step, &st.Sublayers, &st.RootFinds, &st.Snaps,
			&st.TruncatedSweeps, &st.LimiterHits, &st.UnstableCells); err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

// FluxRow is one row of the face_flux table.
type FluxRow struct {
	Step   int
	Face   int
	Column int
	Tracer int
	Layer  int
	Delta  float64
}

// FluxesForStep returns the recorded flux samples of one step.
func (s *Store) FluxesForStep(runID string, step int) ([]FluxRow, error) {
	rows, err := s.Query(
		`SELECT step, face, col, tracer, layer, delta FROM face_flux
		 WHERE run_id = ? AND step = ? ORDER BY face, col, tracer, layer`, runID, step)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []FluxRow
	for rows.Next() {
		var f FluxRow
		if err := rows.Scan(&f.Step, &f.Face, &f.Column, &f.Tracer, &f.Layer, &f.Delta); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// LatestRun returns the run ID of the most recently started run.
func (s *Store) LatestRun() (string, error) {
	var runID string
	err := s.QueryRow(`SELECT run_id FROM runs ORDER BY started_unix_nanos DESC LIMIT 1`).Scan(&runID)
	if err != nil {
		return "", err
	}
	return runID, nil
}
