// Package sqlite is a concrete implementation of the §6 "Result sink"
// collaborator contract, grounded on the teacher's internal/db package
// (db.go's *sql.DB-embedding DB type, migrate.go's golang-migrate/modernc.org
// sqlite wiring). The locator core never imports this package; a caller
// wires it in at the composition root the way the teacher's cmd/ binaries
// construct a *db.DB.
package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/quakelocate/iloc-go/internal/model"
)

// Store wraps a *sql.DB the way the teacher's db.DB embeds one.
type Store struct {
	*sql.DB
}

// Open opens (creating if necessary) a SQLite database at path and applies
// all pending migrations, mirroring the teacher's pattern of opening the
// driver then immediately calling MigrateUp.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store/sqlite: open %s: %w", path, err)
	}
	s := &Store{db}
	if err := s.MigrateUp(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// PutSolution persists one event's Solution and its final phase array,
// the out-of-core "Result sink" §6 describes. Rows are upserted by
// event id so relocating an event overwrites its prior stored result.
func (s *Store) PutSolution(eventID, runID string, sol model.Solution, phases []*model.Phase) error {
	tx, err := s.Begin()
	if err != nil {
		return fmt.Errorf("store/sqlite: begin: %w", err)
	}
	defer tx.Rollback()

	var depdp, depdpErr sql.NullFloat64
	if sol.DepDpValid {
		depdp = sql.NullFloat64{Float64: sol.DepDp, Valid: true}
		depdpErr = sql.NullFloat64{Float64: sol.DepDpError, Valid: true}
	}

	_, err = tx.Exec(`
		INSERT INTO solutions (
			event_id, run_id, converged, diverging, origin_time_unix, lat, lon, depth_km,
			depth_fixed, depth_type, rms_weighted, rms_unweighted, sdobs, ndef, prank,
			depdp, depdp_error, ndp, gt5_candidate, confidence_level, created_unix
		) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)
		ON CONFLICT(event_id) DO UPDATE SET
			run_id=excluded.run_id, converged=excluded.converged, diverging=excluded.diverging,
			origin_time_unix=excluded.origin_time_unix, lat=excluded.lat, lon=excluded.lon,
			depth_km=excluded.depth_km, depth_fixed=excluded.depth_fixed, depth_type=excluded.depth_type,
			rms_weighted=excluded.rms_weighted, rms_unweighted=excluded.rms_unweighted, sdobs=excluded.sdobs,
			ndef=excluded.ndef, prank=excluded.prank, depdp=excluded.depdp, depdp_error=excluded.depdp_error,
			ndp=excluded.ndp, gt5_candidate=excluded.gt5_candidate, confidence_level=excluded.confidence_level,
			created_unix=excluded.created_unix
	`,
		eventID, runID, sol.Converged, sol.Diverging, sol.OriginTime.Unix(), sol.Lat, sol.Lon, sol.Depth,
		sol.DepthFixed, string(sol.DepthType), sol.RMSWeighted, sol.RMSUnweighted, sol.Sdobs, sol.Ndef, sol.Prank,
		depdp, depdpErr, sol.Ndp, sol.GT5Candidate, sol.ConfidenceLevel, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("store/sqlite: insert solution: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM phases WHERE event_id = ?`, eventID); err != nil {
		return fmt.Errorf("store/sqlite: clear phases: %w", err)
	}
	stmt, err := tx.Prepare(`INSERT INTO phases (event_id, reading_id, station_id, phase, delta_deg, time_residual, time_defining) VALUES (?,?,?,?,?,?,?)`)
	if err != nil {
		return fmt.Errorf("store/sqlite: prepare phase insert: %w", err)
	}
	defer stmt.Close()
	for _, p := range phases {
		if _, err := stmt.Exec(eventID, p.ReadingID, p.StationID, p.Phase, p.Delta, p.TimeResidual, p.TimeDefining); err != nil {
			return fmt.Errorf("store/sqlite: insert phase: %w", err)
		}
	}

	return tx.Commit()
}
