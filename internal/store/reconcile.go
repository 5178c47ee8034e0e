// File path: internal/store/reconcile.go
package store

import (
	"context"
	"database/sql"
	"fmt"
)

// ReconcileAggregates recomputes the cached species fields from the latest
// census record per species (latest census_date, ties broken by highest
// record id) and rewrites any that drifted. Concurrent census submissions
// race last-commit-wins on those fields; this repairs stragglers. Returns
// the number of species rows corrected.
func (s *Store) ReconcileAggregates(ctx context.Context) (int, error) {
	if err := s.ensureReady(); err != nil {
		return 0, err
	}
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	tx, err := s.db.BeginTxx(ctx, &sql.TxOptions{})
	if err != nil {
		return 0, &TransactionError{Op: "begin reconcile", Err: err}
	}
	committed := false
	defer func() {
		if !committed {
			tx.Rollback()
		}
	}()

	latest := []struct {
		SpeciesID  int64  `db:"species_id"`
		Count      int64  `db:"count"`
		CensusDate string `db:"census_date"`
	}{}
	query := `SELECT c.species_id, c.count, c.census_date
                FROM census_records c
                WHERE c.record_id = (
                        SELECT c2.record_id FROM census_records c2
                        WHERE c2.species_id = c.species_id
                        ORDER BY c2.census_date DESC, c2.record_id DESC
                        LIMIT 1
                )`
	if err := tx.SelectContext(ctx, &latest, query); err != nil {
		return 0, fmt.Errorf("select latest census per species: %w", err)
	}

	fixed := 0
	update := tx.Rebind(`UPDATE species SET population_count = ?, last_census_date = ?
                WHERE species_id = ?
                AND (population_count != ? OR last_census_date IS NULL OR last_census_date != ?)`)
	for _, rec := range latest {
		res, err := tx.ExecContext(ctx, update, rec.Count, rec.CensusDate, rec.SpeciesID, rec.Count, rec.CensusDate)
		if err != nil {
			return 0, &TransactionError{Op: "reconcile species aggregates", Err: err}
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return 0, &TransactionError{Op: "reconcile species aggregates", Err: err}
		}
		fixed += int(affected)
	}

	if err := tx.Commit(); err != nil {
		return 0, &TransactionError{Op: "commit reconcile", Err: err}
	}
	committed = true
	return fixed, nil
}
