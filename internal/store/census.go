// File path: internal/store/census.go
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// CensusInput carries the writable fields of a census record.
type CensusInput struct {
	SpeciesID  int64
	LocationID int64
	ObserverID int64
	Count      int64
	CensusDate string
	Notes      string
}

func (in *CensusInput) validate() error {
	if in.SpeciesID <= 0 {
		return validationf("species_id is required")
	}
	if in.LocationID <= 0 {
		return validationf("location_id is required")
	}
	if in.ObserverID <= 0 {
		return validationf("observer_id is required")
	}
	if in.Count < 0 {
		return validationf("count must not be negative")
	}
	if in.CensusDate == "" {
		return validationf("census_date is required")
	}
	return checkDate(in.CensusDate)
}

// RecordCensus inserts a census record and overwrites the owning species'
// population_count and last_census_date, atomically. Either both writes
// commit or neither persists.
func (s *Store) RecordCensus(ctx context.Context, in CensusInput) (int64, error) {
	if err := s.ensureReady(); err != nil {
		return 0, err
	}
	if err := in.validate(); err != nil {
		return 0, err
	}
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	tx, err := s.db.BeginTxx(ctx, &sql.TxOptions{})
	if err != nil {
		return 0, &TransactionError{Op: "begin census write", Err: err}
	}
	committed := false
	defer func() {
		if !committed {
			tx.Rollback()
		}
	}()

	var id int64
	insert := tx.Rebind(`INSERT INTO census_records (species_id, location_id, observer_id, count, census_date, notes)
                VALUES (?, ?, ?, ?, ?, ?) RETURNING record_id`)
	err = tx.QueryRowxContext(ctx, insert,
		in.SpeciesID, in.LocationID, in.ObserverID, in.Count, in.CensusDate, in.Notes,
	).Scan(&id)
	if err != nil {
		return 0, classifyWriteError("insert census record", "census references", err)
	}

	if err := updateSpeciesAggregates(ctx, tx, in.SpeciesID, in.Count, in.CensusDate); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, &TransactionError{Op: "commit census write", Err: err}
	}
	committed = true
	return id, nil
}

// UpdateCensus rewrites an existing census record and re-triggers the species
// aggregate overwrite, with the same atomicity contract as RecordCensus.
// A missing record is detected from the affected-row count inside the
// transaction, not a pre-read.
func (s *Store) UpdateCensus(ctx context.Context, recordID int64, in CensusInput) error {
	if err := s.ensureReady(); err != nil {
		return err
	}
	if err := in.validate(); err != nil {
		return err
	}
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	tx, err := s.db.BeginTxx(ctx, &sql.TxOptions{})
	if err != nil {
		return &TransactionError{Op: "begin census update", Err: err}
	}
	committed := false
	defer func() {
		if !committed {
			tx.Rollback()
		}
	}()

	update := tx.Rebind(`UPDATE census_records
                SET species_id = ?, location_id = ?, observer_id = ?, count = ?, census_date = ?, notes = ?
                WHERE record_id = ?`)
	res, err := tx.ExecContext(ctx, update,
		in.SpeciesID, in.LocationID, in.ObserverID, in.Count, in.CensusDate, in.Notes, recordID,
	)
	if err != nil {
		return classifyWriteError("update census record", "census references", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return &TransactionError{Op: "update census record", Err: err}
	}
	if affected == 0 {
		return ErrNotFound
	}

	if err := updateSpeciesAggregates(ctx, tx, in.SpeciesID, in.Count, in.CensusDate); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return &TransactionError{Op: "commit census update", Err: err}
	}
	committed = true
	return nil
}

// updateSpeciesAggregates is step two of the compound write: last-write-wins
// on the species cache fields.
func updateSpeciesAggregates(ctx context.Context, tx txExecer, speciesID, count int64, censusDate string) error {
	query := tx.Rebind(`UPDATE species SET population_count = ?, last_census_date = ? WHERE species_id = ?`)
	res, err := tx.ExecContext(ctx, query, count, censusDate, speciesID)
	if err != nil {
		return &TransactionError{Op: "update species aggregates", Err: err}
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return &TransactionError{Op: "update species aggregates", Err: err}
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// txExecer is the sqlx.Tx surface the compound writes need.
type txExecer interface {
	Rebind(query string) string
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// GetCensusRecord returns one census record by id.
func (s *Store) GetCensusRecord(ctx context.Context, id int64) (*CensusRecord, error) {
	if err := s.ensureReady(); err != nil {
		return nil, err
	}
	ctx, cancel := s.opCtx(ctx)
	defer cancel()
	var rec CensusRecord
	query := s.rebind(`SELECT * FROM census_records WHERE record_id = ?`)
	if err := s.db.GetContext(ctx, &rec, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select census record: %w", err)
	}
	return &rec, nil
}

// ListCensusRecords returns every census record joined with the names of its
// referenced species, location and observer.
func (s *Store) ListCensusRecords(ctx context.Context) ([]CensusRecordDetail, error) {
	if err := s.ensureReady(); err != nil {
		return nil, err
	}
	ctx, cancel := s.opCtx(ctx)
	defer cancel()
	records := []CensusRecordDetail{}
	query := `SELECT cr.*, s.name AS species_name, l.name AS location_name, o.name AS observer_name
                FROM census_records cr
                INNER JOIN species s ON cr.species_id = s.species_id
                INNER JOIN locations l ON cr.location_id = l.location_id
                INNER JOIN observers o ON cr.observer_id = o.observer_id
                ORDER BY cr.census_date DESC, cr.record_id DESC`
	if err := s.db.SelectContext(ctx, &records, query); err != nil {
		return nil, fmt.Errorf("select census records: %w", err)
	}
	return records, nil
}

// CensusDates returns the distinct census dates on record, newest first.
func (s *Store) CensusDates(ctx context.Context) ([]string, error) {
	if err := s.ensureReady(); err != nil {
		return nil, err
	}
	ctx, cancel := s.opCtx(ctx)
	defer cancel()
	dates := []string{}
	if err := s.db.SelectContext(ctx, &dates, `SELECT DISTINCT census_date FROM census_records ORDER BY census_date DESC`); err != nil {
		return nil, fmt.Errorf("select census dates: %w", err)
	}
	return dates, nil
}
