// File path: internal/store/conservation.go
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// StatusChangeInput carries a conservation status transition request.
type StatusChangeInput struct {
	SpeciesID      int64
	PreviousStatus string
	NewStatus      string
	Reason         string
	ChangedBy      string
}

func (in *StatusChangeInput) validate() error {
	if in.SpeciesID <= 0 {
		return validationf("species_id is required")
	}
	in.PreviousStatus = strings.TrimSpace(in.PreviousStatus)
	in.NewStatus = strings.TrimSpace(in.NewStatus)
	if in.PreviousStatus == "" || in.NewStatus == "" {
		return &ValidationError{
			Msg:     "missing required fields",
			Details: "species_id, previous_status, and new_status are required",
		}
	}
	if !ValidStatus(in.PreviousStatus) || !ValidStatus(in.NewStatus) {
		return &ValidationError{
			Msg:     "invalid status value",
			Details: "status must be one of: " + strings.Join(ConservationStatuses, ", "),
		}
	}
	return nil
}

// RecordStatusChange appends an audit row and overwrites the species'
// conservation status, atomically. Input and species existence are checked
// before the transaction opens; no write happens on a validation failure.
func (s *Store) RecordStatusChange(ctx context.Context, in StatusChangeInput) (int64, error) {
	if err := s.ensureReady(); err != nil {
		return 0, err
	}
	if err := in.validate(); err != nil {
		return 0, err
	}
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	exists, err := speciesExists(ctx, s.db, s.rebind, in.SpeciesID)
	if err != nil {
		return 0, err
	}
	if !exists {
		return 0, ErrNotFound
	}

	tx, err := s.db.BeginTxx(ctx, &sql.TxOptions{})
	if err != nil {
		return 0, &TransactionError{Op: "begin status change", Err: err}
	}
	committed := false
	defer func() {
		if !committed {
			tx.Rollback()
		}
	}()

	var id int64
	insert := tx.Rebind(`INSERT INTO conservation_status_history (species_id, previous_status, new_status, reason, changed_by)
                VALUES (?, ?, ?, ?, ?) RETURNING change_id`)
	err = tx.QueryRowxContext(ctx, insert,
		in.SpeciesID, in.PreviousStatus, in.NewStatus, in.Reason, in.ChangedBy,
	).Scan(&id)
	if err != nil {
		return 0, classifyWriteError("insert status change", "species", err)
	}

	update := tx.Rebind(`UPDATE species SET conservation_status = ? WHERE species_id = ?`)
	if _, err := tx.ExecContext(ctx, update, in.NewStatus, in.SpeciesID); err != nil {
		return 0, &TransactionError{Op: "update species status", Err: err}
	}

	if err := tx.Commit(); err != nil {
		return 0, &TransactionError{Op: "commit status change", Err: err}
	}
	committed = true
	return id, nil
}

// StatusHistory returns the status change audit trail for a species, newest
// first. An existing species with no history yields an empty slice.
func (s *Store) StatusHistory(ctx context.Context, speciesID int64) ([]StatusChange, error) {
	if err := s.ensureReady(); err != nil {
		return nil, err
	}
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	exists, err := speciesExists(ctx, s.db, s.rebind, speciesID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrNotFound
	}

	history := []StatusChange{}
	query := s.rebind(`SELECT * FROM conservation_status_history
                WHERE species_id = ?
                ORDER BY change_date DESC, change_id DESC`)
	if err := s.db.SelectContext(ctx, &history, query, speciesID); err != nil {
		return nil, fmt.Errorf("select status history: %w", err)
	}
	return history, nil
}
