// File path: internal/store/species.go
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// SpeciesInput carries the writable species fields.
type SpeciesInput struct {
	Name               string
	ScientificName     string
	ConservationStatus string
}

func (in *SpeciesInput) validate() error {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return validationf("species name is required")
	}
	in.ConservationStatus = strings.TrimSpace(in.ConservationStatus)
	if in.ConservationStatus == "" {
		in.ConservationStatus = "Not Evaluated"
	}
	if !ValidStatus(in.ConservationStatus) {
		return &ValidationError{
			Msg:     "invalid conservation status",
			Details: "status must be one of: " + strings.Join(ConservationStatuses, ", "),
		}
	}
	return nil
}

// CreateSpecies inserts a species row and returns its id.
func (s *Store) CreateSpecies(ctx context.Context, in SpeciesInput) (int64, error) {
	if err := s.ensureReady(); err != nil {
		return 0, err
	}
	if err := in.validate(); err != nil {
		return 0, err
	}
	ctx, cancel := s.opCtx(ctx)
	defer cancel()
	var id int64
	query := s.rebind(`INSERT INTO species (name, scientific_name, conservation_status)
                VALUES (?, ?, ?) RETURNING species_id`)
	if err := s.db.QueryRowxContext(ctx, query, in.Name, in.ScientificName, in.ConservationStatus).Scan(&id); err != nil {
		return 0, fmt.Errorf("insert species: %w", err)
	}
	return id, nil
}

// UpdateSpecies rewrites the writable fields of an existing species.
func (s *Store) UpdateSpecies(ctx context.Context, id int64, in SpeciesInput) error {
	if err := s.ensureReady(); err != nil {
		return err
	}
	if err := in.validate(); err != nil {
		return err
	}
	ctx, cancel := s.opCtx(ctx)
	defer cancel()
	query := s.rebind(`UPDATE species SET name = ?, scientific_name = ?, conservation_status = ?
                WHERE species_id = ?`)
	res, err := s.db.ExecContext(ctx, query, in.Name, in.ScientificName, in.ConservationStatus, id)
	if err != nil {
		return fmt.Errorf("update species: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update species: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// GetSpecies returns one species by id.
func (s *Store) GetSpecies(ctx context.Context, id int64) (*Species, error) {
	if err := s.ensureReady(); err != nil {
		return nil, err
	}
	ctx, cancel := s.opCtx(ctx)
	defer cancel()
	var sp Species
	query := s.rebind(`SELECT * FROM species WHERE species_id = ?`)
	if err := s.db.GetContext(ctx, &sp, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select species: %w", err)
	}
	return &sp, nil
}

// ListSpecies returns every species ordered by name.
func (s *Store) ListSpecies(ctx context.Context) ([]Species, error) {
	if err := s.ensureReady(); err != nil {
		return nil, err
	}
	ctx, cancel := s.opCtx(ctx)
	defer cancel()
	species := []Species{}
	if err := s.db.SelectContext(ctx, &species, `SELECT * FROM species ORDER BY name`); err != nil {
		return nil, fmt.Errorf("select species: %w", err)
	}
	return species, nil
}

func speciesExists(ctx context.Context, q sqlxQueryer, rebind func(string) string, id int64) (bool, error) {
	var one int
	err := q.GetContext(ctx, &one, rebind(`SELECT 1 FROM species WHERE species_id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("lookup species: %w", err)
	}
	return true, nil
}

// sqlxQueryer is the subset of sqlx execution shared by DB and Tx handles.
type sqlxQueryer interface {
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
}
