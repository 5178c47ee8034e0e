// File path: internal/store/locations.go
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strings"
)

// LocationInput carries the writable location fields. Lat and Lng must both
// be present and finite.
type LocationInput struct {
	Name         string
	Region       string
	Lat          *float64
	Lng          *float64
	AreaHectares float64
}

func (in *LocationInput) validate() error {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return validationf("location name is required")
	}
	if in.Lat == nil || in.Lng == nil {
		return &ValidationError{
			Msg:     "invalid coordinates",
			Details: "both latitude and longitude are required",
		}
	}
	if math.IsNaN(*in.Lat) || math.IsInf(*in.Lat, 0) || math.IsNaN(*in.Lng) || math.IsInf(*in.Lng, 0) {
		return &ValidationError{
			Msg:     "invalid coordinates",
			Details: "latitude and longitude must be numbers",
		}
	}
	if in.AreaHectares < 0 {
		return validationf("area_hectares must not be negative")
	}
	return nil
}

// CreateLocation inserts a location row and returns its id.
func (s *Store) CreateLocation(ctx context.Context, in LocationInput) (int64, error) {
	if err := s.ensureReady(); err != nil {
		return 0, err
	}
	if err := in.validate(); err != nil {
		return 0, err
	}
	ctx, cancel := s.opCtx(ctx)
	defer cancel()
	var id int64
	query := s.rebind(`INSERT INTO locations (name, region, lat, lng, area_hectares)
                VALUES (?, ?, ?, ?, ?) RETURNING location_id`)
	if err := s.db.QueryRowxContext(ctx, query, in.Name, in.Region, *in.Lat, *in.Lng, in.AreaHectares).Scan(&id); err != nil {
		return 0, fmt.Errorf("insert location: %w", err)
	}
	return id, nil
}

// UpdateLocation rewrites an existing location.
func (s *Store) UpdateLocation(ctx context.Context, id int64, in LocationInput) error {
	if err := s.ensureReady(); err != nil {
		return err
	}
	if err := in.validate(); err != nil {
		return err
	}
	ctx, cancel := s.opCtx(ctx)
	defer cancel()
	query := s.rebind(`UPDATE locations SET name = ?, region = ?, lat = ?, lng = ?, area_hectares = ?
                WHERE location_id = ?`)
	res, err := s.db.ExecContext(ctx, query, in.Name, in.Region, *in.Lat, *in.Lng, in.AreaHectares, id)
	if err != nil {
		return fmt.Errorf("update location: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update location: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// GetLocation returns one location by id.
func (s *Store) GetLocation(ctx context.Context, id int64) (*Location, error) {
	if err := s.ensureReady(); err != nil {
		return nil, err
	}
	ctx, cancel := s.opCtx(ctx)
	defer cancel()
	var loc Location
	query := s.rebind(`SELECT * FROM locations WHERE location_id = ?`)
	if err := s.db.GetContext(ctx, &loc, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select location: %w", err)
	}
	return &loc, nil
}

// ListLocations returns every location ordered by name.
func (s *Store) ListLocations(ctx context.Context) ([]Location, error) {
	if err := s.ensureReady(); err != nil {
		return nil, err
	}
	ctx, cancel := s.opCtx(ctx)
	defer cancel()
	locations := []Location{}
	if err := s.db.SelectContext(ctx, &locations, `SELECT * FROM locations ORDER BY name`); err != nil {
		return nil, fmt.Errorf("select locations: %w", err)
	}
	return locations, nil
}
