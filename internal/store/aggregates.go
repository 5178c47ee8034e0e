// File path: internal/store/aggregates.go
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"
)

// DensityRow is one species' population density figures. TotalArea is the
// summed area of every location the species has census records at; density
// is exactly 0 when no area is recorded.
type DensityRow struct {
	SpeciesID         int64   `db:"species_id" json:"species_id"`
	Name              string  `db:"name" json:"name"`
	PopulationCount   int64   `db:"population_count" json:"population_count"`
	TotalArea         float64 `db:"total_area" json:"total_area"`
	PopulationDensity float64 `json:"population_density"`
}

// GrowthRateRow is one species' growth figure over its census history.
type GrowthRateRow struct {
	Name              string  `db:"name" json:"name"`
	InitialPopulation int64   `db:"initial_population" json:"initial_population"`
	CurrentPopulation int64   `db:"current_population" json:"current_population"`
	GrowthRate        float64 `json:"growth_rate"`
}

// GrowthRateReport is the growth figure list plus the mean across it.
type GrowthRateReport struct {
	Species           []GrowthRateRow `json:"species"`
	AverageGrowthRate float64         `json:"averageGrowthRate"`
}

// ReportRow is a census record joined for reporting.
type ReportRow struct {
	RecordID     int64  `db:"record_id" json:"record_id"`
	Count        int64  `db:"count" json:"count"`
	CensusDate   string `db:"census_date" json:"census_date"`
	Notes        string `db:"notes" json:"notes"`
	SpeciesName  string `db:"species_name" json:"species_name"`
	LocationName string `db:"location_name" json:"location_name"`
	ObserverName string `db:"observer_name" json:"observer_name"`
}

// PopulationDensity computes density figures for every species from the
// species_population_density view.
func (s *Store) PopulationDensity(ctx context.Context) ([]DensityRow, error) {
	if err := s.ensureReady(); err != nil {
		return nil, err
	}
	ctx, cancel := s.opCtx(ctx)
	defer cancel()
	rows := []DensityRow{}
	if err := s.db.SelectContext(ctx, &rows, `SELECT species_id, name, population_count, total_area FROM species_population_density ORDER BY name`); err != nil {
		return nil, fmt.Errorf("select population density: %w", err)
	}
	for i := range rows {
		rows[i].PopulationDensity = density(rows[i].PopulationCount, rows[i].TotalArea)
	}
	return rows, nil
}

// SpeciesPopulationDensity computes the density figure for one species.
func (s *Store) SpeciesPopulationDensity(ctx context.Context, speciesID int64) (*DensityRow, error) {
	if err := s.ensureReady(); err != nil {
		return nil, err
	}
	ctx, cancel := s.opCtx(ctx)
	defer cancel()
	var row DensityRow
	query := s.rebind(`SELECT species_id, name, population_count, total_area FROM species_population_density WHERE species_id = ?`)
	if err := s.db.GetContext(ctx, &row, query, speciesID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select population density: %w", err)
	}
	row.PopulationDensity = density(row.PopulationCount, row.TotalArea)
	return &row, nil
}

func density(population int64, area float64) float64 {
	if area <= 0 {
		return 0
	}
	return float64(population) / area
}

// GrowthRates computes per-species growth figures over the full census
// history. Species with fewer than two records are excluded; a species whose
// minimum count is zero reports a growth rate of 0. The average is the
// arithmetic mean across included species, 0 when none qualify.
func (s *Store) GrowthRates(ctx context.Context) (GrowthRateReport, error) {
	report := GrowthRateReport{Species: []GrowthRateRow{}}
	if err := s.ensureReady(); err != nil {
		return report, err
	}
	ctx, cancel := s.opCtx(ctx)
	defer cancel()
	rows := []GrowthRateRow{}
	query := `SELECT s.name,
                MIN(c.count) AS initial_population,
                MAX(c.count) AS current_population
                FROM species s
                INNER JOIN census_records c ON c.species_id = s.species_id
                GROUP BY s.species_id, s.name
                HAVING COUNT(c.record_id) >= 2
                ORDER BY s.name`
	if err := s.db.SelectContext(ctx, &rows, query); err != nil {
		return report, fmt.Errorf("select growth rates: %w", err)
	}
	var total float64
	for i := range rows {
		rows[i].GrowthRate = growthRate(rows[i].InitialPopulation, rows[i].CurrentPopulation)
		total += rows[i].GrowthRate
	}
	report.Species = rows
	if len(rows) > 0 {
		report.AverageGrowthRate = total / float64(len(rows))
	}
	return report, nil
}

// SpeciesGrowthRate computes one species' growth rate over the trailing
// window of whole months, or the full history when months is zero. Fewer
// than two records in the window yields 0.
func (s *Store) SpeciesGrowthRate(ctx context.Context, speciesID int64, months int) (float64, error) {
	if err := s.ensureReady(); err != nil {
		return 0, err
	}
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	exists, err := speciesExists(ctx, s.db, s.rebind, speciesID)
	if err != nil {
		return 0, err
	}
	if !exists {
		return 0, ErrNotFound
	}

	cutoff := ""
	if months > 0 {
		cutoff = time.Now().AddDate(0, -months, 0).Format("2006-01-02")
	}
	var agg struct {
		Initial sql.NullInt64 `db:"initial_population"`
		Current sql.NullInt64 `db:"current_population"`
		Records int64         `db:"records"`
	}
	query := s.rebind(`SELECT MIN(count) AS initial_population,
                MAX(count) AS current_population,
                COUNT(*) AS records
                FROM census_records
                WHERE species_id = ? AND census_date >= ?`)
	if err := s.db.GetContext(ctx, &agg, query, speciesID, cutoff); err != nil {
		return 0, fmt.Errorf("select growth rate: %w", err)
	}
	if agg.Records < 2 {
		return 0, nil
	}
	return growthRate(agg.Initial.Int64, agg.Current.Int64), nil
}

func growthRate(initial, current int64) float64 {
	if initial <= 0 {
		return 0
	}
	return round2(float64(current-initial) / float64(initial) * 100)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// DetailedReportRow is one line of the single-date census report: the census
// observation joined with the owning species' status and density figures.
type DetailedReportRow struct {
	SpeciesName        string  `db:"species_name" json:"species_name"`
	ScientificName     string  `db:"scientific_name" json:"scientific_name"`
	ConservationStatus string  `db:"conservation_status" json:"conservation_status"`
	PopulationCount    int64   `db:"population_count" json:"population_count"`
	TotalArea          float64 `db:"total_area" json:"-"`
	PopulationDensity  float64 `json:"population_density"`
	LocationName       string  `db:"location_name" json:"location_name"`
	Region             string  `db:"region" json:"region"`
	Count              int64   `db:"count" json:"count"`
	CensusDate         string  `db:"census_date" json:"census_date"`
	ObserverName       string  `db:"observer_name" json:"observer_name"`
}

// DetailedCensusReport returns every census record taken on the given date,
// joined with species status and density figures, ordered by species name.
// A date with no records yields ErrNotFound.
func (s *Store) DetailedCensusReport(ctx context.Context, censusDate string) ([]DetailedReportRow, error) {
	if err := s.ensureReady(); err != nil {
		return nil, err
	}
	if censusDate == "" {
		return nil, validationf("census date is required")
	}
	if err := checkDate(censusDate); err != nil {
		return nil, err
	}
	ctx, cancel := s.opCtx(ctx)
	defer cancel()
	rows := []DetailedReportRow{}
	query := s.rebind(`SELECT s.name AS species_name, s.scientific_name, s.conservation_status,
                s.population_count, spd.total_area,
                l.name AS location_name, l.region,
                cr.count, cr.census_date, o.name AS observer_name
                FROM census_records cr
                INNER JOIN species s ON cr.species_id = s.species_id
                INNER JOIN locations l ON cr.location_id = l.location_id
                INNER JOIN observers o ON cr.observer_id = o.observer_id
                LEFT JOIN species_population_density spd ON spd.species_id = s.species_id
                WHERE cr.census_date = ?
                ORDER BY s.name, cr.record_id`)
	if err := s.db.SelectContext(ctx, &rows, query, censusDate); err != nil {
		return nil, fmt.Errorf("select detailed census report: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	for i := range rows {
		rows[i].PopulationDensity = density(rows[i].PopulationCount, rows[i].TotalArea)
	}
	return rows, nil
}

// CensusReport returns census records between the two dates inclusive,
// newest first, joined for display.
func (s *Store) CensusReport(ctx context.Context, startDate, endDate string) ([]ReportRow, error) {
	if err := s.ensureReady(); err != nil {
		return nil, err
	}
	if startDate == "" || endDate == "" {
		return nil, validationf("start date and end date are required")
	}
	if err := checkDate(startDate); err != nil {
		return nil, err
	}
	if err := checkDate(endDate); err != nil {
		return nil, err
	}
	ctx, cancel := s.opCtx(ctx)
	defer cancel()
	rows := []ReportRow{}
	query := s.rebind(`SELECT cr.record_id, cr.count, cr.census_date, cr.notes,
                s.name AS species_name, l.name AS location_name, o.name AS observer_name
                FROM census_records cr
                INNER JOIN species s ON cr.species_id = s.species_id
                INNER JOIN locations l ON cr.location_id = l.location_id
                INNER JOIN observers o ON cr.observer_id = o.observer_id
                WHERE cr.census_date BETWEEN ? AND ?
                ORDER BY cr.census_date DESC, cr.record_id DESC`)
	if err := s.db.SelectContext(ctx, &rows, query, startDate, endDate); err != nil {
		return nil, fmt.Errorf("select census report: %w", err)
	}
	return rows, nil
}
