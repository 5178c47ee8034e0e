// File path: internal/store/migrate.go
package store

import (
	"context"
	"database/sql"
	"fmt"
)

func (s *Store) migrate(ctx context.Context) error {
	if err := s.ensureReady(); err != nil {
		return err
	}
	tx, err := s.db.BeginTxx(ctx, &sql.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin migration: %w", err)
	}
	for i, stmt := range schemaStatements(s.driver) {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			tx.Rollback()
			return fmt.Errorf("execute schema statement %d: %w", i+1, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit migration: %w", err)
	}
	return nil
}

// schemaStatements returns idempotent DDL for the census schema. Business
// dates (census_date, join_date, last_census_date) are YYYY-MM-DD text so
// range scans and ordering behave identically on both engines; event
// timestamps use the engine timestamp type.
func schemaStatements(driver Driver) []string {
	serial := "INTEGER PRIMARY KEY AUTOINCREMENT"
	ts := "DATETIME"
	real := "REAL"
	if driver == DriverPostgres {
		serial = "BIGSERIAL PRIMARY KEY"
		ts = "TIMESTAMPTZ"
		real = "DOUBLE PRECISION"
	}

	stmts := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS species (
                species_id %s,
                name TEXT NOT NULL,
                scientific_name TEXT NOT NULL DEFAULT '',
                conservation_status TEXT NOT NULL DEFAULT 'Not Evaluated',
                population_count BIGINT NOT NULL DEFAULT 0,
                last_census_date TEXT,
                created_at %s NOT NULL DEFAULT CURRENT_TIMESTAMP
        );`, serial, ts),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS locations (
                location_id %s,
                name TEXT NOT NULL,
                region TEXT NOT NULL DEFAULT '',
                lat %s,
                lng %s,
                area_hectares %s NOT NULL DEFAULT 0,
                created_at %s NOT NULL DEFAULT CURRENT_TIMESTAMP
        );`, serial, real, real, real, ts),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS observers (
                observer_id %s,
                name TEXT NOT NULL,
                email TEXT NOT NULL UNIQUE,
                phone TEXT NOT NULL DEFAULT '',
                organization TEXT NOT NULL DEFAULT '',
                expertise TEXT NOT NULL DEFAULT '',
                join_date TEXT NOT NULL DEFAULT '',
                active BOOLEAN NOT NULL DEFAULT TRUE,
                created_at %s NOT NULL DEFAULT CURRENT_TIMESTAMP
        );`, serial, ts),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS census_records (
                record_id %s,
                species_id BIGINT NOT NULL REFERENCES species(species_id),
                location_id BIGINT NOT NULL REFERENCES locations(location_id),
                observer_id BIGINT NOT NULL REFERENCES observers(observer_id),
                count BIGINT NOT NULL,
                census_date TEXT NOT NULL,
                notes TEXT NOT NULL DEFAULT '',
                created_at %s NOT NULL DEFAULT CURRENT_TIMESTAMP
        );`, serial, ts),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS conservation_status_history (
                change_id %s,
                species_id BIGINT NOT NULL REFERENCES species(species_id),
                previous_status TEXT NOT NULL,
                new_status TEXT NOT NULL,
                change_date %s NOT NULL DEFAULT CURRENT_TIMESTAMP,
                reason TEXT NOT NULL DEFAULT '',
                changed_by TEXT NOT NULL DEFAULT ''
        );`, serial, ts),
		`CREATE INDEX IF NOT EXISTS idx_census_species ON census_records(species_id);`,
		`CREATE INDEX IF NOT EXISTS idx_census_location ON census_records(location_id);`,
		`CREATE INDEX IF NOT EXISTS idx_census_observer ON census_records(observer_id);`,
		`CREATE INDEX IF NOT EXISTS idx_census_date ON census_records(census_date);`,
		`CREATE INDEX IF NOT EXISTS idx_status_history_species ON conservation_status_history(species_id, change_date);`,
	}

	view := `species_population_density AS
                SELECT
                        s.species_id,
                        s.name,
                        s.population_count,
                        COALESCE((
                                SELECT SUM(l.area_hectares)
                                FROM locations l
                                WHERE l.location_id IN (
                                        SELECT DISTINCT cr.location_id
                                        FROM census_records cr
                                        WHERE cr.species_id = s.species_id
                                )
                        ), 0) AS total_area
                FROM species s;`
	if driver == DriverPostgres {
		stmts = append(stmts, `CREATE OR REPLACE VIEW `+view)
	} else {
		stmts = append(stmts, `CREATE VIEW IF NOT EXISTS `+view)
	}
	return stmts
}
