// File path: internal/store/types.go
package store

import "time"

// ConservationStatuses lists the nine IUCN-style categories a species may
// carry. Status writes are validated against this set.
var ConservationStatuses = []string{
	"Extinct",
	"Extinct in the Wild",
	"Critically Endangered",
	"Endangered",
	"Vulnerable",
	"Near Threatened",
	"Least Concern",
	"Data Deficient",
	"Not Evaluated",
}

// ValidStatus reports whether status is a member of the conservation status set.
func ValidStatus(status string) bool {
	for _, s := range ConservationStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// Species is a tracked species row. PopulationCount and LastCensusDate are
// caches maintained by the census write path, not source-of-truth.
type Species struct {
	ID                 int64     `db:"species_id" json:"species_id"`
	Name               string    `db:"name" json:"name"`
	ScientificName     string    `db:"scientific_name" json:"scientific_name"`
	ConservationStatus string    `db:"conservation_status" json:"conservation_status"`
	PopulationCount    int64     `db:"population_count" json:"population_count"`
	LastCensusDate     *string   `db:"last_census_date" json:"last_census_date"`
	CreatedAt          time.Time `db:"created_at" json:"created_at"`
}

// Location is an observation site. Lat and Lng are nullable; callers render
// missing coordinates as (0, 0).
type Location struct {
	ID           int64     `db:"location_id" json:"location_id"`
	Name         string    `db:"name" json:"name"`
	Region       string    `db:"region" json:"region"`
	Lat          *float64  `db:"lat" json:"-"`
	Lng          *float64  `db:"lng" json:"-"`
	AreaHectares float64   `db:"area_hectares" json:"area_hectares"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Observer is a registered census taker.
type Observer struct {
	ID           int64     `db:"observer_id" json:"observer_id"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	Phone        string    `db:"phone" json:"phone"`
	Organization string    `db:"organization" json:"organization"`
	Expertise    string    `db:"expertise" json:"expertise"`
	JoinDate     string    `db:"join_date" json:"join_date"`
	Active       bool      `db:"active" json:"active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// CensusRecord is a single observed count, append-only apart from explicit
// field rewrites via UpdateCensus.
type CensusRecord struct {
	ID         int64     `db:"record_id" json:"record_id"`
	SpeciesID  int64     `db:"species_id" json:"species_id"`
	LocationID int64     `db:"location_id" json:"location_id"`
	ObserverID int64     `db:"observer_id" json:"observer_id"`
	Count      int64     `db:"count" json:"count"`
	CensusDate string    `db:"census_date" json:"census_date"`
	Notes      string    `db:"notes" json:"notes"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// CensusRecordDetail is a census row joined with the display names of its
// referenced entities.
type CensusRecordDetail struct {
	CensusRecord
	SpeciesName  string `db:"species_name" json:"species_name"`
	LocationName string `db:"location_name" json:"location_name"`
	ObserverName string `db:"observer_name" json:"observer_name"`
}

// StatusChange is an append-only conservation status audit row.
type StatusChange struct {
	ID             int64     `db:"change_id" json:"change_id"`
	SpeciesID      int64     `db:"species_id" json:"species_id"`
	PreviousStatus string    `db:"previous_status" json:"previous_status"`
	NewStatus      string    `db:"new_status" json:"new_status"`
	ChangeDate     time.Time `db:"change_date" json:"change_date"`
	Reason         string    `db:"reason" json:"reason"`
	ChangedBy      string    `db:"changed_by" json:"changed_by"`
}
