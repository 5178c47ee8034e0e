// File path: internal/store/aggregates_test.go
package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPopulationDensity(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	tigerID := seedSpecies(t, st, "Bengal Tiger")
	locationID := seedLocation(t, st, "Sundarbans", 10000)
	observerID := seedObserver(t, st, "Priya Raman", "priya@wildtrack.org")
	seedCensus(t, st, tigerID, locationID, observerID, 100, "2024-06-10")

	row, err := st.SpeciesPopulationDensity(ctx, tigerID)
	require.NoError(t, err)
	assert.Equal(t, "Bengal Tiger", row.Name)
	assert.Equal(t, int64(100), row.PopulationCount)
	assert.InDelta(t, 10000, row.TotalArea, 1e-9)
	assert.InDelta(t, 0.01, row.PopulationDensity, 1e-9)
}

func TestPopulationDensityZeroArea(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	speciesID := seedSpecies(t, st, "Ghost Frog")
	locationID := seedLocation(t, st, "Unmeasured Marsh", 0)
	observerID := seedObserver(t, st, "Priya Raman", "priya@wildtrack.org")
	seedCensus(t, st, speciesID, locationID, observerID, 40, "2024-06-10")

	row, err := st.SpeciesPopulationDensity(ctx, speciesID)
	require.NoError(t, err)
	assert.Zero(t, row.PopulationDensity)
}

func TestPopulationDensityNoCensusRecords(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	speciesID := seedSpecies(t, st, "Bengal Tiger")

	row, err := st.SpeciesPopulationDensity(ctx, speciesID)
	require.NoError(t, err)
	assert.Zero(t, row.TotalArea)
	assert.Zero(t, row.PopulationDensity)

	_, err = st.SpeciesPopulationDensity(ctx, 9999)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestPopulationDensitySumsDistinctLocations(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	speciesID := seedSpecies(t, st, "Bengal Tiger")
	locA := seedLocation(t, st, "Sundarbans", 6000)
	locB := seedLocation(t, st, "Corbett", 4000)
	observerID := seedObserver(t, st, "Priya Raman", "priya@wildtrack.org")
	seedCensus(t, st, speciesID, locA, observerID, 60, "2024-03-10")
	// Two records at the same site must not double-count its area.
	seedCensus(t, st, speciesID, locA, observerID, 70, "2024-04-10")
	seedCensus(t, st, speciesID, locB, observerID, 100, "2024-06-10")

	row, err := st.SpeciesPopulationDensity(ctx, speciesID)
	require.NoError(t, err)
	assert.InDelta(t, 10000, row.TotalArea, 1e-9)
	assert.InDelta(t, 0.01, row.PopulationDensity, 1e-9)
}

func TestDetailedCensusReport(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	tigerID := seedSpecies(t, st, "Bengal Tiger")
	leopardID := seedSpecies(t, st, "Snow Leopard")
	locationID := seedLocation(t, st, "Sundarbans", 10000)
	observerID := seedObserver(t, st, "Priya Raman", "priya@wildtrack.org")
	seedCensus(t, st, tigerID, locationID, observerID, 100, "2024-06-10")
	seedCensus(t, st, leopardID, locationID, observerID, 55, "2024-06-10")
	seedCensus(t, st, tigerID, locationID, observerID, 96, "2024-03-10")

	rows, err := st.DetailedCensusReport(ctx, "2024-06-10")
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "Bengal Tiger", rows[0].SpeciesName)
	assert.Equal(t, "Endangered", rows[0].ConservationStatus)
	assert.Equal(t, "Sundarbans", rows[0].LocationName)
	assert.Equal(t, "West Bengal", rows[0].Region)
	assert.Equal(t, int64(100), rows[0].Count)
	assert.Equal(t, "Priya Raman", rows[0].ObserverName)
	// Species aggregate was rewritten by a later census write; density
	// reflects the cached population over the summed area.
	assert.InDelta(t, 0.0096, rows[0].PopulationDensity, 1e-9)

	assert.Equal(t, "Snow Leopard", rows[1].SpeciesName)
	assert.InDelta(t, 0.0055, rows[1].PopulationDensity, 1e-9)
}

func TestDetailedCensusReportEmptyDate(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	_, err := st.DetailedCensusReport(ctx, "2024-06-10")
	require.ErrorIs(t, err, ErrNotFound)

	var verr *ValidationError
	_, err = st.DetailedCensusReport(ctx, "")
	require.ErrorAs(t, err, &verr)

	_, err = st.DetailedCensusReport(ctx, "10-06-2024")
	require.ErrorAs(t, err, &verr)
}

func TestGrowthRates(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	tigerID := seedSpecies(t, st, "Bengal Tiger")
	leopardID := seedSpecies(t, st, "Snow Leopard")
	singleID := seedSpecies(t, st, "Great Indian Bustard")
	locationID := seedLocation(t, st, "Sundarbans", 10000)
	observerID := seedObserver(t, st, "Priya Raman", "priya@wildtrack.org")

	seedCensus(t, st, tigerID, locationID, observerID, 80, "2024-01-10")
	seedCensus(t, st, tigerID, locationID, observerID, 100, "2024-06-10")
	seedCensus(t, st, leopardID, locationID, observerID, 50, "2024-01-10")
	seedCensus(t, st, leopardID, locationID, observerID, 55, "2024-06-10")
	// One record only: excluded from the report.
	seedCensus(t, st, singleID, locationID, observerID, 120, "2024-06-10")

	report, err := st.GrowthRates(ctx)
	require.NoError(t, err)
	require.Len(t, report.Species, 2)

	assert.Equal(t, "Bengal Tiger", report.Species[0].Name)
	assert.Equal(t, int64(80), report.Species[0].InitialPopulation)
	assert.Equal(t, int64(100), report.Species[0].CurrentPopulation)
	assert.InDelta(t, 25.0, report.Species[0].GrowthRate, 1e-9)

	assert.Equal(t, "Snow Leopard", report.Species[1].Name)
	assert.InDelta(t, 10.0, report.Species[1].GrowthRate, 1e-9)

	assert.InDelta(t, 17.5, report.AverageGrowthRate, 1e-9)
}

func TestGrowthRateZeroInitialPopulation(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	speciesID := seedSpecies(t, st, "Great Indian Bustard")
	locationID := seedLocation(t, st, "Desert NP", 3162)
	observerID := seedObserver(t, st, "Ravi Kumar", "ravi@wildtrack.org")
	seedCensus(t, st, speciesID, locationID, observerID, 0, "2024-01-10")
	seedCensus(t, st, speciesID, locationID, observerID, 12, "2024-06-10")

	report, err := st.GrowthRates(ctx)
	require.NoError(t, err)
	require.Len(t, report.Species, 1)
	assert.Zero(t, report.Species[0].GrowthRate)
	assert.Zero(t, report.AverageGrowthRate)
}

func TestGrowthRatesEmpty(t *testing.T) {
	st := newTestStore(t)

	report, err := st.GrowthRates(context.Background())
	require.NoError(t, err)
	assert.Empty(t, report.Species)
	assert.Zero(t, report.AverageGrowthRate)
}

func TestGrowthRateRounding(t *testing.T) {
	assert.InDelta(t, 33.33, growthRate(3, 4), 1e-9)
	assert.InDelta(t, -50.0, growthRate(4, 2), 1e-9)
	assert.Zero(t, growthRate(0, 10))
}

func TestSpeciesGrowthRateWindow(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	speciesID := seedSpecies(t, st, "Bengal Tiger")
	locationID := seedLocation(t, st, "Sundarbans", 10000)
	observerID := seedObserver(t, st, "Priya Raman", "priya@wildtrack.org")

	day := func(monthsAgo int) string {
		return time.Now().AddDate(0, -monthsAgo, 0).Format("2006-01-02")
	}
	seedCensus(t, st, speciesID, locationID, observerID, 40, day(80))
	seedCensus(t, st, speciesID, locationID, observerID, 80, day(4))
	seedCensus(t, st, speciesID, locationID, observerID, 100, day(1))

	full, err := st.SpeciesGrowthRate(ctx, speciesID, 0)
	require.NoError(t, err)
	assert.InDelta(t, 150.0, full, 1e-9)

	// A window that drops the oldest record but keeps the recent pair.
	windowed, err := st.SpeciesGrowthRate(ctx, speciesID, 12)
	require.NoError(t, err)
	assert.InDelta(t, 25.0, windowed, 1e-9)

	_, err = st.SpeciesGrowthRate(ctx, 9999, 0)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSpeciesGrowthRateTooFewRecords(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	speciesID := seedSpecies(t, st, "Snow Leopard")
	locationID := seedLocation(t, st, "Hemis", 4400)
	observerID := seedObserver(t, st, "Tashi Dorji", "tashi@wildtrack.org")
	seedCensus(t, st, speciesID, locationID, observerID, 120, "2024-06-10")

	rate, err := st.SpeciesGrowthRate(ctx, speciesID, 0)
	require.NoError(t, err)
	assert.Zero(t, rate)
}
