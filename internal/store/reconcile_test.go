// File path: internal/store/reconcile_test.go
package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconcileAggregatesRepairsDrift(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	speciesID := seedSpecies(t, st, "Bengal Tiger")
	locationID := seedLocation(t, st, "Sundarbans", 10000)
	observerID := seedObserver(t, st, "Priya Raman", "priya@wildtrack.org")
	seedCensus(t, st, speciesID, locationID, observerID, 96, "2024-03-10")
	seedCensus(t, st, speciesID, locationID, observerID, 100, "2024-06-10")

	// Simulate drift from a manual database edit.
	_, err := st.db.ExecContext(ctx,
		st.rebind(`UPDATE species SET population_count = 7, last_census_date = NULL WHERE species_id = ?`),
		speciesID)
	require.NoError(t, err)

	fixed, err := st.ReconcileAggregates(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, fixed)

	species, err := st.GetSpecies(ctx, speciesID)
	require.NoError(t, err)
	assert.Equal(t, int64(100), species.PopulationCount)
	require.NotNil(t, species.LastCensusDate)
	assert.Equal(t, "2024-06-10", *species.LastCensusDate)
}

func TestReconcileAggregatesCleanIsNoop(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	speciesID := seedSpecies(t, st, "Bengal Tiger")
	locationID := seedLocation(t, st, "Sundarbans", 10000)
	observerID := seedObserver(t, st, "Priya Raman", "priya@wildtrack.org")
	seedCensus(t, st, speciesID, locationID, observerID, 96, "2024-03-10")

	fixed, err := st.ReconcileAggregates(ctx)
	require.NoError(t, err)
	assert.Zero(t, fixed)
}

func TestReconcileAggregatesTieBreaksOnRecordID(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	speciesID := seedSpecies(t, st, "Bengal Tiger")
	locationID := seedLocation(t, st, "Sundarbans", 10000)
	observerID := seedObserver(t, st, "Priya Raman", "priya@wildtrack.org")
	seedCensus(t, st, speciesID, locationID, observerID, 90, "2024-06-10")
	seedCensus(t, st, speciesID, locationID, observerID, 95, "2024-06-10")

	_, err := st.db.ExecContext(ctx,
		st.rebind(`UPDATE species SET population_count = 0 WHERE species_id = ?`),
		speciesID)
	require.NoError(t, err)

	fixed, err := st.ReconcileAggregates(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, fixed)

	species, err := st.GetSpecies(ctx, speciesID)
	require.NoError(t, err)
	assert.Equal(t, int64(95), species.PopulationCount)
}
