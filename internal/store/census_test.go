// File path: internal/store/census_test.go
package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordCensusUpdatesSpeciesAggregates(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	speciesID := seedSpecies(t, st, "Bengal Tiger")
	locationID := seedLocation(t, st, "Sundarbans", 10000)
	observerID := seedObserver(t, st, "Priya Raman", "priya@wildtrack.org")

	seedCensus(t, st, speciesID, locationID, observerID, 96, "2024-03-10")
	seedCensus(t, st, speciesID, locationID, observerID, 100, "2024-06-10")

	species, err := st.GetSpecies(ctx, speciesID)
	require.NoError(t, err)
	assert.Equal(t, int64(100), species.PopulationCount)
	require.NotNil(t, species.LastCensusDate)
	assert.Equal(t, "2024-06-10", *species.LastCensusDate)
}

func TestRecordCensusLastWriteWins(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	speciesID := seedSpecies(t, st, "Snow Leopard")
	locationID := seedLocation(t, st, "Hemis", 4400)
	observerID := seedObserver(t, st, "Tashi Dorji", "tashi@wildtrack.org")

	seedCensus(t, st, speciesID, locationID, observerID, 120, "2024-06-10")
	// A late-arriving record for an earlier date still overwrites the cache.
	seedCensus(t, st, speciesID, locationID, observerID, 80, "2024-01-10")

	species, err := st.GetSpecies(ctx, speciesID)
	require.NoError(t, err)
	assert.Equal(t, int64(80), species.PopulationCount)
	require.NotNil(t, species.LastCensusDate)
	assert.Equal(t, "2024-01-10", *species.LastCensusDate)
}

func TestRecordCensusUnknownReferenceRollsBack(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	speciesID := seedSpecies(t, st, "Bengal Tiger")
	locationID := seedLocation(t, st, "Sundarbans", 10000)
	observerID := seedObserver(t, st, "Priya Raman", "priya@wildtrack.org")
	seedCensus(t, st, speciesID, locationID, observerID, 96, "2024-03-10")

	_, err := st.RecordCensus(ctx, CensusInput{
		SpeciesID:  speciesID,
		LocationID: 9999,
		ObserverID: observerID,
		Count:      50,
		CensusDate: "2024-06-10",
	})
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)

	records, err := st.ListCensusRecords(ctx)
	require.NoError(t, err)
	assert.Len(t, records, 1)

	species, err := st.GetSpecies(ctx, speciesID)
	require.NoError(t, err)
	assert.Equal(t, int64(96), species.PopulationCount)
	require.NotNil(t, species.LastCensusDate)
	assert.Equal(t, "2024-03-10", *species.LastCensusDate)
}

func TestRecordCensusValidation(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	cases := []struct {
		name  string
		input CensusInput
	}{
		{"missing species", CensusInput{LocationID: 1, ObserverID: 1, Count: 5, CensusDate: "2024-06-10"}},
		{"negative count", CensusInput{SpeciesID: 1, LocationID: 1, ObserverID: 1, Count: -1, CensusDate: "2024-06-10"}},
		{"missing date", CensusInput{SpeciesID: 1, LocationID: 1, ObserverID: 1, Count: 5}},
		{"malformed date", CensusInput{SpeciesID: 1, LocationID: 1, ObserverID: 1, Count: 5, CensusDate: "10-06-2024"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := st.RecordCensus(ctx, tc.input)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
		})
	}
}

func TestRecordCensusZeroCountAllowed(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	speciesID := seedSpecies(t, st, "Great Indian Bustard")
	locationID := seedLocation(t, st, "Desert NP", 3162)
	observerID := seedObserver(t, st, "Ravi Kumar", "ravi@wildtrack.org")

	seedCensus(t, st, speciesID, locationID, observerID, 0, "2024-06-10")

	species, err := st.GetSpecies(ctx, speciesID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), species.PopulationCount)
}

func TestUpdateCensusRewritesAggregates(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	speciesID := seedSpecies(t, st, "Bengal Tiger")
	locationID := seedLocation(t, st, "Sundarbans", 10000)
	observerID := seedObserver(t, st, "Priya Raman", "priya@wildtrack.org")
	recordID := seedCensus(t, st, speciesID, locationID, observerID, 96, "2024-03-10")

	err := st.UpdateCensus(ctx, recordID, CensusInput{
		SpeciesID:  speciesID,
		LocationID: locationID,
		ObserverID: observerID,
		Count:      104,
		CensusDate: "2024-03-12",
		Notes:      "recount after camera trap review",
	})
	require.NoError(t, err)

	record, err := st.GetCensusRecord(ctx, recordID)
	require.NoError(t, err)
	assert.Equal(t, int64(104), record.Count)
	assert.Equal(t, "2024-03-12", record.CensusDate)
	assert.Equal(t, "recount after camera trap review", record.Notes)

	species, err := st.GetSpecies(ctx, speciesID)
	require.NoError(t, err)
	assert.Equal(t, int64(104), species.PopulationCount)
	require.NotNil(t, species.LastCensusDate)
	assert.Equal(t, "2024-03-12", *species.LastCensusDate)
}

func TestUpdateCensusUnknownRecord(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	speciesID := seedSpecies(t, st, "Bengal Tiger")
	locationID := seedLocation(t, st, "Sundarbans", 10000)
	observerID := seedObserver(t, st, "Priya Raman", "priya@wildtrack.org")

	err := st.UpdateCensus(ctx, 424242, CensusInput{
		SpeciesID:  speciesID,
		LocationID: locationID,
		ObserverID: observerID,
		Count:      10,
		CensusDate: "2024-06-10",
	})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestGetCensusRecord(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	speciesID := seedSpecies(t, st, "Bengal Tiger")
	locationID := seedLocation(t, st, "Sundarbans", 10000)
	observerID := seedObserver(t, st, "Priya Raman", "priya@wildtrack.org")
	recordID := seedCensus(t, st, speciesID, locationID, observerID, 96, "2024-03-10")

	record, err := st.GetCensusRecord(ctx, recordID)
	require.NoError(t, err)
	assert.Equal(t, int64(96), record.Count)

	_, err = st.GetCensusRecord(ctx, 424242)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestListCensusRecordsJoinsNames(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	speciesID := seedSpecies(t, st, "Bengal Tiger")
	locationID := seedLocation(t, st, "Sundarbans", 10000)
	observerID := seedObserver(t, st, "Priya Raman", "priya@wildtrack.org")
	seedCensus(t, st, speciesID, locationID, observerID, 96, "2024-03-10")

	records, err := st.ListCensusRecords(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Bengal Tiger", records[0].SpeciesName)
	assert.Equal(t, "Sundarbans", records[0].LocationName)
	assert.Equal(t, "Priya Raman", records[0].ObserverName)
}

func TestCensusDatesDistinctDescending(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	speciesID := seedSpecies(t, st, "Bengal Tiger")
	locationID := seedLocation(t, st, "Sundarbans", 10000)
	observerID := seedObserver(t, st, "Priya Raman", "priya@wildtrack.org")
	seedCensus(t, st, speciesID, locationID, observerID, 90, "2024-03-10")
	seedCensus(t, st, speciesID, locationID, observerID, 92, "2024-03-10")
	seedCensus(t, st, speciesID, locationID, observerID, 100, "2024-06-10")

	dates, err := st.CensusDates(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-06-10", "2024-03-10"}, dates)
}

func TestCensusReportRange(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	speciesID := seedSpecies(t, st, "Bengal Tiger")
	locationID := seedLocation(t, st, "Sundarbans", 10000)
	observerID := seedObserver(t, st, "Priya Raman", "priya@wildtrack.org")
	seedCensus(t, st, speciesID, locationID, observerID, 90, "2024-01-10")
	seedCensus(t, st, speciesID, locationID, observerID, 96, "2024-03-10")
	seedCensus(t, st, speciesID, locationID, observerID, 100, "2024-06-10")

	rows, err := st.CensusReport(ctx, "2024-02-01", "2024-05-31")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(96), rows[0].Count)
	assert.Equal(t, "Bengal Tiger", rows[0].SpeciesName)

	_, err = st.CensusReport(ctx, "", "2024-05-31")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
}
