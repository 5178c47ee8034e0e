// File path: internal/api/census_handler.go
package api

import (
	"net/http"

	"github.com/wildtrack/censusd/internal/store"
)

type censusPayload struct {
	SpeciesID  int64  `json:"species_id"`
	LocationID int64  `json:"location_id"`
	ObserverID int64  `json:"observer_id"`
	Count      int64  `json:"count"`
	CensusDate string `json:"census_date"`
	Notes      string `json:"notes"`
}

func (p censusPayload) toInput() store.CensusInput {
	return store.CensusInput{
		SpeciesID:  p.SpeciesID,
		LocationID: p.LocationID,
		ObserverID: p.ObserverID,
		Count:      p.Count,
		CensusDate: p.CensusDate,
		Notes:      p.Notes,
	}
}

func (s *Server) handleListCensus(w http.ResponseWriter, r *http.Request) {
	records, err := s.store.ListCensusRecords(r.Context())
	if err != nil {
		writeStoreError(w, err, "Census record not found")
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleRecordCensus(w http.ResponseWriter, r *http.Request) {
	var payload censusPayload
	if !decodeJSON(w, r, &payload) {
		return
	}
	id, err := s.store.RecordCensus(r.Context(), payload.toInput())
	if err != nil {
		writeStoreError(w, err, "Census record not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"id": id, "message": "Census record added successfully"})
}

func (s *Server) handleUpdateCensus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "census record")
	if !ok {
		return
	}
	var payload censusPayload
	if !decodeJSON(w, r, &payload) {
		return
	}
	if err := s.store.UpdateCensus(r.Context(), id, payload.toInput()); err != nil {
		writeStoreError(w, err, "Census record not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Census record updated successfully"})
}

func (s *Server) handleCensusDates(w http.ResponseWriter, r *http.Request) {
	dates, err := s.store.CensusDates(r.Context())
	if err != nil {
		writeStoreError(w, err, "Census record not found")
		return
	}
	writeJSON(w, http.StatusOK, dates)
}
