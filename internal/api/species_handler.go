// File path: internal/api/species_handler.go
package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/wildtrack/censusd/internal/store"
)

type speciesPayload struct {
	Name               string `json:"name"`
	ScientificName     string `json:"scientific_name"`
	ConservationStatus string `json:"conservation_status"`
}

func (s *Server) handleListSpecies(w http.ResponseWriter, r *http.Request) {
	species, err := s.store.ListSpecies(r.Context())
	if err != nil {
		writeStoreError(w, err, "Species not found")
		return
	}
	writeJSON(w, http.StatusOK, species)
}

func (s *Server) handleGetSpecies(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "species")
	if !ok {
		return
	}
	sp, err := s.store.GetSpecies(r.Context(), id)
	if err != nil {
		writeStoreError(w, err, "Species not found")
		return
	}
	writeJSON(w, http.StatusOK, sp)
}

func (s *Server) handleCreateSpecies(w http.ResponseWriter, r *http.Request) {
	var payload speciesPayload
	if !decodeJSON(w, r, &payload) {
		return
	}
	id, err := s.store.CreateSpecies(r.Context(), payload.toInput())
	if err != nil {
		writeStoreError(w, err, "Species not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"id": id, "message": "Species added successfully"})
}

func (s *Server) handleUpdateSpecies(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "species")
	if !ok {
		return
	}
	var payload speciesPayload
	if !decodeJSON(w, r, &payload) {
		return
	}
	if err := s.store.UpdateSpecies(r.Context(), id, payload.toInput()); err != nil {
		writeStoreError(w, err, "Species not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Species updated successfully"})
}

func (s *Server) handlePopulationDensity(w http.ResponseWriter, r *http.Request) {
	rows, err := s.store.PopulationDensity(r.Context())
	if err != nil {
		writeStoreError(w, err, "Species not found")
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) handleSpeciesDensity(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "species")
	if !ok {
		return
	}
	row, err := s.store.SpeciesPopulationDensity(r.Context(), id)
	if err != nil {
		writeStoreError(w, err, "Population density record not found")
		return
	}
	writeJSON(w, http.StatusOK, row)
}

func (s *Server) handleGrowthRates(w http.ResponseWriter, r *http.Request) {
	report, err := s.store.GrowthRates(r.Context())
	if err != nil {
		writeStoreError(w, err, "Species not found")
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleSpeciesGrowthRate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "species")
	if !ok {
		return
	}
	months := 12
	if raw := strings.TrimSpace(r.URL.Query().Get("months")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeError(w, http.StatusBadRequest, "invalid months value", "")
			return
		}
		months = parsed
	}
	rate, err := s.store.SpeciesGrowthRate(r.Context(), id, months)
	if err != nil {
		writeStoreError(w, err, "Species not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]float64{"growth_rate": rate})
}

func (p speciesPayload) toInput() store.SpeciesInput {
	return store.SpeciesInput{
		Name:               p.Name,
		ScientificName:     p.ScientificName,
		ConservationStatus: p.ConservationStatus,
	}
}
