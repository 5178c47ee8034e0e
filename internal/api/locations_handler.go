// File path: internal/api/locations_handler.go
package api

import (
	"net/http"
	"time"

	"github.com/wildtrack/censusd/internal/store"
)

type coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type locationPayload struct {
	Name        string `json:"name"`
	Region      string `json:"region"`
	Coordinates *struct {
		Lat *float64 `json:"lat"`
		Lng *float64 `json:"lng"`
	} `json:"coordinates"`
	AreaHectares float64 `json:"area_hectares"`
}

type locationResponse struct {
	ID           int64       `json:"location_id"`
	Name         string      `json:"name"`
	Region       string      `json:"region"`
	Coordinates  coordinates `json:"coordinates"`
	AreaHectares float64     `json:"area_hectares"`
	CreatedAt    time.Time   `json:"created_at"`
}

// renderLocation maps a store row to the wire shape; absent coordinates read
// as (0, 0).
func renderLocation(loc store.Location) locationResponse {
	out := locationResponse{
		ID:           loc.ID,
		Name:         loc.Name,
		Region:       loc.Region,
		AreaHectares: loc.AreaHectares,
		CreatedAt:    loc.CreatedAt,
	}
	if loc.Lat != nil {
		out.Coordinates.Lat = *loc.Lat
	}
	if loc.Lng != nil {
		out.Coordinates.Lng = *loc.Lng
	}
	return out
}

func (p locationPayload) toInput() store.LocationInput {
	in := store.LocationInput{
		Name:         p.Name,
		Region:       p.Region,
		AreaHectares: p.AreaHectares,
	}
	if p.Coordinates != nil {
		in.Lat = p.Coordinates.Lat
		in.Lng = p.Coordinates.Lng
	}
	return in
}

func (s *Server) handleListLocations(w http.ResponseWriter, r *http.Request) {
	locations, err := s.store.ListLocations(r.Context())
	if err != nil {
		writeStoreError(w, err, "Location not found")
		return
	}
	out := make([]locationResponse, 0, len(locations))
	for _, loc := range locations {
		out = append(out, renderLocation(loc))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetLocation(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "location")
	if !ok {
		return
	}
	loc, err := s.store.GetLocation(r.Context(), id)
	if err != nil {
		writeStoreError(w, err, "Location not found")
		return
	}
	writeJSON(w, http.StatusOK, renderLocation(*loc))
}

func (s *Server) handleCreateLocation(w http.ResponseWriter, r *http.Request) {
	var payload locationPayload
	if !decodeJSON(w, r, &payload) {
		return
	}
	id, err := s.store.CreateLocation(r.Context(), payload.toInput())
	if err != nil {
		writeStoreError(w, err, "Location not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"id": id, "message": "Location added successfully"})
}

func (s *Server) handleUpdateLocation(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "location")
	if !ok {
		return
	}
	var payload locationPayload
	if !decodeJSON(w, r, &payload) {
		return
	}
	if err := s.store.UpdateLocation(r.Context(), id, payload.toInput()); err != nil {
		writeStoreError(w, err, "Location not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Location updated successfully"})
}
