// File path: internal/api/conservation_handler.go
package api

import (
	"net/http"

	"github.com/wildtrack/censusd/internal/store"
)

type statusChangePayload struct {
	SpeciesID      int64  `json:"species_id"`
	PreviousStatus string `json:"previous_status"`
	NewStatus      string `json:"new_status"`
	Reason         string `json:"reason"`
	ChangedBy      string `json:"changed_by"`
}

func (s *Server) handleStatusHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "species_id", "species")
	if !ok {
		return
	}
	history, err := s.store.StatusHistory(r.Context(), id)
	if err != nil {
		writeStoreError(w, err, "Species not found")
		return
	}
	writeJSON(w, http.StatusOK, history)
}

func (s *Server) handleRecordStatusChange(w http.ResponseWriter, r *http.Request) {
	var payload statusChangePayload
	if !decodeJSON(w, r, &payload) {
		return
	}
	id, err := s.store.RecordStatusChange(r.Context(), store.StatusChangeInput{
		SpeciesID:      payload.SpeciesID,
		PreviousStatus: payload.PreviousStatus,
		NewStatus:      payload.NewStatus,
		Reason:         payload.Reason,
		ChangedBy:      payload.ChangedBy,
	})
	if err != nil {
		writeStoreError(w, err, "Species not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"id": id, "message": "Conservation status updated successfully"})
}
