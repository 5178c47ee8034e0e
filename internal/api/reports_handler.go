// File path: internal/api/reports_handler.go
package api

import "net/http"

func (s *Server) handleCensusReport(w http.ResponseWriter, r *http.Request) {
	start := r.URL.Query().Get("start_date")
	end := r.URL.Query().Get("end_date")
	if start == "" || end == "" {
		writeError(w, http.StatusBadRequest, "Start date and end date are required", "")
		return
	}
	rows, err := s.store.CensusReport(r.Context(), start, end)
	if err != nil {
		writeStoreError(w, err, "Census record not found")
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) handleDetailedCensusReport(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("census_date")
	if date == "" {
		writeError(w, http.StatusBadRequest, "Census date is required", "")
		return
	}
	rows, err := s.store.DetailedCensusReport(r.Context(), date)
	if err != nil {
		writeStoreError(w, err, "No census records found for the selected date")
		return
	}
	writeJSON(w, http.StatusOK, rows)
}
