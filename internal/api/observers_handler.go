// File path: internal/api/observers_handler.go
package api

import (
	"net/http"

	"github.com/wildtrack/censusd/internal/store"
)

type observerCreatePayload struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	Organization string `json:"organization"`
	Expertise    string `json:"expertise"`
	JoinDate     string `json:"join_date"`
	Active       *bool  `json:"active"`
}

// observerPatchPayload mirrors store.ObserverPatch: absent JSON fields stay
// nil and are never written.
type observerPatchPayload struct {
	Name         *string `json:"name"`
	Email        *string `json:"email"`
	Phone        *string `json:"phone"`
	Organization *string `json:"organization"`
	Expertise    *string `json:"expertise"`
	JoinDate     *string `json:"join_date"`
	Active       *bool   `json:"active"`
}

func (s *Server) handleListObservers(w http.ResponseWriter, r *http.Request) {
	observers, err := s.store.ListObservers(r.Context())
	if err != nil {
		writeStoreError(w, err, "Observer not found")
		return
	}
	writeJSON(w, http.StatusOK, observers)
}

func (s *Server) handleGetObserver(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "observer")
	if !ok {
		return
	}
	obs, err := s.store.GetObserver(r.Context(), id)
	if err != nil {
		writeStoreError(w, err, "Observer not found")
		return
	}
	writeJSON(w, http.StatusOK, obs)
}

func (s *Server) handleCreateObserver(w http.ResponseWriter, r *http.Request) {
	var payload observerCreatePayload
	if !decodeJSON(w, r, &payload) {
		return
	}
	id, err := s.store.CreateObserver(r.Context(), store.ObserverInput{
		Name:         payload.Name,
		Email:        payload.Email,
		Phone:        payload.Phone,
		Organization: payload.Organization,
		Expertise:    payload.Expertise,
		JoinDate:     payload.JoinDate,
		Active:       payload.Active,
	})
	if err != nil {
		writeStoreError(w, err, "Observer not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"id": id, "message": "Observer added successfully"})
}

func (s *Server) handleUpdateObserver(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "observer")
	if !ok {
		return
	}
	var payload observerPatchPayload
	if !decodeJSON(w, r, &payload) {
		return
	}
	err := s.store.UpdateObserver(r.Context(), id, store.ObserverPatch{
		Name:         payload.Name,
		Email:        payload.Email,
		Phone:        payload.Phone,
		Organization: payload.Organization,
		Expertise:    payload.Expertise,
		JoinDate:     payload.JoinDate,
		Active:       payload.Active,
	})
	if err != nil {
		writeStoreError(w, err, "Observer not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Observer updated successfully"})
}
