// File path: internal/api/server.go
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	chi "github.com/go-chi/chi/v5"

	"github.com/wildtrack/censusd/internal/common"
	"github.com/wildtrack/censusd/internal/store"
)

// Server translates the census REST surface onto store calls. It holds no
// state of its own beyond the store handle.
type Server struct {
	router chi.Router
	store  *store.Store
}

func NewServer(st *store.Store) (*Server, error) {
	logger := common.Logger()
	if st == nil {
		return nil, fmt.Errorf("store required")
	}
	srv := &Server{
		router: chi.NewRouter(),
		store:  st,
	}
	srv.routes()
	logger.Info("api: server ready", "driver", st.Driver())
	return srv, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	logger := common.Logger()
	s.router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			logger.Debug("request", "method", r.Method, "path", r.URL.Path, "dur", time.Since(start), "remote", r.RemoteAddr)
		})
	})

	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/species", s.handleListSpecies)
		r.Post("/species", s.handleCreateSpecies)
		r.Get("/species/population-density", s.handlePopulationDensity)
		r.Get("/species/growth-rates", s.handleGrowthRates)
		r.Get("/species/{id}", s.handleGetSpecies)
		r.Put("/species/{id}", s.handleUpdateSpecies)
		r.Get("/species/{id}/population-density", s.handleSpeciesDensity)
		r.Get("/species/{id}/growth-rate", s.handleSpeciesGrowthRate)

		r.Get("/locations", s.handleListLocations)
		r.Post("/locations", s.handleCreateLocation)
		r.Get("/locations/{id}", s.handleGetLocation)
		r.Put("/locations/{id}", s.handleUpdateLocation)

		r.Get("/observers", s.handleListObservers)
		r.Post("/observers", s.handleCreateObserver)
		r.Get("/observers/{id}", s.handleGetObserver)
		r.Put("/observers/{id}", s.handleUpdateObserver)

		r.Get("/census", s.handleListCensus)
		r.Post("/census", s.handleRecordCensus)
		r.Get("/census/dates", s.handleCensusDates)
		r.Put("/census/{id}", s.handleUpdateCensus)

		r.Get("/reports/census", s.handleCensusReport)
		r.Get("/reports/census/detailed", s.handleDetailedCensusReport)

		r.Get("/conservation-history/{species_id}", s.handleStatusHistory)
		r.Post("/conservation-history", s.handleRecordStatusChange)

		r.Get("/logs", s.handleLogs)
	})
}

func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"logs": common.LogEntries()})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

type errorBody struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func writeError(w http.ResponseWriter, status int, message, details string) {
	logger := common.Logger()
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "status", status, "error", message, "details", details)
	} else {
		logger.Warn("request failed", "status", status, "error", message, "details", details)
	}
	writeJSON(w, status, errorBody{Error: message, Details: details})
}

// writeStoreError maps the store error taxonomy onto HTTP statuses. notFound
// names the missing entity for 404 bodies. Unclassified failures become a
// generic 500; the detail is logged for operators only.
func writeStoreError(w http.ResponseWriter, err error, notFound string) {
	var vErr *store.ValidationError
	if errors.As(err, &vErr) {
		writeError(w, http.StatusBadRequest, vErr.Msg, vErr.Details)
		return
	}
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, notFound, "")
		return
	}
	var cErr *store.ConflictError
	if errors.As(err, &cErr) {
		writeError(w, http.StatusBadRequest, "invalid reference", fmt.Sprintf("conflicting %s", cErr.Reference))
		return
	}
	common.Logger().Error("store failure", "error", err)
	writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal server error"})
}

func pathID(w http.ResponseWriter, r *http.Request, name, noun string) (int64, bool) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid %s ID", noun), "")
		return 0, false
	}
	return id, true
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dest interface{}) bool {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return false
	}
	return true
}
