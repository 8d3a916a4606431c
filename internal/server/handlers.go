package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"aulepi/internal/geo"
	"aulepi/internal/metrics"
	"aulepi/internal/model"
)

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	fmt.Fprint(w, "AulePi backend server.")
}

func (s *Server) handleTest(w http.ResponseWriter, _ *http.Request) {
	writeJson(w, http.StatusOK, map[string]string{"message": "Test route is working!"})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJson(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleOpenClassrooms(w http.ResponseWriter, r *http.Request) {
	now := s.clock().In(s.loc)

	raw, err := s.daySnapshot(r.Context(), now)
	if err != nil {
		s.logger.Error("cannot load day calendar", "error", err)
		writeJson(w, http.StatusBadGateway, map[string]string{"error": "calendar data unavailable"})
		return
	}

	writeJson(w, http.StatusOK, s.assemble(raw, now).Buildings)
}

type userLocation struct {
	Lat *float64 `json:"lat"`
	Lng *float64 `json:"lng"`
}

// handleOpenClassroomsNearby is the GET variant plus a per-building
// distance from the caller's position, so the frontend can offer the
// closest usable room.
func (s *Server) handleOpenClassroomsNearby(w http.ResponseWriter, r *http.Request) {
	var location userLocation
	if err := json.NewDecoder(r.Body).Decode(&location); err != nil {
		writeJson(w, http.StatusBadRequest, map[string]string{"error": "No data provided"})
		return
	}
	if location.Lat == nil || location.Lng == nil {
		writeJson(w, http.StatusBadRequest, map[string]string{"error": "Invalid location data. 'lat' and 'lng' are required."})
		return
	}

	now := s.clock().In(s.loc)
	raw, err := s.daySnapshot(r.Context(), now)
	if err != nil {
		s.logger.Error("cannot load day calendar", "error", err)
		writeJson(w, http.StatusBadGateway, map[string]string{"error": "calendar data unavailable"})
		return
	}

	for i, building := range raw.Buildings {
		// Coordinates are stored [longitude, latitude].
		raw.Buildings[i].Distance = geo.Distance(
			*location.Lat, *location.Lng,
			building.Coordinates[1], building.Coordinates[0],
		)
	}

	writeJson(w, http.StatusOK, s.assemble(raw, now).Buildings)
}

func (s *Server) assemble(raw model.RawSnapshot, now time.Time) model.Snapshot {
	start := time.Now()
	snapshot := s.assembler.Assemble(raw, now)
	metrics.SnapshotBuildSeconds.Observe(time.Since(start).Seconds())
	return snapshot
}

func writeJson(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
