package api

import (
	"encoding/json"
	"net/http"

	"echoes-planner/internal/store"
)

func (s *Server) handleGetUnits(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.session.Units.All())
}

// handleSetUnits merges unit assignments keyed by "planetID_resource".
// Negative counts clamp to zero.
func (s *Server) handleSetUnits(w http.ResponseWriter, r *http.Request) {
	var units map[string]int
	if err := json.NewDecoder(r.Body).Decode(&units); err != nil {
		writeError(w, 400, "invalid json")
		return
	}
	for key, n := range units {
		if n < 0 {
			units[key] = 0
		}
	}
	s.session.Units.SetMany(units)
	if err := s.session.Units.Save(); err != nil {
		writeError(w, 500, err.Error())
		return
	}
	writeJSON(w, s.session.Units.All())
}

func (s *Server) handleGetPreferences(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, preferencesPayload(s.session.Preferences))
}

func (s *Server) handleSetPreferences(w http.ResponseWriter, r *http.Request) {
	var in struct {
		TaxRate                  *float64       `json:"tax_rate"`
		ShipCargoCapacity        *float64       `json:"ship_cargo_capacity"`
		PlanetaryStorageCapacity *float64       `json:"planetary_storage_capacity"`
		POSCost                  *float64       `json:"pos_cost"`
		Filters                  map[string]any `json:"filters"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, 400, "invalid json")
		return
	}

	prefs := s.session.Preferences
	if in.TaxRate != nil {
		if *in.TaxRate < 0 || *in.TaxRate > 100 {
			writeError(w, 400, "tax_rate must be between 0 and 100")
			return
		}
		prefs.TaxRate = *in.TaxRate
	}
	if in.ShipCargoCapacity != nil {
		prefs.ShipCargoCapacity = *in.ShipCargoCapacity
	}
	if in.PlanetaryStorageCapacity != nil {
		prefs.PlanetaryStorageCapacity = *in.PlanetaryStorageCapacity
	}
	if in.POSCost != nil {
		prefs.POSCost = *in.POSCost
	}
	if in.Filters != nil {
		prefs.Filters = in.Filters
	}

	s.session.Preferences = prefs
	if err := s.session.SavePreferences(); err != nil {
		writeError(w, 500, err.Error())
		return
	}
	writeJSON(w, preferencesPayload(prefs))
}

func preferencesPayload(p store.Preferences) map[string]interface{} {
	return map[string]interface{}{
		"tax_rate":                   p.TaxRate,
		"ship_cargo_capacity":        p.ShipCargoCapacity,
		"planetary_storage_capacity": p.PlanetaryStorageCapacity,
		"pos_cost":                   p.POSCost,
		"filters":                    p.Filters,
	}
}
