package api

import (
	"net/http"

	"echoes-planner/internal/catalog"
	"echoes-planner/internal/engine"
)

func (s *Server) handleCatalogResources(w http.ResponseWriter, r *http.Request) {
	c, ok := s.getCatalog()
	if !ok {
		writeError(w, 503, "catalog still loading")
		return
	}
	writeJSON(w, c.Resources())
}

func (s *Server) handleCatalogRegions(w http.ResponseWriter, r *http.Request) {
	c, ok := s.getCatalog()
	if !ok {
		writeError(w, 503, "catalog still loading")
		return
	}
	writeJSON(w, c.Regions())
}

func (s *Server) handleCatalogConstellations(w http.ResponseWriter, r *http.Request) {
	c, ok := s.getCatalog()
	if !ok {
		writeError(w, 503, "catalog still loading")
		return
	}
	writeJSON(w, c.Constellations(r.URL.Query()["region"]))
}

func (s *Server) handleCatalogSystems(w http.ResponseWriter, r *http.Request) {
	c, ok := s.getCatalog()
	if !ok {
		writeError(w, 503, "catalog still loading")
		return
	}
	writeJSON(w, c.Systems(r.URL.Query()["constellation"]))
}

// analysisRow is the priced catalog row as served to clients.
type analysisRow struct {
	ID                  string  `json:"id"`
	Region              string  `json:"region"`
	Constellation       string  `json:"constellation"`
	System              string  `json:"system"`
	Planet              string  `json:"planet"`
	PlanetType          string  `json:"planet_type"`
	Resource            string  `json:"resource"`
	Richness            string  `json:"richness"`
	Output              float64 `json:"output"`
	MiningUnits         int     `json:"mining_units"`
	ValuePerHourPerUnit float64 `json:"value_per_hour_per_unit"`
	TotalValuePerHour   float64 `json:"total_value_per_hour"`
	HourlyVolume        float64 `json:"hourly_volume"`
}

func (s *Server) filteredMetrics(r *http.Request, c *catalog.Catalog) []engine.RowMetrics {
	q := r.URL.Query()
	rows := c.Filter(
		q.Get("search"),
		q["region"],
		q["constellation"],
		q["system"],
		q["resource"],
		q["richness"],
	)
	return engine.Analyze(rows, s.session.Prices.All(), s.session.Units.All())
}

func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	c, ok := s.getCatalog()
	if !ok {
		writeError(w, 503, "catalog still loading")
		return
	}
	metrics := s.filteredMetrics(r, c)
	out := make([]analysisRow, 0, len(metrics))
	for _, m := range metrics {
		out = append(out, analysisRow{
			ID:                  m.Row.UnitKey(),
			Region:              m.Row.Region,
			Constellation:       m.Row.Constellation,
			System:              m.Row.System,
			Planet:              m.Row.Planet,
			PlanetType:          m.Row.PlanetType,
			Resource:            m.Row.Resource,
			Richness:            m.Row.Richness,
			Output:              m.Row.Output,
			MiningUnits:         m.Units,
			ValuePerHourPerUnit: m.ValuePerHourPerUnit,
			TotalValuePerHour:   m.TotalValuePerHour,
			HourlyVolume:        m.HourlyVolume,
		})
	}
	writeJSON(w, out)
}

// handleSummary reports income, storage fill times and the transport plan
// for every row carrying mining units, ignoring catalog filters.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	c, ok := s.getCatalog()
	if !ok {
		writeError(w, 503, "catalog still loading")
		return
	}
	metrics := engine.Analyze(c.Rows(), s.session.Prices.All(), s.session.Units.All())
	prefs := s.session.Preferences

	writeJSON(w, map[string]interface{}{
		"income":    engine.Income(metrics, prefs),
		"storage":   engine.StorageFillTimes(metrics, prefs.PlanetaryStorageCapacity),
		"transport": engine.Transport(metrics, prefs.ShipCargoCapacity),
	})
}
