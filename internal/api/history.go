package api

import (
	"bytes"
	"io"
	"net/http"
	"time"

	"echoes-planner/internal/engine"
	"echoes-planner/internal/pricefile"
	"echoes-planner/internal/store"
)

// handleImportHistory accepts a resource,buy,sell,average[,date] CSV body.
// Rows without a date use the filename date when one is present, otherwise
// the current time. With set_current=true the snapshot also becomes the
// default price table.
func (s *Server) handleImportHistory(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxUploadBytes))
	if err != nil {
		writeError(w, 400, "read body")
		return
	}
	rows, err := pricefile.ParseHistory(bytes.NewReader(body))
	if err != nil {
		writeError(w, 400, "invalid csv")
		return
	}
	if len(rows) == 0 {
		writeError(w, 400, "no usable rows")
		return
	}

	name := r.URL.Query().Get("filename")
	var fallback time.Time
	if day, ok := pricefile.DateFromFilename(name); ok {
		fallback, _ = time.Parse("2006-01-02", day)
	}
	if name != "" && s.imports != nil {
		if _, err := s.imports.SaveImport(name, body); err != nil {
			writeError(w, 500, err.Error())
			return
		}
	}

	setCurrent := r.URL.Query().Get("set_current") == "true"
	n, err := s.session.ImportHistory(rows, fallback, setCurrent)
	if err != nil {
		writeError(w, 500, err.Error())
		return
	}
	writeJSON(w, map[string]interface{}{"imported": n})
}

func (s *Server) handleHistoryDates(w http.ResponseWriter, r *http.Request) {
	dates, err := s.session.Ledger.DistinctDates(s.session.UserID)
	if err != nil {
		writeError(w, 500, err.Error())
		return
	}
	out := make([]string, 0, len(dates))
	for _, d := range dates {
		out = append(out, d.Format("2006-01-02"))
	}
	writeJSON(w, out)
}

func (s *Server) handleHistoryPrices(w http.ResponseWriter, r *http.Request) {
	date, err := time.Parse("2006-01-02", r.PathValue("date"))
	if err != nil {
		writeError(w, 400, "date must be YYYY-MM-DD")
		return
	}
	prices, err := s.session.Ledger.PriceMapAtDate(date, s.session.UserID)
	if err != nil {
		writeError(w, 500, err.Error())
		return
	}
	writeJSON(w, prices)
}

// handleHistoryTrends returns per-resource series in gross and net form
// plus the latest-net-buy summary table.
func (s *Server) handleHistoryTrends(w http.ResponseWriter, r *http.Request) {
	dates, err := s.session.Ledger.DistinctDates(s.session.UserID)
	if err != nil {
		writeError(w, 500, err.Error())
		return
	}
	var records []store.HistoryRecord
	for _, d := range dates {
		recs, err := s.session.Ledger.RecordsAt(d, s.session.UserID)
		if err != nil {
			writeError(w, 500, err.Error())
			return
		}
		records = append(records, recs...)
	}

	mult := s.session.Preferences.TaxMultiplier()
	trends := engine.BuildTrends(records)
	net := make(map[string][]engine.TrendPoint, len(trends))
	for resource, series := range trends {
		net[resource] = engine.NetTrend(series, mult)
	}
	writeJSON(w, map[string]interface{}{
		"gross":   trends,
		"net":     net,
		"summary": engine.TrendSummaries(trends, mult),
	})
}
