package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"echoes-planner/internal/pricefile"
)

// Uploads are small CSV documents; anything bigger is a mistake.
const maxUploadBytes = 4 << 20

func (s *Server) handleGetPrices(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.session.Prices.All())
}

func (s *Server) handleSetPrices(w http.ResponseWriter, r *http.Request) {
	var prices map[string]float64
	if err := json.NewDecoder(r.Body).Decode(&prices); err != nil {
		writeError(w, 400, "invalid json")
		return
	}
	if err := s.session.ImportPrices(prices); err != nil {
		writeError(w, 500, err.Error())
		return
	}
	writeJSON(w, s.session.Prices.All())
}

func (s *Server) handleReloadPrices(w http.ResponseWriter, r *http.Request) {
	if err := s.session.Prices.Load(); err != nil {
		writeError(w, 500, err.Error())
		return
	}
	writeJSON(w, s.session.Prices.All())
}

func (s *Server) handleExportPrices(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := pricefile.WriteSimple(&buf, s.session.Prices.All()); err != nil {
		writeError(w, 500, err.Error())
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="current_prices.csv"`)
	w.Write(buf.Bytes())
}

// handleImportPrices accepts a simple resource,price CSV body. The filename
// query names the upload for the retention archive.
func (s *Server) handleImportPrices(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxUploadBytes))
	if err != nil {
		writeError(w, 400, "read body")
		return
	}
	prices, err := pricefile.ParseSimple(bytes.NewReader(body))
	if err != nil {
		writeError(w, 400, "invalid csv")
		return
	}
	if len(prices) == 0 {
		writeError(w, 400, "no usable rows")
		return
	}

	if name := r.URL.Query().Get("filename"); name != "" && s.imports != nil {
		if _, err := s.imports.SaveImport(name, body); err != nil {
			writeError(w, 500, err.Error())
			return
		}
	}
	if err := s.session.ImportPrices(prices); err != nil {
		writeError(w, 500, err.Error())
		return
	}
	writeJSON(w, map[string]interface{}{"imported": len(prices)})
}

func (s *Server) handleListImports(w http.ResponseWriter, r *http.Request) {
	if s.imports == nil {
		writeJSON(w, []string{})
		return
	}
	names, err := s.imports.SavedImports()
	if err != nil {
		writeError(w, 500, err.Error())
		return
	}
	if names == nil {
		names = []string{}
	}
	writeJSON(w, names)
}

// handleLoadImport re-applies a previously saved price file. Files whose
// name carries a YYYY-MM-DD date also re-enter the history ledger under
// that date.
func (s *Server) handleLoadImport(w http.ResponseWriter, r *http.Request) {
	if s.imports == nil {
		writeError(w, 404, "import archive not available on this backend")
		return
	}
	name := r.PathValue("name")
	body, err := s.imports.ReadImport(name)
	if err != nil {
		writeError(w, 404, "import not found")
		return
	}

	if !pricefile.LooksLikeHistory(bytes.NewReader(body)) {
		prices, err := pricefile.ParseSimple(bytes.NewReader(body))
		if err != nil || len(prices) == 0 {
			writeError(w, 400, "invalid csv")
			return
		}
		if err := s.session.ImportPrices(prices); err != nil {
			writeError(w, 500, err.Error())
			return
		}
		writeJSON(w, map[string]interface{}{"loaded": name, "imported": len(prices)})
		return
	}

	rows, err := pricefile.ParseHistory(bytes.NewReader(body))
	if err != nil || len(rows) == 0 {
		writeError(w, 400, "invalid csv")
		return
	}

	var fallback time.Time
	if day, ok := pricefile.DateFromFilename(name); ok {
		fallback, _ = time.Parse("2006-01-02", day)
	}
	n, err := s.session.ImportHistory(rows, fallback, true)
	if err != nil {
		writeError(w, 500, err.Error())
		return
	}
	writeJSON(w, map[string]interface{}{"loaded": name, "imported": n})
}
