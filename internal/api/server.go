// Package api exposes the planner over HTTP: prices, mining units,
// preferences, history and the income analysis built on top of them.
package api

import (
	"encoding/json"
	"net/http"
	"sync"

	"echoes-planner/internal/auth"
	"echoes-planner/internal/catalog"
	"echoes-planner/internal/config"
	"echoes-planner/internal/session"
)

// ImportArchive retains uploaded price files for later reloading. The file
// backend implements it; the relational backend does not keep raw uploads.
type ImportArchive interface {
	// SaveImport stores an upload and returns the name it was filed under.
	SaveImport(name string, data []byte) (string, error)
	SavedImports() ([]string, error)
	ReadImport(name string) ([]byte, error)
}

// Server is the HTTP API server over one user's session.
type Server struct {
	cfg     *config.Config
	session *session.Session
	users   auth.UserStore
	imports ImportArchive

	mu      sync.RWMutex
	catalog *catalog.Catalog
	ready   bool
}

// NewServer creates a Server. The import archive may be nil when the
// backend does not retain uploads.
func NewServer(cfg *config.Config, sess *session.Session, users auth.UserStore, imports ImportArchive) *Server {
	return &Server{
		cfg:     cfg,
		session: sess,
		users:   users,
		imports: imports,
	}
}

// SetCatalog is called when the planetary dataset finishes loading.
func (s *Server) SetCatalog(c *catalog.Catalog) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.catalog = c
	s.ready = true
}

func (s *Server) getCatalog() (*catalog.Catalog, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.catalog, s.ready
}

// Handler returns the HTTP handler with all API routes and CORS middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/status", s.handleStatus)
	// Prices
	mux.HandleFunc("GET /api/prices", s.handleGetPrices)
	mux.HandleFunc("PUT /api/prices", s.handleSetPrices)
	mux.HandleFunc("POST /api/prices/reload", s.handleReloadPrices)
	mux.HandleFunc("GET /api/prices/export", s.handleExportPrices)
	mux.HandleFunc("POST /api/prices/import", s.handleImportPrices)
	mux.HandleFunc("GET /api/prices/imports", s.handleListImports)
	mux.HandleFunc("POST /api/prices/imports/{name}/load", s.handleLoadImport)
	// Mining units
	mux.HandleFunc("GET /api/units", s.handleGetUnits)
	mux.HandleFunc("PUT /api/units", s.handleSetUnits)
	// Preferences
	mux.HandleFunc("GET /api/preferences", s.handleGetPreferences)
	mux.HandleFunc("PUT /api/preferences", s.handleSetPreferences)
	// History
	mux.HandleFunc("POST /api/history/import", s.handleImportHistory)
	mux.HandleFunc("GET /api/history/dates", s.handleHistoryDates)
	mux.HandleFunc("GET /api/history/prices/{date}", s.handleHistoryPrices)
	mux.HandleFunc("GET /api/history/trends", s.handleHistoryTrends)
	// Catalog
	mux.HandleFunc("GET /api/catalog/resources", s.handleCatalogResources)
	mux.HandleFunc("GET /api/catalog/regions", s.handleCatalogRegions)
	mux.HandleFunc("GET /api/catalog/constellations", s.handleCatalogConstellations)
	mux.HandleFunc("GET /api/catalog/systems", s.handleCatalogSystems)
	// Analysis
	mux.HandleFunc("GET /api/analysis", s.handleAnalysis)
	mux.HandleFunc("GET /api/summary", s.handleSummary)
	// Auth
	mux.HandleFunc("POST /api/auth/register", s.handleRegister)
	mux.HandleFunc("POST /api/auth/login", s.handleLogin)
	return corsMiddleware(mux)
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(204)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	_, ready := s.getCatalog()
	writeJSON(w, map[string]interface{}{
		"status":  "ok",
		"ready":   ready,
		"backend": s.cfg.DataBackend,
		"user":    s.session.Email,
	})
}
