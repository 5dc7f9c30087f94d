package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"echoes-planner/internal/api"
	"echoes-planner/internal/auth"
	"echoes-planner/internal/catalog"
	"echoes-planner/internal/config"
	"echoes-planner/internal/logger"
	"echoes-planner/internal/session"
	"echoes-planner/internal/store"
	"echoes-planner/internal/store/filestore"
	"echoes-planner/internal/store/sqlstore"
)

var version = "dev"

func main() {
	flagPort := flag.Int("port", 0, "HTTP server port (overrides PORT)")
	flag.Parse()

	// Optional .env next to the binary; absence is not an error.
	godotenv.Load()

	logger.Banner(version)

	cfg, err := config.FromEnv()
	if err != nil {
		logger.Error("Config", err.Error())
		os.Exit(1)
	}
	if *flagPort > 0 {
		cfg.Port = *flagPort
	}
	os.MkdirAll(cfg.DataDir, 0o755)

	logger.Section("Storage")
	backend, users, userID, err := openBackend(cfg)
	if err != nil {
		logger.Error("Storage", fmt.Sprintf("Failed to open %s backend: %v", cfg.DataBackend, err))
		os.Exit(1)
	}
	defer backend.Close()
	logger.Success("Storage", fmt.Sprintf("%s backend ready", cfg.DataBackend))

	sess := session.New(backend, userID, cfg.UserEmail)
	if err := sess.Load(); err != nil {
		logger.Error("Session", fmt.Sprintf("Load failed: %v", err))
		os.Exit(1)
	}
	logger.Stats("Prices loaded", len(sess.Prices.All()))
	logger.Stats("Unit assignments", len(sess.Units.All()))

	var imports api.ImportArchive
	if archive, ok := backend.(api.ImportArchive); ok {
		imports = archive
	}
	srv := api.NewServer(cfg, sess, users, imports)

	// Load the planetary catalog in the background; analysis endpoints
	// report 503 until it lands.
	go func() {
		c, err := catalog.Load(cfg.CatalogPath)
		if err != nil {
			logger.Error("Catalog", fmt.Sprintf("Load failed: %v", err))
			return
		}
		srv.SetCatalog(c)
		logger.Success("Catalog", fmt.Sprintf("%d planetary resource rows", c.Len()))
	}()

	addr := fmt.Sprintf("127.0.0.1:%d", cfg.Port)
	logger.Server(addr)
	if err := http.ListenAndServe(addr, srv.Handler()); err != nil {
		logger.Error("Server", fmt.Sprintf("Failed: %v", err))
		os.Exit(1)
	}
}

// openBackend opens the configured storage backend and resolves the
// session user. The file backend scopes data by directory, so its records
// carry no user id; the relational backend provisions a users row.
func openBackend(cfg *config.Config) (store.Backend, auth.UserStore, int64, error) {
	switch cfg.DataBackend {
	case config.BackendSQL:
		st, err := sqlstore.Open(cfg.DatabaseURL, cfg.SQLitePath)
		if err != nil {
			return nil, nil, 0, err
		}
		userID, err := st.EnsureUser(auth.NormalizeEmail(cfg.UserEmail))
		if err != nil {
			st.Close()
			return nil, nil, 0, err
		}
		return st, auth.NewSQLStore(st.DB()), userID, nil

	default:
		st, err := filestore.Open(cfg.UserDataDir(cfg.UserEmail))
		if err != nil {
			return nil, nil, 0, err
		}
		users, err := auth.OpenFileStore(cfg.DataDir)
		if err != nil {
			st.Close()
			return nil, nil, 0, err
		}
		return st, users, 0, nil
	}
}
