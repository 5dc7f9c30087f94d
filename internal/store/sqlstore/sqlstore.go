// Package sqlstore is the relational backend. It speaks two dialects: local
// SQLite (modernc, cgo-free) and MySQL for managed databases. Every logical
// operation runs in its own transaction; there are no cross-call
// transactions, so an import that also refreshes the price cache is two
// separate units of work.
package sqlstore

import (
	"database/sql"
	"fmt"
	"time"

	"echoes-planner/internal/logger"

	_ "github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"
)

// Dialect names.
const (
	DialectSQLite = "sqlite"
	DialectMySQL  = "mysql"
)

// Store wraps a relational database connection.
type Store struct {
	sql     *sql.DB
	dialect string
}

// Open connects to the relational backend and runs migrations. A non-empty
// databaseURL is treated as a MySQL DSN (managed database); otherwise a
// local SQLite file at sqlitePath is used.
//
// Managed databases drop idle connections, so the pool recycles connections
// periodically and verifies the link with a ping at open.
func Open(databaseURL, sqlitePath string) (*Store, error) {
	var (
		db      *sql.DB
		dialect string
		err     error
	)
	if databaseURL != "" {
		dialect = DialectMySQL
		db, err = sql.Open("mysql", databaseURL)
	} else {
		dialect = DialectSQLite
		db, err = sql.Open("sqlite", sqlitePath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	}
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db.SetMaxOpenConns(7)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	s := &Store{sql: db, dialect: dialect}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate db: %w", err)
	}
	logger.Success("DB", fmt.Sprintf("Opened %s backend", dialect))
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.sql.Close()
}

// DB returns the underlying *sql.DB for use by other packages (e.g. the
// auth user store).
func (s *Store) DB() *sql.DB {
	return s.sql
}

// Dialect returns the active dialect name.
func (s *Store) Dialect() string {
	return s.dialect
}

func (s *Store) migrate() error {
	version := 0
	// Try to read current version; the table may not exist yet.
	s.sql.QueryRow("SELECT version FROM schema_version ORDER BY version DESC LIMIT 1").Scan(&version)

	if version < 1 {
		for _, stmt := range ddlV1(s.dialect) {
			if _, err := s.sql.Exec(stmt); err != nil {
				return fmt.Errorf("migration v1: %w", err)
			}
		}
		if _, err := s.sql.Exec("INSERT INTO schema_version (version) VALUES (1)"); err != nil {
			return fmt.Errorf("migration v1: %w", err)
		}
		logger.Info("DB", "Applied migration v1")
	}

	return nil
}

// ddlV1 returns the v1 schema, one statement per entry (the MySQL driver
// rejects multi-statement Exec by default).
func ddlV1(dialect string) []string {
	if dialect == DialectMySQL {
		return []string{
			`CREATE TABLE IF NOT EXISTS schema_version (version INT PRIMARY KEY)`,
			`CREATE TABLE IF NOT EXISTS users (
				id            BIGINT AUTO_INCREMENT PRIMARY KEY,
				email         VARCHAR(255) NOT NULL UNIQUE,
				password_hash VARCHAR(255),
				created_at    VARCHAR(64) NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS user_preferences (
				id       BIGINT AUTO_INCREMENT PRIMARY KEY,
				user_id  BIGINT NOT NULL,
				` + "`key`" + `  VARCHAR(128) NOT NULL,
				value    TEXT NOT NULL,
				UNIQUE KEY uq_user_pref (user_id, ` + "`key`" + `),
				FOREIGN KEY (user_id) REFERENCES users(id)
			)`,
			`CREATE TABLE IF NOT EXISTS prices (
				id       BIGINT AUTO_INCREMENT PRIMARY KEY,
				resource VARCHAR(128) NOT NULL UNIQUE,
				price    DOUBLE NOT NULL DEFAULT 0
			)`,
			`CREATE TABLE IF NOT EXISTS price_history (
				id         BIGINT AUTO_INCREMENT PRIMARY KEY,
				user_id    BIGINT,
				resource   VARCHAR(128) NOT NULL,
				price_buy  DOUBLE,
				price_sell DOUBLE,
				price_avg  DOUBLE,
				date       VARCHAR(64) NOT NULL,
				INDEX idx_price_history_date (date),
				INDEX idx_price_history_resource (resource)
			)`,
			`CREATE TABLE IF NOT EXISTS mining_units (
				id           BIGINT AUTO_INCREMENT PRIMARY KEY,
				resource_key VARCHAR(128) NOT NULL UNIQUE,
				units        INT NOT NULL DEFAULT 0
			)`,
		}
	}
	return []string{
		`CREATE TABLE IF NOT EXISTS schema_version (version INTEGER PRIMARY KEY)`,
		`CREATE TABLE IF NOT EXISTS users (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			email         TEXT NOT NULL UNIQUE,
			password_hash TEXT,
			created_at    TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS user_preferences (
			id      INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL REFERENCES users(id),
			key     TEXT NOT NULL,
			value   TEXT NOT NULL,
			UNIQUE(user_id, key)
		)`,
		`CREATE TABLE IF NOT EXISTS prices (
			id       INTEGER PRIMARY KEY AUTOINCREMENT,
			resource TEXT NOT NULL UNIQUE,
			price    REAL NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS price_history (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id    INTEGER,
			resource   TEXT NOT NULL,
			price_buy  REAL,
			price_sell REAL,
			price_avg  REAL,
			date       TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_price_history_date ON price_history(date)`,
		`CREATE INDEX IF NOT EXISTS idx_price_history_resource ON price_history(resource)`,
		`CREATE TABLE IF NOT EXISTS mining_units (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			resource_key TEXT NOT NULL UNIQUE,
			units        INTEGER NOT NULL DEFAULT 0
		)`,
	}
}
