package sqlstore

import (
	"database/sql"
	"testing"
	"time"

	"echoes-planner/internal/store"

	_ "modernc.org/sqlite"
)

// openTestStore opens an in-memory SQLite store and runs migrations.
func openTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		t.Fatalf("open in-memory db: %v", err)
	}
	// An in-memory database exists per connection; keep the pool at one.
	db.SetMaxOpenConns(1)
	s := &Store{sql: db, dialect: DialectSQLite}
	if err := s.migrate(); err != nil {
		db.Close()
		t.Fatalf("migrate: %v", err)
	}
	return s
}

func fptr(v float64) *float64 { return &v }

func TestMigrateIdempotent(t *testing.T) {
	s := openTestStore(t)
	defer s.Close()
	if err := s.migrate(); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
}

func TestPricesRoundTripAndUpsert(t *testing.T) {
	s := openTestStore(t)
	defer s.Close()

	if err := s.SavePrices(map[string]float64{"Base Metals": 10, "Plasmoids": 7.5}); err != nil {
		t.Fatalf("save: %v", err)
	}
	prices, err := s.LoadPrices()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if prices["Base Metals"] != 10 || prices["Plasmoids"] != 7.5 {
		t.Errorf("prices = %v", prices)
	}

	// Saving a map without Plasmoids must update Base Metals and leave the
	// Plasmoids row behind with its last saved price.
	if err := s.SavePrices(map[string]float64{"Base Metals": 12}); err != nil {
		t.Fatalf("save 2: %v", err)
	}
	prices, err = s.LoadPrices()
	if err != nil {
		t.Fatalf("load 2: %v", err)
	}
	if prices["Base Metals"] != 12 {
		t.Errorf("Base Metals = %v, want 12", prices["Base Metals"])
	}
	if prices["Plasmoids"] != 7.5 {
		t.Errorf("Plasmoids = %v, want 7.5 (no deletion)", prices["Plasmoids"])
	}

	var count int
	s.sql.QueryRow("SELECT COUNT(*) FROM prices WHERE resource = ?", "Base Metals").Scan(&count)
	if count != 1 {
		t.Errorf("Base Metals rows = %d, want 1 (update, not duplicate insert)", count)
	}
}

func TestUnitsRoundTrip(t *testing.T) {
	s := openTestStore(t)
	defer s.Close()

	if err := s.SaveUnits(map[string]int{"p1_Base Metals": 3}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := s.SaveUnits(map[string]int{"p1_Base Metals": 4, "p2_Plasmoids": 5}); err != nil {
		t.Fatalf("save 2: %v", err)
	}
	units, err := s.LoadUnits()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if units["p1_Base Metals"] != 4 || units["p2_Plasmoids"] != 5 {
		t.Errorf("units = %v", units)
	}
}

func TestHistoryAppendAndQuery(t *testing.T) {
	s := openTestStore(t)
	defer s.Close()

	d1 := time.Date(2024, 7, 30, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2024, 7, 31, 0, 0, 0, 0, time.UTC)
	err := s.AppendHistory([]store.HistoryRecord{
		{Resource: "Plasmoids", Average: fptr(7.5), Date: d2},
		{Resource: "Base Metals", Buy: fptr(5), Date: d1},
		{Resource: "Base Metals", Buy: fptr(6), Date: d2},
	})
	if err != nil {
		t.Fatalf("append: %v", err)
	}

	dates, err := s.HistoryDates(0)
	if err != nil {
		t.Fatalf("dates: %v", err)
	}
	if len(dates) != 2 || !dates[0].Equal(d1) || !dates[1].Equal(d2) {
		t.Fatalf("dates = %v, want ascending [%v %v]", dates, d1, d2)
	}

	records, err := s.HistoryAt(d2, 0)
	if err != nil {
		t.Fatalf("at: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("records = %d, want 2", len(records))
	}
	if records[0].Resource != "Plasmoids" || records[1].Resource != "Base Metals" {
		t.Errorf("insertion order lost: %+v", records)
	}
	if records[0].Average == nil || *records[0].Average != 7.5 {
		t.Errorf("Plasmoids average = %v", records[0].Average)
	}
	if records[0].Buy != nil || records[0].Sell != nil {
		t.Errorf("absent columns should scan as nil: %+v", records[0])
	}
}

func TestHistoryUserScope(t *testing.T) {
	s := openTestStore(t)
	defer s.Close()

	d := time.Date(2024, 7, 31, 0, 0, 0, 0, time.UTC)
	err := s.AppendHistory([]store.HistoryRecord{
		{UserID: 1, Resource: "Mine", Average: fptr(1), Date: d},
		{UserID: 2, Resource: "Theirs", Average: fptr(2), Date: d},
		{Resource: "Global", Average: fptr(3), Date: d},
	})
	if err != nil {
		t.Fatalf("append: %v", err)
	}

	records, err := s.HistoryAt(d, 1)
	if err != nil {
		t.Fatalf("at: %v", err)
	}
	if len(records) != 1 || records[0].Resource != "Mine" {
		t.Errorf("user-scoped = %+v", records)
	}

	all, err := s.HistoryAt(d, 0)
	if err != nil {
		t.Fatalf("at all: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("unscoped = %d records, want 3", len(all))
	}
	// The global record's user_id is stored as NULL and scans back to 0.
	if all[2].UserID != 0 {
		t.Errorf("global record UserID = %d, want 0", all[2].UserID)
	}
}

func TestPreferencesRoundTrip(t *testing.T) {
	s := openTestStore(t)
	defer s.Close()

	uid, err := s.EnsureUser("miner@example.com")
	if err != nil {
		t.Fatalf("ensure user: %v", err)
	}

	in := map[string]any{
		"tax_rate":        8.0,
		"resource_filter": []any{"Plasmoids"},
		"note":            "hello",
	}
	if err := s.SavePreferences(uid, in); err != nil {
		t.Fatalf("save: %v", err)
	}
	// Partial save keeps the other keys.
	if err := s.SavePreferences(uid, map[string]any{"tax_rate": 10.0}); err != nil {
		t.Fatalf("save 2: %v", err)
	}

	prefs, err := s.LoadPreferences(uid)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if prefs["tax_rate"] != 10.0 {
		t.Errorf("tax_rate = %v, want 10", prefs["tax_rate"])
	}
	if prefs["note"] != "hello" {
		t.Errorf("note = %v", prefs["note"])
	}
	filter, ok := prefs["resource_filter"].([]any)
	if !ok || len(filter) != 1 || filter[0] != "Plasmoids" {
		t.Errorf("resource_filter = %v", prefs["resource_filter"])
	}
}

func TestPreferences_UndecodableValueReturnedRaw(t *testing.T) {
	s := openTestStore(t)
	defer s.Close()

	uid, err := s.EnsureUser("miner@example.com")
	if err != nil {
		t.Fatalf("ensure user: %v", err)
	}
	// A foreign writer stored a bare, non-JSON string.
	_, err = s.sql.Exec("INSERT INTO user_preferences (user_id, `key`, value) VALUES (?, ?, ?)",
		uid, "legacy", "not json {")
	if err != nil {
		t.Fatalf("insert raw: %v", err)
	}

	prefs, err := s.LoadPreferences(uid)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if prefs["legacy"] != "not json {" {
		t.Errorf("legacy = %v, want raw string", prefs["legacy"])
	}
}

func TestEnsureUser(t *testing.T) {
	s := openTestStore(t)
	defer s.Close()

	id1, err := s.EnsureUser("miner@example.com")
	if err != nil {
		t.Fatalf("ensure: %v", err)
	}
	id2, err := s.EnsureUser("miner@example.com")
	if err != nil {
		t.Fatalf("ensure again: %v", err)
	}
	if id1 != id2 {
		t.Errorf("EnsureUser not stable: %d then %d", id1, id2)
	}

	if _, err := s.UserID("stranger@example.com"); err != store.ErrNotFound {
		t.Errorf("UserID(unknown) err = %v, want ErrNotFound", err)
	}
}
