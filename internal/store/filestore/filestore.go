// Package filestore is the flat-file backend: one directory per user holding
// whole-document JSON maps for prices, mining units and preferences, an
// append-only JSONL ledger for price history, and retained CSV imports.
//
// Saves are unsynchronized read-modify-write of the whole document, so two
// concurrent sessions for the same user can lose updates (last write wins).
// That matches the original behavior and is an accepted limitation.
package filestore

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"echoes-planner/internal/store"
)

const (
	pricesFile  = "prices.json"
	unitsFile   = "mining_units.json"
	prefsFile   = "preferences.json"
	historyFile = "price_history.jsonl"
	importsDir  = "price_imports"
)

// Store is the file backend rooted at one user's data directory.
type Store struct {
	dir string
}

// Open creates (if needed) the user directory and its imports subdirectory.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(filepath.Join(dir, importsDir), 0755); err != nil {
		return nil, fmt.Errorf("create user dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the backend's root directory.
func (s *Store) Dir() string { return s.dir }

// Close is a no-op; the file backend holds no open handles between calls.
func (s *Store) Close() error { return nil }

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, name)
}

// readDoc decodes a whole JSON document into dst. A missing file leaves dst
// untouched (empty map semantics).
func (s *Store) readDoc(name string, dst any) error {
	data, err := os.ReadFile(s.path(name))
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return nil
}

func (s *Store) writeDoc(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	if err := os.WriteFile(s.path(name), append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

// LoadPrices reads the resource→price document.
func (s *Store) LoadPrices() (map[string]float64, error) {
	prices := make(map[string]float64)
	if err := s.readDoc(pricesFile, &prices); err != nil {
		return nil, err
	}
	return prices, nil
}

// SavePrices merges the given prices into the stored document. Keys absent
// from the argument keep their last saved value (upsert-only, no deletion).
func (s *Store) SavePrices(prices map[string]float64) error {
	doc := make(map[string]float64)
	if err := s.readDoc(pricesFile, &doc); err != nil {
		return err
	}
	for k, v := range prices {
		doc[k] = v
	}
	return s.writeDoc(pricesFile, doc)
}

// LoadUnits reads the resource-key→unit-count document.
func (s *Store) LoadUnits() (map[string]int, error) {
	units := make(map[string]int)
	if err := s.readDoc(unitsFile, &units); err != nil {
		return nil, err
	}
	return units, nil
}

// SaveUnits merges unit counts into the stored document (upsert-only).
func (s *Store) SaveUnits(units map[string]int) error {
	doc := make(map[string]int)
	if err := s.readDoc(unitsFile, &doc); err != nil {
		return err
	}
	for k, v := range units {
		doc[k] = v
	}
	return s.writeDoc(unitsFile, doc)
}

// historyLine is one JSONL ledger record.
type historyLine struct {
	UserID   int64    `json:"user_id,omitempty"`
	Resource string   `json:"resource"`
	Buy      *float64 `json:"buy,omitempty"`
	Sell     *float64 `json:"sell,omitempty"`
	Average  *float64 `json:"average,omitempty"`
	Date     string   `json:"date"`
}

// AppendHistory appends one line per record to the ledger file.
func (s *Store) AppendHistory(records []store.HistoryRecord) error {
	f, err := os.OpenFile(s.path(historyFile), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	for _, r := range records {
		line := historyLine{
			UserID:   r.UserID,
			Resource: r.Resource,
			Buy:      r.Buy,
			Sell:     r.Sell,
			Average:  r.Average,
			Date:     r.Date.UTC().Format(time.RFC3339),
		}
		if err := enc.Encode(line); err != nil {
			return fmt.Errorf("append history: %w", err)
		}
	}
	return w.Flush()
}

func (s *Store) scanHistory(visit func(store.HistoryRecord)) error {
	f, err := os.Open(s.path(historyFile))
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		var line historyLine
		if err := json.Unmarshal([]byte(text), &line); err != nil {
			continue // tolerate a torn trailing line
		}
		date, err := time.Parse(time.RFC3339, line.Date)
		if err != nil {
			continue
		}
		visit(store.HistoryRecord{
			UserID:   line.UserID,
			Resource: line.Resource,
			Buy:      line.Buy,
			Sell:     line.Sell,
			Average:  line.Average,
			Date:     date,
		})
	}
	return scanner.Err()
}

// HistoryDates returns the distinct ledger dates in ascending order.
func (s *Store) HistoryDates(userID int64) ([]time.Time, error) {
	seen := make(map[time.Time]bool)
	var dates []time.Time
	err := s.scanHistory(func(r store.HistoryRecord) {
		if userID != 0 && r.UserID != userID {
			return
		}
		if !seen[r.Date] {
			seen[r.Date] = true
			dates = append(dates, r.Date)
		}
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates, nil
}

// HistoryAt returns the records for an exact date in file (insertion) order.
func (s *Store) HistoryAt(date time.Time, userID int64) ([]store.HistoryRecord, error) {
	var out []store.HistoryRecord
	err := s.scanHistory(func(r store.HistoryRecord) {
		if userID != 0 && r.UserID != userID {
			return
		}
		if r.Date.Equal(date) {
			out = append(out, r)
		}
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// LoadPreferences reads the preferences document. The directory is already
// per-user, so userID is not part of the file layout.
func (s *Store) LoadPreferences(userID int64) (map[string]any, error) {
	prefs := make(map[string]any)
	if err := s.readDoc(prefsFile, &prefs); err != nil {
		return nil, err
	}
	return prefs, nil
}

// SavePreferences merges the given keys into the preferences document;
// absent keys are left untouched.
func (s *Store) SavePreferences(userID int64, prefs map[string]any) error {
	doc := make(map[string]any)
	if err := s.readDoc(prefsFile, &doc); err != nil {
		return err
	}
	for k, v := range prefs {
		doc[k] = v
	}
	return s.writeDoc(prefsFile, doc)
}

// SaveImport retains an uploaded CSV under price_imports/ for later
// re-selection. The name is reduced to its base to keep writes inside the
// user directory.
func (s *Store) SaveImport(name string, data []byte) (string, error) {
	name = filepath.Base(name)
	if name == "." || name == string(filepath.Separator) || name == "" {
		return "", fmt.Errorf("invalid import name")
	}
	path := filepath.Join(s.dir, importsDir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("save import: %w", err)
	}
	return name, nil
}

// SavedImports lists retained CSV import files, sorted by name.
func (s *Store) SavedImports() ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.dir, importsDir))
	if err != nil {
		return nil, fmt.Errorf("list imports: %w", err)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(strings.ToLower(e.Name()), ".csv") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// ReadImport reads back a retained import file.
func (s *Store) ReadImport(name string) ([]byte, error) {
	name = filepath.Base(name)
	data, err := os.ReadFile(filepath.Join(s.dir, importsDir, name))
	if os.IsNotExist(err) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read import: %w", err)
	}
	return data, nil
}
