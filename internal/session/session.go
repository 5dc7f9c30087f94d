// Package session ties one user's working state together: the shared
// backend, the in-memory price and unit caches, the history ledger and the
// user's preferences.
package session

import (
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"echoes-planner/internal/store"
)

// Session is a logged-in user's view of the data layer.
type Session struct {
	UserID int64
	Email  string

	Prices *store.PriceCache
	Units  *store.UnitCache
	Ledger *store.Ledger
	Prefs  *store.PrefStore

	// Preferences is the last loaded copy. Mutate and call SavePreferences.
	Preferences store.Preferences

	backend store.Backend
}

// New builds a session over the backend. Call Load before use.
func New(backend store.Backend, userID int64, email string) *Session {
	return &Session{
		UserID:      userID,
		Email:       email,
		Prices:      store.NewPriceCache(backend),
		Units:       store.NewUnitCache(backend),
		Ledger:      store.NewLedger(backend),
		Prefs:       store.NewPrefStore(backend, userID),
		Preferences: store.DefaultPreferences(),
		backend:     backend,
	}
}

// Load pulls prices, units and preferences from the backend concurrently.
func (s *Session) Load() error {
	var g errgroup.Group
	g.Go(s.Prices.Load)
	g.Go(s.Units.Load)
	g.Go(func() error {
		prefs, err := s.Prefs.Load()
		if err != nil {
			return err
		}
		s.Preferences = prefs
		return nil
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	return nil
}

// SavePreferences persists the current Preferences copy.
func (s *Session) SavePreferences() error {
	return s.Prefs.Save(s.Preferences)
}

// ImportPrices merges a simple price map into the cache and persists it.
func (s *Session) ImportPrices(prices map[string]float64) error {
	s.Prices.SetMany(prices)
	return s.Prices.Save()
}

// ImportHistory appends market snapshots to the ledger and, when asked,
// adopts the snapshot prices as the current defaults. The ledger append and
// the price update are separate writes; a failed price update leaves the
// appended history in place.
func (s *Session) ImportHistory(rows []store.Snapshot, fallback time.Time, setCurrent bool) (int, error) {
	appended, err := s.Ledger.Append(rows, s.UserID, fallback)
	if err != nil {
		return 0, err
	}
	if !setCurrent {
		return appended, nil
	}

	prices := make(map[string]float64)
	for _, row := range rows {
		name := store.NormalizeResource(row.Resource)
		if name == "" {
			continue
		}
		switch {
		case row.Average != nil:
			prices[name] = *row.Average
		case row.Buy != nil:
			prices[name] = *row.Buy
		default:
			prices[name] = 0
		}
	}
	if err := s.ImportPrices(prices); err != nil {
		return appended, fmt.Errorf("history appended but price update failed: %w", err)
	}
	return appended, nil
}

// Close releases the backend.
func (s *Session) Close() error {
	return s.backend.Close()
}
