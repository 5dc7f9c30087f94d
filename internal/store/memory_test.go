package store

import (
	"sort"
	"time"
)

// memoryBackend is a test double implementing Backend with plain maps.
type memoryBackend struct {
	prices  map[string]float64
	units   map[string]int
	history []HistoryRecord
	prefs   map[int64]map[string]any

	failNext error // returned by the next operation, then cleared
}

func newMemoryBackend() *memoryBackend {
	return &memoryBackend{
		prices: make(map[string]float64),
		units:  make(map[string]int),
		prefs:  make(map[int64]map[string]any),
	}
}

func (m *memoryBackend) fail() error {
	err := m.failNext
	m.failNext = nil
	return err
}

func (m *memoryBackend) LoadPrices() (map[string]float64, error) {
	if err := m.fail(); err != nil {
		return nil, err
	}
	out := make(map[string]float64, len(m.prices))
	for k, v := range m.prices {
		out[k] = v
	}
	return out, nil
}

func (m *memoryBackend) SavePrices(prices map[string]float64) error {
	if err := m.fail(); err != nil {
		return err
	}
	for k, v := range prices {
		m.prices[k] = v
	}
	return nil
}

func (m *memoryBackend) LoadUnits() (map[string]int, error) {
	if err := m.fail(); err != nil {
		return nil, err
	}
	out := make(map[string]int, len(m.units))
	for k, v := range m.units {
		out[k] = v
	}
	return out, nil
}

func (m *memoryBackend) SaveUnits(units map[string]int) error {
	if err := m.fail(); err != nil {
		return err
	}
	for k, v := range units {
		m.units[k] = v
	}
	return nil
}

func (m *memoryBackend) AppendHistory(records []HistoryRecord) error {
	if err := m.fail(); err != nil {
		return err
	}
	m.history = append(m.history, records...)
	return nil
}

func (m *memoryBackend) HistoryDates(userID int64) ([]time.Time, error) {
	seen := make(map[time.Time]bool)
	var dates []time.Time
	for _, r := range m.history {
		if userID != 0 && r.UserID != userID {
			continue
		}
		if !seen[r.Date] {
			seen[r.Date] = true
			dates = append(dates, r.Date)
		}
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates, nil
}

func (m *memoryBackend) HistoryAt(date time.Time, userID int64) ([]HistoryRecord, error) {
	var out []HistoryRecord
	for _, r := range m.history {
		if userID != 0 && r.UserID != userID {
			continue
		}
		if r.Date.Equal(date) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memoryBackend) LoadPreferences(userID int64) (map[string]any, error) {
	out := make(map[string]any)
	for k, v := range m.prefs[userID] {
		out[k] = v
	}
	return out, nil
}

func (m *memoryBackend) SavePreferences(userID int64, prefs map[string]any) error {
	if m.prefs[userID] == nil {
		m.prefs[userID] = make(map[string]any)
	}
	for k, v := range prefs {
		m.prefs[userID][k] = v
	}
	return nil
}

func (m *memoryBackend) Close() error { return nil }

func fptr(v float64) *float64 { return &v }
