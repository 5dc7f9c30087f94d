package store

import "time"

// Date layouts accepted on history import, tried in order.
var historyDateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// Ledger is the append-only price-history record set. Records are immutable
// once written; re-importing the same rows creates duplicates.
type Ledger struct {
	backend Backend
}

// NewLedger creates a ledger over the given backend.
func NewLedger(backend Backend) *Ledger {
	return &Ledger{backend: backend}
}

// Append persists one immutable record per snapshot. Rows whose resource
// normalizes to the empty string are silently skipped. A row's date is its
// own date field if parseable, else fallback if non-zero, else the current
// time; unparseable dates also fall back to the current time rather than
// rejecting the row. Dates are stored at day precision (UTC midnight), so
// every listed snapshot date is queryable exactly. Returns the number of
// records written.
func (l *Ledger) Append(rows []Snapshot, userID int64, fallback time.Time) (int, error) {
	now := time.Now().UTC()
	records := make([]HistoryRecord, 0, len(rows))
	for _, row := range rows {
		resource := NormalizeResource(row.Resource)
		if resource == "" {
			continue
		}
		records = append(records, HistoryRecord{
			UserID:   userID,
			Resource: resource,
			Buy:      row.Buy,
			Sell:     row.Sell,
			Average:  row.Average,
			Date:     resolveDate(row.Date, fallback, now),
		})
	}
	if len(records) == 0 {
		return 0, nil
	}
	if err := l.backend.AppendHistory(records); err != nil {
		return 0, err
	}
	return len(records), nil
}

// DistinctDates returns the snapshot dates in ascending order, collapsed
// across resources, optionally filtered to one user (userID != 0).
func (l *Ledger) DistinctDates(userID int64) ([]time.Time, error) {
	return l.backend.HistoryDates(userID)
}

// RecordsAt returns the raw records stored at an exact date in insertion
// order, optionally filtered to one user (userID != 0).
func (l *Ledger) RecordsAt(date time.Time, userID int64) ([]HistoryRecord, error) {
	return l.backend.HistoryAt(date, userID)
}

// PriceMapAtDate resolves one price per resource for the records stored at
// an exact date: average if present, else buy, else 0. Records are replayed
// in insertion order, so for duplicate resources the latest-inserted wins.
func (l *Ledger) PriceMapAtDate(date time.Time, userID int64) (map[string]float64, error) {
	records, err := l.backend.HistoryAt(date, userID)
	if err != nil {
		return nil, err
	}
	prices := make(map[string]float64, len(records))
	for _, r := range records {
		prices[r.Resource] = r.Price()
	}
	return prices, nil
}

func resolveDate(raw string, fallback, now time.Time) time.Time {
	if raw != "" {
		for _, layout := range historyDateLayouts {
			if t, err := time.Parse(layout, raw); err == nil {
				return dayOf(t)
			}
		}
		// A present but unparseable date falls back to now, not to the
		// caller's fallback date.
		return dayOf(now)
	}
	if !fallback.IsZero() {
		return dayOf(fallback)
	}
	return dayOf(now)
}

// dayOf truncates a time to UTC midnight.
func dayOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
