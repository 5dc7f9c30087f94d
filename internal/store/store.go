// Package store holds the pricing/allocation core: the resource key
// normalizer, the backend capability interface, the in-memory price and
// mining-unit caches, the append-only price-history ledger, and the
// per-user preference store.
//
// Persistence is pluggable: the file backend (filestore) and the relational
// backend (sqlstore) implement Backend and are interchangeable. The backend
// is chosen once at session construction and not branched on afterwards.
package store

import (
	"errors"
	"time"
)

// ErrNotFound is returned by backends when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// HistoryRecord is one immutable, dated price snapshot in the ledger.
// Buy/Sell/Average are nullable: an absent column stays nil all the way to
// the backend row.
type HistoryRecord struct {
	UserID   int64 // 0 = not user-scoped
	Resource string
	Buy      *float64
	Sell     *float64
	Average  *float64
	Date     time.Time
}

// Price resolves the single price of a snapshot: average if present, else
// buy, else 0.
func (r HistoryRecord) Price() float64 {
	if r.Average != nil {
		return *r.Average
	}
	if r.Buy != nil {
		return *r.Buy
	}
	return 0
}

// Snapshot is one parsed import row at the boundary, before ledger
// normalization. Date holds the raw date text from the import and may be
// empty or unparseable.
type Snapshot struct {
	Resource string
	Buy      *float64
	Sell     *float64
	Average  *float64
	Date     string
}

// Backend is the persistence capability shared by the file and relational
// implementations. Each method is a single unit of work: it either completes
// or fails and leaves no partial state behind (the file backend approximates
// this with whole-document writes).
//
// SavePrices, SaveUnits and SavePreferences are upsert-only: rows absent
// from the argument are left untouched, never deleted.
type Backend interface {
	LoadPrices() (map[string]float64, error)
	SavePrices(prices map[string]float64) error

	LoadUnits() (map[string]int, error)
	SaveUnits(units map[string]int) error

	AppendHistory(records []HistoryRecord) error
	// HistoryDates returns the distinct snapshot dates in ascending order,
	// filtered to one user when userID != 0.
	HistoryDates(userID int64) ([]time.Time, error)
	// HistoryAt returns the records stored for an exact date in insertion
	// order, filtered to one user when userID != 0.
	HistoryAt(date time.Time, userID int64) ([]HistoryRecord, error)

	// LoadPreferences returns raw per-user settings. Values are whatever the
	// stored JSON decodes to; a value that fails to decode comes back as the
	// raw stored string.
	LoadPreferences(userID int64) (map[string]any, error)
	SavePreferences(userID int64, prefs map[string]any) error

	Close() error
}
