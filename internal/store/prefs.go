package store

import "encoding/json"

// Preference keys shared by both backends.
const (
	PrefTaxRate      = "tax_rate"
	PrefShipCargo    = "ship_cargo_capacity"
	PrefPlanetaryCap = "planetary_storage_capacity"
	PrefPOSCost      = "pos_cost"
)

// Preferences is the closed set of typed user settings plus an escape-hatch
// map for saved UI filter selections and legacy/foreign keys.
//
// The store layer does not enforce ranges (tax 0–100, non-negative
// capacities); that is the caller's responsibility.
type Preferences struct {
	TaxRate                  float64        // percent, broker fee + sales tax
	ShipCargoCapacity        float64        // m³
	PlanetaryStorageCapacity float64        // m³
	POSCost                  float64        // ISK per month
	Filters                  map[string]any // saved filter selections, passed through verbatim
}

// DefaultPreferences mirrors the original defaults: 8% tax, 10k m³ cargo,
// 920 m³ planetary storage, 1.5B ISK POS upkeep.
func DefaultPreferences() Preferences {
	return Preferences{
		TaxRate:                  8.0,
		ShipCargoCapacity:        10000,
		PlanetaryStorageCapacity: 920,
		POSCost:                  1_500_000_000,
	}
}

// TaxMultiplier converts the tax rate into a net-income multiplier.
func (p Preferences) TaxMultiplier() float64 {
	return 1 - p.TaxRate/100
}

// PrefStore reads and writes one user's Preferences through a backend.
type PrefStore struct {
	backend Backend
	userID  int64
}

// NewPrefStore creates a preference store scoped to one user.
func NewPrefStore(backend Backend, userID int64) *PrefStore {
	return &PrefStore{backend: backend, userID: userID}
}

// Load reads the stored settings, filling defaults for absent keys. Known
// keys with non-numeric values keep their default and the raw value lands in
// Filters, so legacy/foreign rows are tolerated rather than rejected.
func (s *PrefStore) Load() (Preferences, error) {
	prefs := DefaultPreferences()
	raw, err := s.backend.LoadPreferences(s.userID)
	if err != nil {
		return prefs, err
	}
	for key, value := range raw {
		num, numeric := asFloat(value)
		switch {
		case key == PrefTaxRate && numeric:
			prefs.TaxRate = num
		case key == PrefShipCargo && numeric:
			prefs.ShipCargoCapacity = num
		case key == PrefPlanetaryCap && numeric:
			prefs.PlanetaryStorageCapacity = num
		case key == PrefPOSCost && numeric:
			prefs.POSCost = num
		default:
			if prefs.Filters == nil {
				prefs.Filters = make(map[string]any)
			}
			prefs.Filters[key] = value
		}
	}
	return prefs, nil
}

// Save upserts the typed settings plus every filter key. Keys not present in
// the argument are left untouched in the backend.
func (s *PrefStore) Save(prefs Preferences) error {
	out := map[string]any{
		PrefTaxRate:      prefs.TaxRate,
		PrefShipCargo:    prefs.ShipCargoCapacity,
		PrefPlanetaryCap: prefs.PlanetaryStorageCapacity,
		PrefPOSCost:      prefs.POSCost,
	}
	for key, value := range prefs.Filters {
		out[key] = value
	}
	return s.backend.SavePreferences(s.userID, out)
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
