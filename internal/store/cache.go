package store

// PriceCache is the in-memory resource→price map, synchronized with a
// backend. It is owned by exactly one session and is not safe for concurrent
// mutation.
type PriceCache struct {
	backend Backend
	prices  map[string]float64
}

// NewPriceCache creates an empty cache over the given backend. Call Load
// before reading if persisted prices should be visible.
func NewPriceCache(backend Backend) *PriceCache {
	return &PriceCache{backend: backend, prices: make(map[string]float64)}
}

// Load replaces the entire cache with the backend's current content.
// Unsaved edits are discarded.
func (c *PriceCache) Load() error {
	prices, err := c.backend.LoadPrices()
	if err != nil {
		return err
	}
	if prices == nil {
		prices = make(map[string]float64)
	}
	c.prices = prices
	return nil
}

// Get returns the stored price for a resource, or 0 if absent. Never fails.
func (c *PriceCache) Get(name string) float64 {
	return c.prices[NormalizeResource(name)]
}

// All returns a copy of the live cache.
func (c *PriceCache) All() map[string]float64 {
	out := make(map[string]float64, len(c.prices))
	for k, v := range c.prices {
		out[k] = v
	}
	return out
}

// Set stores a price under the normalized resource name. Writes whose name
// normalizes to the empty string are ignored.
func (c *PriceCache) Set(name string, price float64) {
	key := NormalizeResource(name)
	if key == "" {
		return
	}
	c.prices[key] = price
}

// SetMany applies Set for every entry. There is no atomicity across entries.
func (c *PriceCache) SetMany(prices map[string]float64) {
	for name, price := range prices {
		c.Set(name, price)
	}
}

// Save upserts every cache entry into the backend. Backend rows whose keys
// are no longer in the cache are not removed: stale resources persist with
// their last saved price.
func (c *PriceCache) Save() error {
	return c.backend.SavePrices(c.All())
}

// UnitCache mirrors PriceCache for integer mining-unit counts keyed by
// resource key ("<planetID>_<resource>").
type UnitCache struct {
	backend Backend
	units   map[string]int
}

// NewUnitCache creates an empty unit cache over the given backend.
func NewUnitCache(backend Backend) *UnitCache {
	return &UnitCache{backend: backend, units: make(map[string]int)}
}

// Load replaces the cache with the backend's current content.
func (c *UnitCache) Load() error {
	units, err := c.backend.LoadUnits()
	if err != nil {
		return err
	}
	if units == nil {
		units = make(map[string]int)
	}
	c.units = units
	return nil
}

// Get returns the allocated unit count for a key, or 0 if absent.
func (c *UnitCache) Get(key string) int {
	return c.units[NormalizeResource(key)]
}

// All returns a copy of the live cache.
func (c *UnitCache) All() map[string]int {
	out := make(map[string]int, len(c.units))
	for k, v := range c.units {
		out[k] = v
	}
	return out
}

// Set stores a unit count under the normalized key; empty keys are ignored.
func (c *UnitCache) Set(key string, units int) {
	k := NormalizeResource(key)
	if k == "" {
		return
	}
	c.units[k] = units
}

// SetMany applies Set for every entry.
func (c *UnitCache) SetMany(units map[string]int) {
	for key, n := range units {
		c.Set(key, n)
	}
}

// Save upserts every cache entry into the backend (no deletion of absent keys).
func (c *UnitCache) Save() error {
	return c.backend.SaveUnits(c.All())
}
