package sqlstore

import (
	"database/sql"
	"fmt"
)

// LoadPrices reads every price row into a map.
func (s *Store) LoadPrices() (map[string]float64, error) {
	rows, err := s.sql.Query("SELECT resource, price FROM prices")
	if err != nil {
		return nil, fmt.Errorf("load prices: %w", err)
	}
	defer rows.Close()

	prices := make(map[string]float64)
	for rows.Next() {
		var resource string
		var price float64
		if err := rows.Scan(&resource, &price); err != nil {
			return nil, fmt.Errorf("load prices: %w", err)
		}
		prices[resource] = price
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load prices: %w", err)
	}
	return prices, nil
}

// SavePrices upserts every entry in one transaction. Rows whose resource is
// absent from the argument are left in place with their last saved price.
func (s *Store) SavePrices(prices map[string]float64) error {
	tx, err := s.sql.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for resource, price := range prices {
		if err := upsert(tx,
			"SELECT id FROM prices WHERE resource = ?",
			"UPDATE prices SET price = ? WHERE id = ?",
			"INSERT INTO prices (resource, price) VALUES (?, ?)",
			resource, price,
		); err != nil {
			return fmt.Errorf("save price %q: %w", resource, err)
		}
	}
	return tx.Commit()
}

// LoadUnits reads every mining-unit row into a map.
func (s *Store) LoadUnits() (map[string]int, error) {
	rows, err := s.sql.Query("SELECT resource_key, units FROM mining_units")
	if err != nil {
		return nil, fmt.Errorf("load units: %w", err)
	}
	defer rows.Close()

	units := make(map[string]int)
	for rows.Next() {
		var key string
		var n int
		if err := rows.Scan(&key, &n); err != nil {
			return nil, fmt.Errorf("load units: %w", err)
		}
		units[key] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load units: %w", err)
	}
	return units, nil
}

// SaveUnits upserts every entry in one transaction (no deletion).
func (s *Store) SaveUnits(units map[string]int) error {
	tx, err := s.sql.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for key, n := range units {
		if err := upsert(tx,
			"SELECT id FROM mining_units WHERE resource_key = ?",
			"UPDATE mining_units SET units = ? WHERE id = ?",
			"INSERT INTO mining_units (resource_key, units) VALUES (?, ?)",
			key, n,
		); err != nil {
			return fmt.Errorf("save units %q: %w", key, err)
		}
	}
	return tx.Commit()
}

// upsert implements select-then-update-or-insert, which stays portable
// across the sqlite and mysql dialects (their native upsert syntaxes differ).
func upsert(tx *sql.Tx, selectSQL, updateSQL, insertSQL string, key, value any) error {
	var id int64
	err := tx.QueryRow(selectSQL, key).Scan(&id)
	switch {
	case err == sql.ErrNoRows:
		_, err = tx.Exec(insertSQL, key, value)
		return err
	case err != nil:
		return err
	default:
		_, err = tx.Exec(updateSQL, value, id)
		return err
	}
}
