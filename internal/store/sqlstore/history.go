package sqlstore

import (
	"database/sql"
	"fmt"
	"time"

	"echoes-planner/internal/store"
)

// AppendHistory inserts one row per record in a single transaction. Records
// are never updated or deleted afterwards.
func (s *Store) AppendHistory(records []store.HistoryRecord) error {
	if len(records) == 0 {
		return nil
	}
	tx, err := s.sql.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO price_history (user_id, resource, price_buy, price_sell, price_avg, date)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("append history: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		userID := sql.NullInt64{Int64: r.UserID, Valid: r.UserID != 0}
		if _, err := stmt.Exec(
			userID, r.Resource, r.Buy, r.Sell, r.Average,
			r.Date.UTC().Format(time.RFC3339),
		); err != nil {
			return fmt.Errorf("append history: %w", err)
		}
	}
	return tx.Commit()
}

// HistoryDates returns the distinct snapshot dates in ascending order.
// Dates are stored as RFC3339 UTC text, so lexicographic order is
// chronological.
func (s *Store) HistoryDates(userID int64) ([]time.Time, error) {
	query := "SELECT DISTINCT date FROM price_history ORDER BY date"
	args := []any{}
	if userID != 0 {
		query = "SELECT DISTINCT date FROM price_history WHERE user_id = ? ORDER BY date"
		args = append(args, userID)
	}

	rows, err := s.sql.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("history dates: %w", err)
	}
	defer rows.Close()

	var dates []time.Time
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("history dates: %w", err)
		}
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			continue
		}
		dates = append(dates, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history dates: %w", err)
	}
	return dates, nil
}

// HistoryAt returns the records stored for an exact date in insertion order.
func (s *Store) HistoryAt(date time.Time, userID int64) ([]store.HistoryRecord, error) {
	query := `
		SELECT user_id, resource, price_buy, price_sell, price_avg, date
		  FROM price_history
		 WHERE date = ?
		 ORDER BY id`
	args := []any{date.UTC().Format(time.RFC3339)}
	if userID != 0 {
		query = `
		SELECT user_id, resource, price_buy, price_sell, price_avg, date
		  FROM price_history
		 WHERE date = ? AND user_id = ?
		 ORDER BY id`
		args = append(args, userID)
	}

	rows, err := s.sql.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("history at: %w", err)
	}
	defer rows.Close()

	var records []store.HistoryRecord
	for rows.Next() {
		var uid sql.NullInt64
		var buy, sell, avg sql.NullFloat64
		var raw string
		var r store.HistoryRecord
		if err := rows.Scan(&uid, &r.Resource, &buy, &sell, &avg, &raw); err != nil {
			return nil, fmt.Errorf("history at: %w", err)
		}
		r.UserID = uid.Int64
		r.Buy = nullableFloat(buy)
		r.Sell = nullableFloat(sell)
		r.Average = nullableFloat(avg)
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			r.Date = t
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history at: %w", err)
	}
	return records, nil
}

func nullableFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
