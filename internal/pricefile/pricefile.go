// Package pricefile reads and writes the CSV price formats: the simple
// two-column export and the richer market snapshot with buy/sell/average
// columns and an optional date.
package pricefile

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"echoes-planner/internal/store"
)

var filenameDate = regexp.MustCompile(`(\d{4}-\d{2}-\d{2})`)

// DateFromFilename pulls a YYYY-MM-DD token out of a file name, if any.
func DateFromFilename(name string) (string, bool) {
	m := filenameDate.FindString(name)
	return m, m != ""
}

// ParseSimple decodes a two-column resource,price CSV. A header row is
// detected by a non-numeric second column and skipped. Rows with an empty
// resource or a price that does not parse are dropped.
func ParseSimple(r io.Reader) (map[string]float64, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	prices := make(map[string]float64)
	first := true
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		if len(rec) < 2 {
			continue
		}
		name := store.NormalizeResource(rec[0])
		price, perr := strconv.ParseFloat(strings.TrimSpace(rec[1]), 64)
		if first {
			first = false
			if perr != nil {
				continue // header row
			}
		}
		if name == "" || perr != nil {
			continue
		}
		prices[name] = price
	}
	return prices, nil
}

// ParseHistory decodes a market snapshot CSV with columns
// resource,buy,sell,average and an optional trailing date column. Column
// order follows the header when one is present. Numeric cells that are
// empty or unparseable come back as nil pointers, never as zero.
func ParseHistory(r io.Reader) ([]store.Snapshot, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	// Default column layout, overridden by a recognized header.
	cols := map[string]int{"resource": 0, "buy": 1, "sell": 2, "average": 3, "date": 4}

	var rows []store.Snapshot
	first := true
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		if first {
			first = false
			if isHistoryHeader(rec) {
				cols = headerColumns(rec)
				continue
			}
		}
		if len(rec) < 2 {
			continue
		}
		name := store.NormalizeResource(cell(rec, cols["resource"]))
		if name == "" {
			continue
		}
		rows = append(rows, store.Snapshot{
			Resource: name,
			Buy:      parseCell(rec, cols["buy"]),
			Sell:     parseCell(rec, cols["sell"]),
			Average:  parseCell(rec, cols["average"]),
			Date:     strings.TrimSpace(cell(rec, cols["date"])),
		})
	}
	return rows, nil
}

// LooksLikeHistory reports whether the first CSV record is a header naming
// any of the market columns (buy, sell, average).
func LooksLikeHistory(r io.Reader) bool {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	rec, err := cr.Read()
	if err != nil {
		return false
	}
	for _, c := range rec {
		switch strings.ToLower(strings.TrimSpace(c)) {
		case "buy", "sell", "average":
			return true
		}
	}
	return false
}

// WriteSimple emits the two-column export with a header, resources sorted
// alphabetically for stable diffs.
func WriteSimple(w io.Writer, prices map[string]float64) error {
	names := make([]string, 0, len(prices))
	for name := range prices {
		names = append(names, name)
	}
	sort.Strings(names)

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"resource", "price"}); err != nil {
		return err
	}
	for _, name := range names {
		err := cw.Write([]string{name, strconv.FormatFloat(prices[name], 'f', -1, 64)})
		if err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func isHistoryHeader(rec []string) bool {
	for _, c := range rec {
		switch strings.ToLower(strings.TrimSpace(c)) {
		case "resource", "buy", "sell", "average", "date":
			return true
		}
	}
	return false
}

func headerColumns(rec []string) map[string]int {
	cols := map[string]int{"resource": -1, "buy": -1, "sell": -1, "average": -1, "date": -1}
	for i, c := range rec {
		key := strings.ToLower(strings.TrimSpace(c))
		if _, ok := cols[key]; ok {
			cols[key] = i
		}
	}
	return cols
}

func cell(rec []string, idx int) string {
	if idx < 0 || idx >= len(rec) {
		return ""
	}
	return rec[idx]
}

func parseCell(rec []string, idx int) *float64 {
	raw := strings.TrimSpace(cell(rec, idx))
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &v
}
