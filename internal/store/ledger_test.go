package store

import (
	"testing"
	"time"
)

func TestLedger_AppendAndLookup(t *testing.T) {
	backend := newMemoryBackend()
	ledger := NewLedger(backend)

	n, err := ledger.Append([]Snapshot{
		{Resource: "Plasmoids", Average: fptr(7.5), Date: "2024-07-31"},
	}, 0, time.Time{})
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if n != 1 {
		t.Fatalf("appended %d rows, want 1", n)
	}

	want := time.Date(2024, 7, 31, 0, 0, 0, 0, time.UTC)
	dates, err := ledger.DistinctDates(0)
	if err != nil {
		t.Fatalf("dates: %v", err)
	}
	if len(dates) != 1 || !dates[0].Equal(want) {
		t.Fatalf("DistinctDates = %v, want [%v]", dates, want)
	}

	prices, err := ledger.PriceMapAtDate(want, 0)
	if err != nil {
		t.Fatalf("price map: %v", err)
	}
	if len(prices) != 1 || prices["Plasmoids"] != 7.5 {
		t.Errorf("PriceMapAtDate = %v, want {Plasmoids: 7.5}", prices)
	}
}

func TestLedger_PriceResolutionFallback(t *testing.T) {
	backend := newMemoryBackend()
	ledger := NewLedger(backend)

	date := "2024-08-01"
	_, err := ledger.Append([]Snapshot{
		{Resource: "Buy Only", Buy: fptr(5.0), Date: date},
		{Resource: "Neither", Date: date},
		{Resource: "All Three", Buy: fptr(1), Sell: fptr(2), Average: fptr(3), Date: date},
	}, 0, time.Time{})
	if err != nil {
		t.Fatalf("append: %v", err)
	}

	when := time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC)
	prices, err := ledger.PriceMapAtDate(when, 0)
	if err != nil {
		t.Fatalf("price map: %v", err)
	}
	if prices["Buy Only"] != 5.0 {
		t.Errorf("buy fallback = %v, want 5", prices["Buy Only"])
	}
	if prices["Neither"] != 0.0 {
		t.Errorf("no prices = %v, want 0", prices["Neither"])
	}
	if prices["All Three"] != 3.0 {
		t.Errorf("average wins = %v, want 3", prices["All Three"])
	}
}

func TestLedger_SkipsEmptyResource(t *testing.T) {
	backend := newMemoryBackend()
	ledger := NewLedger(backend)

	n, err := ledger.Append([]Snapshot{
		{Resource: "   ", Average: fptr(1), Date: "2024-08-01"},
		{Resource: "", Average: fptr(2), Date: "2024-08-01"},
		{Resource: "Kept", Average: fptr(3), Date: "2024-08-01"},
	}, 0, time.Time{})
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if n != 1 {
		t.Errorf("appended %d rows, want 1 (empty resources skipped)", n)
	}
	if len(backend.history) != 1 || backend.history[0].Resource != "Kept" {
		t.Errorf("backend history = %+v", backend.history)
	}
}

func TestLedger_DateFallbacks(t *testing.T) {
	backend := newMemoryBackend()
	ledger := NewLedger(backend)
	fallback := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

	before := dayOf(time.Now().UTC())
	_, err := ledger.Append([]Snapshot{
		{Resource: "Dated", Average: fptr(1), Date: "2024-07-31"},
		{Resource: "Undated", Average: fptr(2)},
		{Resource: "Garbled", Average: fptr(3), Date: "31/07/2024"},
	}, 0, fallback)
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	after := dayOf(time.Now().UTC())

	byResource := make(map[string]HistoryRecord)
	for _, r := range backend.history {
		byResource[r.Resource] = r
	}
	if got := byResource["Dated"].Date; !got.Equal(time.Date(2024, 7, 31, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Dated date = %v", got)
	}
	// Fallback times collapse to midnight of their day.
	if got, want := byResource["Undated"].Date, time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC); !got.Equal(want) {
		t.Errorf("Undated date = %v, want %v", got, want)
	}
	// A present but unparseable date resolves to today, not the fallback.
	if got := byResource["Garbled"].Date; !got.Equal(before) && !got.Equal(after) {
		t.Errorf("Garbled date = %v, want today's midnight", got)
	}

	// Without a fallback, undated rows land on today's midnight.
	backend2 := newMemoryBackend()
	_, err = NewLedger(backend2).Append([]Snapshot{{Resource: "Now", Average: fptr(1)}}, 0, time.Time{})
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	got := backend2.history[0].Date
	if !got.Equal(before) && !got.Equal(after) {
		t.Errorf("undated/no-fallback date = %v, want today's midnight", got)
	}
}

func TestLedger_DayPrecision(t *testing.T) {
	backend := newMemoryBackend()
	ledger := NewLedger(backend)

	// Timestamped rows and undated rows from the same day all land on one
	// queryable midnight date.
	_, err := ledger.Append([]Snapshot{
		{Resource: "Plasmoids", Average: fptr(7.5), Date: "2024-07-31T09:15:00Z"},
		{Resource: "Lustering Alloy", Average: fptr(2.0), Date: "2024-07-31T18:40:00Z"},
	}, 0, time.Time{})
	if err != nil {
		t.Fatalf("append: %v", err)
	}

	dates, err := ledger.DistinctDates(0)
	if err != nil {
		t.Fatalf("dates: %v", err)
	}
	want := time.Date(2024, 7, 31, 0, 0, 0, 0, time.UTC)
	if len(dates) != 1 || !dates[0].Equal(want) {
		t.Fatalf("DistinctDates = %v, want [%v]", dates, want)
	}

	prices, err := ledger.PriceMapAtDate(dates[0], 0)
	if err != nil {
		t.Fatalf("price map: %v", err)
	}
	if prices["Plasmoids"] != 7.5 || prices["Lustering Alloy"] != 2.0 {
		t.Errorf("prices at listed date = %v", prices)
	}
}

func TestLedger_NoDedup(t *testing.T) {
	backend := newMemoryBackend()
	ledger := NewLedger(backend)

	rows := []Snapshot{{Resource: "Plasmoids", Average: fptr(7.5), Date: "2024-07-31"}}
	ledger.Append(rows, 0, time.Time{})
	ledger.Append(rows, 0, time.Time{})
	if len(backend.history) != 2 {
		t.Errorf("history length = %d, want 2 (re-import duplicates)", len(backend.history))
	}
}

func TestLedger_DuplicateResourceLatestWins(t *testing.T) {
	backend := newMemoryBackend()
	ledger := NewLedger(backend)

	date := "2024-07-31"
	ledger.Append([]Snapshot{
		{Resource: "Plasmoids", Average: fptr(7.5), Date: date},
		{Resource: "Plasmoids", Average: fptr(9.0), Date: date},
	}, 0, time.Time{})

	when := time.Date(2024, 7, 31, 0, 0, 0, 0, time.UTC)
	prices, _ := ledger.PriceMapAtDate(when, 0)
	if prices["Plasmoids"] != 9.0 {
		t.Errorf("duplicate resolution = %v, want 9 (latest inserted)", prices["Plasmoids"])
	}
}

func TestLedger_UserScoping(t *testing.T) {
	backend := newMemoryBackend()
	ledger := NewLedger(backend)

	ledger.Append([]Snapshot{{Resource: "Mine", Average: fptr(1), Date: "2024-07-01"}}, 7, time.Time{})
	ledger.Append([]Snapshot{{Resource: "Theirs", Average: fptr(2), Date: "2024-07-02"}}, 8, time.Time{})

	dates, err := ledger.DistinctDates(7)
	if err != nil {
		t.Fatalf("dates: %v", err)
	}
	if len(dates) != 1 {
		t.Fatalf("user-scoped dates = %v, want 1 entry", dates)
	}

	all, err := ledger.DistinctDates(0)
	if err != nil {
		t.Fatalf("dates: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("unscoped dates = %v, want 2 entries", all)
	}
}
