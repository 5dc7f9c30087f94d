package engine

import (
	"math"
	"testing"

	"echoes-planner/internal/catalog"
	"echoes-planner/internal/store"
)

func approx(got, want float64) bool {
	return math.Abs(got-want) < 1e-6
}

func testRows() []catalog.Row {
	return []catalog.Row{
		{PlanetID: "10001", Planet: "Tanoo I", System: "Tanoo", Resource: "Base Metals", Output: 50},
		{PlanetID: "10002", Planet: "Tanoo II", System: "Tanoo", Resource: "Plasmoids", Output: 30},
		{PlanetID: "20001", Planet: "Jita IV", System: "Jita", Resource: "Noble Gas", Output: 80},
	}
}

func TestAnalyze(t *testing.T) {
	prices := map[string]float64{"Base Metals": 10, "Plasmoids": 20}
	units := map[string]int{"10001_Base Metals": 3, "10002_Plasmoids": 1}

	metrics := Analyze(testRows(), prices, units)
	if len(metrics) != 3 {
		t.Fatalf("len = %d", len(metrics))
	}

	bm := metrics[0]
	if !approx(bm.ValuePerHourPerUnit, 500) {
		t.Errorf("value/h/unit = %v, want 500", bm.ValuePerHourPerUnit)
	}
	if !approx(bm.TotalValuePerHour, 1500) {
		t.Errorf("total value/h = %v, want 1500", bm.TotalValuePerHour)
	}
	if !approx(bm.HourlyVolume, 50*3*ResourceUnitVolume) {
		t.Errorf("hourly volume = %v", bm.HourlyVolume)
	}

	// Unpriced resource values at zero but keeps its volume.
	ng := metrics[2]
	if ng.ValuePerHourPerUnit != 0 || ng.TotalValuePerHour != 0 {
		t.Errorf("unpriced row = %+v", ng)
	}
}

func TestIncome(t *testing.T) {
	prices := map[string]float64{"Base Metals": 10}
	units := map[string]int{"10001_Base Metals": 3}
	metrics := Analyze(testRows(), prices, units)

	prefs := store.DefaultPreferences()
	prefs.POSCost = 1_000_000

	summary := Income(metrics, prefs)
	if len(summary.Rows) != 1 {
		t.Fatalf("rows = %d, want 1 (zero-unit rows excluded)", len(summary.Rows))
	}

	row := summary.Rows[0]
	if !approx(row.GrossDaily, 36000) {
		t.Errorf("gross daily = %v, want 36000", row.GrossDaily)
	}
	if !approx(row.NetDaily, 33120) {
		t.Errorf("net daily = %v, want 33120 at 8%% tax", row.NetDaily)
	}
	if !approx(row.GrossWeekly, 36000*7) || !approx(row.GrossMonthly, 36000*30) {
		t.Errorf("weekly/monthly = %v / %v", row.GrossWeekly, row.GrossMonthly)
	}
	if !approx(summary.TotalNetMonthly, 33120*30) {
		t.Errorf("total net monthly = %v", summary.TotalNetMonthly)
	}
	if !approx(summary.FinalMonthlyProfit, 33120*30-1_000_000) {
		t.Errorf("final profit = %v", summary.FinalMonthlyProfit)
	}
}

func TestIncome_NoActiveRows(t *testing.T) {
	summary := Income(Analyze(testRows(), nil, nil), store.DefaultPreferences())
	if len(summary.Rows) != 0 || summary.TotalNetMonthly != 0 {
		t.Errorf("summary = %+v", summary)
	}
	if !approx(summary.FinalMonthlyProfit, -summary.POSCost) {
		t.Errorf("profit with no income should be -POS cost, got %v", summary.FinalMonthlyProfit)
	}
}

func TestStorageFillTimes(t *testing.T) {
	prices := map[string]float64{"Base Metals": 10}
	units := map[string]int{"10001_Base Metals": 20, "20001_Noble Gas": 1}
	metrics := Analyze(testRows(), prices, units)

	fills := StorageFillTimes(metrics, 920)
	if len(fills) != 2 {
		t.Fatalf("fills = %+v", fills)
	}
	// Sorted by system then planet.
	if fills[0].System != "Jita" || fills[1].System != "Tanoo" {
		t.Errorf("order = %+v", fills)
	}
	// 50 output x 20 units x 0.01 m3 = 10 m3/h; 920 / 10 = 92 hours.
	tanoo := fills[1]
	if !approx(tanoo.HourlyVolume, 10.0) {
		t.Errorf("hourly volume = %v, want 10.0", tanoo.HourlyVolume)
	}
	if !approx(tanoo.HoursToFill, 92.0) {
		t.Errorf("hours to fill = %v, want 92.0", tanoo.HoursToFill)
	}

	if got := StorageFillTimes(metrics, 0); got != nil {
		t.Errorf("zero capacity should yield nil, got %+v", got)
	}

	// A unit-assigned planet producing no volume never fills its storage
	// and is left out of the table.
	dead := []catalog.Row{{PlanetID: "30001", Planet: "Amarr III", System: "Amarr", Resource: "Base Metals", Output: 0}}
	fills = StorageFillTimes(Analyze(dead, prices, map[string]int{"30001_Base Metals": 5}), 920)
	if len(fills) != 0 {
		t.Errorf("zero-output planet should be omitted, got %+v", fills)
	}
}

func TestTransport(t *testing.T) {
	// 50 output x 10 units x 0.01 m3 = 5 m3/h = 120 m3/day.
	rows := []catalog.Row{{PlanetID: "1", Planet: "P", System: "S", Resource: "Base Metals", Output: 50}}
	metrics := Analyze(rows, nil, map[string]int{"1_Base Metals": 10})

	plan := Transport(metrics, 240)
	if !approx(plan.TotalDailyVolume, 120) {
		t.Errorf("daily volume = %v, want 120", plan.TotalDailyVolume)
	}
	if !approx(plan.FrequencyDays, 2.0) {
		t.Errorf("frequency days = %v, want 2.0", plan.FrequencyDays)
	}
	if plan.Frequency != "2d" {
		t.Errorf("frequency = %q, want 2d", plan.Frequency)
	}

	idle := Transport(nil, 240)
	if !math.IsInf(idle.FrequencyDays, 1) || idle.Frequency != "N/A" {
		t.Errorf("idle plan = %+v", idle)
	}
}

func TestFormatFrequency(t *testing.T) {
	cases := []struct {
		days float64
		want string
	}{
		{math.Inf(1), "N/A"},
		{0, "N/A"},
		{-1, "N/A"},
		{1.5, "1d 12h"},
		{0.5, "12h"},
		{2.25, "2d 6h"},
		{5400.0 / 86400, "1h 30m"},
		{30.0 / 86400, "< 1m"},
	}
	for _, tc := range cases {
		if got := FormatFrequency(tc.days); got != tc.want {
			t.Errorf("FormatFrequency(%v) = %q, want %q", tc.days, got, tc.want)
		}
	}
}
