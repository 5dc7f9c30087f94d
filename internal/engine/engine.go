// Package engine holds the planetary mining math. Every function is pure:
// rows, prices and preferences in, numbers out. Persistence and transport
// live elsewhere.
package engine

import (
	"echoes-planner/internal/catalog"
	"echoes-planner/internal/store"
)

// ResourceUnitVolume is the cargo volume of one harvested unit, in m3.
const ResourceUnitVolume = 0.01

// RowMetrics is one catalog row priced and scaled by its mining units.
type RowMetrics struct {
	Row   catalog.Row
	Units int

	// ValuePerHourPerUnit is Output times the current price.
	ValuePerHourPerUnit float64
	// TotalValuePerHour is ValuePerHourPerUnit times Units.
	TotalValuePerHour float64
	// HourlyVolume is Output times Units times ResourceUnitVolume, in m3.
	HourlyVolume float64
}

// Analyze prices every row against the current price map and the assigned
// mining units. Resources absent from the price map value at zero; rows
// with no unit assignment carry zero units.
func Analyze(rows []catalog.Row, prices map[string]float64, units map[string]int) []RowMetrics {
	out := make([]RowMetrics, 0, len(rows))
	for _, row := range rows {
		price := prices[row.Resource]
		n := units[row.UnitKey()]
		perUnit := row.Output * price
		out = append(out, RowMetrics{
			Row:                 row,
			Units:               n,
			ValuePerHourPerUnit: perUnit,
			TotalValuePerHour:   perUnit * float64(n),
			HourlyVolume:        row.Output * float64(n) * ResourceUnitVolume,
		})
	}
	return out
}

// Active filters metrics down to rows with at least one mining unit.
func Active(metrics []RowMetrics) []RowMetrics {
	var out []RowMetrics
	for _, m := range metrics {
		if m.Units > 0 {
			out = append(out, m)
		}
	}
	return out
}

// RowIncome is the projected income of a single active row.
type RowIncome struct {
	Metrics RowMetrics

	GrossDaily   float64
	GrossWeekly  float64
	GrossMonthly float64
	NetDaily     float64
	NetWeekly    float64
	NetMonthly   float64
}

// IncomeSummary aggregates income across all active rows. A week is seven
// days and a month thirty.
type IncomeSummary struct {
	Rows []RowIncome

	TotalNetDaily   float64
	TotalNetWeekly  float64
	TotalNetMonthly float64

	POSCost            float64
	FinalMonthlyProfit float64
}

// Income projects daily, weekly and monthly income for the active rows and
// subtracts the monthly POS upkeep from the net monthly total.
func Income(metrics []RowMetrics, prefs store.Preferences) IncomeSummary {
	mult := prefs.TaxMultiplier()
	summary := IncomeSummary{POSCost: prefs.POSCost}
	for _, m := range Active(metrics) {
		ri := RowIncome{Metrics: m}
		ri.GrossDaily = m.TotalValuePerHour * 24
		ri.GrossWeekly = ri.GrossDaily * 7
		ri.GrossMonthly = ri.GrossDaily * 30
		ri.NetDaily = ri.GrossDaily * mult
		ri.NetWeekly = ri.GrossWeekly * mult
		ri.NetMonthly = ri.GrossMonthly * mult
		summary.Rows = append(summary.Rows, ri)
		summary.TotalNetDaily += ri.NetDaily
		summary.TotalNetWeekly += ri.NetWeekly
		summary.TotalNetMonthly += ri.NetMonthly
	}
	summary.FinalMonthlyProfit = summary.TotalNetMonthly - summary.POSCost
	return summary
}
