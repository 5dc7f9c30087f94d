package engine

import (
	"fmt"
	"math"
	"sort"
)

// StorageFill is how long one planet takes to fill its storage.
type StorageFill struct {
	System       string
	Planet       string
	HourlyVolume float64
	HoursToFill  float64
}

// StorageFillTimes groups active rows by planet and divides the storage
// capacity by each planet's combined hourly volume. Planets producing no
// volume are omitted, as is everything when capacity is not positive.
func StorageFillTimes(metrics []RowMetrics, capacity float64) []StorageFill {
	if capacity <= 0 {
		return nil
	}
	type planetKey struct{ system, planet string }
	volumes := make(map[planetKey]float64)
	for _, m := range Active(metrics) {
		volumes[planetKey{m.Row.System, m.Row.Planet}] += m.HourlyVolume
	}

	out := make([]StorageFill, 0, len(volumes))
	for key, vol := range volumes {
		if vol <= 0 {
			continue
		}
		out = append(out, StorageFill{
			System:       key.system,
			Planet:       key.planet,
			HourlyVolume: vol,
			HoursToFill:  capacity / vol,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].System != out[j].System {
			return out[i].System < out[j].System
		}
		return out[i].Planet < out[j].Planet
	})
	return out
}

// TransportPlan is the hauling cadence implied by the fleet's total output.
type TransportPlan struct {
	CargoCapacity    float64
	TotalDailyVolume float64
	// FrequencyDays is how often the cargo hold fills, in days. Infinite
	// when nothing is being mined.
	FrequencyDays float64
	Frequency     string
}

// Transport computes how often a ship of the given cargo capacity must
// collect the fleet's production.
func Transport(metrics []RowMetrics, cargoCapacity float64) TransportPlan {
	var hourly float64
	for _, m := range Active(metrics) {
		hourly += m.HourlyVolume
	}
	daily := hourly * 24

	days := math.Inf(1)
	if daily > 0 {
		days = cargoCapacity / daily
	}
	return TransportPlan{
		CargoCapacity:    cargoCapacity,
		TotalDailyVolume: daily,
		FrequencyDays:    days,
		Frequency:        FormatFrequency(days),
	}
}

// FormatFrequency renders a day count as "Xd Yh Zm". Durations under a
// minute come back as "< 1m" and non-positive or infinite ones as "N/A".
func FormatFrequency(days float64) string {
	if math.IsInf(days, 0) || math.IsNaN(days) {
		return "N/A"
	}
	total := int(days * 24 * 3600)
	if total <= 0 {
		return "N/A"
	}
	d := total / 86400
	h := (total % 86400) / 3600
	m := (total % 3600) / 60

	var parts []string
	if d > 0 {
		parts = append(parts, fmt.Sprintf("%dd", d))
	}
	if h > 0 {
		parts = append(parts, fmt.Sprintf("%dh", h))
	}
	if m > 0 {
		parts = append(parts, fmt.Sprintf("%dm", m))
	}
	if len(parts) == 0 {
		return "< 1m"
	}
	out := parts[0]
	for _, p := range parts[1:] {
		out += " " + p
	}
	return out
}
