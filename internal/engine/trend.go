package engine

import (
	"sort"
	"time"

	"echoes-planner/internal/store"
)

// TrendPoint is one resource's market snapshot on one date.
type TrendPoint struct {
	Date    time.Time
	Buy     float64
	Sell    float64
	Average float64
}

// TrendSummary compares a resource's latest net buy price with the
// preceding snapshot.
type TrendSummary struct {
	Resource         string
	LatestNetBuy     float64
	ChangeVsPrevious float64
}

// BuildTrends folds date-ordered history records into per-resource series.
// Records for the same resource on the same date overwrite earlier ones, so
// the freshest import wins.
func BuildTrends(records []store.HistoryRecord) map[string][]TrendPoint {
	perResource := make(map[string]map[string]TrendPoint)
	for _, rec := range records {
		day := rec.Date.Format("2006-01-02")
		slots, ok := perResource[rec.Resource]
		if !ok {
			slots = make(map[string]TrendPoint)
			perResource[rec.Resource] = slots
		}
		point := TrendPoint{Date: rec.Date}
		if rec.Buy != nil {
			point.Buy = *rec.Buy
		}
		if rec.Sell != nil {
			point.Sell = *rec.Sell
		}
		if rec.Average != nil {
			point.Average = *rec.Average
		}
		slots[day] = point
	}

	out := make(map[string][]TrendPoint, len(perResource))
	for resource, slots := range perResource {
		days := make([]string, 0, len(slots))
		for day := range slots {
			days = append(days, day)
		}
		sort.Strings(days)
		series := make([]TrendPoint, 0, len(days))
		for _, day := range days {
			series = append(series, slots[day])
		}
		out[resource] = series
	}
	return out
}

// NetTrend scales a series by the tax multiplier, leaving the input alone.
func NetTrend(points []TrendPoint, taxMultiplier float64) []TrendPoint {
	out := make([]TrendPoint, len(points))
	for i, p := range points {
		out[i] = TrendPoint{
			Date:    p.Date,
			Buy:     p.Buy * taxMultiplier,
			Sell:    p.Sell * taxMultiplier,
			Average: p.Average * taxMultiplier,
		}
	}
	return out
}

// TrendSummaries reports each resource's latest net buy price and its delta
// against the previous date, sorted by resource name. A series with a
// single point reports a zero delta.
func TrendSummaries(trends map[string][]TrendPoint, taxMultiplier float64) []TrendSummary {
	out := make([]TrendSummary, 0, len(trends))
	for resource, points := range trends {
		if len(points) == 0 {
			continue
		}
		last := points[len(points)-1].Buy * taxMultiplier
		summary := TrendSummary{Resource: resource, LatestNetBuy: last}
		if len(points) > 1 {
			prev := points[len(points)-2].Buy * taxMultiplier
			summary.ChangeVsPrevious = last - prev
		}
		out = append(out, summary)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Resource < out[j].Resource })
	return out
}
