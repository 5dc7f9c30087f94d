// Package catalog loads the static planetary resource dataset: every planet
// in New Eden, the resources it hosts, their richness and hourly output.
// The dataset is read once at startup and never mutated.
package catalog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"echoes-planner/internal/store"
)

// Row is one harvestable resource on one planet.
type Row struct {
	PlanetID      string
	Planet        string
	PlanetType    string
	System        string
	Constellation string
	Region        string
	Resource      string
	Richness      string
	Output        float64
}

// UnitKey identifies this row in the mining unit table.
func (r Row) UnitKey() string {
	return store.UnitKey(r.PlanetID, r.Resource)
}

// Catalog is the loaded dataset with lookup indexes.
type Catalog struct {
	rows []Row
}

// Load reads the dataset from a CSV file with a header row. Expected
// columns: planet_id, planet, planet_type, system, constellation, region,
// resource, richness, output.
func Load(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()
	return Read(f)
}

// Read parses the dataset from a reader. Rows missing a planet or resource
// name, or with an output that does not parse, are skipped.
func Read(r io.Reader) (*Catalog, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read catalog header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"planet_id", "planet", "system", "resource", "output"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("catalog missing column %q", required)
		}
	}

	var rows []Row
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read catalog: %w", err)
		}
		row := Row{
			PlanetID:      field(rec, col, "planet_id"),
			Planet:        field(rec, col, "planet"),
			PlanetType:    field(rec, col, "planet_type"),
			System:        field(rec, col, "system"),
			Constellation: field(rec, col, "constellation"),
			Region:        field(rec, col, "region"),
			Resource:      store.NormalizeResource(field(rec, col, "resource")),
			Richness:      field(rec, col, "richness"),
		}
		if row.PlanetID == "" || row.Planet == "" || row.Resource == "" {
			continue
		}
		output, perr := strconv.ParseFloat(field(rec, col, "output"), 64)
		if perr != nil {
			continue
		}
		row.Output = output
		rows = append(rows, row)
	}
	return &Catalog{rows: rows}, nil
}

func field(rec []string, col map[string]int, name string) string {
	idx, ok := col[name]
	if !ok || idx >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[idx])
}

// Rows returns every row in file order.
func (c *Catalog) Rows() []Row {
	out := make([]Row, len(c.rows))
	copy(out, c.rows)
	return out
}

// Len reports the number of rows.
func (c *Catalog) Len() int { return len(c.rows) }

// Resources returns the distinct resource names, sorted.
func (c *Catalog) Resources() []string {
	return c.distinct(func(r Row) (string, bool) { return r.Resource, true })
}

// Regions returns the distinct region names, sorted.
func (c *Catalog) Regions() []string {
	return c.distinct(func(r Row) (string, bool) { return r.Region, true })
}

// Constellations returns the distinct constellations, restricted to the
// given regions when any are named.
func (c *Catalog) Constellations(regions []string) []string {
	want := asSet(regions)
	return c.distinct(func(r Row) (string, bool) {
		if len(want) > 0 && !want[r.Region] {
			return "", false
		}
		return r.Constellation, true
	})
}

// Systems returns the distinct systems, restricted to the given
// constellations when any are named.
func (c *Catalog) Systems(constellations []string) []string {
	want := asSet(constellations)
	return c.distinct(func(r Row) (string, bool) {
		if len(want) > 0 && !want[r.Constellation] {
			return "", false
		}
		return r.System, true
	})
}

// Filter narrows the dataset. Every non-empty selection restricts the
// result; search matches planet, system and resource names without case.
func (c *Catalog) Filter(search string, regions, constellations, systems, resources, richness []string) []Row {
	wantRegion := asSet(regions)
	wantConst := asSet(constellations)
	wantSystem := asSet(systems)
	wantResource := asSet(resources)
	wantRichness := asSet(richness)
	search = strings.ToLower(strings.TrimSpace(search))

	var out []Row
	for _, r := range c.rows {
		if len(wantRegion) > 0 && !wantRegion[r.Region] {
			continue
		}
		if len(wantConst) > 0 && !wantConst[r.Constellation] {
			continue
		}
		if len(wantSystem) > 0 && !wantSystem[r.System] {
			continue
		}
		if len(wantResource) > 0 && !wantResource[r.Resource] {
			continue
		}
		if len(wantRichness) > 0 && !wantRichness[r.Richness] {
			continue
		}
		if search != "" && !matchesSearch(r, search) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func matchesSearch(r Row, search string) bool {
	for _, s := range []string{r.Planet, r.System, r.Resource} {
		if strings.Contains(strings.ToLower(s), search) {
			return true
		}
	}
	return false
}

func (c *Catalog) distinct(pick func(Row) (string, bool)) []string {
	seen := make(map[string]bool)
	for _, r := range c.rows {
		v, ok := pick(r)
		if ok && v != "" {
			seen[v] = true
		}
	}
	out := make([]string, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

func asSet(values []string) map[string]bool {
	if len(values) == 0 {
		return nil
	}
	set := make(map[string]bool, len(values))
	for _, v := range values {
		if v != "" {
			set[v] = true
		}
	}
	return set
}
