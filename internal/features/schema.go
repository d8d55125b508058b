package features

import (
	"fmt"
	"regexp"
	"slices"
	"strconv"

	"district-dashboard/internal/models"
)

const SchemaVersion = "v1"

// Column name prefixes of the one-hot dimensions.
const (
	PrefixQuarter  = "quarter_"
	PrefixAreaType = "area_type_"
	PrefixArea     = "area_"
	PrefixZone     = "zone_"
	PrefixTimeslot = "timeslot_"
)

// Scalar column names, in schema order.
const (
	ColFloatingPopulation  = "floating_population"
	ColYear                = "year"
	ColWorkplacePopulation = "workplace_population"
	ColResidentPopulation  = "resident_population"
	ColHouseholdCount      = "household_count"
	ColFacilityCount       = "facility_count"
	ColIncome              = "income"
	ColSpending            = "spending"
	ColStoreCount          = "store_count"
	ColOpenedStoreCount    = "opened_store_count"
	ColStoreDensity        = "store_density"
)

var nonWord = regexp.MustCompile(`[^\p{L}\p{N}_]+`)

// Sanitize replaces every maximal run of characters that are not letters,
// digits or underscores with a single underscore.
func Sanitize(name string) string {
	return nonWord.ReplaceAllString(name, "_")
}

// SanitizeAll sanitizes names in order and rejects names that collide afterwards.
func SanitizeAll(names []string) ([]string, error) {
	out := make([]string, len(names))
	seen := make(map[string]string, len(names))
	for i, n := range names {
		s := Sanitize(n)
		if prev, dup := seen[s]; dup {
			return nil, fmt.Errorf("columns %q and %q both sanitize to %q", prev, n, s)
		}
		seen[s] = n
		out[i] = s
	}
	return out, nil
}

// Schema is the versioned code universe of the categorical dimensions.
type Schema struct {
	Version       string   `json:"version"`
	AreaTypeCodes []string `json:"area_type_codes"`
	AreaCodes     []string `json:"area_codes"`
	ZoneCodes     []string `json:"zone_codes"`
}

// SchemaFromRecords derives a schema from every code observed in recs, sorted.
func SchemaFromRecords(recs []models.QuarterRecord) Schema {
	var types, areas, zones []string
	for _, r := range recs {
		types = append(types, r.AreaTypeCode)
		areas = append(areas, r.AreaCode)
		zones = append(zones, r.ZoneCode)
	}
	return Schema{
		Version:       SchemaVersion,
		AreaTypeCodes: distinct(types),
		AreaCodes:     distinct(areas),
		ZoneCodes:     distinct(zones),
	}
}

func distinct(vals []string) []string {
	slices.Sort(vals)
	return slices.Compact(vals)
}

func (s Schema) Validate() error {
	dims := []struct {
		name  string
		codes []string
	}{
		{"area type", s.AreaTypeCodes},
		{"area", s.AreaCodes},
		{"zone", s.ZoneCodes},
	}
	for _, d := range dims {
		if len(d.codes) == 0 {
			return fmt.Errorf("schema %s: no %s codes", s.Version, d.name)
		}
		if len(distinct(slices.Clone(d.codes))) != len(d.codes) {
			return fmt.Errorf("schema %s: duplicate %s codes", s.Version, d.name)
		}
	}
	return nil
}

func (s Schema) HasAreaType(code string) bool { return slices.Contains(s.AreaTypeCodes, code) }
func (s Schema) HasArea(code string) bool     { return slices.Contains(s.AreaCodes, code) }
func (s Schema) HasZone(code string) bool     { return slices.Contains(s.ZoneCodes, code) }

// ScalarColumns returns the broadcast numeric columns in schema order.
func ScalarColumns() []string {
	cols := []string{ColFloatingPopulation, ColYear, ColWorkplacePopulation}
	for _, band := range models.AgeBandLabels {
		cols = append(cols, "workplace_ratio_"+band)
	}
	cols = append(cols, ColResidentPopulation)
	for _, band := range models.AgeBandLabels {
		cols = append(cols, "resident_ratio_"+band)
	}
	return append(cols,
		ColHouseholdCount,
		ColFacilityCount,
		ColIncome,
		ColSpending,
		ColStoreCount,
		ColOpenedStoreCount,
		ColStoreDensity,
	)
}

func quarterColumns() []string {
	cols := make([]string, 4)
	for q := 1; q <= 4; q++ {
		cols[q-1] = PrefixQuarter + strconv.Itoa(q)
	}
	return cols
}

func timeslotColumns() []string {
	cols := make([]string, len(models.Timeslots))
	for i, slot := range models.Timeslots {
		cols[i] = PrefixTimeslot + string(slot)
	}
	return cols
}

func prefixed(prefix string, codes []string) []string {
	cols := make([]string, len(codes))
	for i, c := range codes {
		cols[i] = prefix + c
	}
	return cols
}

// rawColumns is the unsanitized column list in schema order.
func (s Schema) rawColumns() []string {
	cols := ScalarColumns()
	cols = append(cols, quarterColumns()...)
	cols = append(cols, prefixed(PrefixAreaType, s.AreaTypeCodes)...)
	cols = append(cols, prefixed(PrefixArea, s.AreaCodes)...)
	cols = append(cols, prefixed(PrefixZone, s.ZoneCodes)...)
	return append(cols, timeslotColumns()...)
}

// Columns returns the sanitized feature names in the order the model expects.
func (s Schema) Columns() ([]string, error) {
	return SanitizeAll(s.rawColumns())
}

// CategoricalColumns returns the sanitized names of the timeslot, area type,
// area and zone indicators. Every other column is numeric and gets standardized.
func (s Schema) CategoricalColumns() ([]string, error) {
	var raw []string
	raw = append(raw, prefixed(PrefixAreaType, s.AreaTypeCodes)...)
	raw = append(raw, prefixed(PrefixArea, s.AreaCodes)...)
	raw = append(raw, prefixed(PrefixZone, s.ZoneCodes)...)
	raw = append(raw, timeslotColumns()...)
	return SanitizeAll(raw)
}
