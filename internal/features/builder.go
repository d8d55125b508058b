package features

import (
	"fmt"
	"slices"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/shopspring/decimal"

	apperrors "district-dashboard/internal/errors"
	"district-dashboard/internal/models"
)

// DensityPlaces is the number of decimal places store density is rounded to.
const DensityPlaces = 10

// AreaLookup resolves the most recent quarter record of a commercial area.
// *dataset.Store satisfies it.
type AreaLookup interface {
	LatestQuarter(area string) (models.QuarterRecord, error)
}

// Builder assembles feature rows for one schema.
type Builder struct {
	schema      Schema
	columns     []string
	categorical map[string]bool
	areas       AreaLookup
}

func NewBuilder(schema Schema, areas AreaLookup) (*Builder, error) {
	if err := schema.Validate(); err != nil {
		return nil, err
	}
	cols, err := schema.Columns()
	if err != nil {
		return nil, err
	}
	cat, err := schema.CategoricalColumns()
	if err != nil {
		return nil, err
	}
	b := &Builder{
		schema:      schema,
		columns:     cols,
		categorical: make(map[string]bool, len(cat)),
		areas:       areas,
	}
	for _, c := range cat {
		b.categorical[c] = true
	}
	return b, nil
}

func (b *Builder) Schema() Schema { return b.schema }

// Columns returns the ordered feature names every built row carries.
func (b *Builder) Columns() []string { return slices.Clone(b.columns) }

// Categorical reports whether column is a one-hot indicator that must not be standardized.
func (b *Builder) Categorical(column string) bool { return b.categorical[column] }

// StoreDensity is stores per unit of area, rounded to DensityPlaces.
func StoreDensity(storeCount, area float64) (decimal.Decimal, error) {
	if area == 0 {
		return decimal.Zero, apperrors.InvalidArea("selected commercial area has zero area")
	}
	return decimal.NewFromFloat(storeCount).
		Div(decimal.NewFromFloat(area)).
		Round(DensityPlaces), nil
}

// CheckInput returns a MISSING_INPUT error naming every absent or malformed field.
func CheckInput(sel models.Selection, in models.UserInput) error {
	var missing []string
	need := func(ok bool, field string) {
		if !ok {
			missing = append(missing, field)
		}
	}

	need(sel.ZoneCode != "", "zone_code")
	need(sel.AreaCode != "", "area_code")
	need(sel.Year != 0, "year")
	need(sel.Quarter != 0, "quarter")

	need(len(in.FloatingPopulation) == len(models.Timeslots), "floating_population")
	need(in.WorkplacePopulation != nil, "workplace_population")
	need(len(in.WorkplaceRatios) == len(models.AgeBandLabels), "workplace_ratios")
	need(in.ResidentPopulation != nil, "resident_population")
	need(len(in.ResidentRatios) == len(models.AgeBandLabels), "resident_ratios")
	need(in.HouseholdCount != nil, "household_count")
	need(in.FacilityCount != nil, "facility_count")
	need(in.Income != nil, "income")
	need(in.Spending != nil, "spending")
	need(in.StoreCount != nil, "store_count")
	need(in.OpenedStoreCount != nil, "opened_store_count")

	if len(missing) > 0 {
		return apperrors.MissingInput(missing...)
	}
	if sel.Quarter < 1 || sel.Quarter > 4 {
		return apperrors.Validation(fmt.Sprintf("quarter %d out of range", sel.Quarter))
	}
	return nil
}

// Build assembles the six-row feature table for sel and in.
func (b *Builder) Build(sel models.Selection, in models.UserInput) (*Row, error) {
	if err := CheckInput(sel, in); err != nil {
		return nil, err
	}

	rec, err := b.areas.LatestQuarter(sel.AreaCode)
	if err != nil {
		return nil, err
	}
	switch {
	case rec.ZoneCode != sel.ZoneCode:
		return nil, apperrors.InvalidArea(fmt.Sprintf("area %s does not belong to zone %s", sel.AreaCode, sel.ZoneCode))
	case !b.schema.HasArea(sel.AreaCode):
		return nil, apperrors.InvalidArea(fmt.Sprintf("area %s is not part of schema %s", sel.AreaCode, b.schema.Version))
	case !b.schema.HasZone(sel.ZoneCode):
		return nil, apperrors.InvalidArea(fmt.Sprintf("zone %s is not part of schema %s", sel.ZoneCode, b.schema.Version))
	case !b.schema.HasAreaType(rec.AreaTypeCode):
		return nil, apperrors.InvalidArea(fmt.Sprintf("area type %s is not part of schema %s", rec.AreaTypeCode, b.schema.Version))
	}

	density, err := StoreDensity(*in.StoreCount, rec.AreaSize)
	if err != nil {
		return nil, err
	}

	scalars := []float64{float64(sel.Year), *in.WorkplacePopulation}
	for _, r := range in.WorkplaceRatios {
		scalars = append(scalars, r/100)
	}
	scalars = append(scalars, *in.ResidentPopulation)
	for _, r := range in.ResidentRatios {
		scalars = append(scalars, r/100)
	}
	scalars = append(scalars,
		*in.HouseholdCount,
		*in.FacilityCount,
		*in.Income,
		*in.Spending,
		*in.StoreCount,
		*in.OpenedStoreCount,
		density.InexactFloat64(),
	)

	n := len(models.Timeslots)
	cols := make([]series.Series, 0, len(b.columns))
	next := func() string { return b.columns[len(cols)] }

	// floating_population varies per row; every other scalar is broadcast.
	cols = append(cols, series.New(slices.Clone(in.FloatingPopulation), series.Float, next()))
	for _, v := range scalars {
		cols = append(cols, series.New(broadcast(v, n), series.Float, next()))
	}

	oneHot := func(codes []string, selected string) {
		for _, c := range codes {
			cols = append(cols, series.New(broadcastBool(c == selected, n), series.Bool, next()))
		}
	}
	oneHot([]string{"1", "2", "3", "4"}, fmt.Sprint(sel.Quarter))
	oneHot(b.schema.AreaTypeCodes, rec.AreaTypeCode)
	oneHot(b.schema.AreaCodes, sel.AreaCode)
	oneHot(b.schema.ZoneCodes, sel.ZoneCode)

	for i := range models.Timeslots {
		vals := make([]bool, n)
		vals[i] = true
		cols = append(cols, series.New(vals, series.Bool, next()))
	}

	df := normalize(dataframe.New(cols...))
	if df.Err != nil {
		return nil, apperrors.InternalWrap(df.Err, "assemble feature table")
	}
	return &Row{frame: df, density: density, categorical: b.categorical}, nil
}

func broadcast(v float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func broadcastBool(v bool, n int) []bool {
	out := make([]bool, n)
	for i := range out {
		out[i] = v
	}
	return out
}

// normalize converts every boolean indicator column to 0/1 floats in place.
func normalize(df dataframe.DataFrame) dataframe.DataFrame {
	for _, name := range df.Names() {
		col := df.Col(name)
		if col.Type() != series.Bool {
			continue
		}
		df = df.Mutate(series.New(col.Float(), series.Float, name))
	}
	return df
}
