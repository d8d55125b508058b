package dataset

import (
	"github.com/go-gota/gota/series"

	"district-dashboard/internal/models"
)

const (
	colYear          = "year"
	colQuarter       = "quarter"
	colAreaCode      = "area_code"
	colAreaName      = "area_name"
	colZoneCode      = "zone_code"
	colZoneName      = "zone_name"
	colAreaTypeCode  = "area_type_code"
	colTimeslot      = "timeslot"
	colFloating      = "floating_population"
	colSales         = "sales"
	colStoreCount    = "store_count"
	colSalesPerStore = "sales_per_store"
)

type stringColumn struct {
	name string
	ref  func(*models.QuarterRecord) *string
}

type floatColumn struct {
	name string
	ref  func(*models.QuarterRecord) *float64
}

var quarterStringColumns = []stringColumn{
	{colAreaCode, func(r *models.QuarterRecord) *string { return &r.AreaCode }},
	{colAreaName, func(r *models.QuarterRecord) *string { return &r.AreaName }},
	{colZoneCode, func(r *models.QuarterRecord) *string { return &r.ZoneCode }},
	{colZoneName, func(r *models.QuarterRecord) *string { return &r.ZoneName }},
	{colAreaTypeCode, func(r *models.QuarterRecord) *string { return &r.AreaTypeCode }},
}

var quarterFloatColumns = buildQuarterFloatColumns()

func buildQuarterFloatColumns() []floatColumn {
	cols := []floatColumn{
		{"latitude", func(r *models.QuarterRecord) *float64 { return &r.Latitude }},
		{"longitude", func(r *models.QuarterRecord) *float64 { return &r.Longitude }},
		{colSales, func(r *models.QuarterRecord) *float64 { return &r.Sales }},
	}
	cols = append(cols, genderColumns("sales", func(r *models.QuarterRecord) *models.GenderSplit { return &r.SalesByGender })...)
	cols = append(cols, weekdayColumns("sales", func(r *models.QuarterRecord) *models.Weekdays { return &r.SalesByWeekday })...)
	cols = append(cols, ageColumns("sales", func(r *models.QuarterRecord) *models.AgeBands { return &r.SalesByAge })...)

	cols = append(cols,
		floatColumn{colStoreCount, func(r *models.QuarterRecord) *float64 { return &r.StoreCount }},
		floatColumn{"opened_store_count", func(r *models.QuarterRecord) *float64 { return &r.OpenedStoreCount }},
		floatColumn{"closed_store_count", func(r *models.QuarterRecord) *float64 { return &r.ClosedStoreCount }},
		floatColumn{colFloating, func(r *models.QuarterRecord) *float64 { return &r.FloatingPopulation }},
	)
	cols = append(cols, genderColumns("floating", func(r *models.QuarterRecord) *models.GenderSplit { return &r.FloatingByGender })...)
	cols = append(cols, weekdayColumns("floating", func(r *models.QuarterRecord) *models.Weekdays { return &r.FloatingByWeekday })...)
	cols = append(cols, ageColumns("floating", func(r *models.QuarterRecord) *models.AgeBands { return &r.FloatingByAge })...)

	cols = append(cols, floatColumn{"resident_population", func(r *models.QuarterRecord) *float64 { return &r.ResidentPopulation }})
	cols = append(cols, genderColumns("resident", func(r *models.QuarterRecord) *models.GenderSplit { return &r.ResidentByGender })...)
	cols = append(cols, ageColumns("resident", func(r *models.QuarterRecord) *models.AgeBands { return &r.ResidentByAge })...)

	cols = append(cols, floatColumn{"workplace_population", func(r *models.QuarterRecord) *float64 { return &r.WorkplacePopulation }})
	cols = append(cols, ageColumns("workplace", func(r *models.QuarterRecord) *models.AgeBands { return &r.WorkplaceByAge })...)

	return append(cols,
		floatColumn{"household_count", func(r *models.QuarterRecord) *float64 { return &r.HouseholdCount }},
		floatColumn{"income", func(r *models.QuarterRecord) *float64 { return &r.Income }},
		floatColumn{"spending", func(r *models.QuarterRecord) *float64 { return &r.Spending }},
		floatColumn{"facility_count", func(r *models.QuarterRecord) *float64 { return &r.FacilityCount }},
		floatColumn{"area_size", func(r *models.QuarterRecord) *float64 { return &r.AreaSize }},
	)
}

func genderColumns(prefix string, field func(*models.QuarterRecord) *models.GenderSplit) []floatColumn {
	return []floatColumn{
		{prefix + "_male", func(r *models.QuarterRecord) *float64 { return &field(r).Male }},
		{prefix + "_female", func(r *models.QuarterRecord) *float64 { return &field(r).Female }},
	}
}

func weekdayColumns(prefix string, field func(*models.QuarterRecord) *models.Weekdays) []floatColumn {
	cols := make([]floatColumn, 0, len(models.WeekdayLabels))
	for i, day := range models.WeekdayLabels {
		cols = append(cols, floatColumn{prefix + "_" + day, func(r *models.QuarterRecord) *float64 { return &field(r)[i] }})
	}
	return cols
}

func ageColumns(prefix string, field func(*models.QuarterRecord) *models.AgeBands) []floatColumn {
	cols := make([]floatColumn, 0, len(models.AgeBandLabels))
	for i, band := range models.AgeBandLabels {
		cols = append(cols, floatColumn{prefix + "_age_" + band, func(r *models.QuarterRecord) *float64 { return &field(r)[i] }})
	}
	return cols
}

// QuarterColumns lists every column the quarter CSV must carry.
func QuarterColumns() []string {
	names := []string{colYear, colQuarter}
	for _, c := range quarterStringColumns {
		names = append(names, c.name)
	}
	for _, c := range quarterFloatColumns {
		names = append(names, c.name)
	}
	return names
}

// TimeslotColumns lists every column the timeslot CSV must carry.
func TimeslotColumns() []string {
	return []string{colYear, colQuarter, colAreaCode, colTimeslot, colFloating, colSales}
}

func quarterTypes() map[string]series.Type {
	types := map[string]series.Type{
		colYear:    series.Int,
		colQuarter: series.Int,
	}
	for _, c := range quarterStringColumns {
		types[c.name] = series.String
	}
	return types
}

func timeslotTypes() map[string]series.Type {
	return map[string]series.Type{
		colYear:     series.Int,
		colQuarter:  series.Int,
		colAreaCode: series.String,
		colTimeslot: series.String,
	}
}
