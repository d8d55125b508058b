package dataset

import (
	"fmt"
	"io"
	"math"
	"slices"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"district-dashboard/internal/models"
)

type quarterKey struct {
	year, quarter int
	area          string
}

type slotKey struct {
	quarterKey
	slot models.Timeslot
}

func readFrame(r io.Reader, required []string, types map[string]series.Type) (dataframe.DataFrame, error) {
	df := dataframe.ReadCSV(r,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.Float),
		dataframe.WithTypes(types),
	)
	if df.Err != nil {
		return df, fmt.Errorf("parse csv: %w", df.Err)
	}

	names := df.Names()
	var missing []string
	for _, col := range required {
		if !slices.Contains(names, col) {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return df, fmt.Errorf("header missing columns %v", missing)
	}
	if df.Nrow() == 0 {
		return df, fmt.Errorf("no data rows")
	}
	return df, nil
}

func intColumn(df dataframe.DataFrame, name string) ([]int, error) {
	vals, err := df.Col(name).Int()
	if err != nil {
		return nil, fmt.Errorf("column %q: %w", name, err)
	}
	return vals, nil
}

func floatValues(df dataframe.DataFrame, name string) ([]float64, error) {
	vals := df.Col(name).Float()
	for i, v := range vals {
		if math.IsNaN(v) {
			return nil, fmt.Errorf("row %d: column %q is empty or not numeric", i+2, name)
		}
	}
	return vals, nil
}

func decodeQuarters(df dataframe.DataFrame) ([]models.QuarterRecord, error) {
	years, err := intColumn(df, colYear)
	if err != nil {
		return nil, err
	}
	quarters, err := intColumn(df, colQuarter)
	if err != nil {
		return nil, err
	}

	recs := make([]models.QuarterRecord, df.Nrow())
	for i := range recs {
		recs[i].Year = years[i]
		recs[i].Quarter = quarters[i]
	}

	for _, c := range quarterStringColumns {
		for i, v := range df.Col(c.name).Records() {
			*c.ref(&recs[i]) = v
		}
	}

	for _, c := range quarterFloatColumns {
		vals, err := floatValues(df, c.name)
		if err != nil {
			return nil, err
		}
		for i, v := range vals {
			*c.ref(&recs[i]) = v
		}
	}

	seen := make(map[quarterKey]int, len(recs))
	for i, r := range recs {
		if r.Quarter < 1 || r.Quarter > 4 {
			return nil, fmt.Errorf("row %d: quarter %d out of range", i+2, r.Quarter)
		}
		if r.AreaCode == "" {
			return nil, fmt.Errorf("row %d: empty area code", i+2)
		}
		k := quarterKey{r.Year, r.Quarter, r.AreaCode}
		if prev, dup := seen[k]; dup {
			return nil, fmt.Errorf("row %d: duplicate key %s/%s (first seen at row %d)", i+2, r.Period(), r.AreaCode, prev+2)
		}
		seen[k] = i
	}
	return recs, nil
}

func decodeTimeslots(df dataframe.DataFrame) ([]models.TimeslotRecord, error) {
	years, err := intColumn(df, colYear)
	if err != nil {
		return nil, err
	}
	quarters, err := intColumn(df, colQuarter)
	if err != nil {
		return nil, err
	}
	floating, err := floatValues(df, colFloating)
	if err != nil {
		return nil, err
	}
	sales, err := floatValues(df, colSales)
	if err != nil {
		return nil, err
	}
	areas := df.Col(colAreaCode).Records()
	slots := df.Col(colTimeslot).Records()

	recs := make([]models.TimeslotRecord, df.Nrow())
	seen := make(map[slotKey]struct{}, len(recs))
	for i := range recs {
		slot := models.Timeslot(slots[i])
		if !slot.Valid() {
			return nil, fmt.Errorf("row %d: unknown timeslot %q", i+2, slots[i])
		}
		k := slotKey{quarterKey{years[i], quarters[i], areas[i]}, slot}
		if _, dup := seen[k]; dup {
			return nil, fmt.Errorf("row %d: duplicate timeslot row %d/%d/%s/%s", i+2, years[i], quarters[i], areas[i], slot)
		}
		seen[k] = struct{}{}

		recs[i] = models.TimeslotRecord{
			Year:               years[i],
			Quarter:            quarters[i],
			AreaCode:           areas[i],
			Timeslot:           slot,
			FloatingPopulation: floating[i],
			Sales:              sales[i],
		}
	}
	return recs, nil
}

func encodeQuarters(recs []models.QuarterRecord) dataframe.DataFrame {
	years := make([]int, len(recs))
	quarters := make([]int, len(recs))
	for i, r := range recs {
		years[i] = r.Year
		quarters[i] = r.Quarter
	}
	cols := []series.Series{
		series.New(years, series.Int, colYear),
		series.New(quarters, series.Int, colQuarter),
	}

	for _, c := range quarterStringColumns {
		vals := make([]string, len(recs))
		for i := range recs {
			vals[i] = *c.ref(&recs[i])
		}
		cols = append(cols, series.New(vals, series.String, c.name))
	}
	for _, c := range quarterFloatColumns {
		vals := make([]float64, len(recs))
		for i := range recs {
			vals[i] = *c.ref(&recs[i])
		}
		cols = append(cols, series.New(vals, series.Float, c.name))
	}
	return dataframe.New(cols...)
}

func encodeTimeslots(recs []models.TimeslotRecord) dataframe.DataFrame {
	n := len(recs)
	years, quarters := make([]int, n), make([]int, n)
	areas, slots := make([]string, n), make([]string, n)
	floating, sales := make([]float64, n), make([]float64, n)
	for i, r := range recs {
		years[i], quarters[i] = r.Year, r.Quarter
		areas[i], slots[i] = r.AreaCode, string(r.Timeslot)
		floating[i], sales[i] = r.FloatingPopulation, r.Sales
	}
	return dataframe.New(
		series.New(years, series.Int, colYear),
		series.New(quarters, series.Int, colQuarter),
		series.New(areas, series.String, colAreaCode),
		series.New(slots, series.String, colTimeslot),
		series.New(floating, series.Float, colFloating),
		series.New(sales, series.Float, colSales),
	)
}

// WriteQuarterCSV writes recs in the layout Load reads.
func WriteQuarterCSV(w io.Writer, recs []models.QuarterRecord) error {
	return encodeQuarters(recs).WriteCSV(w)
}

// WriteTimeslotCSV writes recs in the layout Load reads.
func WriteTimeslotCSV(w io.Writer, recs []models.TimeslotRecord) error {
	return encodeTimeslots(recs).WriteCSV(w)
}
