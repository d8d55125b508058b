// Package export writes prediction results as Excel workbooks.
package export

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"district-dashboard/internal/models"
)

const (
	SheetPrediction = "Prediction"
	SheetInputs     = "Inputs"

	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// Filename is the suggested download name for est.
func Filename(est *models.Estimate) string {
	return fmt.Sprintf("prediction_%s_%dQ%d.xlsx", est.Selection.AreaCode, est.Selection.Year, est.Selection.Quarter)
}

// WritePrediction writes est and the inputs it was computed from as an xlsx workbook.
func WritePrediction(w io.Writer, areaName string, est *models.Estimate, in models.UserInput) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetPrediction); err != nil {
		return err
	}
	if _, err := f.NewSheet(SheetInputs); err != nil {
		return err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	thousands, err := f.NewStyle(&excelize.Style{NumFmt: 3})
	if err != nil {
		return err
	}

	sel := est.Selection
	meta := [][]any{
		{"area_code", sel.AreaCode},
		{"area_name", areaName},
		{"zone_code", sel.ZoneCode},
		{"year", sel.Year},
		{"quarter", sel.Quarter},
		{"model_version", est.ModelVersion},
		{"generated_at", est.GeneratedAt.Format(time.RFC3339)},
	}
	row := 1
	for _, kv := range meta {
		if err := setRow(f, SheetPrediction, row, kv...); err != nil {
			return err
		}
		row++
	}

	row++
	header := row
	if err := setRow(f, SheetPrediction, row, "timeslot", "raw", "sales"); err != nil {
		return err
	}
	for _, s := range est.Slots {
		row++
		if err := setRow(f, SheetPrediction, row, string(s.Timeslot), s.Raw, s.Sales); err != nil {
			return err
		}
	}
	row++
	if err := setRow(f, SheetPrediction, row, "total", nil, est.Total); err != nil {
		return err
	}

	if err := f.SetCellStyle(SheetPrediction, cell(1, header), cell(3, header), bold); err != nil {
		return err
	}
	if err := f.SetCellStyle(SheetPrediction, cell(3, header+1), cell(3, row), thousands); err != nil {
		return err
	}
	if err := f.SetColWidth(SheetPrediction, "A", "C", 18); err != nil {
		return err
	}

	if err := writeInputs(f, in, bold); err != nil {
		return err
	}
	return f.Write(w)
}

func writeInputs(f *excelize.File, in models.UserInput, bold int) error {
	if err := setRow(f, SheetInputs, 1, "field", "value"); err != nil {
		return err
	}
	if err := f.SetCellStyle(SheetInputs, "A1", "B1", bold); err != nil {
		return err
	}

	var rows [][]any
	for i, slot := range models.Timeslots {
		if i < len(in.FloatingPopulation) {
			rows = append(rows, []any{"floating_population_" + string(slot), in.FloatingPopulation[i]})
		}
	}
	scalar := func(name string, v *float64) {
		if v != nil {
			rows = append(rows, []any{name, *v})
		}
	}
	ratios := func(prefix string, vals []float64) {
		for i, v := range vals {
			if i < len(models.AgeBandLabels) {
				rows = append(rows, []any{prefix + models.AgeBandLabels[i], v})
			}
		}
	}
	scalar("workplace_population", in.WorkplacePopulation)
	ratios("workplace_ratio_", in.WorkplaceRatios)
	scalar("resident_population", in.ResidentPopulation)
	ratios("resident_ratio_", in.ResidentRatios)
	scalar("household_count", in.HouseholdCount)
	scalar("facility_count", in.FacilityCount)
	scalar("income", in.Income)
	scalar("spending", in.Spending)
	scalar("store_count", in.StoreCount)
	scalar("opened_store_count", in.OpenedStoreCount)

	for i, r := range rows {
		if err := setRow(f, SheetInputs, i+2, r...); err != nil {
			return err
		}
	}
	return f.SetColWidth(SheetInputs, "A", "A", 28)
}

func setRow(f *excelize.File, sheet string, row int, values ...any) error {
	for i, v := range values {
		if v == nil {
			continue
		}
		if err := f.SetCellValue(sheet, cell(i+1, row), v); err != nil {
			return err
		}
	}
	return nil
}

func cell(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}
