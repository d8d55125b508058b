package services

import (
	"fmt"
	"strconv"

	"district-dashboard/internal/models"
)

// Signal keys shared by the prediction form and the handler that reads it back.
const (
	KeyZone       = "zone"
	KeyArea       = "area"
	KeyYear       = "year"
	KeyQuarter    = "quarter"
	KeyWorkplace  = "workplace"
	KeyResident   = "resident"
	KeyHouseholds = "households"
	KeyFacilities = "facilities"
	KeyIncome     = "income"
	KeySpending   = "spending"
	KeyStores     = "stores"
	KeyOpened     = "opened"
)

func FloatingKey(i int) string       { return fmt.Sprintf("floating%d", i) }
func WorkplaceRatioKey(i int) string { return fmt.Sprintf("wratio%d", i) }
func ResidentRatioKey(i int) string  { return fmt.Sprintf("rratio%d", i) }

// ScalarField is one bounded numeric control of the prediction form.
type ScalarField struct {
	Key    string
	Label  string
	Value  float64
	Bounds models.Range
}

// ScalarFields lists the form's single-value controls in display order.
func (v PredictView) ScalarFields() []ScalarField {
	in, b := v.Defaults, v.Bounds
	field := func(key, label string, val *float64, r models.Range) ScalarField {
		f := ScalarField{Key: key, Label: label, Bounds: r}
		if val != nil {
			f.Value = *val
		}
		return f
	}
	return []ScalarField{
		field(KeyWorkplace, "총 직장인구 수", in.WorkplacePopulation, b.WorkplacePopulation),
		field(KeyResident, "총 상주인구 수", in.ResidentPopulation, b.ResidentPopulation),
		field(KeyHouseholds, "총 가구 수", in.HouseholdCount, b.HouseholdCount),
		field(KeyFacilities, "집객시설 수", in.FacilityCount, b.FacilityCount),
		field(KeyIncome, "월평균 소득금액", in.Income, b.Income),
		field(KeySpending, "지출 총금액", in.Spending, b.Spending),
		field(KeyStores, "편의점 점포 수", in.StoreCount, b.StoreCount),
		field(KeyOpened, "개업 점포 수", in.OpenedStoreCount, b.OpenedStoreCount),
	}
}

// FormSignals flattens a selection and input into the form's signal map.
func FormSignals(sel models.Selection, in models.UserInput) map[string]any {
	m := map[string]any{
		KeyZone:    sel.ZoneCode,
		KeyArea:    sel.AreaCode,
		KeyYear:    sel.Year,
		KeyQuarter: sel.Quarter,
	}
	for i, v := range in.FloatingPopulation {
		m[FloatingKey(i)] = v
	}
	for i, v := range in.WorkplaceRatios {
		m[WorkplaceRatioKey(i)] = v
	}
	for i, v := range in.ResidentRatios {
		m[ResidentRatioKey(i)] = v
	}
	scalars := map[string]*float64{
		KeyWorkplace:  in.WorkplacePopulation,
		KeyResident:   in.ResidentPopulation,
		KeyHouseholds: in.HouseholdCount,
		KeyFacilities: in.FacilityCount,
		KeyIncome:     in.Income,
		KeySpending:   in.Spending,
		KeyStores:     in.StoreCount,
		KeyOpened:     in.OpenedStoreCount,
	}
	for k, v := range scalars {
		if v != nil {
			m[k] = *v
		}
	}
	return m
}

// ParseFormSignals is the inverse of FormSignals. Absent or unparsable values
// stay absent so the feature builder reports them as missing.
func ParseFormSignals(m map[string]any) (models.Selection, models.UserInput) {
	sel := models.Selection{
		ZoneCode: str(m[KeyZone]),
		AreaCode: str(m[KeyArea]),
	}
	if v := num(m[KeyYear]); v != nil {
		sel.Year = int(*v)
	}
	if v := num(m[KeyQuarter]); v != nil {
		sel.Quarter = int(*v)
	}

	var in models.UserInput
	in.FloatingPopulation = series(m, FloatingKey, len(models.Timeslots))
	in.WorkplaceRatios = series(m, WorkplaceRatioKey, len(models.AgeBandLabels))
	in.ResidentRatios = series(m, ResidentRatioKey, len(models.AgeBandLabels))
	in.WorkplacePopulation = num(m[KeyWorkplace])
	in.ResidentPopulation = num(m[KeyResident])
	in.HouseholdCount = num(m[KeyHouseholds])
	in.FacilityCount = num(m[KeyFacilities])
	in.Income = num(m[KeyIncome])
	in.Spending = num(m[KeySpending])
	in.StoreCount = num(m[KeyStores])
	in.OpenedStoreCount = num(m[KeyOpened])
	return sel, in
}

// series collects n indexed values, or nil if any is absent.
func series(m map[string]any, key func(int) string, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		v := num(m[key(i)])
		if v == nil {
			return nil
		}
		out[i] = *v
	}
	return out
}

func str(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return ""
	}
}

func num(v any) *float64 {
	switch t := v.(type) {
	case float64:
		return &t
	case int:
		f := float64(t)
		return &f
	case string:
		f, err := strconv.ParseFloat(t, 64)
		if err != nil {
			return nil
		}
		return &f
	default:
		return nil
	}
}
