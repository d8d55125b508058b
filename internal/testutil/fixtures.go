// Package testutil builds small, deterministic datasets shared by package tests.
package testutil

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"district-dashboard/internal/dataset"
	"district-dashboard/internal/features"
	"district-dashboard/internal/inference"
	"district-dashboard/internal/models"
)

// Fixture codes. AreaHakdong has no 2023Q3 rows.
const (
	ZoneYeoksam  = "11680640"
	ZoneNonhyeon = "11680521"

	AreaGangnam  = "3110001"
	AreaYeoksam  = "3110002"
	AreaNonhyeon = "3110003"
	AreaHakdong  = "3110004"
)

type fixtureArea struct {
	code, name, zone, zoneName, areaType string
	scale                                float64
	size                                 float64
}

var fixtureAreas = []fixtureArea{
	{AreaGangnam, "강남역", ZoneYeoksam, "역삼1동", "D", 4, 10000},
	{AreaYeoksam, "역삼역", ZoneYeoksam, "역삼1동", "A", 3, 8000},
	{AreaNonhyeon, "논현역", ZoneNonhyeon, "논현1동", "U", 2, 5000},
	{AreaHakdong, "학동역", ZoneNonhyeon, "논현1동", "R", 1, 4000},
}

// Periods covered by the fixture, oldest first.
var Periods = []models.Period{{Year: 2023, Quarter: 1}, {Year: 2023, Quarter: 2}, {Year: 2023, Quarter: 3}}

// ReferencePeriod is the period the dashboard reports on in tests.
var ReferencePeriod = models.Period{Year: 2023, Quarter: 3}

// QuarterRecord builds one fully populated record; values grow with scale and quarter.
func QuarterRecord(code, name, zone, zoneName, areaType string, year, quarter int, scale, size float64) models.QuarterRecord {
	k := scale * float64(quarter)
	r := models.QuarterRecord{
		Year:         year,
		Quarter:      quarter,
		AreaCode:     code,
		AreaName:     name,
		ZoneCode:     zone,
		ZoneName:     zoneName,
		AreaTypeCode: areaType,
		Latitude:     37.5,
		Longitude:    127.04,

		Sales:         1000000 * k,
		SalesByGender: models.GenderSplit{Male: 600000 * k, Female: 400000 * k},

		StoreCount:       10 + scale,
		OpenedStoreCount: scale,
		ClosedStoreCount: float64(quarter),

		FloatingPopulation: 60000 * k,
		FloatingByGender:   models.GenderSplit{Male: 30000 * k, Female: 30000 * k},

		ResidentPopulation: 6000 * scale,
		ResidentByGender:   models.GenderSplit{Male: 3000 * scale, Female: 3000 * scale},

		WorkplacePopulation: 12000 * scale,

		HouseholdCount: 2500 * scale,
		Income:         3000000 + 100000*scale,
		Spending:       500000000 * scale,
		FacilityCount:  5 * scale,
		AreaSize:       size,
	}
	for i := range r.SalesByWeekday {
		r.SalesByWeekday[i] = 100000 * k * float64(i+1)
		r.FloatingByWeekday[i] = 5000 * k * float64(i+1)
	}
	for i := range r.SalesByAge {
		r.SalesByAge[i] = 150000 * k
		r.FloatingByAge[i] = 10000 * k
		r.ResidentByAge[i] = 1000 * scale
		r.WorkplaceByAge[i] = 2000 * scale
	}
	return r
}

// Records returns the fixture quarter and timeslot records.
func Records() ([]models.QuarterRecord, []models.TimeslotRecord) {
	var quarters []models.QuarterRecord
	var slots []models.TimeslotRecord

	for _, a := range fixtureAreas {
		for _, p := range Periods {
			if a.code == AreaHakdong && p == ReferencePeriod {
				continue
			}
			quarters = append(quarters, QuarterRecord(a.code, a.name, a.zone, a.zoneName, a.areaType, p.Year, p.Quarter, a.scale, a.size))
			for i, slot := range models.Timeslots {
				slots = append(slots, models.TimeslotRecord{
					Year:               p.Year,
					Quarter:            p.Quarter,
					AreaCode:           a.code,
					Timeslot:           slot,
					FloatingPopulation: 1000 * a.scale * float64(i+1),
					Sales:              50000 * a.scale * float64(i+1),
				})
			}
		}
	}
	return quarters, slots
}

// Store returns a dataset store over the fixture records.
func Store(t testing.TB) *dataset.Store {
	t.Helper()
	quarters, slots := Records()
	store, err := dataset.New(quarters, slots)
	if err != nil {
		t.Fatalf("build fixture store: %v", err)
	}
	return store
}

// WriteCSVFiles writes the fixture as the two CSV files Load expects and returns their paths.
func WriteCSVFiles(t testing.TB, dir string) (quarterPath, timeslotPath string) {
	t.Helper()
	quarters, slots := Records()

	quarterPath = filepath.Join(dir, "quarters.csv")
	timeslotPath = filepath.Join(dir, "timeslots.csv")

	qf, err := os.Create(quarterPath)
	if err != nil {
		t.Fatal(err)
	}
	defer qf.Close()
	if err := dataset.WriteQuarterCSV(qf, quarters); err != nil {
		t.Fatal(err)
	}

	tf, err := os.Create(timeslotPath)
	if err != nil {
		t.Fatal(err)
	}
	defer tf.Close()
	if err := dataset.WriteTimeslotCSV(tf, slots); err != nil {
		t.Fatal(err)
	}
	return quarterPath, timeslotPath
}

// Input returns a complete prediction input with the given store count.
func Input(storeCount float64) models.UserInput {
	return models.UserInput{
		FloatingPopulation:  []float64{1000, 3000, 8000, 6000, 9000, 4000},
		WorkplacePopulation: models.Float(24000),
		WorkplaceRatios:     []float64{5, 30, 25, 20, 12, 8},
		ResidentPopulation:  models.Float(12000),
		ResidentRatios:      []float64{15, 20, 20, 15, 15, 15},
		HouseholdCount:      models.Float(5000),
		FacilityCount:       models.Float(10),
		Income:              models.Float(3200000),
		Spending:            models.Float(1000000000),
		StoreCount:          models.Float(storeCount),
		OpenedStoreCount:    models.Float(2),
	}
}

// Selection selects a fixture area for 2024Q1.
func Selection(area string) models.Selection {
	zone := ZoneYeoksam
	if area == AreaNonhyeon || area == AreaHakdong {
		zone = ZoneNonhyeon
	}
	return models.Selection{ZoneCode: zone, AreaCode: area, Year: 2024, Quarter: 1}
}

// Artifact builds a linear model artifact over the fixture schema. Features
// missing from coef get a zero coefficient.
func Artifact(t testing.TB, lambda, intercept float64, coef map[string]float64) *inference.Artifact {
	t.Helper()
	quarters, _ := Records()
	schema := features.SchemaFromRecords(quarters)
	names, err := schema.Columns()
	if err != nil {
		t.Fatalf("fixture schema: %v", err)
	}
	coefs := make([]float64, len(names))
	for i, n := range names {
		coefs[i] = coef[n]
	}
	return &inference.Artifact{
		Version:      "test",
		Lambda:       lambda,
		FeatureNames: names,
		Model:        inference.ModelSpec{Type: inference.ModelTypeLinear, Intercept: intercept, Coefficients: coefs},
		Schema:       &schema,
	}
}

// Logger discards everything; tests that care about log output build their own.
func Logger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// Predictor returns a batch-scaled predictor over store whose per-slot sales
// are two plus the standardized floating population, so the six slots of
// Input total 12. It logs nothing.
func Predictor(t testing.TB, store *dataset.Store) *inference.Predictor {
	t.Helper()
	artifact := Artifact(t, 1, 1, map[string]float64{"floating_population": 1})
	p, err := inference.NewPredictor(artifact, store, inference.ScalerBatch, Logger())
	if err != nil {
		t.Fatalf("fixture predictor: %v", err)
	}
	return p
}
