// Package services builds the dashboard's page data from the loaded dataset
// and the prediction model. Every call takes an explicit selection; nothing
// about the current area or period is held between requests.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"golang.org/x/sync/errgroup"

	"district-dashboard/internal/config"
	"district-dashboard/internal/dataset"
	apperrors "district-dashboard/internal/errors"
	"district-dashboard/internal/features"
	"district-dashboard/internal/format"
	"district-dashboard/internal/inference"
	"district-dashboard/internal/models"
	"district-dashboard/internal/observability"
)

var (
	weekdayNames = [7]string{"월", "화", "수", "목", "금", "토", "일"}
	ageNames     = [6]string{"10대", "20대", "30대", "40대", "50대", "60대 이상"}
)

type Dashboard struct {
	store     *dataset.Store
	predictor *inference.Predictor
	reference models.Period
	logger    *slog.Logger
	startedAt time.Time
}

func NewDashboard(store *dataset.Store, predictor *inference.Predictor, reference models.Period, logger *slog.Logger) *Dashboard {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dashboard{
		store:     store,
		predictor: predictor,
		reference: reference,
		logger:    logger,
		startedAt: time.Now(),
	}
}

// Load reads the dataset and the model artifact concurrently and wires them together.
func Load(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dashboard, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.Data.LoadTimeout)
	defer cancel()

	var (
		store    *dataset.Store
		artifact *inference.Artifact
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		store, err = dataset.NewLoader(cfg.Data.CacheDir, logger).Load(gctx, cfg.Data.QuarterCSV, cfg.Data.TimeslotCSV)
		return err
	})
	g.Go(func() error {
		var err error
		artifact, err = inference.LoadArtifact(cfg.Data.ModelFile)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	predictor, err := inference.NewPredictor(artifact, store, inference.ScalerMode(cfg.Predict.Scaler), logger)
	if err != nil {
		return nil, fmt.Errorf("prediction model: %w", err)
	}

	reference := models.Period{Year: cfg.Dashboard.ReferenceYear, Quarter: cfg.Dashboard.ReferenceQuarter}
	return NewDashboard(store, predictor, reference, logger), nil
}

func (d *Dashboard) Reference() models.Period { return d.reference }

func (d *Dashboard) Catalog() models.Catalog { return d.store.Catalog() }

func (d *Dashboard) Bounds() models.InputBounds { return d.store.Bounds() }

func (d *Dashboard) Stats() map[string]any {
	stats := d.store.Stats()
	stats["reference_period"] = d.reference.String()
	stats["model_version"] = d.predictor.Version()
	stats["uptime"] = time.Since(d.startedAt).Round(time.Second).String()
	return stats
}

// Render builds the view for page.
func (d *Dashboard) Render(ctx context.Context, page Page) (View, error) {
	var (
		v   View
		err error
	)
	switch p := page.(type) {
	case OverviewPage:
		v, err = d.Overview(p.Metric)
	case DrilldownPage:
		v, err = d.Drilldown(p.Selection)
	case PredictPage:
		v, err = d.PredictForm(ctx, p.Selection, p.Input)
	default:
		err = apperrors.Internal(fmt.Sprintf("unknown page %T", page))
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

// Overview ranks every area of the reference period by metric.
func (d *Dashboard) Overview(metric models.Metric) (OverviewView, error) {
	if metric == "" {
		metric = models.MetricFloatingPopulation
	}
	ranking, err := d.store.Ranking(d.reference, metric)
	if err != nil {
		return OverviewView{}, err
	}

	points := make([]MapPoint, len(ranking))
	for i, r := range ranking {
		rec := r.Record
		points[i] = MapPoint{
			AreaCode:           rec.AreaCode,
			AreaName:           rec.AreaName,
			Latitude:           rec.Latitude,
			Longitude:          rec.Longitude,
			FloatingPopulation: rec.FloatingPopulation,
			ResidentPopulation: rec.ResidentPopulation,
			SalesPerStore:      rec.SalesPerStore(),
			StoreCount:         rec.StoreCount,
		}
	}
	return OverviewView{
		Period:  d.reference,
		Metric:  metric,
		Metrics: models.Metrics,
		Ranking: ranking,
		Points:  points,
	}, nil
}

// resolve checks that sel names a known area inside its zone and fills the
// zone when it is empty.
func (d *Dashboard) resolve(sel models.Selection) (models.Selection, models.Area, models.Zone, error) {
	if sel.AreaCode == "" {
		return sel, models.Area{}, models.Zone{}, apperrors.MissingInput("area_code")
	}
	area, zone, ok := d.store.Catalog().FindArea(sel.AreaCode)
	if !ok {
		return sel, area, zone, apperrors.InvalidArea(fmt.Sprintf("unknown commercial area %q", sel.AreaCode))
	}
	if sel.ZoneCode == "" {
		sel.ZoneCode = zone.Code
	}
	if sel.ZoneCode != zone.Code {
		return sel, area, zone, apperrors.InvalidArea(fmt.Sprintf("area %s is not in zone %s", sel.AreaCode, sel.ZoneCode))
	}
	return sel, area, zone, nil
}

// Drilldown collects the reference-period detail of one area. An area without
// reference-period data yields EMPTY_RESULT.
func (d *Dashboard) Drilldown(sel models.Selection) (DrilldownView, error) {
	sel, area, zone, err := d.resolve(sel)
	if err != nil {
		return DrilldownView{}, err
	}
	if sel.Year == 0 || sel.Quarter == 0 {
		sel.Year, sel.Quarter = d.reference.Year, d.reference.Quarter
	}

	rec, err := d.store.Quarter(sel.AreaCode, sel.Period())
	if err != nil {
		return DrilldownView{}, err
	}
	prev, prevErr := d.store.Quarter(sel.AreaCode, sel.Period().Previous())
	hasPrev := prevErr == nil

	headline := func(label, unit string, get func(models.QuarterRecord) float64) Headline {
		h := Headline{Label: label, Unit: unit, Value: get(rec), HasPrevious: hasPrev}
		if hasPrev {
			h.Previous = get(prev)
		}
		return h
	}

	view := DrilldownView{
		Selection: sel,
		Area:      area,
		Zone:      zone,
		Record:    rec,
		Headlines: []Headline{
			headline("점포당 매출액", "원", models.QuarterRecord.SalesPerStore),
			headline("점포수", "개", func(r models.QuarterRecord) float64 { return r.StoreCount }),
			headline("유동인구", "명", func(r models.QuarterRecord) float64 { return r.FloatingPopulation }),
		},
		Households: rec.HouseholdCount,
		Opened:     rec.OpenedStoreCount,
		Closed:     rec.ClosedStoreCount,
	}

	history, err := d.store.History(sel.AreaCode)
	if err != nil {
		return DrilldownView{}, err
	}
	for _, h := range history {
		view.Trend = append(view.Trend, TrendPoint{
			Period:             h.Period(),
			Sales:              h.Sales,
			SalesPerStore:      h.SalesPerStore(),
			StoreCount:         h.StoreCount,
			OpenedStoreCount:   h.OpenedStoreCount,
			ClosedStoreCount:   h.ClosedStoreCount,
			FloatingPopulation: h.FloatingPopulation,
		})
	}

	// Timeslot rows are optional detail; the page still renders without them.
	if slots, err := d.store.Timeslots(sel.AreaCode, sel.Period()); err == nil {
		for _, s := range slots {
			view.Timeslots = append(view.Timeslots, SlotPoint{
				Timeslot:           s.Timeslot,
				Sales:              s.Sales,
				SalesPerStore:      rec.PerStore(s.Sales),
				FloatingPopulation: s.FloatingPopulation,
			})
		}
	}

	for i, name := range weekdayNames {
		view.Weekdays = append(view.Weekdays, Breakdown{
			Label:              name,
			SalesPerStore:      rec.PerStore(rec.SalesByWeekday[i]),
			FloatingPopulation: rec.FloatingByWeekday[i],
		})
	}
	view.Genders = []Breakdown{
		{Label: "남성", SalesPerStore: rec.PerStore(rec.SalesByGender.Male), FloatingPopulation: rec.FloatingByGender.Male},
		{Label: "여성", SalesPerStore: rec.PerStore(rec.SalesByGender.Female), FloatingPopulation: rec.FloatingByGender.Female},
	}
	for i, name := range ageNames {
		view.Ages = append(view.Ages, Breakdown{
			Label:              name,
			SalesPerStore:      rec.PerStore(rec.SalesByAge[i]),
			FloatingPopulation: rec.FloatingByAge[i],
		})
	}

	view.Residents = rec.ResidentPopulation
	share := func(label string, population float64) Share {
		sh := Share{Label: label, Population: population}
		if rec.ResidentPopulation > 0 {
			sh.Ratio = population / rec.ResidentPopulation
		}
		return sh
	}
	view.ResidentGenders = []Share{
		share("남성", rec.ResidentByGender.Male),
		share("여성", rec.ResidentByGender.Female),
	}
	for i, name := range ageNames {
		view.ResidentAges = append(view.ResidentAges, share(name, rec.ResidentByAge[i]))
	}
	return view, nil
}

// DefaultInput prefills the prediction form from the area's reference-period
// record. Counts are rounded to whole numbers and age ratios become percentages.
func (d *Dashboard) DefaultInput(area string) (models.UserInput, error) {
	rec, err := d.store.Quarter(area, d.reference)
	if err != nil {
		return models.UserInput{}, err
	}
	slots, err := d.store.Timeslots(area, d.reference)
	if err != nil {
		return models.UserInput{}, err
	}

	floating := make([]float64, len(models.Timeslots))
	for _, s := range slots {
		floating[s.Timeslot.Index()] = math.Round(s.FloatingPopulation)
	}

	percent := func(bands models.AgeBands) []float64 {
		out := make([]float64, len(bands))
		for i, v := range bands {
			out[i] = math.Round(v*1000) / 10
		}
		return out
	}
	round := func(v float64) *float64 { return models.Float(math.Round(v)) }

	return models.UserInput{
		FloatingPopulation:  floating,
		WorkplacePopulation: round(rec.WorkplacePopulation),
		WorkplaceRatios:     percent(rec.WorkplaceRatios()),
		ResidentPopulation:  round(rec.ResidentPopulation),
		ResidentRatios:      percent(rec.ResidentRatios()),
		HouseholdCount:      round(rec.HouseholdCount),
		FacilityCount:       round(rec.FacilityCount),
		Income:              round(rec.Income),
		Spending:            round(rec.Spending),
		StoreCount:          round(rec.StoreCount),
		OpenedStoreCount:    round(rec.OpenedStoreCount),
	}, nil
}

// PredictForm returns the prefilled form for sel and, when in is not nil, the
// estimate for in. Only the empty form falls back to the catalog zone and the
// quarter after the reference period; submitted input is predicted for sel as
// given, so a missing zone, year or quarter is reported as MISSING_INPUT.
func (d *Dashboard) PredictForm(ctx context.Context, sel models.Selection, in *models.UserInput) (PredictView, error) {
	if in != nil {
		return d.predictSubmitted(ctx, sel, *in)
	}

	sel, area, zone, err := d.resolve(sel)
	if err != nil {
		return PredictView{}, err
	}
	if sel.Year == 0 || sel.Quarter == 0 {
		next := d.reference.Next()
		sel.Year, sel.Quarter = next.Year, next.Quarter
	}
	defaults, err := d.DefaultInput(sel.AreaCode)
	if err != nil {
		return PredictView{}, err
	}
	return PredictView{
		Selection: sel,
		Area:      area,
		Zone:      zone,
		Defaults:  defaults,
		Bounds:    d.store.Bounds(),
	}, nil
}

func (d *Dashboard) predictSubmitted(ctx context.Context, sel models.Selection, in models.UserInput) (PredictView, error) {
	if err := features.CheckInput(sel, in); err != nil {
		return PredictView{}, err
	}
	_, area, zone, err := d.resolve(sel)
	if err != nil {
		return PredictView{}, err
	}
	est, err := d.Predict(ctx, sel, in)
	if err != nil {
		return PredictView{}, err
	}
	return PredictView{
		Selection: sel,
		Area:      area,
		Zone:      zone,
		Defaults:  in,
		Bounds:    d.store.Bounds(),
		Estimate:  est,
		Sentence:  Sentence(area.Name, est),
	}, nil
}

// Predict runs the model for sel.
func (d *Dashboard) Predict(ctx context.Context, sel models.Selection, in models.UserInput) (*models.Estimate, error) {
	start := time.Now()
	est, err := d.predictor.Predict(ctx, sel, in)
	logger := observability.FromContext(ctx, d.logger)
	if err != nil {
		logger.Warn("prediction failed", "area_code", sel.AreaCode, "error", err)
		return nil, err
	}
	logger.Info("prediction complete",
		"area_code", sel.AreaCode,
		"period", sel.Period().String(),
		"total", est.Total,
		"duration", time.Since(start),
	)
	return est, nil
}

// Sentence is the one-line result shown under the prediction form.
func Sentence(areaName string, est *models.Estimate) string {
	return fmt.Sprintf("%s %d년 %d분기 예상 매출은 %s원입니다.",
		areaName, est.Selection.Year, est.Selection.Quarter, format.Number(est.Total))
}

// History and Timeslots back the chart endpoints.
func (d *Dashboard) History(area string) ([]models.QuarterRecord, models.Area, error) {
	a, _, ok := d.store.Catalog().FindArea(area)
	if !ok {
		return nil, a, apperrors.InvalidArea(fmt.Sprintf("unknown commercial area %q", area))
	}
	history, err := d.store.History(area)
	return history, a, err
}

func (d *Dashboard) Timeslots(area string) ([]models.TimeslotRecord, models.Area, error) {
	a, _, ok := d.store.Catalog().FindArea(area)
	if !ok {
		return nil, a, apperrors.InvalidArea(fmt.Sprintf("unknown commercial area %q", area))
	}
	slots, err := d.store.Timeslots(area, d.reference)
	return slots, a, err
}
