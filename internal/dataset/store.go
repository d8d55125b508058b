package dataset

import (
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"gonum.org/v1/gonum/floats"

	apperrors "district-dashboard/internal/errors"
	"district-dashboard/internal/models"
)

// Store is an immutable snapshot of both datasets. All methods are safe for
// concurrent use because nothing mutates the snapshot after construction.
type Store struct {
	quarters  dataframe.DataFrame
	timeslots dataframe.DataFrame

	quarterRecs []models.QuarterRecord
	slotRecs    []models.TimeslotRecord
	byKey       map[quarterKey]int
	slotsByKey  map[slotKey]int

	catalog  models.Catalog
	bounds   models.InputBounds
	loadedAt time.Time
}

// New builds a store from in-memory records.
func New(quarters []models.QuarterRecord, timeslots []models.TimeslotRecord) (*Store, error) {
	return newStore(encodeQuarters(quarters), encodeTimeslots(timeslots), quarters, timeslots)
}

func newStore(qdf, tdf dataframe.DataFrame, quarters []models.QuarterRecord, timeslots []models.TimeslotRecord) (*Store, error) {
	if len(quarters) == 0 {
		return nil, fmt.Errorf("quarter dataset is empty")
	}
	if qdf.Err != nil {
		return nil, fmt.Errorf("quarter frame: %w", qdf.Err)
	}
	if tdf.Err != nil {
		return nil, fmt.Errorf("timeslot frame: %w", tdf.Err)
	}

	s := &Store{
		quarters:    qdf,
		timeslots:   tdf,
		quarterRecs: slices.Clone(quarters),
		slotRecs:    slices.Clone(timeslots),
		byKey:       make(map[quarterKey]int, len(quarters)),
		slotsByKey:  make(map[slotKey]int, len(timeslots)),
		loadedAt:    time.Now(),
	}
	for i, r := range s.quarterRecs {
		k := quarterKey{r.Year, r.Quarter, r.AreaCode}
		if _, dup := s.byKey[k]; dup {
			return nil, fmt.Errorf("duplicate quarter record %s/%s", r.Period(), r.AreaCode)
		}
		s.byKey[k] = i
	}
	for i, r := range s.slotRecs {
		k := slotKey{quarterKey{r.Year, r.Quarter, r.AreaCode}, r.Timeslot}
		if _, dup := s.slotsByKey[k]; dup {
			return nil, fmt.Errorf("duplicate timeslot record %s/%s/%s", r.Period(), r.AreaCode, r.Timeslot)
		}
		s.slotsByKey[k] = i
	}

	s.catalog = buildCatalog(s.quarterRecs)
	s.bounds = s.computeBounds()
	return s, nil
}

// QuarterRecords returns a copy of every quarter record in load order.
func (s *Store) QuarterRecords() []models.QuarterRecord {
	return slices.Clone(s.quarterRecs)
}

// TimeslotRecords returns a copy of every timeslot record in load order.
func (s *Store) TimeslotRecords() []models.TimeslotRecord {
	return slices.Clone(s.slotRecs)
}

func (s *Store) Catalog() models.Catalog {
	return s.catalog
}

func (s *Store) Bounds() models.InputBounds {
	return s.bounds
}

// Periods returns every period present in the quarter dataset, oldest first.
func (s *Store) Periods() []models.Period {
	return slices.Clone(s.catalog.Periods)
}

// Quarter returns the record for area in period.
func (s *Store) Quarter(area string, p models.Period) (models.QuarterRecord, error) {
	i, ok := s.byKey[quarterKey{p.Year, p.Quarter, area}]
	if !ok {
		return models.QuarterRecord{}, apperrors.EmptyResult(fmt.Sprintf("no %s data for area %s", p, area))
	}
	return s.quarterRecs[i], nil
}

// LatestQuarter returns the most recent record for area.
func (s *Store) LatestQuarter(area string) (models.QuarterRecord, error) {
	history, err := s.History(area)
	if err != nil {
		return models.QuarterRecord{}, apperrors.InvalidArea(fmt.Sprintf("unknown commercial area %q", area))
	}
	return history[len(history)-1], nil
}

// History returns every quarter record for area ordered by period.
func (s *Store) History(area string) ([]models.QuarterRecord, error) {
	df := s.quarters.
		Filter(dataframe.F{Colname: colAreaCode, Comparator: series.Eq, Comparando: area}).
		Arrange(dataframe.Sort(colYear), dataframe.Sort(colQuarter))
	if df.Err != nil {
		return nil, fmt.Errorf("filter history: %w", df.Err)
	}
	if df.Nrow() == 0 {
		return nil, apperrors.EmptyResult(fmt.Sprintf("no records for area %s", area))
	}
	return decodeQuarters(df)
}

// Timeslots returns the six timeslot records of area in period, in fixed slot order.
func (s *Store) Timeslots(area string, p models.Period) ([]models.TimeslotRecord, error) {
	out := make([]models.TimeslotRecord, 0, len(models.Timeslots))
	for _, slot := range models.Timeslots {
		i, ok := s.slotsByKey[slotKey{quarterKey{p.Year, p.Quarter, area}, slot}]
		if !ok {
			continue
		}
		out = append(out, s.slotRecs[i])
	}
	if len(out) == 0 {
		return nil, apperrors.EmptyResult(fmt.Sprintf("no %s timeslot data for area %s", p, area))
	}
	return out, nil
}

// Ranking orders every area of period by metric, largest first.
func (s *Store) Ranking(p models.Period, metric models.Metric) ([]models.RankedArea, error) {
	if !metric.Valid() {
		return nil, apperrors.Validation(fmt.Sprintf("unknown metric %q", metric))
	}

	df := s.quarters.
		Filter(dataframe.F{Colname: colYear, Comparator: series.Eq, Comparando: p.Year}).
		Filter(dataframe.F{Colname: colQuarter, Comparator: series.Eq, Comparando: p.Quarter})
	if df.Err != nil {
		return nil, fmt.Errorf("filter period: %w", df.Err)
	}
	if df.Nrow() == 0 {
		return nil, apperrors.EmptyResult(fmt.Sprintf("no records for %s", p))
	}

	df = df.Mutate(salesPerStore(df)).Arrange(dataframe.RevSort(string(metric)))
	if df.Err != nil {
		return nil, fmt.Errorf("rank by %s: %w", metric, df.Err)
	}

	recs, err := decodeQuarters(df)
	if err != nil {
		return nil, err
	}
	values := df.Col(string(metric)).Float()

	out := make([]models.RankedArea, len(recs))
	for i := range recs {
		out[i] = models.RankedArea{Record: recs[i], Value: values[i]}
	}
	return out, nil
}

func salesPerStore(df dataframe.DataFrame) series.Series {
	sales := df.Col(colSales).Float()
	stores := df.Col(colStoreCount).Float()
	out := make([]float64, len(sales))
	for i := range sales {
		if stores[i] != 0 {
			out[i] = math.Round(sales[i] / stores[i])
		}
	}
	return series.New(out, series.Float, colSalesPerStore)
}

// Stats summarises the snapshot for the admin endpoint.
func (s *Store) Stats() map[string]any {
	areas := 0
	for _, z := range s.catalog.Zones {
		areas += len(z.Areas)
	}
	return map[string]any{
		"quarter_records":  len(s.quarterRecs),
		"timeslot_records": len(s.slotRecs),
		"zones":            len(s.catalog.Zones),
		"areas":            areas,
		"periods":          len(s.catalog.Periods),
		"loaded_at":        s.loadedAt,
	}
}

func buildCatalog(recs []models.QuarterRecord) models.Catalog {
	var zones []models.Zone
	zoneIdx := make(map[string]int)
	seenArea := make(map[string]bool)
	seenPeriod := make(map[models.Period]bool)
	var periods []models.Period

	for _, r := range recs {
		zi, ok := zoneIdx[r.ZoneCode]
		if !ok {
			zi = len(zones)
			zoneIdx[r.ZoneCode] = zi
			zones = append(zones, models.Zone{Code: r.ZoneCode, Name: r.ZoneName})
		}
		if !seenArea[r.AreaCode] {
			seenArea[r.AreaCode] = true
			zones[zi].Areas = append(zones[zi].Areas, models.Area{
				Code:     r.AreaCode,
				Name:     r.AreaName,
				ZoneCode: r.ZoneCode,
				TypeCode: r.AreaTypeCode,
			})
		}
		if p := r.Period(); !seenPeriod[p] {
			seenPeriod[p] = true
			periods = append(periods, p)
		}
	}

	slices.SortFunc(periods, func(a, b models.Period) int {
		switch {
		case a.Before(b):
			return -1
		case b.Before(a):
			return 1
		default:
			return 0
		}
	})
	return models.Catalog{Zones: zones, Periods: periods}
}

func (s *Store) computeBounds() models.InputBounds {
	col := func(get func(models.QuarterRecord) float64) models.Range {
		vals := make([]float64, len(s.quarterRecs))
		for i, r := range s.quarterRecs {
			vals[i] = get(r)
		}
		return roundedRange(vals)
	}

	slotFloating := make([]float64, len(s.slotRecs))
	for i, r := range s.slotRecs {
		slotFloating[i] = r.FloatingPopulation
	}

	return models.InputBounds{
		FloatingPopulation:  roundedRange(slotFloating),
		WorkplacePopulation: col(func(r models.QuarterRecord) float64 { return r.WorkplacePopulation }),
		ResidentPopulation:  col(func(r models.QuarterRecord) float64 { return r.ResidentPopulation }),
		HouseholdCount:      col(func(r models.QuarterRecord) float64 { return r.HouseholdCount }),
		FacilityCount:       col(func(r models.QuarterRecord) float64 { return r.FacilityCount }),
		Income:              col(func(r models.QuarterRecord) float64 { return r.Income }),
		Spending:            col(func(r models.QuarterRecord) float64 { return r.Spending }),
		StoreCount:          col(func(r models.QuarterRecord) float64 { return r.StoreCount }),
		OpenedStoreCount:    col(func(r models.QuarterRecord) float64 { return r.OpenedStoreCount }),
	}
}

func roundedRange(vals []float64) models.Range {
	if len(vals) == 0 {
		return models.Range{}
	}
	return models.Range{Min: math.Round(floats.Min(vals)), Max: math.Round(floats.Max(vals))}
}
