package services

import (
	"district-dashboard/internal/models"
)

// Page is a request for one of the dashboard screens. The concrete types are
// OverviewPage, DrilldownPage and PredictPage.
type Page interface {
	page()
}

type OverviewPage struct {
	Metric models.Metric
}

// DrilldownPage shows one area. A zero period in Selection means the reference period.
type DrilldownPage struct {
	Selection models.Selection
}

// PredictPage shows the prediction form for an area. When Input is nil only the
// prefilled form is rendered; otherwise the model is run on Input.
type PredictPage struct {
	Selection models.Selection
	Input     *models.UserInput
}

func (OverviewPage) page()  {}
func (DrilldownPage) page() {}
func (PredictPage) page()   {}

// View is the rendered data of a Page: OverviewView, DrilldownView or PredictView.
type View interface {
	view()
}

type MapPoint struct {
	AreaCode           string  `json:"area_code"`
	AreaName           string  `json:"area_name"`
	Latitude           float64 `json:"latitude"`
	Longitude          float64 `json:"longitude"`
	FloatingPopulation float64 `json:"floating_population"`
	ResidentPopulation float64 `json:"resident_population"`
	SalesPerStore      float64 `json:"sales_per_store"`
	StoreCount         float64 `json:"store_count"`
}

type OverviewView struct {
	Period  models.Period       `json:"period"`
	Metric  models.Metric       `json:"metric"`
	Metrics []models.Metric     `json:"metrics"`
	Ranking []models.RankedArea `json:"ranking"`
	Points  []MapPoint          `json:"points"`
}

// Headline is a reference-period value with its change from the previous quarter.
type Headline struct {
	Label    string  `json:"label"`
	Unit     string  `json:"unit"`
	Value    float64 `json:"value"`
	Previous float64 `json:"previous"`
	// HasPrevious is false when the area has no record for the previous quarter.
	HasPrevious bool `json:"has_previous"`
}

func (h Headline) Delta() float64 {
	if !h.HasPrevious {
		return 0
	}
	return h.Value - h.Previous
}

type TrendPoint struct {
	Period             models.Period `json:"period"`
	Sales              float64       `json:"sales"`
	SalesPerStore      float64       `json:"sales_per_store"`
	StoreCount         float64       `json:"store_count"`
	OpenedStoreCount   float64       `json:"opened_store_count"`
	ClosedStoreCount   float64       `json:"closed_store_count"`
	FloatingPopulation float64       `json:"floating_population"`
}

type SlotPoint struct {
	Timeslot           models.Timeslot `json:"timeslot"`
	Sales              float64         `json:"sales"`
	SalesPerStore      float64         `json:"sales_per_store"`
	FloatingPopulation float64         `json:"floating_population"`
}

// Breakdown is one labelled bucket of a weekday, gender or age split.
type Breakdown struct {
	Label              string  `json:"label"`
	SalesPerStore      float64 `json:"sales_per_store"`
	FloatingPopulation float64 `json:"floating_population"`
}

// Share is one bucket of the resident population. Ratio is its fraction of the total.
type Share struct {
	Label      string  `json:"label"`
	Population float64 `json:"population"`
	Ratio      float64 `json:"ratio"`
}

type DrilldownView struct {
	Selection models.Selection     `json:"selection"`
	Area      models.Area          `json:"area"`
	Zone      models.Zone          `json:"zone"`
	Record    models.QuarterRecord `json:"record"`
	Headlines []Headline           `json:"headlines"`
	Trend     []TrendPoint         `json:"trend"`
	Timeslots []SlotPoint          `json:"timeslots"`
	Weekdays  []Breakdown          `json:"weekdays"`
	Genders   []Breakdown          `json:"genders"`
	Ages      []Breakdown          `json:"ages"`
	// Resident population split by gender and by age band.
	Residents       float64 `json:"residents"`
	ResidentGenders []Share `json:"resident_genders"`
	ResidentAges    []Share `json:"resident_ages"`
	Households      float64 `json:"households"`
	Opened          float64 `json:"opened"`
	Closed          float64 `json:"closed"`
}

type PredictView struct {
	Selection models.Selection   `json:"selection"`
	Area      models.Area        `json:"area"`
	Zone      models.Zone        `json:"zone"`
	Defaults  models.UserInput   `json:"defaults"`
	Bounds    models.InputBounds `json:"bounds"`
	Estimate  *models.Estimate   `json:"estimate,omitempty"`
	Sentence  string             `json:"sentence,omitempty"`
}

func (OverviewView) view()  {}
func (DrilldownView) view() {}
func (PredictView) view()   {}
