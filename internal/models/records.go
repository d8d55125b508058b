package models

import (
	"fmt"
	"math"
)

// Timeslot is one of the six fixed daily intervals used to bucket foot traffic and sales.
type Timeslot string

const (
	Slot00To06 Timeslot = "00~06"
	Slot06To11 Timeslot = "06~11"
	Slot11To14 Timeslot = "11~14"
	Slot14To17 Timeslot = "14~17"
	Slot17To21 Timeslot = "17~21"
	Slot21To24 Timeslot = "21~24"
)

// Timeslots is the canonical slot order. Feature rows and estimates follow it.
var Timeslots = [6]Timeslot{Slot00To06, Slot06To11, Slot11To14, Slot14To17, Slot17To21, Slot21To24}

func (t Timeslot) Valid() bool {
	return t.Index() >= 0
}

func (t Timeslot) Index() int {
	for i, s := range Timeslots {
		if s == t {
			return i
		}
	}
	return -1
}

// AgeBandLabels name the six age bands in column order.
var AgeBandLabels = [6]string{"10", "20", "30", "40", "50", "60_plus"}

// WeekdayLabels name the seven weekday columns, Monday first.
var WeekdayLabels = [7]string{"mon", "tue", "wed", "thu", "fri", "sat", "sun"}

type AgeBands [6]float64

type Weekdays [7]float64

type GenderSplit struct {
	Male   float64 `json:"male"`
	Female float64 `json:"female"`
}

// Period identifies a (year, quarter) pair.
type Period struct {
	Year    int `json:"year"`
	Quarter int `json:"quarter"`
}

func (p Period) String() string {
	return fmt.Sprintf("%dQ%d", p.Year, p.Quarter)
}

// Label is the Korean display form used on charts and tables.
func (p Period) Label() string {
	return fmt.Sprintf("%d년%d분기", p.Year, p.Quarter)
}

func (p Period) Previous() Period {
	if p.Quarter <= 1 {
		return Period{Year: p.Year - 1, Quarter: 4}
	}
	return Period{Year: p.Year, Quarter: p.Quarter - 1}
}

func (p Period) Next() Period {
	if p.Quarter >= 4 {
		return Period{Year: p.Year + 1, Quarter: 1}
	}
	return Period{Year: p.Year, Quarter: p.Quarter + 1}
}

func (p Period) Before(o Period) bool {
	if p.Year != o.Year {
		return p.Year < o.Year
	}
	return p.Quarter < o.Quarter
}

// QuarterRecord is one row of the district-quarter summary table.
type QuarterRecord struct {
	Year         int     `json:"year"`
	Quarter      int     `json:"quarter"`
	AreaCode     string  `json:"area_code"`
	AreaName     string  `json:"area_name"`
	ZoneCode     string  `json:"zone_code"`
	ZoneName     string  `json:"zone_name"`
	AreaTypeCode string  `json:"area_type_code"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`

	Sales          float64     `json:"sales"`
	SalesByGender  GenderSplit `json:"sales_by_gender"`
	SalesByWeekday Weekdays    `json:"sales_by_weekday"`
	SalesByAge     AgeBands    `json:"sales_by_age"`

	StoreCount       float64 `json:"store_count"`
	OpenedStoreCount float64 `json:"opened_store_count"`
	ClosedStoreCount float64 `json:"closed_store_count"`

	FloatingPopulation float64     `json:"floating_population"`
	FloatingByGender   GenderSplit `json:"floating_by_gender"`
	FloatingByWeekday  Weekdays    `json:"floating_by_weekday"`
	FloatingByAge      AgeBands    `json:"floating_by_age"`

	ResidentPopulation float64     `json:"resident_population"`
	ResidentByGender   GenderSplit `json:"resident_by_gender"`
	ResidentByAge      AgeBands    `json:"resident_by_age"`

	WorkplacePopulation float64  `json:"workplace_population"`
	WorkplaceByAge      AgeBands `json:"workplace_by_age"`

	HouseholdCount float64 `json:"household_count"`
	Income         float64 `json:"income"`
	Spending       float64 `json:"spending"`
	FacilityCount  float64 `json:"facility_count"`
	AreaSize       float64 `json:"area_size"`
}

func (r QuarterRecord) Period() Period {
	return Period{Year: r.Year, Quarter: r.Quarter}
}

// PerStore divides v by the store count and rounds to whole won. Zero stores yields 0.
func (r QuarterRecord) PerStore(v float64) float64 {
	if r.StoreCount == 0 {
		return 0
	}
	return math.Round(v / r.StoreCount)
}

func (r QuarterRecord) SalesPerStore() float64 {
	return r.PerStore(r.Sales)
}

func (r QuarterRecord) ResidentRatios() AgeBands {
	return ratios(r.ResidentByAge, r.ResidentPopulation)
}

func (r QuarterRecord) WorkplaceRatios() AgeBands {
	return ratios(r.WorkplaceByAge, r.WorkplacePopulation)
}

func ratios(bands AgeBands, total float64) AgeBands {
	var out AgeBands
	if total == 0 {
		return out
	}
	for i, v := range bands {
		out[i] = v / total
	}
	return out
}

// TimeslotRecord is one row of the district-quarter-timeslot table.
type TimeslotRecord struct {
	Year               int      `json:"year"`
	Quarter            int      `json:"quarter"`
	AreaCode           string   `json:"area_code"`
	Timeslot           Timeslot `json:"timeslot"`
	FloatingPopulation float64  `json:"floating_population"`
	Sales              float64  `json:"sales"`
}

func (r TimeslotRecord) Period() Period {
	return Period{Year: r.Year, Quarter: r.Quarter}
}

// Range is the observed [Min, Max] of a field across the whole dataset.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// InputBounds bound every prediction input control.
type InputBounds struct {
	FloatingPopulation  Range `json:"floating_population"`
	WorkplacePopulation Range `json:"workplace_population"`
	ResidentPopulation  Range `json:"resident_population"`
	HouseholdCount      Range `json:"household_count"`
	FacilityCount       Range `json:"facility_count"`
	Income              Range `json:"income"`
	Spending            Range `json:"spending"`
	StoreCount          Range `json:"store_count"`
	OpenedStoreCount    Range `json:"opened_store_count"`
}
