package models

import "time"

// Selection is the explicit request context for every page and pipeline call.
// It is passed by value and never stored globally.
type Selection struct {
	ZoneCode string `json:"zone_code"`
	AreaCode string `json:"area_code"`
	Year     int    `json:"year"`
	Quarter  int    `json:"quarter"`
}

func (s Selection) Period() Period {
	return Period{Year: s.Year, Quarter: s.Quarter}
}

// UserInput is the transient set of user-adjusted values for one prediction.
// Pointer fields distinguish "absent" from zero.
type UserInput struct {
	// FloatingPopulation holds one value per timeslot, in Timeslots order.
	FloatingPopulation []float64 `json:"floating_population"`

	WorkplacePopulation *float64 `json:"workplace_population"`
	// WorkplaceRatios are percentages per age band, entered independently.
	WorkplaceRatios []float64 `json:"workplace_ratios"`

	ResidentPopulation *float64  `json:"resident_population"`
	ResidentRatios     []float64 `json:"resident_ratios"`

	HouseholdCount   *float64 `json:"household_count"`
	FacilityCount    *float64 `json:"facility_count"`
	Income           *float64 `json:"income"`
	Spending         *float64 `json:"spending"`
	StoreCount       *float64 `json:"store_count"`
	OpenedStoreCount *float64 `json:"opened_store_count"`
}

// PredictionRequest pairs a selection with the inputs submitted for it.
type PredictionRequest struct {
	Selection Selection `json:"selection"`
	Input     UserInput `json:"input"`
}

type SlotEstimate struct {
	Timeslot Timeslot `json:"timeslot"`
	// Raw is the model output on the transformed scale.
	Raw   float64 `json:"raw"`
	Sales float64 `json:"sales"`
}

// Estimate is the pipeline output: per-timeslot sales in currency units and their sum.
type Estimate struct {
	Selection    Selection      `json:"selection"`
	Slots        []SlotEstimate `json:"slots"`
	Total        float64        `json:"total"`
	ModelVersion string         `json:"model_version"`
	GeneratedAt  time.Time      `json:"generated_at"`
}

// Float returns a pointer to v, for building UserInput literals.
func Float(v float64) *float64 {
	return &v
}
