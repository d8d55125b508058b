package models

// Area is a commercial area as listed in selection controls.
type Area struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	ZoneCode string `json:"zone_code"`
	TypeCode string `json:"type_code"`
}

// Zone is an administrative zone and the commercial areas inside it.
type Zone struct {
	Code  string `json:"code"`
	Name  string `json:"name"`
	Areas []Area `json:"areas"`
}

type Catalog struct {
	Zones   []Zone   `json:"zones"`
	Periods []Period `json:"periods"`
}

// FindArea returns the area with code and its zone.
func (c Catalog) FindArea(code string) (Area, Zone, bool) {
	for _, z := range c.Zones {
		for _, a := range z.Areas {
			if a.Code == code {
				return a, z, true
			}
		}
	}
	return Area{}, Zone{}, false
}

// Metric selects the column the overview ranking is ordered by.
type Metric string

const (
	MetricFloatingPopulation Metric = "floating_population"
	MetricResidentPopulation Metric = "resident_population"
	MetricSalesPerStore      Metric = "sales_per_store"
	MetricStoreCount         Metric = "store_count"
)

var Metrics = []Metric{MetricFloatingPopulation, MetricResidentPopulation, MetricSalesPerStore, MetricStoreCount}

func (m Metric) Valid() bool {
	for _, v := range Metrics {
		if v == m {
			return true
		}
	}
	return false
}

func (m Metric) Label() string {
	switch m {
	case MetricFloatingPopulation:
		return "유동인구"
	case MetricResidentPopulation:
		return "상주인구"
	case MetricSalesPerStore:
		return "매출"
	case MetricStoreCount:
		return "점포수"
	default:
		return string(m)
	}
}

// RankedArea is one overview row: the reference-period record and the metric value it was ranked by.
type RankedArea struct {
	Record QuarterRecord `json:"record"`
	Value  float64       `json:"value"`
}
