package templates

import (
	"fmt"

	"github.com/a-h/templ"

	"district-dashboard/internal/services"
)

// View picks the component for a rendered page.
func View(v services.View) (templ.Component, error) {
	switch v := v.(type) {
	case services.OverviewView:
		return Overview(v), nil
	case services.DrilldownView:
		return Drilldown(v), nil
	case services.PredictView:
		return PredictForm(v), nil
	default:
		return nil, fmt.Errorf("no component for %T", v)
	}
}

// ID is the fragment element a view replaces.
func ID(v services.View) string {
	switch v.(type) {
	case services.OverviewView:
		return IDOverview
	case services.DrilldownView:
		return IDDrilldown
	default:
		return IDPredict
	}
}
