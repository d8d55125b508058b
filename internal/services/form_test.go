package services_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"district-dashboard/internal/models"
	"district-dashboard/internal/services"
	"district-dashboard/internal/testutil"
)

func TestFormSignals_RoundTrip(t *testing.T) {
	sel := testutil.Selection(testutil.AreaGangnam)
	in := testutil.Input(50)

	gotSel, gotIn := services.ParseFormSignals(services.FormSignals(sel, in))
	if gotSel != sel {
		t.Errorf("selection = %+v, want %+v", gotSel, sel)
	}
	if diff := cmp.Diff(in, gotIn); diff != "" {
		t.Errorf("input mismatch (-want +got):\n%s", diff)
	}
}

func TestParseFormSignals_Partial(t *testing.T) {
	m := map[string]any{
		services.KeyArea:    "3110001",
		services.KeyYear:    "2024",
		services.KeyQuarter: 2.0,
		services.KeyStores:  "12.5",
		services.KeyIncome:  "abc",
		"floating0":         100.0,
	}
	sel, in := services.ParseFormSignals(m)

	if sel != (models.Selection{AreaCode: "3110001", Year: 2024, Quarter: 2}) {
		t.Errorf("selection = %+v", sel)
	}
	if in.StoreCount == nil || *in.StoreCount != 12.5 {
		t.Errorf("store count = %v", in.StoreCount)
	}
	if in.Income != nil {
		t.Error("unparsable income should be absent")
	}
	if in.FloatingPopulation != nil {
		t.Error("incomplete floating population should be absent")
	}
}

func TestPredictView_ScalarFields(t *testing.T) {
	d := newDashboard(t)
	view, err := d.PredictForm(t.Context(), models.Selection{AreaCode: testutil.AreaYeoksam}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if view.Selection.Year != 2023 || view.Selection.Quarter != 4 {
		t.Errorf("default forecast period = %d/%d, want 2023/4", view.Selection.Year, view.Selection.Quarter)
	}

	fields := view.ScalarFields()
	if len(fields) != 8 {
		t.Fatalf("expected 8 scalar fields, got %d", len(fields))
	}
	stores := fields[6]
	if stores.Key != services.KeyStores || stores.Value != 13 || stores.Bounds != (models.Range{Min: 11, Max: 14}) {
		t.Errorf("store field = %+v", stores)
	}
}
