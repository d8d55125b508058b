package templates_test

import (
	"context"
	"strings"
	"testing"

	apperrors "district-dashboard/internal/errors"
	"district-dashboard/internal/models"
	"district-dashboard/internal/services"
	"district-dashboard/internal/testutil"
	"district-dashboard/internal/ui/templates"
)

func newDashboard(t *testing.T) *services.Dashboard {
	t.Helper()
	store := testutil.Store(t)
	return services.NewDashboard(store, testutil.Predictor(t, store), testutil.ReferencePeriod, testutil.Logger())
}

func render(t *testing.T, v services.View) string {
	t.Helper()
	c, err := templates.View(v)
	if err != nil {
		t.Fatalf("View() error = %v", err)
	}
	out, err := templates.String(context.Background(), c)
	if err != nil {
		t.Fatalf("render error = %v", err)
	}
	return out
}

func assertContains(t *testing.T, out string, want ...string) {
	t.Helper()
	for _, w := range want {
		if !strings.Contains(out, w) {
			t.Errorf("output missing %q", w)
		}
	}
}

func TestDashboardShell(t *testing.T) {
	d := newDashboard(t)
	out, err := templates.String(context.Background(), templates.Dashboard(d.Catalog(), d.Reference()))
	if err != nil {
		t.Fatal(err)
	}
	assertContains(t, out,
		"<!DOCTYPE html>",
		"2023년3분기 기준",
		`value="`+testutil.ZoneYeoksam+`"`,
		"강남역",
		`id="overview"`,
		`data-on-load="@get('/sse/overview')"`,
	)
}

func TestOverview(t *testing.T) {
	v, err := newDashboard(t).Overview(models.MetricSalesPerStore)
	if err != nil {
		t.Fatal(err)
	}
	out := render(t, v)
	assertContains(t, out, `id="overview"`, `class="active"`, "data-points=", "강남역", "원</td>")
	if strings.Index(out, "강남역") > strings.Index(out, "논현역") {
		t.Error("ranking should list 강남역 before 논현역")
	}
}

func TestDrilldown(t *testing.T) {
	v, err := newDashboard(t).Drilldown(models.Selection{AreaCode: testutil.AreaGangnam})
	if err != nil {
		t.Fatal(err)
	}
	out := render(t, v)
	assertContains(t, out,
		`id="drilldown"`,
		"역삼1동 강남역",
		"점포당 매출액",
		"+285,714",
		"/charts/areas/3110001/trend.png",
		"/charts/areas/3110001/timeslots.png",
		"/charts/areas/3110001/floating.png",
		"/charts/areas/3110001/stores.png",
		"60대 이상",
		"폐업 점포 수",
		"총 상주인구는 24,000명, 총 세대수는 10,000세대입니다.",
		"성별 상주인구",
		"50.0%",
	)
}

func TestPredictForm(t *testing.T) {
	d := newDashboard(t)
	v, err := d.PredictForm(context.Background(), models.Selection{AreaCode: testutil.AreaGangnam}, nil)
	if err != nil {
		t.Fatal(err)
	}
	out := render(t, v)
	assertContains(t, out,
		`id="predict"`,
		`data-bind-floating0=""`,
		`data-bind-rratio5=""`,
		`data-bind-stores=""`,
		`min="11" max="14"`,
		`id="predict-result"`,
		`@post('/sse/predict')`,
	)

	in := testutil.Input(50)
	v, err = d.PredictForm(context.Background(), testutil.Selection(testutil.AreaGangnam), &in)
	if err != nil {
		t.Fatal(err)
	}
	assertContains(t, render(t, v), "강남역 2024년 1분기 예상 매출은", "합계")
}

func TestPredictResult(t *testing.T) {
	est := &models.Estimate{
		Selection: testutil.Selection(testutil.AreaGangnam),
		Slots:     []models.SlotEstimate{{Timeslot: models.Slot00To06, Sales: 1234567}},
		Total:     1234567,
	}
	out, err := templates.String(context.Background(), templates.PredictResult("문장", est, "data:image/png;base64,AAAA", "/api/predict/export?area=1"))
	if err != nil {
		t.Fatal(err)
	}
	assertContains(t, out, "문장", "1,234,567원", `src="data:image/png;base64,AAAA"`, `href="/api/predict/export?area=1"`)
}

func TestMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"empty result", apperrors.EmptyResult("none"), "데이터가 없습니다"},
		{"missing input", apperrors.MissingInput("income", "spending"), "income, spending"},
		{"internal", apperrors.Internal("secret"), "처리 중 오류가 발생했습니다."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := templates.String(context.Background(), templates.Message(templates.IDPredictResult, tt.err))
			if err != nil {
				t.Fatal(err)
			}
			assertContains(t, out, `id="predict-result"`, tt.want)
			if strings.Contains(out, "secret") {
				t.Error("internal error message leaked")
			}
		})
	}
}

func TestEscaping(t *testing.T) {
	v := services.DrilldownView{
		Area: models.Area{Code: "1", Name: "<script>"},
		Zone: models.Zone{Name: "z"},
	}
	out := render(t, v)
	if strings.Contains(out, "<script>") {
		t.Error("area name must be escaped")
	}
}

func TestEscapingInScriptAttributes(t *testing.T) {
	v := services.OverviewView{
		Metric:  models.MetricStoreCount,
		Metrics: []models.Metric{models.MetricStoreCount},
		Ranking: []models.RankedArea{{Record: models.QuarterRecord{AreaCode: "1'; alert(1); '", AreaName: "a"}}},
	}
	out := render(t, v)
	if strings.Contains(out, "'; alert(1)") {
		t.Error("area code must be escaped inside data-on-click")
	}
	assertContains(t, out, `data-on-click="$metric = 'store_count'; @get('/sse/overview')"`)
}

func TestID(t *testing.T) {
	if templates.ID(services.OverviewView{}) != templates.IDOverview ||
		templates.ID(services.DrilldownView{}) != templates.IDDrilldown ||
		templates.ID(services.PredictView{}) != templates.IDPredict {
		t.Error("ID() mismatch")
	}
}
