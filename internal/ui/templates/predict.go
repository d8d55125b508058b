package templates

import (
	"html/template"

	"github.com/a-h/templ"

	"district-dashboard/internal/models"
	"district-dashboard/internal/services"
)

const predictHTML = `
{{define "predict"}}<section id="predict">
<h2>{{.Area.Name}} 매출 예측</h2>
<form data-on-submit__prevent="@post('/sse/predict')">
{{range .Fieldsets}}<fieldset>
<legend>{{.Legend}}</legend>
{{range .Fields}}<label>{{.Label}}<input type="number" data-bind-{{.Key}}="" value="{{float .Value}}" min="{{float .Bounds.Min}}" max="{{float .Bounds.Max}}" step="{{float .Step}}"></label>
{{end}}</fieldset>
{{end}}<button type="submit">예측하기</button>
</form>
{{with .Result}}{{template "predict-result" .}}{{else}}<div id="predict-result"></div>{{end}}
</section>{{end}}

{{define "predict-result"}}<div id="predict-result">
<p class="sentence">{{.Sentence}}</p>
<table>
<thead><tr><th>시간대</th><th>예상 매출</th></tr></thead>
<tbody>
{{range .Estimate.Slots}}<tr><td>{{.Timeslot}}</td><td class="num">{{won .Sales}}</td></tr>{{end}}
</tbody>
<tfoot><tr><th>합계</th><td class="num">{{won .Estimate.Total}}</td></tr></tfoot>
</table>
{{with .Chart}}<img alt="estimate" src="{{.}}">{{end}}
{{with .ExportURL}}<a download href="{{.}}">엑셀로 내보내기</a>{{end}}
</div>{{end}}
`

var ageLabels = [6]string{"10대", "20대", "30대", "40대", "50대", "60대 이상"}

var ratioBounds = models.Range{Min: 0, Max: 100}

type formField struct {
	Label  string
	Key    string
	Value  float64
	Bounds models.Range
	Step   float64
}

type fieldset struct {
	Legend string
	Fields []formField
}

type predictForm struct {
	Area      models.Area
	Fieldsets []fieldset
	Result    *predictResult
}

type predictResult struct {
	Sentence  string
	Estimate  *models.Estimate
	Chart     template.URL
	ExportURL string
}

// PredictForm renders the prediction inputs bound to datastar signals. The
// signals themselves are sent alongside, so the form carries only bindings.
func PredictForm(v services.PredictView) templ.Component {
	form := predictForm{
		Area:      v.Area,
		Fieldsets: fieldsets(v),
	}
	if v.Estimate != nil {
		form.Result = &predictResult{Sentence: v.Sentence, Estimate: v.Estimate}
	}
	return fragment("predict", form)
}

func fieldsets(v services.PredictView) []fieldset {
	period := fieldset{Legend: "예측 시점", Fields: []formField{
		{Label: "연도", Key: services.KeyYear, Value: float64(v.Selection.Year), Bounds: models.Range{Min: 2000, Max: 2100}, Step: 1},
		{Label: "분기", Key: services.KeyQuarter, Value: float64(v.Selection.Quarter), Bounds: models.Range{Min: 1, Max: 4}, Step: 1},
	}}

	floating := fieldset{Legend: "시간대별 유동인구"}
	for i, slot := range models.Timeslots {
		floating.Fields = append(floating.Fields, formField{
			Label: string(slot), Key: services.FloatingKey(i), Value: at(v.Defaults.FloatingPopulation, i),
			Bounds: v.Bounds.FloatingPopulation, Step: 1,
		})
	}

	workplace := fieldset{Legend: "직장인구 연령대 비율(%)"}
	resident := fieldset{Legend: "상주인구 연령대 비율(%)"}
	for i, label := range ageLabels {
		workplace.Fields = append(workplace.Fields, formField{
			Label: label, Key: services.WorkplaceRatioKey(i), Value: at(v.Defaults.WorkplaceRatios, i),
			Bounds: ratioBounds, Step: 0.1,
		})
		resident.Fields = append(resident.Fields, formField{
			Label: label, Key: services.ResidentRatioKey(i), Value: at(v.Defaults.ResidentRatios, i),
			Bounds: ratioBounds, Step: 0.1,
		})
	}

	scalars := fieldset{Legend: "상권 지표"}
	for _, f := range v.ScalarFields() {
		scalars.Fields = append(scalars.Fields, formField{Label: f.Label, Key: f.Key, Value: f.Value, Bounds: f.Bounds, Step: 1})
	}

	return []fieldset{period, floating, workplace, resident, scalars}
}

func at(vals []float64, i int) float64 {
	if i < len(vals) {
		return vals[i]
	}
	return 0
}

// PredictResult renders the estimate. chart is an optional data URI of the
// per-timeslot bar chart and exportURL an optional spreadsheet download link.
func PredictResult(sentence string, est *models.Estimate, chart, exportURL string) templ.Component {
	return fragment("predict-result", predictResult{
		Sentence: sentence,
		Estimate: est,
		// The chart is a PNG data URI encoded by the server.
		Chart:     template.URL(chart),
		ExportURL: exportURL,
	})
}
