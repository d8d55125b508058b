package templates

import (
	"github.com/a-h/templ"

	"district-dashboard/internal/services"
)

const drilldownHTML = `
{{define "drilldown"}}<section id="drilldown">
<h2>{{.Zone.Name}} {{.Area.Name}}</h2>
<p class="caption">{{.Selection.Period.Label}}</p>
<div class="cards">
{{range .Headlines}}<div class="card">
<span class="label">{{.Label}}</span>
<strong>{{number .Value}}{{.Unit}}</strong>
{{if .HasPrevious}}<span class="delta">{{delta .Value .Previous}} ({{percent (change .Value .Previous)}})</span>{{end}}
</div>{{end}}
</div>

<h3>분기별 추이</h3>
<div class="charts">
<img alt="sales per store trend" src="{{chart .Area.Code "trend.png"}}">
<img alt="floating population trend" src="{{chart .Area.Code "floating.png"}}">
<img alt="store trend" src="{{chart .Area.Code "stores.png"}}">
</div>
<table>
<thead><tr><th>분기</th><th>점포당 매출액</th><th>유동인구</th><th>점포 수</th><th>개업</th><th>폐업</th></tr></thead>
<tbody>
{{range .Trend}}<tr>
<td>{{.Period.Label}}</td>
<td class="num">{{won .SalesPerStore}}</td>
<td class="num">{{number .FloatingPopulation}}</td>
<td class="num">{{number .StoreCount}}</td>
<td class="num">{{number .OpenedStoreCount}}</td>
<td class="num">{{number .ClosedStoreCount}}</td>
</tr>{{end}}
</tbody>
</table>

<h3>시간대별</h3>
{{if .Timeslots}}<img alt="floating population by timeslot" src="{{chart .Area.Code "timeslots.png"}}">{{end}}
<table>
<thead><tr><th>시간대</th><th>점포당 매출액</th><th>유동인구</th></tr></thead>
<tbody>
{{range .Timeslots}}<tr><td>{{.Timeslot}}</td><td class="num">{{won .SalesPerStore}}</td><td class="num">{{number .FloatingPopulation}}</td></tr>{{end}}
</tbody>
</table>

{{template "breakdown" (breakdownRows "요일별" .Weekdays)}}
{{template "breakdown" (breakdownRows "성별" .Genders)}}
{{template "breakdown" (breakdownRows "연령대별" .Ages)}}

<h3>성별 및 연령대별 상주인구</h3>
<p>총 상주인구는 {{number .Residents}}명, 총 세대수는 {{number .Households}}세대입니다.</p>
{{template "shares" (shareRows "성별 상주인구" .ResidentGenders)}}
{{template "shares" (shareRows "연령대별 상주인구" .ResidentAges)}}

<dl class="facts">
<dt>가구 수</dt><dd>{{number .Households}}</dd>
<dt>개업 점포 수</dt><dd>{{number .Opened}}</dd>
<dt>폐업 점포 수</dt><dd>{{number .Closed}}</dd>
</dl>
</section>{{end}}

{{define "breakdown"}}<h4>{{.Title}}</h4>
<table>
<thead><tr><th></th><th>점포당 매출액</th><th>유동인구</th></tr></thead>
<tbody>
{{range .Rows}}<tr><td>{{.Label}}</td><td class="num">{{won .SalesPerStore}}</td><td class="num">{{number .FloatingPopulation}}</td></tr>{{end}}
</tbody>
</table>{{end}}

{{define "shares"}}<h4>{{.Title}}</h4>
<table>
<thead><tr><th></th><th>상주인구</th><th>비율</th></tr></thead>
<tbody>
{{range .Rows}}<tr><td>{{.Label}}</td><td class="num">{{number .Population}}</td><td class="num">{{percent .Ratio}}</td></tr>{{end}}
</tbody>
</table>{{end}}
`

type breakdownTable struct {
	Title string
	Rows  []services.Breakdown
}

type shareTable struct {
	Title string
	Rows  []services.Share
}

// Drilldown renders the detail of one area: headline cards with the change
// from the previous quarter, the quarterly trends, the breakdown tables and
// the resident population.
func Drilldown(v services.DrilldownView) templ.Component {
	return fragment("drilldown", v)
}
