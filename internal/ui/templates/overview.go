package templates

import (
	"github.com/a-h/templ"

	"district-dashboard/internal/services"
)

const overviewHTML = `
{{define "overview"}}<section id="overview">
<h2>{{.Period.Label}} 상권 현황</h2>
<div class="metrics">
{{range .Metrics}}<button{{if eq . $.Metric}} class="active"{{end}} data-on-click="$metric = '{{.}}'; @get('/sse/overview')">{{.Label}}</button>{{end}}
</div>
<div class="map" data-points="{{json .Points}}"></div>
<table>
<thead><tr><th>순위</th><th>상권</th><th>행정동</th><th>{{.Metric.Label}}</th></tr></thead>
<tbody>
{{range $i, $r := .Ranking}}<tr>
<td>{{inc $i}}</td>
<td><a href="#" data-on-click__prevent="$zone = '{{$r.Record.ZoneCode}}'; $area = '{{$r.Record.AreaCode}}'; @get('/sse/drilldown')">{{$r.Record.AreaName}}</a></td>
<td>{{$r.Record.ZoneName}}</td>
<td class="num">{{metric $.Metric $r.Value}}</td>
</tr>{{end}}
</tbody>
</table>
</section>{{end}}
`

// Overview renders the ranking of every area for the reference period. The
// map markers ride along as a data attribute for the client-side map.
func Overview(v services.OverviewView) templ.Component {
	return fragment("overview", v)
}
