package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"district-dashboard/internal/models"
)

const datastarScript = "https://cdn.jsdelivr.net/gh/starfederation/datastar@1.0.0-RC.5/bundles/datastar.js"

const layoutHTML = `
{{define "layout"}}<!DOCTYPE html>
<html lang="ko">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<script type="module" src="` + datastarScript + `"></script>
</head>
<body>{{.Body}}</body>
</html>{{end}}

{{define "dashboard"}}<header>
<h1>상권 분석 대시보드</h1>
<p class="caption">{{.Reference.Label}} 기준</p>
</header>
<nav data-signals="{{json .Signals}}">
<label>행정동 <select data-bind-zone><option value="">전체</option>
{{range .Catalog.Zones}}<option value="{{.Code}}">{{.Name}}</option>{{end}}
</select></label>
<label>상권 <select data-bind-area data-on-change="@get('/sse/drilldown')"><option value="">선택</option>
{{range $z := .Catalog.Zones}}{{range .Areas}}<option value="{{.Code}}" data-show="$zone == '' || $zone == '{{$z.Code}}'">{{.Name}}</option>{{end}}{{end}}
</select></label>
</nav>
<main>
<section id="overview" data-on-load="@get('/sse/overview')">불러오는 중...</section>
<section id="drilldown"><p>상권을 선택해주세요.</p></section>
<section id="predict"></section>
</main>{{end}}
`

// Layout wraps body in the HTML document with the datastar client.
func Layout(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		html, err := templ.ToGoHTML(ctx, body)
		if err != nil {
			return err
		}
		return fragment("layout", map[string]any{"Title": title, "Body": html}).Render(ctx, w)
	})
}

// Dashboard is the page shell: area selection and the three sections, each
// filled over SSE.
func Dashboard(catalog models.Catalog, reference models.Period) templ.Component {
	body := fragment("dashboard", map[string]any{
		"Catalog":   catalog,
		"Reference": reference,
		"Signals":   map[string]any{"metric": models.MetricFloatingPopulation, "zone": "", "area": ""},
	})
	return Layout("상권 분석 대시보드", body)
}
