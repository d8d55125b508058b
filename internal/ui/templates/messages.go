package templates

import (
	"github.com/a-h/templ"

	apperrors "district-dashboard/internal/errors"
)

const messagesHTML = `
{{define "no-data"}}<div id="{{.}}" class="empty"><p>데이터가 없습니다. 다른 상권을 선택해주세요.</p></div>{{end}}

{{define "message"}}<div id="{{.ID}}" class="error" role="alert">
<p>{{.Text}}</p>
{{with .Details}}<p class="details">{{.}}</p>{{end}}
</div>{{end}}
`

// NoData replaces the fragment id with the empty-result prompt.
func NoData(id string) templ.Component {
	return fragment("no-data", id)
}

// Message replaces the fragment id with err. EMPTY_RESULT gets the NoData
// prompt; other application errors show their message and details.
func Message(id string, err error) templ.Component {
	if apperrors.HasCode(err, apperrors.CodeEmptyResult) {
		return NoData(id)
	}
	data := struct{ ID, Text, Details string }{ID: id, Text: "처리 중 오류가 발생했습니다."}
	if appErr, ok := apperrors.As(err); ok && appErr.StatusCode < 500 {
		data.Text, data.Details = appErr.Message, appErr.Details
	}
	return fragment("message", data)
}
