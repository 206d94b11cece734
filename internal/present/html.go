package present

import (
	"context"
	"html/template"
	"io"

	"github.com/a-h/templ"
)

// PageData is the input of the search page template.
type PageData struct {
	Title string
	View  View
}

var pageTmpl = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>{{.Title}}</title>
<style>
  body { font-family: system-ui, sans-serif; margin: 2rem auto; max-width: 960px; color: #1f2937; }
  form { display: flex; gap: .5rem; margin-bottom: 1rem; }
  input[type=search] { flex: 1; padding: .5rem; font-size: 1rem; }
  button { padding: .5rem 1rem; font-size: 1rem; }
  table { border-collapse: collapse; width: 100%; }
  th, td { border: 1px solid #d1d5db; padding: .4rem .6rem; text-align: left; }
  th { background: #f3f4f6; }
  .placeholder { color: #6b7280; }
  .error { color: #b91c1c; }
  #total-hours-container { margin-top: 1rem; }
  #notice { display: none; background: #fef3c7; padding: .5rem; margin-bottom: 1rem; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<div id="notice">The data source was updated. Search again to see the latest rows.</div>
<form method="get" action="/">
  <input type="search" id="searchInput" name="q" value="{{.View.Query}}" placeholder="Employee code or name" autofocus>
  <button type="submit" id="searchButton">Search</button>
</form>
<div id="data-table-container">
{{- with .View}}
{{- if eq .Status "results"}}
<table>
<thead><tr>{{range .Table.Headers}}<th>{{.}}</th>{{end}}</tr></thead>
<tbody>
{{- range .Table.Rows}}
<tr>{{range .}}<td>{{.}}</td>{{end}}</tr>
{{- end}}
</tbody>
</table>
{{- else if eq .Status "load_failed"}}
<p class="error">{{.Message}}</p>
{{- else if or (eq .Status "ready") (eq .Status "empty_dataset")}}
<p class="placeholder">{{.Message}}</p>
{{- else}}
<p>{{.Message}}</p>
{{- end}}
{{- end}}
</div>
<div id="total-hours-container">
{{- if eq .View.Status "results"}}{{.View.TotalLabel}}: <strong>{{.View.TotalText}}</strong>{{end -}}
</div>
<script>
  if (window.EventSource) {
    const es = new EventSource("/api/events");
    es.addEventListener("dataset.reloaded", () => {
      document.getElementById("notice").style.display = "block";
    });
  }
</script>
</body>
</html>
`))

// Page renders the full search page for v.
func Page(title string, v View) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		return pageTmpl.Execute(w, PageData{Title: title, View: v})
	})
}
