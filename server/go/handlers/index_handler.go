/*
	Copyright 2025 Google Inc.
	Licensed under the Apache License, Version 2.0 (the "License");
	you may not use this file except in compliance with the License.
	You may obtain a copy of the License at
		https://www.apache.org/licenses/LICENSE-2.0
	Unless required by applicable law or agreed to in writing, software
	distributed under the License is distributed on an "AS IS" BASIS,
	WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
	See the License for the specific language governing permissions and
	limitations under the License.
*/

package handlers

import (
	"net/http"

	"github.com/google/safehtml/template"
)

const indexTemplate = `<!DOCTYPE html>
<html>
<head><title>{{.Title}}</title></head>
<body>
<h1>{{.Title}}</h1>
<p>Scene queries are served at <code>/GetData</code>.  Supported queries:</p>
<ul>
{{range .Queries}}<li><code>{{.}}</code></li>
{{end}}</ul>
{{if .ChartURL}}<p><a href="{{.ChartURL}}">Rendered chart</a></p>{{end}}
</body>
</html>
`

var indexTmpl = template.Must(template.New("index").Parse(indexTemplate))

// IndexPage describes the landing page listing the served queries.
type IndexPage struct {
	Title    string
	Queries  []string
	ChartURL string
}

type indexHandler struct {
	page IndexPage
}

// NewIndexHandler returns a Handler serving the provided IndexPage at '/'.
func NewIndexHandler(page IndexPage) Handler {
	return &indexHandler{page: page}
}

// HandlersByPath returns a mapping of HTTP request path to HTTP handler for
// this Handler.
func (ih *indexHandler) HandlersByPath() map[string]func(http.ResponseWriter, *http.Request) {
	return map[string]func(http.ResponseWriter, *http.Request){
		"/": ih.serveIndex,
	}
}

func (ih *indexHandler) serveIndex(w http.ResponseWriter, req *http.Request) {
	if req.URL.Path != "/" {
		http.NotFound(w, req)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTmpl.Execute(w, ih.page); err != nil {
		http.Error(w, "Failed to render index: "+err.Error(), http.StatusInternalServerError)
	}
}
