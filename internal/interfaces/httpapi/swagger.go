package httpapi

import (
	_ "embed"
	"html/template"
	"net/http"
)

//go:embed openapi.yaml
var openAPISpec []byte

const swaggerUIVersion = "5.17.14"

var docsPage = template.Must(template.New("docs").Parse(`<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@{{.Version}}/swagger-ui.css">
</head>
<body>
<div id="docs"></div>
<script src="https://unpkg.com/swagger-ui-dist@{{.Version}}/swagger-ui-bundle.js"></script>
<script>
SwaggerUIBundle({url: {{.SpecURL}}, dom_id: "#docs", docExpansion: "list", tryItOutEnabled: false});
</script>
</body>
</html>
`))

type docsPageData struct {
	Title   string
	Version string
	SpecURL string
}

func (h *Handler) OpenAPI(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.OpenAPI")
	defer span.End()

	w.Header().Set("Content-Type", "application/yaml; charset=utf-8")
	if _, err := w.Write(openAPISpec); err != nil {
		h.logger.WarnContext(ctx, "write openapi spec failed", "error", err)
	}
}

func (h *Handler) SwaggerUI(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SwaggerUI")
	defer span.End()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err := docsPage.Execute(w, docsPageData{
		Title:   "Prediction League API",
		Version: swaggerUIVersion,
		SpecURL: "/openapi.yaml",
	})
	if err != nil {
		h.logger.WarnContext(ctx, "render docs page failed", "error", err)
	}
}
