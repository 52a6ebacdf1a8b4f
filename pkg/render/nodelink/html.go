package nodelink

import (
	"bytes"
	"fmt"
	"html/template"
)

var pageTmpl = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
  body { margin: 0; font-family: Helvetica, Arial, sans-serif; background: #fff; }
  header { padding: 12px 20px; border-bottom: 1px solid #ddd; }
  header h1 { margin: 0; font-size: 18px; }
  header p { margin: 4px 0 0; color: #666; font-size: 13px; }
  main { padding: 20px; overflow: auto; }
  main svg { max-width: 100%; height: auto; }
</style>
</head>
<body>
<header>
  <h1>{{.Title}}</h1>
  {{- if .Subtitle}}
  <p>{{.Subtitle}}</p>
  {{- end}}
</header>
<main>
{{.SVG}}
</main>
</body>
</html>
`))

// WrapHTML embeds an SVG drawing in a standalone HTML page that can be opened
// directly in a browser.
func WrapHTML(svg []byte, title, subtitle string) ([]byte, error) {
	var buf bytes.Buffer
	err := pageTmpl.Execute(&buf, struct {
		Title    string
		Subtitle string
		SVG      template.HTML
	}{title, subtitle, template.HTML(svg)})
	if err != nil {
		return nil, fmt.Errorf("wrap html: %w", err)
	}
	return buf.Bytes(), nil
}
