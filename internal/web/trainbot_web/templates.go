package trainbot_web

import (
	"bytes"
	"embed"
	"html/template"
	"io"
)

//go:embed templates/*.html
var templatesFS embed.FS

type Renderer struct {
	tmpl *template.Template
}

func NewRenderer() (*Renderer, error) {
	tmpl, err := template.New("root").ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	return &Renderer{tmpl: tmpl}, nil
}

func (renderer *Renderer) Render(writer io.Writer, name string, data any) error {
	return renderer.tmpl.ExecuteTemplate(writer, name, data)
}

// RenderString renders a fragment for an SSE patch.
func (renderer *Renderer) RenderString(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := renderer.Render(&buf, name, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
