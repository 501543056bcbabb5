package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

//go:embed templates/*.html
var bundledTemplates embed.FS

// Templates loads menu templates, preferring a custom-template directory
// when one is configured and falling back to the bundled defaults.
type Templates struct {
	customDir string // empty disables custom templates
	log       *zap.SugaredLogger
}

func NewTemplates(customDir string, log *zap.SugaredLogger) *Templates {
	return &Templates{customDir: customDir, log: log}
}

// Source returns the raw template text for name.
func (t *Templates) Source(name string) (string, error) {
	if t.customDir != "" {
		path := filepath.Join(t.customDir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			raw, err := os.ReadFile(path)
			if err == nil {
				return string(raw), nil
			}
			t.log.Warnw("custom template unreadable, falling back to bundled",
				"path", path, "error", err)
		}
	}

	raw, err := bundledTemplates.ReadFile("templates/" + name)
	if err != nil {
		return "", fmt.Errorf("bundled template %s: %w", name, err)
	}
	return string(raw), nil
}

// Render executes the named template over data and returns the HTML.
func (t *Templates) Render(name string, data any) (string, error) {
	src, err := t.Source(name)
	if err != nil {
		return "", err
	}
	// Icons and banners are embedded data: URIs, which the auto-escaper
	// rejects by default; safeURL marks those fields as trusted.
	funcs := template.FuncMap{
		"safeURL": func(s string) template.URL { return template.URL(s) },
	}
	tmpl, err := template.New(name).Funcs(funcs).Parse(src)
	if err != nil {
		return "", fmt.Errorf("parse template %s: %w", name, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("execute template %s: %w", name, err)
	}
	return buf.String(), nil
}
