package render

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestBundledTemplatesRender(t *testing.T) {
	tm := NewTemplates("", zap.NewNop().Sugar())

	for _, name := range []string{"main_menu.html", "expanded_menu.html", "sub_menu.html"} {
		src, err := tm.Source(name)
		require.NoError(t, err, name)
		assert.NotEmpty(t, src, name)
	}

	_, err := tm.Source("missing.html")
	assert.Error(t, err)
}

func TestCustomTemplateOverridesBundled(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, "main_menu.html"), []byte("<p>{{.Title}}</p>"), 0o644))
	tm := NewTemplates(dir, zap.NewNop().Sugar())

	html, err := tm.Render("main_menu.html", struct{ Title string }{"Custom"})
	require.NoError(t, err)
	assert.Equal(t, "<p>Custom</p>", html)

	// Names without a custom file still come from the bundle.
	src, err := tm.Source("sub_menu.html")
	require.NoError(t, err)
	assert.NotEmpty(t, src)
}

func TestRenderEscapesByDefault(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, "t.html"), []byte("<p>{{.V}}</p>"), 0o644))
	tm := NewTemplates(dir, zap.NewNop().Sugar())

	html, err := tm.Render("t.html", struct{ V string }{"<script>"})
	require.NoError(t, err)
	assert.Equal(t, "<p>&lt;script&gt;</p>", html)
}

func TestSafeURLAllowsDataURIs(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, "t.html"), []byte(`<img src="{{.Icon | safeURL}}">`), 0o644))
	tm := NewTemplates(dir, zap.NewNop().Sugar())

	html, err := tm.Render("t.html", struct{ Icon string }{"data:image/png;base64,AAAA"})
	require.NoError(t, err)
	assert.Contains(t, html, `src="data:image/png;base64,AAAA"`)
	assert.NotContains(t, html, "ZgotmplZ")
}
