package server

import (
	"html/template"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func writeTemplates(t *testing.T, pages map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"layout.html": `{{define "layout"}}<html><body>{{template "content" .}}</body></html>{{end}}`,
	}
	for name, body := range pages {
		files[name] = body
	}
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0644))
	}
	return dir
}

func TestRendererRendersPage(t *testing.T) {
	dir := writeTemplates(t, map[string]string{
		"page.html": `{{define "content"}}<h1>{{.Title}}</h1>{{end}}`,
	})

	r, err := NewRenderer(dir, logrus.New())
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	require.NoError(t, r.Render(rec, "page.html", map[string]any{"Title": "Hello"}))
	require.Contains(t, rec.Body.String(), "<h1>Hello</h1>")
}

func TestRendererUnknownPage(t *testing.T) {
	dir := writeTemplates(t, map[string]string{
		"page.html": `{{define "content"}}x{{end}}`,
	})

	r, err := NewRenderer(dir, logrus.New())
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	require.Error(t, r.Render(rec, "missing.html", nil))
}

func TestRendererEmptyDirFails(t *testing.T) {
	_, err := NewRenderer(t.TempDir(), logrus.New())
	require.Error(t, err)
}

func TestRendererReloadKeepsServing(t *testing.T) {
	dir := writeTemplates(t, map[string]string{
		"page.html": `{{define "content"}}first{{end}}`,
	})

	r, err := NewRenderer(dir, logrus.New())
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "page.html"),
		[]byte(`{{define "content"}}second{{end}}`), 0644))
	require.NoError(t, r.Load())

	rec := httptest.NewRecorder()
	require.NoError(t, r.Render(rec, "page.html", nil))
	require.Contains(t, rec.Body.String(), "second")
}

func TestSafeHTMLStripsScripts(t *testing.T) {
	safeHTML := templateFuncs()["safeHTML"].(func(string) template.HTML)

	cases := []struct {
		in, want string
	}{
		{"<p>plain</p>", "<p>plain</p>"},
		{"<p>a</p><script>alert(1)</script><p>b</p>", "<p>a</p><p>b</p>"},
		{"<SCRIPT src='x.js'></SCRIPT>rest", "rest"},
		{"<p>a</p><script>unterminated", "<p>a</p>"},
	}
	for _, tc := range cases {
		require.Equal(t, template.HTML(tc.want), safeHTML(tc.in))
	}
}
