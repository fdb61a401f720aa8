package server

import (
	"fmt"
	"html/template"
	"net/http"
	"path/filepath"
	"regexp"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

var scriptTags = regexp.MustCompile(`(?is)<script.*?(?:</script>|$)`)

// Renderer owns the parsed page templates. Every page is parsed together
// with the shared layout; the whole map is swapped atomically on reload so
// in-flight requests keep rendering against a consistent set.
type Renderer struct {
	dir    string
	logger *logrus.Logger

	mu        sync.RWMutex
	templates map[string]*template.Template
}

// NewRenderer parses all templates under dir.
func NewRenderer(dir string, logger *logrus.Logger) (*Renderer, error) {
	r := &Renderer{dir: dir, logger: logger}
	if err := r.Load(); err != nil {
		return nil, err
	}
	return r, nil
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"formatDate": func(t time.Time) string {
			return t.Format("2006-01-02")
		},
		"formatDateTime": func(t time.Time) string {
			return t.Format("2006-01-02 15:04:05")
		},
		"safeHTML": func(s string) template.HTML {
			// Post bodies may carry markup; scripts are stripped before the
			// rest is trusted.
			return template.HTML(scriptTags.ReplaceAllString(s, ""))
		},
	}
}

// Load (re)parses every page template against the shared layout. Safe to
// call concurrently with Render.
func (r *Renderer) Load() error {
	layout := filepath.Join(r.dir, "layout.html")
	pages, err := filepath.Glob(filepath.Join(r.dir, "*.html"))
	if err != nil {
		return fmt.Errorf("failed to list templates: %w", err)
	}

	parsed := make(map[string]*template.Template)
	for _, page := range pages {
		name := filepath.Base(page)
		if name == "layout.html" {
			continue
		}
		tmpl, err := template.New(name).Funcs(templateFuncs()).ParseFiles(layout, page)
		if err != nil {
			return fmt.Errorf("failed to parse template %s: %w", name, err)
		}
		parsed[name] = tmpl
	}

	if len(parsed) == 0 {
		return fmt.Errorf("no page templates found in %s", r.dir)
	}

	r.mu.Lock()
	r.templates = parsed
	r.mu.Unlock()

	r.logger.WithField("count", len(parsed)).Debug("Templates loaded")
	return nil
}

// Render writes the named page with the given data.
func (r *Renderer) Render(w http.ResponseWriter, page string, data map[string]any) error {
	r.mu.RLock()
	tmpl, ok := r.templates[page]
	r.mu.RUnlock()

	if !ok {
		return fmt.Errorf("unknown template: %s", page)
	}
	return tmpl.ExecuteTemplate(w, "layout", data)
}
