package web

import (
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/justestif/go-spotify-mood-mixer/internal/mood"
	"github.com/justestif/go-spotify-mood-mixer/internal/recommend"
)

// Templates manages HTML template rendering.
type Templates struct {
	templates map[string]*template.Template
	funcs     template.FuncMap
}

// NewTemplates creates a new template manager by loading templates from the given filesystem.
func NewTemplates(templatesFS fs.FS) (*Templates, error) {
	if templatesFS == nil {
		return nil, fmt.Errorf("templates filesystem is nil")
	}

	t := &Templates{
		templates: make(map[string]*template.Template),
		funcs:     defaultFuncs(),
	}

	if err := t.load(templatesFS); err != nil {
		return nil, err
	}

	return t, nil
}

// Render renders a page template with the given data.
func (t *Templates) Render(w io.Writer, page string, data any) error {
	tmpl, ok := t.templates[page]
	if !ok {
		return fmt.Errorf("template %q not found", page)
	}

	// Execute the "base" template which includes the page content
	return tmpl.ExecuteTemplate(w, "base", data)
}

// load parses every page together with the layouts and partials.
func (t *Templates) load(templatesFS fs.FS) error {
	layouts, err := fs.Glob(templatesFS, "layouts/*.html")
	if err != nil {
		return fmt.Errorf("finding layouts: %w", err)
	}

	partials, err := fs.Glob(templatesFS, "partials/*.html")
	if err != nil {
		return fmt.Errorf("finding partials: %w", err)
	}

	pages, err := fs.Glob(templatesFS, "pages/*.html")
	if err != nil {
		return fmt.Errorf("finding pages: %w", err)
	}
	if len(pages) == 0 {
		return fmt.Errorf("no page templates found")
	}

	commonFiles := append(layouts, partials...)

	for _, page := range pages {
		name := filepath.Base(page)
		name = name[:len(name)-len(".html")]

		files := append([]string{page}, commonFiles...)

		tmpl, err := template.New(name).Funcs(t.funcs).ParseFS(templatesFS, files...)
		if err != nil {
			return fmt.Errorf("parsing template %s: %w", name, err)
		}
		t.templates[name] = tmpl
	}

	return nil
}

// QuickMoods are one-click sample inputs offered under the mood form.
var QuickMoods = []string{
	"I'm feeling happy and energetic today!",
	"I'm stressed and need to relax",
	"Feeling romantic and in love",
	"I'm sad and feeling down",
	"Time for a workout session!",
	"I'm tired and want to chill",
}

// defaultFuncs returns the default template functions.
func defaultFuncs() template.FuncMap {
	return template.FuncMap{
		// moodColor is used inside style attributes; the value is generated, not user input.
		"moodColor": func(a mood.Assessment) template.CSS {
			return template.CSS(mood.Color(a.Energy, a.Valence)) //nolint:gosec // formatted from floats
		},

		"quadrant": func(a mood.Assessment) string {
			return mood.QuadrantName(a.Energy, a.Valence)
		},

		// percent renders a 0..1 value as a whole percentage.
		"percent": func(v float64) string {
			return fmt.Sprintf("%.0f%%", v*100)
		},

		"quickMoods": func() []string {
			return QuickMoods
		},

		"formatTime": func(t time.Time) string {
			return t.Format("Jan 2, 2006 15:04 MST")
		},
	}
}

// PageData contains common data passed to all page templates.
type PageData struct {
	Title       string
	Flash       *FlashMessage
	CurrentPath string
}

// FlashMessage represents a temporary notification message.
type FlashMessage struct {
	Type    string // "success", "error", "warning", "info"
	Message string
}

// HomePageData contains data for the mood form.
type HomePageData struct {
	PageData
	Text string
}

// ResultsPageData contains data for the results page.
type ResultsPageData struct {
	PageData
	Text   string
	Result *recommend.PlaylistResult
}

// NoTracks reports whether retrieval came back empty.
func (d ResultsPageData) NoTracks() bool {
	return d.Result == nil || d.Result.Source == recommend.SourceNoTracks
}
