// Package view renders the HTML pages with html/template.
package view

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
)

//go:embed templates
var files embed.FS

const adminPrefix = "admin/"

// Page is the data every view receives. Content holds the page specific values.
type Page struct {
	Title        string
	Description  string
	User         string
	SignedIn     bool
	CurrentRoute string
	ShowLogout   bool
	Content      any
}

// DefaultDescription is the meta description used by all pages.
const DefaultDescription = "Simple blog built with Go, Echo and GORM."

// Renderer implements echo.Renderer. Each page is parsed together with its
// layout so pages can all define the same "content" block.
type Renderer struct {
	pages map[string]*template.Template
}

// New parses every embedded page.
func New() (*Renderer, error) {
	funcs := template.FuncMap{
		"isActiveRoute": IsActiveRoute,
		"excerpt":       excerpt,
		"date":          func(t time.Time) string { return t.Format("Jan 2, 2006") },
	}

	r := &Renderer{pages: make(map[string]*template.Template)}
	err := fs.WalkDir(files, "templates/pages", func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		name := strings.TrimSuffix(strings.TrimPrefix(p, "templates/pages/"), path.Ext(p))

		layout := "templates/layouts/main.html"
		if strings.HasPrefix(name, adminPrefix) {
			layout = "templates/layouts/admin.html"
		}

		t, err := template.New(path.Base(layout)).Funcs(funcs).ParseFS(files, layout, "templates/partials/*.html", p)
		if err != nil {
			return fmt.Errorf("parse view %s: %w", name, err)
		}
		r.pages[name] = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}

// Render executes the named page inside its layout.
func (r *Renderer) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("view %q not found", name)
	}
	return t.ExecuteTemplate(w, "layout", data)
}

// Has reports whether a page with that name exists.
func (r *Renderer) Has(name string) bool {
	_, ok := r.pages[name]
	return ok
}

// IsActiveRoute returns the CSS class for the navigation link of the current page.
func IsActiveRoute(route, current string) string {
	if route == current {
		return "active"
	}
	return ""
}

func excerpt(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return strings.TrimSpace(string(r[:n])) + "..."
}
