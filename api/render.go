package api

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rpupo63/taskmanager/auth"
)

//go:embed templates/*.html templates/pages/*.html
var templates embed.FS

// viewData is what every page template receives
type viewData struct {
	Title           string
	IsAuthenticated bool
	CurrentUserID   uuid.UUID
	Flashes         []auth.Flash
	Form            url.Values
	Errors          map[string]string
	Data            any
}

type renderer struct {
	pages map[string]*template.Template
}

var templateFuncs = template.FuncMap{
	"value": func(form url.Values, key string) string {
		return form.Get(key)
	},
	"selected": func(form url.Values, key string, id any) bool {
		want := fmt.Sprint(id)
		for _, v := range form[key] {
			if v == want {
				return true
			}
		}
		return false
	},
	"fieldError": func(fieldErrors map[string]string, key string) string {
		return fieldErrors[key]
	},
	"date": func(t time.Time) string {
		return t.Format("2006-01-02 15:04")
	},
	"dict": func(pairs ...any) (map[string]any, error) {
		if len(pairs)%2 != 0 {
			return nil, errors.New("dict expects key/value pairs")
		}
		m := make(map[string]any, len(pairs)/2)
		for i := 0; i < len(pairs); i += 2 {
			key, ok := pairs[i].(string)
			if !ok {
				return nil, fmt.Errorf("dict key %v is not a string", pairs[i])
			}
			m[key] = pairs[i+1]
		}
		return m, nil
	},
}

// newRenderer parses each page together with the shared layout
func newRenderer() (*renderer, error) {
	names, err := fs.Glob(templates, "templates/pages/*.html")
	if err != nil {
		return nil, err
	}

	r := &renderer{pages: make(map[string]*template.Template, len(names))}
	for _, file := range names {
		name := strings.TrimSuffix(path.Base(file), ".html")
		t, err := template.New(name).Funcs(templateFuncs).ParseFS(templates, "templates/layout.html", "templates/input.html", file)
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", name, err)
		}
		r.pages[name] = t
	}
	return r, nil
}

func (r *renderer) render(w io.Writer, name string, data viewData) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("unknown page %q", name)
	}
	return t.ExecuteTemplate(w, "layout", data)
}
