package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"

	"github.com/rs/zerolog/log"

	"github.com/stashlog/stashlog/internal/forms"
	"github.com/stashlog/stashlog/internal/model"
)

//go:embed templates
var templateFS embed.FS

var funcMap = template.FuncMap{
	"errmsg": forms.Message,
}

// viewData is the single context passed to every template; handlers fill
// the fields their view needs.
type viewData struct {
	User        *model.User
	Collections []*model.Collection
	Collection  *model.Collection
	Items       []*model.Item
	Events      []*model.Event
	Item        *model.Item
	Form        any
	Errors      forms.FieldErrors
	Page        *Page
	Query       string
	Next        string
	FormAction  string
	Title       string
	Message     string
}

// Renderer holds the parsed template sets. Each page under templates/pages
// is parsed together with the base layout and all partials; the partials
// are additionally parsed standalone so fragment requests can render just
// one of them.
type Renderer struct {
	pages    map[string]*template.Template
	partials *template.Template
}

func NewRenderer() (*Renderer, error) {
	partials, err := template.New("partials").Funcs(funcMap).ParseFS(templateFS, "templates/partials/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse partials: %w", err)
	}

	pageFiles, err := fs.Glob(templateFS, "templates/pages/*.html")
	if err != nil {
		return nil, err
	}
	pages := make(map[string]*template.Template, len(pageFiles))
	for _, f := range pageFiles {
		name := path.Base(f)
		t, err := template.New(name).Funcs(funcMap).ParseFS(templateFS,
			"templates/base.html", "templates/partials/*.html", f)
		if err != nil {
			return nil, fmt.Errorf("parse page %s: %w", name, err)
		}
		pages[name] = t
	}
	return &Renderer{pages: pages, partials: partials}, nil
}

// Page renders a full document: the base layout wrapping the named page.
func (rd *Renderer) Page(w http.ResponseWriter, status int, name string, data *viewData) {
	t, ok := rd.pages[name]
	if !ok {
		log.Error().Str("template", name).Msg("unknown page template")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	rd.write(w, status, t, "base", data)
}

// Partial renders a single fragment with no surrounding layout.
func (rd *Renderer) Partial(w http.ResponseWriter, status int, name string, data *viewData) {
	rd.write(w, status, rd.partials, name, data)
}

// write buffers the execution so a template error never produces a
// half-written page.
func (rd *Renderer) write(w http.ResponseWriter, status int, t *template.Template, name string, data *viewData) {
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, name, data); err != nil {
		log.Error().Err(err).Str("template", name).Msg("template execution failed")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
