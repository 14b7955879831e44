package handler

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/sakif/portfolio/internal/content"
	"github.com/sakif/portfolio/internal/model"
)

const baseTemplate = "templates/base.html"

// pageData is what every page template receives.
type pageData struct {
	Title  string
	Site   content.SiteInfo
	User   *model.User
	Year   int
	Error  string
	Notice string
	Form   map[string]string
	Errors map[string]string
	Data   any
}

// Renderer executes the page templates. Each page is parsed together with
// base.html into its own set, so every page can define "content".
type Renderer struct {
	pages  map[string]*template.Template
	site   content.SiteInfo
	now    func() time.Time
	logger *slog.Logger
}

func NewRenderer(files fs.FS, site content.SiteInfo, logger *slog.Logger) (*Renderer, error) {
	r := &Renderer{
		pages:  make(map[string]*template.Template),
		site:   site,
		now:    time.Now,
		logger: logger,
	}

	funcs := template.FuncMap{
		"formatDate":     content.FormatDate,
		"formatDateTime": content.FormatDateTime,
		"formatMonth":    content.FormatMonth,
		"timeAgo":        func(t time.Time) string { return content.TimeAgo(t, r.now()) },
	}

	names, err := fs.Glob(files, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("handler/render: listing templates: %w", err)
	}
	for _, name := range names {
		if name == baseTemplate {
			continue
		}
		tmpl, err := template.New(path.Base(name)).Funcs(funcs).ParseFS(files, baseTemplate, name)
		if err != nil {
			return nil, fmt.Errorf("handler/render: parsing %s: %w", name, err)
		}
		r.pages[strings.TrimSuffix(path.Base(name), ".html")] = tmpl
	}
	return r, nil
}

// Render writes page with status. The page is buffered so a template error
// still produces a clean 500.
func (r *Renderer) Render(w http.ResponseWriter, req *http.Request, status int, page string, data pageData) {
	tmpl, ok := r.pages[page]
	if !ok {
		r.logger.Error("unknown page template", slog.String("page", page))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	data.Site = r.site
	data.Year = r.now().Year()
	if data.User == nil {
		data.User = userFrom(req)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base", data); err != nil {
		r.logger.Error("failed to render template",
			slog.String("page", page),
			slog.String("error", err.Error()),
		)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		r.logger.Warn("failed to write page", slog.String("page", page), slog.String("error", err.Error()))
	}
}

// NotFound renders the 404 page with an optional message.
func (r *Renderer) NotFound(w http.ResponseWriter, req *http.Request, message string) {
	var data any
	if message != "" {
		data = message
	}
	r.Render(w, req, http.StatusNotFound, "not_found", pageData{Title: "404", Data: data})
}
