package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"path"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"leavedesk/internal/auth"
	"leavedesk/internal/domain/analytics"
)

var ErrTemplateNotFound = errors.New("template not found")

// FlashSource hands out the one-shot message stored by the previous request.
type FlashSource interface {
	PopFlash(ctx context.Context) (kind, message string)
}

type Renderer struct {
	templates map[string]*template.Template
	flashes   FlashSource
	now       func() time.Time
}

type Config struct {
	TemplatesFS fs.FS
	Flashes     FlashSource
	Now         func() time.Time
}

func New(cfg Config) (*Renderer, error) {
	r := &Renderer{
		templates: make(map[string]*template.Template),
		flashes:   cfg.Flashes,
		now:       cfg.Now,
	}
	if r.now == nil {
		r.now = time.Now
	}
	if err := r.parseTemplates(cfg.TemplatesFS); err != nil {
		return nil, err
	}
	return r, nil
}

// parseTemplates builds one template set per page: base layout, every
// partial, then the page itself.
func (r *Renderer) parseTemplates(templatesFS fs.FS) error {
	partials, err := fs.Glob(templatesFS, "partials/*.html")
	if err != nil {
		return fmt.Errorf("listing partials: %w", err)
	}
	pages, err := fs.Glob(templatesFS, "pages/*.html")
	if err != nil {
		return fmt.Errorf("listing pages: %w", err)
	}
	if len(pages) == 0 {
		return fmt.Errorf("no page templates found")
	}

	for _, page := range pages {
		name := strings.TrimSuffix(path.Base(page), ".html")
		files := append([]string{"layouts/base.html"}, partials...)
		files = append(files, page)
		tmpl, err := template.New("").Funcs(Funcs()).ParseFS(templatesFS, files...)
		if err != nil {
			return fmt.Errorf("parsing template %s: %w", name, err)
		}
		r.templates[name] = tmpl
	}
	return nil
}

// Funcs is the helper set available to every template.
func Funcs() template.FuncMap {
	return template.FuncMap{
		"formatDate": func(t time.Time) string {
			return t.Format("Jan 2, 2006")
		},
		"formatDateTime": func(t time.Time) string {
			return t.Format("Jan 2, 2006 3:04 PM")
		},
		"formatTime": func(t time.Time) string {
			return t.Format("3:04:05 PM")
		},
		"isoDate": func(t time.Time) string {
			return t.Format(time.DateOnly)
		},
		"title": func(s string) string {
			return cases.Title(language.English).String(s)
		},
		"add": func(a, b int) int {
			return a + b
		},
		"sub": func(a, b int) int {
			return a - b
		},
		"severityVariant": analytics.SeverityVariant,
		"priorityVariant": analytics.PriorityVariant,
		"statusVariant": func(status any) string {
			return StatusVariant(fmt.Sprint(status))
		},
		// dict builds the argument map for partials: dict "Name" "email" "Label" "Email".
		"dict": func(pairs ...any) (map[string]any, error) {
			if len(pairs)%2 != 0 {
				return nil, fmt.Errorf("dict: odd number of arguments")
			}
			out := make(map[string]any, len(pairs)/2)
			for i := 0; i < len(pairs); i += 2 {
				key, ok := pairs[i].(string)
				if !ok {
					return nil, fmt.Errorf("dict: key %v is not a string", pairs[i])
				}
				out[key] = pairs[i+1]
			}
			return out, nil
		},
	}
}

// StatusVariant maps a leave status to a badge variant.
func StatusVariant(status string) string {
	switch status {
	case "Approved":
		return "success"
	case "Rejected":
		return "destructive"
	case "Cancelled":
		return "outline"
	default:
		return "secondary"
	}
}

type TemplateData struct {
	Title       string
	Data        any
	Flash       string
	FlashType   string
	CurrentYear int
	User        *auth.UserContext
	// Redirect and RedirectAfter drive the timed navigation after a successful sign-in.
	Redirect      string
	RedirectAfter time.Duration
}

// RedirectSeconds rounds the delay up for the no-script meta refresh.
func (d TemplateData) RedirectSeconds() int {
	s := int(d.RedirectAfter / time.Second)
	if d.RedirectAfter%time.Second != 0 {
		s++
	}
	return s
}

func (d TemplateData) RedirectMillis() int64 {
	return d.RedirectAfter.Milliseconds()
}

// Render executes page name into a buffer and writes it with status.
func (r *Renderer) Render(w http.ResponseWriter, req *http.Request, status int, name string, data TemplateData) error {
	tmpl, ok := r.templates[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrTemplateNotFound, name)
	}

	data.CurrentYear = r.now().Year()
	if r.flashes != nil && data.Flash == "" {
		if kind, msg := r.flashes.PopFlash(req.Context()); msg != "" {
			data.Flash = msg
			data.FlashType = kind
			if data.FlashType == "" {
				data.FlashType = "info"
			}
		}
	}

	buf := new(bytes.Buffer)
	if err := tmpl.ExecuteTemplate(buf, "base", data); err != nil {
		return fmt.Errorf("executing template %s: %w", name, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		slog.Debug("write page failed", "template", name, "err", err)
	}
	return nil
}

// Has reports whether a page template was loaded.
func (r *Renderer) Has(name string) bool {
	_, ok := r.templates[name]
	return ok
}
