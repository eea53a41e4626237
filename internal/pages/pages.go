// Package pages renders the public site and the hidden admin screens as
// server-side HTML.
package pages

import (
	"bytes"
	"embed"
	"html/template"
	"log/slog"
	"net/http"
	"sync"

	"github.com/geniusclasses/geniusclasses/internal/auth"
	"github.com/geniusclasses/geniusclasses/internal/content"
	"github.com/geniusclasses/geniusclasses/internal/gesture"
	"github.com/geniusclasses/geniusclasses/internal/httputil"
	"github.com/geniusclasses/geniusclasses/internal/notify"
	"github.com/geniusclasses/geniusclasses/internal/site"
	"github.com/go-chi/chi/v5"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageNames = []string{
	"home", "lectures", "notes", "teachers", "results",
	"contact", "thank_you", "admin_login", "admin_panel",
}

var pageTemplates = parsePages(pageNames)

// parsePages gives every page its own copy of the layout, since each one
// defines the "content" block.
func parsePages(names []string) map[string]*template.Template {
	base := template.Must(template.New("layout.html").ParseFS(templateFS, "templates/layout.html"))
	out := make(map[string]*template.Template, len(names))
	for _, name := range names {
		t := template.Must(base.Clone())
		out[name] = template.Must(t.ParseFS(templateFS, "templates/"+name+".html"))
	}
	return out
}

// SessionChecker reports whether the request carries an admin session.
type SessionChecker interface {
	Session(r *http.Request) (*auth.Claims, bool)
}

type Handler struct {
	site      *site.Data
	repo      content.Repository
	footer    gesture.ClientSettings
	login     gesture.ClientSettings
	sessions  SessionChecker
	inquiries notify.Notifier
	contactMW []func(http.Handler) http.Handler
	pending   sync.WaitGroup
}

func NewHandler(data *site.Data, repo content.Repository) *Handler {
	return &Handler{
		site:   data,
		repo:   repo,
		footer: gesture.SettingsFor(gesture.Footer(data.Institute.Name)),
		login:  gesture.SettingsFor(gesture.Login(data.Institute.Name)),
	}
}

func (h *Handler) SetSessionChecker(s SessionChecker) {
	h.sessions = s
}

// SetInquiryNotifier routes contact form submissions to staff.
func (h *Handler) SetInquiryNotifier(n notify.Notifier) {
	h.inquiries = n
}

// UseOnContact adds middleware in front of contact form submissions only.
func (h *Handler) UseOnContact(mw ...func(http.Handler) http.Handler) {
	h.contactMW = append(h.contactMW, mw...)
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.Home)
	r.Get("/lectures", h.Lectures)
	r.Get("/notes", h.Notes)
	r.Get("/teachers", h.Teachers)
	r.Get("/results", h.Results)
	r.Get("/contact", h.Contact)
	r.With(h.contactMW...).Post("/contact", h.SubmitContact)
	r.Get("/thank-you", h.ThankYou)
	r.Get(gesture.AdminLoginPath, h.AdminLogin)
	r.Get("/admin-panel", h.AdminPanel)
	r.NotFound(h.Home)
}

type pageData struct {
	Nonce  string
	Site   *site.Data
	Path   string
	Title  string
	Footer gesture.ClientSettings
	Notice *notify.Notice
	Body   any
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, page, title string, notice *notify.Notice, body any) {
	tmpl, ok := pageTemplates[page]
	if !ok {
		slog.Error("pages: unknown template", "page", page)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	data := pageData{
		Nonce:  httputil.NonceFromContext(r.Context()),
		Site:   h.site,
		Path:   r.URL.Path,
		Title:  title,
		Footer: h.footer,
		Notice: notice,
		Body:   body,
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		slog.Error("pages: render failed", "page", page, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
