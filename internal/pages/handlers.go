package pages

import (
	"log/slog"
	"net/http"

	"github.com/geniusclasses/geniusclasses/internal/content"
	"github.com/geniusclasses/geniusclasses/internal/gesture"
	"github.com/geniusclasses/geniusclasses/internal/site"
	"github.com/geniusclasses/geniusclasses/internal/video"
)

type homeBody struct {
	Features []site.Highlight
	Mediums  []site.Highlight
	Topper   *site.Result
}

func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	body := homeBody{Features: h.site.Features, Mediums: h.site.Mediums}
	if top, ok := h.site.Results.Topper(); ok {
		body.Topper = &top
	}
	h.render(w, r, http.StatusOK, "home", "", nil, body)
}

// lectureCard pairs a lecture with its derived video reference.
type lectureCard struct {
	content.Lecture
	Video video.Reference
}

type lecturesBody struct {
	Categories []string
	Category   string
	Query      string
	Lectures   []lectureCard
	Total      int
}

func (h *Handler) Lectures(w http.ResponseWriter, r *http.Request) {
	lectures, err := h.repo.ListLectures(r.Context())
	if err != nil {
		slog.Error("pages: list lectures", "error", err)
		lectures = nil
	}

	category := r.URL.Query().Get("category")
	if category == "" {
		category = content.AllCategories
	}
	query := r.URL.Query().Get("q")

	filtered := content.FilterLectures(lectures, content.LectureFilter{Category: category, Query: query})
	cards := make([]lectureCard, len(filtered))
	for i, l := range filtered {
		cards[i] = lectureCard{Lecture: l, Video: l.Video()}
	}

	categories := []string{content.AllCategories}
	for _, c := range content.Categories {
		categories = append(categories, string(c))
	}

	h.render(w, r, http.StatusOK, "lectures", "Video Lectures", nil, lecturesBody{
		Categories: categories,
		Category:   category,
		Query:      query,
		Lectures:   cards,
		Total:      len(lectures),
	})
}

type notesBody struct {
	Standards []string
	Mediums   []string
	Query     string
	Standard  string
	Medium    string
	Notes     []content.Note
	Total     int
}

func (h *Handler) Notes(w http.ResponseWriter, r *http.Request) {
	notes, err := h.repo.ListNotes(r.Context())
	if err != nil {
		slog.Error("pages: list notes", "error", err)
		notes = nil
	}

	q := r.URL.Query()
	body := notesBody{
		Standards: append([]string{content.AllCategories}, content.Standards...),
		Mediums:   []string{content.AllCategories, string(content.MediumEnglish), string(content.MediumGujarati)},
		Query:     q.Get("q"),
		Standard:  orAll(q.Get("standard")),
		Medium:    orAll(q.Get("medium")),
		Total:     len(notes),
	}
	body.Notes = content.FilterNotes(notes, content.NoteFilter{Query: body.Query, Standard: body.Standard, Medium: body.Medium})

	h.render(w, r, http.StatusOK, "notes", "Study Notes", nil, body)
}

func orAll(v string) string {
	if v == "" {
		return content.AllCategories
	}
	return v
}

func (h *Handler) Teachers(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "teachers", "Our Teachers", nil, h.site.Teachers)
}

type resultsBody struct {
	Years   []string
	Year    string
	Results site.Results
	Topper  *site.Result
}

func (h *Handler) Results(w http.ResponseWriter, r *http.Request) {
	year := orAll(r.URL.Query().Get("year"))
	body := resultsBody{
		Years:   h.site.Results.Years(),
		Year:    year,
		Results: h.site.Results.FilterResults(year),
	}
	if top, ok := h.site.Results.Topper(); ok {
		body.Topper = &top
	}
	h.render(w, r, http.StatusOK, "results", "Our Results", nil, body)
}

func (h *Handler) ThankYou(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "thank_you", "Thank You", nil, nil)
}

type adminLoginBody struct {
	Gesture gesture.ClientSettings
}

func (h *Handler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	if h.signedIn(r) {
		http.Redirect(w, r, "/admin-panel", http.StatusSeeOther)
		return
	}
	w.Header().Set("X-Robots-Tag", "noindex, nofollow")
	h.render(w, r, http.StatusOK, "admin_login", "Restricted", nil, adminLoginBody{Gesture: h.login})
}

type adminPanelBody struct {
	Username   string
	Lectures   []lectureCard
	Notes      []content.Note
	Categories []content.Category
	Standards  []string
	Mediums    []content.Medium
}

func (h *Handler) AdminPanel(w http.ResponseWriter, r *http.Request) {
	username, ok := h.session(r)
	if !ok {
		http.Redirect(w, r, gesture.AdminLoginPath, http.StatusSeeOther)
		return
	}

	lectures, err := h.repo.ListLectures(r.Context())
	if err != nil {
		slog.Error("pages: list lectures", "error", err)
	}
	notes, err := h.repo.ListNotes(r.Context())
	if err != nil {
		slog.Error("pages: list notes", "error", err)
	}

	cards := make([]lectureCard, len(lectures))
	for i, l := range lectures {
		cards[i] = lectureCard{Lecture: l, Video: l.Video()}
	}

	w.Header().Set("X-Robots-Tag", "noindex, nofollow")
	h.render(w, r, http.StatusOK, "admin_panel", "Admin Panel", nil, adminPanelBody{
		Username:   username,
		Lectures:   cards,
		Notes:      notes,
		Categories: content.Categories,
		Standards:  content.Standards,
		Mediums:    content.Mediums,
	})
}

// session returns the signed-in admin's username.
func (h *Handler) session(r *http.Request) (string, bool) {
	if h.sessions == nil {
		return "", false
	}
	claims, ok := h.sessions.Session(r)
	if !ok {
		return "", false
	}
	return claims.Username, true
}

func (h *Handler) signedIn(r *http.Request) bool {
	_, ok := h.session(r)
	return ok
}
