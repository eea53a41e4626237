package content

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/geniusclasses/geniusclasses/internal/httputil"
	"github.com/geniusclasses/geniusclasses/internal/webhook"
	"github.com/go-chi/chi/v5"
	"github.com/jonboulle/clockwork"
)

// EventPublisher receives content change events. *webhook.Client satisfies it.
type EventPublisher interface {
	Publish(ctx context.Context, event webhook.Event)
}

// Handler serves the admin panel's JSON API.
type Handler struct {
	repo      Repository
	clock     clockwork.Clock
	publisher EventPublisher
}

func NewHandler(repo Repository, clock clockwork.Clock) *Handler {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Handler{repo: repo, clock: clock}
}

func (h *Handler) SetPublisher(p EventPublisher) {
	h.publisher = p
}

// Routes mounts the admin endpoints; callers wrap it with authentication.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/lectures", h.ListLectures)
	r.Post("/lectures", h.CreateLecture)
	r.Delete("/lectures/{id}", h.DeleteLecture)
	r.Get("/notes", h.ListNotes)
	r.Post("/notes", h.CreateNote)
	r.Delete("/notes/{id}", h.DeleteNote)
}

func (h *Handler) ListLectures(w http.ResponseWriter, r *http.Request) {
	lectures, err := h.repo.ListLectures(r.Context())
	if err != nil {
		slog.Error("content: list lectures", "error", err)
		httputil.WriteError(w, http.StatusInternalServerError, "failed to list lectures")
		return
	}
	lectures = FilterLectures(lectures, LectureFilter{
		Category: r.URL.Query().Get("category"),
		Query:    r.URL.Query().Get("q"),
	})
	httputil.WriteJSON(w, http.StatusOK, lectures)
}

func (h *Handler) CreateLecture(w http.ResponseWriter, r *http.Request) {
	var in NewLecture
	if err := httputil.DecodeJSON(w, r, &in); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	lecture, err := BuildLecture(in, h.clock.Now())
	if errors.Is(err, ErrInvalid) {
		httputil.WriteError(w, http.StatusBadRequest, invalidMessage(err))
		return
	}
	if err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, "failed to create lecture")
		return
	}

	if err := h.repo.AddLecture(r.Context(), lecture); err != nil {
		slog.Error("content: add lecture", "error", err)
		httputil.WriteError(w, http.StatusInternalServerError, "failed to create lecture")
		return
	}

	h.publish(r.Context(), webhook.LectureCreated, map[string]any{
		"id":        lecture.ID,
		"title":     lecture.Title,
		"category":  string(lecture.Category),
		"embedUrl":  lecture.Video().EmbedURL,
		"createdAt": lecture.CreatedAt.Format(time.RFC3339),
	})
	httputil.WriteJSON(w, http.StatusCreated, lecture)
}

func (h *Handler) DeleteLecture(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	err := h.repo.DeleteLecture(r.Context(), id)
	if errors.Is(err, ErrNotFound) {
		httputil.WriteError(w, http.StatusNotFound, "lecture not found")
		return
	}
	if err != nil {
		slog.Error("content: delete lecture", "id", id, "error", err)
		httputil.WriteError(w, http.StatusInternalServerError, "failed to delete lecture")
		return
	}
	h.publish(r.Context(), webhook.LectureDeleted, map[string]any{"id": id})
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListNotes(w http.ResponseWriter, r *http.Request) {
	notes, err := h.repo.ListNotes(r.Context())
	if err != nil {
		slog.Error("content: list notes", "error", err)
		httputil.WriteError(w, http.StatusInternalServerError, "failed to list notes")
		return
	}
	q := r.URL.Query()
	notes = FilterNotes(notes, NoteFilter{
		Query:    q.Get("q"),
		Standard: q.Get("standard"),
		Medium:   q.Get("medium"),
	})
	httputil.WriteJSON(w, http.StatusOK, notes)
}

func (h *Handler) CreateNote(w http.ResponseWriter, r *http.Request) {
	var in NewNote
	if err := httputil.DecodeJSON(w, r, &in); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	note, err := BuildNote(in, h.clock.Now())
	if errors.Is(err, ErrInvalid) {
		httputil.WriteError(w, http.StatusBadRequest, invalidMessage(err))
		return
	}
	if err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, "failed to create note")
		return
	}

	if err := h.repo.AddNote(r.Context(), note); err != nil {
		slog.Error("content: add note", "error", err)
		httputil.WriteError(w, http.StatusInternalServerError, "failed to create note")
		return
	}

	h.publish(r.Context(), webhook.NoteCreated, map[string]any{
		"id":        note.ID,
		"title":     note.Title,
		"standard":  note.Standard,
		"medium":    string(note.Medium),
		"subject":   note.Subject,
		"createdAt": note.CreatedAt.Format(time.RFC3339),
	})
	httputil.WriteJSON(w, http.StatusCreated, note)
}

func (h *Handler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	err := h.repo.DeleteNote(r.Context(), id)
	if errors.Is(err, ErrNotFound) {
		httputil.WriteError(w, http.StatusNotFound, "note not found")
		return
	}
	if err != nil {
		slog.Error("content: delete note", "id", id, "error", err)
		httputil.WriteError(w, http.StatusInternalServerError, "failed to delete note")
		return
	}
	h.publish(r.Context(), webhook.NoteDeleted, map[string]any{"id": id})
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) publish(ctx context.Context, name string, data map[string]any) {
	if h.publisher == nil {
		return
	}
	h.publisher.Publish(ctx, webhook.Event{Name: name, Timestamp: h.clock.Now().UTC(), Data: data})
}

// invalidMessage strips the sentinel prefix so the admin sees only the
// field problem.
func invalidMessage(err error) string {
	return strings.TrimPrefix(err.Error(), ErrInvalid.Error()+": ")
}
