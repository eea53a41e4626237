package server_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/geniusclasses/geniusclasses/internal/auth"
	"github.com/geniusclasses/geniusclasses/internal/content"
	"github.com/geniusclasses/geniusclasses/internal/kv"
	"github.com/geniusclasses/geniusclasses/internal/notify"
	"github.com/geniusclasses/geniusclasses/internal/server"
	"github.com/geniusclasses/geniusclasses/internal/webhook"
	"github.com/jonboulle/clockwork"
	"golang.org/x/crypto/bcrypt"
)

const (
	testSecret   = "server-test-secret-with-enough-bytes"
	testUsername = "admin"
	testPassword = "open sesame"
)

// --- Mock types ---

type mockPinger struct{ err error }

func (m *mockPinger) Ping(ctx context.Context) error { return m.err }

type recordingPublisher struct {
	events []webhook.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e webhook.Event) {
	p.events = append(p.events, e)
}

// --- Helpers ---

func newPublicServer(t *testing.T) *server.Server {
	t.Helper()
	srv := server.New(server.Config{})
	t.Cleanup(srv.Close)
	return srv
}

type fullServer struct {
	srv       *server.Server
	repo      *content.KVRepository
	publisher *recordingPublisher
	inquiries *notify.Recorder
}

func newFullServer(t *testing.T) fullServer {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	clock := clockwork.NewFakeClockAt(time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC))
	authHandler := auth.NewHandler(auth.Credentials{Username: testUsername, PasswordHash: string(hash)}, testSecret, time.Hour, false)
	authHandler.SetClock(clock)

	f := fullServer{
		repo:      content.NewKVRepository(kv.NewMemory()),
		publisher: &recordingPublisher{},
		inquiries: &notify.Recorder{},
	}
	f.srv = server.New(server.Config{
		Pinger:    &mockPinger{},
		Repo:      f.repo,
		Auth:      authHandler,
		Publisher: f.publisher,
		Inquiries: f.inquiries,
		Clock:     clock,
		BaseURL:   "https://geniusclasses.test",
	})
	t.Cleanup(f.srv.Close)
	return f
}

func executeRequest(srv *server.Server, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func executeRequestWithBody(srv *server.Server, method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func login(t *testing.T, srv *server.Server) string {
	t.Helper()
	body := `{"username":"` + testUsername + `","password":"` + testPassword + `"}`
	rec := executeRequestWithBody(srv, http.MethodPost, "/api/auth/login", body, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	return resp.Token
}

// --- Health Endpoint ---

func TestHealthEndpointReturnsOK(t *testing.T) {
	srv := newPublicServer(t)
	rec := executeRequest(srv, http.MethodGet, "/api/health")

	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected Content-Type application/json, got %q", ct)
	}
	if !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Errorf("unexpected body %q", rec.Body.String())
	}
}

func TestHealthEndpointWithPingFailure(t *testing.T) {
	srv := server.New(server.Config{Pinger: &mockPinger{err: errors.New("connection refused")}})
	t.Cleanup(srv.Close)

	rec := executeRequest(srv, http.MethodGet, "/api/health")
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected status 503, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `"status":"unhealthy"`) {
		t.Errorf("expected unhealthy status, got %q", body)
	}
	if strings.Contains(body, "connection refused") {
		t.Errorf("health response should not leak the ping error, got %q", body)
	}
}

func TestHealthEndpointWrongMethodReturnsMethodNotAllowed(t *testing.T) {
	srv := newPublicServer(t)
	rec := executeRequest(srv, http.MethodPost, "/api/health")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", rec.Code)
	}
}

func TestLimitsEndpoint(t *testing.T) {
	srv := newPublicServer(t)
	rec := executeRequest(srv, http.MethodGet, "/api/limits")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var limits map[string]int
	if err := json.NewDecoder(rec.Body).Decode(&limits); err != nil {
		t.Fatalf("decode limits: %v", err)
	}
	if len(limits) == 0 {
		t.Error("expected field limits")
	}
}

// --- Without auth only the public API is served ---

func TestAdminRoutesNotRegisteredWithoutAuth(t *testing.T) {
	srv := newPublicServer(t)

	routes := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/auth/login"},
		{http.MethodPost, "/api/auth/logout"},
		{http.MethodGet, "/api/admin/lectures"},
		{http.MethodPost, "/api/admin/notes"},
	}
	for _, route := range routes {
		t.Run(route.method+" "+route.path, func(t *testing.T) {
			rec := executeRequest(srv, route.method, route.path)
			if rec.Code != http.StatusNotFound {
				t.Errorf("expected 404 without auth, got %d", rec.Code)
			}
		})
	}
}

func TestUnknownAPIRouteReturnsJSON404(t *testing.T) {
	srv := newFullServer(t).srv
	rec := executeRequest(srv, http.MethodGet, "/api/does-not-exist")

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected JSON 404 for API paths, got %q", ct)
	}
}

// --- Gesture API ---

func TestGestureSettingsRoute(t *testing.T) {
	srv := newPublicServer(t)
	rec := executeRequest(srv, http.MethodGet, "/api/gesture/footer")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var settings struct {
		Name                  string `json:"name"`
		HoldThresholdMs       int64  `json:"holdThresholdMs"`
		RequireHoldBeforeDrag bool   `json:"requireHoldBeforeDrag"`
		UnlockPath            string `json:"unlockPath"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&settings); err != nil {
		t.Fatalf("decode settings: %v", err)
	}
	if settings.Name != "footer" || settings.HoldThresholdMs != 5000 || !settings.RequireHoldBeforeDrag {
		t.Errorf("unexpected footer settings %+v", settings)
	}
	if settings.UnlockPath != "/admin-login" {
		t.Errorf("expected unlock path /admin-login, got %q", settings.UnlockPath)
	}
}

func TestGestureVerifyRoute(t *testing.T) {
	srv := newPublicServer(t)
	trace := `{"events":[{"type":"pointerdown","atMs":0},{"type":"dragend","atMs":5200,"offsetY":-120}]}`
	rec := executeRequestWithBody(srv, http.MethodPost, "/api/gesture/footer", trace, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var out struct {
		Unlocked   bool   `json:"unlocked"`
		RedirectTo string `json:"redirectTo"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatalf("decode outcome: %v", err)
	}
	if !out.Unlocked || out.RedirectTo != "/admin-login" {
		t.Errorf("expected unlock to /admin-login, got %+v", out)
	}
}

func TestGestureUnknownPreset(t *testing.T) {
	srv := newPublicServer(t)
	rec := executeRequest(srv, http.MethodGet, "/api/gesture/konami")
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

// --- Auth and admin API ---

func TestAdminRoutesRequireAuth(t *testing.T) {
	srv := newFullServer(t).srv
	rec := executeRequest(srv, http.MethodGet, "/api/admin/lectures")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestAdminLectureLifecycle(t *testing.T) {
	f := newFullServer(t)
	token := login(t, f.srv)

	create := `{"title":"Tenses","youtubeLink":"https://youtu.be/dQw4w9WgXcQ","category":"English Grammar"}`
	rec := executeRequestWithBody(f.srv, http.MethodPost, "/api/admin/lectures", create, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var lecture content.Lecture
	if err := json.NewDecoder(rec.Body).Decode(&lecture); err != nil {
		t.Fatalf("decode lecture: %v", err)
	}

	stored, err := f.repo.ListLectures(context.Background())
	if err != nil {
		t.Fatalf("list lectures: %v", err)
	}
	if len(stored) != 1 || stored[0].ID != lecture.ID {
		t.Fatalf("expected the lecture to be stored, got %+v", stored)
	}

	page := executeRequest(f.srv, http.MethodGet, "/lectures")
	if !strings.Contains(page.Body.String(), "https://www.youtube.com/embed/dQw4w9WgXcQ") {
		t.Error("expected the lectures page to embed the new lecture")
	}

	rec = executeRequestWithBody(f.srv, http.MethodDelete, "/api/admin/lectures/"+lecture.ID, "", token)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}

	if len(f.publisher.events) != 2 {
		t.Fatalf("expected 2 published events, got %d", len(f.publisher.events))
	}
	if f.publisher.events[0].Name != webhook.LectureCreated || f.publisher.events[1].Name != webhook.LectureDeleted {
		t.Errorf("unexpected events %+v", f.publisher.events)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	srv := newFullServer(t).srv
	rec := executeRequestWithBody(srv, http.MethodPost, "/api/auth/login", `{"username":"admin","password":"nope"}`, "")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestAuthRoutesRateLimited(t *testing.T) {
	srv := newFullServer(t).srv

	var lastCode int
	for i := 0; i < 20; i++ {
		rec := executeRequestWithBody(srv, http.MethodPost, "/api/auth/login", "{}", "")
		lastCode = rec.Code
		if lastCode == http.StatusTooManyRequests {
			return
		}
	}
	t.Errorf("expected 429 after many rapid requests, last status was %d", lastCode)
}

// --- Pages ---

func TestPagesServedWithSecurityHeaders(t *testing.T) {
	srv := newFullServer(t).srv
	for _, path := range []string{"/", "/lectures", "/notes", "/teachers", "/results", "/contact", "/thank-you", "/admin-login"} {
		t.Run(path, func(t *testing.T) {
			rec := executeRequest(srv, http.MethodGet, path)
			if rec.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d", rec.Code)
			}
			if !strings.HasPrefix(rec.Header().Get("Content-Type"), "text/html") {
				t.Errorf("expected HTML, got %q", rec.Header().Get("Content-Type"))
			}
			if rec.Header().Get("Content-Security-Policy") == "" {
				t.Error("expected a Content-Security-Policy header")
			}
		})
	}
}

func TestUnknownPageFallsBackToHome(t *testing.T) {
	srv := newFullServer(t).srv
	rec := executeRequest(srv, http.MethodGet, "/no-such-page")
	if rec.Code != http.StatusOK {
		t.Errorf("expected the home page for unknown paths, got %d", rec.Code)
	}
}

func TestAdminPanelRedirectsWithoutSession(t *testing.T) {
	srv := newFullServer(t).srv
	rec := executeRequest(srv, http.MethodGet, "/admin-panel")
	if rec.Code != http.StatusSeeOther && rec.Code != http.StatusFound {
		t.Fatalf("expected a redirect, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/admin-login" {
		t.Errorf("expected redirect to /admin-login, got %q", loc)
	}
}

func TestContactSubmissionNotifiesStaff(t *testing.T) {
	f := newFullServer(t)

	form := "name=Asha+Patel&phone=98765+43210&subject=Admission&message=Is+there+a+batch+for+Std+10%3F"
	req := httptest.NewRequest(http.MethodPost, "/contact", strings.NewReader(form))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	f.srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d: %s", rec.Code, rec.Body.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := f.srv.Drain(ctx); err != nil {
		t.Fatalf("drain: %v", err)
	}
	n, ok := f.inquiries.Last()
	if !ok {
		t.Fatal("expected the inquiry to be delivered")
	}
	if !strings.Contains(n.Message, "Admission") {
		t.Errorf("unexpected inquiry notice %+v", n)
	}
}

func TestDrainWithoutPages(t *testing.T) {
	srv := server.New(server.Config{Pinger: &mockPinger{}})
	defer srv.Close()
	if err := srv.Drain(context.Background()); err != nil {
		t.Errorf("expected nil, got %v", err)
	}
}
