// Package server assembles the HTTP surface: the public pages, the gesture
// verification API, admin authentication and the content API.
package server

import (
	"context"
	"net/http"

	"github.com/geniusclasses/geniusclasses/internal/auth"
	"github.com/geniusclasses/geniusclasses/internal/content"
	"github.com/geniusclasses/geniusclasses/internal/gesture"
	"github.com/geniusclasses/geniusclasses/internal/httputil"
	"github.com/geniusclasses/geniusclasses/internal/notify"
	"github.com/geniusclasses/geniusclasses/internal/pages"
	"github.com/geniusclasses/geniusclasses/internal/ratelimit"
	"github.com/geniusclasses/geniusclasses/internal/site"
	"github.com/geniusclasses/geniusclasses/internal/validate"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jonboulle/clockwork"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type Config struct {
	Pinger Pinger
	Site   *site.Data
	Repo   content.Repository
	// Auth enables the login endpoints and the admin API. Without it only
	// the public site is served.
	Auth      *auth.Handler
	Publisher content.EventPublisher
	Inquiries notify.Notifier
	Clock     clockwork.Clock

	BaseURL               string
	AllowedFrameAncestors string
}

type Server struct {
	router   chi.Router
	pinger   Pinger
	limiters []*ratelimit.Limiter
	pages    *pages.Handler
}

func New(cfg Config) *Server {
	if cfg.Site == nil {
		cfg.Site = site.Default()
	}
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(slogMiddleware)
	r.Use(securityHeaders(SecurityConfig{
		BaseURL:               cfg.BaseURL,
		AllowedFrameAncestors: cfg.AllowedFrameAncestors,
	}))

	s := &Server{router: r, pinger: cfg.Pinger}
	s.routes(cfg)
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Drain waits for background work started by requests, such as contact
// inquiries still being delivered. Call it after the HTTP server has shut down.
func (s *Server) Drain(ctx context.Context) error {
	if s.pages == nil {
		return nil
	}
	return s.pages.WaitInquiries(ctx)
}

// Close stops the background sweepers of the rate limiters.
func (s *Server) Close() {
	for _, l := range s.limiters {
		l.Stop()
	}
}

func (s *Server) limiter(cfg Config, rps float64, burst int) *ratelimit.Limiter {
	l := ratelimit.NewLimiter(cfg.Clock, rps, burst)
	s.limiters = append(s.limiters, l)
	return l
}

func (s *Server) routes(cfg Config) {
	gestures := gesture.NewHandler(cfg.Site.Institute.Name)
	gestureLimiter := s.limiter(cfg, 2, 10)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/limits", handleLimits)

		r.With(gestureLimiter.Middleware).Get("/gesture/{preset}", gestures.Settings)
		r.With(gestureLimiter.Middleware).Post("/gesture/{preset}", gestures.Verify)

		if cfg.Auth != nil && cfg.Repo != nil {
			authLimiter := s.limiter(cfg, 0.5, 5)
			r.Route("/auth", func(r chi.Router) {
				r.Use(authLimiter.Middleware)
				r.Post("/login", cfg.Auth.Login)
				r.Post("/logout", cfg.Auth.Logout)
			})

			admin := content.NewHandler(cfg.Repo, cfg.Clock)
			if cfg.Publisher != nil {
				admin.SetPublisher(cfg.Publisher)
			}
			adminLimiter := s.limiter(cfg, 2, 20)
			r.Route("/admin", func(r chi.Router) {
				r.Use(adminLimiter.Middleware)
				r.Use(cfg.Auth.Middleware)
				admin.Routes(r)
			})
		}

		// The page router renders the home page for unknown paths; the API
		// answers in JSON instead.
		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			httputil.WriteError(w, http.StatusNotFound, "not found")
		})
		r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
			httputil.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
		})
	})

	if cfg.Repo != nil {
		public := pages.NewHandler(cfg.Site, cfg.Repo)
		if cfg.Auth != nil {
			public.SetSessionChecker(cfg.Auth)
		}
		if cfg.Inquiries != nil {
			contactLimiter := s.limiter(cfg, 0.2, 3)
			public.SetInquiryNotifier(cfg.Inquiries)
			public.UseOnContact(contactLimiter.Middleware)
		}
		public.Routes(s.router)
		s.pages = public
	}
}

type healthResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.pinger != nil {
		if err := s.pinger.Ping(r.Context()); err != nil {
			httputil.WriteJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "unhealthy", Error: "store unreachable"})
			return
		}
	}
	httputil.WriteJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}

func handleLimits(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, validate.FieldLimits())
}
