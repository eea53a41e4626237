// Package auth guards the admin panel: one configured administrator, a
// bcrypt password hash and a signed session cookie.
package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/geniusclasses/geniusclasses/internal/httputil"
	"github.com/geniusclasses/geniusclasses/internal/notify"
	"github.com/geniusclasses/geniusclasses/internal/validate"
	"github.com/jonboulle/clockwork"
	"golang.org/x/crypto/bcrypt"
)

// SessionCookieName is the HttpOnly cookie carrying the session token.
const SessionCookieName = "genius_admin_session"

// MaxPasswordBytes is bcrypt's input limit.
const MaxPasswordBytes = 72

var (
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	ErrPasswordTooLong    = errors.New("auth: password longer than 72 bytes")
)

// Notices shown to the person at the login form.
var (
	AccessGranted = notify.Notice{Kind: notify.Success, Message: "Access Granted", Detail: "Welcome back, Admin."}
	AccessDenied  = notify.Notice{Kind: notify.Error, Message: "Access Denied", Detail: "Invalid credentials. Please try again."}
)

type contextKey string

const usernameKey contextKey = "username"

// HashPassword returns the bcrypt hash to configure as ADMIN_PASSWORD_HASH.
func HashPassword(password string) (string, error) {
	if len(password) > MaxPasswordBytes {
		return "", ErrPasswordTooLong
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Credentials is the single administrator account.
type Credentials struct {
	Username     string
	PasswordHash string
}

// Verify checks a login attempt. The hash comparison runs even for an
// unknown username so both failures take the same time.
func (c Credentials) Verify(username, password string) error {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(c.Username)) == 1
	passErr := bcrypt.CompareHashAndPassword([]byte(c.PasswordHash), []byte(password))
	if !userOK || passErr != nil {
		return ErrInvalidCredentials
	}
	return nil
}

type Handler struct {
	creds         Credentials
	jwtSecret     string
	ttl           time.Duration
	secureCookies bool
	clock         clockwork.Clock
	alerts        notify.Notifier
}

func NewHandler(creds Credentials, jwtSecret string, ttl time.Duration, secureCookies bool) *Handler {
	if ttl <= 0 {
		ttl = DefaultSessionDuration
	}
	return &Handler{
		creds:         creds,
		jwtSecret:     jwtSecret,
		ttl:           ttl,
		secureCookies: secureCookies,
		clock:         clockwork.NewRealClock(),
	}
}

func (h *Handler) SetClock(c clockwork.Clock) {
	h.clock = c
}

// SetAlerts sends sign-in events to operators.
func (h *Handler) SetAlerts(n notify.Notifier) {
	h.alerts = n
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string        `json:"token"`
	ExpiresAt time.Time     `json:"expiresAt"`
	Notice    notify.Notice `json:"notice"`
}

type deniedResponse struct {
	Error  string        `json:"error"`
	Notice notify.Notice `json:"notice"`
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		httputil.WriteError(w, http.StatusBadRequest, "username and password are required")
		return
	}
	if msg := validate.Username(req.Username); msg != "" {
		httputil.WriteError(w, http.StatusBadRequest, msg)
		return
	}
	if len(req.Password) > MaxPasswordBytes {
		httputil.WriteError(w, http.StatusBadRequest, "password must be at most 72 characters")
		return
	}

	if err := h.creds.Verify(req.Username, req.Password); err != nil {
		slog.Warn("auth: admin login rejected", "client_ip", httputil.ClientIP(r))
		h.alert(r.Context(), notify.Notice{Kind: notify.Error, Message: "Admin login rejected", Detail: "from " + httputil.ClientIP(r)})
		httputil.WriteJSON(w, http.StatusUnauthorized, deniedResponse{Error: "invalid credentials", Notice: AccessDenied})
		return
	}

	now := h.clock.Now()
	token, err := GenerateSessionToken(h.jwtSecret, h.creds.Username, h.ttl, now)
	if err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, "failed to generate token")
		return
	}

	slog.Info("auth: admin signed in", "client_ip", httputil.ClientIP(r))
	h.alert(r.Context(), notify.Notice{Kind: notify.Info, Message: "Admin signed in", Detail: "from " + httputil.ClientIP(r)})

	h.setSessionCookie(w, token)
	httputil.WriteJSON(w, http.StatusOK, loginResponse{
		Token:     token,
		ExpiresAt: now.Add(h.ttl).UTC(),
		Notice:    AccessGranted,
	})
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   -1,
	})
	w.WriteHeader(http.StatusNoContent)
}

// Session reports the signed-in administrator, if any. A bearer header
// takes precedence over the cookie.
func (h *Handler) Session(r *http.Request) (*Claims, bool) {
	tokenStr := ""
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		t, found := strings.CutPrefix(authHeader, "Bearer ")
		if !found {
			return nil, false
		}
		tokenStr = t
	} else if cookie, err := r.Cookie(SessionCookieName); err == nil {
		tokenStr = cookie.Value
	}
	if tokenStr == "" {
		return nil, false
	}

	claims, err := ValidateToken(h.jwtSecret, tokenStr, h.clock.Now())
	if err != nil || claims.Username != h.creds.Username {
		return nil, false
	}
	return claims, true
}

func (h *Handler) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := h.Session(r)
		if !ok {
			httputil.WriteError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		ctx := context.WithValue(r.Context(), usernameKey, claims.Username)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func UsernameFromContext(ctx context.Context) string {
	username, _ := ctx.Value(usernameKey).(string)
	return username
}

func (h *Handler) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   int(h.ttl / time.Second),
	})
}

func (h *Handler) alert(ctx context.Context, n notify.Notice) {
	if h.alerts == nil {
		return
	}
	if err := h.alerts.Notify(ctx, n); err != nil {
		slog.Warn("auth: alert failed", "error", err)
	}
}
