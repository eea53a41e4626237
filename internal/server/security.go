package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/geniusclasses/geniusclasses/internal/httputil"
	"github.com/geniusclasses/geniusclasses/internal/video"
)

const thumbnailHost = "https://i.ytimg.com"

type SecurityConfig struct {
	BaseURL string
	// AllowedFrameAncestors is a space separated list of origins allowed to
	// embed the site in addition to itself.
	AllowedFrameAncestors string
}

func securityHeaders(cfg SecurityConfig) func(http.Handler) http.Handler {
	strictTransport := cfg.BaseURL != "" && hasHTTPS(cfg.BaseURL)

	frameAncestors := "'self'"
	if extra := strings.Join(strings.Fields(cfg.AllowedFrameAncestors), " "); extra != "" {
		frameAncestors += " " + extra
	}
	embedOrigin := strings.TrimSuffix(video.EmbedBaseURL, "/embed")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			nonce := httputil.GenerateNonce()
			ctx := httputil.ContextWithNonce(r.Context(), nonce)

			w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
			w.Header().Set("X-Content-Type-Options", "nosniff")
			if frameAncestors == "'self'" {
				w.Header().Set("X-Frame-Options", "SAMEORIGIN")
			}
			w.Header().Set("Permissions-Policy", "camera=(), microphone=(), geolocation=(), display-capture=()")

			csp := fmt.Sprintf(
				"default-src 'self'; img-src 'self' data: %s; script-src 'self' 'nonce-%s'; style-src 'self' 'nonce-%s'; connect-src 'self'; frame-src %s; form-action 'self'; frame-ancestors %s;",
				thumbnailHost, nonce, nonce, embedOrigin, frameAncestors,
			)
			w.Header().Set("Content-Security-Policy", csp)

			if strictTransport {
				w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func hasHTTPS(baseURL string) bool {
	return strings.HasPrefix(baseURL, "https://")
}
