package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/januslabs/janus/internal/config"
	"github.com/januslabs/janus/pkg/httpext"
)

// RequireAPIKey guards a subrouter with the static bearer key from API_KEY.
// When no key is configured the proxy is open, which suits single-user
// deployments on a private network.
func RequireAPIKey() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			expected := config.GetAPIKey()
			if expected == "" {
				next.ServeHTTP(w, r)
				return
			}

			provided := extractBearer(r)
			if provided == "" {
				httpext.JsonError(w, "Missing API key", httpext.ErrorTypeAuthentication, http.StatusUnauthorized)
				return
			}

			if subtle.ConstantTimeCompare([]byte(provided), []byte(expected)) != 1 {
				log.Warn().
					Str("path", r.URL.Path).
					Msg("Rejected request with invalid API key")
				httpext.JsonError(w, "Invalid API key", httpext.ErrorTypeAuthentication, http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func extractBearer(r *http.Request) string {
	parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
