package middleware

import (
	"net/http"

	"scctower/internal/domain"
)

// ForwardedToken copies the workspace user token injected by the apps proxy
// into the request context. No token is not an error here: endpoints that
// need the caller's identity decide what missing means.
func ForwardedToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if token := r.Header.Get("X-Forwarded-Access-Token"); token != "" {
			r = r.WithContext(domain.WithUserToken(r.Context(), token))
		}
		next.ServeHTTP(w, r)
	})
}
