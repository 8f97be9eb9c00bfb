package middleware

import (
	"net/http"
	"strings"
)

const apiCacheControl = "public, max-age=120, stale-while-revalidate=300"

// CacheControl marks successful API reads as browser-cacheable. The
// dashboard data only moves on warehouse refreshes, so clients may reuse a
// response for two minutes and revalidate in the background for five more.
// Identity lookups are skipped because their body depends on the forwarded
// token, not just the URL; chat polls are skipped because the same URL must
// observe the task transition on every request.
func CacheControl(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet ||
			!strings.HasPrefix(r.URL.Path, "/api/") ||
			strings.Contains(r.URL.Path, "/current-user") ||
			strings.HasPrefix(r.URL.Path, "/api/chat/") {
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(&cacheControlWriter{ResponseWriter: w}, r)
	})
}

// cacheControlWriter injects the header just before a 200 status line goes
// out. Error responses stay uncacheable.
type cacheControlWriter struct {
	http.ResponseWriter
	wroteHeader bool
}

func (w *cacheControlWriter) WriteHeader(code int) {
	if !w.wroteHeader {
		w.wroteHeader = true
		if code == http.StatusOK {
			w.Header().Set("Cache-Control", apiCacheControl)
		}
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *cacheControlWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(b)
}
