// Package web serves the compiled single-page frontend from disk.
package web

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// SPAHandler serves the frontend bundle below dir. Hashed build artifacts
// under assets/ never change between deploys and are marked immutable;
// everything else, index.html above all, must revalidate so a new deploy
// takes effect. Browser navigations to client-side routes fall back to
// index.html.
type SPAHandler struct {
	dir string
}

// NewSPAHandler serves the bundle rooted at dir.
func NewSPAHandler(dir string) *SPAHandler {
	return &SPAHandler{dir: dir}
}

func (h *SPAHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Cleaning the rooted URL path first means ".." can never climb out of
	// the bundle directory.
	rel := strings.TrimPrefix(path.Clean(r.URL.Path), "/")
	if rel == "" {
		rel = "index.html"
	}

	full := filepath.Join(h.dir, filepath.FromSlash(rel))
	if info, err := os.Stat(full); err == nil && !info.IsDir() {
		h.serveFile(w, r, full)
		return
	}

	if isPageNavigation(r) {
		h.serveFile(w, r, filepath.Join(h.dir, "index.html"))
		return
	}

	http.NotFound(w, r)
}

func (h *SPAHandler) serveFile(w http.ResponseWriter, r *http.Request, fullPath string) {
	f, err := os.Open(fullPath)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	defer f.Close() //nolint:errcheck

	info, err := f.Stat()
	if err != nil || info.IsDir() {
		http.NotFound(w, r)
		return
	}

	if strings.Contains(filepath.ToSlash(fullPath), "/assets/") {
		w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	} else {
		w.Header().Set("Cache-Control", "no-cache")
	}
	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}

// isPageNavigation reports whether the request looks like a browser route
// change rather than a fetch for a missing resource: a GET outside /api
// that accepts HTML and whose last path segment carries no extension.
func isPageNavigation(r *http.Request) bool {
	if r.Method != http.MethodGet {
		return false
	}
	if r.URL.Path == "/api" || strings.HasPrefix(r.URL.Path, "/api/") {
		return false
	}
	if !strings.Contains(r.Header.Get("Accept"), "text/html") {
		return false
	}
	last := r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]
	return !strings.Contains(last, ".")
}
