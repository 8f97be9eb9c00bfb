package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCacheControl(t *testing.T) {
	tests := []struct {
		name   string
		method string
		path   string
		status int
		want   string
	}{
		{
			name:   "successful API read",
			method: http.MethodGet,
			path:   "/api/dc-inventory",
			status: http.StatusOK,
			want:   "public, max-age=120, stale-while-revalidate=300",
		},
		{
			name:   "current-user is never cached",
			method: http.MethodGet,
			path:   "/api/current-user",
			status: http.StatusOK,
			want:   "",
		},
		{
			name:   "POST is never cached",
			method: http.MethodPost,
			path:   "/api/chat/start",
			status: http.StatusOK,
			want:   "",
		},
		{
			name:   "chat poll is never cached",
			method: http.MethodGet,
			path:   "/api/chat/poll/4f1c2d9e",
			status: http.StatusOK,
			want:   "",
		},
		{
			name:   "non-API path is untouched",
			method: http.MethodGet,
			path:   "/assets/index-abc.js",
			status: http.StatusOK,
			want:   "",
		},
		{
			name:   "API error is not cached",
			method: http.MethodGet,
			path:   "/api/dc-inventory",
			status: http.StatusBadRequest,
			want:   "",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			handler := CacheControl(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
			}))

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.want, rec.Header().Get("Cache-Control"))
		})
	}
}

func TestCacheControl_ImplicitOKFromWrite(t *testing.T) {
	handler := CacheControl(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[]`)) // no explicit WriteHeader
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/storage-locations", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "public, max-age=120, stale-while-revalidate=300", rec.Header().Get("Cache-Control"))
}
