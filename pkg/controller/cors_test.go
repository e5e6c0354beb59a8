package controller_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"validator/pkg/controller"

	"github.com/stretchr/testify/require"
)

func corsHandler(origins ...string) (http.Handler, *bool) {
	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusTeapot)
	})

	return controller.WithCORS(controller.CORSOptions{AllowedOrigins: origins})(next), &called
}

func TestWithCORS_Preflight(t *testing.T) {
	h, called := corsHandler("https://app.example")

	req := httptest.NewRequest(http.MethodOptions, "/v1/validate", nil)
	req.Header.Set("Origin", "https://app.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.False(t, *called, "next handler should not be called for a preflight")
	res := rec.Result()
	require.Equal(t, http.StatusNoContent, res.StatusCode)
	require.Equal(t, "https://app.example", res.Header.Get("Access-Control-Allow-Origin"))
	require.Equal(t, "Origin", res.Header.Get("Vary"))
	require.Contains(t, res.Header.Get("Access-Control-Allow-Headers"), "Content-Type")
	require.Equal(t, "GET, POST", res.Header.Get("Access-Control-Allow-Methods"))
	require.Equal(t, "600", res.Header.Get("Access-Control-Max-Age"))
}

func TestWithCORS_PreflightFromUnknownOrigin(t *testing.T) {
	h, called := corsHandler("https://app.example")

	req := httptest.NewRequest(http.MethodOptions, "/v1/validate", nil)
	req.Header.Set("Origin", "https://evil.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.False(t, *called)
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	require.Empty(t, rec.Header().Get("Access-Control-Allow-Methods"))
}

func TestWithCORS_SimpleRequests(t *testing.T) {
	tests := []struct {
		name       string
		origins    []string
		origin     string
		method     string
		wantOrigin string
		wantExpose string
	}{
		{
			name:       "wildcard",
			origins:    []string{"*"},
			origin:     "https://anywhere.example",
			method:     http.MethodGet,
			wantOrigin: "*",
			wantExpose: "X-Request-Id",
		},
		{
			name:       "listed origin",
			origins:    []string{"https://a.example", "https://b.example"},
			origin:     "https://b.example",
			method:     http.MethodPost,
			wantOrigin: "https://b.example",
			wantExpose: "X-Request-Id",
		},
		{
			name:    "unlisted origin",
			origins: []string{"https://a.example"},
			origin:  "https://c.example",
			method:  http.MethodPost,
		},
		{
			name:    "same origin",
			origins: []string{"*"},
			method:  http.MethodGet,
		},
		{
			name:       "options without preflight headers",
			origins:    []string{"*"},
			origin:     "https://anywhere.example",
			method:     http.MethodOptions,
			wantOrigin: "*",
			wantExpose: "X-Request-Id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, called := corsHandler(tt.origins...)

			req := httptest.NewRequest(tt.method, "/v1/schema", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			require.True(t, *called, "next handler should be called")
			require.Equal(t, http.StatusTeapot, rec.Code)
			require.Equal(t, tt.wantOrigin, rec.Header().Get("Access-Control-Allow-Origin"))
			require.Equal(t, tt.wantExpose, rec.Header().Get("Access-Control-Expose-Headers"))
		})
	}
}
