package controller

import (
	"net/http"
	"strconv"
)

const (
	// ErrorPageMinStatus is the lowest status replaced by WithErrorPage.
	ErrorPageMinStatus = 400
	// ErrorPageMaxStatus is the highest status replaced by WithErrorPage.
	ErrorPageMaxStatus = 510
)

// errorPageWriter swallows the downstream body once an error status was
// written and writes the fixed page in its place.
type errorPageWriter struct {
	http.ResponseWriter

	body        string
	wroteHeader bool
	replaced    bool
}

func (w *errorPageWriter) WriteHeader(code int) {
	if w.wroteHeader {
		return
	}
	w.wroteHeader = true

	if code < ErrorPageMinStatus || code > ErrorPageMaxStatus {
		w.ResponseWriter.WriteHeader(code)

		return
	}

	w.replaced = true
	h := w.Header()
	h.Del("Content-Encoding")
	h.Set("Content-Type", "text/plain; charset=utf-8")
	h.Set("Content-Length", strconv.Itoa(len(w.body)))
	w.ResponseWriter.WriteHeader(code)
	_, _ = w.ResponseWriter.Write([]byte(w.body))
}

func (w *errorPageWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	if w.replaced {
		return len(b), nil
	}

	return w.ResponseWriter.Write(b) //nolint: wrapcheck
}

// WithErrorPage returns a middleware that keeps the status of responses in
// the 400..510 range but replaces their body with body.
func WithErrorPage(body string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(&errorPageWriter{ResponseWriter: w, body: body}, r)
		})
	}
}

// WithMaxBytes returns a middleware that limits request bodies to limit
// bytes. Reading past the limit fails with *http.MaxBytesError.
func WithMaxBytes(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limit > 0 && r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, limit)
			}
			next.ServeHTTP(w, r)
		})
	}
}
